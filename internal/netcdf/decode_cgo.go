//go:build cgo_netcdf

package netcdf

import (
	"fmt"

	"github.com/fhs/go-netcdf/netcdf"
)

// Decode reads the CMI variable from a GOES ABI NetCDF4 file using the
// system libnetcdf via cgo. Only built when the cgo_netcdf build tag is
// set and the toolchain has libnetcdf available.
func Decode(path string) (Grid, error) {
	ds, err := netcdf.OpenFile(path, netcdf.NOWRITE)
	if err != nil {
		return Grid{}, fmt.Errorf("open netcdf file: %w", err)
	}
	defer ds.Close()

	v, err := ds.Var("CMI")
	if err != nil {
		return Grid{}, fmt.Errorf("locate CMI variable: %w", err)
	}

	dims, err := v.Dims()
	if err != nil {
		return Grid{}, fmt.Errorf("read CMI dims: %w", err)
	}
	if len(dims) != 2 {
		return Grid{}, fmt.Errorf("expected 2D CMI array, got %d dims", len(dims))
	}
	height, err := dims[0].Len()
	if err != nil {
		return Grid{}, err
	}
	width, err := dims[1].Len()
	if err != nil {
		return Grid{}, err
	}

	raw := make([]float32, width*height)
	if err := v.ReadFloat32s(raw); err != nil {
		return Grid{}, fmt.Errorf("read CMI values: %w", err)
	}

	values := make([]float64, len(raw))
	for i, f := range raw {
		values[i] = float64(f)
	}

	return Grid{Width: int(width), Height: int(height), Values: values}, nil
}

// Available reports whether the real decoder is compiled in.
func Available() bool { return true }
