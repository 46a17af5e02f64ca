// Package netcdf loads the CMI (cloud and moisture imagery) array out of a
// GOES ABI NetCDF file. The real decode (build tag `cgo_netcdf`) goes
// through github.com/fhs/go-netcdf, which cgo-binds libnetcdf; without
// that system library present, Decode falls back to a fixed placeholder
// so the ingestion pipeline still catalogues a frame (§4.3 step 3).
package netcdf

// Grid is a decoded CMI array: Values is row-major, len(Values) ==
// Width*Height. NaN entries are represented as math.NaN().
type Grid struct {
	Width  int
	Height int
	Values []float64
}
