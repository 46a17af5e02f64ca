package ingestion

import (
	"image"
	"image/png"
	"io"
	"math"
	"sort"

	"github.com/goesarchive/goescat/internal/netcdf"
)

// RenderGrayscalePNG applies the robust percentile stretch from §4.3 step
// 3 (2nd/98th percentile, NaN-> 0 after mapping) and writes an 8-bit
// grayscale PNG to w.
func RenderGrayscalePNG(w io.Writer, grid netcdf.Grid) error {
	lo, hi := robustRange(grid.Values)
	img := image.NewGray(image.Rect(0, 0, grid.Width, grid.Height))
	for i, v := range grid.Values {
		var px uint8
		if math.IsNaN(v) {
			px = 0
		} else {
			px = stretch(v, lo, hi)
		}
		img.Pix[i] = px
	}
	return png.Encode(w, img)
}

// robustRange computes the 2nd and 98th percentiles of the non-NaN
// values, ignoring NaN entirely (§4.3 step 3).
func robustRange(values []float64) (lo, hi float64) {
	finite := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			finite = append(finite, v)
		}
	}
	if len(finite) == 0 {
		return 0, 1
	}
	sort.Float64s(finite)
	lo = percentile(finite, 0.02)
	hi = percentile(finite, 0.98)
	if hi <= lo {
		hi = lo + 1
	}
	return lo, hi
}

func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	idx := p * float64(len(sorted)-1)
	lo := int(math.Floor(idx))
	hi := int(math.Ceil(idx))
	if lo == hi {
		return sorted[lo]
	}
	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// stretch linearly maps v from [lo,hi] to [0,255], clamping out-of-range
// values.
func stretch(v, lo, hi float64) uint8 {
	scaled := (v - lo) / (hi - lo) * 255
	switch {
	case scaled <= 0:
		return 0
	case scaled >= 255:
		return 255
	default:
		return uint8(scaled)
	}
}

// WritePlaceholderPNG writes a fixed mid-gray 100x100 PNG. The ingestion
// pipeline does not call it: without the NetCDF decoder it renders the
// decoder's all-NaN 100x100 grid, which comes out all black.
func WritePlaceholderPNG(w io.Writer) error {
	img := image.NewGray(image.Rect(0, 0, 100, 100))
	for i := range img.Pix {
		img.Pix[i] = 128
	}
	return png.Encode(w, img)
}
