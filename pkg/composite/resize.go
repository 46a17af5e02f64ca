package composite

import "image"

// floatGrid is a decoded single-band image normalized to [0,1], kept in
// float64 so resizing never re-quantizes through an intermediate 8-bit
// representation (§4.7 "avoid double quantization").
type floatGrid struct {
	width, height int
	values        []float64
}

// decodeGrayscale reads img (as produced by pkg/ingestion.RenderGrayscalePNG)
// into a normalized floatGrid.
func decodeGrayscale(img image.Image) floatGrid {
	b := img.Bounds()
	g := floatGrid{width: b.Dx(), height: b.Dy(), values: make([]float64, b.Dx()*b.Dy())}
	for y := 0; y < g.height; y++ {
		for x := 0; x < g.width; x++ {
			r, _, _, _ := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			g.values[y*g.width+x] = float64(r) / 0xffff
		}
	}
	return g
}

// resizeBilinear resamples g to (dstW, dstH) using bilinear interpolation
// over its normalized float values (§4.7).
func resizeBilinear(g floatGrid, dstW, dstH int) floatGrid {
	if g.width == dstW && g.height == dstH {
		return g
	}
	out := floatGrid{width: dstW, height: dstH, values: make([]float64, dstW*dstH)}
	if g.width < 2 || g.height < 2 {
		// Degenerate source; nearest-sample instead of dividing by zero below.
		for y := 0; y < dstH; y++ {
			for x := 0; x < dstW; x++ {
				out.values[y*dstW+x] = g.at(0, 0)
			}
		}
		return out
	}

	scaleX := float64(g.width-1) / float64(maxInt(dstW-1, 1))
	scaleY := float64(g.height-1) / float64(maxInt(dstH-1, 1))

	for dy := 0; dy < dstH; dy++ {
		sy := float64(dy) * scaleY
		y0 := int(sy)
		y1 := minInt(y0+1, g.height-1)
		fy := sy - float64(y0)

		for dx := 0; dx < dstW; dx++ {
			sx := float64(dx) * scaleX
			x0 := int(sx)
			x1 := minInt(x0+1, g.width-1)
			fx := sx - float64(x0)

			top := g.at(x0, y0)*(1-fx) + g.at(x1, y0)*fx
			bottom := g.at(x0, y1)*(1-fx) + g.at(x1, y1)*fx
			out.values[dy*dstW+dx] = top*(1-fy) + bottom*fy
		}
	}
	return out
}

func (g floatGrid) at(x, y int) float64 {
	return g.values[y*g.width+x]
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
