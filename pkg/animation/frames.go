package animation

import (
	"fmt"
	"image"
	"image/png"
	"math"
	"os"
	"path/filepath"

	"golang.org/x/image/draw"

	"github.com/goesarchive/goescat/pkg/catalogmodel"
)

// scaleEpsilon is the floating-point tolerance for treating a scale
// factor as identity (§4.7: "never use raw equality").
const scaleEpsilon = 1e-9

// LoopStyle controls how the prepared frame sequence is arranged before
// encoding (§4.7).
type LoopStyle string

const (
	LoopForward  LoopStyle = "forward"
	LoopPingpong LoopStyle = "pingpong"
	LoopHold     LoopStyle = "hold"
)

// PrepareParams configures PrepareFrames.
type PrepareParams struct {
	Crop      *catalogmodel.CropPreset
	Scale     float64 // area ratio, 0.25..2.0; 1.0 is identity
	LoopStyle LoopStyle
	FPS       int
	WorkDir   string
}

// PrepareFrames decodes each frame's PNG, applies the optional crop and
// the scale factor (linear-in-area, §4.7), applies the loop style, and
// writes a numbered PNG sequence into params.WorkDir. It returns the
// written file paths in encode order.
func PrepareFrames(frames []*catalogmodel.GoesFrame, params PrepareParams) ([]string, error) {
	if err := os.MkdirAll(params.WorkDir, 0o755); err != nil {
		return nil, err
	}

	var processed []image.Image
	for _, frame := range frames {
		img, err := decodePNG(frame.FilePath)
		if err != nil {
			continue
		}
		if params.Crop != nil {
			img = cropImage(img, *params.Crop)
		}
		img = scaleImage(img, params.Scale)
		processed = append(processed, img)
	}
	if len(processed) == 0 {
		return nil, ErrNoFrames
	}

	sequence := applyLoopStyle(processed, params.LoopStyle, params.FPS)

	var paths []string
	for i, img := range sequence {
		path := filepath.Join(params.WorkDir, fmt.Sprintf("frame_%05d.png", i))
		if err := writePNG(path, img); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func decodePNG(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return png.Decode(f)
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}

func cropImage(img image.Image, crop catalogmodel.CropPreset) image.Image {
	rect := image.Rect(crop.X, crop.Y, crop.X+crop.Width, crop.Y+crop.Height)
	rect = rect.Intersect(img.Bounds())
	if rect.Empty() {
		return img
	}
	out := image.NewRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	draw.Draw(out, out.Bounds(), img, rect.Min, draw.Src)
	return out
}

// scaleImage resizes img by a linear-in-area factor: scale=1.0 (within
// scaleEpsilon) is identity, scale=4.0 would double both dimensions,
// etc. §4.7 bounds scale to [0.25, 2.0] at the caller (pkg/httpapi
// validation); this function itself just applies whatever it is given.
func scaleImage(img image.Image, scale float64) image.Image {
	if math.Abs(scale-1.0) < scaleEpsilon {
		return img
	}
	linear := math.Sqrt(scale)
	b := img.Bounds()
	dstW := maxInt(1, int(math.Round(float64(b.Dx())*linear)))
	dstH := maxInt(1, int(math.Round(float64(b.Dy())*linear)))
	dst := image.NewRGBA(image.Rect(0, 0, dstW, dstH))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// applyLoopStyle arranges frames according to style (§4.7): forward is
// identity, pingpong appends the reversed interior (excluding the first
// and last frame, which would otherwise repeat), hold appends the last
// frame fps*2 extra times.
func applyLoopStyle(frames []image.Image, style LoopStyle, fps int) []image.Image {
	switch style {
	case LoopPingpong:
		if len(frames) < 3 {
			return frames
		}
		out := make([]image.Image, len(frames))
		copy(out, frames)
		for i := len(frames) - 2; i > 0; i-- {
			out = append(out, frames[i])
		}
		return out
	case LoopHold:
		out := make([]image.Image, len(frames))
		copy(out, frames)
		last := frames[len(frames)-1]
		holdCount := fps * 2
		if holdCount <= 0 {
			holdCount = 2
		}
		for i := 0; i < holdCount; i++ {
			out = append(out, last)
		}
		return out
	default:
		return frames
	}
}
