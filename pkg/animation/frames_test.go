package animation

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
)

func solidImages(n, w, h int) []image.Image {
	out := make([]image.Image, n)
	for i := range out {
		out[i] = image.NewRGBA(image.Rect(0, 0, w, h))
	}
	return out
}

func TestApplyLoopStyle_Forward(t *testing.T) {
	frames := solidImages(5, 4, 4)
	out := applyLoopStyle(frames, LoopForward, 10)
	assert.Len(t, out, 5)
}

func TestApplyLoopStyle_Pingpong(t *testing.T) {
	frames := solidImages(5, 4, 4)
	out := applyLoopStyle(frames, LoopPingpong, 10)
	assert.Len(t, out, 8) // 5 + (5-2) reversed interior
}

func TestApplyLoopStyle_PingpongTooShort(t *testing.T) {
	frames := solidImages(2, 4, 4)
	out := applyLoopStyle(frames, LoopPingpong, 10)
	assert.Len(t, out, 2)
}

func TestApplyLoopStyle_Hold(t *testing.T) {
	frames := solidImages(3, 4, 4)
	out := applyLoopStyle(frames, LoopHold, 10)
	assert.Len(t, out, 3+20)
}

func TestScaleImage_IdentityWithinEpsilon(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	out := scaleImage(img, 1.0+1e-12)
	assert.Equal(t, img.Bounds(), out.Bounds())
}

func TestScaleImage_LinearInArea(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	out := scaleImage(img, 4.0) // area x4 => linear dimension x2
	assert.Equal(t, 20, out.Bounds().Dx())
	assert.Equal(t, 20, out.Bounds().Dy())
}

func TestScaleImage_QuarterArea(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	out := scaleImage(img, 0.25) // area x0.25 => linear dimension x0.5
	assert.Equal(t, 5, out.Bounds().Dx())
	assert.Equal(t, 5, out.Bounds().Dy())
}
