package composite

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResizeBilinear_SameSizeIsNoop(t *testing.T) {
	g := floatGrid{width: 2, height: 2, values: []float64{0, 1, 1, 0}}
	out := resizeBilinear(g, 2, 2)
	assert.Equal(t, g.values, out.values)
}

func TestResizeBilinear_UpscalesWithinRange(t *testing.T) {
	g := floatGrid{width: 2, height: 2, values: []float64{0, 1, 0, 1}}
	out := resizeBilinear(g, 4, 4)
	for _, v := range out.values {
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 1.0)
	}
}

func TestResizeBilinear_DegenerateSourceNearestSamples(t *testing.T) {
	g := floatGrid{width: 1, height: 1, values: []float64{0.5}}
	out := resizeBilinear(g, 3, 3)
	for _, v := range out.values {
		assert.Equal(t, 0.5, v)
	}
}

func TestClamp01(t *testing.T) {
	assert.Equal(t, 0.0, clamp01(-1))
	assert.Equal(t, 1.0, clamp01(2))
	assert.Equal(t, 0.5, clamp01(0.5))
}
