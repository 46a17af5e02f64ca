package ingestion

import (
	"bytes"
	"image/png"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goesarchive/goescat/internal/netcdf"
)

func TestRenderGrayscalePNG(t *testing.T) {
	grid := netcdf.Grid{
		Width:  2,
		Height: 2,
		Values: []float64{0, 50, 100, math.NaN()},
	}
	var buf bytes.Buffer
	require.NoError(t, RenderGrayscalePNG(&buf, grid))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 2, img.Bounds().Dx())
	assert.Equal(t, 2, img.Bounds().Dy())
}

func TestRobustRangeIgnoresNaN(t *testing.T) {
	lo, hi := robustRange([]float64{math.NaN(), 10, 20, 30, 40, 50})
	assert.True(t, lo < hi)
}

func TestStretchClamps(t *testing.T) {
	assert.Equal(t, uint8(0), stretch(-10, 0, 100))
	assert.Equal(t, uint8(255), stretch(200, 0, 100))
}

func TestWritePlaceholderPNG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePlaceholderPNG(&buf))
	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 100, img.Bounds().Dx())
}
