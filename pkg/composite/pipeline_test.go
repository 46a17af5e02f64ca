package composite

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goesarchive/goescat/pkg/catalog"
	"github.com/goesarchive/goescat/pkg/catalogmodel"
)

type fakeStore struct {
	catalog.Store

	framesByBand map[catalogmodel.Band]*catalogmodel.GoesFrame
	composites   map[string]*catalogmodel.Composite
}

func (f *fakeStore) NearestFrame(ctx context.Context, sat catalogmodel.Satellite, sector catalogmodel.Sector, band catalogmodel.Band, at time.Time) (*catalogmodel.GoesFrame, error) {
	return f.framesByBand[band], nil
}

func (f *fakeStore) CreateComposite(ctx context.Context, c *catalogmodel.Composite) error {
	if f.composites == nil {
		f.composites = map[string]*catalogmodel.Composite{}
	}
	f.composites[c.ID] = c
	return nil
}

func (f *fakeStore) UpdateComposite(ctx context.Context, c *catalogmodel.Composite) error {
	f.composites[c.ID] = c
	return nil
}

func writeTestPNG(t *testing.T, path string, w, h int, gray uint8) {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetGray(x, y, color.Gray{Y: gray})
		}
	}
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func TestPipelineRun_StacksThreeBands(t *testing.T) {
	dir := t.TempDir()
	redPath := filepath.Join(dir, "red.png")
	greenPath := filepath.Join(dir, "green.png")
	bluePath := filepath.Join(dir, "blue.png")
	writeTestPNG(t, redPath, 10, 8, 255)
	writeTestPNG(t, greenPath, 10, 8, 128)
	writeTestPNG(t, bluePath, 5, 4, 0)

	store := &fakeStore{framesByBand: map[catalogmodel.Band]*catalogmodel.GoesFrame{
		"C02": {FilePath: redPath},
		"C03": {FilePath: greenPath},
		"C01": {FilePath: bluePath},
	}}

	p := &Pipeline{Store: store, StorageRoot: dir}
	comp, err := p.Run(context.Background(), "job-1", Params{
		Recipe: RecipeTrueColor, Satellite: catalogmodel.SatelliteGOES16, Sector: catalogmodel.SectorCONUS, CaptureTime: time.Now(),
	})
	require.NoError(t, err)
	assert.Equal(t, catalogmodel.JobStatusCompleted, comp.Status)
	assert.NotEmpty(t, comp.FilePath)
	assert.Greater(t, comp.FileSize, int64(0))

	_, err = os.Stat(comp.FilePath)
	require.NoError(t, err)
}

func TestPipelineRun_UnknownRecipeFails(t *testing.T) {
	store := &fakeStore{}
	p := &Pipeline{Store: store, StorageRoot: t.TempDir()}
	_, err := p.Run(context.Background(), "job-1", Params{Recipe: "not_a_recipe"})
	require.Error(t, err)
}

func TestPipelineRun_NoBandsAvailableFails(t *testing.T) {
	store := &fakeStore{framesByBand: map[catalogmodel.Band]*catalogmodel.GoesFrame{}}
	p := &Pipeline{Store: store, StorageRoot: t.TempDir()}
	comp, err := p.Run(context.Background(), "job-1", Params{Recipe: RecipeTrueColor})
	require.Error(t, err)
	assert.Equal(t, catalogmodel.JobStatusFailed, comp.Status)
}
