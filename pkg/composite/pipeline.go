package composite

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/zeebo/errs"

	"github.com/goesarchive/goescat/pkg/catalog"
	"github.com/goesarchive/goescat/pkg/catalogmodel"
)

// Class groups this package's errors (§10.2).
var Class = errs.Class("composite")

// Params is the (recipe, satellite, sector, capture_time) input to Run
// (§4.7).
type Params struct {
	Recipe      string
	Satellite   catalogmodel.Satellite
	Sector      catalogmodel.Sector
	CaptureTime time.Time
}

// Pipeline builds derived multi-band composites (§4.7).
type Pipeline struct {
	Store       catalog.Store
	StorageRoot string
}

// Run resolves Params.Recipe's band list, loads the nearest-in-time
// frame for each band, resizes all but the smallest to its shape, stacks
// the three channels, and writes a PNG. It creates then updates a
// Composite row as it progresses.
func (p *Pipeline) Run(ctx context.Context, jobID string, params Params) (*catalogmodel.Composite, error) {
	bands, ok := Bands(params.Recipe)
	if !ok {
		return nil, Class.New("unknown recipe %q", params.Recipe)
	}

	comp := &catalogmodel.Composite{
		ID: uuid.NewString(), JobID: jobID, Recipe: params.Recipe,
		Satellite: params.Satellite, Sector: params.Sector, CaptureTime: params.CaptureTime,
		Status: catalogmodel.JobStatusProcessing, CreatedAt: time.Now(),
	}
	if err := p.Store.CreateComposite(ctx, comp); err != nil {
		return nil, err
	}

	grids := make([]floatGrid, 3)
	haveAny := false
	minW, minH := 0, 0
	for i, band := range bands {
		if band == "" {
			continue
		}
		frame, err := p.Store.NearestFrame(ctx, params.Satellite, params.Sector, band, params.CaptureTime)
		if err != nil || frame == nil {
			continue // missing band becomes a zero channel (§4.7)
		}
		img, err := loadPNG(frame.FilePath)
		if err != nil {
			continue
		}
		g := decodeGrayscale(img)
		grids[i] = g
		if !haveAny || g.width*g.height < minW*minH {
			minW, minH = g.width, g.height
		}
		haveAny = true
	}

	if !haveAny {
		return comp, p.fail(ctx, comp, Class.New("no bands available for recipe %q at %s", params.Recipe, params.CaptureTime))
	}

	resized := make([]floatGrid, 3)
	for i, g := range grids {
		if g.values == nil {
			continue
		}
		resized[i] = resizeBilinear(g, minW, minH)
	}

	out := image.NewRGBA(image.Rect(0, 0, minW, minH))
	for y := 0; y < minH; y++ {
		for x := 0; x < minW; x++ {
			var c [3]uint8
			for i, g := range resized {
				if g.values == nil {
					continue
				}
				c[i] = uint8(clamp01(g.at(x, y)) * 255)
			}
			out.Set(x, y, color.RGBA{R: c[0], G: c[1], B: c[2], A: 255})
		}
	}

	outDir := filepath.Join(p.StorageRoot, "composites")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return comp, p.fail(ctx, comp, err)
	}
	outPath := filepath.Join(outDir, comp.ID+".png")
	f, err := os.Create(outPath)
	if err != nil {
		return comp, p.fail(ctx, comp, err)
	}
	defer f.Close()
	if err := png.Encode(f, out); err != nil {
		return comp, p.fail(ctx, comp, err)
	}

	info, err := f.Stat()
	if err == nil {
		comp.FileSize = info.Size()
	}
	comp.FilePath = outPath
	comp.Status = catalogmodel.JobStatusCompleted
	now := time.Now()
	comp.CompletedAt = &now
	if err := p.Store.UpdateComposite(ctx, comp); err != nil {
		return comp, err
	}
	return comp, nil
}

func (p *Pipeline) fail(ctx context.Context, comp *catalogmodel.Composite, cause error) error {
	comp.Status = catalogmodel.JobStatusFailed
	now := time.Now()
	comp.CompletedAt = &now
	if err := p.Store.UpdateComposite(ctx, comp); err != nil {
		return err
	}
	return cause
}

func loadPNG(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return png.Decode(f)
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
