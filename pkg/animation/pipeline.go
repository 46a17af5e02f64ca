package animation

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/goesarchive/goescat/pkg/catalog"
	"github.com/goesarchive/goescat/pkg/catalogmodel"
)

// Params is the full input to Pipeline.Run (§4.7).
type Params struct {
	Input     Input
	Crop      *catalogmodel.CropPreset
	Scale     float64
	LoopStyle LoopStyle
	FPS       int
	Format    string // mp4 | gif
	Quality   string // low | medium | high
}

// Pipeline builds animations from catalogued frames (§4.7).
type Pipeline struct {
	Store       catalog.Store
	StorageRoot string
}

// Run resolves the frame set, prepares the per-frame sequence, encodes
// it, and records the result on an Animation row.
func (p *Pipeline) Run(ctx context.Context, jobID string, params Params) (*catalogmodel.Animation, error) {
	anim := &catalogmodel.Animation{
		ID: uuid.NewString(), JobID: jobID, Format: params.Format,
		Status: catalogmodel.JobStatusProcessing, CreatedAt: time.Now(),
	}
	if err := p.Store.CreateAnimation(ctx, anim); err != nil {
		return nil, err
	}

	frames, err := Resolve(ctx, p.Store, params.Input)
	if err != nil {
		return anim, p.fail(ctx, anim, err)
	}
	anim.FrameCount = len(frames)

	workDir := filepath.Join(p.StorageRoot, "animations", anim.ID, "work")
	defer os.RemoveAll(workDir)

	paths, err := PrepareFrames(frames, PrepareParams{
		Crop: params.Crop, Scale: params.Scale, LoopStyle: params.LoopStyle,
		FPS: params.FPS, WorkDir: workDir,
	})
	if err != nil {
		return anim, p.fail(ctx, anim, err)
	}
	_ = paths

	outDir := filepath.Join(p.StorageRoot, "animations")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return anim, p.fail(ctx, anim, err)
	}
	ext := "mp4"
	if params.Format == "gif" {
		ext = "gif"
	}
	outPath := filepath.Join(outDir, anim.ID+"."+ext)

	if err := Encode(ctx, EncodeParams{
		FramePattern: "frame_%05d.png", WorkDir: workDir,
		FPS: params.FPS, Format: params.Format, Quality: params.Quality,
		OutputPath: outPath,
	}); err != nil {
		return anim, p.fail(ctx, anim, err)
	}

	anim.FilePath = outPath
	if info, err := os.Stat(outPath); err == nil {
		anim.FileSize = info.Size()
	}
	anim.Status = catalogmodel.JobStatusCompleted
	now := time.Now()
	anim.CompletedAt = &now
	if err := p.Store.UpdateAnimation(ctx, anim); err != nil {
		return anim, err
	}
	return anim, nil
}

func (p *Pipeline) fail(ctx context.Context, anim *catalogmodel.Animation, cause error) error {
	anim.Status = catalogmodel.JobStatusFailed
	now := time.Now()
	anim.CompletedAt = &now
	if err := p.Store.UpdateAnimation(ctx, anim); err != nil {
		return err
	}
	return cause
}
