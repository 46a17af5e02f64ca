package animation

import (
	"context"
	"os/exec"
	"path/filepath"
	"strconv"
	"time"
)

// Quality maps to an H.264 CRF value (§4.7: "CRF from {low:28,
// medium:23, high:18}").
var crfByQuality = map[string]int{
	"low":    28,
	"medium": 23,
	"high":   18,
}

// encodeTimeout bounds the external tool invocation; animations are
// capped in frame count by the caller well before this would trip in
// practice.
const encodeTimeout = 5 * time.Minute

// EncodeParams configures Encode.
type EncodeParams struct {
	FramePattern string // e.g. "frame_%05d.png" inside WorkDir
	WorkDir      string
	FPS          int
	Format       string // mp4 | gif
	Quality      string // low | medium | high (mp4 only)
	OutputPath   string
}

// Encode invokes ffmpeg to turn the numbered PNG sequence in
// params.WorkDir into an mp4 or gif at params.OutputPath (§4.7).
func Encode(ctx context.Context, params EncodeParams) error {
	switch params.Format {
	case "gif":
		return encodeGIF(ctx, params)
	default:
		return encodeMP4(ctx, params)
	}
}

func encodeMP4(ctx context.Context, params EncodeParams) error {
	crf, ok := crfByQuality[params.Quality]
	if !ok {
		crf = crfByQuality["medium"]
	}

	ctx, cancel := context.WithTimeout(ctx, encodeTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-y",
		"-framerate", strconv.Itoa(params.FPS),
		"-i", filepath.Join(params.WorkDir, params.FramePattern),
		"-c:v", "libx264",
		"-crf", strconv.Itoa(crf),
		"-pix_fmt", "yuv420p",
		"-movflags", "+faststart",
		params.OutputPath,
	)
	return cmd.Run()
}

// encodeGIF runs ffmpeg's two-pass palette workflow: generate a palette
// from the sequence, then encode against it (§4.7).
func encodeGIF(ctx context.Context, params EncodeParams) error {
	ctx, cancel := context.WithTimeout(ctx, encodeTimeout)
	defer cancel()

	palettePath := filepath.Join(params.WorkDir, "palette.png")
	paletteCmd := exec.CommandContext(ctx, "ffmpeg",
		"-y",
		"-framerate", strconv.Itoa(params.FPS),
		"-i", filepath.Join(params.WorkDir, params.FramePattern),
		"-vf", "palettegen",
		palettePath,
	)
	if err := paletteCmd.Run(); err != nil {
		return err
	}

	encodeCmd := exec.CommandContext(ctx, "ffmpeg",
		"-y",
		"-framerate", strconv.Itoa(params.FPS),
		"-i", filepath.Join(params.WorkDir, params.FramePattern),
		"-i", palettePath,
		"-lavfi", "paletteuse",
		params.OutputPath,
	)
	return encodeCmd.Run()
}

