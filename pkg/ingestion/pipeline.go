// Package ingestion is the C3 component: turn a (satellite, sector,
// band, time range) request into catalogued GoesFrame rows.
package ingestion

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/image/draw"

	"github.com/goesarchive/goescat/internal/netcdf"
	"github.com/goesarchive/goescat/pkg/catalog"
	"github.com/goesarchive/goescat/pkg/catalogmodel"
	"github.com/goesarchive/goescat/pkg/log"
	"github.com/goesarchive/goescat/pkg/metrics"
	"github.com/goesarchive/goescat/pkg/objectstore"
)

// FetchParams is the (satellite, sector, band, [start,end]) input to
// Run (§4.3).
type FetchParams struct {
	Satellite catalogmodel.Satellite
	Sector    catalogmodel.Sector
	Band      catalogmodel.Band
	Start     time.Time
	End       time.Time
}

// Result is the status-reporting tuple from §4.3 step 5.
type Result struct {
	Fetched       int
	TotalAvailable int
	Failed        int
	Capped        bool
	Status        catalogmodel.JobStatus
	Message       string
	FrameIDs      []string
}

// ProgressFunc lets Run report incremental progress without depending on
// pkg/jobrun's publish/throttle machinery.
type ProgressFunc func(progress int, message string)

// Pipeline wires the catalog store, object store client and local
// filesystem root together to run an ingestion fetch (§4.3).
type Pipeline struct {
	Store       catalog.Store
	ObjectStore *objectstore.Client
	StorageRoot string
	MinFreeBytes uint64
}

const minFreeBytesDefault = 500 * 1024 * 1024

// candidate is one matched, not-yet-downloaded object.
type candidate struct {
	key       string
	size      int64
	scanStart time.Time
}

// Run performs enumerate/cap/download/convert/persist/report (§4.3 steps
// 1-5). jobID attributes the resulting frames' source_job_id.
func (p *Pipeline) Run(ctx context.Context, jobID string, params FetchParams, maxFramesPerFetch int, report ProgressFunc) (Result, error) {
	logger := log.WithJobID(jobID)

	bucket, err := Bucket(params.Satellite)
	if err != nil {
		return Result{}, err
	}

	candidates, err := p.enumerate(ctx, bucket, params)
	if err != nil {
		return Result{}, err
	}
	totalAvailable := len(candidates)

	if totalAvailable == 0 {
		return Result{
			Status:  catalogmodel.JobStatusFailed,
			Message: fmt.Sprintf("No frames found for %s %s %s in range — %s", params.Satellite, params.Sector, params.Band, AvailabilityHint(params.Satellite, params.Start, params.End)),
		}, nil
	}

	maxFramesPerFetch = catalogmodel.ClampMaxFramesPerFetch(maxFramesPerFetch)
	capped := false
	if len(candidates) > maxFramesPerFetch {
		candidates = candidates[:maxFramesPerFetch]
		capped = true
	}

	report(5, fmt.Sprintf("Found %d frames, downloading", len(candidates)))

	frames := make([]*catalogmodel.GoesFrame, 0, len(candidates))
	failed := 0
	for i, c := range candidates {
		frame, err := p.downloadAndConvert(ctx, jobID, bucket, params, c)
		if err != nil {
			failed++
			logger.Warn().Err(err).Str("key", c.key).Msg("frame download/convert failed, continuing")
			continue
		}
		frames = append(frames, frame)
		metrics.FramesIngestedTotal.WithLabelValues(string(params.Satellite), string(params.Band)).Inc()
		progress := 5 + int(float64(i+1)/float64(len(candidates))*85)
		report(progress, fmt.Sprintf("Downloaded %d/%d frames", i+1, len(candidates)))
	}

	fetched := len(frames)
	if fetched > 0 {
		collectionName := fmt.Sprintf("GOES Fetch %s %s %s", params.Satellite, params.Band, params.Sector)
		if err := p.Store.CreateFramesBatch(ctx, frames, collectionName); err != nil {
			return Result{}, fmt.Errorf("persist frames: %w", err)
		}
	}

	ids := make([]string, len(frames))
	for i, f := range frames {
		ids[i] = f.ID
	}

	return Result{
		Fetched:        fetched,
		TotalAvailable: totalAvailable,
		Failed:         failed,
		Capped:         capped,
		FrameIDs:       ids,
	}.withStatus(params, maxFramesPerFetch), nil
}

// withStatus derives the terminal status/message from the four counts
// per the table in §4.3 step 5.
func (r Result) withStatus(params FetchParams, limit int) Result {
	switch {
	case r.Fetched == 0 && r.TotalAvailable == 0:
		r.Status = catalogmodel.JobStatusFailed
		r.Message = fmt.Sprintf("No frames found for %s %s %s", params.Satellite, params.Sector, params.Band)
	case r.Fetched == 0 && r.Failed == r.TotalAvailable && r.TotalAvailable > 0:
		r.Status = catalogmodel.JobStatusFailed
		r.Message = fmt.Sprintf("All %d frames failed to download", r.TotalAvailable)
	case r.Failed == 0 && !r.Capped:
		r.Status = catalogmodel.JobStatusCompleted
		r.Message = fmt.Sprintf("Fetched %d frames", r.Fetched)
	case r.Failed == 0 && r.Capped:
		r.Status = catalogmodel.JobStatusCompletedPartial
		r.Message = fmt.Sprintf("Fetched %d of %d frames (frame limit: %d)", r.Fetched, r.TotalAvailable, limit)
	default:
		r.Status = catalogmodel.JobStatusCompletedPartial
		beyondLimit := r.TotalAvailable - limit
		if beyondLimit < 0 {
			beyondLimit = 0
		}
		r.Message = fmt.Sprintf("Fetched %d frames (%d failed, %d beyond limit %d)", r.Fetched, r.Failed, beyondLimit, limit)
	}
	return r
}

func (p *Pipeline) enumerate(ctx context.Context, bucket string, params FetchParams) ([]candidate, error) {
	var candidates []candidate
	for _, hour := range HourRange(params.Start, params.End) {
		prefix, err := Prefix(params.Sector, hour)
		if err != nil {
			return nil, err
		}
		objects, err := p.ObjectStore.List(ctx, bucket, prefix)
		if err != nil {
			return nil, fmt.Errorf("list %s/%s: %w", bucket, prefix, err)
		}
		for _, obj := range objects {
			pk, ok := ParseKey(obj.Key)
			if !ok || pk.Band != params.Band {
				continue
			}
			if !MatchesSector(pk, params.Sector) {
				continue
			}
			if pk.ScanStart.Before(params.Start) || pk.ScanStart.After(params.End) {
				continue
			}
			candidates = append(candidates, candidate{key: obj.Key, size: obj.Size, scanStart: pk.ScanStart})
		}
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].scanStart.Before(candidates[j].scanStart) })
	return candidates, nil
}

func (p *Pipeline) downloadAndConvert(ctx context.Context, jobID, bucket string, params FetchParams, c candidate) (*catalogmodel.GoesFrame, error) {
	if err := p.checkFreeDisk(); err != nil {
		return nil, err
	}

	tmpFile, err := os.CreateTemp("", "goescat-*.nc")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer os.Remove(tmpPath)

	body, err := p.ObjectStore.Get(ctx, bucket, c.key)
	if err != nil {
		tmpFile.Close()
		return nil, fmt.Errorf("download %s: %w", c.key, err)
	}
	n, err := io.Copy(tmpFile, body)
	body.Close()
	tmpFile.Close()
	if err != nil {
		return nil, fmt.Errorf("write temp file for %s: %w", c.key, err)
	}
	metrics.BytesDownloadedTotal.Add(float64(n))

	grid, err := netcdf.Decode(tmpPath)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", c.key, err)
	}

	outDir := filepath.Join(p.StorageRoot, "output", fmt.Sprintf("goes_%s", jobID))
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, err
	}
	thumbDir := filepath.Join(p.StorageRoot, "thumbnails")
	if err := os.MkdirAll(thumbDir, 0o755); err != nil {
		return nil, err
	}

	frameID := uuid.NewString()
	fileName := fmt.Sprintf("%s_%s_%s_%s.png", params.Satellite, params.Sector, params.Band, c.scanStart.Format("20060102T150405Z"))
	outPath := filepath.Join(outDir, fileName)

	out, err := os.Create(outPath)
	if err != nil {
		return nil, err
	}
	if err := RenderGrayscalePNG(out, grid); err != nil {
		out.Close()
		return nil, err
	}
	out.Close()

	thumbPath := filepath.Join(thumbDir, fileName)
	if err := writeThumbnail(outPath, thumbPath); err != nil {
		log.WithJobID(jobID).Warn().Err(err).Msg("thumbnail generation failed, continuing without one")
		thumbPath = ""
	}

	info, err := os.Stat(outPath)
	if err != nil {
		return nil, err
	}

	return &catalogmodel.GoesFrame{
		ID:            frameID,
		Satellite:     params.Satellite,
		Sector:        params.Sector,
		Band:          params.Band,
		CaptureTime:   c.scanStart,
		FilePath:      outPath,
		FileSize:      info.Size(),
		Width:         grid.Width,
		Height:        grid.Height,
		ThumbnailPath: thumbPath,
		SourceJobID:   jobID,
		CreatedAt:     time.Now().UTC(),
	}, nil
}

const thumbnailMaxDim = 256

func writeThumbnail(srcPath, dstPath string) error {
	src, err := os.Open(srcPath)
	if err != nil {
		return err
	}
	defer src.Close()
	img, err := png.Decode(src)
	if err != nil {
		return err
	}

	b := img.Bounds()
	scale := 1.0
	if b.Dx() > thumbnailMaxDim || b.Dy() > thumbnailMaxDim {
		scale = float64(thumbnailMaxDim) / float64(maxInt(b.Dx(), b.Dy()))
	}
	dstW, dstH := int(float64(b.Dx())*scale), int(float64(b.Dy())*scale)
	if dstW < 1 {
		dstW = 1
	}
	if dstH < 1 {
		dstH = 1
	}

	dst := image.NewGray(image.Rect(0, 0, dstW, dstH))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)

	out, err := os.Create(dstPath)
	if err != nil {
		return err
	}
	defer out.Close()
	return png.Encode(out, dst)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func (p *Pipeline) checkFreeDisk() error {
	minBytes := p.MinFreeBytes
	if minBytes == 0 {
		minBytes = minFreeBytesDefault
	}
	return checkFreeDisk(p.StorageRoot, minBytes)
}
