package retention

import (
	"context"
	"os"
	"time"

	"github.com/goesarchive/goescat/pkg/catalog"
	"github.com/goesarchive/goescat/pkg/catalogmodel"
	"github.com/goesarchive/goescat/pkg/log"
)

// bytesPerGB is 2^30, the unit §4.6's max_storage_gb rule is specified
// in.
const bytesPerGB = 1 << 30

// maxPreviewSamples caps Preview's sample list (§4.6).
const maxPreviewSamples = 100

// Engine computes and applies retention decisions for the active
// CleanupRule set (§4.6).
type Engine struct {
	Store catalog.Store
}

// NewEngine builds an Engine bound to store.
func NewEngine(store catalog.Store) *Engine {
	return &Engine{Store: store}
}

// PreviewResult is the read-only summary returned by Preview.
type PreviewResult struct {
	FrameCount     int      `json:"frame_count"`
	TotalSizeBytes int64    `json:"total_size_bytes"`
	Frames         []string `json:"frames"`
}

// RunResult is the mutation summary returned by Run.
type RunResult struct {
	DeletedFrames int   `json:"deleted_frames"`
	FreedBytes    int64 `json:"freed_bytes"`
}

// Preview computes the candidate frame id set without mutating state
// (§4.6).
func (e *Engine) Preview(ctx context.Context) (PreviewResult, error) {
	ids, err := e.candidateIDs(ctx)
	if err != nil {
		return PreviewResult{}, err
	}

	var total int64
	samples := make([]string, 0, maxPreviewSamples)
	for i, id := range ids {
		frame, err := e.Store.GetFrame(ctx, id)
		if err != nil {
			continue
		}
		total += frame.FileSize
		if i < maxPreviewSamples {
			samples = append(samples, id)
		}
	}

	return PreviewResult{FrameCount: len(ids), TotalSizeBytes: total, Frames: samples}, nil
}

// Run deletes the on-disk file and thumbnail for each selected frame
// (best-effort, missing files ignored), removes the row, and returns
// deletion counts (§4.6).
func (e *Engine) Run(ctx context.Context) (RunResult, error) {
	logger := log.WithComponent("retention")
	ids, err := e.candidateIDs(ctx)
	if err != nil {
		return RunResult{}, err
	}

	var res RunResult
	for _, id := range ids {
		frame, err := e.Store.GetFrame(ctx, id)
		if err != nil {
			logger.Warn().Err(err).Str("frame_id", id).Msg("frame disappeared before deletion, skipping")
			continue
		}

		if frame.FilePath != "" {
			if err := os.Remove(frame.FilePath); err != nil && !os.IsNotExist(err) {
				logger.Warn().Err(err).Str("frame_id", id).Msg("failed to remove frame file")
			}
		}
		if frame.ThumbnailPath != "" {
			if err := os.Remove(frame.ThumbnailPath); err != nil && !os.IsNotExist(err) {
				logger.Warn().Err(err).Str("frame_id", id).Msg("failed to remove thumbnail")
			}
		}

		if err := e.Store.DeleteFrame(ctx, id); err != nil {
			logger.Warn().Err(err).Str("frame_id", id).Msg("failed to delete frame row")
			continue
		}
		res.DeletedFrames++
		res.FreedBytes += frame.FileSize
	}

	return res, nil
}

// candidateIDs unions the per-rule id sets across all active
// CleanupRules (§4.6).
func (e *Engine) candidateIDs(ctx context.Context) ([]string, error) {
	rules, err := e.Store.ListActiveCleanupRules(ctx)
	if err != nil {
		return nil, err
	}

	union := make(map[string]bool)
	for _, rule := range rules {
		ids, err := e.ruleCandidates(ctx, rule)
		if err != nil {
			return nil, err
		}
		for _, id := range ids {
			union[id] = true
		}
	}

	out := make([]string, 0, len(union))
	for id := range union {
		out = append(out, id)
	}
	return out, nil
}

func (e *Engine) ruleCandidates(ctx context.Context, rule *catalogmodel.CleanupRule) ([]string, error) {
	switch rule.RuleType {
	case catalogmodel.CleanupRuleMaxAgeDays:
		return e.maxAgeCandidates(ctx, rule.Value, rule.ProtectCollections)
	case catalogmodel.CleanupRuleMaxStorageGB:
		return e.maxStorageCandidates(ctx, rule.Value, rule.ProtectCollections)
	default:
		return nil, nil
	}
}

func (e *Engine) maxAgeCandidates(ctx context.Context, ageDays float64, excludeProtected bool) ([]string, error) {
	cutoff := time.Now().Add(-time.Duration(ageDays*24) * time.Hour)
	return e.Store.ListFrameIDsForRetention(ctx, cutoff, excludeProtected)
}

func (e *Engine) maxStorageCandidates(ctx context.Context, budgetGB float64, excludeProtected bool) ([]string, error) {
	total, err := e.Store.TotalFrameBytes(ctx)
	if err != nil {
		return nil, err
	}
	budgetBytes := int64(budgetGB * bytesPerGB)
	excess := total - budgetBytes
	if excess <= 0 {
		return nil, nil
	}

	ordered, err := e.Store.ListAllFrameIDsOrderedByAge(ctx, excludeProtected)
	if err != nil {
		return nil, err
	}

	var selected []string
	var freed int64
	for _, id := range ordered {
		frame, err := e.Store.GetFrame(ctx, id)
		if err != nil {
			continue
		}
		selected = append(selected, id)
		freed += frame.FileSize
		if freed >= excess {
			break
		}
	}
	return selected, nil
}
