package ingestion

import (
	"context"
	"fmt"

	"github.com/goesarchive/goescat/pkg/catalogmodel"
	"github.com/goesarchive/goescat/pkg/gapdetector"
	"github.com/goesarchive/goescat/pkg/log"
)

// BackfillParams is the (satellite, band, sector, expected_interval_minutes)
// input to RunBackfill (§4.3 backfill variant).
type BackfillParams struct {
	Satellite               catalogmodel.Satellite
	Sector                  catalogmodel.Sector
	Band                    catalogmodel.Band
	ExpectedIntervalMinutes float64
}

// BackfillResult aggregates the per-gap Results from RunBackfill.
type BackfillResult struct {
	GapsProcessed int
	PerGap        []Result
}

// RunBackfill detects gaps in existing frames then runs the forward
// pipeline over each gap window; a failure in one gap does not abort the
// others (§4.3 backfill variant).
func (p *Pipeline) RunBackfill(ctx context.Context, jobID string, params BackfillParams, maxFramesPerFetch int, report ProgressFunc) (BackfillResult, error) {
	logger := log.WithJobID(jobID)

	sat, sector, band := params.Satellite, params.Sector, params.Band
	gaps, err := gapdetector.Detect(ctx, p.Store, gapdetector.Filter{
		Satellite:               &sat,
		Sector:                  &sector,
		Band:                    &band,
		ExpectedIntervalMinutes: params.ExpectedIntervalMinutes,
	})
	if err != nil {
		return BackfillResult{}, fmt.Errorf("detect gaps: %w", err)
	}

	var out BackfillResult
	for i, g := range gaps.Gaps {
		report(int(float64(i)/float64(max(len(gaps.Gaps), 1))*100), fmt.Sprintf("Backfilling gap %d/%d", i+1, len(gaps.Gaps)))

		res, err := p.Run(ctx, jobID, FetchParams{
			Satellite: params.Satellite,
			Sector:    params.Sector,
			Band:      params.Band,
			Start:     g.Start,
			End:       g.End,
		}, maxFramesPerFetch, func(int, string) {})
		if err != nil {
			logger.Warn().Err(err).Time("gap_start", g.Start).Msg("backfill gap failed, continuing with remaining gaps")
			continue
		}
		out.PerGap = append(out.PerGap, res)
		out.GapsProcessed++
	}
	return out, nil
}
