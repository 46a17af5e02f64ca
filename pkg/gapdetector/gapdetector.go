// Package gapdetector is the C9 component: find capture-time gaps in an
// ordered sequence of frames for one (satellite, sector, band).
package gapdetector

import (
	"context"
	"time"

	"github.com/goesarchive/goescat/pkg/catalog"
	"github.com/goesarchive/goescat/pkg/catalogmodel"
)

// defaultTolerance is the multiplier applied to expected_interval before a
// delta counts as a gap (§4.9).
const defaultTolerance = 1.5

// Gap is one detected interval of missing frames.
type Gap struct {
	Start           time.Time `json:"start"`
	End             time.Time `json:"end"`
	DurationMinutes float64   `json:"duration_minutes"`
	ExpectedFrames  int       `json:"expected_frames"`
}

// Report is the return shape of Detect (§4.9).
type Report struct {
	CoveragePercent float64   `json:"coverage_percent"`
	GapCount        int       `json:"gap_count"`
	TotalFrames     int       `json:"total_frames"`
	ExpectedFrames  int       `json:"expected_frames"`
	TimeRange       [2]time.Time `json:"time_range"`
	Gaps            []Gap     `json:"gaps"`
}

// Filter narrows the capture_time sequence Detect analyzes.
type Filter struct {
	Satellite               *catalogmodel.Satellite
	Sector                  *catalogmodel.Sector
	Band                    *catalogmodel.Band
	ExpectedIntervalMinutes float64
}

// Detect fetches capture times for filter and slides a 2-wide window over
// them computing gaps (§4.9). Empty or single-frame inputs yield zero
// gaps and 0% coverage.
func Detect(ctx context.Context, store catalog.Store, filter Filter) (Report, error) {
	times, err := store.ListCaptureTimes(ctx, filter.Satellite, filter.Sector, filter.Band)
	if err != nil {
		return Report{}, err
	}
	return DetectFromTimes(times, filter.ExpectedIntervalMinutes), nil
}

// DetectFromTimes runs the sliding-window analysis over an already
// ascending-sorted slice of capture times (exported so tests and callers
// that already hold the times skip the store round-trip; pkg/ingestion's
// backfill goes through Detect).
func DetectFromTimes(times []time.Time, expectedIntervalMinutes float64) Report {
	if len(times) < 2 {
		return Report{TotalFrames: len(times)}
	}

	var gaps []Gap
	var gapMinutes float64
	expectedTotal := 0
	for i := 1; i < len(times); i++ {
		delta := times[i].Sub(times[i-1]).Minutes()
		if delta > expectedIntervalMinutes*defaultTolerance {
			expected := int(delta/expectedIntervalMinutes) - 1
			if expected < 1 {
				expected = 1
			}
			gaps = append(gaps, Gap{
				Start:           times[i-1],
				End:             times[i],
				DurationMinutes: delta,
				ExpectedFrames:  expected,
			})
			gapMinutes += delta
			expectedTotal += expected
		}
	}

	totalSpan := times[len(times)-1].Sub(times[0]).Minutes()
	coverage := 100.0
	if totalSpan > 0 {
		coverage = (totalSpan - gapMinutes) / totalSpan * 100
	}
	coverage = clamp(coverage, 0, 100)

	return Report{
		CoveragePercent: coverage,
		GapCount:        len(gaps),
		TotalFrames:     len(times),
		ExpectedFrames:  expectedTotal,
		TimeRange:       [2]time.Time{times[0], times[len(times)-1]},
		Gaps:            gaps,
	}
}

func clamp(v, lo, hi float64) float64 {
	switch {
	case v < lo:
		return lo
	case v > hi:
		return hi
	default:
		return v
	}
}
