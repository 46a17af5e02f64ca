package gapdetector

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDetectFromTimes_NoGaps(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	times := []time.Time{base, base.Add(10 * time.Minute), base.Add(20 * time.Minute)}
	r := DetectFromTimes(times, 10)
	assert.Equal(t, 0, r.GapCount)
	assert.InDelta(t, 100, r.CoveragePercent, 0.01)
}

func TestDetectFromTimes_OneGap(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	times := []time.Time{base, base.Add(10 * time.Minute), base.Add(60 * time.Minute)}
	r := DetectFromTimes(times, 10)
	assert.Equal(t, 1, r.GapCount)
	assert.Equal(t, 4, r.Gaps[0].ExpectedFrames) // floor(50/10) - 1 = 4
	assert.True(t, r.CoveragePercent < 100)
}

func TestDetectFromTimes_EmptyOrSingle(t *testing.T) {
	assert.Equal(t, Report{TotalFrames: 0}, DetectFromTimes(nil, 10))
	now := time.Now()
	assert.Equal(t, Report{TotalFrames: 1}, DetectFromTimes([]time.Time{now}, 10))
}
