// Package beat is the C5 scheduler: a single-instance process that wakes
// at fixed frequencies to enqueue goes_fetch jobs for due FetchSchedules
// and periodic cleanup jobs (§4.5).
//
// Its tick loops reuse the ticker/stopCh shape pkg/jobrun borrows from
// cuemby-warren's pkg/worker background loops; beat adds no new
// concurrency pattern, only two different tick intervals.
package beat
