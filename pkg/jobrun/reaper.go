package jobrun

import (
	"context"
	"time"

	"github.com/goesarchive/goescat/pkg/catalogmodel"
	"github.com/goesarchive/goescat/pkg/events"
	"github.com/goesarchive/goescat/pkg/log"
)

const (
	staleProcessingTimeout = 30 * time.Minute
	stalePendingTimeout    = time.Hour
)

// ReapStale marks jobs stuck in processing (updated_at/started_at older
// than 30 minutes) and jobs stuck pending with no task_id (older than 1
// hour) as failed (§4.4). Its only caller is the POST
// /api/jobs/cleanup-stale handler; no binary runs it on startup.
func (r *Runner) ReapStale(ctx context.Context) (int, error) {
	logger := log.WithComponent("jobrun.reaper")
	n := 0

	processing, err := r.Store.ListStaleProcessingJobs(ctx, staleProcessingTimeout)
	if err != nil {
		return n, err
	}
	for _, job := range processing {
		if err := r.failStale(ctx, job, "Job timed out — worker may have crashed"); err != nil {
			logger.Warn().Err(err).Str("job_id", job.ID).Msg("failed to reap stale processing job")
			continue
		}
		n++
	}

	pending, err := r.Store.ListStalePendingJobs(ctx, stalePendingTimeout)
	if err != nil {
		return n, err
	}
	for _, job := range pending {
		if err := r.failStale(ctx, job, "Job timed out — worker may have crashed"); err != nil {
			logger.Warn().Err(err).Str("job_id", job.ID).Msg("failed to reap stale pending job")
			continue
		}
		n++
	}

	return n, nil
}

func (r *Runner) failStale(ctx context.Context, job *catalogmodel.Job, message string) error {
	now := time.Now()
	job.Status = catalogmodel.JobStatusFailed
	job.Error = message
	job.StatusMessage = message
	job.CompletedAt = &now
	if err := r.Store.UpdateJob(ctx, job); err != nil {
		return err
	}
	r.clearThrottle(job.ID)
	if r.Publisher != nil {
		r.Publisher.PublishTerminal(ctx, events.TerminalMessage{
			Type: "job_failed", JobID: job.ID, Message: message,
		})
	}
	return nil
}

// ReaperLoop runs ReapStale every interval until ctx is cancelled. No
// binary in this repository (api, worker or beat) starts it.
func (r *Runner) ReaperLoop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	logger := log.WithComponent("jobrun.reaper")
	for {
		select {
		case <-ticker.C:
			if n, err := r.ReapStale(ctx); err != nil {
				logger.Warn().Err(err).Msg("reap pass failed")
			} else if n > 0 {
				logger.Info().Int("reaped", n).Msg("reaped stale jobs")
			}
		case <-ctx.Done():
			return
		}
	}
}
