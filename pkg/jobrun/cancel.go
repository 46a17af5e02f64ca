package jobrun

import (
	"context"
	"time"

	"github.com/zeebo/errs"

	"github.com/goesarchive/goescat/pkg/catalogmodel"
	"github.com/goesarchive/goescat/pkg/events"
	"github.com/goesarchive/goescat/pkg/log"
)

// Class groups this package's errors (§10.2).
var Class = errs.Class("jobrun")

// ErrTerminal is returned by Cancel for a job that already reached a
// terminal status; callers (pkg/httpapi) map it to a 400-class response
// (§4.4).
var ErrTerminal = Class.New("job already in a terminal state")

// Cancel revokes the task at the broker (best-effort) then marks the job
// cancelled, rejecting jobs already in a terminal state (§4.4).
func (r *Runner) Cancel(ctx context.Context, jobID string) error {
	job, err := r.Store.GetJob(ctx, jobID)
	if err != nil {
		return err
	}
	if job.Status.Terminal() {
		return ErrTerminal
	}

	if job.TaskID != "" {
		if err := r.Broker.Revoke(ctx, job.TaskID); err != nil {
			// Best-effort per §4.4: the task may already be past the point of
			// observing the revoke signal.
			log.WithJobID(jobID).Debug().Err(err).Msg("revoke failed")
		}
	}

	now := time.Now()
	job.Status = catalogmodel.JobStatusCancelled
	job.CompletedAt = &now
	job.StatusMessage = "Cancelled by user request"
	if err := r.Store.UpdateJob(ctx, job); err != nil {
		return err
	}
	r.clearThrottle(jobID)

	if r.Publisher != nil {
		r.Publisher.PublishTerminal(ctx, events.TerminalMessage{
			Type: "job_cancelled", JobID: jobID, Message: job.StatusMessage,
		})
	}
	return nil
}
