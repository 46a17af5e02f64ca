package jobrun

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/goesarchive/goescat/pkg/catalogmodel"
)

// Dispatch inserts a pending Job row and enqueues it for the worker pool
// (§4.4 "Lifecycle"). It returns the created job.
func (r *Runner) Dispatch(ctx context.Context, jobType catalogmodel.JobType, params map[string]interface{}) (*catalogmodel.Job, error) {
	now := time.Now()
	job := &catalogmodel.Job{
		ID:        uuid.NewString(),
		Type:      jobType,
		Status:    catalogmodel.JobStatusPending,
		Params:    params,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := r.Store.CreateJob(ctx, job); err != nil {
		return nil, err
	}
	if _, err := r.Broker.Enqueue(ctx, job.ID); err != nil {
		return nil, err
	}
	return job, nil
}
