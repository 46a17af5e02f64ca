package catalogmodel

import (
	"errors"
	"time"
)

// JobType identifies the kind of work a Job performs.
type JobType string

const (
	JobTypeGoesFetch         JobType = "goes_fetch"
	JobTypeGoesBackfill      JobType = "goes_backfill"
	JobTypeCompositeFetch    JobType = "composite_fetch"
	JobTypeCompositeGenerate JobType = "composite_generate"
	JobTypeAnimation         JobType = "animation"
	JobTypeImageProcess      JobType = "image_process"
	JobTypeCleanup           JobType = "cleanup"
)

// JobStatus is the lifecycle state of a Job.
type JobStatus string

const (
	JobStatusPending            JobStatus = "pending"
	JobStatusProcessing         JobStatus = "processing"
	JobStatusCompleted          JobStatus = "completed"
	JobStatusCompletedPartial   JobStatus = "completed_partial"
	JobStatusFailed             JobStatus = "failed"
	JobStatusCancelled          JobStatus = "cancelled"
)

// Terminal reports whether s is one of the four terminal statuses. Terminal
// jobs must carry a non-nil CompletedAt (see Job.Validate).
func (s JobStatus) Terminal() bool {
	switch s {
	case JobStatusCompleted, JobStatusCompletedPartial, JobStatusFailed, JobStatusCancelled:
		return true
	default:
		return false
	}
}

// Job is the unit of asynchronous work (§3, §4.4).
type Job struct {
	ID             string                 `json:"id"`
	Type           JobType                `json:"type"`
	Status         JobStatus              `json:"status"`
	Params         map[string]interface{} `json:"params,omitempty"`
	Progress       int                    `json:"progress"`
	StatusMessage  string                 `json:"status_message,omitempty"`
	Error          string                 `json:"error,omitempty"`
	TaskID         string                 `json:"task_id,omitempty"`
	InputPath      string                 `json:"input_path,omitempty"`
	OutputPath     string                 `json:"output_path,omitempty"`
	CreatedAt      time.Time              `json:"created_at"`
	StartedAt      *time.Time             `json:"started_at,omitempty"`
	CompletedAt    *time.Time             `json:"completed_at,omitempty"`
	UpdatedAt      time.Time              `json:"updated_at"`
}

// Validate checks the invariants from §3: terminal states carry
// CompletedAt, and progress stays within [0,100].
func (j *Job) Validate() error {
	if j.Progress < 0 || j.Progress > 100 {
		return errors.New("job.progress must be within [0,100]")
	}
	if j.Status.Terminal() && j.CompletedAt == nil {
		return errors.New("terminal job must have completed_at set")
	}
	return nil
}

// JobLog is one append-only log line for a Job (§3).
type JobLog struct {
	ID        int64     `json:"id"`
	JobID     string    `json:"job_id"`
	Level     string    `json:"level"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}
