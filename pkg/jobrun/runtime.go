package jobrun

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/goesarchive/goescat/pkg/catalog"
	"github.com/goesarchive/goescat/pkg/catalogmodel"
	"github.com/goesarchive/goescat/pkg/events"
	"github.com/goesarchive/goescat/pkg/jobqueue"
	"github.com/goesarchive/goescat/pkg/log"
	"github.com/goesarchive/goescat/pkg/metrics"
)

// SoftTimeLimit and HardTimeLimit are the per-task limits from §4.4. Soft
// is a cooperative cancellation signal (ctx is cancelled so handlers
// observing ctx.Err() at checkpoints stop); hard is enforced by the
// supervisor goroutine abandoning the task's result.
const (
	SoftTimeLimit = 30 * time.Minute
	HardTimeLimit = 60 * time.Minute
)

// progressThrottleDelta is the minimum percentage-point change required
// before a non-terminal progress write reaches the database (§4.4).
const progressThrottleDelta = 5

// ReportFunc lets a Handler push progress; implementations forward to
// both the durable and ephemeral channels per §4.4.
type ReportFunc func(progress int, message string)

// Handler executes the body of one job type. It should report progress
// via report and periodically check ctx for the soft-timeout
// cancellation signal. Returning an error marks the job failed with that
// error's message; returning a terminal status lets handlers distinguish
// completed from completed_partial.
type Handler func(ctx context.Context, job *catalogmodel.Job, report ReportFunc) (status catalogmodel.JobStatus, message string, err error)

// Runner is the worker-pool dispatcher: it owns one Dequeue loop per
// concurrency slot, each pulling one task at a time (prefetch-one, §4.4).
type Runner struct {
	Store     catalog.Store
	Broker    *jobqueue.Broker
	Publisher *events.Publisher

	Concurrency int

	handlers map[catalogmodel.JobType]Handler

	throttleMu sync.Mutex
	lastSaved  map[string]int

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// NewRunner builds a Runner with the given concurrency (number of
// parallel worker slots, each prefetching at most one task).
func NewRunner(store catalog.Store, broker *jobqueue.Broker, publisher *events.Publisher, concurrency int) *Runner {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Runner{
		Store:       store,
		Broker:      broker,
		Publisher:   publisher,
		Concurrency: concurrency,
		handlers:    make(map[catalogmodel.JobType]Handler),
		lastSaved:   make(map[string]int),
		stopCh:      make(chan struct{}),
	}
}

// Register binds a Handler to a job type. Call before Start.
func (r *Runner) Register(jobType catalogmodel.JobType, h Handler) {
	r.handlers[jobType] = h
}

// Start launches Concurrency worker loops, each calling Dequeue in a
// blocking poll with a short timeout so stopCh is checked regularly.
func (r *Runner) Start() {
	for i := 0; i < r.Concurrency; i++ {
		r.wg.Add(1)
		go r.workerLoop(i)
	}
}

// Stop signals all worker loops to exit after their current task and
// waits for them to drain.
func (r *Runner) Stop() {
	close(r.stopCh)
	r.wg.Wait()
}

func (r *Runner) workerLoop(slot int) {
	defer r.wg.Done()
	logger := log.WithComponent(fmt.Sprintf("jobrun.worker[%d]", slot))
	for {
		select {
		case <-r.stopCh:
			return
		default:
		}

		task, err := r.Broker.Dequeue(context.Background(), 5*time.Second)
		if err != nil {
			logger.Warn().Err(err).Msg("dequeue failed")
			time.Sleep(time.Second)
			continue
		}
		if task == nil {
			continue
		}
		r.runTask(task)
	}
}

func (r *Runner) runTask(task *jobqueue.Task) {
	ctx := context.Background()
	logger := log.WithJobID(task.JobID)

	job, err := r.Store.GetJob(ctx, task.JobID)
	if err != nil {
		logger.Error().Err(err).Msg("job not found for task, dropping")
		r.Broker.Ack(ctx, task)
		return
	}
	if job.Status.Terminal() {
		// Cancelled/deleted out from under a dequeued task: ack and move on.
		r.Broker.Ack(ctx, task)
		return
	}

	handler, ok := r.handlers[job.Type]
	if !ok {
		job.Status = catalogmodel.JobStatusFailed
		job.Error = fmt.Sprintf("no handler registered for job type %q", job.Type)
		r.finish(ctx, job, task)
		return
	}

	now := time.Now()
	job.Status = catalogmodel.JobStatusProcessing
	job.StartedAt = &now
	job.TaskID = task.ID
	if err := r.Store.UpdateJob(ctx, job); err != nil {
		logger.Error().Err(err).Msg("failed to mark job processing")
	}

	taskCtx, cancel := context.WithTimeout(ctx, SoftTimeLimit)
	defer cancel()

	resultCh := make(chan handlerResult, 1)
	go func() {
		defer func() {
			if p := recover(); p != nil {
				resultCh <- handlerResult{status: catalogmodel.JobStatusFailed, message: fmt.Sprintf("panic: %v", p)}
			}
		}()
		status, message, err := handler(taskCtx, job, r.reportFunc(ctx, job.ID))
		if err != nil {
			resultCh <- handlerResult{status: catalogmodel.JobStatusFailed, message: err.Error()}
			return
		}
		resultCh <- handlerResult{status: status, message: message}
	}()

	var res handlerResult
	select {
	case res = <-resultCh:
	case <-time.After(HardTimeLimit):
		res = handlerResult{status: catalogmodel.JobStatusFailed, message: "job exceeded hard time limit"}
	}

	job.Status = res.status
	if res.status == catalogmodel.JobStatusFailed {
		job.Error = res.message
	}
	job.StatusMessage = res.message
	if res.status != catalogmodel.JobStatusFailed && res.status != catalogmodel.JobStatusCancelled {
		job.Progress = 100
	}
	r.finish(ctx, job, task)
}

type handlerResult struct {
	status  catalogmodel.JobStatus
	message string
}

func (r *Runner) finish(ctx context.Context, job *catalogmodel.Job, task *jobqueue.Task) {
	logger := log.WithJobID(job.ID)
	now := time.Now()
	job.CompletedAt = &now
	job.UpdatedAt = now

	if err := r.Store.UpdateJob(ctx, job); err != nil {
		logger.Error().Err(err).Msg("failed to persist terminal job status")
	}
	r.clearThrottle(job.ID)

	metrics.JobsTotal.WithLabelValues(string(job.Type), string(job.Status)).Inc()

	if r.Publisher != nil {
		r.Publisher.PublishProgress(ctx, events.ProgressMessage{
			JobID: job.ID, Progress: job.Progress, Message: job.StatusMessage, Status: string(job.Status),
		})
		r.Publisher.PublishTerminal(ctx, events.TerminalMessage{
			Type: "job_" + string(job.Status), JobID: job.ID, Message: job.StatusMessage,
		})
	}

	if job.Status != catalogmodel.JobStatusFailed && job.Status != catalogmodel.JobStatusCancelled {
		if err := r.Broker.Ack(ctx, task); err != nil {
			logger.Debug().Err(err).Msg("ack failed")
		}
		return
	}
	deadLettered, err := r.Broker.Nack(ctx, task)
	if err != nil {
		logger.Debug().Err(err).Msg("nack failed")
	}
	if deadLettered {
		logger.Warn().Msg("task dead-lettered after max attempts")
	}
}

// reportFunc returns a ReportFunc bound to jobID implementing the
// throttled-durable plus always-fire-ephemeral publishing split (§4.4).
func (r *Runner) reportFunc(ctx context.Context, jobID string) ReportFunc {
	return func(progress int, message string) {
		if progress < 0 {
			progress = 0
		}
		if progress > 100 {
			progress = 100
		}

		if r.shouldPersist(jobID, progress) {
			if err := r.Store.UpdateJobProgress(ctx, jobID, progress, message); err != nil {
				log.WithJobID(jobID).Debug().Err(err).Msg("progress write failed")
			}
		}

		if r.Publisher != nil {
			r.Publisher.PublishProgress(ctx, events.ProgressMessage{
				JobID: jobID, Progress: progress, Message: message, Status: string(catalogmodel.JobStatusProcessing),
			})
		}
	}
}

func (r *Runner) shouldPersist(jobID string, progress int) bool {
	r.throttleMu.Lock()
	defer r.throttleMu.Unlock()

	last, ok := r.lastSaved[jobID]
	if !ok || progress >= 100 || abs(progress-last) >= progressThrottleDelta {
		r.lastSaved[jobID] = progress
		return true
	}
	return false
}

func (r *Runner) clearThrottle(jobID string) {
	r.throttleMu.Lock()
	defer r.throttleMu.Unlock()
	delete(r.lastSaved, jobID)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
