package beat

import (
	"context"
	"fmt"
	"time"

	"github.com/goesarchive/goescat/pkg/catalog"
	"github.com/goesarchive/goescat/pkg/catalogmodel"
	"github.com/goesarchive/goescat/pkg/jobrun"
	"github.com/goesarchive/goescat/pkg/log"
)

// ScheduleTickInterval and CleanupTickInterval are the two beat
// frequencies from §4.5.
const (
	ScheduleTickInterval = 60 * time.Second
	CleanupTickInterval  = 3600 * time.Second
)

// Scheduler drives tick_schedules and tick_cleanup (§4.5). It is a thin
// layer over pkg/catalog.Store and pkg/jobrun.Runner: beat never touches
// the broker directly, it goes through Runner.Dispatch like any other job
// producer.
type Scheduler struct {
	Store  catalog.Store
	Runner *jobrun.Runner

	stopCh chan struct{}
}

// NewScheduler builds a Scheduler bound to store and runner.
func NewScheduler(store catalog.Store, runner *jobrun.Runner) *Scheduler {
	return &Scheduler{Store: store, Runner: runner, stopCh: make(chan struct{})}
}

// Run blocks, ticking tick_schedules every ScheduleTickInterval and
// tick_cleanup every CleanupTickInterval, until ctx is cancelled or Stop
// is called.
func (s *Scheduler) Run(ctx context.Context) {
	logger := log.WithComponent("beat")
	scheduleTicker := time.NewTicker(ScheduleTickInterval)
	cleanupTicker := time.NewTicker(CleanupTickInterval)
	defer scheduleTicker.Stop()
	defer cleanupTicker.Stop()

	for {
		select {
		case <-scheduleTicker.C:
			if err := s.tickSchedules(ctx); err != nil {
				logger.Warn().Err(err).Msg("tick_schedules failed")
			}
		case <-cleanupTicker.C:
			if err := s.tickCleanup(ctx); err != nil {
				logger.Warn().Err(err).Msg("tick_cleanup failed")
			}
		case <-s.stopCh:
			return
		case <-ctx.Done():
			return
		}
	}
}

// Stop ends the Run loop.
func (s *Scheduler) Stop() {
	close(s.stopCh)
}

// tickSchedules enqueues a goes_fetch job for every due FetchSchedule and
// advances its last_run_at/next_run_at (§4.5). Missed ticks are not
// coalesced: a schedule with next_run_at far in the past still produces
// exactly one job this tick.
func (s *Scheduler) tickSchedules(ctx context.Context) error {
	now := time.Now()
	due, err := s.Store.ListDueFetchSchedules(ctx, now)
	if err != nil {
		return err
	}

	logger := log.WithComponent("beat")
	for _, sched := range due {
		preset, err := s.Store.GetFetchPreset(ctx, sched.PresetID)
		if err != nil {
			logger.Warn().Err(err).Str("schedule_id", sched.ID).Msg("schedule preset not found, skipping")
			continue
		}

		window := time.Duration(sched.IntervalMinutes) * time.Minute
		params := map[string]interface{}{
			"satellite":   string(preset.Satellite),
			"sector":      string(preset.Sector),
			"band":        string(preset.Band),
			"start":       now.Add(-window).Format(time.RFC3339),
			"end":         now.Format(time.RFC3339),
			"preset_id":   preset.ID,
			"schedule_id": sched.ID,
		}

		job, err := s.Runner.Dispatch(ctx, catalogmodel.JobTypeGoesFetch, params)
		if err != nil {
			logger.Warn().Err(err).Str("schedule_id", sched.ID).Msg("failed to dispatch scheduled fetch")
			continue
		}
		logger.Info().Str("schedule_id", sched.ID).Str("job_id", job.ID).Msg("dispatched scheduled fetch")

		nextRun := now.Add(window)
		if err := s.Store.UpdateFetchScheduleRun(ctx, sched.ID, now, nextRun); err != nil {
			logger.Warn().Err(err).Str("schedule_id", sched.ID).Msg("failed to advance schedule")
		}
	}
	return nil
}

// tickCleanup enqueues a single cleanup job (§4.5, §4.6).
func (s *Scheduler) tickCleanup(ctx context.Context) error {
	job, err := s.Runner.Dispatch(ctx, catalogmodel.JobTypeCleanup, nil)
	if err != nil {
		return fmt.Errorf("dispatch cleanup job: %w", err)
	}
	log.WithComponent("beat").Info().Str("job_id", job.ID).Msg("dispatched periodic cleanup")
	return nil
}
