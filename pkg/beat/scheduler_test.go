package beat

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"

	"github.com/goesarchive/goescat/pkg/catalog"
	"github.com/goesarchive/goescat/pkg/catalogmodel"
	"github.com/goesarchive/goescat/pkg/jobqueue"
	"github.com/goesarchive/goescat/pkg/jobrun"
)

// fakeStore embeds catalog.Store so only the methods tickSchedules and
// tickCleanup actually touch need overriding; any other call panics,
// which is fine for a test double scoped to this package.
type fakeStore struct {
	catalog.Store

	due           []*catalogmodel.FetchSchedule
	preset        *catalogmodel.FetchPreset
	createdJobs   []*catalogmodel.Job
	advancedCalls int
}

func (f *fakeStore) ListDueFetchSchedules(ctx context.Context, now time.Time) ([]*catalogmodel.FetchSchedule, error) {
	return f.due, nil
}

func (f *fakeStore) GetFetchPreset(ctx context.Context, id string) (*catalogmodel.FetchPreset, error) {
	return f.preset, nil
}

func (f *fakeStore) UpdateFetchScheduleRun(ctx context.Context, id string, lastRunAt, nextRunAt time.Time) error {
	f.advancedCalls++
	return nil
}

func (f *fakeStore) CreateJob(ctx context.Context, job *catalogmodel.Job) error {
	f.createdJobs = append(f.createdJobs, job)
	return nil
}

func newTestScheduler(t *testing.T, store *fakeStore) *Scheduler {
	t.Helper()
	mr := miniredis.RunT(t)
	broker, err := jobqueue.NewBroker("redis://" + mr.Addr())
	require.NoError(t, err)
	runner := jobrun.NewRunner(store, broker, nil, 1)
	return NewScheduler(store, runner)
}

func TestTickSchedules_DispatchesDueSchedule(t *testing.T) {
	now := time.Now()
	schedID := "sched-1"
	store := &fakeStore{
		due: []*catalogmodel.FetchSchedule{{
			ID: schedID, PresetID: "preset-1", IntervalMinutes: 10,
			IsActive: true, NextRunAt: &now,
		}},
		preset: &catalogmodel.FetchPreset{
			ID: "preset-1", Satellite: catalogmodel.SatelliteGOES16,
			Sector: catalogmodel.SectorCONUS, Band: catalogmodel.Band("C02"),
		},
	}
	s := newTestScheduler(t, store)

	require.NoError(t, s.tickSchedules(context.Background()))

	require.Len(t, store.createdJobs, 1)
	require.Equal(t, catalogmodel.JobTypeGoesFetch, store.createdJobs[0].Type)
	require.Equal(t, "preset-1", store.createdJobs[0].Params["preset_id"])
	require.Equal(t, schedID, store.createdJobs[0].Params["schedule_id"])
	require.Equal(t, 1, store.advancedCalls)
}

func TestTickCleanup_DispatchesCleanupJob(t *testing.T) {
	store := &fakeStore{}
	s := newTestScheduler(t, store)

	require.NoError(t, s.tickCleanup(context.Background()))

	require.Len(t, store.createdJobs, 1)
	require.Equal(t, catalogmodel.JobTypeCleanup, store.createdJobs[0].Type)
}
