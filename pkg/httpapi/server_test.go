package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goesarchive/goescat/pkg/catalog"
	"github.com/goesarchive/goescat/pkg/catalogmodel"
	"github.com/goesarchive/goescat/pkg/config"
	"github.com/goesarchive/goescat/pkg/jobqueue"
	"github.com/goesarchive/goescat/pkg/jobrun"
	"github.com/goesarchive/goescat/pkg/retention"
)

// fakeStore implements catalog.Store by embedding the interface (so only
// methods a given test actually exercises need overriding) and adding
// in-memory maps for the entities these tests touch.
type fakeStore struct {
	catalog.Store

	jobs  map[string]*catalogmodel.Job
	frame *catalogmodel.GoesFrame
}

func newFakeStore() *fakeStore {
	return &fakeStore{jobs: make(map[string]*catalogmodel.Job)}
}

func (f *fakeStore) CreateJob(ctx context.Context, job *catalogmodel.Job) error {
	f.jobs[job.ID] = job
	return nil
}

func (f *fakeStore) GetJob(ctx context.Context, id string) (*catalogmodel.Job, error) {
	job, ok := f.jobs[id]
	if !ok {
		return nil, catalog.ErrNotFound
	}
	return job, nil
}

func (f *fakeStore) UpdateJob(ctx context.Context, job *catalogmodel.Job) error {
	f.jobs[job.ID] = job
	return nil
}

func (f *fakeStore) ListJobs(ctx context.Context, jobType catalogmodel.JobType, status catalogmodel.JobStatus, page, limit int) ([]*catalogmodel.Job, int, error) {
	var out []*catalogmodel.Job
	for _, j := range f.jobs {
		out = append(out, j)
	}
	return out, len(out), nil
}

func (f *fakeStore) GetFrame(ctx context.Context, id string) (*catalogmodel.GoesFrame, error) {
	if f.frame != nil && f.frame.ID == id {
		return f.frame, nil
	}
	return nil, catalog.ErrNotFound
}

func (f *fakeStore) ListFrames(ctx context.Context, filter catalogmodel.FrameFilter, page catalogmodel.FramePage) (catalog.FrameListResult, error) {
	if f.frame == nil {
		return catalog.FrameListResult{}, nil
	}
	return catalog.FrameListResult{Frames: []*catalogmodel.GoesFrame{f.frame}, TotalCount: 1}, nil
}

func newTestServer(t *testing.T) (*Server, *fakeStore) {
	t.Helper()
	mr := miniredis.RunT(t)
	broker, err := jobqueue.NewBroker("redis://" + mr.Addr())
	require.NoError(t, err)

	store := newFakeStore()
	runner := jobrun.NewRunner(store, broker, nil, 1)
	ret := retention.NewEngine(store)

	cfg := config.Config{StoragePath: t.TempDir()}
	s := NewServer(store, runner, ret, nil, nil, nil, cfg, nil)
	return s, store
}

func TestHandleHealth(t *testing.T) {
	s, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	w := httptest.NewRecorder()
	s.NewRouter().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
}

func TestHandleGoesFetch_RejectsBadBand(t *testing.T) {
	s, _ := newTestServer(t)
	body := `{"satellite":"GOES-16","sector":"FullDisk","band":"GEOCOLOR","start":"2026-01-01T00:00:00Z","end":"2026-01-01T01:00:00Z"}`
	req := httptest.NewRequest(http.MethodPost, "/api/goes/fetch", strings.NewReader(body))
	w := httptest.NewRecorder()
	s.NewRouter().ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	var env errorEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.Equal(t, "validation", env.Error)
}

func TestHandleGoesFetch_RejectsWindowOver24h(t *testing.T) {
	s, _ := newTestServer(t)
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(25 * time.Hour)
	body := `{"satellite":"GOES-16","sector":"FullDisk","band":"C02","start":"` + start.Format(time.RFC3339) + `","end":"` + end.Format(time.RFC3339) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/api/goes/fetch", strings.NewReader(body))
	w := httptest.NewRecorder()
	s.NewRouter().ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestHandleGoesFetch_DispatchesPendingJob(t *testing.T) {
	s, _ := newTestServer(t)
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)
	body := `{"satellite":"GOES-16","sector":"FullDisk","band":"C02","start":"` + start.Format(time.RFC3339) + `","end":"` + end.Format(time.RFC3339) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/api/goes/fetch", strings.NewReader(body))
	w := httptest.NewRecorder()
	s.NewRouter().ServeHTTP(w, req)

	assert.Equal(t, http.StatusAccepted, w.Code)
	var resp dispatchResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.JobID)
	assert.Equal(t, "pending", resp.Status)
}

func TestHandleCancelJob_TerminalJobRejected(t *testing.T) {
	s, store := newTestServer(t)
	now := time.Now()
	store.jobs["j1"] = &catalogmodel.Job{ID: "j1", Status: catalogmodel.JobStatusCompleted, CompletedAt: &now}

	req := httptest.NewRequest(http.MethodPost, "/api/jobs/j1/cancel", nil)
	w := httptest.NewRecorder()
	s.NewRouter().ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleCancelJob_NotFound(t *testing.T) {
	s, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/api/jobs/missing/cancel", nil)
	w := httptest.NewRecorder()
	s.NewRouter().ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAuthMiddleware_RejectsMissingKey(t *testing.T) {
	s, _ := newTestServer(t)
	s.Config.APIKey = "secret"

	req := httptest.NewRequest(http.MethodGet, "/api/goes/products", nil)
	w := httptest.NewRecorder()
	s.NewRouter().ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_ExemptsHealth(t *testing.T) {
	s, _ := newTestServer(t)
	s.Config.APIKey = "secret"

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	w := httptest.NewRecorder()
	s.NewRouter().ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthMiddleware_AcceptsValidKey(t *testing.T) {
	s, _ := newTestServer(t)
	s.Config.APIKey = "secret"

	req := httptest.NewRequest(http.MethodGet, "/api/goes/products", nil)
	req.Header.Set("X-API-Key", "secret")
	w := httptest.NewRecorder()
	s.NewRouter().ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequestIDMiddleware_GeneratesWhenMissing(t *testing.T) {
	s, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	w := httptest.NewRecorder()
	s.NewRouter().ServeHTTP(w, req)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestRequestIDMiddleware_RejectsUnsafeHeader(t *testing.T) {
	s, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("X-Request-ID", "not safe; injected")
	w := httptest.NewRecorder()
	s.NewRouter().ServeHTTP(w, req)
	assert.NotEqual(t, "not safe; injected", w.Header().Get("X-Request-ID"))
}

func TestHandleGetFrame_NotFound(t *testing.T) {
	s, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/goes/frames/missing", nil)
	w := httptest.NewRecorder()
	s.NewRouter().ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandleListFrames_ReturnsSeededFrame(t *testing.T) {
	s, store := newTestServer(t)
	store.frame = &catalogmodel.GoesFrame{ID: "f1", Satellite: "GOES-16", Band: "C02", Sector: "FullDisk"}

	req := httptest.NewRequest(http.MethodGet, "/api/goes/frames", nil)
	w := httptest.NewRecorder()
	s.NewRouter().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "f1")
}
