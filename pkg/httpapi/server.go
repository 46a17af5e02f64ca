package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"

	"github.com/goesarchive/goescat/pkg/animation"
	"github.com/goesarchive/goescat/pkg/catalog"
	"github.com/goesarchive/goescat/pkg/composite"
	"github.com/goesarchive/goescat/pkg/config"
	"github.com/goesarchive/goescat/pkg/health"
	"github.com/goesarchive/goescat/pkg/jobrun"
	"github.com/goesarchive/goescat/pkg/retention"
)

// Version is set at build time via -ldflags; it backs GET
// /api/health/version (§6).
var Version = "dev"

// Server holds every dependency the HTTP handlers need. It has no
// behavior of its own beyond NewRouter: every handler method delegates
// to the catalog store or one of the pipeline packages.
type Server struct {
	Store      catalog.Store
	Runner     *jobrun.Runner
	Retention  *retention.Engine
	Composite  *composite.Pipeline
	Animation  *animation.Pipeline
	RDB        *redis.Client
	Config     config.Config

	// Checkers backs /api/health/detailed (§6); each entry's Status
	// applies the hysteresis from pkg/health.Status.Update so one
	// transient failure doesn't flip the endpoint to unhealthy.
	Checkers map[string]health.Checker
	statuses map[string]*health.Status

	startedAt time.Time

	connLimiter *perIPLimiter
}

// NewServer wires checkers and per-IP connection limiting on top of the
// supplied dependencies.
func NewServer(store catalog.Store, runner *jobrun.Runner, ret *retention.Engine, comp *composite.Pipeline, anim *animation.Pipeline, rdb *redis.Client, cfg config.Config, checkers map[string]health.Checker) *Server {
	statuses := make(map[string]*health.Status, len(checkers))
	for name := range checkers {
		statuses[name] = health.NewStatus()
	}
	return &Server{
		Store:       store,
		Runner:      runner,
		Retention:   ret,
		Composite:   comp,
		Animation:   anim,
		RDB:         rdb,
		Config:      cfg,
		Checkers:    checkers,
		statuses:    statuses,
		startedAt:   time.Now(),
		connLimiter: newPerIPLimiter(10),
	}
}

// NewRouter builds the full route table. Route registration order
// matters: mux dispatches to the first matching route, so literal
// sub-paths under a resource (e.g. "/frames/stats") must be registered
// before that resource's "/{id}" pattern (§9 decision 1).
func (s *Server) NewRouter() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.requestIDMiddleware)
	r.Use(s.metricsMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.authMiddleware)

	api := r.PathPrefix("/api").Subrouter()

	// Health, metrics and OpenAPI are auth-exempt (§6).
	api.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	api.HandleFunc("/health/detailed", s.handleHealthDetailed).Methods(http.MethodGet)
	api.HandleFunc("/health/version", s.handleHealthVersion).Methods(http.MethodGet)
	api.Handle("/metrics", promMetricsHandler()).Methods(http.MethodGet)

	// GOES product catalog and job dispatch.
	api.HandleFunc("/goes/products", s.handleGoesProducts).Methods(http.MethodGet)
	api.HandleFunc("/goes/fetch", s.handleGoesFetch).Methods(http.MethodPost)
	api.HandleFunc("/goes/backfill", s.handleGoesBackfill).Methods(http.MethodPost)
	api.HandleFunc("/goes/fetch-composite", s.handleGoesFetchComposite).Methods(http.MethodPost)
	api.HandleFunc("/goes/composites", s.handleGoesComposites).Methods(http.MethodPost)
	api.HandleFunc("/goes/animations", s.handleGoesAnimations).Methods(http.MethodPost)
	api.HandleFunc("/goes/animations/from-range", s.handleGoesAnimationsFromRange).Methods(http.MethodPost)
	api.HandleFunc("/goes/animations/recent", s.handleGoesAnimationsRecent).Methods(http.MethodPost)
	api.HandleFunc("/goes/animations/batch", s.handleGoesAnimationsBatch).Methods(http.MethodPost)

	// Frames: literal sub-paths before the "{frame_id}" pattern.
	api.HandleFunc("/goes/frames", s.handleListFrames).Methods(http.MethodGet)
	api.HandleFunc("/goes/frames", s.handleBulkDeleteFrames).Methods(http.MethodDelete)
	api.HandleFunc("/goes/frames/export", s.handleExportFrames).Methods(http.MethodGet)
	api.HandleFunc("/goes/frames/stats", s.handleFrameStats).Methods(http.MethodGet)
	api.HandleFunc("/goes/frames/process", s.handleGoesFrameProcess).Methods(http.MethodPost)
	api.HandleFunc("/goes/latest", s.handleLatestFrame).Methods(http.MethodGet)
	api.HandleFunc("/goes/frames/{frame_id}", s.handleGetFrame).Methods(http.MethodGet)
	api.HandleFunc("/goes/frames/{frame_id}", s.handleDeleteFrame).Methods(http.MethodDelete)

	// Collections
	api.HandleFunc("/goes/collections", s.handleListCollections).Methods(http.MethodGet)
	api.HandleFunc("/goes/collections", s.handleCreateCollection).Methods(http.MethodPost)
	api.HandleFunc("/goes/collections/{id}", s.handleDeleteCollection).Methods(http.MethodDelete)
	api.HandleFunc("/goes/collections/{id}/frames", s.handleAddFramesToCollection).Methods(http.MethodPost)
	api.HandleFunc("/goes/collections/{id}/frames/{frame_id}", s.handleRemoveFrameFromCollection).Methods(http.MethodDelete)

	// Tags
	api.HandleFunc("/goes/tags", s.handleListTags).Methods(http.MethodGet)
	api.HandleFunc("/goes/tags", s.handleCreateTag).Methods(http.MethodPost)
	api.HandleFunc("/goes/tags/{id}", s.handleDeleteTag).Methods(http.MethodDelete)
	api.HandleFunc("/goes/frames/{frame_id}/tags/{tag_id}", s.handleTagFrame).Methods(http.MethodPost)
	api.HandleFunc("/goes/frames/{frame_id}/tags/{tag_id}", s.handleUntagFrame).Methods(http.MethodDelete)

	// Presets
	api.HandleFunc("/goes/presets/crop", s.handleListCropPresets).Methods(http.MethodGet)
	api.HandleFunc("/goes/presets/crop", s.handleCreateCropPreset).Methods(http.MethodPost)
	api.HandleFunc("/goes/presets/fetch", s.handleListFetchPresets).Methods(http.MethodGet)
	api.HandleFunc("/goes/presets/fetch", s.handleCreateFetchPreset).Methods(http.MethodPost)
	api.HandleFunc("/goes/presets/animation", s.handleListAnimationPresets).Methods(http.MethodGet)
	api.HandleFunc("/goes/presets/animation", s.handleCreateAnimationPreset).Methods(http.MethodPost)
	api.HandleFunc("/goes/presets/{kind}/{id}", s.handleDeletePreset).Methods(http.MethodDelete)

	// Schedules
	api.HandleFunc("/goes/schedules", s.handleListSchedules).Methods(http.MethodGet)
	api.HandleFunc("/goes/schedules", s.handleCreateSchedule).Methods(http.MethodPost)
	api.HandleFunc("/goes/schedules/{id}", s.handleDeleteSchedule).Methods(http.MethodDelete)
	api.HandleFunc("/goes/schedules/{id}/toggle", s.handleToggleSchedule).Methods(http.MethodPost)

	// Cleanup rules + retention
	api.HandleFunc("/goes/cleanup-rules", s.handleListCleanupRules).Methods(http.MethodGet)
	api.HandleFunc("/goes/cleanup-rules", s.handleCreateCleanupRule).Methods(http.MethodPost)
	api.HandleFunc("/goes/cleanup-rules/{id}", s.handleDeleteCleanupRule).Methods(http.MethodDelete)
	api.HandleFunc("/goes/cleanup/preview", s.handleCleanupPreview).Methods(http.MethodGet)
	api.HandleFunc("/goes/cleanup/run", s.handleCleanupRun).Methods(http.MethodPost)

	// Jobs: literal sub-paths before "{id}".
	api.HandleFunc("/jobs", s.handleListJobs).Methods(http.MethodGet)
	api.HandleFunc("/jobs/bulk", s.handleBulkDeleteJobs).Methods(http.MethodDelete)
	api.HandleFunc("/jobs/cleanup-stale", s.handleCleanupStaleJobs).Methods(http.MethodPost)
	api.HandleFunc("/jobs/{id}", s.handleGetJob).Methods(http.MethodGet)
	api.HandleFunc("/jobs/{id}", s.handlePatchJob).Methods(http.MethodPatch)
	api.HandleFunc("/jobs/{id}", s.handleDeleteJob).Methods(http.MethodDelete)
	api.HandleFunc("/jobs/{id}/cancel", s.handleCancelJob).Methods(http.MethodPost)
	api.HandleFunc("/jobs/{id}/logs", s.handleJobLogs).Methods(http.MethodGet)
	api.HandleFunc("/jobs/{id}/download", s.handleJobDownload).Methods(http.MethodGet)

	// Share links (auth-exempt per §6) and notifications/settings.
	api.HandleFunc("/shared/frames/{id}", s.handleCreateShareLink).Methods(http.MethodPost)
	api.HandleFunc("/shared/{token}", s.handleGetSharedFrame).Methods(http.MethodGet)
	api.HandleFunc("/notifications", s.handleListNotifications).Methods(http.MethodGet)
	api.HandleFunc("/notifications/{id}/read", s.handleMarkNotificationRead).Methods(http.MethodPost)
	api.HandleFunc("/settings", s.handleGetSettings).Methods(http.MethodGet)
	api.HandleFunc("/settings", s.handleUpdateSettings).Methods(http.MethodPut)

	// WebSocket bridge (C8).
	r.HandleFunc("/ws/jobs/{job_id}", s.handleWSJob)
	r.HandleFunc("/ws/events", s.handleWSEvents)
	r.HandleFunc("/ws/status", s.handleWSStatus)

	return r
}

// HTTPServer wraps the router in an *http.Server with the timeouts the
// teacher applies to its own health endpoint listener.
func (s *Server) HTTPServer(addr string) *http.Server {
	return &http.Server{
		Addr:         addr,
		Handler:      s.NewRouter(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
}

// PingRedis is a pkg/health.FuncChecker probe body for the shared Redis
// client (job broker + event bus). Exported so cmd/api can wire it into
// the Checkers map it builds before the first request.
func (s *Server) PingRedis(ctx context.Context) error {
	return s.RDB.Ping(ctx).Err()
}
