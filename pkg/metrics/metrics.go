// Package metrics exposes the process's Prometheus collectors at
// GET /api/metrics (§6). Every binary imports this package for its side
// effect of registering collectors against the default registry; only
// cmd/api mounts the HTTP handler.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Job metrics (C4)
	JobsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "goescat_jobs_total",
			Help: "Total number of jobs by type and terminal status",
		},
		[]string{"type", "status"},
	)

	JobsInFlight = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "goescat_jobs_in_flight",
			Help: "Number of jobs currently pending or processing, by type",
		},
		[]string{"type"},
	)

	JobDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "goescat_job_duration_seconds",
			Help:    "Wall-clock duration of a job from start to terminal status",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		},
		[]string{"type"},
	)

	JobRetriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "goescat_job_retries_total",
			Help: "Total number of automatic job retries",
		},
		[]string{"type"},
	)

	// Ingestion metrics (C2, C3)
	FramesIngestedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "goescat_frames_ingested_total",
			Help: "Total number of frames downloaded and catalogued",
		},
		[]string{"satellite", "band"},
	)

	BytesDownloadedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "goescat_bytes_downloaded_total",
			Help: "Total bytes of NetCDF source data fetched from the object store",
		},
	)

	ObjectStoreRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "goescat_objectstore_request_duration_seconds",
			Help:    "Duration of requests to the upstream object store",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"op"},
	)

	CircuitBreakerState = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "goescat_objectstore_circuit_breaker_state",
			Help: "Circuit breaker state for the object store client (0=closed, 1=half_open, 2=open)",
		},
	)

	// Retention metrics (C6)
	FramesDeletedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "goescat_frames_deleted_total",
			Help: "Total number of frames deleted by the retention engine, by rule type",
		},
		[]string{"rule_type"},
	)

	// HTTP metrics (C10)
	APIRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "goescat_api_requests_total",
			Help: "Total number of API requests by route and status",
		},
		[]string{"route", "status"},
	)

	APIRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "goescat_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)

	// WebSocket metrics (C8)
	WSConnectionsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "goescat_ws_connections_active",
			Help: "Number of currently open WebSocket connections",
		},
	)

	// Gap detector metrics (C9)
	GapsDetectedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "goescat_gaps_detected_total",
			Help: "Total number of capture-time gaps detected, by satellite and band",
		},
		[]string{"satellite", "band"},
	)
)

func init() {
	prometheus.MustRegister(JobsTotal)
	prometheus.MustRegister(JobsInFlight)
	prometheus.MustRegister(JobDuration)
	prometheus.MustRegister(JobRetriesTotal)
	prometheus.MustRegister(FramesIngestedTotal)
	prometheus.MustRegister(BytesDownloadedTotal)
	prometheus.MustRegister(ObjectStoreRequestDuration)
	prometheus.MustRegister(CircuitBreakerState)
	prometheus.MustRegister(FramesDeletedTotal)
	prometheus.MustRegister(APIRequestsTotal)
	prometheus.MustRegister(APIRequestDuration)
	prometheus.MustRegister(WSConnectionsActive)
	prometheus.MustRegister(GapsDetectedTotal)
}

// Handler returns the Prometheus scrape handler mounted at GET /api/metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer measures an operation's duration against one or more histograms.
type Timer struct {
	start time.Time
}

// NewTimer starts a timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// ObserveDuration records the elapsed time against histogram.
func (t *Timer) ObserveDuration(histogram prometheus.Histogram) {
	histogram.Observe(time.Since(t.start).Seconds())
}

// ObserveDurationVec records the elapsed time against a labeled histogram.
func (t *Timer) ObserveDurationVec(histogram prometheus.ObserverVec, labels ...string) {
	histogram.WithLabelValues(labels...).Observe(time.Since(t.start).Seconds())
}

// Duration returns the elapsed time without recording it.
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
