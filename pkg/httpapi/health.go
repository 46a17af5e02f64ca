package httpapi

import (
	"net/http"
	"time"

	"github.com/goesarchive/goescat/pkg/health"
	"github.com/goesarchive/goescat/pkg/metrics"
)

// promMetricsHandler exposes the process's registered collectors (§6
// "GET /api/metrics").
func promMetricsHandler() http.Handler {
	return metrics.Handler()
}

// handleHealth is a bare liveness probe: the process is running and can
// answer requests (§6).
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// handleHealthDetailed runs every registered dependency checker, folds
// each result through its Status hysteresis tracker (pkg/health), and
// reports unhealthy only once a checker crosses its failure threshold
// (§6 "dependency health (db, redis, disk, worker, storage dirs)").
func (s *Server) handleHealthDetailed(w http.ResponseWriter, r *http.Request) {
	cfg := health.DefaultConfig()
	checks := make(map[string]interface{}, len(s.Checkers))
	overallHealthy := true

	for name, checker := range s.Checkers {
		result := checker.Check(r.Context())
		status := s.statuses[name]
		if status == nil {
			status = health.NewStatus()
			s.statuses[name] = status
		}
		status.Update(result, cfg)

		healthy := status.Healthy || status.InStartPeriod(cfg)
		if !healthy {
			overallHealthy = false
		}
		checks[name] = map[string]interface{}{
			"healthy": healthy,
			"message": result.Message,
		}
	}

	statusCode := http.StatusOK
	overall := "healthy"
	if !overallHealthy {
		statusCode = http.StatusServiceUnavailable
		overall = "unhealthy"
	}
	writeJSON(w, statusCode, map[string]interface{}{
		"status":    overall,
		"checks":    checks,
		"timestamp": time.Now(),
	})
}

// handleHealthVersion reports the build version (§6).
func (s *Server) handleHealthVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"version":    Version,
		"uptime_sec": time.Since(s.startedAt).Seconds(),
	})
}
