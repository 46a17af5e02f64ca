package httpapi

import (
	"context"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/goesarchive/goescat/pkg/log"
	"github.com/goesarchive/goescat/pkg/metrics"
)

type requestIDKey struct{}

// requestIDPattern is the set of request ids accepted verbatim from an
// inbound X-Request-ID header: alphanumeric, at most 64 chars (§6).
var requestIDPattern = regexp.MustCompile(`^[A-Za-z0-9]{1,64}$`)

// requestIDMiddleware echoes a caller-supplied X-Request-ID if it looks
// safe to log and forward, otherwise mints a new one; every response
// carries the header either way (§6).
func (s *Server) requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if !requestIDPattern.MatchString(id) {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		ctx := context.WithValue(r.Context(), requestIDKey{}, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func requestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// statusRecorder captures the status code a downstream handler wrote so
// the metrics middleware can label it.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(status int) {
	sr.status = status
	sr.ResponseWriter.WriteHeader(status)
}

// metricsMiddleware records per-route request count and latency (C10
// metrics, §6).
func (s *Server) metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sr := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sr, r)

		route := r.URL.Path
		metrics.APIRequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
		metrics.APIRequestsTotal.WithLabelValues(route, strconv.Itoa(sr.status)).Inc()

		log.WithRequestID(requestIDFromContext(r.Context())).Debug().
			Str("method", r.Method).Str("path", r.URL.Path).
			Int("status", sr.status).Dur("duration", time.Since(start)).
			Msg("request")
	})
}

// corsMiddleware applies the configured origin allow-list (§6 CORS_ORIGINS).
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && originAllowed(s.Config.CORSOrigins, origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-API-Key, X-Request-ID")
			w.Header().Set("Vary", "Origin")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func originAllowed(allowed []string, origin string) bool {
	for _, a := range allowed {
		if a == "*" || a == origin {
			return true
		}
	}
	return false
}

// authExemptPrefixes lists paths that never require X-API-Key (§6).
var authExemptPrefixes = []string{
	"/api/health",
	"/api/metrics",
	"/api/openapi",
	"/api/shared/",
}

func isAuthExempt(path string) bool {
	for _, prefix := range authExemptPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// authMiddleware enforces the optional shared-secret X-API-Key. When
// Config.APIKey is empty the API is open (§6).
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.Config.APIKey == "" || isAuthExempt(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}
		key := r.Header.Get("X-API-Key")
		if key == "" {
			key = r.URL.Query().Get("api_key")
		}
		if key != s.Config.APIKey {
			writeError(w, http.StatusUnauthorized, "unauthorized", "missing or invalid X-API-Key")
			return
		}
		next.ServeHTTP(w, r)
	})
}
