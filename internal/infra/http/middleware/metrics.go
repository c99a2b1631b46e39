package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	activeConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_active_connections",
			Help: "Number of active HTTP connections",
		},
	)

	prospectsLogged = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "prospects_logged_total",
			Help: "Total number of prospects logged",
		},
	)

	prospectsRemoved = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "prospects_removed_total",
			Help: "Total number of prospects removed",
		},
	)

	statusChanges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prospect_status_changes_total",
			Help: "Total number of prospect status changes by new status",
		},
		[]string{"status"},
	)

	validationFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prospect_validation_failures_total",
			Help: "Total number of rejected inputs by operation",
		},
		[]string{"operation"},
	)

	searchURLsBuilt = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "search_urls_built_total",
			Help: "Total number of external search URLs built",
		},
		[]string{"service"},
	)

	csvExports = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "csv_exports_total",
			Help: "Total number of CSV exports by channel",
		},
		[]string{"channel"},
	)

	rateLimited = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "http_rate_limited_total",
			Help: "Total number of requests rejected by the rate limiter",
		},
	)
)

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		activeConnections.Inc()
		defer activeConnections.Dec()

		rw := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(rw.statusCode)
		path := routePattern(r)

		httpRequestsTotal.WithLabelValues(r.Method, path, status).Inc()
		httpRequestDuration.WithLabelValues(r.Method, path).Observe(duration)
	})
}

// routePattern keeps prospect ids out of the label set.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}

func RecordProspectLogged() {
	prospectsLogged.Inc()
}

func RecordProspectRemoved() {
	prospectsRemoved.Inc()
}

func RecordStatusChange(status string) {
	statusChanges.WithLabelValues(status).Inc()
}

func RecordValidationFailure(operation string) {
	validationFailures.WithLabelValues(operation).Inc()
}

func RecordSearchURL(service string) {
	searchURLsBuilt.WithLabelValues(service).Inc()
}

func RecordExport(channel string) {
	csvExports.WithLabelValues(channel).Inc()
}

func RecordRateLimited() {
	rateLimited.Inc()
}
