package middleware

import (
	"net/http"
	"strconv"
	"time"

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

	leadsIngested = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leads_ingested_total",
			Help: "Lead candidates processed, by source and outcome",
		},
		[]string{"source", "outcome"},
	)

	dedupSweepMerged = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dedup_sweep_merged_total",
			Help: "Groups merged by the global dedup sweep",
		},
	)

	dedupSweepDeleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dedup_sweep_deleted_total",
			Help: "Duplicate leads deleted by the global dedup sweep",
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

		httpRequestsTotal.WithLabelValues(r.Method, r.URL.Path, status).Inc()
		httpRequestDuration.WithLabelValues(r.Method, r.URL.Path).Observe(duration)
	})
}

// RecordLeadIngested: outcome is created, clubbed or skipped.
func RecordLeadIngested(source, outcome string) {
	leadsIngested.WithLabelValues(source, outcome).Inc()
}

// RecordLeadsIngested is the batch variant.
func RecordLeadsIngested(source, outcome string, n int) {
	if n > 0 {
		leadsIngested.WithLabelValues(source, outcome).Add(float64(n))
	}
}

func RecordDedupSweep(merged, deleted int) {
	dedupSweepMerged.Add(float64(merged))
	dedupSweepDeleted.Add(float64(deleted))
}
