package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RecordTransitions counts lifecycle operations by kind (create, delete, restore, remove)
	RecordTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "docregistro_record_transitions_total",
		Help: "Document record lifecycle operations",
	}, []string{"operation"})

	// ValidationFailures counts rejected submissions
	ValidationFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "docregistro_validation_failures_total",
		Help: "Submissions rejected by validation",
	})

	// Exports counts generated exports by format and record set
	Exports = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "docregistro_exports_total",
		Help: "Generated exports",
	}, []string{"format", "set"})

	// EmailsSent counts director notifications by outcome
	EmailsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "docregistro_emails_total",
		Help: "Director notifications",
	}, []string{"result"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "docregistro_http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)

// ObserveHTTP records the latency of one request
func ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	httpDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())
}
