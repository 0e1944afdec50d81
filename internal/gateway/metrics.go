package gateway

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors updated by Handler
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	errors   *prometheus.CounterVec
}

// NewMetrics registers the gateway collectors with reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "urlq",
			Subsystem: "gateway",
			Name:      "requests_total",
			Help:      "Requests handled by operation and HTTP status",
		}, []string{"operation", "status"}),

		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "urlq",
			Subsystem: "gateway",
			Name:      "request_duration_seconds",
			Help:      "Request handling duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),

		errors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "urlq",
			Subsystem: "gateway",
			Name:      "errors_total",
			Help:      "Failed requests by operation and error type",
		}, []string{"operation", "error_type"}),
	}
}
