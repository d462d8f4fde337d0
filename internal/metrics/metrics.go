package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "leadtracker"

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint.",
		},
		[]string{"endpoint"},
	)

	leadOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lead_operations_total",
			Help:      "Lead repository operations by result.",
		},
		[]string{"operation", "result"},
	)

	dbConnectAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "db_connect_attempts_total",
			Help:      "Database connection attempts by outcome.",
		},
		[]string{"result"},
	)

	dbQueryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "db_query_duration_seconds",
			Help:      "Duration of single-statement database operations.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"operation"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, leadOperations, dbConnectAttempts, dbQueryDuration)
	})
}

// IncHTTP increments the counter for an endpoint label.
func IncHTTP(endpoint string) {
	httpRequests.WithLabelValues(endpoint).Inc()
}

// IncLeadOperation counts a service-level lead operation; result is "success" or an error class.
func IncLeadOperation(operation, result string) {
	leadOperations.WithLabelValues(operation, result).Inc()
}

// IncConnectAttempt counts a connection attempt: "success", "retry" or "failure".
func IncConnectAttempt(result string) {
	dbConnectAttempts.WithLabelValues(result).Inc()
}

// ObserveQuery records how long a database operation took.
func ObserveQuery(operation string, started time.Time) {
	dbQueryDuration.WithLabelValues(operation).Observe(time.Since(started).Seconds())
}
