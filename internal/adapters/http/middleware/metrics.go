package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// httpRequestsTotal counts total HTTP requests
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "coinvault",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// httpRequestDuration measures request latency
	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "coinvault",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)

	// httpRequestsInFlight tracks concurrent requests
	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "coinvault",
			Subsystem: "http",
			Name:      "requests_in_flight",
			Help:      "Number of HTTP requests currently being processed",
		},
	)

	// httpResponseSize measures response body size
	httpResponseSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "coinvault",
			Subsystem: "http",
			Name:      "response_size_bytes",
			Help:      "HTTP response size in bytes",
			Buckets:   prometheus.ExponentialBuckets(100, 10, 8),
		},
		[]string{"method", "path"},
	)
)

// Ledger metrics
var (
	// LedgerOperationsTotal counts balance movements by kind and outcome.
	// Outcomes: completed, replayed, insufficient_funds, conflict,
	// transient, invalid, error.
	LedgerOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "coinvault",
			Subsystem: "ledger",
			Name:      "operations_total",
			Help:      "Total number of ledger operations",
		},
		[]string{"kind", "outcome", "asset"},
	)

	// LedgerOperationDuration measures end-to-end movement latency,
	// including lock waits.
	LedgerOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "coinvault",
			Subsystem: "ledger",
			Name:      "operation_duration_seconds",
			Help:      "Ledger operation duration in seconds",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"kind"},
	)

	// OutboxPendingGauge tracks events waiting for the relay.
	OutboxPendingGauge = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "coinvault",
			Subsystem: "outbox",
			Name:      "pending_events",
			Help:      "Number of outbox events waiting for delivery",
		},
	)

	// OutboxDeliveredTotal counts relay deliveries by result.
	OutboxDeliveredTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "coinvault",
			Subsystem: "outbox",
			Name:      "delivered_total",
			Help:      "Total number of outbox delivery attempts",
		},
		[]string{"result"}, // published, failed
	)
)

// Database metrics
var (
	// DBQueryDuration measures database query latency
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "coinvault",
			Subsystem: "db",
			Name:      "query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"operation", "table"},
	)

	// DBConnectionsTotal tracks database connections
	DBConnectionsTotal = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "coinvault",
			Subsystem: "db",
			Name:      "connections",
			Help:      "Number of database connections",
		},
		[]string{"state"}, // idle, in_use, max
	)

	// DBErrorsTotal counts database errors
	DBErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "coinvault",
			Subsystem: "db",
			Name:      "errors_total",
			Help:      "Total number of database errors",
		},
		[]string{"operation", "error_type"},
	)
)

// Metrics returns the Prometheus metrics middleware.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		// The scrape endpoint itself stays out of the series.
		if c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}

		start := time.Now()
		path := c.FullPath()
		if path == "" {
			path = "unknown"
		}
		method := c.Request.Method

		httpRequestsInFlight.Inc()
		defer httpRequestsInFlight.Dec()

		c.Next()

		status := strconv.Itoa(c.Writer.Status())
		duration := time.Since(start).Seconds()

		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpRequestDuration.WithLabelValues(method, path).Observe(duration)
		httpResponseSize.WithLabelValues(method, path).Observe(float64(c.Writer.Size()))
	}
}

// RecordLedgerOperation records one movement attempt.
func RecordLedgerOperation(kind, outcome, asset string, duration time.Duration) {
	LedgerOperationsTotal.WithLabelValues(kind, outcome, asset).Inc()
	LedgerOperationDuration.WithLabelValues(kind).Observe(duration.Seconds())
}

// RecordOutboxDelivery records one relay delivery attempt.
func RecordOutboxDelivery(result string) {
	OutboxDeliveredTotal.WithLabelValues(result).Inc()
}

// RecordDBQuery records a database query metric.
func RecordDBQuery(operation, table string, duration time.Duration) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
}

// RecordDBError records a database error metric.
func RecordDBError(operation, errorType string) {
	DBErrorsTotal.WithLabelValues(operation, errorType).Inc()
}

// UpdateDBConnections updates the connection gauges from pool stats.
func UpdateDBConnections(idle, inUse, max int32) {
	DBConnectionsTotal.WithLabelValues("idle").Set(float64(idle))
	DBConnectionsTotal.WithLabelValues("in_use").Set(float64(inUse))
	DBConnectionsTotal.WithLabelValues("max").Set(float64(max))
}
