// Package observability holds Prometheus collectors and OpenTelemetry tracing
// setup shared across the application.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"gorm.io/gorm"
)

var (
	// RedisErrors counts Redis errors by operation type.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shadospace_redis_errors_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// CacheRequests counts cache-aside lookups by result (hit or miss).
	CacheRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shadospace_cache_requests_total",
		Help: "Total number of cache-aside lookups by result",
	}, []string{"result"})

	// ViewsRecorded counts recorded post views by outcome (counted or deduped).
	ViewsRecorded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shadospace_post_views_recorded_total",
		Help: "Total number of post view events by outcome",
	}, []string{"outcome"})

	// LikesToggled counts like toggles by resulting state.
	LikesToggled = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shadospace_post_likes_toggled_total",
		Help: "Total number of like toggles by resulting state",
	}, []string{"state"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "shadospace_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})
)

// DatabaseMetrics wraps DB access for recording query latency.
type DatabaseMetrics struct {
	db *gorm.DB
}

// NewDatabaseMetrics returns a new DatabaseMetrics instance.
func NewDatabaseMetrics(db *gorm.DB) *DatabaseMetrics {
	return &DatabaseMetrics{db: db}
}

// ObserveQuery records the latency of a database query.
func (m *DatabaseMetrics) ObserveQuery(operation, table string, start time.Time) {
	latency := time.Since(start).Seconds()
	DatabaseQueryLatency.WithLabelValues(operation, table).Observe(latency)
}

// TrackQuery returns a function that records query latency when called (e.g. defer).
func (m *DatabaseMetrics) TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		m.ObserveQuery(operation, table, start)
	}
}
