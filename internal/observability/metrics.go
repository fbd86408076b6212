package observability

import (
	"context"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel/trace"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shepherd_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by statement kind.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "shepherd_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})

	// NotificationsCreated counts persisted notifications by type.
	NotificationsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shepherd_notifications_created_total",
		Help: "Total number of notifications persisted",
	}, []string{"type"})

	// FanOutFailures counts per-recipient notification writes that failed.
	FanOutFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shepherd_fanout_failures_total",
		Help: "Total number of per-recipient fan-out failures",
	}, []string{"type"})

	// FanOutRecipients records how many followers a single fan-out addressed.
	FanOutRecipients = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "shepherd_fanout_recipients",
		Help:    "Number of recipients addressed by one fan-out pass",
		Buckets: []float64{0, 1, 5, 10, 50, 100, 500, 1000, 5000},
	}, []string{"type"})

	// FeedCacheRequests counts feed cache lookups by result (hit, miss, bypass).
	FeedCacheRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shepherd_feed_cache_requests_total",
		Help: "Feed page cache lookups by result",
	}, []string{"feed", "result"})

	// ScheduledPostsPublished counts posts claimed by PublishDuePosts.
	ScheduledPostsPublished = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shepherd_scheduled_posts_published_total",
		Help: "Total number of scheduled posts published by the publish-due sweep",
	})
)

type correlationKey struct{}

// ExtractTraceID returns the id of the trace active in ctx, if any.
func ExtractTraceID(ctx context.Context) string {
	if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
		return sc.TraceID().String()
	}
	return ""
}

// ExtractCorrelationID returns the correlation ID from the context if set.
func ExtractCorrelationID(ctx context.Context) string {
	if id, ok := ctx.Value(correlationKey{}).(string); ok {
		return id
	}
	return ""
}

// WithCorrelationID returns a context with the correlation ID set.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationKey{}, id)
}

// GenerateCorrelationID returns a new random correlation ID.
func GenerateCorrelationID() string {
	return uuid.NewString()
}
