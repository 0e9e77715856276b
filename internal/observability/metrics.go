package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DatabaseQueryLatency records repository query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "socialnet_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// LikeToggles counts like toggles by outcome (added, removed).
	LikeToggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "socialnet_like_toggles_total",
		Help: "Total number of post like toggles by result",
	}, []string{"result"})

	// FriendshipTransitions counts friendship lifecycle transitions.
	FriendshipTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "socialnet_friendship_transitions_total",
		Help: "Total number of friendship transitions by kind",
	}, []string{"transition"})

	// UploadedBytes counts bytes written to the blob store by kind.
	UploadedBytes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "socialnet_uploaded_bytes_total",
		Help: "Total bytes uploaded to object storage",
	}, []string{"kind"})

	// WebSocketEventsTotal counts realtime events delivered by type.
	WebSocketEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "socialnet_websocket_events_total",
		Help: "Total WebSocket events by type",
	}, []string{"event_type"})

	// WebSocketBackpressureDrops counts messages dropped because a client send buffer was full.
	WebSocketBackpressureDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "socialnet_websocket_backpressure_drops_total",
		Help: "Total number of WebSocket messages dropped due to backpressure",
	}, []string{"reason"})
)

// Friendship transition labels.
const (
	TransitionRequested = "requested"
	TransitionAccepted  = "accepted"
	TransitionRejected  = "rejected"
	TransitionDeleted   = "deleted"
)

// TrackQuery returns a func that records the query latency when called, e.g.
// defer observability.TrackQuery("list", "posts")().
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}
