// Package metrics defines the Prometheus instruments exported through the
// local status server's /metrics endpoint.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Channel Metrics
	ChannelConnects = promauto.NewCounter(prometheus.CounterOpts{
		Name: "liveroom_channel_connects_total",
		Help: "The total number of times the real-time channel was established.",
	})
	ChannelReconnects = promauto.NewCounter(prometheus.CounterOpts{
		Name: "liveroom_channel_reconnects_total",
		Help: "The total number of automatic reconnect attempts after a channel drop.",
	})
	EventsReceived = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "liveroom_events_received_total",
		Help: "The total number of inbound events received, by event type.",
	}, []string{"event_type"})
	EventsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "liveroom_events_dropped_total",
		Help: "The total number of inbound events dropped as malformed or unexpected.",
	})

	// Cursor Metrics
	CursorPublishes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "liveroom_cursor_publishes_total",
		Help: "The total number of cursor_move events published.",
	})
	CursorPublishesSuppressed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "liveroom_cursor_publishes_suppressed_total",
		Help: "The total number of pointer samples suppressed by the publish throttle.",
	})
	RemoteCursorsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "liveroom_remote_cursors_active",
		Help: "The current number of remote cursors tracked for the joined room.",
	})
	RemoteCursorsExpired = promauto.NewCounter(prometheus.CounterOpts{
		Name: "liveroom_remote_cursors_expired_total",
		Help: "The total number of remote cursors removed by the TTL sweep.",
	})

	// Room Metrics
	JoinAttempts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "liveroom_room_join_attempts_total",
		Help: "The total number of join requests issued.",
	})
	JoinFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "liveroom_room_join_failures_total",
		Help: "The total number of failed join requests, by reason.",
	}, []string{"reason"})
)
