// Package metrics holds the Prometheus collectors of the hub.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	Connections = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "kairos_ws_connections",
		Help: "Open WebSocket connections",
	})

	OnlineUsers = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "kairos_online_users",
		Help: "Users currently logged in",
	})

	EventsIn = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kairos_events_in_total",
			Help: "Inbound client events by type",
		},
		[]string{"type"},
	)

	FramesDropped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kairos_frames_dropped_total",
			Help: "Outbound frames not delivered, by reason",
		},
		[]string{"reason"},
	)

	MessagesRouted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kairos_messages_routed_total",
			Help: "Persisted chat messages by scope",
		},
		[]string{"scope"},
	)

	PersistDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kairos_persist_duration_seconds",
			Help:    "Duration of persistence gateway calls",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"op"},
	)

	PersistFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kairos_persist_failures_total",
			Help: "Failed persistence gateway calls",
		},
		[]string{"op"},
	)

	Calls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kairos_calls_total",
			Help: "1:1 call outcomes",
		},
		[]string{"outcome"},
	)

	MeshParticipants = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "kairos_mesh_participants",
		Help: "Connections currently in a mesh call room",
	})
)

func init() {
	prometheus.MustRegister(
		Connections,
		OnlineUsers,
		EventsIn,
		FramesDropped,
		MessagesRouted,
		PersistDuration,
		PersistFailures,
		Calls,
		MeshParticipants,
	)
}

// ObservePersist times one gateway call; call the returned func when it finishes.
func ObservePersist(op string) func(err error) {
	timer := prometheus.NewTimer(PersistDuration.WithLabelValues(op))
	return func(err error) {
		timer.ObserveDuration()
		if err != nil {
			PersistFailures.WithLabelValues(op).Inc()
		}
	}
}
