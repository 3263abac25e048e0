package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collectors shared across the HTTP and realtime layers. All are registered
// on the default registry, which /metrics serves via promhttp.
var (
	AuthAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "springmeet",
		Subsystem: "auth",
		Name:      "attempts_total",
		Help:      "Authentication flow outcomes by operation and result.",
	}, []string{"operation", "result"})

	RealtimeConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "springmeet",
		Subsystem: "realtime",
		Name:      "connections",
		Help:      "Live realtime connections across all rooms.",
	})

	RealtimeRooms = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "springmeet",
		Subsystem: "realtime",
		Name:      "rooms",
		Help:      "Rooms with at least one live connection.",
	})

	RealtimeMessages = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "springmeet",
		Subsystem: "realtime",
		Name:      "messages_published_total",
		Help:      "Messages fanned out to rooms.",
	})
)
