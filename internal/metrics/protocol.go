// Package metrics provides Prometheus metrics for the GUI message bridge.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Labels only carry closed vocabularies (direction, known message types,
// rejection reasons) so cardinality stays bounded.
var (
	// MessagesDispatchedTotal counts messages delivered to a handler.
	MessagesDispatchedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "guibridge_messages_dispatched_total",
		Help: "Total number of messages delivered to a handler, by direction and type.",
	}, []string{"direction", "type"})

	// MessagesRejectedTotal counts messages dropped before dispatch.
	MessagesRejectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "guibridge_messages_rejected_total",
		Help: "Total number of rejected messages, by direction and reason.",
	}, []string{"direction", "reason"})

	// MessagesUnhandledTotal counts valid messages with no registered handler.
	MessagesUnhandledTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "guibridge_messages_unhandled_total",
		Help: "Total number of valid messages without a registered handler, by direction and type.",
	}, []string{"direction", "type"})

	// HandlerFailuresTotal counts handler errors.
	HandlerFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "guibridge_handler_failures_total",
		Help: "Total number of handler errors, by direction and type.",
	}, []string{"direction", "type"})

	// EnumFallbacksTotal counts state values mapped to UNKNOWN.
	EnumFallbacksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "guibridge_enum_fallbacks_total",
		Help: "Total number of state values outside their vocabulary mapped to UNKNOWN, by type and field.",
	}, []string{"direction", "type", "field"})

	// MessagesSentTotal counts frames handed to the transport.
	MessagesSentTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "guibridge_messages_sent_total",
		Help: "Total number of messages queued for transmission, by direction and type.",
	}, []string{"direction", "type"})

	// RenderersConnected tracks open renderer connections on the host.
	RenderersConnected = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "guibridge_renderers_connected",
		Help: "Number of renderer connections currently open.",
	})

	// FocusRequestsExpiredTotal counts pending focus requests dropped by the sweeper.
	FocusRequestsExpiredTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "guibridge_focus_requests_expired_total",
		Help: "Total number of pending focus requests dropped after waiting longer than the token TTL.",
	})
)
