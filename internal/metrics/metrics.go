// Package metrics holds the process-wide Prometheus collectors.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Outcome label values.
const (
	OutcomeSent   = "sent"
	OutcomeFailed = "failed"
)

// Stream result label values.
const (
	ResultDispatched = "dispatched"
	ResultFailed     = "failed"
	ResultMalformed  = "malformed"
	ResultInvalid    = "invalid"
)

var (
	// DispatchTotal counts dispatch attempts by notification type, outcome
	// and error kind.
	DispatchTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "notifyd_dispatch_total",
		Help: "Notification dispatch attempts",
	}, []string{"type", "outcome", "error_kind"})

	// DispatchDuration observes the end-to-end time of one dispatch.
	DispatchDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "notifyd_dispatch_duration_seconds",
		Help:    "Time to resolve, render and send one notification",
		Buckets: prometheus.DefBuckets,
	}, []string{"type"})

	// StreamMessages counts event-stream messages by source and result.
	StreamMessages = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "notifyd_stream_messages_total",
		Help: "Messages consumed from the event stream",
	}, []string{"source", "result"})

	// StreamPublished counts messages published onto the event stream.
	StreamPublished = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "notifyd_stream_published_total",
		Help: "Notification requests published onto the event stream",
	}, []string{"broker"})

	// EventBusDropped counts in-process events dropped on a full buffer.
	EventBusDropped = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "notifyd_eventbus_dropped_total",
		Help: "Events dropped because the event bus buffer was full",
	})

	// LogPurged counts delivery log entries removed by retention.
	LogPurged = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "notifyd_delivery_log_purged_total",
		Help: "Delivery log entries removed by the retention job",
	})
)

func init() {
	prometheus.MustRegister(
		DispatchTotal,
		DispatchDuration,
		StreamMessages,
		StreamPublished,
		EventBusDropped,
		LogPurged,
	)
}
