package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// BookingOutcomes counts confirmation runs by terminal saga state.
	BookingOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "luxetravel",
			Name:      "booking_outcomes_total",
			Help:      "The total number of booking confirmations by terminal state",
		},
		[]string{"state"},
	)

	// OrphanedTickets counts tickets left behind by failed compensation.
	// Every increment needs manual reconciliation against the ticketing service.
	OrphanedTickets = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "luxetravel",
			Name:      "orphaned_tickets_total",
			Help:      "The total number of tickets orphaned by failed compensation",
		},
	)

	// CacheRequests counts reference-data lookups by result (hit or miss).
	CacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "luxetravel",
			Name:      "cache_requests_total",
			Help:      "The total number of cache lookups",
		},
		[]string{"result"},
	)

	// Logins counts federated login attempts by result.
	Logins = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "luxetravel",
			Name:      "logins_total",
			Help:      "The total number of federated login attempts",
		},
		[]string{"result"},
	)

	// SessionTeardowns counts session teardowns by reason.
	SessionTeardowns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "luxetravel",
			Name:      "session_teardowns_total",
			Help:      "The total number of session teardowns",
		},
		[]string{"reason"},
	)

	MessagesProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "luxetravel",
			Name:      "messages_processed_total",
			Help:      "The total number of processed messages",
		},
		[]string{"topic", "handler"},
	)

	MessagesProcessingFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "luxetravel",
			Name:      "messages_processing_failed_total",
			Help:      "The total number of messages that failed processing",
		},
		[]string{"topic", "handler"},
	)

	MessagesProcessingDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "luxetravel",
			Name:      "messages_processing_duration_seconds",
			Help:      "The duration of message processing",
		},
		[]string{"topic", "handler"},
	)
)
