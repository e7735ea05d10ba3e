package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	reservationCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "seatwise",
			Name:      "reservation_created_total",
			Help:      "Count of reservations created by initial status.",
		},
		[]string{"status"},
	)

	assignmentRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "seatwise",
			Name:      "assignment_rejected_total",
			Help:      "Count of assignment attempts rejected by reason.",
		},
		[]string{"reason"},
	)

	assignmentCommitted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "seatwise",
			Name:      "assignment_committed_total",
			Help:      "Count of table assignments committed.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "seatwise",
			Name:      "http_requests_total",
			Help:      "Count of HTTP requests by endpoint.",
		},
		[]string{"endpoint"},
	)

	remindersSent = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "seatwise",
			Name:      "reminders_sent_total",
			Help:      "Count of reservation reminders sent.",
		},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(reservationCreated, assignmentRejected, assignmentCommitted, httpRequests, remindersSent)
	})
}

func IncReservationCreated(status string) {
	reservationCreated.WithLabelValues(status).Inc()
}

func IncAssignmentRejected(reason string) {
	assignmentRejected.WithLabelValues(reason).Inc()
}

func IncAssignmentCommitted() {
	assignmentCommitted.Inc()
}

func IncHTTP(endpoint string) {
	httpRequests.WithLabelValues(endpoint).Inc()
}

func IncReminderSent() {
	remindersSent.Inc()
}
