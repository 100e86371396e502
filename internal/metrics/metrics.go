package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookingpt_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bookingpt_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	SlotsCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bookingpt_slots_created_total",
			Help: "Total number of availability slots published",
		},
	)

	SlotConflictsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bookingpt_slot_conflicts_total",
			Help: "Total number of slot create/update attempts rejected for overlap",
		},
	)

	BookingTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookingpt_booking_transitions_total",
			Help: "Total number of booking state transitions",
		},
		[]string{"to_status"},
	)

	BookingRacesLostTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bookingpt_booking_races_lost_total",
			Help: "Total number of booking attempts that lost the slot reservation race",
		},
	)

	EventsPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookingpt_events_published_total",
			Help: "Total number of booking events handed to the emitter",
		},
		[]string{"status"},
	)

	SweeperRunsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bookingpt_sweeper_runs_total",
			Help: "Total number of expired-booking sweeps",
		},
	)

	SweeperExpiredTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bookingpt_sweeper_expired_total",
			Help: "Total number of pending bookings expired by the sweeper",
		},
	)
)

func RecordHTTPRequest(method, path, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

func RecordBookingTransition(toStatus string) {
	BookingTransitionsTotal.WithLabelValues(toStatus).Inc()
}

func RecordEventPublished(status string) {
	EventsPublishedTotal.WithLabelValues(status).Inc()
}
