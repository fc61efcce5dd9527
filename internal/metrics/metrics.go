package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Reservation outcomes used as the "outcome" label.
const (
	OutcomeBooked   = "booked"
	OutcomeConflict = "conflict"
	OutcomeLotFull  = "lot_full"
	OutcomeFailed   = "failed"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "parking_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "parking_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	ReservationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "parking_reservations_total",
			Help: "Booking attempts by outcome",
		},
		[]string{"outcome"},
	)

	ReleasesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "parking_releases_total",
			Help: "Total number of released spots",
		},
	)

	ReleaseCost = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "parking_release_cost",
			Help:    "Parking cost charged on release",
			Buckets: []float64{1, 5, 10, 20, 50, 100, 250, 500},
		},
	)

	LotsCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "parking_lots_created_total",
			Help: "Total number of parking lots created",
		},
	)

	LotsDeletedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "parking_lots_deleted_total",
			Help: "Total number of parking lots deleted",
		},
	)

	SpotsDeletedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "parking_spots_deleted_total",
			Help: "Total number of parking spots deleted individually",
		},
	)

	EmailsSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "parking_emails_sent_total",
			Help: "Total number of emails sent",
		},
		[]string{"type", "status"},
	)

	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "parking_errors_total",
			Help: "Total number of error responses by error kind",
		},
		[]string{"kind"},
	)

	EmailQueueLength = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "parking_email_queue_length",
			Help: "Current length of email queue",
		},
	)
)

func RecordHTTPRequest(method, path, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

func RecordReservation(outcome string) {
	ReservationsTotal.WithLabelValues(outcome).Inc()
}

func RecordRelease(cost float64) {
	ReleasesTotal.Inc()
	ReleaseCost.Observe(cost)
}

func RecordLotCreated() {
	LotsCreatedTotal.Inc()
}

func RecordLotDeleted() {
	LotsDeletedTotal.Inc()
}

func RecordSpotDeleted() {
	SpotsDeletedTotal.Inc()
}

func RecordEmail(emailType, status string) {
	EmailsSentTotal.WithLabelValues(emailType, status).Inc()
}

func SetEmailQueueLength(n int64) {
	EmailQueueLength.Set(float64(n))
}

func RecordError(kind string) {
	ErrorsTotal.WithLabelValues(kind).Inc()
}
