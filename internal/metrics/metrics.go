package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "drivebook_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "drivebook_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	AvailabilityChecksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "drivebook_availability_checks_total",
			Help: "Total number of availability checks",
		},
		[]string{"result"},
	)

	BookingsCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "drivebook_bookings_created_total",
			Help: "Total number of bookings created",
		},
	)

	BookingTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "drivebook_booking_transitions_total",
			Help: "Total number of booking state transitions",
		},
		[]string{"action", "result"},
	)

	EarningsCreditedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "drivebook_earnings_credited_total",
			Help: "Net earnings credited to company wallets, in currency units",
		},
	)

	WithdrawalsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "drivebook_withdrawals_total",
			Help: "Total number of withdrawal request events",
		},
		[]string{"event"},
	)

	PendingReleasesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "drivebook_pending_releases_total",
			Help: "Total number of booking credits released from the payout hold",
		},
	)

	EmailsSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "drivebook_emails_sent_total",
			Help: "Total number of emails sent",
		},
		[]string{"type", "status"},
	)

	EmailQueueLength = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "drivebook_email_queue_length",
			Help: "Current length of email queue",
		},
	)
)

func RecordHTTPRequest(method, path, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

func RecordAvailabilityCheck(available bool) {
	result := "available"
	if !available {
		result = "unavailable"
	}
	AvailabilityChecksTotal.WithLabelValues(result).Inc()
}

func RecordBookingCreated() {
	BookingsCreatedTotal.Inc()
}

func RecordBookingTransition(action, result string) {
	BookingTransitionsTotal.WithLabelValues(action, result).Inc()
}

func RecordEarning(netAmount float64) {
	EarningsCreditedTotal.Add(netAmount)
}

func RecordWithdrawal(event string) {
	WithdrawalsTotal.WithLabelValues(event).Inc()
}

func RecordPendingReleases(count int) {
	PendingReleasesTotal.Add(float64(count))
}

func RecordEmail(emailType, status string) {
	EmailsSentTotal.WithLabelValues(emailType, status).Inc()
}
