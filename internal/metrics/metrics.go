// Package metrics holds the Prometheus collectors of the service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "salonbook_http_requests_total",
		Help: "HTTP requests by route, method and status code.",
	}, []string{"route", "method", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "salonbook_http_request_duration_seconds",
		Help:    "HTTP request latency by route and method.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method"})

	// outcome: admitted, slot_taken, invalid_service, error
	Admissions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "salonbook_booking_admissions_total",
		Help: "Booking admission attempts by outcome.",
	}, []string{"outcome"})

	AdmissionLockWait = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "salonbook_booking_admission_duration_seconds",
		Help:    "Time spent in the service-locked admission transaction.",
		Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
	})

	Transitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "salonbook_booking_transitions_total",
		Help: "Booking payment state transitions by kind.",
	}, []string{"transition"})

	// channel: line, queue
	NotificationFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "salonbook_notification_failures_total",
		Help: "Customer notifications that could not be delivered.",
	}, []string{"channel"})

	EventPublishFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "salonbook_event_publish_failures_total",
		Help: "Domain events that could not be published.",
	})

	RemindersSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "salonbook_reminders_sent_total",
		Help: "Appointment reminders pushed to customers.",
	})
)

// Admission outcomes
const (
	OutcomeAdmitted       = "admitted"
	OutcomeSlotTaken      = "slot_taken"
	OutcomeInvalidService = "invalid_service"
	OutcomeError          = "error"
)
