package models

import "time"

// NATS subjects
const (
	EventBookingCreated      = "booking.created"
	EventBookingSlipAttached = "booking.slip_attached"
	EventBookingApproved     = "booking.approved"
	EventBookingRejected     = "booking.rejected"
	EventBookingQRConfirmed  = "booking.qr_confirmed"

	// SubjectNotifyPush carries customer notifications for the consumer process
	SubjectNotifyPush = "notify.push"
)

// BookingCreatedEvent is published after a booking is admitted
type BookingCreatedEvent struct {
	BookingID     string        `json:"booking_id"`
	ServiceID     string        `json:"service_id"`
	CustomerID    string        `json:"customer_id"`
	StartAt       time.Time     `json:"start_at"`
	DepositAmount string        `json:"deposit_amount"`
	PaymentMethod PaymentMethod `json:"payment_method"`
	Timestamp     time.Time     `json:"timestamp"`
}

// BookingTransitionEvent is published after a payment state change
type BookingTransitionEvent struct {
	BookingID     string        `json:"booking_id"`
	Status        BookingStatus `json:"status"`
	PaymentStatus PaymentStatus `json:"payment_status"`
	Reason        string        `json:"reason,omitempty"`
	Timestamp     time.Time     `json:"timestamp"`
}

// SlipAttachedEvent is published after a slip image is linked to a booking
type SlipAttachedEvent struct {
	BookingID  string    `json:"booking_id"`
	LineUserID string    `json:"line_user_id"`
	SlipURL    string    `json:"slip_url"`
	Timestamp  time.Time `json:"timestamp"`
}

// NotifyPushMessage is a queued customer notification
type NotifyPushMessage struct {
	To        string    `json:"to"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}
