package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BookingStatus is the appointment side of a booking's state
type BookingStatus string

const (
	StatusAwaitingDeposit BookingStatus = "awaiting_deposit"
	StatusConfirmed       BookingStatus = "confirmed"
	// Reserved for manual administration; no transition produces them yet.
	StatusCancelled BookingStatus = "cancelled"
	StatusNoShow    BookingStatus = "no_show"
)

// ActiveStatuses are the statuses that occupy a time slot
var ActiveStatuses = []BookingStatus{StatusAwaitingDeposit, StatusConfirmed}

func (s BookingStatus) IsValid() bool {
	switch s {
	case StatusAwaitingDeposit, StatusConfirmed, StatusCancelled, StatusNoShow:
		return true
	default:
		return false
	}
}

// IsActive reports whether a booking in this status blocks its slot
func (s BookingStatus) IsActive() bool {
	return s == StatusAwaitingDeposit || s == StatusConfirmed
}

// PaymentStatus is the deposit side of a booking's state
type PaymentStatus string

const (
	PaymentUnpaid   PaymentStatus = "unpaid"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
	PaymentRejected PaymentStatus = "rejected"
)

func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentUnpaid, PaymentPaid, PaymentRefunded, PaymentRejected:
		return true
	default:
		return false
	}
}

// PaymentMethod is how the customer pays the deposit
type PaymentMethod string

const (
	MethodBankTransfer PaymentMethod = "bank_transfer"
	MethodPromptPayQR  PaymentMethod = "promptpay_qr"
)

func (m PaymentMethod) IsValid() bool {
	return m == MethodBankTransfer || m == MethodPromptPayQR
}

// Service is an offering of the salon
type Service struct {
	ID           uuid.UUID       `json:"id" db:"id"`
	Name         string          `json:"name" db:"name"`
	Price        decimal.Decimal `json:"price" db:"price"`
	Deposit      decimal.Decimal `json:"deposit" db:"deposit"`
	DurationMins int             `json:"duration_mins" db:"duration_mins"`
	IsActive     bool            `json:"is_active" db:"is_active"`
	ImageURL     *string         `json:"image_url" db:"image_url"`
	CreatedAt    time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at" db:"updated_at"`
}

// Duration returns the service length, zero when misconfigured
func (s *Service) Duration() time.Duration {
	if s.DurationMins <= 0 {
		return 0
	}
	return time.Duration(s.DurationMins) * time.Minute
}

// Bookable reports whether new bookings may reference the service
func (s *Service) Bookable() bool {
	return s.IsActive && s.DurationMins > 0
}

// Customer is a profile snapshot for a LINE user. Several rows may exist per LINE user;
// the most recently created one is current.
type Customer struct {
	ID         uuid.UUID `json:"id" db:"id"`
	LineUserID string    `json:"line_user_id" db:"line_user_id"`
	Name       string    `json:"name" db:"name"`
	Phone      string    `json:"phone" db:"phone"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// Booking is a reserved appointment slot
type Booking struct {
	ID                  uuid.UUID       `json:"id" db:"id"`
	ServiceID           uuid.UUID       `json:"service_id" db:"service_id"`
	CustomerID          uuid.UUID       `json:"customer_id" db:"customer_id"`
	StartAt             time.Time       `json:"start_at" db:"start_at"`
	EndAt               time.Time       `json:"end_at" db:"end_at"`
	DepositAmount       decimal.Decimal `json:"deposit_amount" db:"deposit_amount"`
	Status              BookingStatus   `json:"status" db:"status"`
	PaymentStatus       PaymentStatus   `json:"payment_status" db:"payment_status"`
	PaymentMethod       PaymentMethod   `json:"payment_method" db:"payment_method"`
	PaymentSlipURL      *string         `json:"payment_slip_url" db:"payment_slip_url"`
	PromptPayQRCode     *string         `json:"promptpay_qr_code" db:"promptpay_qr_code"`
	PromptPayQRImageURL *string         `json:"promptpay_qr_image_url" db:"promptpay_qr_image_url"`
	RejectReason        *string         `json:"reject_reason" db:"reject_reason"`
	CreatedAt           time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at" db:"updated_at"`
}

// BookingDetails is a booking joined with its service and customer
type BookingDetails struct {
	Booking
	ServiceName     string          `json:"service_name"`
	ServicePrice    decimal.Decimal `json:"service_price"`
	ServiceDuration int             `json:"service_duration_mins"`
	CustomerName    string          `json:"customer_name"`
	CustomerPhone   string          `json:"customer_phone"`
	LineUserID      string          `json:"line_user_id"`
}

// AdmissionRule selects how the collision window is computed
type AdmissionRule string

const (
	// RuleOverlap rejects when [start, start+d) intersects an existing [start_at, end_at)
	RuleOverlap AdmissionRule = "overlap"
	// RuleSymmetric rejects when an existing start_at falls in [start-d, start+d)
	RuleSymmetric AdmissionRule = "symmetric"
)

func (r AdmissionRule) IsValid() bool {
	return r == RuleOverlap || r == RuleSymmetric
}

// Window is the half-open interval [From, To) checked against existing bookings
type Window struct {
	Rule AdmissionRule
	From time.Time
	To   time.Time
}

// NewWindow builds the collision window for a booking requested at start
func NewWindow(rule AdmissionRule, start time.Time, d time.Duration) Window {
	if rule == RuleSymmetric {
		return Window{Rule: rule, From: start.Add(-d), To: start.Add(d)}
	}
	return Window{Rule: RuleOverlap, From: start, To: start.Add(d)}
}

// Collides reports whether an existing active booking falls in the window
func (w Window) Collides(b *Booking) bool {
	if !b.Status.IsActive() {
		return false
	}
	if w.Rule == RuleSymmetric {
		return !b.StartAt.Before(w.From) && b.StartAt.Before(w.To)
	}
	return b.StartAt.Before(w.To) && b.EndAt.After(w.From)
}

// PromptPayType is the kind of account a PromptPay id refers to
type PromptPayType string

const (
	PromptPayPhone   PromptPayType = "phone"
	PromptPayCitizen PromptPayType = "citizen"
	PromptPayWallet  PromptPayType = "wallet"
)

// PromptPaySettings is stored under the "promptpay" settings key
type PromptPaySettings struct {
	PromptPayID   string        `json:"promptpayId"`
	PromptPayType PromptPayType `json:"promptpayType"`
}

// SettingsKeyPromptPay is the settings row holding PromptPaySettings
const SettingsKeyPromptPay = "promptpay"
