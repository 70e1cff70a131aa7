package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"salonbook/internal/auth"
	apperrors "salonbook/internal/errors"
	"salonbook/internal/logger"
	"salonbook/internal/metrics"
	"salonbook/internal/models"
	"salonbook/internal/repository"

	"github.com/google/uuid"
)

// PaymentService moves bookings through the deposit lifecycle:
//
//	awaiting_deposit/unpaid --approve--> confirmed/paid
//	awaiting_deposit/*      --reject---> awaiting_deposit/rejected
//	slip upload changes only payment_slip_url
type PaymentService struct {
	bookingRepo repository.BookingStore
	notifier    *notifySink
	events      *eventSink
}

func NewPaymentService(bookingRepo repository.BookingStore, notifier *notifySink, events *eventSink) *PaymentService {
	return &PaymentService{
		bookingRepo: bookingRepo,
		notifier:    notifier,
		events:      events,
	}
}

// AttachSlip links a slip image to the LINE user's most recent booking still
// awaiting deposit. Statuses are not changed.
func (s *PaymentService) AttachSlip(ctx context.Context, lineUserID, slipURL string) (*models.Booking, error) {
	if lineUserID == "" || slipURL == "" {
		return nil, fmt.Errorf("line user id and slip url are required: %w", apperrors.ErrValidation)
	}

	pending, err := s.bookingRepo.LatestAwaitingByLineUser(ctx, lineUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to find pending booking: %w", err)
	}
	if pending == nil {
		return nil, fmt.Errorf("no booking awaiting deposit for %s: %w", lineUserID, apperrors.ErrNotFound)
	}

	booking, err := s.bookingRepo.SetSlipURL(ctx, pending.ID, slipURL)
	if err != nil {
		return nil, fmt.Errorf("failed to attach slip: %w", err)
	}
	if booking == nil {
		return nil, fmt.Errorf("booking %s: %w", pending.ID, apperrors.ErrNotFound)
	}

	metrics.Transitions.WithLabelValues("slip_attached").Inc()
	logger.WithContext(ctx).Info("Payment slip attached", "booking_id", booking.ID)

	s.events.publish(ctx, models.EventBookingSlipAttached, models.SlipAttachedEvent{
		BookingID:  booking.ID.String(),
		LineUserID: lineUserID,
		SlipURL:    slipURL,
		Timestamp:  time.Now(),
	})

	return booking, nil
}

// Approve confirms the deposit. Applying it twice yields the same state.
func (s *PaymentService) Approve(ctx context.Context, capability auth.Capability, id uuid.UUID) (*models.Booking, error) {
	if err := capability.Check(); err != nil {
		return nil, err
	}
	return s.confirm(ctx, id, "approved", models.EventBookingApproved, nil)
}

// ConfirmQRPayment is approval for bookings paid by PromptPay QR
func (s *PaymentService) ConfirmQRPayment(ctx context.Context, capability auth.Capability, id uuid.UUID) (*models.Booking, error) {
	if err := capability.Check(); err != nil {
		return nil, err
	}
	return s.confirm(ctx, id, "qr_confirmed", models.EventBookingQRConfirmed, func(b *models.BookingDetails) error {
		if b.PaymentMethod != models.MethodPromptPayQR {
			return fmt.Errorf("booking %s is paid by %s: %w", b.ID, b.PaymentMethod, apperrors.ErrInvalidTransition)
		}
		return nil
	})
}

func (s *PaymentService) confirm(ctx context.Context, id uuid.UUID, transition, subject string, precondition func(*models.BookingDetails) error) (*models.Booking, error) {
	current, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if precondition != nil {
		if err := precondition(current); err != nil {
			return nil, err
		}
	}

	booking, err := s.bookingRepo.UpdateStatus(ctx, id, models.StatusConfirmed, models.PaymentPaid, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to confirm booking: %w", err)
	}
	if booking == nil {
		return nil, fmt.Errorf("booking %s: %w", id, apperrors.ErrNotFound)
	}

	s.transitioned(ctx, booking, transition, subject, "")
	s.notifier.push(ctx, current.LineUserID, depositConfirmedMessage(current.ServiceName, booking.StartAt))
	return booking, nil
}

// Reject sends the booking back to awaiting a new slip
func (s *PaymentService) Reject(ctx context.Context, capability auth.Capability, id uuid.UUID, reason string) (*models.Booking, error) {
	if err := capability.Check(); err != nil {
		return nil, err
	}

	current, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	var stored *string
	if reason = strings.TrimSpace(reason); reason != "" {
		stored = &reason
	}

	booking, err := s.bookingRepo.UpdateStatus(ctx, id, models.StatusAwaitingDeposit, models.PaymentRejected, stored)
	if err != nil {
		return nil, fmt.Errorf("failed to reject booking: %w", err)
	}
	if booking == nil {
		return nil, fmt.Errorf("booking %s: %w", id, apperrors.ErrNotFound)
	}

	s.transitioned(ctx, booking, "rejected", models.EventBookingRejected, reason)
	s.notifier.push(ctx, current.LineUserID, depositRejectedMessage(reason))
	return booking, nil
}

func (s *PaymentService) load(ctx context.Context, id uuid.UUID) (*models.BookingDetails, error) {
	booking, err := s.bookingRepo.GetDetails(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	if booking == nil {
		return nil, fmt.Errorf("booking %s: %w", id, apperrors.ErrNotFound)
	}
	return booking, nil
}

func (s *PaymentService) transitioned(ctx context.Context, booking *models.Booking, transition, subject, reason string) {
	metrics.Transitions.WithLabelValues(transition).Inc()
	logger.WithContext(ctx).Info("Booking payment state changed",
		"booking_id", booking.ID,
		"transition", transition,
		"status", booking.Status,
		"payment_status", booking.PaymentStatus)

	s.events.publish(ctx, subject, models.BookingTransitionEvent{
		BookingID:     booking.ID.String(),
		Status:        booking.Status,
		PaymentStatus: booking.PaymentStatus,
		Reason:        reason,
		Timestamp:     time.Now(),
	})
}
