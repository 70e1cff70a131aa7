package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"salonbook/internal/auth"
	apperrors "salonbook/internal/errors"
	"salonbook/internal/logger"
	"salonbook/internal/metrics"
	"salonbook/internal/models"
	"salonbook/internal/promptpay"
	"salonbook/internal/repository"

	"github.com/google/uuid"
)

// BookingService admits new bookings so that no two active bookings of the
// same service overlap, and answers booking queries.
type BookingService struct {
	bookingRepo repository.BookingStore
	serviceRepo repository.ServiceStore
	customers   *CustomerService
	promptPay   *PromptPayService
	events      *eventSink
	rule        models.AdmissionRule
	baseURL     string
}

func NewBookingService(bookingRepo repository.BookingStore, serviceRepo repository.ServiceStore, customers *CustomerService, promptPay *PromptPayService, events *eventSink, opts Options) *BookingService {
	rule := opts.AdmissionRule
	if !rule.IsValid() {
		rule = models.RuleOverlap
	}

	return &BookingService{
		bookingRepo: bookingRepo,
		serviceRepo: serviceRepo,
		customers:   customers,
		promptPay:   promptPay,
		events:      events,
		rule:        rule,
		baseURL:     opts.BaseURL,
	}
}

// Rule is the admission rule in effect
func (s *BookingService) Rule() models.AdmissionRule {
	return s.rule
}

// CanAdmit reports whether a booking for serviceID starting at start would be
// admitted right now. A nil error means allow.
func (s *BookingService) CanAdmit(ctx context.Context, serviceID uuid.UUID, start time.Time) error {
	service, err := s.bookableService(ctx, serviceID)
	if err != nil {
		return err
	}

	return s.bookingRepo.WithServiceLock(ctx, serviceID, func(tx repository.BookingTx) error {
		return s.checkWindow(ctx, tx, service, start)
	})
}

// Create admits and stores a booking in (awaiting_deposit, unpaid) with the
// service's current deposit. The collision check and the insert run under one
// per-service lock, so of two concurrent requests for the same slot exactly one wins.
func (s *BookingService) Create(ctx context.Context, req *models.CreateBookingRequest) (*models.CreateBookingResponse, error) {
	serviceID, err := uuid.Parse(req.ServiceID)
	if err != nil {
		return nil, fmt.Errorf("invalid service id %q: %w", req.ServiceID, apperrors.ErrValidation)
	}
	if req.StartAt.IsZero() {
		return nil, fmt.Errorf("start_at is required: %w", apperrors.ErrValidation)
	}
	if req.LineUserID == "" {
		return nil, fmt.Errorf("line_user_id is required: %w", apperrors.ErrValidation)
	}

	method := req.PaymentMethod
	if method == "" {
		method = models.MethodBankTransfer
	}
	if !method.IsValid() {
		return nil, fmt.Errorf("unknown payment method %q: %w", method, apperrors.ErrValidation)
	}

	service, err := s.bookableService(ctx, serviceID)
	if err != nil {
		metrics.Admissions.WithLabelValues(outcomeOf(err)).Inc()
		return nil, err
	}

	booking := &models.Booking{
		ID:            uuid.New(),
		ServiceID:     service.ID,
		StartAt:       req.StartAt.UTC(),
		EndAt:         req.StartAt.UTC().Add(service.Duration()),
		DepositAmount: service.Deposit,
		Status:        models.StatusAwaitingDeposit,
		PaymentStatus: models.PaymentUnpaid,
		PaymentMethod: method,
	}

	if method == models.MethodPromptPayQR {
		_, payload, err := s.promptPay.Payload(ctx, service.Deposit)
		if err != nil {
			metrics.Admissions.WithLabelValues(outcomeOf(err)).Inc()
			return nil, err
		}
		imageURL := promptpay.ImageURL(s.baseURL, payload)
		booking.PromptPayQRCode = &payload
		booking.PromptPayQRImageURL = &imageURL
	}

	customer, err := s.customers.Ensure(ctx, req.LineUserID, req.Name, req.Phone)
	if err != nil {
		metrics.Admissions.WithLabelValues(outcomeOf(err)).Inc()
		return nil, err
	}
	booking.CustomerID = customer.ID

	started := time.Now()
	err = s.bookingRepo.WithServiceLock(ctx, service.ID, func(tx repository.BookingTx) error {
		if err := s.checkWindow(ctx, tx, service, booking.StartAt); err != nil {
			return err
		}
		return tx.Insert(ctx, booking)
	})
	metrics.AdmissionLockWait.Observe(time.Since(started).Seconds())
	metrics.Admissions.WithLabelValues(outcomeOf(err)).Inc()
	if err != nil {
		if errors.Is(err, apperrors.ErrSlotTaken) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}

	logger.WithContext(ctx).Info("Booking admitted",
		"booking_id", booking.ID,
		"service_id", service.ID,
		"start_at", booking.StartAt,
		"payment_method", method)

	s.events.publish(ctx, models.EventBookingCreated, models.BookingCreatedEvent{
		BookingID:     booking.ID.String(),
		ServiceID:     booking.ServiceID.String(),
		CustomerID:    booking.CustomerID.String(),
		StartAt:       booking.StartAt,
		DepositAmount: booking.DepositAmount.StringFixed(2),
		PaymentMethod: booking.PaymentMethod,
		Timestamp:     time.Now(),
	})

	return &models.CreateBookingResponse{
		ID:                  booking.ID.String(),
		StartAt:             booking.StartAt,
		EndAt:               booking.EndAt,
		DepositAmount:       booking.DepositAmount,
		Status:              booking.Status,
		PaymentStatus:       booking.PaymentStatus,
		PaymentMethod:       booking.PaymentMethod,
		PromptPayQRCode:     booking.PromptPayQRCode,
		PromptPayQRImageURL: booking.PromptPayQRImageURL,
		Message:             MsgBookingCreated,
	}, nil
}

func (s *BookingService) bookableService(ctx context.Context, serviceID uuid.UUID) (*models.Service, error) {
	service, err := s.serviceRepo.GetByID(ctx, serviceID)
	if err != nil {
		return nil, fmt.Errorf("failed to get service: %w", err)
	}
	if service == nil || !service.Bookable() {
		return nil, fmt.Errorf("service %s: %w", serviceID, apperrors.ErrInvalidService)
	}
	return service, nil
}

func (s *BookingService) checkWindow(ctx context.Context, tx repository.BookingTx, service *models.Service, start time.Time) error {
	window := models.NewWindow(s.rule, start.UTC(), service.Duration())

	colliding, err := tx.FindColliding(ctx, service.ID, window)
	if err != nil {
		return fmt.Errorf("failed to check collisions: %w", err)
	}
	if len(colliding) > 0 {
		logger.WithContext(ctx).Info("Booking slot taken",
			"service_id", service.ID,
			"start_at", start,
			"colliding_booking_id", colliding[0].ID)
		return apperrors.ErrSlotTaken
	}
	return nil
}

// Get returns a booking with its service and customer
func (s *BookingService) Get(ctx context.Context, id uuid.UUID) (*models.BookingDetails, error) {
	booking, err := s.bookingRepo.GetDetails(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	if booking == nil {
		return nil, fmt.Errorf("booking %s: %w", id, apperrors.ErrNotFound)
	}
	return booking, nil
}

// ListByStatus is the admin queue, ordered by appointment time. Empty status means awaiting_deposit.
func (s *BookingService) ListByStatus(ctx context.Context, capability auth.Capability, status models.BookingStatus) ([]models.BookingDetails, error) {
	if err := capability.Check(); err != nil {
		return nil, err
	}
	if status == "" {
		status = models.StatusAwaitingDeposit
	}
	if !status.IsValid() {
		return nil, fmt.Errorf("unknown status %q: %w", status, apperrors.ErrValidation)
	}

	list, err := s.bookingRepo.ListByStatus(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return list, nil
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeAdmitted
	case errors.Is(err, apperrors.ErrSlotTaken):
		return metrics.OutcomeSlotTaken
	case errors.Is(err, apperrors.ErrInvalidService):
		return metrics.OutcomeInvalidService
	default:
		return metrics.OutcomeError
	}
}
