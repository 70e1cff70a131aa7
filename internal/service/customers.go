package service

import (
	"context"
	"fmt"
	"strings"

	apperrors "salonbook/internal/errors"
	"salonbook/internal/logger"
	"salonbook/internal/models"
	"salonbook/internal/repository"

	"github.com/google/uuid"
)

type CustomerService struct {
	customerRepo repository.CustomerStore
	bookingRepo  repository.BookingStore
}

func NewCustomerService(customerRepo repository.CustomerStore, bookingRepo repository.BookingStore) *CustomerService {
	return &CustomerService{
		customerRepo: customerRepo,
		bookingRepo:  bookingRepo,
	}
}

// Latest returns the current profile of a LINE user, Found=false when unknown
func (s *CustomerService) Latest(ctx context.Context, lineUserID string) (*models.LatestCustomerResponse, error) {
	if lineUserID == "" {
		return nil, fmt.Errorf("LINE user id is required: %w", apperrors.ErrValidation)
	}

	customer, err := s.customerRepo.Latest(ctx, lineUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}
	if customer == nil {
		return &models.LatestCustomerResponse{Found: false}, nil
	}

	return &models.LatestCustomerResponse{
		Name:  customer.Name,
		Phone: customer.Phone,
		Found: true,
	}, nil
}

// Ensure returns a customer row matching the given profile, adding a new
// snapshot when the latest one differs. Empty name or phone keep the latest value.
func (s *CustomerService) Ensure(ctx context.Context, lineUserID, name, phone string) (*models.Customer, error) {
	name, phone = strings.TrimSpace(name), strings.TrimSpace(phone)

	latest, err := s.customerRepo.Latest(ctx, lineUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}

	if latest != nil {
		if name == "" {
			name = latest.Name
		}
		if phone == "" {
			phone = latest.Phone
		}
		if latest.Name == name && latest.Phone == phone {
			return latest, nil
		}
	}

	customer := &models.Customer{
		LineUserID: lineUserID,
		Name:       name,
		Phone:      phone,
	}
	if err := s.customerRepo.Create(ctx, customer); err != nil {
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}

	logger.WithContext(ctx).Info("Customer profile recorded", "customer_id", customer.ID, "line_user_id", lineUserID)
	return customer, nil
}

// Bookings lists the booking history of a LINE user, newest appointment first
func (s *CustomerService) Bookings(ctx context.Context, lineUserID string) ([]models.CustomerBookingItem, error) {
	if lineUserID == "" {
		return nil, fmt.Errorf("LINE user id is required: %w", apperrors.ErrValidation)
	}

	list, err := s.bookingRepo.ListByLineUser(ctx, lineUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to get bookings: %w", err)
	}

	result := make([]models.CustomerBookingItem, len(list))
	for i, b := range list {
		result[i] = models.CustomerBookingItem{
			ID:            b.ID.String(),
			StartAt:       b.StartAt,
			Status:        b.Status,
			PaymentStatus: b.PaymentStatus,
			DepositAmount: b.DepositAmount,
			PaymentMethod: b.PaymentMethod,
			CreatedAt:     b.CreatedAt,
			ServiceName:   b.ServiceName,
			ServicePrice:  b.ServicePrice,
			CustomerName:  b.CustomerName,
			CustomerPhone: b.CustomerPhone,
		}
	}
	return result, nil
}

// UpdateBookingCustomer records new contact details for a booking owned by the LINE user
func (s *CustomerService) UpdateBookingCustomer(ctx context.Context, bookingID uuid.UUID, req *models.UpdateBookingCustomerRequest) (*models.Customer, error) {
	name, phone := strings.TrimSpace(req.Name), strings.TrimSpace(req.Phone)
	if name == "" || phone == "" || req.LineUserID == "" {
		return nil, fmt.Errorf("name, phone and line_user_id are required: %w", apperrors.ErrValidation)
	}

	booking, err := s.bookingRepo.GetDetails(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	if booking == nil {
		return nil, fmt.Errorf("booking %s: %w", bookingID, apperrors.ErrNotFound)
	}
	if booking.LineUserID != req.LineUserID {
		return nil, fmt.Errorf("booking %s belongs to another user: %w", bookingID, apperrors.ErrForbidden)
	}

	customer := &models.Customer{
		LineUserID: req.LineUserID,
		Name:       name,
		Phone:      phone,
	}
	if err := s.customerRepo.Create(ctx, customer); err != nil {
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}

	if err := s.bookingRepo.SetCustomer(ctx, bookingID, customer.ID); err != nil {
		return nil, fmt.Errorf("failed to update booking customer: %w", err)
	}

	return customer, nil
}
