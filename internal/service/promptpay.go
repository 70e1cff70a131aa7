package service

import (
	"context"
	"fmt"
	"strings"

	"salonbook/internal/auth"
	apperrors "salonbook/internal/errors"
	"salonbook/internal/models"
	"salonbook/internal/promptpay"
	"salonbook/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PromptPayService struct {
	settingsRepo repository.SettingsStore
	bookingRepo  repository.BookingStore
	serviceRepo  repository.ServiceStore
}

func NewPromptPayService(settingsRepo repository.SettingsStore, bookingRepo repository.BookingStore, serviceRepo repository.ServiceStore) *PromptPayService {
	return &PromptPayService{
		settingsRepo: settingsRepo,
		bookingRepo:  bookingRepo,
		serviceRepo:  serviceRepo,
	}
}

// GetSettings returns the saved settings, or empty defaults before the first save
func (s *PromptPayService) GetSettings(ctx context.Context, capability auth.Capability) (*models.PromptPaySettings, error) {
	if err := capability.Check(); err != nil {
		return nil, err
	}

	settings, err := s.settingsRepo.GetPromptPay(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get promptpay settings: %w", err)
	}
	if settings == nil {
		defaults := promptpay.DefaultSettings()
		return &defaults, nil
	}
	return settings, nil
}

func (s *PromptPayService) SaveSettings(ctx context.Context, capability auth.Capability, req *models.SavePromptPaySettingsRequest) (*models.PromptPaySettings, error) {
	if err := capability.Check(); err != nil {
		return nil, err
	}

	settings := models.PromptPaySettings{
		PromptPayID:   strings.TrimSpace(req.PromptPayID),
		PromptPayType: req.PromptPayType,
	}
	if err := promptpay.ValidateSettings(settings); err != nil {
		return nil, fmt.Errorf("%v: %w", err, apperrors.ErrValidation)
	}

	if err := s.settingsRepo.SavePromptPay(ctx, settings); err != nil {
		return nil, fmt.Errorf("failed to save promptpay settings: %w", err)
	}
	return &settings, nil
}

// AdminGenerate builds a payload for a booking's deposit, or for a service's
// current deposit when no booking is given.
func (s *PromptPayService) AdminGenerate(ctx context.Context, capability auth.Capability, req *models.AdminQRRequest) (*models.AdminQRResponse, error) {
	if err := capability.Check(); err != nil {
		return nil, err
	}

	var (
		amount      decimal.Decimal
		serviceName string
	)

	switch {
	case req.BookingID != "":
		id, err := uuid.Parse(req.BookingID)
		if err != nil {
			return nil, fmt.Errorf("invalid booking id: %w", apperrors.ErrValidation)
		}
		booking, err := s.bookingRepo.GetDetails(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to get booking: %w", err)
		}
		if booking == nil {
			return nil, fmt.Errorf("booking %s: %w", id, apperrors.ErrNotFound)
		}
		amount, serviceName = booking.DepositAmount, booking.ServiceName

	case req.ServiceID != "":
		id, err := uuid.Parse(req.ServiceID)
		if err != nil {
			return nil, fmt.Errorf("invalid service id: %w", apperrors.ErrValidation)
		}
		service, err := s.serviceRepo.GetByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to get service: %w", err)
		}
		if service == nil {
			return nil, fmt.Errorf("service %s: %w", id, apperrors.ErrNotFound)
		}
		amount, serviceName = service.Deposit, service.Name

	default:
		return nil, fmt.Errorf("booking_id or service_id is required: %w", apperrors.ErrValidation)
	}

	settings, payload, err := s.Payload(ctx, amount)
	if err != nil {
		return nil, err
	}

	return &models.AdminQRResponse{
		QRCodeData:    payload,
		Amount:        amount,
		ServiceName:   serviceName,
		PromptPayID:   settings.PromptPayID,
		PromptPayType: settings.PromptPayType,
	}, nil
}

// CustomerGenerate builds the payload for a customer's own booking deposit
func (s *PromptPayService) CustomerGenerate(ctx context.Context, req *models.CustomerQRRequest) (*models.CustomerQRResponse, error) {
	id, err := uuid.Parse(req.BookingID)
	if err != nil {
		return nil, fmt.Errorf("invalid booking id: %w", apperrors.ErrValidation)
	}

	booking, err := s.bookingRepo.GetDetails(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	if booking == nil {
		return nil, fmt.Errorf("booking %s: %w", id, apperrors.ErrNotFound)
	}

	_, payload, err := s.Payload(ctx, booking.DepositAmount)
	if err != nil {
		return nil, err
	}

	return &models.CustomerQRResponse{
		QRData: payload,
		BookingInfo: models.QRBookingInfo{
			BookingID:     booking.ID.String(),
			ServiceName:   booking.ServiceName,
			Amount:        booking.DepositAmount,
			CustomerName:  booking.CustomerName,
			CustomerPhone: booking.CustomerPhone,
		},
	}, nil
}

// Payload encodes a positive amount for the configured PromptPay account
func (s *PromptPayService) Payload(ctx context.Context, amount decimal.Decimal) (*models.PromptPaySettings, string, error) {
	if !amount.IsPositive() {
		return nil, "", fmt.Errorf("amount must be positive: %w", apperrors.ErrValidation)
	}

	settings, err := s.settingsRepo.GetPromptPay(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("failed to get promptpay settings: %w", err)
	}
	if settings == nil || settings.PromptPayID == "" {
		return nil, "", apperrors.ErrSettingsMissing
	}
	if settings.PromptPayType == "" {
		settings.PromptPayType = models.PromptPayPhone
	}

	payload, err := promptpay.Payload(settings.PromptPayID, amount)
	if err != nil {
		return nil, "", fmt.Errorf("%v: %w", err, apperrors.ErrSettingsMissing)
	}
	return settings, payload, nil
}
