package repository

import (
	"context"
	"time"

	"salonbook/internal/database"
	"salonbook/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ServiceStore persists the service catalog
type ServiceStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Service, error)
	ListActive(ctx context.Context) ([]models.Service, error)
	SearchByName(ctx context.Context, query string) ([]models.Service, error)
	Create(ctx context.Context, service *models.Service) error
	Update(ctx context.Context, service *models.Service) error
	UpdateDeposits(ctx context.Context, deposits map[uuid.UUID]decimal.Decimal) error
	Deactivate(ctx context.Context, id uuid.UUID) (bool, error)
}

// CustomerStore persists customer profile snapshots
type CustomerStore interface {
	Latest(ctx context.Context, lineUserID string) (*models.Customer, error)
	Create(ctx context.Context, customer *models.Customer) error
}

// BookingTx is the view of the bookings table inside a service-locked transaction
type BookingTx interface {
	FindColliding(ctx context.Context, serviceID uuid.UUID, window models.Window) ([]models.Booking, error)
	Insert(ctx context.Context, booking *models.Booking) error
}

// BookingStore persists bookings. Getters return (nil, nil) when the row does not exist.
type BookingStore interface {
	// WithServiceLock serializes admission per service: fn runs in a transaction
	// that holds an exclusive lock for serviceID until commit.
	WithServiceLock(ctx context.Context, serviceID uuid.UUID, fn func(tx BookingTx) error) error

	GetByID(ctx context.Context, id uuid.UUID) (*models.Booking, error)
	GetDetails(ctx context.Context, id uuid.UUID) (*models.BookingDetails, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.BookingStatus, paymentStatus models.PaymentStatus, reason *string) (*models.Booking, error)
	SetSlipURL(ctx context.Context, id uuid.UUID, slipURL string) (*models.Booking, error)
	SetCustomer(ctx context.Context, id, customerID uuid.UUID) error
	LatestAwaitingByLineUser(ctx context.Context, lineUserID string) (*models.Booking, error)
	ListByStatus(ctx context.Context, status models.BookingStatus) ([]models.BookingDetails, error)
	ListByLineUser(ctx context.Context, lineUserID string) ([]models.BookingDetails, error)
	// ListBetween returns bookings with start_at in [from, to); empty statuses means any
	ListBetween(ctx context.Context, from, to time.Time, statuses []models.BookingStatus) ([]models.BookingDetails, error)
}

// SettingsStore persists key/value application settings
type SettingsStore interface {
	GetPromptPay(ctx context.Context) (*models.PromptPaySettings, error)
	SavePromptPay(ctx context.Context, settings models.PromptPaySettings) error
}

type Repositories struct {
	Services  ServiceStore
	Customers CustomerStore
	Bookings  BookingStore
	Settings  SettingsStore
}

func NewRepositories(db *database.DB) *Repositories {
	return &Repositories{
		Services:  NewServiceRepository(db),
		Customers: NewCustomerRepository(db),
		Bookings:  NewBookingRepository(db),
		Settings:  NewSettingsRepository(db),
	}
}
