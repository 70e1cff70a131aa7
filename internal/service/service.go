package service

import (
	"context"
	"fmt"
	"time"

	"salonbook/internal/external"
	"salonbook/internal/logger"
	"salonbook/internal/metrics"
	"salonbook/internal/models"
	"salonbook/internal/repository"
)

// Bangkok is the salon's wall clock; day boundaries and message times use it
var Bangkok = time.FixedZone("ICT", 7*60*60)

// Notifier delivers a text message to a customer's chat
type Notifier interface {
	Push(ctx context.Context, to, text string) error
}

// EventPublisher publishes domain events
type EventPublisher interface {
	Publish(subject string, data interface{}) error
}

// ServiceIndex is the full-text index of the catalog
type ServiceIndex interface {
	IndexService(ctx context.Context, service *models.Service) error
	SearchServices(ctx context.Context, query string, limit int) ([]models.Service, error)
}

// ServiceCache caches the public catalog listing
type ServiceCache interface {
	GetServices(ctx context.Context) ([]models.Service, bool, error)
	SetServices(ctx context.Context, services []models.Service) error
	InvalidateServices(ctx context.Context) error
}

// ReminderMarker remembers which bookings were already reminded
type ReminderMarker interface {
	MarkReminded(ctx context.Context, bookingID string, ttl time.Duration) (bool, error)
	ClearReminded(ctx context.Context, bookingID string) error
}

// SlipStorage stores slip images and returns a URL an admin can open
type SlipStorage interface {
	UploadSlip(ctx context.Context, path string, data []byte, contentType string) (string, error)
}

// ChatClient is the part of the messaging platform used by the webhook
type ChatClient interface {
	Reply(ctx context.Context, replyToken string, messages []external.LineMessage) error
	GetContent(ctx context.Context, messageID string) ([]byte, string, error)
}

// Deps are the optional collaborators; nil members disable the feature they back
type Deps struct {
	Publisher EventPublisher
	Notifier  Notifier
	Index     ServiceIndex
	Cache     ServiceCache
	Reminders ReminderMarker
	Storage   SlipStorage
	Chat      ChatClient
}

type Options struct {
	AdmissionRule models.AdmissionRule
	BaseURL       string
	LiffID        string
}

type Services struct {
	Catalog   *CatalogService
	Customers *CustomerService
	PromptPay *PromptPayService
	Bookings  *BookingService
	Payments  *PaymentService
	Reports   *ReportService
	Reminders *ReminderService
	Chat      *ChatService
}

func NewServices(repos *repository.Repositories, deps Deps, opts Options) *Services {
	events := &eventSink{publisher: deps.Publisher}
	notifier := &notifySink{notifier: deps.Notifier}

	catalog := NewCatalogService(repos.Services, deps.Index, deps.Cache)
	customers := NewCustomerService(repos.Customers, repos.Bookings)
	promptPay := NewPromptPayService(repos.Settings, repos.Bookings, repos.Services)
	bookings := NewBookingService(repos.Bookings, repos.Services, customers, promptPay, events, opts)
	payments := NewPaymentService(repos.Bookings, notifier, events)

	return &Services{
		Catalog:   catalog,
		Customers: customers,
		PromptPay: promptPay,
		Bookings:  bookings,
		Payments:  payments,
		Reports:   NewReportService(repos.Bookings),
		Reminders: NewReminderService(repos.Bookings, notifier, deps.Reminders),
		Chat:      NewChatService(repos.Customers, payments, notifier, deps.Chat, deps.Storage, opts),
	}
}

// eventSink publishes best-effort: failures are logged and counted
type eventSink struct {
	publisher EventPublisher
}

func (e *eventSink) publish(ctx context.Context, subject string, data interface{}) {
	if e == nil || e.publisher == nil {
		return
	}
	if err := e.publisher.Publish(subject, data); err != nil {
		// Log error but don't fail the operation
		metrics.EventPublishFailures.Inc()
		logger.WithContext(ctx).Error("Failed to publish event",
			"error", err,
			"event_type", subject)
	}
}

// notifySink pushes best-effort: the caller's state change has already committed
type notifySink struct {
	notifier Notifier
}

func (n *notifySink) push(ctx context.Context, to, text string) bool {
	if n == nil || n.notifier == nil || to == "" {
		return false
	}
	if err := n.notifier.Push(ctx, to, text); err != nil {
		logger.WithContext(ctx).Warn("Failed to notify customer",
			"error", err,
			"line_user_id", to)
		return false
	}
	return true
}

// FormatThaiTime renders t the way Thai customers read appointment times
// (Buddhist era year, Bangkok clock).
func FormatThaiTime(t time.Time) string {
	lt := t.In(Bangkok)
	return fmt.Sprintf("%d/%d/%d %02d:%02d", lt.Day(), int(lt.Month()), lt.Year()+543, lt.Hour(), lt.Minute())
}
