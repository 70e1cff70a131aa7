package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"salonbook/internal/auth"
	apperrors "salonbook/internal/errors"
	"salonbook/internal/logger"
	"salonbook/internal/metrics"
	"salonbook/internal/models"
	"salonbook/internal/repository"

	"github.com/shopspring/decimal"
)

type ReportService struct {
	bookingRepo repository.BookingStore
}

func NewReportService(bookingRepo repository.BookingStore) *ReportService {
	return &ReportService{bookingRepo: bookingRepo}
}

// Daily lists every booking starting on date (YYYY-MM-DD, Bangkok day)
func (s *ReportService) Daily(ctx context.Context, capability auth.Capability, date string) (*models.DailyReport, error) {
	if err := capability.Check(); err != nil {
		return nil, err
	}

	day, err := time.ParseInLocation("2006-01-02", date, Bangkok)
	if err != nil {
		return nil, fmt.Errorf("date required (YYYY-MM-DD): %w", apperrors.ErrValidation)
	}

	list, err := s.bookingRepo.ListBetween(ctx, day, day.AddDate(0, 0, 1), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}

	report := &models.DailyReport{
		Date:         date,
		Bookings:     make([]models.DailyReportItem, len(list)),
		Total:        len(list),
		DepositTotal: decimal.Zero,
	}
	for i, b := range list {
		report.Bookings[i] = models.DailyReportItem{
			ID:            b.ID.String(),
			StartAt:       b.StartAt,
			ServiceName:   b.ServiceName,
			CustomerName:  b.CustomerName,
			CustomerPhone: b.CustomerPhone,
			Status:        b.Status,
			PaymentStatus: b.PaymentStatus,
			DepositAmount: b.DepositAmount,
		}
		switch b.Status {
		case models.StatusConfirmed:
			report.Confirmed++
		case models.StatusAwaitingDeposit:
			report.Awaiting++
		}
		if b.PaymentStatus == models.PaymentPaid {
			report.DepositTotal = report.DepositTotal.Add(b.DepositAmount)
		}
	}

	return report, nil
}

// reminderMarkTTL outlives the reminder window so a booking is never reminded twice
const reminderMarkTTL = 72 * time.Hour

// ReminderService pushes a reminder for confirmed bookings starting tomorrow
type ReminderService struct {
	bookingRepo repository.BookingStore
	notifier    *notifySink
	marker      ReminderMarker
}

func NewReminderService(bookingRepo repository.BookingStore, notifier *notifySink, marker ReminderMarker) *ReminderService {
	if marker == nil {
		marker = &localMarker{}
	}
	return &ReminderService{
		bookingRepo: bookingRepo,
		notifier:    notifier,
		marker:      marker,
	}
}

// SendDue reminds customers of confirmed bookings on the Bangkok day after now.
// It returns how many reminders were pushed.
func (s *ReminderService) SendDue(ctx context.Context, now time.Time) (int, error) {
	local := now.In(Bangkok)
	from := time.Date(local.Year(), local.Month(), local.Day()+1, 0, 0, 0, 0, Bangkok)
	to := from.AddDate(0, 0, 1)

	list, err := s.bookingRepo.ListBetween(ctx, from, to, []models.BookingStatus{models.StatusConfirmed})
	if err != nil {
		return 0, fmt.Errorf("failed to list bookings for reminders: %w", err)
	}

	sent := 0
	for _, b := range list {
		if b.LineUserID == "" {
			continue
		}
		first, err := s.marker.MarkReminded(ctx, b.ID.String(), reminderMarkTTL)
		if err != nil {
			logger.WithContext(ctx).Warn("Failed to mark reminder", "error", err, "booking_id", b.ID)
			continue
		}
		if !first {
			continue
		}
		if !s.notifier.push(ctx, b.LineUserID, reminderMessage(b.ServiceName, b.StartAt)) {
			// unmark so the next pass retries
			if err := s.marker.ClearReminded(ctx, b.ID.String()); err != nil {
				logger.WithContext(ctx).Warn("Failed to clear reminder mark", "error", err, "booking_id", b.ID)
			}
			continue
		}
		metrics.RemindersSent.Inc()
		sent++
	}

	return sent, nil
}

// localMarker de-duplicates within one process when no shared store is configured
type localMarker struct {
	seen sync.Map
}

func (m *localMarker) MarkReminded(_ context.Context, bookingID string, _ time.Duration) (bool, error) {
	_, loaded := m.seen.LoadOrStore(bookingID, struct{}{})
	return !loaded, nil
}

func (m *localMarker) ClearReminded(_ context.Context, bookingID string) error {
	m.seen.Delete(bookingID)
	return nil
}
