package consumers

import (
	"context"
	"encoding/json"
	"time"

	"salonbook/internal/logger"
	"salonbook/internal/models"
	"salonbook/internal/notify"

	"github.com/nats-io/stan.go"
)

// notifyMaxAge drops queued notifications nobody would want to read any more
const notifyMaxAge = 24 * time.Hour

type Handlers struct {
	pusher notify.Pusher
	now    func() time.Time
}

func NewHandlers(pusher notify.Pusher) *Handlers {
	return &Handlers{
		pusher: pusher,
		now:    time.Now,
	}
}

// HandleNotifyPush delivers a queued customer notification. Failed pushes are
// left unacked so NATS Streaming redelivers them after AckWait.
func (h *Handlers) HandleNotifyPush(m *stan.Msg) {
	if h.processNotify(context.Background(), m.Data) {
		m.Ack()
	}
}

// processNotify returns whether the message is done with and may be acked
func (h *Handlers) processNotify(ctx context.Context, data []byte) bool {
	var msg models.NotifyPushMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		logger.WithContext(ctx).Error("Failed to unmarshal notification", "error", err)
		return true
	}

	log := logger.WithContext(logger.ContextWithLineUserID(ctx, msg.To))

	if msg.To == "" || msg.Text == "" {
		log.Warn("Dropping notification without recipient or text")
		return true
	}
	if !msg.Timestamp.IsZero() && h.now().Sub(msg.Timestamp) > notifyMaxAge {
		log.Warn("Dropping stale notification", "queued_at", msg.Timestamp)
		return true
	}

	if h.pusher == nil {
		log.Error("No LINE client configured, notification left for redelivery")
		return false
	}
	if err := h.pusher.Push(ctx, msg.To, msg.Text); err != nil {
		log.Error("Failed to deliver notification", "error", err)
		return false
	}

	log.Debug("Notification delivered")
	return true
}

// HandleBookingEvent writes booking lifecycle events to the audit log
func (h *Handlers) HandleBookingEvent(subject string) stan.MsgHandler {
	return func(m *stan.Msg) {
		h.processBookingEvent(context.Background(), subject, m.Data)
		m.Ack()
	}
}

func (h *Handlers) processBookingEvent(ctx context.Context, subject string, data []byte) {
	var event struct {
		BookingID     string               `json:"booking_id"`
		Status        models.BookingStatus `json:"status"`
		PaymentStatus models.PaymentStatus `json:"payment_status"`
		Reason        string               `json:"reason"`
		Timestamp     time.Time            `json:"timestamp"`
	}
	if err := json.Unmarshal(data, &event); err != nil {
		logger.WithContext(ctx).Error("Failed to unmarshal booking event", "subject", subject, "error", err)
		return
	}

	args := []any{
		"subject", subject,
		"booking_id", event.BookingID,
		"occurred_at", event.Timestamp,
	}
	if event.Status != "" {
		args = append(args, "status", event.Status, "payment_status", event.PaymentStatus)
	}
	if event.Reason != "" {
		args = append(args, "reason", event.Reason)
	}
	logger.WithContext(ctx).Info("Booking event", args...)
}
