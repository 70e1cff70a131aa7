// Package notify delivers customer chat notifications, either straight to
// LINE or through the NATS queue drained by the consumers process.
package notify

import (
	"context"
	"fmt"
	"time"

	"salonbook/internal/metrics"
	"salonbook/internal/models"
)

// Pusher sends a text message to a chat user
type Pusher interface {
	Push(ctx context.Context, to, text string) error
}

// Publisher publishes a message on a subject
type Publisher interface {
	Publish(subject string, data interface{}) error
}

// Direct pushes through the LINE Messaging API
type Direct struct {
	pusher Pusher
}

func NewDirect(pusher Pusher) *Direct {
	return &Direct{pusher: pusher}
}

func (d *Direct) Push(ctx context.Context, to, text string) error {
	if err := d.pusher.Push(ctx, to, text); err != nil {
		metrics.NotificationFailures.WithLabelValues("line").Inc()
		return fmt.Errorf("line push to %s: %w", to, err)
	}
	return nil
}

// Queue enqueues notifications on models.SubjectNotifyPush
type Queue struct {
	publisher Publisher
	now       func() time.Time
}

func NewQueue(publisher Publisher) *Queue {
	return &Queue{publisher: publisher, now: time.Now}
}

func (q *Queue) Push(_ context.Context, to, text string) error {
	msg := models.NotifyPushMessage{
		To:        to,
		Text:      text,
		Timestamp: q.now(),
	}
	if err := q.publisher.Publish(models.SubjectNotifyPush, msg); err != nil {
		metrics.NotificationFailures.WithLabelValues("queue").Inc()
		return fmt.Errorf("enqueue notification for %s: %w", to, err)
	}
	return nil
}
