package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"salonbook/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPusher struct {
	to, text string
	err      error
}

func (p *recordingPusher) Push(_ context.Context, to, text string) error {
	p.to, p.text = to, text
	return p.err
}

type recordingPublisher struct {
	subject string
	data    interface{}
	err     error
}

func (p *recordingPublisher) Publish(subject string, data interface{}) error {
	p.subject, p.data = subject, data
	return p.err
}

func TestDirect_Push(t *testing.T) {
	pusher := &recordingPusher{}
	require.NoError(t, NewDirect(pusher).Push(context.Background(), "U1", "สวัสดี"))
	assert.Equal(t, "U1", pusher.to)
	assert.Equal(t, "สวัสดี", pusher.text)

	pusher.err = errors.New("429 too many requests")
	err := NewDirect(pusher).Push(context.Background(), "U1", "x")
	assert.ErrorIs(t, err, pusher.err)
}

func TestQueue_Push(t *testing.T) {
	publisher := &recordingPublisher{}
	q := NewQueue(publisher)
	fixed := time.Date(2025, 3, 10, 3, 0, 0, 0, time.UTC)
	q.now = func() time.Time { return fixed }

	require.NoError(t, q.Push(context.Background(), "U1", "รับสลิปแล้ว"))
	assert.Equal(t, models.SubjectNotifyPush, publisher.subject)
	assert.Equal(t, models.NotifyPushMessage{To: "U1", Text: "รับสลิปแล้ว", Timestamp: fixed}, publisher.data)

	publisher.err = errors.New("nats: connection closed")
	assert.Error(t, q.Push(context.Background(), "U1", "x"))
}
