package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"salonbook/internal/auth"
	"salonbook/internal/external"
	"salonbook/internal/models"
	"salonbook/internal/repository"
	"salonbook/internal/repository/memory"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type pushed struct {
	To   string
	Text string
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []pushed
	err  error
}

func (n *fakeNotifier) Push(_ context.Context, to, text string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, pushed{To: to, Text: text})
	return nil
}

func (n *fakeNotifier) messages() []pushed {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]pushed(nil), n.sent...)
}

type fakePublisher struct {
	mu       sync.Mutex
	subjects []string
	err      error
}

func (p *fakePublisher) Publish(subject string, _ interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.subjects = append(p.subjects, subject)
	return nil
}

func (p *fakePublisher) published() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.subjects...)
}

type fakeChat struct {
	replies  []string
	content  []byte
	fetchErr error
}

func (c *fakeChat) Reply(_ context.Context, _ string, messages []external.LineMessage) error {
	for _, m := range messages {
		c.replies = append(c.replies, m.Text)
	}
	return nil
}

func (c *fakeChat) GetContent(_ context.Context, _ string) ([]byte, string, error) {
	if c.fetchErr != nil {
		return nil, "", c.fetchErr
	}
	return c.content, "image/jpeg", nil
}

type fakeStorage struct {
	paths []string
	err   error
}

func (s *fakeStorage) UploadSlip(_ context.Context, path string, _ []byte, _ string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.paths = append(s.paths, path)
	return "https://storage.example/" + path, nil
}

var errUnavailable = errors.New("unavailable")

type fixture struct {
	repos     *repository.Repositories
	notifier  *fakeNotifier
	publisher *fakePublisher
	chat      *fakeChat
	storage   *fakeStorage
	svc       *Services
	admin     auth.Capability
}

func newFixture(t *testing.T, opts Options) *fixture {
	t.Helper()

	admin, err := auth.NewGuard("s3cret").Authorize("s3cret")
	require.NoError(t, err)

	f := &fixture{
		repos:     memory.New().Repositories(),
		notifier:  &fakeNotifier{},
		publisher: &fakePublisher{},
		chat:      &fakeChat{content: []byte("jpeg")},
		storage:   &fakeStorage{},
		admin:     admin,
	}
	if opts.BaseURL == "" {
		opts.BaseURL = "https://salon.example"
	}
	f.svc = NewServices(f.repos, Deps{
		Publisher: f.publisher,
		Notifier:  f.notifier,
		Storage:   f.storage,
		Chat:      f.chat,
	}, opts)
	return f
}

func (f *fixture) addService(t *testing.T, name string, deposit int64, mins int) *models.Service {
	t.Helper()
	service := &models.Service{
		Name:         name,
		Price:        decimal.NewFromInt(deposit * 3),
		Deposit:      decimal.NewFromInt(deposit),
		DurationMins: mins,
		IsActive:     true,
	}
	require.NoError(t, f.repos.Services.Create(context.Background(), service))
	return service
}

func (f *fixture) book(t *testing.T, service *models.Service, start time.Time, lineUserID string) *models.CreateBookingResponse {
	t.Helper()
	resp, err := f.svc.Bookings.Create(context.Background(), &models.CreateBookingRequest{
		ServiceID:  service.ID.String(),
		StartAt:    start,
		LineUserID: lineUserID,
		Name:       "Somchai",
		Phone:      "0812345678",
	})
	require.NoError(t, err)
	return resp
}

// at returns a Bangkok wall-clock time on 2025-03-10
func at(hour, min int) time.Time {
	return time.Date(2025, 3, 10, hour, min, 0, 0, Bangkok)
}
