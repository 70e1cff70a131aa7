// Package memory provides in-process stores with the same semantics as the
// Postgres repositories. Used by tests and by the API when no database is configured.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"salonbook/internal/models"
	"salonbook/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Store keeps all tables behind a single mutex
type Store struct {
	mu        sync.RWMutex
	services  map[uuid.UUID]models.Service
	customers []models.Customer
	bookings  map[uuid.UUID]models.Booking
	promptpay *models.PromptPaySettings

	locksMu sync.Mutex
	locks   map[uuid.UUID]*sync.Mutex

	now func() time.Time
}

func New() *Store {
	return &Store{
		services: make(map[uuid.UUID]models.Service),
		bookings: make(map[uuid.UUID]models.Booking),
		locks:    make(map[uuid.UUID]*sync.Mutex),
		now:      time.Now,
	}
}

// Repositories exposes the store through the repository interfaces
func (s *Store) Repositories() *repository.Repositories {
	return &repository.Repositories{
		Services:  (*services)(s),
		Customers: (*customers)(s),
		Bookings:  (*bookings)(s),
		Settings:  (*settings)(s),
	}
}

// tick returns strictly increasing timestamps so "latest" ordering is deterministic
func (s *Store) tick(prev time.Time) time.Time {
	t := s.now()
	if !t.After(prev) {
		t = prev.Add(time.Microsecond)
	}
	return t
}

type services Store

func (r *services) GetByID(_ context.Context, id uuid.UUID) (*models.Service, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	svc, ok := r.services[id]
	if !ok {
		return nil, nil
	}
	return &svc, nil
}

func (r *services) ListActive(_ context.Context) ([]models.Service, error) {
	return r.filter(func(s models.Service) bool { return s.IsActive }), nil
}

func (r *services) SearchByName(_ context.Context, query string) ([]models.Service, error) {
	q := strings.ToLower(query)
	return r.filter(func(s models.Service) bool {
		return s.IsActive && strings.Contains(strings.ToLower(s.Name), q)
	}), nil
}

func (r *services) filter(keep func(models.Service) bool) []models.Service {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []models.Service{}
	for _, s := range r.services {
		if keep(s) {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (r *services) Create(_ context.Context, service *models.Service) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if service.ID == uuid.Nil {
		service.ID = uuid.New()
	}
	service.CreatedAt = r.now()
	service.UpdatedAt = service.CreatedAt
	r.services[service.ID] = *service
	return nil
}

func (r *services) Update(_ context.Context, service *models.Service) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.services[service.ID]; !ok {
		return nil
	}
	service.UpdatedAt = r.now()
	r.services[service.ID] = *service
	return nil
}

func (r *services) UpdateDeposits(_ context.Context, deposits map[uuid.UUID]decimal.Decimal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, deposit := range deposits {
		if svc, ok := r.services[id]; ok {
			svc.Deposit = deposit
			svc.UpdatedAt = r.now()
			r.services[id] = svc
		}
	}
	return nil
}

func (r *services) Deactivate(_ context.Context, id uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	svc, ok := r.services[id]
	if !ok {
		return false, nil
	}
	svc.IsActive = false
	r.services[id] = svc
	return true, nil
}

type customers Store

func (r *customers) Latest(_ context.Context, lineUserID string) (*models.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var latest *models.Customer
	for i := range r.customers {
		c := r.customers[i]
		if c.LineUserID != lineUserID {
			continue
		}
		if latest == nil || c.CreatedAt.After(latest.CreatedAt) {
			latest = &c
		}
	}
	return latest, nil
}

func (r *customers) Create(_ context.Context, customer *models.Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if customer.ID == uuid.Nil {
		customer.ID = uuid.New()
	}
	var prev time.Time
	if n := len(r.customers); n > 0 {
		prev = r.customers[n-1].CreatedAt
	}
	customer.CreatedAt = (*Store)(r).tick(prev)
	r.customers = append(r.customers, *customer)
	return nil
}

func (r *customers) byID(id uuid.UUID) (models.Customer, bool) {
	for _, c := range r.customers {
		if c.ID == id {
			return c, true
		}
	}
	return models.Customer{}, false
}

type settings Store

func (r *settings) GetPromptPay(_ context.Context) (*models.PromptPaySettings, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.promptpay == nil {
		return nil, nil
	}
	cp := *r.promptpay
	return &cp, nil
}

func (r *settings) SavePromptPay(_ context.Context, s models.PromptPaySettings) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.promptpay = &s
	return nil
}
