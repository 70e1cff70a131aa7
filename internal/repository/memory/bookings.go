package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"salonbook/internal/models"
	"salonbook/internal/repository"

	"github.com/google/uuid"
)

type bookings Store

func (r *bookings) serviceLock(serviceID uuid.UUID) *sync.Mutex {
	r.locksMu.Lock()
	defer r.locksMu.Unlock()
	l, ok := r.locks[serviceID]
	if !ok {
		l = &sync.Mutex{}
		r.locks[serviceID] = l
	}
	return l
}

// WithServiceLock stages inserts and applies them only when fn succeeds
func (r *bookings) WithServiceLock(ctx context.Context, serviceID uuid.UUID, fn func(tx repository.BookingTx) error) error {
	l := r.serviceLock(serviceID)
	l.Lock()
	defer l.Unlock()

	tx := &bookingTx{store: r}
	if err := fn(tx); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range tx.pending {
		r.bookings[b.ID] = b
	}
	return nil
}

type bookingTx struct {
	store   *bookings
	pending []models.Booking
}

func (t *bookingTx) FindColliding(_ context.Context, serviceID uuid.UUID, window models.Window) ([]models.Booking, error) {
	t.store.mu.RLock()
	defer t.store.mu.RUnlock()

	var out []models.Booking
	check := func(b models.Booking) {
		if b.ServiceID == serviceID && window.Collides(&b) {
			out = append(out, b)
		}
	}
	for _, b := range t.store.bookings {
		check(b)
	}
	for _, b := range t.pending {
		check(b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartAt.Before(out[j].StartAt) })
	return out, nil
}

func (t *bookingTx) Insert(_ context.Context, booking *models.Booking) error {
	if booking.ID == uuid.Nil {
		booking.ID = uuid.New()
	}
	t.store.mu.RLock()
	booking.CreatedAt = (*Store)(t.store).tick(t.store.lastCreated())
	t.store.mu.RUnlock()
	booking.UpdatedAt = booking.CreatedAt
	t.pending = append(t.pending, *booking)
	return nil
}

func (r *bookings) lastCreated() time.Time {
	var last time.Time
	for _, b := range r.bookings {
		if b.CreatedAt.After(last) {
			last = b.CreatedAt
		}
	}
	return last
}

func (r *bookings) GetByID(_ context.Context, id uuid.UUID) (*models.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

func (r *bookings) GetDetails(_ context.Context, id uuid.UUID) (*models.BookingDetails, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, nil
	}
	d := r.details(b)
	return &d, nil
}

func (r *bookings) mutate(id uuid.UUID, apply func(b *models.Booking)) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, nil
	}
	apply(&b)
	b.UpdatedAt = r.now()
	r.bookings[id] = b
	return &b, nil
}

func (r *bookings) UpdateStatus(_ context.Context, id uuid.UUID, status models.BookingStatus, paymentStatus models.PaymentStatus, reason *string) (*models.Booking, error) {
	return r.mutate(id, func(b *models.Booking) {
		b.Status = status
		b.PaymentStatus = paymentStatus
		b.RejectReason = reason
	})
}

func (r *bookings) SetSlipURL(_ context.Context, id uuid.UUID, slipURL string) (*models.Booking, error) {
	return r.mutate(id, func(b *models.Booking) {
		b.PaymentSlipURL = &slipURL
	})
}

func (r *bookings) SetCustomer(_ context.Context, id, customerID uuid.UUID) error {
	_, err := r.mutate(id, func(b *models.Booking) {
		b.CustomerID = customerID
	})
	return err
}

func (r *bookings) LatestAwaitingByLineUser(_ context.Context, lineUserID string) (*models.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var latest *models.Booking
	for _, b := range r.bookings {
		if b.Status != models.StatusAwaitingDeposit {
			continue
		}
		c, ok := (*customers)(r).byID(b.CustomerID)
		if !ok || c.LineUserID != lineUserID {
			continue
		}
		if latest == nil || b.CreatedAt.After(latest.CreatedAt) {
			cp := b
			latest = &cp
		}
	}
	return latest, nil
}

func (r *bookings) ListByStatus(_ context.Context, status models.BookingStatus) ([]models.BookingDetails, error) {
	out := r.list(func(d models.BookingDetails) bool { return d.Status == status })
	sort.Slice(out, func(i, j int) bool { return out[i].StartAt.Before(out[j].StartAt) })
	return out, nil
}

func (r *bookings) ListByLineUser(_ context.Context, lineUserID string) ([]models.BookingDetails, error) {
	out := r.list(func(d models.BookingDetails) bool { return d.LineUserID == lineUserID })
	sort.Slice(out, func(i, j int) bool { return out[i].StartAt.After(out[j].StartAt) })
	return out, nil
}

func (r *bookings) ListBetween(_ context.Context, from, to time.Time, statuses []models.BookingStatus) ([]models.BookingDetails, error) {
	out := r.list(func(d models.BookingDetails) bool {
		if d.StartAt.Before(from) || !d.StartAt.Before(to) {
			return false
		}
		if len(statuses) == 0 {
			return true
		}
		for _, s := range statuses {
			if d.Status == s {
				return true
			}
		}
		return false
	})
	sort.Slice(out, func(i, j int) bool { return out[i].StartAt.Before(out[j].StartAt) })
	return out, nil
}

func (r *bookings) list(keep func(models.BookingDetails) bool) []models.BookingDetails {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []models.BookingDetails{}
	for _, b := range r.bookings {
		if d := r.details(b); keep(d) {
			out = append(out, d)
		}
	}
	return out
}

// details joins service and customer; caller holds r.mu
func (r *bookings) details(b models.Booking) models.BookingDetails {
	d := models.BookingDetails{Booking: b}
	if svc, ok := r.services[b.ServiceID]; ok {
		d.ServiceName = svc.Name
		d.ServicePrice = svc.Price
		d.ServiceDuration = svc.DurationMins
	}
	if c, ok := (*customers)(r).byID(b.CustomerID); ok {
		d.CustomerName = c.Name
		d.CustomerPhone = c.Phone
		d.LineUserID = c.LineUserID
	}
	return d
}
