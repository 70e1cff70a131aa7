package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWindowCollides(t *testing.T) {
	base := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)
	hour := time.Hour

	existing := func(start time.Time, d time.Duration, status BookingStatus) *Booking {
		return &Booking{StartAt: start, EndAt: start.Add(d), Status: status}
	}

	tests := []struct {
		name     string
		rule     AdmissionRule
		start    time.Time
		d        time.Duration
		existing *Booking
		want     bool
	}{
		{"overlap same start", RuleOverlap, base, hour, existing(base, hour, StatusAwaitingDeposit), true},
		{"overlap back to back after", RuleOverlap, base.Add(hour), hour, existing(base, hour, StatusConfirmed), false},
		{"overlap back to back before", RuleOverlap, base.Add(-hour), hour, existing(base, hour, StatusConfirmed), false},
		{"overlap partial", RuleOverlap, base.Add(30 * time.Minute), hour, existing(base, hour, StatusConfirmed), true},
		{"overlap ignores cancelled", RuleOverlap, base, hour, existing(base, hour, StatusCancelled), false},
		{"overlap ignores no show", RuleOverlap, base, hour, existing(base, hour, StatusNoShow), false},
		{"symmetric lower bound inclusive", RuleSymmetric, base.Add(hour), hour, existing(base, hour, StatusConfirmed), true},
		{"symmetric within", RuleSymmetric, base.Add(59 * time.Minute), hour, existing(base, hour, StatusConfirmed), true},
		{"symmetric upper bound exclusive", RuleSymmetric, base.Add(-hour), hour, existing(base, hour, StatusConfirmed), false},
		{"symmetric short existing still blocks", RuleSymmetric, base.Add(45 * time.Minute), hour, existing(base, 30*time.Minute, StatusConfirmed), true},
		{"overlap short existing frees slot", RuleOverlap, base.Add(45 * time.Minute), hour, existing(base, 30*time.Minute, StatusConfirmed), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewWindow(tt.rule, tt.start, tt.d)
			assert.Equal(t, tt.want, w.Collides(tt.existing))
		})
	}
}

func TestNewWindowBounds(t *testing.T) {
	start := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)

	w := NewWindow(RuleSymmetric, start, time.Hour)
	assert.Equal(t, start.Add(-time.Hour), w.From)
	assert.Equal(t, start.Add(time.Hour), w.To)

	w = NewWindow(RuleOverlap, start, time.Hour)
	assert.Equal(t, start, w.From)
	assert.Equal(t, start.Add(time.Hour), w.To)

	w = NewWindow("", start, time.Hour)
	assert.Equal(t, RuleOverlap, w.Rule)
}

func TestStatusEnums(t *testing.T) {
	assert.True(t, StatusCancelled.IsValid())
	assert.True(t, StatusNoShow.IsValid())
	assert.False(t, StatusCancelled.IsActive())
	assert.False(t, BookingStatus("pending").IsValid())
	assert.True(t, PaymentRefunded.IsValid())
	assert.False(t, PaymentMethod("cash").IsValid())
}

func TestServiceBookable(t *testing.T) {
	assert.True(t, (&Service{IsActive: true, DurationMins: 60}).Bookable())
	assert.False(t, (&Service{IsActive: false, DurationMins: 60}).Bookable())
	assert.False(t, (&Service{IsActive: true, DurationMins: 0}).Bookable())
}
