package service

import (
	"context"
	"testing"

	apperrors "salonbook/internal/errors"
	"salonbook/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCustomers_LatestAndEnsure(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()

	missing, err := f.svc.Customers.Latest(ctx, "U1")
	require.NoError(t, err)
	assert.False(t, missing.Found)

	first, err := f.svc.Customers.Ensure(ctx, "U1", "Somchai", "0811111111")
	require.NoError(t, err)

	same, err := f.svc.Customers.Ensure(ctx, "U1", "", "")
	require.NoError(t, err)
	assert.Equal(t, first.ID, same.ID)

	changed, err := f.svc.Customers.Ensure(ctx, "U1", "", "0822222222")
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, changed.ID)
	assert.Equal(t, "Somchai", changed.Name)

	latest, err := f.svc.Customers.Latest(ctx, "U1")
	require.NoError(t, err)
	assert.True(t, latest.Found)
	assert.Equal(t, "0822222222", latest.Phone)

	_, err = f.svc.Customers.Latest(ctx, "")
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestCustomers_BookingHistoryAndEdit(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()
	svc := f.addService(t, "ตัดผม", 200, 60)

	f.book(t, svc, at(9, 0), "U1")
	latest := f.book(t, svc, at(15, 0), "U1")
	f.book(t, svc, at(12, 0), "U2")

	history, err := f.svc.Customers.Bookings(ctx, "U1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, latest.ID, history[0].ID)
	assert.Equal(t, "ตัดผม", history[0].ServiceName)

	id := uuid.MustParse(latest.ID)
	_, err = f.svc.Customers.UpdateBookingCustomer(ctx, id, &models.UpdateBookingCustomerRequest{
		Name: "Somsri", Phone: "0899999999", LineUserID: "U2",
	})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	_, err = f.svc.Customers.UpdateBookingCustomer(ctx, uuid.New(), &models.UpdateBookingCustomerRequest{
		Name: "Somsri", Phone: "0899999999", LineUserID: "U1",
	})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	customer, err := f.svc.Customers.UpdateBookingCustomer(ctx, id, &models.UpdateBookingCustomerRequest{
		Name: "Somsri", Phone: "0899999999", LineUserID: "U1",
	})
	require.NoError(t, err)

	b, err := f.svc.Bookings.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, customer.ID, b.CustomerID)
	assert.Equal(t, "Somsri", b.CustomerName)
}
