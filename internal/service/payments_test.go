package service

import (
	"context"
	"testing"

	"salonbook/internal/auth"
	apperrors "salonbook/internal/errors"
	"salonbook/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPayments_SlipRejectResubmitApprove(t *testing.T) {
	f := newFixture(t, Options{})
	svc := f.addService(t, "ตัดผม", 200, 60)
	ctx := context.Background()

	resp := f.book(t, svc, at(10, 0), "U1")
	id := uuid.MustParse(resp.ID)

	slipped, err := f.svc.Payments.AttachSlip(ctx, "U1", "https://storage.example/slip1.jpg")
	require.NoError(t, err)
	assert.Equal(t, id, slipped.ID)
	assert.Equal(t, models.StatusAwaitingDeposit, slipped.Status)
	assert.Equal(t, models.PaymentUnpaid, slipped.PaymentStatus)

	rejected, err := f.svc.Payments.Reject(ctx, f.admin, id, "ยอดเงินไม่ตรง")
	require.NoError(t, err)
	assert.Equal(t, models.StatusAwaitingDeposit, rejected.Status)
	assert.Equal(t, models.PaymentRejected, rejected.PaymentStatus)
	require.NotNil(t, rejected.RejectReason)
	assert.Equal(t, "ยอดเงินไม่ตรง", *rejected.RejectReason)

	// a rejected booking still accepts a new slip
	_, err = f.svc.Payments.AttachSlip(ctx, "U1", "https://storage.example/slip2.jpg")
	require.NoError(t, err)

	approved, err := f.svc.Payments.Approve(ctx, f.admin, id)
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, approved.Status)
	assert.Equal(t, models.PaymentPaid, approved.PaymentStatus)
	assert.Nil(t, approved.RejectReason)
	require.NotNil(t, approved.PaymentSlipURL)
	assert.Equal(t, "https://storage.example/slip2.jpg", *approved.PaymentSlipURL)

	msgs := f.notifier.messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "U1", msgs[0].To)
	assert.Contains(t, msgs[0].Text, "เหตุผล: ยอดเงินไม่ตรง")
	assert.Contains(t, msgs[1].Text, "ยืนยันมัดจำสำเร็จ")
	assert.Contains(t, msgs[1].Text, "ตัดผม")
	assert.Contains(t, msgs[1].Text, "10/3/2568 10:00")

	assert.Equal(t, []string{
		models.EventBookingCreated,
		models.EventBookingSlipAttached,
		models.EventBookingRejected,
		models.EventBookingSlipAttached,
		models.EventBookingApproved,
	}, f.publisher.published())
}

func TestPayments_ApproveIsRepeatable(t *testing.T) {
	f := newFixture(t, Options{})
	svc := f.addService(t, "ตัดผม", 200, 60)
	ctx := context.Background()
	id := uuid.MustParse(f.book(t, svc, at(10, 0), "U1").ID)

	first, err := f.svc.Payments.Approve(ctx, f.admin, id)
	require.NoError(t, err)
	second, err := f.svc.Payments.Approve(ctx, f.admin, id)
	require.NoError(t, err)

	assert.Equal(t, first.Status, second.Status)
	assert.Equal(t, first.PaymentStatus, second.PaymentStatus)
}

func TestPayments_RejectWithoutReason(t *testing.T) {
	f := newFixture(t, Options{})
	svc := f.addService(t, "ตัดผม", 200, 60)
	ctx := context.Background()
	id := uuid.MustParse(f.book(t, svc, at(10, 0), "U1").ID)

	rejected, err := f.svc.Payments.Reject(ctx, f.admin, id, "   ")
	require.NoError(t, err)
	assert.Nil(t, rejected.RejectReason)

	msgs := f.notifier.messages()
	require.Len(t, msgs, 1)
	assert.NotContains(t, msgs[0].Text, "เหตุผล")
}

func TestPayments_AttachSlipPicksLatestPending(t *testing.T) {
	f := newFixture(t, Options{})
	svc := f.addService(t, "ตัดผม", 200, 60)
	ctx := context.Background()

	older := uuid.MustParse(f.book(t, svc, at(10, 0), "U1").ID)
	newer := uuid.MustParse(f.book(t, svc, at(14, 0), "U1").ID)

	b, err := f.svc.Payments.AttachSlip(ctx, "U1", "https://storage.example/a.jpg")
	require.NoError(t, err)
	assert.Equal(t, newer, b.ID)

	_, err = f.svc.Payments.Approve(ctx, f.admin, newer)
	require.NoError(t, err)

	b, err = f.svc.Payments.AttachSlip(ctx, "U1", "https://storage.example/b.jpg")
	require.NoError(t, err)
	assert.Equal(t, older, b.ID)

	_, err = f.svc.Payments.Approve(ctx, f.admin, older)
	require.NoError(t, err)

	_, err = f.svc.Payments.AttachSlip(ctx, "U1", "https://storage.example/c.jpg")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = f.svc.Payments.AttachSlip(ctx, "U1", "")
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestPayments_ConfirmQRRequiresQRMethod(t *testing.T) {
	f := newFixture(t, Options{})
	svc := f.addService(t, "ตัดผม", 200, 60)
	ctx := context.Background()

	id := uuid.MustParse(f.book(t, svc, at(10, 0), "U1").ID)
	_, err := f.svc.Payments.ConfirmQRPayment(ctx, f.admin, id)
	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)

	b, err := f.svc.Bookings.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.StatusAwaitingDeposit, b.Status)

	_, err = f.svc.PromptPay.SaveSettings(ctx, f.admin, &models.SavePromptPaySettingsRequest{
		PromptPayID:   "0812345678",
		PromptPayType: models.PromptPayPhone,
	})
	require.NoError(t, err)

	qr, err := f.svc.Bookings.Create(ctx, &models.CreateBookingRequest{
		ServiceID:     svc.ID.String(),
		StartAt:       at(15, 0),
		LineUserID:    "U2",
		PaymentMethod: models.MethodPromptPayQR,
	})
	require.NoError(t, err)

	confirmed, err := f.svc.Payments.ConfirmQRPayment(ctx, f.admin, uuid.MustParse(qr.ID))
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, confirmed.Status)
	assert.Equal(t, models.PaymentPaid, confirmed.PaymentStatus)
	assert.Contains(t, f.publisher.published(), models.EventBookingQRConfirmed)
}

func TestPayments_RequireAdminCapability(t *testing.T) {
	f := newFixture(t, Options{})
	svc := f.addService(t, "ตัดผม", 200, 60)
	ctx := context.Background()
	id := uuid.MustParse(f.book(t, svc, at(10, 0), "U1").ID)

	forged, err := auth.NewGuard("s3cret").Authorize("guess")
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	for _, capability := range []auth.Capability{{}, forged} {
		_, err = f.svc.Payments.Approve(ctx, capability, id)
		assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
		_, err = f.svc.Payments.Reject(ctx, capability, id, "x")
		assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
		_, err = f.svc.Payments.ConfirmQRPayment(ctx, capability, id)
		assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	}

	b, err := f.svc.Bookings.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.StatusAwaitingDeposit, b.Status)
	assert.Equal(t, models.PaymentUnpaid, b.PaymentStatus)
	assert.Empty(t, f.notifier.messages())
}

func TestPayments_NotificationFailureIsNotReturned(t *testing.T) {
	f := newFixture(t, Options{})
	f.notifier.err = errUnavailable
	f.publisher.err = errUnavailable
	svc := f.addService(t, "ตัดผม", 200, 60)
	ctx := context.Background()
	id := uuid.MustParse(f.book(t, svc, at(10, 0), "U1").ID)

	b, err := f.svc.Payments.Approve(ctx, f.admin, id)
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, b.Status)
}

func TestPayments_NotFound(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()

	_, err := f.svc.Payments.Approve(ctx, f.admin, uuid.New())
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	_, err = f.svc.Payments.Reject(ctx, f.admin, uuid.New(), "")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestPayments_RejectAfterApprove(t *testing.T) {
	f := newFixture(t, Options{})
	svc := f.addService(t, "ตัดผม", 200, 60)
	ctx := context.Background()
	id := uuid.MustParse(f.book(t, svc, at(10, 0), "U1").ID)

	_, err := f.svc.Payments.Approve(ctx, f.admin, id)
	require.NoError(t, err)

	rejected, err := f.svc.Payments.Reject(ctx, f.admin, id, "สลิปซ้ำ")
	require.NoError(t, err)
	assert.Equal(t, models.StatusAwaitingDeposit, rejected.Status)
	assert.Equal(t, models.PaymentRejected, rejected.PaymentStatus)
	require.NotNil(t, rejected.RejectReason)
	assert.Equal(t, "สลิปซ้ำ", *rejected.RejectReason)

	stored, err := f.svc.Bookings.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.StatusAwaitingDeposit, stored.Status)
	assert.Equal(t, models.PaymentRejected, stored.PaymentStatus)

	// back in the awaiting queue, so a new slip lands on it
	slipped, err := f.svc.Payments.AttachSlip(ctx, "U1", "https://storage.example/slip3.jpg")
	require.NoError(t, err)
	assert.Equal(t, id, slipped.ID)
	require.NotNil(t, slipped.PaymentSlipURL)
	assert.Equal(t, "https://storage.example/slip3.jpg", *slipped.PaymentSlipURL)
}
