package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"salonbook/internal/database"
	"salonbook/internal/models"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const bookingColumns = `b.id, b.service_id, b.customer_id, b.start_at, b.end_at, b.deposit_amount,
		       b.status, b.payment_status, b.payment_method, b.payment_slip_url,
		       b.promptpay_qr_code, b.promptpay_qr_image_url, b.reject_reason,
		       b.created_at, b.updated_at`

const bookingDetailsColumns = bookingColumns + `,
		       s.name, s.price, s.duration_mins, c.name, c.phone, c.line_user_id`

const bookingDetailsFrom = `
		FROM bookings b
		JOIN services s ON s.id = b.service_id
		JOIN customers c ON c.id = b.customer_id`

type rowScanner interface {
	Scan(dest ...any) error
}

type BookingRepository struct {
	db *database.DB
}

func NewBookingRepository(db *database.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

func (r *BookingRepository) WithServiceLock(ctx context.Context, serviceID uuid.UUID, fn func(tx BookingTx) error) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		// Released automatically at commit or rollback
		if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, serviceID.String()); err != nil {
			return fmt.Errorf("failed to lock service %s: %w", serviceID, err)
		}
		return fn(&bookingTx{tx: tx})
	})
}

type bookingTx struct {
	tx *sql.Tx
}

func (t *bookingTx) FindColliding(ctx context.Context, serviceID uuid.UUID, window models.Window) ([]models.Booking, error) {
	cond := `b.start_at < $3 AND b.end_at > $2`
	if window.Rule == models.RuleSymmetric {
		cond = `b.start_at >= $2 AND b.start_at < $3`
	}

	query := `SELECT ` + bookingColumns + `
		FROM bookings b
		WHERE b.service_id = $1
		  AND ` + cond + `
		  AND b.status = ANY($4)
		ORDER BY b.start_at`

	rows, err := t.tx.QueryContext(ctx, query, serviceID, window.From, window.To, pq.Array(statusStrings(models.ActiveStatuses)))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []models.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *booking)
	}
	return bookings, rows.Err()
}

func (t *bookingTx) Insert(ctx context.Context, booking *models.Booking) error {
	query := `
		INSERT INTO bookings (id, service_id, customer_id, start_at, end_at, deposit_amount,
		                      status, payment_status, payment_method,
		                      promptpay_qr_code, promptpay_qr_image_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at`

	if booking.ID == uuid.Nil {
		booking.ID = uuid.New()
	}

	return t.tx.QueryRowContext(ctx, query,
		booking.ID,
		booking.ServiceID,
		booking.CustomerID,
		booking.StartAt,
		booking.EndAt,
		booking.DepositAmount,
		booking.Status,
		booking.PaymentStatus,
		booking.PaymentMethod,
		booking.PromptPayQRCode,
		booking.PromptPayQRImageURL,
	).Scan(&booking.CreatedAt, &booking.UpdatedAt)
}

func (r *BookingRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings b WHERE b.id = $1`

	booking, err := scanBooking(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return booking, err
}

func (r *BookingRepository) GetDetails(ctx context.Context, id uuid.UUID) (*models.BookingDetails, error) {
	query := `SELECT ` + bookingDetailsColumns + bookingDetailsFrom + ` WHERE b.id = $1`

	details, err := scanBookingDetails(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return details, err
}

func (r *BookingRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.BookingStatus, paymentStatus models.PaymentStatus, reason *string) (*models.Booking, error) {
	query := `
		UPDATE bookings b
		SET status = $2, payment_status = $3, reject_reason = $4, updated_at = NOW()
		WHERE b.id = $1
		RETURNING ` + bookingColumns

	booking, err := scanBooking(r.db.QueryRowContext(ctx, query, id, status, paymentStatus, reason))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return booking, err
}

func (r *BookingRepository) SetSlipURL(ctx context.Context, id uuid.UUID, slipURL string) (*models.Booking, error) {
	query := `
		UPDATE bookings b
		SET payment_slip_url = $2, updated_at = NOW()
		WHERE b.id = $1
		RETURNING ` + bookingColumns

	booking, err := scanBooking(r.db.QueryRowContext(ctx, query, id, slipURL))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return booking, err
}

func (r *BookingRepository) SetCustomer(ctx context.Context, id, customerID uuid.UUID) error {
	query := `UPDATE bookings SET customer_id = $2, updated_at = NOW() WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id, customerID)
	return err
}

func (r *BookingRepository) LatestAwaitingByLineUser(ctx context.Context, lineUserID string) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + `
		FROM bookings b
		JOIN customers c ON c.id = b.customer_id
		WHERE c.line_user_id = $1 AND b.status = $2
		ORDER BY b.created_at DESC
		LIMIT 1`

	booking, err := scanBooking(r.db.QueryRowContext(ctx, query, lineUserID, models.StatusAwaitingDeposit))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return booking, err
}

func (r *BookingRepository) ListByStatus(ctx context.Context, status models.BookingStatus) ([]models.BookingDetails, error) {
	query := `SELECT ` + bookingDetailsColumns + bookingDetailsFrom + `
		WHERE b.status = $1
		ORDER BY b.start_at ASC`

	return r.queryDetails(ctx, query, status)
}

func (r *BookingRepository) ListByLineUser(ctx context.Context, lineUserID string) ([]models.BookingDetails, error) {
	query := `SELECT ` + bookingDetailsColumns + bookingDetailsFrom + `
		WHERE c.line_user_id = $1
		ORDER BY b.start_at DESC`

	return r.queryDetails(ctx, query, lineUserID)
}

func (r *BookingRepository) ListBetween(ctx context.Context, from, to time.Time, statuses []models.BookingStatus) ([]models.BookingDetails, error) {
	query := `SELECT ` + bookingDetailsColumns + bookingDetailsFrom + `
		WHERE b.start_at >= $1 AND b.start_at < $2
		  AND (cardinality($3::text[]) = 0 OR b.status = ANY($3))
		ORDER BY b.start_at ASC`

	return r.queryDetails(ctx, query, from, to, pq.Array(statusStrings(statuses)))
}

func (r *BookingRepository) queryDetails(ctx context.Context, query string, args ...any) ([]models.BookingDetails, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []models.BookingDetails{}
	for rows.Next() {
		details, err := scanBookingDetails(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *details)
	}
	return list, rows.Err()
}

func bookingFields(b *models.Booking) []any {
	return []any{
		&b.ID,
		&b.ServiceID,
		&b.CustomerID,
		&b.StartAt,
		&b.EndAt,
		&b.DepositAmount,
		&b.Status,
		&b.PaymentStatus,
		&b.PaymentMethod,
		&b.PaymentSlipURL,
		&b.PromptPayQRCode,
		&b.PromptPayQRImageURL,
		&b.RejectReason,
		&b.CreatedAt,
		&b.UpdatedAt,
	}
}

func scanBooking(row rowScanner) (*models.Booking, error) {
	booking := &models.Booking{}
	if err := row.Scan(bookingFields(booking)...); err != nil {
		return nil, err
	}
	return booking, nil
}

func scanBookingDetails(row rowScanner) (*models.BookingDetails, error) {
	d := &models.BookingDetails{}
	fields := append(bookingFields(&d.Booking),
		&d.ServiceName,
		&d.ServicePrice,
		&d.ServiceDuration,
		&d.CustomerName,
		&d.CustomerPhone,
		&d.LineUserID,
	)
	if err := row.Scan(fields...); err != nil {
		return nil, err
	}
	return d, nil
}

func statusStrings(statuses []models.BookingStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}
