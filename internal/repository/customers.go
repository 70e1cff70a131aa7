package repository

import (
	"context"
	"database/sql"

	"salonbook/internal/database"
	"salonbook/internal/models"

	"github.com/google/uuid"
)

type CustomerRepository struct {
	db *database.DB
}

func NewCustomerRepository(db *database.DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

// Latest returns the most recently created profile for a LINE user
func (r *CustomerRepository) Latest(ctx context.Context, lineUserID string) (*models.Customer, error) {
	customer := &models.Customer{}
	query := `
		SELECT id, line_user_id, name, phone, created_at
		FROM customers
		WHERE line_user_id = $1
		ORDER BY created_at DESC
		LIMIT 1`

	err := r.db.QueryRowContext(ctx, query, lineUserID).Scan(
		&customer.ID,
		&customer.LineUserID,
		&customer.Name,
		&customer.Phone,
		&customer.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	return customer, err
}

func (r *CustomerRepository) Create(ctx context.Context, customer *models.Customer) error {
	query := `
		INSERT INTO customers (id, line_user_id, name, phone)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`

	if customer.ID == uuid.Nil {
		customer.ID = uuid.New()
	}

	return r.db.QueryRowContext(ctx, query,
		customer.ID,
		customer.LineUserID,
		customer.Name,
		customer.Phone,
	).Scan(&customer.CreatedAt)
}
