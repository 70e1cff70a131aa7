package repository

import (
	"context"
	"database/sql"
	"fmt"

	"salonbook/internal/database"
	"salonbook/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const serviceColumns = `id, name, price, deposit, duration_mins, is_active, image_url, created_at, updated_at`

type ServiceRepository struct {
	db *database.DB
}

func NewServiceRepository(db *database.DB) *ServiceRepository {
	return &ServiceRepository{db: db}
}

func (r *ServiceRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Service, error) {
	query := `SELECT ` + serviceColumns + ` FROM services WHERE id = $1`

	service, err := scanService(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return service, err
}

func (r *ServiceRepository) ListActive(ctx context.Context) ([]models.Service, error) {
	query := `SELECT ` + serviceColumns + ` FROM services WHERE is_active = TRUE ORDER BY name`
	return r.query(ctx, query)
}

// SearchByName is the fallback used when the search index is disabled
func (r *ServiceRepository) SearchByName(ctx context.Context, q string) ([]models.Service, error) {
	query := `SELECT ` + serviceColumns + `
		FROM services
		WHERE is_active = TRUE AND name ILIKE '%' || $1 || '%'
		ORDER BY name`
	return r.query(ctx, query, q)
}

func (r *ServiceRepository) Create(ctx context.Context, service *models.Service) error {
	query := `
		INSERT INTO services (id, name, price, deposit, duration_mins, is_active, image_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`

	if service.ID == uuid.Nil {
		service.ID = uuid.New()
	}

	return r.db.QueryRowContext(ctx, query,
		service.ID,
		service.Name,
		service.Price,
		service.Deposit,
		service.DurationMins,
		service.IsActive,
		service.ImageURL,
	).Scan(&service.CreatedAt, &service.UpdatedAt)
}

func (r *ServiceRepository) Update(ctx context.Context, service *models.Service) error {
	query := `
		UPDATE services
		SET name = $2, price = $3, deposit = $4, duration_mins = $5, is_active = $6,
		    image_url = $7, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	return r.db.QueryRowContext(ctx, query,
		service.ID,
		service.Name,
		service.Price,
		service.Deposit,
		service.DurationMins,
		service.IsActive,
		service.ImageURL,
	).Scan(&service.UpdatedAt)
}

func (r *ServiceRepository) UpdateDeposits(ctx context.Context, deposits map[uuid.UUID]decimal.Decimal) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `UPDATE services SET deposit = $2, updated_at = NOW() WHERE id = $1`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for id, deposit := range deposits {
			if _, err := stmt.ExecContext(ctx, id, deposit); err != nil {
				return fmt.Errorf("failed to update deposit of service %s: %w", id, err)
			}
		}
		return nil
	})
}

// Deactivate hides the service from the catalog; existing bookings keep referencing it
func (r *ServiceRepository) Deactivate(ctx context.Context, id uuid.UUID) (bool, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE services SET is_active = FALSE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *ServiceRepository) query(ctx context.Context, query string, args ...any) ([]models.Service, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	services := []models.Service{}
	for rows.Next() {
		service, err := scanService(rows)
		if err != nil {
			return nil, err
		}
		services = append(services, *service)
	}
	return services, rows.Err()
}

func scanService(row rowScanner) (*models.Service, error) {
	s := &models.Service{}
	err := row.Scan(
		&s.ID,
		&s.Name,
		&s.Price,
		&s.Deposit,
		&s.DurationMins,
		&s.IsActive,
		&s.ImageURL,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return s, nil
}
