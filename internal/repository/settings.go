package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"salonbook/internal/database"
	"salonbook/internal/models"
)

type SettingsRepository struct {
	db *database.DB
}

func NewSettingsRepository(db *database.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

func (r *SettingsRepository) GetPromptPay(ctx context.Context) (*models.PromptPaySettings, error) {
	var raw []byte
	err := r.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = $1`, models.SettingsKeyPromptPay).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var settings models.PromptPaySettings
	if err := json.Unmarshal(raw, &settings); err != nil {
		return nil, fmt.Errorf("failed to decode promptpay settings: %w", err)
	}
	return &settings, nil
}

func (r *SettingsRepository) SavePromptPay(ctx context.Context, settings models.PromptPaySettings) error {
	raw, err := json.Marshal(settings)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO settings (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`

	_, err = r.db.ExecContext(ctx, query, models.SettingsKeyPromptPay, raw)
	return err
}
