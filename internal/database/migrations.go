package database

import (
	"fmt"
	"log/slog"
)

func (db *DB) RunMigrations() error {
	slog.Info("Running database migrations...")

	migrations := []string{
		createExtensions,
		createServicesTable,
		createCustomersTable,
		createBookingsTable,
		createSettingsTable,
		createBookingsServiceStartIndex,
		createBookingsStatusStartIndex,
		createCustomersLineUserIndex,
	}

	for i, migration := range migrations {
		slog.Info("Running migration", "step", i+1)
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	slog.Info("All migrations completed successfully")
	return nil
}

const createExtensions = `CREATE EXTENSION IF NOT EXISTS "pgcrypto";`

const createServicesTable = `
CREATE TABLE IF NOT EXISTS services (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    name VARCHAR(255) NOT NULL,
    price NUMERIC(10,2) NOT NULL DEFAULT 0,
    deposit NUMERIC(10,2) NOT NULL DEFAULT 0,
    duration_mins INTEGER NOT NULL DEFAULT 60,
    is_active BOOLEAN NOT NULL DEFAULT TRUE,
    image_url TEXT,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),

    CHECK (price >= 0),
    CHECK (deposit >= 0)
);`

const createCustomersTable = `
CREATE TABLE IF NOT EXISTS customers (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    line_user_id VARCHAR(64) NOT NULL,
    name VARCHAR(255) NOT NULL DEFAULT '',
    phone VARCHAR(32) NOT NULL DEFAULT '',
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);`

const createBookingsTable = `
CREATE TABLE IF NOT EXISTS bookings (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    service_id UUID NOT NULL REFERENCES services(id),
    customer_id UUID NOT NULL REFERENCES customers(id),
    start_at TIMESTAMPTZ NOT NULL,
    end_at TIMESTAMPTZ NOT NULL,
    deposit_amount NUMERIC(10,2) NOT NULL DEFAULT 0,
    status VARCHAR(20) NOT NULL DEFAULT 'awaiting_deposit',
    payment_status VARCHAR(20) NOT NULL DEFAULT 'unpaid',
    payment_method VARCHAR(20) NOT NULL DEFAULT 'bank_transfer',
    payment_slip_url TEXT,
    promptpay_qr_code TEXT,
    promptpay_qr_image_url TEXT,
    reject_reason TEXT,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),

    CHECK (end_at > start_at),
    CHECK (status IN ('awaiting_deposit', 'confirmed', 'cancelled', 'no_show')),
    CHECK (payment_status IN ('unpaid', 'paid', 'refunded', 'rejected')),
    CHECK (payment_method IN ('bank_transfer', 'promptpay_qr')),
    CHECK (status <> 'confirmed' OR payment_status = 'paid')
);`

const createSettingsTable = `
CREATE TABLE IF NOT EXISTS settings (
    key VARCHAR(64) PRIMARY KEY,
    value JSONB NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);`

const createBookingsServiceStartIndex = `
CREATE INDEX IF NOT EXISTS bookings_service_start_idx
ON bookings (service_id, start_at)
WHERE status IN ('awaiting_deposit', 'confirmed');`

const createBookingsStatusStartIndex = `
CREATE INDEX IF NOT EXISTS bookings_status_start_idx
ON bookings (status, start_at);`

const createCustomersLineUserIndex = `
CREATE INDEX IF NOT EXISTS customers_line_user_created_idx
ON customers (line_user_id, created_at DESC);`
