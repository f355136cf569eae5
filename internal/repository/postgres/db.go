package postgres

import (
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/lib/pq"
)

func InitDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := migrateDB(db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	slog.Info("Database connected and migrated")
	return db, nil
}

func migrateDB(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS products (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			price NUMERIC(12,2) NOT NULL DEFAULT 0,
			image_url TEXT NOT NULL DEFAULT '',
			category TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT 'active',
			stock INT NOT NULL DEFAULT 0 CHECK (stock >= 0)
		);

		CREATE TABLE IF NOT EXISTS cart_items (
			user_id TEXT NOT NULL,
			product_id TEXT NOT NULL REFERENCES products(id),
			variant_id TEXT NOT NULL DEFAULT '',
			quantity INT NOT NULL CHECK (quantity >= 1),
			added_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (user_id, product_id, variant_id)
		);

		CREATE TABLE IF NOT EXISTS orders (
			id UUID PRIMARY KEY,
			order_number TEXT NOT NULL UNIQUE,
			user_id TEXT NOT NULL,
			contact_first_name TEXT NOT NULL,
			contact_last_name TEXT NOT NULL,
			contact_email TEXT NOT NULL,
			contact_phone TEXT NOT NULL,
			contact_national_id TEXT NOT NULL,
			ship_street TEXT NOT NULL,
			ship_number TEXT NOT NULL,
			ship_floor TEXT NOT NULL DEFAULT '',
			ship_apartment TEXT NOT NULL DEFAULT '',
			ship_city TEXT NOT NULL,
			ship_province TEXT NOT NULL,
			ship_postal_code TEXT NOT NULL,
			ship_country TEXT NOT NULL,
			payment_method TEXT NOT NULL,
			subtotal NUMERIC(12,2) NOT NULL,
			shipping_cost NUMERIC(12,2) NOT NULL,
			total NUMERIC(12,2) NOT NULL,
			status TEXT NOT NULL DEFAULT 'pending',
			payment_status TEXT NOT NULL DEFAULT 'pending',
			payment_reference TEXT NOT NULL DEFAULT '',
			tracking_number TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			cancelled_at TIMESTAMPTZ,
			cancellation_reason TEXT NOT NULL DEFAULT '',
			delivered_at TIMESTAMPTZ
		);

		CREATE INDEX IF NOT EXISTS idx_orders_user_created
			ON orders (user_id, created_at DESC);

		CREATE TABLE IF NOT EXISTS order_items (
			id SERIAL PRIMARY KEY,
			order_id UUID NOT NULL REFERENCES orders(id),
			product_id TEXT NOT NULL,
			variant_id TEXT NOT NULL DEFAULT '',
			name TEXT NOT NULL,
			price NUMERIC(12,2) NOT NULL DEFAULT 0,
			quantity INT NOT NULL DEFAULT 1,
			subtotal NUMERIC(12,2) NOT NULL DEFAULT 0
		);

		CREATE TABLE IF NOT EXISTS order_counters (
			day CHAR(6) PRIMARY KEY,
			seq INT NOT NULL DEFAULT 0
		);
	`)
	return err
}
