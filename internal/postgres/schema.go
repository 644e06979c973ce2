package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS stock_items (
		id               TEXT PRIMARY KEY,
		sku              TEXT NOT NULL DEFAULT '',
		display_name     TEXT NOT NULL,
		category         TEXT NOT NULL DEFAULT '',
		quantity         INT NOT NULL DEFAULT 0 CHECK (quantity >= 0),
		unit_price_cents INT NOT NULL DEFAULT 0,
		image_ref        TEXT NOT NULL DEFAULT '',
		created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at       TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		id                 TEXT PRIMARY KEY,
		buyer_ref          TEXT NOT NULL,
		payment_type       TEXT NOT NULL DEFAULT '',
		fulfillment_method TEXT NOT NULL DEFAULT '',
		amount_cents       INT NOT NULL DEFAULT 0,
		status             TEXT NOT NULL,
		created_at         TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS order_lines (
		order_id         TEXT NOT NULL REFERENCES orders(id),
		item_id          TEXT NOT NULL,
		display_name     TEXT NOT NULL,
		sku              TEXT NOT NULL DEFAULT '',
		quantity         INT NOT NULL,
		unit_price_cents INT NOT NULL,
		image_ref        TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS transactions (
		id           TEXT PRIMARY KEY,
		buyer_ref    TEXT NOT NULL,
		payment_type TEXT NOT NULL,
		amount_cents INT NOT NULL,
		created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_stock_items_display_name ON stock_items(display_name)`,
	`CREATE INDEX IF NOT EXISTS idx_order_lines_order_id ON order_lines(order_id)`,
}

// Migrate creates tables on startup when they do not exist yet.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
