package store

import (
	"context"
	"fmt"
)

// schema is applied in order; every statement is idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS customers (
		id        BIGSERIAL PRIMARY KEY,
		name      TEXT NOT NULL,
		phone     TEXT NOT NULL,
		alt_phone TEXT,
		address   TEXT NOT NULL,
		CONSTRAINT customers_phone_key UNIQUE (phone)
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		id          BIGSERIAL PRIMARY KEY,
		invoice_no  TEXT NOT NULL UNIQUE,
		customer_id BIGINT NOT NULL REFERENCES customers (id),
		order_date  DATE NOT NULL DEFAULT CURRENT_DATE,
		rent_start  DATE,
		rent_end    DATE,
		total       NUMERIC(12,2) NOT NULL DEFAULT 0 CHECK (total >= 0)
	)`,
	`CREATE INDEX IF NOT EXISTS orders_customer_id_idx ON orders (customer_id)`,
	`CREATE TABLE IF NOT EXISTS order_items (
		id         BIGSERIAL PRIMARY KEY,
		order_id   BIGINT NOT NULL REFERENCES orders (id) ON DELETE CASCADE,
		product    TEXT NOT NULL,
		price      NUMERIC(12,2) NOT NULL CHECK (price >= 0),
		quantity   INTEGER NOT NULL,
		line_total NUMERIC(12,2) NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS order_items_order_id_idx ON order_items (order_id)`,
}

// Migrate applies the schema on q.
func Migrate(ctx context.Context, q Querier) error {
	for i, stmt := range schema {
		if _, err := q.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("store: migration step %d: %w", i+1, err)
		}
	}
	return nil
}
