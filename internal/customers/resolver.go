// Package customers resolves phone numbers to customer rows and serves
// the read-only customer lookups.
package customers

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/imrishuroy/go-rental-billing/internal/billing"
	"github.com/imrishuroy/go-rental-billing/internal/store"
)

// upsertSQL finds-or-creates by phone in one statement. The unique
// constraint on phone serializes concurrent first orders for the same
// number; the later writer's fields win. xmax is 0 only for a freshly
// inserted tuple.
const upsertSQL = `INSERT INTO customers (name, phone, alt_phone, address)
VALUES ($1, $2, $3, $4)
ON CONFLICT (phone) DO UPDATE
SET name = EXCLUDED.name, alt_phone = EXCLUDED.alt_phone, address = EXCLUDED.address
RETURNING id, (xmax = 0) AS inserted`

// Resolver maps a phone number to a customer id, creating or updating the
// row. It never opens a transaction of its own.
type Resolver struct {
	logger *slog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) { r.logger = logger }
}

// NewResolver returns a Resolver.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{logger: slog.Default()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve runs on q, which is expected to be the caller's *sql.Tx so the
// customer write commits or rolls back with the order it supports.
func (r *Resolver) Resolve(ctx context.Context, q store.Querier, info Info) (Resolution, error) {
	info = info.Normalize()
	if !info.Complete() {
		return Resolution{}, billing.Invalid(billing.MsgMissingFields)
	}

	var res Resolution
	err := q.QueryRowContext(ctx, upsertSQL,
		info.Name, info.Phone, nullable(info.AltPhone), info.Address,
	).Scan(&res.ID, &res.Created)
	if err != nil {
		return Resolution{}, fmt.Errorf("resolve customer by phone: %w", err)
	}

	r.logger.DebugContext(ctx, "customer resolved",
		"customer_id", res.ID,
		"created", res.Created,
	)
	return res, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
