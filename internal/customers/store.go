package customers

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/imrishuroy/go-rental-billing/internal/billing"
	"github.com/imrishuroy/go-rental-billing/internal/store"
)

const defaultSearchLimit = 20

// OrderSummary is one row of a customer's order history.
type OrderSummary struct {
	ID        int64  `json:"id"`
	InvoiceNo string `json:"invoice_no"`
	OrderDate string `json:"order_date"`
	Total     string `json:"total"`
}

// Store serves read-only customer lookups.
type Store struct {
	db store.Querier
}

// NewStore returns a Store reading from db.
func NewStore(db store.Querier) *Store {
	return &Store{db: db}
}

// Search returns customers whose name or phone contains query.
func (s *Store) Search(ctx context.Context, query string, limit int) ([]Customer, error) {
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	pattern := "%" + escapeLike(strings.TrimSpace(query)) + "%"

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, phone, COALESCE(alt_phone, ''), address
		FROM customers
		WHERE name ILIKE $1 OR phone LIKE $1
		ORDER BY name, id
		LIMIT $2`,
		pattern, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("search customers: %w", err)
	}
	defer rows.Close()

	out := []Customer{}
	for rows.Next() {
		var c Customer
		if err := rows.Scan(&c.ID, &c.Name, &c.Phone, &c.AltPhone, &c.Address); err != nil {
			return nil, fmt.Errorf("scan customer: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate customers: %w", err)
	}
	return out, nil
}

// Get fetches one customer. Returns billing.ErrNotFound when id is unknown.
func (s *Store) Get(ctx context.Context, id int64) (*Customer, error) {
	var c Customer
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, phone, COALESCE(alt_phone, ''), address FROM customers WHERE id = $1`,
		id,
	).Scan(&c.ID, &c.Name, &c.Phone, &c.AltPhone, &c.Address)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("customer %d: %w", id, billing.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get customer: %w", err)
	}
	return &c, nil
}

// Orders lists a customer's orders, newest first.
func (s *Store) Orders(ctx context.Context, customerID int64) ([]OrderSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, invoice_no, to_char(order_date, 'YYYY-MM-DD'), total::text
		FROM orders
		WHERE customer_id = $1
		ORDER BY order_date DESC, id DESC`,
		customerID,
	)
	if err != nil {
		return nil, fmt.Errorf("list customer orders: %w", err)
	}
	defer rows.Close()

	out := []OrderSummary{}
	for rows.Next() {
		var o OrderSummary
		if err := rows.Scan(&o.ID, &o.InvoiceNo, &o.OrderDate, &o.Total); err != nil {
			return nil, fmt.Errorf("scan order summary: %w", err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
