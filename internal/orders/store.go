package orders

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/imrishuroy/go-rental-billing/internal/billing"
	"github.com/imrishuroy/go-rental-billing/internal/store"
)

const (
	// Dates go through to_char so the session DateStyle cannot change them.
	selectOrderSQL = `SELECT o.id, o.invoice_no, to_char(o.order_date, 'YYYY-MM-DD'),
	COALESCE(to_char(o.rent_start, 'YYYY-MM-DD'), ''), COALESCE(to_char(o.rent_end, 'YYYY-MM-DD'), ''), o.total::text,
	c.id, c.name, c.phone, COALESCE(c.alt_phone, ''), c.address
FROM orders o
JOIN customers c ON c.id = o.customer_id
WHERE o.id = $1`
	selectItemsSQL = `SELECT id, product,
	COALESCE(price::text, ''), COALESCE(quantity::text, ''), COALESCE(line_total::text, '')
FROM order_items
WHERE order_id = $1
ORDER BY id`
)

// Store reads persisted orders.
type Store struct {
	db store.Querier
}

// NewStore returns a Store reading from db.
func NewStore(db store.Querier) *Store {
	return &Store{db: db}
}

// Snapshot loads an order with its customer and items. The header and the
// items are two independent reads; orders are immutable once committed,
// so no transaction wraps them. Returns billing.ErrNotFound for unknown ids.
func (s *Store) Snapshot(ctx context.Context, orderID int64) (*Snapshot, error) {
	var snap Snapshot
	c := &snap.Customer
	err := s.db.QueryRowContext(ctx, selectOrderSQL, orderID).Scan(
		&snap.OrderID, &snap.InvoiceNo, &snap.OrderDate,
		&snap.RentStart, &snap.RentEnd, &snap.Total,
		&c.ID, &c.Name, &c.Phone, &c.AltPhone, &c.Address,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("order %d: %w", orderID, billing.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, selectItemsSQL, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order items: %w", err)
	}
	defer rows.Close()

	snap.Items = []RawItem{}
	for rows.Next() {
		var it RawItem
		if err := rows.Scan(&it.ID, &it.Product, &it.Price, &it.Quantity, &it.LineTotal); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		snap.Items = append(snap.Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order items: %w", err)
	}
	return &snap, nil
}
