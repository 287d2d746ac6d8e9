// Package orders runs the order-ingestion transaction and serves
// persisted orders back to readers.
package orders

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/imrishuroy/go-rental-billing/internal/billing"
	"github.com/imrishuroy/go-rental-billing/internal/customers"
	"github.com/imrishuroy/go-rental-billing/internal/store"
)

const (
	insertOrderSQL = `INSERT INTO orders (invoice_no, customer_id, order_date, rent_start, rent_end, total)
VALUES ($1, $2, $3, $4, $5, 0)
RETURNING id`
	insertItemSQL = `INSERT INTO order_items (order_id, product, price, quantity, line_total)
VALUES ($1, $2, $3, $4, $5)`
	updateTotalSQL = `UPDATE orders SET total = $1 WHERE id = $2`
)

// Publisher is told about orders once they are committed.
type Publisher interface {
	OrderCreated(ctx context.Context, res Result) error
}

// Counter records named counts.
type Counter interface {
	Incr(ctx context.Context, name string)
}

// Manager creates orders atomically: customer, order header, items and
// total either all commit or none do.
type Manager struct {
	db           store.Beginner
	resolver     *customers.Resolver
	publisher    Publisher
	counter      Counter
	logger       *slog.Logger
	nowFunc      func() time.Time
	newInvoiceNo func() string
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) { m.logger = logger }
}

// WithPublisher sets where committed orders are announced.
func WithPublisher(p Publisher) Option {
	return func(m *Manager) { m.publisher = p }
}

// WithCounter sets the metrics sink.
func WithCounter(c Counter) Option {
	return func(m *Manager) { m.counter = c }
}

// WithClock overrides time.Now, used for the default order date.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.nowFunc = now }
}

// WithInvoiceNumbers overrides the invoice number generator.
func WithInvoiceNumbers(gen func() string) Option {
	return func(m *Manager) { m.newInvoiceNo = gen }
}

// NewManager returns a Manager drawing transactions from db.
func NewManager(db store.Beginner, resolver *customers.Resolver, opts ...Option) *Manager {
	m := &Manager{
		db:           db,
		resolver:     resolver,
		logger:       slog.Default(),
		nowFunc:      time.Now,
		newInvoiceNo: uuid.NewString,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// CreateOrder validates req and persists it in one transaction.
//
// The returned error is a *billing.ValidationError when req was rejected
// before the store was touched, and a *billing.PersistenceError when the
// transaction failed and was rolled back.
func (m *Manager) CreateOrder(ctx context.Context, req Request) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	res := Result{
		InvoiceNo: m.newInvoiceNo(),
		OrderDate: req.OrderDate,
	}
	if res.OrderDate == "" {
		res.OrderDate = m.nowFunc().Format(DateLayout)
	}

	err := store.WithTx(ctx, m.db, func(tx *sql.Tx) error {
		cust, err := m.resolver.Resolve(ctx, tx, req.Customer)
		if err != nil {
			return err
		}
		res.CustomerID = cust.ID
		res.CustomerCreated = cust.Created

		err = tx.QueryRowContext(ctx, insertOrderSQL,
			res.InvoiceNo, cust.ID, res.OrderDate, nullDate(req.RentStart), nullDate(req.RentEnd),
		).Scan(&res.OrderID)
		if err != nil {
			return fmt.Errorf("insert order: %w", err)
		}

		total := decimal.Zero
		for i, it := range req.Items {
			line := it.LineTotal()
			if _, err := tx.ExecContext(ctx, insertItemSQL,
				res.OrderID, it.Product, it.Price, it.Quantity, line,
			); err != nil {
				return fmt.Errorf("insert item %d: %w", i+1, err)
			}
			total = total.Add(line)
		}

		if _, err := tx.ExecContext(ctx, updateTotalSQL, total, res.OrderID); err != nil {
			return fmt.Errorf("update order total: %w", err)
		}
		res.Total = total
		return nil
	})
	if err != nil {
		err = billing.Persistence("create order", err)
		m.logger.ErrorContext(ctx, "create order failed",
			"invoice_no", res.InvoiceNo,
			"items", len(req.Items),
			"sqlstate", store.SQLState(err),
			"error", err,
		)
		m.incr(ctx, MetricOrderCreateFailures)
		return nil, err
	}

	m.logger.InfoContext(ctx, "order created",
		"order_id", res.OrderID,
		"customer_id", res.CustomerID,
		"customer_created", res.CustomerCreated,
		"invoice_no", res.InvoiceNo,
		"total", res.Total.StringFixed(2),
	)
	m.incr(ctx, MetricOrdersCreated)

	if m.publisher != nil {
		if err := m.publisher.OrderCreated(ctx, res); err != nil {
			m.logger.WarnContext(ctx, "publish order created failed",
				"order_id", res.OrderID,
				"error", err,
			)
		}
	}
	return &res, nil
}

func (m *Manager) incr(ctx context.Context, name string) {
	if m.counter != nil {
		m.counter.Incr(ctx, name)
	}
}

func nullDate(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
