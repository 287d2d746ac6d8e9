// Package handlers exposes order ingestion, invoices and customer lookup
// over HTTP with gin.
package handlers

import (
	"context"
	"log/slog"

	"github.com/imrishuroy/go-rental-billing/internal/customers"
	"github.com/imrishuroy/go-rental-billing/internal/idempotency"
	"github.com/imrishuroy/go-rental-billing/internal/invoice"
	"github.com/imrishuroy/go-rental-billing/internal/orders"
)

// OrderCreator is satisfied by *orders.Manager.
type OrderCreator interface {
	CreateOrder(ctx context.Context, req orders.Request) (*orders.Result, error)
}

// OrderReader is satisfied by *orders.Store.
type OrderReader interface {
	Snapshot(ctx context.Context, orderID int64) (*orders.Snapshot, error)
}

// InvoicePreparer is satisfied by *invoice.Renderer.
type InvoicePreparer interface {
	Prepare(ctx context.Context, orderID int64) (*invoice.Document, error)
}

// CustomerReader is satisfied by *customers.Store.
type CustomerReader interface {
	Search(ctx context.Context, query string, limit int) ([]customers.Customer, error)
	Get(ctx context.Context, id int64) (*customers.Customer, error)
	Orders(ctx context.Context, customerID int64) ([]customers.OrderSummary, error)
}

// IdempotencyStore is satisfied by *idempotency.Store.
type IdempotencyStore interface {
	Claim(ctx context.Context, key, requestHash string) (idempotency.Claim, error)
	MarkDone(ctx context.Context, key string, orderID int64, responseBody string, responseStatus int) error
	MarkFailed(ctx context.Context, key, note string) error
}

// Counter records named counts.
type Counter interface {
	Incr(ctx context.Context, name string)
}

// HandlerConfig groups dependencies for the HTTP handlers. Idempotency
// and Metrics are optional.
type HandlerConfig struct {
	Orders      OrderCreator
	OrderReader OrderReader
	Invoices    InvoicePreparer
	Customers   CustomerReader
	Idempotency IdempotencyStore
	Metrics     Counter
	Health      func(ctx context.Context) error
	Logger      *slog.Logger
}

func (cfg HandlerConfig) logger() *slog.Logger {
	if cfg.Logger == nil {
		return slog.Default()
	}
	return cfg.Logger
}
