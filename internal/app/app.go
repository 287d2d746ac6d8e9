// Package app wires configuration into the components every billing
// binary shares.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/imrishuroy/go-rental-billing/internal/aws"
	"github.com/imrishuroy/go-rental-billing/internal/config"
	"github.com/imrishuroy/go-rental-billing/internal/customers"
	"github.com/imrishuroy/go-rental-billing/internal/events"
	"github.com/imrishuroy/go-rental-billing/internal/handlers"
	"github.com/imrishuroy/go-rental-billing/internal/idempotency"
	"github.com/imrishuroy/go-rental-billing/internal/invoice"
	"github.com/imrishuroy/go-rental-billing/internal/orders"
	"github.com/imrishuroy/go-rental-billing/internal/store"
)

// App holds the wired components. Idempotency, Publisher and Metrics are
// nil when their AWS resource is not configured.
type App struct {
	Config    config.Config
	Logger    *slog.Logger
	DB        *store.DB
	Manager   *orders.Manager
	Orders    *orders.Store
	Customers *customers.Store
	Renderer  *invoice.Renderer

	Idempotency *idempotency.Store
	Publisher   *events.Publisher
	Metrics     *aws.Metrics
}

// New opens the store and builds every component. service names the
// binary in metric dimensions.
func New(ctx context.Context, cfg config.Config, service string, logger *slog.Logger) (*App, error) {
	db, err := store.Open(ctx, cfg.Store())
	if err != nil {
		return nil, err
	}

	a := &App{
		Config:    cfg,
		Logger:    logger,
		DB:        db,
		Orders:    orders.NewStore(db.SQL()),
		Customers: customers.NewStore(db.SQL()),
	}

	if cfg.UsesAWS() {
		clients, err := aws.NewClients(ctx, cfg.AWS())
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("init aws clients: %w", err)
		}
		a.attachAWS(clients, service)
	}

	a.Renderer = invoice.NewRenderer(a.Orders,
		invoice.WithLetterhead(cfg.Letterhead),
		invoice.WithLogger(logger),
	)

	opts := []orders.Option{orders.WithLogger(logger)}
	if a.Publisher != nil {
		opts = append(opts, orders.WithPublisher(a.Publisher))
	}
	if a.Metrics != nil {
		opts = append(opts, orders.WithCounter(a.Metrics))
	}
	a.Manager = orders.NewManager(db.SQL(), customers.NewResolver(customers.WithLogger(logger)), opts...)

	return a, nil
}

func (a *App) attachAWS(clients *aws.Clients, service string) {
	cfg := a.Config
	if cfg.IdempotencyTable != "" {
		a.Idempotency = idempotency.NewStore(clients.DynamoDB, cfg.IdempotencyTable, cfg.IdempotencyTTL)
	}
	if cfg.OrdersQueueURL != "" {
		a.Publisher = events.NewPublisher(aws.NewPublisher(clients.SQS, cfg.OrdersQueueURL), a.Logger)
	}
	if cfg.MetricsNamespace != "" {
		a.Metrics = aws.NewMetrics(clients.CloudWatch, cfg.MetricsNamespace, service, a.Logger)
	}
}

// HandlerConfig exposes the components to the HTTP layer.
func (a *App) HandlerConfig() handlers.HandlerConfig {
	hc := handlers.HandlerConfig{
		Orders:      a.Manager,
		OrderReader: a.Orders,
		Invoices:    a.Renderer,
		Customers:   a.Customers,
		Health:      a.DB.Ping,
		Logger:      a.Logger,
	}
	// typed nils must not leak into the interfaces
	if a.Idempotency != nil {
		hc.Idempotency = a.Idempotency
	}
	if a.Metrics != nil {
		hc.Metrics = a.Metrics
	}
	return hc
}

// Close releases the store.
func (a *App) Close() error {
	return a.DB.Close()
}
