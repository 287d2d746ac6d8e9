// Package events defines the messages billing processes exchange over SQS.
package events

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/imrishuroy/go-rental-billing/internal/orders"
)

// TypeOrderCreated is carried in the "event" message attribute.
const TypeOrderCreated = "OrderCreated"

// OrderCreated announces a committed order.
type OrderCreated struct {
	OrderID       int64           `json:"order_id"`
	InvoiceNo     string          `json:"invoice_no"`
	CustomerID    int64           `json:"customer_id"`
	Total         decimal.Decimal `json:"total"`
	CorrelationID string          `json:"correlation_id,omitempty"`
}

// NewOrderCreated builds the message for a committed order.
func NewOrderCreated(ctx context.Context, res orders.Result) OrderCreated {
	return OrderCreated{
		OrderID:       res.OrderID,
		InvoiceNo:     res.InvoiceNo,
		CustomerID:    res.CustomerID,
		Total:         res.Total,
		CorrelationID: CorrelationID(ctx),
	}
}

type correlationKey struct{}

// WithCorrelationID tags ctx so events published under it can be traced
// back to the originating request.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationKey{}, id)
}

// CorrelationID returns the id set by WithCorrelationID, or "".
func CorrelationID(ctx context.Context) string {
	id, _ := ctx.Value(correlationKey{}).(string)
	return id
}
