package events

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/imrishuroy/go-rental-billing/internal/orders"
)

// Sender delivers one message. *aws.Publisher satisfies it.
type Sender interface {
	Send(ctx context.Context, v any, attributes map[string]string) (string, error)
}

// Publisher announces committed orders through a Sender.
type Publisher struct {
	sender Sender
	logger *slog.Logger
}

var _ orders.Publisher = (*Publisher)(nil)

// NewPublisher returns a Publisher sending through s.
func NewPublisher(s Sender, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{sender: s, logger: logger}
}

// OrderCreated sends an OrderCreated message for res.
func (p *Publisher) OrderCreated(ctx context.Context, res orders.Result) error {
	msg := NewOrderCreated(ctx, res)
	id, err := p.sender.Send(ctx, msg, map[string]string{
		"event":    TypeOrderCreated,
		"order_id": strconv.FormatInt(res.OrderID, 10),
	})
	if err != nil {
		return err
	}
	p.logger.Debug("order event published", "order_id", res.OrderID, "message_id", id)
	return nil
}
