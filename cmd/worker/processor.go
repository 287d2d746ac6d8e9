package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	lambdaevents "github.com/aws/aws-lambda-go/events"

	"github.com/imrishuroy/go-rental-billing/internal/billing"
	"github.com/imrishuroy/go-rental-billing/internal/events"
	"github.com/imrishuroy/go-rental-billing/internal/invoice"
)

// InvoiceRenderer is satisfied by *invoice.Renderer.
type InvoiceRenderer interface {
	Render(ctx context.Context, orderID int64, w io.Writer) (invoice.Summary, error)
}

// Counter records named counts.
type Counter interface {
	Add(ctx context.Context, name string, value float64)
}

// errDrop marks a message that can never succeed and must not be retried.
var errDrop = errors.New("drop message")

// Processor audits committed orders: it renders each announced invoice
// and checks the render-time total against the stored one.
type Processor struct {
	renderer InvoiceRenderer
	counter  Counter
	logger   *slog.Logger
}

// NewProcessor creates a worker processor. counter may be nil.
func NewProcessor(renderer InvoiceRenderer, counter Counter, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{renderer: renderer, counter: counter, logger: logger}
}

// Handle processes an SQS batch. Messages that fail transiently are
// reported back so only they are redelivered.
func (p *Processor) Handle(ctx context.Context, ev lambdaevents.SQSEvent) (lambdaevents.SQSEventResponse, error) {
	var resp lambdaevents.SQSEventResponse
	p.logger.Debug("received SQS batch", "messages", len(ev.Records))

	for _, rec := range ev.Records {
		err := p.processMessage(ctx, rec)
		switch {
		case err == nil:
		case errors.Is(err, errDrop):
			p.logger.Warn("dropping message", "message_id", rec.MessageId, "error", err)
			p.add(ctx, MetricMessagesDropped, 1)
		default:
			p.logger.Error("worker error", "message_id", rec.MessageId, "error", err)
			resp.BatchItemFailures = append(resp.BatchItemFailures, lambdaevents.SQSBatchItemFailure{
				ItemIdentifier: rec.MessageId,
			})
		}
	}
	return resp, nil
}

func (p *Processor) processMessage(ctx context.Context, rec lambdaevents.SQSMessage) error {
	var msg events.OrderCreated
	if err := json.Unmarshal([]byte(rec.Body), &msg); err != nil {
		return fmt.Errorf("%w: invalid message body: %v", errDrop, err)
	}
	if msg.OrderID < 1 {
		return fmt.Errorf("%w: message has no order id", errDrop)
	}

	logger := p.logger.With("order_id", msg.OrderID, "invoice_no", msg.InvoiceNo, "correlation_id", msg.CorrelationID)

	sum, err := p.renderer.Render(ctx, msg.OrderID, io.Discard)
	if errors.Is(err, billing.ErrNotFound) {
		return fmt.Errorf("%w: order %d not found", errDrop, msg.OrderID)
	}
	if err != nil {
		return fmt.Errorf("render invoice for order %d: %w", msg.OrderID, err)
	}
	p.add(ctx, MetricInvoicesAudited, 1)

	mismatch := !sum.TotalsAgree() || !msg.Total.Equal(sum.Total)
	if mismatch {
		logger.Error("invoice total mismatch",
			"render_total", sum.Total.StringFixed(2),
			"stored_total", sum.StoredTotal,
			"event_total", msg.Total.StringFixed(2),
			"degraded_rows", sum.Degraded,
		)
		p.add(ctx, MetricInvoiceTotalMismatch, 1)
		return nil
	}

	logger.Info("invoice audited", "rows", sum.Rows, "pages", sum.Pages, "bytes", sum.Bytes)
	return nil
}

func (p *Processor) add(ctx context.Context, name string, v float64) {
	if p.counter != nil {
		p.counter.Add(ctx, name, v)
	}
}
