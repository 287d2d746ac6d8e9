// Package invoice renders a persisted order as a fixed-layout, paginated
// PDF invoice.
package invoice

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/imrishuroy/go-rental-billing/internal/orders"
)

// Metric name recorded for every rendered invoice.
const MetricInvoicesRendered = "InvoicesRendered"

// ErrAlreadyWritten is returned when a Document is written twice.
var ErrAlreadyWritten = errors.New("invoice: document already written")

// Loader fetches an order snapshot. *orders.Store satisfies it.
type Loader interface {
	Snapshot(ctx context.Context, orderID int64) (*orders.Snapshot, error)
}

// Summary describes a written invoice.
type Summary struct {
	OrderID     int64
	InvoiceNo   string
	Rows        int
	Degraded    int
	Pages       int
	Total       decimal.Decimal
	StoredTotal string
	Bytes       int64
}

// TotalsAgree reports whether the render-time total equals the stored one.
func (s Summary) TotalsAgree() bool {
	stored, ok := number(s.StoredTotal)
	return ok && stored.Equal(s.Total)
}

// Renderer turns order ids into invoice documents.
type Renderer struct {
	loader     Loader
	letterhead Letterhead
	newCanvas  func() Canvas
	logger     *slog.Logger
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithLetterhead sets the business identity printed on invoices.
func WithLetterhead(l Letterhead) Option {
	return func(r *Renderer) { r.letterhead = l }
}

// WithCanvas overrides the document sink factory.
func WithCanvas(newCanvas func() Canvas) Option {
	return func(r *Renderer) { r.newCanvas = newCanvas }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Renderer) { r.logger = logger }
}

// NewRenderer returns a Renderer producing PDFs by default.
func NewRenderer(loader Loader, opts ...Option) *Renderer {
	r := &Renderer{
		loader:     loader,
		letterhead: DefaultLetterhead,
		newCanvas:  func() Canvas { return NewPDFCanvas() },
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Prepare loads everything the invoice needs. Unknown ids fail here with
// billing.ErrNotFound, before a single byte is written anywhere.
func (r *Renderer) Prepare(ctx context.Context, orderID int64) (*Document, error) {
	snap, err := r.loader.Snapshot(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("load invoice: %w", err)
	}
	return &Document{
		snap:       snap,
		letterhead: r.letterhead,
		canvas:     r.newCanvas(),
		logger:     r.logger.With("order_id", snap.OrderID, "invoice_no", snap.InvoiceNo),
	}, nil
}

// Render is Prepare followed by Write.
func (r *Renderer) Render(ctx context.Context, orderID int64, w io.Writer) (Summary, error) {
	doc, err := r.Prepare(ctx, orderID)
	if err != nil {
		return Summary{}, err
	}
	return doc.Write(w)
}

// Document is a loaded order waiting to be laid out.
type Document struct {
	snap       *orders.Snapshot
	letterhead Letterhead
	canvas     Canvas
	logger     *slog.Logger
	written    bool

	y       float64
	summary Summary
}

// InvoiceNo is the invoice identifier of the loaded order.
func (d *Document) InvoiceNo() string { return d.snap.InvoiceNo }

// Write lays the invoice out as header, customer block, item table, total
// box and footer, then finalizes the canvas onto w. The document is
// complete only when Write returns nil; a caller that abandons w early
// is left with a partial document.
func (d *Document) Write(w io.Writer) (Summary, error) {
	if d.written {
		return Summary{}, ErrAlreadyWritten
	}
	d.written = true

	d.summary = Summary{
		OrderID:     d.snap.OrderID,
		InvoiceNo:   d.snap.InvoiceNo,
		Pages:       1,
		Total:       decimal.Zero,
		StoredTotal: d.snap.Total,
	}

	d.header()
	d.customer()
	d.items()
	d.totalBox()
	d.footer()

	cw := &countingWriter{w: w}
	if err := d.canvas.Finalize(cw); err != nil {
		return Summary{}, fmt.Errorf("finalize invoice: %w", err)
	}
	d.summary.Bytes = cw.n

	if !d.summary.TotalsAgree() {
		d.logger.Warn("invoice total differs from stored total",
			"render_total", money(d.summary.Total),
			"stored_total", d.summary.StoredTotal,
		)
	}
	return d.summary, nil
}

func (d *Document) header() {
	c := d.canvas
	d.y = pageTop
	c.SetFont(Bold, 20)
	centered(c, d.y, d.letterhead.Name)
	d.y += 8
	if len(d.letterhead.Phones) > 0 {
		c.SetFont(Regular, 10)
		centered(c, d.y, "Ph: "+strings.Join(d.letterhead.Phones, ", "))
		d.y += 4
	}
	c.Line(marginLeft, d.y, marginRight, d.y)
	d.y += 10
}

func (d *Document) customer() {
	c := d.canvas
	snap := d.snap
	lines := []string{
		"Invoice No: " + snap.InvoiceNo,
		"Date: " + displayDate(snap.OrderDate),
		"Name: " + snap.Customer.Name,
		"Phone: " + phones(snap.Customer.Phone, snap.Customer.AltPhone),
		"Address: " + snap.Customer.Address,
	}
	if snap.RentStart != "" || snap.RentEnd != "" {
		lines = append(lines, "Rental: "+displayDate(snap.RentStart)+" to "+displayDate(snap.RentEnd))
	}

	c.SetFont(Regular, 11)
	for _, l := range lines {
		centered(c, d.y, fit(c, l, marginRight-marginLeft))
		d.y += 6
	}
	d.y += 4
}

func (d *Document) tableHeader() {
	c := d.canvas
	c.SetFont(Bold, 11)
	c.Rect(marginLeft, d.y, marginRight-marginLeft, rowHeight)
	for _, col := range columns {
		cell(c, col, d.y, col.title)
	}
	d.y += rowHeight
	c.SetFont(Regular, 11)
}

func (d *Document) newPage() {
	d.canvas.AddPage()
	d.summary.Pages++
	d.y = pageTop
}

func (d *Document) items() {
	c := d.canvas
	d.tableHeader()

	for i, it := range d.snap.Items {
		if d.y+rowHeight > bodyBottom {
			d.newPage()
			d.tableHeader()
		}

		r := coerceRow(it)
		if r.Degraded {
			d.summary.Degraded++
			d.logger.Warn("invoice row has non-numeric values",
				"item_id", it.ID,
				"price", it.Price,
				"quantity", it.Quantity,
				"line_total", it.LineTotal,
			)
		}

		cell(c, columns[0], d.y, strconv.Itoa(i+1))
		cell(c, columns[1], d.y, r.Product)
		cell(c, columns[2], d.y, money(r.Price))
		cell(c, columns[3], d.y, quantity(r.Quantity))
		cell(c, columns[4], d.y, money(r.Amount))
		d.y += rowHeight
		c.Line(marginLeft, d.y, marginRight, d.y)

		d.summary.Total = d.summary.Total.Add(r.Amount)
		d.summary.Rows++
	}
}

func (d *Document) totalBox() {
	c := d.canvas
	d.y += 4
	if d.y+totalHeight > bodyBottom {
		d.newPage()
	}

	const boxLeft = 110.0
	c.Rect(boxLeft, d.y, marginRight-boxLeft, totalHeight)
	c.SetFont(Bold, 12)
	label := "Grand Total:"
	amount := money(d.summary.Total)
	baseline := d.y + totalHeight/2 + 1.5
	c.Text(boxLeft+cellPadding, baseline, label)
	c.Text(marginRight-cellPadding-c.TextWidth(amount), baseline, amount)
	d.y += totalHeight
}

func (d *Document) footer() {
	c := d.canvas
	c.Line(marginLeft, footerRule, marginRight, footerRule)
	c.SetFont(Regular, 10)
	y := footerLine
	if d.letterhead.Address != "" {
		centered(c, y, d.letterhead.Address)
		y += 6
	}
	if d.letterhead.ThankYou != "" {
		c.SetFont(Bold, 11)
		centered(c, y, d.letterhead.ThankYou)
	}
}

func phones(primary, alt string) string {
	if alt == "" {
		return primary
	}
	return primary + " / " + alt
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.n += int64(n)
	return n, err
}
