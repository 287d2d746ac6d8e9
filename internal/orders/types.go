package orders

import (
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/imrishuroy/go-rental-billing/internal/billing"
	"github.com/imrishuroy/go-rental-billing/internal/customers"
)

// DateLayout is the calendar-date format used on the wire and in the store.
const DateLayout = "2006-01-02"

// Metric names recorded by the Manager.
const (
	MetricOrdersCreated       = "OrdersCreated"
	MetricOrderCreateFailures = "OrderCreateFailures"
)

// Column limits: price is NUMERIC(12,2), quantity is INTEGER.
const (
	MaxQuantity = math.MaxInt32
	// priceExponentLimit bounds the decimal exponent accepted before any
	// arithmetic on the price.
	priceExponentLimit = 32
)

// MaxPrice is the exclusive upper bound of an item price.
var MaxPrice = decimal.New(1, 10)

// Item is one validated line of an order request.
type Item struct {
	Product  string
	Price    decimal.Decimal
	Quantity int64
}

// LineTotal is price × quantity.
func (i Item) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(i.Quantity))
}

// Request is the typed input of CreateOrder. Dates are YYYY-MM-DD or empty.
type Request struct {
	Customer  customers.Info
	OrderDate string
	RentStart string
	RentEnd   string
	Items     []Item
}

// Validate checks the request before any persistence call.
func (r Request) Validate() error {
	if !r.Customer.Normalize().Complete() {
		return billing.Invalid(billing.MsgMissingFields)
	}
	if len(r.Items) == 0 {
		return billing.Invalid(billing.MsgNoItems)
	}
	dates := []struct{ name, value string }{
		{"order_date", r.OrderDate},
		{"rent_start", r.RentStart},
		{"rent_end", r.RentEnd},
	}
	for _, d := range dates {
		if d.value == "" {
			continue
		}
		if _, err := time.Parse(DateLayout, d.value); err != nil {
			return billing.Invalidf("invalid %s: expected YYYY-MM-DD", d.name)
		}
	}
	for i, it := range r.Items {
		n := i + 1
		switch {
		case strings.TrimSpace(it.Product) == "":
			return billing.Invalidf("item %d: product is required", n)
		case it.Price.IsNegative():
			return billing.Invalidf("item %d: price must not be negative", n)
		case !priceInRange(it.Price):
			return billing.Invalidf("item %d: price must be less than %s", n, MaxPrice)
		case !it.Price.Equal(it.Price.Round(2)):
			return billing.Invalidf("item %d: price has more than two decimal places", n)
		case it.Quantity < 1:
			return billing.Invalidf("item %d: quantity must be a positive integer", n)
		case it.Quantity > MaxQuantity:
			return billing.Invalidf("item %d: quantity must not exceed %d", n, MaxQuantity)
		}
	}
	return nil
}

// priceInRange rejects extreme exponents before any comparison scales
// the coefficient.
func priceInRange(p decimal.Decimal) bool {
	if e := p.Exponent(); e > priceExponentLimit || e < -priceExponentLimit {
		return false
	}
	return p.LessThan(MaxPrice)
}

// Result identifies what CreateOrder persisted.
type Result struct {
	CustomerID      int64
	CustomerCreated bool
	OrderID         int64
	InvoiceNo       string
	OrderDate       string
	Total           decimal.Decimal
}

// RawItem is an order_items row read back as text. Numeric columns are
// left unparsed so the renderer can degrade malformed values to zero;
// an empty string stands for NULL.
type RawItem struct {
	ID        int64  `json:"id"`
	Product   string `json:"product"`
	Price     string `json:"price"`
	Quantity  string `json:"quantity"`
	LineTotal string `json:"line_total"`
}

// Snapshot is a persisted order joined with its customer and items.
type Snapshot struct {
	OrderID   int64              `json:"id"`
	InvoiceNo string             `json:"invoice_no"`
	OrderDate string             `json:"order_date"`
	RentStart string             `json:"rent_start,omitempty"`
	RentEnd   string             `json:"rent_end,omitempty"`
	Total     string             `json:"total"`
	Customer  customers.Customer `json:"customer"`
	Items     []RawItem          `json:"items"`
}
