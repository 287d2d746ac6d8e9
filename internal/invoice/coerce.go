package invoice

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/imrishuroy/go-rental-billing/internal/orders"
)

const displayDateLayout = "02/01/2006"

// row is an item as displayed. Coercion never fails: anything that does
// not parse as a number shows as zero.
type row struct {
	Product  string
	Price    decimal.Decimal
	Quantity decimal.Decimal
	Amount   decimal.Decimal
	// Degraded is set when a stored numeric column was missing or malformed.
	Degraded bool
}

func number(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// coerceRow picks the displayed amount: the stored line total if numeric,
// else price × quantity if both are numeric, else zero.
func coerceRow(it orders.RawItem) row {
	price, priceOK := number(it.Price)
	qty, qtyOK := number(it.Quantity)
	line, lineOK := number(it.LineTotal)

	r := row{
		Product:  it.Product,
		Price:    price,
		Quantity: qty,
		Degraded: !priceOK || !qtyOK || !lineOK,
	}
	switch {
	case lineOK:
		r.Amount = line
	case priceOK && qtyOK:
		r.Amount = price.Mul(qty)
	default:
		r.Amount = decimal.Zero
	}
	return r
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func quantity(d decimal.Decimal) string {
	return d.Truncate(0).String()
}

// displayDate turns YYYY-MM-DD into DD/MM/YYYY; anything else is shown as stored.
func displayDate(s string) string {
	t, err := time.Parse(orders.DateLayout, s)
	if err != nil {
		return s
	}
	return t.Format(displayDateLayout)
}
