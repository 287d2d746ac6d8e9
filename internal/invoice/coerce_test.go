package invoice

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/imrishuroy/go-rental-billing/internal/orders"
)

func TestCoerceRow(t *testing.T) {
	tests := []struct {
		name     string
		item     orders.RawItem
		amount   string
		price    string
		degraded bool
	}{
		{
			name:   "stored line total wins",
			item:   orders.RawItem{Price: "10.00", Quantity: "20", LineTotal: "200.00"},
			amount: "200.00",
			price:  "10.00",
		},
		{
			name:     "missing line total falls back to price times quantity",
			item:     orders.RawItem{Price: "19.99", Quantity: "3"},
			amount:   "59.97",
			price:    "19.99",
			degraded: true,
		},
		{
			name:     "malformed price with no line total is zero",
			item:     orders.RawItem{Price: "abc", Quantity: "2"},
			amount:   "0.00",
			price:    "0.00",
			degraded: true,
		},
		{
			name:     "malformed price keeps a numeric line total",
			item:     orders.RawItem{Price: "n/a", Quantity: "2", LineTotal: "30.00"},
			amount:   "30.00",
			price:    "0.00",
			degraded: true,
		},
		{
			name:     "everything null",
			item:     orders.RawItem{},
			amount:   "0.00",
			price:    "0.00",
			degraded: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := coerceRow(tt.item)
			assert.Equal(t, tt.amount, money(r.Amount))
			assert.Equal(t, tt.price, money(r.Price))
			assert.Equal(t, tt.degraded, r.Degraded)
		})
	}
}

func TestDisplayDate(t *testing.T) {
	assert.Equal(t, "01/05/2024", displayDate("2024-05-01"))
	assert.Equal(t, "", displayDate(""))
	assert.Equal(t, "soon", displayDate("soon"))
}

func TestQuantity(t *testing.T) {
	r := coerceRow(orders.RawItem{Quantity: "20"})
	assert.Equal(t, "20", quantity(r.Quantity))
}

func TestFit(t *testing.T) {
	c := &recordingCanvas{}
	assert.Equal(t, "short", fit(c, "short", 20))
	// 2mm per rune: "abcdefghij" is 20mm, "abcdefg..." is 20mm
	assert.Equal(t, "abcdefg...", fit(c, "abcdefghijkl", 20))
	assert.Equal(t, "", fit(c, "abcdef", 4))
	assert.Equal(t, "ab...", fit(c, "ab   cdefgh", 16))
}

func TestFit_LongTextMeasuresLogarithmically(t *testing.T) {
	c := &recordingCanvas{}
	got := fit(c, strings.Repeat("x", 20000), 80)

	assert.Equal(t, strings.Repeat("x", 37)+"...", got)
	assert.LessOrEqual(t, c.measured, 20)
}
