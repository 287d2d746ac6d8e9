package validation

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/imrishuroy/go-rental-billing/internal/billing"
	"github.com/imrishuroy/go-rental-billing/internal/customers"
	"github.com/imrishuroy/go-rental-billing/internal/orders"
)

// Bounds on numeric input. Anything longer, or with a larger exponent,
// is treated as malformed.
const (
	maxNumericLen   = 32
	maxNumericScale = 32
)

// Numeric accepts a JSON number or a numeric string. Malformed input is
// kept rather than rejected so validation can name the offending item.
type Numeric struct {
	Raw   string
	Value decimal.Decimal
	Set   bool
	OK    bool
}

func (n *Numeric) UnmarshalJSON(b []byte) error {
	*n = Numeric{}
	b = bytes.TrimSpace(b)
	if string(b) == "null" {
		return nil
	}
	n.Set = true
	s := string(b)
	if len(b) > 0 && b[0] == '"' {
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
	}
	n.Raw = s
	s = strings.TrimSpace(s)
	if len(s) > maxNumericLen {
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil
	}
	if e := d.Exponent(); e > maxNumericScale || e < -maxNumericScale {
		return nil
	}
	n.Value, n.OK = d, true
	return nil
}

// Customer identifies who is renting.
type Customer struct {
	Name     string `json:"name" validate:"required,max=200"`
	Phone    string `json:"phone" validate:"required,max=32"`
	AltPhone string `json:"alt_phone" validate:"omitempty,max=32"`
	Address  string `json:"address" validate:"required,max=200"`
}

// Item is one rented product. Price and quantity are checked by the
// struct-level rule registered in New.
type Item struct {
	Product  string  `json:"product" validate:"required,max=200"`
	Price    Numeric `json:"price"`
	Quantity Numeric `json:"quantity"`
}

// CreateOrderRequest is the payload for POST /orders
type CreateOrderRequest struct {
	Customer  Customer `json:"customer"`
	OrderDate string   `json:"order_date" validate:"omitempty,datetime=2006-01-02"`
	RentStart string   `json:"rent_start" validate:"omitempty,datetime=2006-01-02"`
	RentEnd   string   `json:"rent_end" validate:"omitempty,datetime=2006-01-02"`
	Items     []Item   `json:"items" validate:"required,min=1,dive"`
}

var maxQuantity = decimal.NewFromInt(orders.MaxQuantity)

// ToOrderRequest converts a validated payload into the typed request
// the order manager accepts.
func (r CreateOrderRequest) ToOrderRequest() (orders.Request, error) {
	out := orders.Request{
		Customer: customers.Info{
			Name:     r.Customer.Name,
			Phone:    r.Customer.Phone,
			AltPhone: r.Customer.AltPhone,
			Address:  r.Customer.Address,
		},
		OrderDate: r.OrderDate,
		RentStart: r.RentStart,
		RentEnd:   r.RentEnd,
		Items:     make([]orders.Item, 0, len(r.Items)),
	}
	for i, it := range r.Items {
		q := it.Quantity.Value
		if !q.IsInteger() || !q.IsPositive() {
			return orders.Request{}, billing.Invalidf("item %d: quantity must be a positive integer", i+1)
		}
		if q.GreaterThan(maxQuantity) {
			return orders.Request{}, billing.Invalidf("item %d: quantity must not exceed %d", i+1, orders.MaxQuantity)
		}
		out.Items = append(out.Items, orders.Item{
			Product:  it.Product,
			Price:    it.Price.Value,
			Quantity: q.IntPart(),
		})
	}
	return out, nil
}
