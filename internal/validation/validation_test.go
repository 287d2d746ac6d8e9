package validation

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imrishuroy/go-rental-billing/internal/billing"
)

const validBody = `{
  "customer": {"name": "A", "phone": "111", "address": "X"},
  "order_date": "2024-05-01",
  "items": [
    {"product": "Chair", "price": 100, "quantity": 2},
    {"product": "Table", "price": "250.00", "quantity": "1"}
  ]
}`

func decode(t *testing.T, body string) CreateOrderRequest {
	t.Helper()
	var req CreateOrderRequest
	require.NoError(t, json.Unmarshal([]byte(body), &req))
	return req
}

func validate(t *testing.T, body string) error {
	t.Helper()
	req := decode(t, body)
	if err := New().Struct(req); err != nil {
		return toValidationError(err)
	}
	return nil
}

func TestCreateOrderRequest_Valid(t *testing.T) {
	req := decode(t, validBody)
	require.NoError(t, New().Struct(req))

	out, err := req.ToOrderRequest()
	require.NoError(t, err)
	assert.Equal(t, "A", out.Customer.Name)
	assert.Equal(t, "2024-05-01", out.OrderDate)
	require.Len(t, out.Items, 2)
	assert.Equal(t, "100", out.Items[0].Price.String())
	assert.Equal(t, int64(2), out.Items[0].Quantity)
	assert.Equal(t, "250", out.Items[1].Price.String())
	assert.NoError(t, out.Validate())
}

func TestNumeric_Unmarshal(t *testing.T) {
	var n Numeric
	require.NoError(t, json.Unmarshal([]byte(`"19.99"`), &n))
	assert.True(t, n.Set && n.OK)
	assert.Equal(t, "19.99", n.Value.String())

	require.NoError(t, json.Unmarshal([]byte(`"abc"`), &n))
	assert.True(t, n.Set)
	assert.False(t, n.OK)
	assert.Equal(t, "abc", n.Raw)

	require.NoError(t, json.Unmarshal([]byte(`null`), &n))
	assert.False(t, n.Set)
}

func TestCreateOrderRequest_Messages(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "missing customer fields",
			body: `{"customer": {"name": "A", "phone": ""}, "items": [{"product": "Chair", "price": 1, "quantity": 1}]}`,
			want: billing.MsgMissingFields,
		},
		{
			name: "missing customer wins over empty items",
			body: `{"items": []}`,
			want: billing.MsgMissingFields,
		},
		{
			name: "empty items",
			body: `{"customer": {"name": "A", "phone": "1", "address": "X"}, "items": []}`,
			want: billing.MsgNoItems,
		},
		{
			name: "absent items",
			body: `{"customer": {"name": "A", "phone": "1", "address": "X"}}`,
			want: billing.MsgNoItems,
		},
		{
			name: "bad date",
			body: `{"customer": {"name": "A", "phone": "1", "address": "X"}, "rent_start": "01/05/2024", "items": [{"product": "Chair", "price": 1, "quantity": 1}]}`,
			want: "invalid rent_start: expected YYYY-MM-DD",
		},
		{
			name: "missing product",
			body: `{"customer": {"name": "A", "phone": "1", "address": "X"}, "items": [{"price": 1, "quantity": 1}]}`,
			want: "item 1: product is required",
		},
		{
			name: "missing price",
			body: `{"customer": {"name": "A", "phone": "1", "address": "X"}, "items": [{"product": "a", "price": 1, "quantity": 1}, {"product": "b", "quantity": 1}]}`,
			want: "item 2: price is required",
		},
		{
			name: "non-numeric quantity",
			body: `{"customer": {"name": "A", "phone": "1", "address": "X"}, "items": [{"product": "a", "price": 1, "quantity": "two"}]}`,
			want: "item 1: quantity must be a number",
		},
		{
			name: "price exponent out of range",
			body: `{"customer": {"name": "A", "phone": "1", "address": "X"}, "items": [{"product": "a", "price": "1e20000000", "quantity": 1}]}`,
			want: "item 1: price must be a number",
		},
		{
			name: "quantity exponent out of range",
			body: `{"customer": {"name": "A", "phone": "1", "address": "X"}, "items": [{"product": "a", "price": 1, "quantity": 1e20000000}]}`,
			want: "item 1: quantity must be a number",
		},
		{
			name: "overlong numeric",
			body: `{"customer": {"name": "A", "phone": "1", "address": "X"}, "items": [{"product": "a", "price": "1.0000000000000000000000000000000", "quantity": 1}]}`,
			want: "item 1: price must be a number",
		},
		{
			name: "overlong product",
			body: `{"customer": {"name": "A", "phone": "1", "address": "X"}, "items": [{"product": "` + strings.Repeat("x", 201) + `", "price": 1, "quantity": 1}]}`,
			want: "item 1: product must be at most 200 characters",
		},
		{
			name: "overlong address",
			body: `{"customer": {"name": "A", "phone": "1", "address": "` + strings.Repeat("x", 201) + `"}, "items": [{"product": "a", "price": 1, "quantity": 1}]}`,
			want: "customer address must be at most 200 characters",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validate(t, tt.body)
			require.Error(t, err)
			assert.True(t, billing.IsValidation(err))
			assert.Equal(t, tt.want, err.Error())
		})
	}
}

func TestToOrderRequest_FractionalQuantity(t *testing.T) {
	req := decode(t, `{"customer": {"name": "A", "phone": "1", "address": "X"}, "items": [{"product": "a", "price": 1, "quantity": 1.5}]}`)
	require.NoError(t, New().Struct(req))

	_, err := req.ToOrderRequest()
	require.Error(t, err)
	assert.Equal(t, "item 1: quantity must be a positive integer", err.Error())
}

func TestToOrderRequest_QuantityRange(t *testing.T) {
	tests := []struct {
		name     string
		quantity string
		want     string
	}{
		{name: "wraps past 64 bits", quantity: "18446744073709551617", want: "item 1: quantity must not exceed 2147483647"},
		{name: "beyond integer column", quantity: "2147483648", want: "item 1: quantity must not exceed 2147483647"},
		{name: "at integer column limit", quantity: "2147483647"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := decode(t, `{"customer": {"name": "A", "phone": "1", "address": "X"}, "items": [{"product": "a", "price": 10, "quantity": `+tt.quantity+`}]}`)
			require.NoError(t, New().Struct(req))

			out, err := req.ToOrderRequest()
			if tt.want == "" {
				require.NoError(t, err)
				assert.Equal(t, int64(2147483647), out.Items[0].Quantity)
				return
			}
			require.Error(t, err)
			assert.True(t, billing.IsValidation(err))
			assert.Equal(t, tt.want, err.Error())
		})
	}
}

func TestBindAndValidate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	v := New()

	run := func(body string) (*httptest.ResponseRecorder, error) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(body))
		c.Request.Header.Set("Content-Type", "application/json")
		var req CreateOrderRequest
		return w, BindAndValidate(c, &req, v)
	}

	w, err := run(validBody)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, w.Code)

	w, err = run(`{"customer":`)
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid_request_body")

	w, err = run(`{"customer": {"name": "A", "phone": "1", "address": "X"}, "items": []}`)
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"validation_failed","message":"no items"}`, w.Body.String())
}
