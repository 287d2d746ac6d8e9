package orders

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imrishuroy/go-rental-billing/internal/billing"
	"github.com/imrishuroy/go-rental-billing/internal/customers"
)

type recordingPublisher struct {
	got []Result
	err error
}

func (p *recordingPublisher) OrderCreated(ctx context.Context, res Result) error {
	p.got = append(p.got, res)
	return p.err
}

type recordingCounter struct {
	counts map[string]int
}

func (c *recordingCounter) Incr(ctx context.Context, name string) {
	if c.counts == nil {
		c.counts = map[string]int{}
	}
	c.counts[name]++
}

type fixture struct {
	db        *sql.DB
	mock      sqlmock.Sqlmock
	manager   *Manager
	publisher *recordingPublisher
	counter   *recordingCounter
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	f := &fixture{db: db, mock: mock, publisher: &recordingPublisher{}, counter: &recordingCounter{}}
	f.manager = NewManager(db, customers.NewResolver(),
		WithPublisher(f.publisher),
		WithCounter(f.counter),
		WithClock(func() time.Time { return time.Date(2024, 5, 1, 15, 4, 5, 0, time.UTC) }),
		WithInvoiceNumbers(func() string { return "inv-1" }),
	)
	return f
}

func item(product string, price, qty int64) Item {
	return Item{Product: product, Price: decimal.NewFromInt(price), Quantity: qty}
}

func (f *fixture) expectCustomer(name, phone string, alt any, address string, id int64, created bool) {
	f.mock.ExpectQuery("INSERT INTO customers").
		WithArgs(name, phone, alt, address).
		WillReturnRows(sqlmock.NewRows([]string{"id", "inserted"}).AddRow(id, created))
}

func (f *fixture) expectOrder(customerID int64, date string, start, end any, orderID int64) {
	f.mock.ExpectQuery("INSERT INTO orders").
		WithArgs("inv-1", customerID, date, start, end).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(orderID))
}

func (f *fixture) expectItem(orderID int64, product string, price, qty, line int64) {
	f.mock.ExpectExec("INSERT INTO order_items").
		WithArgs(orderID, product, decimal.NewFromInt(price), qty, decimal.NewFromInt(line)).
		WillReturnResult(sqlmock.NewResult(0, 1))
}

func TestCreateOrder_PersistsCustomerOrderItemsAndTotal(t *testing.T) {
	f := newFixture(t)

	f.mock.ExpectBegin()
	f.expectCustomer("A", "111", nil, "X", 1, true)
	f.expectOrder(1, "2024-05-01", nil, nil, 10)
	f.expectItem(10, "Chair", 100, 2, 200)
	f.expectItem(10, "Table", 250, 1, 250)
	f.mock.ExpectExec("UPDATE orders SET total").
		WithArgs(decimal.NewFromInt(450), int64(10)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	f.mock.ExpectCommit()

	res, err := f.manager.CreateOrder(context.Background(), Request{
		Customer: customers.Info{Name: "A", Phone: "111", Address: "X"},
		Items:    []Item{item("Chair", 100, 2), item("Table", 250, 1)},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(1), res.CustomerID)
	assert.True(t, res.CustomerCreated)
	assert.Equal(t, int64(10), res.OrderID)
	assert.Equal(t, "inv-1", res.InvoiceNo)
	assert.Equal(t, "2024-05-01", res.OrderDate)
	assert.Equal(t, "450.00", res.Total.StringFixed(2))

	require.Len(t, f.publisher.got, 1)
	assert.Equal(t, int64(10), f.publisher.got[0].OrderID)
	assert.Equal(t, 1, f.counter.counts[MetricOrdersCreated])
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestCreateOrder_RepeatPhoneReusesCustomer(t *testing.T) {
	f := newFixture(t)

	f.mock.ExpectBegin()
	f.expectCustomer("A", "111", nil, "Y", 1, false)
	f.expectOrder(1, "2024-06-02", "2024-06-03", "2024-06-05", 11)
	f.expectItem(11, "Tent", 75, 4, 300)
	f.mock.ExpectExec("UPDATE orders SET total").
		WithArgs(decimal.NewFromInt(300), int64(11)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	f.mock.ExpectCommit()

	res, err := f.manager.CreateOrder(context.Background(), Request{
		Customer:  customers.Info{Name: "A", Phone: "111", Address: "Y"},
		OrderDate: "2024-06-02",
		RentStart: "2024-06-03",
		RentEnd:   "2024-06-05",
		Items:     []Item{item("Tent", 75, 4)},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.CustomerID)
	assert.False(t, res.CustomerCreated)
	assert.Equal(t, int64(11), res.OrderID)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestCreateOrder_FractionalPrices(t *testing.T) {
	f := newFixture(t)

	f.mock.ExpectBegin()
	f.expectCustomer("A", "111", "222", "X", 1, true)
	f.expectOrder(1, "2024-05-01", nil, nil, 12)
	f.mock.ExpectExec("INSERT INTO order_items").
		WithArgs(int64(12), "Lamp", decimal.RequireFromString("19.99"), int64(3), decimal.RequireFromString("59.97")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	f.mock.ExpectExec("UPDATE orders SET total").
		WithArgs(decimal.RequireFromString("59.97"), int64(12)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	f.mock.ExpectCommit()

	res, err := f.manager.CreateOrder(context.Background(), Request{
		Customer: customers.Info{Name: "A", Phone: "111", AltPhone: "222", Address: "X"},
		Items:    []Item{{Product: "Lamp", Price: decimal.RequireFromString("19.99"), Quantity: 3}},
	})
	require.NoError(t, err)
	assert.Equal(t, "59.97", res.Total.StringFixed(2))
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestCreateOrder_RollsBackWhenItemInsertFails(t *testing.T) {
	f := newFixture(t)

	f.mock.ExpectBegin()
	f.expectCustomer("A", "111", nil, "X", 1, true)
	f.expectOrder(1, "2024-05-01", nil, nil, 10)
	f.expectItem(10, "Chair", 100, 2, 200)
	f.mock.ExpectExec("INSERT INTO order_items").
		WillReturnError(errors.New("numeric field overflow"))
	f.mock.ExpectRollback()

	res, err := f.manager.CreateOrder(context.Background(), Request{
		Customer: customers.Info{Name: "A", Phone: "111", Address: "X"},
		Items:    []Item{item("Chair", 100, 2), item("Crane", 1, 1)},
	})
	require.Error(t, err)
	assert.Nil(t, res)
	assert.True(t, billing.IsPersistence(err))
	assert.ErrorContains(t, err, "insert item 2: numeric field overflow")

	assert.Empty(t, f.publisher.got)
	assert.Equal(t, 1, f.counter.counts[MetricOrderCreateFailures])
	assert.Zero(t, f.counter.counts[MetricOrdersCreated])
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestCreateOrder_RollsBackWhenTotalUpdateFails(t *testing.T) {
	f := newFixture(t)

	f.mock.ExpectBegin()
	f.expectCustomer("A", "111", nil, "X", 1, true)
	f.expectOrder(1, "2024-05-01", nil, nil, 10)
	f.expectItem(10, "Chair", 100, 2, 200)
	f.mock.ExpectExec("UPDATE orders SET total").WillReturnError(errors.New("connection lost"))
	f.mock.ExpectRollback()

	_, err := f.manager.CreateOrder(context.Background(), Request{
		Customer: customers.Info{Name: "A", Phone: "111", Address: "X"},
		Items:    []Item{item("Chair", 100, 2)},
	})
	assert.True(t, billing.IsPersistence(err))
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestCreateOrder_BeginFailureIsPersistenceError(t *testing.T) {
	f := newFixture(t)
	f.mock.ExpectBegin().WillReturnError(errors.New("store unavailable"))

	_, err := f.manager.CreateOrder(context.Background(), Request{
		Customer: customers.Info{Name: "A", Phone: "111", Address: "X"},
		Items:    []Item{item("Chair", 100, 2)},
	})
	assert.True(t, billing.IsPersistence(err))
	assert.ErrorContains(t, err, "store unavailable")
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestCreateOrder_PublishFailureDoesNotFailOrder(t *testing.T) {
	f := newFixture(t)
	f.publisher.err = errors.New("queue down")

	f.mock.ExpectBegin()
	f.expectCustomer("A", "111", nil, "X", 1, true)
	f.expectOrder(1, "2024-05-01", nil, nil, 10)
	f.expectItem(10, "Chair", 100, 2, 200)
	f.mock.ExpectExec("UPDATE orders SET total").WillReturnResult(sqlmock.NewResult(0, 1))
	f.mock.ExpectCommit()

	res, err := f.manager.CreateOrder(context.Background(), Request{
		Customer: customers.Info{Name: "A", Phone: "111", Address: "X"},
		Items:    []Item{item("Chair", 100, 2)},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(10), res.OrderID)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestCreateOrder_ValidationTouchesNoStore(t *testing.T) {
	cases := []struct {
		name string
		req  Request
		msg  string
	}{
		{
			name: "missing name",
			req:  Request{Customer: customers.Info{Phone: "111", Address: "X"}, Items: []Item{item("Chair", 1, 1)}},
			msg:  billing.MsgMissingFields,
		},
		{
			name: "blank address",
			req:  Request{Customer: customers.Info{Name: "A", Phone: "111", Address: "  "}, Items: []Item{item("Chair", 1, 1)}},
			msg:  billing.MsgMissingFields,
		},
		{
			name: "no items",
			req:  Request{Customer: customers.Info{Name: "A", Phone: "111", Address: "X"}},
			msg:  billing.MsgNoItems,
		},
		{
			name: "missing fields reported before no items",
			req:  Request{},
			msg:  billing.MsgMissingFields,
		},
		{
			name: "negative price",
			req:  Request{Customer: customers.Info{Name: "A", Phone: "111", Address: "X"}, Items: []Item{item("Chair", -1, 1)}},
			msg:  "item 1: price must not be negative",
		},
		{
			name: "zero quantity",
			req:  Request{Customer: customers.Info{Name: "A", Phone: "111", Address: "X"}, Items: []Item{item("Chair", 1, 1), item("Desk", 1, 0)}},
			msg:  "item 2: quantity must be a positive integer",
		},
		{
			name: "sub-cent price",
			req: Request{Customer: customers.Info{Name: "A", Phone: "111", Address: "X"}, Items: []Item{
				{Product: "Chair", Price: decimal.RequireFromString("1.005"), Quantity: 1},
			}},
			msg: "item 1: price has more than two decimal places",
		},
		{
			name: "price at column limit",
			req: Request{Customer: customers.Info{Name: "A", Phone: "111", Address: "X"}, Items: []Item{
				{Product: "Crane", Price: decimal.RequireFromString("10000000000"), Quantity: 1},
			}},
			msg: "item 1: price must be less than 10000000000",
		},
		{
			name: "huge price exponent",
			req: Request{Customer: customers.Info{Name: "A", Phone: "111", Address: "X"}, Items: []Item{
				{Product: "Crane", Price: decimal.RequireFromString("1e20000000"), Quantity: 1},
			}},
			msg: "item 1: price must be less than 10000000000",
		},
		{
			name: "quantity beyond integer column",
			req:  Request{Customer: customers.Info{Name: "A", Phone: "111", Address: "X"}, Items: []Item{item("Chair", 1, MaxQuantity+1)}},
			msg:  "item 1: quantity must not exceed 2147483647",
		},
		{
			name: "bad date",
			req:  Request{Customer: customers.Info{Name: "A", Phone: "111", Address: "X"}, RentEnd: "05/06/2024", Items: []Item{item("Chair", 1, 1)}},
			msg:  "invalid rent_end: expected YYYY-MM-DD",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			_, err := f.manager.CreateOrder(context.Background(), tc.req)
			require.Error(t, err)
			assert.True(t, billing.IsValidation(err))
			assert.Equal(t, tc.msg, err.Error())
			assert.Empty(t, f.counter.counts)
			assert.NoError(t, f.mock.ExpectationsWereMet())
		})
	}
}
