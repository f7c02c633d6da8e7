package reporting

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite" // pure-Go SQLite driver
)

func memdb(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := sqlx.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	schema := `
	CREATE TABLE categories(id TEXT PRIMARY KEY, name TEXT NOT NULL);
	CREATE TABLE products(id TEXT PRIMARY KEY, category_id TEXT NOT NULL, name TEXT NOT NULL,
	  price DECIMAL(12,2) NOT NULL, cost DECIMAL(12,2) NOT NULL, created_at DATETIME, updated_at DATETIME);
	CREATE TABLE customers(id TEXT PRIMARY KEY, name TEXT NOT NULL, city TEXT);
	CREATE TABLE sellers(id TEXT PRIMARY KEY, name TEXT NOT NULL, city TEXT);
	CREATE TABLE orders(id TEXT PRIMARY KEY, customer_id TEXT NOT NULL, seller_id TEXT NOT NULL,
	  order_date DATETIME NOT NULL);
	CREATE TABLE order_items(id TEXT PRIMARY KEY, order_id TEXT NOT NULL, product_id TEXT NOT NULL,
	  quantity INT NOT NULL, unit_price DECIMAL(12,2) NOT NULL, total DECIMAL(12,2) NOT NULL);
	CREATE TABLE payments(order_id TEXT PRIMARY KEY, payment_type TEXT NOT NULL,
	  installments INT NOT NULL DEFAULT 1, amount DECIMAL(12,2) NOT NULL);
	CREATE TABLE shipments(order_id TEXT PRIMARY KEY, status TEXT NOT NULL,
	  shipped_at DATETIME, estimated_at DATETIME, delivered_at DATETIME, freight DECIMAL(12,2));

	INSERT INTO categories VALUES ('cat-1','Electronics'),('cat-2','Home');
	INSERT INTO products VALUES
	  ('prod-a','cat-1','Headphones', 100.00, 40.00, NULL, NULL),
	  ('prod-b','cat-1','Charger',     20.00,  5.00, NULL, NULL),
	  ('prod-c','cat-2','Kettle',      30.00, 12.00, NULL, NULL);
	INSERT INTO customers VALUES ('cust-1','Ana','Sao Paulo'),('cust-2','Bruno','Recife');
	INSERT INTO sellers VALUES ('sell-1','Norte','Manaus'),('sell-2','Vega','Rio');

	INSERT INTO orders VALUES
	  ('o1','cust-1','sell-1','2024-03-10 10:00:00'),
	  ('o2','cust-1','sell-1','2024-03-20 11:00:00'),
	  ('o3','cust-2','sell-2','2025-03-15 12:00:00');
	INSERT INTO order_items VALUES
	  ('i1','o1','prod-a',2,100.00,200.00),
	  ('i2','o2','prod-b',3, 20.00, 60.00),
	  ('i3','o3','prod-c',1, 30.00, 30.00);
	INSERT INTO payments VALUES
	  ('o1','credit_card',1,200.00),
	  ('o2','boleto',1,60.00),
	  ('o3','credit_card',1,30.00);
	INSERT INTO shipments VALUES
	  ('o1','delivered','2024-03-11 09:00:00','2024-03-15 00:00:00','2024-03-14 10:00:00',10.00),
	  ('o2','delivered','2024-03-21 09:00:00','2024-03-25 00:00:00','2024-03-27 00:00:00',10.00),
	  ('o3','in_transit','2025-03-16 09:00:00','2025-03-22 00:00:00',NULL,10.00);
	`
	_, err = db.Exec(schema)
	require.NoError(t, err)
	return db
}

func TestTopProducts(t *testing.T) {
	r := New(memdb(t))

	rows, err := r.TopProducts(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "Headphones", rows[0].Name)
	assert.Equal(t, "200", rows[0].Revenue.String())
	assert.Equal(t, 2, rows[0].UnitsSold)
	assert.Equal(t, "Charger", rows[1].Name)
	assert.Equal(t, "Kettle", rows[2].Name)

	limited, err := r.TopProducts(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestRevenueByCategory(t *testing.T) {
	r := New(memdb(t))

	rows, err := r.RevenueByCategory(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)

	// Electronics: revenue 260, cogs 2*40 + 3*5 = 95, margin 165
	assert.Equal(t, "Electronics", rows[0].Category)
	assert.Equal(t, "260", rows[0].Revenue.String())
	assert.Equal(t, "95", rows[0].COGS.String())
	assert.Equal(t, "165", rows[0].Margin.String())

	assert.Equal(t, "Home", rows[1].Category)
	assert.Equal(t, "30", rows[1].Revenue.String())
}

func TestCustomerLifetimeValue(t *testing.T) {
	r := New(memdb(t))

	rows, err := r.CustomerLifetimeValue(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "Ana", rows[0].Name)
	assert.Equal(t, 2, rows[0].OrderCount)
	assert.Equal(t, "260", rows[0].TotalSpent.String())
	assert.Equal(t, "Bruno", rows[1].Name)
	assert.Equal(t, "30", rows[1].TotalSpent.String())
}

func TestSellerPerformanceReport(t *testing.T) {
	r := New(memdb(t))

	rows, err := r.SellerPerformanceReport(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)

	// Norte: two orders, one delivered on time, one late
	assert.Equal(t, "Norte", rows[0].Name)
	assert.Equal(t, 2, rows[0].OrderCount)
	assert.Equal(t, 2, rows[0].Delivered)
	assert.Equal(t, 1, rows[0].OnTime)
	assert.InDelta(t, 0.5, rows[0].SuccessRate, 1e-9)

	// Vega: one order, still in transit
	assert.Equal(t, "Vega", rows[1].Name)
	assert.Equal(t, 0, rows[1].Delivered)
	assert.InDelta(t, 0.0, rows[1].SuccessRate, 1e-9)
}

func TestShippingDelays(t *testing.T) {
	r := New(memdb(t))

	sum, err := r.ShippingDelays(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, sum.Delivered)
	assert.Equal(t, 1, sum.Late)
	// o2: delivered 2024-03-27 00:00 vs estimated 2024-03-25 00:00 → 2 days
	assert.InDelta(t, 2.0, sum.AvgDelayDays, 1e-9)
}

func TestShippingDelays_NoneLate(t *testing.T) {
	db := memdb(t)
	_, err := db.Exec(`DELETE FROM shipments WHERE order_id = 'o2'`)
	require.NoError(t, err)

	sum, err := New(db).ShippingDelays(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Delivered)
	assert.Equal(t, 0, sum.Late)
	assert.Zero(t, sum.AvgDelayDays)
}

func TestMonthlyRevenueReport(t *testing.T) {
	r := New(memdb(t))

	rows, err := r.MonthlyRevenueReport(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)

	// same month, one year apart: the YoY comparison the report feeds
	assert.Equal(t, "2024-03", rows[0].Month)
	assert.Equal(t, 2, rows[0].Orders)
	assert.Equal(t, "260", rows[0].Revenue.String())
	assert.Equal(t, "2025-03", rows[1].Month)
	assert.Equal(t, "30", rows[1].Revenue.String())
}
