package storage

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Seed loads a small demo catalogue plus enough historical orders for the
// reporting queries to return something. It is a no-op when products already
// exist, so it is safe to run on every start.
func (a *SQLAdapter) Seed(ctx context.Context) error {
	var n int
	if err := a.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&n); err != nil {
		return fmt.Errorf("seed probe: %w", err)
	}
	if n > 0 {
		return nil
	}

	type stmt struct {
		query string
		args  []any
	}
	var stmts []stmt
	add := func(query string, args ...any) {
		stmts = append(stmts, stmt{query, args})
	}

	add(`INSERT INTO categories (id, name) VALUES (?, ?)`, "cat-electronics", "Electronics")
	add(`INSERT INTO categories (id, name) VALUES (?, ?)`, "cat-home", "Home & Kitchen")

	products := []struct {
		id, cat, name, price, cost string
		stock                      int
	}{
		{"prod-headphones", "cat-electronics", "Wireless Headphones", "89.90", "41.20", 120},
		{"prod-charger", "cat-electronics", "USB-C Fast Charger", "19.99", "6.50", 300},
		{"prod-kettle", "cat-home", "Electric Kettle 1.7L", "34.50", "15.00", 80},
		{"prod-blender", "cat-home", "Countertop Blender", "59.00", "27.80", 45},
	}
	for _, p := range products {
		add(`INSERT INTO products (id, category_id, name, price, cost, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			p.id, p.cat, p.name, p.price, p.cost, "2024-01-05 09:00:00", "2024-01-05 09:00:00")
		add(`INSERT INTO inventory (product_id, warehouse_id, stock, version, restocked_at, updated_at)
			VALUES (?, ?, ?, 0, ?, ?)`,
			p.id, "wh-central", p.stock, "2024-01-05 09:00:00", "2024-01-05 09:00:00")
	}

	add(`INSERT INTO customers (id, name, city) VALUES (?, ?, ?)`, "cust-ana", "Ana Souza", "Sao Paulo")
	add(`INSERT INTO customers (id, name, city) VALUES (?, ?, ?)`, "cust-bruno", "Bruno Lima", "Recife")
	add(`INSERT INTO customers (id, name, city) VALUES (?, ?, ?)`, "cust-carla", "Carla Mendes", "Curitiba")

	add(`INSERT INTO sellers (id, name, city) VALUES (?, ?, ?)`, "sell-norte", "Norte Distribuidora", "Manaus")
	add(`INSERT INTO sellers (id, name, city) VALUES (?, ?, ?)`, "sell-vega", "Vega Comercio", "Rio de Janeiro")

	orders := []struct {
		customer, seller, product string
		qty                       int
		unitPrice                 string
		date                      string
		payType                   string
		shipStatus                string
		shipped, estimated, delivered string
	}{
		{"cust-ana", "sell-norte", "prod-headphones", 1, "89.90", "2024-03-11 14:22:00", "credit_card",
			"delivered", "2024-03-12 10:00:00", "2024-03-18 00:00:00", "2024-03-16 15:40:00"},
		{"cust-ana", "sell-vega", "prod-charger", 2, "19.99", "2024-07-02 09:10:00", "credit_card",
			"delivered", "2024-07-03 08:30:00", "2024-07-08 00:00:00", "2024-07-11 12:05:00"},
		{"cust-bruno", "sell-norte", "prod-kettle", 1, "34.50", "2024-09-21 18:45:00", "boleto",
			"delivered", "2024-09-23 11:00:00", "2024-09-30 00:00:00", "2024-09-28 09:20:00"},
		{"cust-carla", "sell-vega", "prod-blender", 1, "59.00", "2024-11-29 20:02:00", "credit_card",
			"in_transit", "2024-11-30 13:00:00", "2024-12-06 00:00:00", ""},
		{"cust-bruno", "sell-vega", "prod-headphones", 2, "89.90", "2025-02-14 12:00:00", "debit_card",
			"delivered", "2025-02-15 09:00:00", "2025-02-21 00:00:00", "2025-02-24 17:30:00"},
		{"cust-carla", "sell-norte", "prod-charger", 3, "19.99", "2025-03-05 10:30:00", "credit_card",
			"delivered", "2025-03-06 08:00:00", "2025-03-12 00:00:00", "2025-03-10 14:10:00"},
		{"cust-ana", "sell-norte", "prod-kettle", 2, "34.50", "2025-06-18 16:20:00", "voucher",
			"delivered", "2025-06-19 10:00:00", "2025-06-25 00:00:00", "2025-06-23 11:45:00"},
	}
	for _, o := range orders {
		orderID := uuid.NewString()
		itemID := uuid.NewString()
		total := decimal.RequireFromString(o.unitPrice).Mul(decimal.NewFromInt(int64(o.qty)))
		add(`INSERT INTO orders (id, customer_id, seller_id, order_date) VALUES (?, ?, ?, ?)`,
			orderID, o.customer, o.seller, o.date)
		add(`INSERT INTO order_items (id, order_id, product_id, quantity, unit_price, total)
			VALUES (?, ?, ?, ?, ?, ?)`,
			itemID, orderID, o.product, o.qty, o.unitPrice, total)
		add(`INSERT INTO payments (order_id, payment_type, installments, amount)
			VALUES (?, ?, 1, ?)`,
			orderID, o.payType, total)
		if o.delivered != "" {
			add(`INSERT INTO shipments (order_id, status, shipped_at, estimated_at, delivered_at, freight)
				VALUES (?, ?, ?, ?, ?, ?)`,
				orderID, o.shipStatus, o.shipped, o.estimated, o.delivered, "12.40")
		} else {
			add(`INSERT INTO shipments (order_id, status, shipped_at, estimated_at, delivered_at, freight)
				VALUES (?, ?, ?, ?, NULL, ?)`,
				orderID, o.shipStatus, o.shipped, o.estimated, "12.40")
		}
	}

	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("seed begin: %w", err)
	}
	defer tx.Rollback()
	for _, s := range stmts {
		if _, err := tx.ExecContext(ctx, s.query, s.args...); err != nil {
			return fmt.Errorf("seed exec: %w", err)
		}
	}
	return tx.Commit()
}
