// Package reporting holds the read-only analytical queries. Each report is a
// standalone parameterized aggregation over committed rows; nothing here
// participates in the sale path's locking.
package reporting

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

type Reports struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) *Reports {
	return &Reports{db: db}
}

type ProductRevenue struct {
	ProductID string          `db:"product_id" json:"product_id"`
	Name      string          `db:"name" json:"name"`
	UnitsSold int             `db:"units_sold" json:"units_sold"`
	Revenue   decimal.Decimal `db:"revenue" json:"revenue"`
}

// TopProducts ranks products by revenue.
func (r *Reports) TopProducts(ctx context.Context, limit int) ([]ProductRevenue, error) {
	var rows []ProductRevenue
	err := r.db.SelectContext(ctx, &rows, `
		SELECT p.id AS product_id, p.name AS name,
		       SUM(oi.quantity) AS units_sold,
		       SUM(oi.total)    AS revenue
		FROM order_items oi
		JOIN products p ON p.id = oi.product_id
		GROUP BY p.id, p.name
		ORDER BY revenue DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("top products: %w", err)
	}
	return rows, nil
}

type CategoryRevenue struct {
	CategoryID string          `db:"category_id" json:"category_id"`
	Category   string          `db:"category" json:"category"`
	Revenue    decimal.Decimal `db:"revenue" json:"revenue"`
	COGS       decimal.Decimal `db:"cogs" json:"cogs"`
	Margin     decimal.Decimal `db:"margin" json:"margin"`
}

// RevenueByCategory aggregates revenue, cost of goods sold and margin per
// category. Margin uses the cost recorded on the product and the unit price
// snapshotted on the line item, so later price edits do not move history.
func (r *Reports) RevenueByCategory(ctx context.Context) ([]CategoryRevenue, error) {
	var rows []CategoryRevenue
	err := r.db.SelectContext(ctx, &rows, `
		SELECT c.id AS category_id, c.name AS category,
		       SUM(oi.total)                         AS revenue,
		       SUM(oi.quantity * p.cost)             AS cogs,
		       SUM(oi.total - oi.quantity * p.cost)  AS margin
		FROM order_items oi
		JOIN products p   ON p.id = oi.product_id
		JOIN categories c ON c.id = p.category_id
		GROUP BY c.id, c.name
		ORDER BY revenue DESC`)
	if err != nil {
		return nil, fmt.Errorf("revenue by category: %w", err)
	}
	return rows, nil
}

type CustomerValue struct {
	CustomerID string          `db:"customer_id" json:"customer_id"`
	Name       string          `db:"name" json:"name"`
	OrderCount int             `db:"order_count" json:"order_count"`
	TotalSpent decimal.Decimal `db:"total_spent" json:"total_spent"`
}

// CustomerLifetimeValue ranks customers by cumulative spend.
func (r *Reports) CustomerLifetimeValue(ctx context.Context, limit int) ([]CustomerValue, error) {
	var rows []CustomerValue
	err := r.db.SelectContext(ctx, &rows, `
		SELECT cu.id AS customer_id, cu.name AS name,
		       COUNT(DISTINCT o.id) AS order_count,
		       SUM(oi.total)        AS total_spent
		FROM orders o
		JOIN order_items oi ON oi.order_id = o.id
		JOIN customers cu   ON cu.id = o.customer_id
		GROUP BY cu.id, cu.name
		ORDER BY total_spent DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("customer lifetime value: %w", err)
	}
	return rows, nil
}

type SellerPerformance struct {
	SellerID   string          `db:"seller_id" json:"seller_id"`
	Name       string          `db:"name" json:"name"`
	OrderCount int             `db:"order_count" json:"order_count"`
	Revenue    decimal.Decimal `db:"revenue" json:"revenue"`
	Delivered  int             `db:"delivered" json:"delivered"`
	OnTime     int             `db:"on_time" json:"on_time"`

	SuccessRate float64 `db:"-" json:"success_rate"`
}

// SellerPerformanceReport aggregates per-seller order volume, revenue and
// delivery outcomes; the success rate is delivered-on-time over total orders.
func (r *Reports) SellerPerformanceReport(ctx context.Context) ([]SellerPerformance, error) {
	var rows []SellerPerformance
	err := r.db.SelectContext(ctx, &rows, `
		SELECT s.id AS seller_id, s.name AS name,
		       COUNT(DISTINCT o.id) AS order_count,
		       SUM(oi.total)        AS revenue,
		       SUM(CASE WHEN sh.status = 'delivered' THEN 1 ELSE 0 END) AS delivered,
		       SUM(CASE WHEN sh.status = 'delivered'
		                 AND sh.delivered_at <= sh.estimated_at THEN 1 ELSE 0 END) AS on_time
		FROM orders o
		JOIN order_items oi ON oi.order_id = o.id
		JOIN sellers s      ON s.id = o.seller_id
		LEFT JOIN shipments sh ON sh.order_id = o.id
		GROUP BY s.id, s.name
		ORDER BY revenue DESC`)
	if err != nil {
		return nil, fmt.Errorf("seller performance: %w", err)
	}
	for i := range rows {
		if rows[i].OrderCount > 0 {
			rows[i].SuccessRate = float64(rows[i].OnTime) / float64(rows[i].OrderCount)
		}
	}
	return rows, nil
}

type ShippingDelaySummary struct {
	Delivered    int     `json:"delivered"`
	Late         int     `json:"late"`
	AvgDelayDays float64 `json:"avg_delay_days"`
}

// ShippingDelays summarizes late deliveries. The date columns hold canonical
// "2006-01-02 15:04:05" strings, so the late comparison is a plain string
// compare in SQL and the average delay is computed here after parsing.
func (r *Reports) ShippingDelays(ctx context.Context) (*ShippingDelaySummary, error) {
	var sum ShippingDelaySummary
	err := r.db.QueryRowxContext(ctx, `
		SELECT COUNT(*) AS delivered,
		       COALESCE(SUM(CASE WHEN delivered_at > estimated_at THEN 1 ELSE 0 END), 0) AS late
		FROM shipments
		WHERE status = 'delivered' AND delivered_at IS NOT NULL`,
	).Scan(&sum.Delivered, &sum.Late)
	if err != nil {
		return nil, fmt.Errorf("shipping delays: %w", err)
	}

	if sum.Late == 0 {
		return &sum, nil
	}

	type lateRow struct {
		DeliveredAt string `db:"delivered_at"`
		EstimatedAt string `db:"estimated_at"`
	}
	var rows []lateRow
	err = r.db.SelectContext(ctx, &rows, `
		SELECT delivered_at, estimated_at
		FROM shipments
		WHERE status = 'delivered' AND delivered_at > estimated_at`)
	if err != nil {
		return nil, fmt.Errorf("shipping delays detail: %w", err)
	}

	const layout = "2006-01-02 15:04:05"
	var totalDays float64
	counted := 0
	for _, row := range rows {
		delivered, err1 := time.Parse(layout, row.DeliveredAt)
		estimated, err2 := time.Parse(layout, row.EstimatedAt)
		if err1 != nil || err2 != nil {
			continue
		}
		totalDays += delivered.Sub(estimated).Hours() / 24
		counted++
	}
	if counted > 0 {
		sum.AvgDelayDays = totalDays / float64(counted)
	}
	return &sum, nil
}

type MonthlyRevenue struct {
	Month   string          `db:"month" json:"month"`
	Orders  int             `db:"orders" json:"orders"`
	Revenue decimal.Decimal `db:"revenue" json:"revenue"`
}

// MonthlyRevenueReport groups revenue by calendar month. SUBSTR over the
// canonical date format works in both supported dialects; year-over-year
// deltas fall out of comparing the same month across years.
func (r *Reports) MonthlyRevenueReport(ctx context.Context) ([]MonthlyRevenue, error) {
	var rows []MonthlyRevenue
	err := r.db.SelectContext(ctx, &rows, `
		SELECT SUBSTR(o.order_date, 1, 7) AS month,
		       COUNT(DISTINCT o.id)       AS orders,
		       SUM(oi.total)              AS revenue
		FROM orders o
		JOIN order_items oi ON oi.order_id = o.id
		GROUP BY SUBSTR(o.order_date, 1, 7)
		ORDER BY month`)
	if err != nil {
		return nil, fmt.Errorf("monthly revenue: %w", err)
	}
	return rows, nil
}
