package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ecomlab/sale-recorder/internal/core/domain"
)

// timeLayout is the canonical format for every date column. Values in this
// form compare lexicographically the same as chronologically, which keeps the
// reporting queries portable between MySQL and sqlite.
const timeLayout = "2006-01-02 15:04:05"

// SQLAdapter persists sales through database/sql. The production backend is
// MySQL; the sqlite backend (pure Go) serves tests and the embedded demo mode.
type SQLAdapter struct {
	db *sql.DB
}

func NewSQLAdapter(db *sql.DB) *SQLAdapter {
	return &SQLAdapter{db: db}
}

// Migrate creates the schema if it does not exist.
func (a *SQLAdapter) Migrate(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := a.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// RecordSale runs the whole sale as one transaction: duplicate probes,
// product and stock lookups, order + line item inserts, and the conditional
// decrement that guards the non-negativity invariant. A lost race on the
// decrement (or any constraint fault from a concurrent writer) rolls back and
// returns domain.ErrTransactionAborted so the caller may retry.
func (a *SQLAdapter) RecordSale(ctx context.Context, req domain.SaleRequest) (*domain.SaleConfirmation, error) {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: begin: %v", domain.ErrTransactionAborted, err)
	}
	defer tx.Rollback()

	dup, err := idExists(ctx, tx, `SELECT COUNT(*) FROM orders WHERE id = ?`, req.OrderID)
	if err != nil {
		return nil, err
	}
	if !dup {
		dup, err = idExists(ctx, tx, `SELECT COUNT(*) FROM order_items WHERE id = ?`, req.OrderItemID)
		if err != nil {
			return nil, err
		}
	}
	if dup {
		return nil, domain.ErrDuplicateOrder
	}

	var (
		name  string
		price decimal.Decimal
	)
	err = tx.QueryRowContext(ctx,
		`SELECT name, price FROM products WHERE id = ?`, req.ProductID,
	).Scan(&name, &price)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: query product: %v", domain.ErrTransactionAborted, err)
	}

	var stock int
	err = tx.QueryRowContext(ctx,
		`SELECT stock FROM inventory WHERE product_id = ?`, req.ProductID,
	).Scan(&stock)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrInventoryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: query inventory: %v", domain.ErrTransactionAborted, err)
	}

	if stock < req.Quantity {
		return nil, domain.ErrInsufficientStock
	}

	now := time.Now().UTC().Format(timeLayout)

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (id, customer_id, seller_id, order_date)
		VALUES (?, ?, ?, ?)`,
		req.OrderID, req.CustomerID, req.SellerID, now,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: insert order: %v", domain.ErrTransactionAborted, err)
	}

	total := price.Mul(decimal.NewFromInt(int64(req.Quantity)))
	_, err = tx.ExecContext(ctx, `
		INSERT INTO order_items (id, order_id, product_id, quantity, unit_price, total)
		VALUES (?, ?, ?, ?, ?, ?)`,
		req.OrderItemID, req.OrderID, req.ProductID, req.Quantity, price, total,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: insert order item: %v", domain.ErrTransactionAborted, err)
	}

	result, err := tx.ExecContext(ctx, `
		UPDATE inventory
		SET stock = stock - ?, version = version + 1, updated_at = ?
		WHERE product_id = ? AND stock >= ?`,
		req.Quantity, now, req.ProductID, req.Quantity,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: update inventory: %v", domain.ErrTransactionAborted, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		// A concurrent writer consumed the stock between our read and the
		// conditional decrement. Retrying observes the fresh count.
		return nil, domain.ErrTransactionAborted
	}

	// Re-read inside the transaction so the confirmation reports the stock
	// level this sale actually committed, not the value read before the race.
	var remaining int
	err = tx.QueryRowContext(ctx,
		`SELECT stock FROM inventory WHERE product_id = ?`, req.ProductID,
	).Scan(&remaining)
	if err != nil {
		return nil, fmt.Errorf("%w: re-read inventory: %v", domain.ErrTransactionAborted, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%w: commit: %v", domain.ErrTransactionAborted, err)
	}

	return &domain.SaleConfirmation{
		OrderID:        req.OrderID,
		ProductName:    name,
		Total:          total,
		RemainingStock: remaining,
	}, nil
}

// GetProduct returns the catalogue entry, nil if absent.
func (a *SQLAdapter) GetProduct(ctx context.Context, productID string) (*domain.Product, error) {
	var (
		p       domain.Product
		created sql.NullString
		updated sql.NullString
	)
	err := a.db.QueryRowContext(ctx, `
		SELECT id, category_id, name, price, cost, created_at, updated_at
		FROM products WHERE id = ?`, productID,
	).Scan(&p.ID, &p.CategoryID, &p.Name, &p.Price, &p.Cost, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query product: %w", err)
	}
	p.CreatedAt = parseTime(created)
	p.UpdatedAt = parseTime(updated)
	return &p, nil
}

// GetInventory returns the inventory record for a product, nil if absent.
func (a *SQLAdapter) GetInventory(ctx context.Context, productID string) (*domain.InventoryRecord, error) {
	var (
		inv       domain.InventoryRecord
		restocked sql.NullString
		updated   sql.NullString
	)
	err := a.db.QueryRowContext(ctx, `
		SELECT product_id, warehouse_id, stock, version, restocked_at, updated_at
		FROM inventory WHERE product_id = ?`, productID,
	).Scan(&inv.ProductID, &inv.WarehouseID, &inv.Stock, &inv.Version, &restocked, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query inventory: %w", err)
	}
	inv.RestockedAt = parseTime(restocked)
	inv.UpdatedAt = parseTime(updated)
	return &inv, nil
}

// ListInventory returns every inventory record; used to sync the admission
// gate counters with committed stock.
func (a *SQLAdapter) ListInventory(ctx context.Context) ([]domain.InventoryRecord, error) {
	rows, err := a.db.QueryContext(ctx,
		`SELECT product_id, warehouse_id, stock, version FROM inventory`)
	if err != nil {
		return nil, fmt.Errorf("list inventory: %w", err)
	}
	defer rows.Close()

	var records []domain.InventoryRecord
	for rows.Next() {
		var rec domain.InventoryRecord
		if err := rows.Scan(&rec.ProductID, &rec.WarehouseID, &rec.Stock, &rec.Version); err != nil {
			return nil, fmt.Errorf("scan inventory: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func idExists(ctx context.Context, tx *sql.Tx, query, id string) (bool, error) {
	var n int
	if err := tx.QueryRowContext(ctx, query, id).Scan(&n); err != nil {
		return false, fmt.Errorf("%w: duplicate probe: %v", domain.ErrTransactionAborted, err)
	}
	return n > 0, nil
}

func parseTime(s sql.NullString) time.Time {
	if !s.Valid {
		return time.Time{}
	}
	t, err := time.Parse(timeLayout, s.String)
	if err != nil {
		return time.Time{}
	}
	return t
}
