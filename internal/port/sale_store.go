package port

import (
	"context"

	"github.com/ecomlab/sale-recorder/internal/core/domain"
)

type SaleStore interface {
	// RecordSale executes the whole check-and-decrement unit in a single
	// transaction: resolve product, verify stock, insert order and line item,
	// decrement inventory. Returns a typed domain error on refusal; any
	// storage conflict surfaces as domain.ErrTransactionAborted with no
	// partial state persisted.
	RecordSale(ctx context.Context, req domain.SaleRequest) (*domain.SaleConfirmation, error)

	// GetProduct retrieves a catalogue entry, nil if absent.
	GetProduct(ctx context.Context, productID string) (*domain.Product, error)

	// GetInventory retrieves the inventory record for a product, nil if absent.
	GetInventory(ctx context.Context, productID string) (*domain.InventoryRecord, error)
}
