package port

import "context"

// AdmissionGate is an optional fast-path in front of the store: it rejects
// duplicate order ids and, when the stock gate is enabled, sheds requests for
// products the gate already knows are sold out. The store stays authoritative.
type AdmissionGate interface {
	// ReserveOrderID claims an order id, returns false if already claimed.
	ReserveOrderID(ctx context.Context, orderID string) (bool, error)

	// ReleaseOrderID frees a claimed id so the caller may retry after a
	// non-duplicate refusal.
	ReleaseOrderID(ctx context.Context, orderID string) error

	// DecrementStock atomically decreases the gate counter, returns false if
	// insufficient.
	DecrementStock(ctx context.Context, productID string, quantity int) (bool, error)

	// IncrementStock restores the gate counter (compensation on store failure).
	IncrementStock(ctx context.Context, productID string, quantity int) error

	// SetStock syncs the gate counter to the store's committed stock.
	SetStock(ctx context.Context, productID string, stock int) error
}
