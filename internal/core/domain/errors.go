package domain

import "errors"

// Sale outcome taxonomy. The first four are terminal for the given inputs;
// ErrTransactionAborted is safe to retry with the same inputs because no
// partial state is ever persisted.
var (
	ErrProductNotFound    = errors.New("product not found")
	ErrInventoryNotFound  = errors.New("no inventory record for product")
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrDuplicateOrder     = errors.New("order or order item id already exists")
	ErrTransactionAborted = errors.New("transaction aborted")

	ErrInvalidRequest = errors.New("invalid sale request")
)
