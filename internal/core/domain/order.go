package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order is the sale header. Created exactly once per successful sale and
// immutable afterward.
type Order struct {
	ID         string
	CustomerID string
	SellerID   string
	OrderDate  time.Time
}

// OrderItem is the single line of an order. UnitPrice is the product price
// snapshotted at sale time; Total is always Quantity × UnitPrice.
type OrderItem struct {
	ID        string
	OrderID   string
	ProductID string
	Quantity  int
	UnitPrice decimal.Decimal
	Total     decimal.Decimal
}

// SaleRequest carries the caller-supplied identifiers for one sale.
type SaleRequest struct {
	OrderID     string
	OrderItemID string
	CustomerID  string
	SellerID    string
	ProductID   string
	Quantity    int
}

// SaleConfirmation is returned on success.
type SaleConfirmation struct {
	OrderID        string
	ProductName    string
	Total          decimal.Decimal
	RemainingStock int
}
