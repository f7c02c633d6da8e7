package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a catalogue entry. Price and Cost are read by the sale path,
// never written by it.
type Product struct {
	ID         string
	Name       string
	CategoryID string
	Price      decimal.Decimal // unit sale price
	Cost       decimal.Decimal // unit cost (COGS)
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
