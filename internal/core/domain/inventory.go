package domain

import "time"

// InventoryRecord tracks on-hand stock for one product in one warehouse.
// Stock never goes below zero at any commit point.
type InventoryRecord struct {
	ProductID   string
	WarehouseID string
	Stock       int
	Version     int // bumped on every decrement
	RestockedAt time.Time
	UpdatedAt   time.Time
}
