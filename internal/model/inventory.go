package model

import (
	"time"

	"github.com/google/uuid"
)

// InventoryItem tracks the stock level of one product at one location.
type InventoryItem struct {
	ID            uuid.UUID `json:"id" db:"id"`
	ProductID     string    `json:"productId" db:"product_id"`
	Quantity      int       `json:"quantity" db:"quantity"`
	MinStockLevel int       `json:"minStockLevel" db:"min_stock_level"`
	MaxStockLevel int       `json:"maxStockLevel" db:"max_stock_level"`
	Location      string    `json:"location" db:"location"`
	CreatedAt     time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time `json:"updatedAt" db:"updated_at"`
}

// StockMovement is one row of the append-only stock ledger. Movements are
// never mutated or deleted; the item quantity must always equal its initial
// quantity plus the sum of its movement deltas.
type StockMovement struct {
	ID              uuid.UUID `json:"id" db:"id"`
	InventoryItemID uuid.UUID `json:"inventoryItemId" db:"inventory_item_id"`
	QuantityChange  int       `json:"quantityChange" db:"quantity_change"`
	Reason          string    `json:"reason" db:"reason"`
	Notes           *string   `json:"notes,omitempty" db:"notes"`
	CreatedAt       time.Time `json:"createdAt" db:"created_at"`
}

// CreateInventoryItemRequest is the admin payload for creating an item.
type CreateInventoryItemRequest struct {
	ProductID     string `json:"productId"`
	Quantity      int    `json:"quantity"`
	MinStockLevel int    `json:"minStockLevel"`
	MaxStockLevel int    `json:"maxStockLevel"`
	Location      string `json:"location"`
}

// AdjustStockRequest is the payload for a signed stock adjustment.
type AdjustStockRequest struct {
	QuantityChange int     `json:"quantityChange"`
	Reason         string  `json:"reason"`
	Notes          *string `json:"notes,omitempty"`
}

// DeductLine is one product/quantity pair in a bulk deduction.
type DeductLine struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// DeductStockRequest is the internal payload deducting stock for a placed
// order. The whole batch succeeds or fails together.
type DeductStockRequest struct {
	Items  []DeductLine `json:"items"`
	Reason string       `json:"reason"`
	Notes  *string      `json:"notes,omitempty"`
}

// DeductStockResponse reports products that blocked a bulk deduction.
type DeductStockResponse struct {
	Message         string   `json:"message"`
	OutOfStockItems []string `json:"outOfStockItems,omitempty"`
}
