package model

import "github.com/shopspring/decimal"

// Product is the subset of the product catalogue read by the order service
// when snapshotting a line item. The catalogue service owns the full record.
type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	ImageURL    *string         `json:"imageUrl,omitempty"`
	IsAvailable bool            `json:"isAvailable"`
}
