package types

import "github.com/shopspring/decimal"

// ProductSnapshot freezes the product fields an order item displays, so the
// order history survives later catalog edits.
type ProductSnapshot struct {
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	ImageURL string          `json:"image_url,omitempty"`
}
