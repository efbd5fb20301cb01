package cart

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jordanhale/storefront-backend/pkg/db/models"
)

// ItemDTO is one cart line enriched with current catalog data.
type ItemDTO struct {
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
	LineTotal   decimal.Decimal `json:"line_total"`
	Available   bool            `json:"available"`
}

// CartDTO is the full cart view returned to controllers.
type CartDTO struct {
	Items     []ItemDTO       `json:"items"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	ItemCount int             `json:"item_count"`
}

func emptyCartDTO() *CartDTO {
	return &CartDTO{
		Items:    []ItemDTO{},
		Subtotal: decimal.Zero,
	}
}

func lineTotal(item models.CartItem) decimal.Decimal {
	return item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
}
