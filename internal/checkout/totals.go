package checkout

import (
	"github.com/shopspring/decimal"

	"github.com/jordanhale/storefront-backend/pkg/db/models"
)

var (
	taxRate               = decimal.RequireFromString("0.08")
	flatShipping          = decimal.RequireFromString("9.99")
	freeShippingThreshold = decimal.RequireFromString("1000.00")
)

// Totals carries the priced breakdown of a checkout. Tax keeps three decimal
// places so the stored order reproduces the computed value exactly.
type Totals struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Shipping decimal.Decimal
	Total    decimal.Decimal
}

// ComputeTotals prices the cart lines: subtotal from captured unit prices,
// 8% tax rounded to three decimals, and a flat shipping fee waived above the
// free-shipping threshold.
func ComputeTotals(items []models.CartItem) Totals {
	subtotal := decimal.Zero
	for _, item := range items {
		line := item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
		subtotal = subtotal.Add(line)
	}

	shipping := flatShipping
	if subtotal.GreaterThan(freeShippingThreshold) {
		shipping = decimal.Zero
	}

	tax := subtotal.Mul(taxRate).Round(3)
	total := subtotal.Add(tax).Add(shipping)

	return Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Shipping: shipping,
		Total:    total,
	}
}
