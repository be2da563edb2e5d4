package domain

import "github.com/shopspring/decimal"

var (
	TaxRate               = decimal.RequireFromString("0.05")
	DeliveryFee           = decimal.RequireFromString("5.00")
	FreeDeliveryThreshold = decimal.RequireFromString("60.00")
)

type Totals struct {
	Subtotal    decimal.Decimal `json:"subtotal"`
	Tax         decimal.Decimal `json:"tax"`
	DeliveryFee decimal.Decimal `json:"delivery_fee"`
	Total       decimal.Decimal `json:"total"`
}

// CalculateTotals sums line costs and applies the fixed tax rate and the
// delivery fee for orders below FreeDeliveryThreshold. No rounding happens.
func CalculateTotals(items []CartItem) Totals {
	subtotal := decimal.Zero
	for _, it := range items {
		subtotal = subtotal.Add(it.Cost())
	}

	fee := decimal.Zero
	if subtotal.LessThan(FreeDeliveryThreshold) {
		fee = DeliveryFee
	}

	tax := subtotal.Mul(TaxRate)
	return Totals{
		Subtotal:    subtotal,
		Tax:         tax,
		DeliveryFee: fee,
		Total:       subtotal.Add(tax).Add(fee),
	}
}
