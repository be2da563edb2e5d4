package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultCartID is used when a caller does not name a cart.
const DefaultCartID int64 = 1

type Cart struct {
	ID        int64      `json:"id"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	Items     []CartItem `json:"items"`
}

// Totals is always derived from the current lines; it is never stored.
func (c Cart) Totals() Totals {
	return CalculateTotals(c.Items)
}

type CartItem struct {
	ID        int64     `json:"id"`
	CartID    int64     `json:"cart"`
	Item      Item      `json:"item"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Cost is the line price: item price times quantity.
func (ci CartItem) Cost() decimal.Decimal {
	return ci.Item.Price.Mul(decimal.NewFromInt(int64(ci.Quantity)))
}
