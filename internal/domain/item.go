package domain

import (
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

const (
	// MaxItemNameLength bounds Item.Name in characters.
	MaxItemNameLength = 100
	// PriceDecimalPlaces is the fixed scale of stored prices.
	PriceDecimalPlaces = 2
)

// maxPrice is the first value that no longer fits NUMERIC(10,2).
var maxPrice = decimal.New(1, 8)

// Item is a catalog entry with its available inventory.
type Item struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	Image       *string         `json:"image,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ValidateItem checks the client-controlled fields of an item and reports every
// offending field at once. It returns nil when the item can be stored.
func ValidateItem(it Item) error {
	fields := map[string]string{}

	name := strings.TrimSpace(it.Name)
	switch {
	case name == "":
		fields["name"] = "This field is required."
	case utf8.RuneCountInString(name) > MaxItemNameLength:
		fields["name"] = "Ensure this field has no more than 100 characters."
	}

	switch {
	case it.Price.IsNegative():
		fields["price"] = "Ensure this value is greater than or equal to 0."
	case !it.Price.Equal(it.Price.Round(PriceDecimalPlaces)):
		fields["price"] = "Ensure that there are no more than 2 decimal places."
	case it.Price.GreaterThanOrEqual(maxPrice):
		fields["price"] = "Ensure that there are no more than 10 digits in total."
	}

	switch {
	case it.Stock < 0:
		fields["stock"] = "Ensure this value is greater than or equal to 0."
	case it.Stock > math.MaxInt32:
		fields["stock"] = "Ensure this value is less than or equal to 2147483647."
	}

	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Message: "invalid item", Fields: fields}
}
