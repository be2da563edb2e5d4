package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
)

// Resource names carried by NotFoundError.
const (
	ResourceItem     = "item"
	ResourceCart     = "cart"
	ResourceCartItem = "cart item"
)

// NotFoundError names the missing record. It matches ErrNotFound with errors.Is.
type NotFoundError struct {
	Resource string
	ID       int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Resource, e.ID)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// ValidationError reports bad input. Fields maps a field name to its message
// and is empty for request-level problems.
type ValidationError struct {
	Message string
	Fields  map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Fields)
}

// NewValidationError builds a ValidationError without field details.
func NewValidationError(msg string) *ValidationError {
	return &ValidationError{Message: msg}
}

// InsufficientStockError is returned when a cart line would hold more units
// than the item can supply. When adding, Requested is the increment and
// Available the free stock. Otherwise both count the whole line.
type InsufficientStockError struct {
	ItemID    int64
	ItemName  string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("Not enough stock for %s. Available: %d", e.ItemName, e.Available)
}
