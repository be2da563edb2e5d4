package cart

import (
	"context"

	"shopping-backend/internal/domain"
)

// Repository reads carts and opens transactions for cart mutations.
type Repository interface {
	// Get returns the cart with its lines, creating an empty cart on first access.
	Get(ctx context.Context, cartID int64) (*domain.Cart, error)
	// WithinTx runs fn in one transaction. It commits when fn returns nil and
	// rolls back otherwise.
	WithinTx(ctx context.Context, fn func(Tx) error) error
}

// Tx is the set of store operations available inside WithinTx. Callers lock
// in the order cart, item, cart line.
type Tx interface {
	EnsureCart(ctx context.Context, cartID int64) error
	LockItem(ctx context.Context, itemID int64) (*domain.Item, error)
	GetLine(ctx context.Context, cartID, itemID int64) (*domain.CartItem, error)
	ListLines(ctx context.Context, cartID int64) ([]domain.CartItem, error)
	SetStock(ctx context.Context, itemID int64, stock int) error
	SaveLine(ctx context.Context, cartID, itemID int64, quantity int) (*domain.CartItem, error)
	DeleteLine(ctx context.Context, cartID, itemID int64) error
	TouchCart(ctx context.Context, cartID int64) error
}
