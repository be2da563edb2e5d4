package item

import (
	"context"

	"shopping-backend/internal/domain"
)

type Repository interface {
	List(ctx context.Context) ([]domain.Item, error)
	GetByID(ctx context.Context, id int64) (*domain.Item, error)
	Create(ctx context.Context, item domain.Item) (*domain.Item, error)
	Update(ctx context.Context, item domain.Item) (*domain.Item, error)
	Delete(ctx context.Context, id int64) error
}
