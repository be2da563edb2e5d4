package item

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"

	"shopping-backend/internal/domain"
	"shopping-backend/internal/events"
	itemrepo "shopping-backend/internal/repository/item"

	"github.com/shopspring/decimal"
)

type Service struct {
	repo      itemrepo.Repository
	publisher events.Publisher
	logger    *log.Logger
}

func New(repo itemrepo.Repository, publisher events.Publisher, logger *log.Logger) *Service {
	if publisher == nil {
		publisher = events.Nop{}
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{repo: repo, publisher: publisher, logger: logger}
}

// Input carries client-writable item fields. Nil means the field was not sent.
type Input struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Stock       *int             `json:"stock"`
	Image       *string          `json:"image"`
}

func (s *Service) List(ctx context.Context) ([]domain.Item, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id int64) (*domain.Item, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Create(ctx context.Context, in Input) (*domain.Item, error) {
	if err := requireFull(in); err != nil {
		return nil, err
	}
	it := apply(domain.Item{}, in)
	if err := domain.ValidateItem(it); err != nil {
		return nil, err
	}
	created, err := s.repo.Create(ctx, it)
	if err != nil {
		return nil, fmt.Errorf("create item: %w", err)
	}
	s.publish(ctx, events.New(events.TypeItemCreated, created.ID, itemPayload(created)))
	return created, nil
}

// Update replaces an item. Name and price are required; description, stock
// and image keep their stored values when they are not sent.
func (s *Service) Update(ctx context.Context, id int64, in Input) (*domain.Item, error) {
	if err := requireFull(in); err != nil {
		return nil, err
	}
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.save(ctx, apply(*current, in))
}

// Patch changes only the fields that were sent.
func (s *Service) Patch(ctx context.Context, id int64, in Input) (*domain.Item, error) {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.save(ctx, apply(*current, in))
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, events.New(events.TypeItemDeleted, id, nil))
	return nil
}

func (s *Service) save(ctx context.Context, it domain.Item) (*domain.Item, error) {
	if err := domain.ValidateItem(it); err != nil {
		return nil, err
	}
	updated, err := s.repo.Update(ctx, it)
	if err != nil {
		return nil, fmt.Errorf("update item %d: %w", it.ID, err)
	}
	s.publish(ctx, events.New(events.TypeItemUpdated, updated.ID, itemPayload(updated)))
	return updated, nil
}

func (s *Service) publish(ctx context.Context, e events.Event) {
	if err := s.publisher.Publish(ctx, e); err != nil {
		s.logger.Printf("item service: publish type=%s item=%d error=%v", e.Type, e.AggregateID, err)
	}
}

func requireFull(in Input) error {
	fields := map[string]string{}
	if in.Name == nil {
		fields["name"] = "This field is required."
	}
	if in.Price == nil {
		fields["price"] = "This field is required."
	}
	if len(fields) > 0 {
		return &domain.ValidationError{Message: "invalid item", Fields: fields}
	}
	return nil
}

// apply copies the sent fields of in onto it. An empty image clears it.
func apply(it domain.Item, in Input) domain.Item {
	if in.Name != nil {
		it.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		it.Description = *in.Description
	}
	if in.Price != nil {
		it.Price = *in.Price
	}
	if in.Stock != nil {
		it.Stock = *in.Stock
	}
	if in.Image != nil {
		if img := strings.TrimSpace(*in.Image); img != "" {
			it.Image = &img
		} else {
			it.Image = nil
		}
	}
	return it
}

func itemPayload(it *domain.Item) map[string]any {
	return map[string]any{
		"name":  it.Name,
		"price": it.Price.StringFixed(domain.PriceDecimalPlaces),
		"stock": it.Stock,
	}
}
