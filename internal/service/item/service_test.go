package item

import (
	"context"
	"errors"
	"testing"
	"time"

	"shopping-backend/internal/domain"
	"shopping-backend/internal/events"

	"github.com/shopspring/decimal"
)

type stubRepo struct {
	items   map[int64]domain.Item
	nextID  int64
	created []domain.Item
	updated []domain.Item
}

func newStubRepo(items ...domain.Item) *stubRepo {
	r := &stubRepo{items: map[int64]domain.Item{}}
	for _, it := range items {
		r.items[it.ID] = it
		if it.ID > r.nextID {
			r.nextID = it.ID
		}
	}
	return r
}

func (r *stubRepo) List(_ context.Context) ([]domain.Item, error) {
	out := []domain.Item{}
	for _, it := range r.items {
		out = append(out, it)
	}
	return out, nil
}

func (r *stubRepo) GetByID(_ context.Context, id int64) (*domain.Item, error) {
	it, ok := r.items[id]
	if !ok {
		return nil, &domain.NotFoundError{Resource: domain.ResourceItem, ID: id}
	}
	return &it, nil
}

func (r *stubRepo) Create(_ context.Context, it domain.Item) (*domain.Item, error) {
	r.nextID++
	it.ID = r.nextID
	it.CreatedAt = time.Now()
	it.UpdatedAt = it.CreatedAt
	r.items[it.ID] = it
	r.created = append(r.created, it)
	return &it, nil
}

func (r *stubRepo) Update(_ context.Context, it domain.Item) (*domain.Item, error) {
	if _, ok := r.items[it.ID]; !ok {
		return nil, &domain.NotFoundError{Resource: domain.ResourceItem, ID: it.ID}
	}
	r.items[it.ID] = it
	r.updated = append(r.updated, it)
	return &it, nil
}

func (r *stubRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.items[id]; !ok {
		return &domain.NotFoundError{Resource: domain.ResourceItem, ID: id}
	}
	delete(r.items, id)
	return nil
}

type recordingPublisher struct {
	types []string
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.types = append(p.types, e.Type)
	return nil
}

func strPtr(v string) *string { return &v }
func intPtr(v int) *int       { return &v }
func price(v string) *decimal.Decimal {
	d := decimal.RequireFromString(v)
	return &d
}

func TestServiceCreate(t *testing.T) {
	repo := newStubRepo()
	pub := &recordingPublisher{}
	svc := New(repo, pub, nil)

	got, err := svc.Create(context.Background(), Input{
		Name:  strPtr("  Mug "),
		Price: price("12.50"),
		Stock: intPtr(3),
		Image: strPtr(""),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID == 0 || got.Name != "Mug" || got.Stock != 3 || got.Image != nil {
		t.Fatalf("unexpected item %+v", got)
	}
	if len(pub.types) != 1 || pub.types[0] != events.TypeItemCreated {
		t.Fatalf("expected item_created event, got %v", pub.types)
	}
}

func TestServiceCreateRequiresNameAndPrice(t *testing.T) {
	repo := newStubRepo()
	svc := New(repo, nil, nil)

	_, err := svc.Create(context.Background(), Input{Stock: intPtr(1)})
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, ok := ve.Fields["name"]; !ok {
		t.Fatalf("expected name field error, got %v", ve.Fields)
	}
	if _, ok := ve.Fields["price"]; !ok {
		t.Fatalf("expected price field error, got %v", ve.Fields)
	}
	if len(repo.created) != 0 {
		t.Fatalf("nothing should be stored")
	}
}

func TestServiceCreateRejectsInvalidValues(t *testing.T) {
	svc := New(newStubRepo(), nil, nil)

	_, err := svc.Create(context.Background(), Input{
		Name:  strPtr("Mug"),
		Price: price("1.005"),
		Stock: intPtr(-1),
	})
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(ve.Fields) != 2 {
		t.Fatalf("expected price and stock errors, got %v", ve.Fields)
	}
}

func TestServicePatchKeepsUnsentFields(t *testing.T) {
	img := "item_images/mug.png"
	repo := newStubRepo(domain.Item{ID: 4, Name: "Mug", Description: "Ceramic", Price: decimal.RequireFromString("12.50"), Stock: 3, Image: &img})
	svc := New(repo, nil, nil)

	got, err := svc.Patch(context.Background(), 4, Input{Stock: intPtr(9)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Stock != 9 || got.Name != "Mug" || got.Description != "Ceramic" || got.Image == nil {
		t.Fatalf("unexpected item %+v", got)
	}
}

func TestServiceUpdateKeepsOptionalFields(t *testing.T) {
	img := "item_images/mug.png"
	repo := newStubRepo(domain.Item{ID: 4, Name: "Mug", Description: "Ceramic", Price: decimal.RequireFromString("12.50"), Stock: 3, Image: &img})
	svc := New(repo, nil, nil)

	got, err := svc.Update(context.Background(), 4, Input{Name: strPtr("Cup"), Price: price("8")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Name != "Cup" || got.Price.StringFixed(2) != "8.00" {
		t.Fatalf("expected name and price replaced, got %+v", got)
	}
	if got.Description != "Ceramic" || got.Stock != 3 || got.Image == nil || *got.Image != img {
		t.Fatalf("expected unsent fields kept, got %+v", got)
	}
	if stored := repo.items[4]; stored.Stock != 3 {
		t.Fatalf("expected stored stock 3, got %d", stored.Stock)
	}
}

func TestServiceUpdateReplacesSentFields(t *testing.T) {
	img := "item_images/mug.png"
	repo := newStubRepo(domain.Item{ID: 4, Name: "Mug", Description: "Ceramic", Price: decimal.RequireFromString("12.50"), Stock: 3, Image: &img})
	svc := New(repo, nil, nil)

	got, err := svc.Update(context.Background(), 4, Input{
		Name:        strPtr("Cup"),
		Price:       price("8"),
		Description: strPtr(""),
		Stock:       intPtr(0),
		Image:       strPtr(""),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Description != "" || got.Stock != 0 || got.Image != nil {
		t.Fatalf("expected sent fields replaced, got %+v", got)
	}
}

func TestServiceUpdateRequiresNameAndPrice(t *testing.T) {
	repo := newStubRepo(domain.Item{ID: 4, Name: "Mug", Price: decimal.RequireFromString("12.50"), Stock: 3})
	svc := New(repo, nil, nil)

	_, err := svc.Update(context.Background(), 4, Input{Stock: intPtr(1)})
	var ve *domain.ValidationError
	if !errors.As(err, &ve) || len(ve.Fields) != 2 {
		t.Fatalf("expected name and price required, got %v", err)
	}
	if len(repo.updated) != 0 {
		t.Fatalf("nothing should be stored")
	}
}

func TestServiceNotFound(t *testing.T) {
	svc := New(newStubRepo(), nil, nil)
	ctx := context.Background()

	if _, err := svc.Get(ctx, 1); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("Get: expected not found, got %v", err)
	}
	if _, err := svc.Patch(ctx, 1, Input{}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("Patch: expected not found, got %v", err)
	}
	if _, err := svc.Update(ctx, 1, Input{Name: strPtr("x"), Price: price("1")}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("Update: expected not found, got %v", err)
	}
	if err := svc.Delete(ctx, 1); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("Delete: expected not found, got %v", err)
	}
}

func TestServiceDeletePublishes(t *testing.T) {
	repo := newStubRepo(domain.Item{ID: 2, Name: "Cap", Price: decimal.RequireFromString("4.00")})
	pub := &recordingPublisher{}
	svc := New(repo, pub, nil)

	if err := svc.Delete(context.Background(), 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pub.types) != 1 || pub.types[0] != events.TypeItemDeleted {
		t.Fatalf("expected item_deleted event, got %v", pub.types)
	}
}
