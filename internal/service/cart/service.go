package cart

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"shopping-backend/internal/domain"
	"shopping-backend/internal/events"
	cartrepo "shopping-backend/internal/repository/cart"
)

type Service struct {
	repo      cartrepo.Repository
	publisher events.Publisher
	logger    *log.Logger
}

func New(repo cartrepo.Repository, publisher events.Publisher, logger *log.Logger) *Service {
	if publisher == nil {
		publisher = events.Nop{}
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{repo: repo, publisher: publisher, logger: logger}
}

// RemoveResult reports what RemoveOne did to the line. Line is nil when the
// line was deleted.
type RemoveResult struct {
	Deleted bool
	Line    *domain.CartItem
}

func (s *Service) Get(ctx context.Context, cartID int64) (*domain.Cart, error) {
	return s.repo.Get(ctx, cartID)
}

// AddItem adds quantity units of an item to the cart, creating the line or
// incrementing it, and takes the same number of units out of stock.
func (s *Service) AddItem(ctx context.Context, cartID, itemID int64, quantity int) (*domain.CartItem, error) {
	if quantity <= 0 {
		return nil, domain.NewValidationError("Quantity must be greater than zero")
	}

	var line *domain.CartItem
	err := s.repo.WithinTx(ctx, func(tx cartrepo.Tx) error {
		if err := tx.EnsureCart(ctx, cartID); err != nil {
			return err
		}
		it, err := tx.LockItem(ctx, itemID)
		if err != nil {
			return err
		}
		oldQty := 0
		existing, err := tx.GetLine(ctx, cartID, itemID)
		switch {
		case err == nil:
			oldQty = existing.Quantity
		case !errors.Is(err, domain.ErrNotFound):
			return err
		}
		if quantity > it.Stock {
			return &domain.InsufficientStockError{
				ItemID:    it.ID,
				ItemName:  it.Name,
				Requested: quantity,
				Available: it.Stock,
			}
		}
		line, err = move(ctx, tx, cartID, it, oldQty, oldQty+quantity)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("add item %d to cart %d: %w", itemID, cartID, err)
	}

	s.publish(ctx, events.New(events.TypeCartItemAdded, cartID, map[string]any{
		"item_id":  itemID,
		"added":    quantity,
		"quantity": line.Quantity,
		"stock":    line.Item.Stock,
	}))
	return line, nil
}

// SetQuantity sets an existing line to quantity units. The line's current
// units go back to stock before the new quantity is taken.
func (s *Service) SetQuantity(ctx context.Context, cartID, itemID int64, quantity int) (*domain.CartItem, error) {
	if quantity < 1 {
		return nil, domain.NewValidationError("Quantity must be at least 1")
	}

	var line *domain.CartItem
	err := s.repo.WithinTx(ctx, func(tx cartrepo.Tx) error {
		if err := tx.EnsureCart(ctx, cartID); err != nil {
			return err
		}
		it, existing, err := lockLine(ctx, tx, cartID, itemID)
		if err != nil {
			return err
		}
		line, err = move(ctx, tx, cartID, it, existing.Quantity, quantity)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("set quantity of item %d in cart %d: %w", itemID, cartID, err)
	}

	s.publish(ctx, events.New(events.TypeCartItemUpdated, cartID, map[string]any{
		"item_id":  itemID,
		"quantity": line.Quantity,
		"stock":    line.Item.Stock,
	}))
	return line, nil
}

// RemoveOne takes a single unit out of the line and returns it to stock. The
// line is deleted when its last unit goes.
func (s *Service) RemoveOne(ctx context.Context, cartID, itemID int64) (RemoveResult, error) {
	var res RemoveResult
	var stock int
	err := s.repo.WithinTx(ctx, func(tx cartrepo.Tx) error {
		if err := tx.EnsureCart(ctx, cartID); err != nil {
			return err
		}
		it, existing, err := lockLine(ctx, tx, cartID, itemID)
		if err != nil {
			return err
		}
		line, err := move(ctx, tx, cartID, it, existing.Quantity, existing.Quantity-1)
		if err != nil {
			return err
		}
		res = RemoveResult{Deleted: line == nil, Line: line}
		stock = it.Stock
		return nil
	})
	if err != nil {
		return RemoveResult{}, fmt.Errorf("remove unit of item %d from cart %d: %w", itemID, cartID, err)
	}

	payload := map[string]any{"item_id": itemID, "stock": stock, "deleted": res.Deleted}
	if res.Line != nil {
		payload["quantity"] = res.Line.Quantity
	}
	s.publish(ctx, events.New(events.TypeCartUnitRemoved, cartID, payload))
	return res, nil
}

// RemoveLine deletes the whole line and returns all of its units to stock.
func (s *Service) RemoveLine(ctx context.Context, cartID, itemID int64) error {
	var restored int
	err := s.repo.WithinTx(ctx, func(tx cartrepo.Tx) error {
		if err := tx.EnsureCart(ctx, cartID); err != nil {
			return err
		}
		it, existing, err := lockLine(ctx, tx, cartID, itemID)
		if err != nil {
			return err
		}
		restored = existing.Quantity
		_, err = move(ctx, tx, cartID, it, existing.Quantity, 0)
		return err
	})
	if err != nil {
		return fmt.Errorf("remove item %d from cart %d: %w", itemID, cartID, err)
	}

	s.publish(ctx, events.New(events.TypeCartItemRemoved, cartID, map[string]any{
		"item_id":  itemID,
		"restored": restored,
	}))
	return nil
}

// Clear empties the cart and returns every line's units to stock. It reports
// how many lines were removed.
func (s *Service) Clear(ctx context.Context, cartID int64) (int, error) {
	var removed int
	err := s.repo.WithinTx(ctx, func(tx cartrepo.Tx) error {
		if err := tx.EnsureCart(ctx, cartID); err != nil {
			return err
		}
		lines, err := tx.ListLines(ctx, cartID)
		if err != nil {
			return err
		}
		// ListLines is ordered by item id, so items are locked in id order.
		for _, l := range lines {
			it, err := tx.LockItem(ctx, l.Item.ID)
			if err != nil {
				return err
			}
			if _, err := move(ctx, tx, cartID, it, l.Quantity, 0); err != nil {
				return err
			}
		}
		removed = len(lines)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("clear cart %d: %w", cartID, err)
	}

	if removed > 0 {
		s.publish(ctx, events.New(events.TypeCartCleared, cartID, map[string]any{"lines": removed}))
	}
	return removed, nil
}

func (s *Service) publish(ctx context.Context, e events.Event) {
	if err := s.publisher.Publish(ctx, e); err != nil {
		s.logger.Printf("cart service: publish type=%s cart=%d error=%v", e.Type, e.AggregateID, err)
	}
}

// lockLine locks the item and then its line. A missing item means the line
// cannot exist either, so both cases report the cart item as not found.
func lockLine(ctx context.Context, tx cartrepo.Tx, cartID, itemID int64) (*domain.Item, *domain.CartItem, error) {
	it, err := tx.LockItem(ctx, itemID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil, &domain.NotFoundError{Resource: domain.ResourceCartItem, ID: itemID}
		}
		return nil, nil, err
	}
	line, err := tx.GetLine(ctx, cartID, itemID)
	if err != nil {
		return nil, nil, err
	}
	return it, line, nil
}

// move takes a line from oldQty to newQty units, writes the reconciled stock
// and saves or deletes the line. It returns nil when the line was deleted.
// it.Stock is updated in place.
func move(ctx context.Context, tx cartrepo.Tx, cartID int64, it *domain.Item, oldQty, newQty int) (*domain.CartItem, error) {
	stock, err := domain.Reconcile(*it, oldQty, newQty)
	if err != nil {
		return nil, err
	}
	if err := tx.SetStock(ctx, it.ID, stock); err != nil {
		return nil, err
	}
	it.Stock = stock

	var line *domain.CartItem
	if newQty == 0 {
		if oldQty > 0 {
			if err := tx.DeleteLine(ctx, cartID, it.ID); err != nil {
				return nil, err
			}
		}
	} else {
		line, err = tx.SaveLine(ctx, cartID, it.ID, newQty)
		if err != nil {
			return nil, err
		}
		line.Item = *it
	}
	if err := tx.TouchCart(ctx, cartID); err != nil {
		return nil, err
	}
	return line, nil
}
