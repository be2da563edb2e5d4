package domain

// Reconcile moves a cart line of item from oldQty to newQty units and returns
// the item's stock afterwards. The units held by the old quantity are returned
// to stock first and the new quantity is then taken out, so the same rule
// covers adding, editing and removing. Stock is never driven below zero.
func Reconcile(item Item, oldQty, newQty int) (int, error) {
	if oldQty < 0 || newQty < 0 {
		return 0, NewValidationError("quantity cannot be negative")
	}
	available := item.Stock + oldQty
	if newQty > available {
		return 0, &InsufficientStockError{
			ItemID:    item.ID,
			ItemName:  item.Name,
			Requested: newQty,
			Available: available,
		}
	}
	return available - newQty, nil
}
