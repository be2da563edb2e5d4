package events

import (
	"context"
	"time"
)

// Event types written to the topic.
const (
	TypeItemCreated     = "item_created"
	TypeItemUpdated     = "item_updated"
	TypeItemDeleted     = "item_deleted"
	TypeCartItemAdded   = "cart_item_added"
	TypeCartItemUpdated = "cart_item_updated"
	TypeCartUnitRemoved = "cart_unit_removed"
	TypeCartItemRemoved = "cart_item_removed"
	TypeCartCleared     = "cart_cleared"
)

// Event is a change that has already been committed.
type Event struct {
	Type        string         `json:"type"`
	AggregateID int64          `json:"aggregate_id"`
	OccurredAt  time.Time      `json:"occurred_at"`
	Payload     map[string]any `json:"payload,omitempty"`
}

// New stamps an event with the current time.
func New(eventType string, aggregateID int64, payload map[string]any) Event {
	return Event{Type: eventType, AggregateID: aggregateID, OccurredAt: time.Now().UTC(), Payload: payload}
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Nop drops every event. It is used when no brokers are configured.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
