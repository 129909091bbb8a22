package event

import (
	"time"

	"github.com/fekuna/omnipos-catalog-service/internal/model"
)

type Kind string

const (
	Created Kind = "created"
	Updated Kind = "updated"
	Deleted Kind = "deleted"
)

// Method is the live-push method name for the kind, e.g. ItemCreated.
func (k Kind) Method() string {
	switch k {
	case Created:
		return "ItemCreated"
	case Updated:
		return "ItemUpdated"
	case Deleted:
		return "ItemDeleted"
	default:
		return "Item" + string(k)
	}
}

// Topic is the pub/sub topic the kind is published on.
func (k Kind) Topic() string {
	return "catalog.item." + string(k)
}

type ItemSnapshot struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Price    float64 `json:"price"`
}

type MutationEvent struct {
	Kind      Kind
	Item      ItemSnapshot
	Timestamp time.Time
}

func NewMutationEvent(kind Kind, it *model.Item, now time.Time) MutationEvent {
	return MutationEvent{
		Kind: kind,
		Item: ItemSnapshot{
			ID:       it.ID,
			Name:     it.Name,
			Category: it.CategoryName(),
			Price:    it.Price,
		},
		Timestamp: now.UTC(),
	}
}

// Payload is the wire body shared by every channel.
func (e MutationEvent) Payload() map[string]any {
	return map[string]any{
		"id":        e.Item.ID,
		"name":      e.Item.Name,
		"category":  e.Item.Category,
		"price":     e.Item.Price,
		"timestamp": e.Timestamp.Format(time.RFC3339Nano),
	}
}
