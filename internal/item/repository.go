package item

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-catalog-service/internal/event"
	"github.com/fekuna/omnipos-catalog-service/internal/item/dto"
	"github.com/fekuna/omnipos-catalog-service/internal/model"
)

// Repository persists items. Lookups and writes on a missing id return (nil, nil).
type Repository interface {
	Create(ctx context.Context, item *model.Item) (*model.Item, error)
	FindByID(ctx context.Context, id int64) (*model.Item, error)
	FindAll(ctx context.Context, filters *dto.ItemFilters) ([]model.Item, int, error)
	Update(ctx context.Context, id int64, item *model.Item) (*model.Item, error)
	Delete(ctx context.Context, id int64) (*model.Item, error)
	CountByCategory(ctx context.Context, categoryID string) (int, error)
}

// Cache is the item read cache. It is never authoritative and never fails.
type Cache interface {
	Get(ctx context.Context, id string) (*model.Item, bool)
	Set(ctx context.Context, id string, item *model.Item, ttl time.Duration)
	Remove(ctx context.Context, id string)
}

// EventPublisher fans a mutation out to the notification channels without blocking.
type EventPublisher interface {
	Publish(kind event.Kind, item *model.Item)
}
