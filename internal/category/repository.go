package category

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-catalog-service/internal/model"
)

type Repository interface {
	Create(ctx context.Context, category *model.Category) error
	FindByID(ctx context.Context, id string) (*model.Category, error)
	FindByName(ctx context.Context, name string) (*model.Category, error)
	FindAll(ctx context.Context) ([]model.Category, error)
	Update(ctx context.Context, category *model.Category) error
	Delete(ctx context.Context, id string) error
}

// ReferenceCounter reports how many items point at a category.
type ReferenceCounter interface {
	CountByCategory(ctx context.Context, categoryID string) (int, error)
}

// Cache is the category read cache. Implementations never fail.
type Cache interface {
	Get(ctx context.Context, id string) (*model.Category, bool)
	Set(ctx context.Context, id string, category *model.Category, ttl time.Duration)
	Remove(ctx context.Context, id string)
}
