package item

import (
	"context"

	"github.com/fekuna/omnipos-catalog-service/internal/item/dto"
	"github.com/fekuna/omnipos-catalog-service/internal/model"
)

type UseCase interface {
	GetItem(ctx context.Context, id int64) (*model.Item, error)
	ListItems(ctx context.Context, filters *dto.ItemFilters) (*model.Page[model.Item], error)
	CreateItem(ctx context.Context, input *dto.CreateItemInput) (*model.Item, error)
	UpdateItem(ctx context.Context, input *dto.UpdateItemInput) (*model.Item, error)
	PatchItem(ctx context.Context, input *dto.PatchItemInput) (*model.Item, error)
	DeleteItem(ctx context.Context, id int64) (*model.Item, error)
}
