package usecase

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/fekuna/omnipos-catalog-service/internal/apperr"
	"github.com/fekuna/omnipos-catalog-service/internal/category"
	"github.com/fekuna/omnipos-catalog-service/internal/event"
	"github.com/fekuna/omnipos-catalog-service/internal/item"
	"github.com/fekuna/omnipos-catalog-service/internal/item/dto"
	"github.com/fekuna/omnipos-catalog-service/internal/model"
	"github.com/fekuna/omnipos-catalog-service/pkg/logger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const tracerName = "github.com/fekuna/omnipos-catalog-service/internal/item/usecase"

type itemUseCase struct {
	repo       item.Repository
	categories category.UseCase
	cache      item.Cache
	events     item.EventPublisher
	logger     logger.ZapLogger
	tracer     trace.Tracer
	now        func() time.Time
}

func NewItemUseCase(repo item.Repository, categories category.UseCase, cache item.Cache, events item.EventPublisher, log logger.ZapLogger) item.UseCase {
	return &itemUseCase{
		repo:       repo,
		categories: categories,
		cache:      cache,
		events:     events,
		logger:     log,
		tracer:     otel.Tracer(tracerName),
		now:        time.Now,
	}
}

func cacheKey(id int64) string {
	return strconv.FormatInt(id, 10)
}

func (uc *itemUseCase) GetItem(ctx context.Context, id int64) (*model.Item, error) {
	ctx, span := uc.tracer.Start(ctx, "item.GetItem", trace.WithAttributes(attribute.Int64("item.id", id)))
	defer span.End()

	if cached, ok := uc.cache.Get(ctx, cacheKey(id)); ok {
		span.SetAttributes(attribute.Bool("cache.hit", true))
		return cached, nil
	}

	it, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fail(span, err)
	}
	if it == nil {
		return nil, apperr.NotFound("item %d not found", id)
	}

	uc.cache.Set(ctx, cacheKey(id), it.Clone(), 0)
	return it, nil
}

func (uc *itemUseCase) ListItems(ctx context.Context, filters *dto.ItemFilters) (*model.Page[model.Item], error) {
	ctx, span := uc.tracer.Start(ctx, "item.ListItems")
	defer span.End()

	if filters == nil {
		filters = &dto.ItemFilters{}
	}
	filters.Normalize()

	items, total, err := uc.repo.FindAll(ctx, filters)
	if err != nil {
		return nil, fail(span, err)
	}
	if items == nil {
		items = []model.Item{}
	}

	return &model.Page[model.Item]{
		Items:      items,
		TotalCount: total,
		Page:       filters.Page,
		Size:       filters.Size,
	}, nil
}

func (uc *itemUseCase) CreateItem(ctx context.Context, input *dto.CreateItemInput) (*model.Item, error) {
	ctx, span := uc.tracer.Start(ctx, "item.CreateItem")
	defer span.End()

	cat, err := uc.resolveCategory(ctx, input.Category)
	if err != nil {
		return nil, fail(span, err)
	}

	now := uc.now().UTC()
	it := &model.Item{
		Name:       strings.TrimSpace(input.Name),
		Price:      input.Price,
		CategoryID: cat.ID,
		ImageURL:   optional(input.ImageURL),
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	created, err := uc.repo.Create(ctx, it)
	if err != nil {
		return nil, fail(span, err)
	}
	if created == nil {
		// The category went away between the lookup and the insert.
		return nil, fail(span, apperr.Conflict("category %s does not exist", cat.Name))
	}

	uc.events.Publish(event.Created, created.Clone())
	uc.logger.Info("item created", zap.Int64("item_id", created.ID), zap.String("category", cat.Name))
	return created, nil
}

func (uc *itemUseCase) UpdateItem(ctx context.Context, input *dto.UpdateItemInput) (*model.Item, error) {
	ctx, span := uc.tracer.Start(ctx, "item.UpdateItem", trace.WithAttributes(attribute.Int64("item.id", input.ID)))
	defer span.End()

	cat, err := uc.resolveCategory(ctx, input.Category)
	if err != nil {
		return nil, fail(span, err)
	}

	it := &model.Item{
		Name:       strings.TrimSpace(input.Name),
		Price:      input.Price,
		CategoryID: cat.ID,
		ImageURL:   optional(input.ImageURL),
		UpdatedAt:  uc.now().UTC(),
	}

	updated, err := uc.repo.Update(ctx, input.ID, it)
	if err != nil {
		return nil, fail(span, err)
	}
	if updated == nil {
		return nil, apperr.NotFound("item %d not found", input.ID)
	}

	uc.afterUpdate(ctx, updated)
	return updated, nil
}

func (uc *itemUseCase) PatchItem(ctx context.Context, input *dto.PatchItemInput) (*model.Item, error) {
	ctx, span := uc.tracer.Start(ctx, "item.PatchItem", trace.WithAttributes(attribute.Int64("item.id", input.ID)))
	defer span.End()

	current, err := uc.repo.FindByID(ctx, input.ID)
	if err != nil {
		return nil, fail(span, err)
	}
	if current == nil {
		return nil, apperr.NotFound("item %d not found", input.ID)
	}

	merged := current.Clone()
	if input.Name != nil {
		merged.Name = strings.TrimSpace(*input.Name)
	}
	if input.Price != nil {
		merged.Price = *input.Price
	}
	if input.Category != nil {
		cat, err := uc.resolveCategory(ctx, *input.Category)
		if err != nil {
			return nil, fail(span, err)
		}
		merged.CategoryID = cat.ID
		merged.Category = cat
	}
	if input.ImageURL != nil {
		merged.ImageURL = optional(*input.ImageURL)
	}
	merged.UpdatedAt = uc.now().UTC()

	updated, err := uc.repo.Update(ctx, input.ID, merged)
	if err != nil {
		return nil, fail(span, err)
	}
	if updated == nil {
		// Deleted between the read and the write.
		return nil, apperr.NotFound("item %d not found", input.ID)
	}

	uc.afterUpdate(ctx, updated)
	return updated, nil
}

func (uc *itemUseCase) DeleteItem(ctx context.Context, id int64) (*model.Item, error) {
	ctx, span := uc.tracer.Start(ctx, "item.DeleteItem", trace.WithAttributes(attribute.Int64("item.id", id)))
	defer span.End()

	deleted, err := uc.repo.Delete(ctx, id)
	if err != nil {
		return nil, fail(span, err)
	}
	if deleted == nil {
		return nil, apperr.NotFound("item %d not found", id)
	}

	uc.cache.Remove(ctx, cacheKey(id))
	uc.events.Publish(event.Deleted, deleted.Clone())
	uc.logger.Info("item deleted", zap.Int64("item_id", id))
	return deleted, nil
}

func (uc *itemUseCase) afterUpdate(ctx context.Context, updated *model.Item) {
	uc.cache.Remove(ctx, cacheKey(updated.ID))
	uc.events.Publish(event.Updated, updated.Clone())
	uc.logger.Info("item updated", zap.Int64("item_id", updated.ID))
}

// resolveCategory turns a missing category into a Conflict: the request
// refers to something that must exist before the item can.
func (uc *itemUseCase) resolveCategory(ctx context.Context, name string) (*model.Category, error) {
	cat, err := uc.categories.GetCategoryByName(ctx, name)
	if apperr.IsNotFound(err) {
		return nil, apperr.Conflict("category %s does not exist", strings.TrimSpace(name))
	}
	if err != nil {
		return nil, err
	}
	return cat, nil
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
