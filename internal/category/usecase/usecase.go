package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fekuna/omnipos-catalog-service/internal/apperr"
	"github.com/fekuna/omnipos-catalog-service/internal/category"
	"github.com/fekuna/omnipos-catalog-service/internal/category/dto"
	"github.com/fekuna/omnipos-catalog-service/internal/model"
	"github.com/fekuna/omnipos-catalog-service/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type categoryUseCase struct {
	repo   category.Repository
	refs   category.ReferenceCounter
	cache  category.Cache
	logger logger.ZapLogger
}

// NewCategoryUseCase builds the category directory. refs may be nil, in which
// case categories are deleted without checking for referencing items.
func NewCategoryUseCase(repo category.Repository, refs category.ReferenceCounter, cache category.Cache, log logger.ZapLogger) category.UseCase {
	return &categoryUseCase{
		repo:   repo,
		refs:   refs,
		cache:  cache,
		logger: log,
	}
}

func (uc *categoryUseCase) CreateCategory(ctx context.Context, input *dto.CreateCategoryInput) (*model.Category, error) {
	name := strings.TrimSpace(input.Name)

	existing, err := uc.repo.FindByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("find category by name: %w", err)
	}
	if existing != nil {
		return nil, apperr.Conflict("category %s already exists", name)
	}

	now := time.Now().UTC()
	cat := &model.Category{
		BaseModel: model.BaseModel{
			ID:        uuid.New().String(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Name: name,
	}

	if err := uc.repo.Create(ctx, cat); err != nil {
		return nil, err
	}

	uc.logger.Info("category created", zap.String("category_id", cat.ID), zap.String("name", cat.Name))
	return cat, nil
}

func (uc *categoryUseCase) GetCategory(ctx context.Context, id string) (*model.Category, error) {
	if cached, ok := uc.cache.Get(ctx, id); ok {
		return cached, nil
	}

	cat, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if cat == nil {
		return nil, apperr.NotFound("category %s not found", id)
	}

	uc.cache.Set(ctx, id, cat, 0)
	return cat, nil
}

func (uc *categoryUseCase) GetCategoryByName(ctx context.Context, name string) (*model.Category, error) {
	cat, err := uc.repo.FindByName(ctx, strings.TrimSpace(name))
	if err != nil {
		return nil, err
	}
	if cat == nil {
		return nil, apperr.NotFound("category %s not found", name)
	}
	return cat, nil
}

func (uc *categoryUseCase) ListCategories(ctx context.Context) ([]model.Category, error) {
	return uc.repo.FindAll(ctx)
}

func (uc *categoryUseCase) UpdateCategory(ctx context.Context, input *dto.UpdateCategoryInput) (*model.Category, error) {
	name := strings.TrimSpace(input.Name)

	// Renaming a category to its own (case-insensitively equal) name is allowed.
	sameName, err := uc.repo.FindByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("find category by name: %w", err)
	}
	if sameName != nil && sameName.ID != input.ID {
		return nil, apperr.Conflict("another category named %s already exists", name)
	}

	cat, err := uc.repo.FindByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if cat == nil {
		return nil, apperr.NotFound("category %s not found", input.ID)
	}

	cat.Name = name
	cat.UpdatedAt = time.Now().UTC()
	if err := uc.repo.Update(ctx, cat); err != nil {
		return nil, err
	}

	uc.cache.Remove(ctx, cat.ID)
	return cat, nil
}

func (uc *categoryUseCase) DeleteCategory(ctx context.Context, id string) (*model.Category, error) {
	cat, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if cat == nil {
		return nil, apperr.NotFound("category %s not found", id)
	}

	if uc.refs != nil {
		n, err := uc.refs.CountByCategory(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("count items in category: %w", err)
		}
		if n > 0 {
			return nil, apperr.Conflict("category %s still has %d items", cat.Name, n)
		}
	}

	if err := uc.repo.Delete(ctx, id); err != nil {
		return nil, err
	}

	uc.cache.Remove(ctx, id)
	uc.logger.Info("category deleted", zap.String("category_id", id))
	return cat, nil
}
