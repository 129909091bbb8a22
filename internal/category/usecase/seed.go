package usecase

import (
	"context"

	"github.com/fekuna/omnipos-catalog-service/internal/apperr"
	"github.com/fekuna/omnipos-catalog-service/internal/category"
	"github.com/fekuna/omnipos-catalog-service/internal/category/dto"
	"github.com/fekuna/omnipos-catalog-service/pkg/logger"
	"go.uber.org/zap"
)

// SeedCategories creates every name that does not exist yet. Re-running it is a no-op.
func SeedCategories(ctx context.Context, uc category.UseCase, names []string, log logger.ZapLogger) error {
	created := 0
	for _, name := range names {
		if name == "" {
			continue
		}
		_, err := uc.CreateCategory(ctx, &dto.CreateCategoryInput{Name: name})
		if err != nil {
			if apperr.IsConflict(err) {
				continue
			}
			return err
		}
		created++
	}
	log.Info("category seed finished", zap.Int("created", created), zap.Int("requested", len(names)))
	return nil
}
