package repository

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/fekuna/omnipos-catalog-service/internal/apperr"
	"github.com/fekuna/omnipos-catalog-service/internal/item/dto"
	"github.com/fekuna/omnipos-catalog-service/internal/model"
)

// CategoryFinder resolves the category joined onto every item read.
type CategoryFinder interface {
	FindByID(ctx context.Context, id string) (*model.Category, error)
}

// MemoryRepository stores items in process memory with the same filter, sort
// and pagination semantics as PGRepository. Categories are joined at read time.
type MemoryRepository struct {
	categories CategoryFinder

	mu     sync.RWMutex
	nextID int64
	rows   map[int64]model.Item
}

func NewMemoryRepository(categories CategoryFinder) *MemoryRepository {
	return &MemoryRepository{
		categories: categories,
		rows:       make(map[int64]model.Item),
	}
}

func (r *MemoryRepository) Create(ctx context.Context, it *model.Item) (*model.Item, error) {
	r.mu.Lock()
	if err := r.requireCategory(ctx, it.CategoryID); err != nil {
		r.mu.Unlock()
		return nil, err
	}
	r.nextID++
	row := *it.Clone()
	row.ID = r.nextID
	row.Category = nil
	r.rows[row.ID] = row
	r.mu.Unlock()

	return r.FindByID(ctx, row.ID)
}

// requireCategory plays the part of the items.category_id foreign key.
// Callers hold r.mu.
func (r *MemoryRepository) requireCategory(ctx context.Context, categoryID string) error {
	cat, err := r.categories.FindByID(ctx, categoryID)
	if err != nil {
		return err
	}
	if cat == nil {
		return apperr.Conflict("category %s does not exist", categoryID)
	}
	return nil
}

func (r *MemoryRepository) FindByID(ctx context.Context, id int64) (*model.Item, error) {
	r.mu.RLock()
	row, ok := r.rows[id]
	r.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	return r.join(ctx, row)
}

func (r *MemoryRepository) join(ctx context.Context, row model.Item) (*model.Item, error) {
	it := row.Clone()
	cat, err := r.categories.FindByID(ctx, row.CategoryID)
	if err != nil {
		return nil, err
	}
	if cat == nil {
		// Inner join semantics: an item whose category is gone is invisible.
		return nil, nil
	}
	it.Category = cat
	return it, nil
}

func (r *MemoryRepository) FindAll(ctx context.Context, f *dto.ItemFilters) ([]model.Item, int, error) {
	f.Normalize()

	r.mu.RLock()
	rows := make([]model.Item, 0, len(r.rows))
	for _, row := range r.rows {
		rows = append(rows, row)
	}
	r.mu.RUnlock()

	name := strings.ToLower(f.Name)
	category := strings.ToLower(f.Category)

	matched := make([]model.Item, 0, len(rows))
	for _, row := range rows {
		it, err := r.join(ctx, row)
		if err != nil {
			return nil, 0, err
		}
		if it == nil {
			continue
		}
		if name != "" && !strings.Contains(strings.ToLower(it.Name), name) {
			continue
		}
		if category != "" && !strings.Contains(strings.ToLower(it.CategoryName()), category) {
			continue
		}
		if f.MaxPrice != nil && it.Price > *f.MaxPrice {
			continue
		}
		matched = append(matched, *it)
	}

	total := len(matched)
	slices.SortFunc(matched, ordering(f))

	start := min(f.Offset(), total)
	end := min(start+f.Size, total)
	return matched[start:end], total, nil
}

func (r *MemoryRepository) Update(ctx context.Context, id int64, it *model.Item) (*model.Item, error) {
	r.mu.Lock()
	current, ok := r.rows[id]
	if !ok {
		r.mu.Unlock()
		return nil, nil
	}
	if err := r.requireCategory(ctx, it.CategoryID); err != nil {
		r.mu.Unlock()
		return nil, err
	}
	row := *it.Clone()
	row.ID = id
	row.CreatedAt = current.CreatedAt
	row.Category = nil
	r.rows[id] = row
	r.mu.Unlock()

	return r.FindByID(ctx, id)
}

func (r *MemoryRepository) Delete(ctx context.Context, id int64) (*model.Item, error) {
	current, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[id]; !ok {
		return nil, nil
	}
	delete(r.rows, id)
	return current, nil
}

func (r *MemoryRepository) CountByCategory(ctx context.Context, categoryID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, row := range r.rows {
		if row.CategoryID == categoryID {
			n++
		}
	}
	return n, nil
}
