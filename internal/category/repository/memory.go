package repository

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/fekuna/omnipos-catalog-service/internal/apperr"
	"github.com/fekuna/omnipos-catalog-service/internal/model"
)

// MemoryRepository keeps categories in process memory. It mirrors the
// postgres repository's contract, including (nil, nil) for missing rows.
type MemoryRepository struct {
	mu   sync.RWMutex
	rows map[string]model.Category
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{rows: make(map[string]model.Category)}
}

func (r *MemoryRepository) Create(ctx context.Context, c *model.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.nameTaken(c.Name, c.ID) {
		return apperr.Conflict("category %s already exists", c.Name)
	}
	r.rows[c.ID] = *c
	return nil
}

// nameTaken mirrors the unique index on LOWER(name). Callers hold r.mu.
func (r *MemoryRepository) nameTaken(name, exceptID string) bool {
	for id, existing := range r.rows {
		if id != exceptID && strings.EqualFold(existing.Name, name) {
			return true
		}
	}
	return false
}

func (r *MemoryRepository) FindByID(ctx context.Context, id string) (*model.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.rows[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (r *MemoryRepository) FindByName(ctx context.Context, name string) (*model.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.rows {
		if strings.EqualFold(c.Name, name) {
			found := c
			return &found, nil
		}
	}
	return nil, nil
}

func (r *MemoryRepository) FindAll(ctx context.Context) ([]model.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	categories := make([]model.Category, 0, len(r.rows))
	for _, c := range r.rows {
		categories = append(categories, c)
	}
	sort.Slice(categories, func(i, j int) bool {
		return categories[i].Name < categories[j].Name
	})
	return categories, nil
}

func (r *MemoryRepository) Update(ctx context.Context, c *model.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[c.ID]; !ok {
		return nil
	}
	if r.nameTaken(c.Name, c.ID) {
		return apperr.Conflict("category %s already exists", c.Name)
	}
	r.rows[c.ID] = *c
	return nil
}

func (r *MemoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rows, id)
	return nil
}
