package repository

import (
	"context"
	"slices"
	"testing"
	"time"

	"github.com/fekuna/omnipos-catalog-service/internal/apperr"
	catrepo "github.com/fekuna/omnipos-catalog-service/internal/category/repository"
	"github.com/fekuna/omnipos-catalog-service/internal/item/dto"
	"github.com/fekuna/omnipos-catalog-service/internal/model"
)

func seed(t *testing.T) *MemoryRepository {
	t.Helper()
	ctx := context.Background()
	cats := catrepo.NewMemoryRepository()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for _, c := range []model.Category{
		{BaseModel: model.BaseModel{ID: "c-poke", CreatedAt: base, UpdatedAt: base}, Name: "POKEMON"},
		{BaseModel: model.BaseModel{ID: "c-digi", CreatedAt: base, UpdatedAt: base}, Name: "DIGIMON"},
	} {
		if err := cats.Create(ctx, &c); err != nil {
			t.Fatalf("create category: %v", err)
		}
	}

	repo := NewMemoryRepository(cats)
	for i, it := range []model.Item{
		{Name: "Pikachu", Price: 9.99, CategoryID: "c-poke"},
		{Name: "Raichu", Price: 19.99, CategoryID: "c-poke"},
		{Name: "Agumon", Price: 4.5, CategoryID: "c-digi"},
		{Name: "Pichu", Price: 9.99, CategoryID: "c-poke"},
		{Name: "Gabumon", Price: 30, CategoryID: "c-digi"},
	} {
		it.CreatedAt = base.Add(time.Duration(5-i) * time.Hour)
		it.UpdatedAt = it.CreatedAt
		if _, err := repo.Create(ctx, &it); err != nil {
			t.Fatalf("create item: %v", err)
		}
	}
	return repo
}

func ids(items []model.Item) []int64 {
	out := make([]int64, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func TestFindAllMaxPriceBound(t *testing.T) {
	repo := seed(t)
	for _, p := range []float64{0, 4.5, 9.99, 10, 100} {
		bound := p
		items, total, err := repo.FindAll(context.Background(), &dto.ItemFilters{MaxPrice: &bound, Size: 100})
		if err != nil {
			t.Fatalf("find: %v", err)
		}
		if total != len(items) {
			t.Fatalf("total %d, items %d", total, len(items))
		}
		for _, it := range items {
			if it.Price > p {
				t.Fatalf("maxPrice %v returned price %v", p, it.Price)
			}
		}
	}
}

func TestFindAllUnknownSortMatchesID(t *testing.T) {
	repo := seed(t)
	for _, dir := range []string{"asc", "desc"} {
		byID, _, err := repo.FindAll(context.Background(), &dto.ItemFilters{SortBy: "id", Direction: dir})
		if err != nil {
			t.Fatalf("find: %v", err)
		}
		unknown, _, err := repo.FindAll(context.Background(), &dto.ItemFilters{SortBy: "popularity", Direction: dir})
		if err != nil {
			t.Fatalf("find: %v", err)
		}
		if !slices.Equal(ids(byID), ids(unknown)) {
			t.Fatalf("%s: %v != %v", dir, ids(byID), ids(unknown))
		}
	}
}

func TestFindAllSortsWithIDTiebreak(t *testing.T) {
	repo := seed(t)

	items, _, err := repo.FindAll(context.Background(), &dto.ItemFilters{SortBy: "price"})
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got := ids(items); !slices.Equal(got, []int64{3, 1, 4, 2, 5}) {
		t.Fatalf("price asc: %v", got)
	}

	items, _, _ = repo.FindAll(context.Background(), &dto.ItemFilters{SortBy: "price", Direction: "DESC"})
	if got := ids(items); !slices.Equal(got, []int64{5, 2, 4, 1, 3}) {
		t.Fatalf("price desc: %v", got)
	}

	items, _, _ = repo.FindAll(context.Background(), &dto.ItemFilters{SortBy: "createdAt"})
	if got := ids(items); !slices.Equal(got, []int64{5, 4, 3, 2, 1}) {
		t.Fatalf("createdAt asc: %v", got)
	}

	items, _, _ = repo.FindAll(context.Background(), &dto.ItemFilters{SortBy: "category"})
	if got := ids(items); !slices.Equal(got, []int64{3, 5, 1, 2, 4}) {
		t.Fatalf("category asc: %v", got)
	}
}

func TestFindAllCountsBeforePagination(t *testing.T) {
	repo := seed(t)

	items, total, err := repo.FindAll(context.Background(), &dto.ItemFilters{Category: "poke", Page: 1, Size: 2})
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if total != 3 {
		t.Fatalf("total %d, want 3", total)
	}
	if got := ids(items); !slices.Equal(got, []int64{4}) {
		t.Fatalf("page 1: %v", got)
	}

	items, total, _ = repo.FindAll(context.Background(), &dto.ItemFilters{Category: "poke", Page: 5, Size: 2})
	if total != 3 || len(items) != 0 {
		t.Fatalf("out of range page: total %d items %v", total, ids(items))
	}
}

func TestFindAllNameFilterIsCaseInsensitive(t *testing.T) {
	repo := seed(t)
	items, total, err := repo.FindAll(context.Background(), &dto.ItemFilters{Name: "CHU"})
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if total != 3 || !slices.Equal(ids(items), []int64{1, 2, 4}) {
		t.Fatalf("name filter: total %d ids %v", total, ids(items))
	}
}

func TestUpdateDeleteMissing(t *testing.T) {
	repo := seed(t)
	ctx := context.Background()

	got, err := repo.Update(ctx, 99, &model.Item{Name: "x", Price: 1, CategoryID: "c-poke"})
	if err != nil || got != nil {
		t.Fatalf("update missing: %v %v", got, err)
	}
	got, err = repo.Delete(ctx, 99)
	if err != nil || got != nil {
		t.Fatalf("delete missing: %v %v", got, err)
	}

	deleted, err := repo.Delete(ctx, 1)
	if err != nil || deleted == nil || deleted.CategoryName() != "POKEMON" {
		t.Fatalf("delete: %+v %v", deleted, err)
	}
	if n, _ := repo.CountByCategory(ctx, "c-poke"); n != 2 {
		t.Fatalf("count after delete %d", n)
	}
}

func TestWritesRequireExistingCategory(t *testing.T) {
	repo := seed(t)
	ctx := context.Background()

	_, err := repo.Create(ctx, &model.Item{Name: "Ghost", Price: 1, CategoryID: "c-gone"})
	if !apperr.IsConflict(err) {
		t.Fatalf("create: expected conflict, got %v", err)
	}
	if n, _ := repo.CountByCategory(ctx, "c-gone"); n != 0 {
		t.Fatalf("create left %d hidden rows", n)
	}

	_, err = repo.Update(ctx, 1, &model.Item{Name: "Ghost", Price: 1, CategoryID: "c-gone"})
	if !apperr.IsConflict(err) {
		t.Fatalf("update: expected conflict, got %v", err)
	}
	it, err := repo.FindByID(ctx, 1)
	if err != nil || it == nil || it.Name != "Pikachu" || it.CategoryID != "c-poke" {
		t.Fatalf("update changed the row: %+v %v", it, err)
	}
}

func TestSortByNameIgnoresCase(t *testing.T) {
	repo := seed(t)
	ctx := context.Background()
	if _, err := repo.Create(ctx, &model.Item{Name: "abra", Price: 2, CategoryID: "c-poke"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	items, _, err := repo.FindAll(ctx, &dto.ItemFilters{SortBy: "name", Size: 100})
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	// abra, Agumon, Gabumon, Pichu, Pikachu, Raichu
	if want := []int64{6, 3, 5, 4, 1, 2}; !slices.Equal(ids(items), want) {
		t.Fatalf("name order %v, want %v", ids(items), want)
	}
}
