package repository

import (
	"cmp"
	"strings"

	"github.com/fekuna/omnipos-catalog-service/internal/item/dto"
	"github.com/fekuna/omnipos-catalog-service/internal/model"
)

type compareFunc func(a, b *model.Item) int

// comparators is the in-memory counterpart of sortColumns.
var comparators = map[dto.SortField]compareFunc{
	dto.SortByID: func(a, b *model.Item) int {
		return cmp.Compare(a.ID, b.ID)
	},
	dto.SortByName: func(a, b *model.Item) int {
		return foldCompare(a.Name, b.Name)
	},
	dto.SortByPrice: func(a, b *model.Item) int {
		return cmp.Compare(a.Price, b.Price)
	},
	dto.SortByCreatedAt: func(a, b *model.Item) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	},
	dto.SortByCategory: func(a, b *model.Item) int {
		return foldCompare(a.CategoryName(), b.CategoryName())
	},
}

// foldCompare orders text the way LOWER(column) does in sortColumns.
func foldCompare(a, b string) int {
	return strings.Compare(strings.ToLower(a), strings.ToLower(b))
}

// ordering returns the comparator for the filter, with id as the tiebreaker
// and the direction applied to both keys.
func ordering(f *dto.ItemFilters) func(a, b model.Item) int {
	primary, ok := comparators[f.SortField()]
	if !ok {
		primary = comparators[dto.SortByID]
	}
	byID := comparators[dto.SortByID]
	desc := f.SortDirection() == dto.Descending

	return func(a, b model.Item) int {
		c := primary(&a, &b)
		if c == 0 {
			c = byID(&a, &b)
		}
		if desc {
			return -c
		}
		return c
	}
}
