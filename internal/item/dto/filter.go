package dto

import "strings"

const (
	DefaultPage = 0
	DefaultSize = 10
)

type ItemFilters struct {
	Name      string   // substring of the item name, case-insensitive
	Category  string   // substring of the category name, case-insensitive
	MaxPrice  *float64 // inclusive upper bound
	Page      int      // zero-based
	Size      int
	SortBy    string // name, price, createdAt, category; anything else sorts by id
	Direction string // asc, desc
}

// Normalize applies listing defaults in place and returns f.
func (f *ItemFilters) Normalize() *ItemFilters {
	if f.Page < 0 {
		f.Page = DefaultPage
	}
	if f.Size <= 0 {
		f.Size = DefaultSize
	}
	if f.SortBy == "" {
		f.SortBy = "id"
	}
	if f.Direction == "" {
		f.Direction = "asc"
	}
	return f
}

func (f *ItemFilters) Offset() int {
	return f.Page * f.Size
}

type SortField int

const (
	SortByID SortField = iota
	SortByName
	SortByPrice
	SortByCreatedAt
	SortByCategory
)

// ParseSortField resolves s against the allowed sort fields. Unknown values sort by id.
func ParseSortField(s string) SortField {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "name":
		return SortByName
	case "price":
		return SortByPrice
	case "createdat", "created_at":
		return SortByCreatedAt
	case "category":
		return SortByCategory
	default:
		return SortByID
	}
}

func (f SortField) String() string {
	switch f {
	case SortByName:
		return "name"
	case SortByPrice:
		return "price"
	case SortByCreatedAt:
		return "createdAt"
	case SortByCategory:
		return "category"
	default:
		return "id"
	}
}

type SortDirection int

const (
	Ascending SortDirection = iota
	Descending
)

// ParseSortDirection is case-insensitive; only "desc" sorts descending.
func ParseSortDirection(s string) SortDirection {
	if strings.EqualFold(strings.TrimSpace(s), "desc") {
		return Descending
	}
	return Ascending
}

func (f *ItemFilters) SortField() SortField { return ParseSortField(f.SortBy) }

func (f *ItemFilters) SortDirection() SortDirection { return ParseSortDirection(f.Direction) }
