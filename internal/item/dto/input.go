package dto

type CreateItemInput struct {
	Name     string
	Price    float64
	Category string // category name
	ImageURL string
}

// UpdateItemInput replaces every mutable field of the item.
type UpdateItemInput struct {
	ID       int64
	Name     string
	Price    float64
	Category string
	ImageURL string
}

// PatchItemInput carries only the fields to change; nil means "keep".
type PatchItemInput struct {
	ID       int64
	Name     *string
	Price    *float64
	Category *string
	ImageURL *string
}
