package model

import "time"

type Item struct {
	ID         int64     `db:"id" json:"id"`
	Name       string    `db:"name" json:"name"`
	Price      float64   `db:"price" json:"price"`
	CategoryID string    `db:"category_id" json:"category_id"`
	ImageURL   *string   `db:"image_url" json:"image_url"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
	Category   *Category `db:"-" json:"category"` // Joined data
}

// CategoryName is empty when the category was not joined.
func (i *Item) CategoryName() string {
	if i.Category == nil {
		return ""
	}
	return i.Category.Name
}

// Clone returns a deep copy, so cached and published snapshots never share
// memory with an entity that is still being mutated.
func (i *Item) Clone() *Item {
	if i == nil {
		return nil
	}
	c := *i
	if i.ImageURL != nil {
		img := *i.ImageURL
		c.ImageURL = &img
	}
	if i.Category != nil {
		cat := *i.Category
		c.Category = &cat
	}
	return &c
}
