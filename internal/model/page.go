package model

// Page is one page of a filtered listing. TotalCount counts every row that
// matched the filter before pagination.
type Page[T any] struct {
	Items      []T `json:"items"`
	TotalCount int `json:"total_count"`
	Page       int `json:"page"`
	Size       int `json:"size"`
}
