package model

import "fmt"

// Page is one page of a paginated list response.
type Page[T any] struct {
	// Data holds the items on this page.
	Data []T `json:"data"`

	// Total is the number of items across all pages.
	Total int `json:"total"`

	// Page is the 1-based index of this page.
	Page int `json:"page"`

	// Limit is the page size used for the query.
	Limit int `json:"limit"`

	// TotalPages is ceil(Total/Limit).
	TotalPages int `json:"totalPages"`
}

// Validate checks the internal consistency of the pagination envelope:
// TotalPages must equal ceil(Total/Limit), and Page must fall within
// [1, max(TotalPages, 1)].
func (p Page[T]) Validate() error {
	if p.Limit <= 0 {
		return fmt.Errorf("page: limit must be positive, got %d", p.Limit)
	}
	if p.Total < 0 {
		return fmt.Errorf("page: total must not be negative, got %d", p.Total)
	}

	want := (p.Total + p.Limit - 1) / p.Limit
	if p.TotalPages != want {
		return fmt.Errorf(
			"page: totalPages is %d, want %d for total %d limit %d",
			p.TotalPages, want, p.Total, p.Limit,
		)
	}

	maxPage := p.TotalPages
	if maxPage < 1 {
		maxPage = 1
	}
	if p.Page < 1 || p.Page > maxPage {
		return fmt.Errorf(
			"page: page %d out of range [1, %d]", p.Page, maxPage,
		)
	}

	return nil
}
