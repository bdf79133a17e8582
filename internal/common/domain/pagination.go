package domain

// Page describes a row-offset window over a result set.
type Page struct {
	Offset int
	Limit  int
}

// NewPage clamps raw from/size query values into a usable window.
// from is a plain row offset, not a page index.
func NewPage(from, size int) Page {
	if from < 0 {
		from = 0
	}
	if size < 1 {
		size = 20
	}
	if size > 100 {
		size = 100
	}
	return Page{Offset: from, Limit: size}
}

// PaginatedResult wraps a page of items with the total row count.
type PaginatedResult[T any] struct {
	Items  []T   `json:"items"`
	Total  int64 `json:"total"`
	Offset int   `json:"offset"`
	Limit  int   `json:"limit"`
}

// NewPaginatedResult builds a PaginatedResult for the given window.
func NewPaginatedResult[T any](items []T, total int64, page Page) PaginatedResult[T] {
	return PaginatedResult[T]{Items: items, Total: total, Offset: page.Offset, Limit: page.Limit}
}
