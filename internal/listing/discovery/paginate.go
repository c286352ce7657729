package discovery

import "math"

// Window is the slice of an ordered result set one page covers.
type Window struct {
	Offset int
	Limit  int
}

// Paginate clamps page and perPage and returns the window
// [(page-1)*perPage, page*perPage).
func Paginate(page, perPage int) Window {
	page, perPage = ClampPage(page), ClampPerPage(perPage)
	if page-1 > math.MaxInt/perPage {
		return Window{Offset: math.MaxInt, Limit: perPage}
	}
	return Window{Offset: (page - 1) * perPage, Limit: perPage}
}

// Query is everything a store needs to execute one discovery request.
type Query struct {
	Predicate Predicate
	Ordering  Ordering
	Window    Window
}

// ResultPage is one page of matches plus the total across all pages.
type ResultPage[T any] struct {
	Items   []T
	Total   int64
	Page    int
	PerPage int
}

// NewResultPage never returns nil Items, so an empty page encodes as an empty list.
func NewResultPage[T any](items []T, total int64, page, perPage int) ResultPage[T] {
	if items == nil {
		items = []T{}
	}
	return ResultPage[T]{Items: items, Total: total, Page: ClampPage(page), PerPage: ClampPerPage(perPage)}
}

// LastPage is the number of the last non-empty page, or 1 when nothing matched.
func (p ResultPage[T]) LastPage() int {
	if p.Total <= 0 || p.PerPage <= 0 {
		return 1
	}
	return int((p.Total + int64(p.PerPage) - 1) / int64(p.PerPage))
}

func (p ResultPage[T]) HasMore() bool {
	return p.Page < p.LastPage()
}
