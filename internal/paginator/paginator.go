package paginator

import (
	"errors"
	"strconv"
	"strings"
)

// DefaultPerPage is the page size of every list view.
const DefaultPerPage = 10

// Source is an ordered collection that can be counted and read in slices.
type Source[T any] interface {
	Count() (int64, error)
	Fetch(offset, limit int) ([]T, error)
}

// Page is one slice of a collection plus what is needed to navigate to the
// others. Page numbers start at 1.
type Page[T any] struct {
	Items    []T
	Number   int
	PerPage  int
	Count    int64
	NumPages int
}

// Get returns the page named by number. A missing or non-numeric number
// selects the first page and a number past either end selects the nearest
// valid page, so Get never fails on user input.
func Get[T any](src Source[T], number string, perPage int) (*Page[T], error) {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	count, err := src.Count()
	if err != nil {
		return nil, err
	}

	numPages := int((count + int64(perPage) - 1) / int64(perPage))
	if numPages == 0 {
		// An empty collection still has one (empty) page.
		numPages = 1
	}

	n, err := strconv.Atoi(number)
	var numErr *strconv.NumError
	switch {
	case errors.As(err, &numErr) && errors.Is(numErr.Err, strconv.ErrRange):
		// Out of int range: the nearest page is the first or the last.
		n = 1
		if !strings.HasPrefix(strings.TrimSpace(number), "-") {
			n = numPages
		}
	case err != nil:
		n = 1
	case n < 1:
		n = 1
	case n > numPages:
		n = numPages
	}

	page := &Page[T]{
		Number:   n,
		PerPage:  perPage,
		Count:    count,
		NumPages: numPages,
	}
	if count == 0 {
		return page, nil
	}
	page.Items, err = src.Fetch(page.Offset(), perPage)
	if err != nil {
		return nil, err
	}
	return page, nil
}

// Offset is the index of the first item of the page in the collection.
func (p *Page[T]) Offset() int { return (p.Number - 1) * p.PerPage }

func (p *Page[T]) HasNext() bool     { return p.Number < p.NumPages }
func (p *Page[T]) HasPrevious() bool { return p.Number > 1 }
func (p *Page[T]) HasOtherPages() bool {
	return p.HasNext() || p.HasPrevious()
}

func (p *Page[T]) NextPageNumber() int     { return p.Number + 1 }
func (p *Page[T]) PreviousPageNumber() int { return p.Number - 1 }

// PageRange lists every page number, for navigation links.
func (p *Page[T]) PageRange() []int {
	r := make([]int, p.NumPages)
	for i := range r {
		r[i] = i + 1
	}
	return r
}

// StartIndex and EndIndex are the 1-based positions of the first and last
// item of the page, or 0 when the collection is empty.
func (p *Page[T]) StartIndex() int {
	if p.Count == 0 {
		return 0
	}
	return p.Offset() + 1
}

func (p *Page[T]) EndIndex() int {
	return p.Offset() + len(p.Items)
}
