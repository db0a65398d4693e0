// Package query models an incoming search request before parsing and
// compilation.
package query

import "strings"

// Request is the normalized search input: free text, an optional explicit
// category selector, the raw client filter payload, and 1-based pagination.
type Request struct {
	text         string
	categorySlug string
	filtersJSON  []byte
	page         int
	pageSize     int
}

// New normalizes a search request. Text is whitespace-trimmed; page and
// pageSize are floored at 1 so malformed pagination degrades to the first
// page instead of failing.
func New(text, categorySlug string, filtersJSON []byte, page, pageSize int) Request {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 1
	}
	return Request{
		text:         strings.TrimSpace(text),
		categorySlug: categorySlug,
		filtersJSON:  filtersJSON,
		page:         page,
		pageSize:     pageSize,
	}
}

// Text returns the trimmed free-text query, possibly "".
func (r Request) Text() string { return r.text }

// CategorySlug returns the explicit category selector, "" when absent.
func (r Request) CategorySlug() string { return r.categorySlug }

// FiltersJSON returns the raw client filter payload, nil when absent.
func (r Request) FiltersJSON() []byte { return r.filtersJSON }

// Page returns the 1-based page number.
func (r Request) Page() int { return r.page }

// PageSize returns the page size.
func (r Request) PageSize() int { return r.pageSize }

// Offset returns the retrieval offset for the requested page.
func (r Request) Offset() int { return (r.page - 1) * r.pageSize }
