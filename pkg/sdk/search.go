package searchd

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/openlistings/searchd/internal/domain/search/query"
)

// SearchOption narrows or paginates a search.
type SearchOption interface {
	applySearch(*searchConfig)
}

type searchOptionFunc func(*searchConfig)

func (f searchOptionFunc) applySearch(c *searchConfig) { f(c) }

type searchConfig struct {
	category string
	filters  map[string]any
	page     int
	pageSize int
}

// InCategory scopes the search to one category slug. Overrides whatever
// category the query text implies.
func InCategory(slug string) SearchOption {
	return searchOptionFunc(func(c *searchConfig) {
		c.category = slug
	})
}

// WithFilters sets explicit attribute filters. Values follow the API filter
// shape: a scalar, an array of scalars, or for "price" an object with
// "min"/"max". Explicit filters win over filters parsed from the query text.
func WithFilters(filters map[string]any) SearchOption {
	return searchOptionFunc(func(c *searchConfig) {
		c.filters = filters
	})
}

// Page selects a 1-based result page.
func Page(n int) SearchOption {
	return searchOptionFunc(func(c *searchConfig) {
		c.page = n
	})
}

// PageSize sets the number of listings per page. Default: 10.
func PageSize(n int) SearchOption {
	return searchOptionFunc(func(c *searchConfig) {
		c.pageSize = n
	})
}

// Search runs a relevance-ranked faceted search over the catalog.
func (c *Client) Search(ctx context.Context, q string, opts ...SearchOption) (_ SearchPage, err error) {
	start := time.Now()
	defer func() { c.obs.observe("search", start, err) }()

	cfg := &searchConfig{page: 1, pageSize: defaultPageSize}
	for _, o := range opts {
		o.applySearch(cfg)
	}

	var filtersJSON []byte
	if len(cfg.filters) > 0 {
		filtersJSON, err = json.Marshal(cfg.filters)
		if err != nil {
			return SearchPage{}, fmt.Errorf("search: encode filters: %w", err)
		}
	}

	req := query.New(q, cfg.category, filtersJSON, cfg.page, cfg.pageSize)

	page, err := c.searchSvc.Search(ctx, req)
	if err != nil {
		return SearchPage{}, fmt.Errorf("search: %w", err)
	}
	return fromInternalPage(page), nil
}
