// Package result holds the assembled output of a search request.
package result

import "github.com/openlistings/searchd/internal/domain/listing"

// FacetValue is one counted value of a facet bucket.
type FacetValue struct {
	Value string
	Count int
}

// Facets maps attribute keys to their counted values, ordered by descending
// count. Keys with no matching values are omitted.
type Facets map[string][]FacetValue

// Page is one page of ranked listings together with the total match count
// and, when the request resolved to a schema-bearing category, facet counts.
type Page struct {
	Listings   []listing.Listing
	TotalCount int
	Facets     Facets
	Page       int
	PageSize   int
}

// TotalPages returns the number of pages covering TotalCount at PageSize.
func (p Page) TotalPages() int {
	if p.PageSize < 1 {
		return 0
	}
	return (p.TotalCount + p.PageSize - 1) / p.PageSize
}
