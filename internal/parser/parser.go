// Package parser turns free-text queries into advisory structured filters.
// Parser output is a hint layer only: explicit client filters always win at
// merge time, and parse failures degrade to an empty result.
package parser

import (
	"context"

	"github.com/openlistings/searchd/internal/domain/category"
	"github.com/openlistings/searchd/internal/domain/search/filterset"
)

// Result is the advisory output of a parse: an inferred category slug
// (possibly "") and inferred filters (possibly empty).
type Result struct {
	CategorySlug string
	Filters      filterset.FilterSet
}

// Parser extracts structured hints from a raw text query. Implementations
// must be pure with respect to the catalog: categories and vocabulary arrive
// as arguments, never from internal state. A non-nil error marks an advisory
// failure the caller absorbs, not a request failure.
type Parser interface {
	Parse(ctx context.Context, query string, categories []category.Category, vocab Vocabulary) (Result, error)
}
