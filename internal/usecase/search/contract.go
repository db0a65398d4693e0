package search

import (
	"context"

	domcat "github.com/openlistings/searchd/internal/domain/category"
	domlisting "github.com/openlistings/searchd/internal/domain/listing"
	"github.com/openlistings/searchd/internal/domain/search/predicate"
	"github.com/openlistings/searchd/internal/domain/search/result"
	"github.com/openlistings/searchd/internal/parser"
)

// Repository defines the storage contract for listing retrieval.
type Repository interface {
	Page(ctx context.Context, pred predicate.Predicate, offset, limit int) ([]domlisting.Listing, error)
	Count(ctx context.Context, pred predicate.Predicate) (int, error)
	Facets(ctx context.Context, cat domcat.Category, pred predicate.Predicate, valueLimit int) (result.Facets, error)
}

// CategoryReader reads category metadata for resolution and vocabulary building.
type CategoryReader interface {
	GetBySlug(ctx context.Context, slug string) (domcat.Category, error)
	List(ctx context.Context) ([]domcat.Category, error)
}

// QueryParser extracts advisory filters and a category hint from free text.
type QueryParser interface {
	Parse(
		ctx context.Context, query string,
		categories []domcat.Category, vocab parser.Vocabulary,
	) (parser.Result, error)
}
