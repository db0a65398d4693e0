// Package search implements the faceted search flow: advisory parse, filter
// merge, predicate compilation, and the fan-out to page, count, and facet
// retrieval.
package search

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/openlistings/searchd/internal/domain"
	domcat "github.com/openlistings/searchd/internal/domain/category"
	"github.com/openlistings/searchd/internal/domain/search/filterset"
	"github.com/openlistings/searchd/internal/domain/search/predicate"
	"github.com/openlistings/searchd/internal/domain/search/query"
	"github.com/openlistings/searchd/internal/domain/search/result"
	"github.com/openlistings/searchd/internal/logger"
	"github.com/openlistings/searchd/internal/parser"
)

// Config bounds facet output.
type Config struct {
	FacetValueLimit int
}

// Service executes search requests.
type Service struct {
	repo   Repository
	cats   CategoryReader
	parser QueryParser
	cfg    Config
}

// New creates a search service.
func New(repo Repository, cats CategoryReader, p QueryParser, cfg Config) *Service {
	if cfg.FacetValueLimit <= 0 {
		cfg.FacetValueLimit = 100
	}
	return &Service{repo: repo, cats: cats, parser: p, cfg: cfg}
}

// Search runs one request end to end. Client filters override parsed ones
// key-by-key; the explicit category selector overrides the parsed hint. Once
// the predicate is compiled, the page, total count, and facet branches run
// concurrently and join all-or-nothing.
func (s *Service) Search(ctx context.Context, req query.Request) (result.Page, error) {
	categories, err := s.cats.List(ctx)
	if err != nil {
		return result.Page{}, fmt.Errorf("%w: list categories: %w", domain.ErrRetrieval, err)
	}

	clientFilters, err := filterset.DecodeJSON(req.FiltersJSON())
	if err != nil {
		return result.Page{}, err
	}

	parsed := s.parse(ctx, req.Text(), categories)
	merged := parsed.Filters.Merge(clientFilters)

	slug := req.CategorySlug()
	if slug == "" {
		slug = parsed.CategorySlug
	}
	if slug == "" {
		slug = domcat.AllSlug
	}

	var activeCat domcat.Category
	scoped := slug != domcat.AllSlug
	if scoped {
		cat, err := s.cats.GetBySlug(ctx, slug)
		if err != nil {
			return result.Page{}, fmt.Errorf("resolve category %s: %w", slug, err)
		}
		if !cat.HasSchema() {
			return result.Page{}, fmt.Errorf("%w: category %s has no attribute schema", domain.ErrNotFound, slug)
		}
		activeCat = cat
	}

	predCategory := ""
	if scoped {
		predCategory = slug
	}
	pred := predicate.Compile(merged, predCategory, req.Text())

	page := result.Page{
		Facets:   result.Facets{},
		Page:     req.Page(),
		PageSize: req.PageSize(),
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		listings, err := s.repo.Page(gctx, pred, req.Offset(), req.PageSize())
		if err != nil {
			return err
		}
		page.Listings = listings
		return nil
	})

	g.Go(func() error {
		total, err := s.repo.Count(gctx, pred)
		if err != nil {
			return err
		}
		page.TotalCount = total
		return nil
	})

	if scoped {
		// Facet branches count over the structural filter alone; the text
		// clause stays out so refinement previews are not relevance-gated.
		facetPred := pred.WithoutText()
		g.Go(func() error {
			facets, err := s.repo.Facets(gctx, activeCat, facetPred, s.cfg.FacetValueLimit)
			if err != nil {
				return err
			}
			page.Facets = facets
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return result.Page{}, err
	}

	return page, nil
}

// parse runs the advisory parser. Failures are absorbed: a request never
// fails because the text could not be understood.
func (s *Service) parse(ctx context.Context, text string, categories []domcat.Category) parser.Result {
	empty := parser.Result{Filters: filterset.New()}
	if s.parser == nil || text == "" {
		return empty
	}

	vocab := parser.BuildVocabulary(categories)
	res, err := s.parser.Parse(ctx, text, categories, vocab)
	if err != nil {
		logger.FromContext(ctx).Debug("advisory parse failed", zap.Error(err))
		return empty
	}
	return res
}
