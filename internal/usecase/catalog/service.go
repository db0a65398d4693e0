// Package catalog implements category and listing ingestion.
package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/openlistings/searchd/internal/domain"
	domcat "github.com/openlistings/searchd/internal/domain/category"
	"github.com/openlistings/searchd/internal/domain/category/attribute"
	domlisting "github.com/openlistings/searchd/internal/domain/listing"
)

// AttributeInput is one attribute definition of a category payload.
type AttributeInput struct {
	Key     string
	Label   string
	Type    string
	Options []string
}

// CategoryInput is the ingestion payload for a category.
type CategoryInput struct {
	Name       string
	Slug       string
	Synonyms   []string
	Attributes []AttributeInput
}

// ListingInput is the ingestion payload for a listing. An empty ID means the
// service assigns one.
type ListingInput struct {
	ID          string
	Title       string
	Description string
	Price       float64
	Location    string
	Category    string
	Attributes  map[string]domlisting.Value
}

// Config bounds batch ingestion.
type Config struct {
	MaxBatchSize int
}

// Service coordinates catalog writes.
type Service struct {
	cats     CategoryRepository
	listings ListingRepository
	cfg      Config
}

// New creates a catalog service.
func New(cats CategoryRepository, listings ListingRepository, cfg Config) *Service {
	if cfg.MaxBatchSize <= 0 {
		cfg.MaxBatchSize = 100
	}
	return &Service{cats: cats, listings: listings, cfg: cfg}
}

// CreateCategory validates and stores a category with its attribute schema.
func (s *Service) CreateCategory(ctx context.Context, in CategoryInput) (domcat.Category, error) {
	schema := make([]attribute.Definition, 0, len(in.Attributes))
	for _, a := range in.Attributes {
		def, err := attribute.New(a.Key, a.Label, attribute.Type(a.Type), a.Options)
		if err != nil {
			return domcat.Category{}, fmt.Errorf("%w: %w", domain.ErrInvalidArgument, err)
		}
		schema = append(schema, def)
	}

	cat, err := domcat.New(in.Name, in.Slug, in.Synonyms, schema)
	if err != nil {
		return domcat.Category{}, fmt.Errorf("%w: %w", domain.ErrInvalidArgument, err)
	}

	if err := s.cats.Create(ctx, cat); err != nil {
		return domcat.Category{}, fmt.Errorf("create category %s: %w", in.Slug, err)
	}
	return cat, nil
}

// GetCategory returns a category by slug.
func (s *Service) GetCategory(ctx context.Context, slug string) (domcat.Category, error) {
	return s.cats.GetBySlug(ctx, slug)
}

// ListCategories returns all categories.
func (s *Service) ListCategories(ctx context.Context) ([]domcat.Category, error) {
	return s.cats.List(ctx)
}

// DeleteCategory removes a category and its index.
func (s *Service) DeleteCategory(ctx context.Context, slug string) error {
	return s.cats.Delete(ctx, slug)
}

// PutListing validates and stores one listing. The owning category must
// exist before listings can reference it.
func (s *Service) PutListing(ctx context.Context, in ListingInput) (domlisting.Listing, error) {
	l, err := s.buildListing(ctx, in, make(map[string]bool))
	if err != nil {
		return domlisting.Listing{}, err
	}

	if err := s.listings.Upsert(ctx, l); err != nil {
		return domlisting.Listing{}, fmt.Errorf("upsert listing %s: %w", l.ID(), err)
	}
	return l, nil
}

// BatchPutListings validates and stores up to Config.MaxBatchSize listings
// in one round-trip. The batch is all-or-nothing at the validation stage: a
// single invalid item rejects the whole payload.
func (s *Service) BatchPutListings(ctx context.Context, ins []ListingInput) ([]domlisting.Listing, error) {
	if len(ins) == 0 {
		return []domlisting.Listing{}, nil
	}
	if len(ins) > s.cfg.MaxBatchSize {
		return nil, fmt.Errorf("%w: batch too large (max %d)", domain.ErrInvalidArgument, s.cfg.MaxBatchSize)
	}

	known := make(map[string]bool)
	listings := make([]domlisting.Listing, 0, len(ins))
	for i, in := range ins {
		l, err := s.buildListing(ctx, in, known)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		listings = append(listings, l)
	}

	if err := s.listings.BatchUpsert(ctx, listings); err != nil {
		return nil, fmt.Errorf("batch upsert: %w", err)
	}
	return listings, nil
}

// GetListing returns a listing by ID.
func (s *Service) GetListing(ctx context.Context, id string) (domlisting.Listing, error) {
	return s.listings.Get(ctx, id)
}

// DeleteListing removes a listing by ID.
func (s *Service) DeleteListing(ctx context.Context, id string) error {
	return s.listings.Delete(ctx, id)
}

// buildListing validates one input against the domain rules and the owning
// category. known caches category existence checks within a batch.
func (s *Service) buildListing(
	ctx context.Context, in ListingInput, known map[string]bool,
) (domlisting.Listing, error) {
	if !known[in.Category] {
		if _, err := s.cats.GetBySlug(ctx, in.Category); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domlisting.Listing{}, fmt.Errorf("category %s: %w", in.Category, err)
			}
			return domlisting.Listing{}, fmt.Errorf("resolve category %s: %w", in.Category, err)
		}
		known[in.Category] = true
	}

	id := in.ID
	if id == "" {
		id = uuid.NewString()
	}

	l, err := domlisting.New(id, in.Title, in.Description, in.Price, in.Location, in.Category, in.Attributes)
	if err != nil {
		return domlisting.Listing{}, fmt.Errorf("%w: %w", domain.ErrInvalidArgument, err)
	}
	return l, nil
}
