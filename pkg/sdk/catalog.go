package searchd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/openlistings/searchd/internal/domain"
	cataloguc "github.com/openlistings/searchd/internal/usecase/catalog"
)

// CategoryService manages the category catalog.
type CategoryService struct {
	svc catalogUseCase
	obs *observer
}

// Create creates a new category with its attribute schema.
func (s *CategoryService) Create(ctx context.Context, info CategoryInfo) (_ CategoryInfo, err error) {
	start := time.Now()
	defer func() { s.obs.observe("category.create", start, err) }()

	cat, err := s.svc.CreateCategory(ctx, toCategoryInput(info))
	if err != nil {
		return CategoryInfo{}, fmt.Errorf("create category: %w", err)
	}
	return fromInternalCategory(cat), nil
}

// Ensure creates a category if it does not exist.
// If it already exists, returns the stored definition.
func (s *CategoryService) Ensure(ctx context.Context, info CategoryInfo) (_ CategoryInfo, err error) {
	start := time.Now()
	defer func() { s.obs.observe("category.ensure", start, err) }()

	cat, err := s.svc.CreateCategory(ctx, toCategoryInput(info))
	if err == nil {
		return fromInternalCategory(cat), nil
	}
	if !errors.Is(err, domain.ErrAlreadyExists) {
		return CategoryInfo{}, fmt.Errorf("ensure category: %w", err)
	}

	existing, err := s.svc.GetCategory(ctx, info.Slug)
	if err != nil {
		return CategoryInfo{}, fmt.Errorf("ensure category: %w", err)
	}
	return fromInternalCategory(existing), nil
}

// Get retrieves category metadata by slug.
func (s *CategoryService) Get(ctx context.Context, slug string) (_ CategoryInfo, err error) {
	start := time.Now()
	defer func() { s.obs.observe("category.get", start, err) }()

	cat, err := s.svc.GetCategory(ctx, slug)
	if err != nil {
		return CategoryInfo{}, fmt.Errorf("get category: %w", err)
	}
	return fromInternalCategory(cat), nil
}

// List returns all categories.
func (s *CategoryService) List(ctx context.Context) (_ []CategoryInfo, err error) {
	start := time.Now()
	defer func() { s.obs.observe("category.list", start, err) }()

	cats, err := s.svc.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}

	infos := make([]CategoryInfo, len(cats))
	for i, c := range cats {
		infos[i] = fromInternalCategory(c)
	}
	return infos, nil
}

// Delete removes a category and its per-category index.
// Listings remain searchable through the cross-category index.
func (s *CategoryService) Delete(ctx context.Context, slug string) (err error) {
	start := time.Now()
	defer func() { s.obs.observe("category.delete", start, err) }()

	if err = s.svc.DeleteCategory(ctx, slug); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return nil
}

// ListingService manages listing ingestion.
type ListingService struct {
	svc catalogUseCase
	obs *observer
}

// Upsert writes a single listing. An empty ID assigns a new one.
func (s *ListingService) Upsert(ctx context.Context, l Listing) (_ Listing, err error) {
	start := time.Now()
	defer func() { s.obs.observe("listing.upsert", start, err) }()

	in, err := toListingInput(l)
	if err != nil {
		return Listing{}, fmt.Errorf("upsert listing: %w", err)
	}

	stored, err := s.svc.PutListing(ctx, in)
	if err != nil {
		return Listing{}, fmt.Errorf("upsert listing: %w", err)
	}
	return fromInternalListing(stored), nil
}

// BatchUpsert writes several listings in one pipelined round trip.
// Validation is all-or-nothing: one bad listing fails the whole batch.
func (s *ListingService) BatchUpsert(ctx context.Context, listings []Listing) (_ []Listing, err error) {
	start := time.Now()
	defer func() { s.obs.observe("listing.batch_upsert", start, err) }()

	inputs := make([]cataloguc.ListingInput, 0, len(listings))
	for i, l := range listings {
		in, convErr := toListingInput(l)
		if convErr != nil {
			return nil, fmt.Errorf("batch upsert listing %d: %w", i, convErr)
		}
		inputs = append(inputs, in)
	}

	stored, err := s.svc.BatchPutListings(ctx, inputs)
	if err != nil {
		return nil, fmt.Errorf("batch upsert listings: %w", err)
	}

	out := make([]Listing, len(stored))
	for i := range stored {
		out[i] = fromInternalListing(stored[i])
	}
	return out, nil
}

// Get retrieves a listing by ID.
func (s *ListingService) Get(ctx context.Context, id string) (_ Listing, err error) {
	start := time.Now()
	defer func() { s.obs.observe("listing.get", start, err) }()

	l, err := s.svc.GetListing(ctx, id)
	if err != nil {
		return Listing{}, fmt.Errorf("get listing: %w", err)
	}
	return fromInternalListing(l), nil
}

// Delete removes a listing.
func (s *ListingService) Delete(ctx context.Context, id string) (err error) {
	start := time.Now()
	defer func() { s.obs.observe("listing.delete", start, err) }()

	if err = s.svc.DeleteListing(ctx, id); err != nil {
		return fmt.Errorf("delete listing: %w", err)
	}
	return nil
}
