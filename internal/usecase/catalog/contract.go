package catalog

import (
	"context"

	domcat "github.com/openlistings/searchd/internal/domain/category"
	domlisting "github.com/openlistings/searchd/internal/domain/listing"
)

// CategoryRepository defines the storage contract for category metadata.
type CategoryRepository interface {
	Create(ctx context.Context, cat domcat.Category) error
	GetBySlug(ctx context.Context, slug string) (domcat.Category, error)
	List(ctx context.Context) ([]domcat.Category, error)
	Delete(ctx context.Context, slug string) error
}

// ListingRepository defines the storage contract for listing documents.
type ListingRepository interface {
	Upsert(ctx context.Context, l domlisting.Listing) error
	BatchUpsert(ctx context.Context, listings []domlisting.Listing) error
	Get(ctx context.Context, id string) (domlisting.Listing, error)
	Delete(ctx context.Context, id string) error
}
