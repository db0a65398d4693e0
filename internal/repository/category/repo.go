// Package category persists category metadata as hashes and manages the
// per-category listing index derived from the attribute schema.
package category

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/openlistings/searchd/internal/db"
	"github.com/openlistings/searchd/internal/domain"
	domcat "github.com/openlistings/searchd/internal/domain/category"
	"github.com/openlistings/searchd/internal/domain/category/attribute"
)

// store is the consumer interface for categories (ISP).
//
//nolint:interfacebloat // category repo needs hash + index management operations
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	DropIndex(ctx context.Context, name string) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// Repo implements usecase category storage.
type Repo struct {
	store     store
	keyPrefix string
}

// New creates a category repository. keyPrefix namespaces every key and
// index the repository touches.
func New(s store, keyPrefix string) *Repo {
	return &Repo{store: s, keyPrefix: keyPrefix}
}

// Create stores a category: HSET metadata then FT.CREATE the per-category
// listing index. On FT.CREATE failure, rolls back the HSET via DEL.
func (r *Repo) Create(ctx context.Context, cat domcat.Category) error {
	slug := cat.Slug()

	metaKey := r.metaKey(slug)
	exists, err := r.store.Exists(ctx, metaKey)
	if err != nil {
		return fmt.Errorf("check exists: %w", err)
	}
	if exists {
		return domain.ErrAlreadyExists
	}

	// Prepare index definition and hash data before writes
	indexDef, err := buildIndex(r.indexName(slug), r.listingPrefix(), cat.Schema())
	if err != nil {
		return fmt.Errorf("build index: %w", err)
	}
	hashData, err := categoryToHash(cat)
	if err != nil {
		return err
	}

	// Step 1: HSET metadata
	if err := r.store.HSet(ctx, metaKey, hashData); err != nil {
		return fmt.Errorf("hset category %s: %w", slug, err)
	}

	// FT.CREATE, rollback HSET on error
	if err := r.store.CreateIndex(ctx, indexDef); err != nil {
		cleanupErr := r.store.Del(ctx, metaKey)
		return errors.Join(err, cleanupErr)
	}

	return nil
}

// GetBySlug retrieves a category by slug.
func (r *Repo) GetBySlug(ctx context.Context, slug string) (domcat.Category, error) {
	m, err := r.store.HGetAll(ctx, r.metaKey(slug))
	if err != nil {
		return domcat.Category{}, fmt.Errorf("hgetall category %s: %w", slug, err)
	}
	if len(m) == 0 {
		return domcat.Category{}, domain.ErrNotFound
	}

	return categoryFromHash(m)
}

// List returns all categories sorted by CreatedAt.
func (r *Repo) List(ctx context.Context) ([]domcat.Category, error) {
	keys, err := r.store.Scan(ctx, r.metaKey("*"))
	if err != nil {
		return nil, fmt.Errorf("scan categories: %w", err)
	}
	if len(keys) == 0 {
		return []domcat.Category{}, nil
	}

	results, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("hgetall multi categories: %w", err)
	}

	categories := make([]domcat.Category, 0, len(results))
	for i, m := range results {
		if len(m) == 0 {
			continue
		}
		cat, err := categoryFromHash(m)
		if err != nil {
			return nil, fmt.Errorf("parse category %s: %w", keys[i], err)
		}
		categories = append(categories, cat)
	}

	sort.Slice(categories, func(i, j int) bool {
		return categories[i].CreatedAt() < categories[j].CreatedAt()
	})

	return categories, nil
}

// Delete removes a category: backup metadata, DEL hash, FT.DROPINDEX
// (rollback HSET on error). Listings referencing the slug are untouched.
func (r *Repo) Delete(ctx context.Context, slug string) error {
	metaKey := r.metaKey(slug)

	// Backup metadata
	metaBackup, err := r.store.HGetAll(ctx, metaKey)
	if err != nil {
		return fmt.Errorf("hgetall category %s: %w", slug, err)
	}
	if len(metaBackup) == 0 {
		return domain.ErrNotFound
	}

	// Step 1: DEL metadata
	if err := r.store.Del(ctx, metaKey); err != nil {
		return fmt.Errorf("del category %s: %w", slug, err)
	}

	// FT.DROPINDEX, rollback HSET on error
	if err := r.store.DropIndex(ctx, r.indexName(slug)); err != nil && !errors.Is(err, db.ErrIndexNotFound) {
		cleanupErr := r.store.HSet(ctx, metaKey, metaBackup)
		return errors.Join(err, cleanupErr)
	}

	return nil
}

// buildIndex derives the per-category FT index from the attribute schema.
// Every listing lives under the shared listing prefix, so queries against
// this index always carry a category tag clause; the schema-specific fields
// exist for attribute filtering and facet grouping.
func buildIndex(name, prefix string, schema []attribute.Definition) (*db.IndexDefinition, error) {
	b := db.NewIndex(name).
		OnJSON().
		Prefix(prefix).
		TextAs("$.title", "title").
		TextAs("$.description", "description").
		NumericAs("$.price", "price").Sortable().
		TagAs("$.category", "category").
		NumericAs("$.created_at", "created_at").Sortable()

	for _, def := range schema {
		b = b.TagAs("$.attrs_idx."+def.Key(), AttrField(def.Key())).Sortable()
	}

	return b.Build()
}

// AttrField maps an attribute key to its index field name. The prefix keeps
// dynamic attribute keys from colliding with built-in fields like title or
// price.
func AttrField(key string) string { return "attr_" + key }

// Key patterns: {prefix}category:{slug}, {prefix}cat:{slug}:idx, {prefix}listing:{id}

func (r *Repo) metaKey(slug string) string {
	return fmt.Sprintf("%scategory:%s", r.keyPrefix, slug)
}

func (r *Repo) indexName(slug string) string {
	return IndexName(r.keyPrefix, slug)
}

func (r *Repo) listingPrefix() string {
	return fmt.Sprintf("%slisting:", r.keyPrefix)
}

// IndexName exposes the per-category index name for the listing repository.
func IndexName(keyPrefix, slug string) string {
	return fmt.Sprintf("%scat:%s:idx", keyPrefix, slug)
}
