// Package listing persists listings as JSON documents and serves the three
// retrieval branches of a search request: the ranked page, the total count,
// and the grouped facet counts.
package listing

import (
	"context"
	"errors"
	"fmt"

	"github.com/openlistings/searchd/internal/db"
	"github.com/openlistings/searchd/internal/domain"
	domcat "github.com/openlistings/searchd/internal/domain/category"
	domlisting "github.com/openlistings/searchd/internal/domain/listing"
	"github.com/openlistings/searchd/internal/domain/search/predicate"
	"github.com/openlistings/searchd/internal/domain/search/result"
	catrepo "github.com/openlistings/searchd/internal/repository/category"
)

// store is the consumer interface for listings (ISP).
//
//nolint:interfacebloat // listing repo needs JSON document + search operations
type store interface {
	JSONSet(ctx context.Context, key, path string, data []byte) error
	JSONSetMulti(ctx context.Context, items []db.JSONSetItem) error
	JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error)
	JSONGetMulti(ctx context.Context, keys []string) ([][]byte, error)
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	SearchSorted(ctx context.Context, q *db.SortedQuery) (*db.SearchResult, error)
	SearchRanked(ctx context.Context, q *db.RankedQuery) (*db.SearchResult, error)
	SearchCount(ctx context.Context, index string, f db.FilterSpec) (int, error)
	GroupCountMulti(ctx context.Context, reqs []db.GroupCountRequest) ([]db.GroupCountResult, error)
}

// Repo implements usecase listing storage and retrieval.
type Repo struct {
	store     store
	keyPrefix string
}

// New creates a listing repository.
func New(s store, keyPrefix string) *Repo {
	return &Repo{store: s, keyPrefix: keyPrefix}
}

// EnsureCatalogIndex creates the cross-category catalog index if absent.
// The composite attrs tag field carries "key:value" members so attribute
// filters still apply when no category narrows the search.
func (r *Repo) EnsureCatalogIndex(ctx context.Context) error {
	def, err := db.NewIndex(r.catalogIndex()).
		OnJSON().
		Prefix(r.listingPrefix()).
		TextAs("$.title", "title").
		TextAs("$.description", "description").
		NumericAs("$.price", "price").Sortable().
		TagAs("$.category", "category").
		NumericAs("$.created_at", "created_at").Sortable().
		TagAs("$.attrs_kv[*]", "attrs").
		Build()
	if err != nil {
		return fmt.Errorf("build catalog index: %w", err)
	}

	if err := r.store.CreateIndex(ctx, def); err != nil && !errors.Is(err, db.ErrIndexExists) {
		return fmt.Errorf("create catalog index: %w", err)
	}
	return nil
}

// Upsert stores one listing document.
func (r *Repo) Upsert(ctx context.Context, l domlisting.Listing) error {
	data, err := listingToJSON(&l)
	if err != nil {
		return err
	}
	if err := r.store.JSONSet(ctx, r.docKey(l.ID()), "$", data); err != nil {
		return fmt.Errorf("json set listing %s: %w", l.ID(), err)
	}
	return nil
}

// BatchUpsert stores multiple listing documents in one round-trip.
func (r *Repo) BatchUpsert(ctx context.Context, listings []domlisting.Listing) error {
	if len(listings) == 0 {
		return nil
	}

	items := make([]db.JSONSetItem, len(listings))
	for i := range listings {
		data, err := listingToJSON(&listings[i])
		if err != nil {
			return err
		}
		items[i] = db.JSONSetItem{Key: r.docKey(listings[i].ID()), Path: "$", Data: data}
	}

	if err := r.store.JSONSetMulti(ctx, items); err != nil {
		return fmt.Errorf("json set batch: %w", err)
	}
	return nil
}

// Get retrieves a listing by ID.
func (r *Repo) Get(ctx context.Context, id string) (domlisting.Listing, error) {
	data, err := r.store.JSONGet(ctx, r.docKey(id))
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domlisting.Listing{}, domain.ErrListingNotFound
		}
		return domlisting.Listing{}, fmt.Errorf("json get listing %s: %w", id, err)
	}
	return listingFromJSON(data)
}

// Delete removes a listing by ID.
func (r *Repo) Delete(ctx context.Context, id string) error {
	exists, err := r.store.Exists(ctx, r.docKey(id))
	if err != nil {
		return fmt.Errorf("check exists: %w", err)
	}
	if !exists {
		return domain.ErrListingNotFound
	}
	if err := r.store.Del(ctx, r.docKey(id)); err != nil {
		return fmt.Errorf("del listing %s: %w", id, err)
	}
	return nil
}

// Page returns one page of listings matching the predicate. With relevance
// text present, ordering is score descending with created_at descending as
// tie-break; otherwise created_at descending only. Both orderings are total,
// so identical requests against unchanged data paginate identically.
func (r *Repo) Page(ctx context.Context, pred predicate.Predicate, offset, limit int) ([]domlisting.Listing, error) {
	index := r.indexFor(pred)
	spec := r.filterSpec(pred)

	if pred.HasText() {
		res, err := r.store.SearchRanked(ctx, &db.RankedQuery{
			IndexName: index,
			Filter:    spec,
			TieBreak:  "created_at",
			Offset:    offset,
			Limit:     limit,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: ranked page: %w", domain.ErrRetrieval, err)
		}
		return r.hydrateByKey(ctx, res.Entries)
	}

	res, err := r.store.SearchSorted(ctx, &db.SortedQuery{
		IndexName: index,
		Filter:    spec,
		SortBy:    "created_at",
		SortDesc:  true,
		Offset:    offset,
		Limit:     limit,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: sorted page: %w", domain.ErrRetrieval, err)
	}
	return hydrateFromFields(res.Entries)
}

// Count returns the total number of listings matching the predicate,
// independent of pagination.
func (r *Repo) Count(ctx context.Context, pred predicate.Predicate) (int, error) {
	total, err := r.store.SearchCount(ctx, r.indexFor(pred), r.filterSpec(pred))
	if err != nil {
		return 0, fmt.Errorf("%w: count: %w", domain.ErrRetrieval, err)
	}
	return total, nil
}

// Facets computes per-attribute value distributions for the category's
// schema in a single multi-branch round-trip. Each attribute's branch runs
// against the predicate with that attribute's own clause removed, so
// already-selected attributes keep their full refinement counts.
func (r *Repo) Facets(
	ctx context.Context, cat domcat.Category, pred predicate.Predicate, valueLimit int,
) (result.Facets, error) {
	schema := cat.Schema()
	if len(schema) == 0 {
		return result.Facets{}, nil
	}

	index := catrepo.IndexName(r.keyPrefix, cat.Slug())
	reqs := make([]db.GroupCountRequest, len(schema))
	for i, def := range schema {
		reqs[i] = db.GroupCountRequest{
			IndexName: index,
			Filter:    r.filterSpec(pred.WithoutKey(def.Key())),
			GroupBy:   catrepo.AttrField(def.Key()),
			Limit:     valueLimit,
		}
	}

	results, err := r.store.GroupCountMulti(ctx, reqs)
	if err != nil {
		return nil, fmt.Errorf("%w: facets: %w", domain.ErrRetrieval, err)
	}

	facets := make(result.Facets, len(schema))
	for i, def := range schema {
		if i >= len(results) || len(results[i].Groups) == 0 {
			continue
		}
		values := make([]result.FacetValue, 0, len(results[i].Groups))
		for _, g := range results[i].Groups {
			if g.Value == "" {
				continue
			}
			values = append(values, result.FacetValue{Value: g.Value, Count: g.Count})
		}
		if len(values) > 0 {
			facets[def.Key()] = values
		}
	}

	return facets, nil
}

// hydrateByKey fetches full documents for ranked entries, which carry keys
// only. Keys deleted between ranking and hydration are skipped.
func (r *Repo) hydrateByKey(ctx context.Context, entries []db.SearchEntry) ([]domlisting.Listing, error) {
	if len(entries) == 0 {
		return []domlisting.Listing{}, nil
	}

	keys := make([]string, len(entries))
	for i, e := range entries {
		keys[i] = e.Key
	}

	docs, err := r.store.JSONGetMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("%w: hydrate page: %w", domain.ErrRetrieval, err)
	}

	listings := make([]domlisting.Listing, 0, len(docs))
	for _, data := range docs {
		if data == nil {
			continue
		}
		l, err := listingFromJSON(data)
		if err != nil {
			return nil, err
		}
		listings = append(listings, l)
	}
	return listings, nil
}

// hydrateFromFields parses documents returned inline by FT.SEARCH on a JSON
// index (the "$" field).
func hydrateFromFields(entries []db.SearchEntry) ([]domlisting.Listing, error) {
	listings := make([]domlisting.Listing, 0, len(entries))
	for _, e := range entries {
		raw, ok := e.Fields["$"]
		if !ok {
			continue
		}
		l, err := listingFromJSON([]byte(raw))
		if err != nil {
			return nil, err
		}
		listings = append(listings, l)
	}
	return listings, nil
}

// filterSpec translates the predicate into the driver's filter form for the
// index chosen by indexFor. Category-scoped predicates address per-attribute
// tag fields; unscoped predicates address the composite attrs field.
func (r *Repo) filterSpec(pred predicate.Predicate) db.FilterSpec {
	var spec db.FilterSpec

	if pred.Category() != "" {
		spec.Tags = append(spec.Tags, db.TagFilter{Field: "category", Values: []string{pred.Category()}})
	}

	scoped := pred.Category() != ""
	for _, attr := range pred.Attributes() {
		values := make([]string, 0, len(attr.Values()))
		for _, v := range attr.Values() {
			if scoped {
				values = append(values, v.Render())
			} else {
				values = append(values, CompositeTag(attr.Key(), v.Render()))
			}
		}
		field := "attrs"
		if scoped {
			field = catrepo.AttrField(attr.Key())
		}
		spec.Tags = append(spec.Tags, db.TagFilter{Field: field, Values: values})
	}

	if price := pred.Price(); price != nil {
		spec.Ranges = append(spec.Ranges, db.RangeFilter{Field: "price", Min: price.Min(), Max: price.Max()})
	}

	spec.Text = pred.Text()
	return spec
}

func (r *Repo) indexFor(pred predicate.Predicate) string {
	if pred.Category() == "" {
		return r.catalogIndex()
	}
	return catrepo.IndexName(r.keyPrefix, pred.Category())
}

func (r *Repo) docKey(id string) string {
	return fmt.Sprintf("%slisting:%s", r.keyPrefix, id)
}

func (r *Repo) listingPrefix() string {
	return fmt.Sprintf("%slisting:", r.keyPrefix)
}

func (r *Repo) catalogIndex() string {
	return fmt.Sprintf("%scatalog:idx", r.keyPrefix)
}
