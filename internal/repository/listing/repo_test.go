package listing

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/openlistings/searchd/internal/db"
	"github.com/openlistings/searchd/internal/domain"
	domcat "github.com/openlistings/searchd/internal/domain/category"
	"github.com/openlistings/searchd/internal/domain/category/attribute"
	domlisting "github.com/openlistings/searchd/internal/domain/listing"
	"github.com/openlistings/searchd/internal/domain/search/filterset"
	"github.com/openlistings/searchd/internal/domain/search/predicate"
)

func testListing(t *testing.T, id string) domlisting.Listing {
	t.Helper()
	return domlisting.Reconstruct(
		id, "Sony TV", "A television", 300, "New York", "televisions",
		map[string]domlisting.Value{
			"brand":   domlisting.StringValue("Sony"),
			"smartTV": domlisting.BoolValue(true),
		},
		1700000000000,
	)
}

func compilePred(slug, text string, attrs map[string]string, price *filterset.Range) predicate.Predicate {
	fs := filterset.New()
	for k, v := range attrs {
		fs.Set(k, filterset.Scalar(domlisting.StringValue(v)))
	}
	if price != nil {
		fs.Set(filterset.PriceKey, filterset.PriceRange(*price))
	}
	return predicate.Compile(fs, slug, text)
}

func TestDocRoundTrip(t *testing.T) {
	l := testListing(t, "tv-1")

	data, err := listingToJSON(&l)
	if err != nil {
		t.Fatalf("listingToJSON: %v", err)
	}

	// Index projections must be present in the stored document.
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	var idx map[string]string
	if err := json.Unmarshal(raw["attrs_idx"], &idx); err != nil {
		t.Fatalf("attrs_idx: %v", err)
	}
	if idx["brand"] != "Sony" || idx["smartTV"] != "true" {
		t.Errorf("attrs_idx: got %v", idx)
	}
	var kv []string
	if err := json.Unmarshal(raw["attrs_kv"], &kv); err != nil {
		t.Fatalf("attrs_kv: %v", err)
	}
	found := false
	for _, tag := range kv {
		if tag == "brand:Sony" {
			found = true
		}
	}
	if !found {
		t.Errorf("attrs_kv missing brand:Sony, got %v", kv)
	}

	got, err := listingFromJSON(data)
	if err != nil {
		t.Fatalf("listingFromJSON: %v", err)
	}
	if got.ID() != "tv-1" || got.Title() != "Sony TV" || got.Price() != 300 {
		t.Errorf("identity: %q %q %v", got.ID(), got.Title(), got.Price())
	}
	if got.Category() != "televisions" || got.CreatedAt() != 1700000000000 {
		t.Errorf("metadata: %q %d", got.Category(), got.CreatedAt())
	}
	brand, ok := got.Attributes()["brand"]
	if !ok {
		t.Fatal("missing brand attribute")
	}
	if s, _ := brand.AsString(); s != "Sony" {
		t.Errorf("brand: got %q", s)
	}
}

func TestCompositeTag(t *testing.T) {
	if got := CompositeTag("brand", "Nike"); got != "brand:Nike" {
		t.Errorf("got %q", got)
	}
}

func TestEnsureCatalogIndex(t *testing.T) {
	store := &mockStore{}
	repo := New(store, "listings:")

	if err := repo.EnsureCatalogIndex(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(store.createCalls) != 1 || store.createCalls[0] != "listings:catalog:idx" {
		t.Errorf("create calls: %v", store.createCalls)
	}
}

func TestEnsureCatalogIndex_AlreadyExists(t *testing.T) {
	store := &mockStore{
		createIndexFn: func(context.Context, *db.IndexDefinition) error { return db.ErrIndexExists },
	}
	repo := New(store, "listings:")

	if err := repo.EnsureCatalogIndex(context.Background()); err != nil {
		t.Fatalf("an existing index must not fail: %v", err)
	}
}

func TestUpsert_KeyFormat(t *testing.T) {
	store := &mockStore{}
	repo := New(store, "listings:")

	if err := repo.Upsert(context.Background(), testListing(t, "tv-1")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(store.setKeys) != 1 || store.setKeys[0] != "listings:listing:tv-1" {
		t.Errorf("set keys: %v", store.setKeys)
	}
}

func TestBatchUpsert_SingleRoundTrip(t *testing.T) {
	store := &mockStore{}
	repo := New(store, "listings:")

	ls := []domlisting.Listing{testListing(t, "a"), testListing(t, "b")}
	if err := repo.BatchUpsert(context.Background(), ls); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(store.batchSizes) != 1 || store.batchSizes[0] != 2 {
		t.Errorf("batch sizes: %v", store.batchSizes)
	}
}

func TestGet_NotFound(t *testing.T) {
	repo := New(&mockStore{}, "listings:")

	_, err := repo.Get(context.Background(), "ghost")
	if !errors.Is(err, domain.ErrListingNotFound) {
		t.Errorf("expected ErrListingNotFound, got %v", err)
	}
}

func TestDelete_NotFound(t *testing.T) {
	repo := New(&mockStore{}, "listings:")

	err := repo.Delete(context.Background(), "ghost")
	if !errors.Is(err, domain.ErrListingNotFound) {
		t.Errorf("expected ErrListingNotFound, got %v", err)
	}
}

func TestPage_NoText_SortsByRecency(t *testing.T) {
	l := testListing(t, "tv-1")
	data, err := listingToJSON(&l)
	if err != nil {
		t.Fatalf("listingToJSON: %v", err)
	}

	store := &mockStore{
		searchSortedFn: func(_ context.Context, q *db.SortedQuery) (*db.SearchResult, error) {
			return &db.SearchResult{
				Total:   1,
				Entries: []db.SearchEntry{{Key: "listings:listing:tv-1", Fields: map[string]string{"$": string(data)}}},
			}, nil
		},
	}
	repo := New(store, "listings:")

	got, err := repo.Page(context.Background(), compilePred("", "", nil, nil), 0, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].ID() != "tv-1" {
		t.Errorf("listings: got %v", got)
	}

	if len(store.rankedQueries) != 0 {
		t.Error("textless pages must not use the ranked path")
	}
	q := store.sortedQueries[0]
	if q.IndexName != "listings:catalog:idx" {
		t.Errorf("index: got %q", q.IndexName)
	}
	if q.SortBy != "created_at" || !q.SortDesc {
		t.Errorf("ordering: %+v", q)
	}
}

func TestPage_WithText_RanksAndHydrates(t *testing.T) {
	l := testListing(t, "tv-1")
	data, err := listingToJSON(&l)
	if err != nil {
		t.Fatalf("listingToJSON: %v", err)
	}

	store := &mockStore{
		searchRankedFn: func(_ context.Context, q *db.RankedQuery) (*db.SearchResult, error) {
			return &db.SearchResult{
				Total: 2,
				Entries: []db.SearchEntry{
					{Key: "listings:listing:tv-1", Score: 2.0},
					{Key: "listings:listing:gone", Score: 1.0},
				},
			}, nil
		},
		jsonGetMultiFn: func(_ context.Context, keys []string) ([][]byte, error) {
			// Second key deleted between ranking and hydration.
			return [][]byte{data, nil}, nil
		},
	}
	repo := New(store, "listings:")

	got, err := repo.Page(context.Background(), compilePred("televisions", "sony", nil, nil), 0, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].ID() != "tv-1" {
		t.Errorf("listings: got %v", got)
	}

	q := store.rankedQueries[0]
	if q.IndexName != "listings:cat:televisions:idx" {
		t.Errorf("index: got %q", q.IndexName)
	}
	if q.TieBreak != "created_at" {
		t.Errorf("tie-break: got %q", q.TieBreak)
	}
}

func TestCount_IndexSelection(t *testing.T) {
	store := &mockStore{}
	repo := New(store, "listings:")

	if _, err := repo.Count(context.Background(), compilePred("", "", nil, nil)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := repo.Count(context.Background(), compilePred("televisions", "", nil, nil)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if store.countIndexes[0] != "listings:catalog:idx" {
		t.Errorf("unscoped index: got %q", store.countIndexes[0])
	}
	if store.countIndexes[1] != "listings:cat:televisions:idx" {
		t.Errorf("scoped index: got %q", store.countIndexes[1])
	}
}

func TestFilterSpec_ScopedUsesAttributeFields(t *testing.T) {
	repo := New(&mockStore{}, "listings:")

	min := 100.0
	r := filterset.NewRange(&min, nil)
	pred := compilePred("televisions", "sony", map[string]string{"brand": "Sony"}, &r)
	spec := repo.filterSpec(pred)

	if len(spec.Tags) != 2 {
		t.Fatalf("tags: got %v", spec.Tags)
	}
	if spec.Tags[0].Field != "category" || spec.Tags[0].Values[0] != "televisions" {
		t.Errorf("category tag: %+v", spec.Tags[0])
	}
	if spec.Tags[1].Field != "attr_brand" || spec.Tags[1].Values[0] != "Sony" {
		t.Errorf("attribute tag: %+v", spec.Tags[1])
	}
	if len(spec.Ranges) != 1 || spec.Ranges[0].Field != "price" || *spec.Ranges[0].Min != 100 {
		t.Errorf("ranges: %+v", spec.Ranges)
	}
	if spec.Text != "sony" {
		t.Errorf("text: got %q", spec.Text)
	}
}

func TestFilterSpec_UnscopedUsesCompositeTags(t *testing.T) {
	repo := New(&mockStore{}, "listings:")

	pred := compilePred("", "", map[string]string{"brand": "Nike"}, nil)
	spec := repo.filterSpec(pred)

	if len(spec.Tags) != 1 {
		t.Fatalf("tags: got %v", spec.Tags)
	}
	if spec.Tags[0].Field != "attrs" || spec.Tags[0].Values[0] != "brand:Nike" {
		t.Errorf("composite tag: %+v", spec.Tags[0])
	}
}

func TestFacets_SelfExclusion(t *testing.T) {
	brand, err := attribute.New("brand", "Brand", attribute.String, []string{"Sony", "LG"})
	if err != nil {
		t.Fatalf("attribute.New: %v", err)
	}
	colour, err := attribute.New("colour", "Colour", attribute.String, []string{"black"})
	if err != nil {
		t.Fatalf("attribute.New: %v", err)
	}
	cat, err := domcat.New("Televisions", "televisions", nil, []attribute.Definition{brand, colour})
	if err != nil {
		t.Fatalf("category.New: %v", err)
	}

	store := &mockStore{
		groupCountMulti: func(_ context.Context, reqs []db.GroupCountRequest) ([]db.GroupCountResult, error) {
			return []db.GroupCountResult{
				{Groups: []db.Group{{Value: "Sony", Count: 4}, {Value: "LG", Count: 2}}},
				{Groups: []db.Group{{Value: "", Count: 9}}},
			}, nil
		},
	}
	repo := New(store, "listings:")

	pred := compilePred("televisions", "", map[string]string{"brand": "Sony"}, nil)
	facets, err := repo.Facets(context.Background(), cat, pred, 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	reqs := store.groupReqs[0]
	if len(reqs) != 2 {
		t.Fatalf("expected one branch per attribute, got %d", len(reqs))
	}
	if reqs[0].GroupBy != "attr_brand" || reqs[1].GroupBy != "attr_colour" {
		t.Errorf("group fields: %q, %q", reqs[0].GroupBy, reqs[1].GroupBy)
	}
	if hasTagField(reqs[0].Filter, "attr_brand") {
		t.Error("the brand branch must not filter on brand itself")
	}
	if !hasTagField(reqs[1].Filter, "attr_brand") {
		t.Error("the colour branch must keep the brand filter")
	}

	if len(facets["brand"]) != 2 || facets["brand"][0].Value != "Sony" || facets["brand"][0].Count != 4 {
		t.Errorf("brand facet: %v", facets["brand"])
	}
	if _, ok := facets["colour"]; ok {
		t.Error("empty-valued buckets must be dropped")
	}
}

func TestFacets_SchemalessCategory(t *testing.T) {
	cat, err := domcat.New("Misc", "misc", nil, nil)
	if err != nil {
		t.Fatalf("category.New: %v", err)
	}
	store := &mockStore{}
	repo := New(store, "listings:")

	facets, err := repo.Facets(context.Background(), cat, compilePred("misc", "", nil, nil), 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(facets) != 0 {
		t.Errorf("expected no facets, got %v", facets)
	}
	if len(store.groupReqs) != 0 {
		t.Error("no branches should run for an empty schema")
	}
}

func hasTagField(spec db.FilterSpec, field string) bool {
	for _, tag := range spec.Tags {
		if tag.Field == field {
			return true
		}
	}
	return false
}
