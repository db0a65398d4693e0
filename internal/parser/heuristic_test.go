package parser

import (
	"context"
	"testing"

	"github.com/openlistings/searchd/internal/domain/category"
	"github.com/openlistings/searchd/internal/domain/category/attribute"
	"github.com/openlistings/searchd/internal/domain/search/filterset"
)

func makeAttr(t *testing.T, key string, options []string) attribute.Definition {
	t.Helper()
	def, err := attribute.New(key, key, attribute.String, options)
	if err != nil {
		t.Fatalf("attribute.New(%q): %v", key, err)
	}
	return def
}

func makeCategory(t *testing.T, name, slug string, attrs ...attribute.Definition) category.Category {
	t.Helper()
	cat, err := category.New(name, slug, nil, attrs)
	if err != nil {
		t.Fatalf("category.New(%q): %v", slug, err)
	}
	return cat
}

func testCatalog(t *testing.T) []category.Category {
	t.Helper()
	return []category.Category{
		makeCategory(t, "Running Shoes", "running-shoes",
			makeAttr(t, "brand", []string{"Nike", "Adidas", "Puma"}),
			makeAttr(t, "colour", []string{"red", "blue", "black"}),
		),
		makeCategory(t, "Televisions", "televisions",
			makeAttr(t, "brand", []string{"Sony", "Samsung", "LG"}),
		),
	}
}

func TestHeuristic_EmptyQuery(t *testing.T) {
	h := NewHeuristic()
	res, err := h.Parse(context.Background(), "   ", nil, Vocabulary{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.CategorySlug != "" || res.Filters.Len() != 0 {
		t.Errorf("expected empty result, got %+v", res)
	}
}

func TestHeuristic_CategoryAndPriceCap(t *testing.T) {
	cats := testCatalog(t)
	h := NewHeuristic()

	res, err := h.Parse(context.Background(), "running shoes under 150", cats, BuildVocabulary(cats))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.CategorySlug != "running-shoes" {
		t.Errorf("category: got %q", res.CategorySlug)
	}

	c, ok := res.Filters.Get(filterset.PriceKey)
	if !ok || c.Kind() != filterset.KindRange {
		t.Fatal("expected a price range")
	}
	r := c.Range()
	if r.Min() != nil {
		t.Errorf("min should be unbounded, got %v", *r.Min())
	}
	if r.Max() == nil || *r.Max() != 150 {
		t.Errorf("max: got %v", r.Max())
	}
}

func TestHeuristic_LowerBoundCue(t *testing.T) {
	cats := testCatalog(t)
	h := NewHeuristic()

	res, _ := h.Parse(context.Background(), "televisions over 500", cats, BuildVocabulary(cats))

	if res.CategorySlug != "televisions" {
		t.Errorf("category: got %q", res.CategorySlug)
	}
	c, _ := res.Filters.Get(filterset.PriceKey)
	r := c.Range()
	if r.Min() == nil || *r.Min() != 500 {
		t.Errorf("min: got %v", r.Min())
	}
	if r.Max() != nil {
		t.Errorf("max should be unbounded, got %v", *r.Max())
	}
}

func TestHeuristic_BareNumber_ExactPrice(t *testing.T) {
	h := NewHeuristic()

	res, _ := h.Parse(context.Background(), "99 special", nil, Vocabulary{})

	c, ok := res.Filters.Get(filterset.PriceKey)
	if !ok {
		t.Fatal("expected a price constraint")
	}
	r := c.Range()
	if r.Min() == nil || r.Max() == nil || *r.Min() != 99 || *r.Max() != 99 {
		t.Errorf("expected exact 99, got min=%v max=%v", r.Min(), r.Max())
	}
}

func TestHeuristic_AttributeValues(t *testing.T) {
	cats := testCatalog(t)
	h := NewHeuristic()

	res, _ := h.Parse(context.Background(), "red nike running shoes", cats, BuildVocabulary(cats))

	c, ok := res.Filters.Get("brand")
	if !ok || c.Kind() != filterset.KindScalar {
		t.Fatal("expected scalar brand constraint")
	}
	// Matching is case-insensitive but the canonical casing is kept.
	if s, _ := c.Value().AsString(); s != "Nike" {
		t.Errorf("brand: got %q", s)
	}

	c, ok = res.Filters.Get("colour")
	if !ok {
		t.Fatal("expected colour constraint")
	}
	if s, _ := c.Value().AsString(); s != "red" {
		t.Errorf("colour: got %q", s)
	}
}

func TestHeuristic_MultipleValues_OneOf(t *testing.T) {
	cats := testCatalog(t)
	h := NewHeuristic()

	res, _ := h.Parse(context.Background(), "red or blue shoes", cats, BuildVocabulary(cats))

	c, ok := res.Filters.Get("colour")
	if !ok || c.Kind() != filterset.KindOneOf {
		t.Fatalf("expected one-of colour constraint, got %v", c.Kind())
	}
	if len(c.Values()) != 2 {
		t.Errorf("expected 2 colours, got %d", len(c.Values()))
	}
}

func TestHeuristic_FirstCategoryWins(t *testing.T) {
	cats := []category.Category{
		makeCategory(t, "Shoes", "shoes"),
		makeCategory(t, "Running Shoes", "running-shoes"),
	}
	h := NewHeuristic()

	res, _ := h.Parse(context.Background(), "running shoes", cats, BuildVocabulary(cats))

	// "Shoes" appears first in the catalog and matches as a substring.
	if res.CategorySlug != "shoes" {
		t.Errorf("expected first match to win, got %q", res.CategorySlug)
	}
}

func TestBuildVocabulary_UnionAndOrder(t *testing.T) {
	cats := testCatalog(t)
	v := BuildVocabulary(cats)

	if v.Len() != 2 {
		t.Fatalf("expected 2 keys, got %d", v.Len())
	}
	if v.Keys()[0] != "brand" || v.Keys()[1] != "colour" {
		t.Errorf("key order: got %v", v.Keys())
	}

	brands := v.Values("brand")
	want := []string{"Nike", "Adidas", "Puma", "Sony", "Samsung", "LG"}
	if len(brands) != len(want) {
		t.Fatalf("brand union: got %v", brands)
	}
	for i, b := range want {
		if brands[i] != b {
			t.Errorf("brand[%d]: got %q, want %q", i, brands[i], b)
		}
	}
}

func TestBuildVocabulary_SkipsOptionless(t *testing.T) {
	numAttr, err := attribute.New("weight", "Weight", attribute.Number, nil)
	if err != nil {
		t.Fatalf("attribute.New: %v", err)
	}
	cats := []category.Category{makeCategory(t, "Bikes", "bikes", numAttr)}

	v := BuildVocabulary(cats)
	if v.Len() != 0 {
		t.Errorf("option-less attributes should not enter the vocabulary, got %v", v.Keys())
	}
}
