package category

import (
	"fmt"
	"strings"
	"testing"

	"github.com/openlistings/searchd/internal/domain/category/attribute"
)

func mustAttr(t *testing.T, key string) attribute.Definition {
	t.Helper()
	def, err := attribute.New(key, key, attribute.String, nil)
	if err != nil {
		t.Fatalf("attribute.New(%q): %v", key, err)
	}
	return def
}

func TestNew_Valid(t *testing.T) {
	cat, err := New("Running Shoes", "running-shoes", []string{"sneakers"},
		[]attribute.Definition{mustAttr(t, "brand")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cat.Slug() != "running-shoes" || !cat.HasSchema() {
		t.Errorf("category: %q, schema %v", cat.Slug(), cat.Schema())
	}
	if cat.CreatedAt() == 0 {
		t.Error("created_at should be stamped")
	}
}

func TestNew_EmptySchemaAllowed(t *testing.T) {
	cat, err := New("Misc", "misc", nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cat.HasSchema() {
		t.Error("empty schema should report HasSchema false")
	}
}

func TestNew_SlugValidation(t *testing.T) {
	bad := []string{
		"",
		"All",      // uppercase
		"all",      // reserved sentinel
		"-leading", // must start alphanumeric
		"has space",
		"ünïcode",
		strings.Repeat("a", 65),
	}
	for _, slug := range bad {
		if _, err := New("Name", slug, nil, nil); err == nil {
			t.Errorf("slug %q should be rejected", slug)
		}
	}

	good := []string{"a", "tvs", "running-shoes", "cat-2", strings.Repeat("a", 64)}
	for _, slug := range good {
		if _, err := New("Name", slug, nil, nil); err != nil {
			t.Errorf("slug %q should be accepted: %v", slug, err)
		}
	}
}

func TestNew_SchemaValidation(t *testing.T) {
	dup := []attribute.Definition{mustAttr(t, "brand"), mustAttr(t, "brand")}
	if _, err := New("Name", "dup", nil, dup); err == nil {
		t.Error("duplicate attribute keys should be rejected")
	}

	big := make([]attribute.Definition, 65)
	for i := range big {
		big[i] = mustAttr(t, fmt.Sprintf("attr%d", i))
	}
	if _, err := New("Name", "big", nil, big); err == nil {
		t.Error("more than 64 attributes should be rejected")
	}
}

func TestAttributeByKey(t *testing.T) {
	cat, err := New("Shoes", "shoes", nil,
		[]attribute.Definition{mustAttr(t, "brand"), mustAttr(t, "colour")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if def, ok := cat.AttributeByKey("colour"); !ok || def.Key() != "colour" {
		t.Errorf("lookup: %v %v", def, ok)
	}
	if _, ok := cat.AttributeByKey("size"); ok {
		t.Error("missing key should report false")
	}
}
