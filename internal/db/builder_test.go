package db

import (
	"strings"
	"testing"
)

func TestBuilder_Defaults(t *testing.T) {
	def, err := NewIndex("idx").Tag("category").Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if def.StorageType != StorageHash {
		t.Errorf("default storage: got %v", def.StorageType)
	}
}

func TestBuilder_JSONIndexWithAliases(t *testing.T) {
	def, err := NewIndex("listings:catalog:idx").
		OnJSON().
		Prefix("listings:listing:").
		TextAs("$.title", "title").
		NumericAs("$.price", "price").Sortable().
		TagAs("$.category", "category").
		NumericAs("$.created_at", "created_at").Sortable().
		Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if def.StorageType != StorageJSON {
		t.Errorf("storage: got %v", def.StorageType)
	}
	if len(def.Prefixes) != 1 || def.Prefixes[0] != "listings:listing:" {
		t.Errorf("prefixes: got %v", def.Prefixes)
	}
	if len(def.Fields) != 4 {
		t.Fatalf("fields: got %d", len(def.Fields))
	}

	price := def.Fields[1]
	if price.Name != "$.price" || price.Alias != "price" || !price.Sortable {
		t.Errorf("price field: %+v", price)
	}
	if def.Fields[2].Sortable {
		t.Error("Sortable must only mark the most recent field")
	}
}

func TestBuilder_String(t *testing.T) {
	def := NewIndex("idx").
		OnJSON().
		Prefix("doc:").
		TagAs("$.attrs_kv[*]", "attrs").
		Numeric("price").Sortable().
		MustBuild()

	s := def.String()
	for _, want := range []string{
		"FT.CREATE idx", "ON JSON", "PREFIX doc:",
		"$.attrs_kv[*] AS attrs TAG", "price NUMERIC SORTABLE",
	} {
		if !strings.Contains(s, want) {
			t.Errorf("String() missing %q: %s", want, s)
		}
	}
}

func TestBuilder_ValidateErrors(t *testing.T) {
	if _, err := NewIndex("").Tag("x").Build(); err == nil {
		t.Error("empty name should fail")
	}
	if _, err := NewIndex("bad name").Tag("x").Build(); err == nil {
		t.Error("name with space should fail")
	}
	if _, err := NewIndex("idx").Build(); err == nil {
		t.Error("no fields should fail")
	}
	if _, err := NewIndex("idx").Tag("a").Tag("a").Build(); err == nil {
		t.Error("duplicate field should fail")
	}
	if _, err := NewIndex("idx").TagAs("$.a", "x").TagAs("$.b", "x").Build(); err == nil {
		t.Error("duplicate alias should fail")
	}
}

func TestIsValidIdentifier(t *testing.T) {
	valid := []string{"idx", "listings:cat:running-shoes:idx", "attr_brand", "A-1_b:c"}
	for _, s := range valid {
		if !IsValidIdentifier(s) {
			t.Errorf("%q should be valid", s)
		}
	}
	invalid := []string{"", "has space", "semi;colon", "star*"}
	for _, s := range invalid {
		if IsValidIdentifier(s) {
			t.Errorf("%q should be invalid", s)
		}
	}
}

func TestFilterSpec_IsEmpty(t *testing.T) {
	if !(FilterSpec{}).IsEmpty() {
		t.Error("zero spec should be empty")
	}
	if (FilterSpec{Text: "shoes"}).IsEmpty() {
		t.Error("spec with text should not be empty")
	}
	if (FilterSpec{Tags: []TagFilter{{Field: "category", Values: []string{"tvs"}}}}).IsEmpty() {
		t.Error("spec with tags should not be empty")
	}
}
