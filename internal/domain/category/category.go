package category

import (
	"fmt"
	"regexp"
	"time"

	"github.com/openlistings/searchd/internal/domain/category/attribute"
)

var slugRegex = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*$`)

// AllSlug is the sentinel category selector meaning "no category constraint".
const AllSlug = "all"

// Category is the catalog category aggregate (immutable value object).
// The slug is the stable external key; it must never change once listings
// reference it.
type Category struct {
	name      string
	slug      string
	synonyms  []string
	schema    []attribute.Definition
	createdAt int64
}

func validateSlug(slug string) error {
	if slug == "" {
		return fmt.Errorf("category slug is required")
	}
	if len(slug) > 64 {
		return fmt.Errorf("category slug too long (max 64)")
	}
	if slug == AllSlug {
		return fmt.Errorf("category slug %q is reserved", AllSlug)
	}
	if !slugRegex.MatchString(slug) {
		return fmt.Errorf("category slug must be lowercase alphanumeric with hyphens")
	}
	return nil
}

func validateSchema(schema []attribute.Definition) error {
	if len(schema) > 64 {
		return fmt.Errorf("too many attributes (max 64)")
	}
	seen := make(map[string]bool, len(schema))
	for _, a := range schema {
		if seen[a.Key()] {
			return fmt.Errorf("duplicate attribute key: %s", a.Key())
		}
		seen[a.Key()] = true
	}
	return nil
}

// New validates and creates a Category.
// Slug: ^[a-z0-9][a-z0-9-]*$, 1-64 chars, not the "all" sentinel.
// Schema: unique attribute keys, max 64.
func New(name, slug string, synonyms []string, schema []attribute.Definition) (Category, error) {
	if name == "" {
		return Category{}, fmt.Errorf("category name is required")
	}
	if err := validateSlug(slug); err != nil {
		return Category{}, err
	}
	if err := validateSchema(schema); err != nil {
		return Category{}, err
	}

	return Category{
		name:      name,
		slug:      slug,
		synonyms:  synonyms,
		schema:    schema,
		createdAt: time.Now().UnixMilli(),
	}, nil
}

// Reconstruct creates a Category without validation (storage hydration).
func Reconstruct(
	name, slug string, synonyms []string,
	schema []attribute.Definition, createdAt int64,
) Category {
	return Category{name: name, slug: slug, synonyms: synonyms, schema: schema, createdAt: createdAt}
}

// Name returns the display name.
func (c Category) Name() string { return c.name }

// Slug returns the stable external key.
func (c Category) Slug() string { return c.slug }

// Synonyms returns alternate names usable in free text.
func (c Category) Synonyms() []string { return c.synonyms }

// Schema returns the ordered attribute definitions.
func (c Category) Schema() []attribute.Definition { return c.schema }

// CreatedAt returns the creation timestamp (unix millis).
func (c Category) CreatedAt() int64 { return c.createdAt }

// HasSchema reports whether the category carries a usable attribute schema.
func (c Category) HasSchema() bool { return len(c.schema) > 0 }

// AttributeByKey looks up an attribute definition by key.
func (c Category) AttributeByKey(key string) (attribute.Definition, bool) {
	for _, a := range c.schema {
		if a.Key() == key {
			return a, true
		}
	}
	return attribute.Definition{}, false
}
