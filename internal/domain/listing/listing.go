package listing

import (
	"fmt"
	"regexp"
	"time"
)

var idRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// MaxDescriptionSize is the maximum listing description size in bytes.
const MaxDescriptionSize = 65536 // 64KB

// Listing is the catalog listing aggregate (immutable value object).
// The attributes map is an opaque dynamic payload that should conform to the
// owning category's schema but is not structurally validated here; filters
// and facets degrade gracefully on malformed or missing keys.
type Listing struct {
	id          string
	title       string
	description string
	price       float64
	location    string
	category    string
	attributes  map[string]Value
	createdAt   int64
}

// New validates and creates a Listing.
// ID: ^[a-zA-Z0-9_-]+$, 1-256 chars. Title is required; price must not be
// negative. Category is the owning category slug, immutable after creation.
func New(
	id, title, description string, price float64,
	location, categorySlug string, attributes map[string]Value,
) (Listing, error) {
	if id == "" {
		return Listing{}, fmt.Errorf("listing ID is required")
	}
	if len(id) > 256 {
		return Listing{}, fmt.Errorf("listing ID too long (max 256)")
	}
	if !idRegex.MatchString(id) {
		return Listing{}, fmt.Errorf("listing ID must be alphanumeric with underscores and hyphens")
	}
	if title == "" {
		return Listing{}, fmt.Errorf("title is required")
	}
	if len(description) > MaxDescriptionSize {
		return Listing{}, fmt.Errorf("description too large (max %d bytes)", MaxDescriptionSize)
	}
	if price < 0 {
		return Listing{}, fmt.Errorf("price must not be negative")
	}
	if categorySlug == "" {
		return Listing{}, fmt.Errorf("category slug is required")
	}

	return Listing{
		id:          id,
		title:       title,
		description: description,
		price:       price,
		location:    location,
		category:    categorySlug,
		attributes:  cloneValueMap(attributes),
		createdAt:   time.Now().UnixMilli(),
	}, nil
}

// Reconstruct creates a Listing without validation (storage hydration).
func Reconstruct(
	id, title, description string, price float64,
	location, categorySlug string, attributes map[string]Value, createdAt int64,
) Listing {
	return Listing{
		id: id, title: title, description: description, price: price,
		location: location, category: categorySlug, attributes: attributes,
		createdAt: createdAt,
	}
}

// ID returns the listing identifier.
func (l *Listing) ID() string { return l.id }

// Title returns the listing title.
func (l *Listing) Title() string { return l.title }

// Description returns the listing description.
func (l *Listing) Description() string { return l.description }

// Price returns the listing price.
func (l *Listing) Price() float64 { return l.price }

// Location returns the free-form location string.
func (l *Listing) Location() string { return l.location }

// Category returns the owning category slug.
func (l *Listing) Category() string { return l.category }

// Attributes returns the dynamic attribute payload.
func (l *Listing) Attributes() map[string]Value { return l.attributes }

// CreatedAt returns the creation timestamp (unix millis).
func (l *Listing) CreatedAt() int64 { return l.createdAt }

// Attribute looks up one attribute value; ok is false when the key is absent.
func (l *Listing) Attribute(key string) (Value, bool) {
	v, ok := l.attributes[key]
	return v, ok
}

func cloneValueMap(m map[string]Value) map[string]Value {
	if m == nil {
		return nil
	}
	c := make(map[string]Value, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}
