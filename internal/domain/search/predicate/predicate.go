// Package predicate holds the canonical compiled form of a search request:
// the structural constraints every retrieval branch (page, count, facets)
// shares, independent of any storage engine syntax.
package predicate

import (
	"github.com/openlistings/searchd/internal/domain/listing"
	"github.com/openlistings/searchd/internal/domain/search/filterset"
)

// Attribute is one compiled attribute clause. A single value means equality,
// multiple values mean OR membership.
type Attribute struct {
	key    string
	values []listing.Value
}

// Key returns the attribute key.
func (a Attribute) Key() string { return a.key }

// Values returns the accepted values.
func (a Attribute) Values() []listing.Value { return a.values }

// Predicate is an immutable conjunction of a category scope, attribute
// clauses, an optional price range, and optional relevance text. Attribute
// clauses are held in sorted key order so equal inputs compile to equal
// predicates.
type Predicate struct {
	category string
	attrs    []Attribute
	price    *filterset.Range
	text     string
}

// Compile builds a Predicate from a merged filter set. Zero constraints
// (falsy scalars, all-falsy sets, unbounded ranges) compile to nothing
// rather than to a clause that matches the empty set. An empty categorySlug
// or the "all" sentinel leaves the predicate category-unscoped, which the
// caller expresses by passing "".
func Compile(fs filterset.FilterSet, categorySlug, text string) Predicate {
	p := Predicate{category: categorySlug, text: text}

	for _, key := range fs.Keys() {
		c, _ := fs.Get(key)
		if c.IsZero() {
			continue
		}
		switch c.Kind() {
		case filterset.KindRange:
			if key == filterset.PriceKey {
				r := c.Range()
				p.price = &r
			}
		case filterset.KindScalar:
			p.attrs = append(p.attrs, Attribute{key: key, values: []listing.Value{c.Value()}})
		case filterset.KindOneOf:
			values := make([]listing.Value, 0, len(c.Values()))
			for _, v := range c.Values() {
				if !v.IsZero() {
					values = append(values, v)
				}
			}
			p.attrs = append(p.attrs, Attribute{key: key, values: values})
		}
	}
	return p
}

// Category returns the category scope, "" when unscoped.
func (p Predicate) Category() string { return p.category }

// Attributes returns the attribute clauses in sorted key order.
func (p Predicate) Attributes() []Attribute { return p.attrs }

// Price returns the price range clause, nil when absent.
func (p Predicate) Price() *filterset.Range { return p.price }

// Text returns the relevance text, "" when the request has none.
func (p Predicate) Text() string { return p.text }

// HasText reports whether the predicate carries relevance text.
func (p Predicate) HasText() bool { return p.text != "" }

// WithoutText returns a copy of the predicate with the relevance text
// removed. Facet branches count over the structural filter alone.
func (p Predicate) WithoutText() Predicate {
	out := p
	out.text = ""
	return out
}

// WithoutKey returns a copy of the predicate with the clause for key
// removed. The "price" key removes the price range; any other key removes
// the matching attribute clause. Facet branches use this so an attribute's
// own constraint never shrinks its value counts.
func (p Predicate) WithoutKey(key string) Predicate {
	out := p
	if key == filterset.PriceKey {
		out.price = nil
		return out
	}
	if len(p.attrs) == 0 {
		return out
	}
	attrs := make([]Attribute, 0, len(p.attrs))
	for _, a := range p.attrs {
		if a.key != key {
			attrs = append(attrs, a)
		}
	}
	out.attrs = attrs
	return out
}
