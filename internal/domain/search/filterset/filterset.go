// Package filterset models the merged filter state of a search request: a
// mapping from attribute key (or the reserved "price" key) to a scalar
// constraint, an OR set of scalars, or a numeric price range.
package filterset

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/openlistings/searchd/internal/domain"
	"github.com/openlistings/searchd/internal/domain/listing"
)

// PriceKey is the reserved filter key for the listing price range.
const PriceKey = "price"

// MaxKeys bounds the number of filter keys accepted from a client payload.
const MaxKeys = 32

// Kind discriminates constraint variants.
type Kind int

// Constraint kinds.
const (
	KindScalar Kind = iota
	KindOneOf
	KindRange
)

// Range is a numeric range with optional, independently applicable bounds.
// A Range with neither bound set constrains nothing.
type Range struct {
	min *float64
	max *float64
}

// NewRange creates a Range. Either bound may be nil.
func NewRange(min, max *float64) Range { return Range{min: min, max: max} }

// Exact creates a degenerate Range matching exactly one price.
func Exact(v float64) Range { return Range{min: &v, max: &v} }

// Min returns the lower bound, nil when unbounded below.
func (r Range) Min() *float64 { return r.min }

// Max returns the upper bound, nil when unbounded above.
func (r Range) Max() *float64 { return r.max }

// IsEmpty reports whether neither bound is set.
func (r Range) IsEmpty() bool { return r.min == nil && r.max == nil }

// Constraint is a single filter clause: one scalar (equality), a set of
// scalars (OR membership), or a price range.
type Constraint struct {
	kind   Kind
	scalar listing.Value
	values []listing.Value
	rng    Range
}

// Scalar creates an equality constraint.
func Scalar(v listing.Value) Constraint { return Constraint{kind: KindScalar, scalar: v} }

// OneOf creates an OR membership constraint.
func OneOf(vs []listing.Value) Constraint { return Constraint{kind: KindOneOf, values: vs} }

// PriceRange creates a price range constraint.
func PriceRange(r Range) Constraint { return Constraint{kind: KindRange, rng: r} }

// Kind returns the variant discriminator.
func (c Constraint) Kind() Kind { return c.kind }

// Value returns the scalar of an equality constraint.
func (c Constraint) Value() listing.Value { return c.scalar }

// Values returns the members of an OR constraint.
func (c Constraint) Values() []listing.Value { return c.values }

// Range returns the price range of a range constraint.
func (c Constraint) Range() Range { return c.rng }

// IsZero reports whether the constraint would not narrow anything: a falsy
// scalar, a set with no truthy members, or an unbounded range. Zero
// constraints are dropped at compile time, never encoded as "match empty".
func (c Constraint) IsZero() bool {
	switch c.kind {
	case KindScalar:
		return c.scalar.IsZero()
	case KindOneOf:
		for _, v := range c.values {
			if !v.IsZero() {
				return false
			}
		}
		return true
	default:
		return c.rng.IsEmpty()
	}
}

// FilterSet maps attribute keys to constraints. The zero value is usable.
type FilterSet struct {
	entries map[string]Constraint
}

// New creates an empty FilterSet.
func New() FilterSet {
	return FilterSet{entries: make(map[string]Constraint)}
}

// Set stores a constraint under key, replacing any previous one.
func (fs *FilterSet) Set(key string, c Constraint) {
	if fs.entries == nil {
		fs.entries = make(map[string]Constraint)
	}
	fs.entries[key] = c
}

// Get returns the constraint for key.
func (fs FilterSet) Get(key string) (Constraint, bool) {
	c, ok := fs.entries[key]
	return c, ok
}

// Len returns the number of constrained keys.
func (fs FilterSet) Len() int { return len(fs.entries) }

// Keys returns the constrained keys in sorted order for deterministic
// predicate construction.
func (fs FilterSet) Keys() []string {
	keys := make([]string, 0, len(fs.entries))
	for k := range fs.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Merge overlays other onto fs key-by-key and returns the result. Entries in
// other always win: the overlay is shallow, so an overlaid price range fully
// replaces the receiver's price constraint.
func (fs FilterSet) Merge(other FilterSet) FilterSet {
	merged := New()
	for k, c := range fs.entries {
		merged.entries[k] = c
	}
	for k, c := range other.entries {
		merged.entries[k] = c
	}
	return merged
}

// DecodeJSON parses an untrusted client filter payload. Keys map to a JSON
// scalar, an array of scalars, or (for the reserved "price" key) a number or
// an object with optional numeric min/max bounds. Anything else is a
// domain.ErrInvalidFilter. Empty input yields an empty set.
func DecodeJSON(data []byte) (FilterSet, error) {
	fs := New()
	if len(data) == 0 {
		return fs, nil
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return FilterSet{}, fmt.Errorf("%w: %w", domain.ErrInvalidFilter, err)
	}
	if len(raw) > MaxKeys {
		return FilterSet{}, fmt.Errorf("%w: too many filter keys (max %d)", domain.ErrInvalidFilter, MaxKeys)
	}

	for key, msg := range raw {
		c, ok, err := decodeConstraint(key, msg)
		if err != nil {
			return FilterSet{}, err
		}
		if ok {
			fs.Set(key, c)
		}
	}
	return fs, nil
}

func decodeConstraint(key string, msg json.RawMessage) (Constraint, bool, error) {
	var raw any
	if err := json.Unmarshal(msg, &raw); err != nil {
		return Constraint{}, false, fmt.Errorf("%w: key %q: %w", domain.ErrInvalidFilter, key, err)
	}

	switch t := raw.(type) {
	case nil:
		// Absent constraint, not "match only empty".
		return Constraint{}, false, nil

	case []any:
		if len(t) == 0 {
			return Constraint{}, false, nil
		}
		values := make([]listing.Value, 0, len(t))
		for _, item := range t {
			v, err := listing.FromAny(item)
			if err != nil {
				return Constraint{}, false, fmt.Errorf("%w: key %q: %w", domain.ErrInvalidFilter, key, err)
			}
			values = append(values, v)
		}
		if len(values) == 1 {
			return Scalar(values[0]), true, nil
		}
		return OneOf(values), true, nil

	case map[string]any:
		if key != PriceKey {
			return Constraint{}, false,
				fmt.Errorf("%w: key %q: range objects are only valid for %q", domain.ErrInvalidFilter, key, PriceKey)
		}
		r, err := decodeRange(t)
		if err != nil {
			return Constraint{}, false, err
		}
		if r.IsEmpty() {
			return Constraint{}, false, nil
		}
		return PriceRange(r), true, nil

	default:
		v, err := listing.FromAny(raw)
		if err != nil {
			return Constraint{}, false, fmt.Errorf("%w: key %q: %w", domain.ErrInvalidFilter, key, err)
		}
		if key == PriceKey {
			n, ok := v.AsNumber()
			if !ok {
				return Constraint{}, false,
					fmt.Errorf("%w: key %q must be a number or a min/max object", domain.ErrInvalidFilter, key)
			}
			return PriceRange(Exact(n)), true, nil
		}
		return Scalar(v), true, nil
	}
}

func decodeRange(obj map[string]any) (Range, error) {
	var min, max *float64
	for k, v := range obj {
		f, ok := v.(float64)
		if !ok {
			return Range{}, fmt.Errorf("%w: price.%s must be a number", domain.ErrInvalidFilter, k)
		}
		switch k {
		case "min":
			bound := f
			min = &bound
		case "max":
			bound := f
			max = &bound
		default:
			return Range{}, fmt.Errorf("%w: unknown price bound %q", domain.ErrInvalidFilter, k)
		}
	}
	if min != nil && max != nil && *min > *max {
		return Range{}, fmt.Errorf("%w: price.min exceeds price.max", domain.ErrInvalidFilter)
	}
	return Range{min: min, max: max}, nil
}
