package attribute

import "fmt"

// Type is the value type of an attribute.
type Type string

// Attribute value types.
const (
	String  Type = "string"
	Number  Type = "number"
	Boolean Type = "boolean"
)

// IsValid checks if the attribute type is supported.
func (t Type) IsValid() bool {
	return t == String || t == Number || t == Boolean
}

// Definition is an immutable value object describing one attribute of a
// category schema. Key is the stable identifier used in filters and facets;
// Options, when present, enumerate the universe of valid values.
type Definition struct {
	key     string
	label   string
	attType Type
	options []string
}

// New validates and creates a Definition.
// Key must be non-empty, max 64 chars. Options are only meaningful for
// string/boolean attributes; numeric attributes are free-form.
func New(key, label string, t Type, options []string) (Definition, error) {
	if key == "" {
		return Definition{}, fmt.Errorf("attribute key is required")
	}
	if len(key) > 64 {
		return Definition{}, fmt.Errorf("attribute key %q too long (max 64)", key)
	}
	if !t.IsValid() {
		return Definition{}, fmt.Errorf("invalid attribute type %q for %q", t, key)
	}
	if t == Number && len(options) > 0 {
		return Definition{}, fmt.Errorf("numeric attribute %q cannot enumerate options", key)
	}
	for _, o := range options {
		if o == "" {
			return Definition{}, fmt.Errorf("attribute %q has an empty option value", key)
		}
	}
	if label == "" {
		label = key
	}
	return Definition{key: key, label: label, attType: t, options: options}, nil
}

// Reconstruct creates a Definition without validation (storage hydration).
func Reconstruct(key, label string, t Type, options []string) Definition {
	return Definition{key: key, label: label, attType: t, options: options}
}

// Key returns the stable attribute identifier.
func (d Definition) Key() string { return d.key }

// Label returns the display label.
func (d Definition) Label() string { return d.label }

// AttrType returns the attribute value type.
func (d Definition) AttrType() Type { return d.attType }

// Options returns the enumerated value universe (nil for free-form attributes).
func (d Definition) Options() []string { return d.options }
