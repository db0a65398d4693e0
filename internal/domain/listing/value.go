package listing

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Kind discriminates the variants of an attribute Value.
type Kind int

// Value kinds.
const (
	KindString Kind = iota
	KindNumber
	KindBool
)

// Value is the tagged-union scalar stored in a listing's attributes map:
// string, number, or boolean. Attribute payloads are dynamic, so lookups
// must never assume a particular variant.
type Value struct {
	kind Kind
	str  string
	num  float64
	b    bool
}

// StringValue creates a string Value.
func StringValue(s string) Value { return Value{kind: KindString, str: s} }

// NumberValue creates a numeric Value.
func NumberValue(n float64) Value { return Value{kind: KindNumber, num: n} }

// BoolValue creates a boolean Value.
func BoolValue(b bool) Value { return Value{kind: KindBool, b: b} }

// Kind returns the variant discriminator.
func (v Value) Kind() Kind { return v.kind }

// AsString returns the string form, ok reports whether the variant matches.
func (v Value) AsString() (string, bool) { return v.str, v.kind == KindString }

// AsNumber returns the numeric form, ok reports whether the variant matches.
func (v Value) AsNumber() (float64, bool) { return v.num, v.kind == KindNumber }

// AsBool returns the boolean form, ok reports whether the variant matches.
func (v Value) AsBool() (bool, bool) { return v.b, v.kind == KindBool }

// IsZero reports whether the value is the falsy form of its variant
// (empty string, 0, false). Falsy filter values never constrain.
func (v Value) IsZero() bool {
	switch v.kind {
	case KindNumber:
		return v.num == 0
	case KindBool:
		return !v.b
	default:
		return v.str == ""
	}
}

// Render returns the canonical text form used for tag indexing and facet
// grouping: numbers without a trailing ".0", booleans as true/false.
func (v Value) Render() string {
	switch v.kind {
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.b)
	default:
		return v.str
	}
}

// MarshalJSON encodes the underlying scalar.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNumber:
		return json.Marshal(v.num)
	case KindBool:
		return json.Marshal(v.b)
	default:
		return json.Marshal(v.str)
	}
}

// UnmarshalJSON decodes a JSON scalar into the matching variant.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode attribute value: %w", err)
	}
	parsed, err := FromAny(raw)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// FromAny converts a decoded JSON scalar into a Value.
func FromAny(raw any) (Value, error) {
	switch t := raw.(type) {
	case string:
		return StringValue(t), nil
	case float64:
		return NumberValue(t), nil
	case bool:
		return BoolValue(t), nil
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return Value{}, fmt.Errorf("decode numeric attribute value %q: %w", t, err)
		}
		return NumberValue(f), nil
	default:
		return Value{}, fmt.Errorf("attribute value must be a string, number, or boolean, got %T", raw)
	}
}
