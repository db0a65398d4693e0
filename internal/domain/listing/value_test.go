package listing

import (
	"encoding/json"
	"testing"
)

func TestValue_Render(t *testing.T) {
	tests := []struct {
		v    Value
		want string
	}{
		{StringValue("Nike"), "Nike"},
		{NumberValue(64), "64"},
		{NumberValue(3.5), "3.5"},
		{BoolValue(true), "true"},
		{BoolValue(false), "false"},
	}
	for _, tc := range tests {
		if got := tc.v.Render(); got != tc.want {
			t.Errorf("Render(%v): got %q, want %q", tc.v, got, tc.want)
		}
	}
}

func TestValue_IsZero(t *testing.T) {
	zero := []Value{StringValue(""), NumberValue(0), BoolValue(false), {}}
	for _, v := range zero {
		if !v.IsZero() {
			t.Errorf("%v should be zero", v)
		}
	}
	nonzero := []Value{StringValue("x"), NumberValue(1), BoolValue(true)}
	for _, v := range nonzero {
		if v.IsZero() {
			t.Errorf("%v should not be zero", v)
		}
	}
}

func TestValue_JSONRoundTrip(t *testing.T) {
	in := map[string]Value{
		"brand":   StringValue("Sony"),
		"storage": NumberValue(256),
		"smartTV": BoolValue(true),
	}

	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var out map[string]Value
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if s, ok := out["brand"].AsString(); !ok || s != "Sony" {
		t.Errorf("brand: %v", out["brand"])
	}
	if n, ok := out["storage"].AsNumber(); !ok || n != 256 {
		t.Errorf("storage: %v", out["storage"])
	}
	if b, ok := out["smartTV"].AsBool(); !ok || !b {
		t.Errorf("smartTV: %v", out["smartTV"])
	}
}

func TestFromAny(t *testing.T) {
	if v, err := FromAny("red"); err != nil || v.Kind() != KindString {
		t.Errorf("string: %v, %v", v, err)
	}
	if v, err := FromAny(12.5); err != nil || v.Kind() != KindNumber {
		t.Errorf("float: %v, %v", v, err)
	}
	if v, err := FromAny(true); err != nil || v.Kind() != KindBool {
		t.Errorf("bool: %v, %v", v, err)
	}
	if _, err := FromAny([]any{"red"}); err == nil {
		t.Error("arrays must be rejected")
	}
	if _, err := FromAny(nil); err == nil {
		t.Error("null must be rejected")
	}
}
