package frame

import "testing"

func TestKindString(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{KindInt, "Int"},
		{KindFloat, "Float"},
		{KindBool, "Bool"},
		{KindString, "String"},
		{KindInvalid, "Invalid"},
		{Kind(99), "Invalid"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("Kind(%d).String(): got %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestKindIsValid(t *testing.T) {
	for _, k := range []Kind{KindInt, KindFloat, KindBool, KindString} {
		if !k.IsValid() {
			t.Errorf("%v.IsValid() = false", k)
		}
	}
	if KindInvalid.IsValid() {
		t.Error("KindInvalid.IsValid() = true")
	}
	if Kind(99).IsValid() {
		t.Error("Kind(99).IsValid() = true")
	}
}

func TestValueAccessors(t *testing.T) {
	v := Int(-5)
	if got, ok := v.AsInt(); !ok || got != -5 {
		t.Errorf("AsInt: got %d, %v", got, ok)
	}
	if _, ok := v.AsFloat(); ok {
		t.Error("AsFloat succeeded on an Int")
	}
	if _, ok := v.AsBool(); ok {
		t.Error("AsBool succeeded on an Int")
	}
	if _, ok := v.AsString(); ok {
		t.Error("AsString succeeded on an Int")
	}

	if got, ok := Float(1.5).AsFloat(); !ok || got != 1.5 {
		t.Errorf("AsFloat: got %v, %v", got, ok)
	}
	if got, ok := Bool(true).AsBool(); !ok || !got {
		t.Errorf("AsBool: got %v, %v", got, ok)
	}
	if got, ok := Str("x").AsString(); !ok || got != "x" {
		t.Errorf("AsString: got %q, %v", got, ok)
	}
}

func TestValueDisplayString(t *testing.T) {
	tests := []struct {
		value Value
		want  string
	}{
		{Int(3), "3"},
		{Int(-203), "-203"},
		{Float(2.0), "2.0"},
		{Float(-3.4), "-3.4"},
		{Bool(true), "true"},
		{Bool(false), "false"},
		{Str("hi"), `"hi"`},
		{Value{}, "<invalid>"},
	}
	for _, tt := range tests {
		if got := tt.value.String(); got != tt.want {
			t.Errorf("String(): got %q, want %q", got, tt.want)
		}
	}
}

func TestFormatFloatAlwaysHasFraction(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{2.0, "2.0"},
		{-2.0, "-2.0"},
		{0.0, "0.0"},
		{0.5, "0.5"},
		{-3.40, "-3.4"},
		{1000000.0, "1000000.0"},
		{0.0000001, "0.0000001"},
	}
	for _, tt := range tests {
		if got := formatFloat(tt.in); got != tt.want {
			t.Errorf("formatFloat(%v): got %q, want %q", tt.in, got, tt.want)
		}
	}
}
