package frame

import (
	"fmt"
	"math"
	"strconv"
)

// Kind identifies the type of an argument value.
// Classification is determined by surface syntax at parse time, never
// by the value itself: a token with a decimal point is always a Float,
// a bare digit run is always an Int, yes/no are always Bools.
type Kind uint8

const (
	// KindInvalid is the zero value; no valid argument has this kind.
	KindInvalid Kind = 0

	// KindInt is an integer literal: optional sign, digits, no decimal point.
	KindInt Kind = 1

	// KindFloat is a float literal: optional sign, digits, a mandatory
	// decimal point, digits.
	KindFloat Kind = 2

	// KindBool is a boolean literal: the wire tokens yes and no.
	KindBool Kind = 3

	// KindString is a quote-delimited string literal.
	KindString Kind = 4
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindInt:
		return "Int"
	case KindFloat:
		return "Float"
	case KindBool:
		return "Bool"
	case KindString:
		return "String"
	default:
		return "Invalid"
	}
}

// IsValid returns true if the kind is one of the four argument kinds.
func (k Kind) IsValid() bool {
	return k >= KindInt && k <= KindString
}

// Value is one typed argument of a frame: a tagged union of the four
// literal kinds. The zero Value has KindInvalid and never appears in a
// parsed or validated frame.
type Value struct {
	kind Kind
	i    int64
	f    float64
	b    bool
	s    string
}

// Int returns an integer value.
func Int(v int64) Value {
	return Value{kind: KindInt, i: v}
}

// Float returns a float value.
func Float(v float64) Value {
	return Value{kind: KindFloat, f: v}
}

// Bool returns a boolean value.
func Bool(v bool) Value {
	return Value{kind: KindBool, b: v}
}

// Str returns a string value.
func Str(v string) Value {
	return Value{kind: KindString, s: v}
}

// Kind returns the value's kind.
func (v Value) Kind() Kind {
	return v.kind
}

// AsInt returns the integer value. The second return is false if the
// kind is not KindInt.
func (v Value) AsInt() (int64, bool) {
	return v.i, v.kind == KindInt
}

// AsFloat returns the float value. The second return is false if the
// kind is not KindFloat.
func (v Value) AsFloat() (float64, bool) {
	return v.f, v.kind == KindFloat
}

// AsBool returns the boolean value. The second return is false if the
// kind is not KindBool.
func (v Value) AsBool() (bool, bool) {
	return v.b, v.kind == KindBool
}

// AsString returns the string value. The second return is false if the
// kind is not KindString.
func (v Value) AsString() (string, bool) {
	return v.s, v.kind == KindString
}

// Equal returns true if both values have the same kind and content.
func (v Value) Equal(o Value) bool {
	return v == o
}

// String returns the display form of the value. This is NOT the wire
// form: booleans display as true/false while the wire strictly uses
// yes/no, and strings display with Go quoting. Use Frame.Encode to
// produce wire text.
func (v Value) String() string {
	switch v.kind {
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return formatFloat(v.f)
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindString:
		return strconv.Quote(v.s)
	default:
		return "<invalid>"
	}
}

// validate checks that the value can be reproduced by the grammar.
func (v Value) validate() error {
	switch v.kind {
	case KindInt, KindBool:
		return nil

	case KindFloat:
		// The grammar has no token for NaN or infinities.
		if !isFinite(v.f) {
			return &ValidationError{Field: "argument", Reason: fmt.Sprintf("float %v has no wire representation", v.f)}
		}
		return nil

	case KindString:
		for i := 0; i < len(v.s); i++ {
			if v.s[i] == '\r' || v.s[i] == '\n' {
				return &ValidationError{Field: "argument", Reason: "string contains a line terminator, which the grammar cannot escape"}
			}
		}
		// A trailing backslash would escape the closing quote on re-parse.
		if len(v.s) > 0 && v.s[len(v.s)-1] == '\\' {
			return &ValidationError{Field: "argument", Reason: "string ends with a backslash, which would escape the closing quote"}
		}
		return nil

	default:
		return &ValidationError{Field: "argument", Reason: "invalid value kind"}
	}
}

// appendWire appends the wire-format token for the value.
// Assumes the value passed validate.
func (v Value) appendWire(dst []byte) []byte {
	switch v.kind {
	case KindInt:
		return strconv.AppendInt(dst, v.i, 10)

	case KindFloat:
		return append(dst, formatFloat(v.f)...)

	case KindBool:
		if v.b {
			return append(dst, "yes"...)
		}
		return append(dst, "no"...)

	case KindString:
		dst = append(dst, '"')
		for i := 0; i < len(v.s); i++ {
			if v.s[i] == '"' {
				dst = append(dst, '\\', '"')
			} else {
				dst = append(dst, v.s[i])
			}
		}
		return append(dst, '"')

	default:
		return dst
	}
}

// formatFloat renders a float with a mandatory decimal point and at
// least one fractional digit, as the grammar requires. 2.0 stays "2.0"
// and never collapses to "2".
func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	for i := 0; i < len(s); i++ {
		if s[i] == '.' {
			return s
		}
	}
	return s + ".0"
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
