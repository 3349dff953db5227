package frame

import (
	"errors"
	"strings"
	"testing"
)

func TestParseSimpleCommand(t *testing.T) {
	f, err := Parse("0:hello\n")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if f.SeqID() != Seq(0) {
		t.Errorf("SeqID mismatch: got %v, want 0", f.SeqID())
	}
	if f.Identifier() != "hello" {
		t.Errorf("Identifier mismatch: got %q, want %q", f.Identifier(), "hello")
	}
	if f.HasArgs() {
		t.Errorf("expected no arguments, got %d", f.NumArgs())
	}
}

func TestParseWithArgs(t *testing.T) {
	f, err := Parse("0:with_args yes 2.0\n")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if f.Identifier() != "with_args" {
		t.Errorf("Identifier mismatch: got %q", f.Identifier())
	}
	if f.NumArgs() != 2 {
		t.Fatalf("NumArgs mismatch: got %d, want 2", f.NumArgs())
	}
	arg0, _ := f.Arg(0)
	if b, ok := arg0.AsBool(); !ok || !b {
		t.Errorf("arg 0: got %v, want Bool(true)", arg0)
	}
	arg1, _ := f.Arg(1)
	if fl, ok := arg1.AsFloat(); !ok || fl != 2.0 {
		t.Errorf("arg 1: got %v, want Float(2.0)", arg1)
	}
}

func TestParseEscapedString(t *testing.T) {
	f, err := Parse("0:escaped \"escaped \\\"quote\\\"\"\n")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if f.NumArgs() != 1 {
		t.Fatalf("NumArgs mismatch: got %d, want 1", f.NumArgs())
	}
	arg, _ := f.Arg(0)
	s, ok := arg.AsString()
	if !ok {
		t.Fatalf("arg 0: got kind %v, want String", arg.Kind())
	}
	if s != `escaped "quote"` {
		t.Errorf("string mismatch: got %q, want %q", s, `escaped "quote"`)
	}
}

func TestParseWildcard(t *testing.T) {
	f, err := Parse("*:status\n")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if !f.SeqID().IsWildcard() {
		t.Errorf("expected wildcard sequence id, got %v", f.SeqID())
	}
	if f.Identifier() != "status" {
		t.Errorf("Identifier mismatch: got %q", f.Identifier())
	}
	if f.HasArgs() {
		t.Error("expected no arguments")
	}
}

func TestParseLiterals(t *testing.T) {
	tests := []struct {
		name string
		line string
		want Value
	}{
		{"positive int", "0:c 3\n", Int(3)},
		{"negative int", "0:c -203\n", Int(-203)},
		{"zero", "0:c 0\n", Int(0)},
		{"positive float", "0:c 2.0\n", Float(2.0)},
		{"negative float", "0:c -3.40\n", Float(-3.40)},
		{"float with zero fraction stays float", "0:c 7.0\n", Float(7.0)},
		{"bool true", "0:c yes\n", Bool(true)},
		{"bool false", "0:c no\n", Bool(false)},
		{"plain string", "0:c \"hi there\"\n", Str("hi there")},
		{"empty string", "0:c \"\"\n", Str("")},
		{"string with escaped quote", "0:c \"a\\\"b\"\n", Str(`a"b`)},
		{"string of only a quote", "0:c \"\\\"\"\n", Str(`"`)},
		{"string with backslash", "0:c \"a\\b\"\n", Str(`a\b`)},
		{"numeric-looking string", "0:c \"42\"\n", Str("42")},
		{"yes-looking string", "0:c \"yes\"\n", Str("yes")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := Parse(tt.line)
			if err != nil {
				t.Fatalf("Parse(%q) failed: %v", tt.line, err)
			}
			if f.NumArgs() != 1 {
				t.Fatalf("NumArgs: got %d, want 1", f.NumArgs())
			}
			got, _ := f.Arg(0)
			if !got.Equal(tt.want) {
				t.Errorf("arg: got %v (%v), want %v (%v)", got, got.Kind(), tt.want, tt.want.Kind())
			}
		})
	}
}

func TestParseClassificationIsSyntaxOnly(t *testing.T) {
	// A decimal point always makes a Float, even with a zero fraction.
	f, err := Parse("0:c 2.0 2\n")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	a0, _ := f.Arg(0)
	a1, _ := f.Arg(1)
	if a0.Kind() != KindFloat {
		t.Errorf("2.0 classified as %v, want Float", a0.Kind())
	}
	if a1.Kind() != KindInt {
		t.Errorf("2 classified as %v, want Int", a1.Kind())
	}

	// yes/no are reserved boolean tokens.
	f, err = Parse("0:c yes no\n")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	for i := 0; i < 2; i++ {
		a, _ := f.Arg(i)
		if a.Kind() != KindBool {
			t.Errorf("arg %d classified as %v, want Bool", i, a.Kind())
		}
	}
}

func TestParseInputTolerance(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"crlf terminator", "0:hello\r\n"},
		{"multiple terminators", "0:hello\n\n\n"},
		{"cr run terminator", "0:hello\r\r\n"},
		{"trailing spaces", "0:hello   \n"},
		{"trailing tab", "0:hello\t\n"},
		{"tab separated args", "0:c\t1\t2\n"},
		{"multiple blanks between args", "0:c 1   2\n"},
		{"hierarchical identifier", "*:gpio/my_gpio/value/change yes\n"},
		{"identifier with dots and dashes", "4:a-b.c_d/e\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse(tt.line); err != nil {
				t.Errorf("Parse(%q) failed: %v", tt.line, err)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name       string
		line       string
		wantOffset int
	}{
		{"missing separator", "0hello\n", 1},
		{"empty input", "", 0},
		{"no sequence id", ":hello\n", 0},
		{"negative sequence id", "-1:hello\n", 0},
		{"empty identifier", "0:\n", 2},
		{"identifier charset violation", "0:!\n", 2},
		{"missing line terminator", "0:hello", 7},
		{"unterminated string", "0:c \"abc\n", 8},
		{"string closed by escaped quote", "0:c \"abc\\\"\n", 10},
		{"bare dash argument", "0:c -\n", 4},
		{"bad argument token", "0:c @\n", 4},
		// "2." commits to Int(2), leaving "." unmatched at the next
		// argument position.
		{"float missing fraction", "0:c 2.\n", 5},
		{"garbage after args", "0:c 1 ~\n", 6},
		{"text after terminator", "0:a\nx", 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := Parse(tt.line)
			if err == nil {
				t.Fatalf("Parse(%q) succeeded with %v, want error", tt.line, f)
			}
			var syntaxErr *SyntaxError
			if !errors.As(err, &syntaxErr) {
				t.Fatalf("error type: got %T, want *SyntaxError", err)
			}
			if syntaxErr.Offset != tt.wantOffset {
				t.Errorf("offset: got %d, want %d (%v)", syntaxErr.Offset, tt.wantOffset, err)
			}
			if f != nil {
				t.Error("partial frame returned alongside error")
			}
		})
	}
}

func TestParseNumericRangeErrors(t *testing.T) {
	// Digit runs that match the grammar but overflow int64 or float64
	// are rejected with a range-specific error at the token start.
	tests := []struct {
		name         string
		line         string
		wantExpected string
	}{
		{"int beyond int64", "0:c 99999999999999999999\n", "integer in 64-bit range"},
		{"negative int beyond int64", "0:c -99999999999999999999\n", "integer in 64-bit range"},
		{"float overflowing to infinity", "0:c 1" + strings.Repeat("0", 309) + ".0\n", "float in 64-bit range"},
		{"negative float overflow", "0:c -1" + strings.Repeat("0", 309) + ".0\n", "float in 64-bit range"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.line)
			var syntaxErr *SyntaxError
			if !errors.As(err, &syntaxErr) {
				t.Fatalf("Parse(%.12q...): got %T (%v), want *SyntaxError", tt.line, err, err)
			}
			if syntaxErr.Offset != 4 {
				t.Errorf("offset: got %d, want 4", syntaxErr.Offset)
			}
			if syntaxErr.Expected != tt.wantExpected {
				t.Errorf("expected rule: got %q, want %q", syntaxErr.Expected, tt.wantExpected)
			}
		})
	}
}

func TestParseFloatBeforeIntOrder(t *testing.T) {
	// "2.5" must not half-match as Int(2) followed by a stray ".5".
	f, err := Parse("0:c 2.5\n")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if f.NumArgs() != 1 {
		t.Fatalf("NumArgs: got %d, want 1", f.NumArgs())
	}
	a, _ := f.Arg(0)
	if v, ok := a.AsFloat(); !ok || v != 2.5 {
		t.Errorf("got %v, want Float(2.5)", a)
	}
}
