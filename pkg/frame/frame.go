package frame

import (
	"strconv"
	"strings"
)

// SeqID is a frame's sequence id: either a concrete non-negative
// integer correlating a request with its response, or the wildcard
// used by notifications. The zero SeqID is the concrete id 0.
type SeqID struct {
	value    uint32
	wildcard bool
}

// Wildcard is the sequence id of notification frames, written "*" on
// the wire. A wildcard frame expects no response.
var Wildcard = SeqID{wildcard: true}

// Seq returns a concrete sequence id.
func Seq(n uint32) SeqID {
	return SeqID{value: n}
}

// IsWildcard returns true for the wildcard sequence id.
func (s SeqID) IsWildcard() bool {
	return s.wildcard
}

// Value returns the concrete sequence id. It returns 0 for the
// wildcard; check IsWildcard first.
func (s SeqID) Value() uint32 {
	return s.value
}

// String returns the wire form of the sequence id.
func (s SeqID) String() string {
	if s.wildcard {
		return "*"
	}
	return strconv.FormatUint(uint64(s.value), 10)
}

// Response identifiers. A frame whose identifier is one of these is a
// response completing an outstanding request with the same sequence id.
const (
	IdentifierOK     = "ok"
	IdentifierResult = "result"
	IdentifierError  = "error"
)

// Frame is one decoded PRPC message. Frames are immutable once
// constructed; parsing and encoding never mutate shared state, so
// distinct frames may be used concurrently without synchronization.
type Frame struct {
	seq  SeqID
	id   string
	args []Value
}

// New constructs a frame for encoding. It returns a *ValidationError
// if the identifier or any argument value cannot be reproduced by the
// grammar. A frame built with no arguments carries the explicit
// "no arguments" form, matching what the parser produces for a bare
// command.
func New(seq SeqID, identifier string, args ...Value) (*Frame, error) {
	if identifier == "" {
		return nil, &ValidationError{Field: "identifier", Reason: "must not be empty"}
	}
	for i := 0; i < len(identifier); i++ {
		if !isIdentifierByte(identifier[i]) {
			return nil, &ValidationError{
				Field:  "identifier",
				Reason: strconv.Quote(string(identifier[i])) + " is outside the identifier charset [a-zA-Z0-9-_./]",
			}
		}
	}
	for _, a := range args {
		if err := a.validate(); err != nil {
			return nil, err
		}
	}

	f := &Frame{seq: seq, id: identifier}
	if len(args) > 0 {
		f.args = make([]Value, len(args))
		copy(f.args, args)
	}
	return f, nil
}

// NewNotification constructs a wildcard frame, i.e. a message that
// expects no response.
func NewNotification(identifier string, args ...Value) (*Frame, error) {
	return New(Wildcard, identifier, args...)
}

// SeqID returns the frame's sequence id.
func (f *Frame) SeqID() SeqID {
	return f.seq
}

// Identifier returns the command or response name.
func (f *Frame) Identifier() string {
	return f.id
}

// HasArgs returns true if the frame carries an argument list.
// The grammar never produces an empty argument list: a frame either
// has no arguments at all or has at least one.
func (f *Frame) HasArgs() bool {
	return f.args != nil
}

// NumArgs returns the number of arguments.
func (f *Frame) NumArgs() int {
	return len(f.args)
}

// Arg returns the i-th argument. The second return is false if the
// index is out of range.
func (f *Frame) Arg(i int) (Value, bool) {
	if i < 0 || i >= len(f.args) {
		return Value{}, false
	}
	return f.args[i], true
}

// Args returns a copy of the argument list in wire order, or nil for a
// frame with no arguments.
func (f *Frame) Args() []Value {
	if f.args == nil {
		return nil
	}
	args := make([]Value, len(f.args))
	copy(args, f.args)
	return args
}

// IsResponse returns true if the frame's identifier marks it as a
// response (ok, result or error).
func (f *Frame) IsResponse() bool {
	switch f.id {
	case IdentifierOK, IdentifierResult, IdentifierError:
		return true
	}
	return false
}

// Equal returns true if both frames have the same sequence id,
// identifier and argument sequence. A frame with no arguments is not
// equal to one with an empty argument list; the parser never produces
// the latter.
func (f *Frame) Equal(o *Frame) bool {
	if f == nil || o == nil {
		return f == o
	}
	if f.seq != o.seq || f.id != o.id {
		return false
	}
	if (f.args == nil) != (o.args == nil) || len(f.args) != len(o.args) {
		return false
	}
	for i := range f.args {
		if !f.args[i].Equal(o.args[i]) {
			return false
		}
	}
	return true
}

// String returns a human-readable display form of the frame, without a
// trailing newline. Booleans display as true/false here; the wire form
// produced by Encode strictly uses yes/no.
func (f *Frame) String() string {
	var b strings.Builder
	b.WriteString(f.seq.String())
	b.WriteByte(':')
	b.WriteString(f.id)
	for _, a := range f.args {
		b.WriteByte(' ')
		b.WriteString(a.String())
	}
	return b.String()
}

func isIdentifierByte(c byte) bool {
	return c >= 'a' && c <= 'z' ||
		c >= 'A' && c <= 'Z' ||
		c >= '0' && c <= '9' ||
		c == '-' || c == '_' || c == '.' || c == '/'
}
