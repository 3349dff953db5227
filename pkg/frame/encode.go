package frame

import "strconv"

// Encode renders the frame's canonical wire form: sequence id, colon,
// identifier, each argument preceded by a single space, and exactly
// one trailing newline. The canonical form is a strict subset of what
// Parse accepts (which tolerates tab/space runs and CR/LF runs), so
// re-encoding a parsed frame normalizes whitespace but never changes
// its meaning.
//
// Encode is total for any frame produced by Parse or New; validation
// happens at construction, not here.
func (f *Frame) Encode() string {
	return string(f.AppendEncode(nil))
}

// AppendEncode appends the canonical wire form to dst and returns the
// extended slice. It allows callers on a hot send path to reuse one
// buffer across frames.
func (f *Frame) AppendEncode(dst []byte) []byte {
	if f.seq.wildcard {
		dst = append(dst, '*')
	} else {
		dst = strconv.AppendUint(dst, uint64(f.seq.value), 10)
	}
	dst = append(dst, ':')
	dst = append(dst, f.id...)
	for _, a := range f.args {
		dst = append(dst, ' ')
		dst = a.appendWire(dst)
	}
	return append(dst, '\n')
}
