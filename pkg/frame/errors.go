package frame

import "fmt"

// SyntaxError reports the first position at which a line failed to
// match the grammar. Parsing is all-or-nothing: no partial frame is
// ever produced alongside a SyntaxError.
type SyntaxError struct {
	// Offset is the byte offset of the first unmatched position.
	Offset int

	// Expected names the grammar rule expected at that position.
	Expected string
}

// Error implements the error interface.
func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at offset %d: expected %s", e.Offset, e.Expected)
}

// ValidationError reports a frame constructed with an identifier or
// argument value the grammar cannot reproduce. Construction rejects
// such frames so that every buildable frame round-trips through
// Encode and Parse.
type ValidationError struct {
	// Field is the frame part that failed validation
	// ("identifier" or "argument").
	Field string

	// Reason describes why the value is not encodable.
	Reason string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
