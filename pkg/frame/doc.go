// Package frame defines the PRPC wire format: a line-oriented frame
// carrying a sequence id, a command identifier, and optional typed
// arguments.
//
// # Wire Format
//
// One frame per line:
//
//	<seq-id>:<identifier>[ <arg>]*\n
//
//	0:hello
//	3:copy "source.txt" "dest.txt"
//	*:gpio/led/value/change yes
//
// The sequence id is an unsigned decimal integer correlating requests
// with responses, or "*" for notifications that expect no response.
// Identifiers use the charset [a-zA-Z0-9-_./]; slashes allow a
// hierarchical command organization (compatible with MQTT-style topic
// trees).
//
// # Argument Literals
//
// There are four argument kinds, classified purely by surface syntax:
//
//   - Int: 3, -203
//   - Float: 2.0, -3.40 (the decimal point is mandatory, even for .0)
//   - Bool: yes / no
//   - String: "quoted, with \" escaping for embedded quotes"
//
// A token with a decimal point is always a Float, never an Int, and
// yes/no are reserved wire tokens for booleans. The wire tokens are
// strictly yes/no; the display form produced by Value.String uses
// true/false and must not be written to the wire.
//
// # Parsing and Encoding
//
// Parse decodes a single terminated line into a Frame or returns a
// *SyntaxError with the offset of the first unmatched byte. Encode is
// the inverse and produces the canonical form: single spaces between
// arguments and a single trailing newline. For every frame the parser
// can produce, Parse(f.Encode()) yields an equal frame.
//
// Frames are immutable once constructed. New rejects values the
// grammar cannot reproduce, so any frame that can be built can also
// be encoded and parsed back.
package frame
