package frame

import "strconv"

// Parse decodes one wire-format line into a Frame. The input must be a
// complete line including its terminator (one or more CR/LF bytes);
// splitting a byte stream into lines is the transport's job.
//
// Parsing is a pure function of the input and is all-or-nothing: on
// any mismatch it returns a *SyntaxError carrying the byte offset of
// the first unmatched position and the grammar rule expected there,
// and no frame.
//
// The grammar, with arguments tried in the fixed order
// float, int, string, bool:
//
//	command    <- seq_id ":" identifier (ws argument)* ws line_end
//	seq_id     <- [0-9]+ / "*"
//	identifier <- [a-zA-Z0-9-_./]+
//	argument   <- float / int / string / bool
//	float      <- "-"? [0-9]+ "." [0-9]+
//	int        <- "-"? [0-9]+
//	bool       <- "yes" / "no"
//	string     <- '"' ('\\"' / [^"])* '"'
//	ws         <- [ \t]*
//	line_end   <- [\r\n]+
//
// The parser commits to the first alternative whose syntax matches;
// a token containing a decimal point is always a Float even when its
// fraction is zero, and yes/no always classify as Bool.
//
// Int arguments must fit int64 and floats float64: a digit run that
// matches the grammar but overflows its type gets a range-specific
// SyntaxError, since the encoder could never reproduce the value.
func Parse(line string) (*Frame, error) {
	p := parser{input: line}
	return p.command()
}

// parser is a recursive-descent matcher with explicit position
// tracking. The grammar has no left recursion and bounded lookahead,
// so no general backtracking machinery is needed: only the argument
// alternatives rewind, and only within a single token.
type parser struct {
	input string
	pos   int
}

func (p *parser) command() (*Frame, error) {
	seq, err := p.seqID()
	if err != nil {
		return nil, err
	}
	if p.pos >= len(p.input) || p.input[p.pos] != ':' {
		return nil, &SyntaxError{Offset: p.pos, Expected: `":"`}
	}
	p.pos++

	id, err := p.identifier()
	if err != nil {
		return nil, err
	}

	var args []Value
	for {
		p.skipBlanks()
		if p.atLineEnd() {
			break
		}
		v, err := p.argument()
		if err != nil {
			return nil, err
		}
		args = append(args, v)
	}

	if err := p.lineEnd(); err != nil {
		return nil, err
	}
	return &Frame{seq: seq, id: id, args: args}, nil
}

func (p *parser) seqID() (SeqID, error) {
	if p.pos < len(p.input) && p.input[p.pos] == '*' {
		p.pos++
		return Wildcard, nil
	}
	start := p.pos
	for p.pos < len(p.input) && isDigit(p.input[p.pos]) {
		p.pos++
	}
	if p.pos == start {
		return SeqID{}, &SyntaxError{Offset: start, Expected: "sequence id"}
	}
	n, err := strconv.ParseUint(p.input[start:p.pos], 10, 32)
	if err != nil {
		return SeqID{}, &SyntaxError{Offset: start, Expected: "sequence id in 32-bit range"}
	}
	return Seq(uint32(n)), nil
}

func (p *parser) identifier() (string, error) {
	start := p.pos
	for p.pos < len(p.input) && isIdentifierByte(p.input[p.pos]) {
		p.pos++
	}
	if p.pos == start {
		return "", &SyntaxError{Offset: start, Expected: "identifier"}
	}
	return p.input[start:p.pos], nil
}

// argument tries the alternatives in grammar order, rewinding between
// attempts. The order matters: int would happily consume the digit run
// of a float up to the decimal point.
func (p *parser) argument() (Value, error) {
	start := p.pos
	v, ok, err := p.tryFloat()
	if err != nil {
		return Value{}, err
	}
	if ok {
		return v, nil
	}
	p.pos = start
	v, ok, err = p.tryInt()
	if err != nil {
		return Value{}, err
	}
	if ok {
		return v, nil
	}
	p.pos = start
	if p.pos < len(p.input) && p.input[p.pos] == '"' {
		return p.stringLiteral()
	}
	if v, ok := p.tryBool(); ok {
		return v, nil
	}
	p.pos = start
	return Value{}, &SyntaxError{Offset: start, Expected: "argument"}
}

// tryFloat matches the float production. A token that matches the
// grammar but overflows float64 to infinity is a committed match with
// a range error: no other alternative could consume it, and the
// encoder could never reproduce the value.
func (p *parser) tryFloat() (Value, bool, error) {
	start := p.pos
	if p.pos < len(p.input) && p.input[p.pos] == '-' {
		p.pos++
	}
	if !p.digits() {
		return Value{}, false, nil
	}
	if p.pos >= len(p.input) || p.input[p.pos] != '.' {
		return Value{}, false, nil
	}
	p.pos++
	if !p.digits() {
		return Value{}, false, nil
	}
	f, err := strconv.ParseFloat(p.input[start:p.pos], 64)
	if err != nil {
		return Value{}, false, &SyntaxError{Offset: start, Expected: "float in 64-bit range"}
	}
	return Float(f), true, nil
}

// tryInt matches the int production, rejecting digit runs beyond
// int64 the same way tryFloat rejects overflow.
func (p *parser) tryInt() (Value, bool, error) {
	start := p.pos
	if p.pos < len(p.input) && p.input[p.pos] == '-' {
		p.pos++
	}
	if !p.digits() {
		return Value{}, false, nil
	}
	i, err := strconv.ParseInt(p.input[start:p.pos], 10, 64)
	if err != nil {
		return Value{}, false, &SyntaxError{Offset: start, Expected: "integer in 64-bit range"}
	}
	return Int(i), true, nil
}

func (p *parser) tryBool() (Value, bool) {
	rest := p.input[p.pos:]
	if len(rest) >= 3 && rest[:3] == "yes" {
		p.pos += 3
		return Bool(true), true
	}
	if len(rest) >= 2 && rest[:2] == "no" {
		p.pos += 2
		return Bool(false), true
	}
	return Value{}, false
}

// stringLiteral consumes a quote-delimited string. The body is a
// sequence of backslash-escaped quotes or any byte other than an
// unescaped quote; a line terminator inside the body means the closing
// quote was never seen on this line.
func (p *parser) stringLiteral() (Value, error) {
	p.pos++ // opening quote
	var body []byte
	for {
		if p.pos >= len(p.input) || p.input[p.pos] == '\r' || p.input[p.pos] == '\n' {
			return Value{}, &SyntaxError{Offset: p.pos, Expected: `closing '"'`}
		}
		c := p.input[p.pos]
		if c == '"' {
			p.pos++
			return Str(string(body)), nil
		}
		if c == '\\' && p.pos+1 < len(p.input) && p.input[p.pos+1] == '"' {
			body = append(body, '"')
			p.pos += 2
			continue
		}
		body = append(body, c)
		p.pos++
	}
}

// lineEnd consumes one or more CR/LF bytes and requires them to run to
// the end of the input.
func (p *parser) lineEnd() error {
	start := p.pos
	for p.pos < len(p.input) && (p.input[p.pos] == '\r' || p.input[p.pos] == '\n') {
		p.pos++
	}
	if p.pos == start || p.pos != len(p.input) {
		return &SyntaxError{Offset: p.pos, Expected: "line terminator"}
	}
	return nil
}

func (p *parser) digits() bool {
	start := p.pos
	for p.pos < len(p.input) && isDigit(p.input[p.pos]) {
		p.pos++
	}
	return p.pos > start
}

func (p *parser) skipBlanks() {
	for p.pos < len(p.input) && (p.input[p.pos] == ' ' || p.input[p.pos] == '\t') {
		p.pos++
	}
}

func (p *parser) atLineEnd() bool {
	return p.pos >= len(p.input) || p.input[p.pos] == '\r' || p.input[p.pos] == '\n'
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
