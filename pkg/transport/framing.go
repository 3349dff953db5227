package transport

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/prpc-protocol/prpc-go/pkg/log"
)

// Framing constants.
const (
	// DefaultMaxLineSize is the default maximum line length in bytes,
	// terminator included (4 KB).
	DefaultMaxLineSize = 4096

	// MaxLogLineSize is the maximum line length to include in log
	// events (1 KB). Longer lines are truncated in the event only.
	MaxLogLineSize = 1024
)

// Framing errors.
var (
	// ErrLineTooLong indicates a line exceeds the maximum length.
	ErrLineTooLong = errors.New("line too long")

	// ErrLineTruncated indicates the stream ended mid-line.
	ErrLineTruncated = errors.New("line truncated")

	// ErrMissingTerminator indicates a write of text without a
	// trailing newline.
	ErrMissingTerminator = errors.New("line missing terminator")
)

// LineWriter writes terminated lines to an underlying writer.
type LineWriter struct {
	w           io.Writer
	maxLineSize int
	mu          sync.Mutex

	// Logging support (optional)
	logger log.Logger
	connID string
}

// NewLineWriter creates a new line writer.
func NewLineWriter(w io.Writer) *LineWriter {
	return &LineWriter{
		w:           w,
		maxLineSize: DefaultMaxLineSize,
	}
}

// NewLineWriterWithMaxSize creates a line writer with a custom max length.
func NewLineWriterWithMaxSize(w io.Writer, maxSize int) *LineWriter {
	return &LineWriter{
		w:           w,
		maxLineSize: maxSize,
	}
}

// SetLogger configures logging for this writer.
// Pass nil to disable logging.
func (lw *LineWriter) SetLogger(logger log.Logger, connID string) {
	lw.logger = logger
	lw.connID = connID
}

// WriteLine writes one terminated line. The line must end with a
// newline, as produced by Frame.Encode.
// Thread-safe: can be called from multiple goroutines.
func (lw *LineWriter) WriteLine(line string) error {
	if len(line) == 0 || line[len(line)-1] != '\n' {
		return ErrMissingTerminator
	}
	if len(line) > lw.maxLineSize {
		return fmt.Errorf("%w: %d > %d", ErrLineTooLong, len(line), lw.maxLineSize)
	}

	lw.mu.Lock()
	defer lw.mu.Unlock()

	if _, err := io.WriteString(lw.w, line); err != nil {
		return fmt.Errorf("failed to write line: %w", err)
	}

	if lw.logger != nil {
		lw.logger.Log(makeLineEvent(lw.connID, line, log.DirectionOut))
	}

	return nil
}

// LineReader reads terminated lines from an underlying reader.
type LineReader struct {
	r           *bufio.Reader
	maxLineSize int

	// Logging support (optional)
	logger log.Logger
	connID string
}

// NewLineReader creates a new line reader.
func NewLineReader(r io.Reader) *LineReader {
	return NewLineReaderWithMaxSize(r, DefaultMaxLineSize)
}

// NewLineReaderWithMaxSize creates a line reader with a custom max length.
func NewLineReaderWithMaxSize(r io.Reader, maxSize int) *LineReader {
	return &LineReader{
		r:           bufio.NewReader(r),
		maxLineSize: maxSize,
	}
}

// SetLogger configures logging for this reader.
// Pass nil to disable logging.
func (lr *LineReader) SetLogger(logger log.Logger, connID string) {
	lr.logger = logger
	lr.connID = connID
}

// SetMaxLineSize updates the maximum line length.
func (lr *LineReader) SetMaxLineSize(size int) {
	lr.maxLineSize = size
}

// ReadLine reads one terminated line, including its terminator.
// Lines consisting only of CR/LF bytes are skipped: the grammar's
// line_end rule accepts terminator runs, so stray blank lines between
// frames carry no content. Reaching the end of the stream mid-line
// returns ErrLineTruncated; a clean end of stream returns io.EOF.
func (lr *LineReader) ReadLine() (string, error) {
	for {
		line, err := lr.readOne()
		if err != nil {
			return "", err
		}
		if !isBlankLine(line) {
			if lr.logger != nil {
				lr.logger.Log(makeLineEvent(lr.connID, line, log.DirectionIn))
			}
			return line, nil
		}
	}
}

func (lr *LineReader) readOne() (string, error) {
	var buf []byte
	for {
		c, err := lr.r.ReadByte()
		if err != nil {
			if err == io.EOF && len(buf) > 0 {
				return "", ErrLineTruncated
			}
			return "", err
		}
		buf = append(buf, c)
		if len(buf) > lr.maxLineSize {
			return "", fmt.Errorf("%w: exceeds %d", ErrLineTooLong, lr.maxLineSize)
		}
		if c == '\n' {
			return string(buf), nil
		}
	}
}

func isBlankLine(line string) bool {
	for i := 0; i < len(line); i++ {
		if line[i] != '\r' && line[i] != '\n' {
			return false
		}
	}
	return true
}

// makeLineEvent creates a log event for one wire line.
func makeLineEvent(connID, line string, direction log.Direction) log.Event {
	text := line
	truncated := false
	if len(line) > MaxLogLineSize {
		text = line[:MaxLogLineSize]
		truncated = true
	}

	return log.Event{
		Timestamp:    time.Now(),
		ConnectionID: connID,
		Direction:    direction,
		Layer:        log.LayerTransport,
		Category:     log.CategoryMessage,
		Line: &log.LineEvent{
			Size:      len(line),
			Text:      text,
			Truncated: truncated,
		},
	}
}

// Framer combines line reading and writing over one stream.
type Framer struct {
	*LineReader
	*LineWriter
}

// NewFramer creates a new framer for bidirectional communication.
func NewFramer(rw io.ReadWriter) *Framer {
	return NewFramerWithMaxSize(rw, DefaultMaxLineSize)
}

// NewFramerWithMaxSize creates a framer with a custom max line length.
func NewFramerWithMaxSize(rw io.ReadWriter, maxSize int) *Framer {
	return &Framer{
		LineReader: NewLineReaderWithMaxSize(rw, maxSize),
		LineWriter: NewLineWriterWithMaxSize(rw, maxSize),
	}
}

// SetLogger configures logging for both reader and writer.
// Pass nil to disable logging.
func (f *Framer) SetLogger(logger log.Logger, connID string) {
	f.LineReader.SetLogger(logger, connID)
	f.LineWriter.SetLogger(logger, connID)
}
