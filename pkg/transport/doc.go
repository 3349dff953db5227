// Package transport delivers raw PRPC lines over byte streams.
//
// The frame grammar itself lives in pkg/frame; this package owns the
// collaborator duties around it: splitting an incoming byte stream
// into terminated lines, writing encoded lines out, and managing plain
// TCP connections on both ends.
//
// # Protocol Stack
//
//	┌────────────────────────────────┐
//	│        PRPC Frames             │
//	├────────────────────────────────┤
//	│   Newline-Delimited Framing    │
//	├────────────────────────────────┤
//	│   TCP / serial / any stream    │
//	└────────────────────────────────┘
//
// LineReader and LineWriter work over any io.Reader/io.Writer, so the
// same framing serves sockets, serial links and in-memory pipes. The
// reader tolerates CR/LF runs and skips blank lines; the writer only
// accepts properly terminated lines, which Frame.Encode always
// produces.
//
// Server and Client add TCP lifecycle handling: accept loops,
// per-connection read pumps, connection IDs and protocol log events.
// PRPC has no security layer of its own; deploy on trusted links or
// tunnel through one.
package transport
