// Package log provides protocol event logging for PRPC.
//
// Logging is structured around Event values captured at each layer:
// raw lines at the transport layer, decoded frames at the frame layer,
// and request/dispatch activity at the rpc layer. Components accept a
// Logger and emit events; applications choose where events go:
//
//   - NoopLogger discards everything (the default).
//   - FileLogger persists events as a CBOR stream for later analysis.
//   - SlogAdapter bridges events to log/slog for console output.
//   - MultiLogger fans out to several of the above.
//
// Reader reads a persisted event stream back, optionally filtered by
// connection, direction, layer, category, identifier or time range.
//
// Events use CBOR integer keys so that long captures stay compact.
package log
