package transport

import (
	"context"
	"net"
	"time"
)

// ServerConnection represents a server-side connection to a client.
// Implemented by ServerConn.
type ServerConnection interface {
	// ID returns the unique connection ID.
	ID() string

	// RemoteAddr returns the remote network address of the client.
	RemoteAddr() net.Addr

	// SendLine sends one terminated wire line to the client.
	SendLine(line string) error

	// Close closes the connection.
	Close() error
}

// ClientConnection represents a client-side connection to a device.
// Implemented by ClientConn.
type ClientConnection interface {
	// ID returns the unique connection ID.
	ID() string

	// LocalAddr returns the local network address.
	LocalAddr() net.Addr

	// RemoteAddr returns the remote network address.
	RemoteAddr() net.Addr

	// SendLine sends one terminated wire line to the device.
	SendLine(line string) error

	// ReceiveLine receives one wire line with the specified timeout.
	ReceiveLine(timeout time.Duration) (string, error)

	// Close closes the connection.
	Close() error
}

// TransportServer represents a PRPC TCP server.
// Implemented by Server.
type TransportServer interface {
	// Start begins accepting connections.
	Start(ctx context.Context) error

	// Stop gracefully stops the server.
	Stop() error

	// Addr returns the server's listen address.
	Addr() net.Addr

	// ConnectionCount returns the number of active connections.
	ConnectionCount() int
}

// LineReadWriter provides newline-delimited line I/O.
// Implemented by Framer.
type LineReadWriter interface {
	// ReadLine reads one terminated line, including its terminator.
	ReadLine() (string, error)

	// WriteLine writes one terminated line.
	WriteLine(line string) error
}

// Compile-time interface satisfaction checks.
var (
	_ ServerConnection = (*ServerConn)(nil)
	_ ClientConnection = (*ClientConn)(nil)
	_ TransportServer  = (*Server)(nil)
	_ LineReadWriter   = (*Framer)(nil)
)
