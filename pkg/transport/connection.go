package transport

import (
	"errors"
	"net"
	"sync"
)

// Connection states.
type ConnectionState int

const (
	// StateDisconnected indicates no connection.
	StateDisconnected ConnectionState = iota

	// StateConnecting indicates connection in progress.
	StateConnecting

	// StateConnected indicates an active connection.
	StateConnected

	// StateClosing indicates close in progress.
	StateClosing
)

// String returns the connection state name.
func (s ConnectionState) String() string {
	switch s {
	case StateDisconnected:
		return "DISCONNECTED"
	case StateConnecting:
		return "CONNECTING"
	case StateConnected:
		return "CONNECTED"
	case StateClosing:
		return "CLOSING"
	default:
		return "UNKNOWN"
	}
}

// Connection errors.
var (
	ErrNotConnected     = errors.New("not connected")
	ErrConnectionClosed = errors.New("connection closed")
)

// ServerConn represents a server-side connection to a client.
type ServerConn struct {
	conn       net.Conn
	framer     *Framer
	server     *Server
	remoteAddr net.Addr
	connID     string

	closeCh   chan struct{}
	closeOnce sync.Once
}

// ID returns the unique connection ID assigned at accept time.
func (c *ServerConn) ID() string {
	return c.connID
}

// RemoteAddr returns the remote network address of the client.
func (c *ServerConn) RemoteAddr() net.Addr {
	return c.remoteAddr
}

// SendLine sends one terminated wire line to the client.
func (c *ServerConn) SendLine(line string) error {
	select {
	case <-c.closeCh:
		return ErrConnectionClosed
	default:
	}
	return c.framer.WriteLine(line)
}

// Close closes the connection.
func (c *ServerConn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.closeCh)
		err = c.conn.Close()
	})
	return err
}
