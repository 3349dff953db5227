package transport

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prpc-protocol/prpc-go/pkg/log"
)

// ClientConfig configures a PRPC client.
type ClientConfig struct {
	// MaxLineSize is the maximum accepted line length (default: 4KB).
	MaxLineSize int

	// ConnectTimeout is the connection timeout (default: 30s).
	ConnectTimeout time.Duration

	// Logger for protocol logging (optional).
	Logger log.Logger
}

// Client is a PRPC TCP client that connects to devices.
type Client struct {
	config ClientConfig
}

// NewClient creates a new PRPC client.
func NewClient(config ClientConfig) *Client {
	if config.MaxLineSize == 0 {
		config.MaxLineSize = DefaultMaxLineSize
	}
	if config.ConnectTimeout == 0 {
		config.ConnectTimeout = 30 * time.Second
	}

	return &Client{config: config}
}

// Connect establishes a connection to the specified address.
func (c *Client) Connect(ctx context.Context, address string) (*ClientConn, error) {
	// Apply timeout from config if context doesn't have one
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.ConnectTimeout)
		defer cancel()
	}

	dialer := &net.Dialer{}
	conn, err := dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		return nil, fmt.Errorf("dial failed: %w", err)
	}

	connID := uuid.New().String()

	framer := NewFramerWithMaxSize(conn, c.config.MaxLineSize)
	if c.config.Logger != nil {
		framer.SetLogger(c.config.Logger, connID)
	}

	clientConn := &ClientConn{
		conn:    conn,
		framer:  framer,
		client:  c,
		connID:  connID,
		closeCh: make(chan struct{}),
	}

	clientConn.logStateChange(StateConnected)

	return clientConn, nil
}

// ClientConn represents a connection from client to device.
type ClientConn struct {
	conn   net.Conn
	framer *Framer
	client *Client
	connID string

	closeCh   chan struct{}
	closeOnce sync.Once
	readMu    sync.Mutex
}

// ID returns the unique connection ID assigned at dial time.
func (c *ClientConn) ID() string {
	return c.connID
}

// LocalAddr returns the local network address.
func (c *ClientConn) LocalAddr() net.Addr {
	return c.conn.LocalAddr()
}

// RemoteAddr returns the remote network address.
func (c *ClientConn) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}

// SendLine sends one terminated wire line to the device.
func (c *ClientConn) SendLine(line string) error {
	select {
	case <-c.closeCh:
		return ErrConnectionClosed
	default:
	}

	return c.framer.WriteLine(line)
}

// ReceiveLine receives one wire line from the device with timeout.
// A timeout of zero blocks until a line arrives or the connection
// fails.
func (c *ClientConn) ReceiveLine(timeout time.Duration) (string, error) {
	c.readMu.Lock()
	defer c.readMu.Unlock()

	select {
	case <-c.closeCh:
		return "", ErrConnectionClosed
	default:
	}

	if timeout > 0 {
		c.conn.SetReadDeadline(time.Now().Add(timeout))
		defer c.conn.SetReadDeadline(time.Time{})
	}

	return c.framer.ReadLine()
}

// Close closes the connection.
func (c *ClientConn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.closeCh)
		err = c.conn.Close()
		c.logStateChange(StateDisconnected)
	})
	return err
}

func (c *ClientConn) logStateChange(state ConnectionState) {
	if c.client.config.Logger == nil {
		return
	}
	c.client.config.Logger.Log(log.Event{
		Timestamp:    time.Now(),
		ConnectionID: c.connID,
		Layer:        log.LayerTransport,
		Category:     log.CategoryState,
		LocalRole:    log.RoleClient,
		RemoteAddr:   c.conn.RemoteAddr().String(),
		StateChange: &log.StateChangeEvent{
			NewState: state.String(),
		},
	})
}
