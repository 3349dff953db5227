package rpc

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/prpc-protocol/prpc-go/pkg/frame"
	"github.com/prpc-protocol/prpc-go/pkg/transport"
)

// Client errors.
var (
	ErrRequestTimeout  = errors.New("request timed out")
	ErrClientClosed    = errors.New("client is closed")
	ErrUnexpectedReply = errors.New("unexpected reply")
	ErrWindowExhausted = errors.New("sequence id window exhausted")
)

// DefaultWindowSize is the default number of sequence ids available
// for concurrent in-flight requests.
const DefaultWindowSize = 1024

// LineSender is the interface for sending encoded lines over a
// connection. Implemented by transport.ClientConn and
// transport.ServerConn.
type LineSender interface {
	SendLine(line string) error
}

// Client provides a high-level API for making PRPC requests.
type Client struct {
	mu sync.RWMutex

	sender  LineSender
	timeout time.Duration

	// Sequence id window: a free list of ids plus a slot table of
	// pending requests awaiting responses. A slot stays out of the
	// free list until its response arrives, even after the caller
	// stopped waiting; reusing the id earlier would let a late
	// response complete an unrelated newer request.
	pendingMu sync.Mutex
	free      []uint32
	pending   map[uint32]*pendingCall

	// Handler for inbound frames that are not responses
	notifyHandler func(*frame.Frame)

	closed bool
}

// NewClient creates a new RPC client sending over the given sender.
func NewClient(sender LineSender) *Client {
	return NewClientWithWindow(sender, DefaultWindowSize)
}

// NewClientWithWindow creates a client with a custom sequence id
// window. The window bounds the number of concurrent in-flight
// requests.
func NewClientWithWindow(sender LineSender, window int) *Client {
	if window <= 0 {
		window = DefaultWindowSize
	}

	free := make([]uint32, window)
	for i := range free {
		free[i] = uint32(i)
	}

	return &Client{
		sender:  sender,
		timeout: 30 * time.Second,
		free:    free,
		pending: make(map[uint32]*pendingCall),
	}
}

// pendingCall is one occupied sequence id slot. abandoned marks a
// request whose caller timed out or was cancelled; its response, when
// it finally arrives, is discarded and only then is the id freed.
type pendingCall struct {
	ch        chan *frame.Frame
	abandoned bool
}

// SetTimeout sets the request timeout.
func (c *Client) SetTimeout(timeout time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.timeout = timeout
}

// SetNotificationHandler sets the handler for inbound frames that are
// not responses: notifications and unsolicited commands from the peer.
func (c *Client) SetNotificationHandler(handler func(*frame.Frame)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notifyHandler = handler
}

// Close closes the client and cancels all pending requests.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true

	c.pendingMu.Lock()
	for seq, pc := range c.pending {
		close(pc.ch)
		delete(c.pending, seq)
	}
	c.pendingMu.Unlock()

	return nil
}

// acquire takes a sequence id from the free list and registers its
// response channel in the slot table.
func (c *Client) acquire() (uint32, chan *frame.Frame, error) {
	c.pendingMu.Lock()
	defer c.pendingMu.Unlock()

	if len(c.free) == 0 {
		return 0, nil, ErrWindowExhausted
	}

	seq := c.free[len(c.free)-1]
	c.free = c.free[:len(c.free)-1]

	pc := &pendingCall{ch: make(chan *frame.Frame, 1)}
	c.pending[seq] = pc
	return seq, pc.ch, nil
}

// release frees a sequence id whose request never went on the wire.
// Ids with a request in flight are freed by HandleFrame when the
// response arrives.
func (c *Client) release(seq uint32) {
	c.pendingMu.Lock()
	defer c.pendingMu.Unlock()

	if _, exists := c.pending[seq]; exists {
		delete(c.pending, seq)
		c.free = append(c.free, seq)
	}
}

// abandon marks a slot whose caller stopped waiting. The id stays
// occupied until the response lands, so a stale response can never be
// mistaken for the answer to a request that reused the id.
func (c *Client) abandon(seq uint32) {
	c.pendingMu.Lock()
	defer c.pendingMu.Unlock()

	if pc, exists := c.pending[seq]; exists {
		pc.abandoned = true
	}
}

// Call sends a request and waits for the matching response frame.
// An error response from the peer is returned as a *ResponseError.
func (c *Client) Call(ctx context.Context, identifier string, args ...frame.Value) (*frame.Frame, error) {
	c.mu.RLock()
	if c.closed {
		c.mu.RUnlock()
		return nil, ErrClientClosed
	}
	timeout := c.timeout
	c.mu.RUnlock()

	seq, respCh, err := c.acquire()
	if err != nil {
		return nil, err
	}

	req, err := frame.New(frame.Seq(seq), identifier, args...)
	if err != nil {
		c.release(seq)
		return nil, err
	}

	if err := c.sender.SendLine(req.Encode()); err != nil {
		c.release(seq)
		return nil, fmt.Errorf("send failed: %w", err)
	}

	select {
	case <-ctx.Done():
		c.abandon(seq)
		return nil, ctx.Err()
	case <-time.After(timeout):
		c.abandon(seq)
		return nil, ErrRequestTimeout
	case resp, ok := <-respCh:
		if !ok {
			return nil, ErrClientClosed
		}
		if resp.Identifier() == frame.IdentifierError {
			return nil, &ResponseError{Response: resp}
		}
		return resp, nil
	}
}

// Notify sends a wildcard frame. No response is expected.
func (c *Client) Notify(identifier string, args ...frame.Value) error {
	c.mu.RLock()
	closed := c.closed
	c.mu.RUnlock()

	if closed {
		return ErrClientClosed
	}

	notif, err := frame.NewNotification(identifier, args...)
	if err != nil {
		return err
	}

	return c.sender.SendLine(notif.Encode())
}

// HandleFrame should be called for each inbound frame. Responses
// complete the pending request with the same sequence id and free the
// id; responses to abandoned requests are discarded. Everything else
// goes to the notification handler.
func (c *Client) HandleFrame(f *frame.Frame) error {
	if f.IsResponse() && !f.SeqID().IsWildcard() {
		seq := f.SeqID().Value()

		c.pendingMu.Lock()
		pc, exists := c.pending[seq]
		if exists {
			delete(c.pending, seq)
			c.free = append(c.free, seq)
			if !pc.abandoned {
				// The channel is buffered and each slot is
				// delivered at most once, so this never blocks.
				// Holding pendingMu keeps Close from closing the
				// channel mid-send.
				pc.ch <- f
			}
		}
		c.pendingMu.Unlock()

		if !exists {
			return ErrUnexpectedReply
		}
		return nil
	}

	c.mu.RLock()
	handler := c.notifyHandler
	c.mu.RUnlock()

	if handler != nil {
		handler(f)
	}
	return nil
}

// RunConn pumps inbound lines from the connection into HandleFrame
// until the context is cancelled or the connection fails. Lines that
// fail to parse are dropped; the transport layer logs them.
func (c *Client) RunConn(ctx context.Context, conn *transport.ClientConn) error {
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	for {
		line, err := conn.ReceiveLine(0)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}

		f, perr := frame.Parse(line)
		if perr != nil {
			continue
		}
		c.HandleFrame(f)
	}
}

// ResponseError represents an error response frame from the peer.
type ResponseError struct {
	Response *frame.Frame
}

func (e *ResponseError) Error() string {
	if v, ok := e.Response.Arg(0); ok {
		if msg, ok := v.AsString(); ok {
			return "remote error: " + msg
		}
	}
	return "remote error: " + e.Response.String()
}
