package connection

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/prpc-protocol/prpc-go/pkg/transport"
)

// Reconnector errors.
var (
	ErrClosed           = errors.New("reconnector closed")
	ErrAlreadyConnected = errors.New("already connected")
	ErrNotConnected     = errors.New("not connected")
)

// State represents the managed connection state.
type State uint8

const (
	// StateDisconnected indicates no active connection.
	StateDisconnected State = iota

	// StateConnecting indicates a connection attempt is in progress.
	StateConnecting

	// StateConnected indicates an active connection.
	StateConnected

	// StateReconnecting indicates automatic reconnection is in progress.
	StateReconnecting

	// StateClosed indicates the reconnector has been closed.
	StateClosed
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "DISCONNECTED"
	case StateConnecting:
		return "CONNECTING"
	case StateConnected:
		return "CONNECTED"
	case StateReconnecting:
		return "RECONNECTING"
	case StateClosed:
		return "CLOSED"
	default:
		return "UNKNOWN"
	}
}

// DialFunc establishes one connection attempt to the PRPC device.
type DialFunc func(ctx context.Context) (*transport.ClientConn, error)

// Reconnector maintains a client connection to a PRPC device,
// redialing with exponential backoff when the connection is lost.
type Reconnector struct {
	mu sync.RWMutex

	state State
	conn  *transport.ClientConn

	backoff *Backoff
	dial    DialFunc

	autoReconnect bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// Signals that reconnection should start
	reconnectCh chan struct{}

	// Callbacks
	onStateChange  func(oldState, newState State)
	onConnected    func(conn *transport.ClientConn)
	onDisconnected func()
	onReconnecting func(attempt int, delay time.Duration)
}

// NewReconnector creates a reconnector around the given dial function.
func NewReconnector(dial DialFunc) *Reconnector {
	ctx, cancel := context.WithCancel(context.Background())

	return &Reconnector{
		state:         StateDisconnected,
		backoff:       NewBackoff(),
		dial:          dial,
		autoReconnect: true,
		ctx:           ctx,
		cancel:        cancel,
		reconnectCh:   make(chan struct{}, 1),
	}
}

// State returns the current connection state.
func (r *Reconnector) State() State {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state
}

// IsConnected returns true if currently connected.
func (r *Reconnector) IsConnected() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state == StateConnected
}

// Conn returns the active connection, or nil when disconnected.
func (r *Reconnector) Conn() *transport.ClientConn {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.conn
}

// SetAutoReconnect enables or disables automatic reconnection.
func (r *Reconnector) SetAutoReconnect(enabled bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.autoReconnect = enabled
}

// Connect initiates a connection.
func (r *Reconnector) Connect(ctx context.Context) error {
	r.mu.Lock()
	if r.state == StateConnected {
		r.mu.Unlock()
		return ErrAlreadyConnected
	}
	if r.state == StateClosed {
		r.mu.Unlock()
		return ErrClosed
	}

	oldState := r.state
	r.state = StateConnecting
	r.mu.Unlock()

	r.notifyStateChange(oldState, StateConnecting)

	conn, err := r.dial(ctx)

	r.mu.Lock()
	if err != nil {
		r.state = StateDisconnected
		r.mu.Unlock()
		r.notifyStateChange(StateConnecting, StateDisconnected)
		return err
	}

	r.state = StateConnected
	r.conn = conn
	r.backoff.Reset()
	r.mu.Unlock()

	r.notifyStateChange(StateConnecting, StateConnected)
	r.notifyConnected(conn)

	return nil
}

// ConnectionLost should be called when a connection loss is detected.
// This triggers automatic reconnection if enabled.
func (r *Reconnector) ConnectionLost() {
	r.mu.Lock()
	if r.state != StateConnected {
		r.mu.Unlock()
		return
	}

	oldState := r.state
	autoReconnect := r.autoReconnect

	if r.conn != nil {
		r.conn.Close()
		r.conn = nil
	}

	if autoReconnect {
		r.state = StateReconnecting
	} else {
		r.state = StateDisconnected
	}
	newState := r.state
	r.mu.Unlock()

	r.notifyStateChange(oldState, newState)

	r.mu.RLock()
	onDisconnected := r.onDisconnected
	r.mu.RUnlock()
	if onDisconnected != nil {
		onDisconnected()
	}

	if autoReconnect {
		r.triggerReconnect()
	}
}

// StartReconnectLoop starts the background reconnection loop.
// Must be called once before automatic reconnection will work.
func (r *Reconnector) StartReconnectLoop() {
	r.wg.Add(1)
	go r.reconnectLoop()
}

// Close shuts down the reconnector and closes any active connection.
func (r *Reconnector) Close() {
	r.mu.Lock()
	if r.state == StateClosed {
		r.mu.Unlock()
		return
	}

	oldState := r.state
	r.state = StateClosed
	if r.conn != nil {
		r.conn.Close()
		r.conn = nil
	}
	r.mu.Unlock()

	r.notifyStateChange(oldState, StateClosed)

	r.cancel()
	r.wg.Wait()
}

// triggerReconnect signals that reconnection should be attempted.
func (r *Reconnector) triggerReconnect() {
	select {
	case r.reconnectCh <- struct{}{}:
	default:
		// Already pending
	}
}

// reconnectLoop runs in a goroutine and handles reconnection attempts.
func (r *Reconnector) reconnectLoop() {
	defer r.wg.Done()

	for {
		select {
		case <-r.ctx.Done():
			return
		case <-r.reconnectCh:
			r.attemptReconnect()
		}
	}
}

// attemptReconnect redials with backoff until connected or closed.
func (r *Reconnector) attemptReconnect() {
	for {
		r.mu.RLock()
		state := r.state
		r.mu.RUnlock()

		if state == StateClosed || state == StateConnected {
			return
		}

		delay := r.backoff.Next()
		attempts := r.backoff.Attempts()

		r.mu.RLock()
		onReconnecting := r.onReconnecting
		r.mu.RUnlock()
		if onReconnecting != nil {
			onReconnecting(attempts, delay)
		}

		select {
		case <-r.ctx.Done():
			return
		case <-time.After(delay):
		}

		r.mu.Lock()
		if r.state == StateClosed || r.state == StateConnected {
			r.mu.Unlock()
			return
		}
		r.mu.Unlock()

		ctx, cancel := context.WithTimeout(r.ctx, 30*time.Second)
		conn, err := r.dial(ctx)
		cancel()

		if err == nil {
			r.mu.Lock()
			oldState := r.state
			r.state = StateConnected
			r.conn = conn
			r.backoff.Reset()
			r.mu.Unlock()

			r.notifyStateChange(oldState, StateConnected)
			r.notifyConnected(conn)
			return
		}

		// Failed - continue looping with next backoff
	}
}

func (r *Reconnector) notifyStateChange(oldState, newState State) {
	r.mu.RLock()
	fn := r.onStateChange
	r.mu.RUnlock()
	if fn != nil {
		fn(oldState, newState)
	}
}

func (r *Reconnector) notifyConnected(conn *transport.ClientConn) {
	r.mu.RLock()
	fn := r.onConnected
	r.mu.RUnlock()
	if fn != nil {
		fn(conn)
	}
}

// OnStateChange sets a callback for state changes.
func (r *Reconnector) OnStateChange(fn func(oldState, newState State)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onStateChange = fn
}

// OnConnected sets a callback invoked with each new connection.
func (r *Reconnector) OnConnected(fn func(conn *transport.ClientConn)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onConnected = fn
}

// OnDisconnected sets a callback for disconnection.
func (r *Reconnector) OnDisconnected(fn func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onDisconnected = fn
}

// OnReconnecting sets a callback for reconnection attempts.
func (r *Reconnector) OnReconnecting(fn func(attempt int, delay time.Duration)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onReconnecting = fn
}

// BackoffAttempts returns the current number of reconnection attempts.
func (r *Reconnector) BackoffAttempts() int {
	return r.backoff.Attempts()
}
