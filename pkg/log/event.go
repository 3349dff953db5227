package log

import "time"

// Event represents a protocol log event captured at any layer.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// ConnectionID uniquely identifies the connection (UUID).
	ConnectionID string `cbor:"2,keyasint"`

	// Direction indicates message flow.
	Direction Direction `cbor:"3,keyasint"`

	// Layer where the event was captured.
	Layer Layer `cbor:"4,keyasint"`

	// Category classifies the event type.
	Category Category `cbor:"5,keyasint"`

	// LocalRole indicates whether this endpoint serves or issues commands.
	LocalRole Role `cbor:"6,keyasint,omitempty"`

	// RemoteAddr is the peer address (IP:port, or a device path for
	// serial links).
	RemoteAddr string `cbor:"7,keyasint,omitempty"`

	// Type-specific payload (one of these will be set).
	Line        *LineEvent        `cbor:"8,keyasint,omitempty"`  // Transport layer (raw line)
	Frame       *FrameEvent       `cbor:"9,keyasint,omitempty"`  // Frame layer (decoded)
	StateChange *StateChangeEvent `cbor:"10,keyasint,omitempty"` // Connection state
	Error       *ErrorEventData   `cbor:"11,keyasint,omitempty"` // Errors at any layer
}

// Direction indicates the direction of message flow.
type Direction uint8

const (
	// DirectionIn indicates an incoming message.
	DirectionIn Direction = 0
	// DirectionOut indicates an outgoing message.
	DirectionOut Direction = 1
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case DirectionIn:
		return "IN"
	case DirectionOut:
		return "OUT"
	default:
		return "UNKNOWN"
	}
}

// Layer indicates which protocol layer captured the event.
type Layer uint8

const (
	// LayerTransport is the line framing layer (raw text).
	LayerTransport Layer = 0
	// LayerFrame is the frame codec layer (decoded frames).
	LayerFrame Layer = 1
	// LayerRPC is the request/dispatch layer.
	LayerRPC Layer = 2
)

// String returns the layer name.
func (l Layer) String() string {
	switch l {
	case LayerTransport:
		return "TRANSPORT"
	case LayerFrame:
		return "FRAME"
	case LayerRPC:
		return "RPC"
	default:
		return "UNKNOWN"
	}
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryMessage indicates a protocol message (command or response).
	CategoryMessage Category = 0
	// CategoryState indicates a state change.
	CategoryState Category = 1
	// CategoryError indicates an error event.
	CategoryError Category = 2
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryMessage:
		return "MESSAGE"
	case CategoryState:
		return "STATE"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Role indicates whether the local endpoint serves commands (device)
// or issues them (client).
type Role uint8

const (
	// RoleDevice indicates this endpoint answers commands.
	RoleDevice Role = 0
	// RoleClient indicates this endpoint issues commands.
	RoleClient Role = 1
)

// String returns the role name.
func (r Role) String() string {
	switch r {
	case RoleDevice:
		return "DEVICE"
	case RoleClient:
		return "CLIENT"
	default:
		return "UNKNOWN"
	}
}

// LineEvent captures one raw wire line at the transport layer.
type LineEvent struct {
	// Size is the full line length in bytes, terminator included.
	Size int `cbor:"1,keyasint"`

	// Text is the line content (may be truncated for large lines).
	Text string `cbor:"2,keyasint,omitempty"`

	// Truncated indicates if Text was truncated.
	Truncated bool `cbor:"3,keyasint,omitempty"`
}

// FrameEvent captures a decoded frame at the frame layer.
type FrameEvent struct {
	// SeqID is the wire form of the sequence id ("*" for wildcard).
	SeqID string `cbor:"1,keyasint"`

	// Identifier is the command or response name.
	Identifier string `cbor:"2,keyasint"`

	// ArgCount is the number of arguments (-1 for the explicit
	// "no arguments" form, which is distinct from zero).
	ArgCount int `cbor:"3,keyasint"`

	// Response indicates the frame is a response (ok/result/error).
	Response bool `cbor:"4,keyasint,omitempty"`
}

// StateChangeEvent captures a connection state transition.
type StateChangeEvent struct {
	// OldState is the previous state name (may be empty).
	OldState string `cbor:"1,keyasint,omitempty"`

	// NewState is the new state name.
	NewState string `cbor:"2,keyasint"`
}

// ErrorEventData captures an error at any layer.
type ErrorEventData struct {
	// Message is the error text.
	Message string `cbor:"1,keyasint"`

	// Offset is the byte offset for syntax errors (-1 otherwise).
	Offset int `cbor:"2,keyasint,omitempty"`
}
