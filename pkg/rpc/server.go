package rpc

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/prpc-protocol/prpc-go/pkg/frame"
	"github.com/prpc-protocol/prpc-go/pkg/log"
)

// ErrHandlerExists is returned when registering an identifier twice.
var ErrHandlerExists = errors.New("handler already registered")

// HandlerFunc processes one request frame. Returning nil values and a
// nil error produces an ok response; non-nil values produce a result
// response carrying them; an error produces an error response with the
// error text as its single string argument.
type HandlerFunc func(ctx context.Context, req *frame.Frame) ([]frame.Value, error)

// LineConn is the connection surface the server needs to answer a
// request. Implemented by transport.ServerConn.
type LineConn interface {
	ID() string
	SendLine(line string) error
}

// Server dispatches inbound PRPC requests to registered handlers.
type Server struct {
	mu       sync.RWMutex
	handlers map[string]HandlerFunc
	logger   log.Logger
}

// NewServer creates a new RPC server with no handlers registered.
func NewServer() *Server {
	return &Server{
		handlers: make(map[string]HandlerFunc),
	}
}

// SetLogger configures protocol logging. Pass nil to disable.
func (s *Server) SetLogger(logger log.Logger) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logger = logger
}

// Register adds a handler for the given identifier. Slash-separated
// identifiers act as prefixes: a handler for "gpio" also receives
// "gpio/led/set" unless a more specific handler exists.
func (s *Server) Register(identifier string, handler HandlerFunc) error {
	// Reuse frame validation for the identifier charset.
	if _, err := frame.NewNotification(identifier); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.handlers[identifier]; exists {
		return ErrHandlerExists
	}
	s.handlers[identifier] = handler
	return nil
}

// Unregister removes the handler for the given identifier.
func (s *Server) Unregister(identifier string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.handlers, identifier)
}

// Identifiers returns the registered identifiers in no particular
// order.
func (s *Server) Identifiers() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.handlers))
	for id := range s.handlers {
		ids = append(ids, id)
	}
	return ids
}

// lookup finds the handler for an identifier, walking up the slash
// hierarchy until a match is found.
func (s *Server) lookup(identifier string) (HandlerFunc, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for id := identifier; ; {
		if h, ok := s.handlers[id]; ok {
			return h, true
		}
		i := strings.LastIndexByte(id, '/')
		if i < 0 {
			return nil, false
		}
		id = id[:i]
	}
}

// HandleFrame dispatches one request frame and returns the response
// frame, or nil when no response is due. Wildcard requests and inbound
// response frames never produce a response.
func (s *Server) HandleFrame(ctx context.Context, req *frame.Frame) *frame.Frame {
	if req.IsResponse() {
		// A server has no pending requests; stray responses are
		// dropped rather than answered, which would loop.
		return nil
	}

	handler, ok := s.lookup(req.Identifier())
	if !ok {
		if req.SeqID().IsWildcard() {
			return nil
		}
		return s.errorFrame(req.SeqID(), "no handler for "+req.Identifier())
	}

	results, err := handler(ctx, req)
	if req.SeqID().IsWildcard() {
		return nil
	}
	if err != nil {
		return s.errorFrame(req.SeqID(), err.Error())
	}

	if results == nil {
		resp, _ := frame.New(req.SeqID(), frame.IdentifierOK)
		return resp
	}

	resp, rerr := frame.New(req.SeqID(), frame.IdentifierResult, results...)
	if rerr != nil {
		return s.errorFrame(req.SeqID(), "handler produced unencodable result: "+rerr.Error())
	}
	return resp
}

// HandleLine parses one wire line, dispatches it, and returns the
// encoded response line, or "" when no response is due. Malformed
// lines produce an error response with the wildcard sequence id, since
// there is nothing to correlate it with.
func (s *Server) HandleLine(ctx context.Context, line string) string {
	return s.handleLine(ctx, "", line)
}

// ServeLine handles one line received on a connection and sends the
// response back on it. Meant for use as a transport OnLine callback.
func (s *Server) ServeLine(ctx context.Context, conn LineConn, line string) error {
	resp := s.handleLine(ctx, conn.ID(), line)
	if resp == "" {
		return nil
	}
	return conn.SendLine(resp)
}

func (s *Server) handleLine(ctx context.Context, connID, line string) string {
	req, err := frame.Parse(line)
	if err != nil {
		s.logParseError(connID, err)
		resp := s.errorFrame(frame.Wildcard, err.Error())
		return resp.Encode()
	}

	s.logFrame(connID, log.DirectionIn, req)

	resp := s.HandleFrame(ctx, req)
	if resp == nil {
		return ""
	}

	s.logFrame(connID, log.DirectionOut, resp)
	return resp.Encode()
}

// errorFrame builds an error response, sanitizing the message so it
// always survives frame validation.
func (s *Server) errorFrame(seq frame.SeqID, msg string) *frame.Frame {
	resp, err := frame.New(seq, frame.IdentifierError, frame.Str(msg))
	if err != nil {
		resp, _ = frame.New(seq, frame.IdentifierError, frame.Str(sanitizeMessage(msg)))
	}
	return resp
}

// sanitizeMessage rewrites a string so it is a valid string argument:
// no CR/LF, no trailing backslash.
func sanitizeMessage(msg string) string {
	msg = strings.ReplaceAll(msg, "\r", " ")
	msg = strings.ReplaceAll(msg, "\n", " ")
	msg = strings.TrimRight(msg, "\\")
	return msg
}

func (s *Server) logFrame(connID string, direction log.Direction, f *frame.Frame) {
	s.mu.RLock()
	logger := s.logger
	s.mu.RUnlock()

	if logger == nil {
		return
	}

	argCount := f.NumArgs()
	if !f.HasArgs() {
		argCount = -1
	}

	logger.Log(log.Event{
		Timestamp:    time.Now(),
		ConnectionID: connID,
		Direction:    direction,
		Layer:        log.LayerRPC,
		Category:     log.CategoryMessage,
		LocalRole:    log.RoleDevice,
		Frame: &log.FrameEvent{
			SeqID:      f.SeqID().String(),
			Identifier: f.Identifier(),
			ArgCount:   argCount,
			Response:   f.IsResponse(),
		},
	})
}

func (s *Server) logParseError(connID string, err error) {
	s.mu.RLock()
	logger := s.logger
	s.mu.RUnlock()

	if logger == nil {
		return
	}

	event := log.Event{
		Timestamp:    time.Now(),
		ConnectionID: connID,
		Direction:    log.DirectionIn,
		Layer:        log.LayerRPC,
		Category:     log.CategoryError,
		LocalRole:    log.RoleDevice,
		Error:        &log.ErrorEventData{Message: err.Error(), Offset: -1},
	}

	var synErr *frame.SyntaxError
	if errors.As(err, &synErr) {
		event.Error.Offset = synErr.Offset
	}

	logger.Log(event)
}
