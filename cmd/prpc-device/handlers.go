package main

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/prpc-protocol/prpc-go/pkg/frame"
	"github.com/prpc-protocol/prpc-go/pkg/rpc"
)

// registerBuiltinHandlers wires the reference command set into the
// dispatcher.
func registerBuiltinHandlers(server *rpc.Server, config Config) error {
	start := time.Now()
	gpio := newGPIOSim()

	handlers := map[string]rpc.HandlerFunc{
		// hello returns the device name and serial.
		"hello": func(ctx context.Context, req *frame.Frame) ([]frame.Value, error) {
			values := []frame.Value{frame.Str(config.Name)}
			if config.Serial != "" {
				values = append(values, frame.Str(config.Serial))
			}
			return values, nil
		},

		// echo returns its arguments unchanged.
		"echo": func(ctx context.Context, req *frame.Frame) ([]frame.Value, error) {
			args := req.Args()
			if args == nil {
				return []frame.Value{}, nil
			}
			return args, nil
		},

		// time returns the unix time and uptime in seconds.
		"time": func(ctx context.Context, req *frame.Frame) ([]frame.Value, error) {
			now := time.Now()
			return []frame.Value{
				frame.Int(now.Unix()),
				frame.Float(now.Sub(start).Seconds()),
			}, nil
		},

		// gpio/<pin>/get and gpio/<pin>/set drive the pin simulation.
		"gpio": gpio.handle,
	}

	for id, h := range handlers {
		if err := server.Register(id, h); err != nil {
			return err
		}
	}
	return nil
}

// gpioSim simulates a bank of named boolean pins.
type gpioSim struct {
	mu   sync.Mutex
	pins map[string]bool
}

func newGPIOSim() *gpioSim {
	return &gpioSim{pins: make(map[string]bool)}
}

// handle serves the gpio/<pin>/<op> identifier hierarchy.
func (g *gpioSim) handle(ctx context.Context, req *frame.Frame) ([]frame.Value, error) {
	parts := strings.Split(req.Identifier(), "/")
	if len(parts) != 3 {
		return nil, errors.New("usage: gpio/<pin>/get or gpio/<pin>/set <yes|no>")
	}
	pin, op := parts[1], parts[2]

	switch op {
	case "get":
		g.mu.Lock()
		state := g.pins[pin]
		g.mu.Unlock()
		return []frame.Value{frame.Bool(state)}, nil

	case "set":
		arg, ok := req.Arg(0)
		if !ok {
			return nil, errors.New("set needs a boolean argument")
		}
		state, ok := arg.AsBool()
		if !ok {
			return nil, errors.New("set needs a boolean argument")
		}
		g.mu.Lock()
		g.pins[pin] = state
		g.mu.Unlock()
		return nil, nil

	default:
		return nil, errors.New("unknown gpio operation: " + op)
	}
}
