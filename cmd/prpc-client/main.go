// Command prpc-client is an interactive PRPC client.
//
// This command provides a readline-based shell for talking to PRPC
// devices: discovering them over mDNS, connecting, issuing requests
// and watching notifications arrive.
//
// Usage:
//
//	prpc-client [flags]
//
// Flags:
//
//	-address string    Device address to connect to on startup
//	-timeout duration  Request timeout (default 30s)
//	-event-log string  Path for the CBOR protocol event log
//	-log-level string  Log level: debug, info, warn, error (default "warn")
//
// Examples:
//
//	# Start the shell and discover devices interactively
//	prpc-client
//
//	# Connect straight to a known device
//	prpc-client -address 192.168.1.40:7117
//
// Interactive Commands:
//
//	discover                    - Discover PRPC devices over mDNS
//	connect <address|instance>  - Connect to a device
//	disconnect                  - Close the current connection
//	call <identifier> [args]    - Send a request and wait for the response
//	notify <identifier> [args]  - Send a wildcard frame (no response)
//	raw <line>                  - Send a raw protocol line
//	status                      - Show connection status
//	quit                        - Exit the client
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prpc-protocol/prpc-go/pkg/log"
)

// Config holds the client configuration.
type Config struct {
	Address  string
	Timeout  time.Duration
	EventLog string
	LogLevel string
}

func main() {
	var config Config
	flag.StringVar(&config.Address, "address", "", "Device address to connect to on startup")
	flag.DurationVar(&config.Timeout, "timeout", 30*time.Second, "Request timeout")
	flag.StringVar(&config.EventLog, "event-log", "", "Path for the CBOR protocol event log")
	flag.StringVar(&config.LogLevel, "log-level", "warn", "Log level: debug, info, warn, error")
	flag.Parse()

	ic, err := NewInteractiveClient(config)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer ic.Close()

	// Route log output through readline to avoid clobbering the prompt
	logger := newSlogLogger(ic, config.LogLevel)
	slog.SetDefault(logger)

	protocolLogger, closeLog, err := buildProtocolLogger(config, logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to open event log:", err)
		os.Exit(1)
	}
	defer closeLog()
	ic.SetLogger(protocolLogger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if config.Address != "" {
		if err := ic.Connect(ctx, config.Address); err != nil {
			fmt.Fprintf(ic.Stdout(), "Failed to connect: %v\n", err)
		}
	}

	go ic.Run(ctx, cancel)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigCh:
	case <-ctx.Done():
	}
}

func newSlogLogger(ic *InteractiveClient, level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "info":
		lvl = slog.LevelInfo
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelWarn
	}

	handler := slog.NewTextHandler(ic.Stdout(), &slog.HandlerOptions{Level: lvl})
	return slog.New(handler)
}

// buildProtocolLogger assembles the protocol event logger: the slog
// console adapter, plus the CBOR file logger when configured.
func buildProtocolLogger(config Config, logger *slog.Logger) (log.Logger, func(), error) {
	console := log.NewSlogAdapter(logger)

	if config.EventLog == "" {
		return console, func() {}, nil
	}

	file, err := log.NewFileLogger(config.EventLog)
	if err != nil {
		return nil, nil, err
	}

	return log.NewMultiLogger(console, file), func() { file.Close() }, nil
}
