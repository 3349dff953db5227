// Command prpc-device is a reference PRPC device implementation.
//
// This command demonstrates a complete PRPC responder with:
//   - CLI argument parsing and YAML configuration
//   - Built-in command handlers (hello, echo, time, gpio simulation)
//   - mDNS discovery advertising
//   - Protocol event logging to console and CBOR file
//
// Usage:
//
//	prpc-device [flags]
//
// Flags:
//
//	-config string     Configuration file path (YAML)
//	-listen string     Listen address (default ":7117")
//	-name string       Device name advertised over mDNS
//	-serial string     Device serial number
//	-event-log string  Path for the CBOR protocol event log
//	-mdns              Advertise the device over mDNS (default true)
//	-log-level string  Log level: debug, info, warn, error (default "info")
//
// Examples:
//
//	# Start with defaults on port 7117
//	prpc-device -name bench-psu
//
//	# Start with a config file and a protocol event log
//	prpc-device -config /etc/prpc/device.yaml -event-log device.plog
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"

	"gopkg.in/yaml.v3"

	"github.com/prpc-protocol/prpc-go/pkg/discovery"
	"github.com/prpc-protocol/prpc-go/pkg/log"
	"github.com/prpc-protocol/prpc-go/pkg/rpc"
	"github.com/prpc-protocol/prpc-go/pkg/transport"
)

// Config holds the device configuration.
type Config struct {
	ListenAddress string `yaml:"listen"`
	Name          string `yaml:"name"`
	Serial        string `yaml:"serial"`
	EventLog      string `yaml:"event_log"`
	MDNS          bool   `yaml:"mdns"`
	LogLevel      string `yaml:"log_level"`
}

func defaultConfig() Config {
	return Config{
		ListenAddress: fmt.Sprintf(":%d", transport.DefaultPort),
		Name:          "prpc-device",
		MDNS:          true,
		LogLevel:      "info",
	}
}

func main() {
	config, err := loadConfig(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger := newSlogLogger(config.LogLevel)
	slog.SetDefault(logger)

	protocolLogger, closeLog, err := buildProtocolLogger(config, logger)
	if err != nil {
		logger.Error("failed to open event log", "path", config.EventLog, "err", err)
		os.Exit(1)
	}
	defer closeLog()

	// RPC dispatch with the built-in handlers
	rpcServer := rpc.NewServer()
	rpcServer.SetLogger(protocolLogger)
	if err := registerBuiltinHandlers(rpcServer, config); err != nil {
		logger.Error("failed to register handlers", "err", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	server, err := transport.NewServer(transport.ServerConfig{
		Address: config.ListenAddress,
		Logger:  protocolLogger,
		OnConnect: func(conn *transport.ServerConn) {
			logger.Info("client connected", "conn_id", conn.ID(), "remote", conn.RemoteAddr())
		},
		OnDisconnect: func(conn *transport.ServerConn) {
			logger.Info("client disconnected", "conn_id", conn.ID())
		},
		OnLine: func(conn *transport.ServerConn, line string) {
			if err := rpcServer.ServeLine(ctx, conn, line); err != nil {
				logger.Warn("failed to send response", "conn_id", conn.ID(), "err", err)
			}
		},
		OnError: func(conn *transport.ServerConn, err error) {
			logger.Warn("transport error", "err", err)
		},
	})
	if err != nil {
		logger.Error("failed to create server", "err", err)
		os.Exit(1)
	}

	if err := server.Start(ctx); err != nil {
		logger.Error("failed to start server", "err", err)
		os.Exit(1)
	}
	logger.Info("listening", "addr", server.Addr(), "name", config.Name)

	var advertiser *discovery.Advertiser
	if config.MDNS {
		advertiser = discovery.NewAdvertiser(discovery.DefaultAdvertiserConfig())
		info := &discovery.Info{
			InstanceName: config.Name,
			Port:         listenPort(server),
			DeviceName:   config.Name,
			Serial:       config.Serial,
		}
		if err := advertiser.Advertise(ctx, info); err != nil {
			logger.Warn("mDNS advertising failed", "err", err)
			advertiser = nil
		} else {
			logger.Info("advertising over mDNS", "instance", config.Name, "service", discovery.ServiceType)
		}
	}

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh

	logger.Info("shutting down", "signal", sig.String())

	if advertiser != nil {
		advertiser.Stop()
	}
	if err := server.Stop(); err != nil {
		logger.Warn("error stopping server", "err", err)
	}
}

// loadConfig merges defaults, the optional YAML file, and flags.
// Flags given on the command line take precedence over the file.
func loadConfig(args []string) (Config, error) {
	config := defaultConfig()

	fs := flag.NewFlagSet("prpc-device", flag.ExitOnError)
	configFile := fs.String("config", "", "Configuration file path (YAML)")
	fs.StringVar(&config.ListenAddress, "listen", config.ListenAddress, "Listen address")
	fs.StringVar(&config.Name, "name", config.Name, "Device name advertised over mDNS")
	fs.StringVar(&config.Serial, "serial", config.Serial, "Device serial number")
	fs.StringVar(&config.EventLog, "event-log", config.EventLog, "Path for the CBOR protocol event log")
	fs.BoolVar(&config.MDNS, "mdns", config.MDNS, "Advertise the device over mDNS")
	fs.StringVar(&config.LogLevel, "log-level", config.LogLevel, "Log level: debug, info, warn, error")
	if err := fs.Parse(args); err != nil {
		return config, err
	}

	if *configFile != "" {
		fileConfig := defaultConfig()
		data, err := os.ReadFile(*configFile)
		if err != nil {
			return config, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &fileConfig); err != nil {
			return config, fmt.Errorf("failed to parse config: %w", err)
		}

		// Re-apply explicit flags over the file values
		config = fileConfig
		fs.Visit(func(f *flag.Flag) {
			switch f.Name {
			case "listen":
				config.ListenAddress = f.Value.String()
			case "name":
				config.Name = f.Value.String()
			case "serial":
				config.Serial = f.Value.String()
			case "event-log":
				config.EventLog = f.Value.String()
			case "mdns":
				config.MDNS = f.Value.String() == "true"
			case "log-level":
				config.LogLevel = f.Value.String()
			}
		})
	}

	return config, nil
}

func newSlogLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})
	return slog.New(handler)
}

// buildProtocolLogger assembles the protocol event logger: always the
// slog console adapter, plus the CBOR file logger when configured.
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

// listenPort extracts the bound TCP port, which may differ from the
// configured one when listening on port 0.
func listenPort(server *transport.Server) uint16 {
	if addr, ok := server.Addr().(*net.TCPAddr); ok {
		return uint16(addr.Port)
	}
	return transport.DefaultPort
}
