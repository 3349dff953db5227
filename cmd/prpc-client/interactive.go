package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"sync"

	"github.com/chzyer/readline"

	"github.com/prpc-protocol/prpc-go/pkg/discovery"
	"github.com/prpc-protocol/prpc-go/pkg/frame"
	"github.com/prpc-protocol/prpc-go/pkg/log"
	"github.com/prpc-protocol/prpc-go/pkg/rpc"
	"github.com/prpc-protocol/prpc-go/pkg/transport"
)

// InteractiveClient handles the interactive shell for prpc-client.
type InteractiveClient struct {
	config  Config
	rl      *readline.Instance
	browser *discovery.Browser

	mu         sync.Mutex
	logger     log.Logger
	conn       *transport.ClientConn
	rpcClient  *rpc.Client
	pumpCancel context.CancelFunc

	// Instance names seen by the last discover, for connect-by-name
	discovered map[string]*discovery.Service
}

// NewInteractiveClient creates a new interactive client shell.
func NewInteractiveClient(config Config) (*InteractiveClient, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "prpc> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}

	return &InteractiveClient{
		config:     config,
		rl:         rl,
		browser:    discovery.NewBrowser(discovery.BrowserConfig{}),
		logger:     log.NoopLogger{},
		discovered: make(map[string]*discovery.Service),
	}, nil
}

// Stdout returns a writer that coordinates with the readline input.
// Use this for log output to avoid interfering with the command prompt.
func (ic *InteractiveClient) Stdout() io.Writer {
	return ic.rl.Stdout()
}

// SetLogger sets the protocol event logger used for new connections.
func (ic *InteractiveClient) SetLogger(logger log.Logger) {
	ic.mu.Lock()
	defer ic.mu.Unlock()
	ic.logger = logger
}

// Close releases the readline instance and any open connection.
func (ic *InteractiveClient) Close() error {
	ic.disconnect()
	return ic.rl.Close()
}

// Run starts the interactive command loop.
func (ic *InteractiveClient) Run(ctx context.Context, cancel context.CancelFunc) {
	ic.printHelp()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := ic.rl.Readline()
		if err != nil {
			// EOF or interrupt
			if err == readline.ErrInterrupt {
				continue
			}
			fmt.Fprintln(ic.rl.Stdout(), "Exiting...")
			cancel()
			return
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		cmd, rest, _ := strings.Cut(input, " ")
		cmd = strings.ToLower(cmd)
		rest = strings.TrimSpace(rest)

		switch cmd {
		case "help", "?":
			ic.printHelp()

		case "discover", "d":
			ic.cmdDiscover(ctx)

		case "connect", "c":
			ic.cmdConnect(ctx, rest)

		case "disconnect":
			ic.cmdDisconnect()

		case "call":
			ic.cmdCall(ctx, rest)

		case "notify", "n":
			ic.cmdNotify(rest)

		case "raw":
			ic.cmdRaw(rest)

		case "status":
			ic.cmdStatus()

		case "quit", "exit", "q":
			fmt.Fprintln(ic.rl.Stdout(), "Exiting...")
			cancel()
			return

		default:
			fmt.Fprintf(ic.rl.Stdout(), "Unknown command: %s (type 'help' for commands)\n", cmd)
		}
	}
}

func (ic *InteractiveClient) printHelp() {
	fmt.Fprintln(ic.rl.Stdout(), `
PRPC Client Commands:
  Discovery & Connection:
    discover                    - Discover PRPC devices over mDNS
    connect <address|instance>  - Connect to a device
    disconnect                  - Close the current connection

  Requests:
    call <identifier> [args]    - Send a request and wait for the response
    notify <identifier> [args]  - Send a wildcard frame (no response)
    raw <line>                  - Send a raw protocol line

  General:
    status                      - Show connection status
    help                        - Show this help
    quit                        - Exit the client

  Argument Format:
    Integers, floats, yes/no booleans, and "quoted strings" -
    e.g. call gpio/led/set yes
         call motor/speed 2.5 "soft start"`)
}

// cmdDiscover handles the discover command.
func (ic *InteractiveClient) cmdDiscover(ctx context.Context) {
	fmt.Fprintln(ic.rl.Stdout(), "Discovering PRPC devices...")

	browseCtx, cancel := context.WithTimeout(ctx, discovery.BrowseTimeout)
	defer cancel()

	results, err := ic.browser.Browse(browseCtx)
	if err != nil {
		fmt.Fprintf(ic.rl.Stdout(), "Discovery error: %v\n", err)
		return
	}

	count := 0
	for svc := range results {
		count++
		ic.mu.Lock()
		ic.discovered[svc.InstanceName] = svc
		ic.mu.Unlock()

		fmt.Fprintf(ic.rl.Stdout(), "  %d. %s (%s, port %d)\n",
			count, svc.InstanceName, svc.DeviceName, svc.Port)
		for _, addr := range svc.Addresses {
			fmt.Fprintf(ic.rl.Stdout(), "     %s\n", addr)
		}
		if svc.Serial != "" {
			fmt.Fprintf(ic.rl.Stdout(), "     serial: %s\n", svc.Serial)
		}
	}

	if count == 0 {
		fmt.Fprintln(ic.rl.Stdout(), "No devices found")
	}
}

// cmdConnect handles the connect command.
func (ic *InteractiveClient) cmdConnect(ctx context.Context, target string) {
	if target == "" {
		fmt.Fprintln(ic.rl.Stdout(), "Usage: connect <address|instance>")
		return
	}

	if err := ic.Connect(ctx, target); err != nil {
		fmt.Fprintf(ic.rl.Stdout(), "Failed to connect: %v\n", err)
	}
}

// Connect connects to a device by address or mDNS instance name.
func (ic *InteractiveClient) Connect(ctx context.Context, target string) error {
	ic.mu.Lock()
	if ic.conn != nil {
		ic.mu.Unlock()
		return errors.New("already connected (use 'disconnect' first)")
	}
	logger := ic.logger
	ic.mu.Unlock()

	address, err := ic.resolveTarget(ctx, target)
	if err != nil {
		return err
	}

	tc := transport.NewClient(transport.ClientConfig{Logger: logger})
	conn, err := tc.Connect(ctx, address)
	if err != nil {
		return err
	}

	rpcClient := rpc.NewClient(conn)
	rpcClient.SetTimeout(ic.config.Timeout)
	rpcClient.SetNotificationHandler(func(f *frame.Frame) {
		fmt.Fprintf(ic.rl.Stdout(), "[NOTIFY] %s\n", formatFrame(f))
	})

	pumpCtx, pumpCancel := context.WithCancel(context.Background())

	ic.mu.Lock()
	ic.conn = conn
	ic.rpcClient = rpcClient
	ic.pumpCancel = pumpCancel
	ic.mu.Unlock()

	go ic.pump(pumpCtx, conn, rpcClient)

	fmt.Fprintf(ic.rl.Stdout(), "Connected to %s\n", conn.RemoteAddr())
	return nil
}

// resolveTarget turns a connect argument into a dialable address.
// Anything containing a ':' is used as-is; otherwise it is treated as
// an mDNS instance name.
func (ic *InteractiveClient) resolveTarget(ctx context.Context, target string) (string, error) {
	if strings.Contains(target, ":") {
		return target, nil
	}

	ic.mu.Lock()
	svc := ic.discovered[target]
	ic.mu.Unlock()

	if svc == nil {
		fmt.Fprintf(ic.rl.Stdout(), "Looking for %q over mDNS...\n", target)
		findCtx, cancel := context.WithTimeout(ctx, discovery.BrowseTimeout)
		defer cancel()

		found, err := ic.browser.Find(findCtx, target)
		if err != nil {
			return "", fmt.Errorf("device %q not found: %w", target, err)
		}
		svc = found
	}

	if len(svc.Addresses) == 0 {
		return "", fmt.Errorf("device %q has no addresses", target)
	}
	return net.JoinHostPort(svc.Addresses[0], strconv.Itoa(int(svc.Port))), nil
}

// pump reads inbound lines and routes them to the RPC client. Response
// frames nothing is waiting for and unparseable lines are shown as-is.
func (ic *InteractiveClient) pump(ctx context.Context, conn *transport.ClientConn, rpcClient *rpc.Client) {
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	for {
		line, err := conn.ReceiveLine(0)
		if err != nil {
			break
		}

		f, perr := frame.Parse(line)
		if perr != nil {
			fmt.Fprintf(ic.rl.Stdout(), "[RECV] unparseable line: %q\n", line)
			continue
		}
		if herr := rpcClient.HandleFrame(f); herr != nil {
			fmt.Fprintf(ic.rl.Stdout(), "[RECV] %s\n", formatFrame(f))
		}
	}

	rpcClient.Close()

	ic.mu.Lock()
	wasCurrent := ic.conn == conn
	if wasCurrent {
		ic.conn = nil
		ic.rpcClient = nil
		ic.pumpCancel = nil
	}
	ic.mu.Unlock()

	if wasCurrent && ctx.Err() == nil {
		fmt.Fprintln(ic.rl.Stdout(), "Disconnected")
	}
}

// cmdDisconnect handles the disconnect command.
func (ic *InteractiveClient) cmdDisconnect() {
	if !ic.disconnect() {
		fmt.Fprintln(ic.rl.Stdout(), "Not connected")
	}
}

func (ic *InteractiveClient) disconnect() bool {
	ic.mu.Lock()
	conn := ic.conn
	cancel := ic.pumpCancel
	ic.conn = nil
	ic.rpcClient = nil
	ic.pumpCancel = nil
	ic.mu.Unlock()

	if conn == nil {
		return false
	}
	if cancel != nil {
		cancel()
	}
	conn.Close()
	return true
}

// cmdCall handles the call command.
func (ic *InteractiveClient) cmdCall(ctx context.Context, rest string) {
	identifier, argText, _ := strings.Cut(rest, " ")
	if identifier == "" {
		fmt.Fprintln(ic.rl.Stdout(), "Usage: call <identifier> [args]")
		return
	}

	rpcClient := ic.currentClient()
	if rpcClient == nil {
		fmt.Fprintln(ic.rl.Stdout(), "Not connected (use 'connect' first)")
		return
	}

	args, err := parseArguments(argText)
	if err != nil {
		fmt.Fprintf(ic.rl.Stdout(), "%v\n", err)
		return
	}

	resp, err := rpcClient.Call(ctx, identifier, args...)
	if err != nil {
		fmt.Fprintf(ic.rl.Stdout(), "Call failed: %v\n", err)
		return
	}

	fmt.Fprintln(ic.rl.Stdout(), formatResponse(resp))
}

// cmdNotify handles the notify command.
func (ic *InteractiveClient) cmdNotify(rest string) {
	identifier, argText, _ := strings.Cut(rest, " ")
	if identifier == "" {
		fmt.Fprintln(ic.rl.Stdout(), "Usage: notify <identifier> [args]")
		return
	}

	rpcClient := ic.currentClient()
	if rpcClient == nil {
		fmt.Fprintln(ic.rl.Stdout(), "Not connected (use 'connect' first)")
		return
	}

	args, err := parseArguments(argText)
	if err != nil {
		fmt.Fprintf(ic.rl.Stdout(), "%v\n", err)
		return
	}

	if err := rpcClient.Notify(identifier, args...); err != nil {
		fmt.Fprintf(ic.rl.Stdout(), "Notify failed: %v\n", err)
		return
	}
	fmt.Fprintln(ic.rl.Stdout(), "Sent")
}

// cmdRaw handles the raw command. The line is sent verbatim with a
// newline appended; any response shows up via the receive pump.
func (ic *InteractiveClient) cmdRaw(rest string) {
	if rest == "" {
		fmt.Fprintln(ic.rl.Stdout(), "Usage: raw <line>")
		return
	}

	ic.mu.Lock()
	conn := ic.conn
	ic.mu.Unlock()

	if conn == nil {
		fmt.Fprintln(ic.rl.Stdout(), "Not connected (use 'connect' first)")
		return
	}

	if err := conn.SendLine(rest + "\n"); err != nil {
		fmt.Fprintf(ic.rl.Stdout(), "Send failed: %v\n", err)
	}
}

// cmdStatus handles the status command.
func (ic *InteractiveClient) cmdStatus() {
	ic.mu.Lock()
	conn := ic.conn
	ic.mu.Unlock()

	if conn == nil {
		fmt.Fprintln(ic.rl.Stdout(), "Not connected")
		return
	}
	fmt.Fprintf(ic.rl.Stdout(), "Connected to %s (conn %s)\n", conn.RemoteAddr(), conn.ID())
}

func (ic *InteractiveClient) currentClient() *rpc.Client {
	ic.mu.Lock()
	defer ic.mu.Unlock()
	return ic.rpcClient
}

// parseArguments parses shell input into frame values using the
// protocol's own literal syntax.
func parseArguments(text string) ([]frame.Value, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}

	f, err := frame.Parse("0:args " + text + "\n")
	if err != nil {
		return nil, fmt.Errorf("invalid arguments: %w", err)
	}
	return f.Args(), nil
}

// formatResponse renders a response frame for display.
func formatResponse(resp *frame.Frame) string {
	if !resp.HasArgs() {
		return resp.Identifier()
	}
	return resp.Identifier() + " " + formatArgs(resp.Args())
}

// formatFrame renders a frame's identifier and arguments for display.
func formatFrame(f *frame.Frame) string {
	if !f.HasArgs() {
		return f.Identifier()
	}
	return f.Identifier() + " " + formatArgs(f.Args())
}

func formatArgs(args []frame.Value) string {
	parts := make([]string, len(args))
	for i, arg := range args {
		parts[i] = arg.String()
	}
	return strings.Join(parts, " ")
}
