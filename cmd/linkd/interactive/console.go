// Package interactive provides the interactive command-line interface
// for linkd.
package interactive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/chzyer/readline"

	"github.com/trackingkind/linkd/pkg/connection"
	"github.com/trackingkind/linkd/pkg/persistence"
	"github.com/trackingkind/linkd/pkg/transport"
)

// DefaultDiscoverTimeout is how long the discover command browses.
const DefaultDiscoverTimeout = 5 * time.Second

// Discoverer finds nearby peers. Transports without discovery leave it nil.
type Discoverer interface {
	Discover(ctx context.Context) (<-chan transport.Peer, error)
}

// Console handles interactive mode for linkd.
type Console struct {
	m          *connection.Manager
	peers      *persistence.PeerStore
	discoverer Discoverer
	rl         *readline.Instance
	out        io.Writer

	mu         sync.Mutex
	discovered []transport.Peer
}

// New creates a console reading commands with readline.
func New(m *connection.Manager, peers *persistence.PeerStore, d Discoverer) (*Console, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "linkd> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}

	c := newConsole(m, peers, d, rl.Stdout())
	c.rl = rl
	return c, nil
}

func newConsole(m *connection.Manager, peers *persistence.PeerStore, d Discoverer, out io.Writer) *Console {
	c := &Console{
		m:          m,
		peers:      peers,
		discoverer: d,
		out:        out,
	}
	m.OnEvent(c.handleEvent)
	return c
}

// Stdout returns a writer that properly coordinates with the readline input.
// Use this for log output to avoid interfering with the command prompt.
func (c *Console) Stdout() io.Writer {
	return c.out
}

// Run starts the interactive command loop.
func (c *Console) Run(ctx context.Context, cancel context.CancelFunc) {
	defer c.rl.Close()

	c.printHelp()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := c.rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				continue
			}
			// EOF
			fmt.Fprintln(c.out, "Exiting...")
			cancel()
			return
		}

		if c.execute(ctx, line) {
			cancel()
			return
		}
	}
}

// execute runs one command line and reports whether the console should exit.
func (c *Console) execute(ctx context.Context, line string) bool {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return false
	}
	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	switch cmd {
	case "help", "?":
		c.printHelp()

	case "status", "s":
		c.cmdStatus()

	case "listen", "l":
		c.m.StartListening()

	case "connect", "c":
		c.cmdConnect(args)

	case "send":
		c.cmdSend(line)

	case "stop":
		c.m.Stop()

	case "peers", "p":
		c.cmdPeers()

	case "forget":
		c.cmdForget(args)

	case "discover", "d":
		c.cmdDiscover(ctx, args)

	case "quit", "exit", "q":
		fmt.Fprintln(c.out, "Exiting...")
		return true

	default:
		fmt.Fprintf(c.out, "Unknown command: %s (type 'help' for commands)\n", cmd)
	}
	return false
}

func (c *Console) printHelp() {
	fmt.Fprintln(c.out, `
linkd Commands:
  Connection:
    status                     - Show connection state
    listen                     - Wait for a peer to connect
    connect <peer> [secure|insecure]
                               - Connect to a peer (name or address)
    send <text>                - Send text to the connected peer
    stop                       - Drop the link and stop listening

  Peers:
    peers                      - List known peers
    forget <address>           - Remove a known peer
    discover [seconds]         - Browse for nearby peers

  General:
    help                       - Show this help
    quit                       - Exit linkd`)
}

func (c *Console) cmdStatus() {
	state := c.m.State()
	fmt.Fprintf(c.out, "State: %s (%s)\n", state.Description(), state)
	if peer, ok := c.m.Peer(); ok {
		variant, _ := c.m.Variant()
		fmt.Fprintf(c.out, "Peer:  %s [%s]\n", peer, variant)
	}
}

func (c *Console) cmdConnect(args []string) {
	if len(args) < 1 || len(args) > 2 {
		fmt.Fprintln(c.out, "Usage: connect <peer> [secure|insecure]")
		return
	}

	peer, secure := c.resolvePeer(args[0])
	if len(args) == 2 {
		switch strings.ToLower(args[1]) {
		case "secure":
			secure = true
		case "insecure":
			secure = false
		default:
			fmt.Fprintf(c.out, "Invalid variant: %s (must be secure or insecure)\n", args[1])
			return
		}
	}

	fmt.Fprintf(c.out, "Connecting to %s...\n", peer)
	c.m.Connect(peer, secure)
}

// resolvePeer maps a name or address to a peer. Known peers come first, then
// peers found by the last discover. Unknown input is used as an address.
func (c *Console) resolvePeer(nameOrAddress string) (transport.Peer, bool) {
	if c.peers != nil {
		if known, err := c.peers.Lookup(nameOrAddress); err == nil {
			return transport.Peer{Address: known.Address, Name: known.Name}, known.Secure
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, p := range c.discovered {
		if strings.EqualFold(p.Name, nameOrAddress) {
			return p, true
		}
	}
	return transport.Peer{Address: nameOrAddress}, true
}

func (c *Console) cmdSend(line string) {
	text := strings.TrimSpace(line)
	if i := strings.IndexFunc(text, isSpace); i >= 0 {
		text = strings.TrimSpace(text[i:])
	} else {
		text = ""
	}
	if text == "" {
		fmt.Fprintln(c.out, "Usage: send <text>")
		return
	}

	if err := c.m.Send([]byte(text)); err != nil {
		if errors.Is(err, connection.ErrNotConnected) {
			fmt.Fprintln(c.out, "Not connected")
			return
		}
		fmt.Fprintf(c.out, "Send failed: %v\n", err)
	}
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t'
}

func (c *Console) cmdPeers() {
	if c.peers == nil {
		fmt.Fprintln(c.out, "No peer book configured")
		return
	}

	peers := c.peers.List()
	if len(peers) == 0 {
		fmt.Fprintln(c.out, "No known peers")
		return
	}

	fmt.Fprintf(c.out, "Known peers (%d):\n", len(peers))
	for _, p := range peers {
		variant := "insecure"
		if p.Secure {
			variant = "secure"
		}
		name := p.Name
		if name == "" {
			name = "-"
		}
		fmt.Fprintf(c.out, "  %-20s %-24s %-8s %s\n", name, p.Address, variant, p.LastConnected.Format(time.DateTime))
	}
}

func (c *Console) cmdForget(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(c.out, "Usage: forget <address>")
		return
	}
	if c.peers == nil || !c.peers.Forget(args[0]) {
		fmt.Fprintf(c.out, "Unknown peer: %s\n", args[0])
		return
	}
	if err := c.peers.Save(); err != nil {
		fmt.Fprintf(c.out, "Failed to save peers: %v\n", err)
		return
	}
	fmt.Fprintf(c.out, "Forgot %s\n", args[0])
}

func (c *Console) cmdDiscover(ctx context.Context, args []string) {
	if c.discoverer == nil {
		fmt.Fprintln(c.out, "Discovery is not available on this transport")
		return
	}

	timeout := DefaultDiscoverTimeout
	if len(args) > 0 {
		secs, err := strconv.Atoi(args[0])
		if err != nil || secs <= 0 {
			fmt.Fprintf(c.out, "Invalid duration: %s\n", args[0])
			return
		}
		timeout = time.Duration(secs) * time.Second
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	results, err := c.discoverer.Discover(ctx)
	if err != nil {
		fmt.Fprintf(c.out, "Discovery failed: %v\n", err)
		return
	}

	fmt.Fprintf(c.out, "Discovering for %s...\n", timeout)
	var found []transport.Peer
	for p := range results {
		found = append(found, p)
		fmt.Fprintf(c.out, "  %s\n", p)
	}

	c.mu.Lock()
	c.discovered = found
	c.mu.Unlock()

	fmt.Fprintf(c.out, "Found %d peer(s)\n", len(found))
}

func (c *Console) handleEvent(e connection.Event) {
	switch e.Type {
	case connection.EventStateChanged:
		fmt.Fprintf(c.out, "[STATE] %s\n", e.State.Description())
	case connection.EventDeviceIdentified:
		fmt.Fprintf(c.out, "[PEER] Connected to %s\n", e.DeviceName)
	case connection.EventDataReceived:
		fmt.Fprintf(c.out, "[RECV] %s: %q\n", e.Peer.DisplayName(), e.Data)
	case connection.EventDataSent:
		fmt.Fprintf(c.out, "[SENT] %q\n", e.Data)
	case connection.EventNotice:
		fmt.Fprintf(c.out, "[NOTICE] %s\n", e.Message)
	}
}
