package interactive

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trackingkind/linkd/pkg/connection"
	"github.com/trackingkind/linkd/pkg/persistence"
	"github.com/trackingkind/linkd/pkg/transport"
)

// syncBuffer is a bytes.Buffer safe for the event goroutine and the test.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

type fakeDiscoverer struct {
	peers []transport.Peer
	err   error
}

func (d *fakeDiscoverer) Discover(ctx context.Context) (<-chan transport.Peer, error) {
	if d.err != nil {
		return nil, d.err
	}
	ch := make(chan transport.Peer, len(d.peers))
	for _, p := range d.peers {
		ch <- p
	}
	close(ch)
	return ch, nil
}

func newManager(t *testing.T, tr transport.Transport) *connection.Manager {
	t.Helper()
	m := connection.NewManager(tr, connection.Config{})
	t.Cleanup(m.Close)
	return m
}

func waitForOutput(t *testing.T, out *syncBuffer, want string) {
	t.Helper()
	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), want)
	}, 2*time.Second, 5*time.Millisecond, "output never contained %q:\n%s", want, out.String())
}

func TestConsoleChat(t *testing.T) {
	network := transport.NewMemoryNetwork()

	server := newManager(t, network.Attach("00:00:00:00:00:0A", "Device-A"))
	serverOut := &syncBuffer{}
	serverConsole := newConsole(server, nil, nil, serverOut)

	client := newManager(t, network.Attach("00:00:00:00:00:0B", "Device-B"))
	clientOut := &syncBuffer{}
	clientConsole := newConsole(client, nil, nil, clientOut)

	ctx := context.Background()
	serverConsole.execute(ctx, "listen")
	waitForOutput(t, serverOut, "[STATE] Listening")

	clientConsole.execute(ctx, "connect 00:00:00:00:00:0A")
	waitForOutput(t, clientOut, "[PEER] Connected to 00:00:00:00:00:0A")
	waitForOutput(t, serverOut, "[PEER] Connected to Device-B")

	clientConsole.execute(ctx, "send hello there")
	waitForOutput(t, clientOut, `[SENT] "hello there"`)
	waitForOutput(t, serverOut, `[RECV] Device-B: "hello there"`)

	serverConsole.execute(ctx, "status")
	waitForOutput(t, serverOut, "State: Connected (CONNECTED)")
	waitForOutput(t, serverOut, "Peer:  Device-B")
}

func TestConsoleSendNotConnected(t *testing.T) {
	network := transport.NewMemoryNetwork()
	m := newManager(t, network.Attach("00:00:00:00:00:0A", "Device-A"))
	out := &syncBuffer{}
	c := newConsole(m, nil, nil, out)

	c.execute(context.Background(), "send hi")
	assert.Contains(t, out.String(), "Not connected")

	c.execute(context.Background(), "send")
	assert.Contains(t, out.String(), "Usage: send <text>")
}

func TestConsoleConnectUsage(t *testing.T) {
	network := transport.NewMemoryNetwork()
	m := newManager(t, network.Attach("00:00:00:00:00:0A", "Device-A"))
	out := &syncBuffer{}
	c := newConsole(m, nil, nil, out)

	c.execute(context.Background(), "connect")
	assert.Contains(t, out.String(), "Usage: connect")

	c.execute(context.Background(), "connect somewhere sideways")
	assert.Contains(t, out.String(), "Invalid variant: sideways")
	assert.Equal(t, connection.StateNone, m.State())
}

func TestConsoleConnectFailureNotice(t *testing.T) {
	network := transport.NewMemoryNetwork()
	m := newManager(t, network.Attach("00:00:00:00:00:0A", "Device-A"))
	out := &syncBuffer{}
	c := newConsole(m, nil, nil, out)

	c.execute(context.Background(), "connect 00:00:00:00:00:FF insecure")
	waitForOutput(t, out, "[NOTICE] "+connection.NoticeConnectFailed)
	waitForOutput(t, out, "[STATE] Listening")
}

func TestConsoleResolvePeer(t *testing.T) {
	network := transport.NewMemoryNetwork()
	m := newManager(t, network.Attach("00:00:00:00:00:0A", "Device-A"))

	store := persistence.NewPeerStore("")
	store.Remember(persistence.KnownPeer{Address: "00:00:00:00:00:0C", Name: "Kitchen", Secure: false})

	c := newConsole(m, store, nil, &syncBuffer{})
	c.discovered = []transport.Peer{{Address: "10.0.0.7", Name: "Garage"}}

	t.Run("KnownPeer", func(t *testing.T) {
		peer, secure := c.resolvePeer("kitchen")
		assert.Equal(t, transport.Peer{Address: "00:00:00:00:00:0C", Name: "Kitchen"}, peer)
		assert.False(t, secure)
	})

	t.Run("Discovered", func(t *testing.T) {
		peer, secure := c.resolvePeer("Garage")
		assert.Equal(t, "10.0.0.7", peer.Address)
		assert.True(t, secure)
	})

	t.Run("Address", func(t *testing.T) {
		peer, secure := c.resolvePeer("00:00:00:00:00:0D")
		assert.Equal(t, transport.Peer{Address: "00:00:00:00:00:0D"}, peer)
		assert.True(t, secure)
	})
}

func TestConsolePeers(t *testing.T) {
	network := transport.NewMemoryNetwork()
	m := newManager(t, network.Attach("00:00:00:00:00:0A", "Device-A"))

	path := filepath.Join(t.TempDir(), "peers.json")
	store := persistence.NewPeerStore(path)
	out := &syncBuffer{}
	c := newConsole(m, store, nil, out)
	ctx := context.Background()

	c.execute(ctx, "peers")
	assert.Contains(t, out.String(), "No known peers")

	store.Remember(persistence.KnownPeer{Address: "00:00:00:00:00:0C", Name: "Kitchen", Secure: true})
	c.execute(ctx, "peers")
	assert.Contains(t, out.String(), "Known peers (1):")
	assert.Contains(t, out.String(), "Kitchen")

	c.execute(ctx, "forget 00:00:00:00:00:0C")
	assert.Contains(t, out.String(), "Forgot 00:00:00:00:00:0C")
	assert.Empty(t, store.List())

	reloaded := persistence.NewPeerStore(path)
	require.NoError(t, reloaded.Load())
	assert.Empty(t, reloaded.List())

	c.execute(ctx, "forget 00:00:00:00:00:0C")
	assert.Contains(t, out.String(), "Unknown peer: 00:00:00:00:00:0C")
}

func TestConsoleDiscover(t *testing.T) {
	network := transport.NewMemoryNetwork()
	m := newManager(t, network.Attach("00:00:00:00:00:0A", "Device-A"))
	ctx := context.Background()

	t.Run("Unavailable", func(t *testing.T) {
		out := &syncBuffer{}
		c := newConsole(m, nil, nil, out)
		c.execute(ctx, "discover")
		assert.Contains(t, out.String(), "Discovery is not available")
	})

	t.Run("Found", func(t *testing.T) {
		out := &syncBuffer{}
		d := &fakeDiscoverer{peers: []transport.Peer{{Address: "10.0.0.7", Name: "Garage"}}}
		c := newConsole(m, nil, d, out)
		c.execute(ctx, "discover 1")
		assert.Contains(t, out.String(), "Garage (10.0.0.7)")
		assert.Contains(t, out.String(), "Found 1 peer(s)")
		assert.Len(t, c.discovered, 1)
	})

	t.Run("Error", func(t *testing.T) {
		out := &syncBuffer{}
		c := newConsole(m, nil, &fakeDiscoverer{err: errors.New("no browser")}, out)
		c.execute(ctx, "discover")
		assert.Contains(t, out.String(), "Discovery failed: no browser")
	})

	t.Run("BadDuration", func(t *testing.T) {
		out := &syncBuffer{}
		c := newConsole(m, nil, &fakeDiscoverer{}, out)
		c.execute(ctx, "discover soon")
		assert.Contains(t, out.String(), "Invalid duration: soon")
	})
}

func TestConsoleQuit(t *testing.T) {
	network := transport.NewMemoryNetwork()
	m := newManager(t, network.Attach("00:00:00:00:00:0A", "Device-A"))
	out := &syncBuffer{}
	c := newConsole(m, nil, nil, out)

	assert.False(t, c.execute(context.Background(), ""))
	assert.False(t, c.execute(context.Background(), "bogus"))
	assert.Contains(t, out.String(), "Unknown command: bogus")
	assert.True(t, c.execute(context.Background(), "quit"))
}
