//go:build linux

package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"sync/atomic"

	"golang.org/x/sys/unix"
)

// RFCOMMTransport opens Bluetooth RFCOMM stream sockets through the kernel
// Bluetooth stack. Pairing and SDP registration are left to the system
// daemon; each variant is reached on a fixed channel.
type RFCOMMTransport struct {
	config RFCOMMConfig
	local  [6]uint8
}

// NewRFCOMMTransport creates an RFCOMM transport.
func NewRFCOMMTransport(config RFCOMMConfig) (*RFCOMMTransport, error) {
	config.applyDefaults()

	var local [6]uint8
	if config.Adapter != "" {
		addr, err := parseBDAddr(config.Adapter)
		if err != nil {
			return nil, err
		}
		local = addr
	}
	return &RFCOMMTransport{config: config, local: local}, nil
}

func newRFCOMMSocket() (int, error) {
	fd, err := unix.Socket(unix.AF_BLUETOOTH, unix.SOCK_STREAM|unix.SOCK_CLOEXEC, unix.BTPROTO_RFCOMM)
	if err != nil {
		return -1, fmt.Errorf("rfcomm socket: %w", err)
	}
	return fd, nil
}

// Listen binds the variant's channel on the local adapter.
func (t *RFCOMMTransport) Listen(svc ServiceRecord) (Listener, error) {
	fd, err := newRFCOMMSocket()
	if err != nil {
		return nil, err
	}

	sa := &unix.SockaddrRFCOMM{Addr: t.local, Channel: t.config.channel(svc.Variant)}
	if err := unix.Bind(fd, sa); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("bind %s on channel %d: %w", svc.Name, sa.Channel, err)
	}
	if err := unix.Listen(fd, 1); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("listen %s: %w", svc.Name, err)
	}
	return &rfcommListener{fd: fd}, nil
}

// Connect dials the variant's channel on the peer. Cancelling ctx shuts the
// socket down, which aborts a pending connect.
func (t *RFCOMMTransport) Connect(ctx context.Context, peer Peer, svc ServiceRecord) (Link, error) {
	remote, err := parseBDAddr(peer.Address)
	if err != nil {
		return nil, err
	}

	fd, err := newRFCOMMSocket()
	if err != nil {
		return nil, err
	}

	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			_ = unix.Shutdown(fd, unix.SHUT_RDWR)
		case <-done:
		}
	}()

	err = unix.Connect(fd, &unix.SockaddrRFCOMM{Addr: remote, Channel: t.config.channel(svc.Variant)})
	close(done)
	if err != nil {
		unix.Close(fd)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("connect %s: %w", peer.Address, err)
	}
	return &rfcommLink{fd: fd}, nil
}

// CancelDiscovery is a no-op: device inquiry is run by the system daemon,
// not by this transport.
func (t *RFCOMMTransport) CancelDiscovery() {}

type rfcommListener struct {
	fd     int
	closed atomic.Bool
	once   sync.Once
}

func (l *rfcommListener) Accept() (Link, Peer, error) {
	for {
		nfd, sa, err := unix.Accept(l.fd)
		if err != nil {
			if l.closed.Load() {
				return nil, Peer{}, ErrListenerClosed
			}
			if errors.Is(err, unix.EINTR) {
				continue
			}
			return nil, Peer{}, fmt.Errorf("rfcomm accept: %w", err)
		}

		var peer Peer
		if rc, ok := sa.(*unix.SockaddrRFCOMM); ok {
			peer.Address = formatBDAddr(rc.Addr)
		}
		return &rfcommLink{fd: nfd}, peer, nil
	}
}

func (l *rfcommListener) Close() error {
	var err error
	l.once.Do(func() {
		l.closed.Store(true)
		_ = unix.Shutdown(l.fd, unix.SHUT_RDWR)
		err = unix.Close(l.fd)
	})
	return err
}

// rfcommLink is a connected RFCOMM socket.
type rfcommLink struct {
	fd   int
	once sync.Once
}

func (c *rfcommLink) Read(p []byte) (int, error) {
	for {
		n, err := unix.Read(c.fd, p)
		if errors.Is(err, unix.EINTR) {
			continue
		}
		if err != nil {
			return 0, err
		}
		if n == 0 && len(p) > 0 {
			return 0, io.EOF
		}
		return n, nil
	}
}

func (c *rfcommLink) Write(p []byte) (int, error) {
	written := 0
	for written < len(p) {
		n, err := unix.Write(c.fd, p[written:])
		if errors.Is(err, unix.EINTR) {
			continue
		}
		if err != nil {
			return written, err
		}
		written += n
	}
	return written, nil
}

func (c *rfcommLink) Close() error {
	var err error
	c.once.Do(func() {
		_ = unix.Shutdown(c.fd, unix.SHUT_RDWR)
		err = unix.Close(c.fd)
	})
	return err
}

// parseBDAddr parses "AA:BB:CC:DD:EE:FF" into the little-endian byte order
// the kernel expects.
func parseBDAddr(s string) ([6]uint8, error) {
	var addr [6]uint8
	mac, err := net.ParseMAC(s)
	if err != nil || len(mac) != 6 {
		return addr, fmt.Errorf("%w: %q", ErrInvalidAddress, s)
	}
	for i := range addr {
		addr[i] = mac[5-i]
	}
	return addr, nil
}

func formatBDAddr(addr [6]uint8) string {
	return fmt.Sprintf("%02X:%02X:%02X:%02X:%02X:%02X",
		addr[5], addr[4], addr[3], addr[2], addr[1], addr[0])
}
