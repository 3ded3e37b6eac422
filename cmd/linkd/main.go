// Command linkd keeps a single point-to-point link with one peer device.
//
// linkd listens for the peer on a secure and an insecure service and can
// also dial it. Whichever side succeeds first wins; the other attempt is
// dropped. Once connected, text typed in the console is sent to the peer and
// everything the peer sends is printed.
//
// Usage:
//
//	linkd [flags]
//
// Flags:
//
//	-config string          Configuration file path (YAML)
//	-name string            Device name shown to peers (default: hostname)
//	-transport string       Transport: tcp, rfcomm (default "tcp")
//	-host string            TCP listen host (default: all interfaces)
//	-secure-port int        TCP port of the secure service (default 7401)
//	-insecure-port int      TCP port of the insecure service (default 7402)
//	-advertise              Advertise and browse services over mDNS (tcp only)
//	-interface string       Network interface for mDNS (default: all)
//	-adapter string         Bluetooth adapter address (rfcomm only)
//	-secure-channel uint    RFCOMM channel of the secure service (default 3)
//	-insecure-channel uint  RFCOMM channel of the insecure service (default 4)
//	-buffer-size int        Read buffer size in bytes (default 1024)
//	-log-level string       Log level: debug, info, warn, error (default "info")
//	-protocol-log string    Write link events to this file (CBOR)
//	-peers string           Known peers file (JSON)
//	-interactive            Enable interactive command mode
//	-connect string         Keep connected to this peer (name or address)
//	-insecure               Use the insecure service for -connect
//
// Flags override values from the configuration file.
//
// Examples:
//
//	# Wait for a peer and chat with it
//	linkd -name Device-B -interactive
//
//	# Stay connected to a peer, redialing with backoff
//	linkd -name Device-A -connect 192.168.1.20 -peers ~/.linkd/peers.json
//
//	# Use Bluetooth and record every link event
//	linkd -transport rfcomm -protocol-log /tmp/linkd.llog -interactive
//
// Interactive Commands:
//
//	status      - Show connection state
//	listen      - Wait for a peer to connect
//	connect <peer> [secure|insecure] - Connect to a peer
//	send <text> - Send text to the connected peer
//	stop        - Drop the link and stop listening
//	peers       - List known peers
//	forget <address> - Remove a known peer
//	discover [seconds] - Browse for nearby peers
//	quit        - Exit linkd
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/trackingkind/linkd/cmd/linkd/interactive"
	"github.com/trackingkind/linkd/pkg/connection"
	"github.com/trackingkind/linkd/pkg/discovery"
	"github.com/trackingkind/linkd/pkg/log"
	"github.com/trackingkind/linkd/pkg/persistence"
	"github.com/trackingkind/linkd/pkg/transport"
)

var flags flagValues

func init() {
	registerFlags(flag.CommandLine, &flags)
}

func main() {
	flag.Parse()

	cfg, err := LoadConfig(flags.configFile)
	if err != nil {
		fatal(err)
	}
	flags.apply(flag.CommandLine, cfg)
	if err := cfg.Validate(); err != nil {
		fatal(fmt.Errorf("invalid configuration:\n%w", err))
	}
	level, _ := ParseLogLevel(cfg.LogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The console needs the manager, but the manager needs the logger. Log
	// through a writer that can be redirected once the console exists.
	out := &switchWriter{w: os.Stderr}
	logger := slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level}))

	logger.Info("linkd starting", "name", cfg.Name, "transport", cfg.Transport)

	tr, disc, cleanup, err := buildTransport(cfg, logger)
	if err != nil {
		fatal(err)
	}
	defer cleanup()

	protoLog, closeProtoLog, err := buildProtocolLogger(cfg, logger, level)
	if err != nil {
		fatal(err)
	}
	defer closeProtoLog()

	peers := persistence.NewPeerStore(cfg.PeersFile)
	if err := peers.Load(); err != nil {
		logger.Warn("failed to load known peers", "path", cfg.PeersFile, "error", err)
	}

	m := connection.NewManager(tr, connection.Config{
		Logger:         logger,
		ProtocolLogger: protoLog,
		BufferSize:     cfg.BufferSize,
		LocalRole:      cfg.Name,
	})
	defer m.Close()

	m.OnEvent(trackPeers(m, peers, logger))

	if cfg.Interactive {
		ic, err := interactive.New(m, peers, disc)
		if err != nil {
			fatal(fmt.Errorf("failed to create interactive console: %w", err))
		}
		// Route log output through readline to avoid interfering with input
		out.set(ic.Stdout())
		go ic.Run(ctx, cancel)
	} else {
		m.OnEvent(logEvents(logger))
	}

	var redialer *connection.Redialer
	if cfg.Autoconnect.Peer != "" {
		peer, secure := resolveAutoconnect(cfg.Autoconnect, peers)
		redialer = connection.NewRedialer(m, connection.RedialConfig{
			Peer:   peer,
			Secure: secure,
			Backoff: connection.BackoffConfig{
				Initial: cfg.Autoconnect.InitialBackoff,
				Max:     cfg.Autoconnect.MaxBackoff,
			},
			MaxAttempts: cfg.Autoconnect.MaxAttempts,
		})
		redialer.OnRedial(func(attempt int, delay time.Duration) {
			logger.Info("redialing", "peer", peer, "attempt", attempt, "delay", delay)
		})
		logger.Info("autoconnect enabled", "peer", peer, "secure", secure)
		redialer.Start()
	} else {
		m.StartListening()
	}

	// Wait for shutdown signal or context cancellation
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("received signal", "signal", sig)
	case <-ctx.Done():
		// Interactive quit
	}

	logger.Info("shutting down")
	if redialer != nil {
		redialer.Stop()
	}
	cancel()
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "linkd: %v\n", err)
	os.Exit(1)
}

// buildTransport creates the configured transport. The returned cleanup
// releases mDNS resources.
func buildTransport(cfg *Config, logger *slog.Logger) (transport.Transport, interactive.Discoverer, func(), error) {
	switch cfg.Transport {
	case TransportRFCOMM:
		t, err := transport.NewRFCOMMTransport(transport.RFCOMMConfig{
			Adapter:         cfg.RFCOMM.Adapter,
			SecureChannel:   cfg.RFCOMM.SecureChannel,
			InsecureChannel: cfg.RFCOMM.InsecureChannel,
		})
		if err != nil {
			return nil, nil, nil, fmt.Errorf("rfcomm transport: %w", err)
		}
		return t, nil, func() {}, nil

	default:
		tcpCfg := transport.TCPConfig{
			Name:         cfg.Name,
			Host:         cfg.TCP.Host,
			SecurePort:   cfg.TCP.SecurePort,
			InsecurePort: cfg.TCP.InsecurePort,
		}
		if !cfg.TCP.Advertise {
			return transport.NewTCPTransport(tcpCfg), nil, func() {}, nil
		}

		advertiser, err := discovery.NewMDNSAdvertiser(discovery.AdvertiserConfig{
			Interface: cfg.TCP.Interface,
			TTL:       discovery.DefaultTTL,
		})
		if err != nil {
			return nil, nil, nil, fmt.Errorf("mdns advertiser: %w", err)
		}
		browser, err := discovery.NewMDNSBrowser(discovery.BrowserConfig{
			BrowseTimeout: discovery.BrowseTimeout,
			Interface:     cfg.TCP.Interface,
		})
		if err != nil {
			advertiser.StopAll()
			return nil, nil, nil, fmt.Errorf("mdns browser: %w", err)
		}
		tcpCfg.Advertiser = advertiser
		tcpCfg.Browser = browser
		logger.Debug("mDNS enabled", "interface", cfg.TCP.Interface)

		t := transport.NewTCPTransport(tcpCfg)
		return t, t, func() {
			advertiser.StopAll()
			browser.Stop()
		}, nil
	}
}

// buildProtocolLogger returns the link event logger. Events go to the
// protocol log file if configured, and to slog at debug level.
func buildProtocolLogger(cfg *Config, logger *slog.Logger, level slog.Level) (log.Logger, func(), error) {
	var loggers []log.Logger
	closeFn := func() {}

	if cfg.ProtocolLog != "" {
		fl, err := log.NewFileLogger(cfg.ProtocolLog)
		if err != nil {
			return nil, nil, fmt.Errorf("protocol log: %w", err)
		}
		loggers = append(loggers, fl)
		closeFn = func() {
			if err := fl.Close(); err != nil {
				logger.Warn("failed to close protocol log", "error", err)
			}
		}
		logger.Info("protocol logging enabled", "path", fl.Path())
	}
	if level <= slog.LevelDebug {
		loggers = append(loggers, log.NewSlogAdapter(logger))
	}

	return log.Combine(loggers...), closeFn, nil
}

// trackPeers remembers every peer a link is established with.
func trackPeers(m *connection.Manager, peers *persistence.PeerStore, logger *slog.Logger) connection.EventHandler {
	return func(e connection.Event) {
		if e.Type != connection.EventStateChanged || e.State != connection.StateConnected {
			return
		}
		peer, ok := m.Peer()
		if !ok {
			return
		}
		variant, _ := m.Variant()
		peers.Remember(persistence.KnownPeer{
			Address: peer.Address,
			Name:    peer.Name,
			Secure:  variant == transport.VariantSecure,
		})
		if peers.Path() == "" {
			return
		}
		if err := peers.Save(); err != nil {
			logger.Warn("failed to save known peers", "error", err)
		}
	}
}

// logEvents reports manager events when there is no console to show them.
func logEvents(logger *slog.Logger) connection.EventHandler {
	return func(e connection.Event) {
		switch e.Type {
		case connection.EventStateChanged:
			logger.Info("state changed", "state", e.State.Description())
		case connection.EventDeviceIdentified:
			logger.Info("connected", "device", e.DeviceName)
		case connection.EventDataReceived:
			logger.Info("received", "peer", e.Peer.DisplayName(), "bytes", len(e.Data))
		case connection.EventDataSent:
			logger.Debug("sent", "bytes", len(e.Data))
		case connection.EventNotice:
			logger.Warn(e.Message)
		}
	}
}

// resolveAutoconnect maps the configured peer to an address, preferring a
// known peer with that name.
func resolveAutoconnect(ac AutoconnectConfig, peers *persistence.PeerStore) (transport.Peer, bool) {
	if known, err := peers.Lookup(ac.Peer); err == nil {
		return transport.Peer{Address: known.Address, Name: known.Name}, ac.Secure
	}
	return transport.Peer{Address: ac.Peer}, ac.Secure
}

// switchWriter is an io.Writer whose target can be replaced after the
// logger using it was created.
type switchWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *switchWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

func (s *switchWriter) set(w io.Writer) {
	s.mu.Lock()
	s.w = w
	s.mu.Unlock()
}
