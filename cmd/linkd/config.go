package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/trackingkind/linkd/pkg/connection"
	"github.com/trackingkind/linkd/pkg/transport"
)

// Transport names.
const (
	TransportTCP    = "tcp"
	TransportRFCOMM = "rfcomm"
)

// Config holds the linkd configuration. It is read from a YAML file and
// then overridden by explicitly set flags.
type Config struct {
	Name        string            `yaml:"name"`
	Transport   string            `yaml:"transport"`
	TCP         TCPConfig         `yaml:"tcp"`
	RFCOMM      RFCOMMConfig      `yaml:"rfcomm"`
	BufferSize  int               `yaml:"buffer_size"`
	LogLevel    string            `yaml:"log_level"`
	ProtocolLog string            `yaml:"protocol_log"`
	PeersFile   string            `yaml:"peers_file"`
	Interactive bool              `yaml:"interactive"`
	Autoconnect AutoconnectConfig `yaml:"autoconnect"`
}

// TCPConfig configures the TCP transport.
type TCPConfig struct {
	Host         string `yaml:"host"`
	SecurePort   int    `yaml:"secure_port"`
	InsecurePort int    `yaml:"insecure_port"`
	Advertise    bool   `yaml:"advertise"`
	Interface    string `yaml:"interface"`
}

// RFCOMMConfig configures the Bluetooth RFCOMM transport.
type RFCOMMConfig struct {
	Adapter         string `yaml:"adapter"`
	SecureChannel   uint8  `yaml:"secure_channel"`
	InsecureChannel uint8  `yaml:"insecure_channel"`
}

// AutoconnectConfig keeps linkd connected to one peer.
type AutoconnectConfig struct {
	// Peer is a known peer name or an address. Empty disables autoconnect.
	Peer           string        `yaml:"peer"`
	Secure         bool          `yaml:"secure"`
	InitialBackoff time.Duration `yaml:"initial_backoff"`
	MaxBackoff     time.Duration `yaml:"max_backoff"`
	MaxAttempts    int           `yaml:"max_attempts"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	name, err := os.Hostname()
	if err != nil || name == "" {
		name = "linkd"
	}
	return &Config{
		Name:      name,
		Transport: TransportTCP,
		TCP: TCPConfig{
			SecurePort:   transport.DefaultSecurePort,
			InsecurePort: transport.DefaultInsecurePort,
		},
		RFCOMM: RFCOMMConfig{
			SecureChannel:   transport.DefaultSecureChannel,
			InsecureChannel: transport.DefaultInsecureChannel,
		},
		BufferSize: connection.DefaultBufferSize,
		LogLevel:   "info",
		Autoconnect: AutoconnectConfig{
			Secure:         true,
			InitialBackoff: connection.InitialBackoff,
			MaxBackoff:     connection.MaxBackoff,
		},
	}
}

// LoadConfig reads a YAML file on top of the defaults. An empty path returns
// the defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the configuration for values linkd cannot run with.
func (c *Config) Validate() error {
	var errs []error

	if c.Name == "" {
		errs = append(errs, errors.New("name must not be empty"))
	}

	switch c.Transport {
	case TransportTCP:
		if !validPort(c.TCP.SecurePort) {
			errs = append(errs, fmt.Errorf("tcp.secure_port out of range: %d", c.TCP.SecurePort))
		}
		if !validPort(c.TCP.InsecurePort) {
			errs = append(errs, fmt.Errorf("tcp.insecure_port out of range: %d", c.TCP.InsecurePort))
		}
		if c.TCP.SecurePort == c.TCP.InsecurePort && c.TCP.SecurePort != 0 {
			errs = append(errs, fmt.Errorf("tcp ports must differ, both are %d", c.TCP.SecurePort))
		}
	case TransportRFCOMM:
		if !validChannel(c.RFCOMM.SecureChannel) {
			errs = append(errs, fmt.Errorf("rfcomm.secure_channel must be 1-30, got %d", c.RFCOMM.SecureChannel))
		}
		if !validChannel(c.RFCOMM.InsecureChannel) {
			errs = append(errs, fmt.Errorf("rfcomm.insecure_channel must be 1-30, got %d", c.RFCOMM.InsecureChannel))
		}
		if c.RFCOMM.SecureChannel == c.RFCOMM.InsecureChannel {
			errs = append(errs, fmt.Errorf("rfcomm channels must differ, both are %d", c.RFCOMM.SecureChannel))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown transport: %q (must be tcp or rfcomm)", c.Transport))
	}

	if c.BufferSize <= 0 {
		errs = append(errs, fmt.Errorf("buffer_size must be positive, got %d", c.BufferSize))
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if c.Autoconnect.MaxAttempts < 0 {
		errs = append(errs, fmt.Errorf("autoconnect.max_attempts must not be negative, got %d", c.Autoconnect.MaxAttempts))
	}

	return errors.Join(errs...)
}

// Port 0 lets the system pick one.
func validPort(p int) bool {
	return p >= 0 && p <= 65535
}

func validChannel(ch uint8) bool {
	return ch >= 1 && ch <= 30
}

// ParseLogLevel parses debug, info, warn or error.
func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level: %q", s)
	}
}

// flagValues receives the command-line flags before they are merged into a
// Config.
type flagValues struct {
	configFile      string
	name            string
	transport       string
	host            string
	securePort      int
	insecurePort    int
	advertise       bool
	iface           string
	adapter         string
	secureChannel   uint
	insecureChannel uint
	bufferSize      int
	logLevel        string
	protocolLog     string
	peersFile       string
	interactive     bool
	connect         string
	insecure        bool
}

func registerFlags(fs *flag.FlagSet, v *flagValues) {
	fs.StringVar(&v.configFile, "config", "", "Configuration file path (YAML)")
	fs.StringVar(&v.name, "name", "", "Device name shown to peers (default: hostname)")
	fs.StringVar(&v.transport, "transport", TransportTCP, "Transport: tcp, rfcomm")
	fs.StringVar(&v.host, "host", "", "TCP listen host (default: all interfaces)")
	fs.IntVar(&v.securePort, "secure-port", transport.DefaultSecurePort, "TCP port of the secure service")
	fs.IntVar(&v.insecurePort, "insecure-port", transport.DefaultInsecurePort, "TCP port of the insecure service")
	fs.BoolVar(&v.advertise, "advertise", false, "Advertise and browse services over mDNS (tcp only)")
	fs.StringVar(&v.iface, "interface", "", "Network interface for mDNS (default: all)")
	fs.StringVar(&v.adapter, "adapter", "", "Bluetooth adapter address (rfcomm only)")
	fs.UintVar(&v.secureChannel, "secure-channel", transport.DefaultSecureChannel, "RFCOMM channel of the secure service")
	fs.UintVar(&v.insecureChannel, "insecure-channel", transport.DefaultInsecureChannel, "RFCOMM channel of the insecure service")
	fs.IntVar(&v.bufferSize, "buffer-size", connection.DefaultBufferSize, "Read buffer size in bytes")
	fs.StringVar(&v.logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	fs.StringVar(&v.protocolLog, "protocol-log", "", "Write link events to this file (CBOR)")
	fs.StringVar(&v.peersFile, "peers", "", "Known peers file (JSON)")
	fs.BoolVar(&v.interactive, "interactive", false, "Enable interactive command mode")
	fs.StringVar(&v.connect, "connect", "", "Keep connected to this peer (name or address)")
	fs.BoolVar(&v.insecure, "insecure", false, "Use the insecure service for -connect")
}

// apply copies the flags that were set on the command line into cfg.
func (v *flagValues) apply(fs *flag.FlagSet, cfg *Config) {
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "name":
			cfg.Name = v.name
		case "transport":
			cfg.Transport = v.transport
		case "host":
			cfg.TCP.Host = v.host
		case "secure-port":
			cfg.TCP.SecurePort = v.securePort
		case "insecure-port":
			cfg.TCP.InsecurePort = v.insecurePort
		case "advertise":
			cfg.TCP.Advertise = v.advertise
		case "interface":
			cfg.TCP.Interface = v.iface
		case "adapter":
			cfg.RFCOMM.Adapter = v.adapter
		case "secure-channel":
			cfg.RFCOMM.SecureChannel = clampChannel(v.secureChannel)
		case "insecure-channel":
			cfg.RFCOMM.InsecureChannel = clampChannel(v.insecureChannel)
		case "buffer-size":
			cfg.BufferSize = v.bufferSize
		case "log-level":
			cfg.LogLevel = v.logLevel
		case "protocol-log":
			cfg.ProtocolLog = v.protocolLog
		case "peers":
			cfg.PeersFile = v.peersFile
		case "interactive":
			cfg.Interactive = v.interactive
		case "connect":
			cfg.Autoconnect.Peer = v.connect
		case "insecure":
			cfg.Autoconnect.Secure = !v.insecure
		}
	})
}

// clampChannel maps out-of-range values to 0, which Validate rejects.
func clampChannel(ch uint) uint8 {
	if ch > 255 {
		return 0
	}
	return uint8(ch)
}
