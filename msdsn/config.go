package msdsn

import "time"

const (
	minPacketSize     = 512
	maxPacketSize     = 32767
	defaultPacketSize = 4096
)

// Config collects the ambient connection settings: packet size, the
// timeouts that govern cancellation, and the log flags. The framer, parser
// and bulk-load engine do not read it themselves; a caller passes the
// values they need (such as PacketSize) to their constructors. It does not parse
// connection strings; a caller building a Config from a DSN is expected to
// do that translation itself and pass the result in through the With*
// options below.
type Config struct {
	PacketSize    uint16
	ConnTimeout   time.Duration
	CancelTimeout time.Duration
	LogFlags      Log
	Encryption    EncryptionLevel
}

// EncryptionLevel mirrors the handful of values a TDS PRELOGIN exchange can
// negotiate; the TLS handshake itself is an external collaborator.
type EncryptionLevel byte

const (
	EncryptionOff EncryptionLevel = iota
	EncryptionOn
	EncryptionRequired
	EncryptionStrict
)

// Option configures a Config in the functional-options style.
type Option func(*Config)

// New builds a Config with driver defaults, then applies opts in order.
// Packet size is clamped into the legal TDS range [512, 32767], and further
// clamped to 16383 when strict/required/on encryption is requested.
func New(opts ...Option) Config {
	cfg := Config{
		PacketSize:    defaultPacketSize,
		ConnTimeout:   30 * time.Second,
		CancelTimeout: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg.PacketSize = clampPacketSize(cfg.PacketSize, cfg.Encryption)
	return cfg
}

func clampPacketSize(size uint16, enc EncryptionLevel) uint16 {
	if size < minPacketSize {
		return minPacketSize
	}
	if enc == EncryptionStrict || enc == EncryptionRequired || enc == EncryptionOn {
		if size > 16383 {
			return 16383
		}
	}
	if size > maxPacketSize {
		return maxPacketSize
	}
	return size
}

func WithPacketSize(size uint16) Option {
	return func(c *Config) { c.PacketSize = size }
}

func WithConnTimeout(d time.Duration) Option {
	return func(c *Config) { c.ConnTimeout = d }
}

func WithCancelTimeout(d time.Duration) Option {
	return func(c *Config) { c.CancelTimeout = d }
}

func WithLogFlags(flags Log) Option {
	return func(c *Config) { c.LogFlags = flags }
}

func WithEncryption(level EncryptionLevel) Option {
	return func(c *Config) { c.Encryption = level }
}
