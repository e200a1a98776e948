package pollserver

import (
	"errors"
	"fmt"
	"net"

	"github.com/yndnr/sipkv/internal/telemetry/logger"
	"github.com/yndnr/sipkv/internal/telemetry/metric"
)

// Defaults for Config.
const (
	DefaultHost       = "127.0.0.1"
	DefaultPort       = 1337
	DefaultBacklog    = 20
	DefaultMaxConns   = 20
	DefaultBufferSize = 1024
)

var (
	ErrServerClosed   = errors.New("pollserver: server closed")
	ErrAlreadyRunning = errors.New("pollserver: already running")
	ErrUnsupported    = errors.New("pollserver: unsupported platform")
)

// Config holds listener and slot settings.
type Config struct {
	// Host must be an IPv4 literal.
	Host string
	// Port 0 picks a free port; see Server.Addr.
	Port       int
	Backlog    int
	MaxConns   int
	BufferSize int
}

// DefaultConfig returns the loopback defaults.
func DefaultConfig() Config {
	return Config{
		Host:       DefaultHost,
		Port:       DefaultPort,
		Backlog:    DefaultBacklog,
		MaxConns:   DefaultMaxConns,
		BufferSize: DefaultBufferSize,
	}
}

func (c Config) validate() error {
	if ip := net.ParseIP(c.Host); ip == nil || ip.To4() == nil {
		return fmt.Errorf("pollserver: host %q is not an IPv4 address", c.Host)
	}
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("pollserver: invalid port %d", c.Port)
	}
	if c.Backlog <= 0 {
		return fmt.Errorf("pollserver: backlog must be positive")
	}
	if c.MaxConns <= 0 {
		return fmt.Errorf("pollserver: max_conns must be positive")
	}
	if c.BufferSize <= 0 {
		return fmt.Errorf("pollserver: buffer_size must be positive")
	}
	return nil
}

// HandlerFunc handles one request read from c. data is only valid for the
// duration of the call.
type HandlerFunc func(c *Conn, data []byte, addr net.Addr)

// Option configures a Server.
type Option func(*options)

type options struct {
	logger  logger.Logger
	metrics *metric.Registry
}

// WithLogger sets the server logger.
func WithLogger(l logger.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithMetrics records connection metrics in r.
func WithMetrics(r *metric.Registry) Option {
	return func(o *options) { o.metrics = r }
}
