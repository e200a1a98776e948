package connection

import (
	"errors"
	"fmt"
	"io"
	"net"
	"time"
)

// Defaults for NewClient.
const (
	DefaultAddr           = "127.0.0.1:1337"
	DefaultTimeout        = 5 * time.Second
	DefaultMaxRequestSize = 1024
	replyBufferSize       = 64 << 10
)

var (
	// ErrClosedByServer is returned when the server closes the connection,
	// which it does immediately when it is already serving its maximum number
	// of clients.
	ErrClosedByServer = errors.New("connection closed by server")

	// ErrRequestTooLarge is returned for requests the server would split
	// across reads.
	ErrRequestTooLarge = errors.New("request exceeds server read size")
)

// Client is a connection to a sipkv server. It is not safe for concurrent
// use.
type Client struct {
	addr           string
	timeout        time.Duration
	maxRequestSize int

	conn net.Conn
	buf  []byte
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the dial and per-request I/O timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithMaxRequestSize sets the largest request the client will send. It
// should match the server's read buffer size.
func WithMaxRequestSize(n int) Option {
	return func(c *Client) { c.maxRequestSize = n }
}

// NewClient creates a client for addr. It does not connect.
func NewClient(addr string, opts ...Option) *Client {
	if addr == "" {
		addr = DefaultAddr
	}
	c := &Client{
		addr:           addr,
		timeout:        DefaultTimeout,
		maxRequestSize: DefaultMaxRequestSize,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Addr returns the server address.
func (c *Client) Addr() string { return c.addr }

// Connect dials the server if not already connected.
func (c *Client) Connect() error {
	if c.conn != nil {
		return nil
	}
	conn, err := net.DialTimeout("tcp", c.addr, c.timeout)
	if err != nil {
		return fmt.Errorf("dial %s: %w", c.addr, err)
	}
	c.conn = conn
	return nil
}

// Close closes the connection. Closing an unconnected client is a no-op.
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}

// Execute sends one request and returns the server's reply.
func (c *Client) Execute(request string) (string, error) {
	if len(request) > c.maxRequestSize {
		return "", fmt.Errorf("%w: %d > %d bytes", ErrRequestTooLarge, len(request), c.maxRequestSize)
	}
	if err := c.Connect(); err != nil {
		return "", err
	}

	if c.timeout > 0 {
		if err := c.conn.SetDeadline(time.Now().Add(c.timeout)); err != nil {
			return "", err
		}
	}

	if _, err := c.conn.Write([]byte(request)); err != nil {
		c.Close()
		return "", fmt.Errorf("send request: %w", err)
	}

	if c.buf == nil {
		c.buf = make([]byte, replyBufferSize)
	}
	n, err := c.conn.Read(c.buf)
	if n > 0 {
		return string(c.buf[:n]), nil
	}
	c.Close()
	if errors.Is(err, io.EOF) {
		return "", ErrClosedByServer
	}
	return "", fmt.Errorf("read reply: %w", err)
}
