//go:build !(linux || darwin)

package pollserver

import "net"

// Conn is a client occupying a server slot.
type Conn struct{}

func (c *Conn) ID() string                  { return "" }
func (c *Conn) RemoteAddr() net.Addr        { return nil }
func (c *Conn) Write(p []byte) (int, error) { return 0, ErrUnsupported }

// Server is unavailable on this platform.
type Server struct{}

func New(cfg Config, handler HandlerFunc, opts ...Option) (*Server, error) {
	return nil, ErrUnsupported
}

func (s *Server) Addr() *net.TCPAddr { return nil }
func (s *Server) Run() error         { return ErrUnsupported }
func (s *Server) Stop()              {}
func (s *Server) Close() error       { return nil }
