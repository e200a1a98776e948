//go:build linux || darwin

package pollserver

import (
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/sys/unix"
	"golang.org/x/time/rate"

	"github.com/yndnr/sipkv/internal/telemetry/logger"
	"github.com/yndnr/sipkv/internal/telemetry/metric"
)

// Server multiplexes a listener and up to MaxConns clients on one goroutine.
type Server struct {
	cfg     Config
	handler HandlerFunc
	logger  logger.Logger
	metrics *metric.Registry

	listenFd int
	addr     *net.TCPAddr

	// conns[i] is nil when slot i is free. pollFds[0] is the listener,
	// pollFds[1+i] is slot i, and the last entry is the wake pipe.
	conns   []*Conn
	pollFds []unix.PollFd
	wakeR   int
	wakeW   int

	buf       []byte
	rejectLog *rate.Limiter

	mu       sync.Mutex
	closed   bool
	done     chan struct{}
	stopping atomic.Bool
}

// New binds and listens. Errors from socket, bind, or listen are returned and
// no server is created.
func New(cfg Config, handler HandlerFunc, opts ...Option) (*Server, error) {
	if handler == nil {
		return nil, errors.New("pollserver: handler is required")
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	fd, err := listen(cfg)
	if err != nil {
		return nil, err
	}

	sa, err := unix.Getsockname(fd)
	if err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("pollserver: getsockname: %w", err)
	}

	var pipe [2]int
	if err := unix.Pipe(pipe[:]); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("pollserver: wake pipe: %w", err)
	}
	for _, p := range pipe {
		unix.CloseOnExec(p)
		if err := unix.SetNonblock(p, true); err != nil {
			unix.Close(fd)
			unix.Close(pipe[0])
			unix.Close(pipe[1])
			return nil, fmt.Errorf("pollserver: wake pipe: %w", err)
		}
	}

	s := &Server{
		cfg:       cfg,
		handler:   handler,
		logger:    logger.OrDefault(o.logger).With("component", "pollserver"),
		metrics:   o.metrics,
		listenFd:  fd,
		addr:      sockaddrToTCP(sa).(*net.TCPAddr),
		conns:     make([]*Conn, cfg.MaxConns),
		pollFds:   make([]unix.PollFd, cfg.MaxConns+2),
		wakeR:     pipe[0],
		wakeW:     pipe[1],
		buf:       make([]byte, cfg.BufferSize),
		rejectLog: rate.NewLimiter(rate.Every(time.Second), 1),
	}

	s.pollFds[0] = unix.PollFd{Fd: int32(fd), Events: unix.POLLIN}
	for i := 1; i <= cfg.MaxConns; i++ {
		s.pollFds[i] = unix.PollFd{Fd: -1}
	}
	s.pollFds[cfg.MaxConns+1] = unix.PollFd{Fd: int32(s.wakeR), Events: unix.POLLIN}

	s.logger.Info("listening", "addr", s.addr.String(), "max_conns", cfg.MaxConns)
	return s, nil
}

func listen(cfg Config) (int, error) {
	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM, 0)
	if err != nil {
		return -1, fmt.Errorf("pollserver: socket: %w", err)
	}
	unix.CloseOnExec(fd)

	if err := unix.SetNonblock(fd, true); err != nil {
		unix.Close(fd)
		return -1, fmt.Errorf("pollserver: set nonblock: %w", err)
	}
	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		unix.Close(fd)
		return -1, fmt.Errorf("pollserver: SO_REUSEADDR: %w", err)
	}

	sa := &unix.SockaddrInet4{Port: cfg.Port}
	copy(sa.Addr[:], net.ParseIP(cfg.Host).To4())
	if err := unix.Bind(fd, sa); err != nil {
		unix.Close(fd)
		return -1, fmt.Errorf("pollserver: bind %s:%d: %w", cfg.Host, cfg.Port, err)
	}
	if err := unix.Listen(fd, cfg.Backlog); err != nil {
		unix.Close(fd)
		return -1, fmt.Errorf("pollserver: listen: %w", err)
	}
	return fd, nil
}

// Addr returns the bound listener address.
func (s *Server) Addr() *net.TCPAddr {
	return s.addr
}

// Run serves until Stop is called or poll fails. It returns nil after Stop.
func (s *Server) Run() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrServerClosed
	}
	if s.done != nil {
		s.mu.Unlock()
		return ErrAlreadyRunning
	}
	done := make(chan struct{})
	s.done = done
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.done = nil
		s.mu.Unlock()
		close(done)
	}()

	wakeIdx := len(s.pollFds) - 1
	for {
		if _, err := unix.Poll(s.pollFds, -1); err != nil {
			if errors.Is(err, unix.EINTR) {
				continue
			}
			return fmt.Errorf("pollserver: poll: %w", err)
		}

		if s.pollFds[wakeIdx].Revents != 0 {
			s.drainWake()
			if s.stopping.CompareAndSwap(true, false) {
				s.logger.Info("event loop stopped")
				return nil
			}
		}

		if s.pollFds[0].Revents&unix.POLLIN != 0 {
			s.acceptAll()
		}

		for i := range s.conns {
			pfd := &s.pollFds[i+1]
			if pfd.Fd < 0 || pfd.Revents&(unix.POLLIN|unix.POLLHUP|unix.POLLERR) == 0 {
				continue
			}
			s.serve(i)
		}
	}
}

// Stop makes Run return. It is safe to call from any goroutine, including
// before Run starts.
func (s *Server) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.stopping.Store(true)
	_, _ = unix.Write(s.wakeW, []byte{1})
}

// Close stops a running loop and waits for it, then closes the listener and
// every client. Calling Close more than once is a no-op.
func (s *Server) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	done := s.done
	s.mu.Unlock()

	if done != nil {
		s.Stop()
		<-done
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true

	var firstErr error
	if err := unix.Close(s.listenFd); err != nil {
		firstErr = fmt.Errorf("pollserver: close listener: %w", err)
	}
	open := 0
	for i, c := range s.conns {
		if c == nil {
			continue
		}
		open++
		unix.Close(c.fd)
		s.conns[i] = nil
		s.pollFds[i+1].Fd = -1
		s.metrics.ConnClosed()
	}
	unix.Close(s.wakeR)
	unix.Close(s.wakeW)

	s.logger.Info("server closed", "closed_clients", open)
	return firstErr
}

func (s *Server) drainWake() {
	var b [64]byte
	for {
		n, err := unix.Read(s.wakeR, b[:])
		if n <= 0 || err != nil {
			return
		}
	}
}

// acceptAll accepts until the backlog is empty.
func (s *Server) acceptAll() {
	for {
		nfd, sa, err := unix.Accept(s.listenFd)
		if err != nil {
			switch {
			case errors.Is(err, unix.EAGAIN), errors.Is(err, unix.EWOULDBLOCK):
			case errors.Is(err, unix.EINTR), errors.Is(err, unix.ECONNABORTED):
				continue
			default:
				s.logger.Error("accept failed", "error", err)
			}
			return
		}
		unix.CloseOnExec(nfd)

		slot := s.freeSlot()
		if slot < 0 {
			s.metrics.ConnRejected()
			unix.Close(nfd)
			if s.rejectLog.Allow() {
				s.logger.Warn("max connections reached, rejecting client",
					"remote", sockaddrToTCP(sa), "max_conns", s.cfg.MaxConns)
			}
			continue
		}

		// Client sockets stay blocking: reads only happen on readiness and
		// replies are a single write.
		if err := unix.SetNonblock(nfd, false); err != nil {
			s.logger.Warn("set blocking failed", "error", err)
		}

		c := &Conn{fd: nfd, id: ulid.Make().String(), addr: sockaddrToTCP(sa)}
		s.conns[slot] = c
		s.pollFds[slot+1] = unix.PollFd{Fd: int32(nfd), Events: unix.POLLIN}
		s.metrics.ConnAccepted()
		s.logger.Debug("client connected", "conn_id", c.id, "remote", c.addr, "slot", slot)
	}
}

func (s *Server) freeSlot() int {
	for i, c := range s.conns {
		if c == nil {
			return i
		}
	}
	return -1
}

// serve performs the one read for a ready slot.
func (s *Server) serve(slot int) {
	c := s.conns[slot]
	n, err := unix.Read(c.fd, s.buf)
	if err != nil {
		if errors.Is(err, unix.EINTR) || errors.Is(err, unix.EAGAIN) {
			return
		}
		s.release(slot, err)
		return
	}
	if n <= 0 {
		s.release(slot, nil)
		return
	}
	s.handler(c, s.buf[:n], c.addr)
}

func (s *Server) release(slot int, cause error) {
	c := s.conns[slot]
	unix.Close(c.fd)
	s.conns[slot] = nil
	s.pollFds[slot+1] = unix.PollFd{Fd: -1}
	s.metrics.ConnClosed()

	if cause != nil {
		s.logger.Debug("client read failed", "conn_id", c.id, "error", cause)
	} else {
		s.logger.Debug("client disconnected", "conn_id", c.id)
	}
}
