// Package server runs the accept loop and the per-connection workers.
package server

import (
	stderrors "errors"
	"net"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"

	"github.com/0xN0x/http-server/errors"
	"github.com/0xN0x/http-server/protocol"
	"github.com/0xN0x/http-server/transport"
)

// ErrServerClosed is returned by Serve after Close
var ErrServerClosed = stderrors.New("server: closed")

const maxAcceptDelay = time.Second

// Server accepts connections and starts one worker per connection
type Server struct {
	cfg      Config
	resolver *protocol.Resolver
	builder  *protocol.Builder
	log      *logrus.Logger

	listener atomic.Pointer[transport.Listener]
	closed   atomic.Bool

	// only touched by the accept loop
	nextID uint64
}

// NewServer creates a server; zero fields of cfg take their defaults
func NewServer(cfg Config) *Server {
	cfg.setDefaults()
	return &Server{
		cfg:      cfg,
		resolver: protocol.NewResolver(cfg.Root),
		builder:  &protocol.Builder{CRLF: cfg.CRLF, Clock: cfg.Clock},
		log:      cfg.Logger,
	}
}

// ListenAndServe binds 0.0.0.0:port and serves until a fatal error
func (s *Server) ListenAndServe(port int) error {
	l, err := transport.Listen(port, s.cfg.Backlog)
	if err != nil {
		return err
	}
	return s.Serve(l)
}

// Serve runs the accept loop on l. It returns only on a fatal accept error
// (a non-IPv4 peer counts as one) or after Close.
func (s *Server) Serve(l *transport.Listener) error {
	s.listener.Store(l)
	defer l.Close()
	if s.closed.Load() {
		return ErrServerClosed
	}

	s.log.WithFields(logrus.Fields{
		"addr":    l.Addr().String(),
		"root":    s.cfg.Root,
		"backlog": s.cfg.Backlog,
	}).Info("Listening")

	var delay time.Duration
	for {
		tc, err := l.Accept()
		if err != nil {
			if s.closed.Load() {
				return ErrServerClosed
			}
			if retryableAccept(err) {
				if delay == 0 {
					delay = 5 * time.Millisecond
				} else if delay *= 2; delay > maxAcceptDelay {
					delay = maxAcceptDelay
				}
				s.log.WithError(err).WithField("retry_in", delay).Warn("Accept failed")
				time.Sleep(delay)
				continue
			}
			return err
		}
		delay = 0

		conn, err := s.cfg.Backend(tc)
		if err != nil {
			s.log.WithError(err).Error("Failed to set up connection")
			continue
		}

		s.nextID++
		w := newWorker(s, conn, s.nextID)
		w.log.Info("New connection")
		go w.serve()
	}
}

// Close stops the accept loop. Workers already running finish on their own.
func (s *Server) Close() error {
	s.closed.Store(true)
	if l := s.listener.Load(); l != nil {
		return l.Close()
	}
	return nil
}

// retryableAccept reports whether an accept error is transient
func retryableAccept(err error) bool {
	if errors.IsTransport(err, errors.TransportErrorUnsupportedFamily) {
		return false
	}
	for _, errno := range []unix.Errno{unix.EINTR, unix.EMFILE, unix.ENFILE, unix.ECONNABORTED} {
		if stderrors.Is(err, errno) {
			return true
		}
	}
	var ne net.Error
	return stderrors.As(err, &ne) && ne.Timeout()
}
