package transport

import (
	"fmt"
	"net"
	"os"

	sockaddrnet "github.com/libp2p/go-sockaddr/net"
	"golang.org/x/sys/unix"

	"github.com/0xN0x/http-server/errors"
)

// DefaultBacklog is the listen(2) backlog used when none is configured
const DefaultBacklog = 1

// Listener is the process-wide IPv4 listening socket
type Listener struct {
	ln *net.TCPListener
}

// Listen binds 0.0.0.0:port and listens with the given backlog. Port 0 asks
// the kernel to choose.
func Listen(port int, backlog int) (*Listener, error) {
	if backlog <= 0 {
		backlog = DefaultBacklog
	}

	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		return nil, errors.NewTransportError(
			errors.TransportErrorSocketCreateFailure,
			"failed to create socket",
			err,
		)
	}

	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		unix.Close(fd)
		return nil, errors.NewTransportError(
			errors.TransportErrorSocketCreateFailure,
			"failed to set SO_REUSEADDR",
			err,
		)
	}

	addr := &net.TCPAddr{IP: net.IPv4zero, Port: port}
	sa := sockaddrnet.TCPAddrToSockaddr(addr)
	if sa == nil {
		unix.Close(fd)
		return nil, errors.NewTransportError(
			errors.TransportErrorUnsupportedFamily,
			fmt.Sprintf("cannot convert %s", addr),
			nil,
		)
	}

	if err := unix.Bind(fd, sa); err != nil {
		unix.Close(fd)
		return nil, errors.NewTransportError(
			errors.TransportErrorSocketBindFailure,
			fmt.Sprintf("failed to bind %s", addr),
			err,
		)
	}

	if err := unix.Listen(fd, backlog); err != nil {
		unix.Close(fd)
		return nil, errors.NewTransportError(
			errors.TransportErrorSocketListenFailure,
			fmt.Sprintf("failed to listen on %s", addr),
			err,
		)
	}

	// FileListener dups fd, so ours is closed either way
	f := os.NewFile(uintptr(fd), "listener")
	ln, err := net.FileListener(f)
	f.Close()
	if err != nil {
		return nil, errors.NewTransportError(
			errors.TransportErrorSocketListenFailure,
			"failed to wrap listening socket",
			err,
		)
	}

	return &Listener{ln: ln.(*net.TCPListener)}, nil
}

// Accept waits for the next connection. Peers that are not IPv4 are
// reported as TransportErrorUnsupportedFamily.
func (l *Listener) Accept() (*net.TCPConn, error) {
	c, err := l.ln.AcceptTCP()
	if err != nil {
		return nil, errors.NewTransportError(
			errors.TransportErrorSocketAcceptFailure,
			"accept failed",
			err,
		)
	}

	peer, ok := c.RemoteAddr().(*net.TCPAddr)
	if !ok || peer.IP.To4() == nil {
		c.Close()
		return nil, errors.NewTransportError(
			errors.TransportErrorUnsupportedFamily,
			fmt.Sprintf("peer %v", c.RemoteAddr()),
			nil,
		)
	}

	return c, nil
}

// Addr returns the bound address
func (l *Listener) Addr() *net.TCPAddr {
	return l.ln.Addr().(*net.TCPAddr)
}

// Close closes the listening socket
func (l *Listener) Close() error {
	return l.ln.Close()
}
