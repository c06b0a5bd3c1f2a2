package transport

import "net"

// Conn is one accepted connection, owned by a single worker
type Conn interface {
	// Read receives data from the peer.
	// A peer that has closed its side yields TransportErrorConnectionClosed.
	Read(buf []byte) (int, error)

	// Write sends all of buf to the peer or returns an error
	Write(buf []byte) (int, error)

	// Close closes the connection
	Close() error

	// RemoteAddr returns the peer address
	RemoteAddr() *net.TCPAddr
}

// Backend turns an accepted TCP connection into a Conn. The backend takes
// ownership of c.
type Backend func(c *net.TCPConn) (Conn, error)

// Backend names accepted on the command line
const (
	BackendNet     = "net"
	BackendIoUring = "iouring"
)

// BackendByName returns the Backend for name
func BackendByName(name string) (Backend, bool) {
	switch name {
	case BackendNet, "":
		return NewTcpConn, true
	case BackendIoUring:
		return NewUringConn, true
	default:
		return nil, false
	}
}
