package transport

import (
	stderrors "errors"
	"io"
	"net"
	"syscall"

	"github.com/0xN0x/http-server/errors"
)

// TcpConn implements Conn on top of the Go runtime's net.Conn
type TcpConn struct {
	conn net.Conn
	peer *net.TCPAddr
}

// NewTcpConn wraps an accepted connection
func NewTcpConn(c *net.TCPConn) (Conn, error) {
	peer, _ := c.RemoteAddr().(*net.TCPAddr)
	return &TcpConn{conn: c, peer: peer}, nil
}

// Read receives data from the TCP connection
func (t *TcpConn) Read(buf []byte) (int, error) {
	if t.conn == nil {
		return 0, errors.NewTransportError(errors.TransportErrorSocketReadFailure, "not connected", nil)
	}

	n, err := t.conn.Read(buf)
	if err != nil {
		if stderrors.Is(err, io.EOF) {
			return n, errors.NewTransportError(errors.TransportErrorConnectionClosed, "connection closed by peer", err)
		}
		return n, errors.NewTransportError(errors.TransportErrorSocketReadFailure, "read failed", err)
	}
	if n == 0 && len(buf) > 0 {
		return 0, errors.NewTransportError(errors.TransportErrorConnectionClosed, "connection closed by peer", nil)
	}

	return n, nil
}

// Write sends data over the TCP connection
func (t *TcpConn) Write(buf []byte) (int, error) {
	if t.conn == nil {
		return 0, errors.NewTransportError(errors.TransportErrorSocketWriteFailure, "not connected", nil)
	}

	n, err := t.conn.Write(buf)
	if err != nil {
		// Check for broken pipe or connection reset
		if stderrors.Is(err, syscall.EPIPE) || stderrors.Is(err, syscall.ECONNRESET) {
			return n, errors.NewTransportError(errors.TransportErrorConnectionClosed, "connection closed during write", err)
		}
		return n, errors.NewTransportError(errors.TransportErrorSocketWriteFailure, "write failed", err)
	}

	return n, nil
}

// Close closes the TCP connection
func (t *TcpConn) Close() error {
	if t.conn == nil {
		return nil // Idempotent close
	}

	err := t.conn.Close()
	t.conn = nil

	if err != nil {
		return errors.NewTransportError(errors.TransportErrorConnectionClosed, "failed to close socket", err)
	}

	return nil
}

// RemoteAddr returns the peer address captured when the connection was wrapped
func (t *TcpConn) RemoteAddr() *net.TCPAddr {
	return t.peer
}
