package transport

import (
	"net"
	"os"

	"github.com/iceber/iouring-go"
	sockaddrnet "github.com/libp2p/go-sockaddr/net"
	"golang.org/x/sys/unix"

	"github.com/0xN0x/http-server/errors"
)

// DefaultUringEntries is the queue depth of each connection's ring
const DefaultUringEntries = 32

// UringConn implements Conn with io_uring reads and writes on the accepted
// socket. Every connection has its own ring.
type UringConn struct {
	iour   *iouring.IOURing
	file   *os.File
	fd     int
	peer   *net.TCPAddr
	closed bool
}

// NewUringConn detaches the socket from the Go runtime poller and drives it
// through a fresh io_uring instance
func NewUringConn(c *net.TCPConn) (Conn, error) {
	iour, err := iouring.New(DefaultUringEntries)
	if err != nil {
		c.Close()
		return nil, errors.NewTransportError(
			errors.TransportErrorIoUringInit,
			"failed to initialize io_uring",
			err,
		)
	}

	// File dups the descriptor; the original is no longer needed
	f, err := c.File()
	c.Close()
	if err != nil {
		iour.Close()
		return nil, errors.NewTransportError(
			errors.TransportErrorSocketCreateFailure,
			"failed to detach socket",
			err,
		)
	}

	// Fd also switches the descriptor to blocking mode
	fd := int(f.Fd())

	var peer *net.TCPAddr
	if sa, err := unix.Getpeername(fd); err == nil {
		peer = sockaddrnet.SockaddrToTCPAddr(sa)
	}

	return &UringConn{
		iour: iour,
		file: f,
		fd:   fd,
		peer: peer,
	}, nil
}

// Read receives data from the connection using io_uring
func (t *UringConn) Read(buf []byte) (int, error) {
	if t.closed {
		return 0, errors.NewTransportError(
			errors.TransportErrorConnectionClosed,
			"connection closed",
			nil,
		)
	}

	ch := make(chan iouring.Result, 1)
	prepReq := iouring.Read(t.fd, buf)
	if _, err := t.iour.SubmitRequest(prepReq, ch); err != nil {
		return 0, errors.NewTransportError(
			errors.TransportErrorIoUringSubmit,
			"failed to submit read request",
			err,
		)
	}

	result := <-ch
	n, err := result.ReturnInt()
	if err != nil {
		return 0, errors.NewTransportError(
			errors.TransportErrorSocketReadFailure,
			"read failed",
			err,
		)
	}

	if n == 0 && len(buf) > 0 {
		return 0, errors.NewTransportError(
			errors.TransportErrorConnectionClosed,
			"connection closed by peer",
			nil,
		)
	}

	return n, nil
}

// Write sends all of buf, resubmitting after short sends
func (t *UringConn) Write(buf []byte) (int, error) {
	if t.closed {
		return 0, errors.NewTransportError(
			errors.TransportErrorConnectionClosed,
			"connection closed",
			nil,
		)
	}

	totalWritten := 0
	for totalWritten < len(buf) {
		ch := make(chan iouring.Result, 1)
		prepReq := iouring.Write(t.fd, buf[totalWritten:])
		if _, err := t.iour.SubmitRequest(prepReq, ch); err != nil {
			return totalWritten, errors.NewTransportError(
				errors.TransportErrorIoUringSubmit,
				"failed to submit write request",
				err,
			)
		}

		result := <-ch
		n, err := result.ReturnInt()
		if err != nil {
			return totalWritten, errors.NewTransportError(
				errors.TransportErrorSocketWriteFailure,
				"write failed",
				err,
			)
		}

		if n <= 0 {
			return totalWritten, errors.NewTransportError(
				errors.TransportErrorConnectionClosed,
				"connection closed during write",
				nil,
			)
		}

		totalWritten += n
	}

	return totalWritten, nil
}

// Close closes the socket and releases the ring
func (t *UringConn) Close() error {
	if t.closed {
		return nil
	}
	t.closed = true

	err := t.file.Close()
	t.iour.Close()
	t.iour = nil

	if err != nil {
		return errors.NewTransportError(
			errors.TransportErrorConnectionClosed,
			"failed to close socket",
			err,
		)
	}
	return nil
}

// RemoteAddr returns the peer address, nil if it could not be read
func (t *UringConn) RemoteAddr() *net.TCPAddr {
	return t.peer
}
