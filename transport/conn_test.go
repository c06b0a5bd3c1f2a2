package transport

import (
	"bytes"
	"io"
	"net"
	"strconv"
	"syscall"
	"testing"
	"time"

	"github.com/0xN0x/http-server/errors"
)

func itoa(i int) string { return strconv.Itoa(i) }

// setupConn accepts one connection through backend and hands the client side
// to clientLogic
func setupConn(t *testing.T, backend Backend, clientLogic func(net.Conn)) (Conn, func()) {
	t.Helper()

	l, err := Listen(0, 1)
	if err != nil {
		t.Fatalf("Failed to create listener: %v", err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		c, err := net.Dial("tcp4", "127.0.0.1:"+itoa(l.Addr().Port))
		if err != nil {
			return
		}
		clientLogic(c)
		c.Close()
	}()

	tc, err := l.Accept()
	l.Close()
	if err != nil {
		t.Fatalf("Accept failed: %v", err)
	}

	conn, err := backend(tc)
	if err != nil {
		t.Fatalf("Backend failed: %v", err)
	}

	cleanup := func() {
		conn.Close()
		<-done
	}
	return conn, cleanup
}

func requireUring(t *testing.T) {
	t.Helper()

	l, err := Listen(0, 1)
	if err != nil {
		t.Fatalf("Listen failed: %v", err)
	}
	defer l.Close()

	go func() {
		if c, err := net.Dial("tcp4", "127.0.0.1:"+itoa(l.Addr().Port)); err == nil {
			c.Close()
		}
	}()
	tc, err := l.Accept()
	if err != nil {
		t.Fatalf("Accept failed: %v", err)
	}
	conn, err := NewUringConn(tc)
	if err != nil {
		t.Skipf("io_uring unavailable: %v", err)
	}
	conn.Close()
}

func backends() map[string]Backend {
	return map[string]Backend{
		BackendNet:     NewTcpConn,
		BackendIoUring: NewUringConn,
	}
}

func TestConn_ReadWrite(t *testing.T) {
	for name, backend := range backends() {
		t.Run(name, func(t *testing.T) {
			if name == BackendIoUring {
				requireUring(t)
			}

			received := make(chan string, 1)
			conn, cleanup := setupConn(t, backend, func(c net.Conn) {
				c.Write([]byte("GET / HTTP/1.1\r\n\r\n"))
				buf := make([]byte, 1024)
				n, _ := c.Read(buf)
				received <- string(buf[:n])
			})
			defer cleanup()

			buf := make([]byte, 1024)
			n, err := conn.Read(buf)
			if err != nil {
				t.Fatalf("Read failed: %v", err)
			}
			if got := string(buf[:n]); got != "GET / HTTP/1.1\r\n\r\n" {
				t.Errorf("Unexpected request bytes %q", got)
			}

			reply := "HTTP/1.1 200 OK\n"
			n, err = conn.Write([]byte(reply))
			if err != nil {
				t.Fatalf("Write failed: %v", err)
			}
			if n != len(reply) {
				t.Errorf("Expected to write %d bytes, wrote %d", len(reply), n)
			}

			select {
			case msg := <-received:
				if msg != reply {
					t.Errorf("Expected %q, got %q", reply, msg)
				}
			case <-time.After(time.Second):
				t.Error("Timeout waiting for reply")
			}

			if conn.RemoteAddr() == nil || conn.RemoteAddr().IP.To4() == nil {
				t.Errorf("Expected IPv4 peer address, got %v", conn.RemoteAddr())
			}
		})
	}
}

func TestConn_LargeWrite(t *testing.T) {
	for name, backend := range backends() {
		t.Run(name, func(t *testing.T) {
			if name == BackendIoUring {
				requireUring(t)
			}

			payload := bytes.Repeat([]byte("0123456789abcdef"), 1<<16)
			received := make(chan []byte, 1)
			conn, cleanup := setupConn(t, backend, func(c net.Conn) {
				buf := make([]byte, len(payload))
				n, _ := io.ReadFull(c, buf)
				received <- buf[:n]
			})
			defer cleanup()

			n, err := conn.Write(payload)
			if err != nil {
				t.Fatalf("Write failed: %v", err)
			}
			if n != len(payload) {
				t.Errorf("Expected to write %d bytes, wrote %d", len(payload), n)
			}

			select {
			case got := <-received:
				if !bytes.Equal(got, payload) {
					t.Errorf("Peer received %d bytes, want %d identical bytes", len(got), len(payload))
				}
			case <-time.After(5 * time.Second):
				t.Error("Timeout waiting for payload")
			}
		})
	}
}

func TestConn_PeerClosed(t *testing.T) {
	for name, backend := range backends() {
		t.Run(name, func(t *testing.T) {
			if name == BackendIoUring {
				requireUring(t)
			}

			conn, cleanup := setupConn(t, backend, func(c net.Conn) {
				// Client closes without sending
			})
			defer cleanup()

			buf := make([]byte, 1024)
			_, err := conn.Read(buf)
			if !errors.IsTransport(err, errors.TransportErrorConnectionClosed) {
				t.Errorf("Expected ConnectionClosed, got %v", err)
			}
		})
	}
}

func TestConn_CloseIdempotent(t *testing.T) {
	for name, backend := range backends() {
		t.Run(name, func(t *testing.T) {
			if name == BackendIoUring {
				requireUring(t)
			}

			conn, cleanup := setupConn(t, backend, func(c net.Conn) {})
			defer cleanup()

			if err := conn.Close(); err != nil {
				t.Errorf("First close failed: %v", err)
			}
			if err := conn.Close(); err != nil {
				t.Errorf("Second close failed: %v", err)
			}

			_, err := conn.Read(make([]byte, 8))
			if err == nil {
				t.Error("Expected Read on closed connection to fail")
			}
		})
	}
}

func TestTcpConn_WriteAfterReset(t *testing.T) {
	conn, cleanup := setupConn(t, NewTcpConn, func(c net.Conn) {
		// Set SO_LINGER to force RST on close
		if tcpConn, ok := c.(*net.TCPConn); ok {
			raw, err := tcpConn.SyscallConn()
			if err == nil {
				raw.Control(func(fd uintptr) {
					linger := syscall.Linger{Onoff: 1, Linger: 0}
					syscall.SetsockoptLinger(int(fd), syscall.SOL_SOCKET, syscall.SO_LINGER, &linger)
				})
			}
		}
	})
	defer cleanup()

	// Wait for client to close with RST
	time.Sleep(50 * time.Millisecond)

	_, err := conn.Write([]byte("this should fail"))
	if err == nil {
		t.Fatal("Expected error on write to reset connection")
	}
	if !errors.IsTransport(err, errors.TransportErrorConnectionClosed) {
		t.Errorf("Expected ConnectionClosed, got %v", err)
	}
}
