package filesystem

import (
	"io"
	"os"

	"github.com/godzie44/go-uring/uring"

	"github.com/0xN0x/http-server/errors"
)

// DefaultRingEntries is the queue depth of each per-file ring
const DefaultRingEntries = 32

// UringFileSystem reads file contents through io_uring (godzie44/go-uring).
// Each open file owns its ring, so files opened by different connections
// never share submission state.
type UringFileSystem struct {
	entries uint32
}

// NewUringFileSystem checks that io_uring is usable and returns a file
// system whose files use rings of the given depth
func NewUringFileSystem(entries uint32) (*UringFileSystem, error) {
	if entries == 0 {
		entries = DefaultRingEntries
	}

	ring, err := uring.New(entries)
	if err != nil {
		return nil, errors.NewTransportError(
			errors.TransportErrorIoUringInit,
			"failed to initialize io_uring",
			err,
		)
	}
	ring.Close()

	return &UringFileSystem{entries: entries}, nil
}

// Open opens name read-only and attaches a fresh ring to it
func (u *UringFileSystem) Open(name string) (File, error) {
	f, err := openRegular(name)
	if err != nil {
		return nil, err
	}

	ring, err := uring.New(u.entries)
	if err != nil {
		f.Close()
		return nil, errors.NewFilesystemError(
			errors.FilesystemErrorOther,
			"failed to initialize io_uring",
			err,
		)
	}

	return &uringFile{ring: ring, file: f}, nil
}

type uringFile struct {
	ring *uring.Ring
	file *os.File
}

// ReadAt submits one read at off and waits for its completion
func (u *uringFile) ReadAt(p []byte, off int64) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	sqe := uring.Read(u.file.Fd(), p, uint64(off))
	if err := u.ring.QueueSQE(sqe, 0, 0); err != nil {
		return 0, errors.NewTransportError(
			errors.TransportErrorIoUringSubmit,
			"failed to queue read request",
			err,
		)
	}

	if _, err := u.ring.Submit(); err != nil {
		return 0, errors.NewTransportError(
			errors.TransportErrorIoUringSubmit,
			"failed to submit read request",
			err,
		)
	}

	cqe, err := u.ring.WaitCQEvents(1)
	if err != nil {
		return 0, errors.NewFilesystemError(
			errors.FilesystemErrorReadFailure,
			"failed to wait for read completion",
			err,
		)
	}

	if err := cqe.Error(); err != nil {
		u.ring.SeenCQE(cqe)
		return 0, errors.NewFilesystemError(
			errors.FilesystemErrorReadFailure,
			"read operation failed",
			err,
		)
	}

	n := int(cqe.Res)
	u.ring.SeenCQE(cqe)

	if n == 0 {
		return 0, io.EOF
	}
	return n, nil
}

func (u *uringFile) Size() (int64, error) {
	info, err := u.file.Stat()
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// Close releases the ring and the file
func (u *uringFile) Close() error {
	if u.ring != nil {
		u.ring.Close()
		u.ring = nil
	}
	return u.file.Close()
}
