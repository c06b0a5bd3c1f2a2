// Package filesystem is the server's view of the files it serves: open for
// reading, size query and byte-range reads. Open errors are classified once
// here so the server can map them straight to a response.
package filesystem

import (
	stderrors "errors"
	"fmt"
	"io"
	"io/fs"

	"golang.org/x/sys/unix"

	"github.com/0xN0x/http-server/errors"
)

// File is an open, readable regular file
type File interface {
	io.ReaderAt
	io.Closer

	// Size returns the total byte length of the file
	Size() (int64, error)
}

// FileSystem opens files for reading
type FileSystem interface {
	// Open returns a File or a classified *errors.ServerError
	Open(name string) (File, error)
}

// Classify maps an open error onto one of the filesystem error kinds
func Classify(err error) errors.FilesystemError {
	switch {
	case err == nil:
		return errors.FilesystemErrorNone
	case stderrors.Is(err, fs.ErrPermission), stderrors.Is(err, unix.EACCES):
		return errors.FilesystemErrorPermissionDenied
	case stderrors.Is(err, unix.EISDIR):
		return errors.FilesystemErrorIsDirectory
	case stderrors.Is(err, fs.ErrNotExist):
		return errors.FilesystemErrorNotFound
	default:
		return errors.FilesystemErrorOther
	}
}

func openError(name string, err error) error {
	return errors.NewFilesystemError(Classify(err), name, err)
}

// ReadAll reads f from offset 0 up to its reported size. A file that shrinks
// while being read yields the bytes that were available.
func ReadAll(f File) ([]byte, error) {
	size, err := f.Size()
	if err != nil {
		return nil, errors.NewFilesystemError(errors.FilesystemErrorReadFailure, "stat", err)
	}

	buf := make([]byte, size)
	var off int64
	for off < size {
		n, err := f.ReadAt(buf[off:], off)
		off += int64(n)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.NewFilesystemError(
				errors.FilesystemErrorReadFailure,
				fmt.Sprintf("read at offset %d", off),
				err,
			)
		}
		if n == 0 {
			break
		}
	}

	return buf[:off], nil
}
