package filesystem

import (
	"os"
	"syscall"
)

// OSFileSystem opens files with the os package
type OSFileSystem struct{}

// NewOSFileSystem creates a new OSFileSystem
func NewOSFileSystem() *OSFileSystem {
	return &OSFileSystem{}
}

// Open opens name read-only. Directories are rejected with EISDIR.
func (OSFileSystem) Open(name string) (File, error) {
	f, err := openRegular(name)
	if err != nil {
		return nil, err
	}
	return &osFile{f: f}, nil
}

// openRegular opens name and refuses directories, which os.Open accepts
func openRegular(name string) (*os.File, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, openError(name, err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, openError(name, err)
	}
	if info.IsDir() {
		f.Close()
		return nil, openError(name, &os.PathError{Op: "open", Path: name, Err: syscall.EISDIR})
	}

	return f, nil
}

type osFile struct {
	f *os.File
}

func (o *osFile) ReadAt(p []byte, off int64) (int, error) {
	return o.f.ReadAt(p, off)
}

func (o *osFile) Size() (int64, error) {
	info, err := o.f.Stat()
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

func (o *osFile) Close() error {
	return o.f.Close()
}
