package filesystem

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/0xN0x/http-server/errors"
)

func writeTestFile(t *testing.T, dir, name string, content []byte, perm os.FileMode) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}
	if err := os.Chmod(path, perm); err != nil {
		t.Fatalf("Failed to chmod %s: %v", path, err)
	}
	return path
}

// runFileSystemTests exercises the behavior every FileSystem must share
func runFileSystemTests(t *testing.T, fsys FileSystem) {
	t.Helper()
	dir := t.TempDir()

	t.Run("ReadAll", func(t *testing.T) {
		content := bytes.Repeat([]byte("0123456789abcdef"), 5000)
		path := writeTestFile(t, dir, "big.html", content, 0o644)

		f, err := fsys.Open(path)
		if err != nil {
			t.Fatalf("Open failed: %v", err)
		}
		defer f.Close()

		size, err := f.Size()
		if err != nil {
			t.Fatalf("Size failed: %v", err)
		}
		if size != int64(len(content)) {
			t.Errorf("Expected size %d, got %d", len(content), size)
		}

		got, err := ReadAll(f)
		if err != nil {
			t.Fatalf("ReadAll failed: %v", err)
		}
		if !bytes.Equal(got, content) {
			t.Errorf("Content mismatch: got %d bytes, want %d", len(got), len(content))
		}
	})

	t.Run("ReadAtRange", func(t *testing.T) {
		path := writeTestFile(t, dir, "range.txt", []byte("hello, world"), 0o644)

		f, err := fsys.Open(path)
		if err != nil {
			t.Fatalf("Open failed: %v", err)
		}
		defer f.Close()

		buf := make([]byte, 5)
		n, err := f.ReadAt(buf, 7)
		if err != nil && err != io.EOF {
			t.Fatalf("ReadAt failed: %v", err)
		}
		if got := string(buf[:n]); got != "world" {
			t.Errorf("Expected %q, got %q", "world", got)
		}
	})

	t.Run("EmptyFile", func(t *testing.T) {
		path := writeTestFile(t, dir, "empty.html", nil, 0o644)

		f, err := fsys.Open(path)
		if err != nil {
			t.Fatalf("Open failed: %v", err)
		}
		defer f.Close()

		got, err := ReadAll(f)
		if err != nil {
			t.Fatalf("ReadAll failed: %v", err)
		}
		if len(got) != 0 {
			t.Errorf("Expected empty content, got %d bytes", len(got))
		}
	})

	t.Run("NotFound", func(t *testing.T) {
		_, err := fsys.Open(filepath.Join(dir, "missing.html"))
		if !errors.IsFilesystem(err, errors.FilesystemErrorNotFound) {
			t.Errorf("Expected NotFound, got %v", err)
		}
	})

	t.Run("Directory", func(t *testing.T) {
		sub := filepath.Join(dir, "sub")
		if err := os.Mkdir(sub, 0o755); err != nil {
			t.Fatalf("Mkdir failed: %v", err)
		}
		_, err := fsys.Open(sub)
		if !errors.IsFilesystem(err, errors.FilesystemErrorIsDirectory) {
			t.Errorf("Expected IsDirectory, got %v", err)
		}
	})

	t.Run("NotADirectory", func(t *testing.T) {
		path := writeTestFile(t, dir, "plain", []byte("x"), 0o644)
		_, err := fsys.Open(filepath.Join(path, "child"))
		if !errors.IsFilesystem(err, errors.FilesystemErrorOther) {
			t.Errorf("Expected Other for ENOTDIR, got %v", err)
		}
	})

	t.Run("PermissionDenied", func(t *testing.T) {
		if os.Geteuid() == 0 {
			t.Skip("root bypasses file permissions")
		}
		path := writeTestFile(t, dir, "secret.html", []byte("nope"), 0o000)
		_, err := fsys.Open(path)
		if !errors.IsFilesystem(err, errors.FilesystemErrorPermissionDenied) {
			t.Errorf("Expected PermissionDenied, got %v", err)
		}
	})
}

func TestOSFileSystem(t *testing.T) {
	runFileSystemTests(t, NewOSFileSystem())
}

func TestUringFileSystem(t *testing.T) {
	fsys, err := NewUringFileSystem(0)
	if err != nil {
		t.Skipf("io_uring unavailable: %v", err)
	}
	runFileSystemTests(t, fsys)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		err  error
		want errors.FilesystemError
	}{
		{nil, errors.FilesystemErrorNone},
		{os.ErrNotExist, errors.FilesystemErrorNotFound},
		{os.ErrPermission, errors.FilesystemErrorPermissionDenied},
		{io.ErrUnexpectedEOF, errors.FilesystemErrorOther},
	}

	for _, tt := range tests {
		if got := Classify(tt.err); got != tt.want {
			t.Errorf("Classify(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}

type failingFile struct {
	size int64
	err  error
}

func (f *failingFile) ReadAt(p []byte, off int64) (int, error) { return 0, f.err }
func (f *failingFile) Size() (int64, error)                     { return f.size, nil }
func (f *failingFile) Close() error                             { return nil }

func TestReadAll_ReadFailure(t *testing.T) {
	_, err := ReadAll(&failingFile{size: 10, err: io.ErrClosedPipe})
	if !errors.IsFilesystem(err, errors.FilesystemErrorReadFailure) {
		t.Errorf("Expected ReadFailure, got %v", err)
	}
}

func TestReadAll_ShrunkFile(t *testing.T) {
	got, err := ReadAll(&shrunkFile{data: []byte("abc"), size: 8})
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if string(got) != "abc" {
		t.Errorf("Expected %q, got %q", "abc", got)
	}
}

type shrunkFile struct {
	data []byte
	size int64
}

func (s *shrunkFile) ReadAt(p []byte, off int64) (int, error) {
	return strings.NewReader(string(s.data)).ReadAt(p, off)
}
func (s *shrunkFile) Size() (int64, error) { return s.size, nil }
func (s *shrunkFile) Close() error         { return nil }
