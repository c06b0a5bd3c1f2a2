package protocol

import (
	"bytes"
	"fmt"

	"github.com/0xN0x/http-server/errors"
)

// Token bounds for a request line
const (
	MaxMethodLen  = 10
	MaxPathLen    = 2048
	MaxVersionLen = 8
)

// DefaultDocument replaces an empty or root-only path
const DefaultDocument = "/index.html"

// ParseRequestLine extracts method, path and version from the first line of
// buf. Anything after the first line is ignored.
func ParseRequestLine(buf []byte) (*Request, error) {
	line := buf
	if i := bytes.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	line = bytes.TrimSuffix(line, []byte("\r"))

	fields := bytes.Fields(line)
	if len(fields) < 3 {
		return nil, errors.NewProtocolError(
			errors.ProtocolErrorMalformedRequestLine,
			fmt.Sprintf("expected 3 tokens, got %d", len(fields)),
		)
	}

	method, path, version := fields[0], fields[1], fields[2]
	if err := checkLen("method", method, MaxMethodLen); err != nil {
		return nil, err
	}
	if err := checkLen("path", path, MaxPathLen); err != nil {
		return nil, err
	}
	if err := checkLen("version", version, MaxVersionLen); err != nil {
		return nil, err
	}

	if path[0] != '/' {
		return nil, errors.NewProtocolError(
			errors.ProtocolErrorMalformedRequestLine,
			"path must start with /",
		)
	}

	return &Request{
		Method:  string(method),
		Path:    defaultPath(string(path)),
		Version: string(version),
	}, nil
}

func checkLen(name string, tok []byte, max int) error {
	if len(tok) > max {
		return errors.NewProtocolError(
			errors.ProtocolErrorTokenTooLong,
			fmt.Sprintf("%s exceeds %d bytes", name, max),
		)
	}
	return nil
}

// defaultPath applies the default-document rule
func defaultPath(p string) string {
	for i := 0; i < len(p); i++ {
		if p[i] != '/' {
			return p
		}
	}
	return DefaultDocument
}
