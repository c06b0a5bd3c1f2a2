package protocol

import (
	"path/filepath"
	"strings"

	"github.com/0xN0x/http-server/errors"
)

// RootMarker is the default root: the working directory at startup
const RootMarker = "."

// Resolver maps request paths onto the filesystem below Root
type Resolver struct {
	Root string
}

// NewResolver creates a resolver rooted at root, or at RootMarker if empty
func NewResolver(root string) *Resolver {
	if root == "" {
		root = RootMarker
	}
	return &Resolver{Root: root}
}

// Resolve returns the filesystem path for a request path. Paths whose ".."
// segments would climb above the root are rejected.
func (r *Resolver) Resolve(reqPath string) (string, error) {
	reqPath = defaultPath(reqPath)

	segments := make([]string, 0, strings.Count(reqPath, "/"))
	for _, seg := range strings.Split(reqPath, "/") {
		switch seg {
		case "", ".":
		case "..":
			if len(segments) == 0 {
				return "", errors.NewProtocolError(
					errors.ProtocolErrorPathOutsideRoot,
					reqPath,
				)
			}
			segments = segments[:len(segments)-1]
		default:
			segments = append(segments, seg)
		}
	}

	return filepath.Join(append([]string{r.Root}, segments...)...), nil
}
