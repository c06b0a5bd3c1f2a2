package server

import (
	"github.com/sirupsen/logrus"

	"github.com/0xN0x/http-server/filesystem"
	"github.com/0xN0x/http-server/protocol"
	"github.com/0xN0x/http-server/transport"
)

// DefaultReadBufferSize is the largest request chunk read per iteration
const DefaultReadBufferSize = 8192

// Config holds everything a Server needs. It is read-only once the server
// has been created.
type Config struct {
	// Root is the directory files are served from
	Root string
	// Backlog is the listen(2) backlog
	Backlog int
	// ReadBufferSize bounds a single request read
	ReadBufferSize int
	// CRLF selects "\r\n" line endings in responses instead of "\n"
	CRLF bool

	Backend    transport.Backend
	FileSystem filesystem.FileSystem
	Logger     *logrus.Logger
	// Clock overrides the Date header time source
	Clock protocol.Clock
}

// DefaultConfig returns the reference configuration: working directory root,
// backlog 1, 8 KiB reads, "\n" line endings, net backend, os file system
func DefaultConfig() Config {
	return Config{
		Root:           protocol.RootMarker,
		Backlog:        transport.DefaultBacklog,
		ReadBufferSize: DefaultReadBufferSize,
		Backend:        transport.NewTcpConn,
		FileSystem:     filesystem.NewOSFileSystem(),
		Logger:         logrus.StandardLogger(),
	}
}

func (c *Config) setDefaults() {
	def := DefaultConfig()
	if c.Root == "" {
		c.Root = def.Root
	}
	if c.Backlog <= 0 {
		c.Backlog = def.Backlog
	}
	if c.ReadBufferSize <= 0 {
		c.ReadBufferSize = def.ReadBufferSize
	}
	if c.Backend == nil {
		c.Backend = def.Backend
	}
	if c.FileSystem == nil {
		c.FileSystem = def.FileSystem
	}
	if c.Logger == nil {
		c.Logger = def.Logger
	}
}
