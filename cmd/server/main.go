package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/0xN0x/http-server/errors"
	"github.com/0xN0x/http-server/filesystem"
	"github.com/0xN0x/http-server/server"
	"github.com/0xN0x/http-server/transport"
)

type options struct {
	root      string
	backlog   int
	backend   string
	fs        string
	crlf      bool
	logLevel  string
	logFormat string
	port      int
}

func main() {
	opts, err := parseArgs(os.Args[0], os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log := logrus.New()
	cfg, err := buildConfig(opts, log)
	if err != nil {
		log.WithError(err).Fatal("Invalid configuration")
	}

	srv := server.NewServer(cfg)
	if err := srv.ListenAndServe(opts.port); err != nil {
		log.WithError(err).Fatal("Server stopped")
	}
}

// parseArgs reads the flags and the single PORT argument
func parseArgs(name string, args []string) (*options, error) {
	opts := &options{}
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: %s [flags] PORT\n", name)
		fs.PrintDefaults()
	}
	fs.StringVar(&opts.root, "root", ".", "directory to serve files from")
	fs.IntVar(&opts.backlog, "backlog", transport.DefaultBacklog, "listen backlog")
	fs.StringVar(&opts.backend, "backend", transport.BackendNet, "connection I/O backend: net or iouring")
	fs.StringVar(&opts.fs, "fs", "os", "file read backend: os or uring")
	fs.BoolVar(&opts.crlf, "crlf", false, "terminate response lines with CRLF instead of LF")
	fs.StringVar(&opts.logLevel, "log-level", "info", "log level")
	fs.StringVar(&opts.logFormat, "log-format", "text", "log format: text or json")

	if err := fs.Parse(args); err != nil {
		return nil, errors.NewConfigError("bad flags", err)
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return nil, errors.NewConfigError(fmt.Sprintf("expected 1 argument, got %d", fs.NArg()), nil)
	}

	port, err := strconv.ParseUint(fs.Arg(0), 10, 16)
	if err != nil || port == 0 {
		return nil, errors.NewConfigError(fmt.Sprintf("Bad port number %s", fs.Arg(0)), err)
	}
	opts.port = int(port)

	return opts, nil
}

// buildConfig turns options into a server configuration and sets up log
func buildConfig(opts *options, log *logrus.Logger) (server.Config, error) {
	cfg := server.DefaultConfig()

	level, err := logrus.ParseLevel(opts.logLevel)
	if err != nil {
		return cfg, errors.NewConfigError("bad log level", err)
	}
	log.SetLevel(level)

	switch opts.logFormat {
	case "text":
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	case "json":
		log.SetFormatter(&logrus.JSONFormatter{})
	default:
		return cfg, errors.NewConfigError(fmt.Sprintf("unknown log format %q", opts.logFormat), nil)
	}
	cfg.Logger = log

	info, err := os.Stat(opts.root)
	if err != nil {
		return cfg, errors.NewConfigError("bad root", err)
	}
	if !info.IsDir() {
		return cfg, errors.NewConfigError(fmt.Sprintf("root %s is not a directory", opts.root), nil)
	}
	cfg.Root = opts.root

	if opts.backlog <= 0 {
		return cfg, errors.NewConfigError(fmt.Sprintf("backlog must be positive, got %d", opts.backlog), nil)
	}
	cfg.Backlog = opts.backlog
	cfg.CRLF = opts.crlf

	backend, ok := transport.BackendByName(opts.backend)
	if !ok {
		return cfg, errors.NewConfigError(fmt.Sprintf("unknown backend %q", opts.backend), nil)
	}
	cfg.Backend = backend

	switch opts.fs {
	case "os":
		cfg.FileSystem = filesystem.NewOSFileSystem()
	case "uring":
		fsys, err := filesystem.NewUringFileSystem(filesystem.DefaultRingEntries)
		if err != nil {
			return cfg, fmt.Errorf("-fs uring: %w", err)
		}
		cfg.FileSystem = fsys
	default:
		return cfg, errors.NewConfigError(fmt.Sprintf("unknown file system %q", opts.fs), nil)
	}

	return cfg, nil
}
