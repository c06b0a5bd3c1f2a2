package server

import (
	stderrors "errors"

	"github.com/sirupsen/logrus"

	"github.com/0xN0x/http-server/errors"
	"github.com/0xN0x/http-server/filesystem"
	"github.com/0xN0x/http-server/protocol"
	"github.com/0xN0x/http-server/transport"
)

// worker owns one connection from accept to close. Nothing in it is shared
// with other workers.
type worker struct {
	conn     transport.Conn
	fs       filesystem.FileSystem
	resolver *protocol.Resolver
	builder  *protocol.Builder
	log      *logrus.Entry
	buf      []byte
}

func newWorker(s *Server, conn transport.Conn, id uint64) *worker {
	fields := logrus.Fields{"conn": id}
	if peer := conn.RemoteAddr(); peer != nil {
		fields["peer"] = peer.String()
	}
	return &worker{
		conn:     conn,
		fs:       s.cfg.FileSystem,
		resolver: s.resolver,
		builder:  s.builder,
		log:      s.log.WithFields(fields),
		buf:      make([]byte, s.cfg.ReadBufferSize),
	}
}

// serve reads one request per chunk and answers it until the peer goes away
// or the connection fails
func (w *worker) serve() {
	defer func() {
		if err := recover(); err != nil {
			w.log.Errorf("panic recovered: %v", err)
		}
		if err := w.conn.Close(); err != nil {
			w.log.WithError(err).Warn("Close failed")
		}
	}()

	for {
		n, err := w.conn.Read(w.buf)
		if err != nil {
			if errors.IsTransport(err, errors.TransportErrorConnectionClosed) {
				w.log.Debug("Remote end is done")
			} else {
				w.log.WithError(err).Error("Read failed")
			}
			return
		}

		req, status, resp := w.handle(w.buf[:n])

		entry := w.log.WithFields(logrus.Fields{"status": int(status), "bytes": len(resp)})
		if req != nil {
			entry = entry.WithFields(logrus.Fields{"method": req.Method, "path": req.Path})
		}

		if _, err := w.conn.Write(resp); err != nil {
			entry.WithError(err).Error("Write failed")
			return
		}
		entry.Info("Responded")
	}
}

// handle turns one request chunk into a complete response
func (w *worker) handle(chunk []byte) (*protocol.Request, protocol.Status, []byte) {
	req, err := protocol.ParseRequestLine(chunk)
	if err != nil {
		w.log.WithError(err).Debug("Malformed request")
		return nil, protocol.StatusBadRequest, w.builder.Error(protocol.StatusBadRequest)
	}

	path, err := w.resolver.Resolve(req.Path)
	if err != nil {
		w.log.WithError(err).Warn("Rejected path")
		return req, protocol.StatusForbidden, w.builder.Error(protocol.StatusForbidden)
	}

	f, err := w.fs.Open(path)
	if err != nil {
		status := openStatus(err)
		if status == protocol.StatusInternalServerError {
			w.log.WithError(err).Error("Open failed")
		}
		return req, status, w.builder.Error(status)
	}
	defer f.Close()

	content, err := filesystem.ReadAll(f)
	if err != nil {
		w.log.WithError(err).Error("Read of file failed")
		return req, protocol.StatusInternalServerError, w.builder.Error(protocol.StatusInternalServerError)
	}

	return req, protocol.StatusOK, w.builder.File(content)
}

// openStatus maps an open error to its response status
func openStatus(err error) protocol.Status {
	kind := filesystem.Classify(err)
	var se *errors.ServerError
	if stderrors.As(err, &se) && se.Type == errors.ErrorFilesystem {
		kind = se.FilesystemErr
	}

	switch kind {
	case errors.FilesystemErrorPermissionDenied:
		return protocol.StatusForbidden
	case errors.FilesystemErrorNotFound, errors.FilesystemErrorIsDirectory:
		return protocol.StatusNotFound
	default:
		return protocol.StatusInternalServerError
	}
}
