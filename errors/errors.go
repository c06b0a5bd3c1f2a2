package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorType represents the category of error
type ErrorType int

const (
	ErrorNone ErrorType = iota
	ErrorTransport
	ErrorProtocol
	ErrorFilesystem
	ErrorConfig
)

// TransportError represents socket-level errors on the listener or a connection
type TransportError int

const (
	TransportErrorNone TransportError = iota
	TransportErrorSocketCreateFailure
	TransportErrorSocketBindFailure
	TransportErrorSocketListenFailure
	TransportErrorSocketAcceptFailure
	TransportErrorSocketReadFailure
	TransportErrorSocketWriteFailure
	TransportErrorConnectionClosed
	TransportErrorUnsupportedFamily
	TransportErrorIoUringInit
	TransportErrorIoUringSubmit
)

var transportErrorNames = map[TransportError]string{
	TransportErrorSocketCreateFailure: "socket creation failed",
	TransportErrorSocketBindFailure:   "socket bind failed",
	TransportErrorSocketListenFailure: "socket listen failed",
	TransportErrorSocketAcceptFailure: "socket accept failed",
	TransportErrorSocketReadFailure:   "socket read failed",
	TransportErrorSocketWriteFailure:  "socket write failed",
	TransportErrorConnectionClosed:    "connection closed",
	TransportErrorUnsupportedFamily:   "unsupported address family",
	TransportErrorIoUringInit:         "io_uring init failed",
	TransportErrorIoUringSubmit:       "io_uring submit failed",
}

func (e TransportError) String() string {
	if s, ok := transportErrorNames[e]; ok {
		return s
	}
	return fmt.Sprintf("transport error %d", int(e))
}

// ProtocolError represents errors parsing or resolving a request
type ProtocolError int

const (
	ProtocolErrorNone ProtocolError = iota
	ProtocolErrorMalformedRequestLine
	ProtocolErrorTokenTooLong
	ProtocolErrorPathOutsideRoot
)

var protocolErrorNames = map[ProtocolError]string{
	ProtocolErrorMalformedRequestLine: "malformed request line",
	ProtocolErrorTokenTooLong:         "request token too long",
	ProtocolErrorPathOutsideRoot:      "path outside root",
}

func (e ProtocolError) String() string {
	if s, ok := protocolErrorNames[e]; ok {
		return s
	}
	return fmt.Sprintf("protocol error %d", int(e))
}

// FilesystemError represents the outcome classes of opening and reading a file
type FilesystemError int

const (
	FilesystemErrorNone FilesystemError = iota
	FilesystemErrorPermissionDenied
	FilesystemErrorNotFound
	FilesystemErrorIsDirectory
	FilesystemErrorReadFailure
	FilesystemErrorOther
)

var filesystemErrorNames = map[FilesystemError]string{
	FilesystemErrorPermissionDenied: "permission denied",
	FilesystemErrorNotFound:         "not found",
	FilesystemErrorIsDirectory:      "is a directory",
	FilesystemErrorReadFailure:      "read failed",
	FilesystemErrorOther:            "open failed",
}

func (e FilesystemError) String() string {
	if s, ok := filesystemErrorNames[e]; ok {
		return s
	}
	return fmt.Sprintf("filesystem error %d", int(e))
}

// ServerError is the main error type for the server
type ServerError struct {
	Type          ErrorType
	TransportErr  TransportError
	ProtocolErr   ProtocolError
	FilesystemErr FilesystemError
	Message       string
	UnderlyingErr error
}

// Error implements the error interface
func (e *ServerError) Error() string {
	if e == nil {
		return "no error"
	}

	var typeStr string
	switch e.Type {
	case ErrorTransport:
		typeStr = fmt.Sprintf("Transport error (%s)", e.TransportErr)
	case ErrorProtocol:
		typeStr = fmt.Sprintf("Protocol error (%s)", e.ProtocolErr)
	case ErrorFilesystem:
		typeStr = fmt.Sprintf("Filesystem error (%s)", e.FilesystemErr)
	case ErrorConfig:
		typeStr = "Configuration error"
	default:
		typeStr = "Unknown error"
	}

	if e.Message != "" {
		typeStr = fmt.Sprintf("%s: %s", typeStr, e.Message)
	}

	if e.UnderlyingErr != nil {
		return fmt.Sprintf("%s (caused by: %v)", typeStr, e.UnderlyingErr)
	}

	return typeStr
}

// Unwrap returns the underlying error for error chain support
func (e *ServerError) Unwrap() error {
	return e.UnderlyingErr
}

// NewTransportError creates a new transport error
func NewTransportError(err TransportError, message string, underlying error) *ServerError {
	return &ServerError{
		Type:          ErrorTransport,
		TransportErr:  err,
		Message:       message,
		UnderlyingErr: underlying,
	}
}

// NewProtocolError creates a new protocol error
func NewProtocolError(err ProtocolError, message string) *ServerError {
	return &ServerError{
		Type:        ErrorProtocol,
		ProtocolErr: err,
		Message:     message,
	}
}

// NewFilesystemError creates a new filesystem error
func NewFilesystemError(err FilesystemError, message string, underlying error) *ServerError {
	return &ServerError{
		Type:          ErrorFilesystem,
		FilesystemErr: err,
		Message:       message,
		UnderlyingErr: underlying,
	}
}

// NewConfigError creates a new configuration error
func NewConfigError(message string, underlying error) *ServerError {
	return &ServerError{
		Type:          ErrorConfig,
		Message:       message,
		UnderlyingErr: underlying,
	}
}

// IsTransport reports whether err carries a transport error of the given kind
func IsTransport(err error, kind TransportError) bool {
	var se *ServerError
	return stderrors.As(err, &se) && se.Type == ErrorTransport && se.TransportErr == kind
}

// IsProtocol reports whether err carries a protocol error of the given kind
func IsProtocol(err error, kind ProtocolError) bool {
	var se *ServerError
	return stderrors.As(err, &se) && se.Type == ErrorProtocol && se.ProtocolErr == kind
}

// IsFilesystem reports whether err carries a filesystem error of the given kind
func IsFilesystem(err error, kind FilesystemError) bool {
	var se *ServerError
	return stderrors.As(err, &se) && se.Type == ErrorFilesystem && se.FilesystemErr == kind
}

// IsConfigError reports whether err is a configuration error
func IsConfigError(err error) bool {
	var se *ServerError
	return stderrors.As(err, &se) && se.Type == ErrorConfig
}
