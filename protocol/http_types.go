package protocol

// Status is one of the response classes the server emits
type Status int

const (
	StatusOK                  Status = 200
	StatusBadRequest          Status = 400
	StatusForbidden           Status = 403
	StatusNotFound            Status = 404
	StatusInternalServerError Status = 500
)

// Reason returns the reason phrase written on the status line
func (s Status) Reason() string {
	switch s {
	case StatusOK:
		return "OK"
	case StatusBadRequest:
		return "Bad Request"
	case StatusForbidden:
		return "Forbidden"
	case StatusNotFound:
		return "Not Found"
	case StatusInternalServerError:
		return "Internal Server Error"
	default:
		return "Unknown"
	}
}

// Request is the parsed form of one request line
type Request struct {
	Method  string
	Path    string
	Version string
}

// HttpHeader represents an HTTP header key-value pair
type HttpHeader struct {
	Key   string
	Value string
}

// Response is the header and body content of one response before encoding
type Response struct {
	Status  Status
	Headers []HttpHeader
	Body    []byte

	// ContentLength overrides len(Body) in the header when positive
	ContentLength int
}
