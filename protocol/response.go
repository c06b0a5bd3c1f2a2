package protocol

import (
	"strconv"
	"time"
)

// Content types. MIME detection is not done; every file is served as HTML.
const (
	ContentTypeHTML  = "text/html"
	ContentTypePlain = "text/plain"
)

type errorPage struct {
	body []byte
	// length is the advertised Content-Length; 0 means len(body). The 403,
	// 404 and 500 pages advertise one byte less than they send.
	length int
}

// Fixed error responses
var errorPages = map[Status]errorPage{
	StatusBadRequest:          {body: []byte("Bad Request\n")},
	StatusForbidden:           {body: []byte("Forbidden\n"), length: 9},
	StatusNotFound:            {body: []byte("Page not found\n"), length: 14},
	StatusInternalServerError: {body: []byte("Internal Server Error\n"), length: 21},
}

// ErrorBody returns the fixed body for an error status, nil for 200
func ErrorBody(s Status) []byte {
	return errorPages[s].body
}

// ErrorLength returns the Content-Length advertised for an error status
func ErrorLength(s Status) int {
	p := errorPages[s]
	if p.length > 0 {
		return p.length
	}
	return len(p.body)
}

// Builder encodes responses into wire format. The zero value writes "\n"
// line endings and stamps responses with time.Now.
type Builder struct {
	// CRLF switches line endings to "\r\n"
	CRLF bool
	// Clock overrides the time source for the Date header
	Clock Clock
}

func (b *Builder) eol() string {
	if b.CRLF {
		return "\r\n"
	}
	return "\n"
}

func (b *Builder) now() time.Time {
	if b.Clock != nil {
		return b.Clock()
	}
	return time.Now()
}

// File builds a 200 response carrying the file contents
func (b *Builder) File(content []byte) []byte {
	return b.Build(&Response{
		Status:  StatusOK,
		Headers: []HttpHeader{{Key: "Content-Type", Value: ContentTypeHTML}},
		Body:    content,
	})
}

// Error builds one of the fixed plain-text error responses
func (b *Builder) Error(s Status) []byte {
	return b.Build(&Response{
		Status:        s,
		Headers:       []HttpHeader{{Key: "Content-Type", Value: ContentTypePlain}},
		Body:          ErrorBody(s),
		ContentLength: ErrorLength(s),
	})
}

// Build encodes resp. Date and Content-Length are written here and must not
// appear in resp.Headers; Content-Length is len(resp.Body) unless
// resp.ContentLength is set.
func (b *Builder) Build(resp *Response) []byte {
	eol := b.eol()
	date := HTTPDate(b.now())

	size := 64 + len(date) + len(resp.Body)
	for _, h := range resp.Headers {
		size += len(h.Key) + len(h.Value) + 4
	}
	buf := make([]byte, 0, size)

	// Status line
	buf = append(buf, "HTTP/1.1 "...)
	buf = strconv.AppendInt(buf, int64(resp.Status), 10)
	buf = append(buf, ' ')
	buf = append(buf, resp.Status.Reason()...)
	buf = append(buf, eol...)

	// Headers
	buf = append(buf, "Date: "...)
	buf = append(buf, date...)
	buf = append(buf, eol...)
	for _, h := range resp.Headers {
		buf = append(buf, h.Key...)
		buf = append(buf, ": "...)
		buf = append(buf, h.Value...)
		buf = append(buf, eol...)
	}
	buf = append(buf, "Content-Length: "...)
	length := len(resp.Body)
	if resp.ContentLength > 0 {
		length = resp.ContentLength
	}
	buf = strconv.AppendInt(buf, int64(length), 10)
	buf = append(buf, eol...)

	// Blank line
	buf = append(buf, eol...)

	return append(buf, resp.Body...)
}
