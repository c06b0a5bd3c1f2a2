package protocol

import "time"

// DateLayout is the RFC 1123 layout used for the Date header. The zone is
// always written as GMT, so the time must be converted to UTC first.
const DateLayout = "Mon, 02 Jan 2006 15:04:05 GMT"

// Clock returns the current time
type Clock func() time.Time

// HTTPDate formats t as an HTTP Date header value
func HTTPDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}
