package whippy

import (
	"errors"
	"fmt"
)

type Kind int

const (
	// KindInvalidArgument covers everything rejected before any network I/O.
	KindInvalidArgument Kind = iota
	// KindUpstream is a non-2xx response from the Whippy API.
	KindUpstream
	// KindTransport is a failure to reach the API or to read its reply.
	KindTransport
)

func (k Kind) String() string {
	switch k {
	case KindInvalidArgument:
		return "invalid_argument"
	case KindUpstream:
		return "upstream"
	case KindTransport:
		return "transport"
	default:
		return "unknown"
	}
}

type Error struct {
	Kind       Kind
	StatusCode int // only set for KindUpstream
	Message    string
}

func (e *Error) Error() string { return e.Message }

func InvalidArgument(format string, args ...any) error {
	return &Error{Kind: KindInvalidArgument, Message: fmt.Sprintf(format, args...)}
}

// Upstream keeps the raw response body; error bodies are never parsed.
func Upstream(status int, body string) error {
	return &Error{
		Kind:       KindUpstream,
		StatusCode: status,
		Message:    fmt.Sprintf("HTTP %d: %s", status, body),
	}
}

func Transport(err error) error {
	return &Error{Kind: KindTransport, Message: err.Error()}
}

// KindOf classifies err. Errors that did not come from this package are
// treated as transport failures.
func KindOf(err error) Kind {
	var we *Error
	if errors.As(err, &we) {
		return we.Kind
	}
	return KindTransport
}

// StatusCode returns the upstream HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var we *Error
	if errors.As(err, &we) {
		return we.StatusCode
	}
	return 0
}
