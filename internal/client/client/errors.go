package client

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrAuthRequired       = errors.New("authentication required")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrForbidden          = errors.New("permission denied")
	ErrNotFound           = errors.New("not found")
	ErrPayloadTooLarge    = errors.New("payload too large")
	ErrValidation         = errors.New("validation failed")
	ErrUnavailable        = errors.New("server unavailable")
	ErrMalformedResponse  = errors.New("malformed response")
	ErrUnexpectedStatus   = errors.New("unexpected status")
)

// StatusError is a non-success HTTP response. It unwraps to the sentinel
// matching its status code.
type StatusError struct {
	Method  string
	Path    string
	Code    int
	Message string
	Err     error
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Code, http.StatusText(e.Code))
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

func (e *StatusError) Unwrap() error { return e.Err }

func newStatusError(method, path string, code int, message string) *StatusError {
	se := &StatusError{Method: method, Path: path, Code: code, Message: message}
	switch {
	case code == http.StatusUnauthorized:
		se.Err = ErrAuthRequired
	case code == http.StatusForbidden:
		se.Err = ErrForbidden
	case code == http.StatusNotFound:
		se.Err = ErrNotFound
	case code == http.StatusRequestEntityTooLarge:
		se.Err = ErrPayloadTooLarge
	case code == http.StatusBadGateway, code == http.StatusServiceUnavailable, code == http.StatusGatewayTimeout:
		se.Err = ErrUnavailable
	default:
		se.Err = ErrUnexpectedStatus
	}
	return se
}

// Kind is the user-facing category of an error.
type Kind int

const (
	KindNone Kind = iota
	KindAuthRequired
	KindForbidden
	KindNotFound
	KindPayloadTooLarge
	KindValidation
	KindNetworkOrUnknown
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindAuthRequired:
		return "auth_required"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindPayloadTooLarge:
		return "payload_too_large"
	case KindValidation:
		return "validation"
	default:
		return "network_or_unknown"
	}
}

// KindOf classifies err. Anything not recognized is KindNetworkOrUnknown.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrAuthRequired), errors.Is(err, ErrInvalidCredentials):
		return KindAuthRequired
	case errors.Is(err, ErrForbidden):
		return KindForbidden
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrPayloadTooLarge):
		return KindPayloadTooLarge
	case errors.Is(err, ErrValidation):
		return KindValidation
	default:
		return KindNetworkOrUnknown
	}
}
