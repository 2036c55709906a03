package scrape

import (
	"fmt"
	"net/http"
)

// Kind classifies a pipeline failure for transport status mapping.
type Kind string

const (
	KindInvalidScheme   Kind = "invalid_scheme"
	KindBlockedHost     Kind = "blocked_host"
	KindRobotsDenied    Kind = "robots_denied"
	KindTimeout         Kind = "timeout"
	KindConnection      Kind = "connection"
	KindUpstreamStatus  Kind = "upstream_status"
	KindUnsupportedType Kind = "unsupported_type"
	KindTooLarge        Kind = "too_large"
	KindLoginWall       Kind = "login_wall"
	KindInternal        Kind = "internal"
)

// Error is a classified pipeline failure. Message is safe to return to API
// callers; the wrapped cause is for logs only.
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.cause }

// HTTPStatus maps the failure kind to a response status code.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindInvalidScheme, KindBlockedHost, KindLoginWall:
		return http.StatusBadRequest
	case KindRobotsDenied:
		return http.StatusForbidden
	case KindTooLarge:
		return http.StatusRequestEntityTooLarge
	case KindUnsupportedType:
		return http.StatusUnsupportedMediaType
	case KindConnection, KindUpstreamStatus:
		return http.StatusBadGateway
	case KindTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// errf builds a classified failure with a formatted message.
func errf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// wrapf classifies an underlying error, keeping it for logs via Unwrap.
func wrapf(kind Kind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), cause: cause}
}
