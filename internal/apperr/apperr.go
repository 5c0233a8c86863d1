package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error by how it should surface to the caller.
type Kind string

const (
	Validation   Kind = "validation"
	NotFound     Kind = "not_found"
	Gateway      Kind = "gateway"
	Store        Kind = "store"
	Unauthorized Kind = "unauthorized"
	Forbidden    Kind = "forbidden"
)

// Error carries a Kind, a message safe to return to clients and the underlying cause.
type Error struct {
	Kind      Kind
	PublicMsg string
	Err       error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.PublicMsg, e.Err)
	}

	return fmt.Sprintf("%s: %s", e.Kind, e.PublicMsg)
}

func (e *Error) Unwrap() error { return e.Err }

func ValidationErr(msg string) *Error {
	return &Error{Kind: Validation, PublicMsg: msg}
}

func NotFoundErr(msg string, err error) *Error {
	return &Error{Kind: NotFound, PublicMsg: msg, Err: err}
}

func GatewayErr(msg string, err error) *Error {
	return &Error{Kind: Gateway, PublicMsg: msg, Err: err}
}

func StoreErr(msg string, err error) *Error {
	return &Error{Kind: Store, PublicMsg: msg, Err: err}
}

func UnauthorizedErr(msg string) *Error {
	return &Error{Kind: Unauthorized, PublicMsg: msg}
}

func ForbiddenErr(msg string) *Error {
	return &Error{Kind: Forbidden, PublicMsg: msg}
}

func As(err error) (*Error, bool) {
	var ae *Error
	if errors.As(err, &ae) {
		return ae, true
	}

	return nil, false
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	ae, ok := As(err)
	return ok && ae.Kind == kind
}

func HTTPStatus(err error) int {
	ae, ok := As(err)
	if !ok {
		return http.StatusInternalServerError
	}

	switch ae.Kind {
	case Validation:
		return http.StatusBadRequest
	case NotFound:
		return http.StatusNotFound
	case Unauthorized:
		return http.StatusUnauthorized
	case Forbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage returns the client-facing message for err.
func PublicMessage(err error) string {
	if ae, ok := As(err); ok && ae.PublicMsg != "" {
		return ae.PublicMsg
	}

	return "internal error"
}
