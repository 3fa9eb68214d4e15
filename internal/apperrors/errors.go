package apperrors

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Kind is the stable machine-readable classification of a failure.
type Kind string

const (
	KindForbidden    Kind = "FORBIDDEN"
	KindNotFound     Kind = "NOT_FOUND"
	KindInvalidState Kind = "INVALID_STATE"
	KindCycle        Kind = "CYCLE"
	KindConflict     Kind = "CONFLICT"
	KindValidation   Kind = "VALIDATION_ERROR"
	KindInternal     Kind = "INTERNAL_ERROR"
	KindUnauthorized Kind = "UNAUTHORIZED"
)

// Error carries a taxonomy kind plus a human-readable message. Raw storage
// errors are translated into one of these before reaching a caller.
type Error struct {
	Kind    Kind   `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return e.Message
}

// E creates a new taxonomy error.
func E(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Predefined errors
var (
	ErrUnauthorized = E(KindUnauthorized, "Authentication required")
	ErrForbidden    = E(KindForbidden, "Resource not found")
	ErrNotFound     = E(KindNotFound, "Resource not found")
	ErrInvalidInput = E(KindValidation, "Invalid request body")
	ErrInternal     = E(KindInternal, "Internal server error")
)

// IsKind reports whether err is a taxonomy error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// statusFor maps a kind to an HTTP status. Forbidden deliberately maps to 404
// so a denied caller cannot distinguish "exists but not yours" from "does not
// exist".
func statusFor(kind Kind) int {
	switch kind {
	case KindForbidden, KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindCycle, KindValidation:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindInvalidState:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// Respond writes err as a JSON error response. Non-taxonomy errors are
// rendered as an opaque internal error; details never leak.
func Respond(c *gin.Context, err error) {
	var e *Error
	if !errors.As(err, &e) {
		e = ErrInternal
	}
	out := e
	if e.Kind == KindForbidden {
		// Same body as NotFound; the kind is not exposed either.
		out = ErrNotFound
	}
	if e.Kind == KindInvalidState || e.Kind == KindInternal {
		// Hard failures are logged at the call site; callers see a generic body.
		out = ErrInternal
	}
	c.JSON(statusFor(e.Kind), out)
}

// Helper responders kept for handlers that fail before a service is involved.

func Unauthorized(c *gin.Context, message string) {
	if message == "" {
		message = "Authentication required"
	}
	c.JSON(http.StatusUnauthorized, E(KindUnauthorized, message))
}

func BadRequest(c *gin.Context, message string) {
	if message == "" {
		message = "Invalid request"
	}
	c.JSON(http.StatusBadRequest, E(KindValidation, message))
}

func NotFound(c *gin.Context, message string) {
	if message == "" {
		message = "Resource not found"
	}
	c.JSON(http.StatusNotFound, E(KindNotFound, message))
}
