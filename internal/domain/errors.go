package domain

import (
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"strings"
)

// ErrorKind classifies an Error. The set is closed.
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindValidation
	KindNotFound
	KindExternalAPI
	KindUnauthorized
	KindForbidden
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindExternalAPI:
		return "external_api"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	default:
		return "internal"
	}
}

// Local error codes sent to API clients.
const (
	CodeValidation     = "VALIDATION_ERROR"
	CodeInvalidRequest = "INVALID_REQUEST"
	CodeNotFound       = "NOT_FOUND"
	CodeExternalAPI    = "EXTERNAL_API_ERROR"
	CodeUnauthorized   = "UNAUTHORIZED"
	CodeForbidden      = "FORBIDDEN"
	CodeTimeout        = "TIMEOUT"
	CodeAPIError       = "API_ERROR"
	CodeInternal       = "INTERNAL_SERVER_ERROR"
)

// Error is the application error carried from repositories to the HTTP layer.
type Error struct {
	Kind    ErrorKind
	Status  int
	Code    string
	Message string
	Err     error
	stack   []uintptr
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Stack renders the call stack captured when the error was constructed.
func (e *Error) Stack() string {
	if len(e.stack) == 0 {
		return ""
	}
	frames := runtime.CallersFrames(e.stack)
	var b strings.Builder
	for {
		frame, more := frames.Next()
		fmt.Fprintf(&b, "%s\n\t%s:%d\n", frame.Function, frame.File, frame.Line)
		if !more {
			break
		}
	}
	return b.String()
}

func newError(kind ErrorKind, status int, code, message string, cause error) *Error {
	pcs := make([]uintptr, 32)
	n := runtime.Callers(3, pcs)
	return &Error{
		Kind:    kind,
		Status:  status,
		Code:    code,
		Message: message,
		Err:     cause,
		stack:   pcs[:n],
	}
}

// NewValidationError reports caller-supplied data that failed validation.
func NewValidationError(message string) *Error {
	return newError(KindValidation, http.StatusBadRequest, CodeValidation, message, nil)
}

// NewInvalidRequestError reports a request the upstream rejected as malformed,
// such as an identifier with the wrong shape.
func NewInvalidRequestError(message string, cause error) *Error {
	return newError(KindValidation, http.StatusBadRequest, CodeInvalidRequest, message, cause)
}

// NewNotFoundError reports a missing entity or route.
func NewNotFoundError(message string) *Error {
	if message == "" {
		message = "Resource not found"
	}
	return newError(KindNotFound, http.StatusNotFound, CodeNotFound, message, nil)
}

// NewExternalAPIError wraps an upstream failure. The HTTP layer may refine
// the status from the upstream cause (502 or 504).
func NewExternalAPIError(message string, cause error) *Error {
	return newError(KindExternalAPI, http.StatusInternalServerError, CodeExternalAPI, message, cause)
}

// NewUnauthorizedError reports rejected credentials.
func NewUnauthorizedError(message string) *Error {
	return newError(KindUnauthorized, http.StatusUnauthorized, CodeUnauthorized, message, nil)
}

// NewForbiddenError reports a resource the credentials may not access.
func NewForbiddenError(message string) *Error {
	return newError(KindForbidden, http.StatusForbidden, CodeForbidden, message, nil)
}

// NewInternalError is the catch-all.
func NewInternalError(message string, cause error) *Error {
	if message == "" {
		message = "An unexpected error occurred"
	}
	return newError(KindInternal, http.StatusInternalServerError, CodeInternal, message, cause)
}

// AsError returns the first *Error in err's chain.
func AsError(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsKind reports whether err carries an *Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	appErr, ok := AsError(err)
	return ok && appErr.Kind == kind
}
