package notionclient

import (
	"errors"
	"fmt"
)

// ErrorCode is the machine-readable code of a failed Notion call.
type ErrorCode string

// Codes reported by the Notion API.
const (
	CodeObjectNotFound     ErrorCode = "object_not_found"
	CodeUnauthorized       ErrorCode = "unauthorized"
	CodeRestrictedResource ErrorCode = "restricted_resource"
	CodeValidation         ErrorCode = "validation_error"
	CodeInvalidRequestURL  ErrorCode = "invalid_request_url"
	CodeInvalidRequest     ErrorCode = "invalid_request"
	CodeInvalidJSON        ErrorCode = "invalid_json"
	CodeConflict           ErrorCode = "conflict_error"
	CodeRateLimited        ErrorCode = "rate_limited"
	CodeInternalServer     ErrorCode = "internal_server_error"
	CodeServiceUnavailable ErrorCode = "service_unavailable"
)

// Codes produced by the client itself when no Notion error body is available.
const (
	CodeRequestTimeout ErrorCode = "request_timeout"
	CodeResponseError  ErrorCode = "response_error"
)

// Error is a failed Notion call.
type Error struct {
	Status  int       `json:"status"`
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	cause   error
}

func (e *Error) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("notion API error: status %d, code %s: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("notion API error: code %s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// IsCode reports whether err carries a Notion error with the given code.
func IsCode(err error, code ErrorCode) bool {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Code == code
	}
	return false
}

// CodeOf returns the Notion error code carried by err, if any.
func CodeOf(err error) (ErrorCode, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Code, true
	}
	return "", false
}
