/**
 * @description
 * This file implements the single place where failures become HTTP
 * responses. Every handler hands its error to ErrorResponder, which picks a
 * status and code, logs the failure and writes the error envelope.
 */
package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/chrystalio/budget-buddy-api/internal/domain"
	"github.com/chrystalio/budget-buddy-api/pkg/notionclient"
)

// ErrorBody is the error member of the failure envelope.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Stack   string `json:"stack,omitempty"`
}

// ErrorEnvelope is the body of every failed request.
type ErrorEnvelope struct {
	Success bool      `json:"success"`
	Error   ErrorBody `json:"error"`
}

type upstreamMapping struct {
	status  int
	code    string
	message string
}

// upstreamErrors maps Notion error codes onto the public error contract.
var upstreamErrors = map[notionclient.ErrorCode]upstreamMapping{
	notionclient.CodeRequestTimeout:     {http.StatusGatewayTimeout, domain.CodeTimeout, "Notion API request timed out"},
	notionclient.CodeResponseError:      {http.StatusBadGateway, domain.CodeAPIError, "Notion API returned an error"},
	notionclient.CodeObjectNotFound:     {http.StatusNotFound, domain.CodeNotFound, "The requested resource was not found in Notion"},
	notionclient.CodeUnauthorized:       {http.StatusUnauthorized, domain.CodeUnauthorized, "Invalid Notion API credentials"},
	notionclient.CodeRestrictedResource: {http.StatusForbidden, domain.CodeForbidden, "Access to this Notion resource is restricted"},
}

// ErrorResponder writes error envelopes. With exposeDetail set, responses
// carry the upstream cause and a stack trace and the log line carries full
// detail; otherwise the body holds only code and fixed message, and one
// summary line is logged.
type ErrorResponder struct {
	logger       *slog.Logger
	exposeDetail bool
}

// NewErrorResponder creates a responder.
func NewErrorResponder(logger *slog.Logger, exposeDetail bool) *ErrorResponder {
	return &ErrorResponder{logger: logger, exposeDetail: exposeDetail}
}

// Translate resolves err to a status and public error body, without stack.
// The body never carries upstream error text.
//
// An application error of a specific kind (validation, not found, auth) is
// used as attached. Otherwise a recognized upstream code decides, then any
// application error, and anything else is an internal error.
func Translate(err error) (int, ErrorBody) {
	appErr, isApp := domain.AsError(err)
	if isApp && appErr.Kind != domain.KindExternalAPI && appErr.Kind != domain.KindInternal {
		return appErr.Status, ErrorBody{Code: appErr.Code, Message: appErr.Message}
	}

	if code, ok := notionclient.CodeOf(err); ok {
		if m, known := upstreamErrors[code]; known {
			return m.status, ErrorBody{Code: m.code, Message: m.message}
		}
	}

	if isApp {
		return appErr.Status, ErrorBody{Code: appErr.Code, Message: appErr.Message}
	}
	return http.StatusInternalServerError, ErrorBody{Code: domain.CodeInternal, Message: "An unexpected error occurred"}
}

// Respond translates err, logs it and writes the envelope.
func (e *ErrorResponder) Respond(w http.ResponseWriter, r *http.Request, err error) {
	status, body := Translate(err)

	if e.exposeDetail {
		body.Message = detailedMessage(err, body)
		body.Stack = stackOf(err)
		e.logger.ErrorContext(r.Context(), "request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"code", body.Code,
			"message", body.Message,
			"error", err,
			"stack", body.Stack,
		)
	} else {
		e.logger.ErrorContext(r.Context(), body.Code+": "+body.Message, "status", status, "path", r.URL.Path)
	}

	respondWithJSON(w, status, ErrorEnvelope{Success: false, Error: body})
}

// detailedMessage appends the upstream cause to the message of an external
// API error. Messages replaced by the upstream mapping table are left alone.
func detailedMessage(err error, body ErrorBody) string {
	appErr, ok := domain.AsError(err)
	if !ok || appErr.Kind != domain.KindExternalAPI || appErr.Err == nil || appErr.Code != body.Code {
		return body.Message
	}
	return appErr.Error()
}

func stackOf(err error) string {
	var appErr *domain.Error
	if errors.As(err, &appErr) {
		if stack := appErr.Stack(); stack != "" {
			return appErr.Error() + "\n" + stack
		}
	}
	return err.Error()
}
