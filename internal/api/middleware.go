/**
 * @description
 * This file contains the custom middleware for the HTTP router: structured
 * request logging and panic recovery into the error envelope.
 */
package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/chrystalio/budget-buddy-api/internal/domain"
)

// RequestLogger logs one line per request with the chi request id.
func RequestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			logger.InfoContext(r.Context(), "http request",
				"request_id", middleware.GetReqID(r.Context()),
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"remote_addr", r.RemoteAddr,
				"duration", time.Since(start),
			)
		})
	}
}

// Recoverer turns a handler panic into an INTERNAL_SERVER_ERROR envelope.
func Recoverer(responder *ErrorResponder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				cause := fmt.Errorf("panic: %v\n%s", rec, debug.Stack())
				responder.Respond(w, r, domain.NewInternalError("", cause))
			}()
			next.ServeHTTP(w, r)
		})
	}
}
