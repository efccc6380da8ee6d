package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chrystalio/budget-buddy-api/internal/domain"
	"github.com/chrystalio/budget-buddy-api/pkg/notionclient"
)

func TestTranslate(t *testing.T) {
	upstream := func(code notionclient.ErrorCode) error {
		return &notionclient.Error{Status: 400, Code: code, Message: "upstream"}
	}

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantMsg    string
	}{
		{
			name:       "timeout",
			err:        domain.NewExternalAPIError("Failed to fetch categories from Notion", upstream(notionclient.CodeRequestTimeout)),
			wantStatus: http.StatusGatewayTimeout, wantCode: "TIMEOUT", wantMsg: "Notion API request timed out",
		},
		{
			name:       "unparseable upstream response",
			err:        domain.NewExternalAPIError("x", upstream(notionclient.CodeResponseError)),
			wantStatus: http.StatusBadGateway, wantCode: "API_ERROR", wantMsg: "Notion API returned an error",
		},
		{
			name:       "bare upstream not found",
			err:        upstream(notionclient.CodeObjectNotFound),
			wantStatus: http.StatusNotFound, wantCode: "NOT_FOUND", wantMsg: "The requested resource was not found in Notion",
		},
		{
			name:       "restricted",
			err:        fmt.Errorf("wrapped: %w", upstream(notionclient.CodeRestrictedResource)),
			wantStatus: http.StatusForbidden, wantCode: "FORBIDDEN", wantMsg: "Access to this Notion resource is restricted",
		},
		{
			name:       "application not found wins over upstream code",
			err:        domain.NewNotFoundError("Category not found"),
			wantStatus: http.StatusNotFound, wantCode: "NOT_FOUND", wantMsg: "Category not found",
		},
		{
			name:       "invalid request keeps its own contract",
			err:        domain.NewInvalidRequestError("Invalid category ID", upstream(notionclient.CodeValidation)),
			wantStatus: http.StatusBadRequest, wantCode: "INVALID_REQUEST", wantMsg: "Invalid category ID",
		},
		{
			name:       "external error with unmapped code",
			err:        domain.NewExternalAPIError("Failed to create category in Notion", upstream(notionclient.CodeConflict)),
			wantStatus: http.StatusInternalServerError, wantCode: "EXTERNAL_API_ERROR", wantMsg: "Failed to create category in Notion",
		},
		{
			name:       "unrecognized",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError, wantCode: "INTERNAL_SERVER_ERROR", wantMsg: "An unexpected error occurred",
		},
		{
			name:       "cancelled request",
			err:        context.Canceled,
			wantStatus: http.StatusInternalServerError, wantCode: "INTERNAL_SERVER_ERROR", wantMsg: "An unexpected error occurred",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := Translate(tt.err)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantCode, body.Code)
			assert.Equal(t, tt.wantMsg, body.Message)
			assert.Empty(t, body.Stack)
		})
	}
}

func newRecordingResponder(exposeDetail bool) (*ErrorResponder, *bytes.Buffer) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logs, nil))
	return NewErrorResponder(logger, exposeDetail), &logs
}

func logLines(t *testing.T, logs *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var lines []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(logs.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		lines = append(lines, entry)
	}
	return lines
}

func rateLimitedFetch() error {
	upstream := &notionclient.Error{Status: http.StatusTooManyRequests, Code: notionclient.CodeRateLimited, Message: "RAW-UPSTREAM-DETAIL"}
	return domain.NewExternalAPIError("Failed to fetch categories from Notion", upstream)
}

func TestErrorResponder_ProductionHidesUpstreamDetail(t *testing.T) {
	responder, logs := newRecordingResponder(false)

	rec := httptest.NewRecorder()
	responder.Respond(rec, httptest.NewRequest(http.MethodGet, "/api/v1/categories", nil), rateLimitedFetch())

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	var body ErrorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "EXTERNAL_API_ERROR", body.Error.Code)
	assert.Equal(t, "Failed to fetch categories from Notion", body.Error.Message)
	assert.Empty(t, body.Error.Stack)
	assert.NotContains(t, rec.Body.String(), "RAW-UPSTREAM-DETAIL")

	lines := logLines(t, logs)
	require.Len(t, lines, 1)
	assert.Equal(t, "EXTERNAL_API_ERROR: Failed to fetch categories from Notion", lines[0]["msg"])
	assert.NotContains(t, lines[0], "stack")
	assert.NotContains(t, lines[0], "error")
}

func TestErrorResponder_ProductionHidesTransportDetail(t *testing.T) {
	responder, _ := newRecordingResponder(false)
	transport := fmt.Errorf("http request failed: %w", errors.New(`Post "https://api.notion.com/v1/databases/0123/query": connection refused`))

	rec := httptest.NewRecorder()
	responder.Respond(rec, httptest.NewRequest(http.MethodGet, "/api/v1/categories", nil),
		domain.NewExternalAPIError("Failed to fetch categories from Notion", transport))

	assert.NotContains(t, rec.Body.String(), "api.notion.com")
	assert.NotContains(t, rec.Body.String(), "0123")
}

func TestErrorResponder_DevelopmentExposesDetail(t *testing.T) {
	responder, logs := newRecordingResponder(true)

	rec := httptest.NewRecorder()
	responder.Respond(rec, httptest.NewRequest(http.MethodGet, "/api/v1/categories", nil), rateLimitedFetch())

	var body ErrorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "EXTERNAL_API_ERROR", body.Error.Code)
	assert.True(t, strings.HasPrefix(body.Error.Message, "Failed to fetch categories from Notion: "))
	assert.Contains(t, body.Error.Message, "RAW-UPSTREAM-DETAIL")
	assert.NotEmpty(t, body.Error.Stack)

	lines := logLines(t, logs)
	require.Len(t, lines, 1)
	assert.Equal(t, "request failed", lines[0]["msg"])
	assert.Equal(t, "EXTERNAL_API_ERROR", lines[0]["code"])
	assert.Equal(t, float64(http.StatusInternalServerError), lines[0]["status"])
	assert.NotEmpty(t, lines[0]["stack"])
}

func TestErrorResponder_DevelopmentKeepsMappedMessages(t *testing.T) {
	responder, _ := newRecordingResponder(true)
	err := domain.NewExternalAPIError("Failed to fetch categories from Notion",
		&notionclient.Error{Status: http.StatusUnauthorized, Code: notionclient.CodeUnauthorized, Message: "API token is invalid."})

	rec := httptest.NewRecorder()
	responder.Respond(rec, httptest.NewRequest(http.MethodGet, "/api/v1/categories", nil), err)

	var body ErrorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid Notion API credentials", body.Error.Message)
}
