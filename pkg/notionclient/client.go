/**
 * @description
 * This package provides a client for interacting with the Notion REST API.
 * It encapsulates authenticated HTTP requests against the database and page
 * endpoints the budget API proxies onto.
 *
 * Key features:
 * - Holds the API base URL, integration secret and pinned Notion-Version.
 * - Provides one method per upstream operation (query, retrieve, create, update).
 * - Decodes Notion error bodies into *Error so callers can classify failures.
 *
 * @dependencies
 * - bytes, context, encoding/json, net/http, log/slog: Standard Go libraries.
 */
package notionclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	// DefaultBaseURL is the public Notion API endpoint.
	DefaultBaseURL = "https://api.notion.com"
	// DefaultVersion is the Notion-Version header sent with every request.
	DefaultVersion = "2022-06-28"
	// DefaultTimeout matches the official SDK's request timeout.
	DefaultTimeout = 60 * time.Second
)

// Client is a client for the Notion API.
type Client struct {
	baseURL    string
	apiKey     string
	version    string
	httpClient *http.Client
	logger     *slog.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithVersion overrides the Notion-Version header.
func WithVersion(version string) Option {
	return func(c *Client) {
		if version != "" {
			c.version = version
		}
	}
}

// WithTimeout overrides the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient creates a new Notion API client. It is safe for concurrent use
// and meant to be constructed once and shared.
func NewClient(baseURL, apiKey string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		version: DefaultVersion,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// QueryDatabase runs a filtered query against a database and returns one page of results.
func (c *Client) QueryDatabase(ctx context.Context, databaseID string, req QueryRequest) (*QueryResponse, error) {
	var resp QueryResponse
	endpoint := fmt.Sprintf("%s/v1/databases/%s/query", c.baseURL, url.PathEscape(databaseID))
	if err := c.do(ctx, http.MethodPost, endpoint, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// RetrieveDatabase fetches database metadata.
func (c *Client) RetrieveDatabase(ctx context.Context, databaseID string) (*Database, error) {
	var resp Database
	endpoint := fmt.Sprintf("%s/v1/databases/%s", c.baseURL, url.PathEscape(databaseID))
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// RetrievePage fetches a single page by id.
func (c *Client) RetrievePage(ctx context.Context, pageID string) (*Page, error) {
	var resp Page
	endpoint := fmt.Sprintf("%s/v1/pages/%s", c.baseURL, url.PathEscape(pageID))
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CreatePage creates a page with the given typed property values.
func (c *Client) CreatePage(ctx context.Context, req CreatePageRequest) (*Page, error) {
	var resp Page
	endpoint := fmt.Sprintf("%s/v1/pages", c.baseURL)
	if err := c.do(ctx, http.MethodPost, endpoint, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UpdatePage updates property values of a page, or archives it.
func (c *Client) UpdatePage(ctx context.Context, pageID string, req UpdatePageRequest) (*Page, error) {
	var resp Page
	endpoint := fmt.Sprintf("%s/v1/pages/%s", c.baseURL, url.PathEscape(pageID))
	if err := c.do(ctx, http.MethodPatch, endpoint, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// do is a helper function to make HTTP requests to the Notion API.
func (c *Client) do(ctx context.Context, method, endpoint string, body, target interface{}) error {
	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create http request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Notion-Version", c.version)

	c.logger.Debug("notion request", "method", method, "url", endpoint)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return &Error{Code: CodeRequestTimeout, Message: "request to Notion timed out", cause: err}
		}
		return fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		if isTimeout(err) {
			return &Error{Status: resp.StatusCode, Code: CodeRequestTimeout, Message: "reading Notion response timed out", cause: err}
		}
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Debug("notion returned non-success status", "status", resp.StatusCode, "url", endpoint)
		return decodeError(resp.StatusCode, respBody)
	}

	if target != nil {
		if err := json.Unmarshal(respBody, target); err != nil {
			return &Error{Status: resp.StatusCode, Code: CodeResponseError, Message: "failed to decode Notion response", cause: err}
		}
	}

	return nil
}

func decodeError(status int, body []byte) error {
	var apiErr Error
	if err := json.Unmarshal(body, &apiErr); err != nil || apiErr.Code == "" {
		msg := http.StatusText(status)
		if len(body) > 0 && len(body) <= 512 {
			msg = string(body)
		}
		return &Error{Status: status, Code: CodeResponseError, Message: msg}
	}
	if apiErr.Status == 0 {
		apiErr.Status = status
	}
	return &apiErr
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
