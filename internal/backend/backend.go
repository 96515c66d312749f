// Package backend is the HTTP client for the summarization service's
// POST /api/process contract.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/smartoverview/internal/summary"
)

// ProcessPath is appended to the configured base URL.
const ProcessPath = "/api/process"

// maxErrorBody bounds how much of a failed response is kept for diagnostics.
const maxErrorBody = 4 << 10

// StatusError reports a non-2xx response from the service.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string { return fmt.Sprintf("backend error: %d", e.Code) }

// ErrEmptyBaseURL is returned when no base URL was resolved.
var ErrEmptyBaseURL = errors.New("backend base url is empty")

// Client issues one request per Process call. It never retries.
type Client struct {
	HTTPClient *http.Client
	UserAgent  string
	// Timeout bounds a single call when the context has no earlier deadline.
	Timeout time.Duration
}

func (c *Client) httpClient() *http.Client {
	if c != nil && c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

// Endpoint joins baseURL and ProcessPath without doubling the slash.
func Endpoint(baseURL string) string {
	return strings.TrimRight(baseURL, "/") + ProcessPath
}

// Process posts req to {baseURL}/api/process and decodes the result.
func (c *Client) Process(ctx context.Context, baseURL string, req summary.Request) (summary.Result, error) {
	if strings.TrimSpace(baseURL) == "" {
		return summary.Result{}, ErrEmptyBaseURL
	}
	if c != nil && c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}
	body, err := json.Marshal(req)
	if err != nil {
		return summary.Result{}, fmt.Errorf("encode request: %w", err)
	}
	endpoint := Endpoint(baseURL)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return summary.Result{}, fmt.Errorf("new request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if c != nil && c.UserAgent != "" {
		httpReq.Header.Set("User-Agent", c.UserAgent)
	}

	start := time.Now()
	resp, err := c.httpClient().Do(httpReq)
	if err != nil {
		return summary.Result{}, fmt.Errorf("backend request: %w", err)
	}
	defer resp.Body.Close()
	log.Debug().Str("endpoint", endpoint).Int("status", resp.StatusCode).Dur("elapsed", time.Since(start)).Bool("force_refresh", req.ForceRefresh).Msg("backend call")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return summary.Result{}, &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}
	var out summary.Result
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return summary.Result{}, fmt.Errorf("decode response: %w", err)
	}
	return out.Normalize(), nil
}
