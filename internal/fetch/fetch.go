package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// DefaultUserAgent identifies page fetches made by the CLI.
const DefaultUserAgent = "smartoverview/1.0 (+https://github.com/hyperifyio/smartoverview)"

// maxBodyBytes caps a single lecture page download.
const maxBodyBytes = 16 << 20

// Client downloads lecture pages. It bounds each request with a timeout,
// retries transient failures a limited number of times, caps redirects, and
// only accepts HTML responses.
type Client struct {
	HTTPClient *http.Client
	UserAgent  string
	// Cookie is sent verbatim, letting a logged-in session cookie reach the
	// course player.
	Cookie string
	// MaxAttempts includes the initial attempt. Minimum 1.
	MaxAttempts int
	// PerRequestTimeout bounds each attempt.
	PerRequestTimeout time.Duration
	// RedirectMaxHops caps redirect following. Zero means 5.
	RedirectMaxHops int
	// MaxConcurrent limits in-flight requests per client. Zero means unlimited.
	MaxConcurrent int

	limiter     chan struct{}
	limiterOnce sync.Once
}

// ErrServer marks a 5xx response; it is the only status class retried.
var ErrServer = errors.New("server error")

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		base := *c.HTTPClient
		base.CheckRedirect = c.checkRedirect()
		return &base
	}
	return &http.Client{Timeout: c.PerRequestTimeout, CheckRedirect: c.checkRedirect()}
}

// Get fetches rawURL and returns the body and its content type.
func (c *Client) Get(ctx context.Context, rawURL string) ([]byte, string, error) {
	attempts := c.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}
	var lastErr error
	for i := 0; i < attempts; i++ {
		body, ct, err := c.tryOnce(ctx, rawURL)
		if err == nil {
			return body, ct, nil
		}
		lastErr = err
		if !isTransient(err) || i == attempts-1 {
			break
		}
		backoff := time.Duration(i+1) * 200 * time.Millisecond
		log.Debug().Err(err).Str("url", rawURL).Dur("backoff", backoff).Msg("page fetch failed; retrying")
		select {
		case <-ctx.Done():
			return nil, "", ctx.Err()
		case <-time.After(backoff):
		}
	}
	return nil, "", lastErr
}

func (c *Client) tryOnce(ctx context.Context, rawURL string) ([]byte, string, error) {
	c.acquire()
	defer c.release()

	if c.PerRequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.PerRequestTimeout)
		defer cancel()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("new request: %w", err)
	}
	if !isHTTPScheme(req.URL) {
		return nil, "", fmt.Errorf("unsupported URL scheme: %q", req.URL.Scheme)
	}
	ua := c.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}
	req.Header.Set("User-Agent", ua)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	if c.Cookie != "" {
		req.Header.Set("Cookie", c.Cookie)
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return nil, "", fmt.Errorf("%w: %d", ErrServer, resp.StatusCode)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, "", fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}
	ct := resp.Header.Get("Content-Type")
	if !isHTMLContentType(ct) {
		return nil, "", fmt.Errorf("unsupported content type: %s", ct)
	}
	b, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, "", fmt.Errorf("read body: %w", err)
	}
	return b, ct, nil
}

func isTransient(err error) bool {
	return errors.Is(err, ErrServer) || errors.Is(err, context.DeadlineExceeded)
}

func (c *Client) checkRedirect() func(req *http.Request, via []*http.Request) error {
	max := c.RedirectMaxHops
	if max <= 0 {
		max = 5
	}
	return func(req *http.Request, via []*http.Request) error {
		if len(via) >= max {
			return errors.New("too many redirects")
		}
		if !isHTTPScheme(req.URL) {
			return errors.New("redirect to unsupported scheme")
		}
		return nil
	}
}

func isHTTPScheme(u *url.URL) bool {
	if u == nil {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	return scheme == "http" || scheme == "https"
}

func isHTMLContentType(ct string) bool {
	ct = strings.ToLower(strings.TrimSpace(ct))
	return strings.HasPrefix(ct, "text/html") || strings.HasPrefix(ct, "application/xhtml+xml")
}

func (c *Client) acquire() {
	if c.MaxConcurrent <= 0 {
		return
	}
	c.limiterOnce.Do(func() {
		c.limiter = make(chan struct{}, c.MaxConcurrent)
	})
	c.limiter <- struct{}{}
}

func (c *Client) release() {
	if c.MaxConcurrent <= 0 || c.limiter == nil {
		return
	}
	select {
	case <-c.limiter:
	default:
	}
}
