package integrations

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Sohailsaifi/CodeFlow/pkg/cache"
	errs "github.com/Sohailsaifi/CodeFlow/pkg/errors"
	"github.com/Sohailsaifi/CodeFlow/pkg/observability"
)

// DefaultBaseURL is where the analysis backend listens by default.
const DefaultBaseURL = "http://localhost:8000"

const (
	defaultTimeout = 30 * time.Second
	maxErrorBody   = 512
)

// Client provides shared HTTP functionality for the collaborator clients.
type Client struct {
	http    *http.Client
	base    *url.URL
	headers map[string]string
	backoff cache.Backoff

	cache cache.Cache
	keyer cache.Keyer
	ttl   time.Duration
}

// Option configures a [Client].
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout sets the per-request timeout. Zero keeps the default.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithHeaders adds headers sent with every request.
func WithHeaders(h map[string]string) Option {
	return func(c *Client) {
		for k, v := range h {
			c.headers[k] = v
		}
	}
}

// WithBackoff sets the retry policy for transient failures.
func WithBackoff(b cache.Backoff) Option {
	return func(c *Client) { c.backoff = b }
}

// WithResultCache caches successful responses that are a pure function of
// the request payload, so sending identical content twice skips the
// collaborator.
func WithResultCache(c cache.Cache, keyer cache.Keyer, ttl time.Duration) Option {
	return func(cl *Client) {
		if c != nil {
			cl.cache, cl.ttl = c, ttl
		}
		if keyer != nil {
			cl.keyer = keyer
		}
	}
}

// NewClient creates a Client for the collaborator at baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if err := errs.ValidateURL(baseURL); err != nil {
		return nil, err
	}
	base, err := url.Parse(strings.TrimRight(baseURL, "/") + "/")
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "invalid base URL %q", baseURL)
	}
	c := &Client{
		http:    &http.Client{Timeout: defaultTimeout},
		base:    base,
		headers: map[string]string{},
		backoff: cache.DefaultBackoff,
		cache:   cache.NewNullCache(),
		keyer:   cache.NewDefaultKeyer(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the collaborator root, with a trailing slash.
func (c *Client) BaseURL() string { return c.base.String() }

// endpoint resolves a relative path against the base URL.
func (c *Client) endpoint(path string) string {
	return c.base.ResolveReference(&url.URL{Path: strings.TrimLeft(path, "/")}).String()
}

// request describes one call. The body is held in memory so retries can
// resend it.
type request struct {
	method      string
	path        string
	body        []byte
	contentType string
	accept      string
}

// do sends r with retries and returns the body of a 2xx response.
func (c *Client) do(ctx context.Context, r request) ([]byte, error) {
	var out []byte
	err := c.backoff.Retry(ctx, func() error {
		data, err := c.once(ctx, r)
		if err != nil {
			return err
		}
		out = data
		return nil
	})
	return out, err
}

func (c *Client) once(ctx context.Context, r request) ([]byte, error) {
	target := c.endpoint(r.path)
	var body io.Reader
	if r.body != nil {
		body = bytes.NewReader(r.body)
	}
	req, err := http.NewRequestWithContext(ctx, r.method, target, body)
	if err != nil {
		return nil, err
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}
	if r.accept != "" {
		req.Header.Set("Accept", r.accept)
	}

	hooks := observability.HTTP()
	host, path := req.URL.Host, req.URL.Path
	hooks.OnRequest(ctx, r.method, host, path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, r.method, host, path, err)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, cache.Retryable(fmt.Errorf("%w: %v", cache.ErrNetwork, err))
	}
	defer resp.Body.Close()
	hooks.OnResponse(ctx, r.method, host, path, resp.StatusCode, time.Since(start))

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, cache.Retryable(fmt.Errorf("%w: read body: %v", cache.ErrNetwork, err))
	}
	if err := checkStatus(resp.StatusCode, data); err != nil {
		return nil, err
	}
	return data, nil
}

func checkStatus(code int, body []byte) error {
	if code >= 200 && code < 300 {
		return nil
	}
	se := &errs.StatusError{StatusCode: code, Body: strings.TrimSpace(truncate(string(body), maxErrorBody))}
	switch {
	case code == http.StatusNotFound:
		return fmt.Errorf("%w: %w", cache.ErrNotFound, se)
	case code >= 500:
		return cache.Retryable(fmt.Errorf("%w: %w", cache.ErrNetwork, se))
	default:
		return se
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
