package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultBaseURL is the loopback address the agent listens on.
	DefaultBaseURL = "http://127.0.0.1:8741"

	// DefaultTimeout bounds a single request, body read included.
	DefaultTimeout = 30 * time.Second

	// RequestIDHeader carries a per-request correlation id to the agent.
	RequestIDHeader = "X-Request-Id"

	defaultUserAgent = "slovo-desktop"
)

// ErrUnreachable is matched (errors.Is) by every Error: the agent could not
// be reached or did not answer within the timeout.
var ErrUnreachable = errors.New("agent unreachable")

// Error is returned when a request never produced a complete response.
type Error struct {
	Method string
	URL    string
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("transport: %s %s: %v", e.Method, e.URL, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports every transport Error as ErrUnreachable.
func (e *Error) Is(target error) bool { return target == ErrUnreachable }

// Timeout reports whether the request failed because the deadline elapsed.
func (e *Error) Timeout() bool {
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(e.Err, &ne) && ne.Timeout()
}

// Response is a fully read HTTP response. Non-2xx statuses are returned as
// responses; interpreting them is up to the caller.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// OK reports whether the status code is 2xx.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Client performs single-attempt HTTP calls against a fixed base URL.
// Its configuration never changes after New, so one Client may be shared by
// any number of goroutines.
type Client struct {
	baseURL string
	timeout time.Duration
	http    *http.Client
}

// Option configures a Client.
type Option func(*options)

type options struct {
	userAgent string
	base      http.RoundTripper
}

// WithUserAgent sets the User-Agent sent with every request.
func WithUserAgent(ua string) Option {
	return func(o *options) { o.userAgent = ua }
}

// WithRoundTripper replaces the underlying transport. Tests use it to inject
// failures without a network.
func WithRoundTripper(rt http.RoundTripper) Option {
	return func(o *options) { o.base = rt }
}

// New returns a Client for baseURL with the given per-request timeout.
// Empty or non-positive arguments fall back to the defaults.
func New(baseURL string, timeout time.Duration, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	o := options{userAgent: defaultUserAgent}
	for _, opt := range opts {
		opt(&o)
	}
	if o.base == nil {
		o.base = &http.Transport{
			Proxy:               nil, // loopback only, never via a proxy
			DialContext:         (&net.Dialer{Timeout: timeout}).DialContext,
			MaxIdleConnsPerHost: 4,
			IdleConnTimeout:     90 * time.Second,
		}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		http: &http.Client{
			Transport: &headerRoundTripper{base: o.base, userAgent: o.userAgent},
			Timeout:   timeout,
		},
	}
}

// BaseURL returns the address every request path is resolved against.
func (c *Client) BaseURL() string { return c.baseURL }

// Timeout returns the per-request timeout.
func (c *Client) Timeout() time.Duration { return c.timeout }

// Get issues a GET for path.
func (c *Client) Get(ctx context.Context, path string) (*Response, error) {
	return c.do(ctx, http.MethodGet, path, nil)
}

// Post JSON-encodes body and POSTs it to path.
func (c *Client) Post(ctx context.Context, path string, body any) (*Response, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("transport: encode body for %s: %w", path, err)
	}
	return c.do(ctx, http.MethodPost, path, data)
}

func (c *Client) do(ctx context.Context, method, path string, body []byte) (*Response, error) {
	url := c.baseURL + path

	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, rd)
	if err != nil {
		return nil, fmt.Errorf("transport: build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &Error{Method: method, URL: url, Err: err}
	}
	defer resp.Body.Close()

	// The client timeout also covers reading the body.
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Method: method, URL: url, Err: fmt.Errorf("read body: %w", err)}
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       data,
	}, nil
}

// headerRoundTripper stamps identification headers onto every outgoing request.
type headerRoundTripper struct {
	base      http.RoundTripper
	userAgent string
}

func (t *headerRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("User-Agent", t.userAgent)
	if req.Header.Get(RequestIDHeader) == "" {
		req.Header.Set(RequestIDHeader, uuid.NewString())
	}
	return t.base.RoundTrip(req)
}
