// Package apiclient is the HTTP request layer used by every storefront resource module.
//
// A Client attaches the right bearer token to each call, applies a hard timeout and
// normalizes the outcome: a decoded JSON body on success, a *ClientError on failure.
// Admin requests rejected with 401 clear the stored admin token and publish a
// SessionInvalidated event for the application shell to act on.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	DefaultBaseURL          = "http://localhost:5000/api"
	DefaultTimeout          = 10 * time.Second
	DefaultMaxResponseBytes = 10 << 20

	RequestIDHeader = "X-Request-ID"
)

// ErrorReporter receives problems the client recovers from on its own, such as an
// unreadable credential store. The default reporter logs a warning.
type ErrorReporter func(ctx context.Context, err error)

// Client handles communication with the storefront API
type Client struct {
	baseURL          string
	httpClient       *http.Client
	credentials      CredentialProvider
	timeout          time.Duration
	maxResponseBytes int64
	header           http.Header
	logger           *slog.Logger
	reporter         ErrorReporter

	mu             sync.Mutex
	listeners      map[int]func(SessionInvalidated)
	nextListenerID int
}

type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client (e.g. httptest's server.Client())
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func WithMaxResponseBytes(n int64) Option {
	return func(c *Client) {
		c.maxResponseBytes = n
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func WithErrorReporter(reporter ErrorReporter) Option {
	return func(c *Client) {
		if reporter != nil {
			c.reporter = reporter
		}
	}
}

// WithHeader sets a default header sent with every request
func WithHeader(key, value string) Option {
	return func(c *Client) {
		c.header.Set(key, value)
	}
}

// New creates a client for the API at baseURL. credentials may be nil, in which case no token is ever attached.
func New(baseURL string, credentials CredentialProvider, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if credentials == nil {
		credentials = anonymous{}
	}

	c := &Client{
		baseURL:          strings.TrimRight(baseURL, "/"),
		httpClient:       &http.Client{},
		credentials:      credentials,
		timeout:          DefaultTimeout,
		maxResponseBytes: DefaultMaxResponseBytes,
		header:           http.Header{"Content-Type": []string{"application/json"}},
		logger:           slog.New(slog.DiscardHandler),
		listeners:        make(map[int]func(SessionInvalidated)),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.reporter == nil {
		c.reporter = func(ctx context.Context, err error) {
			c.logger.WarnContext(ctx, "credential store problem, continuing without token", slog.String("error", err.Error()))
		}
	}
	return c
}

// BaseURL returns the API base URL without a trailing slash
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) reportError(ctx context.Context, err error) {
	c.reporter(ctx, err)
}

// Do executes req and decodes a successful JSON response into out (out may be nil).
//
// Errors are *ClientError values. Caller cancellation is a network error wrapping context.Canceled.
func (c *Client) Do(ctx context.Context, req Request, out any) error {
	endpoint := req.endpoint()

	body, kind, err := encodeBody(req.Body)
	if err != nil {
		return newInternalError(endpoint, err, "encoding request body")
	}

	timeout := c.timeout
	if req.Timeout > 0 {
		timeout = req.Timeout
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	httpReq, err := http.NewRequestWithContext(callCtx, method, c.baseURL+endpoint, body)
	if err != nil {
		return newInternalError(endpoint, err, "creating request")
	}
	httpReq.Header = c.buildHeader(ctx, req, endpoint, kind)
	if kind == bodyMultipart {
		httpReq.Header.Set("Content-Type", req.Body.(*Multipart).ContentType())
	}

	start := time.Now()
	res, err := c.httpClient.Do(httpReq)
	if err != nil {
		return c.transportError(ctx, callCtx, endpoint, err)
	}
	defer res.Body.Close()

	c.logger.DebugContext(ctx, "api request",
		slog.String("method", method),
		slog.String("endpoint", endpoint),
		slog.Int("status", res.StatusCode),
		slog.Duration("duration", time.Since(start)),
		slog.String("request_id", httpReq.Header.Get(RequestIDHeader)),
	)

	if res.StatusCode == http.StatusUnauthorized && isAdminEndpoint(req.Path) {
		_, _ = io.Copy(io.Discard, io.LimitReader(res.Body, 4096))
		c.invalidateSession(ctx, endpoint)
		return newSessionInvalidatedError(endpoint)
	}

	data, err := readAllWithLimit(res.Body, c.maxResponseBytes)
	if err != nil {
		if IsResponseTooLarge(err) {
			return newInternalError(endpoint, err, "reading response body")
		}
		return c.transportError(ctx, callCtx, endpoint, err)
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return newAPIError(endpoint, res, data)
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return newInternalError(endpoint, err, "decoding response body")
	}
	return nil
}

// buildHeader merges the client defaults, the caller's overrides and the bearer token.
// The JSON content type is dropped for multipart and raw bodies.
func (c *Client) buildHeader(ctx context.Context, req Request, endpoint string, kind bodyKind) http.Header {
	h := c.header.Clone()
	for k, v := range req.Header {
		h[http.CanonicalHeaderKey(k)] = append([]string(nil), v...)
	}

	if token := c.resolveToken(ctx, endpoint); token != "" {
		h.Set("Authorization", "Bearer "+token)
	}

	switch kind {
	case bodyMultipart:
		h.Del("Content-Type")
	case bodyRaw:
		if req.Header.Get("Content-Type") == "" || isJSONContentType(h.Get("Content-Type")) {
			h.Del("Content-Type")
		}
	}

	if h.Get(RequestIDHeader) == "" {
		h.Set(RequestIDHeader, uuid.NewString())
	}
	return h
}

func isJSONContentType(ct string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(ct)), "application/json")
}

// transportError classifies a failure that happened before a complete response was read
func (c *Client) transportError(parent, callCtx context.Context, endpoint string, err error) error {
	if errors.Is(parent.Err(), context.Canceled) {
		return &ClientError{Kind: KindNetwork, Message: "Request cancelled", Endpoint: endpoint, Err: parent.Err()}
	}

	if errors.Is(callCtx.Err(), context.DeadlineExceeded) {
		return newTimeoutError(endpoint, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return newTimeoutError(endpoint, err)
	}

	return newConnectionError(endpoint, err)
}

func (c *Client) invalidateSession(ctx context.Context, endpoint string) {
	if err := c.credentials.ClearAdminToken(); err != nil {
		c.reportError(ctx, err)
	}

	c.logger.WarnContext(ctx, "admin session rejected, admin token cleared", slog.String("endpoint", endpoint))

	c.publish(SessionInvalidated{
		Endpoint:   endpoint,
		RedirectTo: AdminLoginLocation,
		At:         time.Now(),
	})
}
