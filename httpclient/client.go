package httpclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/net/http2"
)

// maxDrainBytes bounds how much of a leftover body is read so the connection
// can be reused.
const maxDrainBytes = 64 << 10

// Client is an HTTP client handle owning one transport and its connection pool.
// It is safe for concurrent use.
type Client struct {
	httpClient *http.Client
	config     Config
}

// Option configures a Client.
type Option func(*Client)

// WithTransport replaces the transport built from Config.
// TLS, keep-alive and HTTP/2 settings are then up to rt.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) {
		c.httpClient.Transport = rt
	}
}

// New creates a new client handle. No connection is opened until the first
// request.
func New(cfg Config, opts ...Option) (*Client, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	transport, err := buildTransport(cfg)
	if err != nil {
		return nil, err
	}

	c := &Client{
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   cfg.Timeout,
		},
		config: cfg,
	}

	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func buildTransport(cfg Config) (*http.Transport, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.MaxIdleConnsPerHost = cfg.MaxIdleConnsPerHost
	transport.DisableKeepAlives = cfg.DisableKeepAlives

	tlsCfg, err := cfg.TLS.Build()
	if err != nil {
		return nil, err
	}
	if tlsCfg != nil {
		transport.TLSClientConfig = tlsCfg
	}

	if cfg.ForceHTTP2 {
		// Hand h2 to x/net instead of the bundled implementation.
		transport.ForceAttemptHTTP2 = false
		transport.TLSNextProto = nil
		if err := http2.ConfigureTransport(transport); err != nil {
			return nil, fmt.Errorf("httpclient: configure http2: %w", err)
		}
	}
	return transport, nil
}

// Do executes a request, buffers the complete body and releases the
// connection before returning. A non-2xx status yields both the Response and
// an *Error.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	resp, err := c.Send(ctx, req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, ClassifyTransportError(ctx, fmt.Errorf("read response body: %w", err))
	}

	result := &Response{
		StatusCode: resp.StatusCode,
		Headers:    flattenHeaders(resp.Header),
		Body:       body,
	}
	if classErr := ClassifyStatusCode(resp.StatusCode, body); classErr != nil {
		return result, classErr
	}
	return result, nil
}

// Send executes a request and returns as soon as the response headers have
// arrived. The status is not checked and the caller must close the body.
func (c *Client) Send(ctx context.Context, req Request) (*http.Response, error) {
	httpReq, err := c.buildRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, ClassifyTransportError(ctx, err)
	}
	return resp, nil
}

// DoStream executes a request, checks for a 2xx status and returns the live
// body. On a non-2xx status the body is drained and closed before the error
// is returned. The caller must close the returned StreamResponse.
func (c *Client) DoStream(ctx context.Context, req Request) (*StreamResponse, error) {
	resp, err := c.Send(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := CheckStatus(resp); err != nil {
		_ = Release(resp.Body)
		return nil, err
	}
	return &StreamResponse{
		StatusCode: resp.StatusCode,
		Headers:    flattenHeaders(resp.Header),
		Body:       resp.Body,
	}, nil
}

// CheckStatus returns an *Error unless resp has a 2xx status. It does not
// touch the body.
func CheckStatus(resp *http.Response) error {
	if classErr := ClassifyStatusCode(resp.StatusCode, nil); classErr != nil {
		return classErr
	}
	return nil
}

// URL resolves path against the configured BaseURL.
func (c *Client) URL(path string) string {
	if c.config.BaseURL == "" || strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return strings.TrimRight(c.config.BaseURL, "/") + "/" + strings.TrimLeft(path, "/")
}

// Config returns the client's effective configuration.
func (c *Client) Config() Config {
	return c.config
}

// Name returns the handle name (implements provider.Provider).
func (c *Client) Name() string {
	return c.config.Name
}

// IsAvailable reports whether the handle can serve requests (implements provider.Provider).
func (c *Client) IsAvailable(_ context.Context) bool {
	return c.httpClient != nil
}

// Close releases idle pooled connections (implements provider.Closeable).
func (c *Client) Close(_ context.Context) error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// buildRequest constructs an *http.Request from the client config and request.
func (c *Client) buildRequest(ctx context.Context, req Request) (*http.Request, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.URL(req.Path), nil)
	if err != nil {
		return nil, NewInvalidRequestError(fmt.Errorf("create request: %w", err))
	}

	if len(req.Query) > 0 {
		q := httpReq.URL.Query()
		for k, v := range req.Query {
			q.Set(k, v)
		}
		httpReq.URL.RawQuery = q.Encode()
	}

	for k, v := range c.config.Headers {
		httpReq.Header.Set(k, v)
	}
	if c.config.UserAgent != "" {
		httpReq.Header.Set("User-Agent", c.config.UserAgent)
	}
	// Request-specific headers override defaults.
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	return httpReq, nil
}

// Release reads up to maxDrainBytes of what is left in body and closes it.
// A body read to EOF hands its connection back to the transport's idle pool;
// closing a chunked body before its terminating chunk discards the connection.
func Release(body io.ReadCloser) error {
	if body == nil {
		return nil
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(body, maxDrainBytes))
	return body.Close()
}

// flattenHeaders converts multi-value headers to single-value.
func flattenHeaders(h http.Header) map[string]string {
	result := make(map[string]string, len(h))
	for k, v := range h {
		if len(v) > 0 {
			result[k] = v[0]
		}
	}
	return result
}
