package httpclient

import (
	"io"
	"sync"
)

// Request describes an outbound HTTP request.
type Request struct {
	// Method is the HTTP method. Empty means GET.
	Method string
	// Path is appended to the client's BaseURL. Can be a full URL.
	Path string
	// Headers are request-specific headers (merged with client defaults).
	Headers map[string]string
	// Query are URL query parameters.
	Query map[string]string
}

// Get builds a GET request for path.
func Get(path string) Request {
	return Request{Path: path}
}

// Response is the result of a fully buffered HTTP request.
type Response struct {
	// StatusCode is the HTTP status code.
	StatusCode int
	// Headers are the response headers.
	Headers map[string]string
	// Body is the raw response body.
	Body []byte
}

// StreamResponse wraps a live response body after a successful status check.
type StreamResponse struct {
	// StatusCode is the HTTP status code.
	StatusCode int
	// Headers are the response headers.
	Headers map[string]string
	// Body is the live response body.
	Body io.ReadCloser

	closeOnce sync.Once
	closeErr  error
}

// Close drains and closes the body so the connection can be reused.
// Repeated calls release the body only once.
func (r *StreamResponse) Close() error {
	r.closeOnce.Do(func() {
		r.closeErr = Release(r.Body)
	})
	return r.closeErr
}
