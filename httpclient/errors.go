package httpclient

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// ErrorCode classifies HTTP client errors.
type ErrorCode int

const (
	// ErrCodeTimeout indicates a request or connection timeout.
	ErrCodeTimeout ErrorCode = iota
	// ErrCodeConnection indicates a connection failure (refused, DNS, reset).
	ErrCodeConnection
	// ErrCodeAuth indicates an authentication/authorization failure (401/403).
	ErrCodeAuth
	// ErrCodeNotFound indicates the resource was not found (404).
	ErrCodeNotFound
	// ErrCodeRateLimit indicates rate limiting (429).
	ErrCodeRateLimit
	// ErrCodeClient indicates any other 4xx status.
	ErrCodeClient
	// ErrCodeServer indicates a server-side error (5xx).
	ErrCodeServer
	// ErrCodeUnexpectedStatus indicates a non-2xx status outside 4xx/5xx.
	ErrCodeUnexpectedStatus
	// ErrCodeInvalidRequest indicates the request could not be built.
	ErrCodeInvalidRequest
)

// String returns the error code name.
func (c ErrorCode) String() string {
	switch c {
	case ErrCodeTimeout:
		return "timeout"
	case ErrCodeConnection:
		return "connection"
	case ErrCodeAuth:
		return "auth"
	case ErrCodeNotFound:
		return "not_found"
	case ErrCodeRateLimit:
		return "rate_limit"
	case ErrCodeClient:
		return "client"
	case ErrCodeServer:
		return "server"
	case ErrCodeUnexpectedStatus:
		return "unexpected_status"
	case ErrCodeInvalidRequest:
		return "invalid_request"
	default:
		return "unknown"
	}
}

// Error is a structured HTTP client error.
//
// A non-zero StatusCode marks an HTTP status failure; a zero StatusCode with
// ErrCodeTimeout or ErrCodeConnection marks a transport failure.
type Error struct {
	// StatusCode is the HTTP status code (0 for transport-level errors).
	StatusCode int
	// Code classifies the error.
	Code ErrorCode
	// Message describes the error.
	Message string
	// Body is the buffered response body, when the caller read it.
	Body []byte
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("httpclient: %s (HTTP %d): %s", e.Code, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("httpclient: %s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// IsStatus reports whether the error carries an HTTP status.
func (e *Error) IsStatus() bool {
	return e.StatusCode > 0
}

// IsTransport reports whether the error came from the transport rather than
// from the server's status.
func (e *Error) IsTransport() bool {
	return e.Code == ErrCodeTimeout || e.Code == ErrCodeConnection
}

// NewTimeoutError creates a timeout error.
func NewTimeoutError(err error) *Error {
	return &Error{Code: ErrCodeTimeout, Message: err.Error(), Err: err}
}

// NewConnectionError creates a connection error.
func NewConnectionError(err error) *Error {
	return &Error{Code: ErrCodeConnection, Message: err.Error(), Err: err}
}

// NewInvalidRequestError creates an error for a request that could not be built.
func NewInvalidRequestError(err error) *Error {
	return &Error{Code: ErrCodeInvalidRequest, Message: err.Error(), Err: err}
}

// NewStatusError creates the error for a non-2xx status.
func NewStatusError(statusCode int, code ErrorCode, body []byte) *Error {
	text := http.StatusText(statusCode)
	if text == "" {
		text = "status"
	}
	return &Error{
		StatusCode: statusCode,
		Code:       code,
		Message:    text,
		Body:       body,
	}
}

// ClassifyStatusCode converts an HTTP status code into a typed error.
// Returns nil for 2xx status codes.
func ClassifyStatusCode(statusCode int, body []byte) *Error {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return nil
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		return NewStatusError(statusCode, ErrCodeAuth, body)
	case statusCode == http.StatusNotFound:
		return NewStatusError(statusCode, ErrCodeNotFound, body)
	case statusCode == http.StatusTooManyRequests:
		return NewStatusError(statusCode, ErrCodeRateLimit, body)
	case statusCode >= 400 && statusCode < 500:
		return NewStatusError(statusCode, ErrCodeClient, body)
	case statusCode >= 500:
		return NewStatusError(statusCode, ErrCodeServer, body)
	default:
		return NewStatusError(statusCode, ErrCodeUnexpectedStatus, body)
	}
}

// ClassifyTransportError maps a failure from the transport (dial, TLS, read)
// to a timeout or connection error. A nil err stays nil.
func ClassifyTransportError(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	if ctx.Err() != nil || errors.Is(err, context.DeadlineExceeded) {
		return NewTimeoutError(err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return NewTimeoutError(err)
	}
	return NewConnectionError(err)
}

// StatusCode returns the HTTP status carried by err, if any.
func StatusCode(err error) (int, bool) {
	var e *Error
	if errors.As(err, &e) && e.IsStatus() {
		return e.StatusCode, true
	}
	return 0, false
}

// IsStatusError checks if an error is a non-2xx status error.
func IsStatusError(err error) bool {
	_, ok := StatusCode(err)
	return ok
}

// IsTransportError checks if an error is a timeout or connection error.
func IsTransportError(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.IsTransport()
}

// IsTimeout checks if an error is a timeout error.
func IsTimeout(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == ErrCodeTimeout
}

// IsConnection checks if an error is a connection error.
func IsConnection(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == ErrCodeConnection
}

// IsNotFound checks if an error is a not-found error.
func IsNotFound(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == ErrCodeNotFound
}

// IsServerError checks if an error is a server error.
func IsServerError(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == ErrCodeServer
}
