package bench

import (
	"context"
	"errors"
	"strconv"

	"github.com/kbukum/benchhttp/httpclient"
	"github.com/kbukum/benchhttp/search"
)

// Error types reported in summaries, logs and metrics.
const (
	ErrTypeDeserialization = "deserialization"
	ErrTypeTimeout         = "timeout"
	ErrTypeConnection      = "connection"
	ErrTypeCanceled        = "canceled"
	ErrTypeOther           = "other"
)

// ErrorType names the failure class of err, e.g. "http_404".
func ErrorType(err error) string {
	switch {
	case err == nil:
		return ""
	case httpclient.IsStatusError(err):
		code, _ := httpclient.StatusCode(err)
		return "http_" + strconv.Itoa(code)
	case search.IsDecodeError(err):
		return ErrTypeDeserialization
	case errors.Is(err, context.Canceled):
		return ErrTypeCanceled
	case httpclient.IsTimeout(err):
		return ErrTypeTimeout
	case httpclient.IsConnection(err):
		return ErrTypeConnection
	default:
		return ErrTypeOther
	}
}
