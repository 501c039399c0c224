package search

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

var (
	// ErrEmptyBody is the cause of a DecodeError for a body with no content.
	ErrEmptyBody = errors.New("empty body")
	// ErrNullBody is the cause of a DecodeError for a body that is JSON null.
	ErrNullBody = errors.New("body is null")
	// ErrTrailingData is the cause of a DecodeError for a body with content
	// after the result object.
	ErrTrailingData = errors.New("trailing data after result")
)

// DecodeError reports a body that could not be deserialized into a Result.
type DecodeError struct {
	Err error
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	return fmt.Sprintf("search: decode response: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *DecodeError) Unwrap() error {
	return e.Err
}

// IsDecodeError checks if an error is a DecodeError.
func IsDecodeError(err error) bool {
	var e *DecodeError
	return errors.As(err, &e)
}

// Unmarshal decodes a fully buffered body.
func Unmarshal(data []byte) (*Result, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, &DecodeError{Err: ErrEmptyBody}
	}
	var result *Result
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, &DecodeError{Err: err}
	}
	if result == nil {
		return nil, &DecodeError{Err: ErrNullBody}
	}
	return result, nil
}

// Decode decodes a Result straight from r without buffering the body. The
// stream must hold exactly one value, so r is read to EOF.
//
// Read failures from r are returned unwrapped so callers can tell a broken
// connection from a malformed payload.
func Decode(r io.Reader) (*Result, error) {
	tr := &trackingReader{r: r}
	dec := json.NewDecoder(tr)

	var result *Result
	if err := dec.Decode(&result); err != nil {
		if tr.failed() {
			return nil, tr.err
		}
		if errors.Is(err, io.EOF) {
			return nil, &DecodeError{Err: ErrEmptyBody}
		}
		return nil, &DecodeError{Err: err}
	}
	if result == nil {
		return nil, &DecodeError{Err: ErrNullBody}
	}

	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		if tr.failed() {
			return nil, tr.err
		}
		if err != nil {
			return nil, &DecodeError{Err: fmt.Errorf("%w: %w", ErrTrailingData, err)}
		}
		return nil, &DecodeError{Err: ErrTrailingData}
	}
	return result, nil
}

// trackingReader remembers the first read error of the underlying reader.
type trackingReader struct {
	r   io.Reader
	err error
}

func (t *trackingReader) Read(p []byte) (int, error) {
	n, err := t.r.Read(p)
	if err != nil && t.err == nil {
		t.err = err
	}
	return n, err
}

// failed reports a read error other than end of stream.
func (t *trackingReader) failed() bool {
	return t.err != nil && !errors.Is(t.err, io.EOF)
}
