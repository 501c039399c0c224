package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

const (
	// ErrCodeInvalidConfig indicates the benchmark configuration is invalid.
	ErrCodeInvalidConfig ErrorCode = "INVALID_CONFIG"
	// ErrCodeInvalidInput indicates an invalid argument.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeNotFound indicates a named strategy, job or client does not exist.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	// ErrCodeAborted indicates a benchmark run was stopped before completion.
	ErrCodeAborted ErrorCode = "ABORTED"
	// ErrCodeInternal indicates an unexpected internal failure.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)
