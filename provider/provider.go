package provider

import "context"

// Provider is the base interface all providers must implement.
type Provider interface {
	// Name returns the provider's unique name.
	Name() string
	// IsAvailable checks if the provider is ready to handle requests.
	IsAvailable(ctx context.Context) bool
}

// Closeable is optionally implemented by providers that hold resources
// requiring explicit cleanup (idle connections, background workers).
type Closeable interface {
	Close(ctx context.Context) error
}

// Factory creates the provider registered under name.
type Factory[T Provider] func(name string) (T, error)
