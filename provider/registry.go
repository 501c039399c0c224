package provider

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
)

// Registry manages named provider factories and cached instances.
// Instances are built lazily on first lookup and reused afterwards.
type Registry[T Provider] struct {
	mu        sync.RWMutex
	factories map[string]Factory[T]
	fallback  Factory[T]
	instances map[string]T
}

// NewRegistry creates a new empty Registry.
func NewRegistry[T Provider]() *Registry[T] {
	return &Registry[T]{
		factories: make(map[string]Factory[T]),
		instances: make(map[string]T),
	}
}

// RegisterFactory registers a named factory for creating providers.
func (r *Registry[T]) RegisterFactory(name string, factory Factory[T]) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// SetFallback sets the factory used for names without a registered factory.
func (r *Registry[T]) SetFallback(factory Factory[T]) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fallback = factory
}

// GetOrCreate returns the cached instance for name, building it with the
// named (or fallback) factory on first use. Concurrent callers asking for the
// same name observe a single instance.
func (r *Registry[T]) GetOrCreate(name string) (T, error) {
	r.mu.RLock()
	inst, ok := r.instances[name]
	r.mu.RUnlock()
	if ok {
		return inst, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if inst, ok := r.instances[name]; ok {
		return inst, nil
	}
	factory := r.factoryFor(name)
	if factory == nil {
		var zero T
		return zero, fmt.Errorf("provider factory %q not registered", name)
	}
	inst, err := factory(name)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("provider %q: %w", name, err)
	}
	r.instances[name] = inst
	return inst, nil
}

// Instances returns sorted names of all cached instances.
func (r *Registry[T]) Instances() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sortedKeys(r.instances)
}

// CloseAll closes every cached instance implementing Closeable and empties
// the cache. Errors from individual instances are joined.
func (r *Registry[T]) CloseAll(ctx context.Context) error {
	r.mu.Lock()
	instances := r.instances
	r.instances = make(map[string]T)
	r.mu.Unlock()

	var errs []error
	for _, name := range sortedKeys(instances) {
		c, ok := any(instances[name]).(Closeable)
		if !ok {
			continue
		}
		if err := c.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("close %q: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

// factoryFor must be called with r.mu held.
func (r *Registry[T]) factoryFor(name string) Factory[T] {
	if f, ok := r.factories[name]; ok {
		return f
	}
	return r.fallback
}

func sortedKeys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
