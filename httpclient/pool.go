package httpclient

import (
	"context"

	"github.com/kbukum/benchhttp/provider"
)

var (
	_ provider.Provider  = (*Client)(nil)
	_ provider.Closeable = (*Client)(nil)
)

// Pool lazily builds and caches one Client per logical name.
// Handles obtained from a Pool are owned by the Pool; callers never close
// them individually.
type Pool struct {
	registry *provider.Registry[*Client]
}

// NewPool creates a pool whose handles are built from base, with Name set to
// the logical name they are requested under.
func NewPool(base Config, opts ...Option) *Pool {
	p := &Pool{registry: provider.NewRegistry[*Client]()}
	p.registry.SetFallback(configFactory(base, opts...))
	return p
}

// Register sets the configuration used for a specific name.
// It has no effect on a handle that was already built.
func (p *Pool) Register(name string, cfg Config, opts ...Option) {
	p.registry.RegisterFactory(name, configFactory(cfg, opts...))
}

// Get returns the handle for name, building it on first use.
func (p *Pool) Get(name string) (*Client, error) {
	return p.registry.GetOrCreate(name)
}

// Names returns the names of handles built so far.
func (p *Pool) Names() []string {
	return p.registry.Instances()
}

// Close releases every handle built by the pool.
func (p *Pool) Close(ctx context.Context) error {
	return p.registry.CloseAll(ctx)
}

func configFactory(cfg Config, opts ...Option) provider.Factory[*Client] {
	return func(name string) (*Client, error) {
		c := cfg
		c.Name = name
		return New(c, opts...)
	}
}
