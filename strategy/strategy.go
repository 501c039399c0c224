package strategy

import (
	"context"
	"io"

	"github.com/kbukum/benchhttp/errors"
	"github.com/kbukum/benchhttp/httpclient"
	"github.com/kbukum/benchhttp/search"
)

// Strategy names.
const (
	NameFullBuffer      = "full-buffer"
	NameHeadersDeferred = "headers-deferred"
	NameHeadersScoped   = "headers-scoped"
	NameStreamDirect    = "stream-direct"
	NamePooledClient    = "pooled-client"
)

// Func performs one GET of url with c and returns the decoded result.
type Func func(ctx context.Context, c *httpclient.Client, url string) (*search.Result, error)

// Strategy is a named request/response handling variant.
type Strategy struct {
	Name        string
	Description string
	Run         Func
}

// PostProcessFunc consumes a decoded result. Strategies differ in whether it
// runs before or after the response is released.
type PostProcessFunc func(*search.Result)

type options struct {
	postProcess PostProcessFunc
}

// Option configures a strategy.
type Option func(*options)

// WithPostProcess sets the hook run on every decoded result.
func WithPostProcess(fn PostProcessFunc) Option {
	return func(o *options) {
		if fn != nil {
			o.postProcess = fn
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{postProcess: func(*search.Result) {}}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// FullBuffer lets the client buffer the entire body and release the
// connection before the body is deserialized.
func FullBuffer(opts ...Option) Strategy {
	o := buildOptions(opts)
	return Strategy{
		Name:        NameFullBuffer,
		Description: "entire body buffered before returning",
		Run: func(ctx context.Context, c *httpclient.Client, url string) (*search.Result, error) {
			resp, err := c.Do(ctx, httpclient.Get(url))
			if err != nil {
				return nil, err
			}
			result, err := search.Unmarshal(resp.Body)
			if err != nil {
				return nil, err
			}
			o.postProcess(result)
			return result, nil
		},
	}
}

// HeadersDeferred reads headers, checks the status, then decodes the body in
// an inner scope that releases the response as soon as decoding ends. The
// post-process hook runs after the release.
func HeadersDeferred(opts ...Option) Strategy {
	o := buildOptions(opts)
	return Strategy{
		Name:        NameHeadersDeferred,
		Description: "headers first, response released right after decoding",
		Run: func(ctx context.Context, c *httpclient.Client, url string) (*search.Result, error) {
			resp, err := c.Send(ctx, httpclient.Get(url))
			if err != nil {
				return nil, err
			}

			result, err := func() (*search.Result, error) {
				defer func() { _ = httpclient.Release(resp.Body) }()
				if err := httpclient.CheckStatus(resp); err != nil {
					return nil, err
				}
				return decodeBody(ctx, resp.Body)
			}()
			if err != nil {
				return nil, err
			}

			o.postProcess(result)
			return result, nil
		},
	}
}

// HeadersScoped reads headers, checks the status and decodes the body; the
// response is released when the call returns, after the post-process hook.
func HeadersScoped(opts ...Option) Strategy {
	o := buildOptions(opts)
	return Strategy{
		Name:        NameHeadersScoped,
		Description: "headers first, response released at end of scope",
		Run: func(ctx context.Context, c *httpclient.Client, url string) (*search.Result, error) {
			resp, err := c.Send(ctx, httpclient.Get(url))
			if err != nil {
				return nil, err
			}
			defer func() { _ = httpclient.Release(resp.Body) }()

			if err := httpclient.CheckStatus(resp); err != nil {
				return nil, err
			}
			result, err := decodeBody(ctx, resp.Body)
			if err != nil {
				return nil, err
			}
			o.postProcess(result)
			return result, nil
		},
	}
}

// StreamDirect decodes straight from the status-checked body stream without
// an intermediate buffer.
func StreamDirect(opts ...Option) Strategy {
	o := buildOptions(opts)
	return Strategy{
		Name:        NameStreamDirect,
		Description: "body decoded directly from the stream",
		Run: func(ctx context.Context, c *httpclient.Client, url string) (*search.Result, error) {
			return streamDecode(ctx, c, url, o)
		},
	}
}

// PooledClient fetches the handle named name from pool on every call and
// then behaves like StreamDirect. The client passed to Run is ignored.
func PooledClient(pool *httpclient.Pool, name string, opts ...Option) Strategy {
	o := buildOptions(opts)
	return Strategy{
		Name:        NamePooledClient,
		Description: "handle fetched from the pool per call",
		Run: func(ctx context.Context, _ *httpclient.Client, url string) (*search.Result, error) {
			c, err := pool.Get(name)
			if err != nil {
				return nil, err
			}
			return streamDecode(ctx, c, url, o)
		},
	}
}

// All returns every strategy in comparison order. The pooled-client strategy
// draws handles from pool under poolName.
func All(pool *httpclient.Pool, poolName string, opts ...Option) []Strategy {
	return []Strategy{
		FullBuffer(opts...),
		HeadersDeferred(opts...),
		HeadersScoped(opts...),
		StreamDirect(opts...),
		PooledClient(pool, poolName, opts...),
	}
}

// Lookup returns the strategy named name from strategies.
func Lookup(strategies []Strategy, name string) (Strategy, error) {
	for _, s := range strategies {
		if s.Name == name {
			return s, nil
		}
	}
	return Strategy{}, errors.NotFound("strategy", name)
}

// Select returns the strategies named in names, in that order. An empty
// names selects all of them.
func Select(strategies []Strategy, names []string) ([]Strategy, error) {
	if len(names) == 0 {
		return strategies, nil
	}
	selected := make([]Strategy, 0, len(names))
	for _, name := range names {
		s, err := Lookup(strategies, name)
		if err != nil {
			return nil, err
		}
		selected = append(selected, s)
	}
	return selected, nil
}

func streamDecode(ctx context.Context, c *httpclient.Client, url string, o options) (*search.Result, error) {
	stream, err := c.DoStream(ctx, httpclient.Get(url))
	if err != nil {
		return nil, err
	}
	defer func() { _ = stream.Close() }()

	result, err := decodeBody(ctx, stream.Body)
	if err != nil {
		return nil, err
	}
	o.postProcess(result)
	return result, nil
}

// decodeBody decodes r, reporting read failures as transport errors.
func decodeBody(ctx context.Context, r io.Reader) (*search.Result, error) {
	result, err := search.Decode(r)
	if err != nil && !search.IsDecodeError(err) {
		return nil, httpclient.ClassifyTransportError(ctx, err)
	}
	return result, err
}
