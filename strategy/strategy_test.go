package strategy

import (
	"context"
	stderrors "errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"sync/atomic"
	"testing"
	"testing/iotest"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/benchhttp/errors"
	"github.com/kbukum/benchhttp/fixture"
	"github.com/kbukum/benchhttp/httpclient"
	"github.com/kbukum/benchhttp/search"
)

const poolName = "search"

func init() {
	gin.SetMode(gin.TestMode)
}

// closeCountingBody records how often Close is called.
type closeCountingBody struct {
	io.Reader
	closes *atomic.Int32
}

func (b *closeCountingBody) Close() error {
	b.closes.Add(1)
	return nil
}

// fakeTransport answers every request with a canned status and body.
type fakeTransport struct {
	status int
	body   func() io.Reader
	err    error
	closes atomic.Int32
}

func (f *fakeTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &http.Response{
		StatusCode: f.status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       &closeCountingBody{Reader: f.body(), closes: &f.closes},
		Request:    req,
	}, nil
}

func cannedTransport(status int, body string) *fakeTransport {
	return &fakeTransport{status: status, body: func() io.Reader { return strings.NewReader(body) }}
}

// runEach runs every strategy against a fresh fake transport built by mk.
func runEach(t *testing.T, mk func() *fakeTransport, check func(t *testing.T, ft *fakeTransport, result *search.Result, err error), opts ...Option) {
	t.Helper()
	for _, name := range []string{NameFullBuffer, NameHeadersDeferred, NameHeadersScoped, NameStreamDirect, NamePooledClient} {
		t.Run(name, func(t *testing.T) {
			ft := mk()
			c, err := httpclient.New(httpclient.Config{}, httpclient.WithTransport(ft))
			if err != nil {
				t.Fatal(err)
			}
			pool := httpclient.NewPool(httpclient.Config{}, httpclient.WithTransport(ft))
			defer func() { _ = pool.Close(context.Background()) }()

			s, err := Lookup(All(pool, poolName, opts...), name)
			if err != nil {
				t.Fatal(err)
			}
			result, err := s.Run(context.Background(), c, "http://example.invalid/search.json?q=tdd")
			check(t, ft, result, err)
		})
	}
}

func TestStrategies_Scenario(t *testing.T) {
	runEach(t, func() *fakeTransport { return cannedTransport(http.StatusOK, fixture.Scenario) },
		func(t *testing.T, ft *fakeTransport, result *search.Result, err error) {
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			want := &search.Result{
				NumFound: 1,
				Docs:     []search.Document{{Title: "Test Driven Development", Key: "/works/OL1W"}},
			}
			if !reflect.DeepEqual(result, want) {
				t.Errorf("got %+v, want %+v", result, want)
			}
			if n := ft.closes.Load(); n != 1 {
				t.Errorf("expected body closed once, got %d", n)
			}
		})
}

func TestStrategies_DocCountMatchesPayload(t *testing.T) {
	payload := string(fixture.Generate(40))
	runEach(t, func() *fakeTransport { return cannedTransport(http.StatusOK, payload) },
		func(t *testing.T, ft *fakeTransport, result *search.Result, err error) {
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(result.Docs) != 40 {
				t.Errorf("expected 40 docs, got %d", len(result.Docs))
			}
		})
}

func TestStrategies_NotFound(t *testing.T) {
	runEach(t, func() *fakeTransport { return cannedTransport(http.StatusNotFound, `{"error":"not found"}`) },
		func(t *testing.T, ft *fakeTransport, result *search.Result, err error) {
			if result != nil {
				t.Errorf("expected no result, got %+v", result)
			}
			code, ok := httpclient.StatusCode(err)
			if !ok || code != http.StatusNotFound {
				t.Fatalf("expected HTTP 404 error, got %v", err)
			}
			if search.IsDecodeError(err) || httpclient.IsTransportError(err) {
				t.Errorf("404 must only be a status error: %v", err)
			}
			if n := ft.closes.Load(); n != 1 {
				t.Errorf("expected body closed once, got %d", n)
			}
		})
}

func TestStrategies_ServerError(t *testing.T) {
	runEach(t, func() *fakeTransport { return cannedTransport(http.StatusServiceUnavailable, "") },
		func(t *testing.T, ft *fakeTransport, _ *search.Result, err error) {
			if !httpclient.IsServerError(err) {
				t.Fatalf("expected server error, got %v", err)
			}
			if code, _ := httpclient.StatusCode(err); code != http.StatusServiceUnavailable {
				t.Errorf("expected 503, got %d", code)
			}
			if n := ft.closes.Load(); n != 1 {
				t.Errorf("expected body closed once, got %d", n)
			}
		})
}

func TestStrategies_EmptyBody(t *testing.T) {
	runEach(t, func() *fakeTransport { return cannedTransport(http.StatusOK, "") },
		func(t *testing.T, ft *fakeTransport, result *search.Result, err error) {
			if result != nil {
				t.Errorf("expected no result for empty body, got %+v", result)
			}
			if !search.IsDecodeError(err) {
				t.Fatalf("expected decode error, got %v", err)
			}
			if !stderrors.Is(err, search.ErrEmptyBody) {
				t.Errorf("expected ErrEmptyBody, got %v", err)
			}
			if n := ft.closes.Load(); n != 1 {
				t.Errorf("expected body closed once, got %d", n)
			}
		})
}

func TestStrategies_MalformedBody(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		cause error
	}{
		{name: "truncated", body: `{"numFound":1,"docs":[{"title":`},
		{name: "trailing object", body: fixture.Scenario + `{}`},
		{name: "trailing garbage", body: fixture.Scenario + ` trailing`},
		{name: "null", body: `null`, cause: search.ErrNullBody},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runEach(t, func() *fakeTransport { return cannedTransport(http.StatusOK, tt.body) },
				func(t *testing.T, ft *fakeTransport, result *search.Result, err error) {
					if result != nil {
						t.Errorf("expected no result, got %+v", result)
					}
					if !search.IsDecodeError(err) {
						t.Fatalf("expected decode error, got %v", err)
					}
					if tt.cause != nil && !stderrors.Is(err, tt.cause) {
						t.Errorf("expected cause %v, got %v", tt.cause, err)
					}
					if n := ft.closes.Load(); n != 1 {
						t.Errorf("expected body closed once, got %d", n)
					}
				})
		})
	}
}

func TestStrategies_BodyReadFailureIsTransportError(t *testing.T) {
	mk := func() *fakeTransport {
		return &fakeTransport{status: http.StatusOK, body: func() io.Reader {
			return io.MultiReader(
				strings.NewReader(`{"numFound":1,"docs":[`),
				iotest.ErrReader(stderrors.New("connection reset by peer")),
			)
		}}
	}
	runEach(t, mk, func(t *testing.T, ft *fakeTransport, _ *search.Result, err error) {
		if !httpclient.IsConnection(err) {
			t.Fatalf("expected connection error, got %v", err)
		}
		if search.IsDecodeError(err) {
			t.Errorf("read failure must not be a decode error: %v", err)
		}
		if n := ft.closes.Load(); n != 1 {
			t.Errorf("expected body closed once, got %d", n)
		}
	})
}

func TestStrategies_RoundTripFailureIsTransportError(t *testing.T) {
	mk := func() *fakeTransport { return &fakeTransport{err: stderrors.New("dial tcp: connection refused")} }
	runEach(t, mk, func(t *testing.T, _ *fakeTransport, result *search.Result, err error) {
		if result != nil {
			t.Errorf("expected no result, got %+v", result)
		}
		if !httpclient.IsTransportError(err) {
			t.Fatalf("expected transport error, got %v", err)
		}
		if httpclient.IsStatusError(err) {
			t.Errorf("transport error must not carry a status: %v", err)
		}
	})
}

func TestStrategies_PostProcessOrdering(t *testing.T) {
	// closes observed inside the hook: 1 when the response was released first.
	want := map[string]int32{
		NameFullBuffer:      1,
		NameHeadersDeferred: 1,
		NameHeadersScoped:   0,
		NameStreamDirect:    0,
		NamePooledClient:    0,
	}
	for name, closes := range want {
		t.Run(name, func(t *testing.T) {
			ft := cannedTransport(http.StatusOK, fixture.Scenario)
			c, err := httpclient.New(httpclient.Config{}, httpclient.WithTransport(ft))
			if err != nil {
				t.Fatal(err)
			}
			pool := httpclient.NewPool(httpclient.Config{}, httpclient.WithTransport(ft))

			var seen int32 = -1
			hook := WithPostProcess(func(r *search.Result) {
				seen = ft.closes.Load()
				if len(r.Docs) != 1 {
					t.Errorf("hook got %d docs", len(r.Docs))
				}
			})
			s, err := Lookup(All(pool, poolName, hook), name)
			if err != nil {
				t.Fatal(err)
			}
			if _, err := s.Run(context.Background(), c, "http://example.invalid/search.json"); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if seen != closes {
				t.Errorf("closes seen by hook = %d, want %d", seen, closes)
			}
			if n := ft.closes.Load(); n != 1 {
				t.Errorf("expected body closed once, got %d", n)
			}
		})
	}
}

func TestStrategies_IdenticalResultsOverHTTP(t *testing.T) {
	engine := gin.New()
	if err := fixture.Register(engine, fixture.Config{Docs: 30}); err != nil {
		t.Fatal(err)
	}
	srv := httptest.NewServer(engine)
	defer srv.Close()

	target := Target{BaseURL: srv.URL}
	target.ApplyDefaults()

	c, err := httpclient.New(httpclient.Config{Name: "owned"})
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = c.Close(context.Background()) }()
	pool := httpclient.NewPool(httpclient.Config{})
	defer func() { _ = pool.Close(context.Background()) }()

	var first *search.Result
	for _, s := range All(pool, poolName) {
		result, err := s.Run(context.Background(), c, target.URL())
		if err != nil {
			t.Fatalf("%s: %v", s.Name, err)
		}
		if first == nil {
			first = result
			continue
		}
		if !reflect.DeepEqual(first, result) {
			t.Errorf("%s: result differs from %s", s.Name, NameFullBuffer)
		}
	}
	if len(first.Docs) != 30 {
		t.Errorf("expected 30 docs, got %d", len(first.Docs))
	}
	if names := pool.Names(); len(names) != 1 || names[0] != poolName {
		t.Errorf("expected one pooled handle %q, got %v", poolName, names)
	}
}

func TestStrategies_ReuseConnectionOnChunkedBody(t *testing.T) {
	payload := fixture.Generate(40)
	engine := gin.New()
	engine.GET("/search.json", func(c *gin.Context) {
		c.Header("Content-Type", "application/json")
		half := len(payload) / 2
		_, _ = c.Writer.Write(payload[:half])
		c.Writer.Flush()
		_, _ = c.Writer.Write(payload[half:])
		_, _ = c.Writer.Write([]byte("\n"))
	})

	var dials atomic.Int32
	srv := httptest.NewUnstartedServer(engine)
	srv.Config.ConnState = func(_ net.Conn, state http.ConnState) {
		if state == http.StateNew {
			dials.Add(1)
		}
	}
	srv.Start()
	defer srv.Close()

	const runs = 10
	for _, name := range []string{NameFullBuffer, NameHeadersDeferred, NameHeadersScoped, NameStreamDirect, NamePooledClient} {
		t.Run(name, func(t *testing.T) {
			c, err := httpclient.New(httpclient.Config{})
			if err != nil {
				t.Fatal(err)
			}
			pool := httpclient.NewPool(httpclient.Config{})
			defer func() {
				_ = c.Close(context.Background())
				_ = pool.Close(context.Background())
			}()
			s, err := Lookup(All(pool, poolName), name)
			if err != nil {
				t.Fatal(err)
			}

			dials.Store(0)
			for i := 0; i < runs; i++ {
				result, err := s.Run(context.Background(), c, srv.URL+"/search.json")
				if err != nil {
					t.Fatalf("run %d: %v", i, err)
				}
				if len(result.Docs) != 40 {
					t.Fatalf("run %d: expected 40 docs, got %d", i, len(result.Docs))
				}
			}
			if n := dials.Load(); n != 1 {
				t.Errorf("expected one connection across %d runs, got %d", runs, n)
			}
		})
	}
}

func TestStrategies_PooledClientReusesHandle(t *testing.T) {
	ft := cannedTransport(http.StatusOK, fixture.Scenario)
	pool := httpclient.NewPool(httpclient.Config{}, httpclient.WithTransport(ft))
	s := PooledClient(pool, poolName)

	for i := 0; i < 3; i++ {
		if _, err := s.Run(context.Background(), nil, "http://example.invalid/search.json"); err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
	}
	if names := pool.Names(); len(names) != 1 {
		t.Errorf("expected a single handle, got %v", names)
	}
	if n := ft.closes.Load(); n != 3 {
		t.Errorf("expected 3 closes, got %d", n)
	}
}

func TestStrategies_CanceledContext(t *testing.T) {
	engine := gin.New()
	if err := fixture.Register(engine, fixture.Config{}); err != nil {
		t.Fatal(err)
	}
	srv := httptest.NewServer(engine)
	defer srv.Close()

	c, err := httpclient.New(httpclient.Config{})
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, s := range All(httpclient.NewPool(httpclient.Config{}), poolName) {
		if _, err := s.Run(ctx, c, search.URL(srv.URL, "tdd")); !httpclient.IsTimeout(err) {
			t.Errorf("%s: expected timeout error for canceled context, got %v", s.Name, err)
		}
	}
}

func TestLookupAndSelect(t *testing.T) {
	all := All(httpclient.NewPool(httpclient.Config{}), poolName)
	if len(all) != 5 {
		t.Fatalf("expected 5 strategies, got %d", len(all))
	}

	if _, err := Lookup(all, "nope"); !errors.HasCode(err, errors.ErrCodeNotFound) {
		t.Errorf("expected NOT_FOUND, got %v", err)
	}

	selected, err := Select(all, []string{NameStreamDirect, NameFullBuffer})
	if err != nil {
		t.Fatal(err)
	}
	if len(selected) != 2 || selected[0].Name != NameStreamDirect || selected[1].Name != NameFullBuffer {
		t.Errorf("unexpected selection %v", selected)
	}

	if got, _ := Select(all, nil); len(got) != 5 {
		t.Errorf("empty selection should return all, got %d", len(got))
	}
	if _, err := Select(all, []string{NameFullBuffer, "bogus"}); err == nil {
		t.Error("expected error for unknown name")
	}
}

func TestTarget(t *testing.T) {
	var target Target
	target.ApplyDefaults()
	if got := target.URL(); got != "http://openlibrary.org/search.json?q=tdd" {
		t.Errorf("URL() = %q", got)
	}
}
