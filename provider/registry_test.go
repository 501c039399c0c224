package provider

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
)

// testProvider implements the Provider interface for testing.
type testProvider struct {
	name      string
	available bool
	closed    atomic.Int32
	closeErr  error
}

func (p *testProvider) Name() string                      { return p.name }
func (p *testProvider) IsAvailable(context.Context) bool { return p.available }
func (p *testProvider) Close(context.Context) error {
	p.closed.Add(1)
	return p.closeErr
}

func newTestFactory(built *atomic.Int32) Factory[*testProvider] {
	return func(name string) (*testProvider, error) {
		built.Add(1)
		return &testProvider{name: name, available: true}, nil
	}
}

func TestRegistryBuildsOnFirstLookup(t *testing.T) {
	var built atomic.Int32
	reg := NewRegistry[*testProvider]()
	reg.RegisterFactory("test", newTestFactory(&built))

	if len(reg.Instances()) != 0 || built.Load() != 0 {
		t.Fatal("registering a factory must not build an instance")
	}
	p, err := reg.GetOrCreate("test")
	if err != nil {
		t.Fatalf("GetOrCreate failed: %v", err)
	}
	if p.Name() != "test" {
		t.Errorf("expected name 'test', got %q", p.Name())
	}
	if names := reg.Instances(); len(names) != 1 || names[0] != "test" {
		t.Errorf("expected cached [test], got %v", names)
	}
}

func TestRegistryUnregistered(t *testing.T) {
	reg := NewRegistry[*testProvider]()
	_, err := reg.GetOrCreate("missing")
	if err == nil || !strings.Contains(err.Error(), "not registered") {
		t.Errorf("expected 'not registered' error, got %v", err)
	}
}

func TestRegistryGetOrCreateCaches(t *testing.T) {
	var built atomic.Int32
	reg := NewRegistry[*testProvider]()
	reg.SetFallback(newTestFactory(&built))

	first, err := reg.GetOrCreate("search")
	if err != nil {
		t.Fatal(err)
	}
	second, err := reg.GetOrCreate("search")
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Error("expected the same instance on repeated lookups")
	}
	if built.Load() != 1 {
		t.Errorf("expected factory to run once, ran %d times", built.Load())
	}

	other, _ := reg.GetOrCreate("covers")
	if other == first {
		t.Error("different names must yield different instances")
	}
	if got := reg.Instances(); len(got) != 2 || got[0] != "covers" || got[1] != "search" {
		t.Errorf("Instances() = %v", got)
	}
}

func TestRegistryGetOrCreateConcurrent(t *testing.T) {
	var built atomic.Int32
	reg := NewRegistry[*testProvider]()
	reg.SetFallback(newTestFactory(&built))

	const workers = 32
	results := make([]*testProvider, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p, err := reg.GetOrCreate("shared")
			if err != nil {
				t.Error(err)
				return
			}
			results[i] = p
		}(i)
	}
	wg.Wait()

	if built.Load() != 1 {
		t.Fatalf("expected one build, got %d", built.Load())
	}
	for i := 1; i < workers; i++ {
		if results[i] != results[0] {
			t.Fatal("concurrent callers saw different instances")
		}
	}
}

func TestRegistryNamedFactoryWinsOverFallback(t *testing.T) {
	reg := NewRegistry[*testProvider]()
	reg.SetFallback(func(name string) (*testProvider, error) {
		return &testProvider{name: "fallback"}, nil
	})
	reg.RegisterFactory("special", func(name string) (*testProvider, error) {
		return &testProvider{name: "named"}, nil
	})

	p, _ := reg.GetOrCreate("special")
	if p.Name() != "named" {
		t.Errorf("expected named factory, got %q", p.Name())
	}
	p, _ = reg.GetOrCreate("other")
	if p.Name() != "fallback" {
		t.Errorf("expected fallback factory, got %q", p.Name())
	}
}

func TestRegistryFactoryErrorNotCached(t *testing.T) {
	calls := 0
	reg := NewRegistry[*testProvider]()
	reg.RegisterFactory("flaky", func(name string) (*testProvider, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("boom")
		}
		return &testProvider{name: name}, nil
	})

	if _, err := reg.GetOrCreate("flaky"); err == nil {
		t.Fatal("expected first call to fail")
	}
	if _, err := reg.GetOrCreate("flaky"); err != nil {
		t.Fatalf("expected second call to succeed, got %v", err)
	}
}

func TestRegistryCloseAll(t *testing.T) {
	reg := NewRegistry[*testProvider]()
	ok := &testProvider{name: "ok"}
	bad := &testProvider{name: "bad", closeErr: errors.New("close failed")}
	reg.RegisterFactory("ok", func(string) (*testProvider, error) { return ok, nil })
	reg.RegisterFactory("bad", func(string) (*testProvider, error) { return bad, nil })
	for _, name := range []string{"ok", "bad"} {
		if _, err := reg.GetOrCreate(name); err != nil {
			t.Fatal(err)
		}
	}

	err := reg.CloseAll(context.Background())
	if err == nil || !strings.Contains(err.Error(), `close "bad"`) {
		t.Errorf("expected joined close error, got %v", err)
	}
	if ok.closed.Load() != 1 || bad.closed.Load() != 1 {
		t.Error("expected every instance to be closed once")
	}
	if len(reg.Instances()) != 0 {
		t.Error("expected cache to be empty after CloseAll")
	}
}
