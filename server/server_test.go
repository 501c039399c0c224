package server

import (
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/benchhttp/logger"
)

func TestConfigDefaultsAndValidate(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()
	if cfg.Port != 8089 || cfg.Host != "127.0.0.1" {
		t.Errorf("unexpected defaults %+v", cfg)
	}
	if cfg.Address() != "127.0.0.1:8089" {
		t.Errorf("Address() = %q", cfg.Address())
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	bad := Config{Port: 70000}
	if err := bad.Validate(); err == nil {
		t.Error("expected error for out-of-range port")
	}
}

func TestServerStartStop(t *testing.T) {
	cfg := Config{Host: "127.0.0.1", Port: 0}
	cfg.ApplyDefaults()
	cfg.Port = 0

	s := New(cfg, logger.Nop())
	s.ApplyDefaults("benchhttp")
	s.GinEngine().GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	ctx := context.Background()
	if err := s.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer func() { _ = s.Stop(ctx) }()

	if s.Addr() == cfg.Address() {
		t.Fatalf("expected bound address, got %q", s.Addr())
	}

	for _, path := range []string{"/ping", "/alive", "/version"} {
		resp, err := http.Get(s.BaseURL() + path)
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("GET %s: status %d", path, resp.StatusCode)
		}
	}
}
