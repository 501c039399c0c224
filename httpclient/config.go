package httpclient

import (
	"fmt"
	"net/url"
	"time"

	"github.com/kbukum/benchhttp/security"
)

const (
	defaultTimeout             = 30 * time.Second
	defaultName                = "default"
	defaultUserAgent           = "benchhttp/1.0"
	defaultAccept              = "application/json"
	defaultMaxIdleConnsPerHost = 16
)

// Config configures an HTTP client handle.
type Config struct {
	// Name identifies the handle in logs and in a Pool.
	Name string `yaml:"name" mapstructure:"name"`

	// BaseURL is the base URL prepended to relative request paths.
	BaseURL string `yaml:"base_url" mapstructure:"base_url" validate:"omitempty,url"`

	// Timeout bounds a whole request, body read included. Defaults to 30s.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`

	// TLS configures server certificate validation for the transport.
	TLS *security.TLSConfig `yaml:"tls" mapstructure:"tls"`

	// UserAgent is sent as the User-Agent header.
	UserAgent string `yaml:"user_agent" mapstructure:"user_agent"`

	// Headers are default headers applied to all requests.
	// Accept defaults to application/json.
	Headers map[string]string `yaml:"headers" mapstructure:"headers"`

	// MaxIdleConnsPerHost caps pooled idle connections per host.
	MaxIdleConnsPerHost int `yaml:"max_idle_conns_per_host" mapstructure:"max_idle_conns_per_host" validate:"gte=0"`

	// DisableKeepAlives turns off connection reuse. Reuse is on by default.
	DisableKeepAlives bool `yaml:"disable_keep_alives" mapstructure:"disable_keep_alives"`

	// ForceHTTP2 configures the transport for HTTP/2 over TLS.
	ForceHTTP2 bool `yaml:"force_http2" mapstructure:"force_http2"`
}

// ApplyDefaults fills in zero-value fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = defaultName
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if c.UserAgent == "" {
		c.UserAgent = defaultUserAgent
	}
	if c.MaxIdleConnsPerHost == 0 {
		c.MaxIdleConnsPerHost = defaultMaxIdleConnsPerHost
	}
	if _, ok := c.Headers["Accept"]; !ok {
		headers := make(map[string]string, len(c.Headers)+1)
		for k, v := range c.Headers {
			headers[k] = v
		}
		headers["Accept"] = defaultAccept
		c.Headers = headers
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("httpclient: timeout must be positive")
	}
	if c.MaxIdleConnsPerHost < 0 {
		return fmt.Errorf("httpclient: max_idle_conns_per_host must not be negative")
	}
	if c.BaseURL != "" {
		u, err := url.Parse(c.BaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("httpclient: invalid base_url %q", c.BaseURL)
		}
	}
	if err := c.TLS.Validate(); err != nil {
		return err
	}
	return nil
}
