package config

import (
	"github.com/kbukum/benchhttp/bench"
	"github.com/kbukum/benchhttp/errors"
	"github.com/kbukum/benchhttp/fixture"
	"github.com/kbukum/benchhttp/httpclient"
	"github.com/kbukum/benchhttp/observability"
	"github.com/kbukum/benchhttp/server"
	"github.com/kbukum/benchhttp/strategy"
	"github.com/kbukum/benchhttp/validation"
)

// ServiceName is used for config discovery and as the default service name.
const ServiceName = "benchhttp"

// BenchConfig is the complete benchhttp configuration.
type BenchConfig struct {
	ServiceConfig `yaml:",inline" mapstructure:",squash"`

	// HTTP configures the owned client handle and the pool's base config.
	HTTP httpclient.Config `yaml:"http" mapstructure:"http"`
	// PoolName is the logical name the pooled-client strategy requests.
	PoolName string `yaml:"pool_name" mapstructure:"pool_name"`

	Target        strategy.Target      `yaml:"target" mapstructure:"target"`
	Bench         bench.Config         `yaml:"bench" mapstructure:"bench"`
	Fixture       fixture.Config       `yaml:"fixture" mapstructure:"fixture"`
	Server        server.Config        `yaml:"server" mapstructure:"server"`
	Observability observability.Config `yaml:"observability" mapstructure:"observability"`

	// Report is a Markdown output path. Empty disables the report file.
	Report string `yaml:"report" mapstructure:"report"`
}

// ApplyDefaults fills unset fields in every section.
func (c *BenchConfig) ApplyDefaults() {
	c.ServiceConfig.ApplyDefaults()
	c.HTTP.ApplyDefaults()
	if c.PoolName == "" {
		c.PoolName = "search"
	}
	c.Target.ApplyDefaults()
	c.Bench.ApplyDefaults()
	c.Fixture.ApplyDefaults()
	c.Server.ApplyDefaults()
	if c.Observability.ServiceName == "" {
		c.Observability.ServiceName = c.Name
	}
	if c.Observability.ServiceVersion == "" {
		c.Observability.ServiceVersion = c.Version
	}
	if c.Observability.Environment == "" {
		c.Observability.Environment = c.Environment
	}
	c.Observability.ApplyDefaults()
}

// Validate checks struct tags first, then each section's own rules.
func (c *BenchConfig) Validate() error {
	if err := validation.Validate(c); err != nil {
		return err
	}
	checks := []struct {
		section string
		fn      func() error
	}{
		{"service", c.ServiceConfig.Validate},
		{"http", c.HTTP.Validate},
		{"bench", c.Bench.Validate},
		{"server", c.Server.Validate},
		{"observability", c.Observability.Validate},
	}
	for _, check := range checks {
		if err := check.fn(); err != nil {
			if _, ok := errors.AsAppError(err); ok {
				return err
			}
			return errors.InvalidConfig(check.section + ": " + err.Error()).WithCause(err)
		}
	}
	return nil
}

// Load reads, defaults and validates the configuration.
func Load(opts ...LoaderOption) (*BenchConfig, error) {
	var cfg BenchConfig
	if err := LoadConfig(ServiceName, &cfg, opts...); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
