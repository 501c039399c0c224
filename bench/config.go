package bench

import (
	"time"

	"github.com/kbukum/benchhttp/errors"
)

// Config controls how a Runner measures strategies.
type Config struct {
	// Warmup iterations run before measuring; their results are discarded.
	Warmup int `yaml:"warmup" mapstructure:"warmup" validate:"gte=0"`
	// Iterations is the number of measured iterations. With Duration set,
	// it caps the run; zero means no cap.
	Iterations int `yaml:"iterations" mapstructure:"iterations" validate:"gte=0"`
	// Duration bounds the measured phase.
	Duration time.Duration `yaml:"duration" mapstructure:"duration" validate:"gte=0"`
	// Concurrency is the number of workers sharing the client handle.
	Concurrency int `yaml:"concurrency" mapstructure:"concurrency" validate:"gte=1"`
	// StopOnError aborts a run on its first failed iteration.
	StopOnError bool `yaml:"stop_on_error" mapstructure:"stop_on_error"`
	// Jobs to run; empty means DefaultJobs.
	Jobs []Job `yaml:"jobs" mapstructure:"jobs" validate:"dive"`
	// Strategies to run by name; empty means all.
	Strategies []string `yaml:"strategies" mapstructure:"strategies"`
}

// ApplyDefaults sets sensible default values for unset fields.
func (c *Config) ApplyDefaults() {
	if c.Iterations == 0 && c.Duration == 0 {
		c.Iterations = 100
		if c.Warmup == 0 {
			c.Warmup = 10
		}
	}
	if c.Concurrency == 0 {
		c.Concurrency = 1
	}
	if len(c.Jobs) == 0 {
		c.Jobs = DefaultJobs()
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.Iterations <= 0 && c.Duration <= 0 {
		return errors.InvalidConfig("bench: iterations or duration must be positive")
	}
	if c.Concurrency < 1 {
		return errors.InvalidConfig("bench: concurrency must be at least 1")
	}
	seen := make(map[string]bool, len(c.Jobs))
	for _, j := range c.Jobs {
		if j.ID == "" {
			return errors.InvalidConfig("bench: job id is required")
		}
		if seen[j.ID] {
			return errors.InvalidConfig("bench: duplicate job id " + j.ID)
		}
		seen[j.ID] = true
	}
	return nil
}
