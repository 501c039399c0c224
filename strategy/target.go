package strategy

import "github.com/kbukum/benchhttp/search"

// Defaults for Target.
const (
	DefaultBaseURL = "http://openlibrary.org"
	DefaultQuery   = "tdd"
)

// Target identifies the search endpoint every strategy requests.
type Target struct {
	BaseURL string `yaml:"base_url" mapstructure:"base_url" validate:"required,url"`
	Query   string `yaml:"query" mapstructure:"query" validate:"required"`
}

// ApplyDefaults fills unset fields.
func (t *Target) ApplyDefaults() {
	if t.BaseURL == "" {
		t.BaseURL = DefaultBaseURL
	}
	if t.Query == "" {
		t.Query = DefaultQuery
	}
}

// URL returns <BaseURL>/search.json?q=<Query>.
func (t Target) URL() string {
	return search.URL(t.BaseURL, t.Query)
}
