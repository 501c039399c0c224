// Package fixture serves canned search responses so strategies can be
// benchmarked without reaching the public search service.
package fixture

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/benchhttp/logger"
	"github.com/kbukum/benchhttp/search"
	"github.com/kbukum/benchhttp/server"
)

// Scenario is the minimal single-document search response.
const Scenario = `{"numFound":1,"docs":[{"title":"Test Driven Development","key":"/works/OL1W"}]}`

// Config describes the canned response.
type Config struct {
	// Status is the response status. Zero means 200.
	Status int `yaml:"status" mapstructure:"status" validate:"omitempty,gte=100,lte=599"`
	// File is a JSON payload on disk. It takes precedence over Docs.
	File string `yaml:"file" mapstructure:"file"`
	// Docs generates a payload with that many documents. Zero serves Scenario.
	Docs int `yaml:"docs" mapstructure:"docs" validate:"gte=0"`
	// Delay is added before the response headers are written.
	Delay time.Duration `yaml:"delay" mapstructure:"delay" validate:"gte=0"`
}

// ApplyDefaults sets the status to 200 when unset.
func (c *Config) ApplyDefaults() {
	if c.Status == 0 {
		c.Status = http.StatusOK
	}
}

// Body returns the payload described by the config.
func (c *Config) Body() ([]byte, error) {
	switch {
	case c.File != "":
		data, err := os.ReadFile(c.File)
		if err != nil {
			return nil, fmt.Errorf("fixture: read %s: %w", c.File, err)
		}
		return data, nil
	case c.Docs > 0:
		return Generate(c.Docs), nil
	default:
		return []byte(Scenario), nil
	}
}

// Generate builds a search response with n populated documents.
func Generate(n int) []byte {
	docs := make([]search.Document, n)
	for i := range docs {
		id := strconv.Itoa(i + 1)
		docs[i] = search.Document{
			Key:              "/works/OL" + id + "W",
			Title:            "Test Driven Development " + id,
			TitleSuggest:     "Test Driven Development",
			Type:             "work",
			HasFulltext:      i%2 == 0,
			EditionCount:     i%7 + 1,
			EbookCountI:      i % 3,
			CoverI:           1000 + i,
			FirstPublishYear: 2000 + i%25,
			LastModifiedI:    1700000000 + i,
			AuthorName:       []string{"Kent Beck"},
			AuthorKey:        []string{"OL" + id + "A"},
			PublishYear:      []int{2002, 2003},
			Subject:          []string{"Computer software", "Testing", "Agile"},
			Language:         []string{"eng"},
			Publisher:        []string{"Addison-Wesley"},
			Seed:             []string{"/works/OL" + id + "W", "/books/OL" + id + "M"},
			ISBN:             []string{"9780321146533", "0321146530"},
			EditionKey:       []string{"OL" + id + "M"},
		}
	}
	data, err := json.Marshal(search.Result{NumFound: n, Docs: docs})
	if err != nil {
		panic(err)
	}
	return data
}

// Handler returns a Gin handler writing body with status after delay.
func Handler(status int, body []byte, delay time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-c.Request.Context().Done():
				c.Abort()
				return
			}
		}
		c.Data(status, "application/json; charset=utf-8", body)
	}
}

// Register mounts the search route described by cfg on r.
func Register(r gin.IRoutes, cfg Config) error {
	cfg.ApplyDefaults()
	body, err := cfg.Body()
	if err != nil {
		return err
	}
	r.GET(search.Path, Handler(cfg.Status, body, cfg.Delay))
	return nil
}

// NewServer builds a server with the default middleware and endpoints plus
// the search route described by cfg. The server is not started.
func NewServer(srvCfg server.Config, cfg Config, log *logger.Logger) (*server.Server, error) {
	srvCfg.ApplyDefaults()
	if err := srvCfg.Validate(); err != nil {
		return nil, err
	}
	s := server.New(srvCfg, log)
	s.ApplyDefaults("benchhttp-fixture")
	if err := Register(s.GinEngine(), cfg); err != nil {
		return nil, err
	}
	return s, nil
}
