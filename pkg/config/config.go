package config

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/go-pkgz/lgr"
	"gopkg.in/yaml.v3"

	"github.com/chrismah84/ai-competitive-intel/pkg/domain"
)

//go:generate go run ../../cmd/schema/main.go schema.json

// Config holds the application configuration
type Config struct {
	Sources []SourceConfig `yaml:"sources" json:"sources" jsonschema:"required,description=Sites to scrape"`

	Fetch struct {
		Timeout   time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=10s,description=HTTP request timeout"`
		UserAgent string        `yaml:"user_agent" json:"user_agent" jsonschema:"default=ai-competitive-intel/1.0,description=User agent for HTTP requests"`
		RateLimit time.Duration `yaml:"rate_limit" json:"rate_limit" jsonschema:"default=1s,description=Minimum delay between requests to the same host"`
	} `yaml:"fetch" json:"fetch" jsonschema:"description=Fetcher configuration"`

	Ledger struct {
		DSN             string `yaml:"dsn" json:"dsn" jsonschema:"default=file:intel.db?cache=shared&mode=rwc,description=Seen-posts ledger connection string"`
		MaxOpenConns    int    `yaml:"max_open_conns" json:"max_open_conns" jsonschema:"default=4,description=Maximum number of open connections"`
		MaxIdleConns    int    `yaml:"max_idle_conns" json:"max_idle_conns" jsonschema:"default=2,description=Maximum number of idle connections"`
		ConnMaxLifetime int    `yaml:"conn_max_lifetime" json:"conn_max_lifetime" jsonschema:"default=3600,description=Connection maximum lifetime in seconds"`
	} `yaml:"ledger" json:"ledger" jsonschema:"description=Ledger configuration"`

	Reports struct {
		Dir string `yaml:"dir" json:"dir" jsonschema:"default=reports,description=Directory for generated report files"`
	} `yaml:"reports" json:"reports" jsonschema:"description=Report output configuration"`

	Schedule struct {
		Interval time.Duration `yaml:"interval" json:"interval" jsonschema:"default=24h,description=Interval between pipeline runs"`
	} `yaml:"schedule" json:"schedule" jsonschema:"description=Scheduler configuration"`
}

// SourceConfig describes one site to scrape
type SourceConfig struct {
	Name  string      `yaml:"name" json:"name" jsonschema:"required,description=Source identifier used in reports and the ledger"`
	URL   string      `yaml:"url" json:"url" jsonschema:"required,description=Absolute URL of the listing page or feed"`
	Kind  string      `yaml:"kind" json:"kind" jsonschema:"default=html,enum=html,enum=rss,description=Page kind"`
	Rules RulesConfig `yaml:"rules" json:"rules" jsonschema:"description=CSS selectors for html sources"`
}

// RulesConfig holds the CSS selectors for an html source
type RulesConfig struct {
	Container string `yaml:"container" json:"container" jsonschema:"description=Selector for repeating post blocks"`
	Title     string `yaml:"title" json:"title" jsonschema:"description=Selector for the post title within a block"`
	Link      string `yaml:"link" json:"link" jsonschema:"description=Selector for the post link within a block"`
	Date      string `yaml:"date" json:"date" jsonschema:"description=Selector for the publish date within a block"`
	Summary   string `yaml:"summary" json:"summary" jsonschema:"description=Selector for the summary within a block"`
}

// Load reads configuration from a YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // file path comes from CLI flag
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	// expand environment variables
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// set defaults for fetch
	if cfg.Fetch.Timeout == 0 {
		cfg.Fetch.Timeout = 10 * time.Second
	}
	if cfg.Fetch.UserAgent == "" {
		cfg.Fetch.UserAgent = "ai-competitive-intel/1.0"
	}
	if cfg.Fetch.RateLimit == 0 {
		cfg.Fetch.RateLimit = time.Second
	}

	// set defaults for ledger
	if cfg.Ledger.DSN == "" {
		cfg.Ledger.DSN = "file:intel.db?cache=shared&mode=rwc&_txlock=immediate"
	}
	if cfg.Ledger.MaxOpenConns == 0 {
		cfg.Ledger.MaxOpenConns = 4
	}
	if cfg.Ledger.MaxIdleConns == 0 {
		cfg.Ledger.MaxIdleConns = 2
	}
	if cfg.Ledger.ConnMaxLifetime == 0 {
		cfg.Ledger.ConnMaxLifetime = 3600
	}

	// set defaults for reports and schedule
	if cfg.Reports.Dir == "" {
		cfg.Reports.Dir = "reports"
	}
	if cfg.Schedule.Interval == 0 {
		cfg.Schedule.Interval = 24 * time.Hour
	}

	// set defaults for sources
	for i := range cfg.Sources {
		if cfg.Sources[i].Kind == "" {
			cfg.Sources[i].Kind = string(domain.KindHTML)
		}
		if cfg.Sources[i].Kind == string(domain.KindHTML) {
			setRuleDefaults(&cfg.Sources[i].Rules)
		}
	}

	// validate configuration
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	// verify against embedded schema, supplementary to validate
	if err := VerifyAgainstEmbeddedSchema(&cfg); err != nil {
		lgr.Printf("[WARN] schema validation failed: %v", err)
	}

	return &cfg, nil
}

func setRuleDefaults(r *RulesConfig) {
	if r.Container == "" {
		r.Container = "article"
	}
	if r.Title == "" {
		r.Title = "h1,h2,h3,a"
	}
	if r.Link == "" {
		r.Link = "a"
	}
	if r.Date == "" {
		r.Date = "time"
	}
	if r.Summary == "" {
		r.Summary = "p"
	}
}

// validate checks configuration for correctness
func validate(cfg *Config) error {
	if len(cfg.Sources) == 0 {
		return fmt.Errorf("at least one source is required")
	}

	names := make(map[string]struct{}, len(cfg.Sources))
	for _, s := range cfg.Sources {
		if s.Name == "" {
			return fmt.Errorf("source name is required")
		}
		if _, ok := names[s.Name]; ok {
			return fmt.Errorf("duplicate source name %q", s.Name)
		}
		names[s.Name] = struct{}{}

		u, err := url.Parse(s.URL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("source %q: url must be absolute, got %q", s.Name, s.URL)
		}
		if s.Kind != string(domain.KindHTML) && s.Kind != string(domain.KindRSS) {
			return fmt.Errorf("source %q: kind must be html or rss, got %q", s.Name, s.Kind)
		}
	}

	if cfg.Fetch.Timeout < time.Second {
		return fmt.Errorf("fetch timeout must be at least 1 second")
	}
	if cfg.Fetch.RateLimit < 0 {
		return fmt.Errorf("fetch rate_limit must be non-negative")
	}
	if cfg.Schedule.Interval < time.Minute {
		return fmt.Errorf("schedule interval must be at least 1 minute")
	}

	return nil
}

// DomainSources converts configured sources to domain records, in configuration order
func (c *Config) DomainSources() []domain.Source {
	sources := make([]domain.Source, 0, len(c.Sources))
	for _, s := range c.Sources {
		sources = append(sources, domain.Source{
			Name: s.Name,
			URL:  s.URL,
			Kind: domain.SourceKind(s.Kind),
			Rules: domain.Rules{
				Container: s.Rules.Container,
				Title:     s.Rules.Title,
				Link:      s.Rules.Link,
				Date:      s.Rules.Date,
				Summary:   s.Rules.Summary,
			},
		})
	}
	return sources
}
