package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chrismah84/ai-competitive-intel/pkg/domain"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
sources:
  - name: "OpenAI"
    url: "https://openai.com/news/"
    rules:
      container: "article.news-card"
      title: "h3"
  - name: "DeepMind"
    url: "https://deepmind.google/blog/rss.xml"
    kind: rss

fetch:
  timeout: 15s
  rate_limit: 2s

reports:
  dir: "out"

schedule:
  interval: 12h
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Len(t, cfg.Sources, 2)
	assert.Equal(t, "OpenAI", cfg.Sources[0].Name)
	assert.Equal(t, "html", cfg.Sources[0].Kind, "kind defaults to html")
	assert.Equal(t, "article.news-card", cfg.Sources[0].Rules.Container)
	assert.Equal(t, "h3", cfg.Sources[0].Rules.Title)
	assert.Equal(t, "a", cfg.Sources[0].Rules.Link, "unset selectors get defaults")
	assert.Equal(t, "rss", cfg.Sources[1].Kind)
	assert.Empty(t, cfg.Sources[1].Rules.Container, "rss sources get no selector defaults")

	assert.Equal(t, 15*time.Second, cfg.Fetch.Timeout)
	assert.Equal(t, 2*time.Second, cfg.Fetch.RateLimit)
	assert.Equal(t, "ai-competitive-intel/1.0", cfg.Fetch.UserAgent)
	assert.Equal(t, "out", cfg.Reports.Dir)
	assert.Equal(t, 12*time.Hour, cfg.Schedule.Interval)
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, `
sources:
  - name: "Anthropic"
    url: "https://www.anthropic.com/news"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 10*time.Second, cfg.Fetch.Timeout)
	assert.Equal(t, time.Second, cfg.Fetch.RateLimit)
	assert.Equal(t, "file:intel.db?cache=shared&mode=rwc&_txlock=immediate", cfg.Ledger.DSN)
	assert.Equal(t, 4, cfg.Ledger.MaxOpenConns)
	assert.Equal(t, 2, cfg.Ledger.MaxIdleConns)
	assert.Equal(t, 3600, cfg.Ledger.ConnMaxLifetime)
	assert.Equal(t, "reports", cfg.Reports.Dir)
	assert.Equal(t, 24*time.Hour, cfg.Schedule.Interval)

	r := cfg.Sources[0].Rules
	assert.Equal(t, "article", r.Container)
	assert.Equal(t, "h1,h2,h3,a", r.Title)
	assert.Equal(t, "a", r.Link)
	assert.Equal(t, "time", r.Date)
	assert.Equal(t, "p", r.Summary)
}

func TestLoad_EnvExpansion(t *testing.T) {
	t.Setenv("INTEL_DB", "file:/tmp/custom.db?mode=rwc")

	path := writeConfig(t, `
sources:
  - name: "Anthropic"
    url: "https://www.anthropic.com/news"
ledger:
  dsn: "${INTEL_DB}"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "file:/tmp/custom.db?mode=rwc", cfg.Ledger.DSN)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		yml     string
		errPart string
	}{
		{
			name:    "no sources",
			yml:     "fetch:\n  timeout: 10s\n",
			errPart: "at least one source",
		},
		{
			name:    "missing name",
			yml:     "sources:\n  - url: \"https://openai.com/news/\"\n",
			errPart: "source name is required",
		},
		{
			name: "duplicate names",
			yml: `sources:
  - name: "OpenAI"
    url: "https://openai.com/news/"
  - name: "OpenAI"
    url: "https://openai.com/blog/"
`,
			errPart: "duplicate source name",
		},
		{
			name:    "relative url",
			yml:     "sources:\n  - name: \"OpenAI\"\n    url: \"/news/\"\n",
			errPart: "url must be absolute",
		},
		{
			name: "bad kind",
			yml: `sources:
  - name: "OpenAI"
    url: "https://openai.com/news/"
    kind: json
`,
			errPart: "kind must be html or rss",
		},
		{
			name: "timeout too short",
			yml: `sources:
  - name: "OpenAI"
    url: "https://openai.com/news/"
fetch:
  timeout: 100ms
`,
			errPart: "timeout must be at least 1 second",
		},
		{
			name: "interval too short",
			yml: `sources:
  - name: "OpenAI"
    url: "https://openai.com/news/"
schedule:
  interval: 10s
`,
			errPart: "interval must be at least 1 minute",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.yml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errPart)
		})
	}
}

func TestLoad_FileMissing(t *testing.T) {
	_, err := Load("/nonexistent/config.yml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config file")
}

func TestLoad_BadYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "sources: [unclosed"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}

func TestConfig_DomainSources(t *testing.T) {
	path := writeConfig(t, `
sources:
  - name: "OpenAI"
    url: "https://openai.com/news/"
    rules:
      container: "article"
  - name: "DeepMind"
    url: "https://deepmind.google/blog/rss.xml"
    kind: rss
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	sources := cfg.DomainSources()
	require.Len(t, sources, 2)
	assert.Equal(t, "OpenAI", sources[0].Name, "configuration order preserved")
	assert.Equal(t, domain.KindHTML, sources[0].Kind)
	assert.Equal(t, "article", sources[0].Rules.Container)
	assert.Equal(t, domain.KindRSS, sources[1].Kind)
}

func TestGenerateSchema(t *testing.T) {
	schema, err := GenerateSchema()
	require.NoError(t, err)

	data, err := json.MarshalIndent(schema, "", "  ")
	require.NoError(t, err)
	assert.Contains(t, string(data), `"sources"`)
	assert.Contains(t, string(data), `"rate_limit"`)
}
