package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	require.Equal(t, 8080, cfg.Server.Port)
	require.Equal(t, "https://www.pracuj.pl/praca", cfg.Crawl.BaseURL)
	require.Equal(t, 1500*time.Millisecond, cfg.Crawl.Delay())
	require.Equal(t, 50, cfg.Crawl.MaxOffersDefault)
	require.Equal(t, 15*time.Second, cfg.HTTP.Timeout())
	require.Equal(t, 3, cfg.HTTP.MaxRetries)
	require.Equal(t, 250*time.Millisecond, cfg.HTTP.BackoffInitial())
	require.Equal(t, 5*time.Second, cfg.HTTP.BackoffMax())
	require.False(t, cfg.Headless.Enabled)
	require.Equal(t, "sqlite", cfg.Store.Backend)
	require.Equal(t, "job_offers.db", cfg.Store.Path)
	require.True(t, cfg.Logging.Development)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9090
crawl:
  delay_ms: 500
store:
  backend: postgres
  dsn: postgres://localhost/offers
logging:
  development: false
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 9090, cfg.Server.Port)
	require.Equal(t, 500*time.Millisecond, cfg.Crawl.Delay())
	require.Equal(t, "postgres", cfg.Store.Backend)
	require.False(t, cfg.Logging.Development)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid, err := Load("")
	require.NoError(t, err)

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad port", func(c *Config) { c.Server.Port = 0 }},
		{"negative delay", func(c *Config) { c.Crawl.DelayMs = -1 }},
		{"zero retries", func(c *Config) { c.HTTP.MaxRetries = 0 }},
		{"unknown backend", func(c *Config) { c.Store.Backend = "redis" }},
		{"sqlite without path", func(c *Config) { c.Store.Path = "" }},
		{"postgres without dsn", func(c *Config) {
			c.Store.Backend = "postgres"
			c.Store.DSN = ""
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid
			tc.mutate(&cfg)
			require.Error(t, cfg.Validate())
		})
	}

	memory := valid
	memory.Store.Backend = "memory"
	memory.Store.Path = ""
	require.NoError(t, memory.Validate())
}
