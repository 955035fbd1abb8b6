package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 30*time.Second, cfg.Submit.Timeout)
	assert.Equal(t, 10*time.Second, cfg.Poll.Timeout)
	assert.Equal(t, 3*time.Second, cfg.Poll.Interval)
	assert.Equal(t, 5*time.Second, cfg.Poll.RetryDelay)
	assert.Equal(t, 3, cfg.Poll.MaxRetries)
	assert.Equal(t, 10*time.Minute, cfg.Poll.MaxElapsed)
	assert.Equal(t, int64(100*1024*1024), cfg.Retrieval.MaxBytes)
	assert.Equal(t, "info", cfg.Log.Level)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
backend:
  url: https://convert.example.com/
poll:
  interval: 1s
  max_retries: 5
retrieval:
  download_dir: /tmp/media
log:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))
	t.Setenv("TUBECONV_POLL_MAX_ELAPSED", "2m")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "https://convert.example.com/", cfg.Backend.URL)
	assert.Equal(t, time.Second, cfg.Poll.Interval)
	assert.Equal(t, 5, cfg.Poll.MaxRetries)
	assert.Equal(t, 2*time.Minute, cfg.Poll.MaxElapsed)
	assert.Equal(t, "/tmp/media", cfg.Retrieval.DownloadDir)
	assert.Equal(t, 30*time.Second, cfg.Submit.Timeout)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfig_BackendURLFromEnv(t *testing.T) {
	t.Setenv("TUBECONV_BACKEND_URL", "http://10.0.0.5:8080")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "none.yaml"))
	require.Error(t, err, "an explicit config file must exist")
	assert.Nil(t, cfg)

	cfg = Default()
	base, err := ResolveBaseURL(cfg)
	require.NoError(t, err)
	assert.Equal(t, "http://10.0.0.5:8080/api", base)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"zero submit timeout", func(c *Config) { c.Submit.Timeout = 0 }, "submit.timeout"},
		{"zero poll interval", func(c *Config) { c.Poll.Interval = 0 }, "poll.interval"},
		{"negative retries", func(c *Config) { c.Poll.MaxRetries = -1 }, "poll.max_retries"},
		{"zero ceiling", func(c *Config) { c.Poll.MaxElapsed = 0 }, "poll.max_elapsed"},
		{"negative size cap", func(c *Config) { c.Retrieval.MaxBytes = -1 }, "retrieval.max_bytes"},
		{"no download dir", func(c *Config) { c.Retrieval.DownloadDir = "" }, "retrieval.download_dir"},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
		{"relative backend url", func(c *Config) { c.Backend.URL = "convert.local" }, "backend.url"},
		{"no backend at all", func(c *Config) { c.Backend.URL = ""; c.Backend.Origin = "" }, "backend"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			cfg.Backend.URL = ""
			tc.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.errMsg)
		})
	}
}

func TestResolveBaseURL(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		origin   string
		expected string
	}{
		{"explicit url wins", "https://api.example.com", "http://localhost", "https://api.example.com/api"},
		{"trailing slash trimmed", "https://api.example.com/", "", "https://api.example.com/api"},
		{"localhost origin", "", "http://localhost:3000", "http://localhost:5000/api"},
		{"loopback ip origin", "", "http://127.0.0.1", "http://localhost:5000/api"},
		{"hosted origin", "", "https://tube.example.org/app/index.html", "https://tube.example.org/api"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := &Config{}
			cfg.Backend.URL = tc.url
			cfg.Backend.Origin = tc.origin
			got, err := ResolveBaseURL(cfg)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, got)
		})
	}

	_, err := ResolveBaseURL(&Config{})
	assert.Error(t, err)
}
