package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 8086, cfg.Server.Port)
	assert.Equal(t, "csv", cfg.KB.Source)
	assert.Equal(t, "data/interventions.csv", cfg.KB.Path)
	assert.Equal(t, 3, cfg.Retrieval.DefaultTopK)
	assert.Equal(t, 0.3, cfg.Retrieval.MinScore)
	assert.Equal(t, 0.15, cfg.Retrieval.RoadTypeBoost)
	assert.Equal(t, 0.25, cfg.Retrieval.EnvBoostMax)
	assert.Equal(t, "memory", cfg.Cache.Driver)
	assert.False(t, cfg.Auth.Enabled)

	require.NoError(t, cfg.Validate())
}

func TestLoad_YAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
server:
  port: 9090
kb:
  source: sqlite
  path: /var/lib/intervener/kb.db
retrieval:
  default_top_k: 5
  min_score: 0.4
cache:
  driver: redis
  ttl: 2m
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.KB.Source)
	assert.Equal(t, "/var/lib/intervener/kb.db", cfg.KB.Path)
	assert.Equal(t, 5, cfg.Retrieval.DefaultTopK)
	assert.Equal(t, 0.4, cfg.Retrieval.MinScore)
	assert.Equal(t, "redis", cfg.Cache.Driver)
	assert.Equal(t, 2*time.Minute, cfg.Cache.TTL)

	// Unspecified values keep their defaults.
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 0.15, cfg.Retrieval.RoadTypeBoost)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "7000")
	t.Setenv("KB_SOURCE", "sqlite")
	t.Setenv("KB_PATH", "kb.db")
	t.Setenv("REDIS_URL", "redis://cache.internal:6379")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("API_KEY", "secret")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 7000, cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.KB.Source)
	assert.Equal(t, "kb.db", cfg.KB.Path)
	assert.Equal(t, "redis", cfg.Cache.Driver)
	assert.Equal(t, "cache.internal:6379", cfg.Cache.Redis.Addr)
	assert.Equal(t, "debug", cfg.Observability.LogLevel)
	assert.True(t, cfg.Auth.Enabled)
	assert.Equal(t, "secret", cfg.Auth.APIKey)
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad port", func(c *Config) { c.Server.Port = 0 }},
		{"bad kb source", func(c *Config) { c.KB.Source = "excel" }},
		{"empty kb path", func(c *Config) { c.KB.Path = "" }},
		{"top_k below one", func(c *Config) { c.Retrieval.DefaultTopK = 0 }},
		{"min_score above one", func(c *Config) { c.Retrieval.MinScore = 1.5 }},
		{"min_score negative", func(c *Config) { c.Retrieval.MinScore = -0.1 }},
		{"bad cache driver", func(c *Config) { c.Cache.Driver = "disk" }},
		{"auth without key", func(c *Config) { c.Auth.Enabled = true; c.Auth.APIKey = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
