// Package config provides unified configuration loading for InterveneR.
// Supports YAML files, environment variables, and programmatic overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for InterveneR services.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	KB            KBConfig            `yaml:"kb"`
	Retrieval     RetrievalConfig     `yaml:"retrieval"`
	Cache         CacheConfig         `yaml:"cache"`
	Observability ObservabilityConfig `yaml:"observability"`
	Auth          AuthConfig          `yaml:"auth"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host             string        `yaml:"host"`
	Port             int           `yaml:"port"`
	ReadTimeout      time.Duration `yaml:"read_timeout"`
	WriteTimeout     time.Duration `yaml:"write_timeout"`
	IdleTimeout      time.Duration `yaml:"idle_timeout"`
	GracefulShutdown time.Duration `yaml:"graceful_shutdown"`
}

// KBConfig holds knowledge-base source settings.
type KBConfig struct {
	// Source selects the loader: csv or sqlite.
	Source string `yaml:"source"`
	// Path points at the seed CSV or the SQLite catalogue.
	Path string `yaml:"path"`
}

// RetrievalConfig holds engine defaults and scoring tunables.
type RetrievalConfig struct {
	DefaultTopK      int     `yaml:"default_top_k"`
	MinScore         float64 `yaml:"min_score"`
	RoadTypeBoost    float64 `yaml:"road_type_boost"`
	EnvBoostMax      float64 `yaml:"env_boost_max"`
	SimilarityCutoff float64 `yaml:"similarity_cutoff"`
}

// CacheConfig holds response cache settings.
type CacheConfig struct {
	Driver     string        `yaml:"driver"` // memory or redis
	TTL        time.Duration `yaml:"ttl"`
	MaxEntries int           `yaml:"max_entries"`
	Redis      RedisConfig   `yaml:"redis"`
}

// RedisConfig holds Redis-specific settings.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

// ObservabilityConfig holds logging settings.
type ObservabilityConfig struct {
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	Enabled bool   `yaml:"enabled"`
	APIKey  string `yaml:"api_key"`
}

// Load reads configuration from a YAML file and applies environment
// overrides. An empty path loads defaults plus environment.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// DefaultConfig returns a configuration with sensible defaults for
// development.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:             "0.0.0.0",
			Port:             8086,
			ReadTimeout:      15 * time.Second,
			WriteTimeout:     15 * time.Second,
			IdleTimeout:      60 * time.Second,
			GracefulShutdown: 10 * time.Second,
		},
		KB: KBConfig{
			Source: "csv",
			Path:   "data/interventions.csv",
		},
		Retrieval: RetrievalConfig{
			DefaultTopK:      3,
			MinScore:         0.3,
			RoadTypeBoost:    0.15,
			EnvBoostMax:      0.25,
			SimilarityCutoff: 0.5,
		},
		Cache: CacheConfig{
			Driver:     "memory",
			TTL:        5 * time.Minute,
			MaxEntries: 1000,
			Redis: RedisConfig{
				Addr:     "localhost:6379",
				DB:       0,
				PoolSize: 10,
			},
		},
		Observability: ObservabilityConfig{
			LogLevel:  "info",
			LogFormat: "json",
		},
		Auth: AuthConfig{
			Enabled: false,
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.KB.Source != "csv" && c.KB.Source != "sqlite" {
		return fmt.Errorf("invalid kb source: %s", c.KB.Source)
	}
	if c.KB.Path == "" {
		return fmt.Errorf("kb path is required")
	}
	if c.Retrieval.DefaultTopK < 1 {
		return fmt.Errorf("default_top_k must be >= 1")
	}
	if c.Retrieval.MinScore < 0 || c.Retrieval.MinScore > 1 {
		return fmt.Errorf("min_score must be within [0,1]")
	}
	if c.Cache.Driver != "memory" && c.Cache.Driver != "redis" {
		return fmt.Errorf("invalid cache driver: %s", c.Cache.Driver)
	}
	if c.Auth.Enabled && c.Auth.APIKey == "" {
		return fmt.Errorf("auth enabled but api_key is empty")
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides to config.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("KB_SOURCE"); v != "" {
		cfg.KB.Source = v
	}
	if v := os.Getenv("KB_PATH"); v != "" {
		cfg.KB.Path = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.Cache.Driver = "redis"
		cfg.Cache.Redis.Addr = strings.TrimPrefix(v, "redis://")
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Observability.LogLevel = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Observability.LogFormat = v
	}
	if v := os.Getenv("API_KEY"); v != "" {
		cfg.Auth.Enabled = true
		cfg.Auth.APIKey = v
	}
}
