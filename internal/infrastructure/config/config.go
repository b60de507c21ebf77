// Package config loads hub configuration from environment variables,
// optionally overlaid by a YAML file for per-backend roots and
// credentials.
package config

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Logging   LogConfig       `yaml:"logging"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Storage   StorageConfig   `yaml:"storage"`
	Cache     CacheConfig     `yaml:"cache"`
	Anthropic AnthropicConfig `yaml:"anthropic"`
	OpenAI    OpenAIConfig    `yaml:"openai"`
	Docs      DocsConfig      `yaml:"docs"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8000" yaml:"port"`
	Host string `envconfig:"HOST" default:"0.0.0.0" yaml:"host"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info" yaml:"level"`
	Development bool   `envconfig:"LOG_DEV" default:"false" yaml:"development"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100" yaml:"requests_per_second"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200" yaml:"burst"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true" yaml:"enabled"`
}

// StorageConfig holds local backend roots. Empty roots fall back to the
// standard vault layout under the user's home.
type StorageConfig struct {
	Root        string `envconfig:"STORAGE_ROOT" yaml:"root"`
	SandboxApp  string `envconfig:"SANDBOX_APP" default:"default" yaml:"sandbox_app"`
	ArchiveRoot string `envconfig:"ARCHIVE_ROOT" yaml:"archive_root"`
}

// CacheConfig holds content cache configuration.
type CacheConfig struct {
	Dir           string `envconfig:"CACHE_DIR" yaml:"dir"`
	MemoryEntries int    `envconfig:"CACHE_MEMORY_ENTRIES" default:"10" yaml:"memory_entries"`
}

// AnthropicConfig holds the Anthropic chat backend configuration. The
// API key here is the explicit head of the credential chain; the
// credential store and the process environment are consulted when it
// is empty.
type AnthropicConfig struct {
	APIKey string `envconfig:"ANTHROPIC_KEY" yaml:"api_key"`
	Model  string `envconfig:"ANTHROPIC_MODEL" yaml:"model"`
}

// OpenAIConfig holds the OpenAI-compatible chat backend configuration.
type OpenAIConfig struct {
	BaseURL string `envconfig:"OPENAI_BASE_URL" yaml:"base_url"`
	APIKey  string `envconfig:"OPENAI_KEY" yaml:"api_key"`
	Model   string `envconfig:"OPENAI_MODEL" yaml:"model"`
}

// DocsConfig holds the remote document backend configuration.
type DocsConfig struct {
	BaseURL string `envconfig:"DOCS_BASE_URL" yaml:"base_url"`
	Token   string `envconfig:"DOCS_TOKEN" yaml:"token"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadWithFile loads from the environment, then overlays values from a
// YAML file. File values win over environment values for the fields
// the file sets.
func LoadWithFile(path string) (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config file %q: %w", path, err)
	}
	return cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "8000",
			Host: "0.0.0.0",
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
		Storage: StorageConfig{
			SandboxApp: "default",
		},
		Cache: CacheConfig{
			MemoryEntries: 10,
		},
	}
}
