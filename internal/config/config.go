// Package config loads the yaml configuration describing which search
// providers exist, their credentials, and engine-wide settings.
// Credential sourcing beyond this file (env interpolation, secret
// managers) belongs to the deployment layer.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	LogLevel string       `yaml:"log_level,omitempty"`
	Search   SearchConfig `yaml:"search"`
}

// SearchConfig configures the aggregation engine and its providers.
type SearchConfig struct {
	// ProviderTimeoutSeconds is the per-provider budget for one call.
	ProviderTimeoutSeconds float64 `yaml:"provider_timeout_seconds,omitempty"`

	Providers []ProviderConfig `yaml:"providers"`

	Embedding EmbeddingConfig `yaml:"embedding,omitempty"`
	Intent    IntentConfig    `yaml:"intent,omitempty"`
}

// ProviderConfig is one provider block. Which fields matter depends
// on Type: API-key providers use APIKey, OAuth providers use
// ClientID/ClientSecret, the vendor directory uses DBPath. Options
// carries provider-specific extras (marketplace_id, zip_code, cx,
// location_id, distance_threshold).
type ProviderConfig struct {
	Name         string            `yaml:"name"`
	Type         string            `yaml:"type"`
	APIKey       string            `yaml:"api_key,omitempty"`
	ClientID     string            `yaml:"client_id,omitempty"`
	ClientSecret string            `yaml:"client_secret,omitempty"`
	BaseURL      string            `yaml:"base_url,omitempty"`
	DBPath       string            `yaml:"db_path,omitempty"`
	Enabled      bool              `yaml:"enabled"`
	Priority     int               `yaml:"priority"`
	Options      map[string]string `yaml:"options,omitempty"`
}

// EmbeddingConfig points at an OpenAI-compatible embeddings endpoint
// used by the vendor directory's semantic matching.
type EmbeddingConfig struct {
	APIKey     string `yaml:"api_key,omitempty"`
	BaseURL    string `yaml:"base_url,omitempty"`
	Model      string `yaml:"model,omitempty"`
	Dimensions int    `yaml:"dimensions,omitempty"`
}

// IntentConfig enables optional LLM intent extraction ahead of
// dispatch. Off by default; the engine itself never calls it.
type IntentConfig struct {
	Enabled bool   `yaml:"enabled"`
	APIKey  string `yaml:"api_key,omitempty"`
	BaseURL string `yaml:"base_url,omitempty"`
	Model   string `yaml:"model,omitempty"`
}

// DefaultConfig returns the configuration used when no file exists:
// no real providers, just the deterministic mock, so a fresh checkout
// can run searches end to end.
func DefaultConfig() *Config {
	cfg := &Config{
		LogLevel: "info",
		Search: SearchConfig{
			ProviderTimeoutSeconds: 5,
			Providers: []ProviderConfig{
				{Name: "mock", Type: "mock", Enabled: true, Priority: 100},
			},
		},
	}
	cfg.applyDefaults()
	return cfg
}

// Load reads and parses the configuration file at path. A missing
// file yields the defaults rather than an error.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Search.ProviderTimeoutSeconds <= 0 {
		c.Search.ProviderTimeoutSeconds = 5
	}
	if c.Search.Embedding.Model == "" {
		c.Search.Embedding.Model = "openai/text-embedding-3-small"
	}
	if c.Search.Embedding.Dimensions <= 0 {
		c.Search.Embedding.Dimensions = 1536
	}
	if c.Search.Embedding.BaseURL == "" {
		c.Search.Embedding.BaseURL = "https://openrouter.ai/api/v1"
	}
	if c.Search.Intent.BaseURL == "" {
		c.Search.Intent.BaseURL = "https://openrouter.ai/api/v1"
	}
}

// ProviderTimeout returns the per-provider budget as a duration.
func (c *Config) ProviderTimeout() time.Duration {
	return time.Duration(c.Search.ProviderTimeoutSeconds * float64(time.Second))
}
