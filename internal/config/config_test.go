package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.ProviderTimeout() != 5*time.Second {
		t.Fatalf("default timeout = %v", cfg.ProviderTimeout())
	}
	if len(cfg.Search.Providers) != 1 || cfg.Search.Providers[0].Type != "mock" {
		t.Fatalf("default providers = %+v", cfg.Search.Providers)
	}
}

func TestLoadParsesProviders(t *testing.T) {
	raw := `
log_level: debug
search:
  provider_timeout_seconds: 2.5
  providers:
    - name: amazon
      type: rainforest
      api_key: rf-key
      enabled: true
      priority: 10
    - name: ebay
      type: ebay
      client_id: cid
      client_secret: csec
      enabled: true
      priority: 20
      options:
        marketplace_id: EBAY-US
  embedding:
    api_key: or-key
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("log level = %q", cfg.LogLevel)
	}
	if cfg.ProviderTimeout() != 2500*time.Millisecond {
		t.Errorf("timeout = %v", cfg.ProviderTimeout())
	}
	if len(cfg.Search.Providers) != 2 {
		t.Fatalf("providers = %+v", cfg.Search.Providers)
	}
	if cfg.Search.Providers[1].Options["marketplace_id"] != "EBAY-US" {
		t.Errorf("options = %v", cfg.Search.Providers[1].Options)
	}
	// Defaults fill unset embedding fields around the provided key.
	if cfg.Search.Embedding.APIKey != "or-key" || cfg.Search.Embedding.Dimensions != 1536 {
		t.Errorf("embedding = %+v", cfg.Search.Embedding)
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("search: [not a map"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}
