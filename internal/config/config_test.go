package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseDefaultConfig(t *testing.T) {
	cfg, err := parse(DefaultConfigYAML)
	if err != nil {
		t.Fatalf("failed to parse default config: %v", err)
	}

	if cfg.NewsAPI.APIKeyEnv != "NEWSAPI_KEY" {
		t.Errorf("expected api_key_env 'NEWSAPI_KEY', got %q", cfg.NewsAPI.APIKeyEnv)
	}
	if cfg.NewsAPI.Query != DefaultQuery {
		t.Errorf("expected default query, got %q", cfg.NewsAPI.Query)
	}
	if cfg.NewsAPI.PageSize != 15 {
		t.Errorf("expected page_size 15, got %d", cfg.NewsAPI.PageSize)
	}
	if cfg.Server.Port != 8000 {
		t.Errorf("expected port 8000, got %d", cfg.Server.Port)
	}
}

func TestParseMinimalConfig(t *testing.T) {
	data := []byte(`
newsapi:
  query: "bitcoin"
  page_size: 30
server:
  port: 9000
`)
	cfg, err := parse(data)
	if err != nil {
		t.Fatalf("failed to parse minimal config: %v", err)
	}

	if cfg.NewsAPI.Query != "bitcoin" {
		t.Errorf("expected query 'bitcoin', got %q", cfg.NewsAPI.Query)
	}
	if cfg.NewsAPI.PageSize != 30 {
		t.Errorf("expected page_size 30, got %d", cfg.NewsAPI.PageSize)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("expected port 9000, got %d", cfg.Server.Port)
	}
	// Defaults should still be set for unspecified fields
	if cfg.NewsAPI.Language != "en" {
		t.Errorf("expected default language 'en', got %q", cfg.NewsAPI.Language)
	}
	if cfg.Extract.TimeoutSeconds != 15 {
		t.Errorf("expected default extract timeout 15, got %d", cfg.Extract.TimeoutSeconds)
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, DefaultConfigYAML, 0o644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.NewsAPI.Language != "en" {
		t.Errorf("expected language 'en' from file, got %q", cfg.NewsAPI.Language)
	}
}

func TestGetDataDir(t *testing.T) {
	cfg := &Config{}
	if cfg.GetDataDir() == "" {
		t.Error("expected non-empty default data dir")
	}

	cfg.Output.DataDir = "/custom/path"
	if cfg.GetDataDir() != "/custom/path" {
		t.Errorf("expected '/custom/path', got %q", cfg.GetDataDir())
	}
}
