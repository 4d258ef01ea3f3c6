package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// boundEnvKeys are the environment variables Load binds; tests clear them so
// machine configuration cannot leak into assertions.
var boundEnvKeys = []string{
	"GEMINI_API_KEY", "GOOGLE_GEMINI_API_KEY", "GOOGLE_AI_API_KEY",
	"SERPER_API_KEY", "SERPER_KEY",
	"GOOGLE_CUSTOM_SEARCH_API_KEY", "GOOGLE_CSE_API_KEY", "GOOGLE_SEARCH_API_KEY",
	"GOOGLE_CUSTOM_SEARCH_ID", "GOOGLE_CSE_ID", "GOOGLE_SEARCH_ENGINE_ID",
	"DATABASE_URL", "POSTGRES_URL",
	"DEBUG", "MARQUEE_DEBUG",
	"SEARCH_PROVIDER", "DEFAULT_SEARCH_PROVIDER",
}

// clearEnv unsets every bound variable and returns a restore function.
func clearEnv() func() {
	saved := map[string]string{}
	for _, key := range boundEnvKeys {
		if value, ok := os.LookupEnv(key); ok {
			saved[key] = value
			_ = os.Unsetenv(key)
		}
	}
	return func() {
		for key, value := range saved {
			_ = os.Setenv(key, value)
		}
	}
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "marquee.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	restore := clearEnv()
	defer restore()
	Reset()
	defer Reset()

	path := writeConfigFile(t, "ai:\n  gemini:\n    api_key: test-key\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Search.DefaultProvider != "duckduckgo" {
		t.Errorf("Expected default provider duckduckgo, got %s", cfg.Search.DefaultProvider)
	}
	if cfg.Search.SnippetCount != 3 {
		t.Errorf("Expected snippet count 3, got %d", cfg.Search.SnippetCount)
	}
	if cfg.Catalog.Path != "catalog.json" {
		t.Errorf("Expected catalog path catalog.json, got %s", cfg.Catalog.Path)
	}
	if cfg.Catalog.Kind != "" {
		t.Errorf("Expected empty catalog kind, got %s", cfg.Catalog.Kind)
	}
	if cfg.Enrich.Delay != "2s" {
		t.Errorf("Expected enrich delay 2s, got %s", cfg.Enrich.Delay)
	}
	if cfg.Store.Backend != "sqlite" {
		t.Errorf("Expected store backend sqlite, got %s", cfg.Store.Backend)
	}
	if cfg.Output.Directory != "enriched" {
		t.Errorf("Expected output directory enriched, got %s", cfg.Output.Directory)
	}
	if cfg.App.DataDir != ".marquee" {
		t.Errorf("Expected data dir .marquee, got %s", cfg.App.DataDir)
	}
	if cfg.App.ConfigFile != path {
		t.Errorf("Expected config file %s, got %s", path, cfg.App.ConfigFile)
	}
}

func TestLoad_FileOverrides(t *testing.T) {
	restore := clearEnv()
	defer restore()
	Reset()
	defer Reset()

	path := writeConfigFile(t, `ai:
  gemini:
    api_key: test-key
search:
  default_provider: mock
  max_results: 5
catalog:
  kind: show
enrich:
  delay: 5s
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Search.DefaultProvider != "mock" {
		t.Errorf("Expected provider mock, got %s", cfg.Search.DefaultProvider)
	}
	if cfg.Search.MaxResults != 5 {
		t.Errorf("Expected max results 5, got %d", cfg.Search.MaxResults)
	}
	if cfg.Catalog.Kind != "show" {
		t.Errorf("Expected catalog kind show, got %s", cfg.Catalog.Kind)
	}
	if got := GetEnrichDelay(); got != 5*time.Second {
		t.Errorf("Expected enrich delay 5s, got %v", got)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	restore := clearEnv()
	defer restore()
	defer func() { _ = os.Unsetenv("GEMINI_API_KEY") }()
	_ = os.Setenv("GEMINI_API_KEY", "env-key")
	Reset()
	defer Reset()

	path := writeConfigFile(t, "ai:\n  gemini:\n    api_key: file-key\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.AI.Gemini.APIKey != "env-key" {
		t.Errorf("Expected API key env-key, got %s", cfg.AI.Gemini.APIKey)
	}
}

func TestLoad_MissingAPIKey(t *testing.T) {
	restore := clearEnv()
	defer restore()
	Reset()
	defer Reset()

	path := writeConfigFile(t, "")

	_, err := Load(path)
	if err == nil {
		t.Fatal("Expected error when no Gemini API key is configured")
	}
	if !strings.Contains(err.Error(), "Gemini API key is required") {
		t.Errorf("Expected API key error, got: %v", err)
	}
}

func TestLoad_InvalidDuration(t *testing.T) {
	restore := clearEnv()
	defer restore()
	Reset()
	defer Reset()

	path := writeConfigFile(t, `ai:
  gemini:
    api_key: test-key
enrich:
  delay: soon
`)

	_, err := Load(path)
	if err == nil {
		t.Fatal("Expected error for unparseable delay")
	}
	if !strings.Contains(err.Error(), "invalid duration") {
		t.Errorf("Expected duration error, got: %v", err)
	}
}

func TestLoad_UnknownSearchProvider(t *testing.T) {
	restore := clearEnv()
	defer restore()
	Reset()
	defer Reset()

	path := writeConfigFile(t, `ai:
  gemini:
    api_key: test-key
search:
  default_provider: altavista
`)

	_, err := Load(path)
	if err == nil {
		t.Fatal("Expected error for unknown provider")
	}
	if !strings.Contains(err.Error(), "Unknown search provider") {
		t.Errorf("Expected provider error, got: %v", err)
	}
}

func TestLoad_SerperRequiresKey(t *testing.T) {
	restore := clearEnv()
	defer restore()
	Reset()
	defer Reset()

	path := writeConfigFile(t, `ai:
  gemini:
    api_key: test-key
search:
  default_provider: serper
`)

	_, err := Load(path)
	if err == nil {
		t.Fatal("Expected error for serper without API key")
	}
	if !strings.Contains(err.Error(), "Serper requires an API key") {
		t.Errorf("Expected serper error, got: %v", err)
	}
}

func TestLoad_UnknownCatalogKind(t *testing.T) {
	restore := clearEnv()
	defer restore()
	Reset()
	defer Reset()

	path := writeConfigFile(t, `ai:
  gemini:
    api_key: test-key
catalog:
  kind: documentary
`)

	_, err := Load(path)
	if err == nil {
		t.Fatal("Expected error for unknown catalog kind")
	}
	if !strings.Contains(err.Error(), "Unknown catalog kind") {
		t.Errorf("Expected catalog kind error, got: %v", err)
	}
}

func TestLoad_PostgresRequiresURL(t *testing.T) {
	restore := clearEnv()
	defer restore()
	Reset()
	defer Reset()

	path := writeConfigFile(t, `ai:
  gemini:
    api_key: test-key
store:
  backend: postgres
`)

	_, err := Load(path)
	if err == nil {
		t.Fatal("Expected error for postgres backend without URL")
	}
	if !strings.Contains(err.Error(), "Postgres backend requires a connection string") {
		t.Errorf("Expected postgres error, got: %v", err)
	}
}

func TestGetSearchProviderConfig(t *testing.T) {
	restore := clearEnv()
	defer restore()
	Reset()
	defer Reset()

	path := writeConfigFile(t, `ai:
  gemini:
    api_key: test-key
search:
  providers:
    serper:
      api_key: serper-123
`)

	if _, err := Load(path); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	serper := GetSearchProviderConfig("serper")
	if serper["api_key"] != "serper-123" {
		t.Errorf("Expected serper api_key serper-123, got %s", serper["api_key"])
	}

	ddg := GetSearchProviderConfig("duckduckgo")
	if len(ddg) != 0 {
		t.Errorf("Expected empty config for duckduckgo, got %v", ddg)
	}
}

func TestIsValidAPIKey(t *testing.T) {
	tests := []struct {
		key   string
		valid bool
	}{
		{"", false},
		{"your-api-key", false},
		{"PLACEHOLDER", false},
		{"CHANGE_ME", false},
		{"sk-real-looking-key-123", true},
	}

	for _, tt := range tests {
		if got := isValidAPIKey(tt.key); got != tt.valid {
			t.Errorf("isValidAPIKey(%q) = %v, expected %v", tt.key, got, tt.valid)
		}
	}
}
