package app

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadConfigFile_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "topicwise.yaml")
	content := `variant: live
failurePolicy: skip
server:
  addr: ":9000"
serpapi:
  key: yaml-key
huggingface:
  token: yaml-token
  maxInputChars: 800
cache:
  dir: /tmp/tw
  maxAge: 12h
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	fc, err := LoadConfigFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg := DefaultConfig()
	if err := ApplyFileConfig(&cfg, fc); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if cfg.Variant != VariantLive || cfg.Addr != ":9000" || cfg.SerpAPIKey != "yaml-key" || cfg.HFToken != "yaml-token" {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
	if cfg.MaxInputChars != 800 || cfg.CacheDir != "/tmp/tw" || cfg.CacheMaxAge != 12*time.Hour {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
	if cfg.RateLimit != DefaultRateLimit {
		t.Fatalf("unset file values must keep defaults, RateLimit=%d", cfg.RateLimit)
	}
}

func TestLoadConfigFile_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "topicwise.json")
	if err := os.WriteFile(path, []byte(`{"summarizer":"llm","llm":{"model":"gpt-x","base":"http://localhost:8080/v1"}}`), 0o600); err != nil {
		t.Fatal(err)
	}
	fc, err := LoadConfigFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg := DefaultConfig()
	if err := ApplyFileConfig(&cfg, fc); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if cfg.Backend != BackendLLM || cfg.LLMModel != "gpt-x" || cfg.LLMBaseURL != "http://localhost:8080/v1" {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
}

func TestApplyFileConfig_BadDuration(t *testing.T) {
	var fc FileConfig
	fc.Cache.MaxAge = "soon"
	cfg := DefaultConfig()
	if err := ApplyFileConfig(&cfg, fc); err == nil || !strings.Contains(err.Error(), "cache.maxAge") {
		t.Fatalf("expected cache.maxAge error, got %v", err)
	}
}

// Env set after the file must win over file values.
func TestConfigPrecedence_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.yaml")
	if err := os.WriteFile(path, []byte("serpapi:\n  key: file-key\nvariant: live\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("SERPAPI_KEY", "env-key")
	fc, err := LoadConfigFile(path)
	if err != nil {
		t.Fatal(err)
	}
	cfg := DefaultConfig()
	if err := ApplyFileConfig(&cfg, fc); err != nil {
		t.Fatal(err)
	}
	ApplyEnvOverrides(&cfg)
	if cfg.SerpAPIKey != "env-key" || cfg.Variant != VariantLive {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
}

func TestValidateConfig(t *testing.T) {
	if err := ValidateConfig(DefaultConfig()); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	bad := []func(*Config){
		func(c *Config) { c.Variant = "staging" },
		func(c *Config) { c.Backend = "gpt" },
		func(c *Config) { c.FailurePolicy = "retry" },
		func(c *Config) { c.Limit = -1 },
		func(c *Config) { c.Backend = BackendLLM },
	}
	for i, mutate := range bad {
		cfg := DefaultConfig()
		mutate(&cfg)
		if err := ValidateConfig(cfg); err == nil {
			t.Fatalf("case %d: expected error", i)
		}
	}
	live := DefaultConfig()
	live.Variant = VariantLive
	if err := ValidateConfig(live); err != nil {
		t.Fatalf("live without keys is valid: %v", err)
	}
}

func TestFetchAttempts_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.yaml")
	if err := os.WriteFile(path, []byte("http:\n  fetchAttempts: 2\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	fc, err := LoadConfigFile(path)
	if err != nil {
		t.Fatal(err)
	}
	cfg := DefaultConfig()
	if err := ApplyFileConfig(&cfg, fc); err != nil {
		t.Fatal(err)
	}
	if cfg.FetchAttempts != 2 {
		t.Fatalf("FetchAttempts from file = %d", cfg.FetchAttempts)
	}
	t.Setenv("FETCH_ATTEMPTS", "4")
	ApplyEnvOverrides(&cfg)
	if cfg.FetchAttempts != 4 {
		t.Fatalf("FetchAttempts from env = %d", cfg.FetchAttempts)
	}
	cfg.FetchAttempts = -1
	if err := ValidateConfig(cfg); err == nil {
		t.Fatalf("negative attempts should be rejected")
	}
}
