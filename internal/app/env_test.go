package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadEnvFiles_LoadsKeyValues(t *testing.T) {
	unsetEnv(t, "TW_FOO")
	unsetEnv(t, "TW_BAR")

	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	content := "\n# sample dotenv file\nTW_FOO=alpha\nexport TW_BAR=\"beta gamma\"\nmalformed\n"
	if err := os.WriteFile(envPath, []byte(content), 0o600); err != nil {
		t.Fatalf("write dotenv: %v", err)
	}
	if err := LoadEnvFiles(envPath, filepath.Join(dir, "missing.env")); err != nil {
		t.Fatalf("LoadEnvFiles error: %v", err)
	}
	if got := os.Getenv("TW_FOO"); got != "alpha" {
		t.Fatalf("TW_FOO=%q, want alpha", got)
	}
	if got := os.Getenv("TW_BAR"); got != "beta gamma" {
		t.Fatalf("TW_BAR=%q, want beta gamma", got)
	}
}

// Later files override earlier ones, but real environment values win.
func TestLoadEnvFiles_Precedence(t *testing.T) {
	unsetEnv(t, "TW_K")
	t.Setenv("TW_REAL", "from-env")
	dir := t.TempDir()
	a := filepath.Join(dir, ".env")
	b := filepath.Join(dir, ".env.local")
	if err := os.WriteFile(a, []byte("TW_K=first\nTW_REAL=from-file\n"), 0o600); err != nil {
		t.Fatalf("write a: %v", err)
	}
	if err := os.WriteFile(b, []byte("TW_K=second\n"), 0o600); err != nil {
		t.Fatalf("write b: %v", err)
	}
	if err := LoadEnvFiles(a, b); err != nil {
		t.Fatalf("LoadEnvFiles error: %v", err)
	}
	if got := os.Getenv("TW_K"); got != "second" {
		t.Fatalf("override order failed: got %q, want second", got)
	}
	if got := os.Getenv("TW_REAL"); got != "from-env" {
		t.Fatalf("real env should win, got %q", got)
	}
}

func TestApplyEnvOverrides_FromEnv(t *testing.T) {
	t.Setenv("TOPICWISE_VARIANT", "live")
	t.Setenv("SERPAPI_KEY", "serp-key")
	t.Setenv("HUGGINGFACE_API_TOKEN", "hf-token")
	t.Setenv("FAILURE_POLICY", "skip")
	t.Setenv("CACHE_DIR", "/tmp/topicwise-cache")
	t.Setenv("CACHE_MAX_AGE", "7d")
	t.Setenv("CACHE_CLEAR", "yes")
	t.Setenv("VERBOSE", "0")

	cfg := DefaultConfig()
	cfg.Verbose = true
	ApplyEnvOverrides(&cfg)
	if cfg.Variant != VariantLive || cfg.SerpAPIKey != "serp-key" || cfg.HFToken != "hf-token" {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
	if cfg.FailurePolicy != "skip" || cfg.CacheDir != "/tmp/topicwise-cache" {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
	if cfg.CacheMaxAge != 7*24*time.Hour {
		t.Fatalf("CacheMaxAge=%v", cfg.CacheMaxAge)
	}
	if !cfg.CacheClear || cfg.Verbose {
		t.Fatalf("booleans not applied: clear=%v verbose=%v", cfg.CacheClear, cfg.Verbose)
	}
}

func TestApplyEnvOverrides_UnsetKeepsValues(t *testing.T) {
	unsetEnv(t, "SERPAPI_KEY")
	unsetEnv(t, "TOPICWISE_ADDR")
	cfg := DefaultConfig()
	cfg.SerpAPIKey = "from-file"
	ApplyEnvOverrides(&cfg)
	if cfg.SerpAPIKey != "from-file" || cfg.Addr != DefaultAddr {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
}

func TestParseAge(t *testing.T) {
	cases := map[string]time.Duration{"90m": 90 * time.Minute, "2d": 48 * time.Hour, " 0d ": 0}
	for in, want := range cases {
		got, err := ParseAge(in)
		if err != nil || got != want {
			t.Fatalf("%q: got %v, %v", in, got, err)
		}
	}
	if _, err := ParseAge("xd"); err == nil {
		t.Fatalf("expected error")
	}
}

func unsetEnv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	if err := os.Unsetenv(key); err != nil {
		t.Fatalf("unset %s: %v", key, err)
	}
}
