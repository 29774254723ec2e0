package app

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// ApplyEnvOverrides overrides cfg fields with environment variables that are
// set. It runs after the config file so env wins over file values, and
// before explicit flags are re-applied.
func ApplyEnvOverrides(cfg *Config) {
	if cfg == nil {
		return
	}

	setString := func(dst *string, keys ...string) {
		for _, k := range keys {
			if v := strings.TrimSpace(os.Getenv(k)); v != "" {
				*dst = v
				return
			}
		}
	}
	setString(&cfg.Variant, "TOPICWISE_VARIANT")
	setString(&cfg.Backend, "SUMMARIZER")
	setString(&cfg.FailurePolicy, "FAILURE_POLICY")
	setString(&cfg.Addr, "TOPICWISE_ADDR")

	setString(&cfg.SerpAPIKey, "SERPAPI_KEY")
	setString(&cfg.SerpAPIURL, "SERPAPI_URL")
	setString(&cfg.SearchFile, "SEARCH_FILE")

	setString(&cfg.HFToken, "HUGGINGFACE_API_TOKEN")
	setString(&cfg.HFURL, "HUGGINGFACE_URL")
	setString(&cfg.HFModel, "HUGGINGFACE_MODEL")

	setString(&cfg.LLMBaseURL, "LLM_BASE_URL")
	setString(&cfg.LLMModel, "LLM_MODEL")
	setString(&cfg.LLMAPIKey, "LLM_API_KEY")

	setString(&cfg.CacheDir, "CACHE_DIR")
	if s := os.Getenv("CACHE_MAX_AGE"); s != "" {
		if d, err := ParseAge(s); err == nil {
			cfg.CacheMaxAge = d
		}
	}
	if s := os.Getenv("HTTP_TIMEOUT"); s != "" {
		if d, err := time.ParseDuration(s); err == nil {
			cfg.HTTPTimeout = d
		}
	}
	if s := os.Getenv("RATE_LIMIT"); s != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			cfg.RateLimit = n
		}
	}
	if s := os.Getenv("FETCH_ATTEMPTS"); s != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			cfg.FetchAttempts = n
		}
	}

	// Booleans override when env present and truthy/falsey
	setBool := func(dst *bool, envKey string) {
		switch strings.ToLower(strings.TrimSpace(os.Getenv(envKey))) {
		case "1", "true", "yes", "on":
			*dst = true
		case "0", "false", "no", "off":
			*dst = false
		}
	}
	setBool(&cfg.Verbose, "VERBOSE")
	setBool(&cfg.CacheClear, "CACHE_CLEAR")
	setBool(&cfg.CacheStrictPerms, "CACHE_STRICT_PERMS")
	setBool(&cfg.RespectRobots, "RESPECT_ROBOTS")
}

// ParseAge parses a Go duration, also accepting a whole number of days
// such as "7d".
func ParseAge(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if days, ok := strings.CutSuffix(s, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("invalid age %q", s)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	return time.ParseDuration(s)
}
