package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	yaml "gopkg.in/yaml.v3"

	"github.com/hyperifyio/topicwise/internal/research"
)

// FileConfig is the single-file configuration schema.
type FileConfig struct {
	Variant       string `yaml:"variant" json:"variant"`
	Summarizer    string `yaml:"summarizer" json:"summarizer"`
	FailurePolicy string `yaml:"failurePolicy" json:"failurePolicy"`
	Limit         int    `yaml:"limit" json:"limit"`
	Verbose       bool   `yaml:"verbose" json:"verbose"`

	Server struct {
		Addr      string `yaml:"addr" json:"addr"`
		RateLimit int    `yaml:"rateLimit" json:"rateLimit"`
		RateBurst int    `yaml:"rateBurst" json:"rateBurst"`
	} `yaml:"server" json:"server"`

	SerpAPI struct {
		Key string `yaml:"key" json:"key"`
		URL string `yaml:"url" json:"url"`
	} `yaml:"serpapi" json:"serpapi"`

	Search struct {
		File string `yaml:"file" json:"file"`
	} `yaml:"search" json:"search"`

	HuggingFace struct {
		Token         string `yaml:"token" json:"token"`
		URL           string `yaml:"url" json:"url"`
		Model         string `yaml:"model" json:"model"`
		MaxInputChars int    `yaml:"maxInputChars" json:"maxInputChars"`
	} `yaml:"huggingface" json:"huggingface"`

	LLM struct {
		BaseURL string `yaml:"base" json:"base"`
		Model   string `yaml:"model" json:"model"`
		APIKey  string `yaml:"key" json:"key"`
	} `yaml:"llm" json:"llm"`

	HTTP struct {
		UserAgent string `yaml:"userAgent" json:"userAgent"`
		Timeout   string `yaml:"timeout" json:"timeout"`
		Robots    bool   `yaml:"respectRobots" json:"respectRobots"`
		Attempts  int    `yaml:"fetchAttempts" json:"fetchAttempts"`
	} `yaml:"http" json:"http"`

	Cache struct {
		Dir         string `yaml:"dir" json:"dir"`
		MaxAge      string `yaml:"maxAge" json:"maxAge"`
		Clear       bool   `yaml:"clear" json:"clear"`
		StrictPerms bool   `yaml:"strictPerms" json:"strictPerms"`
	} `yaml:"cache" json:"cache"`
}

// LoadConfigFile reads YAML or JSON into FileConfig.
func LoadConfigFile(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse yaml: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse json: %w", err)
		}
	default:
		if err := yaml.Unmarshal(b, &fc); err != nil {
			if jerr := json.Unmarshal(b, &fc); jerr != nil {
				return fc, fmt.Errorf("parse config: %v (yaml) / %v (json)", err, jerr)
			}
		}
	}
	return fc, nil
}

// ApplyFileConfig overlays non-empty file values onto cfg. Call it on the
// defaults, before env and explicit flags are applied.
func ApplyFileConfig(cfg *Config, fc FileConfig) error {
	if cfg == nil {
		return nil
	}
	str := func(dst *string, v string) {
		if strings.TrimSpace(v) != "" {
			*dst = v
		}
	}
	num := func(dst *int, v int) {
		if v != 0 {
			*dst = v
		}
	}
	str(&cfg.Variant, fc.Variant)
	str(&cfg.Backend, fc.Summarizer)
	str(&cfg.FailurePolicy, fc.FailurePolicy)
	num(&cfg.Limit, fc.Limit)
	cfg.Verbose = cfg.Verbose || fc.Verbose

	str(&cfg.Addr, fc.Server.Addr)
	num(&cfg.RateLimit, fc.Server.RateLimit)
	num(&cfg.RateBurst, fc.Server.RateBurst)

	str(&cfg.SerpAPIKey, fc.SerpAPI.Key)
	str(&cfg.SerpAPIURL, fc.SerpAPI.URL)
	str(&cfg.SearchFile, fc.Search.File)

	str(&cfg.HFToken, fc.HuggingFace.Token)
	str(&cfg.HFURL, fc.HuggingFace.URL)
	str(&cfg.HFModel, fc.HuggingFace.Model)
	num(&cfg.MaxInputChars, fc.HuggingFace.MaxInputChars)

	str(&cfg.LLMBaseURL, fc.LLM.BaseURL)
	str(&cfg.LLMModel, fc.LLM.Model)
	str(&cfg.LLMAPIKey, fc.LLM.APIKey)

	str(&cfg.UserAgent, fc.HTTP.UserAgent)
	cfg.RespectRobots = cfg.RespectRobots || fc.HTTP.Robots
	num(&cfg.FetchAttempts, fc.HTTP.Attempts)
	if fc.HTTP.Timeout != "" {
		d, err := ParseAge(fc.HTTP.Timeout)
		if err != nil {
			return fmt.Errorf("config: http.timeout: %w", err)
		}
		cfg.HTTPTimeout = d
	}

	str(&cfg.CacheDir, fc.Cache.Dir)
	if fc.Cache.MaxAge != "" {
		d, err := ParseAge(fc.Cache.MaxAge)
		if err != nil {
			return fmt.Errorf("config: cache.maxAge: %w", err)
		}
		cfg.CacheMaxAge = d
	}
	cfg.CacheClear = cfg.CacheClear || fc.Cache.Clear
	cfg.CacheStrictPerms = cfg.CacheStrictPerms || fc.Cache.StrictPerms
	return nil
}

// ValidateConfig rejects unknown variants, backends and policies and
// negative limits. Missing API keys are not errors; they surface per request.
func ValidateConfig(cfg Config) error {
	switch cfg.Variant {
	case VariantMock, VariantLive:
	default:
		return fmt.Errorf("config: unknown variant %q (want %q or %q)", cfg.Variant, VariantMock, VariantLive)
	}
	switch cfg.Backend {
	case "", BackendMock, BackendHuggingFace, BackendLLM:
	default:
		return fmt.Errorf("config: unknown summarizer %q", cfg.Backend)
	}
	if cfg.FailurePolicy != "" {
		if _, err := research.ParseFailurePolicy(cfg.FailurePolicy); err != nil {
			return fmt.Errorf("config: %w", err)
		}
	}
	if cfg.Backend == BackendLLM && strings.TrimSpace(cfg.LLMModel) == "" {
		return errors.New("config: llm.model is required for the llm summarizer (or set LLM_MODEL)")
	}
	if cfg.Limit < 0 || cfg.MaxInputChars < 0 || cfg.RateLimit < 0 || cfg.RateBurst < 0 || cfg.FetchAttempts < 0 || cfg.HTTPTimeout < 0 || cfg.CacheMaxAge < 0 {
		return errors.New("config: negative limits are not allowed")
	}
	return nil
}
