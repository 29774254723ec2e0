package app

import "time"

// Variants select the link provider and summarizer defaults.
const (
	VariantMock = "mock"
	VariantLive = "live"
)

// Summarizer backends.
const (
	BackendMock        = "mock"
	BackendHuggingFace = "huggingface"
	BackendLLM         = "llm"
)

const (
	DefaultAddr        = ":8501"
	DefaultCacheDir    = ".topicwise-cache"
	DefaultUserAgent   = "topicwise/1.0 (+https://github.com/hyperifyio/topicwise)"
	DefaultHTTPTimeout = 60 * time.Second
	DefaultRateLimit   = 30
	DefaultRateBurst   = 5
)

// Config holds runtime configuration for the application.
type Config struct {
	Variant string
	// Backend picks the summarizer; empty means the variant's default.
	Backend string
	// FailurePolicy is "skip" or "report"; empty means the variant's default.
	FailurePolicy string
	Limit         int

	// Search
	SerpAPIKey string
	SerpAPIURL string
	SearchFile string

	// Hugging Face
	HFToken       string
	HFURL         string
	HFModel       string
	MaxInputChars int

	// LLM
	LLMBaseURL string
	LLMModel   string
	LLMAPIKey  string

	// HTTP
	Addr        string
	UserAgent   string
	HTTPTimeout time.Duration
	RateLimit   int
	RateBurst   int
	// RespectRobots checks robots.txt before downloading articles.
	RespectRobots bool
	// FetchAttempts bounds article download attempts, retrying 5xx and
	// timeouts. Zero or one means a single attempt.
	FetchAttempts int

	// Cache
	CacheDir         string
	CacheMaxAge      time.Duration
	CacheClear       bool
	CacheStrictPerms bool

	Verbose bool
}

// DefaultConfig returns the values used when nothing else is configured.
func DefaultConfig() Config {
	return Config{
		Variant:     VariantMock,
		Limit:       5,
		Addr:        DefaultAddr,
		UserAgent:   DefaultUserAgent,
		HTTPTimeout: DefaultHTTPTimeout,
		RateLimit:   DefaultRateLimit,
		RateBurst:   DefaultRateBurst,
		CacheDir:    DefaultCacheDir,
	}
}

// backend resolves the summarizer for cfg.
func (c Config) backend() string {
	if c.Backend != "" {
		return c.Backend
	}
	if c.Variant == VariantLive {
		return BackendHuggingFace
	}
	return BackendMock
}
