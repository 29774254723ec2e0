package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/topicwise/internal/app"
)

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	fl := app.DefaultConfig()
	var (
		configPath  string
		topic       string
		pdfPath     string
		cacheMaxAge string
		showVersion bool
	)
	flag.StringVar(&configPath, "config", os.Getenv("TOPICWISE_CONFIG"), "Path to YAML or JSON config file")
	flag.StringVar(&topic, "topic", "", "Run once for this topic and print Markdown to stdout instead of serving")
	flag.StringVar(&pdfPath, "pdf", "", "With -topic, also write a PDF report to this path")
	flag.BoolVar(&showVersion, "version", false, "Print version and exit")
	flag.StringVar(&fl.Variant, "variant", fl.Variant, "Variant: mock or live")
	flag.StringVar(&fl.Backend, "summarizer", "", "Summarizer: mock, huggingface or llm (default depends on variant)")
	flag.StringVar(&fl.FailurePolicy, "failure.policy", "", "What to do with links that fail extraction: skip or report (default depends on variant)")
	flag.IntVar(&fl.Limit, "limit", fl.Limit, "Number of links to request from search")
	flag.StringVar(&fl.Addr, "addr", fl.Addr, "Listen address for the web UI")
	flag.IntVar(&fl.RateLimit, "rate.limit", fl.RateLimit, "Research requests per minute per client (0 disables)")
	flag.StringVar(&fl.SerpAPIKey, "serpapi.key", "", "SerpAPI key")
	flag.StringVar(&fl.SerpAPIURL, "serpapi.url", "", "SerpAPI base URL")
	flag.StringVar(&fl.SearchFile, "search.file", "", "JSON file of results for offline search in the live variant")
	flag.StringVar(&fl.HFToken, "hf.token", "", "Hugging Face API token")
	flag.StringVar(&fl.HFURL, "hf.url", "", "Hugging Face inference base URL")
	flag.StringVar(&fl.HFModel, "hf.model", "", "Hugging Face summarization model")
	flag.IntVar(&fl.MaxInputChars, "max.inputChars", 0, "Characters of article text sent for summarization (default 1000)")
	flag.StringVar(&fl.LLMBaseURL, "llm.base", "", "OpenAI-compatible base URL")
	flag.StringVar(&fl.LLMModel, "llm.model", "", "Model name for the llm summarizer")
	flag.StringVar(&fl.LLMAPIKey, "llm.key", "", "API key for the OpenAI-compatible server")
	flag.StringVar(&fl.UserAgent, "ua", fl.UserAgent, "User-Agent for outbound requests")
	flag.DurationVar(&fl.HTTPTimeout, "http.timeout", fl.HTTPTimeout, "Timeout for each outbound request")
	flag.StringVar(&fl.CacheDir, "cache.dir", fl.CacheDir, "Cache directory path (empty disables caching)")
	flag.StringVar(&cacheMaxAge, "cache.maxAge", "", "Purge cache entries older than this at startup (e.g. 24h, 7d)")
	flag.BoolVar(&fl.CacheClear, "cache.clear", false, "Clear cache directory at startup")
	flag.BoolVar(&fl.CacheStrictPerms, "cache.strictPerms", false, "Restrict cache permissions (0700 dirs, 0600 files)")
	flag.BoolVar(&fl.RespectRobots, "robots", false, "Check robots.txt before downloading articles")
	flag.IntVar(&fl.FetchAttempts, "fetch.attempts", 0, "Article download attempts; 5xx and timeouts are retried")
	flag.BoolVar(&fl.Verbose, "v", false, "Verbose logging")
	flag.Parse()

	if showVersion {
		fmt.Printf("topicwise %s (%s, %s)\n", app.BuildVersion, app.BuildCommit, app.BuildDate)
		return
	}
	if cacheMaxAge != "" {
		d, err := app.ParseAge(cacheMaxAge)
		if err != nil {
			log.Fatal().Err(err).Msg("invalid -cache.maxAge")
		}
		fl.CacheMaxAge = d
	}

	cfg, err := loadConfig(configPath, fl)
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}
	if cfg.Verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("init app")
	}

	if strings.TrimSpace(topic) != "" {
		if err := runOnce(ctx, a, topic, pdfPath); err != nil {
			log.Error().Err(err).Msg("run failed")
			os.Exit(1)
		}
		return
	}
	log.Info().Str("version", app.BuildVersion).Str("variant", cfg.Variant).Msg("starting topicwise")
	if err := a.Serve(ctx); err != nil {
		log.Error().Err(err).Msg("server failed")
		os.Exit(1)
	}
}

// loadConfig layers defaults, the config file, dotenv files, the
// environment and finally the flags given on the command line.
func loadConfig(path string, fl app.Config) (app.Config, error) {
	cfg := app.DefaultConfig()
	if strings.TrimSpace(path) != "" {
		fc, err := app.LoadConfigFile(path)
		if err != nil {
			return cfg, fmt.Errorf("load %s: %w", path, err)
		}
		if err := app.ApplyFileConfig(&cfg, fc); err != nil {
			return cfg, err
		}
	}
	if err := app.LoadEnvFiles(".env", ".env.local"); err != nil {
		return cfg, fmt.Errorf("load dotenv: %w", err)
	}
	app.ApplyEnvOverrides(&cfg)

	flag.Visit(func(f *flag.Flag) {
		if apply, ok := explicitFlags[f.Name]; ok {
			apply(&cfg, fl)
		}
	})
	return cfg, nil
}

var explicitFlags = map[string]func(dst *app.Config, src app.Config){
	"variant":           func(d *app.Config, s app.Config) { d.Variant = s.Variant },
	"summarizer":        func(d *app.Config, s app.Config) { d.Backend = s.Backend },
	"failure.policy":    func(d *app.Config, s app.Config) { d.FailurePolicy = s.FailurePolicy },
	"limit":             func(d *app.Config, s app.Config) { d.Limit = s.Limit },
	"addr":              func(d *app.Config, s app.Config) { d.Addr = s.Addr },
	"rate.limit":        func(d *app.Config, s app.Config) { d.RateLimit = s.RateLimit },
	"serpapi.key":       func(d *app.Config, s app.Config) { d.SerpAPIKey = s.SerpAPIKey },
	"serpapi.url":       func(d *app.Config, s app.Config) { d.SerpAPIURL = s.SerpAPIURL },
	"search.file":       func(d *app.Config, s app.Config) { d.SearchFile = s.SearchFile },
	"hf.token":          func(d *app.Config, s app.Config) { d.HFToken = s.HFToken },
	"hf.url":            func(d *app.Config, s app.Config) { d.HFURL = s.HFURL },
	"hf.model":          func(d *app.Config, s app.Config) { d.HFModel = s.HFModel },
	"max.inputChars":    func(d *app.Config, s app.Config) { d.MaxInputChars = s.MaxInputChars },
	"llm.base":          func(d *app.Config, s app.Config) { d.LLMBaseURL = s.LLMBaseURL },
	"llm.model":         func(d *app.Config, s app.Config) { d.LLMModel = s.LLMModel },
	"llm.key":           func(d *app.Config, s app.Config) { d.LLMAPIKey = s.LLMAPIKey },
	"ua":                func(d *app.Config, s app.Config) { d.UserAgent = s.UserAgent },
	"http.timeout":      func(d *app.Config, s app.Config) { d.HTTPTimeout = s.HTTPTimeout },
	"cache.dir":         func(d *app.Config, s app.Config) { d.CacheDir = s.CacheDir },
	"cache.maxAge":      func(d *app.Config, s app.Config) { d.CacheMaxAge = s.CacheMaxAge },
	"cache.clear":       func(d *app.Config, s app.Config) { d.CacheClear = s.CacheClear },
	"cache.strictPerms": func(d *app.Config, s app.Config) { d.CacheStrictPerms = s.CacheStrictPerms },
	"robots":            func(d *app.Config, s app.Config) { d.RespectRobots = s.RespectRobots },
	"fetch.attempts":    func(d *app.Config, s app.Config) { d.FetchAttempts = s.FetchAttempts },
	"v":                 func(d *app.Config, s app.Config) { d.Verbose = s.Verbose },
}

func runOnce(ctx context.Context, a *app.App, topic, pdfPath string) error {
	entries, err := a.RunTopic(ctx, topic)
	if err != nil {
		return err
	}
	if err := a.WriteMarkdown(os.Stdout, entries); err != nil {
		return err
	}
	if pdfPath == "" {
		return nil
	}
	f, err := os.Create(pdfPath)
	if err != nil {
		return fmt.Errorf("create pdf: %w", err)
	}
	if err := a.WritePDF(f, topic, entries); err != nil {
		f.Close()
		return fmt.Errorf("write pdf: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	log.Info().Str("path", pdfPath).Msg("pdf written")
	return nil
}
