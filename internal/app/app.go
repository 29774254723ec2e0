package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"

	"github.com/hyperifyio/topicwise/internal/cache"
	"github.com/hyperifyio/topicwise/internal/extract"
	"github.com/hyperifyio/topicwise/internal/fetch"
	"github.com/hyperifyio/topicwise/internal/present"
	"github.com/hyperifyio/topicwise/internal/research"
	"github.com/hyperifyio/topicwise/internal/robots"
	"github.com/hyperifyio/topicwise/internal/search"
	"github.com/hyperifyio/topicwise/internal/summarize"
	"github.com/hyperifyio/topicwise/internal/web"
)

// App holds the wired pipeline for one configuration.
type App struct {
	cfg      Config
	pipeline *research.Pipeline
	notice   string
}

// New validates cfg, performs cache maintenance and wires the components
// for the configured variant.
func New(ctx context.Context, cfg Config) (*App, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	client := newHTTPClient(cfg.HTTPTimeout)

	if cfg.CacheDir != "" {
		if cfg.CacheClear {
			if err := cache.ClearDir(cfg.CacheDir); err != nil {
				log.Warn().Err(err).Str("dir", cfg.CacheDir).Msg("cache clear failed")
			}
		}
		if cfg.CacheMaxAge > 0 {
			n, err := cache.PurgeByAge(cfg.CacheDir, cfg.CacheMaxAge)
			if err != nil {
				log.Warn().Err(err).Str("dir", cfg.CacheDir).Msg("cache purge failed")
			} else if n > 0 {
				log.Info().Int("removed", n).Dur("maxAge", cfg.CacheMaxAge).Msg("cache purged")
			}
		}
	}

	summ, err := newSummarizer(ctx, cfg, client)
	if err != nil {
		return nil, err
	}
	policy := research.Skip
	notice := present.NoticeMock
	if cfg.Variant == VariantLive {
		policy = research.Report
		notice = present.NoticeLive
	}
	if cfg.FailurePolicy != "" {
		policy, _ = research.ParseFailurePolicy(cfg.FailurePolicy)
	}

	fc := &fetch.Client{HTTPClient: client, UserAgent: cfg.UserAgent, MaxAttempts: cfg.FetchAttempts}
	if cfg.RespectRobots {
		fc.Robots = &robots.Checker{HTTPClient: client, UserAgent: cfg.UserAgent}
	}
	if cfg.CacheDir != "" {
		fc.Cache = &cache.HTTPCache{Dir: filepath.Join(cfg.CacheDir, cache.PagesSubdir), StrictPerms: cfg.CacheStrictPerms}
	}

	a := &App{
		cfg: cfg,
		pipeline: &research.Pipeline{
			Provider:   newProvider(cfg, client),
			Extractor:  &extract.Readability{Fetcher: fc},
			Summarizer: summ,
			Limit:      cfg.Limit,
			Policy:     policy,
		},
		notice: notice,
	}
	log.Info().
		Str("variant", cfg.Variant).
		Str("provider", a.pipeline.Provider.Name()).
		Str("summarizer", cfg.backend()).
		Str("policy", string(policy)).
		Msg("app ready")
	return a, nil
}

func newProvider(cfg Config, client *http.Client) search.Provider {
	if cfg.Variant == VariantMock {
		return &search.Static{}
	}
	if strings.TrimSpace(cfg.SearchFile) != "" {
		return &search.FileProvider{Path: cfg.SearchFile}
	}
	return &search.SerpAPI{BaseURL: cfg.SerpAPIURL, APIKey: cfg.SerpAPIKey, HTTPClient: client, UserAgent: cfg.UserAgent}
}

func newSummarizer(ctx context.Context, cfg Config, client *http.Client) (summarize.Summarizer, error) {
	switch cfg.backend() {
	case BackendMock:
		return &summarize.Mock{}, nil
	case BackendHuggingFace:
		return &summarize.HuggingFace{
			BaseURL:       cfg.HFURL,
			Model:         cfg.HFModel,
			Token:         cfg.HFToken,
			HTTPClient:    client,
			MaxInputChars: cfg.MaxInputChars,
		}, nil
	case BackendLLM:
		oc := openai.DefaultConfig(cfg.LLMAPIKey)
		if cfg.LLMBaseURL != "" {
			oc.BaseURL = cfg.LLMBaseURL
		}
		oc.HTTPClient = client
		oai := openai.NewClientWithConfig(oc)
		preflightModels(ctx, oai, cfg.LLMModel)
		s := &summarize.LLM{
			Client:        oai,
			Model:         cfg.LLMModel,
			MaxInputChars: cfg.MaxInputChars,
		}
		if cfg.CacheDir != "" {
			s.Cache = &cache.SummaryCache{Dir: filepath.Join(cfg.CacheDir, cache.SummariesSubdir), StrictPerms: cfg.CacheStrictPerms}
		}
		return s, nil
	}
	return nil, fmt.Errorf("unknown summarizer %q", cfg.Backend)
}

// preflightModels lists the server's models as a connectivity check. Failure
// is only logged; summaries surface errors per request.
func preflightModels(ctx context.Context, client *openai.Client, model string) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	models, err := client.ListModels(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("LLM model list failed; continuing")
		return
	}
	for _, m := range models.Models {
		if m.ID == model {
			log.Info().Str("model", model).Int("count", len(models.Models)).Msg("LLM model available")
			return
		}
	}
	log.Warn().Str("model", model).Int("count", len(models.Models)).Msg("LLM model not listed by server")
}

// Notice is the message shown when a run yields no entries.
func (a *App) Notice() string { return a.notice }

// Research runs the pipeline for topic.
func (a *App) Research(ctx context.Context, topic string) []research.Entry {
	return a.pipeline.Run(ctx, topic)
}

// RunTopic runs research for topic once. A blank topic is an error.
func (a *App) RunTopic(ctx context.Context, topic string) ([]research.Entry, error) {
	return a.pipeline.RunTopic(ctx, topic)
}

// WriteMarkdown writes the Markdown rendering of entries.
func (a *App) WriteMarkdown(w io.Writer, entries []research.Entry) error {
	_, err := io.WriteString(w, present.Markdown(entries, a.notice))
	return err
}

// WritePDF writes a PDF rendering of entries.
func (a *App) WritePDF(w io.Writer, topic string, entries []research.Entry) error {
	return present.PDF(w, topic, entries, a.notice)
}

// Handler returns the web UI and API.
func (a *App) Handler(ctx context.Context) http.Handler {
	return web.NewRouter(ctx, web.Options{
		Runner:            a.pipeline,
		Variant:           a.cfg.Variant,
		Notice:            a.notice,
		RequestsPerMinute: a.cfg.RateLimit,
		Burst:             a.cfg.RateBurst,
	})
}

// Serve runs the web server until ctx is cancelled, then shuts down
// gracefully.
func (a *App) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              a.cfg.Addr,
		Handler:           a.Handler(ctx),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		log.Info().Str("addr", a.cfg.Addr).Msg("listening")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
