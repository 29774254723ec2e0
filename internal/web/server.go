// Package web serves the research form, its JSON API and PDF export.
package web

import (
	"context"
	"embed"
	"html/template"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/topicwise/internal/present"
	"github.com/hyperifyio/topicwise/internal/research"
)

//go:embed templates/*.html
var templateFS embed.FS

// Runner runs research for a topic. *research.Pipeline satisfies it.
type Runner interface {
	Run(ctx context.Context, topic string) []research.Entry
}

// Options configure the router.
type Options struct {
	Runner  Runner
	Variant string
	// Notice is shown when a run yields no entries.
	Notice string
	// RequestsPerMinute enables per-client rate limiting on research routes when positive.
	RequestsPerMinute int
	Burst             int
}

type entryView struct {
	Link       string
	Bullets    []string
	Paragraphs []string
	Failed     bool
}

type pageView struct {
	Topic   string
	Ran     bool
	Header  string
	Notice  string
	Entries []entryView
}

type apiEntry struct {
	Link    string `json:"link"`
	Summary string `json:"summary"`
	Error   bool   `json:"error,omitempty"`
}

type apiResponse struct {
	Topic   string     `json:"topic"`
	Variant string     `json:"variant"`
	Entries []apiEntry `json:"entries"`
	Notice  string     `json:"notice,omitempty"`
}

// NewRouter builds the gin engine. ctx bounds background work such as the
// rate limiter's sweeper.
func NewRouter(ctx context.Context, opts Options) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), accessLog())
	r.SetHTMLTemplate(template.Must(template.ParseFS(templateFS, "templates/*.html")))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "variant": opts.Variant})
	})

	g := r.Group("/")
	if opts.RequestsPerMinute > 0 {
		g.Use(rateLimit(ctx, opts.RequestsPerMinute, opts.Burst))
	}
	g.GET("/", indexHandler(opts))
	g.GET("/api/research", apiHandler(opts))
	g.GET("/research.pdf", pdfHandler(opts))
	return r
}

func indexHandler(opts Options) gin.HandlerFunc {
	return func(c *gin.Context) {
		topic := strings.TrimSpace(c.Query("topic"))
		view := pageView{Topic: topic, Header: present.Header, Notice: opts.Notice}
		if topic != "" {
			view.Ran = true
			for _, e := range opts.Runner.Run(c.Request.Context(), topic) {
				view.Entries = append(view.Entries, toView(e))
			}
		}
		c.HTML(http.StatusOK, "index.html", view)
	}
}

func apiHandler(opts Options) gin.HandlerFunc {
	return func(c *gin.Context) {
		topic := strings.TrimSpace(c.Query("topic"))
		if topic == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": research.ErrNoTopic.Error()})
			return
		}
		entries := opts.Runner.Run(c.Request.Context(), topic)
		resp := apiResponse{Topic: topic, Variant: opts.Variant, Entries: make([]apiEntry, 0, len(entries))}
		for _, e := range entries {
			resp.Entries = append(resp.Entries, apiEntry{Link: e.Link, Summary: e.Summary, Error: e.Failed()})
		}
		if len(entries) == 0 {
			resp.Notice = opts.Notice
		}
		c.JSON(http.StatusOK, resp)
	}
}

func pdfHandler(opts Options) gin.HandlerFunc {
	return func(c *gin.Context) {
		topic := strings.TrimSpace(c.Query("topic"))
		if topic == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": research.ErrNoTopic.Error()})
			return
		}
		entries := opts.Runner.Run(c.Request.Context(), topic)
		c.Header("Content-Type", "application/pdf")
		c.Header("Content-Disposition", `attachment; filename="research.pdf"`)
		c.Status(http.StatusOK)
		if err := present.PDF(c.Writer, topic, entries, opts.Notice); err != nil {
			log.Error().Err(err).Str("topic", topic).Msg("pdf render failed")
		}
	}
}

// toView splits a summary into bullet items and plain paragraphs.
func toView(e research.Entry) entryView {
	v := entryView{Link: e.Link, Failed: e.Failed()}
	for _, line := range strings.Split(e.Summary, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case line == "":
		case strings.HasPrefix(line, "- "), strings.HasPrefix(line, "* "):
			v.Bullets = append(v.Bullets, strings.TrimSpace(line[2:]))
		default:
			v.Paragraphs = append(v.Paragraphs, line)
		}
	}
	return v
}
