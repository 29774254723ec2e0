// Package research runs the search, extract and summarize steps for a topic.
package research

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/topicwise/internal/extract"
	"github.com/hyperifyio/topicwise/internal/search"
	"github.com/hyperifyio/topicwise/internal/summarize"
)

// FailurePolicy decides what happens to a link whose extraction fails.
type FailurePolicy string

const (
	// Skip drops the link and logs the failure.
	Skip FailurePolicy = "skip"
	// Report keeps the link with the error text as its summary.
	Report FailurePolicy = "report"
)

// ParseFailurePolicy accepts "skip" or "report", case-insensitively.
func ParseFailurePolicy(s string) (FailurePolicy, error) {
	switch p := FailurePolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case Skip, Report:
		return p, nil
	}
	return "", fmt.Errorf("unknown failure policy %q", s)
}

// ErrNoTopic is returned by RunTopic for a blank topic.
var ErrNoTopic = errors.New("topic is empty")

// Entry is the outcome for one link.
type Entry struct {
	Link    string `json:"link"`
	Summary string `json:"summary"`
	// Err is set when Summary holds error text instead of a summary.
	Err error `json:"-"`
}

// Failed reports whether the entry carries an error instead of a summary.
func (e Entry) Failed() bool { return e.Err != nil }

// Pipeline wires a link provider, an extractor and a summarizer.
type Pipeline struct {
	Provider   search.Provider
	Extractor  extract.Extractor
	Summarizer summarize.Summarizer
	// Limit is the number of links requested; zero means search.DefaultLimit.
	Limit  int
	Policy FailurePolicy
}

// Run processes every link for topic in provider order, one at a time.
// A blank topic yields no entries and no provider call. A failure on one
// link never stops the others.
func (p *Pipeline) Run(ctx context.Context, topic string) []Entry {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil
	}
	limit := p.Limit
	if limit <= 0 {
		limit = search.DefaultLimit
	}
	links := search.Links(ctx, p.Provider, topic, limit)
	log.Info().Str("topic", topic).Int("links", len(links)).Msg("research started")

	entries := make([]Entry, 0, len(links))
	for _, link := range links {
		if ctx.Err() != nil {
			log.Warn().Err(ctx.Err()).Str("topic", topic).Msg("research cancelled")
			break
		}
		entry, ok := p.processLink(ctx, topic, link)
		if ok {
			entries = append(entries, entry)
		}
	}
	log.Info().Str("topic", topic).Int("entries", len(entries)).Msg("research finished")
	return entries
}

// RunTopic is Run with ErrNoTopic for a blank topic.
func (p *Pipeline) RunTopic(ctx context.Context, topic string) ([]Entry, error) {
	if strings.TrimSpace(topic) == "" {
		return nil, ErrNoTopic
	}
	return p.Run(ctx, topic), nil
}

func (p *Pipeline) processLink(ctx context.Context, topic, link string) (Entry, bool) {
	if p.Extractor == nil || p.Summarizer == nil {
		log.Error().Str("url", link).Msg("pipeline not configured")
		return Entry{}, false
	}
	art, err := p.Extractor.Extract(ctx, link)
	if err != nil {
		log.Warn().Err(err).Str("url", link).Msg("extraction failed")
		if p.Policy == Report {
			return Entry{Link: link, Summary: "Error extracting article: " + rootCause(err), Err: err}, true
		}
		return Entry{}, false
	}
	summary, err := p.Summarizer.Summarize(ctx, summarize.Input{Text: art.Text, Topic: topic, Link: link})
	if err != nil {
		log.Warn().Err(err).Str("url", link).Msg("summarization failed")
		return Entry{Link: link, Summary: err.Error(), Err: err}, true
	}
	return Entry{Link: link, Summary: summary}, true
}

func rootCause(err error) string {
	var xe *extract.Error
	if errors.As(err, &xe) && xe.Err != nil {
		return xe.Err.Error()
	}
	return err.Error()
}
