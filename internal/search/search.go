package search

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"github.com/rs/zerolog/log"
)

// DefaultLimit is the number of links requested per topic.
const DefaultLimit = 5

// ErrMissingKey is returned by providers that need credentials which were not configured.
var ErrMissingKey = errors.New("search api key not configured")

// Result represents a single search hit from any provider.
type Result struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
	Source  string `json:"-"` // provider name for observability
}

// Provider maps a topic to an ordered list of candidate articles.
type Provider interface {
	Search(ctx context.Context, topic string, limit int) ([]Result, error)
	Name() string
}

// Links runs the provider and returns the unique result URLs in provider order.
// Any provider failure yields an empty slice; the error is only logged.
func Links(ctx context.Context, p Provider, topic string, limit int) []string {
	if p == nil {
		return []string{}
	}
	results, err := p.Search(ctx, topic, limit)
	if err != nil {
		if errors.Is(err, ErrMissingKey) {
			log.Warn().Str("provider", p.Name()).Msg("search key missing; returning no links")
		} else {
			log.Warn().Err(err).Str("provider", p.Name()).Str("topic", topic).Msg("search failed; returning no links")
		}
		return []string{}
	}
	results = Dedupe(results)
	out := make([]string, 0, len(results))
	for _, r := range results {
		out = append(out, r.URL)
	}
	log.Debug().Str("provider", p.Name()).Int("links", len(out)).Msg("search complete")
	return out
}

// Dedupe drops empty URLs and repeated URLs, keeping the first occurrence.
// URLs are compared by a normalized key (lower-cased host, no fragment, no
// tracking parameters) but returned unchanged.
func Dedupe(results []Result) []Result {
	seen := map[string]struct{}{}
	out := make([]Result, 0, len(results))
	for _, r := range results {
		if strings.TrimSpace(r.URL) == "" {
			continue
		}
		key := normalizeKey(r.URL)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, r)
	}
	return out
}

func normalizeKey(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return raw
	}
	u.Fragment = ""
	u.Host = strings.ToLower(u.Host)
	q := u.Query()
	for _, p := range []string{"utm_source", "utm_medium", "utm_campaign", "utm_term", "utm_content", "utm_id", "gclid", "fbclid"} {
		q.Del(p)
	}
	u.RawQuery = q.Encode()
	return u.String()
}
