package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// DefaultSerpAPIURL is the public SerpAPI endpoint.
const DefaultSerpAPIURL = "https://serpapi.com"

// SerpAPI implements Provider against SerpAPI's Google engine.
type SerpAPI struct {
	BaseURL    string // defaults to DefaultSerpAPIURL
	APIKey     string
	HTTPClient *http.Client
	UserAgent  string // optional
}

func (s *SerpAPI) Name() string { return "serpapi" }

// Search issues one GET and returns the organic result links in response order.
// The limit is passed to the API as num and not enforced locally.
func (s *SerpAPI) Search(ctx context.Context, topic string, limit int) ([]Result, error) {
	if strings.TrimSpace(s.APIKey) == "" {
		return nil, ErrMissingKey
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	base := s.BaseURL
	if base == "" {
		base = DefaultSerpAPIURL
	}
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("parse serpapi url: %w", err)
	}
	if !strings.HasSuffix(u.Path, "/search") {
		u.Path = strings.TrimRight(u.Path, "/") + "/search"
	}
	q := u.Query()
	q.Set("q", topic)
	q.Set("engine", "google")
	q.Set("api_key", s.APIKey)
	q.Set("num", strconv.Itoa(limit))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	if s.UserAgent != "" {
		req.Header.Set("User-Agent", s.UserAgent)
	}
	hc := s.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 10 * time.Second}
	}
	resp, err := hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("serpapi status: %d", resp.StatusCode)
	}
	var sr serpResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("decode serpapi response: %w", err)
	}
	out := make([]Result, 0, len(sr.OrganicResults))
	for _, r := range sr.OrganicResults {
		if r.Link == "" {
			continue
		}
		out = append(out, Result{
			Title:   strings.TrimSpace(r.Title),
			URL:     r.Link,
			Snippet: strings.TrimSpace(r.Snippet),
			Source:  s.Name(),
		})
	}
	return out, nil
}

type serpResponse struct {
	OrganicResults []struct {
		Title   string `json:"title"`
		Link    string `json:"link"`
		Snippet string `json:"snippet"`
	} `json:"organic_results"`
}
