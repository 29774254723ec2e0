// Package robots decides whether a URL may be fetched under the site's
// robots.txt.
package robots

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Rules is a parsed robots.txt.
type Rules struct {
	Groups []Group
}

// Group is one User-agent block.
type Group struct {
	Agents   []string
	Allow    []string
	Disallow []string
}

// Checker fetches robots.txt once per host and answers Allowed queries.
// A missing or unreachable robots.txt allows everything.
type Checker struct {
	HTTPClient *http.Client
	UserAgent  string
	// TTL is how long parsed rules are kept; zero means 30 minutes.
	TTL time.Duration

	mu    sync.Mutex
	hosts map[string]entry
}

type entry struct {
	rules   Rules
	expires time.Time
}

// Allowed reports whether rawURL may be fetched by c.UserAgent.
func (c *Checker) Allowed(ctx context.Context, rawURL string) (bool, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false, fmt.Errorf("parse url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false, fmt.Errorf("unsupported url scheme: %q", rawURL)
	}
	rules := c.rulesFor(ctx, u.Scheme+"://"+u.Host)
	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	if u.RawQuery != "" {
		path += "?" + u.RawQuery
	}
	return rules.IsAllowed(c.UserAgent, path), nil
}

func (c *Checker) rulesFor(ctx context.Context, origin string) Rules {
	c.mu.Lock()
	if c.hosts == nil {
		c.hosts = make(map[string]entry)
	}
	if e, ok := c.hosts[origin]; ok && time.Now().Before(e.expires) {
		c.mu.Unlock()
		return e.rules
	}
	c.mu.Unlock()

	rules, err := c.fetch(ctx, origin+"/robots.txt")
	if err != nil {
		log.Debug().Err(err).Str("origin", origin).Msg("robots.txt unavailable; allowing")
	}
	ttl := c.TTL
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	c.mu.Lock()
	c.hosts[origin] = entry{rules: rules, expires: time.Now().Add(ttl)}
	c.mu.Unlock()
	return rules
}

func (c *Checker) fetch(ctx context.Context, robotsURL string) (Rules, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return Rules{}, err
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	client := c.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	resp, err := client.Do(req)
	if err != nil {
		return Rules{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Rules{}, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, 512<<10))
	if err != nil {
		return Rules{}, fmt.Errorf("read robots: %w", err)
	}
	return Parse(string(data)), nil
}

// Parse reads robots.txt directives. Unknown directives are ignored.
func Parse(text string) Rules {
	var groups []Group
	var cur Group
	flush := func() {
		if len(cur.Agents) > 0 {
			groups = append(groups, cur)
		}
		cur = Group{}
	}
	scanner := bufio.NewScanner(strings.NewReader(text))
	for scanner.Scan() {
		line := scanner.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		key, val, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		val = strings.TrimSpace(val)
		switch key {
		case "user-agent":
			if len(cur.Allow) > 0 || len(cur.Disallow) > 0 {
				flush()
			}
			cur.Agents = append(cur.Agents, strings.ToLower(val))
		case "allow":
			cur.Allow = append(cur.Allow, val)
		case "disallow":
			cur.Disallow = append(cur.Disallow, val)
		}
	}
	flush()
	return Rules{Groups: groups}
}

// IsAllowed applies the group that best matches userAgent. The longest
// matching pattern wins and Allow wins ties. No match means allowed.
func (r Rules) IsAllowed(userAgent, path string) bool {
	g, ok := r.group(userAgent)
	if !ok {
		return true
	}
	best, allow := -1, true
	consider := func(patterns []string, isAllow bool) {
		for _, p := range patterns {
			if p == "" || !matches(p, path) {
				continue
			}
			score := len(strings.ReplaceAll(strings.TrimSuffix(p, "$"), "*", ""))
			if score > best || (score == best && isAllow) {
				best, allow = score, isAllow
			}
		}
	}
	consider(g.Disallow, false)
	consider(g.Allow, true)
	return allow
}

// group picks the group whose agent token is the longest substring of
// userAgent, falling back to "*".
func (r Rules) group(userAgent string) (Group, bool) {
	ua := strings.ToLower(userAgent)
	idx, best := -1, -1
	for i, g := range r.Groups {
		for _, a := range g.Agents {
			score := -1
			switch {
			case a == "*":
				score = 0
			case a != "" && strings.Contains(ua, a):
				score = len(a)
			}
			if score > best {
				idx, best = i, score
			}
		}
	}
	if idx < 0 {
		return Group{}, false
	}
	return r.Groups[idx], true
}

// matches reports whether a robots pattern matches path. '*' matches any
// run of characters and a trailing '$' anchors the end.
func matches(pattern, path string) bool {
	anchored := strings.HasSuffix(pattern, "$")
	pattern = strings.TrimSuffix(pattern, "$")
	parts := strings.Split(pattern, "*")
	if !strings.HasPrefix(path, parts[0]) {
		return false
	}
	rest := path[len(parts[0]):]
	for i, part := range parts[1:] {
		last := i == len(parts)-2
		if last && anchored {
			return strings.HasSuffix(rest, part)
		}
		j := strings.Index(rest, part)
		if j < 0 {
			return false
		}
		rest = rest[j+len(part):]
	}
	if anchored {
		return rest == ""
	}
	return true
}
