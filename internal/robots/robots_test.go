package robots

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

const sample = `# example
User-agent: *
Disallow: /private/
Allow: /private/public-note

User-agent: topicwise
Disallow: /no-bots
Disallow: /*.pdf$
`

func TestIsAllowed(t *testing.T) {
	rules := Parse(sample)
	cases := []struct {
		ua, path string
		want     bool
	}{
		{"SomeBot/1.0", "/private/x", false},
		{"SomeBot/1.0", "/private/public-note", true},
		{"SomeBot/1.0", "/no-bots", true},
		{"topicwise/1.0 (+https://github.com/hyperifyio/topicwise)", "/no-bots/page", false},
		{"topicwise/1.0", "/private/x", true},
		{"topicwise/1.0", "/files/report.pdf", false},
		{"topicwise/1.0", "/files/report.pdf?x=1", true},
	}
	for _, c := range cases {
		if got := rules.IsAllowed(c.ua, c.path); got != c.want {
			t.Fatalf("IsAllowed(%q, %q) = %v, want %v", c.ua, c.path, got, c.want)
		}
	}
}

func TestMatches(t *testing.T) {
	cases := []struct {
		pattern, path string
		want          bool
	}{
		{"/a", "/a/b", true},
		{"/a$", "/a/b", false},
		{"/a$", "/a", true},
		{"/*/b", "/x/y/b", true},
		{"/*.html$", "/x.html", true},
		{"/*.html$", "/x.htmlx", false},
		{"/b", "/a", false},
	}
	for _, c := range cases {
		if got := matches(c.pattern, c.path); got != c.want {
			t.Fatalf("matches(%q, %q) = %v, want %v", c.pattern, c.path, got, c.want)
		}
	}
}

func TestChecker_FetchesOncePerHost(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			atomic.AddInt32(&hits, 1)
			_, _ = w.Write([]byte("User-agent: *\nDisallow: /blocked\n"))
			return
		}
	}))
	defer srv.Close()

	c := &Checker{HTTPClient: srv.Client(), UserAgent: "topicwise"}
	ok, err := c.Allowed(context.Background(), srv.URL+"/blocked/page")
	if err != nil || ok {
		t.Fatalf("blocked page allowed=%v err=%v", ok, err)
	}
	ok, err = c.Allowed(context.Background(), srv.URL+"/article")
	if err != nil || !ok {
		t.Fatalf("article allowed=%v err=%v", ok, err)
	}
	if n := atomic.LoadInt32(&hits); n != 1 {
		t.Fatalf("robots.txt fetched %d times, want 1", n)
	}
}

func TestChecker_MissingRobotsAllows(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()
	c := &Checker{HTTPClient: srv.Client()}
	ok, err := c.Allowed(context.Background(), srv.URL+"/anything")
	if err != nil || !ok {
		t.Fatalf("allowed=%v err=%v", ok, err)
	}
	if _, err := c.Allowed(context.Background(), "ftp://x.test/a"); err == nil {
		t.Fatalf("expected scheme error")
	}
}
