package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/net/html/charset"

	"github.com/hyperifyio/topicwise/internal/cache"
)

// DefaultMaxBodyBytes caps how much of a page is read.
const DefaultMaxBodyBytes = 5 << 20

// Page is a downloaded HTML document, decoded to UTF-8.
type Page struct {
	URL         string // final URL after redirects
	ContentType string
	Body        []byte
}

// StatusError reports a non-success HTTP status.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	if e.Code >= 500 {
		return fmt.Sprintf("server error: %d", e.Code)
	}
	return fmt.Sprintf("unexpected status: %d", e.Code)
}

// ErrUnsupportedContent is returned for responses that are not HTML.
var ErrUnsupportedContent = errors.New("unsupported content type")

// ErrDisallowed is returned when robots.txt forbids the URL.
var ErrDisallowed = errors.New("disallowed by robots.txt")

// RobotsChecker reports whether a URL may be fetched. *robots.Checker
// satisfies it.
type RobotsChecker interface {
	Allowed(ctx context.Context, rawURL string) (bool, error)
}

// Client wraps http.Client with timeouts, a redirect cap, an HTML content-type
// gate and an optional on-disk cache.
type Client struct {
	HTTPClient *http.Client
	UserAgent  string
	// MaxAttempts includes the initial attempt. Zero means a single attempt.
	MaxAttempts int
	// PerRequestTimeout bounds each request.
	PerRequestTimeout time.Duration
	// MaxBodyBytes caps the bytes read per response. Zero means DefaultMaxBodyBytes.
	MaxBodyBytes int64
	// Optional on-disk cache for HTTP GET bodies and headers.
	Cache *cache.HTTPCache
	// Robots, when set, is consulted before every download.
	Robots RobotsChecker

	// RedirectMaxHops caps redirect following. Zero means 5.
	RedirectMaxHops int
}

func (c *Client) getHTTPClient() *http.Client {
	if c.HTTPClient != nil {
		// Clone to attach our redirect policy without mutating caller's client
		base := *c.HTTPClient
		base.CheckRedirect = c.checkRedirectFunc()
		return &base
	}
	return &http.Client{Timeout: c.PerRequestTimeout, CheckRedirect: c.checkRedirectFunc()}
}

// Get downloads rawURL. Transient failures (5xx, deadline) are retried up to
// MaxAttempts with a short linear pause.
func (c *Client) Get(ctx context.Context, rawURL string) (*Page, error) {
	if c.Robots != nil {
		if ok, err := c.Robots.Allowed(ctx, rawURL); err == nil && !ok {
			return nil, fmt.Errorf("%w: %s", ErrDisallowed, rawURL)
		}
	}
	var etag, lastMod string
	if c.Cache != nil {
		if meta, err := c.Cache.LoadMeta(ctx, rawURL); err == nil && meta != nil {
			etag = meta.ETag
			lastMod = meta.LastModified
		}
	}
	attempts := c.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}
	var lastErr error
	for i := 0; i < attempts; i++ {
		res, err := c.tryOnce(ctx, rawURL, etag, lastMod)
		if err == nil {
			return c.finish(ctx, rawURL, res)
		}
		if !isTransient(err) || i == attempts-1 {
			return nil, err
		}
		lastErr = err
		log.Debug().Err(err).Str("url", rawURL).Int("attempt", i+1).Msg("transient fetch error; retrying")
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(i+1) * 200 * time.Millisecond):
		}
	}
	if lastErr == nil {
		lastErr = errors.New("unknown error")
	}
	return nil, lastErr
}

type attempt struct {
	status       int
	finalURL     string
	contentType  string
	etag         string
	lastModified string
	body         []byte
}

func (c *Client) finish(ctx context.Context, rawURL string, res attempt) (*Page, error) {
	body := res.body
	ct := res.contentType
	switch {
	case res.status == http.StatusNotModified && c.Cache != nil:
		cached, err := c.Cache.LoadBody(ctx, rawURL)
		if err != nil {
			return nil, fmt.Errorf("load cached body: %w", err)
		}
		if meta, err := c.Cache.LoadMeta(ctx, rawURL); err == nil && ct == "" {
			ct = meta.ContentType
		}
		body = cached
	case res.status == http.StatusOK && c.Cache != nil:
		if err := c.Cache.Save(ctx, rawURL, ct, res.etag, res.lastModified, body); err != nil {
			log.Debug().Err(err).Str("url", rawURL).Msg("cache save failed")
		}
	}
	decoded, err := toUTF8(body, ct)
	if err != nil {
		return nil, fmt.Errorf("decode body: %w", err)
	}
	final := res.finalURL
	if final == "" {
		final = rawURL
	}
	return &Page{URL: final, ContentType: ct, Body: decoded}, nil
}

func (c *Client) tryOnce(ctx context.Context, rawURL string, etag string, lastMod string) (attempt, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return attempt{}, fmt.Errorf("new request: %w", err)
	}
	if req.URL == nil || !isHTTPScheme(req.URL) {
		return attempt{}, fmt.Errorf("unsupported URL scheme: %q", rawURL)
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	if etag != "" {
		req.Header.Set("If-None-Match", etag)
	}
	if lastMod != "" {
		req.Header.Set("If-Modified-Since", lastMod)
	}

	httpClient := c.getHTTPClient()
	if c.PerRequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(req.Context(), c.PerRequestTimeout)
		defer cancel()
		req = req.WithContext(ctx)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return attempt{}, err
	}
	defer resp.Body.Close()

	res := attempt{
		status:       resp.StatusCode,
		finalURL:     resp.Request.URL.String(),
		contentType:  resp.Header.Get("Content-Type"),
		etag:         resp.Header.Get("ETag"),
		lastModified: resp.Header.Get("Last-Modified"),
	}
	if resp.StatusCode == http.StatusNotModified {
		return res, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return attempt{}, &StatusError{Code: resp.StatusCode}
	}
	if !isAllowedHTMLContentType(res.contentType) {
		return attempt{}, fmt.Errorf("%w: %s", ErrUnsupportedContent, res.contentType)
	}
	limit := c.MaxBodyBytes
	if limit <= 0 {
		limit = DefaultMaxBodyBytes
	}
	b, err := io.ReadAll(io.LimitReader(resp.Body, limit))
	if err != nil {
		return attempt{}, fmt.Errorf("read body: %w", err)
	}
	res.body = b
	return res, nil
}

func isTransient(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var se *StatusError
	return errors.As(err, &se) && se.Code >= 500
}

// toUTF8 converts body to UTF-8 using the declared or sniffed charset.
func toUTF8(body []byte, contentType string) ([]byte, error) {
	if len(body) == 0 {
		return body, nil
	}
	r, err := charset.NewReader(bytes.NewReader(body), contentType)
	if err != nil {
		return nil, err
	}
	return io.ReadAll(r)
}

func (c *Client) checkRedirectFunc() func(req *http.Request, via []*http.Request) error {
	max := c.RedirectMaxHops
	if max <= 0 {
		max = 5
	}
	return func(req *http.Request, via []*http.Request) error {
		if len(via) >= max {
			return errors.New("too many redirects")
		}
		if req.URL == nil || !isHTTPScheme(req.URL) {
			return errors.New("redirect to unsupported scheme")
		}
		return nil
	}
}

func isHTTPScheme(u *url.URL) bool {
	if u == nil {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	return scheme == "http" || scheme == "https"
}

func isAllowedHTMLContentType(ct string) bool {
	ct = strings.ToLower(strings.TrimSpace(ct))
	return strings.HasPrefix(ct, "text/html") || strings.HasPrefix(ct, "application/xhtml+xml")
}
