package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	readability "github.com/go-shiori/go-readability"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/topicwise/internal/fetch"
)

// ErrExtraction is the sentinel every extraction failure wraps.
var ErrExtraction = errors.New("extraction failed")

// Error reports why a link produced no article text.
type Error struct {
	URL string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("extract %s: %v", e.URL, e.Err)
}

func (e *Error) Unwrap() []error { return []error{ErrExtraction, e.Err} }

// Article is the readable content of one page.
type Article struct {
	URL      string
	Title    string
	Text     string
	SiteName string
}

// Extractor turns a link into article text.
type Extractor interface {
	Extract(ctx context.Context, link string) (Article, error)
}

// Fetcher downloads a page. *fetch.Client satisfies it.
type Fetcher interface {
	Get(ctx context.Context, rawURL string) (*fetch.Page, error)
}

// Readability downloads a page and extracts its main content with
// go-readability, falling back to Heuristic when readability finds nothing.
type Readability struct {
	Fetcher Fetcher
}

func (r *Readability) Extract(ctx context.Context, link string) (Article, error) {
	if r.Fetcher == nil {
		return Article{}, &Error{URL: link, Err: errors.New("no fetcher configured")}
	}
	page, err := r.Fetcher.Get(ctx, link)
	if err != nil {
		return Article{}, &Error{URL: link, Err: err}
	}
	art, err := FromHTML(page.URL, page.Body)
	if err != nil {
		return Article{}, &Error{URL: link, Err: err}
	}
	art.URL = link
	return art, nil
}

// FromHTML extracts an article from an already downloaded HTML body.
// pageURL resolves relative references; it may be empty.
func FromHTML(pageURL string, body []byte) (Article, error) {
	var base *url.URL
	if pageURL != "" {
		base, _ = url.Parse(pageURL)
	}
	art := Article{URL: pageURL}
	parsed, err := readability.FromReader(bytes.NewReader(body), base)
	if err == nil {
		art.Title = strings.TrimSpace(parsed.Title)
		art.SiteName = parsed.SiteName
		art.Text = tidy(parsed.TextContent)
	} else {
		log.Debug().Err(err).Str("url", pageURL).Msg("readability failed, using heuristic")
	}
	if art.Text == "" {
		title, text := Heuristic(body)
		if art.Title == "" {
			art.Title = title
		}
		art.Text = text
	}
	if art.Text == "" {
		return Article{}, errors.New("no readable text")
	}
	return art, nil
}
