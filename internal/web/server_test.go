package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/gin-gonic/gin"

	"github.com/hyperifyio/topicwise/internal/present"
	"github.com/hyperifyio/topicwise/internal/research"
)

type stubRunner struct {
	entries []research.Entry
	topics  []string
}

func (s *stubRunner) Run(_ context.Context, topic string) []research.Entry {
	s.topics = append(s.topics, topic)
	return s.entries
}

func newTestRouter(t *testing.T, r Runner, opts Options) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	opts.Runner = r
	if opts.Notice == "" {
		opts.Notice = present.NoticeMock
	}
	return NewRouter(ctx, opts)
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func TestIndex_FormOnlyWithoutTopic(t *testing.T) {
	runner := &stubRunner{}
	r := newTestRouter(t, runner, Options{})
	w := get(t, r, "/")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	doc, err := goquery.NewDocumentFromReader(w.Body)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if doc.Find("input#topic").Length() != 1 {
		t.Fatalf("expected topic input")
	}
	if doc.Find(".notice").Length() != 0 || doc.Find("#results").Length() != 0 {
		t.Fatalf("no results or notice expected before a topic is entered")
	}
	if len(runner.topics) != 0 {
		t.Fatalf("runner should not be called")
	}
}

func TestIndex_RendersEntriesInOrder(t *testing.T) {
	runner := &stubRunner{entries: []research.Entry{
		{Link: "https://a.test/1", Summary: "- one\n- two"},
		{Link: "https://b.test/2", Summary: "🔧 [MOCK] Summary for topic: invoicing (text length: 3)"},
	}}
	r := newTestRouter(t, runner, Options{})
	w := get(t, r, "/?topic=+invoicing+")
	doc, err := goquery.NewDocumentFromReader(w.Body)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := strings.TrimSpace(doc.Find("#results h2").Text()); got != present.Header {
		t.Fatalf("header = %q", got)
	}
	links := doc.Find(".entry h3 a")
	if links.Length() != 2 {
		t.Fatalf("expected 2 source links, got %d", links.Length())
	}
	if href, _ := links.Eq(0).Attr("href"); href != "https://a.test/1" {
		t.Fatalf("first href = %q", href)
	}
	if href, _ := links.Eq(1).Attr("href"); href != "https://b.test/2" {
		t.Fatalf("second href = %q", href)
	}
	if n := doc.Find(".entry").Eq(0).Find("li").Length(); n != 2 {
		t.Fatalf("expected 2 bullets, got %d", n)
	}
	if !strings.Contains(doc.Find(".entry").Eq(1).Find("p").Text(), "[MOCK]") {
		t.Fatalf("expected fallback paragraph")
	}
	if doc.Find(".notice").Length() != 0 {
		t.Fatalf("notice must not be shown with results")
	}
	if len(runner.topics) != 1 || runner.topics[0] != "invoicing" {
		t.Fatalf("runner topics = %v", runner.topics)
	}
}

func TestIndex_EmptyResultShowsOnlyNotice(t *testing.T) {
	r := newTestRouter(t, &stubRunner{}, Options{Notice: present.NoticeLive})
	w := get(t, r, "/?topic=invoicing")
	doc, err := goquery.NewDocumentFromReader(w.Body)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := strings.TrimSpace(doc.Find(".notice").Text()); got != present.NoticeLive {
		t.Fatalf("notice = %q", got)
	}
	if doc.Find("#results").Length() != 0 {
		t.Fatalf("results section must not be rendered")
	}
}

func TestAPI_Research(t *testing.T) {
	runner := &stubRunner{entries: []research.Entry{{Link: "https://a.test", Summary: "- x"}}}
	r := newTestRouter(t, runner, Options{Variant: "mock"})
	w := get(t, r, "/api/research?topic=invoicing")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp apiResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Topic != "invoicing" || resp.Variant != "mock" || len(resp.Entries) != 1 || resp.Notice != "" {
		t.Fatalf("unexpected response: %+v", resp)
	}

	if w := get(t, r, "/api/research?topic=%20"); w.Code != http.StatusBadRequest {
		t.Fatalf("blank topic status = %d", w.Code)
	}
}

func TestAPI_EmptyResultCarriesNotice(t *testing.T) {
	r := newTestRouter(t, &stubRunner{}, Options{})
	var resp apiResponse
	if err := json.Unmarshal(get(t, r, "/api/research?topic=t").Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Notice != present.NoticeMock || len(resp.Entries) != 0 {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestPDFExport(t *testing.T) {
	r := newTestRouter(t, &stubRunner{entries: []research.Entry{{Link: "https://a.test", Summary: "- x"}}}, Options{})
	w := get(t, r, "/research.pdf?topic=invoicing")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Fatalf("content type = %q", ct)
	}
	if !strings.HasPrefix(w.Body.String(), "%PDF-") {
		t.Fatalf("body is not a PDF")
	}
}

func TestHealth(t *testing.T) {
	r := newTestRouter(t, &stubRunner{}, Options{Variant: "live"})
	w := get(t, r, "/health")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"status":"ok"`) {
		t.Fatalf("health = %d %s", w.Code, w.Body.String())
	}
}

func TestRateLimit(t *testing.T) {
	r := newTestRouter(t, &stubRunner{}, Options{RequestsPerMinute: 1, Burst: 2})
	codes := []int{}
	for i := 0; i < 3; i++ {
		codes = append(codes, get(t, r, "/api/research?topic=t").Code)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Fatalf("codes = %v", codes)
	}
	if w := get(t, r, "/health"); w.Code != http.StatusOK {
		t.Fatalf("health should not be rate limited, got %d", w.Code)
	}
}
