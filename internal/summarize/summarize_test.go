package summarize

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestTruncate_CountsCodePoints(t *testing.T) {
	s := strings.Repeat("é", 1500)
	got := Truncate(s, 1000)
	if RuneCount(got) != 1000 {
		t.Fatalf("rune count = %d, want 1000", RuneCount(got))
	}
	if Truncate("short", 1000) != "short" {
		t.Fatalf("short input should be unchanged")
	}
}

func TestTruncate_LeavesTextUnnormalized(t *testing.T) {
	// "e" + combining acute is two code points and must reach the backend as-is.
	decomposed := strings.Repeat("e\u0301", 10)
	got := Truncate(decomposed, 5)
	if got != "e\u0301e\u0301e" {
		t.Fatalf("got %q", got)
	}
	if Truncate(decomposed, 100) != decomposed {
		t.Fatalf("text under the limit must be unchanged")
	}
}

func TestMock_DomainTable(t *testing.T) {
	m := &Mock{}
	links := []string{
		"https://fintech.global/2025/02/27/x",
		"https://blog.axway.com/newsroom/y",
		"https://www.comarch.com/trade-and-services/z",
		"https://www.ascendsoftware.com/blog/einvoice",
		"https://easy-software.com/en/newsroom/ai-acct",
	}
	prefixes := []string{
		"- AI and automation are enabling real-time invoice validation",
		"- AI frameworks are being layered",
		"- AI is being embedded into invoice validation engines",
		"- Governments are accelerating mandates",
		"- AI is improving data quality",
	}
	for i, link := range links {
		got, err := m.Summarize(context.Background(), Input{Text: "x", Topic: "t", Link: link})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if want := DefaultDomainSummaries[i].Summary; got != want {
			t.Fatalf("%s: got %q, want %q", link, got, want)
		}
		if !strings.HasPrefix(got, prefixes[i]) {
			t.Fatalf("%s: table entry %d starts with %q", link, i, got)
		}
		if n := strings.Count(got, "\n- ") + 1; n != 4 {
			t.Fatalf("%s: expected 4 bullets, got %d", link, n)
		}
	}
}

func TestMock_Fallback(t *testing.T) {
	got, err := (&Mock{}).Summarize(context.Background(), Input{Text: "hello world", Topic: "invoicing", Link: "https://example.com/a"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "🔧 [MOCK] Summary for topic: invoicing (text length: 11)" {
		t.Fatalf("got %q", got)
	}
}

func TestMock_FirstDomainWins(t *testing.T) {
	m := &Mock{Table: []DomainSummary{{Domain: "a.com", Summary: "first"}, {Domain: "ba.com", Summary: "second"}}}
	got, _ := m.Summarize(context.Background(), Input{Link: "https://ba.com/"})
	if got != "first" {
		t.Fatalf("got %q, want declaration order to win", got)
	}
}

func TestError_Text(t *testing.T) {
	cases := []struct {
		err  *Error
		want string
	}{
		{&Error{Kind: KindConfig, Err: ErrMissingToken}, "Error: HUGGINGFACE_API_TOKEN is not configured"},
		{&Error{Kind: KindStatus, Status: 503, Body: `{"error":"loading"}`}, `Error 503: {"error":"loading"}`},
		{&Error{Kind: KindParse, Err: errors.New("bad shape")}, "Error parsing summary: bad shape"},
	}
	for _, c := range cases {
		if got := c.err.Error(); got != c.want {
			t.Fatalf("got %q, want %q", got, c.want)
		}
	}
}
