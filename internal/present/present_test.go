package present

import (
	"bytes"
	"strings"
	"testing"

	"github.com/hyperifyio/topicwise/internal/research"
)

func TestMarkdown_EntriesInOrder(t *testing.T) {
	entries := []research.Entry{
		{Link: "https://a.test/1", Summary: "- first"},
		{Link: "https://b.test/2", Summary: "- second\n"},
	}
	got := Markdown(entries, NoticeMock)
	want := "## 📄 Research Summary\n\n" +
		"### 🔗 Source: [https://a.test/1](https://a.test/1)\n\n- first\n\n" +
		"### 🔗 Source: [https://b.test/2](https://b.test/2)\n\n- second\n\n"
	if got != want {
		t.Fatalf("markdown mismatch:\n%s\nwant:\n%s", got, want)
	}
	if strings.Contains(got, NoticeMock) {
		t.Fatalf("notice must not appear with entries")
	}
}

func TestMarkdown_EmptyShowsOnlyNotice(t *testing.T) {
	for _, notice := range []string{NoticeMock, NoticeLive} {
		got := Markdown(nil, notice)
		if got != notice+"\n" {
			t.Fatalf("got %q", got)
		}
	}
}

func TestPDF_RendersDocument(t *testing.T) {
	var buf bytes.Buffer
	entries := []research.Entry{{Link: "https://fintech.global/x", Summary: "- AI speeds up invoice validation.\n- Second point."}}
	if err := writePDF(&buf, "invoicing", entries, NoticeMock, false); err != nil {
		t.Fatalf("pdf: %v", err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "%PDF-") {
		t.Fatalf("missing PDF header")
	}
	for _, want := range []string{"Research Summary", "https://fintech.global/x", "AI speeds up invoice validation."} {
		if !strings.Contains(out, want) {
			t.Fatalf("PDF content missing %q", want)
		}
	}
	if strings.Contains(out, NoticeMock) {
		t.Fatalf("notice must not appear with entries")
	}
}

func TestPDF_EmptyShowsNotice(t *testing.T) {
	var buf bytes.Buffer
	if err := writePDF(&buf, "t", nil, NoticeLive, false); err != nil {
		t.Fatalf("pdf: %v", err)
	}
	if !strings.Contains(buf.String(), "Please check your API keys.") {
		t.Fatalf("expected live notice in PDF")
	}
	if strings.Contains(buf.String(), "(Research Summary)") {
		t.Fatalf("header must not appear without entries")
	}
}

func TestPDF_Compressed(t *testing.T) {
	var buf bytes.Buffer
	if err := PDF(&buf, "t", []research.Entry{{Link: "https://a.test", Summary: "x"}}, NoticeMock); err != nil {
		t.Fatalf("pdf: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Fatalf("missing PDF header")
	}
}

func TestPlain_DropsEmoji(t *testing.T) {
	if got := plain("📄 Research Summary"); got != "Research Summary" {
		t.Fatalf("got %q", got)
	}
	if got := plain("“glue” — café"); got != "“glue” — café" {
		t.Fatalf("got %q", got)
	}
}
