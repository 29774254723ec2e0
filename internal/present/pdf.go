package present

import (
	"io"
	"strings"
	"unicode"

	"github.com/jung-kurt/gofpdf"

	"github.com/hyperifyio/topicwise/internal/research"
)

// PDF writes entries as a simple A4 document with clickable source links.
// Emoji are dropped since the core fonts cannot draw them.
func PDF(w io.Writer, topic string, entries []research.Entry, notice string) error {
	return writePDF(w, topic, entries, notice, true)
}

func writePDF(w io.Writer, topic string, entries []research.Entry, notice string, compress bool) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(compress)
	pdf.SetTitle("Research Summary: "+topic, true)
	pdf.SetCreator("topicwise", true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	text := func(s string) string { return tr(plain(s)) }

	pdf.AddPage()
	if len(entries) == 0 {
		pdf.SetFont("Helvetica", "", 11)
		pdf.MultiCell(0, 5, text(notice), "", "L", false)
		return pdf.Output(w)
	}

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, text(Header), "", 1, "L", false, 0, "")
	if t := strings.TrimSpace(topic); t != "" {
		pdf.SetFont("Helvetica", "I", 10)
		pdf.CellFormat(0, 6, text("Topic: "+t), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	for _, e := range entries {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.Write(6, text("Source: "))
		pdf.SetFont("Helvetica", "U", 10)
		pdf.WriteLinkString(6, text(e.Link), e.Link)
		pdf.Ln(8)
		pdf.SetFont("Helvetica", "", 11)
		for _, line := range strings.Split(strings.TrimSpace(e.Summary), "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			pdf.MultiCell(0, 5, text(line), "", "L", false)
		}
		pdf.Ln(4)
	}
	return pdf.Output(w)
}

// plain removes pictographs and variation selectors, then trims the result.
func plain(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r > 0xFFFF || unicode.Is(unicode.So, r) || unicode.Is(unicode.Variation_Selector, r) {
			continue
		}
		b.WriteRune(r)
	}
	return strings.TrimSpace(b.String())
}
