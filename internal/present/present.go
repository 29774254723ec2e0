// Package present renders research entries for people to read.
package present

import (
	"fmt"
	"strings"

	"github.com/hyperifyio/topicwise/internal/research"
)

const (
	Header = "📄 Research Summary"

	// NoticeMock is shown when the mock variant produced nothing.
	NoticeMock = "No summaries could be generated."
	// NoticeLive is shown when the live variant produced nothing.
	NoticeLive = "No summaries could be generated. Please check your API keys."
)

// SourceHeading is the heading shown above each summary.
func SourceHeading(link string) string {
	return fmt.Sprintf("🔗 Source: [%s](%s)", link, link)
}

// Markdown renders entries under the summary header, or only notice when
// there are none.
func Markdown(entries []research.Entry, notice string) string {
	if len(entries) == 0 {
		return notice + "\n"
	}
	var sb strings.Builder
	sb.WriteString("## ")
	sb.WriteString(Header)
	sb.WriteString("\n\n")
	for _, e := range entries {
		sb.WriteString("### ")
		sb.WriteString(SourceHeading(e.Link))
		sb.WriteString("\n\n")
		sb.WriteString(strings.TrimSpace(e.Summary))
		sb.WriteString("\n\n")
	}
	return sb.String()
}
