// Package summarize turns article text into a short bullet-point summary.
package summarize

import (
	"context"
	"fmt"
	"strings"

)

// Input is the text to summarize together with its context.
type Input struct {
	Text  string
	Topic string
	Link  string
}

// Summarizer produces a summary for one article. A returned error's
// Error() text is suitable for showing in place of the summary.
type Summarizer interface {
	Summarize(ctx context.Context, in Input) (string, error)
}

// Kind classifies summarization failures.
type Kind int

const (
	// KindConfig means a required credential or setting is missing.
	KindConfig Kind = iota
	// KindTransport means the request did not complete.
	KindTransport
	// KindStatus means the backend answered with a non-success status.
	KindStatus
	// KindParse means the backend response had an unexpected shape.
	KindParse
)

// Error is a summarization failure rendered as user-visible text.
type Error struct {
	Kind   Kind
	Status int
	Body   string
	Err    error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindStatus:
		return fmt.Sprintf("Error %d: %s", e.Status, e.Body)
	case KindParse:
		return fmt.Sprintf("Error parsing summary: %v", e.Err)
	default:
		return fmt.Sprintf("Error: %v", e.Err)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Truncate returns the first max code points of s. A non-positive max
// leaves s unchanged.
func Truncate(s string, max int) string {
	if max <= 0 {
		return s
	}
	n := 0
	for i := range s {
		if n == max {
			return s[:i]
		}
		n++
	}
	return s
}

// RuneCount reports the number of code points in s.
func RuneCount(s string) int {
	return len([]rune(s))
}

func trimmed(s string) string { return strings.TrimSpace(s) }
