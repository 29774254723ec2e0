package search

import "context"

// defaultStaticLinks are the articles served by the mock variant.
var defaultStaticLinks = []string{
	"https://fintech.global/2025/02/27/how-ai-and-automation-are-transforming-e-invoicing-in-2025/",
	"https://blog.axway.com/newsroom/e-invoicing-mandates-implementing-ai-frameworks-and-a-file-transfer-secret-weapon-latest-from-the-axway-blog",
	"https://www.comarch.com/trade-and-services/data-management/news/ai-capabilities-in-the-context-of-mandatory-invoice-exchange/",
	"https://www.ascendsoftware.com/blog/einvoicing-mandates",
	"https://easy-software.com/en/newsroom/ai-in-accounting-better-data-new-opportunities-for-companies/",
}

// StaticLinks returns a copy of the mock variant's fixed article list.
func StaticLinks() []string {
	return append([]string(nil), defaultStaticLinks...)
}

// Static ignores the topic and returns a fixed list of URLs.
// A nil URLs slice means the built-in mock list.
type Static struct {
	URLs []string
}

func (s *Static) Name() string { return "static" }

// Search returns every configured URL in order. The limit is not applied:
// the list is fixed.
func (s *Static) Search(_ context.Context, _ string, _ int) ([]Result, error) {
	urls := s.URLs
	if urls == nil {
		urls = defaultStaticLinks
	}
	out := make([]Result, 0, len(urls))
	for _, u := range urls {
		out = append(out, Result{URL: u, Source: s.Name()})
	}
	return out, nil
}
