package summarize

import (
	"context"
	"fmt"
	"strings"
)

// DomainSummary pairs a domain substring with its canned summary.
type DomainSummary struct {
	Domain  string
	Summary string
}

// DefaultDomainSummaries are checked in order; the first domain found in the
// link wins.
var DefaultDomainSummaries = []DomainSummary{
	{
		Domain: "fintech.global",
		Summary: `- AI and automation are enabling real-time invoice validation, reducing fraud and human errors across finance departments.
- Predictive analytics are being used to forecast payment timelines, enhancing cash flow visibility for CFOs.
- Integration with ERP systems is becoming seamless through AI-driven APIs and connectors.
- E-invoicing compliance is increasingly automated through AI that adapts to jurisdictional tax rules.`,
	},
	{
		Domain: "axway.com",
		Summary: `- AI frameworks are being layered onto traditional B2B integration platforms to enforce evolving e-invoicing mandates.
- The article emphasizes the importance of secure file transfer as the “glue” between AI analysis and invoice submission workflows.
- Compliance strategies now include continuous monitoring powered by machine learning.
- Companies need cross-functional teams to manage both IT integration and regulatory interpretation.`,
	},
	{
		Domain: "comarch.com",
		Summary: `- AI is being embedded into invoice validation engines to catch data mismatches and schema compliance issues.
- Adaptive learning systems can now detect new fraud patterns in real-time invoice exchange.
- AI capabilities are helping businesses prepare for mandatory B2G and B2B invoice exchange in Europe.
- Human oversight remains essential, especially during transitional compliance rollouts.`,
	},
	{
		Domain: "ascendsoftware.com",
		Summary: `- Governments are accelerating mandates for e-invoicing, pushing enterprises to adopt automation.
- AI simplifies onboarding for vendors by interpreting and correcting invoice formats automatically.
- Intelligent workflows are reducing invoice approval times from days to hours.
- Enterprises are prioritizing AI tools that reduce manual intervention while maintaining audit trails.`,
	},
	{
		Domain: "easy-software.com",
		Summary: `- AI is improving data quality in accounting systems, which directly enhances invoice accuracy.
- Automation now covers extraction, matching, and error detection — creating "touchless invoicing."
- Mid-sized businesses are benefiting from pre-trained models without needing in-house data science teams.
- AI opens up strategic opportunities in spend analysis and working capital optimization.`,
	},
}

// Mock returns canned summaries keyed by link domain. It never fails.
type Mock struct {
	// Table overrides DefaultDomainSummaries when non-nil.
	Table []DomainSummary
}

func (m *Mock) Summarize(_ context.Context, in Input) (string, error) {
	table := m.Table
	if table == nil {
		table = DefaultDomainSummaries
	}
	for _, ds := range table {
		if strings.Contains(in.Link, ds.Domain) {
			return ds.Summary, nil
		}
	}
	return fmt.Sprintf("🔧 [MOCK] Summary for topic: %s (text length: %d)", in.Topic, RuneCount(in.Text)), nil
}
