package report

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/hyperifyio/finsight/internal/pipeline"
)

// RenderMarkdown produces the human-readable companion to the JSON result.
// Metric rows are emitted in sorted name order so the document is
// deterministic for identical inputs.
func RenderMarkdown(rep pipeline.Report) string {
	var b strings.Builder

	title := strings.TrimSpace(rep.Verification.Title)
	if title == "" {
		title = rep.Document
	}
	fmt.Fprintf(&b, "# %s\n\n", title)

	b.WriteString("## Verification\n\n")
	fmt.Fprintf(&b, "- Financial report: %t\n", rep.Verification.IsFinancialReport)
	if rep.Verification.Date != "" {
		fmt.Fprintf(&b, "- Reporting date: %s\n", rep.Verification.Date)
	}
	if len(rep.Verification.Sections) > 0 {
		fmt.Fprintf(&b, "- Sections present: %s\n", strings.Join(rep.Verification.Sections, ", "))
	}
	if rep.Verification.Notes != "" {
		fmt.Fprintf(&b, "- Notes: %s\n", rep.Verification.Notes)
	}

	b.WriteString("\n## Summary\n\n")
	b.WriteString(rep.Analysis.Summary)
	b.WriteString("\n")

	if len(rep.Analysis.KeyMetrics) > 0 {
		b.WriteString("\n## Key metrics\n\n")
		names := make([]string, 0, len(rep.Analysis.KeyMetrics))
		for name := range rep.Analysis.KeyMetrics {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			m := rep.Analysis.KeyMetrics[name]
			fmt.Fprintf(&b, "- %s: %s (from: %s)\n", name, formatValue(m.Value), m.SourceLine)
		}
	}

	if len(rep.Analysis.ComputedChanges) > 0 {
		b.WriteString("\n## Computed changes\n\n")
		keys := make([]string, 0, len(rep.Analysis.ComputedChanges))
		for k := range rep.Analysis.ComputedChanges {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			c := rep.Analysis.ComputedChanges[k]
			fmt.Fprintf(&b, "- %s: %s to %s, %.2f%%\n", k, c.FromPeriod, c.ToPeriod, c.ChangePct)
		}
	}

	if len(rep.Analysis.AssumptionsAndMissingData) > 0 {
		b.WriteString("\n## Assumptions and missing data\n\n")
		for _, a := range rep.Analysis.AssumptionsAndMissingData {
			fmt.Fprintf(&b, "- %s\n", a)
		}
	}

	return b.String()
}

// formatValue renders a metric value for humans: plain decimal notation for
// numbers, the raw text for unparsed values, "n/a" when absent.
func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "n/a"
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", x)
	}
}
