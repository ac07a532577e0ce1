package classify

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/hyperifyio/finsight/internal/reader"
)

// Result is the classifier verdict plus the coarse metadata it could pull
// from the document. Field names are the wire contract with existing
// consumers and must not change.
type Result struct {
	IsFinancialReport bool     `json:"is_financial_report"`
	Title             string   `json:"title,omitempty"`
	Date              string   `json:"date,omitempty"`
	Sections          []string `json:"sections"`
	Notes             string   `json:"notes"`
}

// TriggerPhrases flag text as a financial report via case-insensitive
// substring containment. Order is irrelevant; presence of any one suffices.
var TriggerPhrases = []string{
	"quarter",
	"earnings",
	"report",
	"consolidated statements",
	"management's discussion",
	"md&a",
	"financial statements",
	"notes to the financial statements",
	"income statement",
	"balance sheet",
}

// KnownSections is the fixed header vocabulary. Detected sections are
// reported in this order, not in document order.
var KnownSections = []string{
	"Highlights",
	"Management's Discussion",
	"Management Discussion",
	"MD&A",
	"Financial Statements",
	"Notes to the Financial Statements",
	"Risk Factors",
	"Income Statement",
	"Consolidated Statements",
	"Balance Sheet",
	"Cash Flow",
}

// datePatterns is an ordered cascade; the first pattern that matches wins.
// Later entries are deliberately low-precision fallbacks, so the order is
// load-bearing.
var datePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(Q[1-4]\s?-?\s?\d{4})`),               // Q2 2025, Q2-2025
	regexp.MustCompile(`(?i)(Quarter\s?[1-4],?\s?\d{4})`),         // Quarter 2, 2025
	regexp.MustCompile(`(?i)(\b[A-Za-z]{3,9}\s+\d{1,2},\s?\d{4}\b)`), // June 30, 2025
	regexp.MustCompile(`(\d{4}-\d{2}-\d{2})`),                     // 2025-06-30
	regexp.MustCompile(`(\b\d{4}\b)`),                             // bare year
}

// Classify decides whether a text blob looks like a financial report and
// extracts title, reporting date and present section headers. It is a pure
// function: internal parse failures degrade to absent fields, never errors.
func Classify(text string) Result {
	res := Result{Sections: []string{}}

	if reader.Unusable(text) {
		res.Notes = fmt.Sprintf("Could not read file or no extractable text. Reader output: %s", truncateRunes(text, 200))
		return res
	}

	lower := strings.ToLower(text)
	for _, t := range TriggerPhrases {
		if strings.Contains(lower, t) {
			res.IsFinancialReport = true
			break
		}
	}

	if title, ok := firstTitleLine(text); ok {
		res.Title = title
	}

	for _, re := range datePatterns {
		if m := re.FindStringSubmatch(text); len(m) == 2 {
			res.Date = strings.TrimSpace(m[1])
			break
		}
	}

	for _, s := range KnownSections {
		if strings.Contains(lower, strings.ToLower(s)) {
			res.Sections = append(res.Sections, s)
		}
	}

	if !res.IsFinancialReport {
		res.Notes += "No common financial-report trigger words found. Document may not be a financial report."
	}

	return res
}

// firstTitleLine returns the first non-empty line as a title candidate when
// its trimmed length falls strictly between 3 and 200 runes. This is a
// positional heuristic, not a semantic one: boilerplate first lines will be
// mis-titled, which is an accepted limitation.
func firstTitleLine(text string) (string, bool) {
	for _, line := range strings.Split(text, "\n") {
		candidate := strings.TrimSpace(line)
		if candidate == "" {
			continue
		}
		if n := utf8.RuneCountInString(candidate); n > 3 && n < 200 {
			return candidate, true
		}
		return "", false
	}
	return "", false
}

func truncateRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max])
}
