package metrics

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/hyperifyio/finsight/internal/reader"
)

// Metric is a single extracted figure with its provenance line. Period is
// reserved for a future period-aware extractor and is always null here.
type Metric struct {
	Value      any     `json:"value"`
	Period     *string `json:"period"`
	SourceLine string  `json:"source_line"`
}

// Change is a coarse percentage delta between two reporting years.
type Change struct {
	FromPeriod string  `json:"from_period"`
	ToPeriod   string  `json:"to_period"`
	ChangePct  float64 `json:"change_pct"`
}

// Result carries everything the extractor pulled from one document. Field
// names are the wire contract with existing consumers.
type Result struct {
	Summary                   string            `json:"summary"`
	KeyMetrics                map[string]Metric `json:"key_metrics"`
	ComputedChanges           map[string]Change `json:"computed_changes"`
	AssumptionsAndMissingData []string          `json:"assumptions_and_missing_data"`
}

// MetricNames is the canonical metric vocabulary. A line is kept when it
// contains any name case-insensitively; the first name in this order that
// occurs in the line becomes the map key, so the order is load-bearing.
var MetricNames = []string{
	"Revenue",
	"Net income",
	"Operating income",
	"EPS",
	"Earnings per share",
	"Total assets",
	"Total liabilities",
	"Gross profit",
}

// SampleYoYKey is the single key under which the year-over-year sample
// change is reported.
const SampleYoYKey = "sample_yearly_number_avg"

const summaryNotFound = "No explicit revenue/earnings paragraph found in the extracted text."

const noMetricsNote = "No explicit metric lines matched common keywords (Revenue, Net income, EPS, etc.). Document may use tables/images or non-standard phrasing."

var summaryKeywordRe = regexp.MustCompile(`(?i)(revenue|net income|earnings|operating income|eps|earnings per share)`)

// Money parsing is an ordered strategy list evaluated with short-circuit on
// first hit: a comma-grouped, optionally parenthesized and $-prefixed amount
// with an optional magnitude word, then a plain decimal fallback for amounts
// without thousands separators.
var valuePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\(?\$?\d+(?:,\d{3})*(?:\.\d+)?\)?(?:\s*(?:billion|million|bn|b|m)\b)?`),
	regexp.MustCompile(`\(?\$?\d+(?:\.\d+)?\)?`),
}

var (
	billionRe = regexp.MustCompile(`(?i)\b(?:billion|bn|b)\b`)
	millionRe = regexp.MustCompile(`(?i)\b(?:million|m)\b`)
)

// yearNumberRe captures a reporting year followed within 50 characters, on
// the same line and before any other $-prefixed amount, by a number.
var yearNumberRe = regexp.MustCompile(`\b(20\d{2})\b[^\n$]{0,50}(\$?[\d,]+(?:\.\d+)?)`)

// Extract scans a text blob for named financial metrics, builds a short
// evidence-based summary and computes a sample year-over-year change. The
// query parameter is accepted for forward compatibility and does not alter
// behavior yet. Extract is pure and never fails: every path returns a
// well-formed Result.
func Extract(text, query string) Result {
	_ = query

	res := Result{
		KeyMetrics:                map[string]Metric{},
		ComputedChanges:           map[string]Change{},
		AssumptionsAndMissingData: []string{},
	}

	if reader.Unusable(text) {
		res.Summary = fmt.Sprintf("Could not extract document text. Reader output: %s", truncateRunes(text, 200))
		res.AssumptionsAndMissingData = append(res.AssumptionsAndMissingData, "No usable document text was available for metric extraction.")
		return res
	}

	res.Summary = buildSummary(text)

	// Later lines overwrite earlier ones for the same metric name; the
	// last-line-wins overwrite is a deliberate contract, not an accident
	// of map insertion.
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		name, ok := matchMetricName(line)
		if !ok {
			continue
		}
		m := Metric{SourceLine: line}
		if raw, found := findMoney(line); found {
			m.Value = Normalize(raw)
		}
		res.KeyMetrics[name] = m
	}

	if change, ok := sampleYearlyChange(text); ok {
		res.ComputedChanges[SampleYoYKey] = change
	}

	if len(res.KeyMetrics) == 0 {
		res.AssumptionsAndMissingData = append(res.AssumptionsAndMissingData, noMetricsNote)
	}

	return res
}

// buildSummary returns up to three sentences of the first paragraph that
// mentions a revenue/earnings keyword, or a fixed sentinel when none does.
func buildSummary(text string) string {
	for _, paragraph := range strings.Split(text, "\n\n") {
		if !summaryKeywordRe.MatchString(paragraph) {
			continue
		}
		sentences := splitSentences(strings.TrimSpace(paragraph))
		if len(sentences) > 3 {
			sentences = sentences[:3]
		}
		return strings.Join(sentences, " ")
	}
	return summaryNotFound
}

// splitSentences breaks a paragraph at `.`, `!` or `?` followed by
// whitespace. The terminator stays with its sentence.
func splitSentences(p string) []string {
	var out []string
	start := 0
	runes := []rune(p)
	for i := 0; i < len(runes)-1; i++ {
		switch runes[i] {
		case '.', '!', '?':
			if isSpace(runes[i+1]) {
				out = append(out, strings.TrimSpace(string(runes[start:i+1])))
				j := i + 1
				for j < len(runes) && isSpace(runes[j]) {
					j++
				}
				start = j
				i = j - 1
			}
		}
	}
	if start < len(runes) {
		out = append(out, strings.TrimSpace(string(runes[start:])))
	}
	return out
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}

// matchMetricName picks exactly one canonical metric name for a line: the
// first vocabulary entry contained in it, case-insensitively.
func matchMetricName(line string) (string, bool) {
	lower := strings.ToLower(line)
	for _, name := range MetricNames {
		if strings.Contains(lower, strings.ToLower(name)) {
			return name, true
		}
	}
	return "", false
}

// findMoney runs the value patterns in priority order and returns the first
// match. A miss on every pattern means the metric's value stays absent.
func findMoney(line string) (string, bool) {
	for _, re := range valuePatterns {
		if m := re.FindString(line); m != "" {
			return strings.TrimSpace(m), true
		}
	}
	return "", false
}

// Normalize turns a raw matched value string into a float64 where possible:
// strips `$` and thousands commas, maps the accounting parenthesis pair to a
// negative sign, and applies a magnitude suffix (billion/bn/b, million/m).
// When the remainder does not parse as a number the partially cleaned string
// is returned as-is rather than dropping the datum.
func Normalize(raw string) any {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}
	s = strings.ReplaceAll(s, "$", "")
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		s = "-" + s[1:len(s)-1]
	}
	s = strings.ReplaceAll(s, ",", "")

	multiplier := 1.0
	switch {
	case billionRe.MatchString(s):
		multiplier = 1e9
		s = billionRe.ReplaceAllString(s, "")
	case millionRe.MatchString(s):
		multiplier = 1e6
		s = millionRe.ReplaceAllString(s, "")
	}
	s = strings.TrimSpace(s)

	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f * multiplier
	}
	return s
}

// sampleYearlyChange averages all numbers found adjacent to each detected
// year, picks the two most recent distinct years, and reports the
// percentage change between their averages. This is explicitly a coarse
// sampling heuristic: the two averages are not tied to the same named
// metric.
func sampleYearlyChange(text string) (Change, bool) {
	yearValues := map[string][]float64{}
	for _, line := range strings.Split(text, "\n") {
		m := yearNumberRe.FindStringSubmatch(line)
		if len(m) != 3 {
			continue
		}
		num := strings.ReplaceAll(strings.ReplaceAll(m[2], "$", ""), ",", "")
		f, err := strconv.ParseFloat(num, 64)
		if err != nil {
			continue
		}
		yearValues[m[1]] = append(yearValues[m[1]], f)
	}
	if len(yearValues) < 2 {
		return Change{}, false
	}

	years := make([]string, 0, len(yearValues))
	for y := range yearValues {
		years = append(years, y)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(years)))

	newYear, oldYear := years[0], years[1]
	avgNew := average(yearValues[newYear])
	avgOld := average(yearValues[oldYear])
	if avgOld == 0 {
		return Change{}, false
	}
	pct := (avgNew - avgOld) / math.Abs(avgOld) * 100.0
	return Change{
		FromPeriod: oldYear,
		ToPeriod:   newYear,
		ChangePct:  math.Round(pct*100) / 100,
	}, true
}

func average(vs []float64) float64 {
	sum := 0.0
	for _, v := range vs {
		sum += v
	}
	return sum / float64(len(vs))
}

func truncateRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}
