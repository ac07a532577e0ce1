package reader

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestUnusable(t *testing.T) {
	cases := []struct {
		text string
		want bool
	}{
		{"", true},
		{"   \n\t ", true},
		{MarkerNotFound + " File not found: x.pdf", true},
		{MarkerWarning + " Error reading PDF: bad xref", true},
		{"Quarterly earnings report", false},
	}
	for _, tc := range cases {
		if got := Unusable(tc.text); got != tc.want {
			t.Fatalf("Unusable(%q): got %v want %v", tc.text, got, tc.want)
		}
	}
}

func TestRead_MissingFile(t *testing.T) {
	got := Read(filepath.Join(t.TempDir(), "nope.pdf"))
	if !strings.HasPrefix(got, MarkerNotFound) {
		t.Fatalf("expected not-found marker, got %q", got)
	}
	if !Unusable(got) {
		t.Fatalf("marker blob should be unusable")
	}
}

func TestFromBytes_PlainTextPassthrough(t *testing.T) {
	got := FromBytes("report.txt", []byte("Acme Q2 2025\n\nRevenue $5\n"))
	if !strings.Contains(got, "Revenue $5") {
		t.Fatalf("got %q", got)
	}
	if Unusable(got) {
		t.Fatalf("plain text should be usable")
	}
}

func TestFromBytes_EmptyYieldsWarning(t *testing.T) {
	got := FromBytes("report.txt", []byte("  \n \n"))
	if !strings.HasPrefix(got, MarkerWarning) {
		t.Fatalf("expected warning marker, got %q", got)
	}
}

func TestFromBytes_CorruptPDFYieldsWarning(t *testing.T) {
	got := FromBytes("report.pdf", []byte("%PDF-1.7 not actually a pdf"))
	if !strings.HasPrefix(got, MarkerWarning) {
		t.Fatalf("expected warning marker, got %q", got)
	}
}

func TestFromBytes_HTMLTableFlattening(t *testing.T) {
	page := `<!doctype html>
<html><head><title>Filing</title></head><body>
<nav>Skip me</nav>
<h1>Acme Corp Q2 2025 Report</h1>
<p>Revenue grew again this quarter.</p>
<table>
  <tr><th>Metric</th><th>Amount</th></tr>
  <tr><td>Revenue</td><td>$1,234,000</td></tr>
  <tr><td>Net income</td><td>(500)</td></tr>
</table>
<footer>Legal footer</footer>
</body></html>`

	got := FromBytes("filing.html", []byte(page))

	if strings.Contains(got, "Skip me") || strings.Contains(got, "Legal footer") {
		t.Fatalf("boilerplate survived: %q", got)
	}
	foundRevenue := false
	for _, line := range strings.Split(got, "\n") {
		if strings.Contains(line, "Revenue") && strings.Contains(line, "$1,234,000") {
			foundRevenue = true
		}
	}
	if !foundRevenue {
		t.Fatalf("table row not flattened onto one line:\n%s", got)
	}
	if !strings.Contains(got, "Net income (500)") {
		t.Fatalf("expected joined cells, got:\n%s", got)
	}
}

func TestFromBytes_SniffsHTMLWithoutExtension(t *testing.T) {
	got := FromBytes("upload", []byte("<html><body><p>earnings release</p></body></html>"))
	if !strings.Contains(got, "earnings release") {
		t.Fatalf("got %q", got)
	}
}

func TestNormalizeText(t *testing.T) {
	in := "  Heading \r\n\r\n\r\n\r\nBody   line\twith\tspaces  \r\n"
	got := NormalizeText(in)
	want := "Heading\n\nBody line with spaces"
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestNormalizeText_FoldsCompatibilityForms(t *testing.T) {
	// Ligature "fi" and a fullwidth digit, both common in PDF output.
	got := NormalizeText("proﬁt of ５ million")
	if !strings.Contains(got, "profit") {
		t.Fatalf("ligature not folded: %q", got)
	}
	if !strings.Contains(got, "5 million") {
		t.Fatalf("fullwidth digit not folded: %q", got)
	}
}
