package classify

import (
	"strings"
	"testing"
)

func TestClassify_TriggersTitleDateSections(t *testing.T) {
	text := `Tesla Q2 2025 Update

Highlights

Revenue grew this quarter.

Income Statement
Balance Sheet`

	res := Classify(text)

	if !res.IsFinancialReport {
		t.Fatalf("expected financial report verdict")
	}
	if res.Title != "Tesla Q2 2025 Update" {
		t.Fatalf("title: got %q", res.Title)
	}
	if res.Date != "Q2 2025" {
		t.Fatalf("date: got %q", res.Date)
	}
	want := []string{"Highlights", "Income Statement", "Balance Sheet"}
	if len(res.Sections) != len(want) {
		t.Fatalf("sections: got %v", res.Sections)
	}
	for i := range want {
		if res.Sections[i] != want[i] {
			t.Fatalf("sections[%d]: got %q want %q", i, res.Sections[i], want[i])
		}
	}
	if res.Notes != "" {
		t.Fatalf("notes: got %q", res.Notes)
	}
}

func TestClassify_DatePatternPriority(t *testing.T) {
	cases := []struct {
		name string
		text string
		want string
	}{
		{"quarter shorthand wins over iso", "earnings for Q2 2025 filed 2025-07-15", "Q2 2025"},
		{"hyphenated shorthand", "earnings Q2-2025", "Q2-2025"},
		{"spelled quarter", "earnings for Quarter 2, 2025", "Quarter 2, 2025"},
		{"prose date", "earnings as of June 30, 2025", "June 30, 2025"},
		{"iso date", "earnings filed 2025-06-30", "2025-06-30"},
		{"bare year fallback", "earnings during 2025 were strong", "2025"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := Classify(tc.text)
			if res.Date != tc.want {
				t.Fatalf("date: got %q want %q", res.Date, tc.want)
			}
		})
	}
}

func TestClassify_SectionOrderIsVocabularyOrder(t *testing.T) {
	// Document mentions sections in reverse of the vocabulary order.
	text := "quarterly report\nCash Flow\nBalance Sheet\nHighlights\n"
	first := Classify(text)
	second := Classify(text)

	want := []string{"Highlights", "Balance Sheet", "Cash Flow"}
	for i := range want {
		if first.Sections[i] != want[i] {
			t.Fatalf("sections[%d]: got %q want %q", i, first.Sections[i], want[i])
		}
	}
	// Order-stable across runs.
	for i := range first.Sections {
		if first.Sections[i] != second.Sections[i] {
			t.Fatalf("section order not stable at %d: %q vs %q", i, first.Sections[i], second.Sections[i])
		}
	}
}

func TestClassify_UnusableInput(t *testing.T) {
	for _, text := range []string{"", "   \n\t", "❌ File not found: data/x.pdf", "⚠️ No extractable text found in PDF."} {
		res := Classify(text)
		if res.IsFinancialReport {
			t.Fatalf("unexpected verdict for %q", text)
		}
		if res.Title != "" || res.Date != "" || len(res.Sections) != 0 {
			t.Fatalf("expected default fields for %q, got %+v", text, res)
		}
		if res.Notes == "" {
			t.Fatalf("expected diagnostic note for %q", text)
		}
	}
}

func TestClassify_UnusableNoteQuotesAtMost200Runes(t *testing.T) {
	long := "⚠️ " + strings.Repeat("x", 500)
	res := Classify(long)
	if !strings.Contains(res.Notes, "Reader output:") {
		t.Fatalf("notes: got %q", res.Notes)
	}
	// The quoted context is capped, so the note stays bounded.
	if len([]rune(res.Notes)) > 260 {
		t.Fatalf("note too long: %d runes", len([]rune(res.Notes)))
	}
}

func TestClassify_NoTrigger(t *testing.T) {
	res := Classify("A grocery list.\nMilk\nEggs\n")
	if res.IsFinancialReport {
		t.Fatalf("unexpected financial report verdict")
	}
	if !strings.Contains(res.Notes, "trigger") {
		t.Fatalf("expected trigger note, got %q", res.Notes)
	}
}

func TestClassify_TitleLengthBounds(t *testing.T) {
	if res := Classify("ab\nquarterly earnings\n"); res.Title != "" {
		t.Fatalf("short first line should not title: got %q", res.Title)
	}
	long := strings.Repeat("t", 250)
	if res := Classify(long + "\nquarterly earnings\n"); res.Title != "" {
		t.Fatalf("long first line should not title: got %q", res.Title)
	}
}

func TestClassify_Idempotent(t *testing.T) {
	text := "Acme Corp Annual Report\nFor the year 2024\nBalance Sheet\nRevenue $5"
	a := Classify(text)
	b := Classify(text)
	if a.Title != b.Title || a.Date != b.Date || a.Notes != b.Notes || a.IsFinancialReport != b.IsFinancialReport {
		t.Fatalf("results differ between runs: %+v vs %+v", a, b)
	}
}
