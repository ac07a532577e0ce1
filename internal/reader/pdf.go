package reader

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// fromPDF extracts text from PDF bytes using pdfcpu. pdfcpu exposes page
// content streams rather than plain text, so the streams are scanned for
// string literals shown by the text operators and stitched back together in
// page order.
func fromPDF(data []byte) (string, error) {
	tempDir, err := os.MkdirTemp("", "finsight-pdf-*")
	if err != nil {
		return "", fmt.Errorf("temp dir: %w", err)
	}
	defer os.RemoveAll(tempDir)

	tempFile := filepath.Join(tempDir, "doc.pdf")
	if err := os.WriteFile(tempFile, data, 0o644); err != nil {
		return "", fmt.Errorf("write temp pdf: %w", err)
	}

	// Validate the document before extraction so malformed input surfaces
	// as a single readable error.
	if _, err := api.ReadContextFile(tempFile); err != nil {
		return "", fmt.Errorf("read pdf: %w", err)
	}

	outDir := filepath.Join(tempDir, "pages")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", fmt.Errorf("pages dir: %w", err)
	}
	conf := model.NewDefaultConfiguration()
	if err := api.ExtractContentFile(tempFile, outDir, nil, conf); err != nil {
		return "", fmt.Errorf("extract content: %w", err)
	}

	pageTexts := map[int]string{}
	entries, _ := os.ReadDir(outDir)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		var pageNum int
		if _, err := fmt.Sscanf(entry.Name(), "Content_page_%d", &pageNum); err != nil {
			if _, err := fmt.Sscanf(entry.Name(), "page_%d", &pageNum); err != nil {
				continue
			}
		}
		content, err := os.ReadFile(filepath.Join(outDir, entry.Name()))
		if err != nil {
			continue
		}
		pageTexts[pageNum] = contentStreamText(content)
	}

	nums := make([]int, 0, len(pageTexts))
	for n := range pageTexts {
		nums = append(nums, n)
	}
	sort.Ints(nums)

	var b strings.Builder
	for _, n := range nums {
		page := strings.TrimSpace(pageTexts[n])
		if page == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(page)
	}
	return b.String(), nil
}

// contentStreamText pulls the parenthesized string literals out of a PDF
// content stream. Literals separated by a text-positioning operator (Td, TD,
// T*) start a new line; literals within one run are joined with a space.
// Escapes per the PDF string grammar are resolved; balanced nested parens
// are legal inside a literal and tracked by depth.
func contentStreamText(stream []byte) string {
	var out strings.Builder
	var token strings.Builder
	pendingBreak := false

	flushToken := func() {
		t := token.String()
		token.Reset()
		switch t {
		case "Td", "TD", "T*", "BT":
			pendingBreak = true
		}
	}

	for i := 0; i < len(stream); i++ {
		c := stream[i]
		if c != '(' {
			if isDelim(c) {
				flushToken()
			} else {
				token.WriteByte(c)
			}
			continue
		}
		flushToken()

		// String literal: consume until the matching unescaped ')'.
		var lit strings.Builder
		depth := 1
		i++
		for i < len(stream) && depth > 0 {
			c = stream[i]
			switch c {
			case '\\':
				if i+1 < len(stream) {
					i++
					lit.WriteByte(unescapePDF(stream[i]))
				}
			case '(':
				depth++
				lit.WriteByte(c)
			case ')':
				depth--
				if depth > 0 {
					lit.WriteByte(c)
				}
			default:
				lit.WriteByte(c)
			}
			i++
		}
		i-- // outer loop increments past the closing paren

		text := lit.String()
		if strings.TrimSpace(text) == "" {
			continue
		}
		if out.Len() > 0 {
			if pendingBreak {
				out.WriteByte('\n')
			} else {
				out.WriteByte(' ')
			}
		}
		pendingBreak = false
		out.WriteString(text)
	}
	return out.String()
}

func unescapePDF(c byte) byte {
	switch c {
	case 'n':
		return '\n'
	case 'r':
		return '\r'
	case 't':
		return '\t'
	default:
		return c
	}
}

func isDelim(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\f', 0, '[', ']', '<', '>', '/':
		return true
	}
	return false
}
