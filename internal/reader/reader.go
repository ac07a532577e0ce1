package reader

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Read extracts a text blob from the document at path. It never returns an
// error: a missing file yields a MarkerNotFound string and any extraction
// problem yields a MarkerWarning string, so callers always receive a blob
// they can hand to the classifier and extractor unchanged.
func Read(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Sprintf("%s File not found: %s", MarkerNotFound, path)
		}
		return fmt.Sprintf("%s Error reading document: %v", MarkerWarning, err)
	}
	return FromBytes(filepath.Base(path), data)
}

// FromBytes extracts a text blob from in-memory document content. The name
// is used for format dispatch by extension; unknown extensions fall back to
// content sniffing (PDF magic, HTML tags) and finally to plain text.
func FromBytes(name string, data []byte) string {
	var text string
	var err error

	switch kind(name, data) {
	case kindPDF:
		text, err = fromPDF(data)
		if err != nil {
			return fmt.Sprintf("%s Error reading PDF: %v", MarkerWarning, err)
		}
	case kindHTML:
		text = fromHTML(data)
	default:
		text = string(data)
	}

	text = NormalizeText(text)
	if strings.TrimSpace(text) == "" {
		return fmt.Sprintf("%s No extractable text found in document.", MarkerWarning)
	}
	return text
}

type docKind int

const (
	kindText docKind = iota
	kindPDF
	kindHTML
)

func kind(name string, data []byte) docKind {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return kindPDF
	case ".html", ".htm":
		return kindHTML
	case ".txt", ".md", ".text":
		return kindText
	}
	if bytes.HasPrefix(data, []byte("%PDF")) {
		return kindPDF
	}
	head := bytes.ToLower(data[:min(len(data), 512)])
	if bytes.Contains(head, []byte("<html")) || bytes.Contains(head, []byte("<!doctype html")) {
		return kindHTML
	}
	return kindText
}
