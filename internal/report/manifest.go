package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/hyperifyio/finsight/internal/pipeline"
)

// Manifest is a machine-readable sidecar recording what was analyzed, so a
// result file can be tied back to the exact document bytes that produced it.
type Manifest struct {
	Document    string `json:"document"`
	SHA256      string `json:"sha256"`
	TextChars   int    `json:"text_chars"`
	FromCache   bool   `json:"from_cache"`
	GeneratedAt string `json:"generated_at"`
}

// WriteManifest writes the sidecar next to outputPath.
func WriteManifest(rep pipeline.Report, outputPath string) error {
	m := Manifest{
		Document:    rep.Document,
		SHA256:      rep.SHA256,
		TextChars:   rep.TextChars,
		FromCache:   rep.FromCache,
		GeneratedAt: rep.GeneratedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(SidecarPath(outputPath), data, 0o644)
}

// SidecarPath derives the manifest path from the primary output path:
// report.json becomes report.manifest.json.
func SidecarPath(outputPath string) string {
	ext := filepath.Ext(outputPath)
	base := strings.TrimSuffix(outputPath, ext)
	return base + ".manifest.json"
}
