package app

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/finsight/internal/cache"
	"github.com/hyperifyio/finsight/internal/pipeline"
	"github.com/hyperifyio/finsight/internal/report"
)

// App wires the analyzer with its extraction cache for one-shot runs.
type App struct {
	cfg      Config
	analyzer *pipeline.Analyzer
}

func New(cfg Config) *App {
	var c *cache.ExtractCache
	if cfg.CacheDir != "" {
		if cfg.CacheClear {
			_ = cache.ClearDir(cfg.CacheDir)
		}
		if cfg.CacheMaxAge > 0 {
			// Best effort; an unreadable cache must not fail startup.
			_, _ = cache.PurgeByAge(cfg.CacheDir, cfg.CacheMaxAge)
		}
		c = &cache.ExtractCache{Dir: cfg.CacheDir}
	}
	return &App{cfg: cfg, analyzer: pipeline.New(c)}
}

// Analyzer exposes the configured analyzer for the HTTP server.
func (a *App) Analyzer() *pipeline.Analyzer {
	return a.analyzer
}

// Run analyzes the configured input document and writes the result JSON,
// the Markdown companion, the manifest sidecar and, when configured, a PDF
// rendering. The analysis itself cannot fail; only artifact I/O can.
func (a *App) Run(ctx context.Context) error {
	rep := a.analyzer.Run(ctx, a.cfg.InputPath, a.cfg.Query)

	data, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	if err := os.WriteFile(a.cfg.OutputPath, data, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	log.Info().Str("out", a.cfg.OutputPath).Msg("wrote result")

	md := report.RenderMarkdown(rep)
	mdPath := deriveMarkdownPath(a.cfg.OutputPath)
	if err := os.WriteFile(mdPath, []byte(md), 0o644); err != nil {
		return fmt.Errorf("write markdown: %w", err)
	}

	if err := report.WriteManifest(rep, a.cfg.OutputPath); err != nil {
		log.Warn().Err(err).Msg("manifest write failed; continuing")
	}

	if a.cfg.OutputPDFPath != "" {
		if err := report.WritePDF(md, a.cfg.OutputPDFPath); err != nil {
			return fmt.Errorf("write pdf: %w", err)
		}
		log.Info().Str("out", a.cfg.OutputPDFPath).Msg("wrote pdf")
	}
	return nil
}

func deriveMarkdownPath(outputPath string) string {
	if strings.HasSuffix(outputPath, ".json") {
		return strings.TrimSuffix(outputPath, ".json") + ".md"
	}
	return outputPath + ".md"
}
