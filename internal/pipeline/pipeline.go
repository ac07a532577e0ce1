package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/finsight/internal/cache"
	"github.com/hyperifyio/finsight/internal/classify"
	"github.com/hyperifyio/finsight/internal/metrics"
	"github.com/hyperifyio/finsight/internal/reader"
)

// DefaultQuery mirrors the query the original upload endpoint assumed when
// the caller supplied none.
const DefaultQuery = "Analyze this financial document for investment insights"

// Report bundles the verification verdict and metric analysis for one
// document, plus provenance metadata.
type Report struct {
	Document     string          `json:"document"`
	Query        string          `json:"query"`
	Verification classify.Result `json:"verification"`
	Analysis     metrics.Result  `json:"analysis"`
	SHA256       string          `json:"sha256"`
	TextChars    int             `json:"text_chars"`
	FromCache    bool            `json:"from_cache"`
	GeneratedAt  time.Time       `json:"generated_at"`

	// Text is the extracted blob the results were computed from. It is
	// kept for snippet rendering and artifact writing, not serialized.
	Text string `json:"-"`
}

// Analyzer runs the fixed two-step sequence: verify the document looks like
// a financial report, then extract metrics. The ordering is a workflow
// convention only; the steps share the text blob but no derived data.
type Analyzer struct {
	Cache *cache.ExtractCache

	// extract is a seam for tests; nil means reader.FromBytes.
	extract func(name string, data []byte) string
}

// New returns an Analyzer. cache may be nil to disable extraction caching.
func New(c *cache.ExtractCache) *Analyzer {
	return &Analyzer{Cache: c}
}

// Run analyzes the document at path. Unreadable files degrade to a Report
// whose results carry diagnostic notes; Run itself never fails.
func (a *Analyzer) Run(ctx context.Context, path, query string) Report {
	data, err := os.ReadFile(path)
	if err != nil {
		text := reader.Read(path) // produces the marker blob for this failure
		return a.finish(ctx, path, query, nil, text, false)
	}
	return a.RunBytes(ctx, path, data, query)
}

// RunBytes analyzes in-memory document content under the given name.
func (a *Analyzer) RunBytes(ctx context.Context, name string, data []byte, query string) Report {
	if text, ok := a.Cache.Load(ctx, data); ok {
		log.Debug().Str("document", name).Msg("extraction cache hit")
		return a.finish(ctx, name, query, data, text, true)
	}

	extract := a.extract
	if extract == nil {
		extract = reader.FromBytes
	}
	text := extract(name, data)

	// Marker blobs are cheap to recompute and describe a failure that may
	// be transient, so they are never cached.
	if a.Cache != nil && !reader.Unusable(text) {
		if err := a.Cache.Save(ctx, name, data, text); err != nil {
			log.Warn().Err(err).Str("document", name).Msg("extraction cache save failed")
		}
	}
	return a.finish(ctx, name, query, data, text, false)
}

func (a *Analyzer) finish(_ context.Context, name, query string, data []byte, text string, cached bool) Report {
	if query == "" {
		query = DefaultQuery
	}

	started := time.Now()
	verification := classify.Classify(text)
	analysis := metrics.Extract(text, query)
	log.Debug().
		Str("document", name).
		Bool("is_financial_report", verification.IsFinancialReport).
		Int("key_metrics", len(analysis.KeyMetrics)).
		Dur("elapsed", time.Since(started)).
		Msg("analysis complete")

	digest := ""
	if data != nil {
		h := sha256.Sum256(data)
		digest = hex.EncodeToString(h[:])
	}
	return Report{
		Document:     name,
		Query:        query,
		Verification: verification,
		Analysis:     analysis,
		SHA256:       digest,
		TextChars:    len(text),
		FromCache:    cached,
		GeneratedAt:  time.Now().UTC(),
		Text:         text,
	}
}

// Snippet returns up to max runes of the extracted text for response
// previews. Marker blobs yield an empty snippet.
func (r Report) Snippet(max int) string {
	if reader.Unusable(r.Text) {
		return ""
	}
	runes := []rune(r.Text)
	if len(runes) <= max {
		return r.Text
	}
	return string(runes[:max])
}
