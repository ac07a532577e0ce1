package reader

import "strings"

// Failure markers prefix the text blob when extraction could not produce
// usable content. Downstream consumers key off the prefix glyph, so these
// exact strings are part of the wire contract.
const (
	// MarkerNotFound prefixes the blob when the document file is missing.
	MarkerNotFound = "❌" // ❌
	// MarkerWarning prefixes the blob when extraction ran but produced no
	// text, or the format could not be processed at all.
	MarkerWarning = "⚠️" // ⚠️
)

// Unusable reports whether a text blob carries no analyzable content:
// empty or whitespace-only, or prefixed with one of the failure markers.
func Unusable(text string) bool {
	if strings.TrimSpace(text) == "" {
		return true
	}
	return strings.HasPrefix(text, MarkerNotFound) || strings.HasPrefix(text, MarkerWarning)
}
