package app

import "time"

// Config holds runtime configuration for the application.
type Config struct {
	// One-shot mode
	InputPath     string
	OutputPath    string
	OutputPDFPath string
	Query         string

	// Server mode; empty disables the HTTP server.
	Listen     string
	UploadsDir string

	// Extraction cache
	CacheDir    string
	CacheMaxAge time.Duration
	CacheClear  bool

	Verbose bool
}
