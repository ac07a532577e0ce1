package app

import (
	"os"
	"time"
)

// ApplyEnvToConfig populates unset fields of cfg from environment variables.
// Explicit cfg values take precedence over env.
func ApplyEnvToConfig(cfg *Config) {
	if cfg == nil {
		return
	}
	if cfg.Listen == "" {
		cfg.Listen = os.Getenv("FINSIGHT_LISTEN")
	}
	if cfg.UploadsDir == "" || cfg.UploadsDir == DefaultUploadsDir {
		if v := os.Getenv("FINSIGHT_UPLOADS_DIR"); v != "" {
			cfg.UploadsDir = v
		}
	}
	if cfg.CacheDir == "" || cfg.CacheDir == DefaultCacheDir {
		if v := os.Getenv("FINSIGHT_CACHE_DIR"); v != "" {
			cfg.CacheDir = v
		}
	}
	if cfg.CacheMaxAge == 0 {
		if v := os.Getenv("FINSIGHT_CACHE_MAX_AGE"); v != "" {
			if d, err := time.ParseDuration(v); err == nil && d > 0 {
				cfg.CacheMaxAge = d
			}
		}
	}
	if cfg.Query == "" {
		cfg.Query = os.Getenv("FINSIGHT_QUERY")
	}
}
