package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	yaml "gopkg.in/yaml.v3"
)

// Defaults shared between flag registration and file-config overlay, so the
// overlay can tell "flag left at default" from "flag set explicitly".
const (
	DefaultOutputPath = "analysis.json"
	DefaultUploadsDir = "uploads"
	DefaultCacheDir   = ".finsight-cache"
)

// FileConfig is the single-file configuration schema. Nested sections map
// naturally onto flags and environment variables.
type FileConfig struct {
	Input     string `yaml:"input" json:"input"`
	Output    string `yaml:"output" json:"output"`
	OutputPDF string `yaml:"outputPDF" json:"outputPDF"`
	Query     string `yaml:"query" json:"query"`

	Server struct {
		Listen     string `yaml:"listen" json:"listen"`
		UploadsDir string `yaml:"uploadsDir" json:"uploadsDir"`
	} `yaml:"server" json:"server"`

	Cache struct {
		Dir    string        `yaml:"dir" json:"dir"`
		MaxAge time.Duration `yaml:"maxAge" json:"maxAge"`
		Clear  bool          `yaml:"clear" json:"clear"`
	} `yaml:"cache" json:"cache"`

	Verbose bool `yaml:"verbose" json:"verbose"`
}

// LoadConfigFile reads YAML or JSON into FileConfig.
func LoadConfigFile(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse yaml: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse json: %w", err)
		}
	default:
		// Try YAML then JSON.
		if err := yaml.Unmarshal(b, &fc); err != nil {
			if jerr := json.Unmarshal(b, &fc); jerr != nil {
				return fc, fmt.Errorf("parse config: %v (yaml) / %v (json)", err, jerr)
			}
		}
	}
	return fc, nil
}

// ApplyFileConfig overlays values from FileConfig into cfg for fields still
// at their default. Flags should already have been parsed; the file supplies
// defaults without overriding explicit flags.
func ApplyFileConfig(cfg *Config, fc FileConfig) {
	if cfg == nil {
		return
	}
	if cfg.InputPath == "" && fc.Input != "" {
		cfg.InputPath = fc.Input
	}
	if (cfg.OutputPath == "" || cfg.OutputPath == DefaultOutputPath) && fc.Output != "" {
		cfg.OutputPath = fc.Output
	}
	if cfg.OutputPDFPath == "" && fc.OutputPDF != "" {
		cfg.OutputPDFPath = fc.OutputPDF
	}
	if cfg.Query == "" && fc.Query != "" {
		cfg.Query = fc.Query
	}
	if cfg.Listen == "" && fc.Server.Listen != "" {
		cfg.Listen = fc.Server.Listen
	}
	if (cfg.UploadsDir == "" || cfg.UploadsDir == DefaultUploadsDir) && fc.Server.UploadsDir != "" {
		cfg.UploadsDir = fc.Server.UploadsDir
	}
	if (cfg.CacheDir == "" || cfg.CacheDir == DefaultCacheDir) && fc.Cache.Dir != "" {
		cfg.CacheDir = fc.Cache.Dir
	}
	if cfg.CacheMaxAge == 0 && fc.Cache.MaxAge > 0 {
		cfg.CacheMaxAge = fc.Cache.MaxAge
	}
	if !cfg.CacheClear && fc.Cache.Clear {
		cfg.CacheClear = true
	}
	if !cfg.Verbose && fc.Verbose {
		cfg.Verbose = true
	}
}

// ValidateConfig performs minimal schema validation for required settings.
func ValidateConfig(cfg Config) error {
	if strings.TrimSpace(cfg.Listen) == "" && strings.TrimSpace(cfg.InputPath) == "" {
		return errors.New("config: either an input path or a listen address is required")
	}
	if strings.TrimSpace(cfg.InputPath) != "" && strings.TrimSpace(cfg.OutputPath) == "" {
		return errors.New("config: output path is required in one-shot mode")
	}
	if cfg.CacheMaxAge < 0 {
		return errors.New("config: negative cache max age is not allowed")
	}
	return nil
}
