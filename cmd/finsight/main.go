package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/finsight/internal/app"
	"github.com/hyperifyio/finsight/internal/server"
)

func main() {
	// Logging setup
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	var (
		inputPath   string
		outputPath  string
		outputPDF   string
		query       string
		listen      string
		uploadsDir  string
		cacheDir    string
		cacheMaxAge time.Duration
		cacheClear  bool
		configPath  string
		envFiles    string
		verbose     bool
	)

	flag.StringVar(&inputPath, "input", "", "Path to a financial document to analyze (PDF, HTML or plain text)")
	flag.StringVar(&outputPath, "output", app.DefaultOutputPath, "Path to write the result JSON")
	flag.StringVar(&outputPDF, "output.pdf", "", "Optional path to write a PDF rendering of the report")
	flag.StringVar(&query, "query", os.Getenv("FINSIGHT_QUERY"), "Analysis query recorded alongside the result")
	flag.StringVar(&listen, "listen", os.Getenv("FINSIGHT_LISTEN"), "HTTP listen address, e.g. :8080; empty runs one-shot mode")
	flag.StringVar(&uploadsDir, "uploads.dir", app.DefaultUploadsDir, "Directory for temporary upload spool files")
	flag.StringVar(&cacheDir, "cache.dir", app.DefaultCacheDir, "Extraction cache directory; empty disables caching")
	flag.DurationVar(&cacheMaxAge, "cache.maxAge", 0, "Max age for cached extractions before purge (e.g. 24h); 0 disables")
	flag.BoolVar(&cacheClear, "cache.clear", false, "Clear the extraction cache before starting")
	flag.StringVar(&configPath, "config", os.Getenv("FINSIGHT_CONFIG"), "Optional YAML or JSON config file; flags take precedence")
	flag.StringVar(&envFiles, "env.files", "", "Comma-separated dotenv files to load before reading env vars")
	flag.BoolVar(&verbose, "v", false, "Verbose logging")
	flag.Parse()

	if strings.TrimSpace(envFiles) != "" {
		paths := strings.Split(envFiles, ",")
		if err := app.LoadEnvFiles(paths...); err != nil {
			log.Error().Err(err).Msg("load env files failed")
			os.Exit(1)
		}
	}

	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	cfg := app.Config{
		InputPath:     inputPath,
		OutputPath:    outputPath,
		OutputPDFPath: outputPDF,
		Query:         query,
		Listen:        listen,
		UploadsDir:    uploadsDir,
		CacheDir:      cacheDir,
		CacheMaxAge:   cacheMaxAge,
		CacheClear:    cacheClear,
		Verbose:       verbose,
	}

	if strings.TrimSpace(configPath) != "" {
		fc, err := app.LoadConfigFile(configPath)
		if err != nil {
			log.Error().Err(err).Str("path", configPath).Msg("load config file failed")
			os.Exit(1)
		}
		app.ApplyFileConfig(&cfg, fc)
	}
	app.ApplyEnvToConfig(&cfg)

	if err := app.ValidateConfig(cfg); err != nil {
		log.Error().Err(err).Msg("invalid configuration")
		os.Exit(2)
	}

	if err := run(cfg); err != nil {
		log.Error().Err(err).Msg("run failed")
		os.Exit(1)
	}
}

func run(cfg app.Config) error {
	a := app.New(cfg)

	if strings.TrimSpace(cfg.Listen) != "" {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		srv := server.New(cfg.Listen, cfg.UploadsDir, a.Analyzer(), log.Logger)
		return srv.Start(ctx)
	}
	return a.Run(context.Background())
}
