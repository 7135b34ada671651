// Command auctions ingests the vehicle auction exports in a directory,
// groups the listings into auctions and prints a report to stdout.
//
// Usage:
//
//	auctions [-config run.yaml] [-dir csv_files] [-workers N] [-v]
//
// Configuration is layered: defaults, then the optional config file, then
// AUCTIONS_* environment variables, then explicit flags.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	"auctions/internal/auctiondate"
	"auctions/internal/config"
	"auctions/internal/ingest"
	"auctions/internal/logger"
	"auctions/internal/metrics"
	"auctions/internal/metrics/datadog"
	"auctions/internal/metrics/prompush"
	"auctions/internal/pipeline"
	"auctions/internal/report"
)

// Exit codes.
const (
	exitOK          = 0
	exitFailure     = 1
	exitDirNotFound = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run is main without the process exit, so it can be driven from tests.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cfg, validateOnly, verbose, err := parseConfig(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		fmt.Fprintf(stderr, "Unexpected error: %v\n", err)
		return exitFailure
	}

	issues := config.Validate(cfg)
	for _, iss := range issues {
		fmt.Fprintf(stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
	}
	if config.HasErrors(issues) {
		fmt.Fprintln(stderr, "Unexpected error: configuration is invalid")
		return exitFailure
	}
	if validateOnly {
		fmt.Fprintln(stderr, "configuration is valid")
		return exitOK
	}

	if verbose {
		cfg.Log.Level = "debug"
	}
	log := logger.New(logger.Options{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Service: "auctions",
		RunID:   uuid.NewString(),
		Writer:  stderr,
	})

	flush, err := setupMetrics(cfg.Metrics)
	if err != nil {
		// Metrics are best effort; the run continues with the nop backend.
		log.Warn().Err(err).Str("backend", cfg.Metrics.Backend).Msg("metrics disabled")
	}
	defer func() {
		if err := flush(); err != nil {
			log.Warn().Err(err).Msg("metrics flush failed")
		}
	}()

	dates, err := auctiondate.New(cfg.Year)
	if err != nil {
		fmt.Fprintf(stderr, "Unexpected error: %v\n", err)
		return exitFailure
	}
	displayLoc, err := report.LoadDisplayZone()
	if err != nil {
		fmt.Fprintf(stderr, "Unexpected error: %v\n", err)
		return exitFailure
	}

	auctions, stats, err := pipeline.Run(ctx, cfg.Dir, pipeline.Options{
		Processor: ingest.NewProcessor(dates, cfg.FileTimeout.Std()),
		Workers:   cfg.Workers,
		Job:       cfg.Metrics.Job,
		Logger:    logger.Named(log, "pipeline"),
	})
	switch {
	case errors.Is(err, pipeline.ErrDirectoryNotFound):
		fmt.Fprintf(stderr, "Error: directory '%s' does not exist. Make sure the folder is next to the project.\n", cfg.Dir)
		return exitDirNotFound
	case err != nil:
		log.Error().Err(err).Msg("run failed")
		fmt.Fprintf(stderr, "Unexpected error: %v\n", err)
		return exitFailure
	}

	log.Info().
		Int("files", stats.Files).
		Int("listings", stats.Listings).
		Int("auctions", stats.Auctions).
		Dur("took", stats.Duration).
		Msg("run complete")

	if err := report.Render(stdout, cfg.Dir, auctions, displayLoc); err != nil {
		fmt.Fprintf(stderr, "Unexpected error: %v\n", err)
		return exitFailure
	}
	return exitOK
}

// parseConfig parses flags and loads the layered configuration. Only flags
// given on the command line override lower layers.
func parseConfig(args []string, stderr io.Writer) (cfg config.Config, validateOnly, verbose bool, err error) {
	fs := flag.NewFlagSet("auctions", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		cfgPath     = fs.String("config", "", "optional config file (.json, .yaml, .yml)")
		dir         = fs.String("dir", config.DefaultDir, "directory containing the *.csv exports")
		workers     = fs.Int("workers", 0, "max files processed concurrently (0 = GOMAXPROCS)")
		year        = fs.Int("year", 0, "year assumed for auction dates (0 = current year)")
		fileTimeout config.Duration
		logLevel    = fs.String("log-level", "info", "log level: trace, debug, info, warn, error, off")
		logFormat   = fs.String("log-format", "console", "log format: console or json")
		backend     = fs.String("metrics-backend", "none", "metrics backend: none, textfile, pushgateway, datadog")
		job         = fs.String("metrics-job", "auctions", "metrics job name")
		textfile    = fs.String("textfile-path", "", "output file for the textfile metrics backend")
		gatewayURL  = fs.String("pushgateway-url", "", "Pushgateway base URL for the pushgateway backend")
		ddAddr      = fs.String("datadog-addr", "", "DogStatsD address for the datadog backend")
	)
	fs.Var(&fileTimeout, "file-timeout", "per-file processing limit, e.g. 30s (0 = none)")
	fs.BoolVar(&validateOnly, "validate", false, "validate the configuration and exit")
	fs.BoolVar(&verbose, "v", false, "enable verbose (debug) logs")

	if err = fs.Parse(args); err != nil {
		return config.Config{}, false, false, err
	}
	if fs.NArg() > 0 {
		return config.Config{}, false, false, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	cfg, err = config.Load(*cfgPath)
	if err != nil {
		return config.Config{}, false, false, err
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "dir":
			cfg.Dir = *dir
		case "workers":
			cfg.Workers = *workers
		case "year":
			cfg.Year = *year
		case "file-timeout":
			cfg.FileTimeout = fileTimeout
		case "log-level":
			cfg.Log.Level = *logLevel
		case "log-format":
			cfg.Log.Format = *logFormat
		case "metrics-backend":
			cfg.Metrics.Backend = *backend
		case "metrics-job":
			cfg.Metrics.Job = *job
		case "textfile-path":
			cfg.Metrics.TextfilePath = *textfile
		case "pushgateway-url":
			cfg.Metrics.PushgatewayURL = *gatewayURL
		case "datadog-addr":
			cfg.Metrics.DatadogAddr = *ddAddr
		}
	})
	return cfg, validateOnly, verbose, nil
}

// setupMetrics installs the configured backend and returns its flush func.
// The returned func is always safe to call.
func setupMetrics(mc config.MetricsConfig) (func() error, error) {
	var (
		b   metrics.Backend
		err error
	)
	switch mc.Backend {
	case "", "none":
		return metrics.Flush, nil
	case "textfile":
		b, err = prompush.NewTextfileBackend(mc.Job, mc.TextfilePath)
	case "pushgateway":
		b, err = prompush.NewBackend(mc.Job, mc.PushgatewayURL)
	case "datadog":
		b, err = datadog.NewBackend(datadog.Config{
			Addr:       mc.DatadogAddr,
			Namespace:  "auctions.",
			GlobalTags: []string{"job:" + mc.Job},
		})
	default:
		err = fmt.Errorf("unknown metrics backend %q", mc.Backend)
	}
	if err != nil {
		return metrics.Flush, err
	}
	metrics.SetBackend(b)
	return metrics.Flush, nil
}
