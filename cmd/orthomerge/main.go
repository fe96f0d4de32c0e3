// Package main implements the orthomerge command, which clusters candidate
// ortholog alignments by all-against-all similarity and merges each cluster
// into one alignment.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/google/uuid"

	"github.com/c360/orthomerge/config"
	"github.com/c360/orthomerge/errors"
	"github.com/c360/orthomerge/metric"
	"github.com/c360/orthomerge/orthologize"
)

// Build information constants
const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "orthomerge"
)

// Exit codes
const (
	exitOK      = 0
	exitFailure = 1
	exitInvalid = 2
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(exitFailure)
		}
	}()

	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	cliCfg, err := parseFlags(args, stderr)
	if err != nil {
		return exitInvalid
	}
	if err := validateFlags(cliCfg); err != nil {
		_, _ = fmt.Fprintf(stderr, "invalid flags: %v\n", err)
		return exitInvalid
	}

	if cliCfg.ShowVersion {
		_, _ = fmt.Fprintf(stdout, "%s version %s (build %s)\n", appName, Version, BuildTime)
		return exitOK
	}
	if cliCfg.ShowHelp {
		cliCfg.usage()
		return exitOK
	}

	logger := setupLogger(stderr, cliCfg.LogLevel, cliCfg.LogFormat)
	slog.SetDefault(logger)

	cfg, err := loadConfig(cliCfg)
	if err != nil {
		logger.Error("Invalid configuration", "error", err)
		return exitInvalid
	}
	if cliCfg.Validate {
		logger.Info("Configuration is valid", "config", cfg.String())
		return exitOK
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	registry := metric.NewMetricsRegistry()
	runID := uuid.NewString()
	logger.Info("Starting orthomerge", "run_id", runID, "build_time", BuildTime,
		"work_dir", cfg.WorkDir, "manifest", cfg.Manifest)

	summary, runErr := runStage(ctx, cfg, logger, registry, runID)

	if cfg.Metrics.Textfile != "" {
		if err := registry.WriteTextfile(cfg.Metrics.Textfile); err != nil {
			logger.Warn("Failed to write metrics textfile", "path", cfg.Metrics.Textfile, "error", err)
		}
	}

	if runErr != nil {
		logger.Error("Stage failed", "run_id", runID, "error", runErr, "class", errors.Classify(runErr).String())
		return exitCode(runErr)
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(summary); err != nil {
		logger.Error("Failed to write summary", "error", err)
		return exitFailure
	}
	return exitOK
}

func runStage(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	registry *metric.MetricsRegistry,
	runID string,
) (*orthologize.Summary, error) {
	stage, closeCatalog, err := orthologize.Open(ctx, cfg,
		orthologize.WithLogger(logger),
		orthologize.WithMetricsRegistry(registry),
		orthologize.WithRunID(runID),
	)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := closeCatalog(context.Background()); err != nil {
			logger.Warn("Failed to close sequence catalog", "error", err)
		}
	}()

	return stage.Run(ctx)
}

// loadConfig layers defaults, the optional config file and ORTHOMERGE_*
// environment overrides, then applies explicit flags and validates.
func loadConfig(cliCfg *CLIConfig) (*config.Config, error) {
	loader := config.NewLoader()
	loader.EnableValidation(false)
	if cliCfg.ConfigPath != "" {
		loader.AddLayer(cliCfg.ConfigPath)
	}

	cfg, err := loader.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if cliCfg.Manifest != "" {
		cfg.Manifest = cliCfg.Manifest
	}
	if cliCfg.WorkDir != "" {
		cfg.WorkDir = cliCfg.WorkDir
	}
	if cliCfg.Workers >= 0 {
		cfg.Workers = cliCfg.Workers
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// exitCode maps configuration and input errors to exitInvalid.
func exitCode(err error) int {
	if errors.IsInvalid(err) {
		return exitInvalid
	}
	return exitFailure
}
