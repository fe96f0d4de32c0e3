package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"slices"
)

// CLIConfig holds command-line configuration
type CLIConfig struct {
	ConfigPath  string
	Manifest    string
	WorkDir     string
	Workers     int
	LogLevel    string
	LogFormat   string
	ShowVersion bool
	ShowHelp    bool
	Validate    bool

	usage func()
}

func parseFlags(args []string, stderr io.Writer) (*CLIConfig, error) {
	cfg := &CLIConfig{}
	fs := flag.NewFlagSet(appName, flag.ContinueOnError)
	fs.SetOutput(stderr)

	// Define flags with environment variable fallback
	fs.StringVar(&cfg.ConfigPath, "config",
		getEnv("ORTHOMERGE_CONFIG", ""),
		"Path to a JSON or YAML configuration file (env: ORTHOMERGE_CONFIG)")

	fs.StringVar(&cfg.ConfigPath, "c",
		getEnv("ORTHOMERGE_CONFIG", ""),
		"Path to a JSON or YAML configuration file (env: ORTHOMERGE_CONFIG)")

	fs.StringVar(&cfg.Manifest, "manifest", "",
		"Input manifest listing one alignment file per line (overrides config)")

	fs.StringVar(&cfg.WorkDir, "work-dir", "",
		"Working directory holding <id><ext> alignments (overrides config)")

	fs.IntVar(&cfg.Workers, "workers", -1,
		"Parallel tasks, 0 for one per CPU (overrides config)")

	fs.StringVar(&cfg.LogLevel, "log-level",
		getEnv("ORTHOMERGE_LOG_LEVEL", "info"),
		"Log level: debug, info, warn, error (env: ORTHOMERGE_LOG_LEVEL)")

	fs.StringVar(&cfg.LogFormat, "log-format",
		getEnv("ORTHOMERGE_LOG_FORMAT", "text"),
		"Log format: json, text (env: ORTHOMERGE_LOG_FORMAT)")

	fs.BoolVar(&cfg.ShowVersion, "version", false, "Show version information")
	fs.BoolVar(&cfg.ShowVersion, "v", false, "Show version information")
	fs.BoolVar(&cfg.ShowHelp, "help", false, "Show help information")
	fs.BoolVar(&cfg.ShowHelp, "h", false, "Show help information")
	fs.BoolVar(&cfg.Validate, "validate", false, "Validate configuration and exit")

	fs.Usage = func() {
		printDetailedHelp(fs)
	}

	cfg.usage = fs.Usage

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validateFlags(cfg *CLIConfig) error {
	// Skip validation for special flags
	if cfg.ShowVersion || cfg.ShowHelp {
		return nil
	}

	if cfg.ConfigPath != "" {
		if _, err := os.Stat(cfg.ConfigPath); err != nil {
			return fmt.Errorf("config file not found: %s", cfg.ConfigPath)
		}
	}

	if !slices.Contains([]string{"debug", "info", "warn", "error"}, cfg.LogLevel) {
		return fmt.Errorf("invalid log level: %s", cfg.LogLevel)
	}

	if !slices.Contains([]string{"json", "text"}, cfg.LogFormat) {
		return fmt.Errorf("invalid log format: %s", cfg.LogFormat)
	}

	if cfg.Workers < -1 {
		return fmt.Errorf("invalid worker count: %d", cfg.Workers)
	}

	return nil
}

func printDetailedHelp(fs *flag.FlagSet) {
	out := fs.Output()
	_, _ = fmt.Fprintf(out, `%s - ortholog clustering and alignment merging

Usage: %s [options]

Options:
`, appName, appName)
	fs.PrintDefaults()
	_, _ = fmt.Fprintf(out, `
Examples:
  # Cluster and merge the alignments listed in list.txt
  %s --work-dir=/data/run1 --manifest=list.txt

  # Use a configuration file with debug logging
  %s --config=orthomerge.yaml --log-level=debug

  # Validate configuration only
  %s --config=orthomerge.yaml --validate

Exit codes: 0 success, 1 stage failure, 2 invalid flags, configuration or input manifest.

Version: %s
Build: %s
`, appName, appName, appName, Version, BuildTime)
}

// Environment variable helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
