package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information (set via ldflags at build time)
var (
	Version = "0.0.1-dev"
	Commit  = "unknown"
)

// CLI flags that override config file values
var (
	cfgFile           string
	logLevel          string
	logFormat         string
	workers           int
	modifiedThreshold float64
	skipVerify        bool
)

var rootCmd = &cobra.Command{
	Use:   "addrbin",
	Short: "Cross-version address-library generator",
	Long: `A CLI tool that maintains a stable identifier space for binary-analysis
artifacts (functions, globals, vtables, strings) across releases of a
compiled program.

Given per-version disassembly export dumps, pairwise diff reports and any
previously generated version bins, it propagates stable IDs along the diff
graph and writes a version bin for every release that can be connected to a
release whose identifiers are already known.

Features:
  - Deterministic frontier propagation from anchor versions
  - Conservative ambiguity policy: never guesses, always mints fresh IDs
  - Parallel ingestion and per-version resolution
  - Round-trip verification of every written bin`,
	Version: Version,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	// Config file flag
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "addrbin.yaml",
		"Path to configuration file")

	// Logging overrides
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"Override log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "",
		"Override log format (json, text)")

	// Processing overrides
	rootCmd.PersistentFlags().IntVar(&workers, "workers", 0,
		"Override worker count for parallel ingestion and resolution")
	rootCmd.PersistentFlags().Float64Var(&modifiedThreshold, "modified-threshold", -1,
		"Override confidence threshold below which modified matches mint fresh IDs (negative keeps the config value)")

	// Safety overrides
	rootCmd.PersistentFlags().BoolVar(&skipVerify, "skip-verify", false,
		"Skip round-trip verification of written bins")
}

// GetConfigFile returns the config file path
func GetConfigFile() string {
	return cfgFile
}

// CLIOverrides contains flag values that override config file settings
type CLIOverrides struct {
	LogLevel          string
	LogFormat         string
	Workers           int
	ModifiedThreshold float64
	SkipVerify        bool
}

// GetCLIOverrides returns the CLI flag override values
func GetCLIOverrides() CLIOverrides {
	return CLIOverrides{
		LogLevel:          logLevel,
		LogFormat:         logFormat,
		Workers:           workers,
		ModifiedThreshold: modifiedThreshold,
		SkipVerify:        skipVerify,
	}
}

// rootDirArg validates the positional root-directory argument.
func rootDirArg(args []string) (string, error) {
	root := args[0]
	info, err := os.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("input directory does not exist: %s", root)
		}
		return "", fmt.Errorf("failed to stat input directory: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("input path is not a directory: %s", root)
	}
	return root, nil
}
