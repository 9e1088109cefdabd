package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/binforge/addrbin/internal/config"
	"github.com/binforge/addrbin/internal/lock"
	"github.com/binforge/addrbin/internal/logger"
	"github.com/binforge/addrbin/internal/pipeline"
	"github.com/binforge/addrbin/internal/report"
)

var generateForce bool

var generateCmd = &cobra.Command{
	Use:   "generate ROOT_DIR",
	Short: "Generate version bins for every resolvable version",
	Long: `Generate ingests the export dumps, diff reports and existing bins under
ROOT_DIR, propagates stable IDs from versions whose identifiers are already
known, and writes a new version bin for every resolved version lacking one.

Versions with no diff chain to a known version are reported unreachable and
produce no output. Ambiguous matches never inherit an ID; they receive fresh
IDs and a diagnostic for human review.

Example:
  addrbin generate ./artifacts --workers 8`,
	Args: cobra.ExactArgs(1),
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().BoolVar(&generateForce, "force", false,
		"Force execution even if the input tree is locked (use with caution)")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	root, err := rootDirArg(args)
	if err != nil {
		return err
	}

	cfg, err := config.Load(GetConfigFile())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	overrides := GetCLIOverrides()
	cfg.ApplyOverrides(overrides.LogLevel, overrides.LogFormat,
		overrides.Workers, overrides.ModifiedThreshold, overrides.SkipVerify)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	log, err := logger.New(&cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer log.Sync()

	log.Infow("Starting bin generation", "root", root, "config", GetConfigFile())

	if !generateForce {
		runLock := lock.NewRunLock(root)
		if err := runLock.AcquireOrFail(); err != nil {
			if errors.Is(err, lock.ErrLockHeld) {
				return fmt.Errorf("another run is active on %s (use --force to override): %w", root, err)
			}
			return fmt.Errorf("failed to acquire run lock: %w", err)
		}
		defer runLock.Release()
	} else {
		log.Warnw("Skipping run lock acquisition (--force flag used)", "root", root)
	}

	orch, err := pipeline.NewOrchestrator(cfg, root, log)
	if err != nil {
		return fmt.Errorf("failed to create orchestrator: %w", err)
	}
	if err := orch.Initialize(); err != nil {
		return fmt.Errorf("orchestrator initialization failed: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Warn("Received shutdown signal - aborting run...")
		cancel()
	}()

	result, err := orch.Execute(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			log.Warn("Run cancelled by user")
			return nil
		}
		return fmt.Errorf("bin generation failed: %w", err)
	}

	for _, w := range result.Warnings {
		log.Warnw("Input warning", "detail", w)
	}

	fmt.Printf("\n=== Generation Complete ===\n")
	fmt.Printf("Root: %s\n", result.Root)
	fmt.Printf("Duration: %s\n", result.Duration)
	fmt.Printf("Bins Written: %d\n", len(result.BinsWritten))
	fmt.Printf("Success: %v\n\n", result.Success)
	report.Render(os.Stdout, result.Report, cfg.Logging.Format != "json")

	if len(result.Errors) > 0 {
		fmt.Printf("\nErrors:\n")
		for _, e := range result.Errors {
			fmt.Printf("  - %v\n", e)
		}
	}
	if !result.Success {
		return fmt.Errorf("no version could be resolved")
	}
	return nil
}
