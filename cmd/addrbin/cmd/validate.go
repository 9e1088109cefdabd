package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/binforge/addrbin/internal/config"
	"github.com/binforge/addrbin/internal/graph"
	"github.com/binforge/addrbin/internal/logger"
	"github.com/binforge/addrbin/internal/pipeline"
)

var validateCmd = &cobra.Command{
	Use:   "validate ROOT_DIR",
	Short: "Validate configuration and inputs without resolving",
	Long: `Validate checks the configuration file, parses every export dump, diff
report and version bin under ROOT_DIR, and builds the version graph.

Checks performed:
  - Configuration syntax and permitted values
  - Export dump grammar and base-address consistency
  - Diff report grammar and version pairing
  - Bin decodability and header/file-name agreement
  - Duplicate-version and dangling-edge detection

Example:
  addrbin validate ./artifacts`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
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

	orch, err := pipeline.NewOrchestrator(cfg, root, log)
	if err != nil {
		return fmt.Errorf("failed to create orchestrator: %w", err)
	}
	if err := orch.Initialize(); err != nil {
		return fmt.Errorf("orchestrator initialization failed: %w", err)
	}

	ing, err := orch.IngestAll(context.Background())
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}
	if _, err := graph.Build(ing.Nodes, ing.Edges); err != nil {
		return fmt.Errorf("graph construction failed: %w", err)
	}

	cmd.Printf("Configuration OK\n")
	cmd.Printf("Versions: %d, diff edges: %d\n", len(ing.Nodes), len(ing.Edges))
	for _, w := range ing.Warnings {
		cmd.Printf("Warning: %s\n", w)
	}
	if len(ing.Warnings) > 0 {
		cmd.Printf("Validation passed with %d warnings\n", len(ing.Warnings))
	} else {
		cmd.Printf("Validation passed\n")
	}
	return nil
}
