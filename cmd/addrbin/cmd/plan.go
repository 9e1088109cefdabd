package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/binforge/addrbin/internal/config"
	"github.com/binforge/addrbin/internal/graph"
	"github.com/binforge/addrbin/internal/logger"
	"github.com/binforge/addrbin/internal/pipeline"
)

var planCmd = &cobra.Command{
	Use:   "plan ROOT_DIR",
	Short: "Show the propagation plan without writing anything",
	Long: `Plan ingests the inputs under ROOT_DIR, builds the version graph, and
prints the frontier levels the propagation engine would resolve, starting
from the anchor versions. No IDs are assigned and no bins are written.

Example:
  addrbin plan ./artifacts`,
	Args: cobra.ExactArgs(1),
	RunE: runPlan,
}

func init() {
	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, args []string) error {
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
	g, err := graph.Build(ing.Nodes, ing.Edges)
	if err != nil {
		return fmt.Errorf("graph construction failed: %w", err)
	}

	anchors := g.Anchors()
	cmd.Printf("Versions: %d, diff edges: %d, anchors: %d\n", g.NodeCount(), g.EdgeCount(), len(anchors))
	if len(anchors) == 0 && g.NodeCount() > 0 {
		bootstrap := g.Nodes()[0].Version
		cmd.Printf("No anchors found; %s would bootstrap the ID space\n", bootstrap)
		anchors = append(anchors, bootstrap)
	}

	levels, unreachable := g.Levels(anchors)
	for depth, level := range levels {
		names := make([]string, len(level))
		for i, v := range level {
			names[i] = v.String()
		}
		cmd.Printf("Level %d: %s\n", depth, strings.Join(names, ", "))
	}
	for _, v := range unreachable {
		cmd.Printf("Unreachable: %s\n", v)
	}
	for _, w := range ing.Warnings {
		cmd.Printf("Warning: %s\n", w)
	}
	return nil
}
