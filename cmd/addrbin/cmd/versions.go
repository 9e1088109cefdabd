package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/binforge/addrbin/internal/config"
	"github.com/binforge/addrbin/internal/logger"
	"github.com/binforge/addrbin/internal/pipeline"
)

var versionsCmd = &cobra.Command{
	Use:   "versions ROOT_DIR",
	Short: "List discovered versions and their inputs",
	Long: `Versions lists every version export discovered under ROOT_DIR, whether an
existing bin anchors it, and how many diff reports touch it.

Example:
  addrbin versions ./artifacts`,
	Args: cobra.ExactArgs(1),
	RunE: runVersions,
}

func init() {
	rootCmd.AddCommand(versionsCmd)
}

func runVersions(cmd *cobra.Command, args []string) error {
	root, err := rootDirArg(args)
	if err != nil {
		return err
	}

	cfg, err := config.Load(GetConfigFile())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	orch, err := pipeline.NewOrchestrator(cfg, root, logger.NewDefault())
	if err != nil {
		return fmt.Errorf("failed to create orchestrator: %w", err)
	}
	if err := orch.Initialize(); err != nil {
		return fmt.Errorf("orchestrator initialization failed: %w", err)
	}

	d := orch.Discovered()
	if len(d.ExportDirs) == 0 {
		cmd.Printf("No version exports found under %s\n", root)
		return nil
	}

	for _, v := range d.Versions() {
		edgeCount := 0
		for _, df := range d.DiffFiles {
			if df.Left == v || df.Right == v {
				edgeCount++
			}
		}
		anchor := " "
		if _, ok := d.BinFiles[v]; ok {
			anchor = "*"
		}
		cmd.Printf("%s %-16s diffs: %d\n", anchor, v, edgeCount)
	}
	cmd.Printf("\n%d versions (* = existing bin), %d diff reports, %d bins\n",
		len(d.ExportDirs), len(d.DiffFiles), len(d.BinFiles))
	return nil
}
