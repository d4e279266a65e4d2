package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/roller/trackgen/internal/objects"
	"github.com/roller/trackgen/internal/system"
	"github.com/spf13/cobra"
)

func newBuildCmd(cfgPath *string) *cobra.Command {
	var (
		dump     bool
		seed     string
		segments int
	)
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build one track, validate it and print pool diagnostics",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return buildOnce(cmd, *cfgPath, dump, seed, segments)
		},
	}
	cmd.Flags().BoolVar(&dump, "dump", false, "write the diagnostics report to the dump directory")
	cmd.Flags().StringVar(&seed, "seed", "", "seed string (overrides track.seed)")
	cmd.Flags().IntVar(&segments, "segments", -1, "segment count (overrides track.segment_count)")
	return cmd
}

func buildOnce(cmd *cobra.Command, cfgPath string, dump bool, seed string, segments int) error {
	cfg, log, err := loadConfig(cfgPath)
	if err != nil {
		return err
	}
	defer log.Sync()

	if cmd.Flags().Changed("seed") {
		cfg.Track.Seed = seed
	}
	if segments >= 0 {
		cfg.Track.SegmentCount = segments
	}

	printBanner()

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()
	a, err := newApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	t, err := a.builder.Build()
	if err != nil {
		return fmt.Errorf("build: %w", err)
	}
	if err := t.Validate(); err != nil {
		return fmt.Errorf("validate: %w", err)
	}

	printSection("Track")
	printStat("Build", t.BuildID.String()[:8])
	printStat("Connectors", len(t.Connectors))
	printStat("Segments", len(t.Segments))
	printStat("Perils", t.PerilCount())
	printStat("Branches", t.BranchCount())
	printStat("Collectables", t.CollectableCount())
	printStat("Length", fmt.Sprintf("%.1f", t.Length()))
	fmt.Println()

	printSection("Pools")
	if err := objects.WriteReport(os.Stdout, a.reg.Stats(), cfg.Diagnostics.Filters...); err != nil {
		return err
	}
	fmt.Println()

	if dump {
		diag := system.NewDiagnosticsSystem(a.reg, 0, cfg.Diagnostics.DumpDir, cfg.Diagnostics.Filters, log)
		path, err := diag.Dump(time.Now())
		if err != nil {
			return fmt.Errorf("dump: %w", err)
		}
		printOK("report written to " + path)
	}
	return nil
}
