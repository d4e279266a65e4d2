package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/roller/trackgen/internal/core/event"
	coresys "github.com/roller/trackgen/internal/core/system"
	"github.com/roller/trackgen/internal/system"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newRunCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Build a track and keep restarting it on a frame loop",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLoop(cmd.Context(), *cfgPath)
		},
	}
}

func runLoop(parent context.Context, cfgPath string) error {
	cfg, log, err := loadConfig(cfgPath)
	if err != nil {
		return err
	}
	defer log.Sync()

	printBanner()

	ctx, cancel := context.WithTimeout(parent, 30*time.Second)
	a, err := newApp(ctx, cfg, log)
	cancel()
	if err != nil {
		return err
	}
	defer a.Close()

	bus := event.NewBus()
	restarts := system.NewRestartSchedulerSystem(bus, cfg.Loop.RestartEvery, cfg.Loop.Rebuild)
	tracks := system.NewTrackSystem(a.builder, a.graph, bus, log)
	diag := system.NewDiagnosticsSystem(a.reg, cfg.Loop.DiagnosticsEvery, cfg.Diagnostics.DumpDir, cfg.Diagnostics.Filters, log)

	runner := coresys.NewRunner()
	runner.Register(restarts)
	runner.Register(system.NewEventDispatchSystem(bus))
	runner.Register(tracks)
	runner.Register(diag)
	var snapshots *system.PoolSnapshotSystem
	if a.snapshots != nil {
		snapshots = system.NewPoolSnapshotSystem(a.reg, a.snapshots, bus, cfg.Loop.SnapshotEvery, cfg.Database.Timeout, log)
		runner.Register(snapshots)
	}
	runner.Register(system.NewCleanupSystem(a.graph))

	event.Subscribe(bus, func(ev event.TrackBuilt) {
		log.Debug("track ready",
			zap.String("build_id", ev.BuildID.String()),
			zap.Int("segments", ev.Segments),
			zap.Int("perils", ev.Perils),
			zap.Int("branches", ev.Branches),
		)
	})

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP, syscall.SIGUSR1)
	defer signal.Stop(sigCh)

	ticker := time.NewTicker(cfg.Loop.TickRate)
	defer ticker.Stop()

	printSection("Ready")
	printReady(fmt.Sprintf("frame loop started (tick: %s)", cfg.Loop.TickRate))
	printReady("SIGHUP rebuilds, SIGUSR1 dumps diagnostics")
	fmt.Println()

	for {
		select {
		case <-ticker.C:
			runner.Tick(cfg.Loop.TickRate)
		case sig := <-sigCh:
			switch sig {
			case syscall.SIGHUP:
				restarts.Request(true, "signal")
				continue
			case syscall.SIGUSR1:
				_, _ = diag.Dump(time.Now())
				continue
			}
			log.Info("shutdown signal received", zap.String("signal", sig.String()))
			return shutdown(log, runner, tracks, diag, snapshots)
		case <-parent.Done():
			return shutdown(log, runner, tracks, diag, snapshots)
		}
	}
}

func shutdown(log *zap.Logger, runner *coresys.Runner, tracks *system.TrackSystem, diag *system.DiagnosticsSystem, snapshots *system.PoolSnapshotSystem) error {
	diag.LogStats()
	if snapshots != nil {
		snapshots.Flush()
	}
	builds, restarts, failures := tracks.Counts()
	log.Info("stopped",
		zap.Uint64("ticks", runner.Ticks()),
		zap.Int("builds", builds),
		zap.Int("restarts", restarts),
		zap.Int("failed_builds", failures),
	)
	return nil
}
