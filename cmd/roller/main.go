package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/roller/trackgen/internal/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const version = "0.1.0"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfgPath string

	root := &cobra.Command{
		Use:           "roller",
		Short:         "Procedural roller track generator with pooled scene objects",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	defaultPath := "config/roller.toml"
	if p := os.Getenv("ROLLER_CONFIG"); p != "" {
		defaultPath = p
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", defaultPath,
		"config file (env ROLLER_CONFIG)")

	root.AddCommand(newRunCmd(&cfgPath))
	root.AddCommand(newBuildCmd(&cfgPath))
	return root
}

// loadConfig reads the config and builds the logger every command uses.
func loadConfig(path string) (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, log, nil
}

// ── Startup display helpers ────────────────────────────────────────

func printBanner() {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Printf("\033[36;1m  │\033[0m           roller trackgen  v%s          \033[36;1m│\033[0m\n", version)
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
}

func printSection(title string) {
	lineLen := max(46-len(title)-1, 3)
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, value any) {
	s := fmt.Sprint(value)
	dotsLen := max(42-len(label)-len(s), 3)
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), s)
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

func printReady(msg string) {
	fmt.Printf("  \033[32m▶\033[0m %s\n", msg)
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
