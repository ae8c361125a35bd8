package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"threatforge/internal/config"
	"threatforge/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:           "threatforge",
	Short:         "ThreatForge edits data flow diagrams backed by threat model files",
	Long:          `ThreatForge serves an editable diagram of a threat model YAML file and suggests STRIDE threats for it.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to config file (default: search standard locations)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level override: debug, info, warn, error")
}

// loadConfig reads the config named by --config, or the first one found
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		cfg, _, err = config.LoadFromPath(path)
	} else {
		cfg, _, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		if _, err := config.ParseLevel(level); err != nil {
			return nil, err
		}
		cfg.Log.Level = level
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) *slog.Logger {
	level, _ := config.ParseLevel(cfg.Log.Level)
	format, _ := logging.ParseFormat(cfg.Log.Format)
	return logging.New(level, format)
}
