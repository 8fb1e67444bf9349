package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/scriptscan/internal/config"
	"github.com/jackzampolin/scriptscan/internal/engine"
	"github.com/jackzampolin/scriptscan/internal/home"
	"github.com/jackzampolin/scriptscan/internal/report"
	"github.com/jackzampolin/scriptscan/internal/svcctx"
	"github.com/jackzampolin/scriptscan/version"
)

var (
	cfgFile      string
	homeDir      string
	outputFormat string
	logLevel     string

	format report.Format
)

var rootCmd = &cobra.Command{
	Use:   "scriptscan",
	Short: "OCR extraction and verification for Hebrew, Aramaic and Greek scripture scans",
	Long: `scriptscan extracts biblical-language text from scanned scripture editions.

It includes:
  - Per-page OCR with configurable preprocessing and pluggable engines
  - Script classification (Hebrew, Aramaic, Greek)
  - Verse location from book headings and chapter:verse references
  - Exploration of OCR configurations on a sample page
  - Accuracy verification against a reference corpus`,
	Version:       version.GitRelease,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.scriptscan/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVar(
		&homeDir, "home", "", "scriptscan home directory (default: ~/.scriptscan)",
	)
	rootCmd.PersistentFlags().StringVarP(
		&outputFormat, "output", "o", "yaml", "output format: yaml, json, markdown or html",
	)
	rootCmd.PersistentFlags().StringVar(
		&logLevel, "log-level", "", "log level: debug, info, warn or error (overrides config)",
	)

	// Build services before any command runs
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		f, err := report.ParseFormat(outputFormat)
		if err != nil {
			return err
		}
		format = f

		svcs, err := setup()
		if err != nil {
			return err
		}
		cmd.SetContext(svcctx.WithServices(cmd.Context(), svcs))
		return nil
	}

	rootCmd.AddCommand(versionCmd)
}

// setup loads configuration and builds the services shared by commands.
func setup() (*svcctx.Services, error) {
	h, err := home.New(homeDir)
	if err != nil {
		return nil, err
	}

	cm, err := config.NewManager(cfgFile, h.Path())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if logLevel != "" {
		if err := cm.Set("log_level", logLevel); err != nil {
			return nil, err
		}
	}
	cfg := cm.Get()

	level, err := cfg.Level()
	if err != nil {
		return nil, err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	if path := cm.Path(); path != "" {
		logger.Debug("loaded config", "file", path)
	}

	engines := engine.NewRegistryFromConfig(cfg.ToEngineRegistryConfig(), logger.With("component", "engines"))

	// Long runs pick up engine edits (e.g. a new rate limit) without restarting.
	if cm.Path() != "" {
		cm.OnChange(func(c *config.Config) {
			engines.Reload(c.ToEngineRegistryConfig())
		})
		cm.WatchConfig()
	}

	return &svcctx.Services{
		Config:  cm,
		Engines: engines,
		Logger:  logger,
		Home:    h,
	}, nil
}
