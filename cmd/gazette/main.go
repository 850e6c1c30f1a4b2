// Package main provides the gazette command: ingestion runs, the daily
// schedule and one-off inspection of indexes, documents and articles.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"gazette/internal/bulletin"
	"gazette/internal/cache"
	"gazette/internal/config"
	"gazette/internal/logger"
	"gazette/internal/payload"
	"gazette/internal/store"
)

var version = "0.1.0"

const dateLayout = time.DateOnly

type globalFlags struct {
	configPath string
	envPath    string
	logLevel   string
}

// app holds the dependencies shared by the subcommands.
type app struct {
	cfg     *config.Config
	log     *logger.Logger
	cache   cache.Cache
	fetcher *bulletin.Fetcher
}

func main() {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:   "gazette",
		Short: "Official gazette ingestion",
		Long: `Gazette ingests the daily official gazette index and its documents,
classifies public-employment announcements and splits dispositions into
articles.

Example:
  gazette ingest --from 2026-01-05 --to 2026-01-09 --documents
  gazette index --date 2026-01-05
  gazette articles --id BOE-A-2026-201
  gazette ingest --from 2026-01-05 > report.md && gazette format -w report.md`,
		Version:      version,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "YAML configuration file (defaults are used when empty)")
	rootCmd.PersistentFlags().StringVar(&flags.envPath, "env", ".env", "dotenv file with secrets")
	rootCmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "override logging.level")

	rootCmd.AddCommand(ingestCmd(flags))
	rootCmd.AddCommand(indexCmd(flags))
	rootCmd.AddCommand(documentCmd(flags))
	rootCmd.AddCommand(articlesCmd(flags))
	rootCmd.AddCommand(classifyCmd(flags))
	rootCmd.AddCommand(scheduleCmd(flags))
	rootCmd.AddCommand(formatCmd())
	rootCmd.AddCommand(initConfigCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads the configuration file, or the defaults when path is
// empty, and applies environment overrides.
func loadConfig(flags *globalFlags) (*config.Config, error) {
	if err := config.LoadDotEnv(flags.envPath); err != nil {
		return nil, err
	}

	if flags.configPath != "" {
		cfg, err := config.LoadConfig(flags.configPath)
		if err != nil {
			return nil, err
		}

		if flags.logLevel != "" {
			cfg.Logging.Level = flags.logLevel
		}

		return cfg, nil
	}

	cfg := config.Default()
	cfg.ApplyEnv()

	if flags.logLevel != "" {
		cfg.Logging.Level = flags.logLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func newApp(flags *globalFlags) (*app, error) {
	cfg, err := loadConfig(flags)
	if err != nil {
		return nil, err
	}

	log := logger.New(os.Stderr, cfg.Logging.Level, cfg.Logging.Format)

	c, err := cache.New(cfg.Cache)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache: %w", err)
	}

	fetcher, err := bulletin.NewFetcher(cfg, bulletin.NewTransport(cfg, nil, c, log), log)
	if err != nil {
		_ = c.Close()

		return nil, err
	}

	return &app{cfg: cfg, log: log, cache: c, fetcher: fetcher}, nil
}

func (a *app) openStore(ctx context.Context) (store.Sink, error) {
	sink, err := store.Open(ctx, a.cfg.Store, a.log, payload.Open(a.log))
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", a.cfg.Store.Backend, err)
	}

	return sink, nil
}

func (a *app) close() {
	if err := a.cache.Close(); err != nil {
		a.log.Warn("failed to close cache", "error", err)
	}
}

// parseDate parses a YYYY-MM-DD flag. An empty value means today.
func parseDate(value string, now time.Time) (time.Time, error) {
	if value == "" {
		y, m, d := now.Date()

		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
	}

	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD): %w", value, err)
	}

	return t, nil
}

var errMissingInput = errors.New("one of --file or --id is required")
