package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	app "github.com/okian/courtstats/internal/app"
	"github.com/okian/courtstats/internal/config"
	"github.com/okian/courtstats/pkg/logger"
)

// rootFlags override values loaded from the environment and config file.
type rootFlags struct {
	configFile string
	driver     string
	dsn        string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	f := &rootFlags{}
	cmd := &cobra.Command{
		Use:          "statsctl",
		Short:        "Load and query courtstats data",
		Long:         "statsctl imports teams, games and players into the configured store and prints player summaries.",
		SilenceUsage: true,
	}
	pf := cmd.PersistentFlags()
	pf.StringVar(&f.configFile, "config", "", "YAML config file (overrides COURTSTATS_CONFIG)")
	pf.StringVar(&f.driver, "driver", "", "storage driver: memory, sqlite or postgres")
	pf.StringVar(&f.dsn, "dsn", "", "database DSN for sqlite or postgres")
	pf.StringVar(&f.logLevel, "log-level", "", "log level: debug, info, warn or error")

	cmd.AddCommand(
		newLoadCmd(f),
		newSummaryCmd(f),
		newPlayersCmd(f),
		newGenerateCmd(),
	)
	return cmd
}

// loadConfig resolves configuration the same way the server does and then
// applies command line overrides.
func (f *rootFlags) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	if f.configFile != "" {
		if err := os.Setenv("COURTSTATS_CONFIG", f.configFile); err != nil {
			return nil, fmt.Errorf("set config path: %w", err)
		}
	}
	cfg, err := config.Load(cmd.Context())
	if err != nil {
		return nil, err
	}
	if f.driver != "" {
		cfg.StorageDriver = f.driver
	}
	if f.dsn != "" {
		cfg.DatabaseDSN = f.dsn
	}
	if f.logLevel != "" {
		cfg.LogLevel = f.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		return nil, err
	}
	return cfg, nil
}

// serviceFunc is the body of a command that needs a started service.
type serviceFunc func(cmd *cobra.Command, cfg *config.Config, svc *app.Service, args []string) error

// withService runs fn against a started service. The memory store starts
// empty on every run, so query commands (preload) import data_dir first
// when it is in use.
func withService(f *rootFlags, preload bool, fn serviceFunc) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := f.loadConfig(cmd)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		loadOnStart := preload && cfg.StorageDriver == config.DriverMemory
		svc := app.New(
			app.WithLogger(logger.Get().Named("statsctl")),
			app.WithStorage(cfg.StorageDriver, cfg.DatabaseDSN),
			app.WithDataDir(cfg.DataDir, loadOnStart),
			app.WithRankBatchSize(cfg.RankBatchSize),
			app.WithRankCacheTTL(0),
		)
		if err := svc.Start(cmd.Context()); err != nil {
			return fmt.Errorf("start service: %w", err)
		}
		defer svc.Stop()
		return fn(cmd, cfg, svc, args)
	}
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
