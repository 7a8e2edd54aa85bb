// Package main is the entry point for the lodge admin backend.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lodge-admin/backend/internal/config"
	"github.com/lodge-admin/backend/internal/logging"
	"github.com/lodge-admin/backend/internal/storage"
)

// version is set at build time via -ldflags "-X main.version=x.y.z".
var version = "dev"

// app carries what every subcommand needs after startup.
type app struct {
	cfg    config.Config
	logger *zap.Logger
}

type rootFlags struct {
	envFile   string
	dataDir   string
	logLevel  string
	logFormat string
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	a := &app{}

	root := &cobra.Command{
		Use:           "lodge",
		Short:         "Lodge admin backend: cabins, bookings and customer statistics",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(flags.envFile)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("data-dir") {
				cfg.DataDir = flags.dataDir
			}
			if cmd.Flags().Changed("log-level") {
				cfg.LogLevel = flags.logLevel
			}
			if cmd.Flags().Changed("log-format") {
				cfg.LogFormat = flags.logFormat
			}

			logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.logger = logger.With(zap.String("version", version))
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.logger != nil {
				a.logger.Sync()
			}
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.envFile, "env-file", ".env", "dotenv file to load before reading the environment")
	pf.StringVar(&flags.dataDir, "data-dir", "", "directory holding the SQLite database (LODGE_DATA_DIR)")
	pf.StringVar(&flags.logLevel, "log-level", "", "log level: debug, info, warn, error (LOG_LEVEL)")
	pf.StringVar(&flags.logFormat, "log-format", "", "log encoding: json or console (LOG_FORMAT)")

	root.AddCommand(
		newServeCmd(a),
		newReconcileCmd(a),
		newMigrateCmd(a),
		newHealthCheckCmd(a),
	)
	return root
}

// openDB opens the database and applies pending migrations, returning the
// names of the migrations it applied.
func (a *app) openDB(ctx context.Context) (*storage.DB, []string, error) {
	db, err := storage.NewDB(a.cfg.DBPath())
	if err != nil {
		return nil, nil, fmt.Errorf("opening database: %w", err)
	}
	applied, err := storage.RunMigrations(ctx, db, a.logger)
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("running migrations: %w", err)
	}
	return db, applied, nil
}
