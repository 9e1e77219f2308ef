package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func newServeCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run reconciliation on a schedule",
		Long:  "Runs the reconciliation loop until interrupted. Serves Prometheus metrics when metrics.addr is set.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cmd, flags)
		},
	}
}

func runServe(ctx context.Context, cmd *cobra.Command, flags *rootFlags) error {
	cfg, err := loadConfig(flags.configPath)
	if err != nil {
		return err
	}

	logger := newLogger(cmd.OutOrStdout(), cfg.Log.Level)
	a := newApp(ctx, cfg, logger)
	defer a.Close()

	if cfg.Sync.BaseURL == "" {
		logger.Warn("sync.base_url is empty, every run will be skipped")
	}
	logger.Info("synctower starting",
		"version", version,
		"interval", cfg.Sync.Interval.String(),
		"database", cfg.Database.Path,
		"metrics", cfg.Metrics.Addr,
		"log_level", cfg.Log.Level,
	)

	err = a.runner.Run(ctx)
	if errors.Is(err, context.Canceled) {
		err = nil
	}
	logger.Info("synctower stopped")
	return err
}
