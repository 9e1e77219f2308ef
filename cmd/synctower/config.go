package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/vmunix/synctower/internal/config"
)

func newConfigCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "test [path]",
		Short: "Validate configuration file",
		Long:  "Validates config.toml syntax, field values, and environment variable substitution without running a sync.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := flags.configPath
			if len(args) > 0 {
				path = args[0]
			}
			if path == "" {
				found, err := config.Discover()
				if err != nil {
					return err
				}
				path = found
			}
			return runConfigTest(cmd.OutOrStdout(), path)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "init [path]",
		Short: "Write an example configuration file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.DefaultPath()
			if len(args) > 0 {
				path = args[0]
			}
			if err := config.WriteDefault(path); err != nil {
				return fmt.Errorf("write config: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	})

	return cmd
}

func runConfigTest(w io.Writer, path string) error {
	fmt.Fprintf(w, "Validating %s...\n\n", path)

	cfg, err := config.Load(path)
	if err != nil {
		var configErr *config.ConfigError
		if errors.As(err, &configErr) {
			printConfigErrors(w, configErr)
			return fmt.Errorf("configuration invalid")
		}
		return fmt.Errorf("failed to load config: %w", err)
	}

	printConfigSummary(w, cfg)
	fmt.Fprintln(w, "\nConfiguration valid!")
	return nil
}

func printConfigErrors(w io.Writer, e *config.ConfigError) {
	if len(e.Missing) > 0 {
		fmt.Fprintln(w, "Missing environment variables:")
		for _, m := range e.Missing {
			fmt.Fprintf(w, "  - %s\n", m)
		}
		fmt.Fprintln(w)
	}

	if len(e.Errors) > 0 {
		fmt.Fprintln(w, "Validation errors:")
		for _, err := range e.Errors {
			fmt.Fprintf(w, "  - %s\n", err)
		}
		fmt.Fprintln(w)
	}
}

func printConfigSummary(w io.Writer, cfg *config.Config) {
	baseURL := cfg.Sync.BaseURL
	if baseURL == "" {
		baseURL = "(not set, runs are skipped)"
	}
	metricsAddr := cfg.Metrics.Addr
	if metricsAddr == "" {
		metricsAddr = "disabled"
	}
	rate := "unlimited"
	if cfg.HTTP.RateLimit.RequestsPerSecond > 0 {
		rate = fmt.Sprintf("%g/s (burst %d)", cfg.HTTP.RateLimit.RequestsPerSecond, cfg.HTTP.RateLimit.Burst)
	}
	breaker := fmt.Sprintf("opens after %d failures for %s", cfg.HTTP.Breaker.MaxFailures, cfg.HTTP.Breaker.OpenTimeout)
	if cfg.HTTP.Breaker.Disabled {
		breaker = "disabled"
	}

	fmt.Fprintln(w, "Configuration Summary:")
	fmt.Fprintf(w, "  Base URL:   %s\n", baseURL)
	fmt.Fprintf(w, "  Interval:   %s (on startup: %v)\n", cfg.Sync.Interval, cfg.Sync.RunOnStartup)
	fmt.Fprintf(w, "  Retry:      %d attempts, backoff %s up to %s, statuses %v\n",
		cfg.HTTP.Retry.MaxAttempts, cfg.HTTP.Retry.Backoff, cfg.HTTP.Retry.MaxBackoff, cfg.HTTP.Retry.Statuses)
	fmt.Fprintf(w, "  Breaker:    %s\n", breaker)
	fmt.Fprintf(w, "  Rate limit: %s\n", rate)
	fmt.Fprintf(w, "  Database:   %s\n", cfg.Database.Path)
	fmt.Fprintf(w, "  Metrics:    %s\n", metricsAddr)
	fmt.Fprintf(w, "  Log level:  %s\n", cfg.Log.Level)
}
