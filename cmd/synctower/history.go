package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/vmunix/synctower/internal/history"
)

func newHistoryCmd(flags *rootFlags) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "Show recent runs, or one run in detail",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags.configPath)
			if err != nil {
				return err
			}
			if _, err := os.Stat(cfg.Database.Path); errors.Is(err, os.ErrNotExist) {
				fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded")
				return nil
			}

			log, err := history.Open(cmd.Context(), cfg.Database.Path)
			if err != nil {
				return fmt.Errorf("open history: %w", err)
			}
			defer log.Close()

			if len(args) == 1 {
				run, err := log.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if flags.jsonOutput {
					return printJSON(cmd.OutOrStdout(), run.Report)
				}
				printReport(cmd.OutOrStdout(), run.Report)
				return nil
			}

			runs, err := log.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if flags.jsonOutput {
				reports := make([]any, 0, len(runs))
				for _, r := range runs {
					reports = append(reports, r.Report)
				}
				return printJSON(cmd.OutOrStdout(), reports)
			}

			printRuns(cmd, runs, time.Now())
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of runs to show")
	return cmd
}

func printRuns(cmd *cobra.Command, runs []history.Run, now time.Time) {
	if len(runs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded")
		return
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Recent Runs (%d):\n\n", len(runs))
	fmt.Fprintf(w, "  %-36s %-10s %-10s %7s %7s %10s\n", "RUN", "OUTCOME", "STARTED", "SYNCED", "FAILED", "DURATION")
	fmt.Fprintln(w, "  "+strings.Repeat("-", 86))
	for _, r := range runs {
		fmt.Fprintf(w, "  %-36s %-10s %-10s %7d %7d %10s\n",
			r.RunID, r.Outcome, formatAgo(now.Sub(r.StartedAt)), r.Synced, r.Failed,
			r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond))
	}
}

func formatAgo(d time.Duration) string {
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}
