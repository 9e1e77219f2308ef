package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/vmunix/synctower/internal/reconcile"
)

func newOnceCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "once",
		Short: "Run a single reconciliation and print the report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(flags.configPath)
			if err != nil {
				return err
			}

			// Logs go to stderr so stdout stays parseable.
			logger := newLogger(cmd.ErrOrStderr(), cfg.Log.Level)
			a := newApp(cmd.Context(), cfg, logger)
			defer a.Close()

			report, runErr := a.runner.RunOnce(cmd.Context())
			if report != nil {
				if flags.jsonOutput {
					if err := printJSON(cmd.OutOrStdout(), report); err != nil {
						return err
					}
				} else {
					printReport(cmd.OutOrStdout(), report)
				}
			}
			if runErr != nil {
				return fmt.Errorf("run %s: %w", reportID(report), runErr)
			}
			return nil
		},
	}
}

func reportID(r *reconcile.Report) string {
	if r == nil {
		return "(none)"
	}
	return r.RunID
}

func printReport(w io.Writer, r *reconcile.Report) {
	fmt.Fprintf(w, "Run:      %s\n", r.RunID)
	fmt.Fprintf(w, "Outcome:  %s", r.Outcome)
	if r.Reason != "" {
		fmt.Fprintf(w, " (%s)", r.Reason)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Duration: %s\n", r.Duration().Round(time.Millisecond))

	if len(r.Categories) == 0 {
		return
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %-8s %8s %8s %8s %8s %8s %8s\n", "CATEGORY", "REMOTE", "MIRROR", "DEFICIT", "FETCHED", "SYNCED", "FAILED")
	fmt.Fprintln(w, "  "+strings.Repeat("-", 62))
	for _, c := range r.Categories {
		fmt.Fprintf(w, "  %-8s %8d %8d %8d %8d %8d %8d\n",
			c.Category, c.RemoteTotal, c.MirrorCount, c.Deficit, c.Fetched, c.Synced, c.Failed)
	}

	for _, c := range r.Categories {
		switch {
		case c.Error != "":
			fmt.Fprintf(w, "\n  %s: %s\n", c.Category, c.Error)
		case c.PagesFailed > 0:
			fmt.Fprintf(w, "\n  %s: %d page(s) could not be fetched\n", c.Category, c.PagesFailed)
		}
	}
}
