package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

// flags shared by every subcommand
type rootFlags struct {
	configPath string
	jsonOutput bool
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:   "synctower",
		Short: "Keep a media mirror in step with a remote catalog",
		Long: `synctower - periodic catalog to mirror reconciliation

Compares movie and show counts between a remote catalog and a mirror
database, fetches what the mirror is missing, and appends the new items.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "Path to config file (default: search SYNCTOWER_CONFIG, ./config.toml, XDG, /etc)")
	cmd.PersistentFlags().BoolVar(&flags.jsonOutput, "json", false, "Output as JSON")

	cmd.Version = version
	cmd.SetVersionTemplate("synctower {{.Version}}\n")

	cmd.AddCommand(
		newServeCmd(flags),
		newOnceCmd(flags),
		newHistoryCmd(flags),
		newConfigCmd(flags),
		newVersionCmd(),
	)
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "synctower %s\n", version)
		},
	}
}

func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
