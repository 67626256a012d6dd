package main

import (
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "walkmlb",
	Short:         "walkmlb - MLB game data sync engine",
	Long:          "walkmlb polls the MLB Stats API, keeps a content-addressed snapshot cache and a per-game ledger in SQLite, and exposes admin controls over HTTP.",
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML config file (default: $WALKMLB_CONFIG or ./walkmlb.yaml)")

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newSyncCmd())
	rootCmd.AddCommand(newBackfillCmd())
	rootCmd.AddCommand(newCacheCmd())
	rootCmd.AddCommand(newStatusCmd())
}
