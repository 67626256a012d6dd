package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the snapshot cache",
	}
	cmd.AddCommand(newCacheSummaryCmd())
	cmd.AddCommand(newCacheClearCmd())
	return cmd
}

func newCacheSummaryCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show row counts, latest update and payload size per kind",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			sum, err := a.engine.CacheSummary(cmd.Context())
			if err != nil {
				return err
			}

			switch format {
			case "json":
				return outputJSON(cmd.OutOrStdout(), sum)
			case "table":
				renderCacheSummary(cmd.OutOrStdout(), sum)
				return nil
			default:
				return fmt.Errorf("invalid format: %s (valid values: table, json)", format)
			}
		},
	}

	cmd.Flags().StringVar(&format, "format", "table", "Output format: table or json")
	return cmd
}

func newCacheClearCmd() *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete cached rows of one kind, or all of them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			n, err := a.engine.ClearCache(cmd.Context(), kind)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "removed %d rows (%s)\n", n, kind)
			return nil
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "all", "Kind to clear: boxscore, linescore, status or all")
	return cmd
}
