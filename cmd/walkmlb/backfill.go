package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cesargomez89/walkmlb/internal/domain"
)

func newBackfillCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "backfill START END",
		Short: "Sync every date from START to END inclusive (YYYY-MM-DD)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := domain.ParseDate(args[0])
			if err != nil {
				return err
			}
			end, err := domain.ParseDate(args[1])
			if err != nil {
				return err
			}

			a, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			n, err := a.engine.BackfillRange(cmd.Context(), start, end, force)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s..%s: refreshed %d games\n",
				domain.FormatDate(start), domain.FormatDate(end), n)
			return err
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Refresh games even if their cached status is final")
	return cmd
}
