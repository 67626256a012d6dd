package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cesargomez89/walkmlb/internal/domain"
)

func newSyncCmd() *cobra.Command {
	var (
		date  string
		force bool
		sweep bool
	)

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Sync one date (default: today in the configured zone) and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			if sweep {
				n, err := a.engine.SweepActive(cmd.Context())
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "swept tracked games, refreshed %d\n", n)
				return nil
			}

			d := a.engine.Today()
			if date != "" {
				if d, err = domain.ParseDate(date); err != nil {
					return err
				}
			}

			n, err := a.engine.RunOnce(cmd.Context(), d, force)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s: refreshed %d games\n", domain.FormatDate(d), n)
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Date to sync (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&force, "force", false, "Refresh games even if their cached status is final")
	cmd.Flags().BoolVar(&sweep, "sweep", false, "Sweep every tracked game instead of a date")
	return cmd
}
