package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/cesargomez89/walkmlb/internal/constants"
	httpapp "github.com/cesargomez89/walkmlb/internal/http"
	"github.com/cesargomez89/walkmlb/internal/supervisor"
)

func newServeCmd() *cobra.Command {
	var noScheduler bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the scheduler loop and the admin HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := bootstrap(ctx)
			if err != nil {
				return err
			}
			defer func() {
				if err := a.Close(); err != nil {
					a.log.Error("Shutdown error", "error", err)
				}
			}()

			h := httpapp.NewHandler(a.engine, a.log)
			srv := &http.Server{
				Addr:              ":" + a.cfg.Server.Port,
				Handler:           h.Router(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			tree := supervisor.NewTree(a.log, supervisor.TreeConfig{ShutdownTimeout: constants.DefaultShutdown})
			if !noScheduler {
				tree.AddSyncService(supervisor.NewSchedulerService(a.engine))
			}
			tree.AddAPIService(supervisor.NewHTTPServerService(srv, constants.DefaultShutdown))

			a.log.Info("Server listening", "addr", srv.Addr, "scheduler", !noScheduler, "version", version)
			err = tree.Serve(ctx)
			if errors.Is(err, context.Canceled) {
				err = nil
			}
			if report, rerr := tree.UnstoppedServiceReport(); rerr == nil && len(report) > 0 {
				a.log.Warn("Services did not stop in time", "count", len(report))
			}
			a.log.Info("Server exiting")
			return err
		},
	}

	cmd.Flags().BoolVar(&noScheduler, "no-scheduler", false, "Serve the admin API without running the scheduler loop")
	return cmd
}
