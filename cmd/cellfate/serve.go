package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/aretw0/cellfate"
	httpAdapter "github.com/aretw0/cellfate/pkg/adapters/http"
	"github.com/aretw0/cellfate/pkg/observability"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run a simulation behind the HTTP inspection API",
	Long: `Runs the model in the background while serving the cell snapshots, step summaries,
the network topology and Prometheus metrics over HTTP. The server keeps answering after
the run finishes until it receives SIGINT or SIGTERM.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := newLogger(cmd)
		if err != nil {
			return err
		}
		port, _ := cmd.Flags().GetString("port")
		interval, _ := cmd.Flags().GetDuration("interval")

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		cmd.SetContext(ctx)

		metrics := observability.NewMetrics()
		sim, err := newSimulation(cmd, logger, cellfate.WithLifecycleHooks(
			observability.Merge(metrics.Hooks(), observability.LoggingHooks(logger)),
		))
		if err != nil {
			return err
		}
		defer sim.Close()

		srv := &http.Server{
			Addr: ":" + port,
			Handler: httpAdapter.NewHandler(sim,
				httpAdapter.WithMetrics(metrics.Handler()),
				httpAdapter.WithLogger(logger)),
			ReadHeaderTimeout: 5 * time.Second,
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)
		go func() {
			logger.Info("server listening", "addr", srv.Addr)
			serverErrors <- srv.ListenAndServe()
		}()

		go func() {
			if err := runPaced(ctx, sim, interval); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("run failed", "err", err)
				return
			}
			logger.Info("run complete; still serving", "steps", sim.Clock())
		}()

		select {
		case err := <-serverErrors:
			return err
		case <-ctx.Done():
		}

		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("graceful shutdown did not complete", "err", err)
			return srv.Close()
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	addSimulationFlags(serveCmd)
	serveCmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	serveCmd.Flags().Duration("interval", 0, "Pause between global steps so the run can be watched")
}

// runPaced runs every global step, sleeping interval between them. The run lease is
// held for the whole paced run, as Run does.
func runPaced(ctx context.Context, sim *cellfate.Simulation, interval time.Duration) error {
	if interval <= 0 {
		return sim.Run(ctx)
	}
	release, err := sim.Lease(ctx)
	if err != nil {
		return err
	}
	defer release()

	total := sim.Config().Scheduler.TotalSteps
	for sim.Clock() < total {
		if err := sim.Step(ctx); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
	}
	return nil
}
