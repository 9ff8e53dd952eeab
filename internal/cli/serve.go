package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/yuzvak/storefront-cart/internal/infrastructure/http/server"
	"github.com/yuzvak/storefront-cart/internal/infrastructure/monitoring"
)

func NewServeCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the cart HTTP API and metrics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
			defer stop()

			app, err := opts.App(ctx)
			if err != nil {
				return err
			}
			log := app.Log

			if app.DBMetrics != nil {
				app.DBMetrics.StartCollecting(ctx, 30*time.Second)
			}
			if app.Janitor != nil {
				go app.Janitor.Start(ctx)
				defer app.Janitor.Stop()
			}

			httpServer := server.NewServer(app.Config.Server, server.Dependencies{
				Carts:    app.Carts,
				Checkout: app.Checkout,
				Checks:   app.Checks,
			}, log)

			var metricsServer *monitoring.MetricsServer
			if addr := app.Config.Metrics.Addr; addr != "" {
				metricsServer = monitoring.NewMetricsServer(addr)
				go func() {
					if err := metricsServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
						log.Error("Metrics server failed", "error", err)
					}
				}()
			}

			errCh := make(chan error, 1)
			go func() {
				errCh <- httpServer.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				log.Error("Server shutdown error", "error", err)
			}
			if metricsServer != nil {
				if err := metricsServer.Stop(shutdownCtx); err != nil {
					log.Error("Metrics server shutdown error", "error", err)
				}
			}

			log.Info("Server stopped")
			return nil
		},
	}
}
