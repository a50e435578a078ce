// =============================================================================
// CPS Positions - Serve Command
// =============================================================================
//
// This file defines the 'serve' command, which loads the dataset once and
// answers report requests over HTTP until interrupted.
//
// COMMAND USAGE:
//   positions serve [--addr :8080]
//
// ROUTES:
//   GET  /healthz
//   GET  /api/v1/catalog
//   POST /api/v1/report
//   POST /api/v1/report/chart.png?facet=N
//   POST /api/v1/export
//
// =============================================================================

package cmd

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/anthonymoser/cps-positions/internal/api"
	"github.com/anthonymoser/cps-positions/internal/config"
)

// shutdownTimeout bounds how long in-flight requests may take after SIGTERM.
const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve reports over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		a, err := bootstrap(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		svc := api.NewAPIService(a.reports, api.Options{AllowOrigins: a.cfg.Server.AllowOrigins}, a.log.Zap())

		errCh := make(chan error, 1)
		go func() {
			errCh <- svc.Serve(a.cfg.Server.Addr)
		}()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		a.log.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return svc.Shutdown(shutdownCtx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "Listen address (overrides server.addr)")
	settings.BindPFlag(config.KeyServerAddr, serveCmd.Flags().Lookup("addr"))
}
