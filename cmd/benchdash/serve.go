package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"benchdash/internal/config"
	"benchdash/internal/metrics"
	"benchdash/internal/source"
	"benchdash/internal/web"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// dashboardServer is the part of web.Server the serve command drives.
type dashboardServer interface {
	Start() error
	Stop(ctx context.Context) error
}

var newServerFunc = func(src source.Source, addr string) dashboardServer {
	return web.NewServer(src, metrics.NewMetrics(nil), addr, config.IndexOptions()...)
}

var shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dashboard and its JSON API",
	Long: `Starts the web dashboard. Every request reads a fresh snapshot from the
configured source; the page, the chart API and Prometheus metrics are served
from the same address.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "Listen address (default 127.0.0.1:8081)")
	viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))
}

func runServe(cmd *cobra.Command, args []string) error {
	src, err := newSourceFunc(config.Source())
	if err != nil {
		return err
	}
	defer src.Close()

	addr := viper.GetString("server.addr")
	srv := newServerFunc(src, addr)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()
	fmt.Fprintf(cmd.OutOrStdout(), "Dashboard on http://%s (source: %s)\n", addr, src.Name())

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down dashboard")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-errCh
}
