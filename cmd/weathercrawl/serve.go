package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"github.com/use-agent/weathercrawl/api"
	"github.com/use-agent/weathercrawl/scraper"
)

// shutdownGrace is how long in-flight requests get after a signal.
const shutdownGrace = 5 * time.Second

func newServeCmd() *cobra.Command {
	var logLevel string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the scraper over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, scrapeFlags{logLevel: logLevel})
			if err != nil {
				return err
			}

			sc, err := scraper.NewFromConfig(cfg)
			if err != nil {
				return err
			}

			addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
			srv := &http.Server{
				Addr:              addr,
				Handler:           api.NewRouter(sc, cfg, time.Now()),
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				slog.Info("HTTP server listening", "addr", addr, "engine", sc.Engine())
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				return err
			case <-cmd.Context().Done():
			}

			slog.Info("shutdown signal received")
			ctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil {
				slog.Error("HTTP server forced shutdown", "error", err)
				return err
			}
			slog.Info("HTTP server drained gracefully")
			return nil
		},
	}

	cmd.Flags().StringVar(&logLevel, "log-level", "INFO", "logging level (DEBUG, INFO, WARNING, ERROR, CRITICAL)")
	return cmd
}
