package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/aretw0/formwizard/internal/cli"
	"github.com/aretw0/formwizard/internal/dto"
	httpAdapter "github.com/aretw0/formwizard/pkg/adapters/http"
	"github.com/aretw0/formwizard/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve [definition]",
	Short: "Serve a wizard over HTTP",
	Long: `Exposes the wizard as a JSON API with server-sent events and Prometheus metrics.
Sessions live in the configured store, so several servers can share a redis store.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd, args)
		if err != nil {
			return err
		}
		logger, err := cli.NewLogger(cfg.LogLevel, cfg.LogFormat, false)
		if err != nil {
			return err
		}

		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		metrics, err := observability.NewMetrics(reg, dto.TrimExtension(filepath.Base(cfg.Definition)))
		if err != nil {
			return err
		}

		engine, err := cli.NewEngine(cfg, logger, metrics.Hooks())
		if err != nil {
			return err
		}
		p, err := cli.NewPersistence(cfg, logger)
		if err != nil {
			return err
		}
		defer p.Close()

		sc := cli.NewSignalContext(cmd.Context())
		defer sc.Cancel()

		srv, err := httpAdapter.NewServer(sc, engine, p.Manager,
			httpAdapter.WithLogger(logger),
			httpAdapter.WithMetricsHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})),
		)
		if err != nil {
			return err
		}

		httpServer := &http.Server{
			Addr:              cfg.Addr,
			Handler:           srv.Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)
		go func() {
			logger.Info("serving wizard", "addr", cfg.Addr, "definition", cfg.Definition, "store", cfg.Store)
			serverErrors <- httpServer.ListenAndServe()
		}()

		select {
		case err := <-serverErrors:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		case <-sc.Done():
			logger.Info("shutting down", "signal", sc.Signal())

			// Give outstanding requests a deadline for completion.
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := httpServer.Shutdown(ctx); err != nil {
				httpServer.Close()
				return fmt.Errorf("graceful shutdown did not complete: %w", err)
			}
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", ":8080", "Address to listen on")
}
