package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/fidde/fprime_openmct/internal/api"
	"github.com/fidde/fprime_openmct/internal/config"
	"github.com/fidde/fprime_openmct/internal/dictionary"
	"github.com/fidde/fprime_openmct/internal/host"
	"github.com/fidde/fprime_openmct/internal/logging"
	"github.com/fidde/fprime_openmct/internal/observability"
	"github.com/fidde/fprime_openmct/internal/plugin"
	"github.com/fidde/fprime_openmct/web"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the REST API over the dictionary objects",
		Long: `Run the REST API. Configuration is read from --config (YAML) and
FPRIME_OPENMCT_* environment variables.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to the YAML config file")
	return cmd
}

func serve(ctx context.Context, cfg config.Config) error {
	logger, err := logging.New(cfg.Log, os.Stderr)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)
	logger.Info("Starting F´ Open MCT dictionary adapter...")

	metrics := observability.NewMetrics()

	loader, closeLoader, err := dictionary.New(cfg.Dictionary, metrics, logger)
	if err != nil {
		return fmt.Errorf("creating dictionary loader: %w", err)
	}
	defer func() {
		if err := closeLoader(); err != nil {
			logger.Error("Error closing dictionary loader", "error", err)
		}
	}()

	h := host.New()
	if err := plugin.Install(h, loader,
		plugin.WithTelemetryType(cfg.TelemetryType),
		plugin.WithMetrics(metrics),
	); err != nil {
		return fmt.Errorf("installing dictionary plugin: %w", err)
	}
	logger.Info("Dictionary plugin installed", "roots", len(h.Roots()), "types", h.TypeNames())

	docs, err := web.NewDictionaryFileSystem(cfg.DictionaryFile)
	if err != nil {
		return fmt.Errorf("opening dictionary file: %w", err)
	}
	if cfg.DictionaryFile == "" {
		logger.Info("Serving embedded sample dictionary", "path", dictionary.DefaultPath)
	} else {
		logger.Info("Serving dictionary file", "file", cfg.DictionaryFile, "path", dictionary.DefaultPath)
	}
	if !docs.Exists() {
		logger.Warn("Dictionary document cannot be opened; the http backend will fail against this server",
			"path", dictionary.DefaultPath)
	}

	apiServer := api.NewServer(cfg.APIAddr, h, docs, metrics)

	errChan := make(chan error, 1)
	go func() {
		logger.Info("Starting REST API server", "addr", cfg.APIAddr)
		if err := apiServer.Start(); err != nil {
			errChan <- fmt.Errorf("API server error: %w", err)
		}
	}()

	logger.Info("API endpoints",
		"roots", fmt.Sprintf("http://%s/api/v1/roots", cfg.APIAddr),
		"objects", fmt.Sprintf("http://%s/api/v1/objects/{namespace:key}", cfg.APIAddr),
		"types", fmt.Sprintf("http://%s/api/v1/types", cfg.APIAddr),
		"health", fmt.Sprintf("http://%s/api/v1/health", cfg.APIAddr),
		"metrics", fmt.Sprintf("http://%s/metrics", cfg.APIAddr),
	)

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		logger.Info("Received shutdown signal, shutting down...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error shutting down API server", "error", err)
	}

	logger.Info("Shutdown complete")
	return nil
}
