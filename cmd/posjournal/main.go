package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"posjournal/internal/cache"
	"posjournal/internal/cli"
	apphttp "posjournal/internal/http"
	applog "posjournal/internal/log"
)

const (
	shutdownTimeout   = 30 * time.Second
	cacheCleanupEvery = 5 * time.Minute
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig(nil)
	logger := cli.SetupLogger(cfg, applog.ComponentApp)

	ctx, stop := cli.SignalContext(context.Background())
	defer stop()

	app, err := cli.Bootstrap(ctx, cfg, logger, true)
	if err != nil {
		logger.Error("Failed to initialize journal", applog.FieldError, err, applog.FieldOperation, applog.OpStartup)
		os.Exit(1)
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Error("Backend cleanup failed", applog.FieldError, err)
		}
	}()

	srv := apphttp.NewServer(":"+cfg.Port, app.Service, apphttp.Options{
		Ready:     app.Backend.Ping,
		Logger:    logger,
		CacheSize: cfg.ReportCacheSize,
		CacheTTL:  cfg.ReportCacheTTL,

		DisableReportCache: cfg.ReportCacheTTL == 0,

		RequestsPerMinute: cfg.RequestsPerMinute,
	})
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	go cache.NewManager(srv.Caches()...).Run(ctx, cacheCleanupEvery)

	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)
		<-ctx.Done()
		logger.Info("Shutdown signal received", applog.FieldOperation, applog.OpShutdown)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", applog.FieldError, err)
		}
	}()

	logger.Info("Starting posjournal server",
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		"catalog_items", app.Catalog.Len(),
		"events", cfg.AMQPURL != "")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", applog.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	// ListenAndServe returns as soon as Shutdown starts; wait for in-flight
	// requests to drain.
	<-shutdownDone
	logger.Info("Server stopped gracefully")
}
