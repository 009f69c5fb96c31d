package main

import (
	"context"
	"errors"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"posjournal/internal/amqp"
	"posjournal/internal/cli"
	"posjournal/internal/config"
	applog "posjournal/internal/log"
	gsheet "posjournal/internal/sheets/google"
	"posjournal/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig((*config.Config).ValidateWorker)
	logger := cli.SetupLogger(cfg, applog.ComponentWorker)

	logger.Info("Starting posjournal-worker")
	if cfg.DataBackend == "memory" {
		logger.Warn("Memory backend is not shared with the server; reconcile only sees seeded data",
			"backend", cfg.DataBackend)
	}

	ctx, stop := cli.SignalContext(context.Background())
	defer stop()

	// The worker reads the journal but never publishes.
	app, err := cli.Bootstrap(ctx, cfg, logger, false)
	if err != nil {
		logger.Error("Failed to open journal", applog.FieldError, err)
		os.Exit(1)
	}
	defer app.Close()

	sheetsClient, err := gsheet.New(ctx, gsheet.Options{
		SpreadsheetID:   cfg.GoogleSpreadsheetID,
		SheetName:       cfg.GoogleSheetName,
		CredentialsJSON: cfg.GoogleServiceAccountJSON,
		CredentialsFile: cfg.GoogleServiceAccountFile,
	})
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", applog.FieldError, err)
		os.Exit(1)
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", applog.FieldError, err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	mirror := worker.NewMirrorWorker(sheetsClient, app.Backend.Store)
	if err := mirror.Prepare(ctx); err != nil {
		// Don't exit; appends still work without a header row.
		logger.Error("Failed to prepare sheet", applog.FieldError, err)
	}

	reconcile := func(ctx context.Context) {
		synced, err := mirror.Reconcile(ctx)
		if err != nil {
			logger.Error("Reconcile failed", applog.FieldError, err, applog.FieldOperation, applog.OpMirror)
			return
		}
		if synced > 0 {
			logger.Info("Reconciled missing rows", "count", synced)
		}
	}

	// Catch up on sales recorded while the worker was down.
	reconcile(ctx)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return amqpClient.ConsumeJournalEvents(gctx, mirror.HandleEvent)
	})
	g.Go(func() error {
		ticker := time.NewTicker(cfg.ReconcileInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case <-ticker.C:
				reconcile(gctx)
			}
		}
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped", applog.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Worker shutdown complete")
}
