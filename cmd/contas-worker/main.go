package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"contas/internal/amqp"
	"contas/internal/config"
	"contas/internal/log"
	"contas/internal/sheets"
	"contas/internal/sheets/google"
	sheetsmem "contas/internal/sheets/memory"
	"contas/internal/store/sqlite"
	"contas/internal/worker"
)

func main() {
	_ = godotenv.Load()

	logger := log.New(log.Config{Component: log.ComponentWorker})
	log.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the sync worker")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gw, err := sqlite.New(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("failed to open sqlite backend", log.FieldError, err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer gw.Close()

	mirror, err := openMirror(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize sheet mirror", log.FieldError, err)
		os.Exit(1)
	}

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("failed to connect to amqp", log.FieldError, err)
		os.Exit(1)
	}
	defer client.Close()

	syncWorker := worker.NewSyncWorker(gw, mirror)

	logger.Info("sync worker started",
		"exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return client.ConsumeTransactionSync(gctx, func(msg *amqp.TransactionSyncMessage) error {
			return syncWorker.HandleMessage(gctx, msg)
		})
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("consumer stopped", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("shutdown complete")
}

// openMirror prefers the real spreadsheet and falls back to the
// in-memory mirror when no spreadsheet is configured. The fallback keeps
// local development working without Google credentials.
func openMirror(ctx context.Context, cfg *config.Config, logger *log.Logger) (sheets.TransactionMirror, error) {
	if cfg.GoogleSpreadsheetID == "" {
		logger.Warn("no spreadsheet configured, mirroring in memory only")
		return sheetsmem.New(), nil
	}
	client, err := google.NewFromEnv(ctx)
	if err != nil {
		return nil, err
	}
	logger.Info("sheet mirror ready",
		"spreadsheet_id", cfg.GoogleSpreadsheetID, "sheet", cfg.GoogleSheetName)
	return client, nil
}
