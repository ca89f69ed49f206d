package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"contas/internal/amqp"
	"contas/internal/config"
	"contas/internal/log"
	"contas/internal/services"
	"contas/internal/store"
	"contas/internal/store/sqlite"
)

func main() {
	_ = godotenv.Load()

	logger := log.New(log.Config{Component: log.ComponentRecurring})
	log.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}

	gw, err := sqlite.New(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("failed to open sqlite backend", log.FieldError, err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer gw.Close()

	var bus services.SyncPublisher
	var alerts *amqp.Client
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("amqp unavailable, alerts will only be logged", log.FieldError, err)
		} else {
			defer client.Close()
			bus = client
			alerts = client
		}
	}

	ledger := services.NewLedger(gw, bus)
	processor := services.NewRecurringProcessor(gw, ledger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger.Info("recurring worker started",
		"interval", cfg.RecurringInterval, "db", cfg.SQLiteDBPath)

	runPass(ctx, logger, gw, ledger, processor, alerts)

	ticker := time.NewTicker(cfg.RecurringInterval)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case sig := <-sigCh:
			logger.Info("shutdown signal received", "signal", sig.String())
			return
		case <-ticker.C:
			runPass(ctx, logger, gw, ledger, processor, alerts)
		}
	}
}

// runPass materializes due recurring transactions for every owner, then
// scans due-date alerts and hands them to the alerts queue when a broker
// is configured.
func runPass(ctx context.Context, logger *log.Logger, gw store.Gateway, ledger *services.Ledger, processor *services.RecurringProcessor, alerts *amqp.Client) {
	now := time.Now()

	count, err := processor.ProcessAll(ctx, now)
	if err != nil {
		logger.Error("recurring pass failed", log.FieldError, err)
	} else {
		logger.Info("recurring pass complete", "transactions_created", count)
	}

	lister, ok := gw.(store.OwnerLister)
	if !ok {
		return
	}
	owners, err := lister.ListOwners(ctx, store.CollTransactions)
	if err != nil {
		logger.Warn("could not list owners for alerts", log.FieldError, err)
		return
	}
	for _, owner := range owners {
		for _, alert := range ledger.CheckUpcomingAlerts(ctx, owner, now) {
			logger.Info("due date alert",
				log.FieldOwnerID, owner,
				"severity", alert.Type,
				"message", alert.Message)
			if alerts == nil {
				continue
			}
			err := alerts.PublishAlert(ctx, &amqp.AlertMessage{
				OwnerID:   owner,
				Title:     alert.Title,
				Message:   alert.Message,
				Severity:  string(alert.Type),
				Timestamp: now,
			})
			if err != nil {
				logger.Warn("failed to publish alert", log.FieldError, err, log.FieldOwnerID, owner)
			}
		}
	}
}
