package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"contas/internal/amqp"
	"contas/internal/config"
	contashttp "contas/internal/http"
	"contas/internal/log"
	"contas/internal/services"
	"contas/internal/store"
	"contas/internal/store/memory"
	"contas/internal/store/sqlite"
)

func main() {
	// .env is a local development convenience only.
	_ = godotenv.Load()

	logger := log.New(log.DefaultConfig())
	log.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}

	gw, cleanup, err := openGateway(cfg)
	if err != nil {
		logger.Error("failed to open data backend", log.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	defer cleanup()
	logger.Info("data backend ready", "backend", cfg.DataBackend)

	var bus services.SyncPublisher
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("amqp unavailable, transaction sync disabled", log.FieldError, err)
		} else {
			defer client.Close()
			bus = client
			logger.Info("amqp publisher ready", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	} else {
		logger.Info("amqp disabled, transaction sync is off")
	}

	ledger := services.NewLedger(gw, bus)
	srv := contashttp.NewServer(":"+cfg.Port, contashttp.Deps{
		Ledger:     ledger,
		Accounts:   services.NewAccountService(gw),
		Categories: services.NewCategoryService(gw),
		Goals:      services.NewGoalService(gw),
		Recurring:  services.NewRecurringProcessor(gw, ledger),
		Seeder:     services.NewSeeder(gw),
	}, contashttp.Options{
		CacheTTL:     cfg.CacheTTL,
		CacheMaxSize: cfg.CacheMaxSize,
	})

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "port", cfg.Port)
		errCh <- srv.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("shutdown signal received", "signal", sig.String())
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server failed", log.FieldError, err)
			os.Exit(1)
		}
		return
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("shutdown complete")
}

func openGateway(cfg *config.Config) (store.Gateway, func(), error) {
	switch cfg.DataBackend {
	case "memory":
		return memory.New(), func() {}, nil
	default:
		gw, err := sqlite.New(cfg.SQLiteDBPath)
		if err != nil {
			return nil, nil, err
		}
		return gw, func() { gw.Close() }, nil
	}
}
