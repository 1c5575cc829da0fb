package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"budgetd/internal/amqp"
	"budgetd/internal/budget"
	"budgetd/internal/config"
	"budgetd/internal/log"
	"budgetd/internal/storage"
	"budgetd/internal/worker"
)

func main() {
	_ = godotenv.Load()

	cfg := log.DefaultConfig()
	cfg.Component = log.ComponentWorker
	logger := log.New(cfg)
	log.SetDefault(logger)

	appCfg := config.Load()
	if err := appCfg.Validate(); err != nil {
		logger.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(appCfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize storage", "error", err, "path", appCfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	service := budget.NewService(repo, repo)
	alerts := budget.NewAlertGenerator(repo, nil)
	sweeper := worker.NewSweepWorker(repo, service, alerts, appCfg.SweepInterval, appCfg.SweepConcurrency)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// With a broker configured the worker also consumes alert events
	// published by the API server and turns them into delivery log lines.
	if appCfg.AMQPURL != "" {
		client, err := amqp.NewClient(appCfg.AMQPURL, appCfg.AMQPExchange, appCfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to connect to AMQP", "error", err)
			os.Exit(1)
		}
		defer client.Close()

		go func() {
			err := client.ConsumeAlertEvents(ctx, func(msg *amqp.AlertCreatedMessage) error {
				return worker.HandleAlertEvent(ctx, msg)
			})
			if err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("Alert event consumer stopped", "error", err)
			}
		}()
		logger.Info("Alert event consumption enabled",
			"exchange", appCfg.AMQPExchange, "queue", appCfg.AMQPQueue)
	}

	logger.Info("Starting budget worker",
		"db", appCfg.SQLiteDBPath,
		"interval", appCfg.SweepInterval,
		"concurrency", appCfg.SweepConcurrency)

	if err := sweeper.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker error", "error", err)
		os.Exit(1)
	}

	logger.Info("Worker stopped gracefully")
}
