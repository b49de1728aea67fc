package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/magabrotheeeer/studysprint/internal/config"
	"github.com/magabrotheeeer/studysprint/internal/lib/sl"
	"github.com/magabrotheeeer/studysprint/internal/rabbitmq"
	"github.com/magabrotheeeer/studysprint/internal/services"
	"github.com/magabrotheeeer/studysprint/internal/storage"
)

func waitForDB(ctx context.Context, db *storage.Storage) error {
	for range 10 {
		err := db.Ping(ctx)
		if err == nil {
			return nil // готово
		}
		time.Sleep(3 * time.Second)
	}
	return fmt.Errorf("database not ready after retries")
}

func main() {
	cfg := config.MustLoad()
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	logger.Info("starting reminder-scheduler", slog.String("env", cfg.Env))
	conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		logger.Error("failed to connect to RabbitMQ", sl.Err(err))
		os.Exit(1)
	}
	logger.Info("succes to connect to RabbitMQ:", slog.String("URL", cfg.RabbitMQURL))
	defer func() {
		_ = conn.Close()
	}()

	queues := rabbitmq.GetReminderQueues()
	ch, err := rabbitmq.SetupChannel(conn, queues)
	if err != nil {
		logger.Error("failed to setup RabbitMQ channel", sl.Err(err))
		os.Exit(1)
	}
	logger.Info("success to setup RabbitMQ channel")
	defer func() {
		_ = ch.Close()
	}()
	db, err := storage.New(cfg.StorageConnectionString)
	if err != nil {
		logger.Error("failed to connect to storage", sl.Err(err))
		os.Exit(1)
	}
	defer func() {
		_ = db.Db.Close()
	}()
	err = waitForDB(ctx, db)
	if err != nil {
		logger.Error("Database is not ready:", sl.Err(err))
	}

	schedulerService := services.NewSchedulerService(db, logger)

	go schedulerService.FindGoalsDueSoon(ctx, ch)
	go schedulerService.FindIdleUsers(ctx, ch)
	select {}
}
