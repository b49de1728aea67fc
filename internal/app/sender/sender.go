package sender

import (
	"context"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/studysprint/internal/config"
	"github.com/magabrotheeeer/studysprint/internal/lib/smtp"
	"github.com/magabrotheeeer/studysprint/internal/rabbitmq"
	"github.com/magabrotheeeer/studysprint/internal/services"
)

type App struct {
	conn          *amqp.Connection
	ch            *amqp.Channel
	senderService *services.SenderService
	logger        *slog.Logger
}

func New(_ context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		return nil, err
	}

	queues := rabbitmq.GetReminderQueues()
	ch, err := rabbitmq.SetupChannel(conn, queues)
	if err != nil {
		conn.Close()
		return nil, err
	}

	newTransport := smtp.NewTransport(cfg, logger)
	senderService := services.NewSenderService(newTransport, logger)

	return &App{
		conn:          conn,
		ch:            ch,
		senderService: senderService,
		logger:        logger,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	err := rabbitmq.ConsumeReminders(ctx, a.ch, a.logger, "reminders.goal_due", a.senderService.SendGoalDueReminder)
	if err != nil {
		a.logger.Error("failed to start reminders.goal_due consumer", slog.Any("err", err))
		return err
	}

	err = rabbitmq.ConsumeReminders(ctx, a.ch, a.logger, "reminders.study_idle", a.senderService.SendStudyIdleReminder)
	if err != nil {
		a.logger.Error("failed to start reminders.study_idle consumer", slog.Any("err", err))
		return err
	}

	<-ctx.Done()
	a.logger.Info("Sender service shutting down gracefully")

	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", slog.Any("err", err))
	}

	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", slog.Any("err", err))
	}

	return nil
}
