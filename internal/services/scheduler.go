package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/studysprint/internal/lib/sl"
	"github.com/magabrotheeeer/studysprint/internal/models"
	"github.com/magabrotheeeer/studysprint/internal/rabbitmq"
)

// ReminderRepository описывает выборки планировщика напоминаний.
type ReminderRepository interface {
	// FindGoalsDueSoon возвращает невыполненные цели с дедлайном в интервале (from, until].
	FindGoalsDueSoon(ctx context.Context, from, until time.Time) ([]*models.GoalDueInfo, error)
	// FindIdleUsers возвращает пользователей без занятий после momenta since.
	FindIdleUsers(ctx context.Context, since time.Time) ([]*models.StudyIdleInfo, error)
}

// SchedulerService периодически ищет цели с подступающим дедлайном
// и пользователей без занятий, публикуя напоминания в RabbitMQ.
type SchedulerService struct {
	repo ReminderRepository
	log  *slog.Logger
}

// NewSchedulerService создает новый экземпляр SchedulerService.
func NewSchedulerService(repo ReminderRepository, log *slog.Logger) *SchedulerService {
	return &SchedulerService{
		repo: repo,
		log:  log,
	}
}

// FindGoalsDueSoon раз в 12 часов публикует напоминания о целях,
// дедлайн которых наступает в ближайшие сутки.
func (s *SchedulerService) FindGoalsDueSoon(ctx context.Context, channel *amqp.Channel) {
	s.runFindGoalsDueSoon(ctx, channel)

	ticker := time.NewTicker(12 * time.Hour)
	defer ticker.Stop()

	for range ticker.C {
		s.runFindGoalsDueSoon(ctx, channel)
	}
}

func (s *SchedulerService) runFindGoalsDueSoon(ctx context.Context, channel *amqp.Channel) {
	s.log.Info("starting service to find goals due soon")
	now := time.Now().UTC()
	goals, err := s.repo.FindGoalsDueSoon(ctx, now, now.Add(24*time.Hour))
	if err != nil {
		s.log.Error("failed to find goals", sl.Err(err))
		return
	}
	if len(goals) == 0 {
		s.log.Info("no goals due soon found")
		return
	}
	s.log.Info("found goals due soon", "count", len(goals))
	for _, goalInfo := range goals {
		err = rabbitmq.PublishMessage(channel, "notifications", "goal.due", goalInfo)
		if err != nil {
			s.log.Error("failed to publish message", sl.Err(err))
		}
	}
}

// FindIdleUsers раз в сутки публикует напоминания пользователям,
// не занимавшимся последние 24 часа.
func (s *SchedulerService) FindIdleUsers(ctx context.Context, channel *amqp.Channel) {
	s.runFindIdleUsers(ctx, channel)

	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for range ticker.C {
		s.runFindIdleUsers(ctx, channel)
	}
}

func (s *SchedulerService) runFindIdleUsers(ctx context.Context, channel *amqp.Channel) {
	s.log.Info("starting service to find idle users")
	since := time.Now().UTC().Add(-24 * time.Hour)
	users, err := s.repo.FindIdleUsers(ctx, since)
	if err != nil {
		s.log.Error("failed to find idle users", sl.Err(err))
		return
	}
	if len(users) == 0 {
		s.log.Info("no idle users found")
		return
	}
	s.log.Info("found idle users", "count", len(users))
	for _, userInfo := range users {
		err = rabbitmq.PublishMessage(channel, "notifications", "study.idle", userInfo)
		if err != nil {
			s.log.Error("failed to publish message", sl.Err(err))
		}
	}
}
