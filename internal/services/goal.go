package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/studysprint/internal/models"
	"github.com/magabrotheeeer/studysprint/internal/storage"
)

// GoalRepository описывает контракт для работы с целями в базе данных.
type GoalRepository interface {
	CreateGoal(ctx context.Context, goal *models.Goal) (string, error)
	GetGoal(ctx context.Context, id, userUID string) (*models.Goal, error)
	ListGoals(ctx context.Context, userUID string, limit, offset int) ([]*models.Goal, error)
	UpdateGoalProgress(ctx context.Context, id, userUID string, currentValue int, completed bool) (int, error)
	RemoveGoal(ctx context.Context, id, userUID string) (int, error)
}

// GoalService отвечает за учебные цели пользователей.
type GoalService struct {
	repo GoalRepository
	log  *slog.Logger
}

// NewGoalService создает новый экземпляр GoalService.
func NewGoalService(repo GoalRepository, log *slog.Logger) *GoalService {
	return &GoalService{
		repo: repo,
		log:  log,
	}
}

// Create создает новую цель; дедлайн приходит строкой в формате 02-01-2006.
func (s *GoalService) Create(ctx context.Context, userUID string, req models.GoalCreate) (*models.Goal, error) {
	deadline, err := time.Parse("02-01-2006", req.Deadline)
	if err != nil {
		return nil, fmt.Errorf("invalid deadline: %w", err)
	}

	uid, err := uuid.Parse(userUID)
	if err != nil {
		return nil, fmt.Errorf("invalid user id: %w", err)
	}

	goal := &models.Goal{
		UserID:      uid,
		Title:       req.Title,
		GoalType:    req.GoalType,
		TargetValue: req.TargetValue,
		Deadline:    deadline,
	}
	id, err := s.repo.CreateGoal(ctx, goal)
	if err != nil {
		return nil, err
	}
	s.log.Info("created new goal", slog.String("id", id))
	return goal, nil
}

// List возвращает цели пользователя по возрастанию дедлайна.
func (s *GoalService) List(ctx context.Context, userUID string, limit, offset int) ([]*models.Goal, error) {
	if limit == 0 {
		limit = 20
	}
	return s.repo.ListGoals(ctx, userUID, limit, offset)
}

// UpdateProgress обновляет текущее значение цели; при достижении
// целевого значения цель помечается выполненной.
func (s *GoalService) UpdateProgress(ctx context.Context, id, userUID string, req models.GoalProgress) (*models.Goal, error) {
	goal, err := s.repo.GetGoal(ctx, id, userUID)
	if err != nil {
		return nil, err
	}

	completed := req.CurrentValue >= goal.TargetValue
	count, err := s.repo.UpdateGoalProgress(ctx, id, userUID, req.CurrentValue, completed)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, storage.ErrNotFound
	}

	goal.CurrentValue = req.CurrentValue
	goal.IsCompleted = completed
	return goal, nil
}

// Remove мягко удаляет цель.
func (s *GoalService) Remove(ctx context.Context, id, userUID string) (int, error) {
	return s.repo.RemoveGoal(ctx, id, userUID)
}
