package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/magabrotheeeer/studysprint/internal/models"
)

// CreateGoal вставляет цель и возвращает её идентификатор.
func (s *Storage) CreateGoal(ctx context.Context, goal *models.Goal) (string, error) {
	const op = "storage.CreateGoal"
	if err := s.Gorm.WithContext(ctx).Create(goal).Error; err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return goal.ID.String(), nil
}

// GetGoal возвращает цель пользователя по идентификатору.
func (s *Storage) GetGoal(ctx context.Context, id, userUID string) (*models.Goal, error) {
	const op = "storage.GetGoal"
	var goal models.Goal
	err := s.Gorm.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userUID).
		First(&goal).Error
	if err != nil {
		return nil, wrapNotFound(op, err)
	}
	return &goal, nil
}

// ListGoals возвращает цели пользователя с пагинацией.
func (s *Storage) ListGoals(ctx context.Context, userUID string, limit, offset int) ([]*models.Goal, error) {
	const op = "storage.ListGoals"
	var goals []*models.Goal
	err := s.Gorm.WithContext(ctx).
		Where("user_id = ?", userUID).
		Order("deadline ASC").
		Limit(limit).Offset(offset).
		Find(&goals).Error
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return goals, nil
}

// UpdateGoalProgress обновляет текущее значение цели и флаг выполнения.
func (s *Storage) UpdateGoalProgress(ctx context.Context, id, userUID string, currentValue int, completed bool) (int, error) {
	const op = "storage.UpdateGoalProgress"
	res := s.Gorm.WithContext(ctx).Model(&models.Goal{}).
		Where("id = ? AND user_id = ?", id, userUID).
		Updates(map[string]any{
			"current_value": currentValue,
			"is_completed":  completed,
		})
	if res.Error != nil {
		return 0, fmt.Errorf("%s: %w", op, res.Error)
	}
	return int(res.RowsAffected), nil
}

// RemoveGoal мягко удаляет цель.
func (s *Storage) RemoveGoal(ctx context.Context, id, userUID string) (int, error) {
	const op = "storage.RemoveGoal"
	res := s.Gorm.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userUID).
		Delete(&models.Goal{})
	if res.Error != nil {
		return 0, fmt.Errorf("%s: %w", op, res.Error)
	}
	return int(res.RowsAffected), nil
}

// FindGoalsDueSoon возвращает невыполненные цели с дедлайном в интервале
// (from, until], принадлежащие пользователям с включёнными напоминаниями
// о целях. Просроченные цели повторно не напоминаются.
func (s *Storage) FindGoalsDueSoon(ctx context.Context, from, until time.Time) ([]*models.GoalDueInfo, error) {
	const op = "storage.FindGoalsDueSoon"
	var infos []*models.GoalDueInfo
	err := s.Gorm.WithContext(ctx).Model(&models.Goal{}).
		Select("users.email AS email, users.username AS username, goals.title AS goal_title, goals.deadline AS deadline").
		Joins("JOIN users ON users.id = goals.user_id AND users.deleted_at IS NULL").
		Joins("JOIN user_preferences ON user_preferences.user_id = goals.user_id AND user_preferences.deleted_at IS NULL").
		Where("goals.is_completed = false AND goals.deadline > ? AND goals.deadline <= ?", from, until).
		Where("user_preferences.email_notifications = true AND user_preferences.goal_reminders = true").
		Scan(&infos).Error
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return infos, nil
}

// FindIdleUsers возвращает активных пользователей без завершённых сессий
// после момента since, у которых включены учебные напоминания.
func (s *Storage) FindIdleUsers(ctx context.Context, since time.Time) ([]*models.StudyIdleInfo, error) {
	const op = "storage.FindIdleUsers"
	var infos []*models.StudyIdleInfo
	err := s.Gorm.WithContext(ctx).Model(&models.User{}).
		Select("users.email AS email, users.username AS username").
		Joins("JOIN user_preferences ON user_preferences.user_id = users.id AND user_preferences.deleted_at IS NULL").
		Where("users.is_active = true").
		Where("user_preferences.email_notifications = true AND user_preferences.study_reminders = true").
		Where("NOT EXISTS (SELECT 1 FROM study_sessions ss WHERE ss.user_id = users.id "+
			"AND ss.deleted_at IS NULL AND ss.started_at >= ?)", since).
		Scan(&infos).Error
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return infos, nil
}
