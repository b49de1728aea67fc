package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/magabrotheeeer/studysprint/internal/models"
)

// CreateStudySession вставляет учебную сессию и возвращает её идентификатор.
func (s *Storage) CreateStudySession(ctx context.Context, session *models.StudySession) (string, error) {
	const op = "storage.CreateStudySession"
	if err := s.Gorm.WithContext(ctx).Create(session).Error; err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return session.ID.String(), nil
}

// GetStudySession возвращает сессию пользователя по идентификатору.
func (s *Storage) GetStudySession(ctx context.Context, id, userUID string) (*models.StudySession, error) {
	const op = "storage.GetStudySession"
	var session models.StudySession
	err := s.Gorm.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userUID).
		First(&session).Error
	if err != nil {
		return nil, wrapNotFound(op, err)
	}
	return &session, nil
}

// GetActiveSession возвращает текущую незавершённую сессию пользователя,
// активную или приостановленную.
func (s *Storage) GetActiveSession(ctx context.Context, userUID string) (*models.StudySession, error) {
	const op = "storage.GetActiveSession"
	var session models.StudySession
	err := s.Gorm.WithContext(ctx).
		Where("user_id = ? AND status IN ?", userUID,
			[]string{models.SessionStatusActive, models.SessionStatusPaused}).
		Order("started_at DESC").
		First(&session).Error
	if err != nil {
		return nil, wrapNotFound(op, err)
	}
	return &session, nil
}

// PauseStudySession приостанавливает активную сессию.
func (s *Storage) PauseStudySession(ctx context.Context, id, userUID string, pausedAt time.Time) (int, error) {
	const op = "storage.PauseStudySession"
	res := s.Gorm.WithContext(ctx).Model(&models.StudySession{}).
		Where("id = ? AND user_id = ? AND status = ?", id, userUID, models.SessionStatusActive).
		Updates(map[string]any{
			"status":    models.SessionStatusPaused,
			"paused_at": pausedAt,
		})
	if res.Error != nil {
		return 0, fmt.Errorf("%s: %w", op, res.Error)
	}
	return int(res.RowsAffected), nil
}

// ResumeStudySession возобновляет приостановленную сессию, накапливая
// время паузы в paused_minutes.
func (s *Storage) ResumeStudySession(ctx context.Context, id, userUID string, pausedMinutes int) (int, error) {
	const op = "storage.ResumeStudySession"
	res := s.Gorm.WithContext(ctx).Model(&models.StudySession{}).
		Where("id = ? AND user_id = ? AND status = ?", id, userUID, models.SessionStatusPaused).
		Updates(map[string]any{
			"status":         models.SessionStatusActive,
			"paused_at":      nil,
			"paused_minutes": pausedMinutes,
		})
	if res.Error != nil {
		return 0, fmt.Errorf("%s: %w", op, res.Error)
	}
	return int(res.RowsAffected), nil
}

// EndStudySession завершает сессию: ставит статус completed, время окончания,
// длительность и количество просмотренных страниц.
func (s *Storage) EndStudySession(ctx context.Context, id, userUID string, endedAt time.Time, totalMinutes, pagesVisited int) (int, error) {
	const op = "storage.EndStudySession"
	res := s.Gorm.WithContext(ctx).Model(&models.StudySession{}).
		Where("id = ? AND user_id = ? AND status IN ?", id, userUID,
			[]string{models.SessionStatusActive, models.SessionStatusPaused}).
		Updates(map[string]any{
			"status":        models.SessionStatusCompleted,
			"ended_at":      endedAt,
			"paused_at":     nil,
			"total_minutes": totalMinutes,
			"pages_visited": pagesVisited,
		})
	if res.Error != nil {
		return 0, fmt.Errorf("%s: %w", op, res.Error)
	}
	return int(res.RowsAffected), nil
}

// ListStudySessions возвращает сессии пользователя с пагинацией.
func (s *Storage) ListStudySessions(ctx context.Context, userUID string, limit, offset int) ([]*models.StudySession, error) {
	const op = "storage.ListStudySessions"
	var sessions []*models.StudySession
	err := s.Gorm.WithContext(ctx).
		Where("user_id = ?", userUID).
		Order("started_at DESC").
		Limit(limit).Offset(offset).
		Find(&sessions).Error
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return sessions, nil
}

// summaryAggregates промежуточный результат агрегации сводки.
type summaryAggregates struct {
	TotalSessions int
	TotalMinutes  int
	PagesVisited  int
}

// SummarySince агрегирует завершённые сессии пользователя начиная с момента since.
func (s *Storage) SummarySince(ctx context.Context, userUID string, since time.Time) (*models.StudySummary, error) {
	const op = "storage.SummarySince"

	var agg summaryAggregates
	err := s.Gorm.WithContext(ctx).Model(&models.StudySession{}).
		Select("COUNT(*) AS total_sessions, COALESCE(SUM(total_minutes),0) AS total_minutes, "+
			"COALESCE(SUM(pages_visited),0) AS pages_visited").
		Where("user_id = ? AND status = ? AND started_at >= ?", userUID, models.SessionStatusCompleted, since).
		Scan(&agg).Error
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var activeDays int
	err = s.Gorm.WithContext(ctx).Model(&models.StudySession{}).
		Select("COUNT(DISTINCT DATE(started_at))").
		Where("user_id = ? AND status = ? AND started_at >= ?", userUID, models.SessionStatusCompleted, since).
		Scan(&activeDays).Error
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	summary := &models.StudySummary{
		TotalSessions: agg.TotalSessions,
		TotalMinutes:  agg.TotalMinutes,
		PagesVisited:  agg.PagesVisited,
		ActiveDays:    activeDays,
	}
	if agg.TotalSessions > 0 {
		summary.AvgSessionMinutes = float64(agg.TotalMinutes) / float64(agg.TotalSessions)
	}
	return summary, nil
}

// StudyDays возвращает дни, в которые у пользователя были завершённые сессии,
// начиная с момента since, от новых к старым. Используется для расчёта серии.
func (s *Storage) StudyDays(ctx context.Context, userUID string, since time.Time) ([]time.Time, error) {
	const op = "storage.StudyDays"
	var days []time.Time
	err := s.Gorm.WithContext(ctx).Model(&models.StudySession{}).
		Select("DISTINCT DATE(started_at) AS day").
		Where("user_id = ? AND status = ? AND started_at >= ?", userUID, models.SessionStatusCompleted, since).
		Order("day DESC").
		Pluck("day", &days).Error
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return days, nil
}
