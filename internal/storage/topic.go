package storage

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/magabrotheeeer/studysprint/internal/models"
)

// CreateTopic вставляет новую тему и возвращает её идентификатор.
func (s *Storage) CreateTopic(ctx context.Context, topic *models.Topic) (string, error) {
	const op = "storage.CreateTopic"
	if err := s.Gorm.WithContext(ctx).Create(topic).Error; err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return topic.ID.String(), nil
}

// GetTopic возвращает тему пользователя по идентификатору.
func (s *Storage) GetTopic(ctx context.Context, id, userUID string) (*models.Topic, error) {
	const op = "storage.GetTopic"
	var topic models.Topic
	err := s.Gorm.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userUID).
		First(&topic).Error
	if err != nil {
		return nil, wrapNotFound(op, err)
	}
	return &topic, nil
}

// TopicNameExists проверяет, существует ли у пользователя живая тема
// с таким именем (без учёта регистра).
func (s *Storage) TopicNameExists(ctx context.Context, userUID, name string) (bool, error) {
	const op = "storage.TopicNameExists"
	var count int64
	err := s.Gorm.WithContext(ctx).Model(&models.Topic{}).
		Where("user_id = ? AND lower(name) = lower(?)", userUID, name).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return count > 0, nil
}

// UpdateTopic применяет к теме переданные поля, возвращает количество обновлённых строк.
func (s *Storage) UpdateTopic(ctx context.Context, id, userUID string, fields map[string]any) (int, error) {
	const op = "storage.UpdateTopic"
	res := s.Gorm.WithContext(ctx).Model(&models.Topic{}).
		Where("id = ? AND user_id = ?", id, userUID).
		Updates(fields)
	if res.Error != nil {
		return 0, fmt.Errorf("%s: %w", op, res.Error)
	}
	return int(res.RowsAffected), nil
}

// RemoveTopic мягко удаляет тему; при force также удаляет все её PDF.
// Возвращает количество удалённых тем.
func (s *Storage) RemoveTopic(ctx context.Context, id, userUID string, force bool) (int, error) {
	const op = "storage.RemoveTopic"
	var removed int64
	err := s.Gorm.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if force {
			if err := tx.Where("topic_id = ? AND user_id = ?", id, userUID).
				Delete(&models.PDF{}).Error; err != nil {
				return err
			}
		}
		res := tx.Where("id = ? AND user_id = ?", id, userUID).Delete(&models.Topic{})
		if res.Error != nil {
			return res.Error
		}
		removed = res.RowsAffected
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(removed), nil
}

// CountTopicPDFs возвращает количество живых PDF внутри темы.
func (s *Storage) CountTopicPDFs(ctx context.Context, id, userUID string) (int, error) {
	const op = "storage.CountTopicPDFs"
	var count int64
	err := s.Gorm.WithContext(ctx).Model(&models.PDF{}).
		Where("topic_id = ? AND user_id = ?", id, userUID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(count), nil
}

// ListTopics возвращает темы пользователя с пагинацией.
func (s *Storage) ListTopics(ctx context.Context, userUID string, limit, offset int) ([]*models.Topic, error) {
	const op = "storage.ListTopics"
	var topics []*models.Topic
	err := s.Gorm.WithContext(ctx).
		Where("user_id = ?", userUID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&topics).Error
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return topics, nil
}

// SearchTopics ищет темы по имени и описанию (ILIKE).
func (s *Storage) SearchTopics(ctx context.Context, userUID, query string, limit int) ([]*models.Topic, error) {
	const op = "storage.SearchTopics"
	pattern := "%" + query + "%"
	var topics []*models.Topic
	err := s.Gorm.WithContext(ctx).
		Where("user_id = ? AND (name ILIKE ? OR description ILIKE ?)", userUID, pattern, pattern).
		Order("name").
		Limit(limit).
		Find(&topics).Error
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return topics, nil
}

// topicAggregates промежуточный результат агрегации статистики темы.
type topicAggregates struct {
	TotalPDFs     int
	TotalPages    int
	PagesRead     int
	LastStudiedAt *time.Time
}

// AggregateTopicStats считает статистику темы по живым PDF и возвращает её
// вместе с последними просмотренными документами.
func (s *Storage) AggregateTopicStats(ctx context.Context, id, userUID string) (*models.TopicStats, error) {
	const op = "storage.AggregateTopicStats"

	var agg topicAggregates
	err := s.Gorm.WithContext(ctx).Model(&models.PDF{}).
		Select("COUNT(*) AS total_pdfs, COALESCE(SUM(total_pages),0) AS total_pages, "+
			"COALESCE(SUM(current_page),0) AS pages_read, MAX(last_viewed_at) AS last_studied_at").
		Where("topic_id = ? AND user_id = ?", id, userUID).
		Scan(&agg).Error
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var minutes int64
	err = s.Gorm.WithContext(ctx).Model(&models.StudySession{}).
		Select("COALESCE(SUM(total_minutes),0)").
		Where("topic_id = ? AND user_id = ? AND status = ?", id, userUID, models.SessionStatusCompleted).
		Scan(&minutes).Error
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var recent []*models.PDF
	err = s.Gorm.WithContext(ctx).
		Where("topic_id = ? AND user_id = ? AND last_viewed_at IS NOT NULL", id, userUID).
		Order("last_viewed_at DESC").
		Limit(5).
		Find(&recent).Error
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	stats := &models.TopicStats{
		TotalPDFs:         agg.TotalPDFs,
		TotalPages:        agg.TotalPages,
		PagesRead:         agg.PagesRead,
		TotalStudyMinutes: int(minutes),
	}
	if agg.TotalPages > 0 {
		stats.ReadingProgress = float64(agg.PagesRead) / float64(agg.TotalPages) * 100
	}
	for _, pdf := range recent {
		stats.RecentActivity = append(stats.RecentActivity, models.RecentActivity{
			PDFID:        pdf.ID.String(),
			PDFTitle:     pdf.Title,
			CurrentPage:  pdf.CurrentPage,
			TotalPages:   pdf.TotalPages,
			LastViewedAt: pdf.LastViewedAt,
		})
	}
	return stats, nil
}

// RefreshTopicStats пересчитывает денормализованные счётчики темы.
func (s *Storage) RefreshTopicStats(ctx context.Context, id, userUID string) error {
	const op = "storage.RefreshTopicStats"

	var agg topicAggregates
	err := s.Gorm.WithContext(ctx).Model(&models.PDF{}).
		Select("COUNT(*) AS total_pdfs, COALESCE(SUM(total_pages),0) AS total_pages, "+
			"COALESCE(SUM(current_page),0) AS pages_read, MAX(last_viewed_at) AS last_studied_at").
		Where("topic_id = ? AND user_id = ?", id, userUID).
		Scan(&agg).Error
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	var minutes int64
	err = s.Gorm.WithContext(ctx).Model(&models.StudySession{}).
		Select("COALESCE(SUM(total_minutes),0)").
		Where("topic_id = ? AND user_id = ? AND status = ?", id, userUID, models.SessionStatusCompleted).
		Scan(&minutes).Error
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	progress := 0.0
	if agg.TotalPages > 0 {
		progress = float64(agg.PagesRead) / float64(agg.TotalPages) * 100
	}

	err = s.Gorm.WithContext(ctx).Model(&models.Topic{}).
		Where("id = ? AND user_id = ?", id, userUID).
		Updates(map[string]any{
			"total_pdfs":          agg.TotalPDFs,
			"total_pages":         agg.TotalPages,
			"study_progress":      progress,
			"total_study_minutes": minutes,
			"last_studied_at":     agg.LastStudiedAt,
		}).Error
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
