package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/studysprint/internal/models"
	"github.com/magabrotheeeer/studysprint/internal/storage"
)

// Ошибки работы с темами.
var (
	ErrTopicHasPDFs       = errors.New("topic contains pdfs")
	ErrBatchNotConfirmed  = errors.New("batch delete not confirmed")
	ErrTopicNameTaken     = errors.New("topic name already taken")
	ErrNothingToUpdate    = errors.New("nothing to update")
	ErrReadingSpeedAbsent = errors.New("reading speed is not set")
)

// TopicRepository описывает контракт для работы с темами в базе данных.
type TopicRepository interface {
	CreateTopic(ctx context.Context, topic *models.Topic) (string, error)
	GetTopic(ctx context.Context, id, userUID string) (*models.Topic, error)
	TopicNameExists(ctx context.Context, userUID, name string) (bool, error)
	UpdateTopic(ctx context.Context, id, userUID string, fields map[string]any) (int, error)
	RemoveTopic(ctx context.Context, id, userUID string, force bool) (int, error)
	CountTopicPDFs(ctx context.Context, id, userUID string) (int, error)
	ListTopics(ctx context.Context, userUID string, limit, offset int) ([]*models.Topic, error)
	SearchTopics(ctx context.Context, userUID, query string, limit int) ([]*models.Topic, error)
	AggregateTopicStats(ctx context.Context, id, userUID string) (*models.TopicStats, error)
	GetPreferences(ctx context.Context, userUID string) (*models.UserPreferences, error)
}

// Cache описывает контракт кэша бизнес-уровня.
type Cache interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
	Invalidate(key string) error
}

// TopicService отвечает за темы и их агрегированную статистику.
type TopicService struct {
	repo  TopicRepository
	cache Cache
	log   *slog.Logger
}

// NewTopicService создает новый экземпляр TopicService.
func NewTopicService(repo TopicRepository, cache Cache, log *slog.Logger) *TopicService {
	return &TopicService{
		repo:  repo,
		cache: cache,
		log:   log,
	}
}

func topicStatsKey(id string) string {
	return fmt.Sprintf("topic:stats:%s", id)
}

// Create создает новую тему; имя уникально в пределах пользователя.
func (s *TopicService) Create(ctx context.Context, userUID string, req models.TopicCreate) (*models.Topic, error) {
	exists, err := s.repo.TopicNameExists(ctx, userUID, req.Name)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrTopicNameTaken
	}

	uid, err := uuid.Parse(userUID)
	if err != nil {
		return nil, fmt.Errorf("invalid user id: %w", err)
	}
	topic := &models.Topic{
		UserID:      uid,
		Name:        req.Name,
		Description: req.Description,
	}
	if req.Color != "" {
		topic.Color = req.Color
	}
	id, err := s.repo.CreateTopic(ctx, topic)
	if err != nil {
		return nil, err
	}
	s.log.Info("created new topic", slog.String("id", id))
	return topic, nil
}

// Read возвращает тему пользователя.
func (s *TopicService) Read(ctx context.Context, id, userUID string) (*models.Topic, error) {
	return s.repo.GetTopic(ctx, id, userUID)
}

// Update обновляет тему; при смене имени проверяет уникальность.
func (s *TopicService) Update(ctx context.Context, id, userUID string, req models.TopicUpdate) (*models.Topic, error) {
	fields := map[string]any{}
	if req.Name != "" {
		topic, err := s.repo.GetTopic(ctx, id, userUID)
		if err != nil {
			return nil, err
		}
		if topic.Name != req.Name {
			exists, err := s.repo.TopicNameExists(ctx, userUID, req.Name)
			if err != nil {
				return nil, err
			}
			if exists {
				return nil, ErrTopicNameTaken
			}
		}
		fields["name"] = req.Name
	}
	if req.Description != "" {
		fields["description"] = req.Description
	}
	if req.Color != "" {
		fields["color"] = req.Color
	}
	if len(fields) == 0 {
		return nil, ErrNothingToUpdate
	}

	count, err := s.repo.UpdateTopic(ctx, id, userUID, fields)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, storage.ErrNotFound
	}
	return s.repo.GetTopic(ctx, id, userUID)
}

// Remove удаляет тему. Непустая тема удаляется только с флагом force,
// вместе с темой мягко удаляются все её PDF.
func (s *TopicService) Remove(ctx context.Context, id, userUID string, force bool) (int, error) {
	if !force {
		count, err := s.repo.CountTopicPDFs(ctx, id, userUID)
		if err != nil {
			return 0, err
		}
		if count > 0 {
			return 0, ErrTopicHasPDFs
		}
	}

	if err := s.cache.Invalidate(topicStatsKey(id)); err != nil {
		s.log.Warn("failed to remove from cache", slog.String("key", topicStatsKey(id)), slog.Any("err", err))
	}
	return s.repo.RemoveTopic(ctx, id, userUID, force)
}

// List возвращает темы пользователя с пагинацией.
func (s *TopicService) List(ctx context.Context, userUID string, limit, offset int) ([]*models.Topic, error) {
	return s.repo.ListTopics(ctx, userUID, limit, offset)
}

// Search ищет темы по имени и описанию.
func (s *TopicService) Search(ctx context.Context, userUID string, req models.TopicSearch) ([]*models.Topic, error) {
	limit := req.Limit
	if limit == 0 {
		limit = 20
	}
	return s.repo.SearchTopics(ctx, userUID, req.Query, limit)
}

// Stats возвращает агрегированную статистику темы. Результат кэшируется
// на час; оставшееся время чтения оценивается по скорости чтения пользователя.
func (s *TopicService) Stats(ctx context.Context, id, userUID string) (*models.TopicStats, error) {
	cacheKey := topicStatsKey(id)
	var cached models.TopicStats
	found, err := s.cache.Get(cacheKey, &cached)
	if err != nil {
		return nil, err
	}
	if found {
		return &cached, nil
	}

	if _, err := s.repo.GetTopic(ctx, id, userUID); err != nil {
		return nil, err
	}

	stats, err := s.repo.AggregateTopicStats(ctx, id, userUID)
	if err != nil {
		return nil, err
	}

	prefs, err := s.repo.GetPreferences(ctx, userUID)
	if err == nil && prefs.ReadingSpeedWPM > 0 {
		// Оценка: в среднем 300 слов на страницу.
		remainingPages := stats.TotalPages - stats.PagesRead
		if remainingPages > 0 {
			stats.EstimatedRemaining = remainingPages * 300 / prefs.ReadingSpeedWPM
		}
	}

	if err := s.cache.Set(cacheKey, stats, time.Hour); err != nil {
		s.log.Warn("failed to add to cache", slog.String("key", cacheKey), slog.Any("err", err))
	}
	return stats, nil
}

// InvalidateStats сбрасывает кэш статистики темы.
func (s *TopicService) InvalidateStats(id string) {
	if err := s.cache.Invalidate(topicStatsKey(id)); err != nil {
		s.log.Warn("failed to remove from cache", slog.String("key", topicStatsKey(id)), slog.Any("err", err))
	}
}

// BatchRemove удаляет несколько тем за один запрос. Требует флаг confirm;
// темы удаляются с каскадом, ошибки по отдельным темам не прерывают остальные.
func (s *TopicService) BatchRemove(ctx context.Context, userUID string, req models.TopicBatchDelete) (*models.BatchDeleteResult, error) {
	if !req.Confirm {
		return nil, ErrBatchNotConfirmed
	}

	result := &models.BatchDeleteResult{}
	for _, id := range req.IDs {
		count, err := s.Remove(ctx, id, userUID, true)
		if err != nil || count == 0 {
			result.FailedCount++
			result.FailedIDs = append(result.FailedIDs, id)
			continue
		}
		result.DeletedCount++
	}
	return result, nil
}
