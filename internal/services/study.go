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

// Ошибки работы с учебными сессиями.
var (
	ErrActiveSessionExists  = errors.New("active session already exists")
	ErrNoActiveSession      = errors.New("no active session")
	ErrSessionAlreadyPaused = errors.New("session is already paused")
	ErrSessionNotPaused     = errors.New("session is not paused")
)

// StudyRepository описывает контракт для работы с учебными сессиями в базе данных.
type StudyRepository interface {
	CreateStudySession(ctx context.Context, session *models.StudySession) (string, error)
	GetStudySession(ctx context.Context, id, userUID string) (*models.StudySession, error)
	GetActiveSession(ctx context.Context, userUID string) (*models.StudySession, error)
	PauseStudySession(ctx context.Context, id, userUID string, pausedAt time.Time) (int, error)
	ResumeStudySession(ctx context.Context, id, userUID string, pausedMinutes int) (int, error)
	EndStudySession(ctx context.Context, id, userUID string, endedAt time.Time, totalMinutes, pagesVisited int) (int, error)
	ListStudySessions(ctx context.Context, userUID string, limit, offset int) ([]*models.StudySession, error)
	SummarySince(ctx context.Context, userUID string, since time.Time) (*models.StudySummary, error)
	StudyDays(ctx context.Context, userUID string, since time.Time) ([]time.Time, error)
	GetTopic(ctx context.Context, id, userUID string) (*models.Topic, error)
	GetPDF(ctx context.Context, id, userUID string) (*models.PDF, error)
	RefreshTopicStats(ctx context.Context, id, userUID string) error
	AddUserStudyMinutes(ctx context.Context, userUID string, minutes int) error
}

// StudyService отвечает за учебные сессии и сводную статистику занятий.
type StudyService struct {
	repo   StudyRepository
	cache  Cache
	topics *TopicService
	log    *slog.Logger
}

// NewStudyService создает новый экземпляр StudyService.
func NewStudyService(repo StudyRepository, cache Cache, topics *TopicService, log *slog.Logger) *StudyService {
	return &StudyService{
		repo:   repo,
		cache:  cache,
		topics: topics,
		log:    log,
	}
}

func summaryKey(userUID string, days int) string {
	return fmt.Sprintf("study:summary:%s:%d", userUID, days)
}

// Start начинает новую учебную сессию. Активная сессия у пользователя
// может быть только одна.
func (s *StudyService) Start(ctx context.Context, userUID string, req models.SessionStart) (*models.StudySession, error) {
	_, err := s.repo.GetActiveSession(ctx, userUID)
	if err == nil {
		return nil, ErrActiveSessionExists
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}

	uid, err := uuid.Parse(userUID)
	if err != nil {
		return nil, fmt.Errorf("invalid user id: %w", err)
	}

	session := &models.StudySession{
		UserID:    uid,
		Status:    models.SessionStatusActive,
		StartedAt: time.Now().UTC(),
	}
	if req.SessionType != "" {
		session.SessionType = req.SessionType
	} else {
		session.SessionType = models.SessionTypeReading
	}
	if req.TopicID != "" {
		topic, err := s.repo.GetTopic(ctx, req.TopicID, userUID)
		if err != nil {
			return nil, err
		}
		session.TopicID = &topic.ID
	}
	if req.PDFID != "" {
		pdf, err := s.repo.GetPDF(ctx, req.PDFID, userUID)
		if err != nil {
			return nil, err
		}
		session.PDFID = &pdf.ID
		if session.TopicID == nil {
			session.TopicID = &pdf.TopicID
		}
	}

	id, err := s.repo.CreateStudySession(ctx, session)
	if err != nil {
		return nil, err
	}
	s.log.Info("started study session", slog.String("id", id))
	return session, nil
}

// Pause приостанавливает активную сессию пользователя.
func (s *StudyService) Pause(ctx context.Context, userUID string) (*models.StudySession, error) {
	session, err := s.repo.GetActiveSession(ctx, userUID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNoActiveSession
		}
		return nil, err
	}
	if session.Status == models.SessionStatusPaused {
		return nil, ErrSessionAlreadyPaused
	}

	now := time.Now().UTC()
	count, err := s.repo.PauseStudySession(ctx, session.ID.String(), userUID, now)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, ErrNoActiveSession
	}

	session.Status = models.SessionStatusPaused
	session.PausedAt = &now
	return session, nil
}

// Resume возобновляет приостановленную сессию; время паузы
// накапливается и не входит в длительность занятий.
func (s *StudyService) Resume(ctx context.Context, userUID string) (*models.StudySession, error) {
	session, err := s.repo.GetActiveSession(ctx, userUID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNoActiveSession
		}
		return nil, err
	}
	if session.Status != models.SessionStatusPaused || session.PausedAt == nil {
		return nil, ErrSessionNotPaused
	}

	now := time.Now().UTC()
	pausedMinutes := session.PausedMinutes + int(now.Sub(*session.PausedAt).Minutes())
	count, err := s.repo.ResumeStudySession(ctx, session.ID.String(), userUID, pausedMinutes)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, ErrSessionNotPaused
	}

	session.Status = models.SessionStatusActive
	session.PausedAt = nil
	session.PausedMinutes = pausedMinutes
	return session, nil
}

// End завершает текущую сессию, активную или приостановленную: считает
// длительность без учёта пауз, обновляет статистику пользователя и темы,
// сбрасывает кэш сводок.
func (s *StudyService) End(ctx context.Context, userUID string, req models.SessionEnd) (*models.StudySession, error) {
	session, err := s.repo.GetActiveSession(ctx, userUID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNoActiveSession
		}
		return nil, err
	}

	now := time.Now().UTC()
	// Для приостановленной сессии время после паузы не засчитывается.
	studiedUntil := now
	if session.Status == models.SessionStatusPaused && session.PausedAt != nil {
		studiedUntil = *session.PausedAt
	}
	minutes := int(studiedUntil.Sub(session.StartedAt).Minutes()) - session.PausedMinutes
	if minutes < 0 {
		minutes = 0
	}

	count, err := s.repo.EndStudySession(ctx, session.ID.String(), userUID, now, minutes, req.PagesVisited)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, ErrNoActiveSession
	}

	if err := s.repo.AddUserStudyMinutes(ctx, userUID, minutes); err != nil {
		s.log.Warn("failed to update user study minutes", slog.Any("err", err))
	}
	if session.TopicID != nil {
		if err := s.repo.RefreshTopicStats(ctx, session.TopicID.String(), userUID); err != nil {
			s.log.Warn("failed to refresh topic stats", slog.Any("err", err))
		}
		s.topics.InvalidateStats(session.TopicID.String())
	}
	for _, days := range []int{7, 30} {
		if err := s.cache.Invalidate(summaryKey(userUID, days)); err != nil {
			s.log.Warn("failed to remove from cache", slog.String("key", summaryKey(userUID, days)), slog.Any("err", err))
		}
	}

	session.Status = models.SessionStatusCompleted
	session.EndedAt = &now
	session.PausedAt = nil
	session.TotalMinutes = minutes
	session.PagesVisited = req.PagesVisited
	return session, nil
}

// Read возвращает сессию пользователя по идентификатору.
func (s *StudyService) Read(ctx context.Context, id, userUID string) (*models.StudySession, error) {
	return s.repo.GetStudySession(ctx, id, userUID)
}

// Active возвращает текущую активную сессию пользователя.
func (s *StudyService) Active(ctx context.Context, userUID string) (*models.StudySession, error) {
	return s.repo.GetActiveSession(ctx, userUID)
}

// List возвращает сессии пользователя с пагинацией.
func (s *StudyService) List(ctx context.Context, userUID string, limit, offset int) ([]*models.StudySession, error) {
	if limit == 0 {
		limit = 20
	}
	return s.repo.ListStudySessions(ctx, userUID, limit, offset)
}

// Summary возвращает сводку занятий за последние days дней, включая серию
// подряд идущих учебных дней. Результат кэшируется на час.
func (s *StudyService) Summary(ctx context.Context, userUID string, days int) (*models.StudySummary, error) {
	if days <= 0 {
		days = 7
	}

	cacheKey := summaryKey(userUID, days)
	var cached models.StudySummary
	found, err := s.cache.Get(cacheKey, &cached)
	if err != nil {
		return nil, err
	}
	if found {
		return &cached, nil
	}

	since := time.Now().UTC().AddDate(0, 0, -days)
	summary, err := s.repo.SummarySince(ctx, userUID, since)
	if err != nil {
		return nil, err
	}
	summary.Days = days

	streak, err := s.currentStreak(ctx, userUID)
	if err != nil {
		s.log.Warn("failed to compute streak", slog.Any("err", err))
	} else {
		summary.CurrentStreak = streak
	}

	if err := s.cache.Set(cacheKey, summary, time.Hour); err != nil {
		s.log.Warn("failed to add to cache", slog.String("key", cacheKey), slog.Any("err", err))
	}
	return summary, nil
}

// currentStreak считает количество подряд идущих дней с занятиями,
// заканчивающихся сегодня или вчера.
func (s *StudyService) currentStreak(ctx context.Context, userUID string) (int, error) {
	since := time.Now().UTC().AddDate(0, 0, -365)
	rawDays, err := s.repo.StudyDays(ctx, userUID, since)
	if err != nil {
		return 0, err
	}
	if len(rawDays) == 0 {
		return 0, nil
	}

	today := time.Now().UTC().Truncate(24 * time.Hour)
	expected := today
	latest := rawDays[0].Truncate(24 * time.Hour)
	if latest.Before(today) {
		expected = today.AddDate(0, 0, -1)
	}

	streak := 0
	for _, d := range rawDays {
		day := d.Truncate(24 * time.Hour)
		if !day.Equal(expected) {
			break
		}
		streak++
		expected = expected.AddDate(0, 0, -1)
	}
	return streak, nil
}
