package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/studysprint/internal/models"
	"github.com/magabrotheeeer/studysprint/internal/storage"
)

type MockStudyRepository struct {
	mock.Mock
}

func (m *MockStudyRepository) CreateStudySession(ctx context.Context, session *models.StudySession) (string, error) {
	args := m.Called(ctx, session)
	return args.String(0), args.Error(1)
}

func (m *MockStudyRepository) GetStudySession(ctx context.Context, id, userUID string) (*models.StudySession, error) {
	args := m.Called(ctx, id, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.StudySession), args.Error(1)
}

func (m *MockStudyRepository) GetActiveSession(ctx context.Context, userUID string) (*models.StudySession, error) {
	args := m.Called(ctx, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.StudySession), args.Error(1)
}

func (m *MockStudyRepository) PauseStudySession(ctx context.Context, id, userUID string, pausedAt time.Time) (int, error) {
	args := m.Called(ctx, id, userUID, pausedAt)
	return args.Int(0), args.Error(1)
}

func (m *MockStudyRepository) ResumeStudySession(ctx context.Context, id, userUID string, pausedMinutes int) (int, error) {
	args := m.Called(ctx, id, userUID, pausedMinutes)
	return args.Int(0), args.Error(1)
}

func (m *MockStudyRepository) EndStudySession(ctx context.Context, id, userUID string, endedAt time.Time, totalMinutes, pagesVisited int) (int, error) {
	args := m.Called(ctx, id, userUID, endedAt, totalMinutes, pagesVisited)
	return args.Int(0), args.Error(1)
}

func (m *MockStudyRepository) ListStudySessions(ctx context.Context, userUID string, limit, offset int) ([]*models.StudySession, error) {
	args := m.Called(ctx, userUID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.StudySession), args.Error(1)
}

func (m *MockStudyRepository) SummarySince(ctx context.Context, userUID string, since time.Time) (*models.StudySummary, error) {
	args := m.Called(ctx, userUID, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.StudySummary), args.Error(1)
}

func (m *MockStudyRepository) StudyDays(ctx context.Context, userUID string, since time.Time) ([]time.Time, error) {
	args := m.Called(ctx, userUID, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]time.Time), args.Error(1)
}

func (m *MockStudyRepository) GetTopic(ctx context.Context, id, userUID string) (*models.Topic, error) {
	args := m.Called(ctx, id, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Topic), args.Error(1)
}

func (m *MockStudyRepository) GetPDF(ctx context.Context, id, userUID string) (*models.PDF, error) {
	args := m.Called(ctx, id, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PDF), args.Error(1)
}

func (m *MockStudyRepository) RefreshTopicStats(ctx context.Context, id, userUID string) error {
	args := m.Called(ctx, id, userUID)
	return args.Error(0)
}

func (m *MockStudyRepository) AddUserStudyMinutes(ctx context.Context, userUID string, minutes int) error {
	args := m.Called(ctx, userUID, minutes)
	return args.Error(0)
}

func TestStudyService_Start(t *testing.T) {
	userUID := uuid.NewString()

	t.Run("повторный старт при активной сессии отклоняется", func(t *testing.T) {
		repo := new(MockStudyRepository)
		repo.On("GetActiveSession", mock.Anything, userUID).
			Return(&models.StudySession{Status: models.SessionStatusActive}, nil)

		svc := NewStudyService(repo, new(MockTopicCache), nil, noopLogger())
		_, err := svc.Start(context.Background(), userUID, models.SessionStart{})

		assert.ErrorIs(t, err, ErrActiveSessionExists)
		repo.AssertExpectations(t)
	})

	t.Run("сессия по PDF наследует его тему", func(t *testing.T) {
		repo := new(MockStudyRepository)
		pdfID := uuid.New()
		topicID := uuid.New()

		repo.On("GetActiveSession", mock.Anything, userUID).Return(nil, storage.ErrNotFound)
		repo.On("GetPDF", mock.Anything, pdfID.String(), userUID).Return(&models.PDF{
			ID:      pdfID,
			TopicID: topicID,
		}, nil)
		repo.On("CreateStudySession", mock.Anything, mock.AnythingOfType("*models.StudySession")).
			Return(uuid.NewString(), nil)

		svc := NewStudyService(repo, new(MockTopicCache), nil, noopLogger())
		session, err := svc.Start(context.Background(), userUID, models.SessionStart{PDFID: pdfID.String()})

		assert.NoError(t, err)
		assert.Equal(t, models.SessionTypeReading, session.SessionType)
		assert.NotNil(t, session.TopicID)
		assert.Equal(t, topicID, *session.TopicID)
		repo.AssertExpectations(t)
	})
}

func TestStudyService_PauseResume(t *testing.T) {
	userUID := uuid.NewString()

	t.Run("активная сессия ставится на паузу", func(t *testing.T) {
		repo := new(MockStudyRepository)
		sessionID := uuid.New()

		repo.On("GetActiveSession", mock.Anything, userUID).Return(&models.StudySession{
			ID:     sessionID,
			Status: models.SessionStatusActive,
		}, nil)
		repo.On("PauseStudySession", mock.Anything, sessionID.String(), userUID,
			mock.AnythingOfType("time.Time")).Return(1, nil)

		svc := NewStudyService(repo, new(MockTopicCache), nil, noopLogger())
		session, err := svc.Pause(context.Background(), userUID)

		assert.NoError(t, err)
		assert.Equal(t, models.SessionStatusPaused, session.Status)
		assert.NotNil(t, session.PausedAt)
		repo.AssertExpectations(t)
	})

	t.Run("повторная пауза отклоняется", func(t *testing.T) {
		repo := new(MockStudyRepository)
		repo.On("GetActiveSession", mock.Anything, userUID).Return(&models.StudySession{
			Status: models.SessionStatusPaused,
		}, nil)

		svc := NewStudyService(repo, new(MockTopicCache), nil, noopLogger())
		_, err := svc.Pause(context.Background(), userUID)

		assert.ErrorIs(t, err, ErrSessionAlreadyPaused)
	})

	t.Run("возобновление накапливает время паузы", func(t *testing.T) {
		repo := new(MockStudyRepository)
		sessionID := uuid.New()
		pausedAt := time.Now().UTC().Add(-10 * time.Minute)

		repo.On("GetActiveSession", mock.Anything, userUID).Return(&models.StudySession{
			ID:            sessionID,
			Status:        models.SessionStatusPaused,
			PausedAt:      &pausedAt,
			PausedMinutes: 5,
		}, nil)
		repo.On("ResumeStudySession", mock.Anything, sessionID.String(), userUID, 15).Return(1, nil)

		svc := NewStudyService(repo, new(MockTopicCache), nil, noopLogger())
		session, err := svc.Resume(context.Background(), userUID)

		assert.NoError(t, err)
		assert.Equal(t, models.SessionStatusActive, session.Status)
		assert.Nil(t, session.PausedAt)
		assert.Equal(t, 15, session.PausedMinutes)
		repo.AssertExpectations(t)
	})

	t.Run("возобновление без паузы отклоняется", func(t *testing.T) {
		repo := new(MockStudyRepository)
		repo.On("GetActiveSession", mock.Anything, userUID).Return(&models.StudySession{
			Status: models.SessionStatusActive,
		}, nil)

		svc := NewStudyService(repo, new(MockTopicCache), nil, noopLogger())
		_, err := svc.Resume(context.Background(), userUID)

		assert.ErrorIs(t, err, ErrSessionNotPaused)
	})
}

func TestStudyService_End(t *testing.T) {
	userUID := uuid.NewString()

	t.Run("нет активной сессии", func(t *testing.T) {
		repo := new(MockStudyRepository)
		repo.On("GetActiveSession", mock.Anything, userUID).Return(nil, storage.ErrNotFound)

		svc := NewStudyService(repo, new(MockTopicCache), nil, noopLogger())
		_, err := svc.End(context.Background(), userUID, models.SessionEnd{})

		assert.ErrorIs(t, err, ErrNoActiveSession)
	})

	t.Run("успешное завершение обновляет статистику и сбрасывает кэш", func(t *testing.T) {
		repo := new(MockStudyRepository)
		cache := new(MockTopicCache)
		topicCache := new(MockTopicCache)

		sessionID := uuid.New()
		topicID := uuid.New()
		started := time.Now().UTC().Add(-25 * time.Minute)

		repo.On("GetActiveSession", mock.Anything, userUID).Return(&models.StudySession{
			ID:        sessionID,
			TopicID:   &topicID,
			Status:    models.SessionStatusActive,
			StartedAt: started,
		}, nil)
		repo.On("EndStudySession", mock.Anything, sessionID.String(), userUID,
			mock.AnythingOfType("time.Time"), 25, 10).Return(1, nil)
		repo.On("AddUserStudyMinutes", mock.Anything, userUID, 25).Return(nil)
		repo.On("RefreshTopicStats", mock.Anything, topicID.String(), userUID).Return(nil)
		topicCache.On("Invalidate", "topic:stats:"+topicID.String()).Return(nil)
		cache.On("Invalidate", summaryKey(userUID, 7)).Return(nil)
		cache.On("Invalidate", summaryKey(userUID, 30)).Return(nil)

		topics := NewTopicService(new(MockTopicRepository), topicCache, noopLogger())
		svc := NewStudyService(repo, cache, topics, noopLogger())
		session, err := svc.End(context.Background(), userUID, models.SessionEnd{PagesVisited: 10})

		assert.NoError(t, err)
		assert.Equal(t, models.SessionStatusCompleted, session.Status)
		assert.Equal(t, 25, session.TotalMinutes)
		repo.AssertExpectations(t)
		cache.AssertExpectations(t)
		topicCache.AssertExpectations(t)
	})

	t.Run("завершение с паузы не засчитывает время пауз", func(t *testing.T) {
		repo := new(MockStudyRepository)
		cache := new(MockTopicCache)

		sessionID := uuid.New()
		started := time.Now().UTC().Add(-60 * time.Minute)
		pausedAt := time.Now().UTC().Add(-20 * time.Minute)

		// 40 минут до паузы минус 15 минут прежних пауз.
		repo.On("GetActiveSession", mock.Anything, userUID).Return(&models.StudySession{
			ID:            sessionID,
			Status:        models.SessionStatusPaused,
			StartedAt:     started,
			PausedAt:      &pausedAt,
			PausedMinutes: 15,
		}, nil)
		repo.On("EndStudySession", mock.Anything, sessionID.String(), userUID,
			mock.AnythingOfType("time.Time"), 25, 0).Return(1, nil)
		repo.On("AddUserStudyMinutes", mock.Anything, userUID, 25).Return(nil)
		cache.On("Invalidate", summaryKey(userUID, 7)).Return(nil)
		cache.On("Invalidate", summaryKey(userUID, 30)).Return(nil)

		svc := NewStudyService(repo, cache, nil, noopLogger())
		session, err := svc.End(context.Background(), userUID, models.SessionEnd{})

		assert.NoError(t, err)
		assert.Equal(t, 25, session.TotalMinutes)
		assert.Nil(t, session.PausedAt)
		repo.AssertExpectations(t)
	})
}

func TestStudyService_Summary(t *testing.T) {
	userUID := uuid.NewString()
	today := time.Now().UTC().Truncate(24 * time.Hour)

	t.Run("серия подряд идущих дней", func(t *testing.T) {
		repo := new(MockStudyRepository)
		cache := new(MockTopicCache)

		cache.On("Get", summaryKey(userUID, 7), mock.Anything).Return(false, nil)
		repo.On("SummarySince", mock.Anything, userUID, mock.AnythingOfType("time.Time")).
			Return(&models.StudySummary{TotalSessions: 5, TotalMinutes: 150}, nil)
		repo.On("StudyDays", mock.Anything, userUID, mock.AnythingOfType("time.Time")).
			Return([]time.Time{
				today,
				today.AddDate(0, 0, -1),
				today.AddDate(0, 0, -2),
				// разрыв: четыре дня назад не в счёт
				today.AddDate(0, 0, -4),
			}, nil)
		cache.On("Set", summaryKey(userUID, 7), mock.Anything, time.Hour).Return(nil)

		svc := NewStudyService(repo, cache, nil, noopLogger())
		summary, err := svc.Summary(context.Background(), userUID, 7)

		assert.NoError(t, err)
		assert.Equal(t, 7, summary.Days)
		assert.Equal(t, 3, summary.CurrentStreak)
	})

	t.Run("сводка берётся из кэша без похода в базу", func(t *testing.T) {
		repo := new(MockStudyRepository)
		cache := new(MockTopicCache)

		cache.On("Get", summaryKey(userUID, 30), mock.Anything).Return(true, nil)

		svc := NewStudyService(repo, cache, nil, noopLogger())
		_, err := svc.Summary(context.Background(), userUID, 30)

		assert.NoError(t, err)
		repo.AssertNotCalled(t, "SummarySince")
	})
}
