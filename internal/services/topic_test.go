package services

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/studysprint/internal/models"
	"github.com/magabrotheeeer/studysprint/internal/storage"
)

type MockTopicRepository struct {
	mock.Mock
}

func (m *MockTopicRepository) CreateTopic(ctx context.Context, topic *models.Topic) (string, error) {
	args := m.Called(ctx, topic)
	return args.String(0), args.Error(1)
}

func (m *MockTopicRepository) GetTopic(ctx context.Context, id, userUID string) (*models.Topic, error) {
	args := m.Called(ctx, id, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Topic), args.Error(1)
}

func (m *MockTopicRepository) TopicNameExists(ctx context.Context, userUID, name string) (bool, error) {
	args := m.Called(ctx, userUID, name)
	return args.Bool(0), args.Error(1)
}

func (m *MockTopicRepository) UpdateTopic(ctx context.Context, id, userUID string, fields map[string]any) (int, error) {
	args := m.Called(ctx, id, userUID, fields)
	return args.Int(0), args.Error(1)
}

func (m *MockTopicRepository) RemoveTopic(ctx context.Context, id, userUID string, force bool) (int, error) {
	args := m.Called(ctx, id, userUID, force)
	return args.Int(0), args.Error(1)
}

func (m *MockTopicRepository) CountTopicPDFs(ctx context.Context, id, userUID string) (int, error) {
	args := m.Called(ctx, id, userUID)
	return args.Int(0), args.Error(1)
}

func (m *MockTopicRepository) ListTopics(ctx context.Context, userUID string, limit, offset int) ([]*models.Topic, error) {
	args := m.Called(ctx, userUID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Topic), args.Error(1)
}

func (m *MockTopicRepository) SearchTopics(ctx context.Context, userUID, query string, limit int) ([]*models.Topic, error) {
	args := m.Called(ctx, userUID, query, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Topic), args.Error(1)
}

func (m *MockTopicRepository) AggregateTopicStats(ctx context.Context, id, userUID string) (*models.TopicStats, error) {
	args := m.Called(ctx, id, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TopicStats), args.Error(1)
}

func (m *MockTopicRepository) GetPreferences(ctx context.Context, userUID string) (*models.UserPreferences, error) {
	args := m.Called(ctx, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserPreferences), args.Error(1)
}

type MockTopicCache struct {
	mock.Mock
}

func (m *MockTopicCache) Get(key string, result any) (bool, error) {
	args := m.Called(key, result)
	return args.Bool(0), args.Error(1)
}

func (m *MockTopicCache) Set(key string, value any, expiration time.Duration) error {
	args := m.Called(key, value, expiration)
	return args.Error(0)
}

func (m *MockTopicCache) Invalidate(key string) error {
	args := m.Called(key)
	return args.Error(0)
}

func noopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestTopicService_Create(t *testing.T) {
	userUID := uuid.NewString()

	tests := []struct {
		name          string
		req           models.TopicCreate
		setupMocks    func(*MockTopicRepository)
		expectedError error
	}{
		{
			name: "успешное создание темы",
			req:  models.TopicCreate{Name: "Физика", Color: "#2ecc71"},
			setupMocks: func(repo *MockTopicRepository) {
				repo.On("TopicNameExists", mock.Anything, userUID, "Физика").Return(false, nil)
				repo.On("CreateTopic", mock.Anything, mock.AnythingOfType("*models.Topic")).
					Return(uuid.NewString(), nil)
			},
			expectedError: nil,
		},
		{
			name: "имя уже занято",
			req:  models.TopicCreate{Name: "Физика"},
			setupMocks: func(repo *MockTopicRepository) {
				repo.On("TopicNameExists", mock.Anything, userUID, "Физика").Return(true, nil)
			},
			expectedError: ErrTopicNameTaken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockTopicRepository)
			cache := new(MockTopicCache)
			tt.setupMocks(repo)

			svc := NewTopicService(repo, cache, noopLogger())
			topic, err := svc.Create(context.Background(), userUID, tt.req)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, topic)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.req.Name, topic.Name)
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestTopicService_Remove(t *testing.T) {
	userUID := uuid.NewString()
	topicID := uuid.NewString()

	tests := []struct {
		name          string
		force         bool
		setupMocks    func(*MockTopicRepository, *MockTopicCache)
		expectedError error
		expectedCount int
	}{
		{
			name:  "пустая тема удаляется без force",
			force: false,
			setupMocks: func(repo *MockTopicRepository, cache *MockTopicCache) {
				repo.On("CountTopicPDFs", mock.Anything, topicID, userUID).Return(0, nil)
				cache.On("Invalidate", "topic:stats:"+topicID).Return(nil)
				repo.On("RemoveTopic", mock.Anything, topicID, userUID, false).Return(1, nil)
			},
			expectedCount: 1,
		},
		{
			name:  "непустая тема без force не удаляется",
			force: false,
			setupMocks: func(repo *MockTopicRepository, _ *MockTopicCache) {
				repo.On("CountTopicPDFs", mock.Anything, topicID, userUID).Return(3, nil)
			},
			expectedError: ErrTopicHasPDFs,
		},
		{
			name:  "force удаляет тему с каскадом",
			force: true,
			setupMocks: func(repo *MockTopicRepository, cache *MockTopicCache) {
				cache.On("Invalidate", "topic:stats:"+topicID).Return(nil)
				repo.On("RemoveTopic", mock.Anything, topicID, userUID, true).Return(1, nil)
			},
			expectedCount: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockTopicRepository)
			cache := new(MockTopicCache)
			tt.setupMocks(repo, cache)

			svc := NewTopicService(repo, cache, noopLogger())
			count, err := svc.Remove(context.Background(), topicID, userUID, tt.force)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expectedCount, count)
			}
			repo.AssertExpectations(t)
			cache.AssertExpectations(t)
		})
	}
}

func TestTopicService_Stats(t *testing.T) {
	userUID := uuid.NewString()
	topicID := uuid.NewString()
	cacheKey := "topic:stats:" + topicID

	t.Run("статистика с оценкой оставшегося времени", func(t *testing.T) {
		repo := new(MockTopicRepository)
		cache := new(MockTopicCache)

		cache.On("Get", cacheKey, mock.Anything).Return(false, nil)
		repo.On("GetTopic", mock.Anything, topicID, userUID).Return(&models.Topic{Name: "Физика"}, nil)
		repo.On("AggregateTopicStats", mock.Anything, topicID, userUID).Return(&models.TopicStats{
			TotalPDFs:  2,
			TotalPages: 400,
			PagesRead:  100,
		}, nil)
		repo.On("GetPreferences", mock.Anything, userUID).Return(&models.UserPreferences{
			ReadingSpeedWPM: 300,
		}, nil)
		cache.On("Set", cacheKey, mock.Anything, time.Hour).Return(nil)

		svc := NewTopicService(repo, cache, noopLogger())
		stats, err := svc.Stats(context.Background(), topicID, userUID)

		assert.NoError(t, err)
		// 300 оставшихся страниц * 300 слов / 300 слов в минуту
		assert.Equal(t, 300, stats.EstimatedRemaining)
		repo.AssertExpectations(t)
		cache.AssertExpectations(t)
	})

	t.Run("несуществующая тема", func(t *testing.T) {
		repo := new(MockTopicRepository)
		cache := new(MockTopicCache)

		cache.On("Get", cacheKey, mock.Anything).Return(false, nil)
		repo.On("GetTopic", mock.Anything, topicID, userUID).Return(nil, storage.ErrNotFound)

		svc := NewTopicService(repo, cache, noopLogger())
		_, err := svc.Stats(context.Background(), topicID, userUID)

		assert.ErrorIs(t, err, storage.ErrNotFound)
	})
}

func TestTopicService_BatchRemove(t *testing.T) {
	userUID := uuid.NewString()
	okID := uuid.NewString()
	badID := uuid.NewString()

	t.Run("без подтверждения отклоняется", func(t *testing.T) {
		svc := NewTopicService(new(MockTopicRepository), new(MockTopicCache), noopLogger())
		_, err := svc.BatchRemove(context.Background(), userUID, models.TopicBatchDelete{
			IDs: []string{okID},
		})
		assert.ErrorIs(t, err, ErrBatchNotConfirmed)
	})

	t.Run("ошибки по отдельным темам не прерывают остальные", func(t *testing.T) {
		repo := new(MockTopicRepository)
		cache := new(MockTopicCache)

		cache.On("Invalidate", mock.Anything).Return(nil)
		repo.On("RemoveTopic", mock.Anything, okID, userUID, true).Return(1, nil)
		repo.On("RemoveTopic", mock.Anything, badID, userUID, true).Return(0, nil)

		svc := NewTopicService(repo, cache, noopLogger())
		result, err := svc.BatchRemove(context.Background(), userUID, models.TopicBatchDelete{
			IDs:     []string{okID, badID},
			Confirm: true,
		})

		assert.NoError(t, err)
		assert.Equal(t, 1, result.DeletedCount)
		assert.Equal(t, 1, result.FailedCount)
		assert.Equal(t, []string{badID}, result.FailedIDs)
	})
}
