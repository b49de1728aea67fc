package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/magabrotheeeer/studysprint/internal/migrations"
	"github.com/magabrotheeeer/studysprint/internal/models"
)

func setupTestDatabase(t *testing.T) (*Storage, func()) {
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Second),
		),
	)
	require.NoError(t, err)

	dsn, err := pgContainer.ConnectionString(ctx)
	require.NoError(t, err)

	storage, err := New(dsn)
	require.NoError(t, err)

	migrationsPath, err := filepath.Abs("../../migrations")
	require.NoError(t, err)
	require.NoError(t, migrations.Run(storage.Db, migrationsPath))

	cleanup := func() {
		storage.Db.Close()
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	}

	return storage, cleanup
}

func createTestUser(t *testing.T, s *Storage, username string) string {
	user := &models.User{
		Email:        username + "@example.com",
		Username:     username,
		PasswordHash: "hashedpassword",
	}
	uid, err := s.RegisterUser(context.Background(), user)
	require.NoError(t, err)
	return uid
}

func createTestTopic(t *testing.T, s *Storage, userUID, name string) *models.Topic {
	topic := &models.Topic{
		UserID: uuid.MustParse(userUID),
		Name:   name,
		Color:  "#3498db",
	}
	_, err := s.CreateTopic(context.Background(), topic)
	require.NoError(t, err)
	return topic
}

func TestStorage_TopicLifecycle(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx := context.Background()
	userUID := createTestUser(t, storage, "testuser")
	otherUID := createTestUser(t, storage, "otheruser")

	topic := createTestTopic(t, storage, userUID, "Линейная алгебра")

	t.Run("чтение своей темы", func(t *testing.T) {
		got, err := storage.GetTopic(ctx, topic.ID.String(), userUID)
		require.NoError(t, err)
		assert.Equal(t, "Линейная алгебра", got.Name)
	})

	t.Run("чужая тема не видна", func(t *testing.T) {
		_, err := storage.GetTopic(ctx, topic.ID.String(), otherUID)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("проверка имени без учета регистра", func(t *testing.T) {
		exists, err := storage.TopicNameExists(ctx, userUID, "линейная АЛГЕБРА")
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = storage.TopicNameExists(ctx, userUID, "Другая тема")
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("обновление темы", func(t *testing.T) {
		count, err := storage.UpdateTopic(ctx, topic.ID.String(), userUID, map[string]any{
			"description": "Конспекты первого семестра",
		})
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})

	t.Run("мягкое удаление скрывает тему", func(t *testing.T) {
		count, err := storage.RemoveTopic(ctx, topic.ID.String(), userUID, false)
		require.NoError(t, err)
		assert.Equal(t, 1, count)

		_, err = storage.GetTopic(ctx, topic.ID.String(), userUID)
		assert.ErrorIs(t, err, ErrNotFound)

		// После удаления имя снова свободно
		exists, err := storage.TopicNameExists(ctx, userUID, "Линейная алгебра")
		require.NoError(t, err)
		assert.False(t, exists)
	})
}

func TestStorage_DefaultPreferences(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx := context.Background()
	userUID := createTestUser(t, storage, "testuser")

	prefs, err := storage.GetPreferences(ctx, userUID)
	require.NoError(t, err)

	assert.Equal(t, "light", prefs.Theme)
	assert.Equal(t, 25, prefs.SessionMinutes)
	assert.True(t, prefs.AutoStartBreaks)
	assert.True(t, prefs.SoundEnabled)
	assert.True(t, prefs.StudyReminders)
	assert.Equal(t, 250, prefs.ReadingSpeedWPM)
}

func TestStorage_ForceRemoveTopicCascades(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx := context.Background()
	userUID := createTestUser(t, storage, "testuser")
	topic := createTestTopic(t, storage, userUID, "Физика")

	pdf := &models.PDF{
		UserID:       uuid.MustParse(userUID),
		TopicID:      topic.ID,
		Title:        "Механика",
		FileName:     "mechanics.pdf",
		StorageKey:   "users/2026/1/1/" + uuid.NewString(),
		TotalPages:   300,
		CurrentPage:  1,
		UploadStatus: models.UploadStatusUploaded,
	}
	_, err := storage.CreatePDF(ctx, pdf)
	require.NoError(t, err)

	count, err := storage.CountTopicPDFs(ctx, topic.ID.String(), userUID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	removed, err := storage.RemoveTopic(ctx, topic.ID.String(), userUID, true)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = storage.GetPDF(ctx, pdf.ID.String(), userUID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStorage_StudySessionAggregates(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx := context.Background()
	userUID := createTestUser(t, storage, "testuser")

	started := time.Now().UTC().Add(-time.Hour)
	session := &models.StudySession{
		UserID:      uuid.MustParse(userUID),
		SessionType: models.SessionTypeReading,
		Status:      models.SessionStatusActive,
		StartedAt:   started,
	}
	_, err := storage.CreateStudySession(ctx, session)
	require.NoError(t, err)

	active, err := storage.GetActiveSession(ctx, userUID)
	require.NoError(t, err)
	assert.Equal(t, session.ID, active.ID)

	ended := time.Now().UTC()
	count, err := storage.EndStudySession(ctx, session.ID.String(), userUID, ended, 60, 20)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	// Активной сессии больше нет
	_, err = storage.GetActiveSession(ctx, userUID)
	assert.ErrorIs(t, err, ErrNotFound)

	// Повторное завершение ничего не трогает
	count, err = storage.EndStudySession(ctx, session.ID.String(), userUID, ended, 60, 20)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	summary, err := storage.SummarySince(ctx, userUID, started.AddDate(0, 0, -7))
	require.NoError(t, err)
	assert.Equal(t, 1, summary.TotalSessions)
	assert.Equal(t, 60, summary.TotalMinutes)
	assert.Equal(t, 20, summary.PagesVisited)
	assert.Equal(t, 1, summary.ActiveDays)

	days, err := storage.StudyDays(ctx, userUID, started.AddDate(0, 0, -7))
	require.NoError(t, err)
	assert.Len(t, days, 1)
}

func TestStorage_FindGoalsDueSoon(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx := context.Background()
	userUID := createTestUser(t, storage, "testuser")
	now := time.Now().UTC()

	makeGoal := func(title string, deadline time.Time, completed bool) {
		goal := &models.Goal{
			UserID:      uuid.MustParse(userUID),
			Title:       title,
			GoalType:    models.GoalTypeFinishPDF,
			TargetValue: 100,
			Deadline:    deadline,
			IsCompleted: completed,
		}
		_, err := storage.CreateGoal(ctx, goal)
		require.NoError(t, err)
	}

	makeGoal("Дедлайн завтра", now.Add(12*time.Hour), false)
	makeGoal("Давно просрочена", now.Add(-48*time.Hour), false)
	makeGoal("Уже выполнена", now.Add(12*time.Hour), true)
	makeGoal("Дедлайн через неделю", now.Add(7*24*time.Hour), false)

	infos, err := storage.FindGoalsDueSoon(ctx, now, now.Add(24*time.Hour))
	require.NoError(t, err)

	require.Len(t, infos, 1)
	assert.Equal(t, "Дедлайн завтра", infos[0].GoalTitle)
	assert.Equal(t, "testuser@example.com", infos[0].Email)
}

func TestStorage_PauseResumeSession(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx := context.Background()
	userUID := createTestUser(t, storage, "testuser")

	session := &models.StudySession{
		UserID:      uuid.MustParse(userUID),
		SessionType: models.SessionTypePomodoro,
		Status:      models.SessionStatusActive,
		StartedAt:   time.Now().UTC().Add(-30 * time.Minute),
	}
	_, err := storage.CreateStudySession(ctx, session)
	require.NoError(t, err)

	count, err := storage.PauseStudySession(ctx, session.ID.String(), userUID, time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	// Приостановленная сессия остаётся текущей
	current, err := storage.GetActiveSession(ctx, userUID)
	require.NoError(t, err)
	assert.Equal(t, models.SessionStatusPaused, current.Status)
	assert.NotNil(t, current.PausedAt)

	// Повторная пауза не проходит
	count, err = storage.PauseStudySession(ctx, session.ID.String(), userUID, time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	count, err = storage.ResumeStudySession(ctx, session.ID.String(), userUID, 5)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	current, err = storage.GetActiveSession(ctx, userUID)
	require.NoError(t, err)
	assert.Equal(t, models.SessionStatusActive, current.Status)
	assert.Nil(t, current.PausedAt)
	assert.Equal(t, 5, current.PausedMinutes)
}
