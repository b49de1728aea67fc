package services

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/studysprint/internal/models"
)

type MockNoteRepository struct {
	mock.Mock
}

func (m *MockNoteRepository) CreateNote(ctx context.Context, note *models.Note) (string, error) {
	args := m.Called(ctx, note)
	return args.String(0), args.Error(1)
}

func (m *MockNoteRepository) GetNote(ctx context.Context, id, userUID string) (*models.Note, error) {
	args := m.Called(ctx, id, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Note), args.Error(1)
}

func (m *MockNoteRepository) UpdateNote(ctx context.Context, id, userUID string, fields map[string]any) (int, error) {
	args := m.Called(ctx, id, userUID, fields)
	return args.Int(0), args.Error(1)
}

func (m *MockNoteRepository) RemoveNote(ctx context.Context, id, userUID string) (int, error) {
	args := m.Called(ctx, id, userUID)
	return args.Int(0), args.Error(1)
}

func (m *MockNoteRepository) ListNotes(ctx context.Context, userUID string, filter models.NoteFilter) ([]*models.Note, error) {
	args := m.Called(ctx, userUID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Note), args.Error(1)
}

func (m *MockNoteRepository) GetPDF(ctx context.Context, id, userUID string) (*models.PDF, error) {
	args := m.Called(ctx, id, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PDF), args.Error(1)
}

func (m *MockNoteRepository) GetTopic(ctx context.Context, id, userUID string) (*models.Topic, error) {
	args := m.Called(ctx, id, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Topic), args.Error(1)
}

func TestNoteService_CreateTagsRoundTrip(t *testing.T) {
	userUID := uuid.NewString()

	repo := new(MockNoteRepository)
	repo.On("CreateNote", mock.Anything, mock.MatchedBy(func(note *models.Note) bool {
		return len(note.Tags) == 2 && note.Tags[0] == "go" && note.Tags[1] == "db"
	})).Return(uuid.NewString(), nil)

	svc := NewNoteService(repo, noopLogger())

	note, err := svc.Create(context.Background(), userUID, models.NoteCreate{
		Title: "Индексы в PostgreSQL",
		Tags:  []string{"go", "db"},
	})
	require.NoError(t, err)
	assert.Equal(t, models.Tags{"go", "db"}, note.Tags)

	// Клиент должен получить теги обратно массивом, а не строкой.
	raw, err := json.Marshal(note)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(raw), `"tags":["go","db"]`),
		"tags should serialize as a JSON array, got %s", raw)

	repo.AssertExpectations(t)
}

func TestNoteService_CreateWithoutTags(t *testing.T) {
	userUID := uuid.NewString()

	repo := new(MockNoteRepository)
	repo.On("CreateNote", mock.Anything, mock.Anything).Return(uuid.NewString(), nil)

	svc := NewNoteService(repo, noopLogger())

	note, err := svc.Create(context.Background(), userUID, models.NoteCreate{Title: "Без тегов"})
	require.NoError(t, err)

	raw, err := json.Marshal(note)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(raw), `"tags":[]`),
		"empty tags should serialize as an empty array, got %s", raw)
}

func TestNoteService_UpdateTags(t *testing.T) {
	noteID := uuid.NewString()
	userUID := uuid.NewString()

	repo := new(MockNoteRepository)
	repo.On("UpdateNote", mock.Anything, noteID, userUID,
		map[string]any{"tags": models.Tags{"exam"}}).Return(1, nil)
	repo.On("GetNote", mock.Anything, noteID, userUID).
		Return(&models.Note{Title: "Индексы в PostgreSQL", Tags: models.Tags{"exam"}}, nil)

	svc := NewNoteService(repo, noopLogger())

	note, err := svc.Update(context.Background(), noteID, userUID, models.NoteUpdate{Tags: []string{"exam"}})
	require.NoError(t, err)
	assert.Equal(t, models.Tags{"exam"}, note.Tags)

	repo.AssertExpectations(t)
}

func TestNoteService_UpdateNothing(t *testing.T) {
	svc := NewNoteService(new(MockNoteRepository), noopLogger())

	_, err := svc.Update(context.Background(), uuid.NewString(), uuid.NewString(), models.NoteUpdate{})
	assert.ErrorIs(t, err, ErrNothingToUpdate)
}

func TestTagsScan(t *testing.T) {
	var tags models.Tags
	require.NoError(t, tags.Scan([]byte(`["go","db"]`)))
	assert.Equal(t, models.Tags{"go", "db"}, tags)

	var empty models.Tags
	require.NoError(t, empty.Scan(nil))
	assert.Equal(t, models.Tags{}, empty)
}
