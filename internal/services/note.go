package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/studysprint/internal/models"
	"github.com/magabrotheeeer/studysprint/internal/storage"
)

// NoteRepository описывает контракт для работы с заметками в базе данных.
type NoteRepository interface {
	CreateNote(ctx context.Context, note *models.Note) (string, error)
	GetNote(ctx context.Context, id, userUID string) (*models.Note, error)
	UpdateNote(ctx context.Context, id, userUID string, fields map[string]any) (int, error)
	RemoveNote(ctx context.Context, id, userUID string) (int, error)
	ListNotes(ctx context.Context, userUID string, filter models.NoteFilter) ([]*models.Note, error)
	GetPDF(ctx context.Context, id, userUID string) (*models.PDF, error)
	GetTopic(ctx context.Context, id, userUID string) (*models.Topic, error)
}

// NoteService отвечает за заметки пользователей.
type NoteService struct {
	repo NoteRepository
	log  *slog.Logger
}

// NewNoteService создает новый экземпляр NoteService.
func NewNoteService(repo NoteRepository, log *slog.Logger) *NoteService {
	return &NoteService{
		repo: repo,
		log:  log,
	}
}

// Create создает заметку. Привязки к PDF и теме необязательны,
// но если указаны, должны существовать и принадлежать пользователю.
func (s *NoteService) Create(ctx context.Context, userUID string, req models.NoteCreate) (*models.Note, error) {
	uid, err := uuid.Parse(userUID)
	if err != nil {
		return nil, fmt.Errorf("invalid user id: %w", err)
	}

	note := &models.Note{
		UserID:     uid,
		Title:      req.Title,
		Content:    req.Content,
		PageNumber: req.PageNumber,
	}

	if req.PDFID != "" {
		pdf, err := s.repo.GetPDF(ctx, req.PDFID, userUID)
		if err != nil {
			return nil, err
		}
		note.PDFID = &pdf.ID
		// Заметка к PDF наследует его тему, если тема не указана явно.
		if req.TopicID == "" {
			note.TopicID = &pdf.TopicID
		}
	}
	if req.TopicID != "" {
		topic, err := s.repo.GetTopic(ctx, req.TopicID, userUID)
		if err != nil {
			return nil, err
		}
		note.TopicID = &topic.ID
	}

	note.Tags = models.Tags(req.Tags)
	if note.Tags == nil {
		note.Tags = models.Tags{}
	}

	id, err := s.repo.CreateNote(ctx, note)
	if err != nil {
		return nil, err
	}
	s.log.Info("created new note", slog.String("id", id))
	return note, nil
}

// Read возвращает заметку пользователя.
func (s *NoteService) Read(ctx context.Context, id, userUID string) (*models.Note, error) {
	return s.repo.GetNote(ctx, id, userUID)
}

// Update обновляет заметку. Пустые поля не изменяются;
// непустой список тегов заменяет прежний целиком.
func (s *NoteService) Update(ctx context.Context, id, userUID string, req models.NoteUpdate) (*models.Note, error) {
	fields := map[string]any{}
	if req.Title != "" {
		fields["title"] = req.Title
	}
	if req.Content != "" {
		fields["content"] = req.Content
	}
	if req.PageNumber != 0 {
		fields["page_number"] = req.PageNumber
	}
	if req.Tags != nil {
		fields["tags"] = models.Tags(req.Tags)
	}
	if len(fields) == 0 {
		return nil, ErrNothingToUpdate
	}

	count, err := s.repo.UpdateNote(ctx, id, userUID, fields)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, storage.ErrNotFound
	}
	return s.repo.GetNote(ctx, id, userUID)
}

// Remove мягко удаляет заметку.
func (s *NoteService) Remove(ctx context.Context, id, userUID string) (int, error) {
	return s.repo.RemoveNote(ctx, id, userUID)
}

// List возвращает заметки пользователя с фильтрами и пагинацией.
func (s *NoteService) List(ctx context.Context, userUID string, filter models.NoteFilter) ([]*models.Note, error) {
	if filter.Limit == 0 {
		filter.Limit = 20
	}
	return s.repo.ListNotes(ctx, userUID, filter)
}
