package storage

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/studysprint/internal/models"
)

// CreateNote вставляет заметку и возвращает её идентификатор.
func (s *Storage) CreateNote(ctx context.Context, note *models.Note) (string, error) {
	const op = "storage.CreateNote"
	if err := s.Gorm.WithContext(ctx).Create(note).Error; err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return note.ID.String(), nil
}

// GetNote возвращает заметку пользователя по идентификатору.
func (s *Storage) GetNote(ctx context.Context, id, userUID string) (*models.Note, error) {
	const op = "storage.GetNote"
	var note models.Note
	err := s.Gorm.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userUID).
		First(&note).Error
	if err != nil {
		return nil, wrapNotFound(op, err)
	}
	return &note, nil
}

// UpdateNote применяет к заметке переданные поля.
func (s *Storage) UpdateNote(ctx context.Context, id, userUID string, fields map[string]any) (int, error) {
	const op = "storage.UpdateNote"
	res := s.Gorm.WithContext(ctx).Model(&models.Note{}).
		Where("id = ? AND user_id = ?", id, userUID).
		Updates(fields)
	if res.Error != nil {
		return 0, fmt.Errorf("%s: %w", op, res.Error)
	}
	return int(res.RowsAffected), nil
}

// RemoveNote мягко удаляет заметку.
func (s *Storage) RemoveNote(ctx context.Context, id, userUID string) (int, error) {
	const op = "storage.RemoveNote"
	res := s.Gorm.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userUID).
		Delete(&models.Note{})
	if res.Error != nil {
		return 0, fmt.Errorf("%s: %w", op, res.Error)
	}
	return int(res.RowsAffected), nil
}

// ListNotes возвращает заметки пользователя с фильтрами и пагинацией.
func (s *Storage) ListNotes(ctx context.Context, userUID string, filter models.NoteFilter) ([]*models.Note, error) {
	const op = "storage.ListNotes"
	q := s.Gorm.WithContext(ctx).Where("user_id = ?", userUID)
	if filter.PDFID != "" {
		q = q.Where("pdf_id = ?", filter.PDFID)
	}
	if filter.TopicID != "" {
		q = q.Where("topic_id = ?", filter.TopicID)
	}
	var notes []*models.Note
	err := q.Order("created_at DESC").
		Limit(filter.Limit).Offset(filter.Offset).
		Find(&notes).Error
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return notes, nil
}
