package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/magabrotheeeer/studysprint/internal/models"
)

// CreatePDF вставляет запись о документе и возвращает её идентификатор.
func (s *Storage) CreatePDF(ctx context.Context, pdf *models.PDF) (string, error) {
	const op = "storage.CreatePDF"
	if err := s.Gorm.WithContext(ctx).Create(pdf).Error; err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return pdf.ID.String(), nil
}

// GetPDF возвращает документ пользователя по идентификатору.
func (s *Storage) GetPDF(ctx context.Context, id, userUID string) (*models.PDF, error) {
	const op = "storage.GetPDF"
	var pdf models.PDF
	err := s.Gorm.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userUID).
		First(&pdf).Error
	if err != nil {
		return nil, wrapNotFound(op, err)
	}
	return &pdf, nil
}

// UpdatePDF применяет к документу переданные поля.
func (s *Storage) UpdatePDF(ctx context.Context, id, userUID string, fields map[string]any) (int, error) {
	const op = "storage.UpdatePDF"
	res := s.Gorm.WithContext(ctx).Model(&models.PDF{}).
		Where("id = ? AND user_id = ?", id, userUID).
		Updates(fields)
	if res.Error != nil {
		return 0, fmt.Errorf("%s: %w", op, res.Error)
	}
	return int(res.RowsAffected), nil
}

// RemovePDF мягко удаляет документ.
func (s *Storage) RemovePDF(ctx context.Context, id, userUID string) (int, error) {
	const op = "storage.RemovePDF"
	res := s.Gorm.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userUID).
		Delete(&models.PDF{})
	if res.Error != nil {
		return 0, fmt.Errorf("%s: %w", op, res.Error)
	}
	return int(res.RowsAffected), nil
}

// ListPDFs возвращает документы пользователя с фильтрами и пагинацией.
func (s *Storage) ListPDFs(ctx context.Context, userUID string, filter models.PDFFilter) ([]*models.PDF, error) {
	const op = "storage.ListPDFs"
	q := s.Gorm.WithContext(ctx).Where("user_id = ?", userUID)
	if filter.TopicID != "" {
		q = q.Where("topic_id = ?", filter.TopicID)
	}
	if filter.PDFType != "" {
		q = q.Where("pdf_type = ?", filter.PDFType)
	}
	var pdfs []*models.PDF
	err := q.Order("created_at DESC").
		Limit(filter.Limit).Offset(filter.Offset).
		Find(&pdfs).Error
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return pdfs, nil
}

// UpdatePDFPosition сохраняет текущую страницу и отметку последнего просмотра.
func (s *Storage) UpdatePDFPosition(ctx context.Context, id, userUID string, page int, viewedAt time.Time) (int, error) {
	const op = "storage.UpdatePDFPosition"
	res := s.Gorm.WithContext(ctx).Model(&models.PDF{}).
		Where("id = ? AND user_id = ?", id, userUID).
		Updates(map[string]any{
			"current_page":   page,
			"last_viewed_at": viewedAt,
		})
	if res.Error != nil {
		return 0, fmt.Errorf("%s: %w", op, res.Error)
	}
	return int(res.RowsAffected), nil
}

// MarkPDFUploaded переводит документ в статус uploaded.
func (s *Storage) MarkPDFUploaded(ctx context.Context, id, userUID string) (int, error) {
	const op = "storage.MarkPDFUploaded"
	res := s.Gorm.WithContext(ctx).Model(&models.PDF{}).
		Where("id = ? AND user_id = ?", id, userUID).
		Update("upload_status", models.UploadStatusUploaded)
	if res.Error != nil {
		return 0, fmt.Errorf("%s: %w", op, res.Error)
	}
	return int(res.RowsAffected), nil
}
