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

// Ошибки работы с документами.
var (
	ErrPageOutOfRange = errors.New("page out of range")
	ErrNotUploaded    = errors.New("file is not uploaded yet")
)

// PDFRepository описывает контракт для работы с документами в базе данных.
type PDFRepository interface {
	CreatePDF(ctx context.Context, pdf *models.PDF) (string, error)
	GetPDF(ctx context.Context, id, userUID string) (*models.PDF, error)
	UpdatePDF(ctx context.Context, id, userUID string, fields map[string]any) (int, error)
	RemovePDF(ctx context.Context, id, userUID string) (int, error)
	ListPDFs(ctx context.Context, userUID string, filter models.PDFFilter) ([]*models.PDF, error)
	UpdatePDFPosition(ctx context.Context, id, userUID string, page int, viewedAt time.Time) (int, error)
	MarkPDFUploaded(ctx context.Context, id, userUID string) (int, error)
	GetTopic(ctx context.Context, id, userUID string) (*models.Topic, error)
	RefreshTopicStats(ctx context.Context, id, userUID string) error
}

// FileStore описывает контракт объектного хранилища файлов.
type FileStore interface {
	PresignedPutURL(ctx context.Context) (string, string, error)
	PresignedGetURL(ctx context.Context, key string) (string, error)
}

// PDFService отвечает за метаданные документов и выдачу presigned-ссылок.
type PDFService struct {
	repo   PDFRepository
	files  FileStore
	topics *TopicService
	log    *slog.Logger
}

// NewPDFService создает новый экземпляр PDFService.
func NewPDFService(repo PDFRepository, files FileStore, topics *TopicService, log *slog.Logger) *PDFService {
	return &PDFService{
		repo:   repo,
		files:  files,
		topics: topics,
		log:    log,
	}
}

// Create регистрирует документ внутри темы и возвращает presigned PUT
// ссылку для загрузки содержимого клиентом напрямую в хранилище.
func (s *PDFService) Create(ctx context.Context, userUID string, req models.PDFCreate) (*models.PDFUpload, error) {
	if _, err := s.repo.GetTopic(ctx, req.TopicID, userUID); err != nil {
		return nil, err
	}

	key, uploadURL, err := s.files.PresignedPutURL(ctx)
	if err != nil {
		return nil, err
	}

	uid, err := uuid.Parse(userUID)
	if err != nil {
		return nil, fmt.Errorf("invalid user id: %w", err)
	}
	topicID, err := uuid.Parse(req.TopicID)
	if err != nil {
		return nil, fmt.Errorf("invalid topic id: %w", err)
	}

	pdf := &models.PDF{
		UserID:       uid,
		TopicID:      topicID,
		Title:        req.Title,
		FileName:     req.FileName,
		StorageKey:   key,
		FileSize:     req.FileSize,
		TotalPages:   req.TotalPages,
		CurrentPage:  1,
		UploadStatus: models.UploadStatusPending,
	}
	if req.PDFType != "" {
		pdf.PDFType = req.PDFType
	}
	if req.DifficultyRating != 0 {
		pdf.DifficultyRating = req.DifficultyRating
	}
	if req.Language != "" {
		pdf.Language = req.Language
	}
	if req.Author != "" {
		pdf.Author = req.Author
	}

	id, err := s.repo.CreatePDF(ctx, pdf)
	if err != nil {
		return nil, err
	}
	s.log.Info("created new pdf", slog.String("id", id))

	if err := s.repo.RefreshTopicStats(ctx, req.TopicID, userUID); err != nil {
		s.log.Warn("failed to refresh topic stats", slog.Any("err", err))
	}
	s.topics.InvalidateStats(req.TopicID)

	return &models.PDFUpload{PDF: pdf, UploadURL: uploadURL}, nil
}

// Read возвращает документ пользователя.
func (s *PDFService) Read(ctx context.Context, id, userUID string) (*models.PDF, error) {
	return s.repo.GetPDF(ctx, id, userUID)
}

// ConfirmUpload помечает файл как загруженный в хранилище.
func (s *PDFService) ConfirmUpload(ctx context.Context, id, userUID string) error {
	count, err := s.repo.MarkPDFUploaded(ctx, id, userUID)
	if err != nil {
		return err
	}
	if count == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// Update обновляет метаданные документа. Пустые поля не изменяются.
func (s *PDFService) Update(ctx context.Context, id, userUID string, req models.PDFUpdate) (*models.PDF, error) {
	fields := map[string]any{}
	if req.Title != "" {
		fields["title"] = req.Title
	}
	if req.PDFType != "" {
		fields["pdf_type"] = req.PDFType
	}
	if req.DifficultyRating != 0 {
		fields["difficulty_rating"] = req.DifficultyRating
	}
	if req.TotalPages != 0 {
		fields["total_pages"] = req.TotalPages
	}
	if req.Author != "" {
		fields["author"] = req.Author
	}
	if len(fields) == 0 {
		return nil, ErrNothingToUpdate
	}

	count, err := s.repo.UpdatePDF(ctx, id, userUID, fields)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, storage.ErrNotFound
	}

	pdf, err := s.repo.GetPDF(ctx, id, userUID)
	if err != nil {
		return nil, err
	}
	if _, ok := fields["total_pages"]; ok {
		if err := s.repo.RefreshTopicStats(ctx, pdf.TopicID.String(), userUID); err != nil {
			s.log.Warn("failed to refresh topic stats", slog.Any("err", err))
		}
		s.topics.InvalidateStats(pdf.TopicID.String())
	}
	return pdf, nil
}

// Remove мягко удаляет документ и пересчитывает статистику темы.
func (s *PDFService) Remove(ctx context.Context, id, userUID string) (int, error) {
	pdf, err := s.repo.GetPDF(ctx, id, userUID)
	if err != nil {
		return 0, err
	}

	count, err := s.repo.RemovePDF(ctx, id, userUID)
	if err != nil {
		return 0, err
	}

	if err := s.repo.RefreshTopicStats(ctx, pdf.TopicID.String(), userUID); err != nil {
		s.log.Warn("failed to refresh topic stats", slog.Any("err", err))
	}
	s.topics.InvalidateStats(pdf.TopicID.String())
	return count, nil
}

// List возвращает документы пользователя с фильтрами и пагинацией.
func (s *PDFService) List(ctx context.Context, userUID string, filter models.PDFFilter) ([]*models.PDF, error) {
	if filter.Limit == 0 {
		filter.Limit = 20
	}
	return s.repo.ListPDFs(ctx, userUID, filter)
}

// DownloadURL возвращает presigned GET ссылку на содержимое документа.
func (s *PDFService) DownloadURL(ctx context.Context, id, userUID string) (string, error) {
	pdf, err := s.repo.GetPDF(ctx, id, userUID)
	if err != nil {
		return "", err
	}
	if pdf.UploadStatus != models.UploadStatusUploaded {
		return "", ErrNotUploaded
	}
	return s.files.PresignedGetURL(ctx, pdf.StorageKey)
}

// UpdatePosition сохраняет позицию чтения и отметку последнего просмотра.
// Страница не может превышать количество страниц документа.
func (s *PDFService) UpdatePosition(ctx context.Context, id, userUID string, req models.PositionUpdate) (*models.PDF, error) {
	pdf, err := s.repo.GetPDF(ctx, id, userUID)
	if err != nil {
		return nil, err
	}
	if pdf.TotalPages > 0 && req.CurrentPage > pdf.TotalPages {
		return nil, ErrPageOutOfRange
	}

	now := time.Now().UTC()
	count, err := s.repo.UpdatePDFPosition(ctx, id, userUID, req.CurrentPage, now)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, storage.ErrNotFound
	}

	if err := s.repo.RefreshTopicStats(ctx, pdf.TopicID.String(), userUID); err != nil {
		s.log.Warn("failed to refresh topic stats", slog.Any("err", err))
	}
	s.topics.InvalidateStats(pdf.TopicID.String())

	pdf.CurrentPage = req.CurrentPage
	pdf.LastViewedAt = &now
	return pdf, nil
}
