package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Статусы загрузки файла PDF в объектное хранилище.
const (
	UploadStatusPending  = "pending"
	UploadStatusUploaded = "uploaded"
)

// PDF хранит метаданные документа; содержимое файла лежит в объектном
// хранилище под ключом StorageKey, доступ через presigned-ссылки.
type PDF struct {
	ID      uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID  uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	TopicID uuid.UUID `gorm:"type:uuid;not null;index" json:"topic_id"`

	Title      string `gorm:"size:255;not null" json:"title"`
	FileName   string `gorm:"size:255;not null" json:"file_name"`
	StorageKey string `gorm:"size:500;not null" json:"-"`
	FileSize   int64  `gorm:"not null;default:0" json:"file_size"`

	TotalPages       int    `gorm:"not null;default:0" json:"total_pages"`
	CurrentPage      int    `gorm:"not null;default:1" json:"current_page"`
	PDFType          string `gorm:"column:pdf_type;size:20;not null;default:'study'" json:"pdf_type"`
	DifficultyRating int    `gorm:"not null;default:3" json:"difficulty_rating"`
	Language         string `gorm:"size:10;not null;default:'en'" json:"language"`
	Author           string `gorm:"size:255" json:"author"`
	UploadStatus     string `gorm:"size:20;not null;default:'pending'" json:"upload_status"`

	LastViewedAt *time.Time `json:"last_viewed_at"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName задаёт имя таблицы для PDF.
func (PDF) TableName() string { return "pdfs" }

// PDFCreate используется для регистрации нового PDF из JSON-запроса.
// В ответ сервис выдаёт presigned PUT ссылку для загрузки содержимого.
type PDFCreate struct {
	TopicID          string `json:"topic_id" validate:"required,uuid"`
	Title            string `json:"title" validate:"required,min=1,max=255"`
	FileName         string `json:"file_name" validate:"required,min=1,max=255"`
	FileSize         int64  `json:"file_size" validate:"required,gt=0"`
	TotalPages       int    `json:"total_pages" validate:"omitempty,gte=0"`
	PDFType          string `json:"pdf_type" validate:"omitempty,oneof=study exercise reference"`
	DifficultyRating int    `json:"difficulty_rating" validate:"omitempty,gte=1,lte=5"`
	Language         string `json:"language" validate:"omitempty,min=2,max=10"`
	Author           string `json:"author" validate:"omitempty,max=255"`
}

// PDFUpdate используется для обновления метаданных PDF. Пустые поля не изменяются.
type PDFUpdate struct {
	Title            string `json:"title" validate:"omitempty,min=1,max=255"`
	PDFType          string `json:"pdf_type" validate:"omitempty,oneof=study exercise reference"`
	DifficultyRating int    `json:"difficulty_rating" validate:"omitempty,gte=1,lte=5"`
	TotalPages       int    `json:"total_pages" validate:"omitempty,gte=0"`
	Author           string `json:"author" validate:"omitempty,max=255"`
}

// PDFUpload ответ на регистрацию PDF: метаданные плюс presigned PUT ссылка.
type PDFUpload struct {
	PDF       *PDF   `json:"pdf"`
	UploadURL string `json:"upload_url"`
}

// PositionUpdate обновляет позицию чтения PDF.
type PositionUpdate struct {
	CurrentPage int `json:"current_page" validate:"required,gte=1"`
}

// PDFFilter параметры фильтрации списка PDF.
type PDFFilter struct {
	TopicID string
	PDFType string
	Limit   int
	Offset  int
}
