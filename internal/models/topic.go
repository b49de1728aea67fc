package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Topic группирует PDF и учебные материалы пользователя.
// Имя темы уникально в пределах пользователя среди неудалённых строк
// (без учёта регистра, проверяется сервисом).
type Topic struct {
	ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	Description string    `json:"description"`
	Color       string    `gorm:"size:7;not null;default:'#3498db'" json:"color"`

	// Денормализованная статистика, пересчитывается после изменений PDF и сессий.
	TotalPDFs         int        `gorm:"column:total_pdfs;not null;default:0" json:"total_pdfs"`
	TotalPages        int        `gorm:"not null;default:0" json:"total_pages"`
	StudyProgress     float64    `gorm:"type:decimal(5,2);not null;default:0" json:"study_progress"`
	TotalStudyMinutes int        `gorm:"not null;default:0" json:"total_study_minutes"`
	LastStudiedAt     *time.Time `json:"last_studied_at"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName задаёт имя таблицы для Topic.
func (Topic) TableName() string { return "topics" }

// TopicCreate используется для приёма данных новой темы из JSON-запроса.
type TopicCreate struct {
	Name        string `json:"name" validate:"required,min=1,max=255"`
	Description string `json:"description" validate:"max=2000"`
	Color       string `json:"color" validate:"omitempty,hexcolor"`
}

// TopicUpdate используется для обновления темы. Пустые поля не изменяются.
type TopicUpdate struct {
	Name        string `json:"name" validate:"omitempty,min=1,max=255"`
	Description string `json:"description" validate:"omitempty,max=2000"`
	Color       string `json:"color" validate:"omitempty,hexcolor"`
}

// TopicSearch описывает поисковый запрос по имени и описанию тем.
type TopicSearch struct {
	Query string `json:"query" validate:"required,min=1,max=255"`
	Limit int    `json:"limit" validate:"omitempty,gte=1,lte=100"`
}

// TopicBatchDelete описывает запрос на пакетное удаление тем.
// Флаг Confirm обязателен, чтобы исключить случайные массовые удаления.
type TopicBatchDelete struct {
	IDs     []string `json:"ids" validate:"required,min=1,dive,uuid"`
	Confirm bool     `json:"confirm"`
}

// BatchDeleteResult результат пакетного удаления.
type BatchDeleteResult struct {
	DeletedCount int      `json:"deleted_count"`
	FailedCount  int      `json:"failed_count"`
	FailedIDs    []string `json:"failed_ids,omitempty"`
}

// TopicStats агрегированная статистика темы, считается по живым PDF
// и завершённым учебным сессиям.
type TopicStats struct {
	TotalPDFs          int              `json:"total_pdfs"`
	TotalPages         int              `json:"total_pages"`
	PagesRead          int              `json:"pages_read"`
	ReadingProgress    float64          `json:"reading_progress_percentage"`
	TotalStudyMinutes  int              `json:"total_study_minutes"`
	EstimatedRemaining int              `json:"estimated_remaining_minutes"`
	RecentActivity     []RecentActivity `json:"recent_activity"`
}

// RecentActivity последняя активность по PDF внутри темы.
type RecentActivity struct {
	PDFID        string     `json:"pdf_id"`
	PDFTitle     string     `json:"pdf_title"`
	CurrentPage  int        `json:"current_page"`
	TotalPages   int        `json:"total_pages"`
	LastViewedAt *time.Time `json:"last_viewed_at"`
}
