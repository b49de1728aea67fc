package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Tags список тегов заметки. В базе хранится в колонке jsonb,
// в API сериализуется обычным JSON-массивом строк.
type Tags []string

// Value реализует driver.Valuer для записи тегов в jsonb.
func (t Tags) Value() (driver.Value, error) {
	if t == nil {
		t = Tags{}
	}
	return json.Marshal(t)
}

// Scan реализует sql.Scanner для чтения тегов из jsonb.
func (t *Tags) Scan(value any) error {
	switch v := value.(type) {
	case nil:
		*t = Tags{}
		return nil
	case []byte:
		return json.Unmarshal(v, t)
	case string:
		return json.Unmarshal([]byte(v), t)
	default:
		return fmt.Errorf("unsupported tags column type %T", value)
	}
}

// Note заметка пользователя; может быть привязана к PDF и/или теме.
type Note struct {
	ID      uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID  uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	PDFID   *uuid.UUID `gorm:"column:pdf_id;type:uuid;index" json:"pdf_id,omitempty"`
	TopicID *uuid.UUID `gorm:"type:uuid;index" json:"topic_id,omitempty"`

	Title      string `gorm:"size:255;not null" json:"title"`
	Content    string `gorm:"not null;default:''" json:"content"`
	PageNumber int    `gorm:"not null;default:0" json:"page_number"`
	Tags       Tags   `gorm:"type:jsonb;not null;default:'[]'" json:"tags"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName задаёт имя таблицы для Note.
func (Note) TableName() string { return "notes" }

// NoteCreate используется для приёма новой заметки из JSON-запроса.
type NoteCreate struct {
	Title      string   `json:"title" validate:"required,min=1,max=255"`
	Content    string   `json:"content"`
	PDFID      string   `json:"pdf_id" validate:"omitempty,uuid"`
	TopicID    string   `json:"topic_id" validate:"omitempty,uuid"`
	PageNumber int      `json:"page_number" validate:"omitempty,gte=0"`
	Tags       []string `json:"tags" validate:"omitempty,dive,min=1,max=50"`
}

// NoteUpdate используется для обновления заметки. Пустые поля не изменяются.
type NoteUpdate struct {
	Title      string   `json:"title" validate:"omitempty,min=1,max=255"`
	Content    string   `json:"content"`
	PageNumber int      `json:"page_number" validate:"omitempty,gte=0"`
	Tags       []string `json:"tags" validate:"omitempty,dive,min=1,max=50"`
}

// NoteFilter параметры фильтрации списка заметок.
type NoteFilter struct {
	PDFID   string
	TopicID string
	Limit   int
	Offset  int
}
