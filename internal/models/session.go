package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Статусы и типы учебных сессий.
const (
	SessionStatusActive    = "active"
	SessionStatusPaused    = "paused"
	SessionStatusCompleted = "completed"

	SessionTypeReading  = "reading"
	SessionTypePomodoro = "pomodoro"
	SessionTypeReview   = "review"
)

// StudySession учётная запись одного интервала занятий.
// У пользователя может быть не более одной активной сессии (проверяется сервисом).
type StudySession struct {
	ID      uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID  uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	TopicID *uuid.UUID `gorm:"type:uuid;index" json:"topic_id,omitempty"`
	PDFID   *uuid.UUID `gorm:"column:pdf_id;type:uuid;index" json:"pdf_id,omitempty"`

	SessionType  string     `gorm:"size:20;not null;default:'reading'" json:"session_type"`
	Status       string     `gorm:"size:20;not null;default:'active'" json:"status"`
	StartedAt     time.Time  `gorm:"not null;default:now()" json:"started_at"`
	EndedAt       *time.Time `json:"ended_at,omitempty"`
	PausedAt      *time.Time `json:"paused_at,omitempty"`
	PausedMinutes int        `gorm:"not null;default:0" json:"paused_minutes"`
	TotalMinutes  int        `gorm:"not null;default:0" json:"total_minutes"`
	PagesVisited  int        `gorm:"not null;default:0" json:"pages_visited"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName задаёт имя таблицы для StudySession.
func (StudySession) TableName() string { return "study_sessions" }

// SessionStart используется для старта новой учебной сессии.
type SessionStart struct {
	TopicID     string `json:"topic_id" validate:"omitempty,uuid"`
	PDFID       string `json:"pdf_id" validate:"omitempty,uuid"`
	SessionType string `json:"session_type" validate:"omitempty,oneof=reading pomodoro review"`
}

// SessionEnd используется для завершения сессии.
type SessionEnd struct {
	PagesVisited int `json:"pages_visited" validate:"omitempty,gte=0"`
}

// StudySummary агрегированная статистика занятий за период.
type StudySummary struct {
	Days              int     `json:"days"`
	TotalSessions     int     `json:"total_sessions"`
	TotalMinutes      int     `json:"total_minutes"`
	AvgSessionMinutes float64 `json:"avg_session_minutes"`
	PagesVisited      int     `json:"pages_visited"`
	ActiveDays        int     `json:"active_days"`
	CurrentStreak     int     `json:"current_streak"`
}
