// Package models содержит доменные структуры приложения StudySprint,
// а также вспомогательные типы для приёма данных из JSON-запросов.
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User представляет зарегистрированного пользователя системы.
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	Username     string    `gorm:"uniqueIndex;not null" json:"username"`
	PasswordHash string    `gorm:"not null" json:"-"`
	FullName     string    `json:"full_name"`
	IsActive     bool      `gorm:"not null;default:true" json:"is_active"`
	Timezone     string    `gorm:"not null;default:'UTC'" json:"timezone"`

	// Денормализованная статистика, обновляется сервисами.
	TotalStudyMinutes int `gorm:"not null;default:0" json:"total_study_minutes"`
	TotalPDFs         int `gorm:"column:total_pdfs;not null;default:0" json:"total_pdfs"`
	TotalNotes        int `gorm:"not null;default:0" json:"total_notes"`
	CurrentStreak     int `gorm:"not null;default:0" json:"current_streak"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName задаёт имя таблицы для User.
func (User) TableName() string { return "users" }

// UserSession хранит выданный refresh-токен и метаданные входа.
// Одна строка на каждый выданный refresh-токен; logout отзывает строку.
type UserSession struct {
	ID           uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID       uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	RefreshToken string    `gorm:"uniqueIndex;not null" json:"-"`
	ExpiresAt    time.Time `gorm:"not null" json:"expires_at"`
	LastActivity time.Time `gorm:"not null;default:now()" json:"last_activity"`
	IPAddress    string    `gorm:"size:45" json:"ip_address"`
	UserAgent    string    `json:"user_agent"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName задаёт имя таблицы для UserSession.
func (UserSession) TableName() string { return "user_sessions" }

// IsExpired сообщает, истёк ли срок действия сессии.
func (s *UserSession) IsExpired() bool {
	return time.Now().UTC().After(s.ExpiresAt)
}

// UserPreferences хранит настройки пользователя: интерфейс, pomodoro-таймер
// и флаги уведомлений. Создаётся с значениями по умолчанию при регистрации.
type UserPreferences struct {
	ID     uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`

	Theme    string `gorm:"not null;default:'light'" json:"theme"`
	Language string `gorm:"not null;default:'en'" json:"language"`
	Timezone string `gorm:"not null;default:'UTC'" json:"timezone"`

	SessionMinutes   int  `gorm:"not null;default:25" json:"session_minutes"`
	BreakMinutes     int  `gorm:"not null;default:5" json:"break_minutes"`
	LongBreakMinutes int  `gorm:"not null;default:15" json:"long_break_minutes"`
	AutoStartBreaks  bool `gorm:"not null;default:true" json:"auto_start_breaks"`
	SoundEnabled     bool `gorm:"not null;default:true" json:"sound_enabled"`

	EmailNotifications bool `gorm:"not null;default:true" json:"email_notifications"`
	StudyReminders     bool `gorm:"not null;default:true" json:"study_reminders"`
	GoalReminders      bool `gorm:"not null;default:true" json:"goal_reminders"`

	ReadingSpeedWPM int `gorm:"column:reading_speed_wpm;not null;default:250" json:"reading_speed_wpm"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName задаёт имя таблицы для UserPreferences.
func (UserPreferences) TableName() string { return "user_preferences" }

// RegisterRequest используется для приёма данных регистрации из JSON-запроса.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"required,alphanum,min=3,max=100"`
	Password string `json:"password" validate:"required,min=8"`
	FullName string `json:"full_name"`
}

// LoginRequest используется для приёма данных входа из JSON-запроса.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// TokenPair возвращается при успешном входе.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
}

// RefreshRequest используется для обмена refresh-токена на новый токен доступа.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// LogoutRequest используется для отзыва refresh-токена.
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// PreferencesUpdate используется для обновления настроек пользователя.
type PreferencesUpdate struct {
	Theme              string `json:"theme" validate:"omitempty,oneof=light dark auto"`
	Language           string `json:"language" validate:"omitempty,min=2,max=10"`
	Timezone           string `json:"timezone" validate:"omitempty,max=50"`
	SessionMinutes     int    `json:"session_minutes" validate:"omitempty,gte=5,lte=180"`
	BreakMinutes       int    `json:"break_minutes" validate:"omitempty,gte=1,lte=60"`
	LongBreakMinutes   int    `json:"long_break_minutes" validate:"omitempty,gte=5,lte=120"`
	AutoStartBreaks    *bool  `json:"auto_start_breaks"`
	SoundEnabled       *bool  `json:"sound_enabled"`
	EmailNotifications *bool  `json:"email_notifications"`
	StudyReminders     *bool  `json:"study_reminders"`
	GoalReminders      *bool  `json:"goal_reminders"`
	ReadingSpeedWPM    int    `json:"reading_speed_wpm" validate:"omitempty,gte=50,lte=2000"`
}
