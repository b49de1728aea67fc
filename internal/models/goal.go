package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Типы учебных целей.
const (
	GoalTypeDailyMinutes = "daily_minutes"
	GoalTypeFinishPDF    = "finish_pdf"
	GoalTypeFinishTopic  = "finish_topic"
)

// Goal учебная цель пользователя с дедлайном; по целям с включёнными
// напоминаниями планировщик рассылает письма.
type Goal struct {
	ID     uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`

	Title        string    `gorm:"size:255;not null" json:"title"`
	GoalType     string    `gorm:"size:20;not null" json:"goal_type"`
	TargetValue  int       `gorm:"not null" json:"target_value"`
	CurrentValue int       `gorm:"not null;default:0" json:"current_value"`
	Deadline     time.Time `gorm:"not null;index" json:"deadline"`
	IsCompleted  bool      `gorm:"not null;default:false" json:"is_completed"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName задаёт имя таблицы для Goal.
func (Goal) TableName() string { return "goals" }

// GoalCreate используется для приёма новой цели из JSON-запроса.
// Дедлайн приходит строкой в формате 02-01-2006 и парсится сервисом.
type GoalCreate struct {
	Title       string `json:"title" validate:"required,min=1,max=255"`
	GoalType    string `json:"goal_type" validate:"required,oneof=daily_minutes finish_pdf finish_topic"`
	TargetValue int    `json:"target_value" validate:"required,gt=0"`
	Deadline    string `json:"deadline" validate:"required,datetime=02-01-2006"`
}

// GoalProgress используется для обновления прогресса цели.
type GoalProgress struct {
	CurrentValue int `json:"current_value" validate:"required,gte=0"`
}

// GoalDueInfo сообщение планировщика о цели с подступающим дедлайном.
type GoalDueInfo struct {
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	GoalTitle string    `json:"goal_title"`
	Deadline  time.Time `json:"deadline"`
}

// StudyIdleInfo сообщение планировщика о пользователе без занятий за сутки.
type StudyIdleInfo struct {
	Email    string `json:"email"`
	Username string `json:"username"`
}
