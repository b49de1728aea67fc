package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/magabrotheeeer/studysprint/internal/models"
)

// RegisterUser сохраняет нового пользователя вместе с настройками по умолчанию
// и возвращает его идентификатор. Выполняется в одной транзакции.
func (s *Storage) RegisterUser(ctx context.Context, user *models.User) (string, error) {
	const op = "storage.RegisterUser"

	err := s.Gorm.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		prefs := &models.UserPreferences{UserID: user.ID, Timezone: user.Timezone}
		return tx.Create(prefs).Error
	})
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return user.ID.String(), nil
}

// GetUserByUsername возвращает пользователя по имени.
func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	const op = "storage.GetUserByUsername"
	var user models.User
	if err := s.Gorm.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, wrapNotFound(op, err)
	}
	return &user, nil
}

// GetUserByID возвращает пользователя по идентификатору.
func (s *Storage) GetUserByID(ctx context.Context, userUID string) (*models.User, error) {
	const op = "storage.GetUserByID"
	var user models.User
	if err := s.Gorm.WithContext(ctx).Where("id = ?", userUID).First(&user).Error; err != nil {
		return nil, wrapNotFound(op, err)
	}
	return &user, nil
}

// UsernameOrEmailExists сообщает, занято ли имя пользователя или почта.
func (s *Storage) UsernameOrEmailExists(ctx context.Context, username, email string) (bool, error) {
	const op = "storage.UsernameOrEmailExists"
	var count int64
	err := s.Gorm.WithContext(ctx).Model(&models.User{}).
		Where("username = ? OR email = ?", username, email).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return count > 0, nil
}

// CreateUserSession сохраняет строку refresh-сессии.
func (s *Storage) CreateUserSession(ctx context.Context, session *models.UserSession) error {
	const op = "storage.CreateUserSession"
	if err := s.Gorm.WithContext(ctx).Create(session).Error; err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// GetUserSessionByRefreshToken возвращает сессию по refresh-токену.
func (s *Storage) GetUserSessionByRefreshToken(ctx context.Context, token string) (*models.UserSession, error) {
	const op = "storage.GetUserSessionByRefreshToken"
	var session models.UserSession
	if err := s.Gorm.WithContext(ctx).Where("refresh_token = ?", token).First(&session).Error; err != nil {
		return nil, wrapNotFound(op, err)
	}
	return &session, nil
}

// RevokeUserSession мягко удаляет сессию по refresh-токену,
// возвращает количество отозванных строк.
func (s *Storage) RevokeUserSession(ctx context.Context, token string) (int, error) {
	const op = "storage.RevokeUserSession"
	res := s.Gorm.WithContext(ctx).Where("refresh_token = ?", token).Delete(&models.UserSession{})
	if res.Error != nil {
		return 0, fmt.Errorf("%s: %w", op, res.Error)
	}
	return int(res.RowsAffected), nil
}

// TouchUserSession обновляет время последней активности сессии.
func (s *Storage) TouchUserSession(ctx context.Context, sessionID uuid.UUID) error {
	const op = "storage.TouchUserSession"
	err := s.Gorm.WithContext(ctx).Model(&models.UserSession{}).
		Where("id = ?", sessionID).
		Update("last_activity", time.Now().UTC()).Error
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// GetPreferences возвращает настройки пользователя.
func (s *Storage) GetPreferences(ctx context.Context, userUID string) (*models.UserPreferences, error) {
	const op = "storage.GetPreferences"
	var prefs models.UserPreferences
	if err := s.Gorm.WithContext(ctx).Where("user_id = ?", userUID).First(&prefs).Error; err != nil {
		return nil, wrapNotFound(op, err)
	}
	return &prefs, nil
}

// UpdatePreferences применяет к настройкам пользователя переданные поля,
// возвращает обновлённую запись.
func (s *Storage) UpdatePreferences(ctx context.Context, userUID string, fields map[string]any) (*models.UserPreferences, error) {
	const op = "storage.UpdatePreferences"
	res := s.Gorm.WithContext(ctx).Model(&models.UserPreferences{}).
		Where("user_id = ?", userUID).
		Updates(fields)
	if res.Error != nil {
		return nil, fmt.Errorf("%s: %w", op, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return s.GetPreferences(ctx, userUID)
}

// AddUserStudyMinutes прибавляет минуты занятий к денормализованной статистике пользователя.
func (s *Storage) AddUserStudyMinutes(ctx context.Context, userUID string, minutes int) error {
	const op = "storage.AddUserStudyMinutes"
	err := s.Gorm.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userUID).
		Update("total_study_minutes", gorm.Expr("total_study_minutes + ?", minutes)).Error
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
