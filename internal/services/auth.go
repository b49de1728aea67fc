// Package services содержит логику бизнес-уровня приложения StudySprint:
// аутентификацию, работу с темами, документами, заметками, сессиями и целями.
package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/studysprint/internal/lib/jwt"
	"github.com/magabrotheeeer/studysprint/internal/lib/password"
	"github.com/magabrotheeeer/studysprint/internal/models"
	"github.com/magabrotheeeer/studysprint/internal/storage"
)

// Ошибки бизнес-уровня, транслируются обработчиками в HTTP статусы.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAlreadyExists      = errors.New("already exists")
	ErrSessionExpired     = errors.New("session expired")
)

// UserRepository описывает контракт для работы с пользователями в базе данных.
type UserRepository interface {
	// RegisterUser сохраняет нового пользователя вместе с настройками
	// по умолчанию и возвращает его ID.
	RegisterUser(ctx context.Context, user *models.User) (string, error)

	// GetUserByUsername возвращает пользователя по имени или ошибку, если не найден.
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)

	// GetUserByID возвращает пользователя по идентификатору.
	GetUserByID(ctx context.Context, userUID string) (*models.User, error)

	// UsernameOrEmailExists сообщает, занято ли имя пользователя или почта.
	UsernameOrEmailExists(ctx context.Context, username, email string) (bool, error)

	CreateUserSession(ctx context.Context, session *models.UserSession) error
	GetUserSessionByRefreshToken(ctx context.Context, token string) (*models.UserSession, error)
	TouchUserSession(ctx context.Context, sessionID uuid.UUID) error
	RevokeUserSession(ctx context.Context, token string) (int, error)

	GetPreferences(ctx context.Context, userUID string) (*models.UserPreferences, error)
	UpdatePreferences(ctx context.Context, userUID string, fields map[string]any) (*models.UserPreferences, error)
}

// AuthService отвечает за регистрацию, авторизацию и настройки пользователей.
type AuthService struct {
	users      UserRepository
	jwtMaker   jwt.Maker
	tokenTTL   time.Duration
	refreshTTL time.Duration
}

// NewAuthService создает новый экземпляр AuthService.
func NewAuthService(users UserRepository, jwtMaker jwt.Maker, tokenTTL, refreshTTL time.Duration) *AuthService {
	return &AuthService{
		users:      users,
		jwtMaker:   jwtMaker,
		tokenTTL:   tokenTTL,
		refreshTTL: refreshTTL,
	}
}

// Register создает нового пользователя с хэшированием пароля
// и настройками по умолчанию.
func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (string, error) {
	exists, err := s.users.UsernameOrEmailExists(ctx, req.Username, req.Email)
	if err != nil {
		return "", err
	}
	if exists {
		return "", ErrAlreadyExists
	}
	hashed, err := password.GetHash(req.Password)
	if err != nil {
		return "", err
	}
	user := &models.User{
		Email:        req.Email,
		Username:     req.Username,
		PasswordHash: hashed,
		FullName:     req.FullName,
		IsActive:     true,
	}
	return s.users.RegisterUser(ctx, user)
}

// Login проверяет пароль пользователя, генерирует JWT доступа
// и сохраняет refresh-сессию вместе с метаданными входа.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest, ipAddress, userAgent string) (*models.TokenPair, error) {
	user, err := s.users.GetUserByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := password.CompareHash(user.PasswordHash, req.Password); err != nil {
		return nil, ErrInvalidCredentials
	}
	token, err := s.jwtMaker.GenerateToken(user.Username, user.ID.String())
	if err != nil {
		return nil, err
	}

	refresh := uuid.NewString()
	session := &models.UserSession{
		UserID:       user.ID,
		RefreshToken: refresh,
		ExpiresAt:    time.Now().UTC().Add(s.refreshTTL),
		LastActivity: time.Now().UTC(),
		IPAddress:    ipAddress,
		UserAgent:    userAgent,
	}
	if err := s.users.CreateUserSession(ctx, session); err != nil {
		return nil, err
	}

	return &models.TokenPair{
		AccessToken:  token,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    int(s.tokenTTL.Seconds()),
	}, nil
}

// Refresh обменивает действующий refresh-токен на новый токен доступа.
// Просроченная сессия отзывается сразу.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*models.TokenPair, error) {
	session, err := s.users.GetUserSessionByRefreshToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if session.IsExpired() {
		if _, err := s.users.RevokeUserSession(ctx, refreshToken); err != nil {
			return nil, err
		}
		return nil, ErrSessionExpired
	}

	user, err := s.users.GetUserByID(ctx, session.UserID.String())
	if err != nil {
		return nil, err
	}
	token, err := s.jwtMaker.GenerateToken(user.Username, user.ID.String())
	if err != nil {
		return nil, err
	}
	if err := s.users.TouchUserSession(ctx, session.ID); err != nil {
		return nil, err
	}

	return &models.TokenPair{
		AccessToken:  token,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int(s.tokenTTL.Seconds()),
	}, nil
}

// Logout отзывает refresh-сессию пользователя.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) (int, error) {
	return s.users.RevokeUserSession(ctx, refreshToken)
}

// Me возвращает профиль текущего пользователя.
func (s *AuthService) Me(ctx context.Context, userUID string) (*models.User, error) {
	return s.users.GetUserByID(ctx, userUID)
}

// GetPreferences возвращает настройки пользователя.
func (s *AuthService) GetPreferences(ctx context.Context, userUID string) (*models.UserPreferences, error) {
	return s.users.GetPreferences(ctx, userUID)
}

// UpdatePreferences применяет переданные поля настроек;
// незаполненные поля запроса не изменяются.
func (s *AuthService) UpdatePreferences(ctx context.Context, userUID string, req models.PreferencesUpdate) (*models.UserPreferences, error) {
	fields := map[string]any{}
	if req.Theme != "" {
		fields["theme"] = req.Theme
	}
	if req.Language != "" {
		fields["language"] = req.Language
	}
	if req.Timezone != "" {
		fields["timezone"] = req.Timezone
	}
	if req.SessionMinutes != 0 {
		fields["session_minutes"] = req.SessionMinutes
	}
	if req.BreakMinutes != 0 {
		fields["break_minutes"] = req.BreakMinutes
	}
	if req.LongBreakMinutes != 0 {
		fields["long_break_minutes"] = req.LongBreakMinutes
	}
	if req.AutoStartBreaks != nil {
		fields["auto_start_breaks"] = *req.AutoStartBreaks
	}
	if req.SoundEnabled != nil {
		fields["sound_enabled"] = *req.SoundEnabled
	}
	if req.EmailNotifications != nil {
		fields["email_notifications"] = *req.EmailNotifications
	}
	if req.StudyReminders != nil {
		fields["study_reminders"] = *req.StudyReminders
	}
	if req.GoalReminders != nil {
		fields["goal_reminders"] = *req.GoalReminders
	}
	if req.ReadingSpeedWPM != 0 {
		fields["reading_speed_wpm"] = req.ReadingSpeedWPM
	}
	return s.users.UpdatePreferences(ctx, userUID, fields)
}
