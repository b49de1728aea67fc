package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/studysprint/internal/lib/jwt"
	"github.com/magabrotheeeer/studysprint/internal/lib/password"
	"github.com/magabrotheeeer/studysprint/internal/models"
	"github.com/magabrotheeeer/studysprint/internal/storage"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) RegisterUser(ctx context.Context, user *models.User) (string, error) {
	args := m.Called(ctx, user)
	return args.String(0), args.Error(1)
}

func (m *MockUserRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetUserByID(ctx context.Context, userUID string) (*models.User, error) {
	args := m.Called(ctx, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) UsernameOrEmailExists(ctx context.Context, username, email string) (bool, error) {
	args := m.Called(ctx, username, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) CreateUserSession(ctx context.Context, session *models.UserSession) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockUserRepository) GetUserSessionByRefreshToken(ctx context.Context, token string) (*models.UserSession, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserSession), args.Error(1)
}

func (m *MockUserRepository) TouchUserSession(ctx context.Context, sessionID uuid.UUID) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}

func (m *MockUserRepository) RevokeUserSession(ctx context.Context, token string) (int, error) {
	args := m.Called(ctx, token)
	return args.Int(0), args.Error(1)
}

func (m *MockUserRepository) GetPreferences(ctx context.Context, userUID string) (*models.UserPreferences, error) {
	args := m.Called(ctx, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserPreferences), args.Error(1)
}

func (m *MockUserRepository) UpdatePreferences(ctx context.Context, userUID string, fields map[string]any) (*models.UserPreferences, error) {
	args := m.Called(ctx, userUID, fields)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserPreferences), args.Error(1)
}

func newTestAuthService(users UserRepository) *AuthService {
	maker := jwt.NewJWTMaker("test_secret_key", 15*time.Minute)
	return NewAuthService(users, maker, 15*time.Minute, 720*time.Hour)
}

func TestAuthService_Register(t *testing.T) {
	req := models.RegisterRequest{
		Email:    "student@example.com",
		Username: "student",
		Password: "secret123",
	}

	t.Run("успешная регистрация", func(t *testing.T) {
		users := new(MockUserRepository)
		users.On("UsernameOrEmailExists", mock.Anything, "student", "student@example.com").Return(false, nil)
		users.On("RegisterUser", mock.Anything, mock.MatchedBy(func(u *models.User) bool {
			// Пароль сохраняется только в виде хэша
			return u.Username == "student" && u.PasswordHash != "" && u.PasswordHash != "secret123"
		})).Return(uuid.NewString(), nil)

		svc := newTestAuthService(users)
		id, err := svc.Register(context.Background(), req)

		require.NoError(t, err)
		assert.NotEmpty(t, id)
		users.AssertExpectations(t)
	})

	t.Run("имя или почта заняты", func(t *testing.T) {
		users := new(MockUserRepository)
		users.On("UsernameOrEmailExists", mock.Anything, "student", "student@example.com").Return(true, nil)

		svc := newTestAuthService(users)
		_, err := svc.Register(context.Background(), req)

		assert.ErrorIs(t, err, ErrAlreadyExists)
	})
}

func TestAuthService_Login(t *testing.T) {
	hashed, err := password.GetHash("secret123")
	require.NoError(t, err)

	user := &models.User{
		ID:           uuid.New(),
		Username:     "student",
		PasswordHash: hashed,
	}

	t.Run("успешный вход выдает пару токенов", func(t *testing.T) {
		users := new(MockUserRepository)
		users.On("GetUserByUsername", mock.Anything, "student").Return(user, nil)
		users.On("CreateUserSession", mock.Anything, mock.MatchedBy(func(s *models.UserSession) bool {
			return s.UserID == user.ID && s.RefreshToken != "" && s.IPAddress == "127.0.0.1"
		})).Return(nil)

		svc := newTestAuthService(users)
		tokens, err := svc.Login(context.Background(),
			models.LoginRequest{Username: "student", Password: "secret123"},
			"127.0.0.1", "test-agent")

		require.NoError(t, err)
		assert.NotEmpty(t, tokens.AccessToken)
		assert.NotEmpty(t, tokens.RefreshToken)
		assert.Equal(t, "Bearer", tokens.TokenType)
		assert.Equal(t, int((15 * time.Minute).Seconds()), tokens.ExpiresIn)
		users.AssertExpectations(t)
	})

	t.Run("неверный пароль", func(t *testing.T) {
		users := new(MockUserRepository)
		users.On("GetUserByUsername", mock.Anything, "student").Return(user, nil)

		svc := newTestAuthService(users)
		_, err := svc.Login(context.Background(),
			models.LoginRequest{Username: "student", Password: "wrongpass"},
			"127.0.0.1", "test-agent")

		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("несуществующий пользователь", func(t *testing.T) {
		users := new(MockUserRepository)
		users.On("GetUserByUsername", mock.Anything, "ghost").Return(nil, storage.ErrNotFound)

		svc := newTestAuthService(users)
		_, err := svc.Login(context.Background(),
			models.LoginRequest{Username: "ghost", Password: "secret123"},
			"127.0.0.1", "test-agent")

		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestAuthService_Refresh(t *testing.T) {
	user := &models.User{
		ID:       uuid.New(),
		Username: "student",
	}

	t.Run("живой refresh-токен обменивается на новый токен доступа", func(t *testing.T) {
		users := new(MockUserRepository)
		refreshToken := uuid.NewString()
		session := &models.UserSession{
			ID:           uuid.New(),
			UserID:       user.ID,
			RefreshToken: refreshToken,
			ExpiresAt:    time.Now().UTC().Add(time.Hour),
		}

		users.On("GetUserSessionByRefreshToken", mock.Anything, refreshToken).Return(session, nil)
		users.On("GetUserByID", mock.Anything, user.ID.String()).Return(user, nil)
		users.On("TouchUserSession", mock.Anything, session.ID).Return(nil)

		svc := newTestAuthService(users)
		tokens, err := svc.Refresh(context.Background(), refreshToken)

		require.NoError(t, err)
		assert.NotEmpty(t, tokens.AccessToken)
		assert.Equal(t, refreshToken, tokens.RefreshToken)
		assert.Equal(t, "Bearer", tokens.TokenType)
		users.AssertExpectations(t)
	})

	t.Run("просроченная сессия отзывается", func(t *testing.T) {
		users := new(MockUserRepository)
		refreshToken := uuid.NewString()
		session := &models.UserSession{
			ID:           uuid.New(),
			UserID:       user.ID,
			RefreshToken: refreshToken,
			ExpiresAt:    time.Now().UTC().Add(-time.Hour),
		}

		users.On("GetUserSessionByRefreshToken", mock.Anything, refreshToken).Return(session, nil)
		users.On("RevokeUserSession", mock.Anything, refreshToken).Return(1, nil)

		svc := newTestAuthService(users)
		_, err := svc.Refresh(context.Background(), refreshToken)

		assert.ErrorIs(t, err, ErrSessionExpired)
		users.AssertExpectations(t)
		users.AssertNotCalled(t, "TouchUserSession")
	})

	t.Run("неизвестный refresh-токен", func(t *testing.T) {
		users := new(MockUserRepository)
		users.On("GetUserSessionByRefreshToken", mock.Anything, "unknown").Return(nil, storage.ErrNotFound)

		svc := newTestAuthService(users)
		_, err := svc.Refresh(context.Background(), "unknown")

		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestAuthService_UpdatePreferences(t *testing.T) {
	userUID := uuid.NewString()
	soundOff := false

	users := new(MockUserRepository)
	users.On("UpdatePreferences", mock.Anything, userUID, map[string]any{
		"theme":         "dark",
		"sound_enabled": false,
	}).Return(&models.UserPreferences{Theme: "dark"}, nil)

	svc := newTestAuthService(users)
	prefs, err := svc.UpdatePreferences(context.Background(), userUID, models.PreferencesUpdate{
		Theme:        "dark",
		SoundEnabled: &soundOff,
	})

	require.NoError(t, err)
	assert.Equal(t, "dark", prefs.Theme)
	users.AssertExpectations(t)
}
