package login

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/studysprint/internal/models"
	"github.com/magabrotheeeer/studysprint/internal/services"
)

// MockService реализует интерфейс login.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Login(ctx context.Context, req models.LoginRequest, ipAddress, userAgent string) (*models.TokenPair, error) {
	args := m.Called(ctx, req, ipAddress, userAgent)
	if res := args.Get(0); res != nil {
		return res.(*models.TokenPair), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestLoginHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	tests := []struct {
		name           string
		body           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "успешный вход",
			body: `{"username":"testuser","password":"secret123"}`,
			setupMock: func(m *MockService) {
				tokens := &models.TokenPair{
					AccessToken:  "access-token",
					RefreshToken: "refresh-token",
					TokenType:    "Bearer",
					ExpiresIn:    3600,
				}
				m.On("Login", mock.Anything,
					models.LoginRequest{Username: "testuser", Password: "secret123"},
					mock.Anything, mock.Anything).Return(tokens, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"token_type":"Bearer"`,
		},
		{
			name:           "отсутствует пароль",
			body:           `{"username":"testuser"}`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `field Password is a required field`,
		},
		{
			name: "неверные учетные данные",
			body: `{"username":"testuser","password":"wrongpass"}`,
			setupMock: func(m *MockService) {
				m.On("Login", mock.Anything,
					models.LoginRequest{Username: "testuser", Password: "wrongpass"},
					mock.Anything, mock.Anything).Return(nil, services.ErrInvalidCredentials)
			},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `{"status":"Error","error":"invalid credentials"}`,
		},
		{
			name: "внутренняя ошибка сервиса",
			body: `{"username":"testuser","password":"secret123"}`,
			setupMock: func(m *MockService) {
				m.On("Login", mock.Anything,
					models.LoginRequest{Username: "testuser", Password: "secret123"},
					mock.Anything, mock.Anything).Return(nil, errors.New("db error"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"status":"Error","error":"internal server error"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.True(t, strings.Contains(w.Body.String(), tt.expectedBody),
				"response body should contain %s, got %s", tt.expectedBody, w.Body.String())

			mockService.AssertExpectations(t)
		})
	}
}
