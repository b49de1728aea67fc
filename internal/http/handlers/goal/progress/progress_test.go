package progress

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/go-chi/chi"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/studysprint/internal/http/middlewarectx"
	"github.com/magabrotheeeer/studysprint/internal/models"
	"github.com/magabrotheeeer/studysprint/internal/storage"
)

// MockService реализует интерфейс progress.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) UpdateProgress(ctx context.Context, id, userUID string, req models.GoalProgress) (*models.Goal, error) {
	args := m.Called(ctx, id, userUID, req)
	if res := args.Get(0); res != nil {
		return res.(*models.Goal), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestProgressHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	goalID := uuid.NewString()
	userUID := uuid.NewString()

	tests := []struct {
		name           string
		body           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "прогресс обновлён, цель достигнута",
			body: `{"current_value":120}`,
			setupMock: func(m *MockService) {
				goal := &models.Goal{
					Title:        "Читать 2 часа в день",
					TargetValue:  120,
					CurrentValue: 120,
					IsCompleted:  true,
				}
				m.On("UpdateProgress", mock.Anything, goalID, userUID, models.GoalProgress{CurrentValue: 120}).
					Return(goal, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"is_completed":true`,
		},
		{
			name:           "некорректный JSON",
			body:           `{"current_value":`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"invalid request body"}`,
		},
		{
			name: "цель не найдена",
			body: `{"current_value":30}`,
			setupMock: func(m *MockService) {
				m.On("UpdateProgress", mock.Anything, goalID, userUID, models.GoalProgress{CurrentValue: 30}).
					Return(nil, storage.ErrNotFound)
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `{"status":"Error","error":"goal not found"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodPut, "/goals/"+goalID+"/progress", strings.NewReader(tt.body))
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", goalID)
			ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
			ctx = context.WithValue(ctx, middlewarectx.UserUID, userUID)
			req = req.WithContext(ctx)

			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.True(t, strings.Contains(w.Body.String(), tt.expectedBody),
				"response body should contain %s, got %s", tt.expectedBody, w.Body.String())

			mockService.AssertExpectations(t)
		})
	}
}
