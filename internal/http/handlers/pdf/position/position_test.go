package position

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
	"github.com/magabrotheeeer/studysprint/internal/services"
	"github.com/magabrotheeeer/studysprint/internal/storage"
)

// MockService реализует интерфейс position.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) UpdatePosition(ctx context.Context, id, userUID string, req models.PositionUpdate) (*models.PDF, error) {
	args := m.Called(ctx, id, userUID, req)
	if res := args.Get(0); res != nil {
		return res.(*models.PDF), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestPositionHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	pdfID := uuid.NewString()
	userUID := uuid.NewString()

	tests := []struct {
		name           string
		body           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "успешное обновление позиции",
			body: `{"current_page":42}`,
			setupMock: func(m *MockService) {
				pdf := &models.PDF{
					Title:       "Algorithms",
					CurrentPage: 42,
					TotalPages:  500,
				}
				m.On("UpdatePosition", mock.Anything, pdfID, userUID, models.PositionUpdate{CurrentPage: 42}).
					Return(pdf, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"current_page":42`,
		},
		{
			name:           "нулевая страница отклоняется валидацией",
			body:           `{"current_page":0}`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `field CurrentPage is a required field`,
		},
		{
			name: "страница за пределами документа",
			body: `{"current_page":9000}`,
			setupMock: func(m *MockService) {
				m.On("UpdatePosition", mock.Anything, pdfID, userUID, models.PositionUpdate{CurrentPage: 9000}).
					Return(nil, services.ErrPageOutOfRange)
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"page out of range"}`,
		},
		{
			name: "документ не найден",
			body: `{"current_page":42}`,
			setupMock: func(m *MockService) {
				m.On("UpdatePosition", mock.Anything, pdfID, userUID, models.PositionUpdate{CurrentPage: 42}).
					Return(nil, storage.ErrNotFound)
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `{"status":"Error","error":"pdf not found"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodPut, "/pdfs/"+pdfID+"/position", strings.NewReader(tt.body))
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", pdfID)
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
