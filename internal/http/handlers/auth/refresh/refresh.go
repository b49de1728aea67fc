// Package refresh реализует HTTP-обработчик обмена refresh-токена
// на новый токен доступа.
package refresh

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/studysprint/internal/http/response"
	"github.com/magabrotheeeer/studysprint/internal/lib/sl"
	"github.com/magabrotheeeer/studysprint/internal/models"
	"github.com/magabrotheeeer/studysprint/internal/services"
)

// Handler обрабатывает запросы обновления токена доступа.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс обновления токена.
type Service interface {
	Refresh(ctx context.Context, refreshToken string) (*models.TokenPair, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Обновить токен доступа
// @Description Обменивает действующий refresh-токен на новый JWT доступа.
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body models.RefreshRequest true "Refresh-токен"
// @Success 200 {object} map[string]any "Новая пара токенов"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Токен не найден или сессия истекла"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /refresh [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.refresh"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	tokens, err := h.service.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidCredentials):
			log.Error("refresh token not found", sl.Err(err))
			w.WriteHeader(http.StatusUnauthorized)
			render.JSON(w, r, response.Error("invalid refresh token"))
		case errors.Is(err, services.ErrSessionExpired):
			log.Error("session expired", sl.Err(err))
			w.WriteHeader(http.StatusUnauthorized)
			render.JSON(w, r, response.Error("session expired"))
		default:
			log.Error("refresh failed", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("internal server error"))
		}
		return
	}

	log.Info("success to refresh token")
	render.JSON(w, r, response.StatusOKWithData(tokens))
}
