// Package progress реализует HTTP-обработчик обновления прогресса цели.
package progress

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/studysprint/internal/http/middlewarectx"
	"github.com/magabrotheeeer/studysprint/internal/http/response"
	"github.com/magabrotheeeer/studysprint/internal/lib/sl"
	"github.com/magabrotheeeer/studysprint/internal/models"
	"github.com/magabrotheeeer/studysprint/internal/storage"
)

// Handler обрабатывает запросы обновления прогресса цели.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс обновления прогресса.
type Service interface {
	UpdateProgress(ctx context.Context, id, userUID string, req models.GoalProgress) (*models.Goal, error)
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
// @Summary Обновить прогресс цели
// @Description Задаёт текущее значение цели; при достижении целевого значения цель помечается выполненной.
// @Tags Goals
// @Security BearerAuth
// @Accept  json
// @Produce  json
// @Param id path string true "ID цели"
// @Param request body models.GoalProgress true "Текущее значение"
// @Success 200 {object} map[string]any "Обновлённая цель"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 404 {object} response.ErrorResponse "Цель не найдена"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /goals/{id}/progress [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.goal.progress"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id := chi.URLParam(r, "id")

	var req models.GoalProgress
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
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

	userUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || userUID == "" {
		log.Error("user identification missing")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	goal, err := h.service.UpdateProgress(r.Context(), id, userUID, req)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			log.Error("goal not found", sl.Err(err))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("goal not found"))
			return
		}
		log.Error("failed to update goal progress", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not update goal progress"))
		return
	}

	log.Info("success to update goal progress",
		slog.String("id", id),
		slog.Bool("completed", goal.IsCompleted))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"goal": goal,
	}))
}
