// Package update реализует HTTP-обработчик обновления заметки.
package update

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
	"github.com/magabrotheeeer/studysprint/internal/services"
	"github.com/magabrotheeeer/studysprint/internal/storage"
)

// Handler обрабатывает запросы обновления заметки.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс обновления заметки.
type Service interface {
	Update(ctx context.Context, id, userUID string, req models.NoteUpdate) (*models.Note, error)
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
// @Summary Обновить заметку
// @Description Частично обновляет заметку, пустые поля не изменяются.
// @Tags Notes
// @Security BearerAuth
// @Accept  json
// @Produce  json
// @Param id path string true "ID заметки"
// @Param request body models.NoteUpdate true "Изменяемые поля"
// @Success 200 {object} map[string]any "Обновлённая заметка"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON или нет полей для обновления"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 404 {object} response.ErrorResponse "Заметка не найдена"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /notes/{id} [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.note.update"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id := chi.URLParam(r, "id")

	var req models.NoteUpdate
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

	note, err := h.service.Update(r.Context(), id, userUID, req)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			log.Error("note not found", sl.Err(err))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("note not found"))
		case errors.Is(err, services.ErrNothingToUpdate):
			log.Error("nothing to update", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("nothing to update"))
		default:
			log.Error("failed to update note", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not update note"))
		}
		return
	}

	log.Info("success to update note", slog.String("id", id))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"note": note,
	}))
}
