// Package position реализует HTTP-обработчик обновления позиции чтения PDF.
package position

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

// Handler обрабатывает запросы обновления позиции чтения.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики позиции чтения.
type Service interface {
	UpdatePosition(ctx context.Context, id, userUID string, req models.PositionUpdate) (*models.PDF, error)
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
// @Summary Обновить позицию чтения
// @Description Сохраняет текущую страницу документа и отметку последнего просмотра.
// @Tags PDFs
// @Security BearerAuth
// @Accept  json
// @Produce  json
// @Param id path string true "ID документа"
// @Param request body models.PositionUpdate true "Новая позиция"
// @Success 200 {object} map[string]any "Обновлённый документ"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON или страница вне диапазона"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 404 {object} response.ErrorResponse "Документ не найден"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /pdfs/{id}/position [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.pdf.position"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id := chi.URLParam(r, "id")

	var req models.PositionUpdate
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

	pdf, err := h.service.UpdatePosition(r.Context(), id, userUID, req)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			log.Error("pdf not found", sl.Err(err))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("pdf not found"))
		case errors.Is(err, services.ErrPageOutOfRange):
			log.Error("page out of range", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("page out of range"))
		default:
			log.Error("failed to update position", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not update position"))
		}
		return
	}

	log.Info("success to update position", slog.String("id", id), slog.Int("page", req.CurrentPage))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"pdf": pdf,
	}))
}
