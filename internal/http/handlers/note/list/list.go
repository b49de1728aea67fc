// Package list реализует HTTP-обработчик списка заметок пользователя.
package list

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/studysprint/internal/http/middlewarectx"
	"github.com/magabrotheeeer/studysprint/internal/http/response"
	"github.com/magabrotheeeer/studysprint/internal/lib/sl"
	"github.com/magabrotheeeer/studysprint/internal/models"
)

// Handler обрабатывает запросы списка заметок.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс получения списка заметок.
type Service interface {
	List(ctx context.Context, userUID string, filter models.NoteFilter) ([]*models.Note, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Список заметок
// @Description Возвращает заметки пользователя с фильтрами по документу и теме.
// @Tags Notes
// @Security BearerAuth
// @Produce  json
// @Param pdf_id query string false "Фильтр по документу"
// @Param topic_id query string false "Фильтр по теме"
// @Param limit query int false "Лимит записей"
// @Param offset query int false "Смещение"
// @Success 200 {object} map[string]any "Список заметок"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /notes [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.note.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || userUID == "" {
		log.Error("user identification missing")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	filter := models.NoteFilter{
		PDFID:   r.URL.Query().Get("pdf_id"),
		TopicID: r.URL.Query().Get("topic_id"),
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		if limit, err := strconv.Atoi(v); err == nil && limit > 0 {
			filter.Limit = limit
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if offset, err := strconv.Atoi(v); err == nil && offset > 0 {
			filter.Offset = offset
		}
	}

	notes, err := h.service.List(r.Context(), userUID, filter)
	if err != nil {
		log.Error("failed to list notes", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list notes"))
		return
	}

	log.Info("success to list notes", slog.Int("count", len(notes)))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"notes": notes,
		"count": len(notes),
	}))
}
