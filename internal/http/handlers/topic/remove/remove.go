// Package remove реализует HTTP-обработчик удаления темы.
//
// Непустая тема удаляется только с параметром force=true,
// вместе с темой мягко удаляются все её PDF.
package remove

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/studysprint/internal/http/middlewarectx"
	"github.com/magabrotheeeer/studysprint/internal/http/response"
	"github.com/magabrotheeeer/studysprint/internal/lib/sl"
	"github.com/magabrotheeeer/studysprint/internal/services"
)

// Handler обрабатывает запросы удаления темы.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики удаления темы.
type Service interface {
	Remove(ctx context.Context, id, userUID string, force bool) (int, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.topic.remove"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id := chi.URLParam(r, "id")
	force := r.URL.Query().Get("force") == "true"

	userUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || userUID == "" {
		log.Error("user identification missing")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	count, err := h.service.Remove(r.Context(), id, userUID, force)
	if err != nil {
		if errors.Is(err, services.ErrTopicHasPDFs) {
			log.Error("topic contains pdfs", sl.Err(err))
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error("topic contains pdfs, use force=true"))
			return
		}
		log.Error("failed to delete topic", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to delete topic"))
		return
	}
	if count == 0 {
		log.Error("topic not found")
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("topic not found"))
		return
	}

	log.Info("success to delete topic", slog.String("id", id))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"deleted_count": count,
	}))
}
