package active

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/studysprint/internal/http/middlewarectx"
	"github.com/magabrotheeeer/studysprint/internal/http/response"
	"github.com/magabrotheeeer/studysprint/internal/lib/sl"
	"github.com/magabrotheeeer/studysprint/internal/models"
	"github.com/magabrotheeeer/studysprint/internal/storage"
)

// Handler возвращает текущую активную сессию пользователя.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс получения активной сессии.
type Service interface {
	Active(ctx context.Context, userUID string) (*models.StudySession, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.study.active"

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

	session, err := h.service.Active(r.Context(), userUID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			log.Error("no active session", sl.Err(err))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("no active session"))
			return
		}
		log.Error("failed to read active session", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not read active session"))
		return
	}

	log.Info("success to read active session", slog.String("id", session.ID.String()))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"session": session,
	}))
}
