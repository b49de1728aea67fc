// Package resume реализует HTTP-обработчик возобновления учебной сессии.
package resume

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
	"github.com/magabrotheeeer/studysprint/internal/services"
)

// Handler обрабатывает запросы возобновления учебной сессии.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс возобновления сессии.
type Service interface {
	Resume(ctx context.Context, userUID string) (*models.StudySession, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.study.resume"

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

	session, err := h.service.Resume(r.Context(), userUID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNoActiveSession):
			log.Error("no active session", sl.Err(err))
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error("no active session"))
		case errors.Is(err, services.ErrSessionNotPaused):
			log.Error("session is not paused", sl.Err(err))
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error("session is not paused"))
		default:
			log.Error("failed to resume session", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not resume session"))
		}
		return
	}

	log.Info("success to resume session", slog.String("id", session.ID.String()))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"session": session,
	}))
}
