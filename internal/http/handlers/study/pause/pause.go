// Package pause реализует HTTP-обработчик приостановки учебной сессии.
package pause

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

// Handler обрабатывает запросы приостановки учебной сессии.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс приостановки сессии.
type Service interface {
	Pause(ctx context.Context, userUID string) (*models.StudySession, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Приостановить учебную сессию
// @Description Ставит активную сессию на паузу; время паузы не входит в длительность занятий.
// @Tags Study
// @Security BearerAuth
// @Produce  json
// @Success 200 {object} map[string]any "Приостановленная сессия"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 409 {object} response.ErrorResponse "Нет активной сессии или она уже на паузе"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /study/sessions/pause [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.study.pause"

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

	session, err := h.service.Pause(r.Context(), userUID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNoActiveSession):
			log.Error("no active session", sl.Err(err))
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error("no active session"))
		case errors.Is(err, services.ErrSessionAlreadyPaused):
			log.Error("session is already paused", sl.Err(err))
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error("session is already paused"))
		default:
			log.Error("failed to pause session", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not pause session"))
		}
		return
	}

	log.Info("success to pause session", slog.String("id", session.ID.String()))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"session": session,
	}))
}
