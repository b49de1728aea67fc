// Package summary реализует HTTP-обработчик сводной статистики занятий.
package summary

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

// Handler обрабатывает запросы сводки занятий.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс получения сводки занятий.
type Service interface {
	Summary(ctx context.Context, userUID string, days int) (*models.StudySummary, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Сводка занятий
// @Description Возвращает агрегированную статистику занятий за последние N дней, включая серию подряд идущих учебных дней.
// @Tags Study
// @Security BearerAuth
// @Produce  json
// @Param days query int false "Период в днях, по умолчанию 7"
// @Success 200 {object} map[string]any "Сводка занятий"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /study/summary [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.study.summary"

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

	days := 0
	if v := r.URL.Query().Get("days"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			days = parsed
		}
	}

	summary, err := h.service.Summary(r.Context(), userUID, days)
	if err != nil {
		log.Error("failed to build summary", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not build summary"))
		return
	}

	log.Info("success to build summary", slog.Int("days", summary.Days))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"summary": summary,
	}))
}
