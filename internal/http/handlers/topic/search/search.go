// Package search реализует HTTP-обработчик поиска тем по имени и описанию.
package search

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/studysprint/internal/http/middlewarectx"
	"github.com/magabrotheeeer/studysprint/internal/http/response"
	"github.com/magabrotheeeer/studysprint/internal/lib/sl"
	"github.com/magabrotheeeer/studysprint/internal/models"
)

// Handler обрабатывает поисковые запросы по темам.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики поиска тем.
type Service interface {
	Search(ctx context.Context, userUID string, req models.TopicSearch) ([]*models.Topic, error)
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
// @Summary Поиск тем
// @Description Ищет темы текущего пользователя по имени и описанию без учёта регистра.
// @Tags Topics
// @Security BearerAuth
// @Produce  json
// @Param q query string true "Поисковый запрос"
// @Param limit query int false "Максимум результатов"
// @Success 200 {object} map[string]any "Найденные темы"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /topics/search [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.topic.search"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	req := models.TopicSearch{Query: r.URL.Query().Get("q")}
	if limit, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil {
		req.Limit = limit
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

	topics, err := h.service.Search(r.Context(), userUID, req)
	if err != nil {
		log.Error("failed to search topics", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to search topics"))
		return
	}

	log.Info("search topics", "count", len(topics))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"list_count": len(topics),
		"topics":     topics,
	}))
}
