// Package download реализует HTTP-обработчик выдачи presigned GET ссылки
// на содержимое PDF в объектном хранилище.
package download

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
	"github.com/magabrotheeeer/studysprint/internal/storage"
)

// Handler обрабатывает запросы ссылок на скачивание документа.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики скачивания документа.
type Service interface {
	DownloadURL(ctx context.Context, id, userUID string) (string, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Скачать PDF
// @Description Возвращает presigned GET ссылку на содержимое документа в объектном хранилище.
// @Tags PDFs
// @Security BearerAuth
// @Produce  json
// @Param id path string true "ID документа"
// @Success 200 {object} map[string]any "Ссылка для скачивания"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 404 {object} response.ErrorResponse "Документ не найден"
// @Failure 409 {object} response.ErrorResponse "Файл ещё не загружен"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /pdfs/{id}/download [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.pdf.download"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id := chi.URLParam(r, "id")

	userUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || userUID == "" {
		log.Error("user identification missing")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	url, err := h.service.DownloadURL(r.Context(), id, userUID)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			log.Error("pdf not found", sl.Err(err))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("pdf not found"))
		case errors.Is(err, services.ErrNotUploaded):
			log.Error("file is not uploaded yet", sl.Err(err))
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error("file is not uploaded yet"))
		default:
			log.Error("failed to presign download url", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not presign download url"))
		}
		return
	}

	log.Info("presigned download url", slog.String("id", id))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"download_url": url,
	}))
}
