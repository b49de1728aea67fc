// Package studysprint предоставляет маршруты для основного приложения.
package studysprint

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/studysprint/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/studysprint/internal/http/handlers/auth/logout"
	"github.com/magabrotheeeer/studysprint/internal/http/handlers/auth/me"
	"github.com/magabrotheeeer/studysprint/internal/http/handlers/auth/refresh"
	"github.com/magabrotheeeer/studysprint/internal/http/handlers/auth/register"
	goalcreate "github.com/magabrotheeeer/studysprint/internal/http/handlers/goal/create"
	goallist "github.com/magabrotheeeer/studysprint/internal/http/handlers/goal/list"
	"github.com/magabrotheeeer/studysprint/internal/http/handlers/goal/progress"
	goalremove "github.com/magabrotheeeer/studysprint/internal/http/handlers/goal/remove"
	"github.com/magabrotheeeer/studysprint/internal/http/handlers/health"
	notecreate "github.com/magabrotheeeer/studysprint/internal/http/handlers/note/create"
	notelist "github.com/magabrotheeeer/studysprint/internal/http/handlers/note/list"
	noteread "github.com/magabrotheeeer/studysprint/internal/http/handlers/note/read"
	noteremove "github.com/magabrotheeeer/studysprint/internal/http/handlers/note/remove"
	noteupdate "github.com/magabrotheeeer/studysprint/internal/http/handlers/note/update"
	"github.com/magabrotheeeer/studysprint/internal/http/handlers/pdf/confirm"
	pdfcreate "github.com/magabrotheeeer/studysprint/internal/http/handlers/pdf/create"
	"github.com/magabrotheeeer/studysprint/internal/http/handlers/pdf/download"
	pdflist "github.com/magabrotheeeer/studysprint/internal/http/handlers/pdf/list"
	"github.com/magabrotheeeer/studysprint/internal/http/handlers/pdf/position"
	pdfread "github.com/magabrotheeeer/studysprint/internal/http/handlers/pdf/read"
	pdfremove "github.com/magabrotheeeer/studysprint/internal/http/handlers/pdf/remove"
	pdfupdate "github.com/magabrotheeeer/studysprint/internal/http/handlers/pdf/update"
	prefsget "github.com/magabrotheeeer/studysprint/internal/http/handlers/preferences/get"
	prefsupdate "github.com/magabrotheeeer/studysprint/internal/http/handlers/preferences/update"
	"github.com/magabrotheeeer/studysprint/internal/http/handlers/study/active"
	"github.com/magabrotheeeer/studysprint/internal/http/handlers/study/end"
	studylist "github.com/magabrotheeeer/studysprint/internal/http/handlers/study/list"
	"github.com/magabrotheeeer/studysprint/internal/http/handlers/study/pause"
	studyread "github.com/magabrotheeeer/studysprint/internal/http/handlers/study/read"
	"github.com/magabrotheeeer/studysprint/internal/http/handlers/study/resume"
	"github.com/magabrotheeeer/studysprint/internal/http/handlers/study/start"
	"github.com/magabrotheeeer/studysprint/internal/http/handlers/study/summary"
	"github.com/magabrotheeeer/studysprint/internal/http/handlers/topic/batchremove"
	topiccreate "github.com/magabrotheeeer/studysprint/internal/http/handlers/topic/create"
	topiclist "github.com/magabrotheeeer/studysprint/internal/http/handlers/topic/list"
	topicread "github.com/magabrotheeeer/studysprint/internal/http/handlers/topic/read"
	topicremove "github.com/magabrotheeeer/studysprint/internal/http/handlers/topic/remove"
	"github.com/magabrotheeeer/studysprint/internal/http/handlers/topic/search"
	"github.com/magabrotheeeer/studysprint/internal/http/handlers/topic/stats"
	topicupdate "github.com/magabrotheeeer/studysprint/internal/http/handlers/topic/update"
	"github.com/magabrotheeeer/studysprint/internal/http/middlewarectx"
	"github.com/magabrotheeeer/studysprint/internal/lib/jwt"
	"github.com/magabrotheeeer/studysprint/internal/services"
	"github.com/magabrotheeeer/studysprint/internal/storage"
)

// Services собирает сервисы приложения для регистрации маршрутов.
type Services struct {
	Auth  *services.AuthService
	Topic *services.TopicService
	PDF   *services.PDFService
	Note  *services.NoteService
	Study *services.StudyService
	Goal  *services.GoalService
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, jwtMaker jwt.Maker, db *storage.Storage, svc *Services) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/register", register.New(logger, svc.Auth).ServeHTTP)
		r.Post("/login", login.New(logger, svc.Auth).ServeHTTP)
		r.Post("/refresh", refresh.New(logger, svc.Auth).ServeHTTP)
		r.Get("/health", health.New(logger, db).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(jwtMaker, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger))

			r.Post("/logout", logout.New(logger, svc.Auth).ServeHTTP)
			r.Get("/me", me.New(logger, svc.Auth).ServeHTTP)
			r.Get("/preferences", prefsget.New(logger, svc.Auth).ServeHTTP)
			r.Put("/preferences", prefsupdate.New(logger, svc.Auth).ServeHTTP)

			r.Post("/topics", topiccreate.New(logger, svc.Topic).ServeHTTP)
			r.Get("/topics", topiclist.New(logger, svc.Topic).ServeHTTP)
			r.Get("/topics/search", search.New(logger, svc.Topic).ServeHTTP)
			r.Post("/topics/batch-remove", batchremove.New(logger, svc.Topic).ServeHTTP)
			r.Get("/topics/{id}", topicread.New(logger, svc.Topic).ServeHTTP)
			r.Put("/topics/{id}", topicupdate.New(logger, svc.Topic).ServeHTTP)
			r.Delete("/topics/{id}", topicremove.New(logger, svc.Topic).ServeHTTP)
			r.Get("/topics/{id}/stats", stats.New(logger, svc.Topic).ServeHTTP)

			r.Post("/pdfs", pdfcreate.New(logger, svc.PDF).ServeHTTP)
			r.Get("/pdfs", pdflist.New(logger, svc.PDF).ServeHTTP)
			r.Get("/pdfs/{id}", pdfread.New(logger, svc.PDF).ServeHTTP)
			r.Put("/pdfs/{id}", pdfupdate.New(logger, svc.PDF).ServeHTTP)
			r.Delete("/pdfs/{id}", pdfremove.New(logger, svc.PDF).ServeHTTP)
			r.Post("/pdfs/{id}/confirm-upload", confirm.New(logger, svc.PDF).ServeHTTP)
			r.Get("/pdfs/{id}/download", download.New(logger, svc.PDF).ServeHTTP)
			r.Put("/pdfs/{id}/position", position.New(logger, svc.PDF).ServeHTTP)

			r.Post("/notes", notecreate.New(logger, svc.Note).ServeHTTP)
			r.Get("/notes", notelist.New(logger, svc.Note).ServeHTTP)
			r.Get("/notes/{id}", noteread.New(logger, svc.Note).ServeHTTP)
			r.Put("/notes/{id}", noteupdate.New(logger, svc.Note).ServeHTTP)
			r.Delete("/notes/{id}", noteremove.New(logger, svc.Note).ServeHTTP)

			r.Post("/study/sessions/start", start.New(logger, svc.Study).ServeHTTP)
			r.Post("/study/sessions/pause", pause.New(logger, svc.Study).ServeHTTP)
			r.Post("/study/sessions/resume", resume.New(logger, svc.Study).ServeHTTP)
			r.Post("/study/sessions/end", end.New(logger, svc.Study).ServeHTTP)
			r.Get("/study/sessions/active", active.New(logger, svc.Study).ServeHTTP)
			r.Get("/study/sessions", studylist.New(logger, svc.Study).ServeHTTP)
			r.Get("/study/sessions/{id}", studyread.New(logger, svc.Study).ServeHTTP)
			r.Get("/study/summary", summary.New(logger, svc.Study).ServeHTTP)

			r.Post("/goals", goalcreate.New(logger, svc.Goal).ServeHTTP)
			r.Get("/goals", goallist.New(logger, svc.Goal).ServeHTTP)
			r.Put("/goals/{id}/progress", progress.New(logger, svc.Goal).ServeHTTP)
			r.Delete("/goals/{id}", goalremove.New(logger, svc.Goal).ServeHTTP)
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
