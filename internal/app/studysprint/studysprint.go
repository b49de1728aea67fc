package studysprint

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"

	"github.com/magabrotheeeer/studysprint/internal/cache"
	"github.com/magabrotheeeer/studysprint/internal/config"
	"github.com/magabrotheeeer/studysprint/internal/filestore"
	"github.com/magabrotheeeer/studysprint/internal/lib/jwt"
	"github.com/magabrotheeeer/studysprint/internal/migrations"
	"github.com/magabrotheeeer/studysprint/internal/services"
	"github.com/magabrotheeeer/studysprint/internal/storage"
)

type App struct {
	server *http.Server
	logger *slog.Logger
	db     *storage.Storage
	cache  cache.Cache
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := storage.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.Db, cfg.MigrationsPath); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	files, err := filestore.New(ctx, cfg.FileStorage)
	if err != nil {
		return nil, err
	}

	jwtMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)

	authService := services.NewAuthService(db, jwtMaker, cfg.TokenTTL, cfg.RefreshTTL)
	topicService := services.NewTopicService(db, cacheRedis, logger)
	pdfService := services.NewPDFService(db, files, topicService, logger)
	noteService := services.NewNoteService(db, logger)
	studyService := services.NewStudyService(db, cacheRedis, topicService, logger)
	goalService := services.NewGoalService(db, logger)

	router := chi.NewRouter()

	RegisterRoutes(router, logger, jwtMaker, db, &Services{
		Auth:  authService,
		Topic: topicService,
		PDF:   pdfService,
		Note:  noteService,
		Study: studyService,
		Goal:  goalService,
	})

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
		cache:  *cacheRedis,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		a.db.Db.Close()
		return err
	}
}
