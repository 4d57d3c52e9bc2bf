// Package gateway собирает приложение шлюза: подключение к базе данных,
// кэшу и брокеру событий, создание сервисов и запуск HTTP-сервера
// с graceful shutdown.
package gateway

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"

	"github.com/magabrotheeeer/video-access-gateway/internal/cache"
	"github.com/magabrotheeeer/video-access-gateway/internal/config"
	"github.com/magabrotheeeer/video-access-gateway/internal/drm"
	"github.com/magabrotheeeer/video-access-gateway/internal/events"
	"github.com/magabrotheeeer/video-access-gateway/internal/lib/jwt"
	"github.com/magabrotheeeer/video-access-gateway/internal/lib/sl"
	"github.com/magabrotheeeer/video-access-gateway/internal/migrations"
	authservice "github.com/magabrotheeeer/video-access-gateway/internal/services/auth"
	contentservice "github.com/magabrotheeeer/video-access-gateway/internal/services/content"
	"github.com/magabrotheeeer/video-access-gateway/internal/storage"
)

// App инкапсулирует HTTP-сервер шлюза и его ресурсы.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *storage.Storage
	amqp   io.Closer
}

// New собирает приложение по конфигу: база, миграции, кэш, брокер
// событий, сервисы и маршруты.
//
// Redis и RabbitMQ необязательны: при пустом адресе соответствующая
// возможность отключается, шлюз продолжает работать без неё.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := storage.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, "./migrations"); err != nil {
		return nil, err
	}

	var videoCache contentservice.VideoCache
	if cfg.AddressRedis != "" {
		cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
		if err != nil {
			return nil, err
		}
		videoCache = cacheRedis
	}

	var publisher authservice.EventPublisher
	var amqpConn io.Closer
	if cfg.AMQPAddress != "" {
		conn, err := events.Connect(cfg.AMQPAddress, 5, 2*time.Second)
		if err != nil {
			return nil, err
		}
		ch, err := events.SetupChannel(conn, events.GetAccountQueues())
		if err != nil {
			return nil, err
		}
		publisher = events.NewPublisher(ch)
		amqpConn = conn
	}

	jwtMaker := jwt.NewMaker(cfg.JWTSecretKey, cfg.TokenTTL)
	auth := authservice.New(db, jwtMaker, publisher, logger)
	content := contentservice.New(db, videoCache, logger, cfg.PublicBaseURL, cfg.CacheTTL)
	drmClient := drm.NewClient(cfg.DRMUpstream)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, jwtMaker, auth, content, drmClient)

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
		amqp:   amqpConn,
	}, nil
}

// Run запускает HTTP-сервер и блокируется до отмены ctx или ошибки.
// При остановке соединения закрываются после graceful shutdown сервера.
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
		if closeErr := a.db.DB.Close(); closeErr != nil {
			a.logger.Error("failed to close database", sl.Err(closeErr))
		}
		if a.amqp != nil {
			if closeErr := a.amqp.Close(); closeErr != nil {
				a.logger.Error("failed to close amqp connection", sl.Err(closeErr))
			}
		}
		return err
	}
}
