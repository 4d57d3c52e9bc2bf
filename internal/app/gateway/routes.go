// Package gateway предоставляет маршруты шлюза доступа к видео.
package gateway

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/video-access-gateway/internal/drm"
	"github.com/magabrotheeeer/video-access-gateway/internal/http-server/handlers/auth/login"
	"github.com/magabrotheeeer/video-access-gateway/internal/http-server/handlers/auth/me"
	"github.com/magabrotheeeer/video-access-gateway/internal/http-server/handlers/auth/refresh"
	"github.com/magabrotheeeer/video-access-gateway/internal/http-server/handlers/auth/register"
	"github.com/magabrotheeeer/video-access-gateway/internal/http-server/handlers/content/videolist"
	"github.com/magabrotheeeer/video-access-gateway/internal/http-server/handlers/content/videoread"
	"github.com/magabrotheeeer/video-access-gateway/internal/http-server/handlers/license/acquire"
	"github.com/magabrotheeeer/video-access-gateway/internal/http-server/handlers/license/certificate"
	"github.com/magabrotheeeer/video-access-gateway/internal/http-server/middlewarectx"
	"github.com/magabrotheeeer/video-access-gateway/internal/lib/access"
	"github.com/magabrotheeeer/video-access-gateway/internal/lib/jwt"
	authservice "github.com/magabrotheeeer/video-access-gateway/internal/services/auth"
	contentservice "github.com/magabrotheeeer/video-access-gateway/internal/services/content"
)

// RegisterRoutes регистрирует все маршруты шлюза.
func RegisterRoutes(r chi.Router, logger *slog.Logger, jwtMaker jwt.Maker, auth *authservice.Service, content *contentservice.Service, drmClient *drm.Client) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки с ограничением частоты запросов
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.RateLimitMiddleware(logger))
			r.Post("/auth/register", register.New(logger, auth).ServeHTTP)
			r.Post("/auth/login", login.New(logger, auth).ServeHTTP)
			r.Post("/auth/refresh", refresh.New(logger, auth).ServeHTTP)
		})

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(jwtMaker, logger))
			r.Get("/auth/me", me.New(logger, auth).ServeHTTP)

			// Каталог и лицензии требуют уровень доступа drm
			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.RequireTier(access.TierDRM, auth, logger))
				r.Get("/content/videos", videolist.New(logger, content).ServeHTTP)
				r.Get("/content/videos/{id}", videoread.New(logger, content).ServeHTTP)
				r.Post("/content/license/{system}", acquire.New(logger, drmClient).ServeHTTP)
				r.Get("/content/certificate/fairplay", certificate.New(logger, drmClient).ServeHTTP)
			})
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
