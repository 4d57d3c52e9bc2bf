// Package refresh реализует HTTP-обработчик продления сессионного токена.
//
// Новый токен выпускается только по ещё действующему текущему токену;
// просроченный токен продлить нельзя.
package refresh

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/video-access-gateway/internal/http-server/response"
	"github.com/magabrotheeeer/video-access-gateway/internal/lib/sl"
)

// Service описывает интерфейс продления токена.
type Service interface {
	Refresh(ctx context.Context, rawToken string) (string, time.Time, error)
}

// Handler обрабатывает HTTP-запросы продления токена.
type Handler struct {
	log  *slog.Logger
	auth Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, auth Service) *Handler {
	return &Handler{
		log:  log,
		auth: auth,
	}
}

// ServeHTTP godoc
// @Summary Продление сессионного токена
// @Description Выпускает новый токен по действующему токену из заголовка Authorization.
// @Tags Auth
// @Produce  json
// @Success 200 {object} response.Response "Новый токен и время истечения"
// @Failure 401 {object} response.ErrorResponse "Невалидный или просроченный токен"
// @Security BearerAuth
// @Router /auth/refresh [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.refresh"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	authHeader := r.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		log.Error("missing or invalid authorization header")
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error("missing or invalid token"))
		return
	}
	tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

	token, expiresAt, err := h.auth.Refresh(r.Context(), tokenStr)
	if err != nil {
		log.Info("refresh rejected", sl.Err(err))
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error("missing or invalid token"))
		return
	}

	log.Info("token refreshed")
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"token":  token,
		"expiry": expiresAt.UTC().Format(time.RFC3339),
	}))
}
