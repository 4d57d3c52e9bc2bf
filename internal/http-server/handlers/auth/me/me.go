// Package me реализует HTTP-обработчик, отдающий текущий аккаунт
// по проверенному токену из контекста запроса.
package me

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/video-access-gateway/internal/http-server/middlewarectx"
	"github.com/magabrotheeeer/video-access-gateway/internal/http-server/response"
	"github.com/magabrotheeeer/video-access-gateway/internal/lib/sl"
	"github.com/magabrotheeeer/video-access-gateway/internal/models"
)

// Service описывает интерфейс получения аккаунта по uid.
type Service interface {
	Me(ctx context.Context, accountUID string) (*models.Account, error)
}

// Handler обрабатывает HTTP-запросы текущего аккаунта.
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
// @Summary Текущий аккаунт
// @Description Возвращает безопасное представление аккаунта из проверенного токена.
// @Tags Auth
// @Produce  json
// @Success 200 {object} response.Response "Аккаунт"
// @Failure 401 {object} response.ErrorResponse "Невалидный токен"
// @Security BearerAuth
// @Router /auth/me [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.me"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	accountUID, ok := r.Context().Value(middlewarectx.AccountUID).(string)
	if !ok || accountUID == "" {
		log.Error("account identification missing")
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error("missing or invalid token"))
		return
	}

	acc, err := h.auth.Me(r.Context(), accountUID)
	if err != nil {
		log.Error("failed to load account", sl.Err(err))
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error("missing or invalid token"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"user": acc.View(),
	}))
}
