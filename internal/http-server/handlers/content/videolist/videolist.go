// Package videolist реализует HTTP-обработчик списка защищённых видео.
// Метаданные не содержат плейбек-секретов.
package videolist

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/video-access-gateway/internal/http-server/response"
	"github.com/magabrotheeeer/video-access-gateway/internal/lib/sl"
	"github.com/magabrotheeeer/video-access-gateway/internal/models"
)

// Service описывает интерфейс каталога видео.
type Service interface {
	ListVideos(ctx context.Context) ([]models.Video, error)
}

// Handler обрабатывает HTTP-запросы списка видео.
type Handler struct {
	log     *slog.Logger
	content Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, content Service) *Handler {
	return &Handler{
		log:     log,
		content: content,
	}
}

// ServeHTTP godoc
// @Summary Список защищённых видео
// @Description Возвращает метаданные всех видео каталога. Требует уровень доступа drm.
// @Tags Content
// @Produce  json
// @Success 200 {object} response.Response "Список видео"
// @Failure 401 {object} response.ErrorResponse "Невалидный токен"
// @Failure 403 {object} response.ErrorResponse "Недостаточный уровень доступа"
// @Security BearerAuth
// @Router /content/videos [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.content.videolist"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	videos, err := h.content.ListVideos(r.Context())
	if err != nil {
		log.Error("failed to list videos", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal service error"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"count": len(videos),
		"data":  videos,
	}))
}
