// Package videoread реализует HTTP-обработчик метаданных одного видео,
// дополненных адресами лицензионных конечных точек шлюза.
package videoread

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/video-access-gateway/internal/http-server/response"
	"github.com/magabrotheeeer/video-access-gateway/internal/lib/sl"
	"github.com/magabrotheeeer/video-access-gateway/internal/models"
	"github.com/magabrotheeeer/video-access-gateway/internal/storage"
)

// Service описывает интерфейс каталога видео.
type Service interface {
	GetVideo(ctx context.Context, id string) (*models.VideoWithDRM, error)
}

// Handler обрабатывает HTTP-запросы метаданных видео.
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
// @Summary Метаданные видео
// @Description Возвращает метаданные видео с адресами лицензионных конечных точек. Требует уровень доступа drm.
// @Tags Content
// @Produce  json
// @Param id path string true "Идентификатор видео"
// @Success 200 {object} response.Response "Метаданные видео"
// @Failure 404 {object} response.ErrorResponse "Видео не найдено"
// @Security BearerAuth
// @Router /content/videos/{id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.content.videoread"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id := chi.URLParam(r, "id")
	if id == "" {
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.Error("video not found"))
		return
	}

	video, err := h.content.GetVideo(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrVideoNotFound) {
			log.Info("video not found", slog.String("video_id", id))
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, response.Error("video not found"))
			return
		}
		log.Error("failed to get video", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal service error"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(video))
}
