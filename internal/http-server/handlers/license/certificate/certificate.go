// Package certificate реализует HTTP-обработчик выдачи сервисного
// сертификата FairPlay, необходимого плееру до запроса лицензии.
package certificate

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/video-access-gateway/internal/drm"
	"github.com/magabrotheeeer/video-access-gateway/internal/http-server/response"
	"github.com/magabrotheeeer/video-access-gateway/internal/lib/sl"
)

// Service описывает интерфейс получения сервисного сертификата.
type Service interface {
	GetCertificate(ctx context.Context, system drm.System) ([]byte, string, error)
}

// Handler обрабатывает HTTP-запросы сертификата FairPlay.
type Handler struct {
	log *slog.Logger
	drm Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, drmClient Service) *Handler {
	return &Handler{
		log: log,
		drm: drmClient,
	}
}

// ServeHTTP godoc
// @Summary Сервисный сертификат FairPlay
// @Description Возвращает сервисный сертификат FairPlay с лицензионного сервера без изменений.
// @Tags License
// @Produce  octet-stream
// @Success 200 {string} binary "Сертификат"
// @Failure 502 {object} response.ErrorResponse "Лицензионный сервер недоступен"
// @Security BearerAuth
// @Router /content/certificate/fairplay [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.license.certificate"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	body, contentType, err := h.drm.GetCertificate(r.Context(), drm.SystemFairPlay)
	if err != nil {
		if errors.Is(err, drm.ErrUpstream) {
			log.Error("license server unavailable", sl.Err(err))
			render.Status(r, http.StatusBadGateway)
			render.JSON(w, r, response.Error("license server unavailable"))
			return
		}
		log.Error("failed to get certificate", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal service error"))
		return
	}

	log.Info("certificate served", slog.Int("response_size", len(body)))

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
