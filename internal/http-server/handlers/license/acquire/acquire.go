// Package acquire реализует HTTP-обработчик выдачи DRM-лицензий.
//
// Тело запроса и тело ответа передаются между клиентом и лицензионным
// сервером побайтно, без перекодирования. Содержимое лицензионных
// сообщений не логируется.
package acquire

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/video-access-gateway/internal/drm"
	"github.com/magabrotheeeer/video-access-gateway/internal/http-server/response"
	"github.com/magabrotheeeer/video-access-gateway/internal/lib/sl"
)

// maxLicensePayload ограничивает размер лицензионного запроса клиента.
// Запрос больше лимита отклоняется целиком: пересылать вендору можно
// только ровно те байты, что прислал плеер.
const maxLicensePayload = 1 << 20

// Service описывает интерфейс пересылки лицензионных запросов.
type Service interface {
	ForwardLicense(ctx context.Context, system drm.System, payload []byte) ([]byte, string, error)
}

// Handler обрабатывает HTTP-запросы выдачи лицензий.
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
// @Summary Выдача DRM-лицензии
// @Description Пересылает лицензионный запрос плеера на лицензионный сервер указанной DRM-системы и возвращает ответ без изменений.
// @Tags License
// @Accept  octet-stream
// @Produce  octet-stream
// @Param system path string true "DRM-система" Enums(widevine, playready, fairplay)
// @Success 200 {string} binary "Лицензионный ответ"
// @Failure 404 {object} response.ErrorResponse "Неизвестная DRM-система"
// @Failure 502 {object} response.ErrorResponse "Лицензионный сервер недоступен"
// @Security BearerAuth
// @Router /content/license/{system} [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.license.acquire"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	system, err := drm.ParseSystem(chi.URLParam(r, "system"))
	if err != nil {
		log.Info("unknown drm system", slog.String("system", chi.URLParam(r, "system")))
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.Error("unknown drm system"))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxLicensePayload)
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			log.Info("license payload too large")
			render.Status(r, http.StatusRequestEntityTooLarge)
			render.JSON(w, r, response.Error("license payload too large"))
			return
		}
		log.Error("failed to read request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	body, contentType, err := h.drm.ForwardLicense(r.Context(), system, payload)
	if err != nil {
		if errors.Is(err, drm.ErrUpstream) {
			log.Error("license server unavailable",
				slog.String("system", string(system)), sl.Err(err))
			render.Status(r, http.StatusBadGateway)
			render.JSON(w, r, response.Error("license server unavailable"))
			return
		}
		log.Error("failed to forward license request", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal service error"))
		return
	}

	log.Info("license issued",
		slog.String("system", string(system)),
		slog.Int("response_size", len(body)))

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
