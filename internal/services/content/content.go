// Package content содержит бизнес-логику каталога защищённых видео:
// выборка метаданных с кэшированием и дополнение их адресами
// лицензионных конечных точек шлюза.
package content

import (
	"context"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/video-access-gateway/internal/lib/sl"
	"github.com/magabrotheeeer/video-access-gateway/internal/models"
)

// Ключи кэша каталога.
const (
	cacheKeyAllVideos = "videos:all"
	cacheKeyVideo     = "videos:"
)

// VideoRepository описывает контракт для чтения каталога видео из базы.
type VideoRepository interface {
	// ListVideos возвращает метаданные всех видео каталога.
	ListVideos(ctx context.Context) ([]models.Video, error)

	// GetVideo возвращает метаданные одного видео или storage.ErrVideoNotFound.
	GetVideo(ctx context.Context, id string) (*models.Video, error)
}

// VideoCache описывает контракт кэша каталога.
type VideoCache interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
}

// Service отдаёт метаданные каталога, пряча за собой кэш и базу.
type Service struct {
	videos   VideoRepository
	cache    VideoCache // nil, если кэширование выключено
	log      *slog.Logger
	baseURL  string // Публичный адрес шлюза для построения лицензионных URL
	cacheTTL time.Duration
}

// New создает новый экземпляр Service.
func New(videos VideoRepository, cache VideoCache, log *slog.Logger, baseURL string, cacheTTL time.Duration) *Service {
	return &Service{
		videos:   videos,
		cache:    cache,
		log:      log,
		baseURL:  baseURL,
		cacheTTL: cacheTTL,
	}
}

// ListVideos возвращает метаданные всех видео каталога.
// Плейбек-секретов в метаданных нет, кэшировать их безопасно.
func (s *Service) ListVideos(ctx context.Context) ([]models.Video, error) {
	const op = "services.content.ListVideos"

	if s.cache != nil {
		var cached []models.Video
		found, err := s.cache.Get(cacheKeyAllVideos, &cached)
		if err != nil {
			s.log.Warn("cache read failed", slog.String("op", op), sl.Err(err))
		}
		if found {
			return cached, nil
		}
	}

	videos, err := s.videos.ListVideos(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(cacheKeyAllVideos, videos, s.cacheTTL); err != nil {
			s.log.Warn("cache write failed", slog.String("op", op), sl.Err(err))
		}
	}
	return videos, nil
}

// GetVideo возвращает метаданные видео, дополненные адресами лицензионных
// конечных точек для каждой DRM-системы.
func (s *Service) GetVideo(ctx context.Context, id string) (*models.VideoWithDRM, error) {
	const op = "services.content.GetVideo"

	var video *models.Video
	if s.cache != nil {
		var cached models.Video
		found, err := s.cache.Get(cacheKeyVideo+id, &cached)
		if err != nil {
			s.log.Warn("cache read failed", slog.String("op", op), sl.Err(err))
		}
		if found {
			video = &cached
		}
	}

	if video == nil {
		v, err := s.videos.GetVideo(ctx, id)
		if err != nil {
			return nil, err
		}
		video = v
		if s.cache != nil {
			if err := s.cache.Set(cacheKeyVideo+id, v, s.cacheTTL); err != nil {
				s.log.Warn("cache write failed", slog.String("op", op), sl.Err(err))
			}
		}
	}

	return s.withDRMInfo(video), nil
}

// withDRMInfo дополняет метаданные адресами лицензионных конечных точек шлюза.
func (s *Service) withDRMInfo(v *models.Video) *models.VideoWithDRM {
	return &models.VideoWithDRM{
		Video:     *v,
		Encrypted: true,
		DRMSystems: map[string]models.DRMSystemInfo{
			"widevine": {
				LicenseURL: s.baseURL + "/api/v1/content/license/widevine",
			},
			"playready": {
				LicenseURL: s.baseURL + "/api/v1/content/license/playready",
			},
			"fairplay": {
				LicenseURL:     s.baseURL + "/api/v1/content/license/fairplay",
				CertificateURL: s.baseURL + "/api/v1/content/certificate/fairplay",
			},
		},
	}
}
