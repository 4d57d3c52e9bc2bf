package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/video-access-gateway/internal/models"
)

// ErrVideoNotFound возвращается, когда видео не найдено в каталоге.
var ErrVideoNotFound = errors.New("video not found")

// ListVideos возвращает метаданные всех видео каталога.
func (s *Storage) ListVideos(ctx context.Context) ([]models.Video, error) {
	const op = "storage.ListVideos"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, title, description, duration, thumbnail_url,
			      stream_url, stream_type, content_tier
			  FROM videos
			  ORDER BY id`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []models.Video
	for rows.Next() {
		var v models.Video
		if err = rows.Scan(&v.ID, &v.Title, &v.Description, &v.Duration,
			&v.ThumbnailURL, &v.StreamURL, &v.StreamType, &v.ContentTier); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, v)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// GetVideo возвращает метаданные одного видео по его идентификатору.
func (s *Storage) GetVideo(ctx context.Context, id string) (*models.Video, error) {
	const op = "storage.GetVideo"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, title, description, duration, thumbnail_url,
			      stream_url, stream_type, content_tier
			  FROM videos
			  WHERE id = $1`
	v := &models.Video{}
	row := s.DB.QueryRowContext(ctx, query, id)
	if err := row.Scan(&v.ID, &v.Title, &v.Description, &v.Duration,
		&v.ThumbnailURL, &v.StreamURL, &v.StreamType, &v.ContentTier); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrVideoNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return v, nil
}
