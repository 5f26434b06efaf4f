package video

import (
	"context"

	"vidgate/internal/domain"
)

// VideoRepositoryInterface — only the methods the video service uses
type VideoRepositoryInterface interface {
	GetByID(ctx context.Context, id int64) (*domain.Video, error)
	FindActivePaginated(ctx context.Context, offset, limit int) ([]domain.Video, int64, error)
}

// WatchHistoryRepositoryInterface — watch-progress storage
type WatchHistoryRepositoryInterface interface {
	Upsert(ctx context.Context, userID, videoID int64, watchDuration int, completed bool) error
	GetVideoStats(ctx context.Context, videoID int64) (*domain.VideoStats, error)
}
