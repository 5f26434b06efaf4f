package repository

import (
	"context"
	"time"

	"vidgate/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type WatchHistoryRepository struct {
	db *gorm.DB
}

func NewWatchHistoryRepository(db *gorm.DB) *WatchHistoryRepository {
	return &WatchHistoryRepository{db: db}
}

type watchHistoryModel struct {
	ID            int64     `gorm:"column:id;primaryKey"`
	UserID        int64     `gorm:"column:user_id;uniqueIndex:idx_watch_user_video"`
	VideoID       int64     `gorm:"column:video_id;uniqueIndex:idx_watch_user_video"`
	WatchDuration int       `gorm:"column:watch_duration"`
	Completed     bool      `gorm:"column:completed"`
	CreatedAt     time.Time `gorm:"column:created_at"`
	UpdatedAt     time.Time `gorm:"column:updated_at"`
}

func (watchHistoryModel) TableName() string { return "watch_history" }

// Upsert records the latest progress for one (user, video) pair, creating
// the row on first watch.
func (r *WatchHistoryRepository) Upsert(ctx context.Context, userID, videoID int64, watchDuration int, completed bool) error {
	now := time.Now()
	m := watchHistoryModel{
		UserID:        userID,
		VideoID:       videoID,
		WatchDuration: watchDuration,
		Completed:     completed,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "video_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"watch_duration": watchDuration,
			"completed":      completed,
			"updated_at":     now,
		}),
	}).Create(&m).Error
}

func (r *WatchHistoryRepository) GetUserHistory(ctx context.Context, userID int64, limit int) ([]domain.WatchHistory, error) {
	var models []watchHistoryModel
	tx := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		Limit(limit).
		Find(&models)
	if tx.Error != nil {
		return nil, tx.Error
	}

	history := make([]domain.WatchHistory, 0, len(models))
	for _, m := range models {
		history = append(history, domain.WatchHistory{
			ID:            m.ID,
			UserID:        m.UserID,
			VideoID:       m.VideoID,
			WatchDuration: m.WatchDuration,
			Completed:     m.Completed,
			CreatedAt:     m.CreatedAt,
			UpdatedAt:     m.UpdatedAt,
		})
	}
	return history, nil
}

func (r *WatchHistoryRepository) GetVideoStats(ctx context.Context, videoID int64) (*domain.VideoStats, error) {
	var stats domain.VideoStats
	tx := r.db.WithContext(ctx).Model(&watchHistoryModel{}).
		Select(
			"COUNT(*) AS view_count",
			"COALESCE(SUM(watch_duration), 0) AS total_watch_time",
			"COALESCE(SUM(CASE WHEN completed THEN 1 ELSE 0 END), 0) AS completion_count",
		).
		Where("video_id = ?", videoID).
		Scan(&stats)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return &stats, nil
}
