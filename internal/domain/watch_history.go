package domain

import "time"

type WatchHistory struct {
	ID            int64     `json:"id"`
	UserID        int64     `json:"user_id"`
	VideoID       int64     `json:"video_id"`
	WatchDuration int       `json:"watch_duration"`
	Completed     bool      `json:"completed"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// VideoStats is the aggregate view over watch history for one video.
type VideoStats struct {
	ViewCount       int64 `json:"view_count"`
	TotalWatchTime  int64 `json:"total_watch_time"`
	CompletionCount int64 `json:"completion_count"`
}
