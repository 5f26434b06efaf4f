package domain

import "time"

// Video is the catalog entry clients browse. SourceID is the upstream
// media key and must never be serialized into any API response.
type Video struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	SourceID     string    `json:"-"`
	ThumbnailURL string    `json:"thumbnail_url"`
	Active       bool      `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
