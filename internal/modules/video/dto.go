package video

// VideoPublic is the client-facing shape of a catalog entry. The upstream
// source id is deliberately absent.
type VideoPublic struct {
	ID            int64  `json:"id"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	ThumbnailURL  string `json:"thumbnail_url"`
	PlaybackToken string `json:"playback_token,omitempty"`
}

type Pagination struct {
	Page    int   `json:"page"`
	Limit   int   `json:"limit"`
	Total   int64 `json:"total"`
	Pages   int   `json:"pages"`
	HasMore bool  `json:"has_more"`
}

type WatchRequest struct {
	Duration  int  `json:"duration"`
	Completed bool `json:"completed"`
}
