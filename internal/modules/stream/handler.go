package stream

import (
	"errors"
	"io"
	"log"
	"net/http"

	"vidgate/internal/pkg/response"
	"vidgate/internal/pkg/token"

	"github.com/gin-gonic/gin"
)

const relayChunkSize = 8 * 1024

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterPublicRoutes mounts the stream endpoint. It is public in the
// routing sense only: the playback token in the query string is the
// credential, because native players cannot attach Authorization headers.
func (h *Handler) RegisterPublicRoutes(v1 *gin.RouterGroup) {
	v1.GET("/videos/:id/stream", h.Stream)
}

func (h *Handler) Stream(c *gin.Context) {
	videoID := c.Param("id")

	playbackToken := c.Query("token")
	if playbackToken == "" {
		response.Error(c, http.StatusBadRequest, "TOKEN_REQUIRED", "Playback token is required")
		return
	}

	if _, err := h.service.Authorize(playbackToken, videoID); err != nil {
		if errors.Is(err, ErrTokenMismatch) {
			log.Printf("stream_token_mismatch video_id=%s", videoID)
			response.Error(c, http.StatusForbidden, "TOKEN_MISMATCH", "Token does not match video")
			return
		}
		// Expired vs malformed is logged, never surfaced.
		log.Printf("stream_token_rejected video_id=%s expired=%t", videoID, errors.Is(err, token.ErrExpired))
		response.Error(c, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid or expired playback token")
		return
	}

	rangeHeader := c.GetHeader("Range")

	up, err := h.service.Open(c.Request.Context(), videoID, rangeHeader)
	if err != nil {
		switch {
		case errors.Is(err, ErrVideoNotFound):
			response.Error(c, http.StatusNotFound, "VIDEO_NOT_FOUND", "Video not found")
		case errors.Is(err, ErrExtractionFailed):
			response.Error(c, http.StatusBadGateway, "EXTRACTION_FAILED", "Failed to prepare video stream")
		default:
			response.Error(c, http.StatusBadGateway, "UPSTREAM_UNAVAILABLE", "Failed to fetch video stream")
		}
		return
	}
	defer up.Body.Close()

	c.Header("Content-Type", up.ContentType)
	c.Header("Accept-Ranges", "bytes")
	if up.ContentLength != "" {
		c.Header("Content-Length", up.ContentLength)
	}
	if up.ContentRange != "" {
		c.Header("Content-Range", up.ContentRange)
	}

	// 206 only when the client asked for a range AND the upstream honored
	// it; an upstream that ignored the range yields a plain 200 full body.
	status := http.StatusOK
	if rangeHeader != "" && up.StatusCode == http.StatusPartialContent {
		status = http.StatusPartialContent
	}
	c.Status(status)

	buf := make([]byte, relayChunkSize)
	if _, err := io.CopyBuffer(c.Writer, up.Body, buf); err != nil {
		// Headers are gone; the response is truncated. Covers both
		// mid-stream upstream failures and client disconnects.
		log.Printf("stream_truncated video_id=%s err=%v", videoID, err)
	}
}
