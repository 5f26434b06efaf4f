package video

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"vidgate/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterPublicRoutes(v1 *gin.RouterGroup) {
	v1.GET("/player", h.Player)
}

func (h *Handler) RegisterProtectedRoutes(protected *gin.RouterGroup) {
	protected.GET("/dashboard", h.Dashboard)

	videos := protected.Group("/videos")
	{
		videos.GET("/:id/info", h.GetInfo)
		videos.GET("/:id/play", h.Play)
		videos.POST("/:id/watch", h.TrackWatch)
		videos.GET("/:id/stats", h.Stats)
	}
}

func (h *Handler) Dashboard(c *gin.Context) {
	page := queryInt(c, "page", 1)
	limit := queryInt(c, "limit", 10)

	list, pagination, err := h.service.Dashboard(c.Request.Context(), c.GetString("user_id"), page, limit)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "DASHBOARD_FAILED", "Failed to load dashboard")
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"videos":     list,
		"pagination": pagination,
	})
}

func (h *Handler) GetInfo(c *gin.Context) {
	info, err := h.service.GetInfo(c.Request.Context(), c.GetString("user_id"), c.Param("id"))
	if err != nil {
		handleVideoError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"video": info})
}

// Play redirects to the backend-owned player page with a short-lived
// internal token, so the player URL itself never carries an access token.
func (h *Handler) Play(c *gin.Context) {
	internalToken, err := h.service.PlayerHandOff(c.Request.Context(), c.GetString("user_id"), c.Param("id"))
	if err != nil {
		handleVideoError(c, err)
		return
	}

	c.Redirect(http.StatusFound, "/api/v1/player?token="+url.QueryEscape(internalToken))
}

// Player redeems the internal token from the redirect and serves a minimal
// HTML5 player pointed at the stream endpoint.
func (h *Handler) Player(c *gin.Context) {
	internalToken := c.Query("token")
	if internalToken == "" {
		response.Error(c, http.StatusBadRequest, "TOKEN_REQUIRED", "Player token is required")
		return
	}

	videoID, playbackToken, err := h.service.RedeemPlayerToken(internalToken)
	if err != nil {
		response.Error(c, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid or expired player token")
		return
	}

	streamURL := fmt.Sprintf("/api/v1/videos/%s/stream?token=%s", videoID, url.QueryEscape(playbackToken))
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.String(http.StatusOK, playerPage, streamURL)
}

func (h *Handler) TrackWatch(c *gin.Context) {
	var req WatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	stats, err := h.service.TrackWatch(c.Request.Context(), c.GetString("user_id"), c.Param("id"), req)
	if err != nil {
		handleVideoError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"message": "Watch tracked",
		"stats":   stats,
	})
}

func (h *Handler) Stats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleVideoError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"stats": stats})
}

func handleVideoError(c *gin.Context, err error) {
	if errors.Is(err, ErrVideoNotFound) {
		response.Error(c, http.StatusNotFound, "VIDEO_NOT_FOUND", "Video not found")
		return
	}
	response.Error(c, http.StatusInternalServerError, "VIDEO_FAILED", "Failed to process video request")
}

func queryInt(c *gin.Context, name string, fallback int) int {
	value := c.Query(name)
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return n
}

const playerPage = `<!DOCTYPE html>
<html>
<head><title>Player</title></head>
<body style="margin:0;background:#000">
<video controls autoplay playsinline style="width:100%%;height:100vh" src="%s"></video>
</body>
</html>`
