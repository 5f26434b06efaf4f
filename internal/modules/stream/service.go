package stream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"vidgate/internal/pkg/token"

	"gorm.io/gorm"
)

// Upstream is one opened upstream response, ready to be relayed. The caller
// owns Body and must close it.
type Upstream struct {
	StatusCode    int
	ContentType   string
	ContentLength string
	ContentRange  string
	Body          io.ReadCloser
}

// Options carries the fixed identifying headers the upstream host expects
// and the bound on how long we wait for its response headers.
type Options struct {
	UserAgent     string
	Referer       string
	HeaderTimeout time.Duration
}

// Service authorizes playback tokens against videos and opens upstream
// byte streams for the relay handler.
type Service struct {
	authority *token.Authority
	videos    VideoRepositoryInterface
	resolver  LocatorResolver
	upstream  *http.Client
	userAgent string
	referer   string
}

func NewService(authority *token.Authority, videos VideoRepositoryInterface, resolver LocatorResolver, opts Options) *Service {
	if opts.HeaderTimeout <= 0 {
		opts.HeaderTimeout = 30 * time.Second
	}
	return &Service{
		authority: authority,
		videos:    videos,
		resolver:  resolver,
		// No overall client timeout: streams outlive any sane deadline.
		// The header timeout bounds a stalled upstream, and the request
		// context handles client disconnects.
		upstream: &http.Client{
			Transport: &http.Transport{
				Proxy:                 http.ProxyFromEnvironment,
				ResponseHeaderTimeout: opts.HeaderTimeout,
			},
		},
		userAgent: opts.UserAgent,
		referer:   opts.Referer,
	}
}

// Authorize verifies the playback token and its binding to the requested
// video. A valid token for a different video is a mismatch, not a generic
// auth failure.
func (s *Service) Authorize(tokenStr, videoID string) (*token.Claims, error) {
	claims, err := s.authority.Verify(token.TierPlayback, tokenStr)
	if err != nil {
		return nil, err
	}
	if claims.VideoID != videoID {
		return nil, ErrTokenMismatch
	}
	return claims, nil
}

// Open resolves the video's source to a direct URL and issues the upstream
// GET, forwarding the client's Range header verbatim when present.
func (s *Service) Open(ctx context.Context, videoID, rangeHeader string) (*Upstream, error) {
	id, err := strconv.ParseInt(videoID, 10, 64)
	if err != nil {
		return nil, ErrVideoNotFound
	}

	video, err := s.videos.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVideoNotFound
		}
		return nil, err
	}

	directURL, err := s.resolver.Resolve(ctx, video.SourceID)
	if err != nil {
		log.Printf("stream_extraction_failed video_id=%s err=%v", videoID, err)
		return nil, fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, directURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	// The upstream enforces origin/UA checks; present a fixed browser
	// identity rather than the client's own.
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Referer", s.referer)
	if rangeHeader != "" {
		req.Header.Set("Range", rangeHeader)
	}

	resp, err := s.upstream.Do(req)
	if err != nil {
		log.Printf("stream_upstream_failed video_id=%s err=%v", videoID, err)
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		resp.Body.Close()
		log.Printf("stream_upstream_failed video_id=%s status=%d", videoID, resp.StatusCode)
		return nil, fmt.Errorf("%w: upstream status %d", ErrUpstreamUnavailable, resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "video/mp4"
	}

	return &Upstream{
		StatusCode:    resp.StatusCode,
		ContentType:   contentType,
		ContentLength: resp.Header.Get("Content-Length"),
		ContentRange:  resp.Header.Get("Content-Range"),
		Body:          resp.Body,
	}, nil
}
