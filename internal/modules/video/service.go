package video

import (
	"context"
	"errors"
	"log"
	"strconv"

	"vidgate/internal/domain"
	"vidgate/internal/pkg/token"

	"gorm.io/gorm"
)

// Service contains catalog, watch-tracking and player hand-off logic.
type Service struct {
	videos    VideoRepositoryInterface
	history   WatchHistoryRepositoryInterface
	authority *token.Authority
}

func NewService(videos VideoRepositoryInterface, history WatchHistoryRepositoryInterface, authority *token.Authority) *Service {
	return &Service{
		videos:    videos,
		history:   history,
		authority: authority,
	}
}

// Dashboard returns one page of active videos, each carrying a playback
// token bound to that video and the requesting user.
func (s *Service) Dashboard(ctx context.Context, userID string, page, limit int) ([]VideoPublic, *Pagination, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	if limit > 50 {
		limit = 50
	}

	videos, total, err := s.videos.FindActivePaginated(ctx, (page-1)*limit, limit)
	if err != nil {
		return nil, nil, err
	}

	list := make([]VideoPublic, 0, len(videos))
	for _, v := range videos {
		playback, err := s.authority.IssueVideo(token.TierPlayback, userID, strconv.FormatInt(v.ID, 10))
		if err != nil {
			return nil, nil, err
		}
		list = append(list, toPublic(&v, playback))
	}

	pages := int((total + int64(limit) - 1) / int64(limit))
	if pages < 1 {
		pages = 1
	}
	return list, &Pagination{
		Page:    page,
		Limit:   limit,
		Total:   total,
		Pages:   pages,
		HasMore: page < pages,
	}, nil
}

// GetInfo returns one video with a fresh playback token.
func (s *Service) GetInfo(ctx context.Context, userID, videoID string) (*VideoPublic, error) {
	v, err := s.findVideo(ctx, videoID)
	if err != nil {
		return nil, err
	}

	playback, err := s.authority.IssueVideo(token.TierPlayback, userID, strconv.FormatInt(v.ID, 10))
	if err != nil {
		return nil, err
	}

	pub := toPublic(v, playback)
	return &pub, nil
}

// TrackWatch upserts the user's progress on a video and returns the
// updated aggregate stats.
func (s *Service) TrackWatch(ctx context.Context, userID, videoID string, req WatchRequest) (*domain.VideoStats, error) {
	v, err := s.findVideo(ctx, videoID)
	if err != nil {
		return nil, err
	}

	uid, err := strconv.ParseInt(userID, 10, 64)
	if err != nil {
		return nil, ErrVideoNotFound
	}

	if err := s.history.Upsert(ctx, uid, v.ID, req.Duration, req.Completed); err != nil {
		return nil, err
	}

	log.Printf("watch_tracked user_id=%s video_id=%d duration=%d", userID, v.ID, req.Duration)
	return s.history.GetVideoStats(ctx, v.ID)
}

func (s *Service) Stats(ctx context.Context, videoID string) (*domain.VideoStats, error) {
	v, err := s.findVideo(ctx, videoID)
	if err != nil {
		return nil, err
	}
	return s.history.GetVideoStats(ctx, v.ID)
}

// PlayerHandOff issues a very short-lived internal token for the
// backend-owned player page redirect.
func (s *Service) PlayerHandOff(ctx context.Context, userID, videoID string) (string, error) {
	v, err := s.findVideo(ctx, videoID)
	if err != nil {
		return "", err
	}
	return s.authority.IssueVideo(token.TierInternal, userID, strconv.FormatInt(v.ID, 10))
}

// RedeemPlayerToken swaps a valid internal token for a playback token
// scoped to the same video.
func (s *Service) RedeemPlayerToken(internalToken string) (videoID, playbackToken string, err error) {
	claims, err := s.authority.Verify(token.TierInternal, internalToken)
	if err != nil {
		return "", "", ErrInvalidPlayToken
	}

	playback, err := s.authority.IssueVideo(token.TierPlayback, claims.UserID, claims.VideoID)
	if err != nil {
		return "", "", err
	}
	return claims.VideoID, playback, nil
}

func (s *Service) findVideo(ctx context.Context, videoID string) (*domain.Video, error) {
	id, err := strconv.ParseInt(videoID, 10, 64)
	if err != nil {
		return nil, ErrVideoNotFound
	}
	v, err := s.videos.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVideoNotFound
		}
		return nil, err
	}
	return v, nil
}

func toPublic(v *domain.Video, playbackToken string) VideoPublic {
	return VideoPublic{
		ID:            v.ID,
		Title:         v.Title,
		Description:   v.Description,
		ThumbnailURL:  v.ThumbnailURL,
		PlaybackToken: playbackToken,
	}
}
