package stream

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"vidgate/internal/domain"
	"vidgate/internal/pkg/token"
)

type mockVideoRepo struct {
	mock.Mock
}

func (m *mockVideoRepo) GetByID(ctx context.Context, id int64) (*domain.Video, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Video), args.Error(1)
}

type resolverFunc func(ctx context.Context, sourceID string) (string, error)

func (f resolverFunc) Resolve(ctx context.Context, sourceID string) (string, error) {
	return f(ctx, sourceID)
}

func staticResolver(url string) LocatorResolver {
	return resolverFunc(func(ctx context.Context, sourceID string) (string, error) {
		return url, nil
	})
}

func testAuthority() *token.Authority {
	return token.NewAuthority(
		token.Secrets{Access: "a-secret", Refresh: "r-secret", Playback: "p-secret", Internal: "i-secret"},
		token.TTLs{Access: 15 * time.Minute, Refresh: 168 * time.Hour, Playback: 5 * time.Minute, Internal: time.Minute},
	)
}

func newTestRouter(authority *token.Authority, videos VideoRepositoryInterface, resolver LocatorResolver) *gin.Engine {
	gin.SetMode(gin.TestMode)
	svc := NewService(authority, videos, resolver, Options{
		UserAgent:     "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36",
		Referer:       "https://www.youtube.com/",
		HeaderTimeout: 5 * time.Second,
	})
	router := gin.New()
	NewHandler(svc).RegisterPublicRoutes(router.Group("/api/v1"))
	return router
}

func videoRepoWith(v *domain.Video) *mockVideoRepo {
	repo := new(mockVideoRepo)
	repo.On("GetByID", mock.Anything, v.ID).Return(v, nil)
	return repo
}

func playbackTokenFor(t *testing.T, authority *token.Authority, videoID string) string {
	t.Helper()
	tok, err := authority.IssueVideo(token.TierPlayback, "42", videoID)
	require.NoError(t, err)
	return tok
}

func TestStream_RangeHonoredByUpstream(t *testing.T) {
	payload := strings.Repeat("x", 5000)
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "bytes=0-999", r.Header.Get("Range"))
		assert.Contains(t, r.Header.Get("User-Agent"), "Mozilla/5.0")
		assert.Equal(t, "https://www.youtube.com/", r.Header.Get("Referer"))

		w.Header().Set("Content-Type", "video/mp4")
		w.Header().Set("Content-Range", "bytes 0-999/5000")
		w.Header().Set("Content-Length", "1000")
		w.WriteHeader(http.StatusPartialContent)
		_, _ = w.Write([]byte(payload[:1000]))
	}))
	defer upstream.Close()

	authority := testAuthority()
	router := newTestRouter(authority, videoRepoWith(&domain.Video{ID: 7, SourceID: "ytAAA"}), staticResolver(upstream.URL))

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/v1/videos/7/stream?token="+playbackTokenFor(t, authority, "7"), nil)
	req.Header.Set("Range", "bytes=0-999")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusPartialContent, w.Code)
	assert.Equal(t, "bytes 0-999/5000", w.Header().Get("Content-Range"))
	assert.Equal(t, "bytes", w.Header().Get("Accept-Ranges"))
	assert.Equal(t, "video/mp4", w.Header().Get("Content-Type"))
	assert.Len(t, w.Body.String(), 1000)
}

func TestStream_RangeIgnoredByUpstream(t *testing.T) {
	payload := strings.Repeat("y", 5000)
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Upstream ignores the range and sends the full body.
		w.Header().Set("Content-Type", "video/mp4")
		_, _ = w.Write([]byte(payload))
	}))
	defer upstream.Close()

	authority := testAuthority()
	router := newTestRouter(authority, videoRepoWith(&domain.Video{ID: 7, SourceID: "ytAAA"}), staticResolver(upstream.URL))

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/v1/videos/7/stream?token="+playbackTokenFor(t, authority, "7"), nil)
	req.Header.Set("Range", "bytes=0-999")
	router.ServeHTTP(w, req)

	// The client asked for a range but gets the honest 200 full body,
	// never a fabricated 206.
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Content-Range"))
	assert.Len(t, w.Body.String(), 5000)
}

func TestStream_NoRangeRequested(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Range"))
		_, _ = w.Write([]byte("full-body"))
	}))
	defer upstream.Close()

	authority := testAuthority()
	router := newTestRouter(authority, videoRepoWith(&domain.Video{ID: 7, SourceID: "ytAAA"}), staticResolver(upstream.URL))

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/v1/videos/7/stream?token="+playbackTokenFor(t, authority, "7"), nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "full-body", w.Body.String())
	assert.Equal(t, "bytes", w.Header().Get("Accept-Ranges"))
}

func TestStream_DefaultContentType(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Suppress Go's content sniffing so the relay sees no Content-Type.
		w.Header()["Content-Type"] = nil
		_, _ = w.Write([]byte("bytes"))
	}))
	defer upstream.Close()

	authority := testAuthority()
	router := newTestRouter(authority, videoRepoWith(&domain.Video{ID: 7, SourceID: "ytAAA"}), staticResolver(upstream.URL))

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/v1/videos/7/stream?token="+playbackTokenFor(t, authority, "7"), nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "video/mp4", w.Header().Get("Content-Type"))
}

func TestStream_MissingToken(t *testing.T) {
	router := newTestRouter(testAuthority(), new(mockVideoRepo), staticResolver("http://unused"))

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/v1/videos/7/stream", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "TOKEN_REQUIRED")
}

func TestStream_GarbledToken(t *testing.T) {
	router := newTestRouter(testAuthority(), new(mockVideoRepo), staticResolver("http://unused"))

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/v1/videos/7/stream?token=not-a-jwt", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_TOKEN")
}

func TestStream_AccessTokenRejected(t *testing.T) {
	authority := testAuthority()
	router := newTestRouter(authority, new(mockVideoRepo), staticResolver("http://unused"))

	accessToken, err := authority.Issue(token.TierAccess, "42")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/v1/videos/7/stream?token="+accessToken, nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestStream_TokenVideoMismatch(t *testing.T) {
	authority := testAuthority()
	router := newTestRouter(authority, new(mockVideoRepo), staticResolver("http://unused"))

	// Valid playback token, issued for a different video.
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/v1/videos/2/stream?token="+playbackTokenFor(t, authority, "1"), nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "TOKEN_MISMATCH")
}

func TestStream_UnknownVideo(t *testing.T) {
	authority := testAuthority()
	repo := new(mockVideoRepo)
	repo.On("GetByID", mock.Anything, int64(99)).Return(nil, gorm.ErrRecordNotFound)
	router := newTestRouter(authority, repo, staticResolver("http://unused"))

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/v1/videos/99/stream?token="+playbackTokenFor(t, authority, "99"), nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "VIDEO_NOT_FOUND")
}

func TestStream_ExtractionFailure(t *testing.T) {
	authority := testAuthority()
	failing := resolverFunc(func(ctx context.Context, sourceID string) (string, error) {
		return "", errors.New("no compatible format")
	})
	router := newTestRouter(authority, videoRepoWith(&domain.Video{ID: 7, SourceID: "ytAAA"}), failing)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/v1/videos/7/stream?token="+playbackTokenFor(t, authority, "7"), nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "EXTRACTION_FAILED")
}

func TestStream_UpstreamErrorStatus(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer upstream.Close()

	authority := testAuthority()
	router := newTestRouter(authority, videoRepoWith(&domain.Video{ID: 7, SourceID: "ytAAA"}), staticResolver(upstream.URL))

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/v1/videos/7/stream?token="+playbackTokenFor(t, authority, "7"), nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "UPSTREAM_UNAVAILABLE")
}

func TestStream_UpstreamUnreachable(t *testing.T) {
	authority := testAuthority()
	// A port nothing listens on.
	router := newTestRouter(authority, videoRepoWith(&domain.Video{ID: 7, SourceID: "ytAAA"}), staticResolver("http://127.0.0.1:1"))

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/v1/videos/7/stream?token="+playbackTokenFor(t, authority, "7"), nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "UPSTREAM_UNAVAILABLE")
}

func TestStream_ExpiredPlaybackToken(t *testing.T) {
	expiredAuthority := token.NewAuthority(
		token.Secrets{Access: "a-secret", Refresh: "r-secret", Playback: "p-secret", Internal: "i-secret"},
		token.TTLs{Access: time.Minute, Refresh: time.Hour, Playback: -time.Second, Internal: time.Minute},
	)
	router := newTestRouter(expiredAuthority, new(mockVideoRepo), staticResolver("http://unused"))

	expired, err := expiredAuthority.IssueVideo(token.TierPlayback, "42", "7")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/v1/videos/7/stream?token="+expired, nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
