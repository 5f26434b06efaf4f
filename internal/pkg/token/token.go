package token

import (
	"errors"
	"fmt"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Tier identifies one of the four token classes. Each tier signs with its
// own secret so a leaked playback-tier key cannot forge access or refresh
// tokens.
type Tier string

const (
	TierAccess   Tier = "access"
	TierRefresh  Tier = "refresh"
	TierPlayback Tier = "playback"
	TierInternal Tier = "internal"
)

var (
	ErrExpired = errors.New("token expired")
	ErrInvalid = errors.New("invalid token")
)

type Claims struct {
	UserID    string `json:"user_id"`
	VideoID   string `json:"video_id,omitempty"`
	TokenType string `json:"type"`
	jwtlib.RegisteredClaims
}

type tierSpec struct {
	secret       []byte
	ttl          time.Duration
	needsVideoID bool
}

// Secrets holds the per-tier signing keys. All four must be distinct;
// config validation enforces that before an Authority is built.
type Secrets struct {
	Access   string
	Refresh  string
	Playback string
	Internal string
}

type TTLs struct {
	Access   time.Duration
	Refresh  time.Duration
	Playback time.Duration
	Internal time.Duration
}

// Authority issues and verifies all four token tiers from a single
// descriptor table. It holds no mutable state and is safe for concurrent use.
type Authority struct {
	tiers map[Tier]tierSpec
}

func NewAuthority(secrets Secrets, ttls TTLs) *Authority {
	return &Authority{
		tiers: map[Tier]tierSpec{
			TierAccess:   {secret: []byte(secrets.Access), ttl: ttls.Access},
			TierRefresh:  {secret: []byte(secrets.Refresh), ttl: ttls.Refresh},
			TierPlayback: {secret: []byte(secrets.Playback), ttl: ttls.Playback, needsVideoID: true},
			TierInternal: {secret: []byte(secrets.Internal), ttl: ttls.Internal, needsVideoID: true},
		},
	}
}

// Issue signs a token for tiers that are not bound to a video
// (access, refresh).
func (a *Authority) Issue(tier Tier, userID string) (string, error) {
	return a.issue(tier, userID, "")
}

// IssueVideo signs a video-bound token (playback, internal).
func (a *Authority) IssueVideo(tier Tier, userID, videoID string) (string, error) {
	if videoID == "" {
		return "", fmt.Errorf("tier %s requires a video id", tier)
	}
	return a.issue(tier, userID, videoID)
}

func (a *Authority) issue(tier Tier, userID, videoID string) (string, error) {
	spec, ok := a.tiers[tier]
	if !ok {
		return "", fmt.Errorf("unknown token tier %q", tier)
	}
	if spec.needsVideoID && videoID == "" {
		return "", fmt.Errorf("tier %s requires a video id", tier)
	}
	if !spec.needsVideoID && videoID != "" {
		return "", fmt.Errorf("tier %s must not carry a video id", tier)
	}

	now := time.Now()
	claims := Claims{
		UserID:    userID,
		VideoID:   videoID,
		TokenType: string(tier),
		RegisteredClaims: jwtlib.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwtlib.NewNumericDate(now),
			ExpiresAt: jwtlib.NewNumericDate(now.Add(spec.ttl)),
		},
	}

	return jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(spec.secret)
}

// Verify checks signature, expiry and the type claim against the expected
// tier. A token signed for another tier is ErrInvalid even if its own
// signature would verify under that tier's key.
func (a *Authority) Verify(tier Tier, tokenStr string) (*Claims, error) {
	spec, ok := a.tiers[tier]
	if !ok {
		return nil, fmt.Errorf("unknown token tier %q", tier)
	}

	parsed, err := jwtlib.ParseWithClaims(tokenStr, &Claims{}, func(t *jwtlib.Token) (any, error) {
		return spec.secret, nil
	}, jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwtlib.ErrTokenExpired) {
			return nil, ErrExpired
		}
		return nil, ErrInvalid
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalid
	}
	if claims.TokenType != string(tier) {
		return nil, ErrInvalid
	}

	return claims, nil
}

// TTL reports the configured lifetime of a tier. Used by callers that need
// to align denylist retention with token expiry.
func (a *Authority) TTL(tier Tier) time.Duration {
	return a.tiers[tier].ttl
}
