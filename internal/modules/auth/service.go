package auth

import (
	"context"
	"errors"
	"log"
	"strconv"
	"strings"
	"time"

	"vidgate/internal/domain"
	"vidgate/internal/pkg/token"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Service contains all business logic for authentication
type Service struct {
	users     UserRepositoryInterface
	authority *token.Authority
	denylist  *Denylist
}

type LoginResult struct {
	User   *domain.User
	Tokens TokenPair
}

func NewService(users UserRepositoryInterface, authority *token.Authority, denylist *Denylist) *Service {
	return &Service{
		users:     users,
		authority: authority,
		denylist:  denylist,
	}
}

func (s *Service) Register(ctx context.Context, req RegisterRequest) (*LoginResult, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	exists, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailAlreadyExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Email:        email,
		PasswordHash: string(hash),
		Name:         strings.TrimSpace(req.Name),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	log.Printf("user_registered user_id=%d", user.ID)

	tokens, err := s.issuePair(user.ID)
	if err != nil {
		return nil, err
	}

	user.PasswordHash = ""
	return &LoginResult{User: user, Tokens: *tokens}, nil
}

func (s *Service) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	tokens, err := s.issuePair(user.ID)
	if err != nil {
		return nil, err
	}

	log.Printf("user_logged_in user_id=%d", user.ID)

	user.PasswordHash = ""
	return &LoginResult{User: user, Tokens: *tokens}, nil
}

// Refresh verifies the presented refresh token, re-checks that the subject
// user still exists, and issues a fresh access+refresh pair. The old
// refresh token is not invalidated: the design is stateless, so a leaked
// but unused token stays valid until its own expiry. Known weakness.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.authority.Verify(token.TierRefresh, refreshToken)
	if err != nil {
		log.Printf("refresh_rejected reason=%v", err)
		return nil, ErrInvalidRefreshToken
	}

	userID, err := strconv.ParseInt(claims.UserID, 10, 64)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}

	// A deleted user's refresh token must fail even before it expires.
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("refresh_rejected reason=user_gone user_id=%d", userID)
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return s.issuePair(userID)
}

// Logout denylists the presented access token until its natural expiry.
func (s *Service) Logout(jti string, expiresAt time.Time) {
	s.denylist.Add(jti, expiresAt)
	log.Printf("user_logged_out jti=%s", jti)
}

func (s *Service) CurrentUser(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	user.PasswordHash = ""
	return user, nil
}

func (s *Service) issuePair(userID int64) (*TokenPair, error) {
	subject := strconv.FormatInt(userID, 10)

	access, err := s.authority.Issue(token.TierAccess, subject)
	if err != nil {
		return nil, err
	}
	refresh, err := s.authority.Issue(token.TierRefresh, subject)
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
