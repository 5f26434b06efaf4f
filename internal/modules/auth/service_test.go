package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"vidgate/internal/domain"
	"vidgate/internal/pkg/token"
)

// Mock User Repository implementing the interface
type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) Create(ctx context.Context, u *domain.User) error {
	args := m.Called(ctx, u)
	u.ID = 1
	return args.Error(0)
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func testAuthority() *token.Authority {
	return token.NewAuthority(
		token.Secrets{Access: "a-secret", Refresh: "r-secret", Playback: "p-secret", Internal: "i-secret"},
		token.TTLs{Access: 15 * time.Minute, Refresh: 168 * time.Hour, Playback: 5 * time.Minute, Internal: time.Minute},
	)
}

func TestService_Register_Success(t *testing.T) {
	userRepo := new(mockUserRepo)
	userRepo.On("ExistsByEmail", mock.Anything, "test@example.com").Return(false, nil)
	userRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

	authority := testAuthority()
	svc := NewService(userRepo, authority, NewDenylist())

	result, err := svc.Register(context.Background(), RegisterRequest{
		Name:     "Test User",
		Email:    "Test@Example.com",
		Password: "secret123",
	})
	require.NoError(t, err)
	assert.Equal(t, "test@example.com", result.User.Email)
	assert.Empty(t, result.User.PasswordHash)

	// Both tokens verify under their own tier and carry the new user id.
	accessClaims, err := authority.Verify(token.TierAccess, result.Tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "1", accessClaims.UserID)

	refreshClaims, err := authority.Verify(token.TierRefresh, result.Tokens.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "1", refreshClaims.UserID)

	userRepo.AssertExpectations(t)
}

func TestService_Register_DuplicateEmail(t *testing.T) {
	userRepo := new(mockUserRepo)
	userRepo.On("ExistsByEmail", mock.Anything, "taken@example.com").Return(true, nil)

	svc := NewService(userRepo, testAuthority(), NewDenylist())

	_, err := svc.Register(context.Background(), RegisterRequest{
		Name:     "Test",
		Email:    "taken@example.com",
		Password: "secret123",
	})
	assert.ErrorIs(t, err, ErrEmailAlreadyExists)
}

func TestService_Login_Success(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.DefaultCost)
	userRepo := new(mockUserRepo)
	userRepo.On("GetByEmail", mock.Anything, "test@example.com").Return(&domain.User{
		ID:           7,
		Email:        "test@example.com",
		PasswordHash: string(hash),
		Name:         "Test User",
	}, nil)

	svc := NewService(userRepo, testAuthority(), NewDenylist())

	result, err := svc.Login(context.Background(), LoginRequest{Email: "test@example.com", Password: "secret123"})
	require.NoError(t, err)
	assert.NotEmpty(t, result.Tokens.AccessToken)
	assert.NotEmpty(t, result.Tokens.RefreshToken)
	assert.Empty(t, result.User.PasswordHash)
}

func TestService_Login_WrongPassword(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.DefaultCost)
	userRepo := new(mockUserRepo)
	userRepo.On("GetByEmail", mock.Anything, "test@example.com").Return(&domain.User{
		ID:           7,
		Email:        "test@example.com",
		PasswordHash: string(hash),
	}, nil)

	svc := NewService(userRepo, testAuthority(), NewDenylist())

	_, err := svc.Login(context.Background(), LoginRequest{Email: "test@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestService_Login_UnknownUser(t *testing.T) {
	userRepo := new(mockUserRepo)
	userRepo.On("GetByEmail", mock.Anything, "nobody@example.com").Return(nil, gorm.ErrRecordNotFound)

	svc := NewService(userRepo, testAuthority(), NewDenylist())

	_, err := svc.Login(context.Background(), LoginRequest{Email: "nobody@example.com", Password: "secret123"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestService_Refresh_RotatesPair(t *testing.T) {
	userRepo := new(mockUserRepo)
	userRepo.On("GetByID", mock.Anything, int64(7)).Return(&domain.User{ID: 7, Email: "t@example.com"}, nil)

	authority := testAuthority()
	svc := NewService(userRepo, authority, NewDenylist())

	oldRefresh, err := authority.Issue(token.TierRefresh, "7")
	require.NoError(t, err)

	pair, err := svc.Refresh(context.Background(), oldRefresh)
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEqual(t, oldRefresh, pair.RefreshToken)

	claims, err := authority.Verify(token.TierRefresh, pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "7", claims.UserID)
}

func TestService_Refresh_DeletedUserFails(t *testing.T) {
	userRepo := new(mockUserRepo)
	userRepo.On("GetByID", mock.Anything, int64(7)).Return(nil, gorm.ErrRecordNotFound)

	authority := testAuthority()
	svc := NewService(userRepo, authority, NewDenylist())

	refresh, err := authority.Issue(token.TierRefresh, "7")
	require.NoError(t, err)

	_, err = svc.Refresh(context.Background(), refresh)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestService_Refresh_AccessTokenRejected(t *testing.T) {
	userRepo := new(mockUserRepo)
	authority := testAuthority()
	svc := NewService(userRepo, authority, NewDenylist())

	// An access token presented at the refresh endpoint must not rotate.
	access, err := authority.Issue(token.TierAccess, "7")
	require.NoError(t, err)

	_, err = svc.Refresh(context.Background(), access)
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)
	userRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestService_Logout_Denylists(t *testing.T) {
	denylist := NewDenylist()
	svc := NewService(new(mockUserRepo), testAuthority(), denylist)

	svc.Logout("some-jti", time.Now().Add(time.Hour))
	assert.True(t, denylist.Contains("some-jti"))
	assert.False(t, denylist.Contains("other-jti"))
}

func TestDenylist_ExpiredEntriesDropOut(t *testing.T) {
	denylist := NewDenylist()
	denylist.Add("stale", time.Now().Add(-time.Second))
	assert.False(t, denylist.Contains("stale"))
}
