package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/nexmeet/backend/internal/apperrors"
	"github.com/nexmeet/backend/internal/dtos"
	"github.com/nexmeet/backend/internal/models"
	"github.com/nexmeet/backend/internal/utils"
)

const testSecret = "test-secret"

func newAuthFixture() (*AuthService, *mockUserStore) {
	users := new(mockUserStore)
	svc := NewAuthService(users, testSecret, 15*time.Minute, 7*24*time.Hour)
	return svc, users
}

func TestRegister(t *testing.T) {
	svc, users := newAuthFixture()

	users.On("GetByEmail", mock.Anything, "alice@example.com").Return(nil, apperrors.ErrNotFound)
	users.On("Create", mock.Anything, mock.MatchedBy(func(u *models.User) bool {
		return u.Email == "alice@example.com" && u.PasswordHash != "hunter22"
	})).Return(nil)
	users.On("UpdateRefreshToken", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	resp, err := svc.Register(context.Background(), dtos.RegisterRequest{
		Name:     "Alice Example",
		Email:    "alice@example.com",
		Password: "hunter22",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)

	claims, err := utils.ParseAccessToken(resp.AccessToken, testSecret)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", claims.Email)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, users := newAuthFixture()
	existing := &models.User{ID: uuid.New(), Email: "alice@example.com"}

	users.On("GetByEmail", mock.Anything, "alice@example.com").Return(existing, nil)

	_, err := svc.Register(context.Background(), dtos.RegisterRequest{
		Name:     "Alice Example",
		Email:    "alice@example.com",
		Password: "hunter22",
	})
	assert.ErrorIs(t, err, apperrors.ErrInvalidState)
}

func TestLogin(t *testing.T) {
	svc, users := newAuthFixture()
	hash, err := utils.HashPassword("hunter22")
	require.NoError(t, err)
	user := &models.User{ID: uuid.New(), Name: "Alice Example", Email: "alice@example.com", PasswordHash: hash}

	users.On("GetByEmail", mock.Anything, user.Email).Return(user, nil)
	users.On("UpdateRefreshToken", mock.Anything, user.ID, mock.Anything).Return(nil)

	resp, err := svc.Login(context.Background(), dtos.LoginRequest{Email: user.Email, Password: "hunter22"})
	require.NoError(t, err)
	assert.Equal(t, user.ID.String(), resp.UserID)
	assert.NotEmpty(t, resp.AccessToken)
}

func TestLoginWrongPassword(t *testing.T) {
	svc, users := newAuthFixture()
	hash, err := utils.HashPassword("hunter22")
	require.NoError(t, err)
	user := &models.User{ID: uuid.New(), Email: "alice@example.com", PasswordHash: hash}

	users.On("GetByEmail", mock.Anything, user.Email).Return(user, nil)

	_, err = svc.Login(context.Background(), dtos.LoginRequest{Email: user.Email, Password: "wrong"})
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestRefresh(t *testing.T) {
	svc, users := newAuthFixture()
	token, err := utils.GenerateRefreshToken("alice@example.com", testSecret, time.Hour)
	require.NoError(t, err)
	user := &models.User{ID: uuid.New(), Email: "alice@example.com", RefreshToken: &token}

	users.On("GetByEmail", mock.Anything, user.Email).Return(user, nil)

	resp, err := svc.Refresh(context.Background(), token)
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, token, resp.RefreshToken)
}

func TestRefreshStaleToken(t *testing.T) {
	svc, users := newAuthFixture()
	stale, err := utils.GenerateRefreshToken("alice@example.com", testSecret, time.Hour)
	require.NoError(t, err)
	current, err := utils.GenerateRefreshToken("alice@example.com", testSecret, 2*time.Hour)
	require.NoError(t, err)
	user := &models.User{ID: uuid.New(), Email: "alice@example.com", RefreshToken: &current}

	users.On("GetByEmail", mock.Anything, user.Email).Return(user, nil)

	_, err = svc.Refresh(context.Background(), stale)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestRefreshGarbageToken(t *testing.T) {
	svc, _ := newAuthFixture()

	_, err := svc.Refresh(context.Background(), "not-a-jwt")
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}
