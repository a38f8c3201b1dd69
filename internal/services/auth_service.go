package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/nexmeet/backend/internal/apperrors"
	"github.com/nexmeet/backend/internal/dtos"
	"github.com/nexmeet/backend/internal/models"
	"github.com/nexmeet/backend/internal/repositories"
	"github.com/nexmeet/backend/internal/utils"
)

// AuthService is the identity collaborator: it registers users,
// exchanges credentials for tokens and refreshes access tokens. The
// meeting engine only ever sees the (id, email) identity it derives
// from these tokens.
type AuthService struct {
	users UserStore

	jwtSecret       string
	accessTokenTTL  time.Duration
	refreshTokenTTL time.Duration
}

func NewAuthService(users UserStore, jwtSecret string, accessTTL, refreshTTL time.Duration) *AuthService {
	return &AuthService{
		users:           users,
		jwtSecret:       jwtSecret,
		accessTokenTTL:  accessTTL,
		refreshTokenTTL: refreshTTL,
	}
}

func (s *AuthService) Register(ctx context.Context, req dtos.RegisterRequest) (*dtos.AuthResponse, error) {
	if _, err := s.users.GetByEmail(ctx, req.Email); err == nil {
		return nil, fmt.Errorf("email already registered: %w", apperrors.ErrInvalidState)
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		ID:           uuid.New(),
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if repositories.IsUniqueViolation(err) {
			return nil, fmt.Errorf("email already registered: %w", apperrors.ErrInvalidState)
		}
		return nil, apperrors.Dependency("storage", err)
	}

	log.Info().Str("user_id", user.ID.String()).Msg("user registered")

	return s.issueTokens(ctx, user, "User registered successfully")
}

func (s *AuthService) Login(ctx context.Context, req dtos.LoginRequest) (*dtos.AuthResponse, error) {
	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, apperrors.ErrUnauthorized
	}
	if !utils.CheckPassword(user.PasswordHash, req.Password) {
		return nil, apperrors.ErrUnauthorized
	}

	return s.issueTokens(ctx, user, "Login successful")
}

// Refresh exchanges a valid refresh token for a fresh access token.
// The token must match the one last stored for the user; rotation on
// login invalidates older ones.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*dtos.AuthResponse, error) {
	claims, err := utils.ParseRefreshToken(refreshToken, s.jwtSecret)
	if err != nil {
		return nil, apperrors.ErrUnauthorized
	}

	user, err := s.users.GetByEmail(ctx, claims.Email)
	if err != nil {
		return nil, apperrors.ErrUnauthorized
	}
	if user.RefreshToken == nil || *user.RefreshToken != refreshToken {
		return nil, apperrors.ErrUnauthorized
	}

	accessToken, err := utils.GenerateAccessToken(user.ID, user.Email, s.jwtSecret, s.accessTokenTTL)
	if err != nil {
		return nil, err
	}

	return &dtos.AuthResponse{
		UserID:       user.ID.String(),
		Name:         user.Name,
		Email:        user.Email,
		Avatar:       user.Avatar,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		Message:      "Token refreshed",
	}, nil
}

func (s *AuthService) issueTokens(ctx context.Context, user *models.User, message string) (*dtos.AuthResponse, error) {
	accessToken, err := utils.GenerateAccessToken(user.ID, user.Email, s.jwtSecret, s.accessTokenTTL)
	if err != nil {
		return nil, err
	}
	refreshToken, err := utils.GenerateRefreshToken(user.Email, s.jwtSecret, s.refreshTokenTTL)
	if err != nil {
		return nil, err
	}

	if err := s.users.UpdateRefreshToken(ctx, user.ID, refreshToken); err != nil {
		return nil, apperrors.Dependency("storage", err)
	}

	return &dtos.AuthResponse{
		UserID:       user.ID.String(),
		Name:         user.Name,
		Email:        user.Email,
		Avatar:       user.Avatar,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		Message:      message,
	}, nil
}
