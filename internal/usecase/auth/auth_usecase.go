package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gdugdh24/profile-service/internal/domain"
	"github.com/gdugdh24/profile-service/internal/repository"
	"github.com/gdugdh24/profile-service/internal/usecase/identity"
	"go.uber.org/zap"
)

// PhotoDiscarder drops the pending photo crop started with a token.
type PhotoDiscarder interface {
	Discard(tokenKey string)
}

type AuthUseCase struct {
	api       repository.ProfileAPI
	overrides repository.OverrideRepository
	photos    PhotoDiscarder
	verifier  *identity.Verifier
	logger    *zap.Logger
}

func NewAuthUseCase(
	api repository.ProfileAPI,
	overrides repository.OverrideRepository,
	photos PhotoDiscarder,
	verifier *identity.Verifier,
	logger *zap.Logger,
) *AuthUseCase {
	return &AuthUseCase{
		api:       api,
		overrides: overrides,
		photos:    photos,
		verifier:  verifier,
		logger:    logger.Named("auth"),
	}
}

// RegisterRequest represents registration request
type RegisterRequest struct {
	Email           string `json:"email" binding:"required,email"`
	Username        string `json:"username" binding:"required,min=3,max=50"`
	Password        string `json:"password" binding:"required,min=6,max=128"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
}

// LoginRequest represents login request. One of email or username is required.
type LoginRequest struct {
	Email    string `json:"email" binding:"omitempty,email"`
	Username string `json:"username" binding:"omitempty,max=50"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse represents login response
type LoginResponse struct {
	Message     string `json:"message"`
	AccessToken string `json:"access_token"`
	Fallback    bool   `json:"fallback,omitempty"`
}

func (uc *AuthUseCase) Register(ctx context.Context, req *RegisterRequest) (string, error) {
	if req.Password != req.ConfirmPassword {
		return "", domain.ErrPasswordMismatch
	}

	msg, err := uc.api.Register(ctx, domain.RegisterRequest{
		Email:    strings.TrimSpace(req.Email),
		Username: strings.TrimSpace(req.Username),
		Password: req.Password,
	})
	if err != nil {
		return "", fmt.Errorf("failed to register: %w", err)
	}
	return msg, nil
}

func (uc *AuthUseCase) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	email := strings.TrimSpace(req.Email)
	username := strings.TrimSpace(req.Username)
	if email == "" && username == "" {
		return nil, fmt.Errorf("%w: email or username is required", domain.ErrInvalidInput)
	}

	result, err := uc.api.Login(ctx, domain.LoginRequest{Email: email, Username: username, Password: req.Password})
	if err != nil {
		return nil, fmt.Errorf("failed to login: %w", err)
	}

	return &LoginResponse{
		Message:     result.Message,
		AccessToken: result.AccessToken,
		Fallback:    result.Fallback,
	}, nil
}

// Session wraps the bearer token. It carries no user key until the profile
// API has accepted the token.
func (uc *AuthUseCase) Session(token string) (domain.Session, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return domain.Session{}, domain.ErrUnauthorized
	}
	return domain.Session{Token: token}, nil
}

// Logout drops the token's pending crop and, once the profile API has
// confirmed who the caller is, clears their local profile state.
func (uc *AuthUseCase) Logout(ctx context.Context, session domain.Session) error {
	uc.photos.Discard(session.TokenKey())

	id, err := uc.verifier.Verify(ctx, session)
	if err != nil {
		return fmt.Errorf("failed to logout: %w", err)
	}

	if err := uc.overrides.Delete(ctx, id.Session.UserKey); err != nil && !errors.Is(err, domain.ErrOverrideNotFound) {
		return fmt.Errorf("failed to clear profile overrides: %w", err)
	}

	uc.logger.Info("user logged out", zap.String("user_key", id.Session.UserKey))
	return nil
}
