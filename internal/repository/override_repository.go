package repository

import (
	"context"

	"github.com/gdugdh24/profile-service/internal/domain"
)

// OverrideRepository stores profile fields the remote API does not keep.
// Patch writes only the fields it is given, so concurrent patches of
// different fields never overwrite each other.
type OverrideRepository interface {
	Get(ctx context.Context, userKey string) (*domain.ProfileOverride, error)
	Patch(ctx context.Context, userKey string, patch domain.OverridePatch) (*domain.ProfileOverride, error)
	Delete(ctx context.Context, userKey string) error
}

// ProfileAPI is the remote profile service.
type ProfileAPI interface {
	GetProfile(ctx context.Context, token string) (*domain.ServiceProfile, bool, error)
	UpdateProfile(ctx context.Context, token string, update domain.ServiceProfileUpdate) (string, error)
	CreateProfile(ctx context.Context, token string, profile *domain.ServiceProfile) (string, error)
	Login(ctx context.Context, req domain.LoginRequest) (*domain.AuthResult, error)
	Register(ctx context.Context, req domain.RegisterRequest) (string, error)
}
