package memory

import (
	"context"
	"sync"
	"time"

	"github.com/gdugdh24/profile-service/internal/domain"
	"github.com/gdugdh24/profile-service/internal/repository"
)

type overrideRepository struct {
	mu        sync.RWMutex
	overrides map[string]domain.ProfileOverride
}

// NewOverrideRepository keeps overrides in process memory.
func NewOverrideRepository() repository.OverrideRepository {
	return &overrideRepository{overrides: make(map[string]domain.ProfileOverride)}
}

func (r *overrideRepository) Get(_ context.Context, userKey string) (*domain.ProfileOverride, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	override, ok := r.overrides[userKey]
	if !ok {
		return nil, domain.ErrOverrideNotFound
	}
	return &override, nil
}

func (r *overrideRepository) Patch(_ context.Context, userKey string, patch domain.OverridePatch) (*domain.ProfileOverride, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	override := r.overrides[userKey]
	override.UserKey = userKey
	if patch.Gender != nil {
		override.Gender = *patch.Gender
	}
	if patch.About != nil {
		override.About = *patch.About
	}
	if patch.ImagePreview != nil {
		override.ImagePreview = *patch.ImagePreview
	}
	override.UpdatedAt = time.Now().UTC()
	r.overrides[userKey] = override
	return &override, nil
}

func (r *overrideRepository) Delete(_ context.Context, userKey string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.overrides[userKey]; !ok {
		return domain.ErrOverrideNotFound
	}
	delete(r.overrides, userKey)
	return nil
}
