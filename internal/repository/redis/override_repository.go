package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/gdugdh24/profile-service/internal/domain"
	"github.com/gdugdh24/profile-service/internal/repository"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "profile_override:"

const (
	fieldGender       = "gender"
	fieldAbout        = "about"
	fieldImagePreview = "image_preview"
	fieldUpdatedAt    = "updated_at"
)

type overrideRepository struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewOverrideRepository stores one hash per user. A zero ttl keeps overrides
// until they are deleted; otherwise every patch refreshes the expiry.
func NewOverrideRepository(client redis.UniversalClient, ttl time.Duration) repository.OverrideRepository {
	return &overrideRepository{client: client, ttl: ttl}
}

func (r *overrideRepository) Get(ctx context.Context, userKey string) (*domain.ProfileOverride, error) {
	fields, err := r.client.HGetAll(ctx, keyPrefix+userKey).Result()
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, domain.ErrOverrideNotFound
	}
	return decodeOverride(userKey, fields)
}

func (r *overrideRepository) Patch(ctx context.Context, userKey string, patch domain.OverridePatch) (*domain.ProfileOverride, error) {
	key := keyPrefix + userKey

	values := []any{fieldUpdatedAt, time.Now().UTC().Format(time.RFC3339Nano)}
	if patch.Gender != nil {
		values = append(values, fieldGender, *patch.Gender)
	}
	if patch.About != nil {
		values = append(values, fieldAbout, *patch.About)
	}
	if patch.ImagePreview != nil {
		values = append(values, fieldImagePreview, *patch.ImagePreview)
	}

	var all *redis.MapStringStringCmd
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, values...)
		if r.ttl > 0 {
			pipe.Expire(ctx, key, r.ttl)
		}
		all = pipe.HGetAll(ctx, key)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return decodeOverride(userKey, all.Val())
}

func (r *overrideRepository) Delete(ctx context.Context, userKey string) error {
	n, err := r.client.Del(ctx, keyPrefix+userKey).Result()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrOverrideNotFound
	}
	return nil
}

func decodeOverride(userKey string, fields map[string]string) (*domain.ProfileOverride, error) {
	override := &domain.ProfileOverride{
		UserKey:      userKey,
		Gender:       fields[fieldGender],
		About:        fields[fieldAbout],
		ImagePreview: fields[fieldImagePreview],
	}
	if raw := fields[fieldUpdatedAt]; raw != "" {
		ts, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return nil, fmt.Errorf("failed to decode override timestamp for %s: %w", userKey, err)
		}
		override.UpdatedAt = ts
	}
	return override, nil
}
