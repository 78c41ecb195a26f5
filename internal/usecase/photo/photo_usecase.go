package photo

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gdugdh24/profile-service/internal/domain"
	"github.com/gdugdh24/profile-service/internal/media/crop"
	"github.com/gdugdh24/profile-service/internal/repository"
	"github.com/gdugdh24/profile-service/internal/usecase/identity"
	"go.uber.org/zap"
)

// SelectionResponse describes a freshly selected image.
type SelectionResponse struct {
	SelectionID   string      `json:"selection_id"`
	State         string      `json:"state"`
	NaturalSize   crop.Size   `json:"natural_size"`
	DisplayedSize crop.Size   `json:"displayed_size"`
	Region        crop.Region `json:"region"`
}

// CommitResponse carries the stored thumbnail.
type CommitResponse struct {
	ImagePreview string `json:"image_preview"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
}

// UpdateRegionRequest is a crop region sent by the client. An empty unit
// means pixels.
type UpdateRegionRequest struct {
	Unit   crop.Unit `json:"unit" binding:"omitempty,oneof=px %"`
	X      float64   `json:"x"`
	Y      float64   `json:"y"`
	Width  float64   `json:"width"`
	Height float64   `json:"height"`
}

// Limits bound the memory held by pending crops.
type Limits struct {
	// IdleTTL is how long an untouched crop is kept. Zero disables expiry.
	IdleTTL time.Duration
	// MaxSessions caps concurrent pending crops. Zero means unbounded.
	MaxSessions int
	// MaxPixels caps decoded source and output images.
	MaxPixels int
}

func DefaultLimits() Limits {
	return Limits{
		IdleTTL:     15 * time.Minute,
		MaxSessions: 1000,
		MaxPixels:   crop.DefaultMaxPixels,
	}
}

type session struct {
	mu       sync.Mutex
	pipeline *crop.Pipeline
	lastUsed atomic.Int64
}

func (s *session) touch(now time.Time) { s.lastUsed.Store(now.UnixNano()) }

func (s *session) idleSince(now time.Time) time.Duration {
	return now.Sub(time.Unix(0, s.lastUsed.Load()))
}

// PhotoUseCase keeps one crop pipeline per access token. The committed
// preview is stored under the user key the profile API verified.
type PhotoUseCase struct {
	mu        sync.Mutex
	sessions  map[string]*session
	surfaces  crop.SurfaceFactory
	overrides repository.OverrideRepository
	verifier  *identity.Verifier
	limits    Limits
	now       func() time.Time
	logger    *zap.Logger
}

func NewPhotoUseCase(
	surfaces crop.SurfaceFactory,
	overrides repository.OverrideRepository,
	verifier *identity.Verifier,
	limits Limits,
	logger *zap.Logger,
) *PhotoUseCase {
	return &PhotoUseCase{
		sessions:  make(map[string]*session),
		surfaces:  surfaces,
		overrides: overrides,
		verifier:  verifier,
		limits:    limits,
		now:       time.Now,
		logger:    logger.Named("photo"),
	}
}

// Select starts a crop over file, replacing any pending selection of the token.
func (uc *PhotoUseCase) Select(ctx context.Context, caller domain.Session, file crop.File, displayed crop.Size) (*SelectionResponse, error) {
	if _, err := uc.verifier.Verify(ctx, caller); err != nil {
		return nil, fmt.Errorf("failed to select photo: %w", err)
	}

	key := caller.TokenKey()
	s, err := uc.acquire(key, true)
	if err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	region, err := s.pipeline.SelectImage(file, displayed)
	if err != nil {
		uc.drop(key, s)
		return nil, err
	}

	return &SelectionResponse{
		SelectionID:   s.pipeline.SelectionID().String(),
		State:         s.pipeline.State().String(),
		NaturalSize:   s.pipeline.NaturalSize(),
		DisplayedSize: s.pipeline.DisplayedSize(),
		Region:        region,
	}, nil
}

func (uc *PhotoUseCase) UpdateRegion(caller domain.Session, req UpdateRegionRequest) (*crop.Region, error) {
	s, err := uc.acquire(caller.TokenKey(), false)
	if err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	region := crop.Region{Unit: req.Unit, X: req.X, Y: req.Y, Width: req.Width, Height: req.Height}
	if err := s.pipeline.UpdateRegion(region); err != nil {
		return nil, err
	}
	current, _ := s.pipeline.Region()
	return &current, nil
}

// Commit renders the thumbnail and stores it as the user's image preview.
func (uc *PhotoUseCase) Commit(ctx context.Context, caller domain.Session) (*CommitResponse, error) {
	id, err := uc.verifier.Verify(ctx, caller)
	if err != nil {
		return nil, fmt.Errorf("failed to commit photo: %w", err)
	}
	userKey := id.Session.UserKey

	key := caller.TokenKey()
	s, err := uc.acquire(key, false)
	if err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	thumb, err := s.pipeline.Commit(ctx)
	if err != nil {
		return nil, err
	}
	uc.drop(key, s)

	dataURL := thumb.DataURL()
	if _, err := uc.overrides.Patch(ctx, userKey, domain.OverridePatch{ImagePreview: &dataURL}); err != nil {
		return nil, fmt.Errorf("failed to store image preview: %w", err)
	}

	uc.logger.Info("profile photo updated",
		zap.String("user_key", userKey),
		zap.Int("width", thumb.Width),
		zap.Int("height", thumb.Height),
	)
	return &CommitResponse{ImagePreview: dataURL, Width: thumb.Width, Height: thumb.Height}, nil
}

// Cancel abandons the caller's pending crop. It is a no-op when none exists.
func (uc *PhotoUseCase) Cancel(caller domain.Session) {
	uc.Discard(caller.TokenKey())
}

// Discard releases whatever is pending under tokenKey.
func (uc *PhotoUseCase) Discard(tokenKey string) {
	s, err := uc.acquire(tokenKey, false)
	if err != nil {
		return
	}
	defer s.mu.Unlock()

	s.pipeline.Cancel()
	uc.drop(tokenKey, s)
}

// Pending reports whether tokenKey has an active crop.
func (uc *PhotoUseCase) Pending(tokenKey string) bool {
	s, err := uc.acquire(tokenKey, false)
	if err != nil {
		return false
	}
	defer s.mu.Unlock()
	return s.pipeline.State() == crop.StateCropping
}

// Sweep releases crops idle for longer than the configured TTL and returns
// how many were dropped. Crops in use are skipped.
func (uc *PhotoUseCase) Sweep() int {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return uc.sweepLocked()
}

// Run sweeps every interval until ctx is done.
func (uc *PhotoUseCase) Run(ctx context.Context, interval time.Duration) {
	if uc.limits.IdleTTL <= 0 || interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := uc.Sweep(); n > 0 {
				uc.logger.Debug("expired idle photo edits", zap.Int("count", n))
			}
		}
	}
}

func (uc *PhotoUseCase) sweepLocked() int {
	if uc.limits.IdleTTL <= 0 {
		return 0
	}
	now := uc.now()
	dropped := 0
	for key, s := range uc.sessions {
		if s.idleSince(now) <= uc.limits.IdleTTL {
			continue
		}
		if !s.mu.TryLock() {
			continue
		}
		delete(uc.sessions, key)
		uc.close(key, s)
		s.mu.Unlock()
		dropped++
	}
	return dropped
}

// acquire returns the session for key locked. A session dropped while waiting
// for its lock is skipped.
func (uc *PhotoUseCase) acquire(key string, create bool) (*session, error) {
	for {
		s, err := uc.sessionFor(key, create)
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		uc.mu.Lock()
		current := uc.sessions[key] == s
		uc.mu.Unlock()
		if current {
			s.touch(uc.now())
			return s, nil
		}
		s.mu.Unlock()
	}
}

func (uc *PhotoUseCase) sessionFor(key string, create bool) (*session, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	if s, ok := uc.sessions[key]; ok {
		return s, nil
	}
	if !create {
		return nil, domain.ErrNoActiveCrop
	}

	if limit := uc.limits.MaxSessions; limit > 0 && len(uc.sessions) >= limit {
		uc.sweepLocked()
		if len(uc.sessions) >= limit {
			return nil, domain.ErrTooManyEdits
		}
	}

	s := &session{pipeline: crop.NewPipeline(
		uc.surfaces,
		uc.logger.With(zap.String("token_key", key)),
		crop.WithMaxPixels(uc.limits.MaxPixels),
	)}
	s.touch(uc.now())
	uc.sessions[key] = s
	return s, nil
}

// drop forgets s if it is still the session for key. Callers hold s.mu.
func (uc *PhotoUseCase) drop(key string, s *session) {
	uc.mu.Lock()
	if uc.sessions[key] == s {
		delete(uc.sessions, key)
	}
	uc.mu.Unlock()

	uc.close(key, s)
}

func (uc *PhotoUseCase) close(key string, s *session) {
	if err := s.pipeline.Close(); err != nil {
		uc.logger.Warn("failed to release source image", zap.String("token_key", key), zap.Error(err))
	}
}
