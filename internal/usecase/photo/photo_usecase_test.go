package photo

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gdugdh24/profile-service/internal/domain"
	"github.com/gdugdh24/profile-service/internal/infrastructure/raster"
	"github.com/gdugdh24/profile-service/internal/media/crop"
	"github.com/gdugdh24/profile-service/internal/repository"
	"github.com/gdugdh24/profile-service/internal/repository/memory"
	"github.com/gdugdh24/profile-service/internal/usecase/identity"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type upload struct {
	mediaType string
	data      []byte

	mu   sync.Mutex
	open int
}

func (u *upload) MediaType() string { return u.mediaType }
func (u *upload) Size() int64       { return int64(len(u.data)) }

func (u *upload) Open() (io.ReadCloser, error) {
	u.mu.Lock()
	u.open++
	u.mu.Unlock()
	return &uploadReader{Reader: bytes.NewReader(u.data), u: u}, nil
}

func (u *upload) handles() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.open
}

type uploadReader struct {
	*bytes.Reader
	u *upload
}

func (r *uploadReader) Close() error {
	r.u.mu.Lock()
	r.u.open--
	r.u.mu.Unlock()
	return nil
}

func pngUpload(t *testing.T, w, h int) *upload {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))))
	return &upload{mediaType: "image/png", data: buf.Bytes()}
}

// tokenAPI resolves tokens to profiles; unknown tokens are rejected.
type tokenAPI struct {
	mu       sync.Mutex
	profiles map[string]domain.ServiceProfile
	fallback bool
}

func (f *tokenAPI) GetProfile(_ context.Context, token string) (*domain.ServiceProfile, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fallback {
		return &domain.ServiceProfile{}, true, nil
	}
	p, ok := f.profiles[token]
	if !ok {
		return nil, false, &domain.UpstreamError{StatusCode: 401}
	}
	return &p, false, nil
}

func (f *tokenAPI) revoke(token string) {
	f.mu.Lock()
	delete(f.profiles, token)
	f.mu.Unlock()
}

func (f *tokenAPI) UpdateProfile(context.Context, string, domain.ServiceProfileUpdate) (string, error) {
	return "", errors.New("not used")
}

func (f *tokenAPI) CreateProfile(context.Context, string, *domain.ServiceProfile) (string, error) {
	return "", errors.New("not used")
}

func (f *tokenAPI) Login(context.Context, domain.LoginRequest) (*domain.AuthResult, error) {
	return nil, errors.New("not used")
}

func (f *tokenAPI) Register(context.Context, domain.RegisterRequest) (string, error) {
	return "", errors.New("not used")
}

const annKey = "email:ann@example.com"

var (
	ann = domain.Session{Token: "tok-ann"}
	bo  = domain.Session{Token: "tok-bo"}
)

func newAPI() *tokenAPI {
	return &tokenAPI{profiles: map[string]domain.ServiceProfile{
		ann.Token: {Name: "Ann", Email: "ann@example.com"},
		bo.Token:  {Name: "Bo", Email: "bo@example.com"},
	}}
}

func newUseCaseWith(api *tokenAPI, limits Limits) (*PhotoUseCase, repository.OverrideRepository) {
	repo := memory.NewOverrideRepository()
	return NewPhotoUseCase(raster.NewFactory(), repo, identity.NewVerifier(api), limits, zap.NewNop()), repo
}

func newUseCase() (*PhotoUseCase, repository.OverrideRepository) {
	return newUseCaseWith(newAPI(), DefaultLimits())
}

func strPtr(s string) *string { return &s }

func TestSelectCommit_StoresPreview(t *testing.T) {
	ctx := context.Background()
	uc, repo := newUseCase()
	_, err := repo.Patch(ctx, annKey, domain.OverridePatch{About: strPtr("keep me")})
	require.NoError(t, err)

	file := pngUpload(t, 400, 200)
	sel, err := uc.Select(ctx, ann, file, crop.Size{Width: 200, Height: 100})
	require.NoError(t, err)
	require.Equal(t, "cropping", sel.State)
	require.Equal(t, crop.DefaultRegion(), sel.Region)
	require.Equal(t, crop.Size{Width: 400, Height: 200}, sel.NaturalSize)
	require.NotEmpty(t, sel.SelectionID)
	require.True(t, uc.Pending(ann.TokenKey()))

	region, err := uc.UpdateRegion(ann, UpdateRegionRequest{X: 10, Y: 10, Width: 50, Height: 40})
	require.NoError(t, err)
	require.Equal(t, crop.UnitPixel, region.Unit)

	res, err := uc.Commit(ctx, ann)
	require.NoError(t, err)
	require.Equal(t, 50, res.Width)
	require.Equal(t, 40, res.Height)
	require.True(t, strings.HasPrefix(res.ImagePreview, "data:image/jpeg;base64,"))
	require.False(t, uc.Pending(ann.TokenKey()))
	require.Zero(t, file.handles())

	stored, err := repo.Get(ctx, annKey)
	require.NoError(t, err)
	require.Equal(t, res.ImagePreview, stored.ImagePreview)
	require.Equal(t, "keep me", stored.About)

	_, err = uc.Commit(ctx, ann)
	require.ErrorIs(t, err, domain.ErrNoActiveCrop)
}

func TestSelect_ReplacesPendingSelection(t *testing.T) {
	ctx := context.Background()
	uc, _ := newUseCase()

	first := pngUpload(t, 100, 100)
	_, err := uc.Select(ctx, ann, first, crop.Size{})
	require.NoError(t, err)
	require.Equal(t, 1, first.handles())

	second := pngUpload(t, 50, 50)
	_, err = uc.Select(ctx, ann, second, crop.Size{})
	require.NoError(t, err)
	require.Zero(t, first.handles())
	require.Equal(t, 1, second.handles())

	uc.Discard(ann.TokenKey())
	require.Zero(t, second.handles())
}

func TestSelect_InvalidFileLeavesNothingPending(t *testing.T) {
	ctx := context.Background()
	uc, _ := newUseCase()

	_, err := uc.Select(ctx, ann, &upload{mediaType: "text/plain", data: []byte("hi")}, crop.Size{})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	require.False(t, uc.Pending(ann.TokenKey()))

	_, err = uc.UpdateRegion(ann, UpdateRegionRequest{Width: 1, Height: 1})
	require.ErrorIs(t, err, domain.ErrNoActiveCrop)
}

func TestSelect_RejectedTokenAllocatesNothing(t *testing.T) {
	ctx := context.Background()
	uc, _ := newUseCase()
	stranger := domain.Session{Token: "forged"}

	file := pngUpload(t, 40, 40)
	_, err := uc.Select(ctx, stranger, file, crop.Size{})
	require.ErrorIs(t, err, domain.ErrUnauthorized)
	require.Zero(t, file.handles())
	require.False(t, uc.Pending(stranger.TokenKey()))
}

func TestSelect_ProfileAPIUnavailable(t *testing.T) {
	api := newAPI()
	api.fallback = true
	uc, _ := newUseCaseWith(api, DefaultLimits())

	_, err := uc.Select(context.Background(), ann, pngUpload(t, 40, 40), crop.Size{})
	require.ErrorIs(t, err, domain.ErrAPIUnavailable)
}

func TestCommit_RevokedTokenStoresNothing(t *testing.T) {
	ctx := context.Background()
	api := newAPI()
	uc, repo := newUseCaseWith(api, DefaultLimits())

	_, err := uc.Select(ctx, ann, pngUpload(t, 40, 40), crop.Size{})
	require.NoError(t, err)

	api.revoke(ann.Token)
	_, err = uc.Commit(ctx, ann)
	require.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = repo.Get(ctx, annKey)
	require.ErrorIs(t, err, domain.ErrOverrideNotFound)
	require.True(t, uc.Pending(ann.TokenKey()))
}

func TestSelect_MaxPixels(t *testing.T) {
	uc, _ := newUseCaseWith(newAPI(), Limits{MaxPixels: 100})

	file := pngUpload(t, 20, 20)
	_, err := uc.Select(context.Background(), ann, file, crop.Size{})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	require.Zero(t, file.handles())
	require.False(t, uc.Pending(ann.TokenKey()))
}

func TestCancel(t *testing.T) {
	ctx := context.Background()
	uc, repo := newUseCase()

	file := pngUpload(t, 60, 60)
	_, err := uc.Select(ctx, ann, file, crop.Size{})
	require.NoError(t, err)

	uc.Cancel(ann)
	uc.Cancel(ann)
	require.False(t, uc.Pending(ann.TokenKey()))
	require.Zero(t, file.handles())

	_, err = repo.Get(ctx, annKey)
	require.ErrorIs(t, err, domain.ErrOverrideNotFound)
}

func TestSessionsAreIsolatedPerToken(t *testing.T) {
	ctx := context.Background()
	uc, _ := newUseCase()

	_, err := uc.Select(ctx, ann, pngUpload(t, 20, 20), crop.Size{})
	require.NoError(t, err)
	_, err = uc.Select(ctx, bo, pngUpload(t, 20, 20), crop.Size{})
	require.NoError(t, err)

	uc.Cancel(ann)
	require.False(t, uc.Pending(ann.TokenKey()))
	require.True(t, uc.Pending(bo.TokenKey()))
}

func TestSweep_DropsIdleCrops(t *testing.T) {
	ctx := context.Background()
	uc, _ := newUseCaseWith(newAPI(), Limits{IdleTTL: time.Minute})
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	uc.now = func() time.Time { return now }

	idle := pngUpload(t, 20, 20)
	_, err := uc.Select(ctx, ann, idle, crop.Size{})
	require.NoError(t, err)

	now = now.Add(50 * time.Second)
	fresh := pngUpload(t, 20, 20)
	_, err = uc.Select(ctx, bo, fresh, crop.Size{})
	require.NoError(t, err)

	now = now.Add(20 * time.Second)
	require.Equal(t, 1, uc.Sweep())
	require.Zero(t, idle.handles())
	require.Equal(t, 1, fresh.handles())
	require.True(t, uc.Pending(bo.TokenKey()))

	_, err = uc.UpdateRegion(ann, UpdateRegionRequest{Width: 1, Height: 1})
	require.ErrorIs(t, err, domain.ErrNoActiveCrop)
}

func TestSelect_SessionCap(t *testing.T) {
	ctx := context.Background()
	api := newAPI()
	api.profiles["tok-cy"] = domain.ServiceProfile{Email: "cy@example.com"}
	uc, _ := newUseCaseWith(api, Limits{IdleTTL: time.Minute, MaxSessions: 2})
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	uc.now = func() time.Time { return now }
	cy := domain.Session{Token: "tok-cy"}

	first := pngUpload(t, 20, 20)
	_, err := uc.Select(ctx, ann, first, crop.Size{})
	require.NoError(t, err)
	_, err = uc.Select(ctx, bo, pngUpload(t, 20, 20), crop.Size{})
	require.NoError(t, err)

	_, err = uc.Select(ctx, cy, pngUpload(t, 20, 20), crop.Size{})
	require.ErrorIs(t, err, domain.ErrTooManyEdits)

	// an existing crop may still be replaced at the cap
	_, err = uc.Select(ctx, bo, pngUpload(t, 20, 20), crop.Size{})
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, err = uc.UpdateRegion(bo, UpdateRegionRequest{Width: 5, Height: 5})
	require.NoError(t, err)

	_, err = uc.Select(ctx, cy, pngUpload(t, 20, 20), crop.Size{})
	require.NoError(t, err)
	require.Zero(t, first.handles())
	require.False(t, uc.Pending(ann.TokenKey()))
	require.True(t, uc.Pending(bo.TokenKey()))
}

func TestRun_StopsWithContext(t *testing.T) {
	uc, _ := newUseCaseWith(newAPI(), Limits{IdleTTL: time.Millisecond})
	ctx, cancel := context.WithCancel(context.Background())

	file := pngUpload(t, 20, 20)
	_, err := uc.Select(context.Background(), ann, file, crop.Size{})
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		uc.Run(ctx, time.Millisecond)
		close(done)
	}()

	require.Eventually(t, func() bool { return file.handles() == 0 }, time.Second, 5*time.Millisecond)
	cancel()
	require.Eventually(t, func() bool {
		select {
		case <-done:
			return true
		default:
			return false
		}
	}, time.Second, 5*time.Millisecond)
}
