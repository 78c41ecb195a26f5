package profile

import (
	"context"
	"errors"
	"testing"

	"github.com/gdugdh24/profile-service/internal/domain"
	"github.com/gdugdh24/profile-service/internal/infrastructure/gemini"
	"github.com/gdugdh24/profile-service/internal/repository"
	"github.com/gdugdh24/profile-service/internal/repository/memory"
	"github.com/gdugdh24/profile-service/internal/usecase/identity"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeAPI keeps one profile in memory and records updates. When token is
// set, any other token is rejected.
type fakeAPI struct {
	profile  domain.ServiceProfile
	fallback bool
	getErr   error
	token    string
	updates  []domain.ServiceProfileUpdate
	created  *domain.ServiceProfile
}

func (f *fakeAPI) GetProfile(_ context.Context, token string) (*domain.ServiceProfile, bool, error) {
	if f.getErr != nil {
		return nil, false, f.getErr
	}
	if f.token != "" && token != f.token {
		return nil, false, &domain.UpstreamError{StatusCode: 401}
	}
	p := f.profile
	return &p, f.fallback, nil
}

func (f *fakeAPI) UpdateProfile(_ context.Context, token string, u domain.ServiceProfileUpdate) (string, error) {
	if f.token != "" && token != f.token {
		return "", &domain.UpstreamError{StatusCode: 401}
	}
	f.updates = append(f.updates, u)
	if u.Name != nil {
		f.profile.Name = *u.Name
	}
	if u.Interests != nil {
		f.profile.Interests = *u.Interests
	}
	return "Profile updated", nil
}

func (f *fakeAPI) CreateProfile(_ context.Context, _ string, p *domain.ServiceProfile) (string, error) {
	f.created = p
	return "Profile created", nil
}

func (f *fakeAPI) Login(context.Context, domain.LoginRequest) (*domain.AuthResult, error) {
	return nil, errors.New("not used")
}

func (f *fakeAPI) Register(context.Context, domain.RegisterRequest) (string, error) {
	return "", errors.New("not used")
}

type fakeSuggester struct {
	in gemini.AboutInput
}

func (f *fakeSuggester) SuggestAbout(_ context.Context, in gemini.AboutInput) ([]string, error) {
	f.in = in
	return []string{"generated"}, nil
}

const userKey = "email:ann@example.com"

var session = domain.Session{Token: "tok"}

func newUseCase(api *fakeAPI, suggester AboutSuggester) (*ProfileUseCase, repository.OverrideRepository) {
	repo := memory.NewOverrideRepository()
	return NewProfileUseCase(api, repo, identity.NewVerifier(api), suggester, zap.NewNop()), repo
}

func sampleProfile() domain.ServiceProfile {
	return domain.ServiceProfile{
		Name:      "Ann Lee",
		Birthday:  "1990-03-21",
		Height:    170,
		Weight:    60,
		Interests: []string{"Music", "Knitting", "Music"},
		Gender:    "Female",
		Email:     "Ann@Example.com",
	}
}

func strPtr(s string) *string { return &s }

func TestGetMyProfile(t *testing.T) {
	ctx := context.Background()
	uc, repo := newUseCase(&fakeAPI{profile: sampleProfile()}, nil)

	view, err := uc.GetMyProfile(ctx, session)
	require.NoError(t, err)
	require.Equal(t, domain.SignAries, view.Horoscope)
	require.Equal(t, domain.AnimalHorse, view.Zodiac)
	require.Equal(t, []string{"Music", "Knitting"}, view.Interests)
	require.Len(t, view.InterestTags, 2)
	require.True(t, view.InterestTags[0].Known)
	require.False(t, view.InterestTags[1].Known)
	require.Equal(t, "AL", view.Placeholder.Initials)
	require.Nil(t, view.ImagePreview)

	_, err = repo.Patch(ctx, userKey, domain.OverridePatch{Gender: strPtr("Male"), ImagePreview: strPtr("data:image/jpeg;base64,AA==")})
	require.NoError(t, err)
	view, err = uc.GetMyProfile(ctx, session)
	require.NoError(t, err)
	require.Equal(t, "Male", view.Gender)
	require.NotNil(t, view.ImagePreview)
}

func TestGetMyProfile_FallbackSkipsOverrides(t *testing.T) {
	ctx := context.Background()
	uc, repo := newUseCase(&fakeAPI{profile: sampleProfile(), fallback: true}, nil)
	_, err := repo.Patch(ctx, userKey, domain.OverridePatch{About: strPtr("private")})
	require.NoError(t, err)
	_, err = repo.Patch(ctx, session.TokenKey(), domain.OverridePatch{About: strPtr("private")})
	require.NoError(t, err)

	view, err := uc.GetMyProfile(ctx, session)
	require.NoError(t, err)
	require.True(t, view.Fallback)
	require.Empty(t, view.About)
}

func TestGetMyProfile_Unauthorized(t *testing.T) {
	uc, _ := newUseCase(&fakeAPI{getErr: domain.ErrUnauthorized}, nil)

	_, err := uc.GetMyProfile(context.Background(), session)
	require.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestUpdateProfile_SplitsFields(t *testing.T) {
	ctx := context.Background()
	api := &fakeAPI{profile: sampleProfile()}
	uc, repo := newUseCase(api, nil)

	view, err := uc.UpdateProfile(ctx, session, &UpdateProfileRequest{
		Name:  strPtr("  Bo  "),
		About: strPtr(" hello "),
	})
	require.NoError(t, err)
	require.Len(t, api.updates, 1)
	require.Equal(t, "Bo", *api.updates[0].Name)
	require.Nil(t, api.updates[0].Interests)
	require.Equal(t, "Bo", view.Name)
	require.Equal(t, "hello", view.About)

	stored, err := repo.Get(ctx, userKey)
	require.NoError(t, err)
	require.Equal(t, "hello", stored.About)
}

func TestUpdateProfile_ForgedTokenWritesNothing(t *testing.T) {
	ctx := context.Background()
	victim, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"id": "42"}).SignedString([]byte("server-secret"))
	require.NoError(t, err)
	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"id": "42"}).SignedString([]byte("attacker-secret"))
	require.NoError(t, err)

	profile := sampleProfile()
	profile.Email = ""
	api := &fakeAPI{profile: profile, token: victim}
	uc, repo := newUseCase(api, nil)

	_, err = uc.UpdateProfile(ctx, domain.Session{Token: victim}, &UpdateProfileRequest{About: strPtr("mine")})
	require.NoError(t, err)
	_, err = repo.Get(ctx, "id:42")
	require.NoError(t, err)

	_, err = uc.UpdateProfile(ctx, domain.Session{Token: forged}, &UpdateProfileRequest{
		About: strPtr("pwned"),
		Name:  strPtr("Mallory"),
	})
	require.ErrorIs(t, err, domain.ErrUnauthorized)
	require.Empty(t, api.updates)

	got, err := repo.Get(ctx, "id:42")
	require.NoError(t, err)
	require.Equal(t, "mine", got.About)

	_, err = repo.Get(ctx, domain.Session{Token: forged}.TokenKey())
	require.ErrorIs(t, err, domain.ErrOverrideNotFound)
}

func TestUpdateProfile_FallbackWritesNothing(t *testing.T) {
	ctx := context.Background()
	api := &fakeAPI{profile: sampleProfile(), fallback: true}
	uc, repo := newUseCase(api, nil)

	_, err := uc.UpdateProfile(ctx, session, &UpdateProfileRequest{About: strPtr("hello"), Name: strPtr("Bo")})
	require.ErrorIs(t, err, domain.ErrAPIUnavailable)
	require.Empty(t, api.updates)

	_, err = repo.Get(ctx, userKey)
	require.ErrorIs(t, err, domain.ErrOverrideNotFound)
}

func TestUpdateProfile_OverridesOnlySkipUpstream(t *testing.T) {
	api := &fakeAPI{profile: sampleProfile()}
	uc, _ := newUseCase(api, nil)

	view, err := uc.UpdateProfile(context.Background(), session, &UpdateProfileRequest{Gender: strPtr("Male")})
	require.NoError(t, err)
	require.Empty(t, api.updates)
	require.Equal(t, "Male", view.Gender)
}

func TestUpdateProfile_Validation(t *testing.T) {
	uc, _ := newUseCase(&fakeAPI{profile: sampleProfile()}, nil)
	ctx := context.Background()

	_, err := uc.UpdateProfile(ctx, session, &UpdateProfileRequest{ImagePreview: strPtr("http://example.com/a.png")})
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.UpdateProfile(ctx, session, &UpdateProfileRequest{Gender: strPtr("Other")})
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.UpdateProfile(ctx, session, &UpdateProfileRequest{Birthday: strPtr("21/03/1990")})
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	// an empty preview clears the photo
	view, err := uc.UpdateProfile(ctx, session, &UpdateProfileRequest{ImagePreview: strPtr("")})
	require.NoError(t, err)
	require.Nil(t, view.ImagePreview)
}

func TestCreateProfile(t *testing.T) {
	api := &fakeAPI{}
	uc, _ := newUseCase(api, nil)

	_, err := uc.CreateProfile(context.Background(), session, &CreateProfileRequest{Name: "Ann"})
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	msg, err := uc.CreateProfile(context.Background(), session, &CreateProfileRequest{
		Name: "Ann", Birthday: "1990-03-21", Height: 170, Weight: 60, Interests: []string{" Music ", "Music"},
	})
	require.NoError(t, err)
	require.Equal(t, "Profile created", msg)
	require.Equal(t, []string{"Music"}, api.created.Interests)
}

func TestInterests(t *testing.T) {
	ctx := context.Background()
	api := &fakeAPI{profile: sampleProfile()}
	uc, _ := newUseCase(api, nil)

	catalog, err := uc.InterestCatalog(ctx, session)
	require.NoError(t, err)
	require.Len(t, catalog.Interests, 12)
	require.Equal(t, "Music", catalog.Interests[0].Label)
	require.True(t, catalog.Interests[0].Selected)
	require.False(t, catalog.Interests[1].Selected)

	catalog, err = uc.UpdateInterests(ctx, session, &UpdateInterestsRequest{Interests: []string{"Coding", "Gaming", "Coding"}})
	require.NoError(t, err)
	require.Equal(t, []string{"Coding", "Gaming"}, catalog.Selected)

	last := api.updates[len(api.updates)-1]
	require.Equal(t, "Ann Lee", *last.Name)
	require.Equal(t, "1990-03-21", *last.Birthday)
	require.Equal(t, []string{"Coding", "Gaming"}, *last.Interests)
}

func TestUpdateInterests_FallbackRefused(t *testing.T) {
	api := &fakeAPI{profile: sampleProfile(), fallback: true}
	uc, _ := newUseCase(api, nil)

	_, err := uc.UpdateInterests(context.Background(), session, &UpdateInterestsRequest{Interests: []string{"Coding"}})
	require.ErrorIs(t, err, domain.ErrAPIUnavailable)
	require.Empty(t, api.updates)
}

func TestSuggestAbout(t *testing.T) {
	ctx := context.Background()
	suggester := &fakeSuggester{}
	uc, _ := newUseCase(&fakeAPI{profile: sampleProfile()}, suggester)

	got, err := uc.SuggestAbout(ctx, session)
	require.NoError(t, err)
	require.Equal(t, []string{"generated"}, got)
	require.Equal(t, "Aries", suggester.in.Horoscope)
	require.Equal(t, "Horse", suggester.in.Zodiac)

	uc, _ = newUseCase(&fakeAPI{profile: sampleProfile()}, nil)
	got, err = uc.SuggestAbout(ctx, session)
	require.NoError(t, err)
	require.NotEmpty(t, got)
}
