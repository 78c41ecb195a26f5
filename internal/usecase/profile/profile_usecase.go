package profile

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gdugdh24/profile-service/internal/domain"
	"github.com/gdugdh24/profile-service/internal/infrastructure/gemini"
	"github.com/gdugdh24/profile-service/internal/media/crop"
	"github.com/gdugdh24/profile-service/internal/repository"
	"github.com/gdugdh24/profile-service/internal/usecase/identity"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// AboutSuggester writes "about me" suggestions.
type AboutSuggester interface {
	SuggestAbout(ctx context.Context, in gemini.AboutInput) ([]string, error)
}

type ProfileUseCase struct {
	api       repository.ProfileAPI
	overrides repository.OverrideRepository
	verifier  *identity.Verifier
	suggester AboutSuggester
	validate  *validator.Validate
	logger    *zap.Logger
}

// NewProfileUseCase builds the use case. suggester may be nil, in which case
// suggestions are generated without the model.
func NewProfileUseCase(
	api repository.ProfileAPI,
	overrides repository.OverrideRepository,
	verifier *identity.Verifier,
	suggester AboutSuggester,
	logger *zap.Logger,
) *ProfileUseCase {
	v := validator.New()
	v.SetTagName("binding")

	return &ProfileUseCase{
		api:       api,
		overrides: overrides,
		verifier:  verifier,
		suggester: suggester,
		validate:  v,
		logger:    logger.Named("profile"),
	}
}

// CreateProfileRequest represents profile creation request
type CreateProfileRequest struct {
	Name      string   `json:"name" binding:"required,min=1,max=100"`
	Birthday  string   `json:"birthday" binding:"required,datetime=2006-01-02"`
	Height    float64  `json:"height" binding:"required,gt=0,lt=300"`
	Weight    float64  `json:"weight" binding:"required,gt=0,lt=500"`
	Interests []string `json:"interests" binding:"omitempty,max=20,dive,min=1,max=50"`
}

// UpdateProfileRequest represents profile update request. Name, birthday,
// height, weight and interests are stored by the profile API; gender, about
// and image preview are kept locally.
type UpdateProfileRequest struct {
	Name         *string   `json:"name" binding:"omitempty,min=1,max=100"`
	Birthday     *string   `json:"birthday" binding:"omitempty,datetime=2006-01-02"`
	Height       *float64  `json:"height" binding:"omitempty,gt=0,lt=300"`
	Weight       *float64  `json:"weight" binding:"omitempty,gt=0,lt=500"`
	Interests    *[]string `json:"interests" binding:"omitempty,max=20,dive,min=1,max=50"`
	Gender       *string   `json:"gender" binding:"omitempty,oneof=Male Female"`
	About        *string   `json:"about" binding:"omitempty,max=500"`
	ImagePreview *string   `json:"image_preview"`
}

// UpdateInterestsRequest replaces the interest list.
type UpdateInterestsRequest struct {
	Interests []string `json:"interests" binding:"max=20,dive,min=1,max=50"`
}

// InterestCatalog is the selectable interest list.
type InterestCatalog struct {
	Interests []domain.StyledInterest `json:"interests"`
	Selected  []string                `json:"selected"`
}

// GetMyProfile merges the service profile with local overrides. The fallback
// profile is shown without overrides since its owner is unknown.
func (uc *ProfileUseCase) GetMyProfile(ctx context.Context, session domain.Session) (*domain.ProfileView, error) {
	id, err := uc.verifier.Resolve(ctx, session)
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	if id.Fallback {
		view := domain.BuildProfileView(id.Profile, nil)
		view.Fallback = true
		return view, nil
	}

	override, err := uc.override(ctx, id.Session.UserKey)
	if err != nil {
		return nil, err
	}
	return domain.BuildProfileView(id.Profile, override), nil
}

// UpdateProfile sends service fields upstream and stores the rest locally.
func (uc *ProfileUseCase) UpdateProfile(ctx context.Context, session domain.Session, req *UpdateProfileRequest) (*domain.ProfileView, error) {
	if err := uc.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	if req.ImagePreview != nil && *req.ImagePreview != "" && !crop.IsImageDataURL(*req.ImagePreview) {
		return nil, fmt.Errorf("%w: image_preview must be an image data URL", domain.ErrInvalidInput)
	}

	update := domain.ServiceProfileUpdate{
		Name:     trimmed(req.Name),
		Birthday: trimmed(req.Birthday),
		Height:   req.Height,
		Weight:   req.Weight,
	}
	if req.Interests != nil {
		interests := domain.NormalizeInterests(*req.Interests)
		update.Interests = &interests
	}

	patch := domain.OverridePatch{
		Gender:       req.Gender,
		About:        trimmed(req.About),
		ImagePreview: req.ImagePreview,
	}

	id, err := uc.verifier.Verify(ctx, session)
	if err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	userKey := id.Session.UserKey

	if !update.IsEmpty() {
		msg, err := uc.api.UpdateProfile(ctx, session.Token, update)
		if err != nil {
			return nil, fmt.Errorf("failed to update profile: %w", err)
		}
		uc.logger.Debug("profile updated upstream", zap.String("user_key", userKey), zap.String("message", msg))
	}

	if !patch.IsEmpty() {
		if _, err := uc.overrides.Patch(ctx, userKey, patch); err != nil {
			return nil, fmt.Errorf("failed to save profile overrides: %w", err)
		}
	}

	return uc.GetMyProfile(ctx, id.Session)
}

// CreateProfile completes onboarding.
func (uc *ProfileUseCase) CreateProfile(ctx context.Context, session domain.Session, req *CreateProfileRequest) (string, error) {
	if err := uc.validate.Struct(req); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	msg, err := uc.api.CreateProfile(ctx, session.Token, &domain.ServiceProfile{
		Name:      strings.TrimSpace(req.Name),
		Birthday:  req.Birthday,
		Height:    req.Height,
		Weight:    req.Weight,
		Interests: domain.NormalizeInterests(req.Interests),
	})
	if err != nil {
		return "", fmt.Errorf("failed to create profile: %w", err)
	}
	return msg, nil
}

// InterestCatalog lists the known interests, marking the user's selections.
func (uc *ProfileUseCase) InterestCatalog(ctx context.Context, session domain.Session) (*InterestCatalog, error) {
	sp, _, err := uc.api.GetProfile(ctx, session.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return buildCatalog(domain.NormalizeInterests(sp.Interests)), nil
}

// UpdateInterests writes the whole profile back with a new interest list.
func (uc *ProfileUseCase) UpdateInterests(ctx context.Context, session domain.Session, req *UpdateInterestsRequest) (*InterestCatalog, error) {
	if err := uc.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	sp, fallback, err := uc.api.GetProfile(ctx, session.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	// Writing back the fallback fixture would replace the user's real profile.
	if fallback {
		return nil, fmt.Errorf("failed to update interests: %w", domain.ErrAPIUnavailable)
	}

	interests := domain.NormalizeInterests(req.Interests)
	update := domain.ServiceProfileUpdate{
		Name:      &sp.Name,
		Birthday:  &sp.Birthday,
		Height:    &sp.Height,
		Weight:    &sp.Weight,
		Interests: &interests,
	}
	if _, err := uc.api.UpdateProfile(ctx, session.Token, update); err != nil {
		return nil, fmt.Errorf("failed to update interests: %w", err)
	}

	return buildCatalog(interests), nil
}

// SuggestAbout proposes "about me" texts from the user's profile.
func (uc *ProfileUseCase) SuggestAbout(ctx context.Context, session domain.Session) ([]string, error) {
	view, err := uc.GetMyProfile(ctx, session)
	if err != nil {
		return nil, err
	}

	in := gemini.AboutInput{
		Name:      view.Name,
		Interests: view.Interests,
		Horoscope: string(view.Horoscope),
		Zodiac:    string(view.Zodiac),
	}
	if uc.suggester == nil {
		return gemini.FallbackAbout(in), nil
	}
	return uc.suggester.SuggestAbout(ctx, in)
}

func (uc *ProfileUseCase) override(ctx context.Context, userKey string) (*domain.ProfileOverride, error) {
	override, err := uc.overrides.Get(ctx, userKey)
	if err != nil {
		if errors.Is(err, domain.ErrOverrideNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load profile overrides: %w", err)
	}
	return override, nil
}

func buildCatalog(selected []string) *InterestCatalog {
	chosen := make(map[string]bool, len(selected))
	for _, s := range selected {
		chosen[s] = true
	}

	known := domain.KnownInterests()
	out := make([]domain.StyledInterest, 0, len(known))
	for _, tag := range known {
		out = append(out, domain.NewStyledInterest(string(tag), chosen[string(tag)]))
	}
	return &InterestCatalog{Interests: out, Selected: selected}
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
