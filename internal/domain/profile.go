package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
)

// ServiceProfile mirrors the remote profile API payload.
type ServiceProfile struct {
	Name      string   `json:"name"`
	Birthday  string   `json:"birthday"`
	Height    float64  `json:"height"`
	Weight    float64  `json:"weight"`
	Interests []string `json:"interests"`
	Email     string   `json:"email,omitempty"`
	Username  string   `json:"username,omitempty"`
	About     string   `json:"about,omitempty"`
	Gender    string   `json:"gender,omitempty"`
}

// ServiceProfileUpdate is a partial update; nil fields are not sent.
type ServiceProfileUpdate struct {
	Name      *string   `json:"name,omitempty"`
	Birthday  *string   `json:"birthday,omitempty"`
	Height    *float64  `json:"height,omitempty"`
	Weight    *float64  `json:"weight,omitempty"`
	Interests *[]string `json:"interests,omitempty"`
}

func (u ServiceProfileUpdate) IsEmpty() bool {
	return u.Name == nil && u.Birthday == nil && u.Height == nil && u.Weight == nil && u.Interests == nil
}

// ProfileOverride holds the fields the remote API does not store. Empty values
// mean "no override".
type ProfileOverride struct {
	UserKey      string    `json:"user_key" db:"user_key"`
	Gender       string    `json:"gender" db:"gender"`
	About        string    `json:"about" db:"about"`
	ImagePreview string    `json:"image_preview" db:"image_preview"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// OverridePatch sets the non-nil fields of a user's override and leaves the
// others untouched.
type OverridePatch struct {
	Gender       *string
	About        *string
	ImagePreview *string
}

func (p OverridePatch) IsEmpty() bool {
	return p.Gender == nil && p.About == nil && p.ImagePreview == nil
}

// ProfileView is what the client renders.
type ProfileView struct {
	Name         string           `json:"name"`
	Birthday     string           `json:"birthday"`
	Height       float64          `json:"height"`
	Weight       float64          `json:"weight"`
	Interests    []string         `json:"interests"`
	InterestTags []StyledInterest `json:"interest_tags"`
	Email        string           `json:"email,omitempty"`
	Username     string           `json:"username,omitempty"`
	Gender       string           `json:"gender,omitempty"`
	About        string           `json:"about,omitempty"`
	ImagePreview *string          `json:"image_preview"`
	Placeholder  PhotoPlaceholder `json:"placeholder"`
	Horoscope    WesternSign      `json:"horoscope,omitempty"`
	Zodiac       ChineseAnimal    `json:"zodiac,omitempty"`
	Fallback     bool             `json:"fallback,omitempty"`
}

// BuildProfileView merges the service profile with local overrides (a non-empty
// override wins) and derives the horoscope and zodiac from the birthday.
func BuildProfileView(sp *ServiceProfile, ov *ProfileOverride) *ProfileView {
	interests := NormalizeInterests(sp.Interests)
	view := &ProfileView{
		Name:      sp.Name,
		Birthday:  sp.Birthday,
		Height:    sp.Height,
		Weight:    sp.Weight,
		Interests: interests,
		Email:     sp.Email,
		Username:  sp.Username,
		Gender:    sp.Gender,
		About:     sp.About,
	}

	if ov != nil {
		if ov.Gender != "" {
			view.Gender = ov.Gender
		}
		if ov.About != "" {
			view.About = ov.About
		}
		if ov.ImagePreview != "" {
			preview := ov.ImagePreview
			view.ImagePreview = &preview
		}
	}

	view.InterestTags = make([]StyledInterest, 0, len(interests))
	for _, label := range interests {
		view.InterestTags = append(view.InterestTags, NewStyledInterest(label, true))
	}

	if birthday, ok := ParseBirthday(sp.Birthday); ok {
		z := ZodiacFor(birthday)
		view.Horoscope = z.Horoscope
		view.Zodiac = z.Zodiac
	}

	view.Placeholder = PlaceholderFor(view.Name, view.Username)
	return view
}

// Session identifies the caller: the bearer token forwarded upstream and the
// key their local overrides are stored under. UserKey is empty until the
// profile API has accepted the token.
type Session struct {
	Token   string
	UserKey string
}

// Verified reports whether UserKey has been bound by the profile API.
func (s Session) Verified() bool { return s.UserKey != "" }

// TokenKey identifies state owned by this exact token.
func (s Session) TokenKey() string {
	sum := sha256.Sum256([]byte(s.Token))
	return "token:" + hex.EncodeToString(sum[:])
}

// AuthResult is returned by the remote login call.
type AuthResult struct {
	Message     string `json:"message"`
	AccessToken string `json:"access_token"`
	Fallback    bool   `json:"fallback,omitempty"`
}

// LoginRequest is forwarded to the remote login endpoint.
type LoginRequest struct {
	Email    string `json:"email,omitempty"`
	Username string `json:"username,omitempty"`
	Password string `json:"password"`
}

// RegisterRequest is forwarded to the remote register endpoint.
type RegisterRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}
