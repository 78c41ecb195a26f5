// Package identity binds a bearer token to the user the profile API knows it
// as. Local state is only ever keyed by a verified identity.
package identity

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/gdugdh24/profile-service/internal/domain"
	"github.com/gdugdh24/profile-service/internal/repository"
	"github.com/golang-jwt/jwt/v5"
)

// keyClaims are read, in order, once the profile API has accepted the token.
var keyClaims = []string{"id", "sub", "user_id", "email"}

// Identity is the outcome of asking the profile API who owns a token.
type Identity struct {
	Session  domain.Session
	Profile  *domain.ServiceProfile
	Fallback bool
}

type Verifier struct {
	api    repository.ProfileAPI
	parser *jwt.Parser
}

func NewVerifier(api repository.ProfileAPI) *Verifier {
	return &Verifier{api: api, parser: jwt.NewParser()}
}

// Resolve fetches the caller's profile. When the API served its fallback
// profile the returned session stays unverified.
func (v *Verifier) Resolve(ctx context.Context, session domain.Session) (*Identity, error) {
	sp, fallback, err := v.api.GetProfile(ctx, session.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to verify session: %w", err)
	}

	id := &Identity{Session: domain.Session{Token: session.Token}, Profile: sp, Fallback: fallback}
	if !fallback {
		id.Session.UserKey = v.userKey(session, sp)
	}
	return id, nil
}

// Verify is Resolve for callers about to touch local state: an unreachable
// profile API is an error rather than a fallback.
func (v *Verifier) Verify(ctx context.Context, session domain.Session) (*Identity, error) {
	id, err := v.Resolve(ctx, session)
	if err != nil {
		return nil, err
	}
	if id.Fallback {
		return nil, domain.ErrAPIUnavailable
	}
	return id, nil
}

func (v *Verifier) userKey(session domain.Session, sp *domain.ServiceProfile) string {
	if sp != nil {
		if email := strings.ToLower(strings.TrimSpace(sp.Email)); email != "" {
			return "email:" + email
		}
		if username := strings.TrimSpace(sp.Username); username != "" {
			return "username:" + username
		}
	}

	claims := jwt.MapClaims{}
	if _, _, err := v.parser.ParseUnverified(session.Token, claims); err == nil {
		for _, name := range keyClaims {
			if value := claimString(claims[name]); value != "" {
				if name == "email" {
					value = strings.ToLower(value)
				}
				return name + ":" + value
			}
		}
	}
	return session.TokenKey()
}

func claimString(v any) string {
	switch c := v.(type) {
	case string:
		return strings.TrimSpace(c)
	case float64:
		return strconv.FormatFloat(c, 'f', -1, 64)
	default:
		return ""
	}
}
