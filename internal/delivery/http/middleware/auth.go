package middleware

import (
	"net/http"
	"strings"

	"github.com/gdugdh24/profile-service/internal/domain"
	"github.com/gin-gonic/gin"
)

// SessionKey is the gin context key holding the caller's domain.Session.
const SessionKey = "session"

// TokenHeader carries the access token, as the profile API expects it.
const TokenHeader = "x-access-token"

// SessionResolver turns an access token into a session.
type SessionResolver interface {
	Session(token string) (domain.Session, error)
}

type AuthMiddleware struct {
	sessions SessionResolver
}

func NewAuthMiddleware(sessions SessionResolver) *AuthMiddleware {
	return &AuthMiddleware{sessions: sessions}
}

// RequireAuth accepts the token from x-access-token or a Bearer
// Authorization header.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "access token required"})
			return
		}

		session, err := m.sessions.Session(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(SessionKey, session)
		c.Next()
	}
}

func extractToken(c *gin.Context) string {
	if token := strings.TrimSpace(c.GetHeader(TokenHeader)); token != "" {
		return token
	}
	authHeader := c.GetHeader("Authorization")
	if token, ok := strings.CutPrefix(authHeader, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}
