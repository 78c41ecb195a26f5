package handler

import (
	"errors"
	"net/http"

	"github.com/gdugdh24/profile-service/internal/delivery/http/middleware"
	"github.com/gdugdh24/profile-service/internal/domain"
	"github.com/gin-gonic/gin"
)

// ErrorResponse represents error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// SuccessResponse represents success response
type SuccessResponse struct {
	Message string `json:"message"`
}

// respondError maps domain errors onto HTTP statuses. Unknown errors are
// reported with fallback as the message.
func respondError(c *gin.Context, err error, fallback string) {
	_ = c.Error(err)

	var upstream *domain.UpstreamError
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrPasswordMismatch):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "passwords do not match"})
	case errors.Is(err, domain.ErrTooLarge):
		c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{Error: "file too large"})
	case errors.Is(err, domain.ErrNoActiveCrop):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "no active crop"})
	case errors.Is(err, domain.ErrEncoding):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "failed to encode image"})
	case errors.Is(err, domain.ErrUnauthorized), errors.Is(err, domain.ErrInvalidToken):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	case errors.Is(err, domain.ErrAPIUnavailable):
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "profile service unavailable, try again later"})
	case errors.Is(err, domain.ErrTooManyEdits):
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "too many photo edits in progress, try again later"})
	case errors.Is(err, domain.ErrProfileNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "profile not found"})
	case errors.As(err, &upstream) && upstream.StatusCode >= 400 && upstream.StatusCode < 500:
		msg := upstream.Message
		if msg == "" {
			msg = fallback
		}
		c.JSON(upstream.StatusCode, ErrorResponse{Error: msg})
	case errors.Is(err, domain.ErrUpstreamResponse):
		c.JSON(http.StatusBadGateway, ErrorResponse{Error: fallback})
	default:
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: fallback})
	}
}

func currentSession(c *gin.Context) (domain.Session, bool) {
	v, exists := c.Get(middleware.SessionKey)
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return domain.Session{}, false
	}
	session, ok := v.(domain.Session)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return domain.Session{}, false
	}
	return session, true
}
