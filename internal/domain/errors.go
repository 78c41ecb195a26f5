package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrTooLarge         = errors.New("file too large")
	ErrEncoding         = errors.New("image encoding failed")
	ErrNoActiveCrop     = errors.New("no active crop")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrInvalidToken     = errors.New("invalid token")
	ErrPasswordMismatch = errors.New("passwords do not match")
	ErrProfileNotFound  = errors.New("profile not found")
	ErrOverrideNotFound = errors.New("profile override not found")
	ErrAIUnavailable    = errors.New("ai client is not initialized")
	ErrUpstreamResponse = errors.New("unexpected profile api response")
	ErrAPIUnavailable   = errors.New("profile api unavailable")
	ErrTooManyEdits     = errors.New("too many pending photo edits")
)

// UpstreamError is a non-success status returned by the remote profile API.
type UpstreamError struct {
	StatusCode int
	Message    string
}

func (e *UpstreamError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("profile api responded with status %d", e.StatusCode)
	}
	return fmt.Sprintf("profile api responded with status %d: %s", e.StatusCode, e.Message)
}

func (e *UpstreamError) Unwrap() error {
	switch e.StatusCode {
	case 401:
		return ErrUnauthorized
	case 404:
		return ErrProfileNotFound
	}
	return ErrUpstreamResponse
}
