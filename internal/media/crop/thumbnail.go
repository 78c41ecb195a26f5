package crop

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/gdugdh24/profile-service/internal/domain"
)

const (
	ThumbnailMediaType = "image/jpeg"
	ThumbnailQuality   = 0.95
)

// Thumbnail is the re-encoded result of a committed crop.
type Thumbnail struct {
	MediaType string
	Data      []byte
	Width     int
	Height    int
}

// DataURL renders the thumbnail as data:<mime>;base64,<payload>. Stored
// previews are displayed from this string as-is.
func (t *Thumbnail) DataURL() string {
	return "data:" + t.MediaType + ";base64," + base64.StdEncoding.EncodeToString(t.Data)
}

// ParseDataURL splits a base64 data URL into media type and payload.
func ParseDataURL(s string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(s, "data:")
	if !ok {
		return "", nil, fmt.Errorf("%w: missing data: scheme", domain.ErrInvalidInput)
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, fmt.Errorf("%w: missing payload separator", domain.ErrInvalidInput)
	}
	mediaType, ok := strings.CutSuffix(meta, ";base64")
	if !ok {
		return "", nil, fmt.Errorf("%w: data url is not base64", domain.ErrInvalidInput)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	return mediaType, data, nil
}

// IsImageDataURL reports whether s is a base64 data URL of an image type.
func IsImageDataURL(s string) bool {
	mediaType, _, err := ParseDataURL(s)
	return err == nil && isImageType(mediaType)
}
