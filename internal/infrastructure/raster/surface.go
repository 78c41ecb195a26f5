package raster

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"math"

	"github.com/gdugdh24/profile-service/internal/media/crop"
	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
)

// Factory creates RGBA surfaces backed by golang.org/x/image/draw.
type Factory struct {
	Interpolator draw.Interpolator
	// MaxPixels bounds width*height; zero means crop.DefaultMaxPixels.
	MaxPixels int
}

// NewFactory returns a factory sampling with bilinear interpolation.
func NewFactory() *Factory {
	return &Factory{Interpolator: draw.BiLinear, MaxPixels: crop.DefaultMaxPixels}
}

func (f *Factory) NewSurface(width, height int) (crop.RasterSurface, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid surface size %dx%d", width, height)
	}
	limit := f.MaxPixels
	if limit <= 0 {
		limit = crop.DefaultMaxPixels
	}
	if width > limit/height {
		return nil, fmt.Errorf("surface size %dx%d exceeds %d pixels", width, height, limit)
	}
	interp := f.Interpolator
	if interp == nil {
		interp = draw.BiLinear
	}
	return &Surface{
		img:    image.NewRGBA(image.Rect(0, 0, width, height)),
		interp: interp,
	}, nil
}

// Surface is an in-memory RGBA canvas.
type Surface struct {
	img    *image.RGBA
	interp draw.Interpolator
}

func (s *Surface) Image() *image.RGBA { return s.img }

// DrawImage maps srcRect onto dstRect with an affine transform so fractional
// source coordinates are honoured.
func (s *Surface) DrawImage(src image.Image, srcRect, dstRect crop.Rect) error {
	if srcRect.Width <= 0 || srcRect.Height <= 0 {
		return fmt.Errorf("empty source rectangle %vx%v", srcRect.Width, srcRect.Height)
	}
	if dstRect.Width <= 0 || dstRect.Height <= 0 {
		return fmt.Errorf("empty destination rectangle %vx%v", dstRect.Width, dstRect.Height)
	}

	sr := image.Rect(
		int(math.Floor(srcRect.X)),
		int(math.Floor(srcRect.Y)),
		int(math.Ceil(srcRect.X+srcRect.Width)),
		int(math.Ceil(srcRect.Y+srcRect.Height)),
	).Intersect(src.Bounds())
	if sr.Empty() {
		return fmt.Errorf("source rectangle %v lies outside image bounds %v", sr, src.Bounds())
	}

	sx := dstRect.Width / srcRect.Width
	sy := dstRect.Height / srcRect.Height
	s2d := f64.Aff3{
		sx, 0, dstRect.X - srcRect.X*sx,
		0, sy, dstRect.Y - srcRect.Y*sy,
	}
	s.interp.Transform(s.img, s2d, src, sr, draw.Over, nil)
	return nil
}

// Encode supports image/jpeg only.
func (s *Surface) Encode(mediaType string, quality float64) ([]byte, error) {
	if mediaType != "image/jpeg" {
		return nil, fmt.Errorf("unsupported media type %q", mediaType)
	}
	q := int(math.Round(quality * 100))
	if q < 1 {
		q = 1
	}
	if q > 100 {
		q = 100
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, s.img, &jpeg.Options{Quality: q}); err != nil {
		return nil, fmt.Errorf("failed to encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}
