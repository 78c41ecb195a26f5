// Package crop turns an uploaded photo and a user-adjusted crop region into a
// small JPEG thumbnail suitable for storing as a data URL.
package crop

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"mime"
	"strings"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/gdugdh24/profile-service/internal/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MaxFileSize is the largest accepted source image (5 MiB).
const MaxFileSize int64 = 5 << 20

// DefaultMaxPixels caps the decoded source and the output surface. A small
// compressed file can declare dimensions far larger than its byte size.
const DefaultMaxPixels = 40_000_000

// MaxDimension is the widest or tallest surface Commit will allocate.
const MaxDimension = 8192

type State int

const (
	StateIdle State = iota
	StateCropping
	StateCommitted
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateCropping:
		return "cropping"
	case StateCommitted:
		return "committed"
	case StateCancelled:
		return "cancelled"
	default:
		return "idle"
	}
}

// File is a selected source image.
type File interface {
	MediaType() string
	Size() int64
	Open() (io.ReadCloser, error)
}

// RasterSurface is an output drawing surface of fixed pixel size.
type RasterSurface interface {
	// DrawImage samples src over srcRect and draws it into dstRect.
	DrawImage(src image.Image, srcRect, dstRect Rect) error
	// Encode serializes the surface with a lossy codec; quality is in (0, 1].
	Encode(mediaType string, quality float64) ([]byte, error)
}

type SurfaceFactory interface {
	NewSurface(width, height int) (RasterSurface, error)
}

// Pipeline is owned by a single editing session and is not safe for
// concurrent use.
type Pipeline struct {
	surfaces  SurfaceFactory
	logger    *zap.Logger
	maxPixels int

	state       State
	selectionID uuid.UUID
	source      image.Image
	handle      io.Closer
	natural     Size
	displayed   Size
	region      *Region
}

type Option func(*Pipeline)

// WithMaxPixels overrides DefaultMaxPixels. Non-positive values are ignored.
func WithMaxPixels(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.maxPixels = n
		}
	}
}

func NewPipeline(surfaces SurfaceFactory, logger *zap.Logger, opts ...Option) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Pipeline{
		surfaces:  surfaces,
		logger:    logger,
		maxPixels: DefaultMaxPixels,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Pipeline) State() State { return p.state }

func (p *Pipeline) SelectionID() uuid.UUID { return p.selectionID }

func (p *Pipeline) NaturalSize() Size { return p.natural }

func (p *Pipeline) DisplayedSize() Size { return p.displayed }

// Region returns the active crop region, if any.
func (p *Pipeline) Region() (Region, bool) {
	if p.region == nil {
		return Region{}, false
	}
	return *p.region, true
}

// SelectImage starts a new crop over file. A pending selection is released
// first. displayed is the on-screen size of the image; zero means the image
// is shown at its natural size.
func (p *Pipeline) SelectImage(file File, displayed Size) (Region, error) {
	if p.state == StateCropping {
		p.logger.Debug("replacing pending crop", zap.Stringer("selection_id", p.selectionID))
		p.release()
		p.state = StateCancelled
	}
	p.state = StateIdle

	if !isImageType(file.MediaType()) {
		return Region{}, fmt.Errorf("%w: %q is not an image type", domain.ErrInvalidInput, file.MediaType())
	}
	if file.Size() > MaxFileSize {
		return Region{}, fmt.Errorf("%w: %d bytes exceeds %d", domain.ErrTooLarge, file.Size(), MaxFileSize)
	}

	rc, err := file.Open()
	if err != nil {
		return Region{}, fmt.Errorf("%w: open source image: %v", domain.ErrInvalidInput, err)
	}
	// Read the header first so oversized images are refused before their
	// pixel buffer is allocated.
	var head bytes.Buffer
	cfg, _, err := image.DecodeConfig(io.TeeReader(rc, &head))
	if err != nil {
		_ = rc.Close()
		return Region{}, fmt.Errorf("%w: decode source image: %v", domain.ErrInvalidInput, err)
	}
	if exceeds(cfg.Width, cfg.Height, p.maxPixels) {
		_ = rc.Close()
		return Region{}, fmt.Errorf("%w: %dx%d image exceeds %d pixels", domain.ErrInvalidInput, cfg.Width, cfg.Height, p.maxPixels)
	}

	src, format, err := image.Decode(io.MultiReader(&head, rc))
	if err != nil {
		_ = rc.Close()
		return Region{}, fmt.Errorf("%w: decode source image: %v", domain.ErrInvalidInput, err)
	}

	bounds := src.Bounds()
	natural := Size{Width: bounds.Dx(), Height: bounds.Dy()}
	if natural.IsZero() {
		_ = rc.Close()
		return Region{}, fmt.Errorf("%w: empty source image", domain.ErrInvalidInput)
	}
	if displayed.IsZero() {
		displayed = natural
	}

	region := DefaultRegion()
	p.selectionID = uuid.New()
	p.source = src
	p.handle = rc
	p.natural = natural
	p.displayed = displayed
	p.region = &region
	p.state = StateCropping

	p.logger.Debug("image selected",
		zap.Stringer("selection_id", p.selectionID),
		zap.String("format", format),
		zap.Int("natural_width", natural.Width),
		zap.Int("natural_height", natural.Height),
		zap.Int("displayed_width", displayed.Width),
		zap.Int("displayed_height", displayed.Height),
	)
	return region, nil
}

// UpdateRegion replaces the active region. Bounds are not enforced.
func (p *Pipeline) UpdateRegion(region Region) error {
	if p.state != StateCropping {
		return domain.ErrNoActiveCrop
	}
	if region.Unit == "" {
		region.Unit = UnitPixel
	}
	p.region = &region
	return nil
}

// Commit crops the source and encodes the thumbnail. The output size follows
// the displayed crop size, not the source resolution. On failure the
// pipeline stays in the cropping state so the caller may retry or cancel.
func (p *Pipeline) Commit(ctx context.Context) (*Thumbnail, error) {
	if p.state != StateCropping || p.region == nil {
		return nil, domain.ErrNoActiveCrop
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	px := p.region.Pixels(p.displayed)
	// negated so NaN is rejected too
	if !(px.Width < MaxDimension+1 && px.Height < MaxDimension+1) {
		return nil, fmt.Errorf("%w: crop region %vx%v is too large", domain.ErrEncoding, px.Width, px.Height)
	}
	width, height := int(px.Width), int(px.Height)
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: empty crop region %vx%v", domain.ErrEncoding, px.Width, px.Height)
	}
	if exceeds(width, height, p.maxPixels) {
		return nil, fmt.Errorf("%w: crop region %vx%v exceeds %d pixels", domain.ErrEncoding, px.Width, px.Height, p.maxPixels)
	}

	scaleX := float64(p.natural.Width) / float64(p.displayed.Width)
	scaleY := float64(p.natural.Height) / float64(p.displayed.Height)
	origin := p.source.Bounds().Min
	srcRect := Rect{
		X:      float64(origin.X) + px.X*scaleX,
		Y:      float64(origin.Y) + px.Y*scaleY,
		Width:  px.Width * scaleX,
		Height: px.Height * scaleY,
	}
	dstRect := Rect{Width: px.Width, Height: px.Height}

	surface, err := p.surfaces.NewSurface(width, height)
	if err != nil {
		return nil, fmt.Errorf("%w: create surface: %v", domain.ErrEncoding, err)
	}
	if err := surface.DrawImage(p.source, srcRect, dstRect); err != nil {
		return nil, fmt.Errorf("%w: draw: %v", domain.ErrEncoding, err)
	}
	data, err := surface.Encode(ThumbnailMediaType, ThumbnailQuality)
	if err != nil {
		return nil, fmt.Errorf("%w: encode: %v", domain.ErrEncoding, err)
	}

	p.logger.Debug("crop committed",
		zap.Stringer("selection_id", p.selectionID),
		zap.Int("width", width),
		zap.Int("height", height),
		zap.Int("bytes", len(data)),
	)

	p.release()
	p.state = StateCommitted
	return &Thumbnail{
		MediaType: ThumbnailMediaType,
		Data:      data,
		Width:     width,
		Height:    height,
	}, nil
}

// Cancel discards the source and region. It is a no-op outside cropping.
func (p *Pipeline) Cancel() {
	if p.state != StateCropping {
		return
	}
	p.release()
	p.state = StateCancelled
}

// Close releases any held source regardless of state.
func (p *Pipeline) Close() error {
	err := p.release()
	if p.state == StateCropping {
		p.state = StateCancelled
	}
	return err
}

func (p *Pipeline) release() error {
	var err error
	if p.handle != nil {
		err = p.handle.Close()
		if err != nil {
			p.logger.Warn("failed to release source image", zap.Error(err))
		}
	}
	p.handle = nil
	p.source = nil
	p.region = nil
	return err
}

// exceeds reports whether a width x height image is over limit pixels,
// without overflowing.
func exceeds(width, height, limit int) bool {
	if width <= 0 || height <= 0 {
		return false
	}
	return width > limit/height
}

func isImageType(mediaType string) bool {
	mt, _, err := mime.ParseMediaType(mediaType)
	if err != nil {
		return false
	}
	return strings.HasPrefix(mt, "image/")
}
