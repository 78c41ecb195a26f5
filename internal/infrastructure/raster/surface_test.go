package raster

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"testing"

	"github.com/gdugdh24/profile-service/internal/media/crop"
	"github.com/stretchr/testify/require"
)

func solid(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestFactory_NewSurface_RejectsEmptySize(t *testing.T) {
	f := NewFactory()

	_, err := f.NewSurface(0, 10)
	require.Error(t, err)

	_, err = f.NewSurface(10, -1)
	require.Error(t, err)
}

func TestFactory_NewSurface_RejectsTooManyPixels(t *testing.T) {
	f := &Factory{MaxPixels: 100}

	_, err := f.NewSurface(10, 10)
	require.NoError(t, err)

	_, err = f.NewSurface(11, 10)
	require.ErrorContains(t, err, "exceeds")

	// zero falls back to the package default
	_, err = (&Factory{}).NewSurface(100_000, 100_000)
	require.Error(t, err)
}

func TestSurface_DrawAndEncode(t *testing.T) {
	f := NewFactory()
	s, err := f.NewSurface(40, 20)
	require.NoError(t, err)

	src := solid(200, 100, color.RGBA{R: 200, G: 30, B: 30, A: 255})
	err = s.DrawImage(src, crop.Rect{X: 10, Y: 10, Width: 160, Height: 80}, crop.Rect{Width: 40, Height: 20})
	require.NoError(t, err)

	center := s.(*Surface).Image().RGBAAt(20, 10)
	require.Equal(t, uint8(200), center.R)
	require.Equal(t, uint8(255), center.A)

	data, err := s.Encode("image/jpeg", 0.95)
	require.NoError(t, err)

	cfg, err := jpeg.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	require.Equal(t, 40, cfg.Width)
	require.Equal(t, 20, cfg.Height)
}

func TestSurface_DrawOutsideBounds(t *testing.T) {
	s, err := NewFactory().NewSurface(10, 10)
	require.NoError(t, err)

	src := solid(50, 50, color.White)
	err = s.DrawImage(src, crop.Rect{X: 100, Y: 100, Width: 10, Height: 10}, crop.Rect{Width: 10, Height: 10})
	require.Error(t, err)
}

func TestSurface_EncodeUnsupportedType(t *testing.T) {
	s, err := NewFactory().NewSurface(4, 4)
	require.NoError(t, err)

	_, err = s.Encode("image/png", 0.9)
	require.Error(t, err)
}
