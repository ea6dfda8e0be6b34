package utils

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngOfSize(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestDownscaleImageShrinksLargePNG(t *testing.T) {
	data, dims, err := DownscaleImage(pngOfSize(t, 400, 200), "image/png", 100, 100)
	require.NoError(t, err)
	require.NotNil(t, dims)
	assert.Equal(t, 100, dims.Width)
	assert.Equal(t, 50, dims.Height)

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, 100, cfg.Width)
}

func TestDownscaleImageKeepsSmallImages(t *testing.T) {
	original := pngOfSize(t, 50, 40)
	data, dims, err := DownscaleImage(original, "image/png", 100, 100)
	require.NoError(t, err)
	assert.Equal(t, original, data)
	assert.Equal(t, &ImageDimensions{Width: 50, Height: 40}, dims)
}

func TestDownscaleImagePassesThroughOtherFormats(t *testing.T) {
	data, dims, err := DownscaleImage([]byte("GIF89a"), "image/gif", 100, 100)
	require.NoError(t, err)
	assert.Nil(t, dims)
	assert.Equal(t, []byte("GIF89a"), data)
}

func TestDownscaleImageRejectsGarbage(t *testing.T) {
	_, _, err := DownscaleImage([]byte("not an image"), "image/jpeg", 100, 100)
	assert.True(t, IsKind(err, KindBadRequest))
}
