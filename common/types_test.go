package common

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, color.RGBA{R: 200, G: 100, B: 50, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestDecodeTexture(t *testing.T) {
	tex, err := DecodeTexture(encodePNG(t, 8, 4), 0)
	require.NoError(t, err)
	assert.Equal(t, uint32(8), tex.Width)
	assert.Equal(t, uint32(4), tex.Height)
	assert.Len(t, tex.Pixels, 8*4*4)
	assert.Equal(t, byte(200), tex.Pixels[0])
	assert.InDelta(t, 2.0, tex.Aspect(), 1e-6)
}

func TestDecodeTextureDownscales(t *testing.T) {
	tests := []struct {
		name  string
		w, h  int
		max   int
		wantW uint32
		wantH uint32
	}{
		{"landscape", 64, 32, 16, 16, 8},
		{"portrait", 20, 80, 40, 10, 40},
		{"within limit", 10, 10, 16, 10, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tex, err := DecodeTexture(encodePNG(t, tt.w, tt.h), tt.max)
			require.NoError(t, err)
			assert.Equal(t, tt.wantW, tex.Width)
			assert.Equal(t, tt.wantH, tex.Height)
			assert.Len(t, tex.Pixels, int(tt.wantW*tt.wantH*4))
		})
	}
}

func TestDecodeTextureRejectsGarbage(t *testing.T) {
	_, err := DecodeTexture([]byte("definitely not an image"), 0)
	assert.Error(t, err)
}

func TestTextureAspectEmpty(t *testing.T) {
	assert.Equal(t, float32(1), TextureStagingData{}.Aspect())
}

func TestCoalesce(t *testing.T) {
	assert.Equal(t, 3, Coalesce(0, 3, 4))
	assert.Equal(t, "", Coalesce("", ""))
}
