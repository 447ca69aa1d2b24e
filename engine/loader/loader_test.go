package loader

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestParseList(t *testing.T) {
	files, err := ParseList(strings.NewReader("a.jpg\n\n  b.png  \r\n\t\nc.webp"))
	require.NoError(t, err)
	assert.Equal(t, []string{"a.jpg", "b.png", "c.webp"}, files)

	files, err = ParseList(strings.NewReader("\n\n"))
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestResolveBackendType(t *testing.T) {
	tests := []struct {
		base string
		want LoaderBackendType
		err  error
	}{
		{"assets", BackendTypeFile, nil},
		{"/srv/gallery", BackendTypeFile, nil},
		{"~/Pictures", BackendTypeFile, nil},
		{"file:///srv/gallery", BackendTypeFile, nil},
		{`C:\gallery`, BackendTypeFile, nil},
		{"http://example.com/assets", BackendTypeHTTP, nil},
		{"HTTPS://example.com", BackendTypeHTTP, nil},
		{"ftp://example.com", 0, ErrUnsupportedSource},
	}
	for _, tt := range tests {
		t.Run(tt.base, func(t *testing.T) {
			got, err := resolveBackendType(tt.base)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewLoaderRejectsUnknownScheme(t *testing.T) {
	_, err := NewLoader("gopher://example.com")
	assert.ErrorIs(t, err, ErrUnsupportedSource)
}

func TestMemoryLoaderTexture(t *testing.T) {
	l, err := NewLoader("", WithImagesPrefix("images/optimized"), WithMemoryAssets(map[string][]byte{
		"images-list.txt":            []byte("wide.png\nnotes.txt\n"),
		"images/optimized/wide.png":  encodePNG(t, 8, 4),
		"images/optimized/notes.txt": []byte("just some text"),
	}))
	require.NoError(t, err)
	assert.Equal(t, BackendTypeMemory, l.BackendType())

	files, err := l.FetchList(context.Background(), "images-list.txt")
	require.NoError(t, err)
	assert.Equal(t, []string{"wide.png", "notes.txt"}, files)

	tex, err := l.LoadTexture(context.Background(), "wide.png")
	require.NoError(t, err)
	assert.Equal(t, uint32(8), tex.Width)
	assert.Equal(t, uint32(4), tex.Height)
	assert.Len(t, tex.Pixels, 8*4*4)
	assert.InDelta(t, 2.0, tex.Aspect(), 1e-6)

	_, err = l.LoadTexture(context.Background(), "notes.txt")
	assert.ErrorIs(t, err, ErrNotImage)

	_, err = l.LoadTexture(context.Background(), "missing.png")
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestMaxTextureDimensionDownscales(t *testing.T) {
	l, err := NewLoader("", WithMaxTextureDimension(16), WithMemoryAssets(map[string][]byte{
		"big.png": encodePNG(t, 64, 32),
	}))
	require.NoError(t, err)

	tex, err := l.LoadTexture(context.Background(), "big.png")
	require.NoError(t, err)
	assert.Equal(t, uint32(16), tex.Width)
	assert.Equal(t, uint32(8), tex.Height)
}

func TestFileLoader(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "images"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "list.txt"), []byte("one.png\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "images", "one.png"), encodePNG(t, 3, 3), 0o644))

	l, err := NewLoader(dir, WithImagesPrefix("images"))
	require.NoError(t, err)
	assert.Equal(t, BackendTypeFile, l.BackendType())
	assert.Equal(t, dir, l.Base())

	files, err := l.FetchList(context.Background(), "list.txt")
	require.NoError(t, err)
	assert.Equal(t, []string{"one.png"}, files)

	tex, err := l.LoadTexture(context.Background(), "one.png")
	require.NoError(t, err)
	assert.Equal(t, uint32(3), tex.Width)

	_, err = l.Fetch(context.Background(), "../outside.txt")
	assert.Error(t, err)
}

func TestHTTPLoader(t *testing.T) {
	img := encodePNG(t, 5, 10)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/assets/images-list.txt":
			_, _ = w.Write([]byte("tall.png\n"))
		case "/assets/images/tall.png":
			_, _ = w.Write(img)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	l, err := NewLoader(srv.URL+"/assets/", WithImagesPrefix("images"))
	require.NoError(t, err)
	assert.Equal(t, BackendTypeHTTP, l.BackendType())

	files, err := l.FetchList(context.Background(), "images-list.txt")
	require.NoError(t, err)
	assert.Equal(t, []string{"tall.png"}, files)

	tex, err := l.LoadTexture(context.Background(), "tall.png")
	require.NoError(t, err)
	assert.InDelta(t, 0.5, tex.Aspect(), 1e-6)

	_, err = l.FetchList(context.Background(), "missing.txt")
	assert.ErrorContains(t, err, "404")
}

func TestLoaderBackendTypeString(t *testing.T) {
	assert.Equal(t, "file", BackendTypeFile.String())
	assert.Equal(t, "http", BackendTypeHTTP.String())
	assert.Equal(t, "memory", BackendTypeMemory.String())
	assert.Equal(t, "LoaderBackendType(9)", LoaderBackendType(9).String())
}
