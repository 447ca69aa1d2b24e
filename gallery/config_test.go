package gallery

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-gallery/engine/scene"
	"github.com/Carmen-Shannon/oxy-gallery/engine/visibility"
	"github.com/mitchellh/go-homedir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, validateConfig(&cfg))

	assert.Equal(t, "list.txt", cfg.ListFile)
	assert.Equal(t, scene.DesktopLayout(), cfg.Layout)
	assert.Equal(t, visibility.DefaultConfig(), cfg.Visibility)
	assert.Equal(t, float32(0.04), cfg.Camera.EaseFactor)
	assert.Equal(t, float32(150), cfg.Camera.Ceiling)
	assert.Equal(t, 1500*time.Millisecond, cfg.Camera.RevealDelay)
	assert.Equal(t, float32(7), cfg.Camera.FovDegrees)
	assert.Equal(t, float32(-0.06), cfg.Input.ScrollSensitivity)
	assert.Equal(t, 400*time.Millisecond, cfg.Input.TapDuration)
	assert.Equal(t, 20, cfg.Loading.BatchSize)
	assert.Equal(t, 30*time.Second, cfg.Loading.Timeout)
	assert.Equal(t, 200*time.Millisecond, cfg.Loading.Grace)
	assert.Equal(t, 60.0, cfg.Engine.TickRate)
	require.NotNil(t, cfg.Engine.VSync)
	assert.True(t, *cfg.Engine.VSync)
}

func TestParseConfig(t *testing.T) {
	data := []byte(`
source: https://example.com/gallery
images_prefix: images
mobile: true
camera:
  reveal_delay: 2s
  ease_factor: 0.1
loading:
  batch_size: 5
  timeout: 10s
engine:
  vsync: false
  msaa: 1
`)
	cfg, err := ParseConfig(data)
	require.NoError(t, err)

	assert.Equal(t, "https://example.com/gallery", cfg.Source)
	assert.Equal(t, "images", cfg.ImagesPrefix)
	assert.Equal(t, scene.MobileLayout(), cfg.Layout)
	assert.Equal(t, 2*time.Second, cfg.Camera.RevealDelay)
	assert.Equal(t, float32(0.1), cfg.Camera.EaseFactor)
	assert.Equal(t, float32(150), cfg.Camera.Ceiling)
	assert.Equal(t, 5, cfg.Loading.BatchSize)
	assert.Equal(t, 10*time.Second, cfg.Loading.Timeout)
	assert.False(t, *cfg.Engine.VSync)
	assert.Equal(t, 1, cfg.Engine.MSAA)
}

func TestParseConfigExplicitLayoutWinsOverMobile(t *testing.T) {
	cfg, err := ParseConfig([]byte(`
source: .
mobile: true
layout:
  spacing: 50
  angle_step: 45
  min_offset: 1
  max_offset: 3
`))
	require.NoError(t, err)
	assert.Equal(t, scene.Layout{Spacing: 50, AngleStep: 45, MinOffset: 1, MaxOffset: 3}, cfg.Layout)
}

func TestParseConfigPartialBlocksKeepDefaults(t *testing.T) {
	tests := []struct {
		name       string
		yaml       string
		layout     scene.Layout
		visibility visibility.Config
	}{
		{
			name:       "spacing only",
			yaml:       "source: .\nlayout:\n  spacing: 50\n",
			layout:     scene.Layout{Spacing: 50, AngleStep: 100, MinOffset: 10, MaxOffset: 20},
			visibility: visibility.DefaultConfig(),
		},
		{
			name:       "mobile base under partial layout",
			yaml:       "source: .\nmobile: true\nlayout: {max_offset: 8}",
			layout:     scene.Layout{Spacing: 100, AngleStep: 100, MinOffset: 2, MaxOffset: 8},
			visibility: visibility.DefaultConfig(),
		},
		{
			name:   "start fade only",
			yaml:   "source: .\nvisibility: {start_fade: 12}",
			layout: scene.DesktopLayout(),
			visibility: visibility.Config{
				StartFade: 12, EndFade: -20, MaxOpacity: 200, MinSpread: 300, MaxSpread: 1000, SpreadAmount: 5,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := ParseConfig([]byte(tt.yaml))
			require.NoError(t, err)
			assert.Equal(t, tt.layout, cfg.Layout)
			assert.Equal(t, tt.visibility, cfg.Visibility)
		})
	}
}

func TestParseConfigInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"malformed", "source: [", "failed to parse YAML"},
		{"missing source", "list_file: a.txt", "source is required"},
		{"offsets reversed", "source: .\nlayout: {spacing: 100, min_offset: 9, max_offset: 3}", "layout offsets"},
		{"fade order", "source: .\nvisibility: {start_fade: 5, end_fade: 10, max_opacity_distance: 200, min_spread_distance: 300, max_spread_distance: 1000}", "visibility distances"},
		{"ease too large", "source: .\ncamera: {ease_factor: 2}", "ease_factor"},
		{"fov", "source: .\ncamera: {fov_degrees: 190}", "fov_degrees"},
		{"clip planes", "source: .\ncamera: {near: 10, far: 5}", "clip planes"},
		{"batch size", "source: .\nloading: {batch_size: -1}", "batch_size"},
		{"msaa", "source: .\nengine: {msaa: 2}", "msaa"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseConfig([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadConfigExpandsHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	homedir.DisableCache = true
	t.Cleanup(func() { homedir.DisableCache = false })

	require.NoError(t, os.WriteFile(filepath.Join(home, "gallery.yaml"), []byte("source: ~/photos\n"), 0o644))

	cfg, err := LoadConfig("~/gallery.yaml")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "photos"), cfg.Source)
}

func TestLoadConfigKeepsURLSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gallery.yaml")
	require.NoError(t, os.WriteFile(path, []byte("source: http://localhost:8080/~user\n"), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/~user", cfg.Source)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
