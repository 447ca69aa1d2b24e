package engine

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-gallery/engine/camera"
	"github.com/Carmen-Shannon/oxy-gallery/engine/loader"
	"github.com/Carmen-Shannon/oxy-gallery/engine/renderer"
	"github.com/Carmen-Shannon/oxy-gallery/engine/scene"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	r   renderer.Renderer
	cam camera.Camera
	s   scene.Scene
}

// newFixture builds a headless renderer and a scene of n loaded planes on the Z axis.
func newFixture(t *testing.T, n int) fixture {
	t.Helper()
	r, err := renderer.NewRenderer(renderer.BackendTypeHeadless, renderer.HeadlessSurface(800, 600))
	require.NoError(t, err)
	t.Cleanup(r.Close)

	ctrl := camera.NewCameraController(camera.WithVisible(true))
	t.Cleanup(ctrl.Close)
	cam := camera.NewCamera(camera.WithController(ctrl))

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2))))
	assets := map[string][]byte{}
	files := make([]string, n)
	for i := range files {
		files[i] = string(rune('a'+i)) + ".png"
		assets[files[i]] = buf.Bytes()
	}
	l, err := loader.NewLoader("", loader.WithMemoryAssets(assets))
	require.NoError(t, err)

	s := scene.NewScene(r,
		scene.WithLayout(scene.Layout{Spacing: 100, AngleStep: 100}),
		scene.WithLoadGrace(0),
	)
	s.Build(files)
	require.NoError(t, s.Load(context.Background(), loader.NewBatchLoader(l)))
	return fixture{r: r, cam: cam, s: s}
}

func (f fixture) options() []EngineBuilderOption {
	return []EngineBuilderOption{WithRenderer(f.r), WithCamera(f.cam), WithScene(f.s)}
}

func TestNewEngineRequiresComponents(t *testing.T) {
	_, err := NewEngine()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "renderer is required")
	assert.Contains(t, err.Error(), "camera is required")
	assert.Contains(t, err.Error(), "scene is required")

	f := newFixture(t, 1)
	_, err = NewEngine(WithRenderer(f.r), WithCamera(camera.NewCamera()), WithScene(f.s))
	assert.ErrorContains(t, err, "no controller")
}

func TestTickEasesCameraAndPlanes(t *testing.T) {
	f := newFixture(t, 3)
	eng, err := NewEngine(f.options()...)
	require.NoError(t, err)
	e := eng.(*engine)

	ctrl := f.cam.Controller()
	before := ctrl.Current()
	e.tick()
	after := ctrl.Current()
	assert.Greater(t, after[2], before[2])

	eyeZ := f.cam.Eye()[2]
	assert.InDelta(t, after[2]+ctrl.EyeOffset(), eyeZ, 1e-3)

	for _, p := range f.s.Planes() {
		assert.InDelta(t, 0.1, p.MaxOpacity(), 1e-6)
		assert.True(t, p.Snapshot().Visible, p.File())
	}
}

func TestRenderFrameDrawsVisiblePlanes(t *testing.T) {
	f := newFixture(t, 4)
	eng, err := NewEngine(f.options()...)
	require.NoError(t, err)
	e := eng.(*engine)

	drawn, err := e.renderFrame()
	require.NoError(t, err)
	assert.Equal(t, 0, drawn, "planes are invisible before the first tick")

	e.tick()
	drawn, err = e.renderFrame()
	require.NoError(t, err)
	assert.Equal(t, 4, drawn)

	stats := f.r.Stats()
	assert.Equal(t, uint64(2), stats.Frames)
	assert.Equal(t, 4, stats.Draws)
	assert.Equal(t, 4, stats.Textures)
}

func TestRunStopsOnQuit(t *testing.T) {
	f := newFixture(t, 2)
	eng, err := NewEngine(append(f.options(), WithTickRate(500), WithRenderFrameLimit(500))...)
	require.NoError(t, err)

	var ticks, frames atomic.Int32
	eng.SetRenderCallback(func(float32) { frames.Add(1) })
	eng.SetTickCallback(func(dt float32) {
		if ticks.Add(1) == 5 {
			eng.Quit()
			eng.Quit()
		}
	})

	done := make(chan struct{})
	go func() {
		eng.Run()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after Quit")
	}
	assert.GreaterOrEqual(t, ticks.Load(), int32(5))
	assert.Positive(t, frames.Load())
	assert.Positive(t, f.cam.Controller().Current()[2])

	select {
	case <-eng.Done():
	default:
		t.Fatal("Done not closed")
	}
}

func TestRenderPanicStopsEngine(t *testing.T) {
	f := newFixture(t, 1)
	eng, err := NewEngine(f.options()...)
	require.NoError(t, err)
	eng.SetRenderCallback(func(float32) { panic("boom") })

	done := make(chan struct{})
	go func() {
		eng.Run()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after render panic")
	}
}

func TestResize(t *testing.T) {
	f := newFixture(t, 1)
	eng, err := NewEngine(f.options()...)
	require.NoError(t, err)

	eng.Resize(1000, 500)
	w, h := f.r.Size()
	assert.Equal(t, 1000, w)
	assert.Equal(t, 500, h)
	assert.InDelta(t, 2.0, f.cam.Aspect(), 1e-6)

	eng.Resize(0, 500)
	w, _ = f.r.Size()
	assert.Equal(t, 1000, w)
	assert.InDelta(t, 2.0, f.cam.Aspect(), 1e-6)
}

func TestSetTickRate(t *testing.T) {
	f := newFixture(t, 1)
	eng, err := NewEngine(f.options()...)
	require.NoError(t, err)
	e := eng.(*engine)

	assert.Equal(t, time.Second/60, e.engineTickRate)
	eng.SetTickRate(120)
	assert.Equal(t, time.Second/120, e.engineTickRate)
	eng.SetTickRate(0)
	assert.InDelta(t, float64(time.Second/60), float64(e.engineTickRate), 1)
}

func TestSetRenderFrameLimitWhileRunning(t *testing.T) {
	f := newFixture(t, 1)
	eng, err := NewEngine(append(f.options(), WithRenderFrameLimit(1000))...)
	require.NoError(t, err)
	assert.Equal(t, time.Millisecond, eng.RenderFrameLimit())

	var frames atomic.Int32
	eng.SetRenderCallback(func(float32) { frames.Add(1) })

	done := make(chan struct{})
	go func() {
		eng.Run()
		close(done)
	}()

	require.Eventually(t, func() bool { return frames.Load() > 2 }, 5*time.Second, time.Millisecond)
	for _, fps := range []float64{250, 0, 500} {
		eng.SetRenderFrameLimit(fps)
	}
	assert.Equal(t, 2*time.Millisecond, eng.RenderFrameLimit())

	seen := frames.Load()
	require.Eventually(t, func() bool { return frames.Load() > seen+2 }, 5*time.Second, time.Millisecond)
	eng.Quit()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after Quit")
	}
}

func TestIntervals(t *testing.T) {
	tests := []struct {
		name  string
		fps   float64
		tick  time.Duration
		frame time.Duration
	}{
		{"sixty", 60, time.Second / 60, time.Second / 60},
		{"fractional", 0.5, 2 * time.Second, 2 * time.Second},
		{"zero", 0, time.Second / 60, 0},
		{"negative", -10, time.Second / 60, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.tick, tickInterval(tt.fps))
			assert.Equal(t, tt.frame, frameInterval(tt.fps))
		})
	}
}

func TestProfilerToggle(t *testing.T) {
	f := newFixture(t, 1)
	eng, err := NewEngine(append(f.options(), WithProfiling(true))...)
	require.NoError(t, err)
	e := eng.(*engine)

	assert.True(t, e.profilingEnabled.Load())
	eng.DisableProfiler()
	assert.False(t, e.profilingEnabled.Load())
	eng.EnableProfiler()
	assert.True(t, e.profilingEnabled.Load())
}
