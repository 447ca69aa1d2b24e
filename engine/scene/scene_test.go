package scene

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-gallery/common"
	"github.com/Carmen-Shannon/oxy-gallery/engine/camera"
	"github.com/Carmen-Shannon/oxy-gallery/engine/loader"
	"github.com/Carmen-Shannon/oxy-gallery/engine/renderer"
	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingRenderer keeps the order of DrawPlane calls.
type recordingRenderer struct {
	renderer.Renderer

	mu    sync.Mutex
	draws []renderer.PlaneDraw
}

func (r *recordingRenderer) DrawPlane(d renderer.PlaneDraw) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.draws = append(r.draws, d)
	return r.Renderer.DrawPlane(d)
}

func newHeadlessRenderer(t *testing.T) renderer.Renderer {
	t.Helper()
	r, err := renderer.NewRenderer(renderer.BackendTypeHeadless, renderer.HeadlessSurface(1600, 900))
	require.NoError(t, err)
	t.Cleanup(r.Close)
	return r
}

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, color.RGBA{R: 255, G: uint8(x), B: uint8(y), A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func fileNames(n int) []string {
	files := make([]string, n)
	for i := range files {
		files[i] = fmt.Sprintf("photo-%02d.png", i)
	}
	return files
}

// loadedScene builds n planes, loads them from memory and ticks until fully opaque.
func loadedScene(t *testing.T, r renderer.Renderer, n int, cameraZ float32) Scene {
	t.Helper()
	assets := make(map[string][]byte, n)
	files := fileNames(n)
	for _, f := range files {
		assets[f] = encodePNG(t, 4, 2)
	}
	l, err := loader.NewLoader("", loader.WithMemoryAssets(assets))
	require.NoError(t, err)

	s := NewScene(r, WithRand(rand.New(rand.NewPCG(1, 2))), WithLoadGrace(0))
	s.Build(files)
	require.NoError(t, s.Load(context.Background(), loader.NewBatchLoader(l)))
	for range 15 {
		s.Tick(cameraZ)
	}
	return s
}

func TestBuildPlacesPlanesAlongHelix(t *testing.T) {
	const aspect = 1.6
	s := NewScene(newHeadlessRenderer(t), WithAspect(aspect), WithRand(rand.New(rand.NewPCG(7, 7))))
	s.Build(fileNames(50))

	planes := s.Planes()
	require.Len(t, planes, 50)
	assert.Equal(t, 50, s.Len())
	assert.False(t, s.AllLoaded())

	for i, p := range planes {
		off := p.OriginalOffset()
		assert.Equal(t, float32(-100*i), off[2], "plane %d z", i)

		// undo the aspect squash to recover the radius and angle
		x, y := off[0], off[1]*aspect
		radius := math32.Hypot(x, y)
		assert.GreaterOrEqual(t, radius, float32(10)-1e-3)
		assert.LessOrEqual(t, radius, float32(20)+1e-3)

		angle := math32.Mod(float32(i*100), 360)
		assert.InDelta(t, math32.Cos(common.DegToRad(angle)), x/radius, 1e-4, "plane %d angle", i)

		assert.False(t, p.Loaded())
		assert.Equal(t, float32(0), p.MaxOpacity())
		snap := p.Snapshot()
		assert.False(t, snap.Visible)
		assert.Equal(t, [2]float32{1, 1}, snap.Scale)
	}
}

func TestBuildMobileLayout(t *testing.T) {
	s := NewScene(newHeadlessRenderer(t), WithLayout(MobileLayout()), WithAspect(1))
	s.Build(fileNames(20))

	for _, p := range s.Planes() {
		off := p.OriginalOffset()
		radius := math32.Hypot(off[0], off[1])
		assert.GreaterOrEqual(t, radius, float32(2)-1e-3)
		assert.LessOrEqual(t, radius, float32(6)+1e-3)
	}
}

func TestBuildEmpty(t *testing.T) {
	s := NewScene(newHeadlessRenderer(t))
	s.Build(nil)
	assert.Equal(t, 0, s.Len())

	_, ok := s.PlaneTarget(0)
	assert.False(t, ok)
	_, ok = s.Pick(common.Ray{Direction: [3]float32{0, 0, -1}})
	assert.False(t, ok)
}

func TestLoadMarksPlanesAndUploads(t *testing.T) {
	r := newHeadlessRenderer(t)
	l, err := loader.NewLoader("", loader.WithMemoryAssets(map[string][]byte{
		"wide.png": encodePNG(t, 8, 4),
		"bad.png":  []byte("not an image"),
	}))
	require.NoError(t, err)

	s := NewScene(r, WithLoadGrace(50*time.Millisecond))
	s.Build([]string{"wide.png", "bad.png", "missing.png"})

	done := make(chan error, 1)
	go func() { done <- s.Load(context.Background(), loader.NewBatchLoader(l)) }()
	require.NoError(t, <-done)
	assert.True(t, s.AllLoaded())

	planes := s.Planes()
	assert.True(t, planes[0].Loaded())
	assert.InDelta(t, 2.0, planes[0].Scale()[0], 1e-6)
	assert.True(t, r.HasTexture(planes[0].TextureKey()))

	for _, p := range planes[1:] {
		assert.True(t, p.Failed(), p.File())
		assert.False(t, p.Loaded(), p.File())
		assert.False(t, r.HasTexture(p.TextureKey()))
	}
}

func TestAllLoadedWaitsForGrace(t *testing.T) {
	l, err := loader.NewLoader("", loader.WithMemoryAssets(map[string][]byte{"a.png": encodePNG(t, 1, 1)}))
	require.NoError(t, err)

	s := NewScene(newHeadlessRenderer(t), WithLoadGrace(200*time.Millisecond))
	s.Build([]string{"a.png"})

	start := time.Now()
	require.NoError(t, s.Load(context.Background(), loader.NewBatchLoader(l)))
	assert.GreaterOrEqual(t, time.Since(start), 200*time.Millisecond)
	assert.True(t, s.AllLoaded())
}

func TestLoadCancelledDuringGrace(t *testing.T) {
	l, err := loader.NewLoader("", loader.WithMemoryAssets(map[string][]byte{"a.png": encodePNG(t, 1, 1)}))
	require.NoError(t, err)

	s := NewScene(newHeadlessRenderer(t), WithLoadGrace(time.Hour))
	s.Build([]string{"a.png"})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, s.Load(ctx, loader.NewBatchLoader(l)), context.DeadlineExceeded)
	assert.False(t, s.AllLoaded())
}

func TestPickSelectsNearestOpaquePlane(t *testing.T) {
	s := loadedScene(t, newHeadlessRenderer(t), 3, 100)
	planes := s.Planes()

	// plane 0 (d=100) and plane 1 (d=200) are both fully opaque
	off0 := planes[0].OriginalOffset()
	ray := common.Ray{Origin: [3]float32{off0[0], off0[1], 100}, Direction: [3]float32{0, 0, -1}}
	target, ok := s.Pick(ray)
	require.True(t, ok)
	assert.Equal(t, 0, target.Index)
	assert.Equal(t, off0, target.Offset)
	assert.Equal(t, planes[0].SpreadDirection(), target.Spread)

	_, ok = s.Pick(common.Ray{Origin: [3]float32{500, 500, 100}, Direction: [3]float32{0, 0, -1}})
	assert.False(t, ok)
}

func TestPickIgnoresTranslucentPlanes(t *testing.T) {
	s := loadedScene(t, newHeadlessRenderer(t), 1, 100)
	off := s.Planes()[0].OriginalOffset()
	ray := common.Ray{Origin: [3]float32{off[0], off[1], 2}, Direction: [3]float32{0, 0, -1}}

	// d=2 lies inside the fade band, opacity < 1
	s.Tick(2)
	_, ok := s.Pick(ray)
	assert.False(t, ok)

	// d=-30 is behind the fade, invisible
	s.Tick(-30)
	_, ok = s.Pick(ray)
	assert.False(t, ok)
}

func TestPickIgnoresUnloadedPlanes(t *testing.T) {
	s := NewScene(newHeadlessRenderer(t))
	s.Build([]string{"a.png"})
	for range 20 {
		s.Tick(100)
	}
	off := s.Planes()[0].OriginalOffset()
	_, ok := s.Pick(common.Ray{Origin: [3]float32{off[0], off[1], 100}, Direction: [3]float32{0, 0, -1}})
	assert.False(t, ok)
}

func TestPlaneTarget(t *testing.T) {
	s := NewScene(newHeadlessRenderer(t))
	s.Build(fileNames(3))

	target, ok := s.PlaneTarget(2)
	require.True(t, ok)
	assert.Equal(t, 2, target.Index)
	assert.Equal(t, float32(-200), target.Offset[2])

	_, ok = s.PlaneTarget(3)
	assert.False(t, ok)
	_, ok = s.PlaneTarget(-1)
	assert.False(t, ok)
}

func wideFrustum(eye, center [3]float32) common.Frustum {
	var view, proj, viewProj [16]float32
	common.LookAt(view[:], eye, center, [3]float32{0, 1, 0})
	common.Perspective(proj[:], common.DegToRad(90), 16.0/9.0, 1, 2000)
	common.Mul4(viewProj[:], proj[:], view[:])
	return common.ExtractFrustumFromMatrix(viewProj[:])
}

func TestDrawCallsBackToFront(t *testing.T) {
	rec := &recordingRenderer{Renderer: newHeadlessRenderer(t)}
	s := loadedScene(t, rec, 15, -150)

	require.NoError(t, rec.BeginFrame(camera.GPUCameraUniform{}))
	drawn, err := s.DrawCalls(wideFrustum([3]float32{0, 0, -150}, [3]float32{0, 0, -1150}))
	require.NoError(t, err)
	rec.EndFrame()
	rec.Present()

	// planes 2..11 sit between d=50 and d=950
	assert.Equal(t, 10, drawn)
	require.Len(t, rec.draws, 10)
	for i := 1; i < len(rec.draws); i++ {
		// model[14] is the z translation
		assert.Less(t, rec.draws[i-1].Model[14], rec.draws[i].Model[14])
	}
	assert.Equal(t, 10, rec.Stats().Draws)
}

func TestDrawCallsCullsOutsideFrustum(t *testing.T) {
	rec := &recordingRenderer{Renderer: newHeadlessRenderer(t)}
	s := loadedScene(t, rec, 15, -150)

	require.NoError(t, rec.BeginFrame(camera.GPUCameraUniform{}))
	// looking back toward the start: every visible plane is behind the camera
	drawn, err := s.DrawCalls(wideFrustum([3]float32{0, 0, -150}, [3]float32{0, 0, 850}))
	require.NoError(t, err)
	rec.EndFrame()
	rec.Present()

	assert.Equal(t, 0, drawn)
	assert.Empty(t, rec.draws)
}

func TestDrawCallsOutsideFrameReportsError(t *testing.T) {
	s := loadedScene(t, newHeadlessRenderer(t), 3, 100)
	_, err := s.DrawCalls(wideFrustum([3]float32{0, 0, 100}, [3]float32{0, 0, -900}))
	assert.ErrorIs(t, err, renderer.ErrNoFrame)
}
