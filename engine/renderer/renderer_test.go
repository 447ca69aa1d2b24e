package renderer

import (
	"encoding/binary"
	"math"
	"strings"
	"testing"

	"github.com/Carmen-Shannon/oxy-gallery/common"
	"github.com/Carmen-Shannon/oxy-gallery/engine/camera"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHeadless(t *testing.T) (*renderer, *headlessRendererBackendImpl) {
	t.Helper()
	r, err := NewRenderer(BackendTypeHeadless, HeadlessSurface(800, 600))
	require.NoError(t, err)
	impl := r.(*renderer)
	return impl, impl.backend.(*headlessRendererBackendImpl)
}

func texture(w, h uint32) common.TextureStagingData {
	return common.TextureStagingData{Pixels: make([]byte, w*h*4), Width: w, Height: h}
}

func TestNewRendererSetsUpSharedResources(t *testing.T) {
	r, hb := newHeadless(t)

	assert.Equal(t, BackendTypeHeadless, r.BackendType())
	w, h := r.Size()
	assert.Equal(t, 800, w)
	assert.Equal(t, 600, h)

	assert.Equal(t, []string{PlanePipelineKey}, hb.pipelines)
	assert.Equal(t, 4*quadVertexStride, hb.meshes["Plane Quad"])
	assert.Equal(t, 1, hb.bindGroups["Camera"])
	assert.Equal(t, 6, r.quadProvider.IndexCount())
}

func TestPlaneShaderLayoutsMatchBindings(t *testing.T) {
	s, err := PlaneShader()
	require.NoError(t, err)

	src := s.Source()
	assert.True(t, strings.Index(src, "struct CameraUniform") < strings.Index(src, "fn vs_main"))
	assert.Contains(t, src, "struct PlaneUniform")

	groups := s.BindGroupLayoutDescriptors()
	require.Len(t, groups, 2)
	var cu camera.GPUCameraUniform
	assert.Equal(t, uint64(cu.Size()), groups[cameraGroup].Entries[cameraUniformBinding].Buffer.MinBindingSize)

	g, b, ok := s.Binding("plane_texture")
	require.True(t, ok)
	assert.Equal(t, [2]int{planeGroup, planeTextureBinding}, [2]int{g, b})
	g, b, ok = s.Binding("plane_sampler")
	require.True(t, ok)
	assert.Equal(t, [2]int{planeGroup, planeSamplerBinding}, [2]int{g, b})
	g, b, ok = s.Binding("plane")
	require.True(t, ok)
	assert.Equal(t, [2]int{planeGroup, planeUniformBinding}, [2]int{g, b})

	require.Len(t, s.VertexLayouts(), 1)
	assert.Equal(t, uint64(quadVertexStride), s.VertexLayouts()[0].ArrayStride)
}

func TestUploadTexture(t *testing.T) {
	r, hb := newHeadless(t)

	require.NoError(t, r.UploadTexture("a.jpg", texture(4, 2)))
	assert.True(t, r.HasTexture("a.jpg"))
	assert.False(t, r.HasTexture("b.jpg"))
	assert.Equal(t, [2]uint32{4, 2}, hb.textures["Plane a.jpg"])
	assert.Equal(t, 1, hb.samplers)
	assert.Equal(t, 1, hb.bindGroups["Plane a.jpg"])
	// CPU pixels are not retained after upload
	assert.Nil(t, r.materials["a.jpg"].Texture())
	assert.Equal(t, 1, r.Stats().Textures)

	// replacing keeps a single entry
	require.NoError(t, r.UploadTexture("a.jpg", texture(2, 2)))
	assert.Equal(t, 1, r.Stats().Textures)

	r.ReleaseTexture("a.jpg")
	r.ReleaseTexture("never-uploaded")
	assert.False(t, r.HasTexture("a.jpg"))
}

func TestUploadTextureRejectsBadData(t *testing.T) {
	r, _ := newHeadless(t)

	tests := []struct {
		name string
		key  string
		tex  common.TextureStagingData
	}{
		{"empty key", "", texture(1, 1)},
		{"zero size", "z", common.TextureStagingData{}},
		{"short pixels", "s", common.TextureStagingData{Pixels: make([]byte, 3), Width: 1, Height: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, r.UploadTexture(tt.key, tt.tex), ErrInvalidTexture)
		})
	}
	assert.Equal(t, 0, r.Stats().Textures)
}

func TestFrameLifecycle(t *testing.T) {
	r, hb := newHeadless(t)
	require.NoError(t, r.UploadTexture("far", texture(1, 1)))
	require.NoError(t, r.UploadTexture("near", texture(1, 1)))

	assert.ErrorIs(t, r.DrawPlane(PlaneDraw{TextureKey: "far"}), ErrNoFrame)

	cam := camera.GPUCameraUniform{CameraPosition: [3]float32{0, 0, 60}}
	require.NoError(t, r.BeginFrame(cam))
	assert.ErrorIs(t, r.BeginFrame(cam), ErrFrameInProgress)

	var model [16]float32
	common.Identity(model[:])
	require.NoError(t, r.DrawPlane(PlaneDraw{TextureKey: "far", Model: model, Color: [3]float32{0.3, 0.3, 0.3}, Opacity: 1}))
	require.NoError(t, r.DrawPlane(PlaneDraw{TextureKey: "near", Model: model, Color: [3]float32{1, 1, 1}, Opacity: 0.5}))
	assert.ErrorIs(t, r.DrawPlane(PlaneDraw{TextureKey: "near"}), ErrDuplicateDraw)
	assert.ErrorIs(t, r.DrawPlane(PlaneDraw{TextureKey: "missing"}), ErrUnknownTexture)
	r.EndFrame()
	r.Present()

	require.Len(t, hb.lastDraws, 2)
	assert.Equal(t, headlessDraw{pipeline: PlanePipelineKey, mesh: "Plane Quad", groups: []string{"Camera", "Plane far"}}, hb.lastDraws[0])
	assert.Equal(t, "Plane near", hb.lastDraws[1].groups[1])

	camData := hb.writes["Camera"][cameraUniformBinding]
	require.Len(t, camData, 80)
	assert.Equal(t, float32(60), math.Float32frombits(binary.LittleEndian.Uint32(camData[72:])))

	planeData := hb.writes["Plane near"][planeUniformBinding]
	require.Len(t, planeData, 80)
	assert.Equal(t, float32(0.5), math.Float32frombits(binary.LittleEndian.Uint32(planeData[76:])))

	stats := r.Stats()
	assert.Equal(t, uint64(1), stats.Frames)
	assert.Equal(t, 2, stats.Draws)
	assert.Equal(t, 1, hb.presented)

	// a new frame may draw the same planes again
	require.NoError(t, r.BeginFrame(cam))
	require.NoError(t, r.DrawPlane(PlaneDraw{TextureKey: "near"}))
	r.EndFrame()
	r.Present()
	assert.Equal(t, 1, r.Stats().Draws)
}

func TestResizeIgnoresZero(t *testing.T) {
	r, hb := newHeadless(t)

	r.Resize(0, 0)
	w, h := r.Size()
	assert.Equal(t, 800, w)
	assert.Equal(t, 600, h)

	r.Resize(1024, 768)
	assert.Equal(t, 1024, hb.width)
	assert.Equal(t, 768, hb.height)

	r.SetPresentMode(PresentModeVSync)
	assert.Equal(t, PresentModeVSync, hb.presentMode)
}

func TestClose(t *testing.T) {
	r, hb := newHeadless(t)
	require.NoError(t, r.UploadTexture("a", texture(1, 1)))

	r.Close()
	r.Close()
	assert.True(t, hb.released)
	assert.ErrorIs(t, r.UploadTexture("b", texture(1, 1)), ErrClosed)
	assert.ErrorIs(t, r.BeginFrame(camera.GPUCameraUniform{}), ErrClosed)
	assert.Equal(t, 0, r.Stats().Textures)
}

func TestRendererBackendTypeString(t *testing.T) {
	assert.Equal(t, "wgpu", BackendTypeWGPU.String())
	assert.Equal(t, "headless", BackendTypeHeadless.String())
	assert.Equal(t, "unknown", RendererBackendType(7).String())
}
