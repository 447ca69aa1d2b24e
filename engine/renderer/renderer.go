package renderer

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Carmen-Shannon/oxy-gallery/common"
	"github.com/Carmen-Shannon/oxy-gallery/engine/camera"
	"github.com/Carmen-Shannon/oxy-gallery/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-gallery/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-gallery/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
)

var (
	// ErrClosed is returned by every operation after Close.
	ErrClosed = errors.New("renderer closed")

	// ErrNoFrame is returned by DrawPlane outside BeginFrame / EndFrame.
	ErrNoFrame = errors.New("no frame in progress")

	// ErrFrameInProgress is returned by BeginFrame when the previous frame was not presented.
	ErrFrameInProgress = errors.New("frame already in progress")

	// ErrUnknownTexture is returned by DrawPlane for a texture key that was never uploaded.
	ErrUnknownTexture = errors.New("unknown texture")

	// ErrDuplicateDraw is returned when the same texture is drawn twice in one frame. Each
	// plane owns a single uniform buffer, so a second draw would overwrite the first.
	ErrDuplicateDraw = errors.New("texture already drawn this frame")

	// ErrInvalidTexture is returned by UploadTexture for empty or inconsistent pixel data.
	ErrInvalidTexture = errors.New("invalid texture data")
)

// Surface is what the renderer needs from a window: a WebGPU surface descriptor and a size.
// window.Window satisfies it.
type Surface interface {
	SurfaceDescriptor() *wgpu.SurfaceDescriptor
	Width() int
	Height() int
}

// sizeSurface is a Surface without a native window, used by the headless backend.
type sizeSurface struct {
	width, height int
}

func (s sizeSurface) SurfaceDescriptor() *wgpu.SurfaceDescriptor { return nil }
func (s sizeSurface) Width() int                                  { return s.width }
func (s sizeSurface) Height() int                                 { return s.height }

// HeadlessSurface returns a Surface of the given size with no native window behind it.
//
// Parameters:
//   - width: the surface width in pixels
//   - height: the surface height in pixels
//
// Returns:
//   - Surface: the size-only surface
func HeadlessSurface(width, height int) Surface {
	return sizeSurface{width: width, height: height}
}

// PlaneDraw is one textured plane submitted for the current frame.
type PlaneDraw struct {
	// TextureKey selects the texture uploaded with UploadTexture.
	TextureKey string
	// Model is the column-major model matrix.
	Model [16]float32
	// Color is the rgb tint multiplied into the texture.
	Color [3]float32
	// Opacity is the plane alpha, clamped to [0, 1].
	Opacity float32
}

// FrameStats summarises renderer activity.
type FrameStats struct {
	// Frames is the number of frames ended since creation.
	Frames uint64
	// Draws is the number of planes drawn in the last ended frame.
	Draws int
	// Textures is the number of textures resident on the GPU.
	Textures int
}

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu     *sync.Mutex
	logger *slog.Logger

	backendType RendererBackendType
	backend     RendererBackend

	// pre-creation config collected from builder options
	forceFallbackAdapter bool
	pendingPresentMode   *PresentMode
	pendingMSAA          *MSAASampleCount
	clearColor           [3]float64

	width, height int

	planePipeline  pipeline.Pipeline
	cameraProvider bind_group_provider.BindGroupProvider
	quadProvider   bind_group_provider.BindGroupProvider
	materials      map[string]material.Material

	inFrame    bool
	frameDraws map[string]struct{}
	stats      FrameStats
	closed     bool
}

// Renderer draws the gallery: one camera uniform per frame and any number of textured planes.
//
// Texture uploads and frame calls are serialised by an internal mutex, so textures may be
// uploaded from any goroutine while another goroutine drives frames.
type Renderer interface {
	// BackendType returns the backend selected at construction.
	BackendType() RendererBackendType

	// Resize reconfigures the surface for a new size. Zero sizes are ignored.
	//
	// Parameters:
	//   - width: the new width of the surface in pixels
	//   - height: the new height of the surface in pixels
	Resize(width, height int)

	// Size returns the last configured surface size.
	//
	// Returns:
	//   - int: the width in pixels
	//   - int: the height in pixels
	Size() (int, int)

	// SetPresentMode sets the surface present mode. It takes effect on the next Resize.
	//
	// Parameters:
	//   - mode: the PresentMode to use (VSync or Uncapped)
	SetPresentMode(mode PresentMode)

	// UploadTexture uploads decoded pixels under key and creates the plane bind group for it.
	// Uploading an existing key replaces the previous texture.
	//
	// Parameters:
	//   - key: the texture key, normally the image identifier
	//   - tex: the decoded RGBA8 pixels
	//
	// Returns:
	//   - error: ErrInvalidTexture, ErrClosed, or a wrapped backend error
	UploadTexture(key string, tex common.TextureStagingData) error

	// HasTexture reports whether key has been uploaded.
	HasTexture(key string) bool

	// ReleaseTexture frees the GPU resources for key. Unknown keys are ignored.
	ReleaseTexture(key string)

	// BeginFrame writes the camera uniform and begins a render pass.
	//
	// Parameters:
	//   - cam: the camera uniform for this frame
	//
	// Returns:
	//   - error: ErrFrameInProgress, ErrClosed, or a wrapped backend error
	BeginFrame(cam camera.GPUCameraUniform) error

	// DrawPlane encodes one textured plane. Planes are blended in submission order, so callers
	// submit them back to front.
	//
	// Parameters:
	//   - d: the plane to draw
	//
	// Returns:
	//   - error: ErrNoFrame, ErrUnknownTexture or ErrDuplicateDraw
	DrawPlane(d PlaneDraw) error

	// EndFrame ends the render pass and submits it.
	EndFrame()

	// Present presents the frame.
	Present()

	// Stats returns a snapshot of the renderer counters.
	Stats() FrameStats

	// Close releases every GPU resource. Further calls return ErrClosed or do nothing.
	Close()
}

var _ Renderer = &renderer{}

// NewRenderer creates a Renderer on the given backend, configures the surface and registers the
// plane pipeline, camera bind group and shared quad mesh.
//
// Parameters:
//   - backendType: the type of rendering backend to use
//   - surface: the window (or HeadlessSurface) to draw into
//   - options: variadic list of RendererBuilderOption functions to configure the Renderer
//
// Returns:
//   - Renderer: the configured renderer
//   - error: an error if the pipeline or shared resources could not be created
func NewRenderer(backendType RendererBackendType, surface Surface, options ...RendererBuilderOption) (Renderer, error) {
	r := &renderer{
		mu:          &sync.Mutex{},
		logger:      slog.Default(),
		backendType: backendType,
		materials:   make(map[string]material.Material),
		frameDraws:  make(map[string]struct{}),
	}

	// options first so adapter config is known before the backend requests a GPU
	for _, opt := range options {
		opt(r)
	}

	msaa := MSAA4x
	if r.pendingMSAA != nil {
		msaa = *r.pendingMSAA
	}

	switch backendType {
	case BackendTypeHeadless:
		r.backend = newHeadlessRendererBackend()
	case BackendTypeWGPU:
		fallthrough
	default:
		r.backendType = BackendTypeWGPU
		r.backend = newWGPURendererBackend(surface.SurfaceDescriptor(), r.forceFallbackAdapter, msaa, r.clearColor)
	}

	if r.pendingPresentMode != nil {
		r.backend.SetPresentMode(*r.pendingPresentMode)
	}
	r.width, r.height = surface.Width(), surface.Height()
	r.backend.ConfigureSurface(r.width, r.height)

	if err := r.initSharedResources(); err != nil {
		r.backend.Release()
		return nil, err
	}

	r.logger.Info("renderer ready", "backend", r.backendType, "width", r.width, "height", r.height, "msaa", uint32(msaa))
	return r, nil
}

// initSharedResources registers the plane pipeline and creates the camera bind group and the
// quad mesh every plane is drawn with.
func (r *renderer) initSharedResources() error {
	planePipeline, err := newPlanePipeline()
	if err != nil {
		return fmt.Errorf("plane pipeline: %w", err)
	}
	r.planePipeline = planePipeline
	if err := r.backend.RegisterRenderPipeline(r.planePipeline); err != nil {
		return fmt.Errorf("register plane pipeline: %w", err)
	}

	camDesc, _ := r.planePipeline.BindGroupLayoutDescriptor(cameraGroup)
	r.cameraProvider = bind_group_provider.NewBindGroupProvider("Camera",
		bind_group_provider.WithBindGroupLayout(r.planePipeline.BindGroupLayout(cameraGroup)),
	)
	if err := r.backend.InitBindGroup(r.cameraProvider, camDesc); err != nil {
		return fmt.Errorf("init camera bind group: %w", err)
	}

	vertexData, indexData, indexCount := quadMesh()
	r.quadProvider = bind_group_provider.NewBindGroupProvider("Plane Quad")
	if err := r.backend.InitMeshBuffers(r.quadProvider, vertexData, indexData, indexCount); err != nil {
		return fmt.Errorf("init quad mesh: %w", err)
	}
	return nil
}

func (r *renderer) BackendType() RendererBackendType {
	return r.backendType
}

func (r *renderer) Resize(width, height int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed || width <= 0 || height <= 0 {
		return
	}
	r.width, r.height = width, height
	r.backend.ConfigureSurface(width, height)
}

func (r *renderer) Size() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.width, r.height
}

func (r *renderer) SetPresentMode(mode PresentMode) {
	r.backend.SetPresentMode(mode)
}

func (r *renderer) UploadTexture(key string, tex common.TextureStagingData) error {
	if key == "" || tex.Width == 0 || tex.Height == 0 {
		return fmt.Errorf("%w: %q is %dx%d", ErrInvalidTexture, key, tex.Width, tex.Height)
	}
	if uint64(len(tex.Pixels)) != uint64(tex.Width)*uint64(tex.Height)*4 {
		return fmt.Errorf("%w: %q has %d bytes for %dx%d", ErrInvalidTexture, key, len(tex.Pixels), tex.Width, tex.Height)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrClosed
	}

	m := material.NewMaterial(
		material.WithName(key),
		material.WithTexture(tex),
		material.WithPipelineKey(PlanePipelineKey),
	)
	provider := bind_group_provider.NewBindGroupProvider("Plane "+key,
		bind_group_provider.WithBindGroupLayout(r.planePipeline.BindGroupLayout(planeGroup)),
	)
	desc, _ := r.planePipeline.BindGroupLayoutDescriptor(planeGroup)

	if err := r.backend.InitTextureView(provider, planeTextureBinding, *m.Texture()); err != nil {
		provider.Release()
		return fmt.Errorf("upload texture %q: %w", key, err)
	}
	if err := r.backend.InitSampler(provider, planeSamplerBinding, common.SamplerStagingData{}); err != nil {
		provider.Release()
		return fmt.Errorf("create sampler for %q: %w", key, err)
	}
	if err := r.backend.InitBindGroup(provider, desc); err != nil {
		provider.Release()
		return fmt.Errorf("create bind group for %q: %w", key, err)
	}

	m.SetBindGroupProvider(provider)
	m.DropTexture()

	if old, ok := r.materials[key]; ok {
		old.BindGroupProvider().Release()
	}
	r.materials[key] = m
	r.logger.Debug("texture uploaded", "key", key, "width", tex.Width, "height", tex.Height)
	return nil
}

func (r *renderer) HasTexture(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.materials[key]
	return ok
}

func (r *renderer) ReleaseTexture(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.materials[key]
	if !ok {
		return
	}
	m.BindGroupProvider().Release()
	delete(r.materials, key)
}

func (r *renderer) BeginFrame(cam camera.GPUCameraUniform) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrClosed
	}
	if r.inFrame {
		return ErrFrameInProgress
	}

	r.backend.WriteBuffers([]bind_group_provider.BufferWrite{{
		Provider: r.cameraProvider,
		Binding:  cameraUniformBinding,
		Data:     cam.Marshal(),
	}})
	if err := r.backend.BeginFrame(); err != nil {
		return fmt.Errorf("begin frame: %w", err)
	}

	r.inFrame = true
	clear(r.frameDraws)
	return nil
}

func (r *renderer) DrawPlane(d PlaneDraw) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.inFrame {
		return ErrNoFrame
	}
	m, ok := r.materials[d.TextureKey]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownTexture, d.TextureKey)
	}
	if _, drawn := r.frameDraws[d.TextureKey]; drawn {
		return fmt.Errorf("%w: %q", ErrDuplicateDraw, d.TextureKey)
	}
	r.frameDraws[d.TextureKey] = struct{}{}

	u := m.Uniform(d.Model, d.Color, d.Opacity)
	r.backend.WriteBuffers([]bind_group_provider.BufferWrite{{
		Provider: m.BindGroupProvider(),
		Binding:  planeUniformBinding,
		Data:     u.Marshal(),
	}})
	r.backend.DrawCall(r.planePipeline, r.quadProvider, []bind_group_provider.BindGroupProvider{
		r.cameraProvider,
		m.BindGroupProvider(),
	})
	return nil
}

func (r *renderer) EndFrame() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.inFrame {
		return
	}
	r.backend.EndFrame()
	r.stats.Frames++
	r.stats.Draws = len(r.frameDraws)
}

func (r *renderer) Present() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.inFrame {
		return
	}
	r.backend.Present()
	r.inFrame = false
}

func (r *renderer) Stats() FrameStats {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := r.stats
	s.Textures = len(r.materials)
	return s
}

func (r *renderer) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return
	}
	r.closed = true
	r.inFrame = false

	for key, m := range r.materials {
		m.BindGroupProvider().Release()
		delete(r.materials, key)
	}
	r.cameraProvider.Release()
	r.quadProvider.Release()
	r.planePipeline.Release()
	r.backend.Release()
	r.logger.Info("renderer closed", "frames", r.stats.Frames)
}
