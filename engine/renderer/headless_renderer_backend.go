package renderer

import (
	"errors"
	"slices"
	"sync"

	"github.com/Carmen-Shannon/oxy-gallery/common"
	"github.com/Carmen-Shannon/oxy-gallery/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-gallery/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
)

// headlessDraw is one recorded DrawCall.
type headlessDraw struct {
	pipeline string
	mesh     string
	groups   []string
}

// headlessRendererBackendImpl satisfies RendererBackend without a device. Every call is
// recorded so the renderer above it can be exercised and inspected in tests.
type headlessRendererBackendImpl struct {
	mu *sync.Mutex

	width, height int
	presentMode   PresentMode

	pipelines  []string
	meshes     map[string]int
	textures   map[string][2]uint32
	samplers   int
	bindGroups map[string]int
	writes     map[string]map[int][]byte

	inFrame   bool
	frames    int
	presented int
	draws     []headlessDraw
	lastDraws []headlessDraw
	released  bool
}

var _ RendererBackend = &headlessRendererBackendImpl{}

func newHeadlessRendererBackend() *headlessRendererBackendImpl {
	return &headlessRendererBackendImpl{
		mu:          &sync.Mutex{},
		presentMode: PresentModeUncapped,
		meshes:      make(map[string]int),
		textures:    make(map[string][2]uint32),
		bindGroups:  make(map[string]int),
		writes:      make(map[string]map[int][]byte),
	}
}

func (b *headlessRendererBackendImpl) ConfigureSurface(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.width, b.height = width, height
}

func (b *headlessRendererBackendImpl) SetPresentMode(mode PresentMode) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.presentMode = mode
}

func (b *headlessRendererBackendImpl) RegisterRenderPipeline(p pipeline.Pipeline) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if p.Source() == "" {
		return errors.New("pipeline has no shader source")
	}
	if p.VertexEntryPoint() == "" || p.FragmentEntryPoint() == "" {
		return errors.New("pipeline is missing an entry point")
	}
	// layouts stay nil; providers fall back to their own
	p.SetBindGroupLayouts(make([]*wgpu.BindGroupLayout, len(p.BindGroupLayoutDescriptors())))
	b.pipelines = append(b.pipelines, p.PipelineKey())
	return nil
}

func (b *headlessRendererBackendImpl) InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(indexData) != indexCount*4 {
		return errors.New("index data does not match index count")
	}
	b.meshes[provider.Label()] = len(vertexData)
	provider.SetIndexCount(indexCount)
	return nil
}

func (b *headlessRendererBackendImpl) InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(descriptor.Entries) == 0 {
		return nil
	}
	b.bindGroups[provider.Label()]++
	return nil
}

func (b *headlessRendererBackendImpl) InitTextureView(provider bind_group_provider.BindGroupProvider, bindingKey int, stagingData common.TextureStagingData) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if uint64(len(stagingData.Pixels)) != uint64(stagingData.Width)*uint64(stagingData.Height)*4 {
		return errors.New("pixel data does not match texture size")
	}
	b.textures[provider.Label()] = [2]uint32{stagingData.Width, stagingData.Height}
	return nil
}

func (b *headlessRendererBackendImpl) InitSampler(provider bind_group_provider.BindGroupProvider, bindingKey int, samplerStagingData common.SamplerStagingData) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.samplers++
	return nil
}

func (b *headlessRendererBackendImpl) WriteBuffers(writes []bind_group_provider.BufferWrite) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, w := range writes {
		label := w.Provider.Label()
		if b.writes[label] == nil {
			b.writes[label] = make(map[int][]byte)
		}
		b.writes[label][w.Binding] = slices.Clone(w.Data)
	}
}

func (b *headlessRendererBackendImpl) BeginFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.inFrame {
		return errors.New("previous frame surface not yet presented")
	}
	b.inFrame = true
	b.draws = b.draws[:0]
	return nil
}

func (b *headlessRendererBackendImpl) DrawCall(p pipeline.Pipeline, meshProvider bind_group_provider.BindGroupProvider, bindGroups []bind_group_provider.BindGroupProvider) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.inFrame {
		return
	}
	groups := make([]string, len(bindGroups))
	for i, bg := range bindGroups {
		groups[i] = bg.Label()
	}
	b.draws = append(b.draws, headlessDraw{
		pipeline: p.PipelineKey(),
		mesh:     meshProvider.Label(),
		groups:   groups,
	})
}

func (b *headlessRendererBackendImpl) EndFrame() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.inFrame {
		return
	}
	b.frames++
	b.lastDraws = slices.Clone(b.draws)
}

func (b *headlessRendererBackendImpl) Present() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.inFrame {
		return
	}
	b.inFrame = false
	b.presented++
}

func (b *headlessRendererBackendImpl) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.released = true
}
