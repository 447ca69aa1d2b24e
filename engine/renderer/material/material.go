package material

import (
	"github.com/Carmen-Shannon/oxy-gallery/common"
	"github.com/Carmen-Shannon/oxy-gallery/engine/renderer/bind_group_provider"
)

// material is the implementation of the Material interface.
type material struct {
	name              string
	texture           *common.TextureStagingData
	width, height     uint32
	pipelineKey       string
	bindGroupProvider bind_group_provider.BindGroupProvider
}

// Material binds one image texture to the plane pipeline. Each plane in the gallery owns exactly
// one material, keyed by the image identifier.
//
// The CPU copy of the pixels is kept until the texture reaches the GPU, after which
// DropTexture frees it. Width and Height stay available for aspect calculations.
type Material interface {
	// Name retrieves the material identifier, which is also the texture key.
	//
	// Returns:
	//   - string: the name of the material
	Name() string

	// Texture retrieves the staged pixel data, or nil once it has been dropped.
	//
	// Returns:
	//   - *common.TextureStagingData: the staged texture, or nil
	Texture() *common.TextureStagingData

	// DropTexture releases the CPU copy of the pixels.
	DropTexture()

	// Width returns the texture width in pixels.
	Width() uint32

	// Height returns the texture height in pixels.
	Height() uint32

	// Aspect returns width / height, or 1 for an empty texture.
	Aspect() float32

	// PipelineKey retrieves the key identifying the render pipeline this material uses.
	//
	// Returns:
	//   - string: the pipeline key
	PipelineKey() string

	// BindGroupProvider retrieves the bind group provider holding GPU-side resources for this material.
	//
	// Returns:
	//   - bind_group_provider.BindGroupProvider: the bind group provider, or nil if not yet initialized
	BindGroupProvider() bind_group_provider.BindGroupProvider

	// Uniform packs a model matrix, tint and opacity into the layout the plane shader expects.
	// Opacity is clamped to [0, 1].
	//
	// Parameters:
	//   - model: the column-major model matrix
	//   - color: the rgb tint
	//   - opacity: the plane opacity
	//
	// Returns:
	//   - GPUPlaneUniform: the uniform value
	Uniform(model [16]float32, color [3]float32, opacity float32) GPUPlaneUniform

	// SetPipelineKey sets the render pipeline key for this material.
	SetPipelineKey(key string)

	// SetBindGroupProvider sets the bind group provider for this material.
	//
	// Parameters:
	//   - provider: the bind group provider containing GPU resources for this material
	SetBindGroupProvider(provider bind_group_provider.BindGroupProvider)
}

var _ Material = &material{}

// NewMaterial creates a new Material instance configured with the provided options.
//
// Parameters:
//   - options: variadic list of MaterialBuilderOption functions to configure the material
//
// Returns:
//   - Material: a new Material instance
func NewMaterial(options ...MaterialBuilderOption) Material {
	m := &material{}
	for _, opt := range options {
		opt(m)
	}
	return m
}

func (m *material) Name() string {
	return m.name
}

func (m *material) Texture() *common.TextureStagingData {
	return m.texture
}

func (m *material) DropTexture() {
	m.texture = nil
}

func (m *material) Width() uint32 {
	return m.width
}

func (m *material) Height() uint32 {
	return m.height
}

func (m *material) Aspect() float32 {
	if m.width == 0 || m.height == 0 {
		return 1
	}
	return float32(m.width) / float32(m.height)
}

func (m *material) PipelineKey() string {
	return m.pipelineKey
}

func (m *material) BindGroupProvider() bind_group_provider.BindGroupProvider {
	return m.bindGroupProvider
}

func (m *material) Uniform(model [16]float32, color [3]float32, opacity float32) GPUPlaneUniform {
	return GPUPlaneUniform{
		Model: model,
		Color: [4]float32{color[0], color[1], color[2], common.Clamp(opacity, 0, 1)},
	}
}

func (m *material) SetPipelineKey(key string) {
	m.pipelineKey = key
}

func (m *material) SetBindGroupProvider(provider bind_group_provider.BindGroupProvider) {
	m.bindGroupProvider = provider
}
