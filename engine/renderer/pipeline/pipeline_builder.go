package pipeline

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// PipelineBuilderOption is a functional option used to configure a Pipeline during construction.
type PipelineBuilderOption func(*pipeline)

// WithEntryPoints overrides the vertex and fragment entry point names.
//
// Parameters:
//   - vertex: the vertex stage entry point
//   - fragment: the fragment stage entry point
//
// Returns:
//   - PipelineBuilderOption: a function that sets the entry points for this pipeline
func WithEntryPoints(vertex, fragment string) PipelineBuilderOption {
	return func(p *pipeline) {
		p.vertexEntry = vertex
		p.fragmentEntry = fragment
	}
}

// WithVertexLayouts sets the vertex buffer layouts, in slot order.
//
// Parameters:
//   - layouts: the vertex buffer layouts consumed by the vertex stage
//
// Returns:
//   - PipelineBuilderOption: a function that sets the vertex layouts for this pipeline
func WithVertexLayouts(layouts ...wgpu.VertexBufferLayout) PipelineBuilderOption {
	return func(p *pipeline) {
		p.vertexLayouts = layouts
	}
}

// WithBindGroupLayouts sets one layout descriptor per bind group, in group order.
//
// Parameters:
//   - descriptors: the bind group layout descriptors
//
// Returns:
//   - PipelineBuilderOption: a function that sets the bind group layouts for this pipeline
func WithBindGroupLayouts(descriptors ...wgpu.BindGroupLayoutDescriptor) PipelineBuilderOption {
	return func(p *pipeline) {
		p.groupLayoutDes = descriptors
	}
}

// WithDepth sets depth testing and depth writes. With testing off every fragment passes.
//
// Parameters:
//   - test: whether fragments are compared against the depth buffer
//   - write: whether passing fragments update the depth buffer
//
// Returns:
//   - PipelineBuilderOption: a function that sets the depth state for this pipeline
func WithDepth(test, write bool) PipelineBuilderOption {
	return func(p *pipeline) {
		p.depthTestEnabled = test
		p.depthWriteEnabled = write
	}
}

// WithBlend enables blending. A nil state keeps the default straight-alpha blend.
//
// Parameters:
//   - state: the blend state, or nil
//
// Returns:
//   - PipelineBuilderOption: a function that enables blending for this pipeline
func WithBlend(state *wgpu.BlendState) PipelineBuilderOption {
	return func(p *pipeline) {
		p.blendEnabled = true
		if state != nil {
			p.blendState = state
		}
	}
}

// WithPrimitive sets primitive assembly: topology, winding order and face culling.
func WithPrimitive(topology wgpu.PrimitiveTopology, frontFace wgpu.FrontFace, cullMode wgpu.CullMode) PipelineBuilderOption {
	return func(p *pipeline) {
		p.topology = topology
		p.frontFace = frontFace
		p.cullMode = cullMode
	}
}
