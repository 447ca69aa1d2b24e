package pipeline

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
)

func TestNewPipelineDefaults(t *testing.T) {
	p := NewPipeline("plane", "// wgsl")

	assert.Equal(t, "plane", p.PipelineKey())
	assert.Equal(t, "// wgsl", p.Source())
	assert.Equal(t, DefaultVertexEntryPoint, p.VertexEntryPoint())
	assert.Equal(t, DefaultFragmentEntryPoint, p.FragmentEntryPoint())
	assert.True(t, p.DepthTestEnabled())
	assert.True(t, p.DepthWriteEnabled())
	assert.False(t, p.BlendEnabled())
	assert.Nil(t, p.BlendState())
	assert.Equal(t, wgpu.CullModeNone, p.CullMode())
	assert.Equal(t, wgpu.PrimitiveTopologyTriangleList, p.Topology())
	assert.Nil(t, p.Pipeline())
}

func TestPipelineOptions(t *testing.T) {
	layout := wgpu.VertexBufferLayout{ArrayStride: 20, StepMode: wgpu.VertexStepModeVertex}
	groups := []wgpu.BindGroupLayoutDescriptor{{Label: "g0"}, {Label: "g1"}}

	p := NewPipeline("plane", "src",
		WithEntryPoints("v", "f"),
		WithVertexLayouts(layout),
		WithBindGroupLayouts(groups...),
		WithBlend(nil),
		WithDepth(true, false),
		WithPrimitive(wgpu.PrimitiveTopologyTriangleStrip, wgpu.FrontFaceCW, wgpu.CullModeBack),
	)

	assert.Equal(t, "v", p.VertexEntryPoint())
	assert.Equal(t, "f", p.FragmentEntryPoint())
	assert.Equal(t, []wgpu.VertexBufferLayout{layout}, p.VertexLayouts())
	assert.Len(t, p.BindGroupLayoutDescriptors(), 2)
	assert.True(t, p.BlendEnabled())
	assert.Equal(t, wgpu.BlendFactorSrcAlpha, p.BlendState().Color.SrcFactor)
	assert.True(t, p.DepthTestEnabled())
	assert.False(t, p.DepthWriteEnabled())
	assert.Equal(t, wgpu.PrimitiveTopologyTriangleStrip, p.Topology())
	assert.Equal(t, wgpu.CullModeBack, p.CullMode())
	assert.Equal(t, wgpu.FrontFaceCW, p.FrontFace())

	g1, ok := p.BindGroupLayoutDescriptor(1)
	assert.True(t, ok)
	assert.Equal(t, "g1", g1.Label)
	_, ok = p.BindGroupLayoutDescriptor(2)
	assert.False(t, ok)
	_, ok = p.BindGroupLayoutDescriptor(-1)
	assert.False(t, ok)

	// layouts are absent until the backend registers the pipeline
	assert.Nil(t, p.BindGroupLayout(0))
	p.SetBindGroupLayouts(make([]*wgpu.BindGroupLayout, 2))
	assert.Nil(t, p.BindGroupLayout(1))
	assert.Nil(t, p.BindGroupLayout(5))

	p.Release()
	assert.Nil(t, p.BindGroupLayout(0))
}

func TestWithBlendCustomState(t *testing.T) {
	additive := &wgpu.BlendState{
		Color: wgpu.BlendComponent{SrcFactor: wgpu.BlendFactorOne, DstFactor: wgpu.BlendFactorOne, Operation: wgpu.BlendOperationAdd},
		Alpha: wgpu.BlendComponent{SrcFactor: wgpu.BlendFactorOne, DstFactor: wgpu.BlendFactorOne, Operation: wgpu.BlendOperationAdd},
	}
	p := NewPipeline("add", "src", WithBlend(additive))
	assert.Same(t, additive, p.BlendState())
}
