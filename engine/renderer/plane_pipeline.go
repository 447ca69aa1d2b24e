package renderer

import (
	_ "embed"

	"github.com/Carmen-Shannon/oxy-gallery/common"
	"github.com/Carmen-Shannon/oxy-gallery/engine/plane"
	"github.com/Carmen-Shannon/oxy-gallery/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-gallery/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

//go:embed assets/plane.wgsl
var planeShaderSource string

// PlanePipelineKey is the cache key of the textured plane pipeline.
const PlanePipelineKey = "plane"

// Bind group indices and bindings used by the plane shader.
const (
	cameraGroup = 0
	planeGroup  = 1

	cameraUniformBinding = 0
	planeTextureBinding  = 0
	planeSamplerBinding  = 1
	planeUniformBinding  = 2
)

// quadVertexStride is position (vec3) plus uv (vec2).
const quadVertexStride = 5 * 4

// PlaneShader parses the plane shader with the camera and plane uniforms included.
//
// Returns:
//   - shader.Shader: the parsed shader
//   - error: if the shader source does not parse
func PlaneShader() (shader.Shader, error) {
	return shader.NewShader(PlanePipelineKey, planeShaderSource)
}

// newPlanePipeline describes the pipeline every gallery plane is drawn with. Planes are
// translucent and drawn back to front, so blending is on and depth writes are off.
func newPlanePipeline() (pipeline.Pipeline, error) {
	s, err := PlaneShader()
	if err != nil {
		return nil, err
	}
	return pipeline.NewPipeline(PlanePipelineKey, s.Source(),
		pipeline.WithEntryPoints(s.VertexEntryPoint(), s.FragmentEntryPoint()),
		pipeline.WithVertexLayouts(s.VertexLayouts()...),
		pipeline.WithBindGroupLayouts(s.BindGroupLayoutDescriptors()...),
		pipeline.WithBlend(nil),
		pipeline.WithDepth(true, false),
		pipeline.WithPrimitive(wgpu.PrimitiveTopologyTriangleList, wgpu.FrontFaceCCW, wgpu.CullModeNone),
	), nil
}

// quadMesh returns the vertex and index bytes of a BaseSize x BaseSize quad centred on the
// origin in the XY plane, facing +Z.
func quadMesh() (vertexData, indexData []byte, indexCount int) {
	h := float32(plane.BaseSize) / 2
	vertices := []float32{
		-h, h, 0, 0, 0,
		-h, -h, 0, 0, 1,
		h, -h, 0, 1, 1,
		h, h, 0, 1, 0,
	}
	indices := []uint32{0, 1, 2, 0, 2, 3}
	return common.SliceToBytes(vertices), common.SliceToBytes(indices), len(indices)
}
