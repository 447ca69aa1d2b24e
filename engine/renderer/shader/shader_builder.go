package shader

import "github.com/cogentcore/webgpu/wgpu"

// ShaderBuilderOption is a functional option used to configure a Shader during construction.
type ShaderBuilderOption func(*shader)

// WithPreProcessor sets the pre-processor used to expand annotations. Defaults to NewPreProcessor().
//
// Parameters:
//   - p: the pre-processor
//
// Returns:
//   - ShaderBuilderOption: a function that sets the pre-processor for this shader
func WithPreProcessor(p PreProcessor) ShaderBuilderOption {
	return func(s *shader) {
		s.preProcessor = p
	}
}

// WithVisibility sets the stages every reflected bind group entry is visible to.
// Defaults to vertex and fragment.
func WithVisibility(visibility wgpu.ShaderStage) ShaderBuilderOption {
	return func(s *shader) {
		s.visibility = visibility
	}
}
