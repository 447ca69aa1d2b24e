package shader

import (
	"errors"
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// ErrMissingEntryPoint is returned when a shader lacks a @vertex or @fragment function.
var ErrMissingEntryPoint = errors.New("shader: missing entry point")

// shader is the implementation of the Shader interface.
type shader struct {
	key    string
	source string

	vertexEntry   string
	fragmentEntry string

	vertexLayouts []wgpu.VertexBufferLayout
	groupLayouts  []wgpu.BindGroupLayoutDescriptor
	varNames      map[[2]int]string

	preProcessor PreProcessor
	visibility   wgpu.ShaderStage
}

// Shader is a pre-processed WGSL render module together with the layouts reflected from it:
// the entry points, the vertex buffer layouts and one bind group layout descriptor per group.
// Immutable after construction.
type Shader interface {
	// Key returns the identifier the shader was created with.
	Key() string

	// Source returns the WGSL after annotation expansion.
	Source() string

	// VertexEntryPoint returns the name of the @vertex function.
	VertexEntryPoint() string

	// FragmentEntryPoint returns the name of the @fragment function.
	FragmentEntryPoint() string

	// VertexLayouts returns one layout per vertex input struct, in declaration order.
	VertexLayouts() []wgpu.VertexBufferLayout

	// BindGroupLayoutDescriptors returns one descriptor per bind group, indexed by group.
	//
	// Returns:
	//   - []wgpu.BindGroupLayoutDescriptor: the descriptors; callers must not modify them
	BindGroupLayoutDescriptors() []wgpu.BindGroupLayoutDescriptor

	// Binding looks up a bound variable by name.
	//
	// Parameters:
	//   - name: the WGSL variable name
	//
	// Returns:
	//   - group: the @group index
	//   - binding: the @binding index
	//   - ok: false if no variable has that name
	Binding(name string) (group, binding int, ok bool)
}

var _ Shader = &shader{}

// NewShader pre-processes source and reflects its layouts.
//
// Parameters:
//   - key: the identifier used for labels and errors
//   - source: WGSL source, optionally containing @oxy: annotations
//   - options: functional options to configure the shader
//
// Returns:
//   - Shader: the parsed shader
//   - error: on annotation errors, missing entry points or unsupported declarations
func NewShader(key, source string, options ...ShaderBuilderOption) (Shader, error) {
	s := &shader{
		key:        key,
		visibility: wgpu.ShaderStageVertex | wgpu.ShaderStageFragment,
		varNames:   make(map[[2]int]string),
	}
	for _, opt := range options {
		opt(s)
	}
	if s.preProcessor == nil {
		s.preProcessor = NewPreProcessor()
	}

	processed, _, err := s.preProcessor.Process(source)
	if err != nil {
		return nil, fmt.Errorf("shader %s: %w", key, err)
	}
	s.source = processed

	cleaned := stripComments(processed)
	s.vertexEntry, s.fragmentEntry = parseEntryPoints(cleaned)
	if s.vertexEntry == "" || s.fragmentEntry == "" {
		return nil, fmt.Errorf("shader %s: %w", key, ErrMissingEntryPoint)
	}

	structs := parseStructBlocks(cleaned)
	if s.vertexLayouts, err = parseVertexLayouts(structs); err != nil {
		return nil, fmt.Errorf("shader %s: %w", key, err)
	}

	decls := parseResources(cleaned)
	if s.groupLayouts, err = buildBindGroupLayouts(key, decls, s.visibility, computeStructSizes(structs)); err != nil {
		return nil, fmt.Errorf("shader %s: %w", key, err)
	}
	for _, d := range decls {
		s.varNames[[2]int{d.group, d.binding}] = d.name
	}
	return s, nil
}

func (s *shader) Key() string {
	return s.key
}

func (s *shader) Source() string {
	return s.source
}

func (s *shader) VertexEntryPoint() string {
	return s.vertexEntry
}

func (s *shader) FragmentEntryPoint() string {
	return s.fragmentEntry
}

func (s *shader) VertexLayouts() []wgpu.VertexBufferLayout {
	return s.vertexLayouts
}

func (s *shader) BindGroupLayoutDescriptors() []wgpu.BindGroupLayoutDescriptor {
	return s.groupLayouts
}

func (s *shader) Binding(name string) (int, int, bool) {
	for gb, n := range s.varNames {
		if n == name {
			return gb[0], gb[1], true
		}
	}
	return 0, 0, false
}
