package shader

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/Carmen-Shannon/oxy-gallery/engine/camera"
	"github.com/Carmen-Shannon/oxy-gallery/engine/renderer/material"
)

// ErrUnknownStruct is returned when an annotation names a struct that was never registered.
var ErrUnknownStruct = errors.New("shader: unknown struct")

// registryEntry pairs a WGSL struct definition with the type name it declares.
type registryEntry struct {
	Source string
	Type   string
}

// preProcessor is the implementation of the PreProcessor interface.
type preProcessor struct {
	mu       *sync.RWMutex
	registry map[string]registryEntry
}

// PreProcessor expands @oxy: annotations in WGSL source into plain WGSL, injecting shared
// struct definitions and the buffer declarations that use them.
// Thread-safe for concurrent access.
type PreProcessor interface {
	// Process expands every annotation in source.
	//
	// Parameters:
	//   - source: WGSL source that may contain annotations
	//
	// Returns:
	//   - string: plain WGSL
	//   - []Annotation: the group annotations, in source order
	//   - error: the first malformed or unresolvable annotation, with its line number
	Process(source string) (string, []Annotation, error)

	// Register adds or replaces a struct that annotations can refer to by key.
	//
	// Parameters:
	//   - key: the annotation argument, e.g. "camera"
	//   - source: the WGSL struct definition
	//   - typeName: the struct's WGSL type name, e.g. "CameraUniform"
	Register(key, source, typeName string)
}

var _ PreProcessor = &preProcessor{}

// NewPreProcessor creates a PreProcessor with the camera and plane uniforms registered.
//
// Returns:
//   - PreProcessor: the new pre-processor
func NewPreProcessor() PreProcessor {
	p := &preProcessor{mu: &sync.RWMutex{}, registry: make(map[string]registryEntry)}
	p.registry["camera"] = registryEntry{Source: camera.GPUCameraUniformSource, Type: "CameraUniform"}
	p.registry["plane"] = registryEntry{Source: material.GPUPlaneUniformSource, Type: "PlaneUniform"}
	return p
}

func (p *preProcessor) Register(key, source, typeName string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.registry[key] = registryEntry{Source: source, Type: typeName}
}

func (p *preProcessor) Process(source string) (string, []Annotation, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	var out strings.Builder
	out.Grow(len(source))
	var groups []Annotation
	included := make(map[string]bool)

	for i, line := range strings.Split(source, "\n") {
		a, ok, err := parseAnnotation(line, i+1)
		if err != nil {
			return "", nil, err
		}
		if !ok {
			out.WriteString(line)
			out.WriteByte('\n')
			continue
		}

		switch a.Type {
		case AnnotationTypeInclude:
			entry, found := p.registry[a.Args[0]]
			if !found {
				return "", nil, fmt.Errorf("line %d: %w %q", a.Line, ErrUnknownStruct, a.Args[0])
			}
			if included[a.Args[0]] {
				continue
			}
			included[a.Args[0]] = true
			out.WriteString(strings.TrimRight(entry.Source, "\n"))
			out.WriteByte('\n')
		case AnnotationTypeGroup:
			entry, found := p.registry[a.Args[2]]
			if !found {
				return "", nil, fmt.Errorf("line %d: %w %q", a.Line, ErrUnknownStruct, a.Args[2])
			}
			fmt.Fprintf(&out, "@group(%d) @binding(%d) var<%s> %s: %s;\n",
				a.Group, a.Binding, addressSpaces[a.Args[0]], a.Args[1], entry.Type)
			groups = append(groups, a)
		}
	}
	return strings.TrimSuffix(out.String(), "\n"), groups, nil
}
