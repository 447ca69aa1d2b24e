package shader

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/cogentcore/webgpu/wgpu"
)

var (
	structBlockRegex = regexp.MustCompile(`struct\s+(\w+)\s*\{([^}]*)\}`)
	locationRegex    = regexp.MustCompile(`@location\((\d+)\)`)
	builtinRegex     = regexp.MustCompile(`@builtin\(\w+\)`)

	// fieldRegex captures name and type after any leading attributes. The type capture is
	// greedy so array<T, N> survives intact.
	fieldRegex = regexp.MustCompile(`^(?:@\w+\([^)]*\)\s*)*(\w+)\s*:\s*(.+)$`)

	vertexEntryRegex   = regexp.MustCompile(`@vertex\s+fn\s+(\w+)`)
	fragmentEntryRegex = regexp.MustCompile(`@fragment\s+fn\s+(\w+)`)

	// bindGroupDeclRegex matches both buffer and handle declarations:
	//   @group(0) @binding(0) var<uniform> camera: CameraUniform;
	//   @group(1) @binding(0) var plane_texture: texture_2d<f32>;
	bindGroupDeclRegex = regexp.MustCompile(`@group\((\d+)\)\s*@binding\((\d+)\)\s*var(?:<([^>]*)>)?\s+(\w+)\s*:\s*([^;]+?)\s*;`)
)

// parseEntryPoints returns the first vertex and fragment entry point names, or empty strings.
func parseEntryPoints(cleaned string) (vertex, fragment string) {
	if m := vertexEntryRegex.FindStringSubmatch(cleaned); m != nil {
		vertex = m[1]
	}
	if m := fragmentEntryRegex.FindStringSubmatch(cleaned); m != nil {
		fragment = m[1]
	}
	return vertex, fragment
}

// parseStructBlocks finds every struct declaration in comment-free source.
//
// Parameters:
//   - cleaned: WGSL source with comments stripped
//
// Returns:
//   - []parsedStruct: the structs in source order
func parseStructBlocks(cleaned string) []parsedStruct {
	matches := structBlockRegex.FindAllStringSubmatch(cleaned, -1)
	structs := make([]parsedStruct, 0, len(matches))
	for _, m := range matches {
		structs = append(structs, parsedStruct{name: m[1], fields: parseStructFields(m[2])})
	}
	return structs
}

func parseStructFields(body string) []parsedField {
	parts := splitAtTopLevelCommas(body)
	fields := make([]parsedField, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		fm := fieldRegex.FindStringSubmatch(part)
		if fm == nil {
			continue
		}
		f := parsedField{
			name:      fm[1],
			typeName:  strings.TrimSpace(fm[2]),
			location:  -1,
			isBuiltin: builtinRegex.MatchString(part),
		}
		if lm := locationRegex.FindStringSubmatch(part); lm != nil {
			f.location, _ = strconv.Atoi(lm[1])
		}
		fields = append(fields, f)
	}
	return fields
}

// parseVertexLayouts turns each vertex input struct (location fields, no builtins) into one
// tightly packed vertex buffer layout, in source order.
//
// Parameters:
//   - structs: every parsed struct
//
// Returns:
//   - []wgpu.VertexBufferLayout: one layout per vertex input struct
//   - error: if a vertex input field has no vertex format
func parseVertexLayouts(structs []parsedStruct) ([]wgpu.VertexBufferLayout, error) {
	var layouts []wgpu.VertexBufferLayout
	for _, ps := range structs {
		if !isVertexInputStruct(ps) {
			continue
		}
		attrs := make([]wgpu.VertexAttribute, 0, len(ps.fields))
		var offset uint64
		for _, f := range ps.fields {
			info, ok := wgslVertexFormatMap[f.typeName]
			if !ok {
				return nil, fmt.Errorf("struct %s: field %s: unsupported vertex type %q", ps.name, f.name, f.typeName)
			}
			attrs = append(attrs, wgpu.VertexAttribute{
				Format:         info.format,
				Offset:         offset,
				ShaderLocation: uint32(f.location),
			})
			offset += info.size
		}
		layouts = append(layouts, wgpu.VertexBufferLayout{
			ArrayStride: offset,
			StepMode:    wgpu.VertexStepModeVertex,
			Attributes:  attrs,
		})
	}
	return layouts, nil
}

// isVertexInputStruct separates vertex inputs from stage outputs, which always carry
// @builtin(position).
func isVertexInputStruct(ps parsedStruct) bool {
	hasLocation := false
	for _, f := range ps.fields {
		if f.isBuiltin {
			return false
		}
		if f.location >= 0 {
			hasLocation = true
		}
	}
	return hasLocation
}

// parseResources finds every @group/@binding declaration.
func parseResources(cleaned string) []resourceDecl {
	matches := bindGroupDeclRegex.FindAllStringSubmatch(cleaned, -1)
	decls := make([]resourceDecl, 0, len(matches))
	for _, m := range matches {
		group, _ := strconv.Atoi(m[1])
		binding, _ := strconv.Atoi(m[2])
		decls = append(decls, resourceDecl{
			group:        group,
			binding:      binding,
			addressSpace: strings.TrimSpace(m[3]),
			name:         m[4],
			typeName:     strings.TrimSpace(m[5]),
		})
	}
	return decls
}

// buildBindGroupLayouts produces one descriptor per group index, entries sorted by binding.
// Groups must be contiguous from 0 since the pipeline layout is positional.
//
// Parameters:
//   - label: prefix for the descriptor labels
//   - decls: the resource declarations
//   - visibility: the stages every entry is visible to
//   - structs: struct layouts used to size buffer bindings
//
// Returns:
//   - []wgpu.BindGroupLayoutDescriptor: descriptors indexed by group
//   - error: on unsupported types, duplicate bindings or a missing group
func buildBindGroupLayouts(label string, decls []resourceDecl, visibility wgpu.ShaderStage, structs map[string]wgslTypeLayout) ([]wgpu.BindGroupLayoutDescriptor, error) {
	maxGroup := -1
	for _, d := range decls {
		maxGroup = max(maxGroup, d.group)
	}
	descriptors := make([]wgpu.BindGroupLayoutDescriptor, maxGroup+1)

	for _, d := range decls {
		entry, ok := classifyResource(d, visibility, structs)
		if !ok {
			return nil, fmt.Errorf("@group(%d) @binding(%d) %s: unsupported resource type %q", d.group, d.binding, d.name, d.typeName)
		}
		desc := &descriptors[d.group]
		if slices.ContainsFunc(desc.Entries, func(e wgpu.BindGroupLayoutEntry) bool { return e.Binding == entry.Binding }) {
			return nil, fmt.Errorf("@group(%d) @binding(%d) %s: binding declared twice", d.group, d.binding, d.name)
		}
		desc.Entries = append(desc.Entries, entry)
	}

	for g := range descriptors {
		if len(descriptors[g].Entries) == 0 {
			return nil, fmt.Errorf("@group(%d) has no bindings", g)
		}
		slices.SortFunc(descriptors[g].Entries, func(a, b wgpu.BindGroupLayoutEntry) int {
			return int(a.Binding) - int(b.Binding)
		})
		descriptors[g].Label = fmt.Sprintf("%s Group %d Layout", label, g)
	}
	return descriptors, nil
}
