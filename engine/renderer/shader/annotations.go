package shader

import (
	"fmt"
	"strconv"
	"strings"
)

// annotationPrefix marks a WGSL line comment as a pre-processor annotation.
const annotationPrefix = "//@oxy:"

// AnnotationType identifies the kind of an @oxy: annotation.
type AnnotationType string

const (
	// AnnotationTypeInclude injects a registered struct definition at the annotation site.
	// Each struct is injected at most once per shader.
	//
	// Syntax: //@oxy:include <struct_key>
	//
	// Example: //@oxy:include camera
	AnnotationTypeInclude AnnotationType = "include"

	// AnnotationTypeGroup emits a buffer declaration for a registered struct.
	//
	// Syntax: //@oxy:group <group> <binding> <address_space> <var_name> <struct_key>
	//
	// Example: //@oxy:group 0 0 uniform camera camera
	AnnotationTypeGroup AnnotationType = "group"
)

// Annotation is one parsed @oxy: line.
type Annotation struct {
	Type AnnotationType
	Args []string

	// Line is the 1-based source line the annotation was found on.
	Line int

	// Group and Binding are set for group annotations only.
	Group   int
	Binding int
}

// addressSpaces maps the address space argument of a group annotation to its var<> qualifier.
var addressSpaces = map[string]string{
	"uniform":            "uniform",
	"storage":            "storage, read",
	"storage_read_write": "storage, read_write",
}

// parseAnnotation parses a single source line. ok is false when the line is not an annotation.
//
// Parameters:
//   - line: the raw source line
//   - lineNo: the 1-based line number, used in errors
//
// Returns:
//   - Annotation: the parsed annotation
//   - bool: true if the line carried an annotation
//   - error: a syntax error for malformed annotations
func parseAnnotation(line string, lineNo int) (Annotation, bool, error) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, annotationPrefix) {
		return Annotation{}, false, nil
	}

	fields := strings.Fields(strings.TrimPrefix(trimmed, annotationPrefix))
	if len(fields) == 0 {
		return Annotation{}, true, fmt.Errorf("line %d: empty annotation", lineNo)
	}

	a := Annotation{Type: AnnotationType(fields[0]), Args: fields[1:], Line: lineNo}
	switch a.Type {
	case AnnotationTypeInclude:
		if len(a.Args) != 1 {
			return a, true, fmt.Errorf("line %d: include takes 1 argument, got %d", lineNo, len(a.Args))
		}
	case AnnotationTypeGroup:
		if len(a.Args) != 5 {
			return a, true, fmt.Errorf("line %d: group takes 5 arguments, got %d", lineNo, len(a.Args))
		}
		group, err := strconv.Atoi(a.Args[0])
		if err != nil || group < 0 {
			return a, true, fmt.Errorf("line %d: invalid group %q", lineNo, a.Args[0])
		}
		binding, err := strconv.Atoi(a.Args[1])
		if err != nil || binding < 0 {
			return a, true, fmt.Errorf("line %d: invalid binding %q", lineNo, a.Args[1])
		}
		if _, ok := addressSpaces[a.Args[2]]; !ok {
			return a, true, fmt.Errorf("line %d: unknown address space %q", lineNo, a.Args[2])
		}
		a.Group, a.Binding = group, binding
		a.Args = a.Args[2:]
	default:
		return a, true, fmt.Errorf("line %d: unknown annotation %q", lineNo, fields[0])
	}
	return a, true, nil
}
