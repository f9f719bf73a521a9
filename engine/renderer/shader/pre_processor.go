// pre_processor.go implements the Oxy WGSL shader pre-processor. It scans shader
// source code for @oxy: annotations, replaces them with generated WGSL declarations
// or injected struct source, and collects a declarations list from which the compute
// backend derives bind group layouts.
package shader

import (
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/oxy-grass/engine/camera"
	"github.com/Carmen-Shannon/oxy-grass/engine/grass"
)

// registryEntry pairs a WGSL struct source string (embedded from a .wgsl asset file)
// with the resolved WGSL type name and its size in bytes.
type registryEntry struct {
	// Source is the raw WGSL struct definition text injected by @oxy:include.
	Source string

	// Type is the WGSL type name emitted in @oxy:group declarations.
	Type string

	// Size is the struct size, used as the minimum binding size of the layout entry.
	Size uint64
}

type preProcessor struct {
	structRegistry       map[AnnotationArg]registryEntry
	addressSpaceRegistry map[AnnotationArg]string

	// declarations accumulates group annotations during a Process call.
	declarations []Annotation
}

// PreProcessor processes raw WGSL shader source code containing @oxy: annotations.
type PreProcessor interface {
	// Process replaces @oxy:include annotations with struct source and @oxy:group
	// annotations with @group/@binding declarations. Each struct is injected at most once.
	//
	// Parameters:
	//   - source: the raw WGSL shader source code
	//
	// Returns:
	//   - string: the processed WGSL source
	//   - error: an error if any annotation is malformed or references an unknown type
	Process(source string) (string, error)

	// Declarations returns the group annotations collected during the most recent call
	// to Process, in source order.
	//
	// Returns:
	//   - []Annotation: the declarations
	Declarations() []Annotation

	// StructSize returns the registered size of a struct type key.
	//
	// Parameters:
	//   - arg: the struct type key
	//
	// Returns:
	//   - uint64: the size in bytes, or 0 if unknown
	StructSize(arg AnnotationArg) uint64
}

var _ PreProcessor = &preProcessor{}

// NewPreProcessor creates a new PreProcessor with all registered struct types and
// address space mappings pre-populated.
//
// Returns:
//   - PreProcessor: a ready-to-use pre-processor instance
func NewPreProcessor() PreProcessor {
	return &preProcessor{
		structRegistry: map[AnnotationArg]registryEntry{
			AnnotationArgCamera:           {Source: camera.GPUCameraUniformSource, Type: "CameraUniform", Size: uint64((&camera.GPUCameraUniform{}).Size())},
			AnnotationArgTime:             {Source: grass.GPUTimeUniformSource, Type: "TimeUniform", Size: uint64((&grass.GPUTimeUniform{}).Size())},
			AnnotationArgEnvironment:      {Source: grass.GPUEnvironmentUniformSource, Type: "EnvironmentUniform", Size: uint64((&grass.GPUEnvironmentUniform{}).Size())},
			AnnotationArgBlade:            {Source: grass.GPUBladeSource, Type: "Blade", Size: uint64((&grass.GPUBlade{}).Size())},
			AnnotationArgDrawIndirectArgs: {Source: grass.GPUDrawIndirectArgsSource, Type: "DrawIndirectArgs", Size: uint64((&grass.GPUDrawIndirectArgs{}).Size())},
		},
		addressSpaceRegistry: map[AnnotationArg]string{
			AnnotationArgStorageTypeUniform:   "var<uniform>",
			AnnotationArgStorageTypeRead:      "var<storage, read>",
			AnnotationArgStorageTypeReadWrite: "var<storage, read_write>",
		},
	}
}

func (p *preProcessor) Process(source string) (string, error) {
	p.declarations = p.declarations[:0]
	included := make(map[AnnotationArg]bool)

	lines := strings.Split(source, "\n")
	out := make([]string, 0, len(lines))
	for i, line := range lines {
		a, err := parseAnnotation(line, i+1)
		if err != nil {
			return "", err
		}
		if a == nil {
			out = append(out, line)
			continue
		}

		switch a.Type {
		case annotationTypeInclude:
			if included[a.Args[0]] {
				continue
			}
			included[a.Args[0]] = true
			out = append(out, strings.TrimRight(p.structRegistry[a.Args[0]].Source, "\n"))
		case AnnotationTypeBindingGroup:
			typeArg, isArray := a.StructType()
			wgslType := p.structRegistry[typeArg].Type
			if isArray {
				wgslType = fmt.Sprintf("array<%s>", wgslType)
			}
			out = append(out, fmt.Sprintf("@group(%d) @binding(%d) %s %s: %s;",
				*a.Group, *a.Binding, p.addressSpaceRegistry[a.AddressSpace()], a.Args[1], wgslType))
			p.declarations = append(p.declarations, *a)
		default:
			return "", fmt.Errorf("line %d: unknown annotation type %q", i+1, a.Type)
		}
	}
	return strings.Join(out, "\n"), nil
}

func (p *preProcessor) Declarations() []Annotation {
	return p.declarations
}

func (p *preProcessor) StructSize(arg AnnotationArg) uint64 {
	return p.structRegistry[arg].Size
}
