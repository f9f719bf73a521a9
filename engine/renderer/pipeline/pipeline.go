package pipeline

import (
	"github.com/Carmen-Shannon/oxy-grass/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// pipeline is the implementation of the Pipeline interface.
// It holds the compute shader and the WebGPU pipeline object created from it.
type pipeline struct {
	// pipelineKey is the unique identifier for this pipeline, used for caching and lookups
	pipelineKey string

	// computeShader is required before the backend can register the pipeline
	computeShader shader.Shader

	// computePipeline is set by the backend once the pipeline is registered
	computePipeline *wgpu.ComputePipeline

	// bindGroupLayouts holds the GPU layouts created during registration, keyed by group index
	bindGroupLayouts map[int]*wgpu.BindGroupLayout
}

// Pipeline defines the interface for a GPU compute pipeline. It carries the compute shader whose
// declarations drive bind group layout creation and the registered wgpu.ComputePipeline.
type Pipeline interface {
	// PipelineKey returns the unique key associated with this pipeline.
	//
	// Returns:
	//   - string: the unique key for this pipeline
	PipelineKey() string

	// Shader returns the compute shader of this pipeline.
	//
	// Returns:
	//   - shader.Shader: the compute shader, or nil if not set
	Shader() shader.Shader

	// ComputePipeline returns the registered WebGPU pipeline, nil before registration.
	//
	// Returns:
	//   - *wgpu.ComputePipeline: the compute pipeline
	ComputePipeline() *wgpu.ComputePipeline

	// BindGroupLayout returns the GPU layout created for the given group index.
	//
	// Parameters:
	//   - group: the bind group index
	//
	// Returns:
	//   - *wgpu.BindGroupLayout: the layout, or nil if the group is unknown
	BindGroupLayout(group int) *wgpu.BindGroupLayout

	// WorkgroupCount returns the number of workgroups along x needed to cover n invocations.
	//
	// Parameters:
	//   - n: the number of invocations
	//
	// Returns:
	//   - uint32: ceil(n / workgroup size x)
	WorkgroupCount(n int) uint32

	// SetComputePipeline sets the compute pipeline.
	//
	// Parameters:
	//   - p: the WebGPU compute pipeline to set
	SetComputePipeline(p *wgpu.ComputePipeline)

	// SetBindGroupLayout stores the GPU layout for a group index.
	//
	// Parameters:
	//   - group: the bind group index
	//   - layout: the created layout
	SetBindGroupLayout(group int, layout *wgpu.BindGroupLayout)

	// Release releases the compute pipeline and its bind group layouts.
	Release()
}

var _ Pipeline = &pipeline{}

// NewPipeline is the entry point to create a new compute Pipeline.
//
// Parameters:
//   - pipelineKey: the unique key for this pipeline
//   - opts: a variadic list of PipelineBuilderOption functions to configure the pipeline
//
// Returns:
//   - Pipeline: a new Pipeline instance with the specified configuration
func NewPipeline(pipelineKey string, opts ...PipelineBuilderOption) Pipeline {
	p := &pipeline{
		pipelineKey:      pipelineKey,
		bindGroupLayouts: make(map[int]*wgpu.BindGroupLayout),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *pipeline) PipelineKey() string {
	return p.pipelineKey
}

func (p *pipeline) Shader() shader.Shader {
	return p.computeShader
}

func (p *pipeline) ComputePipeline() *wgpu.ComputePipeline {
	return p.computePipeline
}

func (p *pipeline) BindGroupLayout(group int) *wgpu.BindGroupLayout {
	return p.bindGroupLayouts[group]
}

func (p *pipeline) WorkgroupCount(n int) uint32 {
	if n <= 0 {
		return 0
	}
	size := uint32(1)
	if p.computeShader != nil {
		if x := p.computeShader.WorkgroupSize()[0]; x > 0 {
			size = x
		}
	}
	return (uint32(n) + size - 1) / size
}

func (p *pipeline) SetComputePipeline(cp *wgpu.ComputePipeline) {
	p.computePipeline = cp
}

func (p *pipeline) SetBindGroupLayout(group int, layout *wgpu.BindGroupLayout) {
	p.bindGroupLayouts[group] = layout
}

func (p *pipeline) Release() {
	for g, l := range p.bindGroupLayouts {
		if l != nil {
			l.Release()
		}
		delete(p.bindGroupLayouts, g)
	}
	if p.computePipeline != nil {
		p.computePipeline.Release()
		p.computePipeline = nil
	}
}
