package renderer

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-grass/common"
	"github.com/Carmen-Shannon/oxy-grass/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-grass/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-grass/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

const resetSource = `//@oxy:include draw_indirect_args

//@oxy:group 0 0 storage_read_write drawArgs draw_indirect_args

@compute @workgroup_size(1)
fn reset_count(@builtin(global_invocation_id) id: vec3<u32>) {
    atomicStore(&drawArgs.vertexCount, 7u);
    drawArgs.instanceCount = 1u;
}
`

// newTestBackend returns a backend or skips when no adapter is available.
func newTestBackend(t *testing.T) ComputeBackend {
	t.Helper()
	b, err := NewWGPUComputeBackend()
	if err != nil {
		t.Skipf("no GPU adapter available: %v", err)
	}
	t.Cleanup(b.Release)
	return b
}

func TestDispatchWithoutFrame(t *testing.T) {
	b := newTestBackend(t)

	s, err := shader.NewShader("reset", shader.ShaderTypeCompute, resetSource)
	if err != nil {
		t.Fatalf("NewShader() error = %v", err)
	}
	p := pipeline.NewPipeline("reset", pipeline.WithComputeShader(s))
	if err := b.RegisterComputePipeline(p); err != nil {
		t.Fatalf("RegisterComputePipeline() error = %v", err)
	}
	if err := b.DispatchCompute(p, nil, [3]uint32{1, 1, 1}); !errors.Is(err, ErrNoComputeFrame) {
		t.Errorf("DispatchCompute() error = %v, want ErrNoComputeFrame", err)
	}
	if err := b.EndComputeFrame(); !errors.Is(err, ErrNoComputeFrame) {
		t.Errorf("EndComputeFrame() error = %v, want ErrNoComputeFrame", err)
	}
}

func TestDispatchAndReadBack(t *testing.T) {
	b := newTestBackend(t)

	s, err := shader.NewShader("reset", shader.ShaderTypeCompute, resetSource)
	if err != nil {
		t.Fatalf("NewShader() error = %v", err)
	}
	p := pipeline.NewPipeline("reset", pipeline.WithComputeShader(s))
	if err := b.RegisterComputePipeline(p); err != nil {
		t.Fatalf("RegisterComputePipeline() error = %v", err)
	}
	if got := b.Pipeline("reset"); got != p {
		t.Errorf("Pipeline(reset) = %v, want registered pipeline", got)
	}
	// re-registering is a no-op
	if err := b.RegisterComputePipeline(p); err != nil {
		t.Fatalf("RegisterComputePipeline() second call error = %v", err)
	}

	provider := bind_group_provider.NewBindGroupProvider("args")
	t.Cleanup(provider.Release)
	err = b.InitBindGroup(provider, s.BindGroupLayoutDescriptors()[0],
		map[int]wgpu.BufferUsage{0: wgpu.BufferUsageCopySrc}, nil)
	if err != nil {
		t.Fatalf("InitBindGroup() error = %v", err)
	}

	if err := b.BeginComputeFrame(); err != nil {
		t.Fatalf("BeginComputeFrame() error = %v", err)
	}
	if err := b.DispatchCompute(p, []bind_group_provider.BindGroupProvider{provider}, [3]uint32{1, 1, 1}); err != nil {
		t.Fatalf("DispatchCompute() error = %v", err)
	}
	if err := b.EndComputeFrame(); err != nil {
		t.Fatalf("EndComputeFrame() error = %v", err)
	}

	data, err := b.ReadBuffer(provider.Buffer(0), 16)
	if err != nil {
		t.Fatalf("ReadBuffer() error = %v", err)
	}
	words := common.BytesToSlice[uint32](data)
	if len(words) != 4 {
		t.Fatalf("len(words) = %d, want 4", len(words))
	}
	if got := words[0]; got != 7 {
		t.Errorf("vertexCount = %d, want 7", got)
	}
	if got := words[1]; got != 1 {
		t.Errorf("instanceCount = %d, want 1", got)
	}
}
