package pipeline

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-grass/engine/grass"
	"github.com/Carmen-Shannon/oxy-grass/engine/renderer/shader"
)

func TestWorkgroupCount(t *testing.T) {
	s, err := shader.NewShader("grass_compute", shader.ShaderTypeCompute, grass.GrassComputeSource)
	if err != nil {
		t.Fatalf("NewShader() error = %v", err)
	}
	p := NewPipeline("grass", WithComputeShader(s))

	tests := []struct {
		n    int
		want uint32
	}{
		{0, 0},
		{-3, 0},
		{1, 1},
		{32, 1},
		{33, 2},
		{8192, 256},
	}
	for _, tt := range tests {
		if got := p.WorkgroupCount(tt.n); got != tt.want {
			t.Errorf("WorkgroupCount(%d) = %d, want %d", tt.n, got, tt.want)
		}
	}
}

func TestNewPipelineDefaults(t *testing.T) {
	p := NewPipeline("empty")
	if p.PipelineKey() != "empty" {
		t.Errorf("PipelineKey() = %q, want empty", p.PipelineKey())
	}
	if p.Shader() != nil {
		t.Error("Shader() != nil, want nil")
	}
	if p.ComputePipeline() != nil {
		t.Error("ComputePipeline() != nil before registration")
	}
	if p.BindGroupLayout(0) != nil {
		t.Error("BindGroupLayout(0) != nil before registration")
	}
	if got := p.WorkgroupCount(5); got != 5 {
		t.Errorf("WorkgroupCount(5) without shader = %d, want 5", got)
	}
	p.Release()
}
