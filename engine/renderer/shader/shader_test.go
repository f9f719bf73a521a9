package shader

import (
	"encoding/binary"
	"errors"
	"strings"
	"testing"

	"github.com/Carmen-Shannon/oxy-grass/engine/grass"
	"github.com/Carmen-Shannon/oxy-grass/engine/shading"
	"github.com/cogentcore/webgpu/wgpu"
)

func TestParseAnnotation(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		wantNil bool
		wantErr bool
	}{
		{"plain code", "let x = 1.0;", true, false},
		{"plain comment", "// just a comment", true, false},
		{"include", "//@oxy:include blade", false, false},
		{"include unknown", "//@oxy:include mesh", false, true},
		{"include arity", "//@oxy:include", false, true},
		{"group", "//@oxy:group 2 0 storage_read_write blades array<blade>", false, false},
		{"group bad number", "//@oxy:group x 0 storage_read blades array<blade>", false, true},
		{"group bad space", "//@oxy:group 0 0 private blades array<blade>", false, true},
		{"group bad type", "//@oxy:group 0 0 storage_read blades array<mesh>", false, true},
		{"unknown kind", "//@oxy:provider camera", false, true},
		{"annotation not in comment", "let a = 1; @oxy:include blade", true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := parseAnnotation(tt.line, 1)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseAnnotation(%q) error = %v, wantErr %v", tt.line, err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if (a == nil) != tt.wantNil {
				t.Errorf("parseAnnotation(%q) = %v, wantNil %v", tt.line, a, tt.wantNil)
			}
		})
	}
}

func TestPreProcessorIncludesOnce(t *testing.T) {
	src := "//@oxy:include blade\n//@oxy:include blade\n//@oxy:group 0 0 storage_read blades array<blade>\n"
	pp := NewPreProcessor()
	out, err := pp.Process(src)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if n := strings.Count(out, "struct Blade"); n != 1 {
		t.Errorf("struct Blade occurrences = %d, want 1", n)
	}
	want := "@group(0) @binding(0) var<storage, read> blades: array<Blade>;"
	if !strings.Contains(out, want) {
		t.Errorf("Process() output missing %q:\n%s", want, out)
	}
	if got := len(pp.Declarations()); got != 1 {
		t.Errorf("len(Declarations()) = %d, want 1", got)
	}
}

func TestComputeShaderLayouts(t *testing.T) {
	s, err := NewShader("grass_compute", ShaderTypeCompute, grass.GrassComputeSource)
	if err != nil {
		t.Fatalf("NewShader() error = %v", err)
	}
	if got := s.EntryPoint(); got != "simulate" {
		t.Errorf("EntryPoint() = %q, want simulate", got)
	}
	if got := s.WorkgroupSize(); got != [3]uint32{grass.DefaultWorkgroupSize, 1, 1} {
		t.Errorf("WorkgroupSize() = %v, want [%d 1 1]", got, grass.DefaultWorkgroupSize)
	}
	if strings.Contains(s.Source(), "@oxy:") {
		t.Error("Source() still contains annotations")
	}

	layouts := s.BindGroupLayoutDescriptors()
	if len(layouts) != 3 {
		t.Fatalf("len(BindGroupLayoutDescriptors()) = %d, want 3", len(layouts))
	}

	camera := layouts[0].Entries[0]
	if camera.Buffer.Type != wgpu.BufferBindingTypeUniform {
		t.Errorf("camera binding type = %v, want uniform", camera.Buffer.Type)
	}
	if camera.Buffer.MinBindingSize != 192 {
		t.Errorf("camera MinBindingSize = %d, want 192", camera.Buffer.MinBindingSize)
	}
	if camera.Visibility != wgpu.ShaderStageCompute {
		t.Errorf("camera visibility = %v, want compute", camera.Visibility)
	}

	storage := layouts[2].Entries
	if len(storage) != 3 {
		t.Fatalf("group 2 entries = %d, want 3", len(storage))
	}
	for i, e := range storage {
		if e.Binding != uint32(i) {
			t.Errorf("group 2 entry %d binding = %d, want %d", i, e.Binding, i)
		}
		if e.Buffer.Type != wgpu.BufferBindingTypeStorage {
			t.Errorf("group 2 entry %d type = %v, want storage", i, e.Buffer.Type)
		}
	}
	if storage[0].Buffer.MinBindingSize != 64 {
		t.Errorf("blades MinBindingSize = %d, want 64", storage[0].Buffer.MinBindingSize)
	}
	if storage[2].Buffer.MinBindingSize != 16 {
		t.Errorf("drawArgs MinBindingSize = %d, want 16", storage[2].Buffer.MinBindingSize)
	}
	if got := s.BindGroupVarName(2, 1); got != "culledBlades" {
		t.Errorf("BindGroupVarName(2, 1) = %q, want culledBlades", got)
	}
	if got := s.BindGroupVarName(5, 0); got != "" {
		t.Errorf("BindGroupVarName(5, 0) = %q, want empty", got)
	}
}

func TestResetShader(t *testing.T) {
	s, err := NewShader("grass_reset", ShaderTypeCompute, grass.GrassResetSource)
	if err != nil {
		t.Fatalf("NewShader() error = %v", err)
	}
	if got := s.EntryPoint(); got != "reset_count" {
		t.Errorf("EntryPoint() = %q, want reset_count", got)
	}
	if got := s.WorkgroupSize(); got != [3]uint32{1, 1, 1} {
		t.Errorf("WorkgroupSize() = %v, want [1 1 1]", got)
	}
	if got := s.BindGroupVarName(0, 0); got != "drawArgs" {
		t.Errorf("BindGroupVarName(0, 0) = %q, want drawArgs", got)
	}
}

func TestNewShaderErrors(t *testing.T) {
	if _, err := NewShader("empty", ShaderTypeCompute, ""); err == nil {
		t.Error("NewShader(empty) error = nil, want error")
	}
	if _, err := NewShader("no_entry", ShaderTypeCompute, "fn helper() {}"); err == nil {
		t.Error("NewShader(no entry point) error = nil, want error")
	}
	if _, err := NewShader("bad", ShaderTypeCompute, "//@oxy:include mesh\n@compute @workgroup_size(1) fn main() {}"); err == nil {
		t.Error("NewShader(bad annotation) error = nil, want error")
	}
}

func TestParseWorkgroupSize(t *testing.T) {
	tests := []struct {
		src  string
		want [3]uint32
	}{
		{"@compute @workgroup_size(64) fn main() {}", [3]uint32{64, 1, 1}},
		{"@compute @workgroup_size(8, 8) fn main() {}", [3]uint32{8, 8, 1}},
		{"@compute @workgroup_size(4, 2, 3) fn main() {}", [3]uint32{4, 2, 3}},
		{"// @workgroup_size(99)\n@compute fn main() {}", [3]uint32{1, 1, 1}},
		{"/* @workgroup_size(99) */ @compute fn main() {}", [3]uint32{1, 1, 1}},
	}
	for _, tt := range tests {
		if got := parseWorkgroupSize(tt.src); got != tt.want {
			t.Errorf("parseWorkgroupSize(%q) = %v, want %v", tt.src, got, tt.want)
		}
	}
}

func TestValidateCompilesToSPIRV(t *testing.T) {
	sources := []struct {
		key        string
		shaderType ShaderType
		src        string
		// backendGap tolerates a SPIR-V backend failure; the WGSL must still parse, lower
		// and validate.
		backendGap bool
	}{
		{"grass_reset", ShaderTypeCompute, grass.GrassResetSource, false},
		{"grass_compute", ShaderTypeCompute, grass.GrassComputeSource, true},
		{"grass_frag", ShaderTypeFragment, shading.GrassFragmentSource, false},
	}

	for _, tt := range sources {
		t.Run(tt.key, func(t *testing.T) {
			s, err := NewShader(tt.key, tt.shaderType, tt.src)
			if err != nil {
				t.Fatalf("NewShader() error = %v", err)
			}
			spirv, err := s.Validate()
			if errors.Is(err, ErrSPIRVGeneration) && tt.backendGap {
				t.Skipf("naga SPIR-V backend: %v", err)
			}
			if err != nil {
				t.Fatalf("Validate() error = %v", err)
			}
			if len(spirv) < 4 {
				t.Fatalf("Validate() returned %d bytes", len(spirv))
			}
			if magic := binary.LittleEndian.Uint32(spirv[:4]); magic != 0x07230203 {
				t.Errorf("SPIR-V magic = %#x, want 0x07230203", magic)
			}
		})
	}
}

func TestValidateRejectsInvalidWGSL(t *testing.T) {
	s, err := NewShader("broken", ShaderTypeCompute, `@compute @workgroup_size(1)
fn main() {
    let x: u32 = undefined_value;
}
`)
	if err != nil {
		t.Fatalf("NewShader() error = %v", err)
	}
	if _, err := s.Validate(); !errors.Is(err, ErrInvalidWGSL) {
		t.Errorf("Validate() error = %v, want ErrInvalidWGSL", err)
	}
}
