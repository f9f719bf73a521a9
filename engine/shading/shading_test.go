package shading

import (
	"math"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestShade(t *testing.T) {
	tests := []struct {
		name   string
		pos    mgl32.Vec3
		normal mgl32.Vec3
		want   mgl32.Vec3
	}{
		{"facing the light", mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 1, 0}, DefaultAlbedo.Add(mgl32.Vec3{0.3, 0.3, 0.3})},
		{"unnormalized normal", mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 5, 0}, DefaultAlbedo.Add(mgl32.Vec3{0.3, 0.3, 0.3})},
		{"facing away", mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, -1, 0}, DefaultAlbedo},
		{"grazing", mgl32.Vec3{0, 0, 0}, mgl32.Vec3{1, 0, 0}, DefaultAlbedo},
		{"zero normal", mgl32.Vec3{1, 1, 1}, mgl32.Vec3{}, DefaultAlbedo},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Shade(tt.pos, tt.normal)
			if !got.Vec3().ApproxEqualThreshold(tt.want, 1e-6) {
				t.Errorf("Shade rgb = %v, want %v", got.Vec3(), tt.want)
			}
			if got.W() != 1 {
				t.Errorf("Shade alpha = %v, want 1", got.W())
			}
		})
	}
}

func TestShaderOptions(t *testing.T) {
	s := NewShader(
		WithAlbedo(mgl32.Vec3{0, 0, 0}),
		WithLight(mgl32.Vec3{10, 0, 0}),
		WithIntensity(1),
	)
	// light at 45 degrees to the normal
	got := s.Shade(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{1, 1, 0})
	want := float32(math.Sqrt2 / 2)
	if math.Abs(float64(got.X()-want)) > 1e-6 {
		t.Errorf("diffuse = %v, want %v", got.X(), want)
	}
}

func TestDefaultShaderMatchesShade(t *testing.T) {
	s := NewShader()
	pos, n := mgl32.Vec3{2, 0.5, -1}, mgl32.Vec3{0.3, 0.8, 0.1}
	if s.Shade(pos, n) != Shade(pos, n) {
		t.Error("NewShader() defaults differ from Shade")
	}
}

func TestGrassFragmentSourceConstants(t *testing.T) {
	for _, want := range []string{"@fragment", "vec3<f32>(0.35, 0.55, 0.2)", "vec3<f32>(0.0, 10.0, 0.0)", "0.3"} {
		if !strings.Contains(GrassFragmentSource, want) {
			t.Errorf("fragment shader missing %q", want)
		}
	}
}
