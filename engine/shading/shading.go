// Package shading implements the diffuse color model applied to rasterized grass fragments.
package shading

import (
	_ "embed"

	"github.com/Carmen-Shannon/oxy-grass/common"
	"github.com/go-gl/mathgl/mgl32"
)

// GrassFragmentSource is the WGSL fragment shader equivalent of Shade with the default parameters.
//
//go:embed assets/grass_frag.wgsl
var GrassFragmentSource string

var (
	// DefaultAlbedo is the muted green base color of a blade.
	DefaultAlbedo = mgl32.Vec3{0.35, 0.55, 0.2}

	// DefaultLight is the world-space position of the single point light.
	DefaultLight = mgl32.Vec3{0, 10, 0}
)

// DefaultIntensity scales the diffuse term added to the albedo.
const DefaultIntensity float32 = 0.3

type shaderImpl struct {
	albedo    mgl32.Vec3
	light     mgl32.Vec3
	intensity float32
}

// Shader computes fragment colors for grass blades. It is stateless after construction
// and safe for concurrent use.
type Shader interface {
	// Shade returns the opaque color of a fragment.
	//
	// Parameters:
	//   - pos: the interpolated world-space position
	//   - normal: the interpolated world-space normal, not necessarily unit length
	//
	// Returns:
	//   - mgl32.Vec4: rgb = albedo + max(0, N·L) * intensity, a = 1
	Shade(pos, normal mgl32.Vec3) mgl32.Vec4

	// Albedo returns the base color.
	Albedo() mgl32.Vec3

	// Light returns the point light position.
	Light() mgl32.Vec3
}

var _ Shader = &shaderImpl{}

// NewShader creates a Shader with the default albedo, light and intensity unless overridden.
//
// Parameters:
//   - options: functional options to configure the shader
//
// Returns:
//   - Shader: the shader
func NewShader(options ...ShaderBuilderOption) Shader {
	s := &shaderImpl{
		albedo:    DefaultAlbedo,
		light:     DefaultLight,
		intensity: DefaultIntensity,
	}
	for _, option := range options {
		option(s)
	}
	return s
}

// Shade shades a fragment with the default parameters.
//
// Parameters:
//   - pos: the interpolated world-space position
//   - normal: the interpolated world-space normal
//
// Returns:
//   - mgl32.Vec4: the opaque fragment color
func Shade(pos, normal mgl32.Vec3) mgl32.Vec4 {
	return lambert(DefaultAlbedo, DefaultLight, DefaultIntensity, pos, normal)
}

func (s *shaderImpl) Shade(pos, normal mgl32.Vec3) mgl32.Vec4 {
	return lambert(s.albedo, s.light, s.intensity, pos, normal)
}

func (s *shaderImpl) Albedo() mgl32.Vec3 {
	return s.albedo
}

func (s *shaderImpl) Light() mgl32.Vec3 {
	return s.light
}

func lambert(albedo, light mgl32.Vec3, intensity float32, pos, normal mgl32.Vec3) mgl32.Vec4 {
	l := common.SafeNormalize(light.Sub(pos))
	n := common.SafeNormalize(normal)
	diffuse := max(0, l.Dot(n)) * intensity
	c := albedo.Add(mgl32.Vec3{diffuse, diffuse, diffuse})
	return c.Vec4(1)
}
