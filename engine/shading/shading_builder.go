package shading

import "github.com/go-gl/mathgl/mgl32"

// ShaderBuilderOption is a functional option used to configure a Shader during construction.
type ShaderBuilderOption func(*shaderImpl)

// WithAlbedo sets the base color.
//
// Parameters:
//   - albedo: linear rgb color
//
// Returns:
//   - ShaderBuilderOption: a function that sets the albedo
func WithAlbedo(albedo mgl32.Vec3) ShaderBuilderOption {
	return func(s *shaderImpl) {
		s.albedo = albedo
	}
}

// WithLight sets the world-space point light position.
//
// Parameters:
//   - pos: the light position
//
// Returns:
//   - ShaderBuilderOption: a function that sets the light position
func WithLight(pos mgl32.Vec3) ShaderBuilderOption {
	return func(s *shaderImpl) {
		s.light = pos
	}
}

// WithIntensity sets the diffuse scale.
//
// Parameters:
//   - intensity: the factor applied to max(0, N·L)
//
// Returns:
//   - ShaderBuilderOption: a function that sets the intensity
func WithIntensity(intensity float32) ShaderBuilderOption {
	return func(s *shaderImpl) {
		s.intensity = intensity
	}
}
