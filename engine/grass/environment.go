package grass

import "github.com/go-gl/mathgl/mgl32"

// Environment holds the global forces applied to every blade.
type Environment struct {
	// Gravity is the environmental gravity vector in world units per second squared.
	Gravity mgl32.Vec3

	// WindAmplitude scales the wind noise vector before the time oscillation is applied.
	WindAmplitude float32
}

// DefaultEnvironment returns Earth-like gravity along -Y and a wind amplitude of 3.
func DefaultEnvironment() Environment {
	return Environment{
		Gravity:       mgl32.Vec3{0, -9.8, 0},
		WindAmplitude: 3,
	}
}

// Frame is the per-frame camera and time state handed to a Kernel.
type Frame struct {
	View      mgl32.Mat4
	Proj      mgl32.Mat4
	DeltaTime float32
	TotalTime float32
}
