package camera

import "github.com/go-gl/mathgl/mgl32"

// CameraController provides the eye and target positions a Camera builds its view matrix from.
// The only implementation orbits a target point on a sphere described by radius, azimuth
// and elevation.
type CameraController interface {
	// Position returns the camera's world-space position.
	//
	// Returns:
	//   - mgl32.Vec3: the eye position
	Position() mgl32.Vec3

	// Target returns the point the camera looks at.
	//
	// Returns:
	//   - mgl32.Vec3: the look-at target
	Target() mgl32.Vec3

	// Orbit rotates the camera around the target. Elevation is clamped to the configured bounds.
	//
	// Parameters:
	//   - dAzimuth: change in horizontal angle, in radians
	//   - dElevation: change in vertical angle, in radians
	Orbit(dAzimuth, dElevation float32)

	// Zoom moves the camera toward (positive) or away from (negative) the target.
	// The radius is clamped to the configured bounds.
	//
	// Parameters:
	//   - delta: change in distance, in world units
	Zoom(delta float32)

	// Advance applies the automatic orbit speed for a frame of length dt.
	//
	// Parameters:
	//   - dt: the frame duration in seconds
	Advance(dt float32)

	// Radius returns the distance between position and target.
	Radius() float32

	// Azimuth returns the horizontal angle around the up axis, in radians.
	Azimuth() float32

	// Elevation returns the vertical angle above the ground plane, in radians.
	Elevation() float32
}
