package camera

import "github.com/go-gl/mathgl/mgl32"

// CameraControllerOption is a functional option used to configure a CameraController during construction.
type CameraControllerOption func(*cameraControllerImpl)

// WithRadius sets the initial distance from the target.
//
// Parameters:
//   - radius: the orbit radius
//
// Returns:
//   - CameraControllerOption: a function that sets the radius
func WithRadius(radius float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.radius = radius
	}
}

// WithAzimuth sets the initial horizontal angle in radians.
//
// Parameters:
//   - azimuth: the horizontal angle
//
// Returns:
//   - CameraControllerOption: a function that sets the azimuth
func WithAzimuth(azimuth float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.azimuth = azimuth
	}
}

// WithElevation sets the initial vertical angle in radians.
//
// Parameters:
//   - elevation: the vertical angle
//
// Returns:
//   - CameraControllerOption: a function that sets the elevation
func WithElevation(elevation float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.elevation = elevation
	}
}

// WithTarget sets the orbit center.
//
// Parameters:
//   - target: the look-at point
//
// Returns:
//   - CameraControllerOption: a function that sets the target
func WithTarget(target mgl32.Vec3) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.target = target
	}
}

// WithRadiusBounds constrains the orbit radius.
//
// Parameters:
//   - lo: minimum radius
//   - hi: maximum radius
//
// Returns:
//   - CameraControllerOption: a function that sets the radius bounds
func WithRadiusBounds(lo, hi float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.minRadius, cc.maxRadius = lo, hi
	}
}

// WithElevationBounds constrains the vertical angle.
//
// Parameters:
//   - lo: minimum elevation in radians
//   - hi: maximum elevation in radians
//
// Returns:
//   - CameraControllerOption: a function that sets the elevation bounds
func WithElevationBounds(lo, hi float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.minElevation, cc.maxElevation = lo, hi
	}
}

// WithOrbitSpeed makes Advance rotate the camera around the target.
//
// Parameters:
//   - radiansPerSecond: the azimuth rate
//
// Returns:
//   - CameraControllerOption: a function that sets the orbit speed
func WithOrbitSpeed(radiansPerSecond float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.orbitSpeed = radiansPerSecond
	}
}
