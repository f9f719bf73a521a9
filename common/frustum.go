package common

import "github.com/go-gl/mathgl/mgl32"

// ClipTolerance widens the clip volume so geometry exactly on a plane is kept.
const ClipTolerance float32 = 0.01

// InClipVolume reports whether a clip-space point lies inside the symmetric volume
// |x|, |y|, |z| <= w + tolerance.
//
// Parameters:
//   - clip: the homogeneous clip-space position
//   - tolerance: the amount added to w before the comparison
//
// Returns:
//   - bool: true if all three coordinates are inside
func InClipVolume(clip mgl32.Vec4, tolerance float32) bool {
	h := clip.W() + tolerance
	return inRange(clip.X(), h) && inRange(clip.Y(), h) && inRange(clip.Z(), h)
}

func inRange(v, h float32) bool {
	return v >= -h && v <= h
}
