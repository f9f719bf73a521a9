package grass

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

var (
	// ErrZeroHeight is returned when a blade has a zero, negative or non-finite height.
	ErrZeroHeight = errors.New("blade height must be positive and finite")

	// ErrInvalidUp is returned when a blade's up vector is not unit length.
	ErrInvalidUp = errors.New("blade up vector must be unit length")

	// ErrEmptyField is returned when a kernel is constructed without any blades.
	ErrEmptyField = errors.New("blade field is empty")
)

// upTolerance is how far |up| may drift from 1 before a blade is rejected.
const upTolerance = 1e-3

// Blade is a single grass blade modeled as a quadratic Bezier curve.
// Each control point carries one scalar parameter in its w component so that
// the struct is four vec4s, matching the WGSL Blade layout (64 bytes).
type Blade struct {
	V0 mgl32.Vec4 // anchor xyz, orientation w
	V1 mgl32.Vec4 // mid control point xyz, height w
	V2 mgl32.Vec4 // tip xyz, width w
	Up mgl32.Vec4 // up vector xyz, stiffness w
}

// NewBlade creates an upright blade planted at anchor. The mid and tip control
// points both start at the rest tip anchor + up * height.
//
// Parameters:
//   - anchor: the root position on the ground plane
//   - up: the unit up vector
//   - orientation: facing angle about up, in radians
//   - height: the rest length of the blade
//   - width: the blade width
//   - stiffness: the recovery coefficient
//
// Returns:
//   - Blade: the new blade
func NewBlade(anchor, up mgl32.Vec3, orientation, height, width, stiffness float32) Blade {
	tip := anchor.Add(up.Mul(height))
	return Blade{
		V0: anchor.Vec4(orientation),
		V1: tip.Vec4(height),
		V2: tip.Vec4(width),
		Up: up.Vec4(stiffness),
	}
}

func (b Blade) Anchor() mgl32.Vec3   { return b.V0.Vec3() }
func (b Blade) Orientation() float32 { return b.V0.W() }
func (b Blade) Mid() mgl32.Vec3      { return b.V1.Vec3() }
func (b Blade) Height() float32      { return b.V1.W() }
func (b Blade) Tip() mgl32.Vec3      { return b.V2.Vec3() }
func (b Blade) Width() float32       { return b.V2.W() }
func (b Blade) UpVector() mgl32.Vec3 { return b.Up.Vec3() }
func (b Blade) Stiffness() float32   { return b.Up.W() }

// Facing returns the blade's horizontal facing direction (cos θ, 0, sin θ).
func (b Blade) Facing() mgl32.Vec3 {
	s, c := math.Sincos(float64(b.Orientation()))
	return mgl32.Vec3{float32(c), 0, float32(s)}
}

// ValidateBlades checks the preconditions the kernel relies on but never tests at runtime:
// every height must be positive and finite, and every up vector must be unit length.
//
// Parameters:
//   - blades: the blade population to check
//
// Returns:
//   - error: the first violation found, wrapping ErrZeroHeight, ErrInvalidUp or ErrEmptyField
func ValidateBlades(blades []Blade) error {
	if len(blades) == 0 {
		return ErrEmptyField
	}
	for i, b := range blades {
		h := float64(b.Height())
		if h <= 0 || math.IsNaN(h) || math.IsInf(h, 0) {
			return fmt.Errorf("blade %d: %w (got %v)", i, ErrZeroHeight, h)
		}
		if l := b.UpVector().Len(); math.Abs(float64(l)-1) > upTolerance {
			return fmt.Errorf("blade %d: %w (|up| = %v)", i, ErrInvalidUp, l)
		}
	}
	return nil
}
