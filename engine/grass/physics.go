package grass

import (
	"math"

	"github.com/Carmen-Shannon/oxy-grass/common"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	// forwardLean scales the share of |gravity| that pulls the blade along its front axis.
	forwardLean float32 = 0.25

	// minMidLift keeps the mid control point above the anchor when the blade is flattened.
	minMidLift float32 = 0.05
)

// Simulate advances a single blade by one explicit Euler step and returns the
// corrected state. The anchor and all scalar parameters are returned unchanged.
//
// The step applies gravity with a forward lean, spring recovery toward the rest tip and
// attenuated wind, clamps the tip above the ground plane, re-derives the mid point and
// finally rescales the curve so its approximate arc length equals the blade height.
// A nil wind field disables wind.
//
// Parameters:
//   - b: the blade state at the start of the frame
//   - env: gravity and wind amplitude
//   - wind: the wind noise source, or nil
//   - dt: the frame delta time in seconds
//   - totalTime: the accumulated time in seconds
//
// Returns:
//   - Blade: the blade state at the end of the frame
func Simulate(b Blade, env Environment, wind WindField, dt, totalTime float32) Blade {
	v0, v2, up := b.Anchor(), b.Tip(), b.UpVector()
	height, k := b.Height(), b.Stiffness()

	front := b.Facing().Cross(up)
	gravity := env.Gravity.Add(front.Mul(forwardLean * env.Gravity.Len()))

	recovery := v0.Add(up.Mul(height)).Sub(v2).Mul(k)

	var windForce mgl32.Vec3
	if wind != nil && env.WindAmplitude != 0 {
		w := wind.Sample(v0).Mul(env.WindAmplitude * float32(math.Sin(float64(totalTime))))
		chord := v2.Sub(v0)
		fd := 1 - abs32(common.SafeNormalize(w).Dot(common.SafeNormalize(chord)))
		fr := chord.Dot(up) / height
		windForce = w.Mul(fd * fr)
	}

	v2 = v2.Add(recovery.Add(gravity).Add(windForce).Mul(dt))

	// keep the tip on or above the anchor's ground plane
	v2 = v2.Sub(up.Mul(min(up.Dot(v2.Sub(v0)), 0)))

	v1 := midPoint(v0, v2, up, height)
	v1, v2 = correctLength(v0, v1, v2, height)

	b.V1 = v1.Vec4(height)
	b.V2 = v2.Vec4(b.Width())
	return b
}

// midPoint places the mid control point above the anchor at a height that shrinks
// as the tip swings away from up.
func midPoint(v0, v2, up mgl32.Vec3, height float32) mgl32.Vec3 {
	offset := v2.Sub(v0)
	lproj := offset.Sub(up.Mul(offset.Dot(up))).Len()
	r := lproj / height
	return v0.Add(up.Mul(height * max(1-r, minMidLift*max(r, 1))))
}

// correctLength rescales v1 and v2 so that (2*L0 + L1) / 3 equals height, where L0 is
// the chord and L1 the control polygon length.
func correctLength(v0, v1, v2 mgl32.Vec3, height float32) (mgl32.Vec3, mgl32.Vec3) {
	l0 := v2.Sub(v0).Len()
	l1 := v1.Sub(v0).Len() + v2.Sub(v1).Len()
	l := (2*l0 + l1) / 3
	if l == 0 {
		return v1, v2
	}
	ratio := height / l

	v1c := v0.Add(v1.Sub(v0).Mul(ratio))
	v2c := v1c.Add(v2.Sub(v1).Mul(ratio))
	return v1c, v2c
}

func abs32(x float32) float32 {
	return float32(math.Abs(float64(x)))
}
