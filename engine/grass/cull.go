package grass

import (
	"math"

	"github.com/Carmen-Shannon/oxy-grass/common"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	// OrientationThreshold is the |dot(viewDir, facing)| above which a blade is edge-on.
	OrientationThreshold float32 = 0.9

	// MaxCullDistance is the planar camera distance at which distance culling removes every blade.
	MaxCullDistance float32 = 20

	// DistanceBuckets is the number of index buckets used for stochastic distance thinning.
	DistanceBuckets uint32 = 20
)

// CullView is the per-frame camera state the visibility predicates read.
// It is computed once per frame and shared read-only by every task.
type CullView struct {
	viewProj  mgl32.Mat4
	cameraPos mgl32.Vec3
	viewDir   mgl32.Vec3
}

// NewCullView derives the culling state from a view and projection matrix.
//
// The orientation test direction is the normalized camera position, i.e. the origin
// transformed by the inverse view matrix. This is not the camera's forward vector; the
// behaviour is kept intentionally so that CPU and GPU kernels cull the same blades.
//
// Parameters:
//   - view: the world to view transform
//   - proj: the view to clip transform
//
// Returns:
//   - CullView: the culling state
func NewCullView(view, proj mgl32.Mat4) CullView {
	pos := common.InverseOrigin(view)
	return CullView{
		viewProj:  proj.Mul4(view),
		cameraPos: pos,
		viewDir:   common.SafeNormalize(pos),
	}
}

// CameraPosition returns the world-space camera position.
func (c CullView) CameraPosition() mgl32.Vec3 {
	return c.cameraPos
}

// ViewDir returns the direction used by the orientation test.
func (c CullView) ViewDir() mgl32.Vec3 {
	return c.viewDir
}

// Orientation reports whether the blade survives the edge-on test.
func (c CullView) Orientation(b Blade) bool {
	return abs32(c.viewDir.Dot(b.Facing())) <= OrientationThreshold
}

// Frustum reports whether any of the anchor, tip or weighted curve midpoint lies
// inside the clip volume.
func (c CullView) Frustum(b Blade) bool {
	v0, v1, v2 := b.Anchor(), b.Mid(), b.Tip()
	mid := v0.Mul(0.25).Add(v1.Mul(0.5)).Add(v2.Mul(0.25))
	for _, p := range [3]mgl32.Vec3{v0, v2, mid} {
		if common.InClipVolume(common.TransformPoint(c.viewProj, p), common.ClipTolerance) {
			return true
		}
	}
	return false
}

// Distance reports whether the blade at index survives distance thinning. The
// fraction of surviving indices falls linearly from all of them at the camera to
// only index%DistanceBuckets == 0 at MaxCullDistance, and none beyond it.
func (c CullView) Distance(b Blade, index uint32) bool {
	up := b.UpVector()
	rel := b.Anchor().Sub(c.cameraPos)
	dProj := rel.Sub(up.Mul(rel.Dot(up))).Len()

	limit := math.Floor(float64(float32(DistanceBuckets) * (1 - dProj/MaxCullDistance)))
	return float64(index%DistanceBuckets) <= limit
}

// Visible runs the orientation, frustum and distance tests in order and stops at the first failure.
//
// Parameters:
//   - b: the blade after this frame's simulation step
//   - index: the blade's index in the persistent buffer
//
// Returns:
//   - bool: true if the blade should be drawn
func (c CullView) Visible(b Blade, index uint32) bool {
	return c.Orientation(b) && c.Frustum(b) && c.Distance(b, index)
}
