package camera

import (
	"encoding/binary"
	"math"
	"strings"
	"testing"

	"github.com/Carmen-Shannon/oxy-grass/common"
	"github.com/go-gl/mathgl/mgl32"
)

func TestOrbitControllerPosition(t *testing.T) {
	cc := NewOrbitController(
		WithRadius(10),
		WithAzimuth(0),
		WithElevation(0.1),
		WithElevationBounds(0, 1),
		WithTarget(mgl32.Vec3{1, 0, 1}),
	)
	s, c := math.Sincos(0.1)
	want := mgl32.Vec3{1, float32(10 * s), 1 + float32(10*c)}
	if got := cc.Position(); !got.ApproxEqualThreshold(want, 1e-5) {
		t.Errorf("Position = %v, want %v", got, want)
	}
	if got := cc.Position().Sub(cc.Target()).Len(); math.Abs(float64(got-10)) > 1e-4 {
		t.Errorf("distance to target = %v, want 10", got)
	}
}

func TestOrbitControllerClamps(t *testing.T) {
	cc := NewOrbitController(WithRadiusBounds(2, 20), WithRadius(10))

	cc.Zoom(100)
	if got := cc.Radius(); got != 2 {
		t.Errorf("Radius after zoom in = %v, want 2", got)
	}
	cc.Zoom(-100)
	if got := cc.Radius(); got != 20 {
		t.Errorf("Radius after zoom out = %v, want 20", got)
	}
	cc.Orbit(0, 10)
	if got := cc.Elevation(); got > math.Pi/2 {
		t.Errorf("Elevation = %v, want <= pi/2", got)
	}
}

func TestOrbitControllerAdvance(t *testing.T) {
	cc := NewOrbitController(WithOrbitSpeed(0.5))
	cc.Advance(2)
	if got := cc.Azimuth(); math.Abs(float64(got-1)) > 1e-6 {
		t.Errorf("Azimuth = %v, want 1", got)
	}

	still := NewOrbitController()
	before := still.Position()
	still.Advance(5)
	if still.Position() != before {
		t.Error("Advance moved a controller without an orbit speed")
	}
}

func TestCameraMatrices(t *testing.T) {
	cc := NewOrbitController(WithRadius(8), WithElevation(0.3), WithAzimuth(1.2))
	cam := NewCamera(WithController(cc), WithAspect(16.0/9.0))

	pos := cam.Position()
	if got := common.InverseOrigin(cam.ViewMatrix()); !got.ApproxEqualThreshold(pos, 1e-4) {
		t.Errorf("InverseOrigin(view) = %v, want %v", got, pos)
	}
	if got := cam.InverseViewMatrix().Col(3).Vec3(); !got.ApproxEqualThreshold(pos, 1e-4) {
		t.Errorf("InverseViewMatrix origin = %v, want %v", got, pos)
	}

	// the target projects to the center of the screen
	clip := common.TransformPoint(cam.ProjectionMatrix().Mul4(cam.ViewMatrix()), cc.Target())
	if math.Abs(float64(clip.X()/clip.W())) > 1e-5 || math.Abs(float64(clip.Y()/clip.W())) > 1e-5 {
		t.Errorf("target ndc = (%v, %v), want (0, 0)", clip.X()/clip.W(), clip.Y()/clip.W())
	}
}

func TestCameraWithoutController(t *testing.T) {
	cam := NewCamera()
	if cam.ViewMatrix() != mgl32.Ident4() {
		t.Error("view matrix without a controller should be identity")
	}
	if cam.Position() != (mgl32.Vec3{}) {
		t.Errorf("Position = %v, want origin", cam.Position())
	}
	if cam.BindGroupProvider() == nil || !strings.HasPrefix(cam.BindGroupProvider().Label(), "camera_") {
		t.Error("camera should own a labelled bind group provider")
	}
}

func TestCameraUniformLayout(t *testing.T) {
	cam := NewCamera(WithController(NewOrbitController()))
	u := cam.Uniform()
	if u.Size() != 192 {
		t.Fatalf("Size = %d, want 192", u.Size())
	}
	buf := u.Marshal()
	// proj[11] is -1 for a right-handed perspective
	if got := math.Float32frombits(binary.LittleEndian.Uint32(buf[64+11*4:])); got != -1 {
		t.Errorf("proj[11] = %v, want -1", got)
	}
	if got := math.Float32frombits(binary.LittleEndian.Uint32(buf[128+15*4:])); math.Abs(float64(got-1)) > 1e-5 {
		t.Errorf("invView[15] = %v, want 1", got)
	}
}

func TestNewGPUCameraUniformInverse(t *testing.T) {
	eye := mgl32.Vec3{0, 2, 8}
	view := mgl32.LookAtV(eye, mgl32.Vec3{}, mgl32.Vec3{0, 1, 0})
	u := NewGPUCameraUniform(view, mgl32.Ident4())

	inv := mgl32.Mat4(u.InvView)
	got := inv.Col(3).Vec3()
	if !got.ApproxEqualThreshold(eye, 1e-4) {
		t.Errorf("InvView translation = %v, want %v", got, eye)
	}
	if origin := common.InverseOrigin(view); !origin.ApproxEqualThreshold(eye, 1e-4) {
		t.Errorf("InverseOrigin(view) = %v, want %v", origin, eye)
	}
}
