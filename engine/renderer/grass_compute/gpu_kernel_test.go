package grass_compute

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-grass/common"
	"github.com/Carmen-Shannon/oxy-grass/engine/grass"
	"github.com/Carmen-Shannon/oxy-grass/engine/renderer"
	"github.com/go-gl/mathgl/mgl32"
)

var up = mgl32.Vec3{0, 1, 0}

func testFrame(eye mgl32.Vec3, totalTime float32) grass.Frame {
	return grass.Frame{
		View:      mgl32.LookAtV(eye, mgl32.Vec3{}, up),
		Proj:      common.PerspectiveZO(mgl32.DegToRad(45), 16.0/9.0, 0.1, 100),
		DeltaTime: 1.0 / 60,
		TotalTime: totalTime,
	}
}

// newTestKernel returns a GPU kernel or skips when no adapter is available.
func newTestKernel(t *testing.T, blades []grass.Blade, options ...GPUKernelBuilderOption) grass.Kernel {
	t.Helper()
	backend, err := renderer.NewWGPUComputeBackend()
	if err != nil {
		t.Skipf("no GPU adapter available: %v", err)
	}
	t.Cleanup(backend.Release)

	k, err := NewGPUKernel(backend, blades, options...)
	if err != nil {
		t.Fatalf("NewGPUKernel() error = %v", err)
	}
	t.Cleanup(k.Release)
	return k
}

func threeBlades() []grass.Blade {
	return []grass.Blade{
		grass.NewBlade(mgl32.Vec3{0, 0, 0}, up, 0, 1.5, 0.1, 10),
		grass.NewBlade(mgl32.Vec3{1, 0, 0}, up, math.Pi/2, 1.5, 0.1, 10),
		grass.NewBlade(mgl32.Vec3{0, 0, 14}, up, 0, 1.5, 0.1, 10),
	}
}

func TestGPUKernelThreeBladeScenario(t *testing.T) {
	k := newTestKernel(t, threeBlades())

	stats, err := k.Dispatch(t.Context(), testFrame(mgl32.Vec3{0, 2, 8}, 1))
	if err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	if stats.Visible != 1 {
		t.Fatalf("Visible = %d, want 1", stats.Visible)
	}
	want := grass.GPUDrawIndirectArgs{VertexCount: 1, InstanceCount: 1}
	if got := k.DrawArgs(); got != want {
		t.Errorf("DrawArgs() = %+v, want %+v", got, want)
	}
	if got := len(k.Culled()); got != 1 {
		t.Errorf("len(Culled()) = %d, want 1", got)
	}

	// a second frame must not accumulate onto the first
	stats, err = k.Dispatch(t.Context(), testFrame(mgl32.Vec3{0, 2, 8}, 1.1))
	if err != nil {
		t.Fatalf("second Dispatch() error = %v", err)
	}
	if stats.Visible != 1 {
		t.Errorf("second frame Visible = %d, want 1", stats.Visible)
	}
}

func TestGPUKernelMatchesCPUWithoutWind(t *testing.T) {
	blades := grass.NewField(grass.WithBladeCount(257), grass.WithSeed(7))
	env := grass.Environment{Gravity: mgl32.Vec3{0, -9.8, 0}}
	frame := testFrame(mgl32.Vec3{30, 3, 30}, 0.5)

	gpu := newTestKernel(t, blades, WithEnvironment(env))
	cpu, err := grass.NewCPUKernel(blades, grass.WithEnvironment(env))
	if err != nil {
		t.Fatalf("NewCPUKernel() error = %v", err)
	}
	t.Cleanup(cpu.Release)

	if _, err := gpu.Dispatch(t.Context(), frame); err != nil {
		t.Fatalf("gpu Dispatch() error = %v", err)
	}
	if _, err := cpu.Dispatch(t.Context(), frame); err != nil {
		t.Fatalf("cpu Dispatch() error = %v", err)
	}

	got, want := gpu.Blades(), cpu.Blades()
	if len(got) != len(want) {
		t.Fatalf("len(Blades()) = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if !got[i].V2.ApproxEqualThreshold(want[i].V2, 1e-3) {
			t.Fatalf("blade %d V2 = %v, want %v", i, got[i].V2, want[i].V2)
		}
		if !got[i].V1.ApproxEqualThreshold(want[i].V1, 1e-3) {
			t.Fatalf("blade %d V1 = %v, want %v", i, got[i].V1, want[i].V1)
		}
	}

	if g, w := gpu.DrawArgs().VertexCount, cpu.DrawArgs().VertexCount; g != w {
		t.Fatalf("DrawArgs().VertexCount = %d, want %d", g, w)
	}
	gotSet, wantSet := anchorSet(gpu.Culled()), anchorSet(cpu.Culled())
	if len(gotSet) != len(wantSet) {
		t.Fatalf("len(Culled()) = %d, want %d", len(gotSet), len(wantSet))
	}
	for a := range wantSet {
		if !gotSet[a] {
			t.Errorf("blade anchored at %v missing from the GPU compacted buffer", a)
		}
	}
}

// anchorSet keys compacted blades by anchor, which simulation never moves, since slot
// order depends on reservation order.
func anchorSet(blades []grass.Blade) map[mgl32.Vec4]bool {
	set := make(map[mgl32.Vec4]bool, len(blades))
	for _, b := range blades {
		set[b.V0] = true
	}
	return set
}

func TestGPUKernelMatchesCPUWithWind(t *testing.T) {
	blades := grass.NewField(grass.WithBladeCount(2000), grass.WithSeed(11))
	frame := testFrame(mgl32.Vec3{10, 3, 10}, 1.25)

	gpu := newTestKernel(t, blades)
	cpu, err := grass.NewCPUKernel(blades)
	if err != nil {
		t.Fatalf("NewCPUKernel() error = %v", err)
	}
	t.Cleanup(cpu.Release)

	gpuStats, err := gpu.Dispatch(t.Context(), frame)
	if err != nil {
		t.Fatalf("gpu Dispatch() error = %v", err)
	}
	cpuStats, err := cpu.Dispatch(t.Context(), frame)
	if err != nil {
		t.Fatalf("cpu Dispatch() error = %v", err)
	}
	if gpuStats.Visible != cpuStats.Visible {
		t.Errorf("Visible = %d, want %d", gpuStats.Visible, cpuStats.Visible)
	}

	// the hash amplifies the last bits of sin, so allow a rare blade to drift
	got, want := gpu.Blades(), cpu.Blades()
	var diverged int
	for i := range want {
		if !got[i].V2.ApproxEqualThreshold(want[i].V2, 1e-3) {
			diverged++
		}
	}
	if limit := len(want) / 100; diverged > limit {
		t.Errorf("%d blades diverged from the CPU result, want at most %d", diverged, limit)
	}
}

func TestGPUKernelWithoutReadback(t *testing.T) {
	blades := threeBlades()
	k := newTestKernel(t, blades, WithReadback(false))

	stats, err := k.Dispatch(t.Context(), testFrame(mgl32.Vec3{0, 2, 8}, 1))
	if err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	if stats.Visible != 1 {
		t.Errorf("Visible = %d, want 1", stats.Visible)
	}
	if got := k.Blades(); got[0] != blades[0] {
		t.Errorf("Blades()[0] = %v, want the uploaded state %v", got[0], blades[0])
	}
	if got := len(k.Culled()); got != 0 {
		t.Errorf("len(Culled()) = %d, want 0", got)
	}
}

func TestGPUKernelErrors(t *testing.T) {
	k := newTestKernel(t, threeBlades())

	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	if _, err := k.Dispatch(ctx, testFrame(mgl32.Vec3{0, 2, 8}, 0)); !errors.Is(err, context.Canceled) {
		t.Errorf("Dispatch(canceled) error = %v, want context.Canceled", err)
	}

	k.Release()
	if _, err := k.Dispatch(t.Context(), testFrame(mgl32.Vec3{0, 2, 8}, 0)); !errors.Is(err, grass.ErrKernelReleased) {
		t.Errorf("Dispatch(released) error = %v, want ErrKernelReleased", err)
	}
	if got := len(k.Culled()); got != 0 {
		t.Errorf("len(Culled()) after Release = %d, want 0", got)
	}
	if got := k.DrawArgs().VertexCount; got != 0 {
		t.Errorf("DrawArgs().VertexCount after Release = %d, want 0", got)
	}
}

func TestNewGPUKernelValidates(t *testing.T) {
	if _, err := NewGPUKernel(nil, nil); !errors.Is(err, grass.ErrEmptyField) {
		t.Errorf("NewGPUKernel(empty) error = %v, want ErrEmptyField", err)
	}
}
