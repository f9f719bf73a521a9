package grass

import (
	"math"
	"math/rand/v2"

	"github.com/go-gl/mathgl/mgl32"
)

// span is an inclusive [Min, Max] range sampled uniformly.
type span struct {
	Min, Max float32
}

func (s span) sample(r *rand.Rand) float32 {
	return s.Min + r.Float32()*(s.Max-s.Min)
}

type fieldImpl struct {
	count     int
	planeSize float32
	center    mgl32.Vec3
	up        mgl32.Vec3
	seed      uint64
	height    span
	width     span
	stiffness span
}

// NewField scatters upright blades over a square patch of ground centered on the origin.
// Generation is deterministic for a given seed.
//
// Defaults: 1 << 13 blades on a 15 x 15 plane, height in [1.3, 2.5], width in
// [0.1, 0.14], stiffness in [7, 13], up = +Y, seed 1.
//
// Parameters:
//   - options: functional options to configure the field
//
// Returns:
//   - []Blade: the generated blades
func NewField(options ...FieldBuilderOption) []Blade {
	f := &fieldImpl{
		count:     1 << 13,
		planeSize: 15,
		up:        mgl32.Vec3{0, 1, 0},
		seed:      1,
		height:    span{1.3, 2.5},
		width:     span{0.1, 0.14},
		stiffness: span{7, 13},
	}
	for _, option := range options {
		option(f)
	}

	r := rand.New(rand.NewPCG(f.seed, f.seed^0x9e3779b97f4a7c15))
	half := f.planeSize / 2
	blades := make([]Blade, f.count)
	for i := range blades {
		anchor := f.center.Add(mgl32.Vec3{
			r.Float32()*f.planeSize - half,
			0,
			r.Float32()*f.planeSize - half,
		})
		blades[i] = NewBlade(
			anchor,
			f.up,
			r.Float32()*2*math.Pi,
			f.height.sample(r),
			f.width.sample(r),
			f.stiffness.sample(r),
		)
	}
	return blades
}
