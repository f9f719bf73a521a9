package grass

import (
	"math"

	"github.com/Carmen-Shannon/oxy-grass/common"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/ojrac/opensimplex-go"
)

// WindField samples a wind direction vector at a blade anchor. Implementations must be
// pure functions of their input so they can be called from any number of goroutines.
type WindField interface {
	// Sample returns the unscaled wind vector at anchor, each component in [-1, 1].
	//
	// Parameters:
	//   - anchor: the blade's root position
	//
	// Returns:
	//   - mgl32.Vec3: the wind vector
	Sample(anchor mgl32.Vec3) mgl32.Vec3
}

// hashScale and the hashKeys vectors must stay in sync with noise3 in grass_compute.wgsl.
const hashScale float32 = 43758.5453

var hashKeys = [3]mgl32.Vec3{
	{12.9898, 78.233, 45.164},
	{93.989, 67.345, 12.987},
	{43.332, 93.532, 73.156},
}

// HashWind is the fixed sine-hash noise used by both the CPU and GPU kernels. The two
// agree up to float rounding: the large hashScale amplifies the last bits of sin, so a
// rare anchor can land on a different fract value on the GPU.
type HashWind struct{}

var _ WindField = HashWind{}

func (HashWind) Sample(anchor mgl32.Vec3) mgl32.Vec3 {
	var out mgl32.Vec3
	for i, k := range hashKeys {
		out[i] = hash(anchor, k)*2 - 1
	}
	return out
}

func hash(p, k mgl32.Vec3) float32 {
	s := float32(math.Sin(float64(p.Dot(k))))
	return common.Fract(s * hashScale)
}

// SimplexWind is a spatially coherent wind field backed by OpenSimplex noise.
// It is only available to the CPU kernel.
type SimplexWind struct {
	noise     opensimplex.Noise
	frequency float64
}

var _ WindField = &SimplexWind{}

// NewSimplexWind creates a seeded simplex wind field.
//
// Parameters:
//   - seed: the noise seed
//   - frequency: spatial frequency, in cycles per world unit
//
// Returns:
//   - *SimplexWind: the wind field
func NewSimplexWind(seed int64, frequency float64) *SimplexWind {
	return &SimplexWind{
		noise:     opensimplex.New(seed),
		frequency: frequency,
	}
}

func (w *SimplexWind) Sample(anchor mgl32.Vec3) mgl32.Vec3 {
	x := float64(anchor.X()) * w.frequency
	z := float64(anchor.Z()) * w.frequency
	// offset lookups decorrelate the three axes
	return mgl32.Vec3{
		float32(w.noise.Eval3(x, 0, z)),
		float32(w.noise.Eval3(x, 17.3, z)) * 0.25,
		float32(w.noise.Eval3(x, 41.9, z)),
	}
}
