package grass

import "github.com/go-gl/mathgl/mgl32"

// FieldBuilderOption is a functional option used to configure NewField.
type FieldBuilderOption func(*fieldImpl)

// WithBladeCount sets the number of blades to generate. Negative values are treated as zero.
func WithBladeCount(n int) FieldBuilderOption {
	return func(f *fieldImpl) {
		f.count = max(n, 0)
	}
}

// WithPlaneSize sets the side length of the square ground patch.
func WithPlaneSize(size float32) FieldBuilderOption {
	return func(f *fieldImpl) {
		f.planeSize = size
	}
}

// WithFieldCenter moves the center of the ground patch.
func WithFieldCenter(center mgl32.Vec3) FieldBuilderOption {
	return func(f *fieldImpl) {
		f.center = center
	}
}

// WithSeed sets the random seed.
func WithSeed(seed uint64) FieldBuilderOption {
	return func(f *fieldImpl) {
		f.seed = seed
	}
}

// WithHeightRange sets the range blade heights are drawn from.
func WithHeightRange(lo, hi float32) FieldBuilderOption {
	return func(f *fieldImpl) {
		f.height = span{lo, hi}
	}
}

// WithWidthRange sets the range blade widths are drawn from.
func WithWidthRange(lo, hi float32) FieldBuilderOption {
	return func(f *fieldImpl) {
		f.width = span{lo, hi}
	}
}

// WithStiffnessRange sets the range blade stiffness is drawn from.
func WithStiffnessRange(lo, hi float32) FieldBuilderOption {
	return func(f *fieldImpl) {
		f.stiffness = span{lo, hi}
	}
}
