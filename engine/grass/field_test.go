package grass

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestNewFieldDeterministic(t *testing.T) {
	a := NewField(WithBladeCount(256), WithSeed(11))
	b := NewField(WithBladeCount(256), WithSeed(11))
	c := NewField(WithBladeCount(256), WithSeed(12))

	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("blade %d differs for the same seed", i)
		}
	}
	if a[0] == c[0] {
		t.Error("different seeds produced the same first blade")
	}
}

func TestNewFieldRanges(t *testing.T) {
	center := mgl32.Vec3{5, 0, -5}
	blades := NewField(
		WithBladeCount(2000),
		WithPlaneSize(10),
		WithFieldCenter(center),
		WithHeightRange(1, 2),
		WithWidthRange(0.2, 0.3),
		WithStiffnessRange(4, 5),
	)
	if len(blades) != 2000 {
		t.Fatalf("len = %d, want 2000", len(blades))
	}
	if err := ValidateBlades(blades); err != nil {
		t.Fatalf("ValidateBlades: %v", err)
	}

	for i, b := range blades {
		rel := b.Anchor().Sub(center)
		if math.Abs(float64(rel.X())) > 5 || math.Abs(float64(rel.Z())) > 5 || rel.Y() != 0 {
			t.Fatalf("blade %d anchor %v outside the plane", i, b.Anchor())
		}
		if b.Height() < 1 || b.Height() > 2 {
			t.Fatalf("blade %d height %v outside [1, 2]", i, b.Height())
		}
		if b.Width() < 0.2 || b.Width() > 0.3 {
			t.Fatalf("blade %d width %v outside [0.2, 0.3]", i, b.Width())
		}
		if b.Stiffness() < 4 || b.Stiffness() > 5 {
			t.Fatalf("blade %d stiffness %v outside [4, 5]", i, b.Stiffness())
		}
		if o := b.Orientation(); o < 0 || o > 2*math.Pi {
			t.Fatalf("blade %d orientation %v outside [0, 2π]", i, o)
		}
		rest := b.Anchor().Add(upY.Mul(b.Height()))
		if b.Tip() != rest || b.Mid() != rest {
			t.Fatalf("blade %d is not upright", i)
		}
	}
}

func TestValidateBlades(t *testing.T) {
	good := NewBlade(mgl32.Vec3{}, upY, 0, 1.5, 0.1, 10)

	tests := []struct {
		name   string
		mutate func(b *Blade)
		want   error
	}{
		{"valid", func(*Blade) {}, nil},
		{"zero height", func(b *Blade) { b.V1[3] = 0 }, ErrZeroHeight},
		{"negative height", func(b *Blade) { b.V1[3] = -1 }, ErrZeroHeight},
		{"nan height", func(b *Blade) { b.V1[3] = float32(math.NaN()) }, ErrZeroHeight},
		{"inf height", func(b *Blade) { b.V1[3] = float32(math.Inf(1)) }, ErrZeroHeight},
		{"zero up", func(b *Blade) { b.Up = mgl32.Vec4{0, 0, 0, 10} }, ErrInvalidUp},
		{"long up", func(b *Blade) { b.Up = mgl32.Vec4{0, 2, 0, 10} }, ErrInvalidUp},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := good
			tt.mutate(&b)
			err := ValidateBlades([]Blade{good, b})
			if tt.want == nil {
				if err != nil {
					t.Errorf("ValidateBlades = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("ValidateBlades = %v, want %v", err, tt.want)
			}
		})
	}

	if err := ValidateBlades(nil); !errors.Is(err, ErrEmptyField) {
		t.Errorf("ValidateBlades(nil) = %v, want ErrEmptyField", err)
	}
}
