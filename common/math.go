package common

import (
	"math"
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
)

// SliceToBytes converts any slice to a byte slice for GPU buffer uploads.
// Uses unsafe pointer operations to create a view into the original data.
// WARNING: The returned slice shares memory with the input - do not modify.
//
// Parameters:
//   - data: source slice of any type
//
// Returns:
//   - []byte: byte slice view of the input data, or nil if input is empty
func SliceToBytes[T any](data []T) []byte {
	if len(data) == 0 {
		return nil
	}
	var zero T
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), int(unsafe.Sizeof(zero))*len(data))
}

// BytesToSlice copies a little-endian GPU readback into a freshly allocated slice of T.
// Trailing bytes that do not fill a whole element are ignored.
//
// Parameters:
//   - data: raw bytes read back from a mapped buffer
//
// Returns:
//   - []T: a copy of the data reinterpreted as T values
func BytesToSlice[T any](data []byte) []T {
	var zero T
	size := int(unsafe.Sizeof(zero))
	n := len(data) / size
	if n == 0 {
		return nil
	}
	out := make([]T, n)
	copy(unsafe.Slice((*byte)(unsafe.Pointer(&out[0])), n*size), data)
	return out
}

// PerspectiveZO creates a right-handed perspective projection matrix with WebGPU clip space depth [0, 1].
// mgl32.Perspective targets the OpenGL [-1, 1] depth range, which WebGPU would clip against the wrong near plane.
//
// Parameters:
//   - fovY: vertical field of view in radians
//   - aspect: viewport aspect ratio (width/height)
//   - near: near clipping plane distance (must be > 0)
//   - far: far clipping plane distance (must be > near)
//
// Returns:
//   - mgl32.Mat4: the column-major projection matrix
func PerspectiveZO(fovY, aspect, near, far float32) mgl32.Mat4 {
	f := 1.0 / float32(math.Tan(float64(fovY)/2.0))

	var m mgl32.Mat4
	m[0] = f / aspect
	m[5] = f
	m[10] = far / (near - far)
	m[11] = -1.0
	m[14] = (near * far) / (near - far)
	return m
}

// TransformPoint multiplies a world-space point (w = 1) by a 4x4 matrix.
//
// Parameters:
//   - m: column-major transform
//   - p: the point to transform
//
// Returns:
//   - mgl32.Vec4: the homogeneous result, not divided by w
func TransformPoint(m mgl32.Mat4, p mgl32.Vec3) mgl32.Vec4 {
	return m.Mul4x1(p.Vec4(1))
}

// InverseOrigin returns the world-space position of the origin of the space m maps into,
// which for a view matrix is the camera position. A singular matrix yields the zero vector.
//
// Parameters:
//   - m: an invertible affine transform
//
// Returns:
//   - mgl32.Vec3: inverse(m) * (0, 0, 0, 1), xyz only
func InverseOrigin(m mgl32.Mat4) mgl32.Vec3 {
	if m.Det() == 0 {
		return mgl32.Vec3{}
	}
	return m.Inv().Col(3).Vec3()
}

// SafeNormalize returns v scaled to unit length, or the zero vector when v has no length.
//
// Parameters:
//   - v: the vector to normalize
//
// Returns:
//   - mgl32.Vec3: the unit vector, or zero
func SafeNormalize(v mgl32.Vec3) mgl32.Vec3 {
	l := v.Len()
	if l == 0 || math.IsNaN(float64(l)) || math.IsInf(float64(l), 0) {
		return mgl32.Vec3{}
	}
	return v.Mul(1 / l)
}

// Fract returns the fractional part of x as x - floor(x), matching the WGSL builtin.
//
// Parameters:
//   - x: the input value
//
// Returns:
//   - float32: a value in [0, 1)
func Fract(x float32) float32 {
	return x - float32(math.Floor(float64(x)))
}
