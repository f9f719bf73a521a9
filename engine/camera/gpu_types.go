package camera

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
)

// GPUCameraUniformSource is the canonical WGSL definition of the CameraUniform struct.
// Matches GPUCameraUniform layout exactly (192 bytes, std140 aligned).
//
//go:embed assets/camera_uniform.wgsl
var GPUCameraUniformSource string

// GPUCameraUniform is the GPU-aligned representation of the camera uniform buffer.
// Size: 192 bytes.
type GPUCameraUniform struct {
	View    [16]float32 // offset   0: world to view (mat4x4<f32>)
	Proj    [16]float32 // offset  64: view to clip (mat4x4<f32>)
	InvView [16]float32 // offset 128: view to world (mat4x4<f32>)
}

// NewGPUCameraUniform builds the uniform block for a view and projection pair. The inverse
// view is computed here since WGSL has no matrix inverse.
func NewGPUCameraUniform(view, proj mgl32.Mat4) GPUCameraUniform {
	return GPUCameraUniform{View: view, Proj: proj, InvView: view.Inv()}
}

// Size returns the size of the GPUCameraUniform struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (192)
func (g *GPUCameraUniform) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUCameraUniform struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (g *GPUCameraUniform) Marshal() []byte {
	buf := make([]byte, g.Size())
	for m, mat := range [3]*[16]float32{&g.View, &g.Proj, &g.InvView} {
		for i := range 16 {
			binary.LittleEndian.PutUint32(buf[m*64+i*4:], math.Float32bits(mat[i]))
		}
	}
	return buf
}
