package grass

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"
)

// GPUBladeSource is the canonical WGSL definition of the Blade struct.
// Matches GPUBlade layout exactly (64 bytes, std430 aligned).
//
//go:embed assets/blade.wgsl
var GPUBladeSource string

// GPUTimeUniformSource is the canonical WGSL definition of the TimeUniform struct.
// Matches GPUTimeUniform layout exactly (16 bytes).
//
//go:embed assets/time_uniform.wgsl
var GPUTimeUniformSource string

// GPUEnvironmentUniformSource is the canonical WGSL definition of the EnvironmentUniform struct.
// Matches GPUEnvironmentUniform layout exactly (16 bytes).
//
//go:embed assets/environment_uniform.wgsl
var GPUEnvironmentUniformSource string

// GPUDrawIndirectArgsSource is the canonical WGSL definition of the DrawIndirectArgs struct.
// Matches GPUDrawIndirectArgs layout exactly (16 bytes), which is also the layout
// consumed by drawIndirect.
//
//go:embed assets/draw_indirect_args.wgsl
var GPUDrawIndirectArgsSource string

// GrassResetSource is the first phase of the grass compute pass: a single invocation
// that zeroes the visible count.
//
//go:embed assets/grass_reset.wgsl
var GrassResetSource string

// GrassComputeSource is the second phase of the grass compute pass: simulate, cull and compact.
//
//go:embed assets/grass_compute.wgsl
var GrassComputeSource string

// GPUBlade is the GPU-aligned representation of a Blade.
// Size: 64 bytes (four vec4<f32>).
type GPUBlade struct {
	V0 [4]float32 // offset  0: anchor xyz, orientation w
	V1 [4]float32 // offset 16: mid xyz, height w
	V2 [4]float32 // offset 32: tip xyz, width w
	Up [4]float32 // offset 48: up xyz, stiffness w
}

// Size returns the size of the GPUBlade struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (64)
func (g *GPUBlade) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUBlade struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (g *GPUBlade) Marshal() []byte {
	buf := make([]byte, g.Size())
	g.marshalInto(buf)
	return buf
}

func (g *GPUBlade) marshalInto(buf []byte) {
	for i, v := range [4][4]float32{g.V0, g.V1, g.V2, g.Up} {
		for j := range 4 {
			binary.LittleEndian.PutUint32(buf[i*16+j*4:], math.Float32bits(v[j]))
		}
	}
}

func (g *GPUBlade) unmarshal(buf []byte) {
	for i, v := range [4]*[4]float32{&g.V0, &g.V1, &g.V2, &g.Up} {
		for j := range 4 {
			v[j] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*16+j*4:]))
		}
	}
}

// ToGPU converts a Blade to its GPU layout.
func (b Blade) ToGPU() GPUBlade {
	return GPUBlade{V0: b.V0, V1: b.V1, V2: b.V2, Up: b.Up}
}

// MarshalBlades serializes a blade population into one contiguous storage buffer payload.
//
// Parameters:
//   - blades: the blades to serialize
//
// Returns:
//   - []byte: len(blades) * 64 bytes
func MarshalBlades(blades []Blade) []byte {
	var g GPUBlade
	stride := g.Size()
	buf := make([]byte, stride*len(blades))
	for i, b := range blades {
		g = b.ToGPU()
		g.marshalInto(buf[i*stride:])
	}
	return buf
}

// UnmarshalBlades decodes a storage buffer readback into blades. Trailing bytes that do
// not form a complete blade are ignored.
//
// Parameters:
//   - data: the raw buffer contents
//
// Returns:
//   - []Blade: the decoded blades
func UnmarshalBlades(data []byte) []Blade {
	var g GPUBlade
	stride := g.Size()
	out := make([]Blade, len(data)/stride)
	for i := range out {
		g.unmarshal(data[i*stride:])
		out[i] = Blade{V0: g.V0, V1: g.V1, V2: g.V2, Up: g.Up}
	}
	return out
}

// GPUTimeUniform is the GPU-aligned representation of the per-frame time block.
// Size: 16 bytes.
type GPUTimeUniform struct {
	DeltaTime float32    // offset 0: seconds since the previous frame
	TotalTime float32    // offset 4: seconds since start
	_pad      [2]float32 // offset 8: padding to 16 bytes
}

// Size returns the size of the GPUTimeUniform struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (16)
func (g *GPUTimeUniform) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUTimeUniform struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (g *GPUTimeUniform) Marshal() []byte {
	buf := make([]byte, g.Size())
	binary.LittleEndian.PutUint32(buf[0:], math.Float32bits(g.DeltaTime))
	binary.LittleEndian.PutUint32(buf[4:], math.Float32bits(g.TotalTime))
	return buf
}

// GPUEnvironmentUniform is the GPU-aligned representation of Environment.
// Size: 16 bytes.
type GPUEnvironmentUniform struct {
	Gravity       [3]float32 // offset  0: gravity vector (vec3<f32>)
	WindAmplitude float32    // offset 12: wind noise scale
}

// Size returns the size of the GPUEnvironmentUniform struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (16)
func (g *GPUEnvironmentUniform) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUEnvironmentUniform struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (g *GPUEnvironmentUniform) Marshal() []byte {
	buf := make([]byte, g.Size())
	for i := range 3 {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(g.Gravity[i]))
	}
	binary.LittleEndian.PutUint32(buf[12:], math.Float32bits(g.WindAmplitude))
	return buf
}

// ToGPU converts an Environment to its GPU layout.
func (e Environment) ToGPU() GPUEnvironmentUniform {
	return GPUEnvironmentUniform{Gravity: e.Gravity, WindAmplitude: e.WindAmplitude}
}

// GPUDrawIndirectArgs is the GPU-aligned representation of a non-indexed indirect draw.
// Size: 16 bytes.
type GPUDrawIndirectArgs struct {
	VertexCount   uint32 // offset  0: visible blade count
	InstanceCount uint32 // offset  4: always 1
	FirstVertex   uint32 // offset  8: always 0
	FirstInstance uint32 // offset 12: always 0
}

// Size returns the size of the GPUDrawIndirectArgs struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (16)
func (g *GPUDrawIndirectArgs) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUDrawIndirectArgs struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (g *GPUDrawIndirectArgs) Marshal() []byte {
	buf := make([]byte, g.Size())
	binary.LittleEndian.PutUint32(buf[0:], g.VertexCount)
	binary.LittleEndian.PutUint32(buf[4:], g.InstanceCount)
	binary.LittleEndian.PutUint32(buf[8:], g.FirstVertex)
	binary.LittleEndian.PutUint32(buf[12:], g.FirstInstance)
	return buf
}

// UnmarshalDrawIndirectArgs decodes a 16-byte readback of the indirect args buffer.
//
// Parameters:
//   - data: at least 16 bytes
//
// Returns:
//   - GPUDrawIndirectArgs: the decoded record
func UnmarshalDrawIndirectArgs(data []byte) GPUDrawIndirectArgs {
	return GPUDrawIndirectArgs{
		VertexCount:   binary.LittleEndian.Uint32(data[0:]),
		InstanceCount: binary.LittleEndian.Uint32(data[4:]),
		FirstVertex:   binary.LittleEndian.Uint32(data[8:]),
		FirstInstance: binary.LittleEndian.Uint32(data[12:]),
	}
}
