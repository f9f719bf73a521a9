package renderer

import (
	"github.com/Carmen-Shannon/oxy-grass/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-grass/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
)

// ComputeBackend is the headless GPU backend used to run compute pipelines. It owns the
// device and queue, creates pipelines and bind groups from shader declarations, batches
// dispatches into one submission per frame, and reads buffers back to the CPU.
type ComputeBackend interface {
	// Device returns the WebGPU device.
	Device() *wgpu.Device

	// Queue returns the device queue.
	Queue() *wgpu.Queue

	// AdapterInfo returns the name and backend of the selected adapter.
	AdapterInfo() wgpu.AdapterInfo

	// RegisterComputePipeline creates the shader module, bind group layouts, pipeline layout and
	// compute pipeline for p. Pipelines whose key is already registered are skipped.
	//
	// Parameters:
	//   - p: the pipeline carrying the compute shader
	//
	// Returns:
	//   - error: an error if any GPU object could not be created
	RegisterComputePipeline(p pipeline.Pipeline) error

	// Pipeline returns a registered pipeline by key.
	//
	// Parameters:
	//   - key: the pipeline key
	//
	// Returns:
	//   - pipeline.Pipeline: the pipeline, or nil if not registered
	Pipeline(key string) pipeline.Pipeline

	// InitBindGroup creates the layout, any missing buffers and the bind group for one group of
	// a shader's declarations. Buffers already present on the provider are reused.
	//
	// Parameters:
	//   - provider: the provider receiving the buffers and bind group
	//   - descriptor: the group's layout descriptor
	//   - bufferUsageOverrides: extra usage flags keyed by binding (e.g. Indirect, CopySrc)
	//   - bufferSizeOverrides: buffer sizes keyed by binding, for runtime-sized arrays
	//
	// Returns:
	//   - error: an error if any GPU object could not be created
	InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor, bufferUsageOverrides map[int]wgpu.BufferUsage, bufferSizeOverrides map[int]uint64) error

	// WriteBuffers enqueues a batch of buffer writes on the queue.
	//
	// Parameters:
	//   - writes: the writes to perform; writes to missing buffers are skipped
	WriteBuffers(writes []bind_group_provider.BufferWrite)

	// BeginComputeFrame creates a single command encoder for batching all compute dispatches
	// within a frame into one GPU submission.
	//
	// Returns:
	//   - error: an error if the command encoder could not be created
	BeginComputeFrame() error

	// DispatchCompute encodes one compute pass within the current frame. Each pass boundary is a
	// full barrier: every write of a pass is visible to the passes after it.
	//
	// Parameters:
	//   - p: the registered pipeline
	//   - providers: one provider per bind group, indexed by group
	//   - workGroupCount: the number of workgroups to dispatch in x, y and z
	//
	// Returns:
	//   - error: an error if no frame is open or the pipeline is not registered
	DispatchCompute(p pipeline.Pipeline, providers []bind_group_provider.BindGroupProvider, workGroupCount [3]uint32) error

	// EndComputeFrame finishes the frame's encoder and submits it to the queue.
	//
	// Returns:
	//   - error: an error if the encoder could not be finished
	EndComputeFrame() error

	// ReadBuffer copies the first size bytes of buf into a mappable staging buffer, waits for
	// the GPU and returns a copy of the bytes.
	//
	// Parameters:
	//   - buf: a buffer created with CopySrc usage
	//   - size: the number of bytes to read, a multiple of 4
	//
	// Returns:
	//   - []byte: the buffer contents
	//   - error: an error if the copy or the mapping failed
	ReadBuffer(buf *wgpu.Buffer, size uint64) ([]byte, error)

	// Release releases every registered pipeline and the device, queue, adapter and instance.
	Release()
}
