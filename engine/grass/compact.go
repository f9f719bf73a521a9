package grass

import "sync/atomic"

// DrawIndirectArgs is the visible-count record shared by every task in a dispatch.
// VertexCount is the only mutable field; the rest are fixed by the draw contract.
type DrawIndirectArgs struct {
	vertexCount atomic.Uint32
}

// Reset stores zero into the visible count. It must complete before any Reserve call of the same frame.
func (d *DrawIndirectArgs) Reset() {
	d.vertexCount.Store(0)
}

// Reserve atomically increments the visible count and returns the value before the increment,
// which is a slot index unique within the frame.
func (d *DrawIndirectArgs) Reserve() uint32 {
	return d.vertexCount.Add(1) - 1
}

// Count returns the current visible count.
func (d *DrawIndirectArgs) Count() uint32 {
	return d.vertexCount.Load()
}

// Snapshot returns the GPU layout of the record as it stands now.
func (d *DrawIndirectArgs) Snapshot() GPUDrawIndirectArgs {
	return GPUDrawIndirectArgs{
		VertexCount:   d.vertexCount.Load(),
		InstanceCount: 1,
		FirstVertex:   0,
		FirstInstance: 0,
	}
}
