package grass

import (
	"context"
	"errors"
	"time"
)

// DefaultWorkgroupSize is the number of blade indices processed per workgroup.
const DefaultWorkgroupSize = 32

// ErrKernelReleased is returned by Dispatch after Release has been called.
var ErrKernelReleased = errors.New("grass kernel has been released")

// FrameStats summarizes one dispatch.
type FrameStats struct {
	Blades   int           `json:"blades"`
	Visible  uint32        `json:"visible"`
	Duration time.Duration `json:"duration_ns"`
}

// Kernel simulates, culls and compacts a blade population once per frame.
//
// A dispatch runs in two phases. The first resets the visible count; the second runs one
// task per blade that simulates the blade in place, evaluates visibility and, if visible,
// reserves a slot in the compacted buffer. The phases are separated by a full barrier so
// that no reservation can observe the previous frame's count.
type Kernel interface {
	// Dispatch runs one frame. The context is only consulted before the dispatch starts;
	// once started, a frame always runs to completion.
	//
	// Parameters:
	//   - ctx: cancels a frame that has not started yet
	//   - frame: the camera and time state for this frame
	//
	// Returns:
	//   - FrameStats: the blade count, visible count and wall time of the dispatch
	//   - error: ctx.Err(), ErrKernelReleased or a backend failure
	Dispatch(ctx context.Context, frame Frame) (FrameStats, error)

	// Blades returns a copy of the persistent blade state as of the last completed frame.
	//
	// Returns:
	//   - []Blade: one entry per blade, in index order
	Blades() []Blade

	// Culled returns a copy of the valid prefix of the compacted buffer. Its length is the
	// visible count of the last completed frame; the order is unspecified.
	//
	// Returns:
	//   - []Blade: the visible blades
	Culled() []Blade

	// DrawArgs returns the indirect draw record of the last completed frame.
	//
	// Returns:
	//   - GPUDrawIndirectArgs: the draw arguments
	DrawArgs() GPUDrawIndirectArgs

	// Len returns the number of blades in the persistent buffer.
	//
	// Returns:
	//   - int: the population size
	Len() int

	// Release frees the kernel's resources. Dispatch fails afterwards.
	Release()
}
