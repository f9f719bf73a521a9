package engine

import (
	"log/slog"

	"github.com/Carmen-Shannon/oxy-grass/engine/camera"
	"github.com/Carmen-Shannon/oxy-grass/engine/profiler"
	"github.com/Carmen-Shannon/oxy-grass/engine/telemetry"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithProfiling enables or disables performance profiling output.
//
// Parameters:
//   - enabled: if true, enables performance profiling
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled = enabled
	}
}

// WithProfiler replaces the default profiler.
//
// Parameters:
//   - p: the profiler to feed each frame
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiler(p *profiler.Profiler) EngineBuilderOption {
	return func(e *engine) {
		e.profiler = p
	}
}

// WithTickRate sets the engine tick rate in frames per second.
// Values <= 0 will be treated as the default (60Hz).
//
// Parameters:
//   - fps: target ticks per second (default 60)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithTickRate(fps float64) EngineBuilderOption {
	return func(e *engine) {
		e.engineTickRate = tickInterval(fps)
	}
}

// WithFrameLimit stops Run after the given number of frames. 0 runs until stopped.
//
// Parameters:
//   - frames: the number of frames to run
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithFrameLimit(frames uint64) EngineBuilderOption {
	return func(e *engine) {
		e.frameLimit = frames
	}
}

// WithCamera sets the camera whose matrices feed each frame. Without one the engine
// creates a camera with a default orbit controller.
//
// Parameters:
//   - c: the camera
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithCamera(c camera.Camera) EngineBuilderOption {
	return func(e *engine) {
		e.camera = c
	}
}

// WithTelemetry broadcasts every frame's statistics through the hub.
//
// Parameters:
//   - h: the telemetry hub
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithTelemetry(h telemetry.Hub) EngineBuilderOption {
	return func(e *engine) {
		e.hub = h
	}
}

// WithLogger sets the logger used by the engine and its default profiler.
//
// Parameters:
//   - logger: the logger, common.Logger() when nil
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithLogger(logger *slog.Logger) EngineBuilderOption {
	return func(e *engine) {
		e.logger = logger
	}
}
