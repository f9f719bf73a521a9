package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/oxy-grass/common"
	"github.com/Carmen-Shannon/oxy-grass/engine/camera"
	"github.com/Carmen-Shannon/oxy-grass/engine/grass"
	"github.com/Carmen-Shannon/oxy-grass/engine/profiler"
	"github.com/Carmen-Shannon/oxy-grass/engine/telemetry"
)

// engine implements the Engine interface.
// Drives one grass kernel dispatch per tick from a single loop goroutine.
type engine struct {
	tickRateChannel chan time.Duration // Channel for dynamic tick rate updates

	running atomic.Bool

	quitChannel chan struct{}
	quitOnce    sync.Once // Ensures quitChannel is only closed once

	kernel grass.Kernel
	camera camera.Camera
	hub    telemetry.Hub

	profiler         *profiler.Profiler
	profilingEnabled bool

	engineTickRate time.Duration
	frameLimit     uint64 // 0 = unlimited
	tickCallback   func(deltaTime float32, stats grass.FrameStats)

	frames    atomic.Uint64
	totalTime float32
	logger    *slog.Logger
}

// Engine is the main entry point for the headless grass simulation.
// Each tick it advances the camera, dispatches the kernel, and reports the frame.
type Engine interface {
	// Kernel returns the kernel dispatched every tick.
	//
	// Returns:
	//   - grass.Kernel: the kernel
	Kernel() grass.Kernel

	// Camera returns the camera whose matrices feed every frame.
	//
	// Returns:
	//   - camera.Camera: the camera
	Camera() camera.Camera

	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// SetTickRate sets the engine tick rate in frames per second.
	//
	// Parameters:
	//   - fps: target frames per second (defaults to 60 if <= 0)
	SetTickRate(fps float64)

	// SetTickCallback registers the function called after each frame's dispatch.
	//
	// Parameters:
	//   - callback: receives the delta time in seconds and the frame's statistics
	SetTickCallback(callback func(deltaTime float32, stats grass.FrameStats))

	// Frames returns the number of frames dispatched so far.
	//
	// Returns:
	//   - uint64: the frame count
	Frames() uint64

	// Run blocks running the frame loop until ctx is cancelled, the frame limit is reached,
	// or Stop is called. A stop for any of those reasons returns nil.
	//
	// Parameters:
	//   - ctx: cancels the loop
	//
	// Returns:
	//   - error: the first kernel dispatch failure
	Run(ctx context.Context) error

	// Stop signals the loop to exit. Safe to call multiple times; subsequent calls are no-ops.
	Stop()
}

// NewEngine creates a new Engine around a kernel.
// Options are applied directly to the engine struct via the option-builder pattern.
//
// Parameters:
//   - kernel: the grass kernel to dispatch each tick
//   - options: functional options for engine configuration (profiling, tick rate, etc.)
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(kernel grass.Kernel, options ...EngineBuilderOption) Engine {
	if kernel == nil {
		panic("engine: a grass kernel is required")
	}
	e := &engine{
		tickRateChannel: make(chan time.Duration, 1),
		quitChannel:     make(chan struct{}),
		kernel:          kernel,
		engineTickRate:  time.Second / 60,
	}

	for _, opt := range options {
		opt(e)
	}

	e.logger = common.Coalesce(e.logger, common.Logger())
	if e.camera == nil {
		e.camera = camera.NewCamera(camera.WithController(camera.NewOrbitController()))
	}
	if e.profiler == nil {
		e.profiler = profiler.NewProfiler(profiler.WithLogger(e.logger))
	}
	return e
}

func (e *engine) Kernel() grass.Kernel {
	return e.kernel
}

func (e *engine) Camera() camera.Camera {
	return e.camera
}

func (e *engine) Frames() uint64 {
	return e.frames.Load()
}

func (e *engine) Run(ctx context.Context) error {
	if !e.running.CompareAndSwap(false, true) {
		return errors.New("engine is already running")
	}
	defer e.running.Store(false)

	ticker := time.NewTicker(e.engineTickRate)
	defer ticker.Stop()

	e.logger.Info("engine started",
		"blades", e.kernel.Len(),
		"tick_rate", e.engineTickRate,
		"frame_limit", e.frameLimit,
	)

	lastTick := time.Now()
	for {
		select {
		case <-ctx.Done():
			e.logger.Info("engine stopped", "reason", "context", "frames", e.frames.Load())
			return nil
		case <-e.quitChannel:
			e.logger.Info("engine stopped", "reason", "quit", "frames", e.frames.Load())
			return nil
		case newRate := <-e.tickRateChannel:
			ticker.Reset(newRate)
			e.engineTickRate = newRate
		case <-ticker.C:
			now := time.Now()
			dt := float32(now.Sub(lastTick).Seconds())
			lastTick = now

			if err := e.step(ctx, dt); err != nil {
				if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
					return nil
				}
				return err
			}
			if e.frameLimit > 0 && e.frames.Load() >= e.frameLimit {
				e.logger.Info("engine stopped", "reason", "frame limit", "frames", e.frames.Load())
				return nil
			}
		}
	}
}

// step runs one frame: advance the camera, dispatch, then report.
func (e *engine) step(ctx context.Context, dt float32) error {
	if ctrl := e.camera.Controller(); ctrl != nil {
		ctrl.Advance(dt)
	}
	e.camera.Update()
	e.totalTime += dt

	stats, err := e.kernel.Dispatch(ctx, grass.Frame{
		View:      e.camera.ViewMatrix(),
		Proj:      e.camera.ProjectionMatrix(),
		DeltaTime: dt,
		TotalTime: e.totalTime,
	})
	if err != nil {
		return fmt.Errorf("failed to dispatch frame %d: %w", e.frames.Load()+1, err)
	}
	e.frames.Add(1)

	if e.hub != nil {
		e.hub.Broadcast(stats)
	}
	if e.profilingEnabled {
		e.profiler.Tick(stats)
	}
	if e.tickCallback != nil {
		e.tickCallback(dt, stats)
	}
	return nil
}

// Stop signals the loop to exit.
// Safe to call multiple times; subsequent calls are no-ops due to sync.Once.
func (e *engine) Stop() {
	e.quitOnce.Do(func() {
		close(e.quitChannel)
	})
}

// EnableProfiler enables performance profiling output to the log.
func (e *engine) EnableProfiler() {
	e.profilingEnabled = true
}

// DisableProfiler disables performance profiling output.
func (e *engine) DisableProfiler() {
	e.profilingEnabled = false
}

// SetTickRate sets the engine tick rate in frames per second.
// If the engine is running, the change takes effect on the next loop iteration.
func (e *engine) SetTickRate(fps float64) {
	newRate := tickInterval(fps)

	if e.running.Load() {
		// Non-blocking send - if channel is full, replace the pending value
		select {
		case e.tickRateChannel <- newRate:
		default:
			select {
			case <-e.tickRateChannel:
			default:
			}
			e.tickRateChannel <- newRate
		}
	} else {
		e.engineTickRate = newRate
	}
}

// SetTickCallback registers the function called after each frame.
func (e *engine) SetTickCallback(callback func(deltaTime float32, stats grass.FrameStats)) {
	e.tickCallback = callback
}

// tickInterval converts a rate in frames per second to a ticker interval, defaulting to 60Hz.
func tickInterval(fps float64) time.Duration {
	if fps <= 0 {
		fps = 60
	}
	return time.Duration(float64(time.Second) / fps)
}
