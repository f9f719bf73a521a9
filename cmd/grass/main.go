// Command grass runs the grass blade simulation and culling kernel headless, logging
// per-frame statistics and optionally streaming them over a websocket.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Carmen-Shannon/oxy-grass/common"
	"github.com/Carmen-Shannon/oxy-grass/engine"
	"github.com/Carmen-Shannon/oxy-grass/engine/camera"
	"github.com/Carmen-Shannon/oxy-grass/engine/grass"
	"github.com/Carmen-Shannon/oxy-grass/engine/renderer"
	"github.com/Carmen-Shannon/oxy-grass/engine/renderer/grass_compute"
	"github.com/Carmen-Shannon/oxy-grass/engine/telemetry"
	"github.com/go-gl/mathgl/mgl32"
)

func main() {
	flag.Parse()

	settings, err := loadSettings(*configFlag)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	applyFlags(&settings, flag.CommandLine)
	if err := settings.validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	level, _ := parseLogLevel(settings.LogLevel)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	common.SetLogger(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, settings, logger); err != nil {
		logger.Error("grass exited with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, s Settings, logger *slog.Logger) error {
	blades := grass.NewField(
		grass.WithBladeCount(s.Field.Blades),
		grass.WithSeed(s.Field.Seed),
		grass.WithPlaneSize(s.Field.PlaneSize),
	)
	if err := grass.ValidateBlades(blades); err != nil {
		return fmt.Errorf("invalid blade field: %w", err)
	}

	env := grass.Environment{
		Gravity:       mgl32.Vec3(s.Simulation.Gravity),
		WindAmplitude: s.Simulation.WindAmplitude,
	}

	cam := camera.NewCamera(
		camera.WithAspect(16.0/9.0),
		camera.WithController(camera.NewOrbitController(
			camera.WithRadius(s.Camera.Radius),
			camera.WithElevation(mgl32.DegToRad(s.Camera.ElevationDeg)),
			camera.WithOrbitSpeed(s.Camera.OrbitSpeed),
		)),
	)

	kernel, cleanup, err := newKernel(s, blades, env, cam, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	options := []engine.EngineBuilderOption{
		engine.WithTickRate(s.Engine.TickRate),
		engine.WithFrameLimit(s.Engine.Frames),
		engine.WithCamera(cam),
		engine.WithProfiling(s.Engine.Profile),
		engine.WithLogger(logger),
	}

	if s.Telemetry.Addr != "" {
		hub := telemetry.NewHub(telemetry.WithLogger(logger))
		defer hub.Close()

		mux := http.NewServeMux()
		mux.Handle("/ws", hub)
		srv := &http.Server{Addr: s.Telemetry.Addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			logger.Info("telemetry listening", "addr", s.Telemetry.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("telemetry server failed", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()
		options = append(options, engine.WithTelemetry(hub))
	}

	return engine.NewEngine(kernel, options...).Run(ctx)
}

// newKernel builds the kernel for the selected backend and returns a function that
// releases it along with any backend it owns.
func newKernel(s Settings, blades []grass.Blade, env grass.Environment, cam camera.Camera, logger *slog.Logger) (grass.Kernel, func(), error) {
	switch s.Simulation.Backend {
	case backendGPU:
		if s.Simulation.Wind != windHash {
			logger.Warn("gpu backend only supports hash wind, ignoring", "wind", s.Simulation.Wind)
		}
		backend, err := renderer.NewWGPUComputeBackend(renderer.WithLogger(logger))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create compute backend: %w", err)
		}
		k, err := grass_compute.NewGPUKernel(backend, blades,
			grass_compute.WithEnvironment(env),
			grass_compute.WithReadback(s.Simulation.Readback),
			grass_compute.WithCameraBindGroupProvider(cam.BindGroupProvider()),
			grass_compute.WithLogger(logger),
		)
		if err != nil {
			releaseGPU(cam, backend)
			return nil, nil, fmt.Errorf("failed to create gpu kernel: %w", err)
		}
		return k, func() {
			k.Release()
			releaseGPU(cam, backend)
		}, nil
	default:
		var wind grass.WindField = grass.HashWind{}
		if s.Simulation.Wind == windSimplex {
			wind = grass.NewSimplexWind(int64(s.Field.Seed), s.Simulation.WindFrequency)
		}
		options := []grass.CPUKernelBuilderOption{
			grass.WithEnvironment(env),
			grass.WithWindField(wind),
			grass.WithWorkgroupSize(s.Simulation.WorkgroupSize),
			grass.WithLogger(logger),
		}
		if s.Simulation.Workers > 0 {
			options = append(options, grass.WithWorkers(s.Simulation.Workers))
		}
		k, err := grass.NewCPUKernel(blades, options...)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create cpu kernel: %w", err)
		}
		return k, k.Release, nil
	}
}

// releaseGPU frees the camera buffers the GPU kernel initialized on the caller's provider,
// then the backend itself.
func releaseGPU(cam camera.Camera, backend renderer.ComputeBackend) {
	cam.BindGroupProvider().Release()
	backend.Release()
}
