package main

import "flag"

// Command-line flags. Any flag set explicitly overrides the value loaded from -config.
var (
	// configFlag points at an optional JSON settings file overlaid onto the defaults.
	configFlag = flag.String("config", "", "path to a JSON settings file")

	// bladesFlag sets the number of blades scattered over the field.
	bladesFlag = flag.Int("blades", defaultBlades, "number of grass blades")

	// seedFlag seeds the field generator and the simplex wind.
	seedFlag = flag.Uint64("seed", 1, "random seed for the blade field")

	// backendFlag selects the kernel implementation.
	backendFlag = flag.String("backend", backendCPU, "kernel backend: cpu or gpu")

	// framesFlag stops the run after a number of frames; 0 runs until interrupted.
	framesFlag = flag.Uint64("frames", 0, "number of frames to run (0 = until interrupted)")

	// tickFlag sets the frame rate of the engine loop.
	tickFlag = flag.Float64("tick", 60, "frames per second")

	// addrFlag enables the telemetry websocket on the given address.
	addrFlag = flag.String("addr", "", "telemetry listen address, e.g. :8080 (empty = off)")

	// windFlag selects the wind noise used by the cpu backend.
	windFlag = flag.String("wind", windHash, "wind noise: hash or simplex (cpu backend only)")

	// profileFlag logs frame rate and memory statistics once per second.
	profileFlag = flag.Bool("profile", false, "log profiler statistics every second")

	logLevelFlag = flag.String("log-level", "info", "log level: debug, info, warn or error")
)
