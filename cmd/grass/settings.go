package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
)

const (
	defaultBlades = 1 << 13

	backendCPU = "cpu"
	backendGPU = "gpu"

	windHash    = "hash"
	windSimplex = "simplex"
)

// Settings is the complete run configuration. Defaults come from defaultSettings, a JSON
// file may overlay them, and explicitly set flags win over both.
type Settings struct {
	Field      FieldSettings      `json:"field"`
	Simulation SimulationSettings `json:"simulation"`
	Engine     EngineSettings     `json:"engine"`
	Camera     CameraSettings     `json:"camera"`
	Telemetry  TelemetrySettings  `json:"telemetry"`
	LogLevel   string             `json:"logLevel"`
}

type FieldSettings struct {
	Blades    int     `json:"blades"`
	Seed      uint64  `json:"seed"`
	PlaneSize float32 `json:"planeSize"`
}

type SimulationSettings struct {
	Backend       string     `json:"backend"`
	Wind          string     `json:"wind"`
	WindFrequency float64    `json:"windFrequency"`
	WindAmplitude float32    `json:"windAmplitude"`
	Gravity       [3]float32 `json:"gravity"`
	WorkgroupSize int        `json:"workgroupSize"`
	Workers       int        `json:"workers"`
	Readback      bool       `json:"readback"`
}

type EngineSettings struct {
	TickRate float64 `json:"tickRate"`
	Frames   uint64  `json:"frames"`
	Profile  bool    `json:"profile"`
}

type CameraSettings struct {
	Radius       float32 `json:"radius"`
	ElevationDeg float32 `json:"elevationDeg"`
	OrbitSpeed   float32 `json:"orbitSpeed"`
}

type TelemetrySettings struct {
	Addr string `json:"addr"`
}

func defaultSettings() Settings {
	return Settings{
		Field: FieldSettings{
			Blades:    defaultBlades,
			Seed:      1,
			PlaneSize: 15,
		},
		Simulation: SimulationSettings{
			Backend:       backendCPU,
			Wind:          windHash,
			WindFrequency: 0.15,
			WindAmplitude: 3,
			Gravity:       [3]float32{0, -9.8, 0},
			WorkgroupSize: 32,
			Readback:      true,
		},
		Engine: EngineSettings{
			TickRate: 60,
		},
		Camera: CameraSettings{
			Radius:       12,
			ElevationDeg: 20,
			OrbitSpeed:   0.2,
		},
		LogLevel: "info",
	}
}

// loadSettings returns the defaults overlaid with the JSON file at path. An empty path
// returns the defaults.
func loadSettings(path string) (Settings, error) {
	s := defaultSettings()
	if path == "" {
		return s, nil
	}

	file, err := os.Open(path)
	if err != nil {
		return s, fmt.Errorf("failed to open settings: %w", err)
	}
	defer file.Close()

	decoder := json.NewDecoder(file)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&s); err != nil {
		return s, fmt.Errorf("failed to parse settings %s: %w", path, err)
	}
	return s, nil
}

// applyFlags copies every flag that was set explicitly on fs into s.
func applyFlags(s *Settings, fs *flag.FlagSet) {
	fs.Visit(func(f *flag.Flag) {
		getter, ok := f.Value.(flag.Getter)
		if !ok {
			return
		}
		switch v := getter.Get().(type) {
		case int:
			if f.Name == "blades" {
				s.Field.Blades = v
			}
		case uint64:
			switch f.Name {
			case "seed":
				s.Field.Seed = v
			case "frames":
				s.Engine.Frames = v
			}
		case float64:
			if f.Name == "tick" {
				s.Engine.TickRate = v
			}
		case bool:
			if f.Name == "profile" {
				s.Engine.Profile = v
			}
		case string:
			switch f.Name {
			case "backend":
				s.Simulation.Backend = v
			case "wind":
				s.Simulation.Wind = v
			case "addr":
				s.Telemetry.Addr = v
			case "log-level":
				s.LogLevel = v
			}
		}
	})
}

// validate reports every invalid setting at once.
func (s Settings) validate() error {
	var errs []error
	if s.Field.Blades <= 0 {
		errs = append(errs, fmt.Errorf("blades must be positive, got %d", s.Field.Blades))
	}
	if s.Field.PlaneSize <= 0 {
		errs = append(errs, fmt.Errorf("planeSize must be positive, got %v", s.Field.PlaneSize))
	}
	switch s.Simulation.Backend {
	case backendCPU, backendGPU:
	default:
		errs = append(errs, fmt.Errorf("unknown backend %q", s.Simulation.Backend))
	}
	switch s.Simulation.Wind {
	case windHash, windSimplex:
	default:
		errs = append(errs, fmt.Errorf("unknown wind %q", s.Simulation.Wind))
	}
	if s.Engine.TickRate <= 0 {
		errs = append(errs, fmt.Errorf("tick rate must be positive, got %v", s.Engine.TickRate))
	}
	if _, err := parseLogLevel(s.LogLevel); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func parseLogLevel(level string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
		return l, fmt.Errorf("unknown log level %q", level)
	}
	return l, nil
}
