package renderer

import (
	"log/slog"

	"github.com/cogentcore/webgpu/wgpu"
)

// ComputeBackendBuilderOption is a functional option applied to the backend during construction via NewWGPUComputeBackend.
type ComputeBackendBuilderOption func(*wgpuComputeBackendImpl)

// WithForceSoftwareRenderer forces WGPU to use a CPU/software fallback adapter instead of
// hardware GPU acceleration. This requires a software Vulkan ICD to be installed on the system
// (e.g. SwiftShader or lavapipe).
//
// Parameters:
//   - force: true to force the software fallback adapter, false to use hardware (default)
//
// Returns:
//   - ComputeBackendBuilderOption: a function that applies the option
func WithForceSoftwareRenderer(force bool) ComputeBackendBuilderOption {
	return func(b *wgpuComputeBackendImpl) {
		b.forceFallbackAdapter = force
	}
}

// WithPowerPreference selects between the low power and high performance adapter.
//
// Parameters:
//   - pref: the power preference, high performance by default
//
// Returns:
//   - ComputeBackendBuilderOption: a function that applies the option
func WithPowerPreference(pref wgpu.PowerPreference) ComputeBackendBuilderOption {
	return func(b *wgpuComputeBackendImpl) {
		b.powerPreference = pref
	}
}

// WithDeviceLabel sets the label of the requested device.
//
// Parameters:
//   - label: the device label
//
// Returns:
//   - ComputeBackendBuilderOption: a function that applies the option
func WithDeviceLabel(label string) ComputeBackendBuilderOption {
	return func(b *wgpuComputeBackendImpl) {
		b.deviceLabel = label
	}
}

// WithLogger sets the logger used by the backend.
//
// Parameters:
//   - logger: the logger, common.Logger() when nil
//
// Returns:
//   - ComputeBackendBuilderOption: a function that applies the option
func WithLogger(logger *slog.Logger) ComputeBackendBuilderOption {
	return func(b *wgpuComputeBackendImpl) {
		b.logger = logger
	}
}
