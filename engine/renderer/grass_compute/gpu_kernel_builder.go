package grass_compute

import (
	"log/slog"

	"github.com/Carmen-Shannon/oxy-grass/engine/grass"
	"github.com/Carmen-Shannon/oxy-grass/engine/renderer/bind_group_provider"
)

// GPUKernelBuilderOption is a functional option used to configure the GPU kernel during construction.
type GPUKernelBuilderOption func(*gpuKernelImpl)

// WithEnvironment sets the gravity and wind amplitude uploaded every frame.
//
// Parameters:
//   - env: the environment to simulate under
//
// Returns:
//   - GPUKernelBuilderOption: a function that sets the environment
func WithEnvironment(env grass.Environment) GPUKernelBuilderOption {
	return func(k *gpuKernelImpl) {
		k.env = env
	}
}

// WithReadback controls whether the persistent and compacted blade buffers are copied back
// after every frame. The draw arguments are always read back. Disabled, Blades and Culled
// return the state of the last frame that was read back.
//
// Parameters:
//   - enabled: true to read blades back every frame (default)
//
// Returns:
//   - GPUKernelBuilderOption: a function that sets readback
func WithReadback(enabled bool) GPUKernelBuilderOption {
	return func(k *gpuKernelImpl) {
		k.readback = enabled
	}
}

// WithCameraBindGroupProvider binds an existing camera provider as group 0 instead of
// creating one. The kernel writes the camera uniform into it every frame but does not
// release it.
//
// Parameters:
//   - p: the camera's bind group provider
//
// Returns:
//   - GPUKernelBuilderOption: a function that sets the camera provider
func WithCameraBindGroupProvider(p bind_group_provider.BindGroupProvider) GPUKernelBuilderOption {
	return func(k *gpuKernelImpl) {
		k.cameraProvider = p
	}
}

// WithLogger sets the logger used by the kernel.
//
// Parameters:
//   - logger: the logger, common.Logger() when nil
//
// Returns:
//   - GPUKernelBuilderOption: a function that sets the logger
func WithLogger(logger *slog.Logger) GPUKernelBuilderOption {
	return func(k *gpuKernelImpl) {
		k.logger = logger
	}
}
