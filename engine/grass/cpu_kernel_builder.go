package grass

import "log/slog"

// CPUKernelBuilderOption is a functional option used to configure the CPU kernel during construction.
type CPUKernelBuilderOption func(*cpuKernelImpl)

// WithEnvironment sets the gravity and wind amplitude.
//
// Parameters:
//   - env: the environment to simulate under
//
// Returns:
//   - CPUKernelBuilderOption: a function that sets the environment
func WithEnvironment(env Environment) CPUKernelBuilderOption {
	return func(k *cpuKernelImpl) {
		k.env = env
	}
}

// WithWindField replaces the default HashWind noise. Passing nil disables wind.
//
// Parameters:
//   - wind: the wind field to sample
//
// Returns:
//   - CPUKernelBuilderOption: a function that sets the wind field
func WithWindField(wind WindField) CPUKernelBuilderOption {
	return func(k *cpuKernelImpl) {
		k.wind = wind
	}
}

// WithWorkgroupSize sets how many consecutive blade indices one task processes.
// Values below 1 are ignored.
//
// Parameters:
//   - size: the workgroup size
//
// Returns:
//   - CPUKernelBuilderOption: a function that sets the workgroup size
func WithWorkgroupSize(size int) CPUKernelBuilderOption {
	return func(k *cpuKernelImpl) {
		if size > 0 {
			k.workgroupSize = size
		}
	}
}

// WithWorkers sets the worker pool size. Values below 1 are ignored.
//
// Parameters:
//   - n: the number of workers
//
// Returns:
//   - CPUKernelBuilderOption: a function that sets the worker count
func WithWorkers(n int) CPUKernelBuilderOption {
	return func(k *cpuKernelImpl) {
		if n > 0 {
			k.workers = n
		}
	}
}

// WithLogger sets the logger used by the kernel. Defaults to common.Logger().
//
// Parameters:
//   - l: the logger
//
// Returns:
//   - CPUKernelBuilderOption: a function that sets the logger
func WithLogger(l *slog.Logger) CPUKernelBuilderOption {
	return func(k *cpuKernelImpl) {
		k.logger = l
	}
}
