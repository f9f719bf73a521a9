package grass_compute

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-grass/common"
	"github.com/Carmen-Shannon/oxy-grass/engine/camera"
	"github.com/Carmen-Shannon/oxy-grass/engine/grass"
	"github.com/Carmen-Shannon/oxy-grass/engine/renderer"
	"github.com/Carmen-Shannon/oxy-grass/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-grass/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-grass/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

const (
	// ResetPipelineKey is the key of the pipeline that clears the draw arguments.
	ResetPipelineKey = "grass_reset"

	// SimulatePipelineKey is the key of the pipeline that simulates, culls and compacts blades.
	SimulatePipelineKey = "grass_compute"
)

// Binding indices within the storage group of the simulate shader.
const (
	bindingBlades   = 0
	bindingCulled   = 1
	bindingDrawArgs = 2
)

// Binding indices within the uniform group of the simulate shader.
const (
	bindingTime        = 0
	bindingEnvironment = 1
)

type gpuKernelImpl struct {
	mu      *sync.Mutex
	backend renderer.ComputeBackend

	resetPipeline    pipeline.Pipeline
	simulatePipeline pipeline.Pipeline

	// one provider per bind group of the simulate shader, in group order
	cameraProvider  bind_group_provider.BindGroupProvider
	uniformProvider bind_group_provider.BindGroupProvider
	storageProvider bind_group_provider.BindGroupProvider

	// resetProvider shares the draw arguments buffer of storageProvider
	resetProvider bind_group_provider.BindGroupProvider

	// ownsCamera is false when the camera provider was supplied by the caller
	ownsCamera bool

	n      int
	blades []grass.Blade
	culled []grass.Blade
	args   grass.GPUDrawIndirectArgs

	env      grass.Environment
	readback bool
	logger   *slog.Logger
	frames   uint64
	released bool
}

var _ grass.Kernel = &gpuKernelImpl{}

// NewGPUKernel creates a grass.Kernel that runs the reset and simulate shaders on the
// backend's device. The persistent blade buffer is uploaded once; afterwards blades live
// on the GPU and are only read back when readback is enabled.
//
// Parameters:
//   - backend: the compute backend that owns the device
//   - blades: the initial blade population
//   - options: functional options to configure the kernel
//
// Returns:
//   - grass.Kernel: the GPU kernel
//   - error: a validation error or a GPU resource creation error
func NewGPUKernel(backend renderer.ComputeBackend, blades []grass.Blade, options ...GPUKernelBuilderOption) (grass.Kernel, error) {
	if err := grass.ValidateBlades(blades); err != nil {
		return nil, err
	}

	k := &gpuKernelImpl{
		mu:       &sync.Mutex{},
		backend:  backend,
		n:        len(blades),
		blades:   append([]grass.Blade(nil), blades...),
		env:      grass.DefaultEnvironment(),
		readback: true,
	}
	for _, option := range options {
		option(k)
	}
	if k.logger == nil {
		k.logger = common.Logger()
	}
	if k.cameraProvider == nil {
		k.cameraProvider = bind_group_provider.NewBindGroupProvider("grass_camera")
		k.ownsCamera = true
	}

	if err := k.init(); err != nil {
		k.releaseProviders()
		return nil, err
	}

	k.logger.Info("gpu grass kernel created",
		"blades", k.n,
		"workgroups", k.simulatePipeline.WorkgroupCount(k.n),
		"readback", k.readback,
	)
	return k, nil
}

// init registers both pipelines and creates every buffer and bind group.
func (k *gpuKernelImpl) init() error {
	resetShader, err := shader.NewShader(ResetPipelineKey, shader.ShaderTypeCompute, grass.GrassResetSource)
	if err != nil {
		return err
	}
	simulateShader, err := shader.NewShader(SimulatePipelineKey, shader.ShaderTypeCompute, grass.GrassComputeSource)
	if err != nil {
		return err
	}

	k.resetPipeline, err = k.registerPipeline(ResetPipelineKey, resetShader)
	if err != nil {
		return err
	}
	k.simulatePipeline, err = k.registerPipeline(SimulatePipelineKey, simulateShader)
	if err != nil {
		return err
	}

	layouts := simulateShader.BindGroupLayoutDescriptors()
	bladeBytes := uint64(k.n * (&grass.GPUBlade{}).Size())

	if k.cameraProvider.BindGroup() == nil {
		if err := k.backend.InitBindGroup(k.cameraProvider, layouts[0], nil, nil); err != nil {
			return fmt.Errorf("failed to init camera bind group: %w", err)
		}
	}

	k.uniformProvider = bind_group_provider.NewBindGroupProvider("grass_uniforms")
	if err := k.backend.InitBindGroup(k.uniformProvider, layouts[1], nil, nil); err != nil {
		return fmt.Errorf("failed to init uniform bind group: %w", err)
	}

	k.storageProvider = bind_group_provider.NewBindGroupProvider("grass_blades")
	err = k.backend.InitBindGroup(k.storageProvider, layouts[2],
		map[int]wgpu.BufferUsage{
			bindingBlades:   wgpu.BufferUsageCopySrc,
			bindingCulled:   wgpu.BufferUsageCopySrc | wgpu.BufferUsageVertex,
			bindingDrawArgs: wgpu.BufferUsageCopySrc | wgpu.BufferUsageIndirect,
		},
		map[int]uint64{
			bindingBlades: bladeBytes,
			bindingCulled: bladeBytes,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to init blade bind group: %w", err)
	}

	k.resetProvider = bind_group_provider.NewBindGroupProvider("grass_reset",
		bind_group_provider.WithSharedBuffer(0, k.storageProvider.Buffer(bindingDrawArgs)),
	)
	if err := k.backend.InitBindGroup(k.resetProvider, resetShader.BindGroupLayoutDescriptors()[0], nil, nil); err != nil {
		return fmt.Errorf("failed to init reset bind group: %w", err)
	}

	k.backend.WriteBuffers([]bind_group_provider.BufferWrite{
		{Provider: k.storageProvider, Binding: bindingBlades, Data: common.SliceToBytes(k.blades)},
	})
	return nil
}

// registerPipeline reuses a pipeline already registered on the backend under key.
func (k *gpuKernelImpl) registerPipeline(key string, s shader.Shader) (pipeline.Pipeline, error) {
	if p := k.backend.Pipeline(key); p != nil {
		return p, nil
	}
	p := pipeline.NewPipeline(key, pipeline.WithComputeShader(s))
	if err := k.backend.RegisterComputePipeline(p); err != nil {
		return nil, fmt.Errorf("failed to register %s: %w", key, err)
	}
	return p, nil
}

func (k *gpuKernelImpl) Dispatch(ctx context.Context, frame grass.Frame) (grass.FrameStats, error) {
	if err := ctx.Err(); err != nil {
		return grass.FrameStats{}, err
	}

	k.mu.Lock()
	defer k.mu.Unlock()

	if k.released {
		return grass.FrameStats{}, grass.ErrKernelReleased
	}

	start := time.Now()
	cam := camera.NewGPUCameraUniform(frame.View, frame.Proj)
	timeUniform := grass.GPUTimeUniform{DeltaTime: frame.DeltaTime, TotalTime: frame.TotalTime}
	envUniform := k.env.ToGPU()
	k.backend.WriteBuffers([]bind_group_provider.BufferWrite{
		{Provider: k.cameraProvider, Binding: 0, Data: cam.Marshal()},
		{Provider: k.uniformProvider, Binding: bindingTime, Data: timeUniform.Marshal()},
		{Provider: k.uniformProvider, Binding: bindingEnvironment, Data: envUniform.Marshal()},
	})

	if err := k.encodeFrame(); err != nil {
		return grass.FrameStats{}, fmt.Errorf("failed to dispatch grass frame: %w", err)
	}
	if err := k.readBack(); err != nil {
		return grass.FrameStats{}, fmt.Errorf("failed to read back grass frame: %w", err)
	}

	k.frames++
	stats := grass.FrameStats{
		Blades:   k.n,
		Visible:  k.args.VertexCount,
		Duration: time.Since(start),
	}
	k.logger.Debug("grass frame dispatched",
		"frame", k.frames,
		"visible", stats.Visible,
		"duration", stats.Duration,
	)
	return stats, nil
}

// encodeFrame submits the reset pass followed by the simulate pass. The pass boundary
// orders the reset before every reservation.
func (k *gpuKernelImpl) encodeFrame() error {
	if err := k.backend.BeginComputeFrame(); err != nil {
		return err
	}
	err := k.backend.DispatchCompute(k.resetPipeline,
		[]bind_group_provider.BindGroupProvider{k.resetProvider},
		[3]uint32{1, 1, 1},
	)
	if err == nil {
		err = k.backend.DispatchCompute(k.simulatePipeline,
			[]bind_group_provider.BindGroupProvider{k.cameraProvider, k.uniformProvider, k.storageProvider},
			[3]uint32{k.simulatePipeline.WorkgroupCount(k.n), 1, 1},
		)
	}
	if endErr := k.backend.EndComputeFrame(); err == nil {
		err = endErr
	}
	return err
}

// readBack fetches the draw arguments every frame, and the blade buffers when enabled.
func (k *gpuKernelImpl) readBack() error {
	data, err := k.backend.ReadBuffer(k.storageProvider.Buffer(bindingDrawArgs), uint64((&grass.GPUDrawIndirectArgs{}).Size()))
	if err != nil {
		return err
	}
	k.args = grass.UnmarshalDrawIndirectArgs(data)
	if !k.readback {
		return nil
	}

	stride := uint64((&grass.GPUBlade{}).Size())
	data, err = k.backend.ReadBuffer(k.storageProvider.Buffer(bindingBlades), uint64(k.n)*stride)
	if err != nil {
		return err
	}
	k.blades = grass.UnmarshalBlades(data)

	count := min(int(k.args.VertexCount), k.n)
	data, err = k.backend.ReadBuffer(k.storageProvider.Buffer(bindingCulled), uint64(count)*stride)
	if err != nil {
		return err
	}
	k.culled = grass.UnmarshalBlades(data)
	return nil
}

func (k *gpuKernelImpl) Blades() []grass.Blade {
	k.mu.Lock()
	defer k.mu.Unlock()
	return append([]grass.Blade(nil), k.blades...)
}

func (k *gpuKernelImpl) Culled() []grass.Blade {
	k.mu.Lock()
	defer k.mu.Unlock()
	return append([]grass.Blade(nil), k.culled...)
}

func (k *gpuKernelImpl) DrawArgs() grass.GPUDrawIndirectArgs {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.args
}

func (k *gpuKernelImpl) Len() int {
	return k.n
}

func (k *gpuKernelImpl) Release() {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.released {
		return
	}
	k.released = true
	k.releaseProviders()
	k.culled = nil
	k.args.VertexCount = 0
	k.logger.Info("gpu grass kernel released", "frames", k.frames)
}

// releaseProviders releases the bind groups and buffers. The reset provider goes first
// since it borrows the draw arguments buffer.
func (k *gpuKernelImpl) releaseProviders() {
	for _, p := range []bind_group_provider.BindGroupProvider{k.resetProvider, k.storageProvider, k.uniformProvider} {
		if p != nil {
			p.Release()
		}
	}
	if k.ownsCamera && k.cameraProvider != nil {
		k.cameraProvider.Release()
	}
}
