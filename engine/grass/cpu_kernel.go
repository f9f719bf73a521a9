package grass

import (
	"context"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-grass/common"
)

// maxQueuedTasks bounds the number of tasks submitted per phase so a dispatch never
// outgrows the pool's task queue.
const maxQueuedTasks = 256

type cpuKernelImpl struct {
	mu *sync.Mutex

	// blades is the persistent, in-place updated population. Each index is owned by
	// exactly one task during a dispatch.
	blades []Blade

	// culled is the compacted output. It is a separate allocation sized to the full
	// population so every possible reservation is in bounds.
	culled []Blade
	args   DrawIndirectArgs

	env           Environment
	wind          WindField
	workgroupSize int
	workers       int
	pool          worker.DynamicWorkerPool
	logger        *slog.Logger
	frames        uint64
	released      bool
}

var _ Kernel = &cpuKernelImpl{}

// NewCPUKernel creates a Kernel that runs on a goroutine worker pool, one task per
// workgroup of blade indices. The blades are validated and copied.
//
// Parameters:
//   - blades: the initial blade population
//   - options: functional options to configure the kernel
//
// Returns:
//   - Kernel: the CPU kernel
//   - error: a validation error from ValidateBlades
func NewCPUKernel(blades []Blade, options ...CPUKernelBuilderOption) (Kernel, error) {
	if err := ValidateBlades(blades); err != nil {
		return nil, err
	}

	k := &cpuKernelImpl{
		mu:            &sync.Mutex{},
		blades:        append([]Blade(nil), blades...),
		culled:        make([]Blade, len(blades)),
		env:           DefaultEnvironment(),
		wind:          HashWind{},
		workgroupSize: DefaultWorkgroupSize,
		workers:       max(runtime.NumCPU()-1, 1),
	}
	for _, option := range options {
		option(k)
	}
	if k.logger == nil {
		k.logger = common.Logger()
	}
	k.pool = worker.NewDynamicWorkerPool(k.workers, maxQueuedTasks, 1*time.Second)

	k.logger.Info("cpu grass kernel created",
		"blades", len(k.blades),
		"workgroup_size", k.workgroupSize,
		"workers", k.workers,
	)
	return k, nil
}

func (k *cpuKernelImpl) Dispatch(ctx context.Context, frame Frame) (FrameStats, error) {
	if err := ctx.Err(); err != nil {
		return FrameStats{}, err
	}

	k.mu.Lock()
	defer k.mu.Unlock()

	if k.released {
		return FrameStats{}, ErrKernelReleased
	}

	start := time.Now()
	view := NewCullView(frame.View, frame.Proj)

	// Phase 1: global index 0 resets the count. The WaitGroup is the barrier that
	// orders the reset before every reservation in phase 2.
	var wg sync.WaitGroup
	wg.Add(1)
	k.pool.SubmitTask(worker.Task{
		ID: 0,
		Do: func() (any, error) {
			defer wg.Done()
			k.args.Reset()
			return nil, nil
		},
	})
	wg.Wait()

	// Phase 2: workgroups are dealt round-robin onto at most maxQueuedTasks tasks.
	n := len(k.blades)
	groups := (n + k.workgroupSize - 1) / k.workgroupSize
	tasks := min(groups, maxQueuedTasks)
	wg.Add(tasks)
	for t := range tasks {
		k.pool.SubmitTask(worker.Task{
			ID: t,
			Do: func() (any, error) {
				defer wg.Done()
				for g := t; g < groups; g += tasks {
					first := g * k.workgroupSize
					last := min(first+k.workgroupSize, n)
					for i := first; i < last; i++ {
						k.step(i, view, frame)
					}
				}
				return nil, nil
			},
		})
	}
	wg.Wait()

	k.frames++
	stats := FrameStats{
		Blades:   n,
		Visible:  k.args.Count(),
		Duration: time.Since(start),
	}
	k.logger.Debug("grass frame dispatched",
		"frame", k.frames,
		"visible", stats.Visible,
		"duration", stats.Duration,
	)
	return stats, nil
}

// step is the body of one task: simulate, write back, cull, reserve, write.
func (k *cpuKernelImpl) step(i int, view CullView, frame Frame) {
	b := Simulate(k.blades[i], k.env, k.wind, frame.DeltaTime, frame.TotalTime)
	k.blades[i] = b

	if !view.Visible(b, uint32(i)) {
		return
	}
	k.culled[k.args.Reserve()] = b
}

func (k *cpuKernelImpl) Blades() []Blade {
	k.mu.Lock()
	defer k.mu.Unlock()
	return append([]Blade(nil), k.blades...)
}

func (k *cpuKernelImpl) Culled() []Blade {
	k.mu.Lock()
	defer k.mu.Unlock()
	return append([]Blade(nil), k.culled[:min(int(k.args.Count()), len(k.culled))]...)
}

func (k *cpuKernelImpl) DrawArgs() GPUDrawIndirectArgs {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.args.Snapshot()
}

func (k *cpuKernelImpl) Len() int {
	return len(k.blades)
}

func (k *cpuKernelImpl) Release() {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.released {
		return
	}
	k.released = true
	k.culled = nil
	k.args.Reset()
	k.logger.Info("cpu grass kernel released", "frames", k.frames)
}
