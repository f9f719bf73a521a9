package profiler

import (
	"log/slog"
	"runtime"
	"time"

	"github.com/Carmen-Shannon/oxy-grass/common"
	"github.com/Carmen-Shannon/oxy-grass/engine/grass"
)

// Report is one interval's worth of frame and memory statistics.
type Report struct {
	FPS            float64
	AvgVisible     float64
	AvgDispatch    time.Duration
	MaxDispatch    time.Duration
	HeapMB         float64
	AllocRateMB    float64
	GCCount        uint32
	LastGCPauseUs  uint64
	MaxGCPauseUs   uint64
	SysMB          float64
	IntervalFrames int
}

// Profiler tracks frame rate, kernel dispatch time, visible blade counts and memory statistics.
// Outputs stats to the log at a configurable interval.
type Profiler struct {
	frameCount     int
	visibleSum     uint64
	dispatchSum    time.Duration
	dispatchMax    time.Duration
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64
	last           Report
	now            func() time.Time
	logger         *slog.Logger
}

// NewProfiler creates a new Profiler. Update interval defaults to 1 second.
//
// Parameters:
//   - options: functional options to configure the profiler
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(options ...ProfilerBuilderOption) *Profiler {
	p := &Profiler{
		updateInterval: time.Second,
		now:            time.Now,
	}
	for _, option := range options {
		option(p)
	}
	if p.logger == nil {
		p.logger = common.Logger()
	}
	p.lastTime = p.now()
	return p
}

// Tick should be called once per frame with that frame's kernel statistics.
// Logs performance statistics when the update interval has elapsed.
//
// Parameters:
//   - stats: the statistics returned by the frame's dispatch
//
// Returns:
//   - bool: true if stats were logged this tick, false otherwise
func (p *Profiler) Tick(stats grass.FrameStats) bool {
	p.frameCount++
	p.visibleSum += uint64(stats.Visible)
	p.dispatchSum += stats.Duration
	p.dispatchMax = max(p.dispatchMax, stats.Duration)

	currentTime := p.now()
	elapsed := currentTime.Sub(p.lastTime)
	if elapsed < p.updateInterval || elapsed <= 0 {
		return false
	}

	runtime.ReadMemStats(&p.memStats)
	// Alloc: live heap; TotalAlloc: cumulative (tracks churn); Sys: process footprint
	r := Report{
		FPS:            float64(p.frameCount) / elapsed.Seconds(),
		AvgVisible:     float64(p.visibleSum) / float64(p.frameCount),
		AvgDispatch:    p.dispatchSum / time.Duration(p.frameCount),
		MaxDispatch:    p.dispatchMax,
		HeapMB:         float64(p.memStats.Alloc) / 1024 / 1024,
		AllocRateMB:    float64(p.memStats.TotalAlloc-p.lastTotalAlloc) / 1024 / 1024 / elapsed.Seconds(),
		GCCount:        p.memStats.NumGC,
		SysMB:          float64(p.memStats.Sys) / 1024 / 1024,
		IntervalFrames: p.frameCount,
	}

	if gcCount := p.memStats.NumGC; gcCount > 0 {
		// PauseNs is a circular buffer of the last 256 GC pauses
		r.LastGCPauseUs = p.memStats.PauseNs[(gcCount-1)%256] / 1000
		startIdx := p.lastGCCount
		if gcCount-startIdx > 256 {
			startIdx = gcCount - 256
		}
		for i := startIdx; i < gcCount; i++ {
			r.MaxGCPauseUs = max(r.MaxGCPauseUs, p.memStats.PauseNs[i%256]/1000)
		}
	}

	p.logger.Info("profiler",
		"fps", r.FPS,
		"visible_avg", r.AvgVisible,
		"dispatch_avg", r.AvgDispatch,
		"dispatch_max", r.MaxDispatch,
		"heap_mb", r.HeapMB,
		"alloc_rate_mb_s", r.AllocRateMB,
		"gc", r.GCCount,
		"gc_last_us", r.LastGCPauseUs,
		"gc_max_us", r.MaxGCPauseUs,
		"sys_mb", r.SysMB,
	)

	p.last = r
	p.frameCount = 0
	p.visibleSum = 0
	p.dispatchSum = 0
	p.dispatchMax = 0
	p.lastTime = currentTime
	p.lastGCCount = r.GCCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return true
}

// LastReport returns the most recently logged report, the zero Report before the first one.
func (p *Profiler) LastReport() Report {
	return p.last
}
