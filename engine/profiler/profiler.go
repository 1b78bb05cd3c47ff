// Package profiler reports frame rate, memory and compositor frame statistics.
package profiler

import (
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-xr/common"
	"github.com/Carmen-Shannon/oxy-xr/engine/logger"
	"github.com/charmbracelet/log"
)

// Stats is the snapshot produced at the end of each reporting interval.
type Stats struct {
	FPS float64
	// SmoothedFPS blends each interval's FPS into the previous value so single
	// slow intervals do not dominate the log.
	SmoothedFPS float64
	HeapMB      float64
	AllocRateMB float64
	SysMB       float64
	GCCount     uint32
	LastPauseUs uint64
	MaxPauseUs  uint64

	// XR is false when no compositor frames were recorded in the interval.
	XR               bool
	DisplayPeriod    time.Duration
	CompositorFrames uint64
	Rendered         uint64
	Skipped          uint64
	Failed           uint64
}

// FrameSample is what the compositor frame loop reports after each frame.
type FrameSample struct {
	// DisplayPeriod is the runtime's predicted display period.
	DisplayPeriod time.Duration
	Rendered      bool
	Skipped       bool
	Failed        bool
}

// fpsSmoothing is the weight of the newest interval in SmoothedFPS.
const fpsSmoothing = 0.25

// Profiler tracks frame rate and memory statistics for performance monitoring.
// Outputs stats to the log at a configurable interval.
type Profiler struct {
	mu sync.Mutex

	logger *log.Logger
	now    func() time.Time

	frameCount     int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64

	xr   Stats
	last Stats
}

// NewProfiler creates a new Profiler with default settings.
// Update interval defaults to 1 second.
//
// Parameters:
//   - options: functional options
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(options ...ProfilerBuilderOption) *Profiler {
	p := &Profiler{
		logger:         logger.For("profiler"),
		now:            time.Now,
		updateInterval: time.Second,
	}
	for _, opt := range options {
		opt(p)
	}
	p.lastTime = p.now()
	return p
}

// Record adds one compositor frame to the current interval.
// Safe to call from any goroutine.
//
// Parameters:
//   - s: the frame outcome
func (p *Profiler) Record(s FrameSample) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.xr.XR = true
	p.xr.CompositorFrames++
	if s.DisplayPeriod > 0 {
		p.xr.DisplayPeriod = s.DisplayPeriod
	}
	switch {
	case s.Failed:
		p.xr.Failed++
	case s.Skipped:
		p.xr.Skipped++
	case s.Rendered:
		p.xr.Rendered++
	}
}

// Tick should be called once per frame to track frame timing.
// Logs performance statistics when the update interval has elapsed.
// Statistics include: FPS, heap usage, allocation rate, GC count/pause times, total memory,
// and, once compositor frames were recorded, the display period and frame outcomes.
//
// Returns:
//   - bool: true if stats were logged this tick, false otherwise
func (p *Profiler) Tick() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.frameCount++
	currentTime := p.now()
	elapsed := currentTime.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return false
	}

	s := p.xr
	s.FPS = float64(p.frameCount) / elapsed.Seconds()
	s.SmoothedFPS = s.FPS
	if p.last.SmoothedFPS > 0 {
		s.SmoothedFPS = common.Lerp(p.last.SmoothedFPS, s.FPS, fpsSmoothing)
	}

	runtime.ReadMemStats(&p.memStats)
	// Alloc: live heap. TotalAlloc: cumulative, tracks churn. Sys: process footprint.
	s.HeapMB = float64(p.memStats.Alloc) / 1024 / 1024
	s.SysMB = float64(p.memStats.Sys) / 1024 / 1024
	allocDelta := p.memStats.TotalAlloc - p.lastTotalAlloc
	s.AllocRateMB = float64(allocDelta) / 1024 / 1024 / elapsed.Seconds()

	s.GCCount = p.memStats.NumGC
	if s.GCCount > 0 {
		// PauseNs is a circular buffer of the last 256 GC pauses
		s.LastPauseUs = p.memStats.PauseNs[(s.GCCount-1)%256] / 1000
		startIdx := p.lastGCCount
		if s.GCCount-startIdx > 256 {
			startIdx = s.GCCount - 256
		}
		for i := startIdx; i < s.GCCount; i++ {
			s.MaxPauseUs = max(s.MaxPauseUs, p.memStats.PauseNs[i%256]/1000)
		}
	}

	fields := []any{
		"fps", s.FPS,
		"fps_smoothed", s.SmoothedFPS,
		"heap_mb", s.HeapMB,
		"alloc_rate_mb", s.AllocRateMB,
		"gc", s.GCCount,
		"gc_last_us", s.LastPauseUs,
		"gc_max_us", s.MaxPauseUs,
		"sys_mb", s.SysMB,
	}
	if s.XR {
		fields = append(fields,
			"display_period", s.DisplayPeriod,
			"xr_frames", s.CompositorFrames,
			"rendered", s.Rendered,
			"skipped", s.Skipped,
			"failed", s.Failed,
		)
	}
	p.logger.Info("frame stats", fields...)

	p.last = s
	p.xr = Stats{DisplayPeriod: p.xr.DisplayPeriod}
	p.frameCount = 0
	p.lastTime = currentTime
	p.lastGCCount = s.GCCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return true
}

// Last returns the snapshot of the most recently completed interval.
func (p *Profiler) Last() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last
}
