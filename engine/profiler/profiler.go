package profiler

import (
	"context"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/tessera-go/common"
)

// Snapshot summarizes frame pacing over the most recently completed
// measurement interval.
type Snapshot struct {
	// FPS is the average frame rate over the interval. Zero until the first
	// interval completes.
	FPS float64

	// FrameTimeMs is the mean frame duration in milliseconds.
	FrameTimeMs float64

	// WorstFrameMs is the longest single frame observed during the interval,
	// in milliseconds.
	WorstFrameMs float64

	// Frames is the total frame count since the profiler was created.
	Frames uint64
}

// ProfilerOption is a functional option for configuring a Profiler.
type ProfilerOption func(p *Profiler)

// WithInterval sets the measurement interval. Intervals at or below zero are
// ignored and the 1 second default is kept.
//
// Parameters:
//   - interval: duration of one measurement window
//
// Returns:
//   - ProfilerOption: option function to apply
func WithInterval(interval time.Duration) ProfilerOption {
	return func(p *Profiler) {
		if interval > 0 {
			p.updateInterval = interval
		}
	}
}

// Profiler tracks frame rate and memory statistics for performance monitoring.
// Call Tick once per frame; the Snapshot of the last completed interval feeds
// adaptive quality decisions, and a debug log line is emitted per interval
// when the shared logger has debug enabled.
type Profiler struct {
	mu sync.Mutex

	frameCount     int
	totalFrames    uint64
	lastTime       time.Time
	lastFrame      time.Time
	worstFrame     time.Duration
	updateInterval time.Duration
	snapshot       Snapshot

	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64

	now func() time.Time
}

// NewProfiler creates a new Profiler.
// Update interval defaults to 1 second.
//
// Parameters:
//   - options: functional options to configure the profiler
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(options ...ProfilerOption) *Profiler {
	p := &Profiler{
		updateInterval: time.Second,
		now:            time.Now,
	}
	for _, opt := range options {
		opt(p)
	}
	p.lastTime = p.now()
	return p
}

// Tick should be called once per frame to track frame timing.
// When the update interval has elapsed the snapshot is refreshed and, at
// debug level, a statistics line covering FPS, heap usage, allocation rate
// and GC pauses is logged.
//
// Returns:
//   - bool: true if the snapshot was refreshed this tick, false otherwise
func (p *Profiler) Tick() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	currentTime := p.now()
	p.frameCount++
	p.totalFrames++

	if !p.lastFrame.IsZero() {
		if d := currentTime.Sub(p.lastFrame); d > p.worstFrame {
			p.worstFrame = d
		}
	}
	p.lastFrame = currentTime

	elapsed := currentTime.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return false
	}

	fps := float64(p.frameCount) / elapsed.Seconds()
	p.snapshot = Snapshot{
		FPS:          fps,
		FrameTimeMs:  elapsed.Seconds() * 1000 / float64(p.frameCount),
		WorstFrameMs: float64(p.worstFrame) / float64(time.Millisecond),
		Frames:       p.totalFrames,
	}

	p.logIntervalLocked(elapsed)

	p.frameCount = 0
	p.worstFrame = 0
	p.lastTime = currentTime
	return true
}

// Snapshot returns the statistics of the last completed interval.
// Safe for concurrent use.
//
// Returns:
//   - Snapshot: frame pacing summary, zero value before the first interval
func (p *Profiler) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshot
}

// Reset re-anchors the measurement interval at the current time and discards
// partial counts. Call after a pause in ticking (for example a hidden window)
// so the next interval is not diluted by the gap. The last completed
// snapshot is kept.
func (p *Profiler) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.frameCount = 0
	p.worstFrame = 0
	p.lastFrame = time.Time{}
	p.lastTime = p.now()
}

// logIntervalLocked emits the per-interval statistics line. Memory stats are
// only collected when debug logging is enabled, keeping ReadMemStats off the
// frame path otherwise.
func (p *Profiler) logIntervalLocked(elapsed time.Duration) {
	l := common.Logger()
	if !l.Enabled(context.Background(), slog.LevelDebug) {
		return
	}

	runtime.ReadMemStats(&p.memStats)
	// Alloc: Bytes of allocated heap objects (live memory)
	// TotalAlloc: Cumulative bytes allocated for heap objects (increases forever, tracks churn)
	// Sys: Total bytes of memory obtained from the OS (actual process footprint)
	allocMB := float64(p.memStats.Alloc) / 1024 / 1024
	sysMB := float64(p.memStats.Sys) / 1024 / 1024

	allocDelta := p.memStats.TotalAlloc - p.lastTotalAlloc
	allocRateMB := float64(allocDelta) / 1024 / 1024 / elapsed.Seconds()

	// PauseNs is a circular buffer of the last 256 GC pauses; report the max
	// pause since the previous interval.
	gcCount := p.memStats.NumGC
	var maxPauseUs uint64
	if gcCount > 0 {
		startIdx := p.lastGCCount
		if gcCount-startIdx > 256 {
			startIdx = gcCount - 256
		}
		for i := startIdx; i < gcCount; i++ {
			pause := p.memStats.PauseNs[i%256] / 1000
			if pause > maxPauseUs {
				maxPauseUs = pause
			}
		}
	}

	l.Debug("frame stats",
		slog.Float64("fps", p.snapshot.FPS),
		slog.Float64("frame_ms", p.snapshot.FrameTimeMs),
		slog.Float64("worst_ms", p.snapshot.WorstFrameMs),
		slog.Float64("heap_mb", allocMB),
		slog.Float64("alloc_mb_s", allocRateMB),
		slog.Uint64("gc", uint64(gcCount)),
		slog.Uint64("gc_max_pause_us", maxPauseUs),
		slog.Float64("sys_mb", sysMB),
	)

	p.lastGCCount = gcCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
}
