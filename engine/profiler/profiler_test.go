package profiler

import (
	"math"
	"testing"
	"time"
)

// fakeClock drives the profiler deterministically.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time {
	return c.t
}

func (c *fakeClock) advance(d time.Duration) {
	c.t = c.t.Add(d)
}

func newTestProfiler(t *testing.T, options ...ProfilerOption) (*Profiler, *fakeClock) {
	t.Helper()
	c := &fakeClock{t: time.Unix(1000, 0)}
	p := NewProfiler(options...)
	p.now = c.now
	p.lastTime = c.t
	return p, c
}

func approx(got, want, tol float64) bool {
	return math.Abs(got-want) <= tol
}

func TestProfilerSnapshotAfterInterval(t *testing.T) {
	p, c := newTestProfiler(t)

	refreshed := false
	for i := 0; i < 63; i++ {
		c.advance(16 * time.Millisecond)
		if p.Tick() {
			refreshed = true
		}
	}
	if !refreshed {
		t.Fatal("expected the interval to complete within 63 frames at 16ms")
	}

	snap := p.Snapshot()
	if !approx(snap.FPS, 62.5, 1e-6) {
		t.Errorf("FPS = %v, want 62.5", snap.FPS)
	}
	if !approx(snap.FrameTimeMs, 16, 1e-6) {
		t.Errorf("FrameTimeMs = %v, want 16", snap.FrameTimeMs)
	}
	if !approx(snap.WorstFrameMs, 16, 1e-6) {
		t.Errorf("WorstFrameMs = %v, want 16", snap.WorstFrameMs)
	}
	if snap.Frames != 63 {
		t.Errorf("Frames = %d, want 63", snap.Frames)
	}
}

func TestProfilerTracksWorstFrame(t *testing.T) {
	p, c := newTestProfiler(t)

	for i := 0; i < 50; i++ {
		c.advance(10 * time.Millisecond)
		p.Tick()
	}
	c.advance(50 * time.Millisecond)
	p.Tick()
	var refreshed bool
	for i := 0; i < 46; i++ {
		c.advance(10 * time.Millisecond)
		if p.Tick() {
			refreshed = true
		}
	}
	if !refreshed {
		t.Fatal("expected the interval to complete")
	}

	if worst := p.Snapshot().WorstFrameMs; !approx(worst, 50, 1e-6) {
		t.Errorf("WorstFrameMs = %v, want 50", worst)
	}
}

func TestProfilerNoSnapshotBeforeInterval(t *testing.T) {
	p, c := newTestProfiler(t)

	for i := 0; i < 10; i++ {
		c.advance(10 * time.Millisecond)
		if p.Tick() {
			t.Fatalf("Tick reported a completed interval after %dms", (i+1)*10)
		}
	}

	if snap := p.Snapshot(); snap != (Snapshot{}) {
		t.Errorf("Snapshot before first interval = %+v, want zero value", snap)
	}
}

func TestProfilerCustomInterval(t *testing.T) {
	p, c := newTestProfiler(t, WithInterval(100*time.Millisecond))

	var refreshed bool
	for i := 0; i < 7; i++ {
		c.advance(16 * time.Millisecond)
		if p.Tick() {
			refreshed = true
		}
	}
	if !refreshed {
		t.Fatal("expected a 100ms interval to complete within 7 frames at 16ms")
	}
	if fps := p.Snapshot().FPS; !approx(fps, 62.5, 1e-6) {
		t.Errorf("FPS = %v, want 62.5", fps)
	}
}

func TestProfilerIntervalIgnoresNonPositive(t *testing.T) {
	p := NewProfiler(WithInterval(0), WithInterval(-time.Second))
	if p.updateInterval != time.Second {
		t.Errorf("updateInterval = %v, want the 1s default", p.updateInterval)
	}
}

func TestProfilerWorstFrameResetsPerInterval(t *testing.T) {
	p, c := newTestProfiler(t)

	// First interval contains a 200ms spike.
	for i := 0; i < 9; i++ {
		c.advance(100 * time.Millisecond)
		p.Tick()
	}
	c.advance(200 * time.Millisecond)
	if !p.Tick() {
		t.Fatal("expected the first interval to complete")
	}
	if worst := p.Snapshot().WorstFrameMs; !approx(worst, 200, 1e-6) {
		t.Fatalf("first interval WorstFrameMs = %v, want 200", worst)
	}

	// Second interval is steady 100ms frames; the spike must not carry over.
	var refreshed bool
	for i := 0; i < 10; i++ {
		c.advance(100 * time.Millisecond)
		if p.Tick() {
			refreshed = true
		}
	}
	if !refreshed {
		t.Fatal("expected the second interval to complete")
	}
	if worst := p.Snapshot().WorstFrameMs; !approx(worst, 100, 1e-6) {
		t.Errorf("second interval WorstFrameMs = %v, want 100", worst)
	}
}

func TestProfilerResetAfterGap(t *testing.T) {
	p, c := newTestProfiler(t)

	// Complete one interval so there is a snapshot to preserve.
	for i := 0; i < 10; i++ {
		c.advance(100 * time.Millisecond)
		p.Tick()
	}
	if fps := p.Snapshot().FPS; !approx(fps, 10, 1e-6) {
		t.Fatalf("FPS = %v, want 10 before the gap", fps)
	}

	// A long untracked pause, then a reset before ticking resumes.
	c.advance(10 * time.Second)
	p.Reset()

	if fps := p.Snapshot().FPS; !approx(fps, 10, 1e-6) {
		t.Errorf("FPS = %v, want the last snapshot kept across Reset", fps)
	}

	// The next interval must reflect only post-reset frames: neither the
	// pause nor a 10s phantom worst frame may bleed in.
	var refreshed bool
	for i := 0; i < 10; i++ {
		c.advance(100 * time.Millisecond)
		if p.Tick() {
			refreshed = true
		}
	}
	if !refreshed {
		t.Fatal("expected an interval to complete after reset")
	}
	snap := p.Snapshot()
	if !approx(snap.FPS, 10, 1e-6) {
		t.Errorf("FPS = %v, want 10 after reset", snap.FPS)
	}
	if !approx(snap.WorstFrameMs, 100, 1e-6) {
		t.Errorf("WorstFrameMs = %v, want 100 after reset", snap.WorstFrameMs)
	}
}
