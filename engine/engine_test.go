package engine

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/Carmen-Shannon/tessera-go/engine/orchestrator"
	"github.com/Carmen-Shannon/tessera-go/engine/profile"
	"github.com/Carmen-Shannon/tessera-go/engine/renderer"
	"github.com/Carmen-Shannon/tessera-go/engine/renderer/binding"
	"github.com/Carmen-Shannon/tessera-go/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/tessera-go/engine/sensor"
	"github.com/Carmen-Shannon/tessera-go/engine/sequence"
	"github.com/Carmen-Shannon/tessera-go/engine/window"
	"github.com/cogentcore/webgpu/wgpu"
)

// stubWindow satisfies window.Window without a platform window, so the tick
// pipeline can run headless.
type stubWindow struct {
	width, height int
	scale         float64
	running       bool
	visible       bool
	closed        bool

	onResize     func(width, height int)
	onCursor     func(x, y float64)
	onScroll     func(dx, dy float64)
	onButton     func(pressed bool)
	onKeyDown    func(keyCode uint32)
	onKeyUp      func(keyCode uint32)
	onVisibility func(visible bool)
}

var _ window.Window = &stubWindow{}

func newStubWindow(width, height int, scale float64) *stubWindow {
	return &stubWindow{width: width, height: height, scale: scale, running: true, visible: true}
}

func (w *stubWindow) SetUpdateCallback(func()) {}

func (w *stubWindow) SetResizeCallback(callback func(width, height int)) {
	w.onResize = callback
}

func (w *stubWindow) SetCursorCallback(callback func(x, y float64)) {
	w.onCursor = callback
}

func (w *stubWindow) SetScrollCallback(callback func(dx, dy float64)) {
	w.onScroll = callback
}

func (w *stubWindow) SetPointerButtonCallback(callback func(pressed bool)) {
	w.onButton = callback
}

func (w *stubWindow) SetKeyDownCallback(callback func(keyCode uint32)) {
	w.onKeyDown = callback
}

func (w *stubWindow) SetKeyUpCallback(callback func(keyCode uint32)) {
	w.onKeyUp = callback
}

func (w *stubWindow) SetVisibilityCallback(callback func(visible bool)) {
	w.onVisibility = callback
}

func (w *stubWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	return nil
}

func (w *stubWindow) ContentScale() float64 {
	return w.scale
}

func (w *stubWindow) IsRunning() bool {
	return w.running
}

func (w *stubWindow) Visible() bool {
	return w.visible
}

func (w *stubWindow) Close() error {
	w.closed = true
	w.running = false
	return nil
}

func (w *stubWindow) ProcessMessages() {}

func (w *stubWindow) Width() int {
	return w.width
}

func (w *stubWindow) Height() int {
	return w.height
}

// stubRenderer records frame calls in order so tests can assert the
// begin/draw/end/present contract without a GPU.
type stubRenderer struct {
	beginErr error

	calls    []string
	resizes  [][2]int
	released bool
}

var _ renderer.Renderer = &stubRenderer{}

func (r *stubRenderer) Pipeline(string) pipeline.Pipeline {
	return nil
}

func (r *stubRenderer) Pipelines() map[string]pipeline.Pipeline {
	return nil
}

func (r *stubRenderer) RegisterPipelines(...pipeline.Pipeline) error {
	return nil
}

func (r *stubRenderer) Resize(width, height int) error {
	r.resizes = append(r.resizes, [2]int{width, height})
	return nil
}

func (r *stubRenderer) Size() (int, int) {
	if len(r.resizes) == 0 {
		return 0, 0
	}
	last := r.resizes[len(r.resizes)-1]
	return last[0], last[1]
}

func (r *stubRenderer) SetPresentMode(renderer.PresentMode) {}

func (r *stubRenderer) SetClearColor(wgpu.Color) {}

func (r *stubRenderer) InitBindGroup(binding.Provider, wgpu.BindGroupLayoutDescriptor) error {
	return nil
}

func (r *stubRenderer) WriteBuffers([]binding.BufferWrite) {}

func (r *stubRenderer) BeginFrame() error {
	if r.beginErr != nil {
		r.calls = append(r.calls, "begin_err")
		return r.beginErr
	}
	r.calls = append(r.calls, "begin")
	return nil
}

func (r *stubRenderer) Draw(string, uint32, []binding.Provider) error {
	r.calls = append(r.calls, "draw")
	return nil
}

func (r *stubRenderer) EndFrame() {
	r.calls = append(r.calls, "end")
}

func (r *stubRenderer) Present() {
	r.calls = append(r.calls, "present")
}

func (r *stubRenderer) Release() {
	r.released = true
}

// addStubSurface installs a headless surface directly into the pool, wired
// the same way CreateSurface wires a real one.
func addStubSurface(t *testing.T, e *engine, id string, win *stubWindow, r *stubRenderer) *renderSurface {
	t.Helper()
	s := &renderSurface{
		id:       id,
		window:   win,
		renderer: r,
		logical:  [2]int{win.width, win.height},
		ratioCap: defaultPixelRatioCap,
		active:   true,
	}
	s.setBacking(cappedFromPhysical(win.width, win.height, win.scale, s.ratioCap))
	e.wireSurfaceInput(s)
	e.mu.Lock()
	e.surfaces[id] = s
	e.mu.Unlock()
	return s
}

func newTestOrchestrator(t *testing.T) *orchestrator.Orchestrator {
	t.Helper()
	o, err := orchestrator.New(profile.NewLibrary())
	if err != nil {
		t.Fatalf("orchestrator.New: %v", err)
	}
	return o
}

func TestNewEngineDefaults(t *testing.T) {
	e := NewEngine().(*engine)

	if e.engineTickRate != time.Second/60 {
		t.Errorf("engineTickRate = %v, want %v", e.engineTickRate, time.Second/60)
	}
	if e.targetFPS != 60 {
		t.Errorf("targetFPS = %v, want 60", e.targetFPS)
	}
	if e.quality != 1 {
		t.Errorf("quality = %v, want 1", e.quality)
	}
	if e.clickImpulse != 1 {
		t.Errorf("clickImpulse = %v, want 1", e.clickImpulse)
	}
	if e.reducedMotion {
		t.Error("reducedMotion = true, want false")
	}
	if len(e.surfaces) != 0 {
		t.Errorf("surfaces = %d entries, want empty", len(e.surfaces))
	}
}

func TestWithTickRateFractional(t *testing.T) {
	tests := []struct {
		name string
		fps  float64
		want time.Duration
	}{
		{"sub-hertz", 0.5, 2 * time.Second},
		{"high refresh", 144, time.Duration(float64(time.Second) / 144)},
		{"zero falls back", 0, time.Second / 60},
		{"negative falls back", -5, time.Second / 60},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEngine(WithTickRate(tt.fps)).(*engine)
			if e.engineTickRate != tt.want {
				t.Errorf("engineTickRate = %v, want %v", e.engineTickRate, tt.want)
			}
		})
	}
}

func TestSetTickRateWhileRunning(t *testing.T) {
	e := NewEngine().(*engine)
	e.mu.Lock()
	e.running = true
	e.mu.Unlock()

	// Two updates without a consumer: the second must replace the pending
	// value instead of blocking.
	e.SetTickRate(120)
	e.SetTickRate(30)

	select {
	case d := <-e.tickRateChannel:
		if want := time.Duration(float64(time.Second) / 30); d != want {
			t.Errorf("pending tick rate = %v, want %v", d, want)
		}
	default:
		t.Fatal("expected a pending tick rate update")
	}
	if e.targetFPS != 30 {
		t.Errorf("targetFPS = %v, want 30", e.targetFPS)
	}
}

func TestSetTickRateStopped(t *testing.T) {
	e := NewEngine().(*engine)
	e.SetTickRate(30)

	if want := time.Duration(float64(time.Second) / 30); e.engineTickRate != want {
		t.Errorf("engineTickRate = %v, want %v", e.engineTickRate, want)
	}
	select {
	case <-e.tickRateChannel:
		t.Error("tick rate channel should stay empty while stopped")
	default:
	}
}

func TestSetTickRateNonPositive(t *testing.T) {
	e := NewEngine().(*engine)
	e.SetTickRate(-10)
	if e.targetFPS != 60 {
		t.Errorf("targetFPS = %v, want the 60 default", e.targetFPS)
	}
}

func TestRegisterRendererValidation(t *testing.T) {
	e := NewEngine().(*engine)
	addStubSurface(t, e, "bg", newStubWindow(800, 600, 1), &stubRenderer{})

	if e.RegisterRenderer("bg", nil, 0) {
		t.Error("nil callback registered, want rejection")
	}
	if e.RegisterRenderer("missing", func(FrameInput) {}, 0) {
		t.Error("unknown surface accepted a callback")
	}
	if !e.RegisterRenderer("bg", func(FrameInput) {}, 0) {
		t.Error("valid registration rejected")
	}
}

func TestStepRendersActiveSurfaces(t *testing.T) {
	e := NewEngine().(*engine)
	r := &stubRenderer{}
	addStubSurface(t, e, "bg", newStubWindow(800, 600, 1), r)

	var frames []FrameInput
	e.RegisterRenderer("bg", func(f FrameInput) {
		frames = append(frames, f)
	}, 0)

	const dt = 1.0 / 60
	e.step(dt)

	if len(frames) != 1 {
		t.Fatalf("callback ran %d times, want 1", len(frames))
	}
	f := frames[0]
	if f.Viewport != [2]int{800, 600} {
		t.Errorf("Viewport = %v, want [800 600]", f.Viewport)
	}
	if f.DeltaTime != dt {
		t.Errorf("DeltaTime = %v, want %v", f.DeltaTime, dt)
	}
	if f.Timestamp != dt {
		t.Errorf("Timestamp = %v, want %v after one tick", f.Timestamp, dt)
	}
	if f.Quality != 1 {
		t.Errorf("Quality = %v, want 1", f.Quality)
	}

	want := []string{"begin", "end", "present"}
	if len(r.calls) != len(want) {
		t.Fatalf("renderer calls = %v, want %v", r.calls, want)
	}
	for i, c := range want {
		if r.calls[i] != c {
			t.Fatalf("renderer calls = %v, want %v", r.calls, want)
		}
	}

	e.step(dt)
	if got := frames[len(frames)-1].Timestamp; math.Abs(got-2*dt) > 1e-12 {
		t.Errorf("Timestamp = %v after two ticks, want %v", got, 2*dt)
	}
}

func TestStepSkipsInactiveAndClosedSurfaces(t *testing.T) {
	e := NewEngine().(*engine)

	inactive := &stubRenderer{}
	s := addStubSurface(t, e, "inactive", newStubWindow(100, 100, 1), inactive)
	s.SetActive(false)

	closed := &stubRenderer{}
	win := newStubWindow(100, 100, 1)
	win.running = false
	addStubSurface(t, e, "closed", win, closed)

	live := &stubRenderer{}
	addStubSurface(t, e, "live", newStubWindow(100, 100, 1), live)

	e.step(1.0 / 60)

	if len(inactive.calls) != 0 {
		t.Errorf("inactive surface rendered: %v", inactive.calls)
	}
	if len(closed.calls) != 0 {
		t.Errorf("closed surface rendered: %v", closed.calls)
	}
	if len(live.calls) == 0 {
		t.Error("live surface did not render")
	}
}

func TestStepBeginFrameFailureSkipsSurface(t *testing.T) {
	e := NewEngine().(*engine)
	r := &stubRenderer{beginErr: errors.New("surface lost")}
	addStubSurface(t, e, "bg", newStubWindow(100, 100, 1), r)

	ran := false
	e.RegisterRenderer("bg", func(FrameInput) { ran = true }, 0)

	e.step(1.0 / 60)

	if ran {
		t.Error("callback ran despite BeginFrame failure")
	}
	for _, c := range r.calls {
		if c == "end" || c == "present" {
			t.Fatalf("frame submitted after BeginFrame failure: %v", r.calls)
		}
	}
}

func TestStepContainsCallbackPanic(t *testing.T) {
	e := NewEngine().(*engine)
	r := &stubRenderer{}
	addStubSurface(t, e, "bg", newStubWindow(100, 100, 1), r)

	ran := false
	e.RegisterRenderer("bg", func(FrameInput) { panic("shader blew up") }, 0)
	e.RegisterRenderer("bg", func(FrameInput) { ran = true }, 1)

	e.step(1.0 / 60)

	if !ran {
		t.Error("second callback skipped after first panicked")
	}
	if last := r.calls[len(r.calls)-1]; last != "present" {
		t.Errorf("frame not presented after contained panic: %v", r.calls)
	}
}

func TestCallbackPriorityOrder(t *testing.T) {
	e := NewEngine().(*engine)
	addStubSurface(t, e, "bg", newStubWindow(100, 100, 1), &stubRenderer{})

	var order []string
	e.RegisterRenderer("bg", func(FrameInput) { order = append(order, "overlay") }, 10)
	e.RegisterRenderer("bg", func(FrameInput) { order = append(order, "base") }, 0)
	e.RegisterRenderer("bg", func(FrameInput) { order = append(order, "debug") }, 10)

	e.step(1.0 / 60)

	want := []string{"base", "overlay", "debug"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v (equal priorities keep registration order)", order, want)
		}
	}
}

func TestStepFlushesSensorInput(t *testing.T) {
	e := NewEngine(WithAggregator(sensor.New())).(*engine)
	win := newStubWindow(800, 600, 1)
	addStubSurface(t, e, "bg", win, &stubRenderer{})

	var last FrameInput
	e.RegisterRenderer("bg", func(f FrameInput) { last = f }, 0)

	win.onCursor(0.25, 0.75)
	e.step(1.0 / 60)

	if last.Pointer != [2]float64{0.25, 0.75} {
		t.Errorf("Pointer = %v, want the first sample snapped to [0.25 0.75]", last.Pointer)
	}

	win.onScroll(0, 3)
	for i := 0; i < 10; i++ {
		e.step(1.0 / 60)
	}
	if last.ScrollProgress <= 0 {
		t.Errorf("ScrollProgress = %v after wheel input, want > 0", last.ScrollProgress)
	}
}

func TestPointerPressSendsImpulse(t *testing.T) {
	orch := newTestOrchestrator(t)
	e := NewEngine(WithOrchestrator(orch)).(*engine)
	win := newStubWindow(800, 600, 1)
	addStubSurface(t, e, "bg", win, &stubRenderer{})

	win.onButton(true)
	if got := orch.TakeImpulse(); got != 1 {
		t.Errorf("impulse = %v, want 1 after press", got)
	}

	win.onButton(false)
	if got := orch.TakeImpulse(); got != 0 {
		t.Errorf("impulse = %v, want 0 after release only", got)
	}
}

func TestWithClickImpulseStrength(t *testing.T) {
	orch := newTestOrchestrator(t)
	e := NewEngine(WithOrchestrator(orch), WithClickImpulse(0.5)).(*engine)
	win := newStubWindow(800, 600, 1)
	addStubSurface(t, e, "bg", win, &stubRenderer{})

	win.onButton(true)
	if got := orch.TakeImpulse(); got != 0.5 {
		t.Errorf("impulse = %v, want 0.5", got)
	}

	if e2 := NewEngine(WithClickImpulse(-1)).(*engine); e2.clickImpulse != 1 {
		t.Errorf("clickImpulse = %v, want negative strengths ignored", e2.clickImpulse)
	}
}

func TestKeyEventsReachKeyCallback(t *testing.T) {
	e := NewEngine().(*engine)
	win := newStubWindow(800, 600, 1)
	addStubSurface(t, e, "bg", win, &stubRenderer{})

	type keyEvent struct {
		code    uint32
		pressed bool
	}
	var events []keyEvent
	e.SetKeyCallback(func(keyCode uint32, pressed bool) {
		events = append(events, keyEvent{keyCode, pressed})
	})

	win.onKeyDown(82)
	win.onKeyUp(82)

	want := []keyEvent{{82, true}, {82, false}}
	if len(events) != len(want) {
		t.Fatalf("events = %v, want %v", events, want)
	}
	for i := range want {
		if events[i] != want[i] {
			t.Fatalf("events = %v, want %v", events, want)
		}
	}

	e.SetKeyCallback(nil)
	win.onKeyDown(82)
	if len(events) != 2 {
		t.Error("events delivered after callback cleared")
	}
}

func TestSetReducedMotionCancelsSequence(t *testing.T) {
	orch := newTestOrchestrator(t)
	seq, err := sequence.New(orch)
	if err != nil {
		t.Fatalf("sequence.New: %v", err)
	}
	e := NewEngine(WithOrchestrator(orch), WithSequencer(seq))

	if err := seq.Trigger("card-1", "focus", sequence.ModeLock); err != nil {
		t.Fatalf("Trigger: %v", err)
	}
	if seq.State() != sequence.StateLocked {
		t.Fatalf("State = %v, want locked before reduced motion", seq.State())
	}

	e.SetReducedMotion(true)

	if !e.ReducedMotion() {
		t.Error("ReducedMotion = false after enabling")
	}
	if !orch.ReducedMotion() {
		t.Error("orchestrator did not receive the reduced motion flag")
	}
	if seq.State() != sequence.StateIdle {
		t.Errorf("State = %v, want idle after reduced motion cancels the lock", seq.State())
	}

	e.SetReducedMotion(false)
	if orch.ReducedMotion() {
		t.Error("orchestrator still reduced after disabling")
	}
}

func TestWithReducedMotionPropagates(t *testing.T) {
	orch := newTestOrchestrator(t)
	e := NewEngine(WithOrchestrator(orch), WithReducedMotion())

	if !e.ReducedMotion() {
		t.Error("ReducedMotion = false, want the builder option applied")
	}
	if !orch.ReducedMotion() {
		t.Error("orchestrator not in reduced motion after construction")
	}
}

func TestAdjustQualitySteps(t *testing.T) {
	tests := []struct {
		name  string
		start float64
		fps   float64
		want  float64
	}{
		{"low fps sheds density", 1.0, 25, 0.9},
		{"floor holds", 0.5, 10, 0.5},
		{"high fps recovers slowly", 0.8, 58, 0.85},
		{"ceiling holds", 1.0, 60, 1.0},
		{"mid band unchanged", 0.8, 45, 0.8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEngine().(*engine)
			e.quality = tt.start
			e.adjustQuality(tt.fps)
			if got := e.Quality(); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("quality = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWithQualityClamps(t *testing.T) {
	if e := NewEngine(WithQuality(2)).(*engine); e.quality != 1 {
		t.Errorf("quality = %v, want clamped to 1", e.quality)
	}
	if e := NewEngine(WithQuality(0.1)).(*engine); e.quality != 0.5 {
		t.Errorf("quality = %v, want clamped to 0.5", e.quality)
	}
}

func TestDestroySurfaceImmediateWhenStopped(t *testing.T) {
	e := NewEngine().(*engine)
	win := newStubWindow(100, 100, 1)
	r := &stubRenderer{}
	addStubSurface(t, e, "bg", win, r)

	if !e.DestroySurface("bg") {
		t.Fatal("DestroySurface returned false for a pooled surface")
	}
	if !r.released {
		t.Error("renderer not released")
	}
	if !win.closed {
		t.Error("window not closed")
	}
	if e.Surface("bg") != nil {
		t.Error("surface still resolvable after destroy")
	}
	if e.DestroySurface("bg") {
		t.Error("second destroy returned true")
	}
}

func TestDestroySurfaceDeferredWhenStarted(t *testing.T) {
	e := NewEngine().(*engine)
	win := newStubWindow(100, 100, 1)
	r := &stubRenderer{}
	addStubSurface(t, e, "bg", win, r)

	e.mu.Lock()
	e.started = true
	e.mu.Unlock()

	if !e.DestroySurface("bg") {
		t.Fatal("DestroySurface returned false")
	}
	if r.released || win.closed {
		t.Fatal("resources released synchronously while running")
	}

	// The tick goroutine releases the renderer between frames.
	e.drainRetired()
	if !r.released {
		t.Error("renderer not released by drainRetired")
	}
	if win.closed {
		t.Error("window closed off the main thread path")
	}

	// The main-thread pump destroys the window.
	e.drainDeadWindows()
	if !win.closed {
		t.Error("window not closed by drainDeadWindows")
	}
}

func TestDestroySurfaceUnknown(t *testing.T) {
	e := NewEngine()
	if e.DestroySurface("missing") {
		t.Error("DestroySurface returned true for an unknown id")
	}
}

func TestCreateSurfaceEmptyID(t *testing.T) {
	e := NewEngine()
	if _, err := e.CreateSurface("", SurfaceConfig{}); err == nil {
		t.Error("expected an error for an empty id")
	}
}

func TestCreateSurfaceDuplicate(t *testing.T) {
	e := NewEngine().(*engine)
	addStubSurface(t, e, "bg", newStubWindow(100, 100, 1), &stubRenderer{})

	_, err := e.CreateSurface("bg", SurfaceConfig{})
	var dup *DuplicateSurfaceError
	if !errors.As(err, &dup) {
		t.Fatalf("error = %v, want a DuplicateSurfaceError", err)
	}
	if dup.ID != "bg" {
		t.Errorf("duplicate id = %q, want %q", dup.ID, "bg")
	}
}

func TestCappedBackingMath(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		scale, cap    float64
		want          [2]int
	}{
		{"cap below device ratio", 3000, 2000, 3, 2, [2]int{2000, 1333}},
		{"ratio within cap", 800, 600, 1, 2, [2]int{800, 600}},
		{"zero scale treated as one", 800, 600, 0, 2, [2]int{800, 600}},
		{"never below one pixel", 1, 1, 4, 2, [2]int{1, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cappedFromPhysical(tt.width, tt.height, tt.scale, tt.cap)
			if got != tt.want {
				t.Errorf("cappedFromPhysical = %v, want %v", got, tt.want)
			}
		})
	}

	logical := []struct {
		name          string
		width, height int
		scale, cap    float64
		want          [2]int
	}{
		{"full ratio applied", 800, 600, 2, 2, [2]int{1600, 1200}},
		{"ratio capped", 800, 600, 3, 2, [2]int{1600, 1200}},
		{"fractional ratio", 800, 600, 1.5, 2, [2]int{1200, 900}},
	}
	for _, tt := range logical {
		t.Run(tt.name, func(t *testing.T) {
			got := cappedFromLogical(tt.width, tt.height, tt.scale, tt.cap)
			if got != tt.want {
				t.Errorf("cappedFromLogical = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestResizeSurfaceUpdatesBacking(t *testing.T) {
	e := NewEngine().(*engine)
	win := newStubWindow(800, 600, 2)
	r := &stubRenderer{}
	s := addStubSurface(t, e, "bg", win, r)

	if err := e.ResizeSurface("bg", 400, 300); err != nil {
		t.Fatalf("ResizeSurface: %v", err)
	}
	if got := s.backingSize(); got != [2]int{800, 600} {
		t.Errorf("backing = %v, want [800 600] at device ratio 2", got)
	}
	if len(r.resizes) == 0 || r.resizes[len(r.resizes)-1] != [2]int{800, 600} {
		t.Errorf("renderer resizes = %v, want a final [800 600]", r.resizes)
	}

	if err := e.ResizeSurface("bg", 0, 300); err == nil {
		t.Error("expected an error for a non-positive size")
	}
	if err := e.ResizeSurface("missing", 400, 300); err == nil {
		t.Error("expected an error for an unknown surface")
	}
}

func TestAllSurfacesHidden(t *testing.T) {
	e := NewEngine().(*engine)
	if !e.allSurfacesHidden() {
		t.Error("empty pool should count as hidden")
	}

	win := newStubWindow(100, 100, 1)
	addStubSurface(t, e, "bg", win, &stubRenderer{})
	if e.allSurfacesHidden() {
		t.Error("visible surface reported hidden")
	}

	win.visible = false
	if !e.allSurfacesHidden() {
		t.Error("iconified surface not reported hidden")
	}
}

func TestSurfacesReturnsCopy(t *testing.T) {
	e := NewEngine().(*engine)
	addStubSurface(t, e, "bg", newStubWindow(100, 100, 1), &stubRenderer{})

	m := e.Surfaces()
	delete(m, "bg")
	if e.Surface("bg") == nil {
		t.Error("mutating the returned map changed the pool")
	}
}

func TestQuitBeforeRunReleasesPool(t *testing.T) {
	e := NewEngine().(*engine)
	win := newStubWindow(100, 100, 1)
	r := &stubRenderer{}
	addStubSurface(t, e, "bg", win, r)

	e.Quit()
	e.Quit() // idempotent

	if e.isRunning() {
		t.Error("isRunning = true after Quit")
	}
	if !r.released || !win.closed {
		t.Error("pool not released by Quit before Run")
	}
}
