package engine

import (
	"fmt"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/Carmen-Shannon/tessera-go/common"
	"github.com/Carmen-Shannon/tessera-go/engine/field"
	"github.com/Carmen-Shannon/tessera-go/engine/orchestrator"
	"github.com/Carmen-Shannon/tessera-go/engine/profiler"
	"github.com/Carmen-Shannon/tessera-go/engine/renderer"
	"github.com/Carmen-Shannon/tessera-go/engine/sensor"
	"github.com/Carmen-Shannon/tessera-go/engine/sequence"
	"github.com/Carmen-Shannon/tessera-go/engine/window"
)

// FrameInput is the per-tick snapshot handed to every render callback.
type FrameInput = renderer.FrameInput

// RenderCallback is invoked once per tick for each active surface it is
// registered on. Callbacks run on the tick goroutine between BeginFrame and
// EndFrame of their surface, in ascending priority order.
type RenderCallback func(frame FrameInput)

const (
	defaultTickRate      = 60.0
	defaultSurfaceWidth  = 1280
	defaultSurfaceHeight = 720
	defaultSurfaceTitle  = "tessera"
	defaultPixelRatioCap = 2.0

	// defaultClickImpulse is the flash strength fed to the orchestrator on a
	// pointer button press. The orchestrator clamps whatever it receives.
	defaultClickImpulse = 1.0

	// Adaptive quality: measured once per profiler interval, stepped down
	// fast and up slowly, and bounded so the field never drops below half
	// density nor renders beyond full.
	qualityMin      = 0.5
	qualityMax      = 1.0
	qualityStepDown = 0.1
	qualityStepUp   = 0.05
	lowFPSThreshold = 30.0
	highFPSFraction = 0.95
)

// engine is the implementation of the Engine interface.
// Coordinates the tick pipeline, the surface pool, and the window thread.
type engine struct {
	mu sync.Mutex

	tickRateChannel chan time.Duration // Channel for dynamic tick rate updates

	running bool
	started bool
	wg      sync.WaitGroup

	quitChannel chan struct{}
	quitOnce    sync.Once // Ensures quitChannel is only closed once

	surfaces map[string]*renderSurface

	// retired holds surfaces removed from the pool whose GPU resources are
	// released on the tick goroutine between frames; their windows then move
	// to deadWindows for destruction on the main thread.
	retired     []*renderSurface
	deadWindows []window.Window

	aggregator *sensor.Aggregator
	orch       *orchestrator.Orchestrator
	sequencer  *sequence.Sequencer

	profiler *profiler.Profiler

	engineTickRate time.Duration
	targetFPS      float64

	clock        float64
	quality      float64
	clickImpulse float64

	reducedMotion bool

	keyCallback func(keyCode uint32, pressed bool)
}

// Engine drives the reactive background: it owns the pool of window-backed
// render surfaces, ticks the input/orchestration/render pipeline at a fixed
// rate on one goroutine, and adapts render quality to the measured frame
// rate. The sensor aggregator, orchestrator, and sequencer are constructed
// by the caller and injected through builder options; the engine runs
// whichever stages it was given.
type Engine interface {
	// CreateSurface creates a window-backed render surface and adds it to
	// the pool. Must be called from the main thread before Run. On failure
	// nothing is added to the pool.
	//
	// Parameters:
	//   - id: the unique pool identifier for the surface
	//   - cfg: the surface configuration
	//
	// Returns:
	//   - Surface: the created surface
	//   - error: a DuplicateSurfaceError if the id is taken, or an error
	//     wrapping ErrContextUnavailable if no window or GPU context could
	//     be obtained
	CreateSurface(id string, cfg SurfaceConfig) (Surface, error)

	// DestroySurface removes a surface from the pool. Its callbacks are
	// never invoked again; resources are released as the engine unwinds the
	// frame in flight.
	//
	// Parameters:
	//   - id: the surface id to remove
	//
	// Returns:
	//   - bool: true if the surface existed
	DestroySurface(id string) bool

	// Surface retrieves a surface from the pool.
	//
	// Parameters:
	//   - id: the surface id to retrieve
	//
	// Returns:
	//   - Surface: the surface, or nil if not found
	Surface(id string) Surface

	// Surfaces returns a copy of the surface pool keyed by id.
	//
	// Returns:
	//   - map[string]Surface: a copy of the pool
	Surfaces() map[string]Surface

	// RegisterRenderer adds a render callback to a surface. Callbacks run
	// each tick in ascending priority order; equal priorities keep
	// registration order.
	//
	// Parameters:
	//   - id: the surface id to register on
	//   - callback: the render callback
	//   - priority: the ordering key (lower runs first)
	//
	// Returns:
	//   - bool: true if registered, false if the surface is unknown or the
	//     callback is nil
	RegisterRenderer(id string, callback RenderCallback, priority int) bool

	// ResizeSurface recomputes a surface's backing store for a new logical
	// size, applying the device pixel ratio capped at the surface's
	// configured maximum.
	//
	// Parameters:
	//   - id: the surface id to resize
	//   - width: the new logical width
	//   - height: the new logical height
	//
	// Returns:
	//   - error: an error if the surface is unknown, the size is not
	//     positive, or the GPU surface could not be reconfigured
	ResizeSurface(id string, width, height int) error

	// SetTickRate sets the engine tick rate in ticks per second.
	// The pipeline and render callbacks run at this rate.
	//
	// Parameters:
	//   - fps: target ticks per second (defaults to 60 if <= 0)
	SetTickRate(fps float64)

	// SetReducedMotion toggles the calm mode: any active choreography
	// sequence is cancelled and the orchestrator pins its speed multipliers
	// at the profile baseline until re-enabled.
	//
	// Parameters:
	//   - enabled: true to reduce motion, false to restore reactivity
	SetReducedMotion(enabled bool)

	// ReducedMotion reports whether the calm mode is active.
	//
	// Returns:
	//   - bool: true if reduced motion is enabled
	ReducedMotion() bool

	// Quality returns the adaptive render quality scalar in [0.5, 1]. The
	// value is handed to callbacks through FrameInput and scales the field
	// evaluation density.
	//
	// Returns:
	//   - float64: the current quality
	Quality() float64

	// SetKeyCallback registers a callback for key events from every surface
	// window. Useful for host-level toggles such as reduced motion.
	//
	// Parameters:
	//   - callback: function receiving the key code and pressed state, or
	//     nil to disable
	SetKeyCallback(callback func(keyCode uint32, pressed bool))

	// Run starts the tick pipeline and blocks pumping window events until
	// Quit is called or every surface window closes. Must be called from
	// the main thread. Surface resources are released before Run returns.
	Run()

	// Quit signals the engine to stop. Safe to call multiple times and from
	// any goroutine, including render callbacks; subsequent calls are
	// no-ops.
	Quit()
}

// NewEngine creates a new Engine instance with the provided options.
// The pipeline stages (aggregator, orchestrator, sequencer) default to nil
// and are skipped unless injected; rendering and quality adaptation work
// either way.
//
// Parameters:
//   - options: functional options for engine configuration
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		tickRateChannel: make(chan time.Duration, 1),
		quitChannel:     make(chan struct{}),
		surfaces:        make(map[string]*renderSurface),
		profiler:        profiler.NewProfiler(),
		engineTickRate:  time.Second / 60,
		targetFPS:       defaultTickRate,
		quality:         qualityMax,
		clickImpulse:    defaultClickImpulse,
	}

	for _, opt := range options {
		opt(e)
	}

	if e.reducedMotion && e.orch != nil {
		e.orch.SetReducedMotion(true)
	}

	return e
}

func (e *engine) CreateSurface(id string, cfg SurfaceConfig) (Surface, error) {
	if id == "" {
		return nil, fmt.Errorf("create surface: empty id")
	}

	e.mu.Lock()
	if _, exists := e.surfaces[id]; exists {
		e.mu.Unlock()
		return nil, &DuplicateSurfaceError{ID: id}
	}
	e.mu.Unlock()

	width, height := cfg.Width, cfg.Height
	if width <= 0 {
		width = defaultSurfaceWidth
	}
	if height <= 0 {
		height = defaultSurfaceHeight
	}
	title := common.Coalesce(cfg.Title, defaultSurfaceTitle)
	ratioCap := cfg.PixelRatioCap
	if ratioCap <= 0 {
		ratioCap = defaultPixelRatioCap
	}

	winOpts := []window.WindowBuilderOption{
		window.WithTitle(title),
		window.WithWidth(width),
		window.WithHeight(height),
	}
	if cfg.Alpha {
		winOpts = append(winOpts, window.WithTransparentFramebuffer())
	}
	win, err := window.NewWindow(winOpts...)
	if err != nil {
		return nil, fmt.Errorf("surface %q: %w: %v", id, ErrContextUnavailable, err)
	}

	rOpts := []renderer.RendererBuilderOption{
		renderer.WithPowerPreference(cfg.PowerPreference),
	}
	if cfg.Antialias {
		rOpts = append(rOpts, renderer.WithMSAA(renderer.MSAA4x))
	}
	if cfg.Alpha {
		rOpts = append(rOpts, renderer.WithClearColor(transparentClear))
	}
	r, err := renderer.NewRenderer(renderer.BackendTypeWGPU, win, rOpts...)
	if err != nil {
		_ = win.Close()
		return nil, fmt.Errorf("surface %q: %w: %v", id, ErrContextUnavailable, err)
	}

	s := &renderSurface{
		id:       id,
		window:   win,
		renderer: r,
		logical:  [2]int{width, height},
		ratioCap: ratioCap,
		active:   true,
	}
	backing := s.setBacking(cappedFromPhysical(win.Width(), win.Height(), win.ContentScale(), ratioCap))
	if err := r.Resize(backing[0], backing[1]); err != nil {
		r.Release()
		_ = win.Close()
		return nil, fmt.Errorf("surface %q: %w: %v", id, ErrContextUnavailable, err)
	}

	e.wireSurfaceInput(s)

	e.mu.Lock()
	if _, exists := e.surfaces[id]; exists {
		e.mu.Unlock()
		r.Release()
		_ = win.Close()
		return nil, &DuplicateSurfaceError{ID: id}
	}
	e.surfaces[id] = s
	e.mu.Unlock()

	common.Logger().Info("surface created",
		"surface", id,
		"backing_width", backing[0],
		"backing_height", backing[1],
		"pixel_ratio_cap", ratioCap,
	)
	return s, nil
}

// wireSurfaceInput routes the surface window's events into the injected
// pipeline stages. Events arrive on the platform thread; every sink either
// hands off through its own synchronization or is a bounded store.
func (e *engine) wireSurfaceInput(s *renderSurface) {
	win := s.window

	win.SetResizeCallback(func(width, height int) {
		size := s.setBacking(cappedFromPhysical(width, height, win.ContentScale(), s.ratioCap))
		if err := s.renderer.Resize(size[0], size[1]); err != nil {
			common.Logger().Warn("surface resize failed", "surface", s.id, "error", err)
		}
	})

	if e.aggregator != nil {
		win.SetCursorCallback(func(x, y float64) {
			e.aggregator.IngestPointer(x, y)
		})
		win.SetScrollCallback(func(dx, dy float64) {
			e.aggregator.IngestWheel(dx, dy)
		})
	}

	if e.orch != nil {
		impulse := e.clickImpulse
		win.SetPointerButtonCallback(func(pressed bool) {
			if !pressed {
				return
			}
			strength := impulse
			e.orch.ApplyPatch(field.Patch{Impulse: &strength})
		})
	}

	win.SetKeyDownCallback(func(keyCode uint32) {
		e.dispatchKey(keyCode, true)
	})
	win.SetKeyUpCallback(func(keyCode uint32) {
		e.dispatchKey(keyCode, false)
	})

	win.SetVisibilityCallback(func(visible bool) {
		common.Logger().Debug("surface visibility changed", "surface", s.id, "visible", visible)
	})
}

func (e *engine) DestroySurface(id string) bool {
	e.mu.Lock()
	s, ok := e.surfaces[id]
	if ok {
		delete(e.surfaces, id)
	}
	started := e.started
	if ok && started {
		e.retired = append(e.retired, s)
	}
	e.mu.Unlock()

	if !ok {
		return false
	}
	s.SetActive(false)
	if !started {
		// No goroutines running: release directly on the caller's thread.
		s.renderer.Release()
		_ = s.window.Close()
	}
	common.Logger().Info("surface destroyed", "surface", id)
	return true
}

func (e *engine) Surface(id string) Surface {
	e.mu.Lock()
	defer e.mu.Unlock()
	if s, ok := e.surfaces[id]; ok {
		return s
	}
	return nil
}

func (e *engine) Surfaces() map[string]Surface {
	e.mu.Lock()
	defer e.mu.Unlock()
	cp := make(map[string]Surface, len(e.surfaces))
	for k, v := range e.surfaces {
		cp[k] = v
	}
	return cp
}

func (e *engine) RegisterRenderer(id string, callback RenderCallback, priority int) bool {
	if callback == nil {
		return false
	}
	e.mu.Lock()
	s, ok := e.surfaces[id]
	e.mu.Unlock()
	if !ok {
		return false
	}
	s.addCallback(callback, priority)
	return true
}

func (e *engine) ResizeSurface(id string, width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("resize surface %q: invalid size %dx%d", id, width, height)
	}
	e.mu.Lock()
	s, ok := e.surfaces[id]
	e.mu.Unlock()
	if !ok {
		return fmt.Errorf("resize surface %q: unknown surface", id)
	}

	s.setLogical(width, height)
	size := s.setBacking(cappedFromLogical(width, height, s.window.ContentScale(), s.ratioCap))
	if err := s.renderer.Resize(size[0], size[1]); err != nil {
		return fmt.Errorf("resize surface %q: %w", id, err)
	}
	return nil
}

// SetTickRate sets the engine tick rate in ticks per second.
// If the engine is running, the change takes effect immediately.
func (e *engine) SetTickRate(fps float64) {
	if fps <= 0 {
		fps = defaultTickRate
	}
	newRate := time.Duration(float64(time.Second) / fps)

	e.mu.Lock()
	e.targetFPS = fps
	running := e.running
	if !running {
		e.engineTickRate = newRate
	}
	e.mu.Unlock()

	if running {
		// Send to channel for immediate update in the running tick loop.
		// Non-blocking send - if channel is full, replace the pending value.
		select {
		case e.tickRateChannel <- newRate:
		default:
			// Channel has a pending update, drain and send new value
			select {
			case <-e.tickRateChannel:
			default:
			}
			e.tickRateChannel <- newRate
		}
	}
}

func (e *engine) SetReducedMotion(enabled bool) {
	e.mu.Lock()
	e.reducedMotion = enabled
	e.mu.Unlock()

	if enabled && e.sequencer != nil {
		e.sequencer.Unlock()
	}
	if e.orch != nil {
		e.orch.SetReducedMotion(enabled)
	}
	common.Logger().Info("reduced motion", "enabled", enabled)
}

func (e *engine) ReducedMotion() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.reducedMotion
}

func (e *engine) Quality() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.quality
}

func (e *engine) SetKeyCallback(callback func(keyCode uint32, pressed bool)) {
	e.mu.Lock()
	e.keyCallback = callback
	e.mu.Unlock()
}

func (e *engine) dispatchKey(keyCode uint32, pressed bool) {
	e.mu.Lock()
	cb := e.keyCallback
	e.mu.Unlock()
	if cb != nil {
		cb(keyCode, pressed)
	}
}

func (e *engine) Run() {
	e.mu.Lock()
	if e.started {
		e.mu.Unlock()
		return
	}
	e.started = true
	e.running = true
	e.mu.Unlock()

	e.handle()

	// Main-thread message pump: the tick goroutine renders, this loop only
	// drains platform events and retires windows, which both must happen on
	// the thread that created them.
	for e.isRunning() {
		window.Poll()
		e.drainDeadWindows()
		if !e.anySurfaceRunning() {
			break
		}
		runtime.Gosched()
	}

	e.signalQuit()
	e.wg.Wait()
	e.drainRetired()
	e.drainDeadWindows()
	e.releaseSurfaces()

	e.mu.Lock()
	e.running = false
	e.mu.Unlock()
}

// Quit signals the engine to stop. Safe to call multiple times; subsequent
// calls are no-ops due to sync.Once.
func (e *engine) Quit() {
	e.signalQuit()

	e.mu.Lock()
	started := e.started
	e.mu.Unlock()
	if !started {
		// Run never launched the goroutines, so nothing else will release
		// the pool.
		e.wg.Wait()
		e.drainRetired()
		e.drainDeadWindows()
		e.releaseSurfaces()
	}
}

// signalQuit closes the quit channel to signal all goroutines to exit.
// Uses sync.Once to ensure the channel is only closed once.
func (e *engine) signalQuit() {
	e.quitOnce.Do(func() {
		close(e.quitChannel)
	})
}

func (e *engine) isRunning() bool {
	select {
	case <-e.quitChannel:
		return false
	default:
		return true
	}
}

// handle launches the tick and quit goroutines.
// Each goroutine is tracked by the engine's WaitGroup.
func (e *engine) handle() {
	e.wg.Add(2)
	go e.handleTick()
	go e.handleQuit()
}

// handleTick runs the fixed-rate pipeline loop in its own goroutine: input
// flush, sequencer advance, orchestrator tick and broadcast, then every
// active surface's render callbacks. Listens for dynamic rate changes via
// tickRateChannel and exits when the quit channel is closed.
func (e *engine) handleTick() {
	defer e.wg.Done()
	// Recover from panics in the engine's own pipeline to avoid crashing the
	// whole process. Callback panics are contained per callback and do not
	// reach this handler.
	defer func() {
		if r := recover(); r != nil {
			common.Logger().Error("tick goroutine recovered from panic", "panic", fmt.Sprintf("%v", r))
			e.signalQuit()
		}
	}()

	ticker := time.NewTicker(e.engineTickRate)
	defer ticker.Stop()

	lastTick := time.Now()
	wasHidden := false

	for {
		select {
		case <-e.quitChannel:
			return
		case newRate := <-e.tickRateChannel:
			ticker.Reset(newRate)
			e.engineTickRate = newRate
		case <-ticker.C:
			now := time.Now()
			dt := now.Sub(lastTick).Seconds()
			lastTick = now

			e.drainRetired()

			if e.allSurfacesHidden() {
				// Host hidden: skip the whole pipeline. Raw input keeps
				// accumulating in the aggregator's bounded stores.
				wasHidden = true
				continue
			}
			if wasHidden {
				wasHidden = false
				// Resume without a time jump: the first visible tick
				// advances by at most one tick interval.
				if maxDt := e.engineTickRate.Seconds(); dt > maxDt {
					dt = maxDt
				}
				e.profiler.Reset()
			}

			e.step(dt)
		}
	}
}

// handleQuit blocks until the quit channel is closed, then decrements the WaitGroup.
func (e *engine) handleQuit() {
	defer e.wg.Done()
	<-e.quitChannel
}

// step advances the pipeline by dt seconds and renders every active surface.
// Stage order matters: sensors flush first so the orchestrator sees this
// tick's energies, the sequencer fires scheduled overrides before the
// orchestrator composes its target, and callbacks observe the fully advanced
// state through one immutable FrameInput.
func (e *engine) step(dt float64) {
	e.clock += dt

	var snap sensor.Snapshot
	if e.aggregator != nil {
		e.aggregator.Flush(dt)
		snap = e.aggregator.Snapshot()
	}
	if e.sequencer != nil {
		e.sequencer.Advance(dt)
	}
	if e.orch != nil {
		e.orch.Tick(dt, snap)
		e.orch.Broadcast(dt)
	}

	frame := e.frameInput(dt, snap)
	for _, s := range e.activeSurfaces() {
		if !s.window.IsRunning() {
			continue
		}
		f := frame
		f.Viewport = s.backingSize()

		if err := s.renderer.BeginFrame(); err != nil {
			common.Logger().Warn("begin frame failed", "surface", s.id, "error", err)
			continue
		}
		for _, cb := range s.snapshotCallbacks() {
			invokeCallback(s.id, cb, f)
		}
		s.renderer.EndFrame()
		s.renderer.Present()
	}

	if e.profiler.Tick() {
		e.adjustQuality(e.profiler.Snapshot().FPS)
	}
}

// frameInput assembles the immutable per-tick snapshot shared by every
// callback this tick. Viewport is filled in per surface.
func (e *engine) frameInput(dt float64, snap sensor.Snapshot) FrameInput {
	return FrameInput{
		Timestamp:       e.clock,
		DeltaTime:       dt,
		Pointer:         snap.Pointer,
		PointerVelocity: snap.PointerVelocity,
		ScrollProgress:  snap.ScrollProgress,
		Quality:         e.Quality(),
	}
}

// invokeCallback runs one render callback with panic containment: a
// panicking layer is logged and skipped, the rest of the frame proceeds.
func invokeCallback(surfaceID string, cb RenderCallback, frame FrameInput) {
	defer func() {
		if r := recover(); r != nil {
			common.Logger().Error("render callback panicked",
				"surface", surfaceID,
				"panic", fmt.Sprintf("%v", r),
			)
		}
	}()
	cb(frame)
}

// adjustQuality applies one quality controller step for the measured frame
// rate: a struggling host sheds density quickly, a comfortable one earns it
// back in smaller increments.
func (e *engine) adjustQuality(fps float64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	q := e.quality
	switch {
	case fps < lowFPSThreshold:
		q -= qualityStepDown
	case fps > highFPSFraction*e.targetFPS:
		q += qualityStepUp
	}
	q = common.Clamp(q, qualityMin, qualityMax)
	if q != e.quality {
		common.Logger().Debug("quality adjusted", "fps", fps, "quality", q)
		e.quality = q
	}
}

// activeSurfaces returns the active surfaces in deterministic id order.
func (e *engine) activeSurfaces() []*renderSurface {
	e.mu.Lock()
	out := make([]*renderSurface, 0, len(e.surfaces))
	for _, s := range e.surfaces {
		if s.Active() {
			out = append(out, s)
		}
	}
	e.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

// allSurfacesHidden reports whether no surface window is currently visible.
// An empty pool counts as hidden; there is nothing to render.
func (e *engine) allSurfacesHidden() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, s := range e.surfaces {
		if s.window.Visible() && s.window.IsRunning() {
			return false
		}
	}
	return true
}

// anySurfaceRunning reports whether at least one surface window is open.
func (e *engine) anySurfaceRunning() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, s := range e.surfaces {
		if s.window.IsRunning() {
			return true
		}
	}
	return false
}

// drainRetired releases GPU resources of surfaces removed from the pool.
// Runs on the tick goroutine between frames (or during teardown) so a
// renderer is never released mid-frame.
func (e *engine) drainRetired() {
	e.mu.Lock()
	retired := e.retired
	e.retired = nil
	e.mu.Unlock()

	for _, s := range retired {
		s.renderer.Release()
		e.mu.Lock()
		e.deadWindows = append(e.deadWindows, s.window)
		e.mu.Unlock()
	}
}

// drainDeadWindows destroys windows of retired surfaces. Must run on the
// main thread.
func (e *engine) drainDeadWindows() {
	e.mu.Lock()
	dead := e.deadWindows
	e.deadWindows = nil
	e.mu.Unlock()

	for _, w := range dead {
		_ = w.Close()
	}
}

// releaseSurfaces tears down every surface remaining in the pool. Must run
// on the main thread with the tick goroutine stopped.
func (e *engine) releaseSurfaces() {
	e.mu.Lock()
	pool := e.surfaces
	e.surfaces = make(map[string]*renderSurface)
	e.mu.Unlock()

	for _, s := range pool {
		s.renderer.Release()
		_ = s.window.Close()
		common.Logger().Info("surface released", "surface", s.id)
	}
}
