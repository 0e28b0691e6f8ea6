package engine

import (
	"math"
	"sort"
	"sync"

	"github.com/Carmen-Shannon/tessera-go/engine/renderer"
	"github.com/Carmen-Shannon/tessera-go/engine/window"
	"github.com/cogentcore/webgpu/wgpu"
)

// SurfaceConfig describes one window-backed render surface.
type SurfaceConfig struct {
	// Width and Height are the initial logical window size. Values at or
	// below zero fall back to 1280x720.
	Width  int
	Height int

	// Title is the window title. Empty falls back to the engine default.
	Title string

	// Alpha requests a transparent framebuffer and a transparent clear color
	// so host content shows through regions the layers leave dark.
	Alpha bool

	// Antialias enables 4x MSAA. The field layers evaluate per pixel, so
	// this only matters when custom layer shaders draw geometric edges.
	Antialias bool

	// PowerPreference hints which GPU the adapter request should favor.
	PowerPreference renderer.PowerPreference

	// PixelRatioCap bounds the device pixel ratio applied to the backing
	// store. Values at or below zero fall back to 2: rendering a full-page
	// field at a ratio of 3 costs 2.25x the pixels of 2 for little visible
	// gain.
	PixelRatioCap float64
}

// transparentClear is the clear color for alpha-enabled surfaces: fully
// transparent black, so host content shows through uncovered regions.
var transparentClear = wgpu.Color{R: 0, G: 0, B: 0, A: 0}

// Surface is one window-backed render target in the engine's pool. Layers
// draw onto it through callbacks registered with Engine.RegisterRenderer.
type Surface interface {
	// ID returns the pool identifier the surface was created under.
	//
	// Returns:
	//   - string: the surface id
	ID() string

	// Window returns the platform window backing the surface.
	//
	// Returns:
	//   - window.Window: the window instance
	Window() window.Window

	// Renderer returns the GPU context shared by every layer drawn onto the
	// surface. Use it to construct layer renderers.
	//
	// Returns:
	//   - renderer.Renderer: the surface's renderer
	Renderer() renderer.Renderer

	// Active reports whether the engine invokes the surface's callbacks.
	//
	// Returns:
	//   - bool: true if the surface participates in the tick
	Active() bool

	// SetActive pauses or resumes the surface without destroying it. An
	// inactive surface keeps its window and GPU context but receives no
	// callbacks and presents no frames.
	//
	// Parameters:
	//   - active: true to resume, false to pause
	SetActive(active bool)
}

// surfaceCallback is one registered render callback with its ordering key.
type surfaceCallback struct {
	priority int
	seq      int
	fn       RenderCallback
}

// renderSurface is the implementation of the Surface interface.
type renderSurface struct {
	mu sync.Mutex

	id       string
	window   window.Window
	renderer renderer.Renderer

	// logical is the surface size in logical units, tracked for backing
	// store math when the host drives layout through ResizeSurface.
	logical [2]int

	// backing is the physical pixel size the renderer should be configured
	// for, after the pixel ratio cap.
	backing [2]int

	ratioCap float64
	active   bool

	callbacks []surfaceCallback
	nextSeq   int
}

var _ Surface = &renderSurface{}

func (s *renderSurface) ID() string {
	return s.id
}

func (s *renderSurface) Window() window.Window {
	return s.window
}

func (s *renderSurface) Renderer() renderer.Renderer {
	return s.renderer
}

func (s *renderSurface) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

func (s *renderSurface) SetActive(active bool) {
	s.mu.Lock()
	s.active = active
	s.mu.Unlock()
}

// addCallback registers a render callback. Callbacks run in ascending
// priority order; equal priorities keep registration order.
func (s *renderSurface) addCallback(fn RenderCallback, priority int) {
	s.mu.Lock()
	s.callbacks = append(s.callbacks, surfaceCallback{priority: priority, seq: s.nextSeq, fn: fn})
	s.nextSeq++
	sort.SliceStable(s.callbacks, func(i, j int) bool {
		if s.callbacks[i].priority != s.callbacks[j].priority {
			return s.callbacks[i].priority < s.callbacks[j].priority
		}
		return s.callbacks[i].seq < s.callbacks[j].seq
	})
	s.mu.Unlock()
}

// snapshotCallbacks returns the ordered callback list as it stands. The tick
// iterates the snapshot, so registrations during a frame take effect on the
// next one.
func (s *renderSurface) snapshotCallbacks() []RenderCallback {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]RenderCallback, len(s.callbacks))
	for i, cb := range s.callbacks {
		out[i] = cb.fn
	}
	return out
}

// setBacking records a new backing store size, returning the stored value.
func (s *renderSurface) setBacking(size [2]int) [2]int {
	s.mu.Lock()
	s.backing = size
	s.mu.Unlock()
	return size
}

// backingSize returns the current capped backing store size.
func (s *renderSurface) backingSize() [2]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.backing
}

// setLogical records the logical surface size.
func (s *renderSurface) setLogical(width, height int) {
	s.mu.Lock()
	s.logical = [2]int{width, height}
	s.mu.Unlock()
}

// cappedFromPhysical converts a physical framebuffer size into the backing
// store size under the surface's pixel ratio cap. At a content scale within
// the cap this is the identity; beyond it the backing shrinks so one backing
// pixel covers more than one device pixel.
func cappedFromPhysical(width, height int, scale, ratioCap float64) [2]int {
	if scale <= 0 {
		scale = 1
	}
	eff := math.Min(scale, ratioCap)
	return [2]int{
		max(int(math.Round(float64(width)*eff/scale)), 1),
		max(int(math.Round(float64(height)*eff/scale)), 1),
	}
}

// cappedFromLogical converts a logical size into the backing store size:
// logical units times the effective (capped) device pixel ratio.
func cappedFromLogical(width, height int, scale, ratioCap float64) [2]int {
	if scale <= 0 {
		scale = 1
	}
	eff := math.Min(scale, ratioCap)
	return [2]int{
		max(int(math.Round(float64(width)*eff)), 1),
		max(int(math.Round(float64(height)*eff)), 1),
	}
}
