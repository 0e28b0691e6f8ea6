package window

import (
	"runtime"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"
)

// Window provides platform windowing and input event handling for one render
// surface. Wraps platform-specific window implementations with a common
// interface. Callbacks run on the platform event thread and should only hand
// data off; set them before the message loop starts.
type Window interface {
	// SetUpdateCallback sets the function called each message loop iteration.
	//
	// Parameters:
	//   - callback: function to call (or nil to disable)
	SetUpdateCallback(callback func())

	// SetResizeCallback sets the function called when the framebuffer is
	// resized. Dimensions are physical pixels, which on high-DPI displays
	// differ from the window's logical size.
	//
	// Parameters:
	//   - callback: function receiving new width and height in pixels
	SetResizeCallback(callback func(width, height int))

	// SetCursorCallback sets the callback for pointer movement. Coordinates
	// are normalized to the window's logical client area: [0,1] on both axes
	// with y increasing downward. Values may briefly leave [0,1] while the
	// pointer is captured outside the window.
	//
	// Parameters:
	//   - callback: function receiving the normalized pointer position
	SetCursorCallback(callback func(x, y float64))

	// SetScrollCallback sets the callback for wheel and trackpad scroll
	// events. Deltas are in wheel detents as the platform reports them.
	//
	// Parameters:
	//   - callback: function receiving the horizontal and vertical deltas
	SetScrollCallback(callback func(dx, dy float64))

	// SetPointerButtonCallback sets the callback for pointer button
	// transitions, any button.
	//
	// Parameters:
	//   - callback: function receiving true on press, false on release
	SetPointerButtonCallback(callback func(pressed bool))

	// SetKeyDownCallback sets the callback for key press events.
	//
	// Parameters:
	//   - callback: function receiving the virtual key code
	SetKeyDownCallback(callback func(keyCode uint32))

	// SetKeyUpCallback sets the callback for key release events.
	//
	// Parameters:
	//   - callback: function receiving the virtual key code
	SetKeyUpCallback(callback func(keyCode uint32))

	// SetVisibilityCallback sets the callback for visibility transitions.
	// A window counts as hidden while it is iconified or has lost input
	// focus; the callback fires on every transition of the combined state.
	//
	// Parameters:
	//   - callback: function receiving the new visibility
	SetVisibilityCallback(callback func(visible bool))

	// SurfaceDescriptor returns a wgpu.SurfaceDescriptor suitable for creating a WebGPU surface.
	// The descriptor is platform-appropriate (Windows HWND, X11 Xlib, Wayland, macOS Metal, etc.)
	// and is created by the wgpuglfw bridge from the underlying GLFW window.
	//
	// Returns:
	//   - *wgpu.SurfaceDescriptor: the platform-specific surface descriptor, or nil if window is not initialized
	SurfaceDescriptor() *wgpu.SurfaceDescriptor

	// ContentScale returns the window's device pixel ratio: the factor
	// between logical window coordinates and physical framebuffer pixels.
	//
	// Returns:
	//   - float64: the content scale, at least 1
	ContentScale() float64

	// IsRunning returns true if the window is still active.
	//
	// Returns:
	//   - bool: true if window is running, false if closed
	IsRunning() bool

	// Visible reports the combined visibility state: false while the window
	// is iconified or unfocused.
	//
	// Returns:
	//   - bool: true if the window is visible
	Visible() bool

	// Close closes the window and releases platform resources.
	//
	// Returns:
	//   - error: error if close operation fails
	Close() error

	// ProcessMessages runs the window message loop.
	// Blocks until the window is closed. Calls the update callback each iteration.
	ProcessMessages()

	// Width returns the current framebuffer width in physical pixels.
	//
	// Returns:
	//   - int: width in pixels
	Width() int

	// Height returns the current framebuffer height in physical pixels.
	//
	// Returns:
	//   - int: height in pixels
	Height() int
}

// engineWindow is the implementation of the Window interface.
// Holds window configuration, platform state, and event callbacks.
type engineWindow struct {
	// mu guards the fields the platform event thread writes while the tick
	// goroutine reads: width, height, visible.
	mu sync.Mutex

	// title is the window title displayed in the title bar.
	title string

	// maxWidth and maxHeight bound the window during interactive resize.
	// Zero means unconstrained.
	maxWidth  int
	maxHeight int

	// minWidth and minHeight bound the window during interactive resize.
	// Zero means unconstrained.
	minWidth  int
	minHeight int

	// width and height are the current framebuffer size in physical pixels.
	width  int
	height int

	// transparent requests a transparent framebuffer so host content shows
	// through regions the layers leave dark.
	transparent bool

	// visible is the combined iconify/focus state.
	visible bool

	// internalWindow holds the platform-specific window data (glfwWindow).
	internalWindow any

	// onUpdate is called each iteration of the message loop (if set).
	onUpdate func()

	// onResize is called when the framebuffer is resized.
	onResize func(width, height int)

	// onCursor is called with the normalized pointer position.
	onCursor func(x, y float64)

	// onScroll is called for wheel events with both axis deltas.
	onScroll func(dx, dy float64)

	// onPointerButton is called on any pointer button press or release.
	onPointerButton func(pressed bool)

	// onKeyDown is called when a key is pressed.
	onKeyDown func(keyCode uint32)

	// onKeyUp is called when a key is released.
	onKeyUp func(keyCode uint32)

	// onVisibility is called when the combined visibility state changes.
	onVisibility func(visible bool)
}

var _ Window = &engineWindow{}

// NewWindow creates a new Window with the specified options.
// Applies default values first, then each option in order.
//
// Parameters:
//   - options: functional options to configure the window
//
// Returns:
//   - Window: the configured window
//   - error: non-nil if the platform window could not be created
func NewWindow(options ...WindowBuilderOption) (Window, error) {
	w := &engineWindow{
		title:   "tessera",
		width:   1280,
		height:  720,
		visible: true,
	}
	for _, opt := range options {
		opt(w)
	}
	if err := newPlatformWindow(w); err != nil {
		return nil, err
	}
	return w, nil
}

// Poll drains pending platform events for every open window without
// blocking. The caller owning the main thread invokes this each loop
// iteration when it drives the message pump itself instead of using
// ProcessMessages.
func Poll() {
	platformPoll()
}

func (w *engineWindow) SetUpdateCallback(callback func()) {
	w.onUpdate = callback
}

func (w *engineWindow) SetResizeCallback(callback func(width, height int)) {
	w.onResize = callback
}

func (w *engineWindow) SetCursorCallback(callback func(x, y float64)) {
	w.onCursor = callback
}

func (w *engineWindow) SetScrollCallback(callback func(dx, dy float64)) {
	w.onScroll = callback
}

func (w *engineWindow) SetPointerButtonCallback(callback func(pressed bool)) {
	w.onPointerButton = callback
}

func (w *engineWindow) SetKeyDownCallback(callback func(keyCode uint32)) {
	w.onKeyDown = callback
}

func (w *engineWindow) SetKeyUpCallback(callback func(keyCode uint32)) {
	w.onKeyUp = callback
}

func (w *engineWindow) SetVisibilityCallback(callback func(visible bool)) {
	w.onVisibility = callback
}

func (w *engineWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	return platformGetSurfaceDescriptor(w)
}

func (w *engineWindow) ContentScale() float64 {
	return platformContentScale(w)
}

func (w *engineWindow) IsRunning() bool {
	return platformIsRunningCheck(w)
}

func (w *engineWindow) Visible() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.visible
}

func (w *engineWindow) Close() error {
	return platformCloseWindow(w)
}

func (w *engineWindow) ProcessMessages() {
	for w.IsRunning() {
		if succ := platformProcessMessages(w); !succ {
			break
		}

		if w.onUpdate != nil {
			w.onUpdate()
		}

		runtime.Gosched()
	}
}

func (w *engineWindow) Width() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.width
}

func (w *engineWindow) Height() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.height
}

// setSize records a new framebuffer size from the platform resize event.
func (w *engineWindow) setSize(width, height int) {
	w.mu.Lock()
	w.width = width
	w.height = height
	w.mu.Unlock()
}

// setVisible records the combined visibility state and reports whether it
// changed.
func (w *engineWindow) setVisible(visible bool) bool {
	w.mu.Lock()
	changed := w.visible != visible
	w.visible = visible
	w.mu.Unlock()
	return changed
}
