package window

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"
)

// glfwWindow holds the GLFW-specific window state.
type glfwWindow struct {
	parent    *engineWindow
	window    *glfw.Window
	running   bool
	iconified bool
	focused   bool
}

// glfwLib refcounts library init across windows: GLFW is initialized when the
// first window opens and terminated when the last one closes.
var glfwLib struct {
	mu   sync.Mutex
	open int
}

func glfwRetain() error {
	glfwLib.mu.Lock()
	defer glfwLib.mu.Unlock()
	if glfwLib.open == 0 {
		if err := glfw.Init(); err != nil {
			return fmt.Errorf("failed to initialize GLFW: %v", err)
		}
	}
	glfwLib.open++
	return nil
}

func glfwRelease() {
	glfwLib.mu.Lock()
	defer glfwLib.mu.Unlock()
	glfwLib.open--
	if glfwLib.open == 0 {
		glfw.Terminate()
	}
}

// newPlatformWindow creates the GLFW window with input callbacks and stores it as the internal window.
//
// GLFW reference: https://www.glfw.org/docs/latest/window_guide.html
// go-gl/glfw: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw
func newPlatformWindow(w *engineWindow) error {
	runtime.LockOSThread()

	if err := glfwRetain(); err != nil {
		return err
	}

	// WebGPU provides its own graphics API, so disable OpenGL context creation.
	// Reference: https://www.glfw.org/docs/latest/window_guide.html#window_hints_ctx
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	if w.transparent {
		// Lets host content show through wherever the layers leave low alpha.
		glfw.WindowHint(glfw.TransparentFramebuffer, glfw.True)
	} else {
		glfw.WindowHint(glfw.TransparentFramebuffer, glfw.False)
	}

	win, err := glfw.CreateWindow(w.width, w.height, w.title, nil, nil)
	if err != nil {
		glfwRelease()
		return fmt.Errorf("failed to create GLFW window: %v", err)
	}

	gw := &glfwWindow{
		parent:  w,
		window:  win,
		running: true,
		focused: true,
	}
	w.internalWindow = gw

	applySizeLimits(w, win)

	// Register GLFW callbacks for input and window events.
	// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Window.SetKeyCallback
	win.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		if key == glfw.KeyEscape && action == glfw.Press {
			gw.running = false
			win.SetShouldClose(true)
			return
		}
		switch action {
		case glfw.Press, glfw.Repeat:
			if w.onKeyDown != nil {
				w.onKeyDown(uint32(key))
			}
		case glfw.Release:
			if w.onKeyUp != nil {
				w.onKeyUp(uint32(key))
			}
		}
	})

	// Both wheel axes are forwarded; trackpads report horizontal deltas too.
	// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Window.SetScrollCallback
	win.SetScrollCallback(func(_ *glfw.Window, xoff, yoff float64) {
		if w.onScroll != nil {
			w.onScroll(xoff, yoff)
		}
	})

	// Any button counts as a pointer press.
	// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Window.SetMouseButtonCallback
	win.SetMouseButtonCallback(func(_ *glfw.Window, _ glfw.MouseButton, action glfw.Action, _ glfw.ModifierKey) {
		if w.onPointerButton == nil {
			return
		}
		switch action {
		case glfw.Press:
			w.onPointerButton(true)
		case glfw.Release:
			w.onPointerButton(false)
		}
	})

	// Cursor coordinates are logical screen units, so normalize against the
	// logical client size rather than the framebuffer.
	// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Window.SetCursorPosCallback
	win.SetCursorPosCallback(func(_ *glfw.Window, xpos, ypos float64) {
		if w.onCursor == nil {
			return
		}
		lw, lh := win.GetSize()
		if lw <= 0 || lh <= 0 {
			return
		}
		w.onCursor(xpos/float64(lw), ypos/float64(lh))
	})

	// Use framebuffer size callback for pixel-accurate resize events.
	// On high-DPI displays (e.g., macOS Retina), framebuffer size differs from window size.
	// The renderer requires pixel dimensions for correct surface configuration.
	// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Window.SetFramebufferSizeCallback
	win.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		w.setSize(width, height)
		if w.onResize != nil {
			w.onResize(width, height)
		}
	})

	// Iconify and focus combine into a single visibility state.
	win.SetIconifyCallback(func(_ *glfw.Window, iconified bool) {
		gw.iconified = iconified
		notifyVisibility(w, gw)
	})
	win.SetFocusCallback(func(_ *glfw.Window, focused bool) {
		gw.focused = focused
		notifyVisibility(w, gw)
	})

	// Update stored dimensions to reflect actual framebuffer size (may differ from requested on high-DPI).
	fbWidth, fbHeight := win.GetFramebufferSize()
	w.setSize(fbWidth, fbHeight)

	return nil
}

// applySizeLimits wires the configured min/max bounds into GLFW. Zero leaves
// that edge unconstrained.
func applySizeLimits(w *engineWindow, win *glfw.Window) {
	if w.minWidth == 0 && w.minHeight == 0 && w.maxWidth == 0 && w.maxHeight == 0 {
		return
	}
	minW, minH, maxW, maxH := glfw.DontCare, glfw.DontCare, glfw.DontCare, glfw.DontCare
	if w.minWidth > 0 {
		minW = w.minWidth
	}
	if w.minHeight > 0 {
		minH = w.minHeight
	}
	if w.maxWidth > 0 {
		maxW = w.maxWidth
	}
	if w.maxHeight > 0 {
		maxH = w.maxHeight
	}
	win.SetSizeLimits(minW, minH, maxW, maxH)
}

// notifyVisibility recomputes the combined iconify/focus state and fires the
// visibility callback on transitions.
func notifyVisibility(w *engineWindow, gw *glfwWindow) {
	visible := !gw.iconified && gw.focused
	if w.setVisible(visible) && w.onVisibility != nil {
		w.onVisibility(visible)
	}
}

// platformGetSurfaceDescriptor creates a platform-appropriate wgpu.SurfaceDescriptor from the GLFW window.
// Uses the wgpuglfw bridge package which has per-platform implementations (Windows, X11, Wayland, macOS).
//
// Reference: https://pkg.go.dev/github.com/cogentcore/webgpu/wgpuglfw#GetSurfaceDescriptor
func platformGetSurfaceDescriptor(w *engineWindow) *wgpu.SurfaceDescriptor {
	if w.internalWindow == nil {
		return nil
	}
	gw := w.internalWindow.(*glfwWindow)
	return wgpuglfw.GetSurfaceDescriptor(gw.window)
}

// platformContentScale returns the window's device pixel ratio, falling back
// to 1 when the platform reports nothing useful.
//
// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Window.GetContentScale
func platformContentScale(w *engineWindow) float64 {
	if w.internalWindow == nil {
		return 1
	}
	gw := w.internalWindow.(*glfwWindow)
	sx, sy := gw.window.GetContentScale()
	scale := float64(sx)
	if float64(sy) > scale {
		scale = float64(sy)
	}
	if scale <= 0 {
		return 1
	}
	return scale
}

// platformIsRunningCheck returns whether the GLFW window is still active.
// Returns false if the internal window is nil, the running flag is cleared, or GLFW reports ShouldClose.
//
// Parameters:
//   - w: the engineWindow to check
//
// Returns:
//   - bool: true if the window is still running
func platformIsRunningCheck(w *engineWindow) bool {
	if w.internalWindow == nil {
		return false
	}
	gw := w.internalWindow.(*glfwWindow)
	return gw.running && !gw.window.ShouldClose()
}

// platformCloseWindow destroys the GLFW window and releases the library
// reference. Terminates GLFW when this was the last open window.
//
// Parameters:
//   - w: the engineWindow to close
//
// Returns:
//   - error: error if the window is not initialized
func platformCloseWindow(w *engineWindow) error {
	if w.internalWindow == nil {
		return fmt.Errorf("window is not initialized")
	}
	gw := w.internalWindow.(*glfwWindow)
	gw.running = false
	gw.window.SetShouldClose(true)
	gw.window.Destroy()
	gw.window = nil
	w.internalWindow = nil
	glfwRelease()
	return nil
}

// platformPoll drains pending events for every open window without blocking.
//
// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#PollEvents
func platformPoll() {
	glfw.PollEvents()
}

// platformProcessMessages polls GLFW for pending events without blocking.
// This is the GLFW equivalent of the Win32 PeekMessage loop.
func platformProcessMessages(w *engineWindow) bool {
	glfw.PollEvents()
	return platformIsRunningCheck(w)
}
