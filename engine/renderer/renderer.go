package renderer

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/tessera-go/engine/renderer/binding"
	"github.com/Carmen-Shannon/tessera-go/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/tessera-go/engine/window"
	"github.com/cogentcore/webgpu/wgpu"
)

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu *sync.Mutex

	pipelineCache map[string]pipeline.Pipeline

	backendType RendererBackendType
	backend     RendererBackend

	width, height int

	// Pre-creation config collected from builder options
	forceFallbackAdapter bool
	powerPreference      PowerPreference
	pendingPresentMode   *PresentMode
	pendingMSAA          *MSAASampleCount
	pendingClearColor    *wgpu.Color
}

// Renderer is the GPU context shared by every layer drawn onto one surface.
//
// It manages a cache of compiled layer pipelines and wraps a backend so the frame
// flow stays uniform: the engine calls BeginFrame once, each layer encodes its
// Draw, then EndFrame and Present close the frame. Layers composite in draw
// order under their pipelines' blend states.
type Renderer interface {
	// Pipeline retrieves the cached Pipeline associated with the given key.
	// If the Pipeline does not exist, this will return nil.
	//
	// Parameters:
	//   - key: the unique identifier for the Pipeline to retrieve
	//
	// Returns:
	//   - pipeline.Pipeline: the Pipeline associated with the key, or nil if not found
	Pipeline(key string) pipeline.Pipeline

	// Pipelines retrieves the entire cache of Pipelines.
	//
	// Returns:
	//   - map[string]pipeline.Pipeline: a map of pipeline keys to their corresponding Pipeline objects
	Pipelines() map[string]pipeline.Pipeline

	// RegisterPipelines registers one or more pipelines by creating the corresponding GPU
	// pipeline objects via the backend, then caching them by PipelineKey. Pipelines whose
	// keys are already registered are skipped to avoid duplicate GPU resource creation.
	//
	// Parameters:
	//   - pipelines: the Pipelines to register
	//
	// Returns:
	//   - error: an error if pipeline creation fails
	RegisterPipelines(pipelines ...pipeline.Pipeline) error

	// Resize configures the underlying backend to handle a new surface size.
	// Calls with the current size are no-ops, so per-frame size checks stay cheap.
	//
	// Parameters:
	//   - width: the new width of the surface in pixels
	//   - height: the new height of the surface in pixels
	//
	// Returns:
	//   - error: an error if the surface could not be reconfigured
	Resize(width, height int) error

	// Size returns the surface dimensions the backend is currently configured for.
	//
	// Returns:
	//   - int: the width in pixels
	//   - int: the height in pixels
	Size() (int, int)

	// SetPresentMode sets the surface present mode which controls how frames are delivered to the display.
	// A call to Resize is required after changing this for the new mode to take effect.
	//
	// Parameters:
	//   - mode: the PresentMode to use (VSync or Uncapped)
	SetPresentMode(mode PresentMode)

	// SetClearColor sets the color the frame clears to before any layer draws.
	//
	// Parameters:
	//   - c: the clear color
	SetClearColor(c wgpu.Color)

	// InitBindGroup creates GPU buffers and a bind group from a layout descriptor and stores
	// them on the given Provider.
	//
	// Parameters:
	//   - provider: the Provider to store the created bind group on
	//   - descriptor: the layout descriptor defining the bind group entries
	//
	// Returns:
	//   - error: an error if bind group creation fails
	InitBindGroup(provider binding.Provider, descriptor wgpu.BindGroupLayoutDescriptor) error

	// WriteBuffers writes all staged buffer writes to the GPU queue.
	// Each BufferWrite targets a specific buffer on a Provider at a given binding and offset.
	//
	// Parameters:
	//   - writes: a slice of BufferWrite structs describing the data to write
	WriteBuffers(writes []binding.BufferWrite)

	// BeginFrame acquires the swapchain texture and begins the layer render pass,
	// clearing to the configured clear color. Must be paired with EndFrame after all
	// Draw invocations within a single frame.
	//
	// Returns:
	//   - error: an error if the swapchain texture could not be acquired
	BeginFrame() error

	// Draw looks up the cached Pipeline by key and encodes one non-indexed draw within
	// the current render pass. The layer shaders synthesize geometry from the vertex
	// index, so no vertex or index buffers are involved. Multiple Draw invocations
	// between BeginFrame and EndFrame composite in call order.
	//
	// Parameters:
	//   - pipelineKey: the unique identifier for the cached render Pipeline to use
	//   - vertexCount: the number of vertices to draw (3 for a fullscreen triangle)
	//   - providers: the Providers whose BindGroups will be set on the render pass, in group order
	//
	// Returns:
	//   - error: an error if the pipeline is not found
	Draw(pipelineKey string, vertexCount uint32, providers []binding.Provider) error

	// EndFrame ends the current render pass and submits the command buffer to the GPU.
	// Does not present the surface — call Present() after EndFrame to display the frame.
	// Must be called after BeginFrame and all Draw invocations within a single frame.
	EndFrame()

	// Present presents the surface to the display and releases the swapchain texture.
	// Must be called once per frame after EndFrame.
	Present()

	// Release frees the GPU resources held by the renderer's backend. The renderer
	// must not be used after Release.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer creates a new Renderer instance for one window surface with the
// specified backend type. Adapter and device acquisition can fail on hosts
// without usable GPU support; the caller is expected to fall back to a CPU
// presentation in that case rather than treat the error as fatal.
//
// Parameters:
//   - backendType: the type of rendering backend to use (e.g., WGPU)
//   - w: the window supplying the platform surface descriptor and initial size
//   - options: variadic list of RendererBuilderOption functions to configure the Renderer
//
// Returns:
//   - Renderer: a new instance of Renderer configured with the specified backend and options
//   - error: an error if the backend could not acquire a GPU context
func NewRenderer(backendType RendererBackendType, w window.Window, options ...RendererBuilderOption) (Renderer, error) {
	r := &renderer{
		mu:            &sync.Mutex{},
		pipelineCache: make(map[string]pipeline.Pipeline),
		backendType:   backendType,
	}

	// Apply options first so config flags (e.g. forceFallbackAdapter) are
	// available before the backend requests a GPU adapter.
	for _, opt := range options {
		opt(r)
	}

	msaa := MSAAOff // fullscreen field layers have no geometric edges to smooth
	if r.pendingMSAA != nil {
		msaa = *r.pendingMSAA
	}

	var err error
	switch backendType {
	case BackendTypeWGPU:
		fallthrough
	default:
		r.backend, err = newWGPURendererBackend(w.SurfaceDescriptor(), r.forceFallbackAdapter, msaa, r.powerPreference)
	}
	if err != nil {
		return nil, err
	}

	if r.pendingPresentMode != nil {
		r.backend.SetPresentMode(*r.pendingPresentMode)
	}
	if r.pendingClearColor != nil {
		r.backend.SetClearColor(*r.pendingClearColor)
	}

	if err := r.backend.ConfigureSurface(w.Width(), w.Height()); err != nil {
		r.backend.Release()
		return nil, err
	}
	r.width, r.height = w.Width(), w.Height()

	// Compile any pipelines seeded through builder options now that the
	// surface format is known.
	for _, p := range r.pipelineCache {
		if p.Pipeline() != nil {
			continue
		}
		if err := r.backend.RegisterRenderPipeline(p); err != nil {
			r.backend.Release()
			return nil, err
		}
	}

	return r, nil
}

func (r *renderer) Resize(width, height int) error {
	r.mu.Lock()
	if width == r.width && height == r.height {
		r.mu.Unlock()
		return nil
	}
	r.width, r.height = width, height
	r.mu.Unlock()

	return r.backend.ConfigureSurface(width, height)
}

func (r *renderer) Size() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.width, r.height
}

func (r *renderer) SetPresentMode(mode PresentMode) {
	r.backend.SetPresentMode(mode)
}

func (r *renderer) SetClearColor(c wgpu.Color) {
	r.backend.SetClearColor(c)
}

func (r *renderer) Pipeline(key string) pipeline.Pipeline {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pipelineCache[key]
}

func (r *renderer) Pipelines() map[string]pipeline.Pipeline {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pipelineCache
}

func (r *renderer) RegisterPipelines(pipelines ...pipeline.Pipeline) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range pipelines {
		key := p.PipelineKey()
		if _, exists := r.pipelineCache[key]; exists {
			continue
		}
		if err := r.backend.RegisterRenderPipeline(p); err != nil {
			return err
		}
		r.pipelineCache[key] = p
	}
	return nil
}

func (r *renderer) InitBindGroup(provider binding.Provider, descriptor wgpu.BindGroupLayoutDescriptor) error {
	return r.backend.InitBindGroup(provider, descriptor)
}

func (r *renderer) WriteBuffers(writes []binding.BufferWrite) {
	r.backend.WriteBuffers(writes)
}

func (r *renderer) BeginFrame() error {
	return r.backend.BeginFrame()
}

func (r *renderer) Draw(pipelineKey string, vertexCount uint32, providers []binding.Provider) error {
	r.mu.Lock()
	p, exists := r.pipelineCache[pipelineKey]
	r.mu.Unlock()

	if !exists {
		return fmt.Errorf("render pipeline %q not found in cache", pipelineKey)
	}

	r.backend.Draw(p, vertexCount, providers)
	return nil
}

func (r *renderer) EndFrame() {
	r.backend.EndFrame()
}

func (r *renderer) Present() {
	r.backend.Present()
}

func (r *renderer) Release() {
	r.backend.Release()
}
