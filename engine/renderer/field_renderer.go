package renderer

import (
	_ "embed"
	"fmt"
	"os"
	"sync"

	"github.com/Carmen-Shannon/tessera-go/common"
	"github.com/Carmen-Shannon/tessera-go/engine/field"
	"github.com/Carmen-Shannon/tessera-go/engine/renderer/binding"
	"github.com/Carmen-Shannon/tessera-go/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/tessera-go/engine/renderer/shader"
)

// latticeSource is the built-in WGSL layer program: a fullscreen triangle
// vertex stage and the lattice field fragment stage. The FieldUniforms struct
// definition is prepended from field.UniformsSource at compile time so the
// binding layout cannot drift from the Go side.
//
//go:embed assets/lattice.wgsl
var latticeSource string

// FrameInput is the per-tick snapshot the engine hands to every render
// callback. All values are produced on the tick goroutine before any callback
// runs, so every layer of every surface renders the same instant.
type FrameInput struct {
	Timestamp       float64    // seconds since the engine started
	DeltaTime       float64    // seconds since the previous tick
	Pointer         [2]float64 // normalized pointer position in [0,1]², y down
	PointerVelocity [2]float64 // pointer velocity in normalized units per second
	ScrollProgress  float64    // virtual scroll progress in [0,1]
	Viewport        [2]int     // surface backing size in physical pixels
	Quality         float64    // adaptive quality scalar in [0.5,1]
}

// LayerConfig describes one composited layer's visual function. Role picks the
// brightness band, density bias, and blend mode; Depth separates stacked
// layers under scroll; Reactivity scales how strongly the layer leans toward
// the pointer.
type LayerConfig struct {
	Role       field.Role
	Depth      float64 // [0,1]: deeper layers drift further per unit of scroll
	Reactivity float64 // pointer-response multiplier, 1 is the content baseline
}

const (
	// impulseDecay shrinks the one-shot impulse every rendered frame, so a
	// click flash fades over roughly half a second at 60 FPS.
	impulseDecay = 0.9
	impulseFloor = 0.001
	impulseMax   = 1.5

	// scrollDepthGain converts scroll progress into lattice phase drift,
	// amplified by the layer's Depth so stacked layers separate in parallax.
	scrollDepthGain = 3.0

	fullscreenVertexCount = 3
)

// fieldRenderer is the implementation of the FieldRenderer interface.
type fieldRenderer struct {
	mu *sync.Mutex

	renderer    Renderer
	layer       LayerConfig
	pipelineKey string
	provider    binding.Provider

	vector   field.Vector
	hover    float64
	impulse  float64
	viewport [2]int

	// compileErr, when set, turns Render into a no-op. The surface still
	// clears to the neutral background each frame, so a broken layer shows
	// as a calm dark field rather than an error state.
	compileErr *ShaderCompileError
}

// FieldRenderer draws one parametric lattice layer onto a surface. It owns a
// staged copy of the field vector plus the per-layer transient state (hover,
// impulse) and turns the engine's per-tick FrameInput into one uniform upload
// and one fullscreen draw.
type FieldRenderer interface {
	// Layer returns the layer configuration the renderer was built with.
	//
	// Returns:
	//   - LayerConfig: the role, depth, and reactivity of this layer
	Layer() LayerConfig

	// UpdateParameters shallow-merges a parameter patch into the renderer's
	// staged vector: non-nil patch fields replace the staged values and take
	// effect on the next Render. The renderer trusts upstream clamping and
	// performs no validation of its own. A non-nil Impulse field triggers the
	// same one-shot flash as calling Impulse directly.
	//
	// Parameters:
	//   - patch: the sparse parameter overrides to merge
	UpdateParameters(patch field.Patch)

	// SetHover sets the smoothed pointer-influence level the next frames
	// render with. Values outside [0,1] are clamped; non-finite values are
	// ignored.
	//
	// Parameters:
	//   - level: the hover presence in [0,1]
	SetHover(level float64)

	// Impulse sets the one-shot flash intensity, clamped to [0, 1.5]. The
	// value decays ×0.9 on every rendered frame until it reaches zero, so a
	// click reads as a bloom that fades over roughly half a second.
	//
	// Parameters:
	//   - strength: the impulse strength before clamping
	Impulse(strength float64)

	// Render encodes this layer's draw for the current frame: it reconfigures
	// the swapchain if the viewport changed, packs the staged state into the
	// uniform buffer, and draws one fullscreen triangle. Must be called
	// between the owning renderer's BeginFrame and EndFrame. If the layer's
	// shader failed to compile this is a no-op.
	//
	// Parameters:
	//   - frame: the engine's per-tick snapshot
	Render(frame FrameInput)

	// Err returns the ShaderCompileError that disabled this layer, or nil if
	// the layer compiled and renders normally.
	//
	// Returns:
	//   - error: the recorded compile failure, or nil
	Err() error
}

var _ FieldRenderer = &fieldRenderer{}

// NewFieldRenderer creates a renderer for one lattice layer on the given
// surface renderer, compiling the built-in WGSL layer program. Layers sharing
// a surface share the Renderer; their pipelines are cached per role, so two
// layers with the same role reuse one GPU pipeline.
//
// A parse or pipeline-compile failure returns the error as a
// *ShaderCompileError together with a usable no-op renderer, letting the
// caller keep its layer list intact while swapping in a degraded fallback.
// Other failures (buffer allocation, bind group creation) return a nil
// renderer.
//
// Parameters:
//   - r: the surface's Renderer
//   - layer: the layer configuration
//   - options: variadic list of FieldRendererOption functions to configure the layer
//
// Returns:
//   - FieldRenderer: the layer renderer, non-nil even on compile failure
//   - error: a *ShaderCompileError on shader failure, or another error on GPU resource failure
func NewFieldRenderer(r Renderer, layer LayerConfig, options ...FieldRendererOption) (FieldRenderer, error) {
	cfg := fieldRendererConfig{source: latticeSource}
	for _, opt := range options {
		opt(&cfg)
	}

	layer.Depth = common.Clamp(layer.Depth, 0, 1)

	key := cfg.pipelineKey
	if key == "" {
		key = "lattice/" + layer.Role.String()
	}

	fr := &fieldRenderer{
		mu:          &sync.Mutex{},
		renderer:    r,
		layer:       layer,
		pipelineKey: key,
		vector:      field.Default(),
	}

	source := field.UniformsSource + "\n" + cfg.source

	vs, err := shader.NewShaderFromSource(key, shader.ShaderTypeVertex, source)
	if err != nil {
		return fr.disable(err)
	}
	fs, err := shader.NewShaderFromSource(key, shader.ShaderTypeFragment, source)
	if err != nil {
		return fr.disable(err)
	}

	if err := r.RegisterPipelines(pipeline.NewPipeline(key, layerPipelineOptions(layer.Role, vs, fs)...)); err != nil {
		return fr.disable(err)
	}

	fr.provider = binding.NewProvider(key)
	// The bind group layout must be structurally identical to the pipeline's
	// merged layout or wgpu rejects the bind at draw time.
	layout := mergeBindGroupLayouts(vs.BindGroupLayoutDescriptors(), fs.BindGroupLayoutDescriptors())[0]
	if err := r.InitBindGroup(fr.provider, layout); err != nil {
		return nil, fmt.Errorf("init layer uniforms: %w", err)
	}

	return fr, nil
}

// NewFieldRendererFromPath creates a layer renderer whose WGSL program is
// loaded from a file instead of the embedded source, for iterating on custom
// layer shaders without recompiling. The file supplies both entry points; the
// FieldUniforms struct is still prepended automatically.
//
// Parameters:
//   - r: the surface's Renderer
//   - layer: the layer configuration
//   - sourcePath: the path of the WGSL source file
//   - options: variadic list of FieldRendererOption functions to configure the layer
//
// Returns:
//   - FieldRenderer: the layer renderer, non-nil even on compile failure
//   - error: an error if the file cannot be read, plus the cases NewFieldRenderer documents
func NewFieldRendererFromPath(r Renderer, layer LayerConfig, sourcePath string, options ...FieldRendererOption) (FieldRenderer, error) {
	data, err := os.ReadFile(sourcePath)
	if err != nil {
		return nil, fmt.Errorf("read shader source %s: %w", sourcePath, err)
	}
	options = append(options, WithShaderSource(string(data)))
	return NewFieldRenderer(r, layer, options...)
}

// layerPipelineOptions maps a layer role to its pipeline configuration. The
// bottom layer renders opaque so the clear color never bleeds through;
// accents brighten additively; everything else composites source-over.
func layerPipelineOptions(role field.Role, vs, fs shader.Shader) []pipeline.PipelineBuilderOption {
	opts := []pipeline.PipelineBuilderOption{
		pipeline.WithVertexShader(vs),
		pipeline.WithFragmentShader(fs),
	}
	switch role {
	case field.RoleBackground:
		opts = append(opts, pipeline.WithOpaque())
	case field.RoleAccent:
		opts = append(opts, pipeline.WithBlendState(pipeline.AdditiveBlend()))
	}
	return opts
}

// disable records the compile failure and returns the renderer as a logged
// no-op alongside the typed error.
func (fr *fieldRenderer) disable(err error) (FieldRenderer, error) {
	ce := &ShaderCompileError{Key: fr.pipelineKey, Err: err}
	fr.compileErr = ce
	common.Logger().Warn("layer shader failed to compile, layer disabled",
		"key", fr.pipelineKey,
		"role", fr.layer.Role.String(),
		"error", err)
	return fr, ce
}

func (fr *fieldRenderer) Layer() LayerConfig {
	return fr.layer
}

func (fr *fieldRenderer) UpdateParameters(patch field.Patch) {
	fr.mu.Lock()
	defer fr.mu.Unlock()

	patch.Apply(&fr.vector)
	if patch.Impulse != nil {
		fr.setImpulseLocked(*patch.Impulse)
	}
}

func (fr *fieldRenderer) SetHover(level float64) {
	if !common.IsFinite(level) {
		return
	}
	fr.mu.Lock()
	defer fr.mu.Unlock()
	fr.hover = common.Clamp01(level)
}

func (fr *fieldRenderer) Impulse(strength float64) {
	fr.mu.Lock()
	defer fr.mu.Unlock()
	fr.setImpulseLocked(strength)
}

func (fr *fieldRenderer) setImpulseLocked(strength float64) {
	if !common.IsFinite(strength) {
		return
	}
	fr.impulse = common.Clamp(strength, 0, impulseMax)
}

func (fr *fieldRenderer) Render(frame FrameInput) {
	fr.mu.Lock()
	if fr.compileErr != nil {
		fr.mu.Unlock()
		return
	}

	resized := false
	if frame.Viewport[0] > 0 && frame.Viewport[1] > 0 && frame.Viewport != fr.viewport {
		fr.viewport = frame.Viewport
		resized = true
	}

	in := fr.sampleInputLocked(frame)
	fr.decayImpulseLocked()
	provider := fr.provider
	fr.mu.Unlock()

	if resized {
		// Resize is a no-op when another layer already reconfigured this size.
		if err := fr.renderer.Resize(frame.Viewport[0], frame.Viewport[1]); err != nil {
			common.Logger().Warn("surface reconfigure failed",
				"key", fr.pipelineKey, "error", err)
		}
	}

	u := field.BuildUniforms(in, uint32(frame.Viewport[0]), uint32(frame.Viewport[1]))
	fr.renderer.WriteBuffers([]binding.BufferWrite{{
		Provider: provider,
		Binding:  0,
		Data:     u.Marshal(),
	}})
	_ = fr.renderer.Draw(fr.pipelineKey, fullscreenVertexCount, []binding.Provider{provider})
}

func (fr *fieldRenderer) Err() error {
	fr.mu.Lock()
	defer fr.mu.Unlock()
	if fr.compileErr == nil {
		return nil
	}
	return fr.compileErr
}

// sampleInputLocked assembles the shared evaluation input for this frame.
// Quality scales the lattice density down rather than dropping frames, and
// the layer's depth amplifies scroll drift for parallax separation.
func (fr *fieldRenderer) sampleInputLocked(frame FrameInput) field.SampleInput {
	quality := frame.Quality
	if quality <= 0 || quality > 1 {
		quality = 1
	}

	v := fr.vector
	v.GridDensity *= quality

	return field.SampleInput{
		Vector:     v,
		Time:       frame.Timestamp,
		Pointer:    frame.Pointer,
		Hover:      fr.hover,
		Impulse:    fr.impulse,
		Scroll:     frame.ScrollProgress * (1 + scrollDepthGain*fr.layer.Depth),
		Aspect:     viewportAspect(frame.Viewport),
		Role:       fr.layer.Role,
		Reactivity: fr.layer.Reactivity,
	}
}

func (fr *fieldRenderer) decayImpulseLocked() {
	fr.impulse *= impulseDecay
	if fr.impulse < impulseFloor {
		fr.impulse = 0
	}
}

func viewportAspect(viewport [2]int) float64 {
	if viewport[0] <= 0 || viewport[1] <= 0 {
		return 1
	}
	return float64(viewport[0]) / float64(viewport[1])
}
