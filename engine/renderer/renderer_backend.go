package renderer

// RendererBackendType identifies the GPU backend implementation used by the Renderer.
type RendererBackendType int

const (
	// BackendTypeWGPU selects the WebGPU-based rendering backend.
	BackendTypeWGPU RendererBackendType = iota
)

// PresentMode controls how rendered frames are presented to the display surface.
type PresentMode int

const (
	// PresentModeVSync waits for the next vertical blank before presenting, capping frame rate
	// to the monitor's refresh rate. This is the default: a decorative background gains nothing
	// from rendering faster than the display refreshes.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents frames immediately without waiting for vertical blank.
	// May cause screen tearing but provides the lowest latency.
	PresentModeUncapped
)

// PowerPreference hints which GPU the adapter request should favor on
// multi-GPU systems.
type PowerPreference int

const (
	// PowerPreferenceAuto lets the platform pick an adapter.
	PowerPreferenceAuto PowerPreference = iota

	// PowerPreferenceLowPower favors the integrated GPU. This is the right
	// choice for an ambient background layer that runs for the lifetime of
	// the host application.
	PowerPreferenceLowPower

	// PowerPreferenceHighPerformance favors the discrete GPU.
	PowerPreferenceHighPerformance
)

// MSAASampleCount controls the number of samples used for multisample anti-aliasing (MSAA).
// WebGPU guarantees support for 1 (off) and 4; the field evaluation is purely per-pixel, so
// the fullscreen layers have no geometric edges and sampling above 1 is opt-in.
type MSAASampleCount uint32

const (
	// MSAAOff disables multisample anti-aliasing (sample count 1). This is the default.
	MSAAOff MSAASampleCount = 1

	// MSAA4x enables 4× multisample anti-aliasing.
	MSAA4x MSAASampleCount = 4
)

// RendererBackend is the top-level backend interface for the Renderer.
// It embeds the concrete backend interface for the selected GPU API.
type RendererBackend interface {
	wgpuRendererBackend
}
