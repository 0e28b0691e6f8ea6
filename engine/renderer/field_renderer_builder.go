package renderer

// fieldRendererConfig collects construction settings before the shaders are
// compiled.
type fieldRendererConfig struct {
	source      string
	pipelineKey string
}

// FieldRendererOption is a functional option applied during NewFieldRenderer.
type FieldRendererOption func(*fieldRendererConfig)

// WithShaderSource replaces the embedded lattice WGSL with a custom layer
// program. The source must define both a @vertex and a @fragment entry point
// and bind FieldUniforms at group 0 binding 0; the struct definition itself is
// prepended automatically.
//
// Parameters:
//   - source: the WGSL source for both shader stages
//
// Returns:
//   - FieldRendererOption: a function that applies the source option
func WithShaderSource(source string) FieldRendererOption {
	return func(cfg *fieldRendererConfig) {
		cfg.source = source
	}
}

// WithPipelineKey overrides the derived pipeline cache key. Layers cache
// pipelines per role by default; give layers sharing a role but using
// different shader sources distinct keys so they compile separately.
//
// Parameters:
//   - key: the pipeline cache key to use
//
// Returns:
//   - FieldRendererOption: a function that applies the key option
func WithPipelineKey(key string) FieldRendererOption {
	return func(cfg *fieldRendererConfig) {
		cfg.pipelineKey = key
	}
}
