package renderer

import "fmt"

// ShaderCompileError reports that a layer's WGSL program failed to parse or
// compile into a GPU pipeline. A FieldRenderer holding one stays alive as a
// logged no-op: its surface keeps clearing to the neutral background, and the
// caller can swap in a static fallback presentation.
type ShaderCompileError struct {
	Key string // the shader key that failed
	Err error  // the underlying parse or pipeline error
}

func (e *ShaderCompileError) Error() string {
	return fmt.Sprintf("shader %q failed to compile: %v", e.Key, e.Err)
}

func (e *ShaderCompileError) Unwrap() error {
	return e.Err
}
