package renderer

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestShaderCompileError(t *testing.T) {
	inner := errors.New("unexpected token")
	ce := &ShaderCompileError{Key: "lattice/content", Err: inner}

	if !strings.Contains(ce.Error(), "lattice/content") {
		t.Errorf("Error() = %q, does not name the shader key", ce.Error())
	}
	if !errors.Is(ce, inner) {
		t.Error("errors.Is does not reach the wrapped error")
	}

	wrapped := fmt.Errorf("layer init: %w", ce)
	var got *ShaderCompileError
	if !errors.As(wrapped, &got) {
		t.Fatal("errors.As does not recover the typed error through wrapping")
	}
	if got.Key != "lattice/content" {
		t.Errorf("recovered Key = %q, want %q", got.Key, "lattice/content")
	}
}
