package pipeline

import (
	"testing"

	"github.com/Carmen-Shannon/tessera-go/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

func TestNewPipelineDefaults(t *testing.T) {
	p := NewPipeline("layer_content")
	if p.PipelineKey() != "layer_content" {
		t.Errorf("PipelineKey() = %q, want %q", p.PipelineKey(), "layer_content")
	}
	if p.BlendState() == nil {
		t.Fatal("default pipeline has no blend state, want source-over")
	}
	if p.BlendState().Color.SrcFactor != wgpu.BlendFactorSrcAlpha {
		t.Errorf("default color src factor = %v, want SrcAlpha", p.BlendState().Color.SrcFactor)
	}
	if p.Topology() != wgpu.PrimitiveTopologyTriangleList {
		t.Errorf("default topology = %v, want TriangleList", p.Topology())
	}
	if p.WriteMask() != wgpu.ColorWriteMaskAll {
		t.Errorf("default write mask = %v, want All", p.WriteMask())
	}
	if p.Pipeline() != nil {
		t.Error("uncompiled pipeline handle is not nil")
	}
}

func TestWithOpaque(t *testing.T) {
	p := NewPipeline("layer_background", WithOpaque())
	if p.BlendState() != nil {
		t.Error("opaque pipeline still carries a blend state")
	}
}

func TestAdditiveBlendPreset(t *testing.T) {
	b := AdditiveBlend()
	if b.Color.DstFactor != wgpu.BlendFactorOne {
		t.Errorf("additive color dst factor = %v, want One", b.Color.DstFactor)
	}
	if b.Color.Operation != wgpu.BlendOperationAdd {
		t.Errorf("additive color operation = %v, want Add", b.Color.Operation)
	}
}

func TestPipelineShaders(t *testing.T) {
	vs, err := shader.NewShaderFromSource("vs", shader.ShaderTypeVertex, `
@vertex
fn vs_main(@builtin(vertex_index) idx: u32) -> @builtin(position) vec4f {
    return vec4f(0.0);
}
`)
	if err != nil {
		t.Fatalf("vertex shader: %v", err)
	}
	fs, err := shader.NewShaderFromSource("fs", shader.ShaderTypeFragment, `
@fragment
fn fs_main() -> @location(0) vec4f { return vec4f(1.0); }
`)
	if err != nil {
		t.Fatalf("fragment shader: %v", err)
	}

	p := NewPipeline("layer", WithVertexShader(vs), WithFragmentShader(fs))
	if got := p.Shader(shader.ShaderTypeVertex); got != vs {
		t.Error("Shader(vertex) did not return the configured shader")
	}
	if got := p.Shader(shader.ShaderTypeFragment); got != fs {
		t.Error("Shader(fragment) did not return the configured shader")
	}
}
