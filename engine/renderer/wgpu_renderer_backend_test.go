package renderer

import (
	"testing"

	"github.com/Carmen-Shannon/tessera-go/engine/field"
	"github.com/Carmen-Shannon/tessera-go/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

func TestLatticeProgramParses(t *testing.T) {
	source := field.UniformsSource + "\n" + latticeSource

	vs, err := shader.NewShaderFromSource("lattice", shader.ShaderTypeVertex, source)
	if err != nil {
		t.Fatalf("vertex parse error = %v", err)
	}
	if vs.EntryPoint() != "vs_main" {
		t.Errorf("vertex EntryPoint() = %q, want %q", vs.EntryPoint(), "vs_main")
	}
	if len(vs.VertexLayouts()) != 0 {
		t.Errorf("fullscreen program has %d vertex layouts, want 0", len(vs.VertexLayouts()))
	}

	fs, err := shader.NewShaderFromSource("lattice", shader.ShaderTypeFragment, source)
	if err != nil {
		t.Fatalf("fragment parse error = %v", err)
	}
	if fs.EntryPoint() != "fs_main" {
		t.Errorf("fragment EntryPoint() = %q, want %q", fs.EntryPoint(), "fs_main")
	}

	// The uniform block in the shader and the Go struct upload the same bytes.
	size, ok := fs.MinBindingSize(0, 0)
	if !ok {
		t.Fatal("MinBindingSize(0, 0) not resolved from lattice program")
	}
	var u field.Uniforms
	if size != uint64(u.Size()) {
		t.Errorf("WGSL FieldUniforms size = %d, Go struct size = %d; layouts have drifted", size, u.Size())
	}
	if got := fs.BindGroupVarName(0, 0); got != "u" {
		t.Errorf("BindGroupVarName(0, 0) = %q, want %q", got, "u")
	}
}

func TestMergeBindGroupLayoutsDisjointGroups(t *testing.T) {
	vertex := map[int]wgpu.BindGroupLayoutDescriptor{
		0: {Entries: []wgpu.BindGroupLayoutEntry{{
			Binding:    0,
			Visibility: wgpu.ShaderStageVertex,
		}}},
	}
	fragment := map[int]wgpu.BindGroupLayoutDescriptor{
		1: {Entries: []wgpu.BindGroupLayoutEntry{{
			Binding:    0,
			Visibility: wgpu.ShaderStageFragment,
		}}},
	}

	merged := mergeBindGroupLayouts(vertex, fragment)
	if len(merged) != 2 {
		t.Fatalf("merged group count = %d, want 2", len(merged))
	}
	if merged[0].Entries[0].Visibility != wgpu.ShaderStageVertex {
		t.Errorf("group 0 visibility = %v, want vertex only", merged[0].Entries[0].Visibility)
	}
	if merged[1].Entries[0].Visibility != wgpu.ShaderStageFragment {
		t.Errorf("group 1 visibility = %v, want fragment only", merged[1].Entries[0].Visibility)
	}
}

func TestMergeBindGroupLayoutsSharedBinding(t *testing.T) {
	vertex := map[int]wgpu.BindGroupLayoutDescriptor{
		0: {Entries: []wgpu.BindGroupLayoutEntry{{
			Binding:    0,
			Visibility: wgpu.ShaderStageVertex,
			Buffer:     wgpu.BufferBindingLayout{Type: wgpu.BufferBindingTypeUniform, MinBindingSize: 112},
		}}},
	}
	fragment := map[int]wgpu.BindGroupLayoutDescriptor{
		0: {Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageFragment,
				Buffer:     wgpu.BufferBindingLayout{Type: wgpu.BufferBindingTypeUniform, MinBindingSize: 112},
			},
			{
				Binding:    1,
				Visibility: wgpu.ShaderStageFragment,
				Buffer:     wgpu.BufferBindingLayout{Type: wgpu.BufferBindingTypeReadOnlyStorage, MinBindingSize: 16},
			},
		}},
	}

	merged := mergeBindGroupLayouts(vertex, fragment)
	entries := merged[0].Entries
	if len(entries) != 2 {
		t.Fatalf("merged entry count = %d, want 2", len(entries))
	}
	// Shared binding 0 carries both stage flags; entries stay sorted by binding.
	if entries[0].Binding != 0 || entries[1].Binding != 1 {
		t.Errorf("entries not sorted by binding: %d, %d", entries[0].Binding, entries[1].Binding)
	}
	want := wgpu.ShaderStageVertex | wgpu.ShaderStageFragment
	if entries[0].Visibility != want {
		t.Errorf("shared binding visibility = %v, want %v", entries[0].Visibility, want)
	}
	if entries[1].Visibility != wgpu.ShaderStageFragment {
		t.Errorf("fragment-only binding visibility = %v, want fragment", entries[1].Visibility)
	}
	if entries[0].Buffer.MinBindingSize != 112 {
		t.Errorf("shared binding MinBindingSize = %d, want 112", entries[0].Buffer.MinBindingSize)
	}
}
