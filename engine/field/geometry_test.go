package field

import (
	"math"
	"testing"
)

func TestResolveVariant(t *testing.T) {
	tests := []struct {
		name  string
		index float64
		want  Variant
	}{
		{"base hypercube", 0, Variant{GeometryHypercube, 0}},
		{"base crystal", 7, Variant{GeometryCrystal, 0}},
		{"second level wraps kind", 8, Variant{GeometryHypercube, 1}},
		{"last variant", 23, Variant{GeometryCrystal, 2}},
		{"fractional floors", 23.9, Variant{GeometryCrystal, 2}},
		{"at count", 24, Variant{GeometryHypercube, 0}},
		{"negative", -1, Variant{GeometryHypercube, 0}},
		{"nan", math.NaN(), Variant{GeometryHypercube, 0}},
		{"positive inf", math.Inf(1), Variant{GeometryHypercube, 0}},
	}
	for _, tt := range tests {
		if got := ResolveVariant(tt.index); got != tt.want {
			t.Errorf("%s: ResolveVariant(%v) = %+v, want %+v", tt.name, tt.index, got, tt.want)
		}
	}
}

func TestVariantIndexRoundTrip(t *testing.T) {
	for i := 0; i < VariantCount; i++ {
		va := ResolveVariant(float64(i))
		if got := va.Index(); got != float64(i) {
			t.Errorf("variant %d: Index() = %v", i, got)
		}
	}
}

func TestVariantScales(t *testing.T) {
	if got := (Variant{GeometryTorus, 0}).DensityScale(); got != 1.0 {
		t.Errorf("level 0 DensityScale = %v, want 1.0", got)
	}
	if got := (Variant{GeometryTorus, 1}).DensityScale(); got != 1.5 {
		t.Errorf("level 1 DensityScale = %v, want 1.5", got)
	}
	if got := (Variant{GeometryTorus, 2}).DensityScale(); got != 2.0 {
		t.Errorf("level 2 DensityScale = %v, want 2.0", got)
	}
	if got := (Variant{GeometryTorus, 1}).ChromaScale(); got != 1.0 {
		t.Errorf("level 1 ChromaScale = %v, want 1.0", got)
	}
	if got := (Variant{GeometryTorus, 2}).ChromaScale(); got != 2.5 {
		t.Errorf("level 2 ChromaScale = %v, want 2.5", got)
	}
}

func TestKindByName(t *testing.T) {
	for i, name := range []string{"hypercube", "tetrahedron", "sphere", "torus", "klein", "fractal", "wave", "crystal"} {
		k, ok := KindByName(name)
		if !ok || k != GeometryKind(i) {
			t.Errorf("KindByName(%q) = %v, %v", name, k, ok)
		}
		if k.String() != name {
			t.Errorf("GeometryKind(%d).String() = %q, want %q", i, k.String(), name)
		}
	}
	if _, ok := KindByName("dodecahedron"); ok {
		t.Error("unknown name resolved")
	}
	if got := GeometryKind(99).String(); got != "hypercube" {
		t.Errorf("out-of-range String() = %q, want hypercube", got)
	}
}
