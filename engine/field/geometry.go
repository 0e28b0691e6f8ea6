package field

import "math"

// GeometryKind enumerates the eight base lattice geometries the shader can
// draw. The numeric values are stable: they are written straight into the
// geometry uniform and decoded by the WGSL switch.
type GeometryKind int

const (
	GeometryHypercube GeometryKind = iota
	GeometryTetrahedron
	GeometrySphere
	GeometryTorus
	GeometryKlein
	GeometryFractal
	GeometryWave
	GeometryCrystal

	geometryKindCount = 8
)

// VariationLevels is the number of variation levels each base geometry
// composes with, giving geometryKindCount×VariationLevels total variants.
const VariationLevels = 3

// VariantCount is the total number of composed geometry variants (24).
const VariantCount = geometryKindCount * VariationLevels

var geometryNames = [...]string{
	"hypercube",
	"tetrahedron",
	"sphere",
	"torus",
	"klein",
	"fractal",
	"wave",
	"crystal",
}

// String returns the lowercase geometry name, or "hypercube" for values
// outside the enumeration.
func (k GeometryKind) String() string {
	if k < 0 || int(k) >= len(geometryNames) {
		return geometryNames[GeometryHypercube]
	}
	return geometryNames[k]
}

// KindByName resolves a geometry name to its kind.
//
// Parameters:
//   - name: the lowercase geometry name, e.g. "torus"
//
// Returns:
//   - GeometryKind: the matching kind
//   - bool: false if the name is unknown
func KindByName(name string) (GeometryKind, bool) {
	for i, n := range geometryNames {
		if n == name {
			return GeometryKind(i), true
		}
	}
	return GeometryHypercube, false
}

// Variant is one concrete geometry choice: a base kind plus a variation
// level. Level 0 is the base form, level 1 densifies the lattice, level 2
// additionally boosts chromatic separation.
type Variant struct {
	Kind  GeometryKind
	Level int
}

// ResolveVariant maps a float geometry index to a concrete Variant. The
// mapping is pure and deterministic: index i selects kind i%8 at level i/8.
// Any index that is non-finite, negative, or at/beyond VariantCount resolves
// to the documented default (hypercube, level 0) rather than undefined
// behavior.
//
// Parameters:
//   - index: the raw geometry selector, typically Vector.Geometry
//
// Returns:
//   - Variant: the resolved variant
func ResolveVariant(index float64) Variant {
	if math.IsNaN(index) || math.IsInf(index, 0) {
		return Variant{Kind: GeometryHypercube, Level: 0}
	}
	i := int(math.Floor(index))
	if i < 0 || i >= VariantCount {
		return Variant{Kind: GeometryHypercube, Level: 0}
	}
	switch kind := GeometryKind(i % geometryKindCount); kind {
	case GeometryHypercube, GeometryTetrahedron, GeometrySphere, GeometryTorus,
		GeometryKlein, GeometryFractal, GeometryWave, GeometryCrystal:
		return Variant{Kind: kind, Level: i / geometryKindCount}
	default:
		return Variant{Kind: GeometryHypercube, Level: 0}
	}
}

// Index returns the float selector encoding this variant, the inverse of
// ResolveVariant for in-range variants.
//
// Returns:
//   - float64: the selector value
func (va Variant) Index() float64 {
	k := va.Kind
	if k < 0 || int(k) >= geometryKindCount {
		k = GeometryHypercube
	}
	l := va.Level
	if l < 0 || l >= VariationLevels {
		l = 0
	}
	return float64(int(k) + l*geometryKindCount)
}

// DensityScale returns the lattice density multiplier for the variant's
// variation level: 1.0, 1.5, then 2.0.
//
// Returns:
//   - float64: the density multiplier
func (va Variant) DensityScale() float64 {
	switch va.Level {
	case 1:
		return 1.5
	case 2:
		return 2.0
	default:
		return 1.0
	}
}

// ChromaScale returns the chromatic-offset multiplier for the variant's
// variation level: boosted only at level 2.
//
// Returns:
//   - float64: the chromatic multiplier
func (va Variant) ChromaScale() float64 {
	if va.Level == 2 {
		return 2.5
	}
	return 1.0
}
