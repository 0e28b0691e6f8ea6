package field

import (
	"github.com/Carmen-Shannon/tessera-go/common"
)

// Vector is the full set of scalars driving the procedural field each frame.
// It is created once per orchestrator and mutated in place every tick; it is
// never recreated. Every field carries a documented range and is clamped (or
// wrapped, for angular fields) on each write path so downstream consumers can
// trust the values without revalidating.
type Vector struct {
	Geometry        float64 // [0, 24): variant index, resolved via ResolveVariant
	GridDensity     float64 // [4, 30]: lattice cell count across the surface
	Morph           float64 // [0, 2]: shape interpolation amount
	Chaos           float64 // [0, 1]: noise perturbation amplitude
	Speed           float64 // [0.1, 3]: global time multiplier
	Hue             float64 // [0, 360): base hue in degrees, wraps
	Intensity       float64 // [0, 1]: brightness
	Saturation      float64 // [0, 1]: color saturation
	Dimension       float64 // [3, 4.5]: 3D-to-4D blend factor
	RotXY           float64 // [-2π, 2π]: spatial plane angle, wraps
	RotXZ           float64 // [-2π, 2π]: spatial plane angle, wraps
	RotYZ           float64 // [-2π, 2π]: spatial plane angle, wraps
	RotXW           float64 // [-2π, 2π]: hyperspace plane angle, wraps
	RotYW           float64 // [-2π, 2π]: hyperspace plane angle, wraps
	RotZW           float64 // [-2π, 2π]: hyperspace plane angle, wraps
	ChromaticOffset float64 // [0, 0.1]: RGB separation in UV units
	Interference    float64 // [0, 1]: moiré overlay intensity
	ScrollCoupling  float64 // [0, 1]: scroll-to-phase modulation strength
}

// Spec describes one scalar field of the Vector: its documented range, its
// broadcast change threshold, and whether out-of-range values wrap instead of
// saturating. The returned accessors let range enforcement and change
// comparison iterate the vector without reflection.
type Spec struct {
	Name      string
	Min, Max  float64
	Threshold float64 // broadcast significance unit; 0 excludes the field from change magnitude
	Wraps     bool
	Get       func(*Vector) float64
	Set       func(*Vector, float64)
}

const twoPi = 6.283185307179586

// specs is ordered to match the Vector field declaration order. Rotation
// angles carry Threshold 0: they advance continuously whenever Speed is
// nonzero, so including them would mark every tick significant and defeat
// the idle-refresh side of the broadcast policy.
var specs = []Spec{
	{"geometry", 0, 24, 0.5, false, func(v *Vector) float64 { return v.Geometry }, func(v *Vector, f float64) { v.Geometry = f }},
	{"gridDensity", 4, 30, 0.4, false, func(v *Vector) float64 { return v.GridDensity }, func(v *Vector, f float64) { v.GridDensity = f }},
	{"morph", 0, 2, 0.03, false, func(v *Vector) float64 { return v.Morph }, func(v *Vector, f float64) { v.Morph = f }},
	{"chaos", 0, 1, 0.02, false, func(v *Vector) float64 { return v.Chaos }, func(v *Vector, f float64) { v.Chaos = f }},
	{"speed", 0.1, 3, 0.04, false, func(v *Vector) float64 { return v.Speed }, func(v *Vector, f float64) { v.Speed = f }},
	{"hue", 0, 360, 0.5, true, func(v *Vector) float64 { return v.Hue }, func(v *Vector, f float64) { v.Hue = f }},
	{"intensity", 0, 1, 0.02, false, func(v *Vector) float64 { return v.Intensity }, func(v *Vector, f float64) { v.Intensity = f }},
	{"saturation", 0, 1, 0.02, false, func(v *Vector) float64 { return v.Saturation }, func(v *Vector, f float64) { v.Saturation = f }},
	{"dimension", 3, 4.5, 0.02, false, func(v *Vector) float64 { return v.Dimension }, func(v *Vector, f float64) { v.Dimension = f }},
	{"rotXY", -twoPi, twoPi, 0, true, func(v *Vector) float64 { return v.RotXY }, func(v *Vector, f float64) { v.RotXY = f }},
	{"rotXZ", -twoPi, twoPi, 0, true, func(v *Vector) float64 { return v.RotXZ }, func(v *Vector, f float64) { v.RotXZ = f }},
	{"rotYZ", -twoPi, twoPi, 0, true, func(v *Vector) float64 { return v.RotYZ }, func(v *Vector, f float64) { v.RotYZ = f }},
	{"rotXW", -twoPi, twoPi, 0, true, func(v *Vector) float64 { return v.RotXW }, func(v *Vector, f float64) { v.RotXW = f }},
	{"rotYW", -twoPi, twoPi, 0, true, func(v *Vector) float64 { return v.RotYW }, func(v *Vector, f float64) { v.RotYW = f }},
	{"rotZW", -twoPi, twoPi, 0, true, func(v *Vector) float64 { return v.RotZW }, func(v *Vector, f float64) { v.RotZW = f }},
	{"chromaticOffset", 0, 0.1, 0.004, false, func(v *Vector) float64 { return v.ChromaticOffset }, func(v *Vector, f float64) { v.ChromaticOffset = f }},
	{"interference", 0, 1, 0.02, false, func(v *Vector) float64 { return v.Interference }, func(v *Vector, f float64) { v.Interference = f }},
	{"scrollCoupling", 0, 1, 0.02, false, func(v *Vector) float64 { return v.ScrollCoupling }, func(v *Vector, f float64) { v.ScrollCoupling = f }},
}

// Specs returns the ordered field table shared by range enforcement, broadcast
// change comparison, and profile validation. The returned slice is read-only;
// callers must not modify it.
//
// Returns:
//   - []Spec: one entry per Vector field, in declaration order
func Specs() []Spec {
	return specs
}

// SpecByName looks up a field spec by its lowerCamel name.
//
// Parameters:
//   - name: the field name, e.g. "gridDensity"
//
// Returns:
//   - Spec: the matching spec
//   - bool: false if no field has that name
func SpecByName(name string) (Spec, bool) {
	for _, s := range specs {
		if s.Name == name {
			return s, true
		}
	}
	return Spec{}, false
}

// Clamp folds every field back into its documented range in place. Saturating
// fields clip at the bounds; the hue and rotation angles wrap so continuous
// motion is preserved. Non-finite values collapse to the field minimum.
func (v *Vector) Clamp() {
	for _, s := range specs {
		val := s.Get(v)
		if !common.IsFinite(val) {
			s.Set(v, s.Min)
			continue
		}
		switch {
		case s.Name == "hue":
			s.Set(v, common.WrapHue(val))
		case s.Wraps:
			s.Set(v, common.WrapAngle(val))
		default:
			s.Set(v, common.Clamp(val, s.Min, s.Max))
		}
	}
}

// Sanitize replaces any non-finite field with the corresponding field of
// fallback, then clamps. Used at ingestion boundaries so a single bad sample
// never poisons the smoothed state.
//
// Parameters:
//   - fallback: the vector supplying replacement values, typically the last
//     good state
func (v *Vector) Sanitize(fallback Vector) {
	for _, s := range specs {
		if !common.IsFinite(s.Get(v)) {
			s.Set(v, s.Get(&fallback))
		}
	}
	v.Clamp()
}

// Default returns the neutral baseline vector used before any section profile
// is applied: a slow hypercube lattice in the cyan-blue band.
//
// Returns:
//   - Vector: the neutral baseline
func Default() Vector {
	return Vector{
		Geometry:        0,
		GridDensity:     12,
		Morph:           0.6,
		Chaos:           0.15,
		Speed:           0.9,
		Hue:             200,
		Intensity:       0.55,
		Saturation:      0.75,
		Dimension:       3.6,
		ChromaticOffset: 0.015,
		Interference:    0.1,
		ScrollCoupling:  0.4,
	}
}
