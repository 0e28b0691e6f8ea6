package field

import (
	"math"

	"github.com/Carmen-Shannon/tessera-go/common"
)

// SampleInput carries the per-frame state a pixel evaluation needs beyond
// the field vector itself. The same values feed the GPU uniform buffer, so
// the CPU path and the shader render the same frame for the same input.
type SampleInput struct {
	Vector  Vector
	Time    float64    // seconds since the surface started rendering
	Pointer [2]float64 // normalized pointer position in [0,1]², y down
	Hover   float64    // pointer influence in [0,1]
	Impulse float64    // click impulse in [0,1]
	Scroll  float64    // accumulated virtual scroll in viewport units
	Aspect  float64    // surface width / height
	Role    Role
	// Reactivity scales how strongly this layer responds to pointer input.
	// 1 is the content-layer baseline.
	Reactivity float64
}

func densityFor(v *Vector, va Variant, role Role) float64 {
	d := (v.GridDensity + role.DensityOffset()) * va.DensityScale()
	if d < 1 {
		d = 1
	}
	return d
}

// latticeField evaluates the projected lattice value at one normalized
// surface coordinate. It is the CPU twin of the fragment shader's field
// function and must stay in lockstep with it.
func latticeField(uv [2]float64, in *SampleInput, va Variant, t float64) float64 {
	v := &in.Vector
	p4 := Vec4{
		(uv[0] - 0.5) * in.Aspect,
		uv[1] - 0.5,
		0.35 * math.Sin(t*0.31),
		0.35 * math.Cos(t*0.23),
	}

	ang := v.Planes()
	react := in.Hover * in.Reactivity
	ang.XW += (in.Pointer[1] - 0.5) * react * 0.6
	ang.YW += (in.Pointer[0] - 0.5) * react * 0.6
	p4 = RotatePlanes(p4, ang)
	p3 := ProjectTo3D(p4, v.Dimension)

	density := densityFor(v, va, in.Role)
	q := Vec3{
		p3[0] * density,
		p3[1] * density,
		p3[2]*density + t*0.4 + in.Scroll*v.ScrollCoupling,
	}
	if v.Chaos > 0 {
		n := ValueNoise(Vec3{q[0]*0.5 + t*0.1, q[1] * 0.5, q[2] * 0.5})
		q[0] += (n - 0.5) * v.Chaos
		q[1] += (ValueNoise(Vec3{q[1] * 0.5, q[2]*0.5 + t*0.1, q[0] * 0.5}) - 0.5) * v.Chaos
	}

	thickness := baseThickness * (1 + v.Morph*0.15)
	l := Lattice(va, q, thickness)
	if v.Morph > 0 {
		next := Variant{Kind: GeometryKind((int(va.Kind) + 1) % geometryKindCount), Level: va.Level}
		mix := common.Clamp01(v.Morph * 0.5)
		l = common.Lerp(l, Lattice(next, q, thickness), mix)
	}
	return l
}

// Sample evaluates one pixel of the field and returns linear RGB components
// in [0,1]. The evaluation is pure: identical inputs produce identical
// output on every call, which keeps the CPU renderer deterministic and
// makes the shader's behavior checkable against this reference.
//
// Parameters:
//   - uv: the normalized pixel coordinate in [0,1]², y down
//   - in: the frame state to evaluate against
//
// Returns:
//   - Vec3: the {r, g, b} triple, each component clamped to [0,1]
func Sample(uv [2]float64, in SampleInput) Vec3 {
	v := &in.Vector
	va := ResolveVariant(v.Geometry)
	t := in.Time * v.Speed
	if in.Aspect <= 0 {
		in.Aspect = 1
	}
	if in.Reactivity == 0 {
		in.Reactivity = 1
	}

	chroma := v.ChromaticOffset * va.ChromaScale()
	center := latticeField(uv, &in, va, t)
	lr, lb := center, center
	if chroma > 0 {
		lr = latticeField([2]float64{uv[0] + chroma, uv[1]}, &in, va, t)
		lb = latticeField([2]float64{uv[0] - chroma, uv[1]}, &in, va, t)
	}

	hue := v.Hue + (in.Pointer[0]-0.5)*in.Hover*in.Reactivity*20
	shade := func(l float64) Vec3 {
		val := common.Clamp01(l * v.Intensity * in.Role.IntensityScale())
		return HSVToRGB(hue+l*25, v.Saturation, val)
	}
	cr, cg, cb := shade(lr), shade(center), shade(lb)
	col := Vec3{cr[0], cg[1], cb[2]}

	if v.Interference > 0 {
		d := densityFor(v, va, in.Role)
		m := math.Sin(uv[0]*d*3.02+t) * math.Sin(uv[1]*d*2.98-t)
		boost := m * 0.15 * v.Interference
		for i := range col {
			col[i] += boost
		}
	}

	react := in.Reactivity * (0.35*in.Hover + 0.6*in.Impulse)
	if react > 0 {
		dx := (uv[0] - in.Pointer[0]) * in.Aspect
		dy := uv[1] - in.Pointer[1]
		glow := math.Exp(-(dx*dx+dy*dy)/0.05) * react
		tint := HSVToRGB(hue, v.Saturation*0.4, 1)
		for i := range col {
			col[i] += tint[i] * glow
		}
	}

	for i := range col {
		col[i] = common.Clamp01(col[i])
	}
	return col
}
