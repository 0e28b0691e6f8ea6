package field

import "math"

// baseThickness is the lattice line half-width in cell units before morph
// modulation. The shader carries the same constant.
const baseThickness = 0.03

func smoothstepF(e0, e1, x float64) float64 {
	if e1 == e0 {
		if x < e0 {
			return 0
		}
		return 1
	}
	t := (x - e0) / (e1 - e0)
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return t * t * (3 - 2*t)
}

// cellCenter maps a cell-space point to coordinates relative to the center
// of its cell, each component in [-0.5, 0.5).
func cellCenter(p Vec3) Vec3 {
	return Vec3{fract(p[0]) - 0.5, fract(p[1]) - 0.5, fract(p[2]) - 0.5}
}

func length3(p Vec3) float64 {
	return math.Sqrt(p[0]*p[0] + p[1]*p[1] + p[2]*p[2])
}

func latticeHypercube(p Vec3, t float64) float64 {
	m := 0.0
	for i := range p {
		d := math.Abs(fract(p[i]) - 0.5)
		v := 1 - smoothstepF(0, t, d)
		if v > m {
			m = v
		}
	}
	return m
}

func latticeTetrahedron(p Vec3, t float64) float64 {
	q := cellCenter(p)
	const a = 0.25
	verts := [4]Vec3{
		{a, a, a}, {a, -a, -a}, {-a, a, -a}, {-a, -a, a},
	}
	d := math.Inf(1)
	for _, v := range verts {
		dv := length3(Vec3{q[0] - v[0], q[1] - v[1], q[2] - v[2]})
		if dv < d {
			d = dv
		}
	}
	points := 1 - smoothstepF(0, t*3, d)
	face := math.Abs(q[0]+q[1]+q[2]) / 1.7320508
	planes := 1 - smoothstepF(0, t, face)
	if planes > points {
		return planes
	}
	return points
}

func latticeSphere(p Vec3, t float64) float64 {
	q := cellCenter(p)
	d := math.Abs(length3(q) - 0.3)
	return 1 - smoothstepF(0, t, d)
}

func latticeTorus(p Vec3, t float64) float64 {
	q := cellCenter(p)
	ring := math.Sqrt(q[0]*q[0]+q[1]*q[1]) - 0.3
	d := math.Sqrt(ring*ring + q[2]*q[2])
	return 1 - smoothstepF(0, t, d)
}

func latticeKlein(p Vec3, t float64) float64 {
	u := fract(p[0]) * twoPi
	w := fract(p[1]) * twoPi
	surf := math.Sin(u)*math.Cos(w) + 0.5*math.Sin(2*u)*math.Sin(w)
	band := 1 - smoothstepF(0, t*4, math.Abs(surf))
	slice := 1 - smoothstepF(0, t*6, math.Abs(fract(p[2])-0.5))
	return band * slice
}

func latticeFractal(p Vec3, t float64) float64 {
	sum, amp := 0.0, 1.0
	q := p
	for o := 0; o < 3; o++ {
		sum += amp * latticeHypercube(q, t)
		q = Vec3{q[0]*2.03 + 0.17, q[1]*2.03 + 0.31, q[2]*2.03 + 0.23}
		amp *= 0.5
	}
	if sum > 1 {
		sum = 1
	}
	return sum
}

func latticeWave(p Vec3, t float64) float64 {
	w := (math.Sin(p[0]*twoPi) + math.Sin(p[1]*twoPi) + math.Sin(p[2]*twoPi)) / 3
	return 1 - smoothstepF(0, t*6, math.Abs(w))
}

func latticeCrystal(p Vec3, t float64) float64 {
	q := cellCenter(p)
	l1 := math.Abs(q[0]) + math.Abs(q[1]) + math.Abs(q[2])
	return 1 - smoothstepF(0, t*2, math.Abs(l1-0.4))
}

// Lattice evaluates the proximity of a cell-space point to the variant's
// lattice structure. The result is in [0,1]; 1 means the point lies on a
// lattice element. Unrecognized kinds fall back to the hypercube form, the
// same default the shader switch applies.
//
// Parameters:
//   - va: the geometry variant to evaluate
//   - p: the sample position in cell space (already density-scaled)
//   - thickness: the lattice line half-width in cell units
//
// Returns:
//   - float64: the lattice proximity in [0,1]
func Lattice(va Variant, p Vec3, thickness float64) float64 {
	if thickness <= 0 {
		thickness = baseThickness
	}
	switch va.Kind {
	case GeometryHypercube:
		return latticeHypercube(p, thickness)
	case GeometryTetrahedron:
		return latticeTetrahedron(p, thickness)
	case GeometrySphere:
		return latticeSphere(p, thickness)
	case GeometryTorus:
		return latticeTorus(p, thickness)
	case GeometryKlein:
		return latticeKlein(p, thickness)
	case GeometryFractal:
		return latticeFractal(p, thickness)
	case GeometryWave:
		return latticeWave(p, thickness)
	case GeometryCrystal:
		return latticeCrystal(p, thickness)
	default:
		return latticeHypercube(p, thickness)
	}
}
