package field

import (
	"math"

	"github.com/Carmen-Shannon/tessera-go/common"
)

// Vec3 is a 3-component position or color triple.
type Vec3 [3]float64

// Vec4 is a 4-component position in the lattice's working space.
type Vec4 [4]float64

// PlaneAngles holds the six rotation plane angles applied to a 4-component
// position, three spatial (XY, XZ, YZ) and three hyperspace (XW, YW, ZW).
type PlaneAngles struct {
	XY, XZ, YZ float64
	XW, YW, ZW float64
}

// Planes extracts the six rotation angles from a vector.
//
// Returns:
//   - PlaneAngles: the vector's rotation angles
func (v *Vector) Planes() PlaneAngles {
	return PlaneAngles{
		XY: v.RotXY, XZ: v.RotXZ, YZ: v.RotYZ,
		XW: v.RotXW, YW: v.RotYW, ZW: v.RotZW,
	}
}

func rotPair(a, b, angle float64) (float64, float64) {
	s, c := math.Sincos(angle)
	return a*c - b*s, a*s + b*c
}

// RotatePlanes applies the six plane rotations to p in the fixed order
// XY, XZ, YZ, XW, YW, ZW. The order matters: plane rotations in four
// dimensions do not commute, and the shader applies the identical order.
//
// Parameters:
//   - p: the 4-component position to rotate
//   - a: the six plane angles in radians
//
// Returns:
//   - Vec4: the rotated position
func RotatePlanes(p Vec4, a PlaneAngles) Vec4 {
	p[0], p[1] = rotPair(p[0], p[1], a.XY)
	p[0], p[2] = rotPair(p[0], p[2], a.XZ)
	p[1], p[2] = rotPair(p[1], p[2], a.YZ)
	p[0], p[3] = rotPair(p[0], p[3], a.XW)
	p[1], p[3] = rotPair(p[1], p[3], a.YW)
	p[2], p[3] = rotPair(p[2], p[3], a.ZW)
	return p
}

// ProjectTo3D collapses a rotated 4-component position to three components
// with a perspective-style divide: the w axis recedes as if viewed from a
// camera at distance dimension along w.
//
// Parameters:
//   - p: the rotated 4-component position
//   - dimension: the 3D-to-4D blend factor, Vector.Dimension
//
// Returns:
//   - Vec3: the projected position
func ProjectTo3D(p Vec4, dimension float64) Vec3 {
	d := dimension + p[3]
	if d < 0.1 {
		d = 0.1
	}
	s := dimension / d
	return Vec3{p[0] * s, p[1] * s, p[2] * s}
}

// HSVToRGB converts hue in degrees, saturation and value in [0,1] to RGB
// components in [0,1].
//
// Parameters:
//   - h: hue in degrees, any value (wrapped internally)
//   - s: saturation in [0,1]
//   - v: value in [0,1]
//
// Returns:
//   - Vec3: the {r, g, b} triple
func HSVToRGB(h, s, v float64) Vec3 {
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	c := v * s
	x := c * (1 - math.Abs(math.Mod(h/60, 2)-1))
	m := v - c

	var r, g, b float64
	switch {
	case h < 60:
		r, g, b = c, x, 0
	case h < 120:
		r, g, b = x, c, 0
	case h < 180:
		r, g, b = 0, c, x
	case h < 240:
		r, g, b = 0, x, c
	case h < 300:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}
	return Vec3{r + m, g + m, b + m}
}

func hash3(p Vec3) float64 {
	n := math.Sin(p[0]*127.1+p[1]*311.7+p[2]*74.7) * 43758.5453123
	return n - math.Floor(n)
}

func fract(v float64) float64 {
	return v - math.Floor(v)
}

func smootherstep(t float64) float64 {
	return t * t * (3 - 2*t)
}

// ValueNoise is a deterministic 3D value noise in [0,1] matching the hash
// construction used by the fragment shader. The CPU fallback perturbs its
// lattice with the same noise family so both paths share one visual grammar.
//
// Parameters:
//   - p: the sample position
//
// Returns:
//   - float64: the noise value in [0,1]
func ValueNoise(p Vec3) float64 {
	i := Vec3{math.Floor(p[0]), math.Floor(p[1]), math.Floor(p[2])}
	f := Vec3{fract(p[0]), fract(p[1]), fract(p[2])}
	u := Vec3{smootherstep(f[0]), smootherstep(f[1]), smootherstep(f[2])}

	corner := func(dx, dy, dz float64) float64 {
		return hash3(Vec3{i[0] + dx, i[1] + dy, i[2] + dz})
	}

	x00 := common.Lerp(corner(0, 0, 0), corner(1, 0, 0), u[0])
	x10 := common.Lerp(corner(0, 1, 0), corner(1, 1, 0), u[0])
	x01 := common.Lerp(corner(0, 0, 1), corner(1, 0, 1), u[0])
	x11 := common.Lerp(corner(0, 1, 1), corner(1, 1, 1), u[0])

	y0 := common.Lerp(x00, x10, u[1])
	y1 := common.Lerp(x01, x11, u[1])
	return common.Lerp(y0, y1, u[2])
}
