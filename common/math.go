package common

import (
	"math"
)

// DampFactor computes the frame-rate-independent blend factor for an
// exponential approach with time constant tau. Advancing a value by
// v += (target-v) * DampFactor(dt, tau) converges identically regardless of
// how dt is sliced across frames.
//
// Parameters:
//   - dt: elapsed time in seconds since the previous step
//   - tau: smoothing time constant in seconds; <= 0 snaps immediately
//
// Returns:
//   - float64: blend factor in [0, 1]
func DampFactor(dt, tau float64) float64 {
	if tau <= 0 {
		return 1
	}
	if dt <= 0 {
		return 0
	}
	return 1 - math.Exp(-dt/tau)
}

// Damp moves current toward target by the exponential blend factor for dt and tau.
//
// Parameters:
//   - current: the present smoothed value
//   - target: the value being approached
//   - dt: elapsed time in seconds
//   - tau: smoothing time constant in seconds
//
// Returns:
//   - float64: the advanced value
func Damp(current, target, dt, tau float64) float64 {
	return current + (target-current)*DampFactor(dt, tau)
}

// WrapAngle normalizes an angle in radians to the range [-2π, 2π) while
// preserving winding direction within a single turn. Continuous rotation
// accumulators stay bounded without ever saturating.
//
// Parameters:
//   - a: the angle in radians
//
// Returns:
//   - float64: the wrapped angle
func WrapAngle(a float64) float64 {
	const tau = 2 * math.Pi
	a = math.Mod(a, tau)
	if math.IsNaN(a) {
		return 0
	}
	return a
}

// WrapHue normalizes a hue in degrees to [0, 360).
//
// Parameters:
//   - h: the hue in degrees
//
// Returns:
//   - float64: the wrapped hue
func WrapHue(h float64) float64 {
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	if math.IsNaN(h) {
		return 0
	}
	return h
}

// HueDelta returns the signed shortest angular distance from hue a to hue b
// in degrees, in the range (-180, 180].
//
// Parameters:
//   - a: the starting hue in degrees
//   - b: the ending hue in degrees
//
// Returns:
//   - float64: the signed shortest distance b-a
func HueDelta(a, b float64) float64 {
	d := math.Mod(b-a, 360)
	if d > 180 {
		d -= 360
	}
	if d <= -180 {
		d += 360
	}
	return d
}

// AngleDelta returns the signed shortest angular distance from a to b in
// radians, in the range (-π, π].
//
// Parameters:
//   - a: the starting angle in radians
//   - b: the ending angle in radians
//
// Returns:
//   - float64: the signed shortest distance b-a
func AngleDelta(a, b float64) float64 {
	d := math.Mod(b-a, 2*math.Pi)
	if d > math.Pi {
		d -= 2 * math.Pi
	}
	if d <= -math.Pi {
		d += 2 * math.Pi
	}
	return d
}
