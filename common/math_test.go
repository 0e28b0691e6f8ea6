package common

import (
	"math"
	"testing"
)

func TestClamp(t *testing.T) {
	tests := []struct {
		name      string
		v, lo, hi float64
		want      float64
	}{
		{"below", -1, 0, 1, 0},
		{"above", 2, 0, 1, 1},
		{"inside", 0.5, 0, 1, 0.5},
		{"at lower", 0, 0, 1, 0},
		{"at upper", 1, 0, 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clamp(tt.v, tt.lo, tt.hi); got != tt.want {
				t.Errorf("Clamp(%v, %v, %v) = %v, want %v", tt.v, tt.lo, tt.hi, got, tt.want)
			}
		})
	}
}

func TestDampFactorBounds(t *testing.T) {
	if got := DampFactor(0.016, 0); got != 1 {
		t.Errorf("zero tau should snap, got %v", got)
	}
	if got := DampFactor(0, 0.1); got != 0 {
		t.Errorf("zero dt should hold, got %v", got)
	}
	f := DampFactor(0.016, 0.08)
	if f <= 0 || f >= 1 {
		t.Errorf("factor out of (0,1): %v", f)
	}
}

func TestDampFrameRateIndependence(t *testing.T) {
	// One 100ms step and ten 10ms steps must land on the same value.
	const tau = 0.2
	coarse := Damp(0, 1, 0.1, tau)

	fine := 0.0
	for range 10 {
		fine = Damp(fine, 1, 0.01, tau)
	}

	if math.Abs(coarse-fine) > 1e-9 {
		t.Errorf("coarse %v and fine %v diverged", coarse, fine)
	}
}

func TestDampConverges(t *testing.T) {
	const tau = 0.05
	v := 0.0
	for range 600 {
		v = Damp(v, 1, 1.0/60, tau)
	}
	if math.Abs(v-1) > 1e-6 {
		t.Errorf("did not converge: %v", v)
	}
}

func TestWrapAngle(t *testing.T) {
	tau := 2 * math.Pi
	tests := []struct {
		in, want float64
	}{
		{0, 0},
		{math.Pi, math.Pi},
		{tau + 0.5, 0.5},
		{-tau - 0.5, -0.5},
		{3 * tau, 0},
	}
	for _, tt := range tests {
		got := WrapAngle(tt.in)
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("WrapAngle(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
	if got := WrapAngle(math.NaN()); got != 0 {
		t.Errorf("NaN should wrap to 0, got %v", got)
	}
}

func TestWrapHue(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 0},
		{360, 0},
		{370, 10},
		{-10, 350},
		{720.5, 0.5},
	}
	for _, tt := range tests {
		if got := WrapHue(tt.in); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("WrapHue(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestHueDelta(t *testing.T) {
	tests := []struct {
		a, b, want float64
	}{
		{180, 160, -20},
		{160, 180, 20},
		{350, 10, 20},
		{10, 350, -20},
		{0, 180, 180},
	}
	for _, tt := range tests {
		if got := HueDelta(tt.a, tt.b); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("HueDelta(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestAngleDelta(t *testing.T) {
	tests := []struct {
		a, b, want float64
	}{
		{0, 0.5, 0.5},
		{0.5, 0, -0.5},
		{math.Pi - 0.1, -math.Pi + 0.1, 0.2},
		{-math.Pi + 0.1, math.Pi - 0.1, -0.2},
		{0, math.Pi, math.Pi},
	}
	for _, tt := range tests {
		if got := AngleDelta(tt.a, tt.b); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("AngleDelta(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestIsFinite(t *testing.T) {
	if IsFinite(math.NaN()) || IsFinite(math.Inf(1)) || IsFinite(math.Inf(-1)) {
		t.Error("non-finite values reported finite")
	}
	if !IsFinite(0) || !IsFinite(-1e300) {
		t.Error("finite values reported non-finite")
	}
}
