package field

import "testing"

func busyInput() SampleInput {
	v := Default()
	v.Chaos = 0.8
	v.Interference = 1
	v.ChromaticOffset = 0.1
	v.Morph = 1.3
	v.Geometry = 21 // fractal, level 2
	return SampleInput{
		Vector:  v,
		Time:    4.2,
		Pointer: [2]float64{0.3, 0.6},
		Hover:   1,
		Impulse: 0.7,
		Scroll:  1.8,
		Aspect:  16.0 / 9.0,
		Role:    RoleContent,
	}
}

func TestSampleDeterministic(t *testing.T) {
	in := busyInput()
	uv := [2]float64{0.37, 0.61}
	a := Sample(uv, in)
	b := Sample(uv, in)
	if a != b {
		t.Errorf("identical inputs produced %v then %v", a, b)
	}
}

func TestSampleInRange(t *testing.T) {
	in := busyInput()
	for yi := 0; yi < 8; yi++ {
		for xi := 0; xi < 8; xi++ {
			uv := [2]float64{(float64(xi) + 0.5) / 8, (float64(yi) + 0.5) / 8}
			col := Sample(uv, in)
			for i, c := range col {
				if c < 0 || c > 1 {
					t.Fatalf("channel %d at %v = %v, outside [0,1]", i, uv, c)
				}
			}
		}
	}
}

func TestSampleHoverGlow(t *testing.T) {
	in := busyInput()
	in.Vector.Intensity = 0 // darken the lattice so only the glow remains
	in.Vector.Interference = 0
	in.Impulse = 0
	in.Pointer = [2]float64{0.5, 0.5}
	uv := in.Pointer

	in.Hover = 0
	dark := Sample(uv, in)
	in.Hover = 1
	lit := Sample(uv, in)

	sum := func(c Vec3) float64 { return c[0] + c[1] + c[2] }
	if sum(lit) <= sum(dark) {
		t.Errorf("hover did not brighten the pointer: %v vs %v", lit, dark)
	}
}

func TestSampleAspectFallback(t *testing.T) {
	in := busyInput()
	uv := [2]float64{0.25, 0.75}
	in.Aspect = 0
	a := Sample(uv, in)
	in.Aspect = 1
	b := Sample(uv, in)
	if a != b {
		t.Errorf("zero aspect = %v, want same as aspect 1 = %v", a, b)
	}
}

func TestSampleRolesStayPhaseLocked(t *testing.T) {
	// Two roles at zero density offset difference must differ only through
	// their modifiers, never through time or rotation, so the same input at
	// the same instant is a pure function of the role.
	in := busyInput()
	uv := [2]float64{0.4, 0.4}
	in.Role = RoleContent
	a := Sample(uv, in)
	b := Sample(uv, in)
	if a != b {
		t.Errorf("same role drifted between calls: %v vs %v", a, b)
	}
}
