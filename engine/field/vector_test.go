package field

import (
	"math"
	"testing"
)

func TestSpecsTable(t *testing.T) {
	specs := Specs()
	if len(specs) != 18 {
		t.Fatalf("Specs() returned %d entries, want 18", len(specs))
	}
	seen := map[string]bool{}
	for _, s := range specs {
		if s.Name == "" {
			t.Error("spec with empty name")
		}
		if seen[s.Name] {
			t.Errorf("duplicate spec name %q", s.Name)
		}
		seen[s.Name] = true
		if s.Min >= s.Max {
			t.Errorf("%s: Min %v >= Max %v", s.Name, s.Min, s.Max)
		}
		if s.Get == nil || s.Set == nil {
			t.Errorf("%s: missing accessor", s.Name)
		}
	}
}

func TestSpecsAccessorsRoundTrip(t *testing.T) {
	var v Vector
	for i, s := range Specs() {
		want := float64(i) + 0.25
		s.Set(&v, want)
		if got := s.Get(&v); got != want {
			t.Errorf("%s: Get after Set = %v, want %v", s.Name, got, want)
		}
	}
}

func TestSpecByName(t *testing.T) {
	s, ok := SpecByName("gridDensity")
	if !ok {
		t.Fatal("SpecByName(gridDensity) not found")
	}
	if s.Min != 4 || s.Max != 30 {
		t.Errorf("gridDensity range = [%v, %v], want [4, 30]", s.Min, s.Max)
	}
	if _, ok := SpecByName("nope"); ok {
		t.Error("SpecByName(nope) should not resolve")
	}
}

func TestVectorClampSaturates(t *testing.T) {
	v := Default()
	v.GridDensity = 999
	v.Chaos = -3
	v.Dimension = 2
	v.Clamp()
	if v.GridDensity != 30 {
		t.Errorf("GridDensity = %v, want 30", v.GridDensity)
	}
	if v.Chaos != 0 {
		t.Errorf("Chaos = %v, want 0", v.Chaos)
	}
	if v.Dimension != 3 {
		t.Errorf("Dimension = %v, want 3", v.Dimension)
	}
}

func TestVectorClampWraps(t *testing.T) {
	v := Default()
	v.Hue = 380
	v.RotXY = 3 * math.Pi
	v.RotXW = -3 * math.Pi
	v.Clamp()
	if math.Abs(v.Hue-20) > 1e-9 {
		t.Errorf("Hue = %v, want 20", v.Hue)
	}
	if math.Abs(v.RotXY-math.Pi) > 1e-9 {
		t.Errorf("RotXY = %v, want pi", v.RotXY)
	}
	if math.Abs(v.RotXW+math.Pi) > 1e-9 {
		t.Errorf("RotXW = %v, want -pi", v.RotXW)
	}
}

func TestVectorClampNonFinite(t *testing.T) {
	v := Default()
	v.Morph = math.NaN()
	v.Speed = math.Inf(1)
	v.Clamp()
	if v.Morph != 0 {
		t.Errorf("NaN Morph = %v, want field minimum 0", v.Morph)
	}
	if v.Speed != 0.1 {
		t.Errorf("Inf Speed = %v, want field minimum 0.1", v.Speed)
	}
}

func TestVectorSanitize(t *testing.T) {
	good := Default()
	v := Default()
	v.Hue = 42
	v.Chaos = math.NaN()
	v.Dimension = math.Inf(-1)
	v.Sanitize(good)
	if v.Hue != 42 {
		t.Errorf("finite Hue was replaced: got %v", v.Hue)
	}
	if v.Chaos != good.Chaos {
		t.Errorf("Chaos = %v, want fallback %v", v.Chaos, good.Chaos)
	}
	if v.Dimension != good.Dimension {
		t.Errorf("Dimension = %v, want fallback %v", v.Dimension, good.Dimension)
	}
}

func TestDefaultWithinRanges(t *testing.T) {
	v := Default()
	before := v
	v.Clamp()
	if v != before {
		t.Error("Default() changed under Clamp, baseline is out of range")
	}
	if v.GridDensity != 12 {
		t.Errorf("GridDensity = %v, want 12", v.GridDensity)
	}
	if v.Hue != 200 {
		t.Errorf("Hue = %v, want 200", v.Hue)
	}
}

func TestRotationThresholdsExcluded(t *testing.T) {
	for _, s := range Specs() {
		isRot := len(s.Name) == 5 && s.Name[:3] == "rot"
		if isRot && s.Threshold != 0 {
			t.Errorf("%s: Threshold = %v, rotation angles must not count toward change magnitude", s.Name, s.Threshold)
		}
		if !isRot && s.Threshold <= 0 {
			t.Errorf("%s: Threshold = %v, want > 0", s.Name, s.Threshold)
		}
	}
}
