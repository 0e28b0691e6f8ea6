package field

import "testing"

func TestPatchApply(t *testing.T) {
	v := Default()
	wantDensity := v.GridDensity
	p := Patch{Hue: Ref(400), Chaos: Ref(0.5)}
	p.Apply(&v)
	if v.Hue != 40 {
		t.Errorf("Hue = %v, want 40 (wrapped from 400)", v.Hue)
	}
	if v.Chaos != 0.5 {
		t.Errorf("Chaos = %v, want 0.5", v.Chaos)
	}
	if v.GridDensity != wantDensity {
		t.Errorf("GridDensity = %v, untouched field changed", v.GridDensity)
	}
}

func TestPatchFromVector(t *testing.T) {
	v := Default()
	v.Hue = 210
	v.RotZW = 0.4
	p := FromVector(v)

	if got := p.Overrides(); len(got) != 18 {
		t.Fatalf("FromVector set %d fields, want all 18", len(got))
	}
	if p.Impulse != nil {
		t.Error("FromVector must not set Impulse")
	}

	var back Vector
	p.Apply(&back)
	if back != v {
		t.Errorf("round trip = %+v, want %+v", back, v)
	}
}

func TestPatchMerge(t *testing.T) {
	base := Patch{Hue: Ref(10), Morph: Ref(1)}
	over := Patch{Hue: Ref(90), Impulse: Ref(0.8)}
	got := base.Merge(over)
	if got.Hue == nil || *got.Hue != 90 {
		t.Errorf("merged Hue = %v, want 90", got.Hue)
	}
	if got.Morph == nil || *got.Morph != 1 {
		t.Errorf("merged Morph = %v, want 1 from base", got.Morph)
	}
	if got.Impulse == nil || *got.Impulse != 0.8 {
		t.Errorf("merged Impulse = %v, want 0.8", got.Impulse)
	}

	// Merge copies values, mutating the source must not leak through.
	*over.Hue = 270
	if *got.Hue != 90 {
		t.Errorf("merged Hue changed to %v after source mutation", *got.Hue)
	}
}

func TestPatchIsZero(t *testing.T) {
	if !(Patch{}).IsZero() {
		t.Error("empty patch should be zero")
	}
	if (Patch{Speed: Ref(1)}).IsZero() {
		t.Error("patch with Speed should not be zero")
	}
	if (Patch{Impulse: Ref(0)}).IsZero() {
		t.Error("patch with Impulse should not be zero")
	}
}

func TestPatchOverrides(t *testing.T) {
	p := Patch{Hue: Ref(45), ScrollCoupling: Ref(0.2), Impulse: Ref(1)}
	got := p.Overrides()
	if len(got) != 2 {
		t.Fatalf("Overrides() = %v, want 2 entries (Impulse excluded)", got)
	}
	if got[0].Name != "hue" || got[0].Value != 45 {
		t.Errorf("first override = %+v, want hue 45", got[0])
	}
	if got[1].Name != "scrollCoupling" || got[1].Value != 0.2 {
		t.Errorf("second override = %+v, want scrollCoupling 0.2", got[1])
	}
}

func TestPatchSetByName(t *testing.T) {
	var p Patch
	if !p.SetByName("morph", 1.5) {
		t.Fatal("SetByName(morph) failed")
	}
	if p.Morph == nil || *p.Morph != 1.5 {
		t.Errorf("Morph = %v, want 1.5", p.Morph)
	}
	if p.SetByName("impulse", 1) {
		t.Error("SetByName should not resolve non-Spec names")
	}
	if p.SetByName("bogus", 1) {
		t.Error("SetByName resolved an unknown name")
	}
}

func TestRef(t *testing.T) {
	a := Ref(3.5)
	b := Ref(3.5)
	if a == b {
		t.Error("Ref must return distinct pointers")
	}
	if *a != 3.5 {
		t.Errorf("*Ref(3.5) = %v", *a)
	}
}
