package profile

import (
	"errors"
	"math"
	"testing"

	"github.com/Carmen-Shannon/tessera-go/engine/field"
)

func TestNewProfileDefaults(t *testing.T) {
	sp, err := New("plain")
	if err != nil {
		t.Fatalf("New(plain) error: %v", err)
	}
	if sp.Smoothing != DefaultSmoothing() {
		t.Errorf("Smoothing = %+v, want defaults", sp.Smoothing)
	}
	if sp.ThresholdScale != 1 {
		t.Errorf("ThresholdScale = %v, want 1", sp.ThresholdScale)
	}
}

func TestNewProfileRejectsEmptyName(t *testing.T) {
	if _, err := New(""); err == nil {
		t.Fatal("empty name accepted")
	}
}

func TestNewProfileValidation(t *testing.T) {
	tests := []struct {
		name      string
		opts      []ProfileOption
		wantField string
	}{
		{
			"out of range baseline",
			[]ProfileOption{WithBaseline(field.Patch{GridDensity: field.Ref(99)})},
			"gridDensity",
		},
		{
			"hue at wrap point",
			[]ProfileOption{WithBaseline(field.Patch{Hue: field.Ref(360)})},
			"hue",
		},
		{
			"geometry at variant count",
			[]ProfileOption{WithBaseline(field.Patch{Geometry: field.Ref(24)})},
			"geometry",
		},
		{
			"non-finite baseline",
			[]ProfileOption{WithBaseline(field.Patch{Chaos: field.Ref(math.NaN())})},
			"chaos",
		},
		{
			"impulse in baseline",
			[]ProfileOption{WithBaseline(field.Patch{Impulse: field.Ref(1)})},
			"impulse",
		},
		{
			"rotation too fast",
			[]ProfileOption{WithRotation(RotationSpeeds{XW: 5})},
			"rotation.xw",
		},
		{
			"smoothing too slow",
			[]ProfileOption{WithSmoothing(Smoothing{ColorMs: 60000})},
			"smoothing.colorMs",
		},
		{
			"threshold scale out of range",
			[]ProfileOption{WithThresholdScale(9)},
			"thresholdScale",
		},
	}
	for _, tt := range tests {
		_, err := New("p", tt.opts...)
		if err == nil {
			t.Errorf("%s: accepted", tt.name)
			continue
		}
		var ve *ValidationError
		if !errors.As(err, &ve) {
			t.Errorf("%s: error %T, want *ValidationError", tt.name, err)
			continue
		}
		if ve.Field != tt.wantField {
			t.Errorf("%s: rejected field %q, want %q", tt.name, ve.Field, tt.wantField)
		}
	}
}

func TestSmoothingZeroFieldsTakeDefaults(t *testing.T) {
	sp, err := New("p", WithSmoothing(Smoothing{ColorMs: 100}))
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	if sp.Smoothing.ColorMs != 100 {
		t.Errorf("ColorMs = %v, want 100", sp.Smoothing.ColorMs)
	}
	def := DefaultSmoothing()
	if sp.Smoothing.ShapeMs != def.ShapeMs || sp.Smoothing.MotionMs != def.MotionMs {
		t.Errorf("unset constants = %+v, want defaults filled", sp.Smoothing)
	}
}

func TestBaselineVector(t *testing.T) {
	sp, err := New("p", WithBaseline(field.Patch{Hue: field.Ref(90), GridDensity: field.Ref(20)}))
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	v := sp.BaselineVector()
	if v.Hue != 90 {
		t.Errorf("Hue = %v, want 90", v.Hue)
	}
	if v.GridDensity != 20 {
		t.Errorf("GridDensity = %v, want 20", v.GridDensity)
	}
	if v.Speed != field.Default().Speed {
		t.Errorf("unset Speed = %v, want default", v.Speed)
	}
}

func TestTauFor(t *testing.T) {
	sp, err := New("p", WithSmoothing(Smoothing{ColorMs: 400, ShapeMs: 600, MotionMs: 200}))
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	if got := sp.TauFor("hue"); got != 0.4 {
		t.Errorf("TauFor(hue) = %v, want 0.4", got)
	}
	if got := sp.TauFor("speed"); got != 0.2 {
		t.Errorf("TauFor(speed) = %v, want 0.2", got)
	}
	if got := sp.TauFor("geometry"); got != 0.6 {
		t.Errorf("TauFor(geometry) = %v, want 0.6", got)
	}
}

func TestRotationPlanesOrder(t *testing.T) {
	r := RotationSpeeds{XY: 1, XZ: 2, YZ: 3, XW: 4, YW: 5, ZW: 6}
	if got := r.Planes(); got != [6]float64{1, 2, 3, 4, 5, 6} {
		t.Errorf("Planes() = %v", got)
	}
}
