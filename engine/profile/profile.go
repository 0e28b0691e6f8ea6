package profile

import (
	"fmt"
	"math"

	"github.com/Carmen-Shannon/tessera-go/common"
	"github.com/Carmen-Shannon/tessera-go/engine/field"
)

// maxRotationSpeed bounds each plane's angular velocity in radians per
// second. Faster spins alias badly at 60 Hz.
const maxRotationSpeed = 2.0

// maxSmoothingMs bounds convergence time constants; anything slower reads
// as a stuck background.
const maxSmoothingMs = 5000.0

// ValidationError reports a single profile field that failed validation.
// Profiles are rejected whole at construction; nothing is silently clamped.
type ValidationError struct {
	Profile string
	Field   string
	Value   float64
	Reason  string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("profile %q: field %q = %v: %s", e.Profile, e.Field, e.Value, e.Reason)
}

// RotationSpeeds gives the per-plane angular velocities in radians per
// second. The orchestrator integrates them each tick, scaled by the live
// speed multiplier, in the fixed plane order XY, XZ, YZ, XW, YW, ZW.
type RotationSpeeds struct {
	XY, XZ, YZ float64
	XW, YW, ZW float64
}

var planeNames = [6]string{"xy", "xz", "yz", "xw", "yw", "zw"}

// Planes returns the six speeds in the fixed plane order.
//
// Returns:
//   - [6]float64: XY, XZ, YZ, XW, YW, ZW
func (r RotationSpeeds) Planes() [6]float64 {
	return [6]float64{r.XY, r.XZ, r.YZ, r.XW, r.YW, r.ZW}
}

// Smoothing carries the per-concern exponential time constants, in
// milliseconds, used when rendered state converges toward this section's
// target. Zero fields take the library defaults at construction.
type Smoothing struct {
	ColorMs  float64 // hue, intensity, saturation
	ShapeMs  float64 // geometry, density, morph, dimension, chromatic, interference
	MotionMs float64 // speed, chaos, scroll coupling
}

// DefaultSmoothing returns the library default time constants.
//
// Returns:
//   - Smoothing: color 420 ms, shape 600 ms, motion 260 ms
func DefaultSmoothing() Smoothing {
	return Smoothing{ColorMs: 420, ShapeMs: 600, MotionMs: 260}
}

// SectionProfile is a validated preset of baseline parameter values for one
// content region, plus the section's rotation speeds, smoothing constants,
// and broadcast threshold scale. Construction rejects unknown fields and
// out-of-range values; a SectionProfile that exists is always safe to apply.
type SectionProfile struct {
	Name      string
	Baseline  field.Patch
	Rotation  RotationSpeeds
	Smoothing Smoothing
	// ThresholdScale multiplies the broadcast change thresholds while this
	// section is active: >1 makes the section calmer, <1 chattier.
	ThresholdScale float64
}

// ProfileOption is a functional option for configuring a SectionProfile.
// Use the With* functions to create options applied by New.
type ProfileOption func(*SectionProfile)

// WithBaseline sets the sparse baseline patch applied over the neutral
// default vector.
//
// Parameters:
//   - p: the baseline overrides
//
// Returns:
//   - ProfileOption: option function to apply
func WithBaseline(p field.Patch) ProfileOption {
	return func(sp *SectionProfile) {
		sp.Baseline = p
	}
}

// WithRotation sets the per-plane rotation speeds.
//
// Parameters:
//   - r: the six plane speeds in radians per second
//
// Returns:
//   - ProfileOption: option function to apply
func WithRotation(r RotationSpeeds) ProfileOption {
	return func(sp *SectionProfile) {
		sp.Rotation = r
	}
}

// WithSmoothing sets the section's convergence time constants. Zero fields
// keep the library defaults.
//
// Parameters:
//   - s: the time constants in milliseconds
//
// Returns:
//   - ProfileOption: option function to apply
func WithSmoothing(s Smoothing) ProfileOption {
	return func(sp *SectionProfile) {
		sp.Smoothing = s
	}
}

// WithThresholdScale sets the broadcast threshold multiplier.
//
// Parameters:
//   - scale: the multiplier, validated to [0.25, 4]
//
// Returns:
//   - ProfileOption: option function to apply
func WithThresholdScale(scale float64) ProfileOption {
	return func(sp *SectionProfile) {
		sp.ThresholdScale = scale
	}
}

// New constructs and validates a SectionProfile.
//
// Parameters:
//   - name: the content-region id the profile is keyed by
//   - opts: optional configuration
//
// Returns:
//   - *SectionProfile: the validated profile
//   - error: a *ValidationError describing the first rejected field
func New(name string, opts ...ProfileOption) (*SectionProfile, error) {
	if name == "" {
		return nil, &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	sp := &SectionProfile{
		Name:           name,
		Smoothing:      DefaultSmoothing(),
		ThresholdScale: 1,
	}
	for _, opt := range opts {
		opt(sp)
	}
	if err := sp.validate(); err != nil {
		return nil, err
	}
	return sp, nil
}

func (sp *SectionProfile) validate() error {
	for _, ov := range sp.Baseline.Overrides() {
		s, _ := field.SpecByName(ov.Name)
		if !common.IsFinite(ov.Value) {
			return &ValidationError{sp.Name, ov.Name, ov.Value, "not finite"}
		}
		if ov.Value < s.Min || ov.Value > s.Max {
			return &ValidationError{sp.Name, ov.Name, ov.Value, fmt.Sprintf("outside [%v, %v]", s.Min, s.Max)}
		}
		// Wrapping selector fields have half-open ranges; the top value
		// would silently land somewhere else.
		if (ov.Name == "hue" || ov.Name == "geometry") && ov.Value >= s.Max {
			return &ValidationError{sp.Name, ov.Name, ov.Value, fmt.Sprintf("must be below %v", s.Max)}
		}
	}
	if sp.Baseline.Impulse != nil {
		return &ValidationError{sp.Name, "impulse", *sp.Baseline.Impulse, "not a baseline field"}
	}

	for i, v := range sp.Rotation.Planes() {
		if !common.IsFinite(v) || math.Abs(v) > maxRotationSpeed {
			return &ValidationError{sp.Name, "rotation." + planeNames[i], v, fmt.Sprintf("outside [%v, %v]", -maxRotationSpeed, maxRotationSpeed)}
		}
	}

	sm := &sp.Smoothing
	def := DefaultSmoothing()
	if sm.ColorMs == 0 {
		sm.ColorMs = def.ColorMs
	}
	if sm.ShapeMs == 0 {
		sm.ShapeMs = def.ShapeMs
	}
	if sm.MotionMs == 0 {
		sm.MotionMs = def.MotionMs
	}
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"smoothing.colorMs", sm.ColorMs},
		{"smoothing.shapeMs", sm.ShapeMs},
		{"smoothing.motionMs", sm.MotionMs},
	} {
		if !common.IsFinite(f.v) || f.v < 0 || f.v > maxSmoothingMs {
			return &ValidationError{sp.Name, f.name, f.v, fmt.Sprintf("outside [0, %v]", maxSmoothingMs)}
		}
	}

	if sp.ThresholdScale == 0 {
		sp.ThresholdScale = 1
	}
	if !common.IsFinite(sp.ThresholdScale) || sp.ThresholdScale < 0.25 || sp.ThresholdScale > 4 {
		return &ValidationError{sp.Name, "thresholdScale", sp.ThresholdScale, "outside [0.25, 4]"}
	}
	return nil
}

// BaselineVector materializes the profile's baseline over the neutral
// default vector.
//
// Returns:
//   - field.Vector: the section's full baseline state
func (sp *SectionProfile) BaselineVector() field.Vector {
	v := field.Default()
	sp.Baseline.Apply(&v)
	return v
}

// TauFor returns the section's convergence time constant for a named field,
// in seconds.
//
// Parameters:
//   - name: the field's Spec name
//
// Returns:
//   - float64: the time constant in seconds
func (sp *SectionProfile) TauFor(name string) float64 {
	switch name {
	case "hue", "intensity", "saturation":
		return sp.Smoothing.ColorMs / 1000
	case "speed", "chaos", "scrollCoupling":
		return sp.Smoothing.MotionMs / 1000
	default:
		return sp.Smoothing.ShapeMs / 1000
	}
}
