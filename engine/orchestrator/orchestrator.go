package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"

	"github.com/Carmen-Shannon/tessera-go/common"
	"github.com/Carmen-Shannon/tessera-go/engine/field"
	"github.com/Carmen-Shannon/tessera-go/engine/profile"
	"github.com/Carmen-Shannon/tessera-go/engine/sensor"
)

// ErrUnknownSection is returned when a section transition names an id the
// profile library does not contain. The active profile is left unchanged.
var ErrUnknownSection = errors.New("unknown section")

const (
	defaultDt      = 1.0 / 60
	maxDt          = 0.25
	defaultHintTau = 0.300

	// Two-speed broadcast policy: significant changes dispatch on a
	// shrinking minimum spacing, everything else waits for the idle
	// refresh ceiling.
	minSpacingStart = 0.048
	minSpacingDecay = 0.75
	minSpacingFloor = 0.016
	idleCeiling     = 0.260

	maxImpulse = 1.5
)

// Multipliers are the bounded sensor-derived factors applied to the section
// baseline each tick.
type Multipliers struct {
	MouseActivity float64 // [0.85, 1.45]
	ScrollEnergy  float64 // [0.90, 1.60]
	HoverLift     float64 // [1.00, 1.25]
}

// Context carries the non-parameter situation attached to each payload.
type Context struct {
	SectionID      string
	ScrollProgress float64
	Energy         sensor.Energy
}

// Payload is one published state event: the rendered vector snapshot plus
// the multipliers and context it was derived under.
type Payload struct {
	State       field.Vector
	Multipliers Multipliers
	Context     Context
}

// Hint is an externally supplied choreography signal blended into the
// target through its own smoothed sub-state. HueShift and MorphBias only
// act in proportion to Energy, so a zero-energy hint is inert regardless of
// its other fields.
type Hint struct {
	Energy    float64 // [0, 1]
	HueShift  float64 // degrees, [-180, 180]
	MorphBias float64 // [-1, 1]
}

// Orchestrator combines the active section baseline, smoothed sensor
// energies, external hints, and sequencer overrides into a target vector,
// converges the rendered state toward it, and publishes change events under
// the two-speed broadcast policy. All mutation happens on the engine tick
// goroutine; the cross-thread entry points only store inputs under the
// mutex.
type Orchestrator struct {
	mu      sync.Mutex
	library *profile.Library
	active  *profile.SectionProfile

	target field.Vector
	state  field.Vector

	rawHint   Hint
	hint      Hint
	hintTau   float64
	hintDrops uint64

	override field.Patch
	impulse  float64

	reducedMotion bool

	multipliers Multipliers
	lastSensor  sensor.Snapshot

	bus            *Bus
	lastDispatched field.Vector
	dispatchedOnce bool
	sinceDispatch  float64
	minSpacing     float64
}

// OrchestratorOption is a functional option for configuring an
// Orchestrator. Use the With* functions to create options applied by New.
type OrchestratorOption func(*Orchestrator)

// WithInitialSection sets the section active at construction. Unknown ids
// are ignored and the neutral default baseline is kept.
//
// Parameters:
//   - id: the section id
//
// Returns:
//   - OrchestratorOption: option function to apply
func WithInitialSection(id string) OrchestratorOption {
	return func(o *Orchestrator) {
		if sp, ok := o.library.Get(id); ok {
			o.active = sp
		}
	}
}

// WithHintTau sets the hint sub-state smoothing time constant.
// Values <= 0 keep the default (300 ms).
//
// Parameters:
//   - ms: the time constant in milliseconds
//
// Returns:
//   - OrchestratorOption: option function to apply
func WithHintTau(ms float64) OrchestratorOption {
	return func(o *Orchestrator) {
		if ms > 0 {
			o.hintTau = ms / 1000
		}
	}
}

// New creates an Orchestrator bound to a profile library.
//
// Parameters:
//   - library: the section profile library; must not be nil
//   - opts: optional configuration
//
// Returns:
//   - *Orchestrator: the orchestrator
//   - error: non-nil if library is nil
func New(library *profile.Library, opts ...OrchestratorOption) (*Orchestrator, error) {
	if library == nil {
		return nil, errors.New("orchestrator: nil profile library")
	}
	neutral, err := profile.New("default")
	if err != nil {
		return nil, err
	}
	o := &Orchestrator{
		library:    library,
		active:     neutral,
		hintTau:    defaultHintTau,
		bus:        NewBus(),
		minSpacing: minSpacingStart,
	}
	for _, opt := range opts {
		opt(o)
	}
	o.state = o.active.BaselineVector()
	o.target = o.state
	return o, nil
}

// Bus returns the orchestrator's broadcast bus.
//
// Returns:
//   - *Bus: the bus payloads are published on
func (o *Orchestrator) Bus() *Bus {
	return o.bus
}

// TransitionToSection swaps the active section profile. The rendered state
// is not touched; it animates toward the new baseline over the following
// ticks.
//
// Parameters:
//   - id: the section id to activate
//
// Returns:
//   - error: wraps ErrUnknownSection if the id is not in the library; the
//     active profile is unchanged on error
func (o *Orchestrator) TransitionToSection(id string) error {
	sp, ok := o.library.Get(id)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownSection, id)
	}
	o.mu.Lock()
	o.active = sp
	o.mu.Unlock()
	common.Logger().Info("section transition", "section", id)
	return nil
}

// Section returns the active section id.
//
// Returns:
//   - string: the active profile name
func (o *Orchestrator) Section() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.active.Name
}

// IngestHint stores an external choreography hint. Non-finite or
// out-of-range hints are dropped and never reach the target.
//
// Parameters:
//   - h: the hint to ingest
func (o *Orchestrator) IngestHint(h Hint) {
	if !common.IsFinite(h.Energy) || h.Energy < 0 || h.Energy > 1 ||
		!common.IsFinite(h.HueShift) || math.Abs(h.HueShift) > 180 ||
		!common.IsFinite(h.MorphBias) || math.Abs(h.MorphBias) > 1 {
		o.mu.Lock()
		o.hintDrops++
		o.mu.Unlock()
		if l := common.Logger(); l.Enabled(context.Background(), slog.LevelDebug) {
			l.Debug("malformed hint dropped", "hint", fmt.Sprintf("%+v", h))
		}
		return
	}
	o.mu.Lock()
	o.rawHint = h
	o.mu.Unlock()
}

// HintDropCount returns how many malformed hints have been rejected.
//
// Returns:
//   - uint64: the cumulative drop count
func (o *Orchestrator) HintDropCount() uint64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.hintDrops
}

// ApplyPatch merges a sequencer override into the override layer. Override
// fields replace the corresponding target fields every tick until cleared.
// A patch impulse is captured for the renderers instead of the vector.
//
// Parameters:
//   - p: the override patch
func (o *Orchestrator) ApplyPatch(p field.Patch) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.override = o.override.Merge(p)
	if p.Impulse != nil {
		o.impulse = common.Clamp(*p.Impulse, 0, maxImpulse)
	}
	// The override layer only holds vector fields; the impulse lives in its
	// own slot until a renderer takes it.
	o.override.Impulse = nil
}

// ClearOverrides removes every override field. The next tick's target is
// derived purely from the profile baseline again, with zero residual.
func (o *Orchestrator) ClearOverrides() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.override = field.Patch{}
}

// SetReducedMotion pins the sensor-derived multipliers at 1 so the field
// animates at the profile baseline regardless of input energy, and stops the
// scroll energy from boosting chaos. Hue drift and hint blending still
// apply; they shift color, not motion.
//
// Parameters:
//   - enabled: true to pin multipliers, false to restore reactive behavior
func (o *Orchestrator) SetReducedMotion(enabled bool) {
	o.mu.Lock()
	o.reducedMotion = enabled
	o.mu.Unlock()
}

// ReducedMotion reports whether the reduced motion pin is active.
//
// Returns:
//   - bool: true if multipliers are pinned at 1
func (o *Orchestrator) ReducedMotion() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.reducedMotion
}

// TakeImpulse returns the pending one-shot impulse and clears it.
//
// Returns:
//   - float64: the impulse strength in [0, 1.5], 0 if none pending
func (o *Orchestrator) TakeImpulse() float64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	v := o.impulse
	o.impulse = 0
	return v
}

// Reset snaps state and target to the active section baseline, discarding
// all smoothing history. The only discontinuous jump the orchestrator
// allows.
func (o *Orchestrator) Reset() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.state = o.active.BaselineVector()
	o.target = o.state
	o.dispatchedOnce = false
	o.minSpacing = minSpacingStart
	o.sinceDispatch = 0
}

// Tick advances the orchestrator one frame: recomputes the target from the
// section baseline, sensor energies, the smoothed hint sub-state, and any
// override patch, integrates the rotation planes, and converges the
// rendered state toward the target with the section's time constants.
//
// Parameters:
//   - dt: elapsed seconds; out-of-range values are replaced by the default
//     tick interval
//   - snap: the sensor snapshot flushed this tick
func (o *Orchestrator) Tick(dt float64, snap sensor.Snapshot) {
	if !common.IsFinite(dt) || dt <= 0 || dt > maxDt {
		dt = defaultDt
	}
	o.mu.Lock()
	defer o.mu.Unlock()

	o.lastSensor = snap

	o.hint.Energy = common.Damp(o.hint.Energy, o.rawHint.Energy, dt, o.hintTau)
	o.hint.HueShift = common.Damp(o.hint.HueShift, o.rawHint.HueShift, dt, o.hintTau)
	o.hint.MorphBias = common.Damp(o.hint.MorphBias, o.rawHint.MorphBias, dt, o.hintTau)

	m := Multipliers{
		MouseActivity: 0.85 + 0.60*snap.Energy.Mouse,
		ScrollEnergy:  0.90 + 0.70*snap.Energy.Scroll,
		HoverLift:     1.00 + 0.25*snap.Energy.Hover,
	}
	if o.reducedMotion {
		m = Multipliers{MouseActivity: 1, ScrollEnergy: 1, HoverLift: 1}
	}
	o.multipliers = m

	base := o.active.BaselineVector()
	t := base
	t.Speed = base.Speed * m.MouseActivity * m.ScrollEnergy
	t.Chaos = base.Chaos
	if !o.reducedMotion {
		t.Chaos += 0.35 * snap.Energy.Scroll
	}
	t.Intensity = base.Intensity * m.HoverLift
	t.Hue = base.Hue + 12*snap.ScrollProgress + o.hint.HueShift*o.hint.Energy
	t.Morph = base.Morph + o.hint.Energy*(0.25+0.5*o.hint.MorphBias)

	// Rotation integrates rather than converges: the angles advance by the
	// profile's plane speeds scaled by the live speed multiplier, and the
	// target mirrors the state so the damping below leaves them alone. A
	// plane pinned by an override stops free-running and converges to the
	// pinned angle instead.
	rotMul := m.MouseActivity * m.ScrollEnergy
	planes := o.active.Rotation.Planes()
	angles := [6]*float64{&o.state.RotXY, &o.state.RotXZ, &o.state.RotYZ, &o.state.RotXW, &o.state.RotYW, &o.state.RotZW}
	pinned := [6]*float64{o.override.RotXY, o.override.RotXZ, o.override.RotYZ, o.override.RotXW, o.override.RotYW, o.override.RotZW}
	for i, a := range angles {
		if pinned[i] == nil {
			*a = common.WrapAngle(*a + planes[i]*rotMul*dt)
		}
	}
	t.RotXY, t.RotXZ, t.RotYZ = o.state.RotXY, o.state.RotXZ, o.state.RotYZ
	t.RotXW, t.RotYW, t.RotZW = o.state.RotXW, o.state.RotYW, o.state.RotZW

	if !o.override.IsZero() {
		o.override.Apply(&t)
	}
	t.Clamp()
	o.target = t

	for _, s := range field.Specs() {
		tau := o.active.TauFor(s.Name)
		cur, tgt := s.Get(&o.state), s.Get(&o.target)
		switch {
		case s.Name == "hue":
			d := common.HueDelta(cur, tgt)
			s.Set(&o.state, common.WrapHue(cur+d*common.DampFactor(dt, tau)))
		case s.Wraps:
			// Rotation planes: the target mirrors the integrated state, so
			// this is a no-op unless an override pins the angle.
			d := common.AngleDelta(cur, tgt)
			s.Set(&o.state, common.WrapAngle(cur+d*common.DampFactor(dt, tau)))
		default:
			s.Set(&o.state, common.Damp(cur, tgt, dt, tau))
		}
	}
	o.state.Clamp()
}

// State returns a copy of the rendered state vector.
//
// Returns:
//   - field.Vector: the current state
func (o *Orchestrator) State() field.Vector {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Target returns a copy of the current target vector.
//
// Returns:
//   - field.Vector: the current target
func (o *Orchestrator) Target() field.Vector {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.target
}

// CurrentMultipliers returns the multipliers computed by the last Tick.
//
// Returns:
//   - Multipliers: the sensor-derived factors
func (o *Orchestrator) CurrentMultipliers() Multipliers {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.multipliers
}

// changeMagnitude is the normalized distance between the current state and
// the last dispatched state: the max over fields of |delta| / threshold.
// Fields with threshold 0 (the rotation angles) never count. Caller holds
// the mutex.
func (o *Orchestrator) changeMagnitude() float64 {
	if !o.dispatchedOnce {
		return math.Inf(1)
	}
	scale := o.active.ThresholdScale
	mag := 0.0
	for _, s := range field.Specs() {
		if s.Threshold <= 0 {
			continue
		}
		var d float64
		if s.Name == "hue" {
			d = math.Abs(common.HueDelta(s.Get(&o.lastDispatched), s.Get(&o.state)))
		} else {
			d = math.Abs(s.Get(&o.state) - s.Get(&o.lastDispatched))
		}
		if m := d / (s.Threshold * scale); m > mag {
			mag = m
		}
	}
	return mag
}

// Broadcast applies the two-speed dispatch policy and publishes a payload
// if it fires. Called once per tick after Tick.
//
// Significant changes (normalized magnitude >= 1) dispatch once the current
// minimum spacing has elapsed; each consecutive significant dispatch
// shrinks the spacing by 25% down to the floor, so sustained motion streams
// at up to 60 Hz. Sub-threshold states dispatch only at the idle refresh
// ceiling, which also resets the spacing.
//
// Parameters:
//   - dt: elapsed seconds, same value given to Tick
//
// Returns:
//   - bool: true if a payload was published
func (o *Orchestrator) Broadcast(dt float64) bool {
	if !common.IsFinite(dt) || dt < 0 {
		dt = defaultDt
	}
	o.mu.Lock()
	defer o.mu.Unlock()

	o.sinceDispatch += dt
	mag := o.changeMagnitude()
	switch {
	case mag >= 1 && o.sinceDispatch >= o.minSpacing:
		o.dispatchLocked()
		o.minSpacing = math.Max(o.minSpacing*minSpacingDecay, minSpacingFloor)
		return true
	case mag < 1 && o.sinceDispatch >= idleCeiling:
		o.dispatchLocked()
		o.minSpacing = minSpacingStart
		return true
	default:
		return false
	}
}

func (o *Orchestrator) dispatchLocked() {
	p := Payload{
		State:       o.state,
		Multipliers: o.multipliers,
		Context: Context{
			SectionID:      o.active.Name,
			ScrollProgress: o.lastSensor.ScrollProgress,
			Energy:         o.lastSensor.Energy,
		},
	}
	o.bus.Publish(p)
	o.lastDispatched = o.state
	o.dispatchedOnce = true
	o.sinceDispatch = 0
}
