package sensor

import (
	"context"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/harmonica"

	"github.com/Carmen-Shannon/tessera-go/common"
)

const (
	// springFPS is the fixed internal integration rate of the virtual
	// scroll spring. Flush accumulates real dt and steps the spring at this
	// rate so spring behavior is independent of the engine tick rate.
	springFPS  = 120
	springStep = 1.0 / springFPS

	// maxSpringCatchup caps how much accumulated time one Flush may
	// integrate, so a long stall cannot trigger a burst of spring steps.
	maxSpringCatchup = 0.25

	defaultPointerTau     = 0.080
	defaultVelocityTau    = 0.150
	defaultScrollVelTau   = 0.200
	defaultHoverTau       = 0.250
	defaultWheelStep      = 0.06
	defaultSpringFreq     = 5.0
	defaultSpringDamping  = 1.0
	pointerMargin         = 0.5
	maxWheelDetents       = 50.0
	mouseEnergyFullSpeed  = 2.5
	scrollEnergyFullSpeed = 1.5
)

// Energy holds the normalized activity metrics derived from the smoothed
// channels, each in [0,1].
type Energy struct {
	Mouse  float64
	Scroll float64
	Hover  float64
}

// Snapshot is one tick's view of the smoothed sensor state.
type Snapshot struct {
	Pointer         [2]float64 // normalized position in [0,1]², y down
	PointerVelocity [2]float64 // viewport units per second
	ScrollProgress  float64    // virtual scroll position in [0,1]
	ScrollVelocity  float64    // progress units per second
	HoverCount      int        // regions currently hovered
	Energy          Energy
}

// Aggregator captures raw pointer, wheel, and hover events from the window
// thread and smooths them into a stable Snapshot once per engine tick. Raw
// ingestion only records the latest sample; all smoothing happens in Flush,
// so a burst of input events between ticks costs nothing but a store.
type Aggregator struct {
	mu sync.Mutex

	rawPointer    [2]float64
	rawPointerSet bool
	prevRaw       [2]float64
	pendingWheel  float64
	hovered       map[string]struct{}

	pointer     [2]float64
	pointerInit bool
	velocity    [2]float64
	scrollVel   float64
	hover       float64

	spring      harmonica.Spring
	springPos   float64
	springVel   float64
	springTgt   float64
	springAccum float64

	dropped atomic.Uint64

	pointerTau   float64
	velocityTau  float64
	scrollVelTau float64
	hoverTau     float64
	wheelStep    float64
	springFreq   float64
	springDamp   float64
}

// AggregatorOption is a functional option for configuring an Aggregator.
// Use the With* functions to create options applied by New.
type AggregatorOption func(*Aggregator)

// WithPointerTau sets the pointer position smoothing time constant.
// Values <= 0 keep the default (80 ms).
//
// Parameters:
//   - ms: the time constant in milliseconds
//
// Returns:
//   - AggregatorOption: option function to apply
func WithPointerTau(ms float64) AggregatorOption {
	return func(a *Aggregator) {
		if ms > 0 {
			a.pointerTau = ms / 1000
		}
	}
}

// WithVelocityTau sets the pointer velocity smoothing time constant.
// Values <= 0 keep the default (150 ms).
//
// Parameters:
//   - ms: the time constant in milliseconds
//
// Returns:
//   - AggregatorOption: option function to apply
func WithVelocityTau(ms float64) AggregatorOption {
	return func(a *Aggregator) {
		if ms > 0 {
			a.velocityTau = ms / 1000
		}
	}
}

// WithScrollVelocityTau sets the scroll velocity smoothing time constant.
// Values <= 0 keep the default (200 ms).
//
// Parameters:
//   - ms: the time constant in milliseconds
//
// Returns:
//   - AggregatorOption: option function to apply
func WithScrollVelocityTau(ms float64) AggregatorOption {
	return func(a *Aggregator) {
		if ms > 0 {
			a.scrollVelTau = ms / 1000
		}
	}
}

// WithHoverTau sets the hover presence smoothing time constant.
// Values <= 0 keep the default (250 ms).
//
// Parameters:
//   - ms: the time constant in milliseconds
//
// Returns:
//   - AggregatorOption: option function to apply
func WithHoverTau(ms float64) AggregatorOption {
	return func(a *Aggregator) {
		if ms > 0 {
			a.hoverTau = ms / 1000
		}
	}
}

// WithWheelStep sets how much scroll progress one wheel detent contributes.
// Values <= 0 keep the default (0.06).
//
// Parameters:
//   - step: progress per detent in [0,1] units
//
// Returns:
//   - AggregatorOption: option function to apply
func WithWheelStep(step float64) AggregatorOption {
	return func(a *Aggregator) {
		if step > 0 {
			a.wheelStep = step
		}
	}
}

// WithScrollSpring sets the virtual scroll spring parameters. Damping 1.0
// is critical damping; the default tuning never overshoots.
//
// Parameters:
//   - frequency: angular frequency in rad/s (default 5.0)
//   - damping: damping ratio (default 1.0)
//
// Returns:
//   - AggregatorOption: option function to apply
func WithScrollSpring(frequency, damping float64) AggregatorOption {
	return func(a *Aggregator) {
		if frequency > 0 {
			a.springFreq = frequency
		}
		if damping > 0 {
			a.springDamp = damping
		}
	}
}

// New creates an Aggregator with default smoothing constants.
//
// Parameters:
//   - opts: optional configuration
//
// Returns:
//   - *Aggregator: the aggregator
func New(opts ...AggregatorOption) *Aggregator {
	a := &Aggregator{
		hovered:      map[string]struct{}{},
		pointerTau:   defaultPointerTau,
		velocityTau:  defaultVelocityTau,
		scrollVelTau: defaultScrollVelTau,
		hoverTau:     defaultHoverTau,
		wheelStep:    defaultWheelStep,
		springFreq:   defaultSpringFreq,
		springDamp:   defaultSpringDamping,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.spring = harmonica.NewSpring(harmonica.FPS(springFPS), a.springFreq, a.springDamp)
	return a
}

// IngestPointer records the latest pointer position. Safe to call from the
// window thread; only the raw sample is stored.
//
// Parameters:
//   - x: normalized horizontal position in [0,1], left to right
//   - y: normalized vertical position in [0,1], top down
func (a *Aggregator) IngestPointer(x, y float64) {
	if !common.IsFinite(x) || !common.IsFinite(y) ||
		x < -pointerMargin || x > 1+pointerMargin ||
		y < -pointerMargin || y > 1+pointerMargin {
		a.drop("pointer", x, y)
		return
	}
	a.mu.Lock()
	a.rawPointer = [2]float64{common.Clamp01(x), common.Clamp01(y)}
	a.rawPointerSet = true
	a.mu.Unlock()
}

// IngestWheel records a wheel event. Vertical detents accumulate into the
// virtual scroll target; they are consumed by the next Flush.
//
// Parameters:
//   - dx: horizontal wheel offset (validated, not used for scroll progress)
//   - dy: vertical wheel offset in detents, positive scrolls down
func (a *Aggregator) IngestWheel(dx, dy float64) {
	if !common.IsFinite(dx) || !common.IsFinite(dy) || math.Abs(dy) > maxWheelDetents {
		a.drop("wheel", dx, dy)
		return
	}
	a.mu.Lock()
	a.pendingWheel += dy
	a.mu.Unlock()
}

// IngestHover records a hover-region transition.
//
// Parameters:
//   - id: the hovered region's id; empty ids are dropped
//   - entered: true on enter, false on leave
func (a *Aggregator) IngestHover(id string, entered bool) {
	if id == "" {
		a.drop("hover")
		return
	}
	a.mu.Lock()
	if entered {
		a.hovered[id] = struct{}{}
	} else {
		delete(a.hovered, id)
	}
	a.mu.Unlock()
}

// Flush advances the smoothed state by dt seconds: integrates the scroll
// spring at its fixed internal rate, derives pointer velocity from raw
// position deltas, and damps every channel with its own time constant.
// Called once per engine tick, always from the tick goroutine.
//
// Parameters:
//   - dt: elapsed time in seconds; non-positive or non-finite values are
//     ignored
func (a *Aggregator) Flush(dt float64) {
	if dt <= 0 || !common.IsFinite(dt) {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.pendingWheel != 0 {
		a.springTgt = common.Clamp01(a.springTgt + a.pendingWheel*a.wheelStep)
		a.pendingWheel = 0
	}
	a.springAccum += dt
	if a.springAccum > maxSpringCatchup {
		a.springAccum = maxSpringCatchup
	}
	for a.springAccum >= springStep {
		a.springPos, a.springVel = a.spring.Update(a.springPos, a.springVel, a.springTgt)
		a.springAccum -= springStep
	}

	if a.rawPointerSet {
		if !a.pointerInit {
			// First sample snaps so the pointer does not glide in from the
			// zero corner.
			a.pointer = a.rawPointer
			a.prevRaw = a.rawPointer
			a.pointerInit = true
		}
		rawVel := [2]float64{
			(a.rawPointer[0] - a.prevRaw[0]) / dt,
			(a.rawPointer[1] - a.prevRaw[1]) / dt,
		}
		a.prevRaw = a.rawPointer
		a.pointer[0] = common.Damp(a.pointer[0], a.rawPointer[0], dt, a.pointerTau)
		a.pointer[1] = common.Damp(a.pointer[1], a.rawPointer[1], dt, a.pointerTau)
		a.velocity[0] = common.Damp(a.velocity[0], rawVel[0], dt, a.velocityTau)
		a.velocity[1] = common.Damp(a.velocity[1], rawVel[1], dt, a.velocityTau)
	}

	a.scrollVel = common.Damp(a.scrollVel, a.springVel, dt, a.scrollVelTau)

	presence := 0.0
	if len(a.hovered) > 0 {
		presence = 1
	}
	a.hover = common.Damp(a.hover, presence, dt, a.hoverTau)
}

// Snapshot returns the current smoothed state.
//
// Returns:
//   - Snapshot: the smoothed channels and derived energy metrics
func (a *Aggregator) Snapshot() Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	speed := math.Hypot(a.velocity[0], a.velocity[1])
	return Snapshot{
		Pointer:         a.pointer,
		PointerVelocity: a.velocity,
		ScrollProgress:  common.Clamp01(a.springPos),
		ScrollVelocity:  a.scrollVel,
		HoverCount:      len(a.hovered),
		Energy: Energy{
			Mouse:  common.Clamp01(speed / mouseEnergyFullSpeed),
			Scroll: common.Clamp01(math.Abs(a.scrollVel) / scrollEnergyFullSpeed),
			Hover:  common.Clamp01(a.hover),
		},
	}
}

// DropCount returns how many malformed samples have been rejected.
//
// Returns:
//   - uint64: the cumulative drop count
func (a *Aggregator) DropCount() uint64 {
	return a.dropped.Load()
}

func (a *Aggregator) drop(kind string, vals ...float64) {
	a.dropped.Add(1)
	if l := common.Logger(); l.Enabled(context.Background(), slog.LevelDebug) {
		l.Debug("malformed sensor sample dropped", "kind", kind, "values", vals)
	}
}
