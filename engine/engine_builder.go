package engine

import (
	"time"

	"github.com/Carmen-Shannon/tessera-go/common"
	"github.com/Carmen-Shannon/tessera-go/engine/orchestrator"
	"github.com/Carmen-Shannon/tessera-go/engine/sensor"
	"github.com/Carmen-Shannon/tessera-go/engine/sequence"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithTickRate sets the engine tick rate in ticks per second.
// The pipeline and render callbacks run at this rate.
// Values <= 0 will be treated as the default (60Hz).
//
// Parameters:
//   - fps: target ticks per second (default 60)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithTickRate(fps float64) EngineBuilderOption {
	return func(e *engine) {
		if fps <= 0 {
			fps = defaultTickRate
		}
		e.targetFPS = fps
		e.engineTickRate = time.Duration(float64(time.Second) / fps)
	}
}

// WithAggregator injects the sensor aggregator that surface windows feed
// pointer and wheel events into. Without one, frames carry zero sensor state
// and the orchestrator stage idles at its baseline.
//
// Parameters:
//   - a: the aggregator to drive from window input
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithAggregator(a *sensor.Aggregator) EngineBuilderOption {
	return func(e *engine) {
		e.aggregator = a
	}
}

// WithOrchestrator injects the orchestrator ticked between input flush and
// rendering. Pointer button presses on surface windows are routed to it as
// impulse flashes.
//
// Parameters:
//   - o: the orchestrator to tick each frame
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithOrchestrator(o *orchestrator.Orchestrator) EngineBuilderOption {
	return func(e *engine) {
		e.orch = o
	}
}

// WithSequencer injects the choreography sequencer advanced each tick before
// the orchestrator composes its target.
//
// Parameters:
//   - s: the sequencer to advance each frame
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithSequencer(s *sequence.Sequencer) EngineBuilderOption {
	return func(e *engine) {
		e.sequencer = s
	}
}

// WithClickImpulse sets the impulse strength sent to the orchestrator when a
// pointer button is pressed on a surface window. Negative values are
// ignored; zero disables click flashes.
//
// Parameters:
//   - strength: the impulse strength (default 1)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithClickImpulse(strength float64) EngineBuilderOption {
	return func(e *engine) {
		if strength < 0 {
			return
		}
		e.clickImpulse = strength
	}
}

// WithQuality sets the starting render quality scalar, clamped to [0.5, 1].
// The adaptive controller moves it from there as frame rates are measured.
//
// Parameters:
//   - quality: the initial quality (default 1)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithQuality(quality float64) EngineBuilderOption {
	return func(e *engine) {
		e.quality = common.Clamp(quality, qualityMin, qualityMax)
	}
}

// WithReducedMotion starts the engine in reduced motion mode, as if
// SetReducedMotion(true) had been called before the first tick. Use when the
// host environment asks for calm interfaces.
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithReducedMotion() EngineBuilderOption {
	return func(e *engine) {
		e.reducedMotion = true
	}
}
