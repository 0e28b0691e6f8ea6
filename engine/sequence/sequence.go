package sequence

import (
	"fmt"

	"github.com/Carmen-Shannon/tessera-go/common"
	"github.com/Carmen-Shannon/tessera-go/engine/field"
)

// Step is one timed patch of a choreography sequence. OffsetMs is measured
// from the moment the sequence starts; patches with equal offsets fire in
// declaration order.
type Step struct {
	OffsetMs float64
	Patch    field.Patch
	Label    string
}

// Sequence is an ordered timed patch list. Offsets must be finite,
// non-negative, and non-decreasing; build one through NewSequence so the
// ordering is checked once at construction.
type Sequence []Step

// NewSequence validates and returns a sequence.
//
// Parameters:
//   - steps: the timed patches, in firing order
//
// Returns:
//   - Sequence: the validated sequence
//   - error: non-nil if any offset is non-finite, negative, or decreasing
func NewSequence(steps ...Step) (Sequence, error) {
	prev := 0.0
	for i, s := range steps {
		if !common.IsFinite(s.OffsetMs) || s.OffsetMs < 0 {
			return nil, fmt.Errorf("sequence step %d (%q): bad offset %v", i, s.Label, s.OffsetMs)
		}
		if s.OffsetMs < prev {
			return nil, fmt.Errorf("sequence step %d (%q): offset %v decreases below %v", i, s.Label, s.OffsetMs, prev)
		}
		prev = s.OffsetMs
	}
	return Sequence(steps), nil
}

// DurationMs returns the offset of the final step, 0 for an empty sequence.
//
// Returns:
//   - float64: the sequence length in milliseconds
func (s Sequence) DurationMs() float64 {
	if len(s) == 0 {
		return 0
	}
	return s[len(s)-1].OffsetMs
}

func mustSequence(steps ...Step) Sequence {
	seq, err := NewSequence(steps...)
	if err != nil {
		panic(err)
	}
	return seq
}

// builtins returns the stock choreography profiles. Each stays within
// 600 ms so a lock settles inside two idle refresh windows.
func builtins() map[string]Sequence {
	return map[string]Sequence{
		"focus": mustSequence(
			Step{OffsetMs: 0, Label: "flash", Patch: field.Patch{
				Impulse:         field.Ref(0.6),
				ChromaticOffset: field.Ref(0.035),
			}},
			Step{OffsetMs: 160, Label: "calm", Patch: field.Patch{
				Intensity: field.Ref(0.95),
				Chaos:     field.Ref(0.05),
			}},
			Step{OffsetMs: 480, Label: "settle", Patch: field.Patch{
				Morph:        field.Ref(0.2),
				Interference: field.Ref(0.05),
			}},
		),
		"split": mustSequence(
			Step{OffsetMs: 0, Label: "shear", Patch: field.Patch{
				Impulse:         field.Ref(0.35),
				ChromaticOffset: field.Ref(0.06),
			}},
			Step{OffsetMs: 220, Label: "weave", Patch: field.Patch{
				Interference: field.Ref(0.45),
				Saturation:   field.Ref(0.9),
			}},
			Step{OffsetMs: 520, Label: "hold", Patch: field.Patch{
				Chaos: field.Ref(0.25),
			}},
		),
		"takeover": mustSequence(
			Step{OffsetMs: 0, Label: "surge", Patch: field.Patch{
				Impulse:   field.Ref(1.0),
				Intensity: field.Ref(1.0),
			}},
			Step{OffsetMs: 240, Label: "bloom", Patch: field.Patch{
				GridDensity: field.Ref(18),
				Morph:       field.Ref(1.2),
			}},
			Step{OffsetMs: 600, Label: "crest", Patch: field.Patch{
				Dimension:  field.Ref(4.2),
				Saturation: field.Ref(0.95),
			}},
		),
	}
}
