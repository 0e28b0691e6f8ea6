package sequence

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/Carmen-Shannon/tessera-go/common"
	"github.com/Carmen-Shannon/tessera-go/engine/field"
)

// State is the sequencer's interaction state.
type State int

const (
	StateIdle State = iota
	StateLocked
	StateSplit
	StateTakeover
)

// String returns the lowercase state name.
//
// Returns:
//   - string: "idle", "locked", "split", or "takeover"
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLocked:
		return "locked"
	case StateSplit:
		return "split"
	case StateTakeover:
		return "takeover"
	default:
		return "idle"
	}
}

// Mode selects the transition a Trigger requests.
type Mode int

const (
	// ModeLock acquires the choreography lock for an element, preempting
	// any lock already held.
	ModeLock Mode = iota
	// ModeSplit moves a completed lock into the split presentation.
	ModeSplit
	// ModeTakeover moves a completed lock into the takeover presentation.
	ModeTakeover
)

// String returns the lowercase mode name.
//
// Returns:
//   - string: "lock", "split", or "takeover"
func (m Mode) String() string {
	switch m {
	case ModeLock:
		return "lock"
	case ModeSplit:
		return "split"
	case ModeTakeover:
		return "takeover"
	default:
		return "lock"
	}
}

var (
	// ErrUnknownProfile is returned by Trigger for a profile key with no
	// registered sequence. The state machine is left unchanged.
	ErrUnknownProfile = errors.New("unknown choreography profile")

	// ErrEntryPending is returned when a split or takeover is requested
	// before the lock's entry sequence has completed.
	ErrEntryPending = errors.New("entry sequence still running")

	// ErrInvalidTransition is returned when a split or takeover is
	// requested without a matching completed lock to transition from.
	ErrInvalidTransition = errors.New("invalid choreography transition")
)

// Sink receives the sequencer's output: timed parameter patches while a
// choreography runs, and an override wipe when it ends. The orchestrator
// satisfies it.
type Sink interface {
	ApplyPatch(field.Patch)
	ClearOverrides()
}

// task is one scheduled step bound to the generation that scheduled it.
type task struct {
	fireAt float64 // seconds on the sequence clock
	step   Step
	gen    uint64
}

// Sequencer is the interaction choreography state machine. Transitions come
// from the host interaction layer (Trigger/Unlock, any goroutine); steps
// fire from Advance on the engine tick goroutine, driven by the frame clock
// rather than host timers, so firing order is deterministic under test.
type Sequencer struct {
	mu       sync.Mutex
	sink     Sink
	profiles map[string]Sequence

	state      State
	element    string
	profileKey string
	entryDone  bool

	generation uint64
	clock      float64
	pending    []task
	remaining  int

	staleCount uint64
}

// Option is a functional option for configuring a Sequencer. Use the With*
// functions to create options applied by New.
type Option func(*Sequencer)

// WithSequence registers a custom choreography profile alongside the
// built-ins, replacing any profile with the same key. The sequence is
// validated by New.
//
// Parameters:
//   - key: the profile key Trigger selects it by
//   - seq: the timed patch list
//
// Returns:
//   - Option: option function to apply
func WithSequence(key string, seq Sequence) Option {
	return func(s *Sequencer) {
		s.profiles[key] = seq
	}
}

// New creates a Sequencer with the built-in focus/split/takeover profiles.
//
// Parameters:
//   - sink: the patch receiver; must not be nil
//   - opts: optional configuration
//
// Returns:
//   - *Sequencer: the sequencer, starting in StateIdle
//   - error: non-nil if sink is nil or a registered sequence is invalid
func New(sink Sink, opts ...Option) (*Sequencer, error) {
	if sink == nil {
		return nil, errors.New("sequence: nil sink")
	}
	s := &Sequencer{
		sink:     sink,
		profiles: builtins(),
	}
	for _, opt := range opts {
		opt(s)
	}
	for key, seq := range s.profiles {
		if _, err := NewSequence(seq...); err != nil {
			return nil, fmt.Errorf("sequence profile %q: %w", key, err)
		}
	}
	return s, nil
}

// Trigger requests a choreography transition for an element.
//
// ModeLock starts the selected sequence and moves to StateLocked from any
// state; a lock already held (by this element or another) is force-unlocked
// first: its pending steps are cancelled atomically and the sink's
// overrides cleared before the new lock schedules anything.
//
// ModeSplit and ModeTakeover require the same element to hold a completed
// lock; they restart the clock with the selected sequence.
//
// Parameters:
//   - elementID: the interactive element requesting the transition
//   - profileKey: the choreography profile to run
//   - mode: the transition to perform
//
// Returns:
//   - error: ErrUnknownProfile, ErrEntryPending, or ErrInvalidTransition;
//     the state machine is unchanged on error
func (s *Sequencer) Trigger(elementID, profileKey string, mode Mode) error {
	if elementID == "" {
		return errors.New("sequence: empty element id")
	}

	s.mu.Lock()
	seq, ok := s.profiles[profileKey]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrUnknownProfile, profileKey)
	}

	switch mode {
	case ModeLock:
		preempted := s.state != StateIdle
		if preempted {
			// Force-unlock the active lock before the new one starts: the
			// generation bump in startLocked cancels its steps, the wipe
			// here removes what it already applied.
			s.sink.ClearOverrides()
		}
		s.startLocked(seq, StateLocked, elementID, profileKey)
		s.mu.Unlock()
		common.Logger().Info("choreography lock", "element", elementID, "profile", profileKey, "preempted", preempted)
		return nil

	case ModeSplit, ModeTakeover:
		if s.state != StateLocked || s.element != elementID {
			state, element := s.state, s.element
			s.mu.Unlock()
			return fmt.Errorf("%w: %s requested by %q while %s holds %q", ErrInvalidTransition, mode, elementID, state, element)
		}
		if !s.entryDone {
			s.mu.Unlock()
			return fmt.Errorf("%w: %s for %q", ErrEntryPending, mode, elementID)
		}
		next := StateSplit
		if mode == ModeTakeover {
			next = StateTakeover
		}
		s.startLocked(seq, next, elementID, profileKey)
		s.entryDone = true // the lock's entry already completed
		s.mu.Unlock()
		common.Logger().Info("choreography mode change", "element", elementID, "mode", mode, "profile", profileKey)
		return nil

	default:
		s.mu.Unlock()
		return fmt.Errorf("sequence: unknown mode %d", int(mode))
	}
}

// startLocked replaces the active sequence under one mutex hold: a single
// generation bump cancels everything pending, then the new steps are
// scheduled on a reset clock. Caller holds the mutex.
func (s *Sequencer) startLocked(seq Sequence, state State, elementID, profileKey string) {
	s.generation++
	s.clock = 0
	s.pending = s.pending[:0]
	for _, step := range seq {
		s.pending = append(s.pending, task{fireAt: step.OffsetMs / 1000, step: step, gen: s.generation})
	}
	s.remaining = len(s.pending)
	s.state = state
	s.element = elementID
	s.profileKey = profileKey
	s.entryDone = len(s.pending) == 0
}

// Unlock cancels any active choreography and returns to StateIdle: one
// generation bump clears the pending steps, then the sink's overrides are
// wiped so parameters return to the pre-lock baseline. Calling it while
// idle is a no-op.
func (s *Sequencer) Unlock() {
	s.mu.Lock()
	if s.state == StateIdle {
		s.mu.Unlock()
		return
	}
	element := s.element
	s.generation++
	s.pending = s.pending[:0]
	s.remaining = 0
	s.state = StateIdle
	s.element = ""
	s.profileKey = ""
	s.entryDone = false
	s.sink.ClearOverrides()
	s.mu.Unlock()
	common.Logger().Info("choreography unlocked", "element", element)
}

// Advance moves the sequence clock forward and fires every step that has
// come due, in order. Runs on the engine tick goroutine; non-positive or
// non-finite dt is ignored.
//
// Parameters:
//   - dt: elapsed seconds since the previous tick
func (s *Sequencer) Advance(dt float64) {
	if !common.IsFinite(dt) || dt <= 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.clock += dt
	for len(s.pending) > 0 && s.pending[0].fireAt <= s.clock {
		t := s.pending[0]
		s.pending = s.pending[1:]
		if t.gen != s.generation {
			s.staleCount++
			common.Logger().Debug("stale choreography step ignored", "label", t.step.Label, "generation", t.gen)
			continue
		}
		s.sink.ApplyPatch(t.step.Patch)
		s.remaining--
		if s.remaining == 0 && s.state == StateLocked {
			s.entryDone = true
		}
		common.Logger().Debug("choreography step", "label", t.step.Label, "offsetMs", t.step.OffsetMs)
	}
}

// State returns the current interaction state.
//
// Returns:
//   - State: the state
func (s *Sequencer) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Element returns the element holding the choreography lock, "" when idle.
//
// Returns:
//   - string: the locked element id
func (s *Sequencer) Element() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.element
}

// EntryDone reports whether the active lock's entry sequence has completed.
//
// Returns:
//   - bool: true once every entry step has fired
func (s *Sequencer) EntryDone() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.entryDone
}

// StaleCount returns how many cancelled steps were caught by the
// generation guard.
//
// Returns:
//   - uint64: the cumulative stale step count
func (s *Sequencer) StaleCount() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.staleCount
}

// ProfileNames returns the registered profile keys in sorted order.
//
// Returns:
//   - []string: the profile keys
func (s *Sequencer) ProfileNames() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.profiles))
	for name := range s.profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
