package profile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/Carmen-Shannon/tessera-go/engine/field"
)

// Library is a concurrency-safe registry of SectionProfiles keyed by section
// id. A freshly constructed library carries the built-in sections; loading
// from disk replaces entries by name, so designer files can retune built-ins
// without code changes.
type Library struct {
	mu       sync.RWMutex
	profiles map[string]*SectionProfile
}

// LibraryOption is a functional option for configuring a Library.
type LibraryOption func(*Library)

// WithoutBuiltins starts the library empty instead of seeding the built-in
// sections.
//
// Returns:
//   - LibraryOption: option function to apply
func WithoutBuiltins() LibraryOption {
	return func(l *Library) {
		l.profiles = map[string]*SectionProfile{}
	}
}

// NewLibrary constructs a profile library seeded with the built-in sections.
//
// Parameters:
//   - opts: optional configuration
//
// Returns:
//   - *Library: the library
func NewLibrary(opts ...LibraryOption) *Library {
	l := &Library{profiles: builtins()}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Get looks up a profile by section id.
//
// Parameters:
//   - id: the section id
//
// Returns:
//   - *SectionProfile: the profile
//   - bool: false if the id is unknown
func (l *Library) Get(id string) (*SectionProfile, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	p, ok := l.profiles[id]
	return p, ok
}

// Register adds a profile to the library, replacing any existing profile
// with the same name.
//
// Parameters:
//   - p: the validated profile to register
//
// Returns:
//   - error: non-nil if p is nil or unnamed
func (l *Library) Register(p *SectionProfile) error {
	if p == nil || p.Name == "" {
		return &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.profiles[p.Name] = p
	return nil
}

// Names returns the registered section ids, sorted.
//
// Returns:
//   - []string: the section ids
func (l *Library) Names() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	names := make([]string, 0, len(l.profiles))
	for name := range l.profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered profiles.
//
// Returns:
//   - int: the profile count
func (l *Library) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.profiles)
}

type rotationJSON struct {
	XY *float64 `json:"xy,omitempty"`
	XZ *float64 `json:"xz,omitempty"`
	YZ *float64 `json:"yz,omitempty"`
	XW *float64 `json:"xw,omitempty"`
	YW *float64 `json:"yw,omitempty"`
	ZW *float64 `json:"zw,omitempty"`
}

type smoothingJSON struct {
	ColorMs  *float64 `json:"colorMs,omitempty"`
	ShapeMs  *float64 `json:"shapeMs,omitempty"`
	MotionMs *float64 `json:"motionMs,omitempty"`
}

type profileJSON struct {
	Baseline       map[string]float64 `json:"baseline,omitempty"`
	Rotation       *rotationJSON      `json:"rotation,omitempty"`
	Smoothing      *smoothingJSON     `json:"smoothing,omitempty"`
	ThresholdScale *float64           `json:"thresholdScale,omitempty"`
}

func deref(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

func (pj *profileJSON) build(name string) (*SectionProfile, error) {
	var opts []ProfileOption

	if len(pj.Baseline) > 0 {
		var patch field.Patch
		// Iterate sorted so the first reported error is deterministic.
		keys := make([]string, 0, len(pj.Baseline))
		for k := range pj.Baseline {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if !patch.SetByName(k, pj.Baseline[k]) {
				return nil, &ValidationError{Profile: name, Field: k, Value: pj.Baseline[k], Reason: "unknown field"}
			}
		}
		opts = append(opts, WithBaseline(patch))
	}
	if pj.Rotation != nil {
		opts = append(opts, WithRotation(RotationSpeeds{
			XY: deref(pj.Rotation.XY), XZ: deref(pj.Rotation.XZ), YZ: deref(pj.Rotation.YZ),
			XW: deref(pj.Rotation.XW), YW: deref(pj.Rotation.YW), ZW: deref(pj.Rotation.ZW),
		}))
	}
	if pj.Smoothing != nil {
		opts = append(opts, WithSmoothing(Smoothing{
			ColorMs:  deref(pj.Smoothing.ColorMs),
			ShapeMs:  deref(pj.Smoothing.ShapeMs),
			MotionMs: deref(pj.Smoothing.MotionMs),
		}))
	}
	if pj.ThresholdScale != nil {
		opts = append(opts, WithThresholdScale(*pj.ThresholdScale))
	}
	return New(name, opts...)
}

// LoadFile reads one JSON profile file and registers every section it
// defines. The format is an object keyed by section id. Decoding is strict:
// unknown object keys fail the whole file, and no profile from a failing
// file is registered (all-or-nothing).
//
// Parameters:
//   - path: the JSON file to load
//
// Returns:
//   - error: decode or validation failure, wrapped with the file path
func (l *Library) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("profiles %s: %w", path, err)
	}
	defer f.Close()

	dec := json.NewDecoder(f)
	dec.DisallowUnknownFields()
	var file map[string]profileJSON
	if err := dec.Decode(&file); err != nil {
		return fmt.Errorf("profiles %s: %w", path, err)
	}

	built := make([]*SectionProfile, 0, len(file))
	names := make([]string, 0, len(file))
	for name := range file {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		pj := file[name]
		sp, err := pj.build(name)
		if err != nil {
			return fmt.Errorf("profiles %s: %w", path, err)
		}
		built = append(built, sp)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	for _, sp := range built {
		l.profiles[sp.Name] = sp
	}
	return nil
}

// LoadDir loads every .json file in a directory, in name order.
//
// Parameters:
//   - dir: the directory to scan
//
// Returns:
//   - error: the first file that fails to load
func (l *Library) LoadDir(dir string) error {
	paths, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return fmt.Errorf("profiles %s: %w", dir, err)
	}
	sort.Strings(paths)
	for _, path := range paths {
		if err := l.LoadFile(path); err != nil {
			return err
		}
	}
	return nil
}

func mustProfile(name string, opts ...ProfileOption) *SectionProfile {
	sp, err := New(name, opts...)
	if err != nil {
		panic(err)
	}
	return sp
}

// builtins returns the five stock sections. Values are hand-tuned; the test
// suite only pins the ones with documented behavior (hero hue 180,
// platforms hue 160).
func builtins() map[string]*SectionProfile {
	list := []*SectionProfile{
		mustProfile("hero",
			WithBaseline(field.Patch{
				Geometry:        field.Ref(0), // hypercube
				GridDensity:     field.Ref(12),
				Hue:             field.Ref(180),
				Speed:           field.Ref(1.0),
				Chaos:           field.Ref(0.15),
				Intensity:       field.Ref(0.85),
				Saturation:      field.Ref(0.8),
				Dimension:       field.Ref(3.8),
				ChromaticOffset: field.Ref(0.015),
				ScrollCoupling:  field.Ref(0.5),
			}),
			WithRotation(RotationSpeeds{XY: 0.12, XZ: 0.07, YZ: 0.05, XW: 0.22, YW: 0.16, ZW: 0.10}),
		),
		mustProfile("platforms",
			WithBaseline(field.Patch{
				Geometry:    field.Ref(1), // tetrahedron
				GridDensity: field.Ref(10),
				Hue:         field.Ref(160),
				Speed:       field.Ref(0.85),
				Morph:       field.Ref(0.4),
				Dimension:   field.Ref(3.4),
				Intensity:   field.Ref(0.8),
			}),
			WithRotation(RotationSpeeds{XY: 0.08, YZ: 0.04, XW: 0.15, ZW: 0.07}),
		),
		mustProfile("capabilities",
			WithBaseline(field.Patch{
				Geometry:     field.Ref(10), // sphere, level 1
				GridDensity:  field.Ref(16),
				Hue:          field.Ref(280),
				Speed:        field.Ref(0.9),
				Interference: field.Ref(0.25),
				Dimension:    field.Ref(3.6),
			}),
			WithRotation(RotationSpeeds{XZ: 0.1, YZ: 0.06, YW: 0.18}),
			WithSmoothing(Smoothing{ColorMs: 520}),
		),
		mustProfile("showcase",
			WithBaseline(field.Patch{
				Geometry:        field.Ref(21), // fractal, level 2
				GridDensity:     field.Ref(14),
				Hue:             field.Ref(35),
				Speed:           field.Ref(1.2),
				Chaos:           field.Ref(0.4),
				ChromaticOffset: field.Ref(0.03),
				Dimension:       field.Ref(4.0),
			}),
			WithRotation(RotationSpeeds{XY: 0.2, XW: 0.3, YW: 0.24, ZW: 0.12}),
			WithThresholdScale(0.75),
		),
		mustProfile("contact",
			WithBaseline(field.Patch{
				Geometry:    field.Ref(3), // torus
				GridDensity: field.Ref(8),
				Hue:         field.Ref(210),
				Speed:       field.Ref(0.6),
				Intensity:   field.Ref(0.7),
				Dimension:   field.Ref(3.2),
			}),
			WithRotation(RotationSpeeds{XY: 0.05, XW: 0.09}),
			WithSmoothing(Smoothing{MotionMs: 380}),
			WithThresholdScale(1.5),
		),
	}
	out := make(map[string]*SectionProfile, len(list))
	for _, sp := range list {
		out[sp.Name] = sp
	}
	return out
}
