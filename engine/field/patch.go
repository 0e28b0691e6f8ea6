package field

// Patch is a sparse partial Vector: nil fields are left untouched when the
// patch is applied. Choreography sequences and renderer parameter updates are
// expressed as patches so a step can move three fields without restating the
// other fifteen.
type Patch struct {
	Geometry        *float64
	GridDensity     *float64
	Morph           *float64
	Chaos           *float64
	Speed           *float64
	Hue             *float64
	Intensity       *float64
	Saturation      *float64
	Dimension       *float64
	RotXY           *float64
	RotXZ           *float64
	RotYZ           *float64
	RotXW           *float64
	RotYW           *float64
	RotZW           *float64
	ChromaticOffset *float64
	Interference    *float64
	ScrollCoupling  *float64

	// Impulse is a one-shot flash strength forwarded to renderers; it is not
	// part of the Vector and decays on its own (×0.9 per frame).
	Impulse *float64
}

// Ref returns a pointer to v, for building Patch literals inline.
//
// Parameters:
//   - v: the value to take the address of
//
// Returns:
//   - *float64: a pointer to a copy of v
func Ref(v float64) *float64 {
	return &v
}

// fields pairs each Patch pointer with the Vector setter it overrides,
// in Spec order.
func (p *Patch) fields() []*float64 {
	return []*float64{
		p.Geometry, p.GridDensity, p.Morph, p.Chaos, p.Speed, p.Hue,
		p.Intensity, p.Saturation, p.Dimension,
		p.RotXY, p.RotXZ, p.RotYZ, p.RotXW, p.RotYW, p.RotZW,
		p.ChromaticOffset, p.Interference, p.ScrollCoupling,
	}
}

// slots returns addressable pointers to the patch's field pointers, in Spec
// order, for name-driven assignment.
func (p *Patch) slots() []**float64 {
	return []**float64{
		&p.Geometry, &p.GridDensity, &p.Morph, &p.Chaos, &p.Speed, &p.Hue,
		&p.Intensity, &p.Saturation, &p.Dimension,
		&p.RotXY, &p.RotXZ, &p.RotYZ, &p.RotXW, &p.RotYW, &p.RotZW,
		&p.ChromaticOffset, &p.Interference, &p.ScrollCoupling,
	}
}

// FromVector captures every parameter of v as an explicit override. Use it to
// hand a fully composed state to a consumer that takes sparse patches, such
// as a layer renderer replaying a published state snapshot. Impulse stays
// nil; it is not a Vector field.
//
// Parameters:
//   - v: the vector to convert
//
// Returns:
//   - Patch: a patch overriding all eighteen parameters
func FromVector(v Vector) Patch {
	var p Patch
	dst := p.slots()
	for i, s := range specs {
		val := s.Get(&v)
		*dst[i] = &val
	}
	return p
}

// Override is one set field of a Patch, paired with its Spec name.
type Override struct {
	Name  string
	Value float64
}

// Overrides lists the fields the patch sets, in Spec order. Impulse is not
// included; it is not a Vector field.
//
// Returns:
//   - []Override: one entry per non-nil patch field
func (p Patch) Overrides() []Override {
	var out []Override
	for i, ptr := range p.fields() {
		if ptr != nil {
			out = append(out, Override{Name: specs[i].Name, Value: *ptr})
		}
	}
	return out
}

// SetByName sets the named field, resolving the name through the Spec table.
//
// Parameters:
//   - name: the field's lowerCamel Spec name, e.g. "gridDensity"
//   - v: the value to set
//
// Returns:
//   - bool: false if no field has that name
func (p *Patch) SetByName(name string, v float64) bool {
	for i, s := range specs {
		if s.Name == name {
			val := v
			*p.slots()[i] = &val
			return true
		}
	}
	return false
}

// Apply shallow-merges the patch into v: every non-nil patch field replaces
// the corresponding vector field. The result is clamped.
//
// Parameters:
//   - v: the vector to merge into
func (p Patch) Apply(v *Vector) {
	for i, ptr := range p.fields() {
		if ptr != nil {
			specs[i].Set(v, *ptr)
		}
	}
	v.Clamp()
}

// Merge overlays other onto p: non-nil fields of other win. Later steps of a
// choreography sequence override earlier ones field by field.
//
// Parameters:
//   - other: the patch whose fields take precedence
//
// Returns:
//   - Patch: the combined patch
func (p Patch) Merge(other Patch) Patch {
	out := p
	dst := out.slots()
	for i, ptr := range other.fields() {
		if ptr != nil {
			val := *ptr
			*dst[i] = &val
		}
	}
	if other.Impulse != nil {
		val := *other.Impulse
		out.Impulse = &val
	}
	return out
}

// IsZero reports whether the patch overrides nothing.
//
// Returns:
//   - bool: true if every field, including Impulse, is nil
func (p Patch) IsZero() bool {
	for _, ptr := range p.fields() {
		if ptr != nil {
			return false
		}
	}
	return p.Impulse == nil
}
