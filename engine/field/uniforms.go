package field

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"
)

// UniformsSource is the canonical WGSL definition of the FieldUniforms
// struct. Renderers prepend it to their shader body so the binding layout
// can never drift from the Go struct below.
//
//go:embed assets/field_uniforms.wgsl
var UniformsSource string

// Uniforms is the GPU-aligned representation of one frame of field state.
// Matches the WGSL FieldUniforms struct layout exactly (see UniformsSource).
// Size: 112 bytes (WGSL uniform aligned).
type Uniforms struct {
	Resolution      [2]float32 // offset   0: surface size in pixels
	Pointer         [2]float32 // offset   8: normalized pointer position, y down
	RotSpatial      [3]float32 // offset  16: XY, XZ, YZ plane angles in radians
	Time            float32    // offset  28: seconds since the surface started
	RotHyper        [3]float32 // offset  32: XW, YW, ZW plane angles in radians
	Geometry        float32    // offset  44: resolved variant index in [0, 24)
	GridDensity     float32    // offset  48
	Morph           float32    // offset  52
	Chaos           float32    // offset  56
	Speed           float32    // offset  60
	Hue             float32    // offset  64: degrees
	Intensity       float32    // offset  68
	Saturation      float32    // offset  72
	Dimension       float32    // offset  76
	ChromaticOffset float32    // offset  80
	Interference    float32    // offset  84
	ScrollPhase     float32    // offset  88: scroll premultiplied by coupling
	Hover           float32    // offset  92: pointer influence in [0,1]
	Impulse         float32    // offset  96: click impulse in [0,1]
	IntensityScale  float32    // offset 100: role brightness multiplier
	DensityOffset   float32    // offset 104: role density bias in cells
	Reactivity      float32    // offset 108: layer pointer-response multiplier
}

// BuildUniforms packs one frame of state into the GPU layout. The packing
// mirrors what Sample reads on the CPU path, so both renderers consume the
// same numbers.
//
// Parameters:
//   - in: the frame state, as given to Sample
//   - width: the surface width in pixels
//   - height: the surface height in pixels
//
// Returns:
//   - Uniforms: the packed uniform block
func BuildUniforms(in SampleInput, width, height uint32) Uniforms {
	v := &in.Vector
	reactivity := in.Reactivity
	if reactivity == 0 {
		reactivity = 1
	}
	return Uniforms{
		Resolution:      [2]float32{float32(width), float32(height)},
		Pointer:         [2]float32{float32(in.Pointer[0]), float32(in.Pointer[1])},
		RotSpatial:      [3]float32{float32(v.RotXY), float32(v.RotXZ), float32(v.RotYZ)},
		Time:            float32(in.Time),
		RotHyper:        [3]float32{float32(v.RotXW), float32(v.RotYW), float32(v.RotZW)},
		Geometry:        float32(ResolveVariant(v.Geometry).Index()),
		GridDensity:     float32(v.GridDensity),
		Morph:           float32(v.Morph),
		Chaos:           float32(v.Chaos),
		Speed:           float32(v.Speed),
		Hue:             float32(v.Hue),
		Intensity:       float32(v.Intensity),
		Saturation:      float32(v.Saturation),
		Dimension:       float32(v.Dimension),
		ChromaticOffset: float32(v.ChromaticOffset),
		Interference:    float32(v.Interference),
		ScrollPhase:     float32(in.Scroll * v.ScrollCoupling),
		Hover:           float32(in.Hover),
		Impulse:         float32(in.Impulse),
		IntensityScale:  float32(in.Role.IntensityScale()),
		DensityOffset:   float32(in.Role.DensityOffset()),
		Reactivity:      float32(reactivity),
	}
}

// Size returns the size of the Uniforms struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (112)
func (u *Uniforms) Size() int {
	return int(unsafe.Sizeof(*u))
}

// Marshal serializes the Uniforms struct into a byte buffer suitable for GPU
// upload.
//
// Returns:
//   - []byte: 112-byte buffer ready for GPU upload
func (u *Uniforms) Marshal() []byte {
	buf := make([]byte, 112)
	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(u.Resolution[0]))
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(u.Resolution[1]))
	binary.LittleEndian.PutUint32(buf[8:12], math.Float32bits(u.Pointer[0]))
	binary.LittleEndian.PutUint32(buf[12:16], math.Float32bits(u.Pointer[1]))
	binary.LittleEndian.PutUint32(buf[16:20], math.Float32bits(u.RotSpatial[0]))
	binary.LittleEndian.PutUint32(buf[20:24], math.Float32bits(u.RotSpatial[1]))
	binary.LittleEndian.PutUint32(buf[24:28], math.Float32bits(u.RotSpatial[2]))
	binary.LittleEndian.PutUint32(buf[28:32], math.Float32bits(u.Time))
	binary.LittleEndian.PutUint32(buf[32:36], math.Float32bits(u.RotHyper[0]))
	binary.LittleEndian.PutUint32(buf[36:40], math.Float32bits(u.RotHyper[1]))
	binary.LittleEndian.PutUint32(buf[40:44], math.Float32bits(u.RotHyper[2]))
	binary.LittleEndian.PutUint32(buf[44:48], math.Float32bits(u.Geometry))
	binary.LittleEndian.PutUint32(buf[48:52], math.Float32bits(u.GridDensity))
	binary.LittleEndian.PutUint32(buf[52:56], math.Float32bits(u.Morph))
	binary.LittleEndian.PutUint32(buf[56:60], math.Float32bits(u.Chaos))
	binary.LittleEndian.PutUint32(buf[60:64], math.Float32bits(u.Speed))
	binary.LittleEndian.PutUint32(buf[64:68], math.Float32bits(u.Hue))
	binary.LittleEndian.PutUint32(buf[68:72], math.Float32bits(u.Intensity))
	binary.LittleEndian.PutUint32(buf[72:76], math.Float32bits(u.Saturation))
	binary.LittleEndian.PutUint32(buf[76:80], math.Float32bits(u.Dimension))
	binary.LittleEndian.PutUint32(buf[80:84], math.Float32bits(u.ChromaticOffset))
	binary.LittleEndian.PutUint32(buf[84:88], math.Float32bits(u.Interference))
	binary.LittleEndian.PutUint32(buf[88:92], math.Float32bits(u.ScrollPhase))
	binary.LittleEndian.PutUint32(buf[92:96], math.Float32bits(u.Hover))
	binary.LittleEndian.PutUint32(buf[96:100], math.Float32bits(u.Impulse))
	binary.LittleEndian.PutUint32(buf[100:104], math.Float32bits(u.IntensityScale))
	binary.LittleEndian.PutUint32(buf[104:108], math.Float32bits(u.DensityOffset))
	binary.LittleEndian.PutUint32(buf[108:112], math.Float32bits(u.Reactivity))
	return buf
}
