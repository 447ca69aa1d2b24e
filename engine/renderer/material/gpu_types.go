package material

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"
)

// GPUPlaneUniformSource is the canonical WGSL definition of the PlaneUniform struct.
// Matches GPUPlaneUniform layout exactly (80 bytes, std430 aligned).
//
//go:embed assets/plane_uniform.wgsl
var GPUPlaneUniformSource string

// GPUPlaneUniform is the per-plane uniform bound next to the plane texture.
// Color carries the tint in RGB and the opacity in A; the fragment stage multiplies the texel by it.
// Size: 80 bytes (mat4x4 + vec4).
type GPUPlaneUniform struct {
	Model [16]float32 // offset  0: mat4x4<f32>, column-major
	Color [4]float32  // offset 64: rgb tint, a opacity
}

// Size returns the size of the GPUPlaneUniform struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes (80)
func (g *GPUPlaneUniform) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUPlaneUniform struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 80-byte buffer ready for GPU upload
func (g *GPUPlaneUniform) Marshal() []byte {
	buf := make([]byte, g.Size())
	for i := range 16 {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(g.Model[i]))
	}
	for i := range 4 {
		binary.LittleEndian.PutUint32(buf[64+i*4:], math.Float32bits(g.Color[i]))
	}
	return buf
}
