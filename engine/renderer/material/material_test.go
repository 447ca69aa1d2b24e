package material

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-gallery/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMaterial(t *testing.T) {
	m := NewMaterial(
		WithName("sunset.jpg"),
		WithPipelineKey("plane"),
		WithTexture(common.TextureStagingData{Pixels: make([]byte, 4*4*2), Width: 4, Height: 2}),
	)
	assert.Equal(t, "sunset.jpg", m.Name())
	assert.Equal(t, "plane", m.PipelineKey())
	assert.Equal(t, uint32(4), m.Width())
	assert.Equal(t, uint32(2), m.Height())
	assert.InDelta(t, 2.0, m.Aspect(), 1e-6)
	require.NotNil(t, m.Texture())
	assert.Nil(t, m.BindGroupProvider())

	m.DropTexture()
	assert.Nil(t, m.Texture())
	// dimensions survive the drop
	assert.InDelta(t, 2.0, m.Aspect(), 1e-6)
}

func TestMaterialAspectEmpty(t *testing.T) {
	assert.Equal(t, float32(1), NewMaterial().Aspect())
}

func TestMaterialUniformClampsOpacity(t *testing.T) {
	m := NewMaterial()
	var model [16]float32
	common.Identity(model[:])

	u := m.Uniform(model, [3]float32{0.3, 0.3, 0.3}, 1.7)
	assert.Equal(t, [4]float32{0.3, 0.3, 0.3, 1}, u.Color)
	assert.Equal(t, model, u.Model)

	u = m.Uniform(model, [3]float32{1, 1, 1}, -0.5)
	assert.Equal(t, float32(0), u.Color[3])
}

func TestGPUPlaneUniformMarshal(t *testing.T) {
	u := GPUPlaneUniform{Color: [4]float32{0.25, 0.5, 0.75, 1}}
	u.Model[12] = 10
	u.Model[15] = 1

	buf := u.Marshal()
	require.Len(t, buf, 80)
	assert.Equal(t, 80, u.Size())
	assert.Equal(t, float32(10), math.Float32frombits(binary.LittleEndian.Uint32(buf[48:])))
	assert.Equal(t, float32(0.5), math.Float32frombits(binary.LittleEndian.Uint32(buf[68:])))
	assert.Equal(t, float32(1), math.Float32frombits(binary.LittleEndian.Uint32(buf[76:])))
	assert.Contains(t, GPUPlaneUniformSource, "struct PlaneUniform")
}
